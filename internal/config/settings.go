package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/zalando/go-keyring"
)

// Settings holds the runtime configuration resolved from the environment.
type Settings struct {
	FeedURL     string // Endpoint returning the listings table
	FeedShape   string // FeedShapeSheet or FeedShapeGrouped
	APIKey      string // Optional key appended to sheet requests
	LockedVenue string // Page-level venue restriction
	LockedTag   string // Page-level festival/strand restriction
	Language    string // UI language (ISO 639-1)
	Port        string // HTTP listen port for -serve
}

// LoadSettings reads the optional env file, then the process environment.
// Variables already present in the environment take precedence over the file.
// The API key falls back to the OS keyring when the environment has none.
func LoadSettings(envFile string) (Settings, error) {
	log := slog.With(LogKeyComponent, CompConfig)

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return Settings{}, fmt.Errorf("%s: %w", ErrEnvFile, err)
			}
			log.Debug(MsgEnvFileMissing, LogKeyFile, envFile)
		}
	}

	s := Settings{
		FeedURL:     strings.TrimSpace(os.Getenv(EnvFeedURL)),
		FeedShape:   getenv(EnvFeedShape, DefaultFeedShape),
		APIKey:      strings.TrimSpace(os.Getenv(EnvAPIKey)),
		LockedVenue: strings.TrimSpace(os.Getenv(EnvLockedVenue)),
		LockedTag:   strings.TrimSpace(os.Getenv(EnvLockedTag)),
		Language:    getenv(EnvLanguage, DefaultLanguage),
		Port:        getenv(EnvPort, DefaultPort),
	}

	if s.FeedShape != FeedShapeSheet && s.FeedShape != FeedShapeGrouped {
		return Settings{}, fmt.Errorf("%s: %q", ErrShapeUnsupport, s.FeedShape)
	}
	if err := ValidatePort(s.Port); err != nil {
		return Settings{}, err
	}

	if s.APIKey == "" {
		key, err := keyring.Get(KeyringService, KeyringUser)
		if err == nil {
			s.APIKey = key
		} else {
			log.Debug(MsgKeyringMiss, LogKeyError, err)
		}
	}

	return s, nil
}

// StoreAPIKey saves the feed API key in the OS keyring.
func StoreAPIKey(key string) error {
	if err := keyring.Set(KeyringService, KeyringUser, key); err != nil {
		return fmt.Errorf("%s: %w", ErrKeyringStore, err)
	}
	slog.Info(MsgKeyStored, LogKeyComponent, CompConfig)
	return nil
}

// ValidatePort checks that port is a number within the TCP range.
func ValidatePort(port string) error {
	if port == "" {
		return errors.New(ErrPortRequired)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return errors.New(ErrPortNumber)
	}
	if n < MinPort || n > MaxPort {
		return errors.New(ErrPortRange)
	}
	return nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
