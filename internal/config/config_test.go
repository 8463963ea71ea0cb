package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-listings/internal/config"
	"github.com/zalando/go-keyring"
)

// TestConstants_Integrity ensures critical constants are not empty or malformed.
func TestConstants_Integrity(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"AppName", config.AppName},
		{"AppID", config.AppID},
		{"Version", config.Version},
		{"UserAgent", config.UserAgent},
		{"ICalVersion", config.ICalVersion},
		{"ICalProdid", config.ICalProdid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEmpty(t, tt.value, "Critical constant %s should not be empty", tt.name)
		})
	}
}

// TestUserAgent_Format ensures the UA string follows the standard format.
func TestUserAgent_Format(t *testing.T) {
	assert.True(t, strings.HasPrefix(config.UserAgent, "Go-Listings/"), "UserAgent must start with AppName/")
}

// TestColumns_Layout guards the positional column mapping of sheet rows.
func TestColumns_Layout(t *testing.T) {
	cols := []int{
		config.ColDate, config.ColVenue, config.ColTitle, config.ColDirector,
		config.ColRuntime, config.ColFormat, config.ColTimes, config.ColYear,
		config.ColNotes, config.ColBlurb, config.ColProgramme, config.ColScreeningNotes,
	}
	for i, c := range cols {
		assert.Equal(t, i, c, "columns must be contiguous and ordered")
	}
	assert.Equal(t, len(cols), config.RowWidth)
}

func TestTimeoutsAndLimits(t *testing.T) {
	t.Parallel()

	assert.Greater(t, config.HTTPTimeout, 0*time.Second)
	assert.LessOrEqual(t, config.HTTPTimeout, 2*time.Minute)
	// A hung fetch must be cut by the client before the navigator gives up.
	assert.Greater(t, config.LoadTimeout, config.HTTPTimeout)
	assert.Greater(t, config.MaxHTTPResponseSize, 0)
	assert.Greater(t, config.NoTimeValue, 2359, "sentinel must sort after any valid time")
}

func TestValidatePort(t *testing.T) {
	tests := []struct {
		port    string
		wantErr string
	}{
		{"18081", ""},
		{"1", ""},
		{"65535", ""},
		{"", config.ErrPortRequired},
		{"abc", config.ErrPortNumber},
		{"0", config.ErrPortRange},
		{"70000", config.ErrPortRange},
	}

	for _, tt := range tests {
		t.Run(tt.port, func(t *testing.T) {
			err := config.ValidatePort(tt.port)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestLoadSettings_Environment(t *testing.T) {
	keyring.MockInit()

	t.Setenv(config.EnvFeedURL, "https://example.com/values/Master")
	t.Setenv(config.EnvFeedShape, "")
	t.Setenv(config.EnvAPIKey, "env-key")
	t.Setenv(config.EnvLockedVenue, "  Barbican ")
	t.Setenv(config.EnvLockedTag, "")
	t.Setenv(config.EnvLanguage, "fr")
	t.Setenv(config.EnvPort, "")

	s, err := config.LoadSettings("")
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/values/Master", s.FeedURL)
	assert.Equal(t, config.FeedShapeSheet, s.FeedShape, "shape defaults to sheet")
	assert.Equal(t, "env-key", s.APIKey)
	assert.Equal(t, "Barbican", s.LockedVenue)
	assert.Equal(t, "fr", s.Language)
	assert.Equal(t, config.DefaultPort, s.Port)
}

func TestLoadSettings_EnvFile(t *testing.T) {
	keyring.MockInit()

	t.Setenv(config.EnvFeedURL, "")
	t.Setenv(config.EnvAPIKey, "")
	t.Setenv(config.EnvFeedShape, "")
	t.Setenv(config.EnvPort, "")
	t.Setenv(config.EnvLanguage, "")
	t.Setenv(config.EnvLockedVenue, "")
	t.Setenv(config.EnvLockedTag, "")
	// godotenv only sets unset variables; t.Setenv above registers cleanup,
	// so unset them for the duration of the test.
	for _, k := range []string{config.EnvFeedURL, config.EnvFeedShape} {
		require.NoError(t, os.Unsetenv(k))
	}

	path := filepath.Join(t.TempDir(), config.EnvFileName)
	content := config.EnvFeedURL + "=http://localhost/listings\n" + config.EnvFeedShape + "=grouped\n"
	require.NoError(t, os.WriteFile(path, []byte(content), config.FilePermUserRW))

	s, err := config.LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost/listings", s.FeedURL)
	assert.Equal(t, config.FeedShapeGrouped, s.FeedShape)
}

func TestLoadSettings_MissingEnvFileIsIgnored(t *testing.T) {
	keyring.MockInit()
	t.Setenv(config.EnvFeedShape, "")
	t.Setenv(config.EnvPort, "")

	_, err := config.LoadSettings(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestLoadSettings_RejectsUnknownShape(t *testing.T) {
	keyring.MockInit()
	t.Setenv(config.EnvFeedShape, "xml")
	t.Setenv(config.EnvPort, "")

	_, err := config.LoadSettings("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrShapeUnsupport)
}

func TestLoadSettings_KeyringFallback(t *testing.T) {
	keyring.MockInit()
	t.Setenv(config.EnvAPIKey, "")
	t.Setenv(config.EnvFeedShape, "")
	t.Setenv(config.EnvPort, "")

	require.NoError(t, config.StoreAPIKey("stored-key"))

	s, err := config.LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, "stored-key", s.APIKey)
}
