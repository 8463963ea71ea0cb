package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/tartampluch/go-listings/internal/config"
	"github.com/tartampluch/go-listings/internal/engine"
	"github.com/tartampluch/go-listings/internal/locale"
	"github.com/tartampluch/go-listings/internal/navigator"
	"github.com/tartampluch/go-listings/internal/server"
)

// options holds the parsed command line.
type options struct {
	date        string
	venue       string
	tag         string
	filmOnly    bool
	output      string
	interactive bool
	serve       bool
	storeKey    string
}

// main is the application entry point.
// It delegates execution to runMain to ensure that deferred function calls
// (like closing log files) are executed before the process terminates.
// os.Exit() does not run defers, so we must return an integer code first.
func main() {
	os.Exit(runMain())
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
// Returns config.ExitCodeSuccess on success, config.ExitCodeError on failure.
func runMain() int {
	// -------------------------------------------------------------------------
	// 1. CLI Argument Parsing
	// -------------------------------------------------------------------------
	var opts options
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debugMode := flag.Bool(config.FlagDebug, false, config.FlagDescDebug)
	flag.StringVar(&opts.date, config.FlagDate, "", config.FlagDescDate)
	flag.StringVar(&opts.venue, config.FlagVenue, "", config.FlagDescVenue)
	flag.StringVar(&opts.tag, config.FlagTag, "", config.FlagDescTag)
	flag.BoolVar(&opts.filmOnly, config.FlagFilmOnly, false, config.FlagDescFilmOnly)
	flag.StringVar(&opts.output, config.FlagOutput, config.OutputText, config.FlagDescOutput)
	flag.BoolVar(&opts.interactive, config.FlagInteractive, false, config.FlagDescInteractive)
	flag.BoolVar(&opts.serve, config.FlagServe, false, config.FlagDescServe)
	flag.StringVar(&opts.storeKey, config.FlagStoreKey, "", config.FlagDescStoreKey)
	flag.Parse()

	if *showVersion {
		printVersion(os.Stdout)
		return config.ExitCodeSuccess
	}

	// -------------------------------------------------------------------------
	// 2. Logging Initialization
	// -------------------------------------------------------------------------
	// Logs go to stderr so stdout carries only the rendered listings.
	logCloser := setupLogging(*debugMode, opts.serve)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close() // Best effort close
		}()
	}

	// -------------------------------------------------------------------------
	// 3. Context & Signal Handling
	// -------------------------------------------------------------------------
	// Create a root context that cancels on SIGINT (Ctrl+C) or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	// -------------------------------------------------------------------------
	// 4. Application Logic
	// -------------------------------------------------------------------------
	if err := run(ctx, opts, os.Stdin, os.Stdout); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// run loads the settings, wires dependencies and dispatches to the selected mode.
func run(ctx context.Context, opts options, in io.Reader, out io.Writer) error {
	if opts.storeKey != "" {
		return config.StoreAPIKey(opts.storeKey)
	}

	settings, err := config.LoadSettings(config.EnvFileName)
	if err != nil {
		return err
	}

	// Dependency Injection.
	loader := &engine.Loader{
		Clock:   engine.RealClock{},
		Fetcher: engine.NewHTTPFetcher(),
		Source: engine.Source{
			URL:    settings.FeedURL,
			Shape:  settings.FeedShape,
			APIKey: settings.APIKey,
		},
	}
	tr := locale.New(settings.Language)
	locks := resolveLocks(settings, opts)

	switch {
	case opts.serve:
		srv := server.NewListingsServer(settings.Port, loader, tr, locks)
		return srv.Start(ctx)
	case opts.interactive:
		nav := navigator.New(loader, engine.RealClock{}, tr, locks)
		if opts.date != "" {
			if _, err := nav.Pick(opts.date); err != nil {
				return err
			}
		}
		return runInteractive(ctx, nav, tr, in, out)
	default:
		return printListings(ctx, loader, tr, locks, opts, out)
	}
}

// resolveLocks merges the page locks from the environment with the command line.
// Flags win over settings.
func resolveLocks(settings config.Settings, opts options) engine.Filters {
	locks := engine.Filters{
		LockedVenue: settings.LockedVenue,
		LockedTag:   settings.LockedTag,
		FilmOnly:    opts.filmOnly,
	}
	if opts.venue != "" {
		locks.LockedVenue = opts.venue
	}
	if opts.tag != "" {
		locks.LockedTag = opts.tag
	}
	return locks
}

// printListings runs the pipeline once and writes the result in the
// requested output format.
func printListings(ctx context.Context, loader *engine.Loader, tr *locale.Translator, locks engine.Filters, opts options, out io.Writer) error {
	switch opts.output {
	case config.OutputText, config.OutputJSON, config.OutputICS:
	default:
		return errors.New(config.ErrOutputUnsupport + ": " + opts.output)
	}

	day := engine.AtLocalMidnight(time.Now())
	if opts.date != "" {
		d, err := engine.ParseISODate(opts.date, time.Local)
		if err != nil {
			return err
		}
		day = d
	}

	q := engine.Query{Date: engine.ISODate(day), Filters: locks}

	ctx, cancel := context.WithTimeout(ctx, config.LoadTimeout)
	defer cancel()

	listings, err := loader.LoadListings(ctx, q)
	if err != nil {
		if opts.output == config.OutputText {
			renderStatus(out, tr.FullDate(day), tr.Msg(config.TKeyUnavailable))
		}
		return err
	}

	switch opts.output {
	case config.OutputText:
		renderText(out, tr, tr.FullDate(day), listings)
		return nil
	case config.OutputJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(listings); err != nil {
			return fmt.Errorf("%s: %w", config.ErrEncodeResp, err)
		}
		return nil
	default:
		data, err := engine.BuildCalendar(listings, time.Local, time.Now())
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}
}

// printVersion writes the build information injected at link time.
func printVersion(w io.Writer) {
	fmt.Fprintf(w, config.MsgVersionOutput,
		config.AppName,
		config.Version,
		config.Commit,
		config.Date,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Debug(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyCommit, config.Commit),
			slog.String(config.LogKeyBuilt, config.Date),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging configures the default slog logger.
// Terminal modes only report warnings unless debugMode is set; the server
// also logs its lifecycle.
func setupLogging(debugMode, serverMode bool) io.Closer {
	var writers []io.Writer
	var logFile *os.File

	// 1. Always write to Stderr.
	writers = append(writers, os.Stderr)

	// 2. Attempt to set up a file writer in the user's cache directory.
	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart to prevent indefinite growth.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelWarn
	switch {
	case debugMode:
		level = slog.LevelDebug
	case serverMode:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)

	// Ensure the directory exists with restricted permissions (700).
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
