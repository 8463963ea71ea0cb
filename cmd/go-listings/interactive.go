package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/tartampluch/go-listings/internal/config"
	"github.com/tartampluch/go-listings/internal/locale"
	"github.com/tartampluch/go-listings/internal/navigator"
)

// runInteractive reads navigation commands from in, one per line, and renders
// every resulting view to out. Loads run in the background so a new command
// can supersede a slow one; stale views are never printed. It returns when the
// input ends, the quit command is read or ctx is cancelled, after in-flight
// loads have finished.
func runInteractive(ctx context.Context, nav *navigator.Navigator, tr *locale.Translator, in io.Reader, out io.Writer) error {
	var (
		mu sync.Mutex // Serializes writes to out
		wg sync.WaitGroup
	)
	defer wg.Wait()

	printf := func(format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(out, format, args...)
	}

	load := func(req navigator.Request) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			view, err := nav.Load(ctx, req)
			if err != nil {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			renderView(out, tr, view)
			fmt.Fprint(out, config.PromptText)
		}()
	}

	lines, scanErr, stop := readLines(in)
	defer stop()

	load(nav.Refresh())

	for {
		select {
		case <-ctx.Done():
			return nil

		case line, ok := <-lines:
			if !ok {
				if err := <-scanErr; err != nil {
					return fmt.Errorf("%s: %w", config.ErrReadInput, err)
				}
				return nil
			}

			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}

			switch cmd := strings.ToLower(fields[0]); cmd {
			case config.CmdNext, config.CmdNextLong:
				load(nav.Next())
			case config.CmdPrev, config.CmdPrevLong:
				load(nav.Prev())
			case config.CmdToday, config.CmdTodayLng:
				load(nav.Today())
			case config.CmdFilm, config.CmdFilmLong:
				load(nav.ToggleFilmOnly())
			case config.CmdDate, config.CmdDateLong:
				if len(fields) < 2 {
					printf("%s\n", config.FlagDescDate)
					continue
				}
				req, err := nav.Pick(fields[1])
				if err != nil {
					printf("%v\n", err)
					continue
				}
				load(req)
			case config.CmdQuit, config.CmdQuitLong:
				return nil
			default:
				slog.Debug(config.MsgUnknownCommand,
					config.LogKeyComponent, config.CompMain,
					config.LogKeyCommand, cmd,
				)
				printf("%s: %s\n", config.MsgUnknownCommand, cmd)
			}
		}
	}
}

// readLines scans in on its own goroutine so the command loop can also
// watch for cancellation. stop releases the scanner goroutine.
func readLines(in io.Reader) (<-chan string, <-chan error, func()) {
	lines := make(chan string)
	scanErr := make(chan error, config.ChannelBufferSize)
	done := make(chan struct{})

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	var once sync.Once
	return lines, scanErr, func() { once.Do(func() { close(done) }) }
}

// renderView writes one navigator view.
func renderView(w io.Writer, tr *locale.Translator, v navigator.View) {
	fmt.Fprintln(w)
	if v.Status == navigator.StatusReady {
		renderText(w, tr, v.Label, v.Listings)
	} else {
		renderStatus(w, v.Label, v.Message)
	}
	if v.FilmOnly {
		fmt.Fprintf(w, config.FormatHeadline, tr.Msg(config.TKeyFilmOnlyOn))
	}
}
