package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/tartampluch/go-listings/internal/config"
	"github.com/tartampluch/go-listings/internal/engine"
	"github.com/tartampluch/go-listings/internal/locale"
)

const (
	indentFilm   = "  "
	indentDetail = "    "
	timesGap     = "  "
)

// renderStatus writes a date heading followed by a single status line.
func renderStatus(w io.Writer, label, message string) {
	fmt.Fprintf(w, config.FormatHeadline, label)
	fmt.Fprintf(w, config.FormatHeadline, message)
}

// renderText writes listings as an indented plain-text card list: venues in
// order, each film with its details line, notes, blurb, programme and show-times.
func renderText(w io.Writer, tr *locale.Translator, label string, l engine.Listings) {
	if l.Empty() {
		renderStatus(w, label, tr.Msg(config.TKeyNoListings))
		return
	}

	fmt.Fprintf(w, config.FormatHeadline, label)
	for _, venue := range l.Venues {
		fmt.Fprintf(w, "\n%s\n", venue.Name)
		for _, film := range venue.Films {
			renderFilm(w, tr, film)
		}
	}
}

func renderFilm(w io.Writer, tr *locale.Translator, film *engine.Film) {
	fmt.Fprintf(w, "%s%s\n", indentFilm, film.Title)

	lines := []string{film.Details, film.Notes, film.Blurb, film.ScreeningNotes}
	for _, p := range film.Programme {
		lines = append(lines, "+ "+programmeLine(p))
	}
	if film.Link != "" {
		lines = append(lines, film.Link)
	}

	for _, line := range lines {
		if line != "" {
			fmt.Fprintf(w, "%s%s\n", indentDetail, line)
		}
	}

	times := tr.Msg(config.TKeyTimesNone)
	if len(film.Times) > 0 {
		times = strings.Join(film.Times, timesGap)
	}
	fmt.Fprintf(w, "%s%s\n", indentDetail, times)
}

func programmeLine(p engine.ProgrammeEntry) string {
	details := engine.BuildDetails(p.Director, p.Year, p.Runtime, p.Format)
	if details == "" {
		return p.Title
	}
	return p.Title + " (" + details + ")"
}
