package engine

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/tartampluch/go-listings/internal/config"
)

// aggregateStats counts what happened to the input rows.
type aggregateStats struct {
	total, kept, films int
}

// Aggregate groups the rows of targetDate by venue and merges repeated rows of
// the same title into one Film.
//
// Rows are consumed in input order. The first row seen for a (venue, title)
// pair fixes the film's descriptive fields, details line and programme; later
// rows only add show-times not already listed. The times of every film are
// returned in ascending order.
func Aggregate(rows []RawRow, targetDate string, f Filters) map[string][]*Film {
	groups, _ := aggregate(rows, targetDate, f)
	return groups
}

func aggregate(rows []RawRow, targetDate string, f Filters) (map[string][]*Film, aggregateStats) {
	groups := make(map[string][]*Film)
	stats := aggregateStats{total: len(rows)}
	lockedVenue := CleanText(f.LockedVenue)

	for _, row := range rows {
		if reason := skipReason(row, targetDate, lockedVenue, f); reason != "" {
			slog.Debug(config.MsgRowSkipped,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyReason, reason,
				config.LogKeyTitle, row.Title)
			continue
		}
		stats.kept++

		s := row.Normalise()
		films := groups[s.Venue]

		idx := slices.IndexFunc(films, func(film *Film) bool { return film.Title == s.TitleText })
		if idx < 0 {
			groups[s.Venue] = append(films, newFilm(s))
			stats.films++
			continue
		}

		film := films[idx]
		if s.Director != "" && s.Director != film.Director {
			slog.Debug(config.MsgFieldDiverged,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyVenue, s.Venue,
				config.LogKeyTitle, film.Title,
				config.LogKeyField, "director",
				config.LogKeyValue, s.Director)
		}
		for _, t := range s.Times {
			if !slices.Contains(film.Times, t) {
				film.Times = append(film.Times, t)
			}
		}
	}

	for _, films := range groups {
		for _, film := range films {
			SortTimes(film.Times)
		}
	}
	return groups, stats
}

// skipReason returns why a row is excluded, or "" when it is kept.
// The date and venue checks run before any normalization of the row.
func skipReason(row RawRow, targetDate, lockedVenue string, f Filters) string {
	if strings.TrimSpace(row.Date) != targetDate {
		return config.SkipDate
	}

	venue := CleanText(row.Venue)
	if venue == "" {
		return config.SkipVenue
	}
	if lockedVenue != "" && venue != lockedVenue {
		return config.SkipLocked
	}
	if f.LockedTag != "" && !MatchesTag(row.Notes, f.LockedTag) {
		return config.SkipTag
	}
	if f.FilmOnly && !NormaliseFormat(row.Format).IsFilm() {
		return config.SkipFilmOnly
	}
	return ""
}

func newFilm(s ScreeningRow) *Film {
	times := make([]string, len(s.Times))
	copy(times, s.Times)

	return &Film{
		Title:          s.TitleText,
		Link:           s.TitleLink,
		Director:       s.Director,
		Runtime:        s.Runtime,
		Format:         s.Format,
		Year:           s.Year,
		Notes:          s.Notes,
		Blurb:          s.Blurb,
		ScreeningNotes: s.ScreeningNotes,
		Programme:      s.Programme,
		Details:        s.Details,
		Times:          times,
	}
}
