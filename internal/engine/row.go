package engine

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tartampluch/go-listings/internal/config"
)

// ParseRow maps the positional cells of one feed row onto a RawRow.
// Short rows are padded with empty strings and extra cells are ignored.
func ParseRow(cells []any) RawRow {
	cell := func(i int) string {
		if i < len(cells) {
			return cellString(cells[i])
		}
		return ""
	}

	return RawRow{
		Date:           cell(config.ColDate),
		Venue:          cell(config.ColVenue),
		Title:          cell(config.ColTitle),
		Director:       cell(config.ColDirector),
		Runtime:        cell(config.ColRuntime),
		Format:         cell(config.ColFormat),
		Times:          cell(config.ColTimes),
		Year:           cell(config.ColYear),
		Notes:          cell(config.ColNotes),
		Blurb:          cell(config.ColBlurb),
		Programme:      cell(config.ColProgramme),
		ScreeningNotes: cell(config.ColScreeningNotes),
	}
}

// cellString renders a decoded JSON cell as text.
func cellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case json.Number:
		return c.String()
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case bool:
		return strings.ToUpper(strconv.FormatBool(c))
	default:
		return fmt.Sprint(c)
	}
}

// Normalise coerces every field of the row. It never fails: malformed values
// are passed through in their best-effort form.
func (r RawRow) Normalise() ScreeningRow {
	title, link := ExtractTitleLink(r.Title)
	if link == "" {
		link = strings.TrimSpace(r.Link)
	}
	format := NormaliseFormat(r.Format)

	details := CleanText(r.Details)
	if details == "" {
		details = BuildDetails(r.Director, r.Year, r.Runtime, format)
	}

	return ScreeningRow{
		Date:           strings.TrimSpace(r.Date),
		Venue:          CleanText(r.Venue),
		TitleText:      title,
		TitleLink:      link,
		Director:       CleanText(r.Director),
		Runtime:        CleanText(r.Runtime),
		Format:         format,
		Times:          SplitTimes(r.Times),
		Year:           CleanText(r.Year),
		Notes:          CleanText(r.Notes),
		Blurb:          CleanText(r.Blurb),
		ScreeningNotes: CleanText(r.ScreeningNotes),
		Programme:      ParseProgramme(r.Programme),
		Details:        details,
	}
}
