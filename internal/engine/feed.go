package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/tartampluch/go-listings/internal/config"
)

// ErrMalformedFeed reports a body that is not a listings feed of the expected shape.
var ErrMalformedFeed = errors.New(config.ErrFeedMalformed)

// sheetFeed is the spreadsheet values response. The first row holds headers.
type sheetFeed struct {
	Values [][]any `json:"values"`
}

// groupedScreening is one entry of a feed already grouped by venue.
type groupedScreening struct {
	Title    cellText `json:"title"`
	Link     cellText `json:"link"`
	Director cellText `json:"director"`
	Runtime  cellText `json:"runtime"`
	Format   cellText `json:"format"`
	Year     cellText `json:"year"`
	Notes    cellText `json:"notes"`
	Blurb    cellText `json:"blurb"`
	Details  cellText `json:"details"`
	Times    cellText `json:"times"`
}

// cellText accepts a JSON string, number, boolean, null or list of those.
// Lists are joined with commas, matching the times column of the sheet.
type cellText string

func (c *cellText) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}

	if list, ok := v.([]any); ok {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			parts = append(parts, cellString(item))
		}
		*c = cellText(strings.Join(parts, config.TimesSeparator))
		return nil
	}
	*c = cellText(cellString(v))
	return nil
}

// DecodeFeed reads a feed body of the given shape into raw rows.
// Grouped feeds carry no per-row date, so their rows are stamped with date.
func DecodeFeed(r io.Reader, shape, date string) ([]RawRow, error) {
	switch shape {
	case config.FeedShapeSheet, "":
		return decodeSheet(r)
	case config.FeedShapeGrouped:
		return decodeGrouped(r, date)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrShapeUnsupport, shape)
	}
}

func decodeSheet(r io.Reader) ([]RawRow, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var feed sheetFeed
	if err := dec.Decode(&feed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedFeed, err)
	}
	if feed.Values == nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedFeed, config.ErrFeedValues)
	}
	if len(feed.Values) < 2 {
		return nil, nil
	}

	rows := make([]RawRow, 0, len(feed.Values)-1)
	for _, cells := range feed.Values[1:] {
		rows = append(rows, ParseRow(cells))
	}
	return rows, nil
}

func decodeGrouped(r io.Reader, date string) ([]RawRow, error) {
	var feed map[string][]groupedScreening
	if err := json.NewDecoder(r).Decode(&feed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedFeed, err)
	}

	venues := make([]string, 0, len(feed))
	for v := range feed {
		venues = append(venues, v)
	}
	sort.Strings(venues)

	var rows []RawRow
	for _, venue := range venues {
		for _, s := range feed[venue] {
			rows = append(rows, RawRow{
				Date:     date,
				Venue:    venue,
				Title:    string(s.Title),
				Link:     string(s.Link),
				Director: string(s.Director),
				Runtime:  string(s.Runtime),
				Format:   string(s.Format),
				Times:    string(s.Times),
				Year:     string(s.Year),
				Notes:    string(s.Notes),
				Blurb:    string(s.Blurb),
				Details:  string(s.Details),
			})
		}
	}
	return rows, nil
}
