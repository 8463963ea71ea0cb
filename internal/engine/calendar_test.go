package engine_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-listings/internal/config"
	"github.com/tartampluch/go-listings/internal/engine"
)

var calendarNow = time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC)

func TestBuildCalendar(t *testing.T) {
	listings := engine.Listings{
		Date: testDate,
		Venues: []engine.VenueGroup{{
			Name: "Barbican",
			Films: []*engine.Film{
				{Title: "Film A", Link: "https://example.com/a", Runtime: "120", Details: "Jane Doe, 1999, 120 min, 35mm", Times: []string{"18:00", "TBC"}},
				{Title: "Film B", Times: []string{}},
			},
		}},
	}

	data, err := engine.BuildCalendar(listings, time.UTC, calendarNow)
	require.NoError(t, err)

	ics := string(data)
	assert.Contains(t, ics, "BEGIN:VCALENDAR")
	assert.Contains(t, ics, "SUMMARY:Film A")
	assert.Contains(t, ics, "LOCATION:Barbican")
	assert.Contains(t, ics, "DTSTART:20251126T180000Z")
	assert.Contains(t, ics, "DTEND:20251126T200000Z", "runtime determines the end")
	assert.Contains(t, ics, "URL:https://example.com/a")
	assert.Contains(t, ics, "DTSTAMP:20251120T090000Z")
	assert.Equal(t, 1, strings.Count(ics, "BEGIN:VEVENT"), "unparsable and missing times produce no event")
}

func TestBuildCalendar_StableUID(t *testing.T) {
	listings := engine.Listings{
		Date:   testDate,
		Venues: []engine.VenueGroup{{Name: "Rio", Films: []*engine.Film{{Title: "Film C", Times: []string{"12:00", "20:00"}}}}},
	}

	first, err := engine.BuildCalendar(listings, time.UTC, calendarNow)
	require.NoError(t, err)
	second, err := engine.BuildCalendar(listings, time.UTC, calendarNow.Add(time.Hour))
	require.NoError(t, err)

	uids := func(ics string) []string {
		var out []string
		for _, line := range strings.Split(ics, "\r\n") {
			if strings.HasPrefix(line, "UID:") {
				out = append(out, line)
			}
		}
		return out
	}

	a, b := uids(string(first)), uids(string(second))
	require.Len(t, a, 2)
	assert.Equal(t, a, b, "UIDs do not depend on the export time")
	assert.NotEqual(t, a[0], a[1], "each show-time has its own UID")
	assert.True(t, strings.HasSuffix(a[0], "@"+config.ICalDomain))
}

func TestBuildCalendar_Empty(t *testing.T) {
	data, err := engine.BuildCalendar(engine.Listings{Date: testDate}, time.UTC, calendarNow)

	require.NoError(t, err)
	assert.Equal(t, config.StubVCalendar, string(data))
}

func TestBuildCalendar_BadDate(t *testing.T) {
	_, err := engine.BuildCalendar(engine.Listings{Date: "not-a-date"}, time.UTC, calendarNow)

	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrDateParse)
}
