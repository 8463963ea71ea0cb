package engine

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-listings/internal/config"
)

var runtimeMinutesRe = regexp.MustCompile(`^\s*(\d+)`)

// BuildCalendar exports listings as an iCalendar feed with one event per
// show-time. Times that cannot be placed on the clock are skipped.
// now stamps every event; loc is the venues' local time zone.
func BuildCalendar(l Listings, loc *time.Location, now time.Time) ([]byte, error) {
	if loc == nil {
		loc = time.Local
	}

	day, err := ParseISODate(l.Date, loc)
	if err != nil {
		return nil, err
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	for _, venue := range l.Venues {
		for _, film := range venue.Films {
			for _, t := range film.Times {
				v := TimeValue(t)
				if v == config.NoTimeValue {
					continue
				}
				start := time.Date(day.Year(), day.Month(), day.Day(), v/100, v%100, 0, 0, loc)

				event := newScreeningEvent(venue.Name, film, l.Date, t, start)
				event.Props.Set(dtStampProp)
				cal.Children = append(cal.Children, event.Component)
			}
		}
	}

	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), nil
}

// newScreeningEvent builds the VEVENT of one show-time.
func newScreeningEvent(venue string, film *Film, date, clock string, start time.Time) *ical.Event {
	event := ical.NewEvent()

	// Deterministic UID so calendar clients update events instead of duplicating them.
	input := fmt.Sprintf(config.FormatHashInput, venue, film.Title, date, clock)
	hash := sha256.Sum256([]byte(input))
	uid := fmt.Sprintf(config.FormatUID, fmt.Sprintf("%x", hash[:config.UIDHashLength]), config.ICalDomain)
	event.Props.SetText(config.PropUID, uid)

	event.Props.SetText(config.PropSummary, film.Title)
	event.Props.SetText(config.PropLocation, venue)
	if film.Details != "" {
		event.Props.SetText(config.PropDescription, film.Details)
	}
	if film.Link != "" {
		// Set the value directly: URL is a URI property and must not carry VALUE=TEXT.
		urlProp := ical.NewProp(config.PropURL)
		urlProp.Value = film.Link
		event.Props.Set(urlProp)
	}

	dtStartProp := ical.NewProp(config.PropDTStart)
	dtStartProp.SetDateTime(start)
	event.Props.Set(dtStartProp)

	if m := runtimeMinutesRe.FindStringSubmatch(film.Runtime); m != nil {
		if mins, err := strconv.Atoi(m[1]); err == nil && mins > 0 {
			dtEndProp := ical.NewProp(config.PropDTEnd)
			dtEndProp.SetDateTime(start.Add(time.Duration(mins) * time.Minute))
			event.Props.Set(dtEndProp)
		}
	}
	return event
}
