package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/tartampluch/go-listings/internal/config"
)

// Ordinal returns the English suffix for a day of the month.
// 11, 12 and 13 take "th" like the rest of 4..20.
func Ordinal(n int) string {
	if n >= 4 && n <= 20 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// FormatFullDate renders "Wednesday, November 26th, 2025".
func FormatFullDate(t time.Time) string {
	day := t.Day()
	return fmt.Sprintf("%s, %s %d%s, %d", t.Weekday(), t.Month(), day, Ordinal(day), t.Year())
}

// AtLocalMidnight drops the time of day, keeping the calendar date in t's location.
func AtLocalMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StepDays moves n calendar days from t and returns local midnight.
// Stepping by date fields keeps DST transitions from shifting the day.
func StepDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, t.Location())
}

// ISODate formats the calendar date of t as YYYY-MM-DD.
func ISODate(t time.Time) string {
	return t.Format(config.DateFormatISO)
}

// ParseISODate reads a YYYY-MM-DD picker value as midnight in loc.
func ParseISODate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(config.DateFormatISO, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", config.ErrDateParse, err)
	}
	return t, nil
}
