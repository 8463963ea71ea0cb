package engine

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/tartampluch/go-listings/internal/config"
)

var (
	clock24Re    = regexp.MustCompile(`^\d{2}:\d{2}$`)
	clockShortRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	meridiemRe   = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(AM|PM)$`)
	anchorRe     = regexp.MustCompile(`(?is)<a[^>]+href\s*=\s*(?:"([^"]*)"|'([^']*)')[^>]*>(.*?)</a>`)
)

// digitalTokens are compared after upper-casing and removing all white space.
var digitalTokens = map[string]bool{
	"DIGITAL":       true,
	"DIG":           true,
	"HD":            true,
	"DCP":           true,
	"4K":            true,
	"4KRESTORATION": true,
	"4":             true,
}

// NormaliseFormat maps a free-text projection format onto the known formats.
// Blank input defaults to DCP. Unknown formats are returned trimmed, with the
// original casing.
func NormaliseFormat(raw string) Format {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return FormatDCP
	}

	key := strings.ToUpper(strings.Join(strings.FieldsFunc(trimmed, isSpace), ""))
	switch {
	case digitalTokens[key]:
		return FormatDCP
	case key == "35" || key == "35MM":
		return Format35mm
	case key == "70" || key == "70MM":
		return Format70mm
	case key == "16" || key == "16MM":
		return Format16mm
	}
	return Format(trimmed)
}

// NormaliseTime converts a show-time to 24-hour HH:MM.
//
// Accepted inputs are HH:MM, H:MM, 12-hour clock times with an optional
// minutes part ("2 PM", "2:30 p.m.") and spreadsheet serial times (a fraction
// of a day, 0 < v < 2). Anything else is returned trimmed. The function is
// idempotent.
func NormaliseTime(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	if t, ok := serialTime(trimmed); ok {
		return t
	}

	clean := strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(trimmed, ".", "")))

	if clock24Re.MatchString(clean) {
		return clean
	}

	if m := clockShortRe.FindStringSubmatch(clean); m != nil {
		h, _ := strconv.Atoi(m[1])
		if h > 23 {
			return trimmed
		}
		return fmt.Sprintf("%02d:%s", h, m[2])
	}

	m := meridiemRe.FindStringSubmatch(clean)
	if m == nil {
		return trimmed
	}

	h, _ := strconv.Atoi(m[1])
	mins := 0
	if m[2] != "" {
		mins, _ = strconv.Atoi(m[2])
	}
	if h > 12 || mins >= config.MinutesPerHour {
		return trimmed
	}

	switch {
	case m[3] == "PM" && h != 12:
		h += 12
	case m[3] == "AM" && h == 12:
		h = 0
	}
	return fmt.Sprintf(config.FormatClock, h, mins)
}

// serialTime decodes a spreadsheet time stored as a fraction of a day.
func serialTime(s string) (string, bool) {
	if strings.Contains(s, ":") {
		return "", false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !(v > 0 && v < config.MaxSerialTime) {
		return "", false
	}
	total := int(math.Round(v * config.MinutesPerDay))
	return fmt.Sprintf(config.FormatClock, total/config.MinutesPerHour, total%config.MinutesPerHour), true
}

// SplitTimes splits a comma-separated times cell into normalized show-times.
// Empty entries and repeats are dropped; input order is kept.
func SplitTimes(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var times []string
	for _, part := range strings.Split(raw, config.TimesSeparator) {
		t := NormaliseTime(part)
		if t == "" || slices.Contains(times, t) {
			continue
		}
		times = append(times, t)
	}
	return times
}

// ExtractTitleLink splits a title cell holding an embedded anchor into its
// display text and link. Without an anchor the cleaned cell is the title.
func ExtractTitleLink(raw string) (text, link string) {
	trimmed := strings.TrimSpace(raw)
	if m := anchorRe.FindStringSubmatch(trimmed); m != nil {
		href := m[1]
		if href == "" {
			href = m[2]
		}
		return CleanText(m[3]), strings.TrimSpace(href)
	}
	return CleanText(trimmed), ""
}

// CleanText collapses every Unicode white space character, including
// non-breaking and other space separators, to a single ASCII space and trims.
func CleanText(raw string) string {
	return strings.Join(strings.FieldsFunc(raw, isSpace), " ")
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || unicode.Is(unicode.Zs, r)
}

// DecorateRuntime appends the minutes unit to numeric runtimes that lack one.
// Placeholders such as "TBC" are returned as is; zero and blank runtimes
// yield an empty string.
func DecorateRuntime(raw string) string {
	t := CleanText(raw)
	if t == "" {
		return ""
	}

	lower := strings.ToLower(t)
	number := strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(lower, "s"), config.RuntimeMarker))
	if v, err := strconv.ParseFloat(number, 64); err == nil && v == 0 {
		return ""
	}

	if strings.Contains(lower, config.RuntimeMarker) || !unicode.IsDigit(rune(t[0])) {
		return t
	}
	return t + config.RuntimeSuffix
}

// BuildDetails joins the non-empty descriptive segments of a film.
func BuildDetails(director, year, runtime string, format Format) string {
	segments := []string{
		CleanText(director),
		CleanText(year),
		DecorateRuntime(runtime),
		CleanText(string(format)),
	}

	kept := segments[:0]
	for _, s := range segments {
		if s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, config.DetailsSeparator)
}

// ParseProgramme expands a programme cell into its entries.
// Entries are separated by "||" and fields by "|", in the order
// title, director, year, runtime, format. Untitled entries are dropped.
func ParseProgramme(raw string) []ProgrammeEntry {
	if CleanText(raw) == "" {
		return nil
	}

	var entries []ProgrammeEntry
	for _, chunk := range strings.Split(raw, config.ProgrammeEntrySep) {
		fields := strings.Split(chunk, config.ProgrammeFieldSep)
		field := func(i int) string {
			if i < len(fields) {
				return CleanText(fields[i])
			}
			return ""
		}

		title := field(0)
		if title == "" {
			continue
		}

		entry := ProgrammeEntry{
			Title:    title,
			Director: field(1),
			Year:     field(2),
			Runtime:  field(3),
		}
		if f := field(4); f != "" {
			entry.Format = NormaliseFormat(f)
		}
		entries = append(entries, entry)
	}
	return entries
}

// NormaliseTag lower-cases a notes or tag value and collapses its white space.
func NormaliseTag(raw string) string {
	return CleanText(strings.ToLower(raw))
}

// MatchesTag reports whether notes contain the tag after normalization.
// An empty tag matches everything.
func MatchesTag(notes, tag string) bool {
	t := NormaliseTag(tag)
	if t == "" {
		return true
	}
	return strings.Contains(NormaliseTag(notes), t)
}
