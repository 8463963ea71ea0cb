package engine

import (
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/tartampluch/go-listings/internal/config"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var leadingArticleRe = regexp.MustCompile(`(?i)^(the|a|an)\s+`)

// VenueSortKey strips a single leading article and lower-cases the name.
func VenueSortKey(name string) string {
	return strings.ToLower(strings.TrimSpace(leadingArticleRe.ReplaceAllString(CleanText(name), "")))
}

// SortVenues orders venue names by their sort key using English collation
// that ignores case and diacritics.
func SortVenues(names []string) {
	// A Collator keeps internal buffers, so each sort gets its own.
	c := collate.New(language.English, collate.IgnoreCase, collate.IgnoreDiacritics)
	sort.SliceStable(names, func(i, j int) bool {
		return c.CompareString(VenueSortKey(names[i]), VenueSortKey(names[j])) < 0
	})
}

// TimeValue turns "14:30" into 1430. Missing or unparsable times yield
// config.NoTimeValue so they sort after every real show-time.
func TimeValue(t string) int {
	if !clock24Re.MatchString(t) {
		return config.NoTimeValue
	}
	v, err := strconv.Atoi(strings.Replace(t, ":", "", 1))
	if err != nil {
		return config.NoTimeValue
	}
	return v
}

// SortTimes orders show-times chronologically. Unparsable entries keep their
// relative order at the end.
func SortTimes(times []string) {
	slices.SortStableFunc(times, func(a, b string) int {
		return TimeValue(a) - TimeValue(b)
	})
}

// earliest returns the sort value of the first show-time of a film.
func earliest(f *Film) int {
	best := config.NoTimeValue
	for _, t := range f.Times {
		if v := TimeValue(t); v < best {
			best = v
		}
	}
	return best
}

// OrderFilms sorts films by their earliest show-time. Films without a time
// go last; ties keep input order.
func OrderFilms(films []*Film) {
	slices.SortStableFunc(films, func(a, b *Film) int {
		return earliest(a) - earliest(b)
	})
}

// Order assembles the render-ready listings for date from aggregated groups.
func Order(date string, groups map[string][]*Film) Listings {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	// Pre-sort plainly so venues with equal collation keys come out deterministically.
	sort.Strings(names)
	SortVenues(names)

	venues := make([]VenueGroup, 0, len(names))
	for _, name := range names {
		films := groups[name]
		OrderFilms(films)
		venues = append(venues, VenueGroup{Name: name, Films: films})
	}
	return Listings{Date: date, Venues: venues}
}
