package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tartampluch/go-listings/internal/config"
)

// Source describes where the listings feed lives.
type Source struct {
	URL    string // Feed endpoint
	Shape  string // config.FeedShapeSheet or config.FeedShapeGrouped
	APIKey string // Optional sheet API key
}

// Loader is the core service: it fetches the feed and runs the
// normalize, aggregate and order pipeline for one date.
// It keeps no state between calls.
type Loader struct {
	Clock   Clock       // Interface for time mocking.
	Fetcher FeedFetcher // Interface for network abstraction.
	Source  Source
}

// Today returns the current local date as YYYY-MM-DD.
func (l *Loader) Today() string {
	clock := l.Clock
	if clock == nil {
		clock = RealClock{}
	}
	return ISODate(clock.Now())
}

// LoadListings fetches the feed and returns the ordered listings for q.Date,
// today when it is empty.
// Only fetching and decoding can fail; a date without matching rows yields
// empty Listings and a nil error.
func (l *Loader) LoadListings(ctx context.Context, q Query) (Listings, error) {
	start := time.Now()
	if q.Date == "" {
		q.Date = l.Today()
	}
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyShape, l.Source.Shape,
		config.LogKeyDate, q.Date,
	)
	log.DebugContext(ctx, config.MsgLoadStarted)

	rows, err := l.fetchRows(ctx, q.Date)
	if err != nil {
		if ctx.Err() != nil {
			return Listings{}, ctx.Err()
		}
		log.WarnContext(ctx, config.MsgLoadFailed, config.LogKeyError, err)
		return Listings{}, fmt.Errorf("%s: %w", config.ErrFeedLoad, err)
	}

	if err := ctx.Err(); err != nil {
		return Listings{}, err
	}

	groups, stats := aggregate(rows, q.Date, q.Filters)
	listings := Order(q.Date, groups)

	log.InfoContext(ctx, config.MsgLoadFinished,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyRows, stats.total),
			slog.Int(config.LogKeyKept, stats.kept),
			slog.Int(config.LogKeyVenues, len(listings.Venues)),
			slog.Int(config.LogKeyFilms, stats.films),
		),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return listings, nil
}

// fetchRows downloads and decodes the feed.
func (l *Loader) fetchRows(ctx context.Context, date string) ([]RawRow, error) {
	if l.Fetcher == nil {
		return nil, errors.New(config.ErrFetcherMissing)
	}

	target, err := FeedURL(l.Source.URL, l.Source.Shape, date, l.Source.APIKey)
	if err != nil {
		return nil, err
	}

	body, err := l.Fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	return DecodeFeed(body, l.Source.Shape, date)
}
