// Package navigator owns the interactive state of the listings views: the
// current date, the film-only toggle and the page locks. Every state change
// yields a Request; only the response to the newest Request is published.
package navigator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-listings/internal/config"
	"github.com/tartampluch/go-listings/internal/engine"
	"github.com/tartampluch/go-listings/internal/locale"
)

// ErrStale reports that a newer request superseded the one being loaded.
var ErrStale = errors.New(config.ErrStaleRequest)

// ListingsLoader is satisfied by *engine.Loader.
type ListingsLoader interface {
	LoadListings(ctx context.Context, q engine.Query) (engine.Listings, error)
}

// Status is the outcome shown for a date.
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusEmpty
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusEmpty:
		return "empty"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Request is one load triggered by a state change.
type Request struct {
	Generation uint64
	Date       time.Time // Local midnight
	Query      engine.Query
}

// View is the published, render-ready state of the navigator.
type View struct {
	Generation uint64
	Date       time.Time
	Label      string // Long-form date heading
	Status     Status
	Message    string // Localized status line; empty when Ready
	FilmOnly   bool
	Listings   engine.Listings
}

// Navigator is safe for concurrent use.
type Navigator struct {
	loader     ListingsLoader
	clock      engine.Clock
	translator *locale.Translator
	locks      engine.Filters

	mu       sync.Mutex
	date     time.Time
	filmOnly bool
	cancel   context.CancelFunc

	generation atomic.Uint64
	view       atomic.Pointer[View]
}

// New starts the navigator on today's date in the clock's location.
// Locks pin the venue and tag for the lifetime of the navigator; their
// FilmOnly field is the initial toggle state.
func New(loader ListingsLoader, clock engine.Clock, tr *locale.Translator, locks engine.Filters) *Navigator {
	if clock == nil {
		clock = engine.RealClock{}
	}
	return &Navigator{
		loader:     loader,
		clock:      clock,
		translator: tr,
		locks:      engine.Filters{LockedVenue: locks.LockedVenue, LockedTag: locks.LockedTag},
		date:       engine.AtLocalMidnight(clock.Now()),
		filmOnly:   locks.FilmOnly,
	}
}

// Today jumps to the current date.
func (n *Navigator) Today() Request {
	return n.update(func() { n.date = engine.AtLocalMidnight(n.clock.Now()) })
}

// Prev steps one day back.
func (n *Navigator) Prev() Request {
	return n.update(func() { n.date = engine.StepDays(n.date, -1) })
}

// Next steps one day forward.
func (n *Navigator) Next() Request {
	return n.update(func() { n.date = engine.StepDays(n.date, 1) })
}

// Pick jumps to a YYYY-MM-DD picker value, interpreted in the current
// date's location. The state is unchanged when the value is malformed.
func (n *Navigator) Pick(value string) (Request, error) {
	n.mu.Lock()
	loc := n.date.Location()
	n.mu.Unlock()

	d, err := engine.ParseISODate(value, loc)
	if err != nil {
		return Request{}, err
	}
	return n.update(func() { n.date = d }), nil
}

// ToggleFilmOnly flips the film-only filter for the current date.
func (n *Navigator) ToggleFilmOnly() Request {
	return n.update(func() { n.filmOnly = !n.filmOnly })
}

// Refresh re-issues the current state without changing it.
func (n *Navigator) Refresh() Request {
	return n.update(func() {})
}

// update applies change under the lock, supersedes any in-flight load and
// publishes a Loading view for the new state.
func (n *Navigator) update(change func()) Request {
	n.mu.Lock()
	change()
	if n.cancel != nil {
		n.cancel()
		n.cancel = nil
	}
	req := Request{
		Generation: n.generation.Add(1),
		Date:       n.date,
		Query: engine.Query{
			Date: engine.ISODate(n.date),
			Filters: engine.Filters{
				LockedVenue: n.locks.LockedVenue,
				LockedTag:   n.locks.LockedTag,
				FilmOnly:    n.filmOnly,
			},
		},
	}
	n.view.Store(&View{
		Generation: req.Generation,
		Date:       req.Date,
		Label:      n.translator.FullDate(req.Date),
		Status:     StatusLoading,
		Message:    n.translator.Msg(config.TKeyLoading),
		FilmOnly:   req.Query.Filters.FilmOnly,
	})
	n.mu.Unlock()
	return req
}

// Load runs the pipeline for req with config.LoadTimeout and publishes the
// resulting view. It returns ErrStale, and publishes nothing, when a newer
// request was issued while this one was in flight.
func (n *Navigator) Load(ctx context.Context, req Request) (View, error) {
	ctx, cancel := context.WithTimeout(ctx, config.LoadTimeout)
	defer cancel()

	n.mu.Lock()
	if req.Generation != n.generation.Load() {
		n.mu.Unlock()
		return View{}, ErrStale
	}
	n.cancel = cancel
	n.mu.Unlock()

	log := slog.With(
		config.LogKeyComponent, config.CompNavigator,
		config.LogKeyGeneration, req.Generation,
		config.LogKeyDate, req.Query.Date,
	)

	view := View{
		Generation: req.Generation,
		Date:       req.Date,
		Label:      n.translator.FullDate(req.Date),
		FilmOnly:   req.Query.Filters.FilmOnly,
	}

	var listings engine.Listings
	var err error
	if n.loader == nil {
		err = errors.New(config.ErrLoaderMissing)
	} else {
		listings, err = n.loader.LoadListings(ctx, req.Query)
	}

	switch {
	case err != nil:
		view.Status = StatusUnavailable
		view.Message = n.translator.Msg(config.TKeyUnavailable)
		view.Listings = engine.Listings{Date: req.Query.Date}
	case listings.Empty():
		view.Status = StatusEmpty
		view.Message = n.translator.Msg(config.TKeyNoListings)
		view.Listings = listings
	default:
		view.Status = StatusReady
		view.Listings = listings
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if current := n.generation.Load(); req.Generation != current {
		log.Debug(config.MsgStaleDiscarded, config.LogKeyCurrent, current)
		return View{}, ErrStale
	}
	n.cancel = nil
	if err != nil {
		log.Warn(config.MsgLoadFailed, config.LogKeyError, err)
	}
	n.view.Store(&view)
	return view, nil
}

// View returns the latest published view, or nil before the first request.
func (n *Navigator) View() *View {
	return n.view.Load()
}

// Date returns the current local-midnight date.
func (n *Navigator) Date() time.Time {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.date
}

// FilmOnly reports whether the film-only filter is on.
func (n *Navigator) FilmOnly() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.filmOnly
}
