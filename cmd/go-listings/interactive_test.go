package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-listings/internal/config"
	"github.com/tartampluch/go-listings/internal/engine"
	"github.com/tartampluch/go-listings/internal/locale"
	"github.com/tartampluch/go-listings/internal/navigator"
)

// MockLoader simulates the listings pipeline using `testify/mock`.
type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) LoadListings(ctx context.Context, q engine.Query) (engine.Listings, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(engine.Listings), args.Error(1)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestNavigator(loader navigator.ListingsLoader) (*navigator.Navigator, *locale.Translator) {
	tr := locale.New("en")
	clock := fixedClock{time.Date(2025, 11, 26, 10, 0, 0, 0, time.UTC)}
	return navigator.New(loader, clock, tr, engine.Filters{}), tr
}

func TestRunInteractive_Commands(t *testing.T) {
	loader := new(MockLoader)
	loader.On("LoadListings", mock.Anything, mock.MatchedBy(func(q engine.Query) bool {
		return q.Date == "2025-12-01"
	})).Return(engine.Listings{
		Date:   "2025-12-01",
		Venues: []engine.VenueGroup{{Name: "Rio", Films: []*engine.Film{{Title: "Film C", Details: "DCP", Times: []string{"12:00"}}}}},
	}, nil)
	loader.On("LoadListings", mock.Anything, mock.Anything).Return(engine.Listings{}, nil)

	nav, tr := newTestNavigator(loader)
	in := strings.NewReader("n\n\nbogus\nd\nd 2025-12-01\nq\nn\n")
	var out bytes.Buffer

	err := runInteractive(context.Background(), nav, tr, in, &out)

	require.NoError(t, err)
	output := out.String()
	assert.Contains(t, output, "Unknown command: bogus")
	assert.Contains(t, output, config.FlagDescDate, "date without a value prints usage")
	assert.Contains(t, output, "Monday, December 1st, 2025\n\nRio\n  Film C")
	assert.Equal(t, "2025-12-01", engine.ISODate(nav.Date()), "commands after quit are ignored")
}

func TestRunInteractive_BadDate(t *testing.T) {
	loader := new(MockLoader)
	loader.On("LoadListings", mock.Anything, mock.Anything).Return(engine.Listings{}, nil)

	nav, tr := newTestNavigator(loader)
	var out bytes.Buffer

	err := runInteractive(context.Background(), nav, tr, strings.NewReader("d 01/12/2025\n"), &out)

	require.NoError(t, err)
	assert.Contains(t, out.String(), config.ErrDateParse)
	assert.Equal(t, "2025-11-26", engine.ISODate(nav.Date()))
}

func TestRunInteractive_FilmOnlyToggle(t *testing.T) {
	loader := new(MockLoader)
	loader.On("LoadListings", mock.Anything, mock.MatchedBy(func(q engine.Query) bool {
		return q.Filters.FilmOnly
	})).Return(engine.Listings{Date: "2025-11-26"}, nil)
	loader.On("LoadListings", mock.Anything, mock.Anything).Return(engine.Listings{Date: "2025-11-26"}, nil)

	nav, tr := newTestNavigator(loader)
	var out bytes.Buffer

	err := runInteractive(context.Background(), nav, tr, strings.NewReader("film\n"), &out)

	require.NoError(t, err)
	assert.True(t, nav.FilmOnly())
	assert.Contains(t, out.String(), "Showing film screenings only")
	assert.Contains(t, out.String(), "No listings for this date.")
}

func TestRunInteractive_Unavailable(t *testing.T) {
	loader := new(MockLoader)
	loader.On("LoadListings", mock.Anything, mock.Anything).Return(engine.Listings{}, assert.AnError)

	nav, tr := newTestNavigator(loader)
	var out bytes.Buffer

	err := runInteractive(context.Background(), nav, tr, strings.NewReader(""), &out)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Wednesday, November 26th, 2025\nUnable to load listings.\n")
}

func TestRunInteractive_Cancelled(t *testing.T) {
	loader := new(MockLoader)
	loader.On("LoadListings", mock.Anything, mock.Anything).Return(engine.Listings{}, nil)

	nav, tr := newTestNavigator(loader)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A reader that never yields a line: only cancellation can end the loop.
	blocking, w := io.Pipe()
	defer func() { _ = w.Close() }()

	done := make(chan error, 1)
	go func() { done <- runInteractive(ctx, nav, tr, blocking, &bytes.Buffer{}) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("interactive loop ignored cancellation")
	}
}
