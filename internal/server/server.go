package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-listings/internal/config"
	"github.com/tartampluch/go-listings/internal/engine"
	"github.com/tartampluch/go-listings/internal/locale"
)

// ListingsLoader is satisfied by *engine.Loader.
type ListingsLoader interface {
	LoadListings(ctx context.Context, q engine.Query) (engine.Listings, error)
}

// cacheItem stores one rendered response and its metadata for HTTP caching.
type cacheItem struct {
	key      cacheKey
	data     []byte
	etag     string
	mime     string
	rendered time.Time
}

// listingsResponse is the JSON document served on config.RouteListings.
type listingsResponse struct {
	Date     string              `json:"date"`
	Label    string              `json:"label"`
	FilmOnly bool                `json:"film_only"`
	Message  string              `json:"message,omitempty"`
	Venues   []engine.VenueGroup `json:"venues"`
}

// ListingsServer serves listings as JSON and iCalendar over HTTP.
type ListingsServer struct {
	Port       string
	Loader     ListingsLoader
	Clock      engine.Clock
	Translator *locale.Translator
	Location   *time.Location // Venues' time zone; nil means time.Local

	// Locks override the venue and tag query parameters when set.
	Locks engine.Filters

	// cache uses atomic.Pointer for lock-free reads. It holds the most recent
	// response so bursts of identical requests hit the feed once.
	cache atomic.Pointer[cacheItem]
}

// NewListingsServer creates a new instance of the server.
func NewListingsServer(port string, loader ListingsLoader, tr *locale.Translator, locks engine.Filters) *ListingsServer {
	return &ListingsServer{
		Port:       port,
		Loader:     loader,
		Clock:      engine.RealClock{},
		Translator: tr,
		Locks:      locks,
	}
}

// Handler returns the routing table of the server.
func (s *ListingsServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteListings, s.handleListings)
	mux.HandleFunc(config.RouteCalendar, s.handleCalendar)
	return mux
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *ListingsServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

func (s *ListingsServer) handleListings(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, config.MimeJSON, s.renderJSON)
}

func (s *ListingsServer) handleCalendar(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, config.MimeTextCalendar, s.renderCalendar)
}

// serve runs one request through query parsing, the response cache, the
// loader and render, then writes it with HTTP caching support.
func (s *ListingsServer) serve(w http.ResponseWriter, r *http.Request, mime string, render func(engine.Listings, engine.Query) ([]byte, error)) {
	// 1. Method Validation
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	// 2. Query Parsing
	q, status, msg := s.parseQuery(r)
	if status != http.StatusOK {
		http.Error(w, msg, status)
		return
	}

	log := slog.With(
		config.LogKeyComponent, config.CompServer,
		config.LogKeyURL, r.URL.Path,
		config.LogKeyDate, q.Date,
	)

	// 3. Response Cache (Atomic / Lock-Free)
	key := cacheKey{path: r.URL.Path, query: q}
	item := s.cache.Load()
	if item == nil || item.key != key || s.now().Sub(item.rendered) > config.ServerCacheTTL {
		// 4. Load and Render
		if s.Loader == nil {
			log.Error(config.ErrLoaderMissing)
			http.Error(w, s.Translator.Msg(config.TKeyUnavailable), http.StatusBadGateway)
			return
		}

		listings, err := s.Loader.LoadListings(r.Context(), q)
		if err != nil {
			log.Warn(config.MsgLoadFailed, config.LogKeyError, err)
			http.Error(w, s.Translator.Msg(config.TKeyUnavailable), http.StatusBadGateway)
			return
		}

		data, err := render(listings, q)
		if err != nil {
			log.Error(config.ErrEncodeResp, config.LogKeyError, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		item = s.update(key, mime, data)
	} else {
		log.Debug(config.MsgCacheHit, config.LogKeyETag, item.etag)
	}

	// 5. Set Response Headers
	w.Header().Set(config.HeaderContentType, item.mime)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)

	// 6. Check Conditional Headers (Browser Caching)
	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	// 7. Serve Content
	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			log.Error(config.ErrWriteResp, config.LogKeyError, err)
		}
	}
}

// parseQuery resolves the listings query of a request. Locks take
// precedence over the venue and tag parameters; a missing date means today.
func (s *ListingsServer) parseQuery(r *http.Request) (engine.Query, int, string) {
	params := r.URL.Query()

	date := strings.TrimSpace(params.Get(config.ParamDate))
	if date == "" {
		date = engine.ISODate(s.now().In(s.location()))
	} else {
		d, err := engine.ParseISODate(date, s.location())
		if err != nil {
			return engine.Query{}, http.StatusBadRequest, config.HTTPMsgBadDate
		}
		date = engine.ISODate(d)
	}

	filters := engine.Filters{
		LockedVenue: strings.TrimSpace(params.Get(config.ParamVenue)),
		LockedTag:   strings.TrimSpace(params.Get(config.ParamTag)),
	}
	if s.Locks.LockedVenue != "" {
		filters.LockedVenue = s.Locks.LockedVenue
	}
	if s.Locks.LockedTag != "" {
		filters.LockedTag = s.Locks.LockedTag
	}

	filters.FilmOnly = s.Locks.FilmOnly
	if raw := params.Get(config.ParamFilmOnly); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return engine.Query{}, http.StatusBadRequest, config.HTTPMsgBadFilmOnly
		}
		filters.FilmOnly = v
	}

	return engine.Query{Date: date, Filters: filters}, http.StatusOK, ""
}

func (s *ListingsServer) renderJSON(l engine.Listings, q engine.Query) ([]byte, error) {
	resp := listingsResponse{
		Date:     l.Date,
		FilmOnly: q.Filters.FilmOnly,
		Venues:   l.Venues,
	}
	if resp.Venues == nil {
		resp.Venues = []engine.VenueGroup{}
	}
	if d, err := engine.ParseISODate(l.Date, s.location()); err == nil {
		resp.Label = s.Translator.FullDate(d)
	}
	if l.Empty() {
		resp.Message = s.Translator.Msg(config.TKeyNoListings)
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrEncodeResp, err)
	}
	return data, nil
}

func (s *ListingsServer) renderCalendar(l engine.Listings, _ engine.Query) ([]byte, error) {
	return engine.BuildCalendar(l, s.location(), s.now())
}

// update atomically replaces the cached response.
func (s *ListingsServer) update(key cacheKey, mime string, data []byte) *cacheItem {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	item := &cacheItem{
		key:      key,
		data:     data,
		etag:     etag,
		mime:     mime,
		rendered: s.now(),
	}

	// Any concurrent reader sees either the old or the new complete item.
	s.cache.Store(item)

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
	return item
}

func (s *ListingsServer) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

func (s *ListingsServer) location() *time.Location {
	if s.Location == nil {
		return time.Local
	}
	return s.Location
}

// cacheKey identifies a rendered response by route and effective query.
type cacheKey struct {
	path  string
	query engine.Query
}
