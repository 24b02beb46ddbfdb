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
	"sync/atomic"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"github.com/tartampluch/go-kairos/internal/config"
	"github.com/tartampluch/go-kairos/internal/engine"
)

// CityLister is the catalog view served by /api/cities.
type CityLister interface {
	All() []engine.City
	Err() error
}

// cacheItem stores the exported slot and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123, as HTTP headers require
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

// TimeServer serves the time lookup API and the last exported meeting slot.
type TimeServer struct {
	Addr      string
	Clock     engine.Clock
	projector *engine.Projector
	cities    CityLister

	// slot is read on every request and written on export only.
	slot    atomic.Pointer[cacheItem]
	handler atomic.Pointer[http.Handler]
	router  *httprouter.Router
}

// NewTimeServer builds the router. cities may be nil when no catalog is served.
func NewTimeServer(addr string, projector *engine.Projector, cities CityLister, origins []string) *TimeServer {
	s := &TimeServer{
		Addr:      addr,
		Clock:     engine.NewRealClock(),
		projector: projector,
		cities:    cities,
	}

	r := &httprouter.Router{
		RedirectTrailingSlash:  true,
		RedirectFixedPath:      true,
		HandleMethodNotAllowed: true,
		HandleOPTIONS:          true,
		NotFound: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, errorBody{Error: config.HTTPMsgNotFound}, http.StatusNotFound)
		}),
		MethodNotAllowed: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, errorBody{Error: config.HTTPMsgMethodNotAll}, http.StatusMethodNotAllowed)
		}),
	}
	r.GET(config.RouteTime, s.handleTime)
	r.GET(config.RouteAPITime, s.handleTime)
	r.GET(config.RouteCities, s.handleCities)
	r.GET(config.RouteSlot, s.handleSlot)
	r.HEAD(config.RouteSlot, s.handleSlot)
	r.GET(config.RouteHealth, func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		writeJSON(w, map[string]string{"status": config.HTTPMsgHealthy}, http.StatusOK)
	})
	s.router = r

	s.SetCORSOrigins(origins)
	return s
}

// SetCORSOrigins swaps the CORS policy without restarting the listener.
// An empty list allows every origin.
func (s *TimeServer) SetCORSOrigins(origins []string) {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	h := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}).Handler(s.router)
	s.handler.Store(&h)
}

func (s *TimeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	(*s.handler.Load()).ServeHTTP(w, r)
}

// Start listens on Addr and blocks until ctx is cancelled.
func (s *TimeServer) Start(ctx context.Context) error {
	if s.Addr == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         s.Addr,
		Handler:      s,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyAddr, s.Addr,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// UpdateSlot atomically replaces the calendar served at /slot.ics.
func (s *TimeServer) UpdateSlot(data []byte) {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	s.slot.Store(&cacheItem{
		data:         data,
		etag:         etag,
		lastModified: s.Clock.Now().UTC().Format(http.TimeFormat),
	})

	slog.Debug(config.MsgSlotUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
}

// handleTime answers GET /time?timezone=<IANA>[&offset=<minutes>].
func (s *TimeServer) handleTime(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	tz := q.Get(config.QueryTimezone)
	if tz == "" {
		writeJSON(w, errorBody{Error: config.HTTPMsgTimezoneRequired}, http.StatusBadRequest)
		return
	}

	at := s.Clock.Now()
	if raw := q.Get(config.QueryOffset); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes < -config.MaxQueryOffsetMinutes || minutes > config.MaxQueryOffsetMinutes {
			writeJSON(w, errorBody{Error: config.HTTPMsgInvalidOffset}, http.StatusBadRequest)
			return
		}
		at = at.Add(time.Duration(minutes) * time.Minute)
	}

	lookup, err := s.projector.Lookup(tz, at)
	switch {
	case errors.Is(err, engine.ErrInvalidTimezone):
		writeJSON(w, errorBody{Error: config.HTTPMsgInvalidTimezone}, http.StatusBadRequest)
		return
	case err != nil:
		slog.Error(config.HTTPMsgInternalErr,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyTimezone, tz,
			config.LogKeyError, err)
		writeJSON(w, errorBody{Error: config.HTTPMsgInternalErr}, http.StatusInternalServerError)
		return
	}

	slog.Debug(config.MsgLookupServed,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyTimezone, tz)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlNoStore)
	writeJSON(w, lookup, http.StatusOK)
}

// handleCities returns the catalog as a bare JSON array.
func (s *TimeServer) handleCities(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	if s.cities == nil || s.cities.Err() != nil {
		writeJSON(w, errorBody{Error: config.HTTPMsgCitiesFailed}, http.StatusInternalServerError)
		return
	}
	cities := s.cities.All()
	if cities == nil {
		cities = []engine.City{}
	}
	writeJSON(w, cities, http.StatusOK)
}

// handleSlot serves the exported slot with HTTP caching support.
func (s *TimeServer) handleSlot(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	item := s.slot.Load()
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		writeJSON(w, errorBody{Error: config.HTTPMsgSlotPending}, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil && !serverTime.After(clientTime) {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}

func writeJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err)
	}
}
