package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-kairos/internal/config"
	"github.com/tartampluch/go-kairos/internal/engine"
)

var fixedNow = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

type fakeCities struct {
	cities []engine.City
	err    error
}

func (f fakeCities) All() []engine.City { return f.cities }
func (f fakeCities) Err() error          { return f.err }

func newTestServer(cities CityLister, origins ...string) *TimeServer {
	s := NewTimeServer("127.0.0.1:0", engine.NewProjector(nil), cities, origins)
	s.Clock = clockwork.NewFakeClockAt(fixedNow)
	return s
}

func do(t *testing.T, s *TimeServer, method, target string, headers map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	resp := w.Result()
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// -----------------------------------------------------------------------------
// Time Lookup
// -----------------------------------------------------------------------------

func TestHandler_TimeLookup(t *testing.T) {
	s := newTestServer(nil)

	for _, route := range []string{config.RouteTime, config.RouteAPITime} {
		t.Run(route, func(t *testing.T) {
			resp := do(t, s, http.MethodGet, route+"?timezone=Asia/Kolkata", nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, config.MimeJSON, resp.Header.Get(config.HeaderContentType))
			assert.Equal(t, config.CacheControlNoStore, resp.Header.Get(config.HeaderCacheControl))

			got := decodeBody[map[string]any](t, resp)
			assert.Equal(t, "Asia/Kolkata", got["timezone"])
			assert.Equal(t, "17:30:00", got["currentTime"])
			assert.EqualValues(t, fixedNow.UnixMilli(), got["timestamp"])
			assert.EqualValues(t, 5, got["offsetHours"])
			assert.EqualValues(t, 330, got["offsetMinutes"])
		})
	}
}

func TestHandler_TimeLookupWithOffset(t *testing.T) {
	s := newTestServer(nil)

	resp := do(t, s, http.MethodGet, "/time?timezone=UTC&offset=-45", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[engine.TimeLookup](t, resp)
	assert.Equal(t, "11:15:00", got.CurrentTime)

	resp = do(t, s, http.MethodGet, "/time?timezone=UTC&offset=527040", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "one leap year ahead is accepted")
	got = decodeBody[engine.TimeLookup](t, resp)
	assert.Equal(t, fixedNow.AddDate(0, 0, 366).UnixMilli(), got.Timestamp)

	for _, raw := range []string{"soon", "527041", "-527041", "200000000", "9223372036854775807", "99999999999999999999"} {
		t.Run(raw, func(t *testing.T) {
			resp := do(t, s, http.MethodGet, "/time?timezone=UTC&offset="+raw, nil)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, config.HTTPMsgInvalidOffset, decodeBody[errorBody](t, resp).Error)
		})
	}
}

func TestHandler_TimeLookupErrors(t *testing.T) {
	s := newTestServer(nil)

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"missing", "/time", config.HTTPMsgTimezoneRequired},
		{"empty", "/time?timezone=", config.HTTPMsgTimezoneRequired},
		{"unknown", "/time?timezone=Mars/Olympus", config.HTTPMsgInvalidTimezone},
		{"local is not a zone", "/time?timezone=Local", config.HTTPMsgInvalidTimezone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, s, http.MethodGet, tt.target, nil)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.want, decodeBody[errorBody](t, resp).Error)
		})
	}
}

// -----------------------------------------------------------------------------
// Routing & CORS
// -----------------------------------------------------------------------------

func TestRouter_NotFoundAndMethod(t *testing.T) {
	s := newTestServer(nil)

	resp := do(t, s, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, config.HTTPMsgNotFound, decodeBody[errorBody](t, resp).Error)

	resp = do(t, s, http.MethodPost, config.RouteTime, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Allow"), http.MethodGet)
}

func TestRouter_Health(t *testing.T) {
	resp := do(t, newTestServer(nil), http.MethodGet, config.RouteHealth, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCORS(t *testing.T) {
	s := newTestServer(nil, "https://allowed.example")

	resp := do(t, s, http.MethodGet, "/time?timezone=UTC", map[string]string{"Origin": "https://allowed.example"})
	assert.Equal(t, "https://allowed.example", resp.Header.Get("Access-Control-Allow-Origin"))

	resp = do(t, s, http.MethodGet, "/time?timezone=UTC", map[string]string{"Origin": "https://evil.example"})
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))

	s.SetCORSOrigins([]string{"https://evil.example"})
	resp = do(t, s, http.MethodGet, "/time?timezone=UTC", map[string]string{"Origin": "https://evil.example"})
	assert.Equal(t, "https://evil.example", resp.Header.Get("Access-Control-Allow-Origin"))

	s.SetCORSOrigins(nil)
	resp = do(t, s, http.MethodGet, "/time?timezone=UTC", map[string]string{"Origin": "https://anyone.example"})
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

// -----------------------------------------------------------------------------
// Cities
// -----------------------------------------------------------------------------

func TestHandler_Cities(t *testing.T) {
	tokyo := engine.City{ID: "tokyo", Name: "Tokyo", Country: "Japan", Timezone: "Asia/Tokyo"}

	resp := do(t, newTestServer(fakeCities{cities: []engine.City{tokyo}}), http.MethodGet, config.RouteCities, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []engine.City{tokyo}, decodeBody[[]engine.City](t, resp))

	resp = do(t, newTestServer(fakeCities{}), http.MethodGet, config.RouteCities, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, "[]", string(body))

	resp = do(t, newTestServer(fakeCities{err: errors.New("offline")}), http.MethodGet, config.RouteCities, nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, config.HTTPMsgCitiesFailed, decodeBody[errorBody](t, resp).Error)

	resp = do(t, newTestServer(nil), http.MethodGet, config.RouteCities, nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

// -----------------------------------------------------------------------------
// Exported Slot
// -----------------------------------------------------------------------------

func TestHandler_SlotServing(t *testing.T) {
	s := newTestServer(nil)
	ics := []byte("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR")
	s.UpdateSlot(ics)

	resp := do(t, s, http.MethodGet, config.RouteSlot, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeTextCalendar, resp.Header.Get(config.HeaderContentType))
	assert.Equal(t, config.MimeNoSniff, resp.Header.Get(config.HeaderXContentType))
	assert.NotEmpty(t, resp.Header.Get(config.HeaderETag))
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, ics, body)

	head := do(t, s, http.MethodHead, config.RouteSlot, nil)
	assert.Equal(t, http.StatusOK, head.StatusCode)
	body, _ = io.ReadAll(head.Body)
	assert.Empty(t, body)
}

func TestHandler_SlotCaching(t *testing.T) {
	s := newTestServer(nil)
	s.UpdateSlot([]byte("VERSION_1"))

	etag := do(t, s, http.MethodGet, config.RouteSlot, nil).Header.Get(config.HeaderETag)
	require.NotEmpty(t, etag)

	resp := do(t, s, http.MethodGet, config.RouteSlot, map[string]string{config.HeaderIfNoneMatch: etag})
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Empty(t, body)

	since := fixedNow.Add(time.Minute).Format(http.TimeFormat)
	resp = do(t, s, http.MethodGet, config.RouteSlot, map[string]string{config.HeaderIfModifiedSince: since})
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)

	s.UpdateSlot([]byte("VERSION_2"))
	resp = do(t, s, http.MethodGet, config.RouteSlot, map[string]string{config.HeaderIfNoneMatch: etag})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandler_SlotPending(t *testing.T) {
	resp := do(t, newTestServer(nil), http.MethodGet, config.RouteSlot, nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, config.RetryAfterSeconds, resp.Header.Get(config.HeaderRetryAfter))
}

// TestServer_RaceCondition runs writers and readers of the slot cache
// concurrently. Run with -race.
func TestServer_RaceCondition(t *testing.T) {
	s := newTestServer(nil)
	var wg sync.WaitGroup
	end := time.Now().Add(300 * time.Millisecond)

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; time.Now().Before(end); i++ {
				s.UpdateSlot([]byte(fmt.Sprintf("VERSION:%d-%d", id, i)))
				s.SetCORSOrigins([]string{fmt.Sprintf("https://%d.example", id)})
			}
		}(w)
	}
	for r := 0; r < 16; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) {
				w := httptest.NewRecorder()
				s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, config.RouteSlot, nil))
				if w.Code != http.StatusOK && w.Code != http.StatusServiceUnavailable {
					t.Errorf("unexpected status code during race test: %d", w.Code)
				}
			}
		}()
	}
	wg.Wait()
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestServer_Lifecycle(t *testing.T) {
	addr := freePort(t)
	s := NewTimeServer(addr, engine.NewProjector(nil), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)

	go func() { errChan <- s.Start(ctx) }()

	url := "http://" + addr + config.RouteTime + "?timezone=Europe/Paris"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 50*time.Millisecond, "server failed to listen in time")

	cancel()
	select {
	case err := <-errChan:
		assert.NoError(t, err, "graceful shutdown returns nil")
	case <-time.After(5 * time.Second):
		t.Fatal("server shutdown timed out")
	}
}

func TestServer_StartErrors(t *testing.T) {
	s := NewTimeServer("", engine.NewProjector(nil), nil, nil)
	assert.EqualError(t, s.Start(context.Background()), config.ErrPortRequired)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = l.Close() }()

	busy := NewTimeServer(l.Addr().String(), engine.NewProjector(nil), nil, nil)
	err = busy.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrServerStartup)
}
