package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-kairos/internal/config"
)

func fastHTTP(url string) *HTTP {
	h := NewHTTP(url)
	h.delay = time.Millisecond
	return h
}

func TestHTTP_List(t *testing.T) {
	var agent string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get(config.HeaderUserAgent)
		w.Header().Set(config.HeaderContentType, config.MimeJSON)
		_, _ = w.Write([]byte(objectCatalog))
	}))
	defer ts.Close()

	cities, err := fastHTTP(ts.URL + "/cities.json?token=secret").List(context.Background())
	require.NoError(t, err)
	assert.Len(t, cities, 2)
	assert.Equal(t, config.UserAgent, agent)
}

func TestHTTP_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(objectCatalog))
	}))
	defer ts.Close()

	cities, err := fastHTTP(ts.URL).List(context.Background())
	require.NoError(t, err)
	assert.Len(t, cities, 2)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTP_ClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := fastHTTP(ts.URL).List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrUnexpectedHTTP)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTP_GivesUpAfterAttempts(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := fastHTTP(ts.URL).List(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(config.RetryAttempts), calls.Load())
}

func TestHTTP_MalformedBodyIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte("<html>"))
	}))
	defer ts.Close()

	_, err := fastHTTP(ts.URL).List(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTP_RejectsBadURLs(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"ftp://example.com/cities.json", config.ErrProtocol},
		{"file:///etc/passwd", config.ErrProtocol},
		{"http://[::1", config.ErrInvalidURL},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			_, err := fastHTTP(tt.url).List(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
