package directory

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/tartampluch/go-kairos/internal/config"
	"github.com/tartampluch/go-kairos/internal/engine"
)

// HTTP downloads a JSON catalog. Network errors and 5xx responses are
// retried with exponential backoff; other statuses fail immediately.
type HTTP struct {
	Client *http.Client
	URL    string

	attempts uint
	delay    time.Duration
}

// NewHTTP creates a remote directory with the configured timeout.
func NewHTTP(rawURL string) *HTTP {
	return &HTTP{
		Client:   &http.Client{Timeout: config.HTTPTimeout},
		URL:      rawURL,
		attempts: config.RetryAttempts,
		delay:    config.RetryDelay,
	}
}

func (h *HTTP) List(ctx context.Context) ([]engine.City, error) {
	u, err := url.Parse(h.URL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	// Query strings may carry tokens and stay out of the logs.
	safeURL := u.Scheme + "://" + u.Host + u.Path
	log := slog.With(
		config.LogKeyComponent, config.CompDirectory,
		config.LogKeyURL, safeURL,
	)

	attempts := h.attempts
	if attempts == 0 {
		attempts = 1
	}

	var cities []engine.City
	err = retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set(config.HeaderUserAgent, config.UserAgent)

			resp, err := h.Client.Do(req)
			if err != nil {
				return err
			}
			defer func() { _ = resp.Body.Close() }()

			switch {
			case resp.StatusCode >= http.StatusInternalServerError:
				return fmt.Errorf("%s: %d", config.ErrUnexpectedHTTP, resp.StatusCode)
			case resp.StatusCode != http.StatusOK:
				log.Warn(config.ErrUnexpectedHTTP, config.LogKeyStatus, resp.StatusCode)
				return retry.Unrecoverable(fmt.Errorf("%s: %d", config.ErrUnexpectedHTTP, resp.StatusCode))
			}

			decoded, err := Decode(io.LimitReader(resp.Body, config.MaxHTTPResponseSize))
			if err != nil {
				return retry.Unrecoverable(err)
			}
			cities = decoded
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(h.delay),
		retry.MaxDelay(config.RetryMaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			log.Info(config.MsgFetchRetry, config.LogKeyAttempt, n+1, config.LogKeyError, err)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}

	log.Debug(config.MsgCatalogLoaded, config.LogKeyCount, len(cities))
	return cities, nil
}
