package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPConfig configures the HTTP data source.
//
// Zero values are given sensible defaults:
//   - Timeout:        30s
//   - MaxRetries:     3
//   - InitialBackoff: 200ms
//   - MaxBackoff:     5s
type HTTPConfig struct {
	// Timeout is the per-request timeout applied at the http.Client level.
	Timeout time.Duration

	// MaxRetries is the number of retry attempts after the initial request.
	// MaxRetries=0 means only the initial attempt.
	MaxRetries int

	// InitialBackoff is the backoff for the first retry; each subsequent
	// retry doubles it up to MaxBackoff.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Transport optionally overrides the http.Client transport; injectable
	// for tests.
	Transport http.RoundTripper
}

// HTTP fetches pipeline input over HTTP GET with retry and exponential
// backoff for transient failures (connection errors and 5xx responses).
type HTTP struct {
	url            string
	client         *http.Client
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration

	// sleep is injectable to make tests fast and deterministic.
	sleep func(ctx context.Context, d time.Duration) error
}

// sleepWithContext waits for d but aborts early when ctx is canceled.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NewHTTP returns an HTTP data source for url.
func NewHTTP(url string, cfg HTTPConfig) *HTTP {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	} else if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}
	return &HTTP{
		url:            url,
		client:         &http.Client{Timeout: cfg.Timeout, Transport: cfg.Transport},
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		sleep:          sleepWithContext,
	}
}

// Open performs the GET, retrying transient failures, and returns the
// response body. Non-2xx status codes other than 5xx fail immediately.
func (h *HTTP) Open(ctx context.Context) (io.ReadCloser, error) {
	backoff := h.initialBackoff
	var lastErr error

	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if attempt > 0 {
			if err := h.sleep(ctx, backoff); err != nil {
				return nil, err
			}
			backoff *= 2
			if backoff > h.maxBackoff {
				backoff = h.maxBackoff
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
		if err != nil {
			return nil, fmt.Errorf("build request %s: %w", h.url, err)
		}

		resp, err := h.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("fetch %s: %s", h.url, resp.Status)
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: %s", h.url, resp.Status)
		}
		return resp.Body, nil
	}

	return nil, fmt.Errorf("fetch %s: retries exhausted: %w", h.url, lastErr)
}
