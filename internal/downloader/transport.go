package downloader

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/famomatic/ytstream/internal/metrics"
	"github.com/famomatic/ytstream/internal/types"
)

// TransportConfig controls retry/backoff behavior for downloader HTTP requests.
type TransportConfig struct {
	MaxRetries               int           `yaml:"max_retries" json:"maxRetries"`
	InitialBackoff           time.Duration `yaml:"initial_backoff" json:"initialBackoff"`
	MaxBackoff               time.Duration `yaml:"max_backoff" json:"maxBackoff"`
	RetryStatusCodes         []int         `yaml:"retry_status_codes" json:"retryStatusCodes"`
	SkipUnavailableFragments bool          `yaml:"skip_unavailable_fragments" json:"skipUnavailableFragments"`
	MaxSkippedFragments      int           `yaml:"max_skipped_fragments" json:"maxSkippedFragments"`
}

// DefaultTransportConfig retries transient failures three times.
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{MaxRetries: 3}
}

type effectiveTransportConfig struct {
	TransportConfig
}

// retryAfterError carries the Retry-After hint of a failed response.
type retryAfterError struct {
	*types.HTTPStatusError
	RetryAfter time.Duration
}

func (e *retryAfterError) Unwrap() error { return e.HTTPStatusError }

func normalizeTransportConfig(cfg TransportConfig) effectiveTransportConfig {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 3 * time.Second
	}
	if len(cfg.RetryStatusCodes) == 0 {
		cfg.RetryStatusCodes = []int{
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
		}
	}
	return effectiveTransportConfig{cfg}
}

func (c effectiveTransportConfig) backoffFor(attempt int) time.Duration {
	backoff := c.InitialBackoff
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if backoff > c.MaxBackoff {
			return c.MaxBackoff
		}
	}
	return backoff
}

func isRetryableError(err error, cfg effectiveTransportConfig) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *types.HTTPStatusError
	if errors.As(err, &statusErr) {
		for _, code := range cfg.RetryStatusCodes {
			if statusErr.StatusCode == code {
				return true
			}
		}
		return false
	}
	return true
}

func shouldSkipFragmentError(err error, cfg effectiveTransportConfig) bool {
	if !cfg.SkipUnavailableFragments {
		return false
	}
	var statusErr *types.HTTPStatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	return statusErr.StatusCode == http.StatusNotFound || statusErr.StatusCode == http.StatusGone
}

func waitBackoff(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// fetcher issues GETs with retries, reporting request/response/retry
// events and counting retries under its transport label.
type fetcher struct {
	client    *http.Client
	header    http.Header
	cfg       effectiveTransportConfig
	events    *emitter
	transport string
}

// open performs a GET with retries and returns the response of the first
// attempt with an acceptable status. The caller closes the body.
func (f *fetcher) open(ctx context.Context, rawURL string, header http.Header, accept ...int) (*http.Response, error) {
	if len(accept) == 0 {
		accept = []int{http.StatusOK}
	}
	var lastErr error
	for attempt := 0; attempt <= f.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			metrics.TransportRetries.WithLabelValues(f.transport).Inc()
			f.events.emit(Event{Kind: EventRetry, URL: rawURL, Attempt: attempt, Err: lastErr})
		}
		resp, err := f.once(ctx, rawURL, header, accept)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !isRetryableError(lastErr, f.cfg) || attempt == f.cfg.MaxRetries {
			break
		}
		backoff := f.cfg.backoffFor(attempt)
		var ra *retryAfterError
		if errors.As(lastErr, &ra) && ra.RetryAfter > backoff {
			backoff = ra.RetryAfter
		}
		if err := waitBackoff(ctx, backoff); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func (f *fetcher) once(ctx context.Context, rawURL string, header http.Header, accept []int) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	applyRequestHeaders(req, header)
	applyRequestHeaders(req, f.header)
	f.events.emit(Event{Kind: EventRequest, URL: rawURL})

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	for _, code := range accept {
		if resp.StatusCode == code {
			f.events.emit(Event{Kind: EventResponse, URL: rawURL, Response: resp})
			return resp, nil
		}
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
	return nil, &retryAfterError{
		HTTPStatusError: &types.HTTPStatusError{URL: rawURL, StatusCode: resp.StatusCode},
		RetryAfter:      parseRetryAfter(resp.Header.Get("Retry-After")),
	}
}

// get reads a whole body with retries; read failures are retried too.
func (f *fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= f.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := waitBackoff(ctx, f.cfg.backoffFor(attempt-1)); err != nil {
				return nil, err
			}
		}
		resp, err := f.open(ctx, rawURL, nil)
		if err != nil {
			return nil, err
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err == nil {
			return body, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

func parseRetryAfter(raw string) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(raw); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(raw); err == nil {
		d := time.Until(when)
		if d < 0 {
			return 0
		}
		return d
	}
	return 0
}
