// CineCheck - LLM Movie Recommendation Validation
// Copyright 2026 CineCheck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinecheck/cinecheck

// Package apiclient provides the HTTP client used for all outbound movie
// metadata requests (TMDB, OMDb, Watchmode).
//
// The client wraps a shared http.Client with:
//
//   - Per-request timeouts
//   - Automatic retries with exponential backoff (transient and quota
//     failures only)
//   - A closed error taxonomy (see Kind) so provider adapters handle every
//     failure class explicitly instead of string-matching
//
// A single Client is safe for concurrent use by any number of goroutines;
// connections are pooled and reused by the underlying transport.
package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/cinecheck/cinecheck/internal/logging"
)

// maxResponseBytes caps response body reads to prevent memory exhaustion
// from a misbehaving upstream.
const maxResponseBytes = 10 * 1024 * 1024

// Config holds client configuration.
type Config struct {
	// Timeout is the per-request timeout. Default: 3s.
	Timeout time.Duration

	// MaxRetries is the number of additional attempts after the first.
	// Default: 3 (so up to 4 attempts total).
	MaxRetries int

	// BackoffBase is the delay before the first retry; each subsequent
	// retry doubles it. Default: 500ms.
	BackoffBase time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:     3 * time.Second,
		MaxRetries:  3,
		BackoffBase: 500 * time.Millisecond,
	}
}

// Response is the successful result of a Get call. The body has already
// been fully read and the connection returned to the pool.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// DecodeJSON unmarshals the response body into v.
func (r *Response) DecodeJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}

// Client is an HTTP GET client with retry, backoff, and error
// classification. Construct once at startup and inject into each provider
// adapter.
type Client struct {
	cfg  Config
	http *http.Client
}

// New creates a Client with the given configuration. Zero values fall back
// to defaults.
func New(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = def.BackoffBase
	}

	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Close releases pooled connections. Safe to call once at shutdown; the
// client must not be used afterwards.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// backoff returns the delay before retrying attempt (0-indexed):
// BackoffBase * 2^attempt.
func (c *Client) backoff(attempt int) time.Duration {
	return c.cfg.BackoffBase * (1 << attempt)
}

// shouldRetry reports whether a failure of the given kind at the given
// attempt (0-indexed) warrants another try.
func (c *Client) shouldRetry(kind Kind, attempt int) bool {
	if attempt >= c.cfg.MaxRetries {
		return false
	}
	return kind.Retryable()
}

// Get performs a GET request with retries and error classification.
//
// params are appended to the URL query; header entries are set on the
// request; label names the upstream API for logs and error messages
// (e.g. "TMDB"). On failure the returned error is always a *Error.
//
// Retries honor ctx: a canceled context aborts the backoff sleep and the
// in-flight request.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values, header http.Header, label string) (*Response, error) {
	reqURL := rawURL
	if len(params) > 0 {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, &Error{Kind: KindUnknown, Message: fmt.Sprintf("%s request failed: invalid URL", label), Err: err}
		}
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
		reqURL = u.String()
	}

	var lastErr *Error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		resp, apiErr := c.doOnce(ctx, reqURL, header, label)
		if apiErr == nil {
			if attempt > 0 {
				logging.Ctx(ctx).Info().
					Str("api", label).
					Int("attempts", attempt+1).
					Msg("Request succeeded after retry")
			}
			return resp, nil
		}

		lastErr = apiErr

		if !c.shouldRetry(apiErr.Kind, attempt) {
			lastErr.Message = fmt.Sprintf("%s request failed after %d attempt(s): %s", label, attempt+1, lastErr.Message)
			return nil, lastErr
		}

		delay := c.backoff(attempt)
		logging.Ctx(ctx).Warn().
			Str("api", label).
			Str("error_kind", apiErr.Kind.String()).
			Int("attempt", attempt+1).
			Int("max_attempts", c.cfg.MaxRetries+1).
			Dur("backoff", delay).
			Msg("Request failed, retrying")

		select {
		case <-ctx.Done():
			return nil, &Error{
				Kind:    KindTransient,
				Message: fmt.Sprintf("%s request canceled during backoff", label),
				Err:     ctx.Err(),
			}
		case <-time.After(delay):
		}
	}

	lastErr.Message = fmt.Sprintf("%s request failed after %d attempt(s): %s", label, c.cfg.MaxRetries+1, lastErr.Message)
	return nil, lastErr
}

// doOnce performs a single request attempt.
func (c *Client) doOnce(ctx context.Context, reqURL string, header http.Header, label string) (*Response, *Error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Message: "building request", Err: err}
	}

	req.Header.Set("User-Agent", "CineCheck/1.0")
	req.Header.Set("Accept", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Timeouts, connection failures, and anything else below the HTTP
		// layer are treated as transient.
		return nil, &Error{Kind: KindTransient, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &Error{Kind: KindTransient, Message: "reading response body", Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &Response{
			Status: resp.StatusCode,
			Header: resp.Header,
			Body:   body,
		}, nil
	}

	return nil, &Error{
		Kind:    classifyStatus(resp.StatusCode),
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("status %d: %s", resp.StatusCode, truncate(string(body), 200)),
	}
}

// truncate limits s to n bytes for log and error messages.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
