// CineCheck - LLM Movie Recommendation Validation
// Copyright 2026 CineCheck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinecheck/cinecheck

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/cinecheck/cinecheck/internal/cache"
	"github.com/cinecheck/cinecheck/internal/provider"
	"github.com/cinecheck/cinecheck/internal/validation"
)

// catalogStub recognizes "Inception" and reports everything else missing.
type catalogStub struct{}

func (catalogStub) Lookup(ctx context.Context, title string) provider.CatalogResult {
	if title == "Inception" {
		return provider.CatalogResult{
			Found:  true,
			Status: provider.StatusSuccess,
			Title:  "Inception",
			Year:   "2010",
			TMDBID: 27205,
		}
	}
	return provider.CatalogResult{Status: provider.StatusNotFound}
}

type factsStub struct{}

func (factsStub) Lookup(ctx context.Context, title string) provider.FactsResult {
	if title == "Inception" {
		return provider.FactsResult{
			Found:    true,
			Status:   provider.StatusSuccess,
			Title:    "Inception",
			Year:     "2010",
			Director: "Christopher Nolan",
		}
	}
	return provider.FactsResult{Status: provider.StatusNotFound}
}

// reporterStub is a fixed provider status for readiness tests.
type reporterStub struct {
	status provider.Status
}

func (s reporterStub) Status() provider.Status { return s.status }

// envelope mirrors APIResponse with raw data for per-test decoding.
type envelope struct {
	Status   string          `json:"status"`
	Data     json.RawMessage `json:"data"`
	Error    *APIError       `json:"error"`
	Metadata Metadata        `json:"metadata"`
}

func newTestServer(t *testing.T, reporters ...StatusReporter) *httptest.Server {
	t.Helper()

	if reporters == nil {
		reporters = []StatusReporter{
			reporterStub{provider.Status{Name: "tmdb", Enabled: true, Configured: true}},
			reporterStub{provider.Status{Name: "omdb", Enabled: true, Configured: false}},
		}
	}

	engine := validation.NewEngine(catalogStub{}, factsStub{}, nil)
	movieCache := cache.New(cache.Config{TTL: time.Hour, MaxSize: 100, Enabled: true})
	handler := NewHandler(engine, movieCache, reporters, false)

	middleware := NewMiddleware(&MiddlewareConfig{
		CORSAllowedOrigins: []string{"*"},
		RateLimitDisabled:  true,
	})

	srv := httptest.NewServer(NewRouter(handler, middleware).Setup())
	t.Cleanup(srv.Close)
	return srv
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decoding response envelope: %v", err)
	}
	return env
}

func TestValidateEndpoint(t *testing.T) {
	srv := newTestServer(t)

	body := `{"movies":[{"title":"Inception","year":"2010"},{"title":"The Totally Fake Movie"}]}`
	resp, err := http.Post(srv.URL+"/api/v1/validate", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	env := decodeEnvelope(t, resp)
	if env.Status != "success" {
		t.Errorf("envelope status = %q, want success", env.Status)
	}

	var result ValidateResponse
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decoding data: %v", err)
	}

	if result.BatchID == "" {
		t.Error("batch_id empty")
	}
	if result.Summary.TotalChecked != 2 {
		t.Errorf("total_checked = %d, want 2", result.Summary.TotalChecked)
	}
	if len(result.Valid) != 1 || result.Valid[0].Title != "Inception" {
		t.Errorf("valid = %+v, want Inception", result.Valid)
	}
	if len(result.Dropped) != 1 || result.Dropped[0].Title != "The Totally Fake Movie" {
		t.Errorf("dropped = %+v", result.Dropped)
	}
}

func TestValidateEndpointInvalidJSON(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/validate", "application/json", bytes.NewBufferString("{not json"))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	env := decodeEnvelope(t, resp)
	if env.Status != "error" || env.Error == nil {
		t.Fatalf("envelope = %+v, want error", env)
	}
	if env.Error.Code != "invalid_json" {
		t.Errorf("error code = %q, want invalid_json", env.Error.Code)
	}
}

func TestValidateEndpointEmptyMovies(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/validate", "application/json", bytes.NewBufferString(`{"movies":[]}`))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)
	if env.Error == nil || env.Error.Code != "invalid_request" {
		t.Errorf("error = %+v, want invalid_request", env.Error)
	}
}

func TestValidateEndpointMissingTitle(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/validate", "application/json",
		bytes.NewBufferString(`{"movies":[{"year":"2010"}]}`))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for missing title", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCacheStatsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/cache/stats")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	env := decodeEnvelope(t, resp)
	var stats cache.Stats
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatalf("decoding stats: %v", err)
	}
	if !stats.Enabled {
		t.Error("stats.enabled = false, want true")
	}
}

func TestCacheClearEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/cache/clear", "application/json",
		bytes.NewBufferString(`{"source":"tmdb"}`))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	// Unknown sources are rejected.
	resp, err = http.Post(srv.URL+"/api/v1/cache/clear", "application/json",
		bytes.NewBufferString(`{"source":"imdb"}`))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for unknown source", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestStatusEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/status")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	env := decodeEnvelope(t, resp)
	var data struct {
		Providers []provider.Status `json:"providers"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decoding status: %v", err)
	}
	if len(data.Providers) != 2 {
		t.Fatalf("providers = %d, want 2", len(data.Providers))
	}
	if data.Providers[0].Name != "tmdb" || !data.Providers[0].Configured {
		t.Errorf("providers[0] = %+v", data.Providers[0])
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/api/v1/health", "/api/v1/health/live", "/api/v1/health/ready"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s failed: %v", path, err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestHealthReadyNoProviders(t *testing.T) {
	srv := newTestServer(t,
		reporterStub{provider.Status{Name: "tmdb", Enabled: true, Configured: false}},
		reporterStub{provider.Status{Name: "omdb", Enabled: false, Configured: true}},
	)

	resp, err := http.Get(srv.URL + "/api/v1/health/ready")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 with no usable provider", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)
	if env.Error == nil || env.Error.Code != "not_ready" {
		t.Errorf("error = %+v, want not_ready", env.Error)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	srv := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/status", nil)
	req.Header.Set("X-Request-ID", "req-test-123")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if got := resp.Header.Get("X-Request-ID"); got != "req-test-123" {
		t.Errorf("response X-Request-ID = %q, want echoed", got)
	}
	env := decodeEnvelope(t, resp)
	if env.Metadata.RequestID != "req-test-123" {
		t.Errorf("metadata request_id = %q, want req-test-123", env.Metadata.RequestID)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
