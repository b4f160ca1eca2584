// CineCheck - LLM Movie Recommendation Validation
// Copyright 2026 CineCheck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinecheck/cinecheck

package provider

import (
	"context"
	"net/url"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/cinecheck/cinecheck/internal/apiclient"
	"github.com/cinecheck/cinecheck/internal/cache"
	"github.com/cinecheck/cinecheck/internal/logging"
	"github.com/cinecheck/cinecheck/internal/metrics"
)

// OMDBConfig holds the OMDb adapter configuration.
type OMDBConfig struct {
	APIKey  string
	BaseURL string
	Enabled bool

	// RequestsPerSecond paces outbound calls. The free OMDb tier is limited
	// to 1000 requests/day, so the default is conservative. <= 0 uses the
	// default.
	RequestsPerSecond float64

	// DailyLimit caps calls per UTC day. <= 0 means unlimited.
	DailyLimit int
}

// DefaultOMDBConfig returns the default OMDb configuration (no API key).
func DefaultOMDBConfig() OMDBConfig {
	return OMDBConfig{
		BaseURL:           "https://www.omdbapi.com/",
		Enabled:           true,
		RequestsPerSecond: 5,
		DailyLimit:        1000,
	}
}

// OMDBClient looks up movies in the Open Movie Database. It supplies the
// factual fields TMDB lacks: director, IMDb rating, and Rotten Tomatoes
// score.
type OMDBClient struct {
	cfg     OMDBConfig
	client  *apiclient.Client
	cache   *cache.MovieCache
	breaker *gobreaker.CircuitBreaker[*apiclient.Response]
	limiter *rate.Limiter
	quota   *Quota
}

// NewOMDBClient creates an OMDb adapter.
func NewOMDBClient(cfg OMDBConfig, client *apiclient.Client, movieCache *cache.MovieCache) *OMDBClient {
	def := DefaultOMDBConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = def.RequestsPerSecond
	}

	return &OMDBClient{
		cfg:     cfg,
		client:  client,
		cache:   movieCache,
		breaker: newBreaker("omdb"),
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		quota:   NewQuota("omdb", cfg.DailyLimit, WindowDaily),
	}
}

// Enabled reports whether the adapter is configured for use.
func (o *OMDBClient) Enabled() bool {
	return o.cfg.Enabled && o.cfg.APIKey != ""
}

// Quota returns the adapter's daily quota tracker.
func (o *OMDBClient) Quota() *Quota {
	return o.quota
}

// omdbResponse is the subset of the OMDb payload we consume. OMDb signals
// lookup failure in-band with Response == "False" and HTTP 200.
type omdbResponse struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`

	Title      string       `json:"Title"`
	Year       string       `json:"Year"`
	Director   string       `json:"Director"`
	IMDBRating string       `json:"imdbRating"`
	IMDBID     string       `json:"imdbID"`
	Poster     string       `json:"Poster"`
	Ratings    []omdbRating `json:"Ratings"`
}

type omdbRating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

// Lookup fetches movie facts from OMDb by title. It never returns an
// error: failures are folded into the result's Found/Status fields.
func (o *OMDBClient) Lookup(ctx context.Context, title string) FactsResult {
	start := time.Now()

	if !o.cfg.Enabled {
		return FactsResult{Status: StatusDisabled, Elapsed: time.Since(start)}
	}
	if o.cfg.APIKey == "" {
		logging.Ctx(ctx).Warn().Msg("OMDb lookup skipped: no API key configured")
		return FactsResult{Status: StatusAuthError, ErrorKind: "auth", Elapsed: time.Since(start)}
	}

	if cached, ok := o.cache.Get(title, "", SourceOMDB); ok {
		if result, ok := cached.(FactsResult); ok {
			result.Elapsed = time.Since(start)
			return result
		}
	}

	if !o.quota.Allow() {
		logging.Ctx(ctx).Warn().Str("title", title).Msg("OMDb daily quota exhausted")
		return FactsResult{Status: StatusQuotaError, ErrorKind: "quota", Elapsed: time.Since(start)}
	}

	if err := o.limiter.Wait(ctx); err != nil {
		return FactsResult{Status: StatusError, ErrorKind: "transient", Elapsed: time.Since(start)}
	}

	params := url.Values{}
	params.Set("apikey", o.cfg.APIKey)
	params.Set("t", title)
	params.Set("type", "movie")
	params.Set("plot", "short")
	params.Set("r", "json")

	o.quota.Record()
	resp, err := o.breaker.Execute(func() (*apiclient.Response, error) {
		return o.client.Get(ctx, o.cfg.BaseURL, params, nil, "OMDb")
	})
	if err != nil {
		status, kind := statusForError(err)
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("title", title).
			Str("status", status).
			Msg("OMDb lookup failed")
		metrics.RecordExternalAPICall("omdb", status, time.Since(start))
		return FactsResult{Status: status, ErrorKind: kind, Elapsed: time.Since(start)}
	}

	var payload omdbResponse
	if err := resp.DecodeJSON(&payload); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("title", title).Msg("OMDb response decode failed")
		metrics.RecordExternalAPICall("omdb", StatusError, time.Since(start))
		return FactsResult{Status: StatusError, ErrorKind: "unknown", Elapsed: time.Since(start)}
	}

	if payload.Response != "True" {
		result := FactsResult{Status: StatusNotFound}
		o.cache.Set(title, result, "", SourceOMDB, 0)
		metrics.RecordExternalAPICall("omdb", StatusNotFound, time.Since(start))
		result.Elapsed = time.Since(start)
		return result
	}

	result := FactsResult{
		Found:          true,
		Status:         StatusSuccess,
		Title:          payload.Title,
		Year:           cache.NormalizeYear(payload.Year),
		Director:       omdbField(payload.Director),
		IMDBRating:     omdbField(payload.IMDBRating),
		RottenTomatoes: rottenTomatoesScore(payload.Ratings),
		IMDBID:         omdbField(payload.IMDBID),
		PosterURL:      omdbField(payload.Poster),
	}
	o.cache.Set(title, result, "", SourceOMDB, 0)
	metrics.RecordExternalAPICall("omdb", StatusSuccess, time.Since(start))

	result.Elapsed = time.Since(start)
	return result
}

// omdbField maps the OMDb "N/A" placeholder to an empty string.
func omdbField(v string) string {
	if v == "N/A" {
		return ""
	}
	return v
}

// rottenTomatoesScore pulls the Rotten Tomatoes entry from the OMDb Ratings
// array, e.g. "87%".
func rottenTomatoesScore(ratings []omdbRating) string {
	for _, r := range ratings {
		if r.Source == "Rotten Tomatoes" {
			return r.Value
		}
	}
	return ""
}
