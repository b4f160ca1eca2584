// CineCheck - LLM Movie Recommendation Validation
// Copyright 2026 CineCheck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinecheck/cinecheck

package provider

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/cinecheck/cinecheck/internal/apiclient"
	"github.com/cinecheck/cinecheck/internal/cache"
	"github.com/cinecheck/cinecheck/internal/logging"
	"github.com/cinecheck/cinecheck/internal/metrics"
)

// streamingCacheTTL is the shorter lifetime for availability data, which
// churns faster than catalog metadata.
const streamingCacheTTL = time.Hour

// WatchmodeConfig holds the Watchmode adapter configuration.
type WatchmodeConfig struct {
	APIKey  string
	BaseURL string
	Enabled bool
	Region  string

	// MonthlyLimit caps calls per calendar month. The free Watchmode tier
	// allows 1000. <= 0 means unlimited.
	MonthlyLimit int

	RequestsPerSecond float64
}

// DefaultWatchmodeConfig returns the default Watchmode configuration (no
// API key).
func DefaultWatchmodeConfig() WatchmodeConfig {
	return WatchmodeConfig{
		BaseURL:           "https://api.watchmode.com/v1",
		Enabled:           true,
		Region:            "US",
		MonthlyLimit:      1000,
		RequestsPerSecond: 2,
	}
}

// StreamingClient resolves where a movie can be watched. Watchmode is the
// primary source; when it is disabled, over quota, or failing, the client
// falls back to TMDB's watch-provider data. Streaming data is best-effort
// enrichment, so every failure path degrades to an empty offer list.
type StreamingClient struct {
	cfg     WatchmodeConfig
	client  *apiclient.Client
	cache   *cache.MovieCache
	tmdb    *TMDBClient
	breaker *gobreaker.CircuitBreaker[*apiclient.Response]
	limiter *rate.Limiter
	quota   *Quota
}

// NewStreamingClient creates a streaming availability adapter. tmdb may be
// nil, in which case no fallback is attempted.
func NewStreamingClient(cfg WatchmodeConfig, client *apiclient.Client, movieCache *cache.MovieCache, tmdb *TMDBClient) *StreamingClient {
	def := DefaultWatchmodeConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Region == "" {
		cfg.Region = def.Region
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = def.RequestsPerSecond
	}

	return &StreamingClient{
		cfg:     cfg,
		client:  client,
		cache:   movieCache,
		tmdb:    tmdb,
		breaker: newBreaker("watchmode"),
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		quota:   NewQuota("watchmode", cfg.MonthlyLimit, WindowMonthly),
	}
}

// Enabled reports whether the Watchmode adapter is configured for use.
func (s *StreamingClient) Enabled() bool {
	return s.cfg.Enabled && s.cfg.APIKey != ""
}

// Quota returns the adapter's monthly quota tracker.
func (s *StreamingClient) Quota() *Quota {
	return s.quota
}

// watchmodeSearchResponse is the subset of /search/ we consume.
type watchmodeSearchResponse struct {
	TitleResults []struct {
		ID int64 `json:"id"`
	} `json:"title_results"`
}

// watchmodeSource is one entry from /title/{id}/sources/.
type watchmodeSource struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Region string `json:"region"`
	WebURL string `json:"web_url"`
}

// Lookup resolves streaming offers for a movie. tmdbID may be zero, in
// which case it is resolved through the catalog adapter's cached search.
// The offer list is deduplicated to one entry per platform with the most
// favorable access type.
func (s *StreamingClient) Lookup(ctx context.Context, title string, tmdbID int64) StreamingResult {
	start := time.Now()

	if tmdbID == 0 && s.tmdb != nil {
		if catalog := s.tmdb.Lookup(ctx, title); catalog.Found {
			tmdbID = catalog.TMDBID
		}
	}

	cacheKey := fmt.Sprintf("%s:%d", title, tmdbID)
	if cached, ok := s.cache.Get(cacheKey, "", SourceStreaming); ok {
		if result, ok := cached.(StreamingResult); ok {
			result.Elapsed = time.Since(start)
			return result
		}
	}

	result := s.lookupWatchmode(ctx, tmdbID)
	if result.Status != StatusSuccess && s.tmdb != nil && tmdbID != 0 {
		logging.Ctx(ctx).Debug().
			Str("title", title).
			Str("watchmode_status", result.Status).
			Msg("Falling back to TMDB watch providers")
		fallback := s.tmdb.WatchProviders(ctx, tmdbID, s.cfg.Region)
		if fallback.Status == StatusSuccess {
			result = fallback
		}
	}

	if result.Status == StatusSuccess {
		s.cache.Set(cacheKey, result, "", SourceStreaming, streamingCacheTTL)
	}

	result.Elapsed = time.Since(start)
	return result
}

// lookupWatchmode runs the two-call Watchmode flow: resolve the Watchmode
// title ID from the TMDB ID, then fetch its sources.
func (s *StreamingClient) lookupWatchmode(ctx context.Context, tmdbID int64) StreamingResult {
	if !s.cfg.Enabled || s.cfg.APIKey == "" {
		return StreamingResult{Status: StatusDisabled, Source: "watchmode", Offers: []Offer{}}
	}
	if tmdbID == 0 {
		return StreamingResult{Status: StatusNotFound, Source: "watchmode", Offers: []Offer{}}
	}
	if !s.quota.Allow() {
		logging.Ctx(ctx).Warn().Msg("Watchmode monthly quota exhausted")
		return StreamingResult{Status: StatusQuotaError, Source: "watchmode", Offers: []Offer{}}
	}

	start := time.Now()

	params := url.Values{}
	params.Set("apiKey", s.cfg.APIKey)
	params.Set("search_field", "tmdb_movie_id")
	params.Set("search_value", strconv.FormatInt(tmdbID, 10))

	if err := s.limiter.Wait(ctx); err != nil {
		return StreamingResult{Status: StatusError, Source: "watchmode", Offers: []Offer{}}
	}

	s.quota.Record()
	resp, err := s.breaker.Execute(func() (*apiclient.Response, error) {
		return s.client.Get(ctx, s.cfg.BaseURL+"/search/", params, nil, "Watchmode")
	})
	if err != nil {
		status, _ := statusForError(err)
		metrics.RecordExternalAPICall("watchmode", status, time.Since(start))
		return StreamingResult{Status: status, Source: "watchmode", Offers: []Offer{}}
	}

	var search watchmodeSearchResponse
	if err := resp.DecodeJSON(&search); err != nil {
		metrics.RecordExternalAPICall("watchmode", StatusError, time.Since(start))
		return StreamingResult{Status: StatusError, Source: "watchmode", Offers: []Offer{}}
	}
	if len(search.TitleResults) == 0 {
		metrics.RecordExternalAPICall("watchmode", StatusNotFound, time.Since(start))
		return StreamingResult{Status: StatusNotFound, Source: "watchmode", Offers: []Offer{}}
	}

	return s.fetchSources(ctx, search.TitleResults[0].ID, start)
}

// fetchSources retrieves and converts the source list for a Watchmode
// title ID.
func (s *StreamingClient) fetchSources(ctx context.Context, watchmodeID int64, start time.Time) StreamingResult {
	if !s.quota.Allow() {
		return StreamingResult{Status: StatusQuotaError, Source: "watchmode", Offers: []Offer{}}
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return StreamingResult{Status: StatusError, Source: "watchmode", Offers: []Offer{}}
	}

	params := url.Values{}
	params.Set("apiKey", s.cfg.APIKey)
	params.Set("regions", s.cfg.Region)

	reqURL := fmt.Sprintf("%s/title/%d/sources/", s.cfg.BaseURL, watchmodeID)

	s.quota.Record()
	resp, err := s.breaker.Execute(func() (*apiclient.Response, error) {
		return s.client.Get(ctx, reqURL, params, nil, "Watchmode")
	})
	if err != nil {
		status, _ := statusForError(err)
		metrics.RecordExternalAPICall("watchmode", status, time.Since(start))
		return StreamingResult{Status: status, Source: "watchmode", Offers: []Offer{}}
	}

	var sources []watchmodeSource
	if err := resp.DecodeJSON(&sources); err != nil {
		metrics.RecordExternalAPICall("watchmode", StatusError, time.Since(start))
		return StreamingResult{Status: StatusError, Source: "watchmode", Offers: []Offer{}}
	}

	var offers []Offer
	for _, src := range sources {
		if src.Region != "" && src.Region != s.cfg.Region {
			continue
		}
		info := lookupPlatform(src.Name)
		offers = append(offers, Offer{
			Name:  info.name,
			Type:  watchmodeOfferType(src.Type),
			URL:   src.WebURL,
			Color: info.color,
		})
	}

	metrics.RecordExternalAPICall("watchmode", StatusSuccess, time.Since(start))
	return StreamingResult{
		Status: StatusSuccess,
		Source: "watchmode",
		Offers: DedupeOffers(offers),
	}
}

// watchmodeOfferType maps Watchmode source types to offer types. Unknown
// types are treated as purchase, the least favorable.
func watchmodeOfferType(t string) OfferType {
	switch t {
	case "sub":
		return OfferSubscription
	case "rent":
		return OfferRental
	case "buy":
		return OfferPurchase
	case "free", "ads":
		return OfferFree
	default:
		return OfferPurchase
	}
}
