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

// TMDBConfig holds the TMDB adapter configuration.
type TMDBConfig struct {
	APIKey       string
	BaseURL      string
	ImageBaseURL string
	Enabled      bool

	// RequestsPerSecond paces outbound calls. TMDB allows ~50 req/s; the
	// default of 20 stays well clear of that. <= 0 uses the default.
	RequestsPerSecond float64
}

// DefaultTMDBConfig returns the default TMDB configuration (no API key).
func DefaultTMDBConfig() TMDBConfig {
	return TMDBConfig{
		BaseURL:           "https://api.themoviedb.org/3",
		ImageBaseURL:      "https://image.tmdb.org/t/p/w500",
		Enabled:           true,
		RequestsPerSecond: 20,
	}
}

// TMDBClient looks up movies in The Movie Database catalog. It is the
// primary source for canonical titles, release years, and community vote
// data, and the fallback source for streaming availability.
type TMDBClient struct {
	cfg     TMDBConfig
	client  *apiclient.Client
	cache   *cache.MovieCache
	breaker *gobreaker.CircuitBreaker[*apiclient.Response]
	limiter *rate.Limiter
}

// NewTMDBClient creates a TMDB adapter.
func NewTMDBClient(cfg TMDBConfig, client *apiclient.Client, movieCache *cache.MovieCache) *TMDBClient {
	def := DefaultTMDBConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.ImageBaseURL == "" {
		cfg.ImageBaseURL = def.ImageBaseURL
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = def.RequestsPerSecond
	}

	return &TMDBClient{
		cfg:     cfg,
		client:  client,
		cache:   movieCache,
		breaker: newBreaker("tmdb"),
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}
}

// Enabled reports whether the adapter is configured for use.
func (t *TMDBClient) Enabled() bool {
	return t.cfg.Enabled && t.cfg.APIKey != ""
}

// tmdbSearchResponse is the subset of the TMDB /search/movie payload we
// consume.
type tmdbSearchResponse struct {
	Results []tmdbMovie `json:"results"`
}

type tmdbMovie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
	PosterPath  string  `json:"poster_path"`
}

// Lookup searches the TMDB catalog for a title. It never returns an error:
// every failure mode is folded into the result's Found/Status fields so the
// validation engine can keep cross-checking against other sources.
func (t *TMDBClient) Lookup(ctx context.Context, title string) CatalogResult {
	start := time.Now()

	if !t.cfg.Enabled {
		return CatalogResult{Status: StatusDisabled, Elapsed: time.Since(start)}
	}
	if t.cfg.APIKey == "" {
		logging.Ctx(ctx).Warn().Msg("TMDB lookup skipped: no API key configured")
		return CatalogResult{Status: StatusAuthError, ErrorKind: "auth", Elapsed: time.Since(start)}
	}

	if cached, ok := t.cache.Get(title, "", SourceTMDB); ok {
		if result, ok := cached.(CatalogResult); ok {
			result.Elapsed = time.Since(start)
			return result
		}
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return CatalogResult{Status: StatusError, ErrorKind: "transient", Elapsed: time.Since(start)}
	}

	params := url.Values{}
	params.Set("api_key", t.cfg.APIKey)
	params.Set("query", title)
	params.Set("include_adult", "false")

	resp, err := t.breaker.Execute(func() (*apiclient.Response, error) {
		return t.client.Get(ctx, t.cfg.BaseURL+"/search/movie", params, nil, "TMDB")
	})
	if err != nil {
		status, kind := statusForError(err)
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("title", title).
			Str("status", status).
			Msg("TMDB lookup failed")
		metrics.RecordExternalAPICall("tmdb", status, time.Since(start))
		return CatalogResult{Status: status, ErrorKind: kind, Elapsed: time.Since(start)}
	}

	var payload tmdbSearchResponse
	if err := resp.DecodeJSON(&payload); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("title", title).Msg("TMDB response decode failed")
		metrics.RecordExternalAPICall("tmdb", StatusError, time.Since(start))
		return CatalogResult{Status: StatusError, ErrorKind: "unknown", Elapsed: time.Since(start)}
	}

	if len(payload.Results) == 0 {
		result := CatalogResult{Status: StatusNotFound}
		t.cache.Set(title, result, "", SourceTMDB, 0)
		metrics.RecordExternalAPICall("tmdb", StatusNotFound, time.Since(start))
		result.Elapsed = time.Since(start)
		return result
	}

	movie := payload.Results[0]
	result := CatalogResult{
		Found:       true,
		Status:      StatusSuccess,
		Title:       movie.Title,
		Year:        releaseYear(movie.ReleaseDate),
		TMDBID:      movie.ID,
		VoteAverage: movie.VoteAverage,
		VoteCount:   movie.VoteCount,
		PosterURL:   t.posterURL(movie.PosterPath),
	}
	t.cache.Set(title, result, "", SourceTMDB, 0)
	metrics.RecordExternalAPICall("tmdb", StatusSuccess, time.Since(start))

	result.Elapsed = time.Since(start)
	return result
}

// tmdbProvidersResponse is the subset of /movie/{id}/watch/providers we
// consume, keyed by region code.
type tmdbProvidersResponse struct {
	Results map[string]tmdbRegionProviders `json:"results"`
}

type tmdbRegionProviders struct {
	Link     string         `json:"link"`
	Flatrate []tmdbProvider `json:"flatrate"`
	Rent     []tmdbProvider `json:"rent"`
	Buy      []tmdbProvider `json:"buy"`
	Free     []tmdbProvider `json:"free"`
	Ads      []tmdbProvider `json:"ads"`
}

type tmdbProvider struct {
	ProviderName string `json:"provider_name"`
	LogoPath     string `json:"logo_path"`
}

// WatchProviders fetches streaming availability from TMDB's watch-provider
// data for the given region. Used as a fallback when Watchmode is
// unavailable or over quota. Failures degrade to an empty offer list.
func (t *TMDBClient) WatchProviders(ctx context.Context, tmdbID int64, region string) StreamingResult {
	start := time.Now()

	if !t.cfg.Enabled || t.cfg.APIKey == "" || tmdbID == 0 {
		return StreamingResult{Status: StatusDisabled, Source: "tmdb", Offers: []Offer{}, Elapsed: time.Since(start)}
	}
	if region == "" {
		region = "US"
	}

	cacheKey := fmt.Sprintf("providers:%d:%s", tmdbID, region)
	if cached, ok := t.cache.Get(cacheKey, "", SourceStreaming); ok {
		if result, ok := cached.(StreamingResult); ok {
			result.Elapsed = time.Since(start)
			return result
		}
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return StreamingResult{Status: StatusError, Source: "tmdb", Offers: []Offer{}, Elapsed: time.Since(start)}
	}

	params := url.Values{}
	params.Set("api_key", t.cfg.APIKey)

	reqURL := fmt.Sprintf("%s/movie/%d/watch/providers", t.cfg.BaseURL, tmdbID)
	resp, err := t.breaker.Execute(func() (*apiclient.Response, error) {
		return t.client.Get(ctx, reqURL, params, nil, "TMDB")
	})
	if err != nil {
		status, _ := statusForError(err)
		metrics.RecordExternalAPICall("tmdb", status, time.Since(start))
		return StreamingResult{Status: status, Source: "tmdb", Offers: []Offer{}, Elapsed: time.Since(start)}
	}

	var payload tmdbProvidersResponse
	if err := resp.DecodeJSON(&payload); err != nil {
		metrics.RecordExternalAPICall("tmdb", StatusError, time.Since(start))
		return StreamingResult{Status: StatusError, Source: "tmdb", Offers: []Offer{}, Elapsed: time.Since(start)}
	}

	regional, ok := payload.Results[region]
	if !ok {
		result := StreamingResult{Status: StatusNotFound, Source: "tmdb", Offers: []Offer{}}
		t.cache.Set(cacheKey, result, "", SourceStreaming, streamingCacheTTL)
		metrics.RecordExternalAPICall("tmdb", StatusNotFound, time.Since(start))
		result.Elapsed = time.Since(start)
		return result
	}

	var offers []Offer
	offers = appendTMDBOffers(offers, regional.Flatrate, OfferSubscription, regional.Link)
	offers = appendTMDBOffers(offers, regional.Rent, OfferRental, regional.Link)
	offers = appendTMDBOffers(offers, regional.Buy, OfferPurchase, regional.Link)
	offers = appendTMDBOffers(offers, regional.Free, OfferFree, regional.Link)
	offers = appendTMDBOffers(offers, regional.Ads, OfferFree, regional.Link)

	result := StreamingResult{
		Status: StatusSuccess,
		Source: "tmdb",
		Offers: DedupeOffers(offers),
	}
	t.cache.Set(cacheKey, result, "", SourceStreaming, streamingCacheTTL)
	metrics.RecordExternalAPICall("tmdb", StatusSuccess, time.Since(start))

	result.Elapsed = time.Since(start)
	return result
}

// appendTMDBOffers converts one access-type bucket of TMDB providers.
func appendTMDBOffers(offers []Offer, providers []tmdbProvider, offerType OfferType, link string) []Offer {
	for _, p := range providers {
		info := lookupPlatform(p.ProviderName)
		offer := Offer{
			Name:  info.name,
			Type:  offerType,
			URL:   link,
			Color: info.color,
		}
		if p.LogoPath != "" {
			offer.LogoURL = "https://image.tmdb.org/t/p/w92" + p.LogoPath
		}
		offers = append(offers, offer)
	}
	return offers
}

// posterURL joins the image base with a poster path, or returns "" when the
// movie has no poster.
func (t *TMDBClient) posterURL(path string) string {
	if path == "" {
		return ""
	}
	return t.cfg.ImageBaseURL + path
}

// releaseYear extracts the year from a TMDB release_date ("2010-07-16").
func releaseYear(releaseDate string) string {
	if len(releaseDate) < 4 {
		return ""
	}
	year := releaseDate[:4]
	if _, err := strconv.Atoi(year); err != nil {
		return ""
	}
	return year
}
