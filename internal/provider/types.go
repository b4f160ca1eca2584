// CineCheck - LLM Movie Recommendation Validation
// Copyright 2026 CineCheck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinecheck/cinecheck

// Package provider contains the adapters for the external movie metadata
// services: TMDB (catalog), OMDb (facts), and Watchmode (streaming
// availability, with TMDB watch-providers as fallback).
//
// Adapters never let transport errors escape: every failure is translated
// into a result struct with Found=false (or an empty offer list) and a
// status string, so one provider's outage can never abort cross-validation
// against the other. Each adapter sits behind the shared retrying HTTP
// client, a per-provider circuit breaker, request pacing, and the metadata
// cache.
package provider

import (
	"time"
)

// Lookup status values shared by all adapters.
const (
	StatusSuccess    = "success"
	StatusNotFound   = "not_found"
	StatusDisabled   = "disabled"
	StatusError      = "error"
	StatusAuthError  = "auth_error"
	StatusQuotaError = "quota_error"
)

// Cache source tags.
const (
	SourceTMDB      = "tmdb"
	SourceOMDB      = "omdb"
	SourceStreaming = "streaming"
)

// CatalogResult is the fixed-shape outcome of a TMDB title search.
type CatalogResult struct {
	Found  bool   `json:"found"`
	Status string `json:"status"`

	Title       string  `json:"title,omitempty"`
	Year        string  `json:"year,omitempty"`
	TMDBID      int64   `json:"tmdb_id,omitempty"`
	VoteAverage float64 `json:"vote_average,omitempty"`
	VoteCount   int     `json:"vote_count,omitempty"`
	PosterURL   string  `json:"poster_url,omitempty"`

	// ErrorKind is the apiclient error classification when Status is not
	// success/not_found.
	ErrorKind string `json:"error_kind,omitempty"`

	// Elapsed is the lookup duration, including cache hits (which report
	// near-zero).
	Elapsed time.Duration `json:"-"`
}

// FactsResult is the fixed-shape outcome of an OMDb title lookup.
type FactsResult struct {
	Found  bool   `json:"found"`
	Status string `json:"status"`

	Title          string `json:"title,omitempty"`
	Year           string `json:"year,omitempty"`
	Director       string `json:"director,omitempty"`
	IMDBRating     string `json:"imdb_rating,omitempty"`
	RottenTomatoes string `json:"rotten_tomatoes,omitempty"`
	IMDBID         string `json:"imdb_id,omitempty"`
	PosterURL      string `json:"poster_url,omitempty"`

	ErrorKind string        `json:"error_kind,omitempty"`
	Elapsed   time.Duration `json:"-"`
}

// OfferType categorizes how a streaming platform offers a title.
type OfferType string

const (
	OfferFree         OfferType = "free"
	OfferSubscription OfferType = "subscription"
	OfferRental       OfferType = "rental"
	OfferPurchase     OfferType = "purchase"
)

// Priority orders access types from most to least favorable. Lower wins
// when deduplicating offers for the same platform.
func (t OfferType) Priority() int {
	switch t {
	case OfferFree:
		return 0
	case OfferSubscription:
		return 1
	case OfferRental:
		return 2
	case OfferPurchase:
		return 3
	default:
		return 4
	}
}

// Offer is a single streaming availability entry.
type Offer struct {
	Name    string    `json:"name"`
	Type    OfferType `json:"type"`
	URL     string    `json:"url,omitempty"`
	LogoURL string    `json:"logo_url,omitempty"`
	Color   string    `json:"color,omitempty"`
}

// StreamingResult is the outcome of a streaming availability lookup.
// A failed lookup carries an empty offer list; callers treat streaming data
// as best-effort enrichment.
type StreamingResult struct {
	Status string `json:"status"`

	// Source names which upstream supplied the data: "watchmode" or "tmdb".
	Source string `json:"source,omitempty"`

	Offers []Offer `json:"offers"`

	Elapsed time.Duration `json:"-"`
}

// DedupeOffers collapses offers to one per platform, keeping the entry with
// the most favorable access type. Order of first appearance is preserved.
func DedupeOffers(offers []Offer) []Offer {
	if len(offers) <= 1 {
		return offers
	}

	best := make(map[string]int, len(offers))
	out := make([]Offer, 0, len(offers))

	for _, offer := range offers {
		idx, seen := best[offer.Name]
		if !seen {
			best[offer.Name] = len(out)
			out = append(out, offer)
			continue
		}
		if offer.Type.Priority() < out[idx].Type.Priority() {
			out[idx] = offer
		}
	}
	return out
}
