// CineCheck - LLM Movie Recommendation Validation
// Copyright 2026 CineCheck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinecheck/cinecheck

package validation

import (
	"github.com/cinecheck/cinecheck/internal/provider"
)

// Source classifies which providers confirmed a candidate.
type Source string

const (
	SourceNone Source = "none"
	SourceTMDB Source = "tmdb"
	SourceOMDB Source = "omdb"
	SourceBoth Source = "both"
)

// Correction records a field-level replacement of an LLM-proposed value
// with the provider-confirmed canonical value.
type Correction struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// Result is the outcome of validating one candidate. It is built once per
// Validate call and not mutated afterwards.
type Result struct {
	IsValid    bool    `json:"is_valid"`
	Confidence float64 `json:"confidence"`

	MatchedTitle    string `json:"matched_title,omitempty"`
	MatchedYear     string `json:"matched_year,omitempty"`
	MatchedDirector string `json:"matched_director,omitempty"`

	Source Source `json:"source"`

	// Corrections is keyed by field name: "title", "year", "director".
	Corrections map[string]Correction `json:"corrections,omitempty"`

	ShouldDrop   bool   `json:"should_drop"`
	ErrorMessage string `json:"error_message,omitempty"`

	LatencyMS float64 `json:"latency_ms"`

	// Raw provider payloads, retained for diagnostics.
	TMDB      provider.CatalogResult   `json:"tmdb_data"`
	OMDB      provider.FactsResult     `json:"omdb_data"`
	Streaming provider.StreamingResult `json:"streaming_data"`
}

// Corrected reports whether any field needed a correction.
func (r *Result) Corrected() bool {
	return len(r.Corrections) > 0
}
