// CineCheck - LLM Movie Recommendation Validation
// Copyright 2026 CineCheck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinecheck/cinecheck

// Package validation is the hallucination check at the heart of CineCheck.
//
// Every movie an LLM proposes is cross-checked against two independent
// metadata sources before it reaches a user. The engine queries both
// sources and the streaming-availability source in parallel, scores title
// similarity with typo tolerance, classifies the agreement into a
// confidence score, and decides whether to accept the candidate (possibly
// with field corrections) or drop it as a suspected hallucination.
package validation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cinecheck/cinecheck/internal/cache"
	"github.com/cinecheck/cinecheck/internal/logging"
	"github.com/cinecheck/cinecheck/internal/metrics"
	"github.com/cinecheck/cinecheck/internal/provider"
)

// similarityThreshold is the minimum title similarity for a provider match
// to count as a confirmation.
const similarityThreshold = 0.7

// validThreshold is the minimum confidence for a candidate to be accepted.
const validThreshold = 0.5

// CatalogProvider looks up a movie in a catalog-style source (canonical
// title, year, votes, poster).
type CatalogProvider interface {
	Lookup(ctx context.Context, title string) provider.CatalogResult
}

// FactsProvider looks up a movie in a facts-style source (director,
// ratings).
type FactsProvider interface {
	Lookup(ctx context.Context, title string) provider.FactsResult
}

// StreamingProvider resolves streaming availability. tmdbID may be zero.
type StreamingProvider interface {
	Lookup(ctx context.Context, title string, tmdbID int64) provider.StreamingResult
}

// Candidate is an LLM-proposed movie awaiting validation.
type Candidate struct {
	Title    string `json:"title" validate:"required,max=500"`
	Year     string `json:"year,omitempty" validate:"omitempty,max=32"`
	Director string `json:"director,omitempty" validate:"omitempty,max=200"`

	// ID correlates log lines for this candidate, e.g. "batch_ab12_m3".
	ID string `json:"id,omitempty"`

	// TMDBID may be supplied by the caller when already known; zero
	// otherwise.
	TMDBID int64 `json:"tmdb_id,omitempty"`
}

// Options tunes a single validation.
type Options struct {
	// RequireBothSources accepts a candidate only when both metadata
	// sources confirm it with confidence >= 0.7.
	RequireBothSources bool
}

// Engine validates candidates against the configured providers. Construct
// once at startup and share across requests; it holds no per-call state.
type Engine struct {
	catalog   CatalogProvider
	facts     FactsProvider
	streaming StreamingProvider
}

// NewEngine creates a validation engine. streaming may be nil, in which
// case accepted movies carry no availability data.
func NewEngine(catalog CatalogProvider, facts FactsProvider, streaming StreamingProvider) *Engine {
	return &Engine{
		catalog:   catalog,
		facts:     facts,
		streaming: streaming,
	}
}

// Validate checks one candidate against both metadata sources and the
// streaming source, all queried in parallel. It never returns an error:
// provider outages degrade to not-found and land in the confidence score.
func (e *Engine) Validate(ctx context.Context, c Candidate, opts Options) Result {
	start := time.Now()

	log := logging.Ctx(ctx)
	log.Info().
		Str("candidate_id", c.ID).
		Str("title", c.Title).
		Str("year", c.Year).
		Str("director", c.Director).
		Msg("Validating candidate")

	normalizedTitle := cache.NormalizeTitle(c.Title)
	normalizedYear := cache.NormalizeYear(c.Year)

	var (
		wg            sync.WaitGroup
		catalogResult provider.CatalogResult
		factsResult   provider.FactsResult
		streamResult  provider.StreamingResult
	)

	// Provider panics are captured here and re-raised on the calling
	// goroutine, where batch workers can recover them.
	panics := make(chan any, 3)
	capture := func() {
		if r := recover(); r != nil {
			panics <- r
		}
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		defer capture()
		catalogResult = e.catalog.Lookup(ctx, c.Title)
	}()
	go func() {
		defer wg.Done()
		defer capture()
		factsResult = e.facts.Lookup(ctx, c.Title)
	}()
	if e.streaming != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer capture()
			streamResult = e.streaming.Lookup(ctx, c.Title, c.TMDBID)
		}()
	}
	wg.Wait()

	select {
	case r := <-panics:
		panic(r)
	default:
	}

	var catalogSim, factsSim float64
	if catalogResult.Found && catalogResult.Title != "" {
		catalogSim = TitleSimilarity(c.Title, catalogResult.Title)
	}
	if factsResult.Found && factsResult.Title != "" {
		factsSim = TitleSimilarity(c.Title, factsResult.Title)
	}

	result := Result{
		Source:    SourceNone,
		TMDB:      catalogResult,
		OMDB:      factsResult,
		Streaming: streamResult,
	}

	// Confidence and source classification. Two weak matches never combine
	// into a pass; a fabricated title that loosely resembles two different
	// real movies must not slip through.
	switch {
	case catalogResult.Found && factsResult.Found:
		switch {
		case catalogSim >= similarityThreshold && factsSim >= similarityThreshold:
			result.Confidence = max(catalogSim, factsSim)
			result.Source = SourceBoth
			// The facts source is more authoritative for canonical fields.
			result.MatchedTitle = factsResult.Title
			result.MatchedYear = cache.NormalizeYear(factsResult.Year)
			result.MatchedDirector = factsResult.Director
		case catalogSim >= similarityThreshold:
			result.Confidence = catalogSim * 0.9
			result.Source = SourceTMDB
			result.MatchedTitle = catalogResult.Title
			result.MatchedYear = catalogResult.Year
		case factsSim >= similarityThreshold:
			result.Confidence = factsSim * 0.9
			result.Source = SourceOMDB
			result.MatchedTitle = factsResult.Title
			result.MatchedYear = cache.NormalizeYear(factsResult.Year)
			result.MatchedDirector = factsResult.Director
		default:
			result.Confidence = 0.0
			result.Source = SourceNone
		}
	case catalogResult.Found && catalogSim >= similarityThreshold:
		result.Confidence = catalogSim * 0.8
		result.Source = SourceTMDB
		result.MatchedTitle = catalogResult.Title
		result.MatchedYear = catalogResult.Year
	case factsResult.Found && factsSim >= similarityThreshold:
		result.Confidence = factsSim * 0.8
		result.Source = SourceOMDB
		result.MatchedTitle = factsResult.Title
		result.MatchedYear = cache.NormalizeYear(factsResult.Year)
		result.MatchedDirector = factsResult.Director
	}

	// Corrections: fields where the canonical value disagrees with the
	// proposal after normalization.
	corrections := make(map[string]Correction)
	if result.MatchedTitle != "" && cache.NormalizeTitle(result.MatchedTitle) != normalizedTitle {
		corrections["title"] = Correction{Old: c.Title, New: result.MatchedTitle}
	}
	if result.MatchedYear != "" && normalizedYear != "" && result.MatchedYear != normalizedYear {
		corrections["year"] = Correction{Old: c.Year, New: result.MatchedYear}
	}
	if result.MatchedDirector != "" && c.Director != "" &&
		cache.NormalizeTitle(result.MatchedDirector) != cache.NormalizeTitle(c.Director) {
		corrections["director"] = Correction{Old: c.Director, New: result.MatchedDirector}
	}
	if len(corrections) > 0 {
		result.Corrections = corrections
	}

	result.IsValid = result.Confidence >= validThreshold
	if opts.RequireBothSources {
		result.IsValid = result.Source == SourceBoth && result.Confidence >= similarityThreshold
	}
	result.ShouldDrop = !result.IsValid

	if result.ShouldDrop {
		if !catalogResult.Found && !factsResult.Found {
			result.ErrorMessage = fmt.Sprintf(
				"Movie %q not found in TMDB or OMDb. This may be a hallucinated recommendation.", c.Title)
		} else {
			result.ErrorMessage = fmt.Sprintf(
				"Movie %q found but with low confidence match (confidence: %.2f). Significant discrepancies detected.",
				c.Title, result.Confidence)
		}
	}

	elapsed := time.Since(start)
	result.LatencyMS = float64(elapsed.Microseconds()) / 1000.0

	log.Info().
		Str("candidate_id", c.ID).
		Bool("valid", result.IsValid).
		Float64("confidence", result.Confidence).
		Str("source", string(result.Source)).
		Float64("latency_ms", result.LatencyMS).
		Msg("Validation result")
	if result.Corrected() {
		log.Info().
			Str("candidate_id", c.ID).
			Interface("corrections", result.Corrections).
			Msg("Corrections applied")
	}
	if result.ShouldDrop {
		log.Warn().
			Str("candidate_id", c.ID).
			Str("reason", result.ErrorMessage).
			Msg("Candidate dropped")
	}

	switch {
	case result.ShouldDrop:
		metrics.RecordValidation("dropped")
	case result.Corrected():
		metrics.RecordValidation("corrected")
	default:
		metrics.RecordValidation("valid")
	}
	metrics.ObserveValidation(elapsed)

	return result
}
