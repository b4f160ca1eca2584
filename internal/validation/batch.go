// CineCheck - LLM Movie Recommendation Validation
// Copyright 2026 CineCheck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinecheck/cinecheck

package validation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cinecheck/cinecheck/internal/logging"
	"github.com/cinecheck/cinecheck/internal/metrics"
	"github.com/cinecheck/cinecheck/internal/provider"
)

// maxBatchWorkers bounds concurrent validations within one batch. Each
// validation fans out to up to three providers internally, so a batch of 5
// can hold 15 requests in flight.
const maxBatchWorkers = 5

// Ratings aggregates the rating fields contributed by each source.
type Ratings struct {
	VoteAverage    float64 `json:"vote_average,omitempty"`
	VoteCount      int     `json:"vote_count,omitempty"`
	IMDBRating     string  `json:"imdb_rating,omitempty"`
	RottenTomatoes string  `json:"rotten_tomatoes,omitempty"`
}

// Identifiers holds the canonical IDs for an accepted movie.
type Identifiers struct {
	TMDBID int64  `json:"tmdb_id,omitempty"`
	IMDBID string `json:"imdb_id,omitempty"`
}

// Outcome summarizes the validation verdict carried on each output record.
type Outcome struct {
	IsValid     bool                  `json:"is_valid"`
	Confidence  float64               `json:"confidence"`
	Source      Source                `json:"source"`
	Corrections map[string]Correction `json:"corrections,omitempty"`
}

// EnrichedMovie is an accepted candidate merged with provider-derived
// metadata. Corrected fields carry the canonical value, with the proposed
// title preserved under OriginalTitle.
type EnrichedMovie struct {
	Title    string `json:"title"`
	Year     string `json:"year,omitempty"`
	Director string `json:"director,omitempty"`

	OriginalTitle string `json:"original_title,omitempty"`

	PosterURL   string           `json:"poster_url,omitempty"`
	Ratings     Ratings          `json:"ratings"`
	Identifiers Identifiers      `json:"identifiers"`
	Streaming   []provider.Offer `json:"streaming"`

	Validation Outcome `json:"validation"`
}

// DroppedMovie is a rejected candidate with the reason it was dropped.
type DroppedMovie struct {
	Title    string `json:"title"`
	Year     string `json:"year,omitempty"`
	Director string `json:"director,omitempty"`

	DropReason string  `json:"drop_reason"`
	Validation Outcome `json:"validation"`
}

// Summary aggregates a batch. ErroredCount tracks candidates whose
// validation failed internally (panic or malformed input); those appear in
// neither output list, so ValidCount + DroppedCount + ErroredCount equals
// TotalChecked.
type Summary struct {
	TotalChecked int `json:"total_checked"`
	ValidCount   int `json:"valid_count"`
	DroppedCount int `json:"dropped_count"`
	ErroredCount int `json:"errored_count"`

	// AvgLatencyMS is the mean of the individual validation latencies.
	AvgLatencyMS float64 `json:"avg_latency_ms"`

	// TotalLatencyMS is the batch wall-clock time. With effective
	// parallelism it is materially less than the sum of the individual
	// latencies.
	TotalLatencyMS float64 `json:"total_latency_ms"`
}

// itemResult pairs a candidate with its validation outcome for the
// collection channel.
type itemResult struct {
	candidate Candidate
	result    Result
	errored   bool
}

// ValidateList validates a batch of candidates across a bounded worker
// pool and splits them into accepted (enriched) and dropped lists.
//
// Output order is completion order, not input order. A candidate whose
// validation panics is logged and counted in Summary.ErroredCount; it
// appears in neither list and never aborts its siblings.
func (e *Engine) ValidateList(ctx context.Context, candidates []Candidate, opts Options) ([]EnrichedMovie, []DroppedMovie, Summary) {
	valid := []EnrichedMovie{}
	dropped := []DroppedMovie{}

	if len(candidates) == 0 {
		return valid, dropped, Summary{}
	}

	start := time.Now()
	log := logging.Ctx(ctx)

	batchID := logging.BatchIDFromContext(ctx)
	log.Info().
		Int("count", len(candidates)).
		Msg("Validating candidate batch")

	workers := len(candidates)
	if workers > maxBatchWorkers {
		workers = maxBatchWorkers
	}

	jobs := make(chan Candidate)
	results := make(chan itemResult, len(candidates))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				results <- e.validateOne(ctx, c, opts)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, c := range candidates {
			if c.ID == "" {
				c.ID = candidateID(batchID, i)
			}
			jobs <- c
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var (
		errored      int
		totalLatency float64
	)
	for item := range results {
		if item.errored {
			errored++
			continue
		}
		totalLatency += item.result.LatencyMS
		if item.result.ShouldDrop {
			dropped = append(dropped, newDroppedMovie(item.candidate, item.result))
		} else {
			valid = append(valid, newEnrichedMovie(item.candidate, item.result))
		}
	}

	elapsed := time.Since(start)
	summary := Summary{
		TotalChecked:   len(candidates),
		ValidCount:     len(valid),
		DroppedCount:   len(dropped),
		ErroredCount:   errored,
		TotalLatencyMS: float64(elapsed.Microseconds()) / 1000.0,
	}
	if n := len(valid) + len(dropped); n > 0 {
		summary.AvgLatencyMS = totalLatency / float64(n)
	}

	metrics.ObserveBatch(elapsed)

	log.Info().
		Int("valid", summary.ValidCount).
		Int("dropped", summary.DroppedCount).
		Int("errored", summary.ErroredCount).
		Float64("avg_latency_ms", summary.AvgLatencyMS).
		Float64("wall_ms", summary.TotalLatencyMS).
		Msg("Batch validation complete")

	return valid, dropped, summary
}

// validateOne runs a single validation, converting a panic into an errored
// item so one bad candidate cannot take down the batch.
func (e *Engine) validateOne(ctx context.Context, c Candidate, opts Options) (item itemResult) {
	item.candidate = c

	defer func() {
		if r := recover(); r != nil {
			item.errored = true
			logging.Ctx(ctx).Error().
				Str("candidate_id", c.ID).
				Str("title", c.Title).
				Interface("panic", r).
				Msg("Validation failed for candidate")
		}
	}()

	item.result = e.Validate(ctx, c, opts)
	return item
}

// candidateID derives a per-candidate correlation ID within a batch.
func candidateID(batchID string, index int) string {
	if batchID == "" {
		return fmt.Sprintf("m%d", index+1)
	}
	return fmt.Sprintf("%s_m%d", batchID, index+1)
}

// newEnrichedMovie merges provider metadata into an accepted candidate.
func newEnrichedMovie(c Candidate, r Result) EnrichedMovie {
	m := EnrichedMovie{
		Title:    c.Title,
		Year:     c.Year,
		Director: c.Director,
		Ratings: Ratings{
			VoteAverage:    r.TMDB.VoteAverage,
			VoteCount:      r.TMDB.VoteCount,
			IMDBRating:     r.OMDB.IMDBRating,
			RottenTomatoes: r.OMDB.RottenTomatoes,
		},
		Identifiers: Identifiers{
			TMDBID: r.TMDB.TMDBID,
			IMDBID: r.OMDB.IMDBID,
		},
		Streaming: provider.DedupeOffers(r.Streaming.Offers),
		Validation: Outcome{
			IsValid:     r.IsValid,
			Confidence:  r.Confidence,
			Source:      r.Source,
			Corrections: r.Corrections,
		},
	}
	if m.Streaming == nil {
		m.Streaming = []provider.Offer{}
	}

	// Posters come from the catalog source first, the facts source as
	// fallback.
	m.PosterURL = r.TMDB.PosterURL
	if m.PosterURL == "" {
		m.PosterURL = r.OMDB.PosterURL
	}

	// Apply corrections: canonical value wins, proposed title survives
	// under OriginalTitle.
	if corr, ok := r.Corrections["title"]; ok {
		m.OriginalTitle = corr.Old
		m.Title = corr.New
	}
	if corr, ok := r.Corrections["year"]; ok {
		m.Year = corr.New
	}
	if corr, ok := r.Corrections["director"]; ok {
		m.Director = corr.New
	}

	return m
}

// newDroppedMovie builds the rejected-candidate record.
func newDroppedMovie(c Candidate, r Result) DroppedMovie {
	return DroppedMovie{
		Title:      c.Title,
		Year:       c.Year,
		Director:   c.Director,
		DropReason: r.ErrorMessage,
		Validation: Outcome{
			IsValid:     r.IsValid,
			Confidence:  r.Confidence,
			Source:      r.Source,
			Corrections: r.Corrections,
		},
	}
}
