// CineCheck - LLM Movie Recommendation Validation
// Copyright 2026 CineCheck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinecheck/cinecheck

package validation

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cinecheck/cinecheck/internal/provider"
)

// boomCatalog panics for one specific title and behaves like stubCatalog
// otherwise.
type boomCatalog struct {
	stubCatalog
	boomTitle string
}

func (b *boomCatalog) Lookup(ctx context.Context, title string) provider.CatalogResult {
	if title == b.boomTitle {
		panic("catalog lookup exploded")
	}
	return b.stubCatalog.Lookup(ctx, title)
}

func TestValidateListEmpty(t *testing.T) {
	engine := NewEngine(&stubCatalog{}, &stubFacts{}, nil)

	valid, dropped, summary := engine.ValidateList(context.Background(), nil, Options{})

	if valid == nil || dropped == nil {
		t.Error("output lists are nil, want empty slices")
	}
	if len(valid) != 0 || len(dropped) != 0 {
		t.Errorf("valid=%d dropped=%d for empty input, want 0/0", len(valid), len(dropped))
	}
	if summary != (Summary{}) {
		t.Errorf("summary = %+v for empty input, want zero value", summary)
	}
}

func TestValidateListPartialDrop(t *testing.T) {
	engine := NewEngine(
		&stubCatalog{results: map[string]provider.CatalogResult{
			"Inception": catalogFound("Inception", "2010"),
		}},
		&stubFacts{results: map[string]provider.FactsResult{
			"Inception": factsFound("Inception", "2010", "Christopher Nolan"),
		}},
		nil,
	)

	valid, dropped, summary := engine.ValidateList(context.Background(), []Candidate{
		{Title: "Inception"},
		{Title: "The Totally Fake Movie 12345"},
	}, Options{})

	if summary.TotalChecked != 2 {
		t.Errorf("total_checked = %d, want 2", summary.TotalChecked)
	}
	if len(valid) != 1 || summary.ValidCount != 1 {
		t.Fatalf("valid = %d (count %d), want 1", len(valid), summary.ValidCount)
	}
	if len(dropped) != 1 || summary.DroppedCount != 1 {
		t.Fatalf("dropped = %d (count %d), want 1", len(dropped), summary.DroppedCount)
	}

	if valid[0].Title != "Inception" {
		t.Errorf("valid title = %q, want Inception", valid[0].Title)
	}
	if dropped[0].Title != "The Totally Fake Movie 12345" {
		t.Errorf("dropped title = %q", dropped[0].Title)
	}
	if !strings.Contains(dropped[0].DropReason, "not found") {
		t.Errorf("drop reason %q does not mention not found", dropped[0].DropReason)
	}
	if summary.AvgLatencyMS < 0 {
		t.Errorf("avg latency = %f, want non-negative", summary.AvgLatencyMS)
	}
}

func TestValidateListParallelism(t *testing.T) {
	delay := 100 * time.Millisecond
	results := map[string]provider.CatalogResult{
		"A": catalogFound("A", "2001"),
		"B": catalogFound("B", "2002"),
		"C": catalogFound("C", "2003"),
	}
	facts := map[string]provider.FactsResult{
		"A": factsFound("A", "2001", "Director A"),
		"B": factsFound("B", "2002", "Director B"),
		"C": factsFound("C", "2003", "Director C"),
	}

	engine := NewEngine(
		&stubCatalog{results: results, delay: delay},
		&stubFacts{results: facts, delay: delay},
		nil,
	)

	start := time.Now()
	valid, _, summary := engine.ValidateList(context.Background(), []Candidate{
		{Title: "A"}, {Title: "B"}, {Title: "C"},
	}, Options{})
	elapsed := time.Since(start)

	if len(valid) != 3 {
		t.Fatalf("valid = %d, want 3", len(valid))
	}
	// Three candidates across three workers, 100ms per provider call:
	// sequential execution would take 300ms+.
	if elapsed > 250*time.Millisecond {
		t.Errorf("batch took %s, want concurrent execution well under 300ms", elapsed)
	}
	if summary.AvgLatencyMS < 100 {
		t.Errorf("avg latency = %f ms, want >= provider delay", summary.AvgLatencyMS)
	}
	if summary.TotalLatencyMS >= summary.AvgLatencyMS*3 {
		t.Errorf("wall clock %f ms not less than 3x avg %f ms, workers not parallel",
			summary.TotalLatencyMS, summary.AvgLatencyMS)
	}
}

func TestValidateListPanicCountedAsErrored(t *testing.T) {
	catalog := &boomCatalog{
		stubCatalog: stubCatalog{results: map[string]provider.CatalogResult{
			"Inception": catalogFound("Inception", "2010"),
		}},
		boomTitle: "Boom",
	}
	engine := NewEngine(catalog,
		&stubFacts{results: map[string]provider.FactsResult{
			"Inception": factsFound("Inception", "2010", "Christopher Nolan"),
		}},
		nil,
	)

	valid, dropped, summary := engine.ValidateList(context.Background(), []Candidate{
		{Title: "Inception"},
		{Title: "Boom"},
		{Title: "The Totally Fake Movie 12345"},
	}, Options{})

	if summary.ErroredCount != 1 {
		t.Errorf("errored_count = %d, want 1", summary.ErroredCount)
	}
	if summary.ValidCount != 1 || summary.DroppedCount != 1 {
		t.Errorf("valid=%d dropped=%d, want 1/1", summary.ValidCount, summary.DroppedCount)
	}
	if summary.ValidCount+summary.DroppedCount+summary.ErroredCount != summary.TotalChecked {
		t.Errorf("counts %d+%d+%d do not sum to total %d",
			summary.ValidCount, summary.DroppedCount, summary.ErroredCount, summary.TotalChecked)
	}

	// The panicking candidate appears in neither list.
	for _, m := range valid {
		if m.Title == "Boom" {
			t.Error("panicked candidate in valid list")
		}
	}
	for _, m := range dropped {
		if m.Title == "Boom" {
			t.Error("panicked candidate in dropped list")
		}
	}
}

func TestValidateListEnrichment(t *testing.T) {
	engine := NewEngine(
		&stubCatalog{results: map[string]provider.CatalogResult{
			"The Shawshank Redemtion": catalogFound("The Shawshank Redemption", "1994"),
		}},
		&stubFacts{results: map[string]provider.FactsResult{
			"The Shawshank Redemtion": {
				Found:          true,
				Status:         provider.StatusSuccess,
				Title:          "The Shawshank Redemption",
				Year:           "1994",
				Director:       "Frank Darabont",
				IMDBRating:     "9.3",
				RottenTomatoes: "89%",
				IMDBID:         "tt0111161",
			},
		}},
		&stubStreaming{offers: []provider.Offer{
			{Name: "Netflix", Type: provider.OfferPurchase},
			{Name: "Netflix", Type: provider.OfferSubscription},
			{Name: "Prime Video", Type: provider.OfferRental},
		}},
	)

	valid, _, _ := engine.ValidateList(context.Background(), []Candidate{
		{Title: "The Shawshank Redemtion", Year: "1995"},
	}, Options{})

	if len(valid) != 1 {
		t.Fatalf("valid = %d, want 1", len(valid))
	}
	m := valid[0]

	if m.Title != "The Shawshank Redemption" {
		t.Errorf("title = %q, want canonical", m.Title)
	}
	if m.OriginalTitle != "The Shawshank Redemtion" {
		t.Errorf("original_title = %q, want the proposed spelling", m.OriginalTitle)
	}
	if m.Year != "1994" {
		t.Errorf("year = %q, want corrected 1994", m.Year)
	}
	if m.Director != "Frank Darabont" {
		t.Errorf("director = %q", m.Director)
	}

	if m.PosterURL == "" {
		t.Error("poster URL empty, want catalog poster")
	}
	if m.Ratings.IMDBRating != "9.3" || m.Ratings.RottenTomatoes != "89%" {
		t.Errorf("ratings = %+v, want facts-source values merged", m.Ratings)
	}
	if m.Ratings.VoteAverage == 0 || m.Ratings.VoteCount == 0 {
		t.Errorf("ratings = %+v, want catalog votes merged", m.Ratings)
	}
	if m.Identifiers.TMDBID == 0 || m.Identifiers.IMDBID != "tt0111161" {
		t.Errorf("identifiers = %+v", m.Identifiers)
	}

	// Duplicate Netflix offers collapse to the subscription entry.
	if len(m.Streaming) != 2 {
		t.Fatalf("streaming = %d offers, want 2 after dedupe", len(m.Streaming))
	}
	if m.Streaming[0].Name != "Netflix" || m.Streaming[0].Type != provider.OfferSubscription {
		t.Errorf("first offer = %+v, want Netflix subscription", m.Streaming[0])
	}
}

func TestValidateListNoStreamingProvider(t *testing.T) {
	engine := NewEngine(
		&stubCatalog{results: map[string]provider.CatalogResult{
			"Inception": catalogFound("Inception", "2010"),
		}},
		&stubFacts{results: map[string]provider.FactsResult{
			"Inception": factsFound("Inception", "2010", "Christopher Nolan"),
		}},
		nil,
	)

	valid, _, _ := engine.ValidateList(context.Background(), []Candidate{
		{Title: "Inception"},
	}, Options{})

	if len(valid) != 1 {
		t.Fatalf("valid = %d, want 1", len(valid))
	}
	if valid[0].Streaming == nil {
		t.Error("streaming list is nil, want empty slice")
	}
	if len(valid[0].Streaming) != 0 {
		t.Errorf("streaming = %v, want empty", valid[0].Streaming)
	}
}
