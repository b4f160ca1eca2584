// CineCheck - LLM Movie Recommendation Validation
// Copyright 2026 CineCheck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinecheck/cinecheck

package validation

import "testing"

func TestTitleSimilarityExact(t *testing.T) {
	if got := TitleSimilarity("Inception", "Inception"); got != 1.0 {
		t.Errorf("identical titles = %f, want 1.0", got)
	}
	if got := TitleSimilarity("The Matrix", "the matrix"); got != 1.0 {
		t.Errorf("case variant = %f, want 1.0", got)
	}
	if got := TitleSimilarity("  Inception!!  ", "Inception"); got != 1.0 {
		t.Errorf("punctuation variant = %f, want 1.0", got)
	}
}

func TestTitleSimilarityContainment(t *testing.T) {
	got := TitleSimilarity("Mad Max", "Mad Max Fury Road")
	if got != 0.9 {
		t.Errorf("containment = %f, want 0.9", got)
	}
}

func TestTitleSimilarityDisjoint(t *testing.T) {
	got := TitleSimilarity("Inception", "Casablanca")
	if got != 0.0 {
		t.Errorf("disjoint titles = %f, want 0.0", got)
	}
}

func TestTitleSimilarityEmpty(t *testing.T) {
	if got := TitleSimilarity("", "Inception"); got != 0.0 {
		t.Errorf("empty title = %f, want 0.0", got)
	}
	if got := TitleSimilarity("!!!", "Inception"); got != 0.0 {
		t.Errorf("punctuation-only title = %f, want 0.0", got)
	}
}

func TestTitleSimilarityTypoTolerance(t *testing.T) {
	// One misspelled word in a multi-word title: the typo pair counts as
	// matched, so the adjusted Jaccard is 3/4 instead of 2/4.
	got := TitleSimilarity("The Shawshank Redemtion", "The Shawshank Redemption")
	if got != 0.75 {
		t.Errorf("typo variant = %f, want 0.75", got)
	}

	// Without the typo credit the score would fall below the confirmation
	// threshold; with it a both-source match stays valid.
	if got < 0.7 {
		t.Errorf("typo variant = %f, want >= 0.7", got)
	}
}

func TestTitleSimilarityTypoRequiresLongWords(t *testing.T) {
	// Short differing words (<= 3 chars) get no typo credit.
	a := TitleSimilarity("The Big Cat", "The Big Car")
	b := TitleSimilarity("The Big Lebowski", "The Big Lebowsky")
	if a >= b {
		t.Errorf("short-word typo %f >= long-word typo %f, want less", a, b)
	}
}

func TestTitleSimilarityPartialOverlap(t *testing.T) {
	// 2 shared words of 4 total: Jaccard = 0.5.
	got := TitleSimilarity("Blade Runner", "Blade Runner 2049 Remastered")
	if got != 0.9 {
		// Containment branch fires here since "blade runner" is a substring.
		t.Errorf("substring overlap = %f, want 0.9", got)
	}

	got = TitleSimilarity("Star Wars Episode", "Star Trek Episode")
	// Shared {star, episode}, union {star, wars, trek, episode} = 0.5,
	// and "wars"/"trek" are not a typo pair (alignment below 80%).
	if got != 0.5 {
		t.Errorf("partial overlap = %f, want 0.5", got)
	}
}
