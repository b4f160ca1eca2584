// CineCheck - LLM Movie Recommendation Validation
// Copyright 2026 CineCheck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinecheck/cinecheck

package validation

import (
	"strings"

	"github.com/cinecheck/cinecheck/internal/cache"
)

// TitleSimilarity scores how closely two movie titles match, in [0, 1].
//
// Scoring, in order:
//   - Exact normalized match: 1.0
//   - One normalized title contains the other: 0.9 (subtitle variants,
//     e.g. "Mad Max" vs "Mad Max: Fury Road")
//   - Otherwise, Jaccard similarity over the word sets, with typo
//     tolerance: when exactly one word differs on each side, the differing
//     pair is treated as matching if an ordered character alignment covers
//     at least 80% of the shorter word.
func TitleSimilarity(title1, title2 string) float64 {
	norm1 := cache.NormalizeTitle(title1)
	norm2 := cache.NormalizeTitle(title2)

	if norm1 == "" || norm2 == "" {
		return 0.0
	}
	if norm1 == norm2 {
		return 1.0
	}
	if strings.Contains(norm1, norm2) || strings.Contains(norm2, norm1) {
		return 0.9
	}

	words1 := wordSet(norm1)
	words2 := wordSet(norm2)

	intersection := 0
	for w := range words1 {
		if _, ok := words2[w]; ok {
			intersection++
		}
	}
	union := len(words1) + len(words2) - intersection
	if union == 0 {
		return 0.0
	}
	jaccard := float64(intersection) / float64(union)

	// Typo tolerance: with exactly one unmatched word on each side, a
	// near-match pair ("redemtion" vs "redemption") counts as matched.
	diff1 := unmatched(words1, words2)
	diff2 := unmatched(words2, words1)
	if len(diff1) == 1 && len(diff2) == 1 && likelyTypo(diff1[0], diff2[0]) {
		jaccard = float64(intersection+1) / float64(union)
	}

	return jaccard
}

// wordSet splits a normalized title into its unique words.
func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}

// unmatched returns the words of a that are absent from b.
func unmatched(a, b map[string]struct{}) []string {
	var out []string
	for w := range a {
		if _, ok := b[w]; !ok {
			out = append(out, w)
		}
	}
	return out
}

// likelyTypo reports whether two words are close enough to be a misspelling
// of each other. Both must be longer than 3 characters with a length
// difference of at most 2; an ordered character alignment must then cover
// at least 80% of the shorter word.
func likelyTypo(w1, w2 string) bool {
	if len(w1) <= 3 || len(w2) <= 3 {
		return false
	}
	diff := len(w1) - len(w2)
	if diff < -2 || diff > 2 {
		return false
	}

	matches := 0
	i, j := 0, 0
	for i < len(w1) && j < len(w2) {
		if w1[i] == w2[j] {
			matches++
			i++
			j++
			continue
		}
		switch {
		case len(w1) > len(w2):
			i++
		case len(w2) > len(w1):
			j++
		default:
			i++
			j++
		}
	}

	minLen := len(w1)
	if len(w2) < minLen {
		minLen = len(w2)
	}
	return minLen > 0 && float64(matches)/float64(minLen) >= 0.8
}
