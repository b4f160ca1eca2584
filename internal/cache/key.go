// CineCheck - LLM Movie Recommendation Validation
// Copyright 2026 CineCheck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinecheck/cinecheck

package cache

import (
	"regexp"
	"strings"
)

var (
	// punctRe strips punctuation except hyphens and apostrophes, which can
	// be meaningful in titles ("Spider-Man", "Ocean's Eleven").
	punctRe = regexp.MustCompile(`[^\w\s'-]`)

	// articleRe strips a single leading English article.
	articleRe = regexp.MustCompile(`^(a|an|the)\s+`)

	// yearRe extracts a plausible 4-digit release year from strings like
	// "2010", "2010-2012", or "2010 (TV Movie)".
	yearRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// NormalizeTitle canonicalizes a title for keying and comparison:
// lowercase, punctuation stripped (keeping hyphens and apostrophes), and
// internal whitespace collapsed. The leading article is NOT stripped here;
// that is a keying concern only.
func NormalizeTitle(title string) string {
	normalized := strings.ToLower(title)
	normalized = punctRe.ReplaceAllString(normalized, "")
	return strings.Join(strings.Fields(normalized), " ")
}

// NormalizeYear extracts the first 4-digit year token from a year string in
// any of its common shapes. Returns "" when no year can be extracted
// (including the OMDb "N/A" placeholder).
func NormalizeYear(year string) string {
	if year == "" || year == "N/A" {
		return ""
	}
	return yearRe.FindString(year)
}

// NormalizeKey builds the canonical cache key for (title, year, source).
//
// Normalization steps:
//  1. Lowercase the title
//  2. Strip punctuation except hyphens and apostrophes
//  3. Collapse internal whitespace
//  4. Strip a single leading article (a/an/the)
//  5. Append the extracted year, if any
//  6. Join as "source:title[:year]"
//
// The function is a pure function of its inputs and is idempotent over the
// title component, so case/spacing/article variants of the same title map
// to one key.
func NormalizeKey(title, year, source string) string {
	if title == "" {
		return source + ":"
	}

	normalized := NormalizeTitle(title)
	normalized = articleRe.ReplaceAllString(normalized, "")

	parts := []string{source, normalized}
	if y := NormalizeYear(year); y != "" {
		parts = append(parts, y)
	}
	return strings.Join(parts, ":")
}
