// CineCheck - LLM Movie Recommendation Validation
// Copyright 2026 CineCheck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinecheck/cinecheck

package provider

import "strings"

// platformInfo is the display metadata for a known streaming platform.
type platformInfo struct {
	name  string
	color string
}

// knownPlatforms maps normalized platform keys to canonical display info.
// Unknown platforms keep their reported name with a neutral color.
var knownPlatforms = map[string]platformInfo{
	// Subscription services
	"netflix":           {"Netflix", "#E50914"},
	"amazon_prime":      {"Amazon Prime", "#00A8E1"},
	"prime":             {"Amazon Prime", "#00A8E1"},
	"disney_plus":       {"Disney+", "#113CCF"},
	"hulu":              {"Hulu", "#1CE783"},
	"hbo_max":           {"Max", "#B385FF"},
	"max":               {"Max", "#B385FF"},
	"apple_tv_plus":     {"Apple TV+", "#000000"},
	"apple_tv":          {"Apple TV+", "#000000"},
	"peacock":           {"Peacock", "#000000"},
	"paramount_plus":    {"Paramount+", "#0064FF"},
	"showtime":          {"Showtime", "#FF0000"},
	"starz":             {"Starz", "#000000"},
	"crunchyroll":       {"Crunchyroll", "#F47521"},
	"mubi":              {"MUBI", "#2B2B2B"},
	"criterion_channel": {"Criterion Channel", "#000000"},
	// Rental/Purchase
	"youtube":     {"YouTube", "#FF0000"},
	"google_play": {"Google Play", "#4285F4"},
	"vudu":        {"Vudu", "#3399FF"},
	"itunes":      {"iTunes", "#FB5BC5"},
	// Free services
	"tubi":     {"Tubi", "#FA382F"},
	"pluto_tv": {"Pluto TV", "#000000"},
	"kanopy":   {"Kanopy", "#5B5B5B"},
	"hoopla":   {"Hoopla", "#EB1C2C"},
}

// normalizePlatformKey canonicalizes a reported platform name for catalog
// matching.
func normalizePlatformKey(name string) string {
	key := strings.ToLower(name)
	key = strings.ReplaceAll(key, "+", "_plus")
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")
	return key
}

// lookupPlatform resolves display info for a platform name. Falls back to
// the reported name when the platform is not in the catalog.
func lookupPlatform(name string) platformInfo {
	key := normalizePlatformKey(name)
	if info, ok := knownPlatforms[key]; ok {
		return info
	}
	for known, info := range knownPlatforms {
		if strings.Contains(key, known) || strings.Contains(known, key) {
			return info
		}
	}
	return platformInfo{name: name, color: "#666666"}
}
