// CineCheck - LLM Movie Recommendation Validation
// Copyright 2026 CineCheck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinecheck/cinecheck

package provider

import "time"

// Status describes one upstream provider's operational state for the
// status endpoint.
type Status struct {
	Name       string `json:"name"`
	Enabled    bool   `json:"enabled"`
	Configured bool   `json:"configured"`

	QuotaUsed  int        `json:"quota_used,omitempty"`
	QuotaLimit int        `json:"quota_limit,omitempty"`
	QuotaReset *time.Time `json:"quota_reset,omitempty"`
}

// quotaStatus fills the quota fields from a tracker, omitting them for
// unlimited quotas.
func quotaStatus(s *Status, q *Quota) {
	if q == nil {
		return
	}
	used, limit, resetAt := q.Usage()
	if limit <= 0 {
		return
	}
	s.QuotaUsed = used
	s.QuotaLimit = limit
	s.QuotaReset = &resetAt
}

// Status reports the TMDB adapter state.
func (t *TMDBClient) Status() Status {
	return Status{
		Name:       "tmdb",
		Enabled:    t.cfg.Enabled,
		Configured: t.cfg.APIKey != "",
	}
}

// Status reports the OMDb adapter state, including daily quota usage.
func (o *OMDBClient) Status() Status {
	s := Status{
		Name:       "omdb",
		Enabled:    o.cfg.Enabled,
		Configured: o.cfg.APIKey != "",
	}
	quotaStatus(&s, o.quota)
	return s
}

// Status reports the Watchmode adapter state, including monthly quota
// usage.
func (s *StreamingClient) Status() Status {
	st := Status{
		Name:       "watchmode",
		Enabled:    s.cfg.Enabled,
		Configured: s.cfg.APIKey != "",
	}
	quotaStatus(&st, s.quota)
	return st
}
