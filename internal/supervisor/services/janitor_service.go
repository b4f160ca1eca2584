// CineCheck - LLM Movie Recommendation Validation
// Copyright 2026 CineCheck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinecheck/cinecheck

package services

import (
	"context"
	"time"

	"github.com/cinecheck/cinecheck/internal/logging"
)

// ExpiringCache is the subset of the movie cache the janitor needs.
type ExpiringCache interface {
	CleanupExpired() int
	Len() int
}

// JanitorService periodically sweeps expired cache entries. Lazy expiry on
// lookup is the primary mechanism; the sweep reclaims memory for entries
// that are never looked up again.
type JanitorService struct {
	cache    ExpiringCache
	interval time.Duration
}

// NewJanitorService creates a cache janitor sweeping at the given
// interval.
func NewJanitorService(cache ExpiringCache, interval time.Duration) *JanitorService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &JanitorService{
		cache:    cache,
		interval: interval,
	}
}

// Serve implements suture.Service.
func (j *JanitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if removed := j.cache.CleanupExpired(); removed > 0 {
				logging.Debug().
					Int("removed", removed).
					Int("remaining", j.cache.Len()).
					Msg("Cache janitor sweep")
			}
		}
	}
}

// String identifies the service in supervisor logs.
func (j *JanitorService) String() string {
	return "cache-janitor"
}
