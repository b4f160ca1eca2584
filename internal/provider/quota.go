// CineCheck - LLM Movie Recommendation Validation
// Copyright 2026 CineCheck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinecheck/cinecheck

package provider

import (
	"sync"
	"time"

	"github.com/cinecheck/cinecheck/internal/logging"
	"github.com/cinecheck/cinecheck/internal/metrics"
)

// Window is the quota reset period.
type Window int

const (
	// WindowDaily resets at UTC midnight.
	WindowDaily Window = iota

	// WindowMonthly resets on the first of the month at UTC midnight.
	WindowMonthly
)

// Quota is an in-memory call counter with a rolling reset window. It guards
// externally imposed limits (e.g. Watchmode's 1000 requests/month) so the
// service degrades to a fallback source instead of burning a paid quota.
//
// Counters are process-scoped; persisting them across restarts would
// require durable storage, which is out of scope.
type Quota struct {
	mu sync.Mutex

	api     string
	limit   int
	window  Window
	count   int
	resetAt time.Time
}

// NewQuota creates a quota tracker. A limit <= 0 means unlimited.
func NewQuota(api string, limit int, window Window) *Quota {
	q := &Quota{
		api:    api,
		limit:  limit,
		window: window,
	}
	q.resetAt = nextReset(time.Now().UTC(), window)
	metrics.SetQuota(api, 0, limit)
	return q
}

// Allow reports whether another call fits within the current window.
func (q *Quota) Allow() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.rollWindow()
	if q.limit <= 0 {
		return true
	}
	if q.count >= q.limit {
		metrics.RecordQuotaExceeded(q.api)
		return false
	}
	return true
}

// Record counts one call against the quota.
func (q *Quota) Record() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.rollWindow()
	q.count++
	metrics.SetQuota(q.api, q.count, q.limit)
}

// Usage returns the current count, limit, and next reset time.
func (q *Quota) Usage() (used, limit int, resetAt time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.rollWindow()
	return q.count, q.limit, q.resetAt
}

// rollWindow resets the counter when the window has elapsed.
// Must be called with mu held.
func (q *Quota) rollWindow() {
	now := time.Now().UTC()
	if now.Before(q.resetAt) {
		return
	}

	logging.Info().
		Str("api", q.api).
		Int("count", q.count).
		Msg("Quota window reset")

	q.count = 0
	q.resetAt = nextReset(now, q.window)
	metrics.SetQuota(q.api, 0, q.limit)
}

// nextReset computes the start of the next window after now.
func nextReset(now time.Time, window Window) time.Time {
	switch window {
	case WindowMonthly:
		firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return firstOfMonth.AddDate(0, 1, 0)
	default:
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return midnight.AddDate(0, 0, 1)
	}
}
