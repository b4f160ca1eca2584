// CineCheck - LLM Movie Recommendation Validation
// Copyright 2026 CineCheck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinecheck/cinecheck

package provider

import (
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/cinecheck/cinecheck/internal/apiclient"
	"github.com/cinecheck/cinecheck/internal/logging"
)

// newBreaker builds the per-provider circuit breaker. The breaker opens
// after 5 consecutive failures and probes again after 30 seconds, so a dead
// upstream is skipped instead of burning the retry budget on every lookup.
func newBreaker(name string) *gobreaker.CircuitBreaker[*apiclient.Response] {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	}
	return gobreaker.NewCircuitBreaker[*apiclient.Response](settings)
}

// breakerOpen reports whether err came from an open or saturated breaker
// rather than from the request itself.
func breakerOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// statusForError maps a lookup failure to the adapter status string.
func statusForError(err error) (status, kind string) {
	if breakerOpen(err) {
		return StatusError, "transient"
	}
	k := apiclient.KindOf(err)
	switch k {
	case apiclient.KindAuth:
		return StatusAuthError, k.String()
	case apiclient.KindQuota:
		return StatusQuotaError, k.String()
	case apiclient.KindNotFound:
		return StatusNotFound, k.String()
	default:
		return StatusError, k.String()
	}
}
