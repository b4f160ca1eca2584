// CineCheck - LLM Movie Recommendation Validation
// Copyright 2026 CineCheck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinecheck/cinecheck

package provider

import (
	"testing"
	"time"
)

func TestQuotaUnlimited(t *testing.T) {
	q := NewQuota("test", 0, WindowDaily)
	for i := 0; i < 100; i++ {
		if !q.Allow() {
			t.Fatalf("unlimited quota denied call %d", i)
		}
		q.Record()
	}
}

func TestQuotaLimitEnforced(t *testing.T) {
	q := NewQuota("test", 2, WindowDaily)

	for i := 0; i < 2; i++ {
		if !q.Allow() {
			t.Fatalf("call %d denied under limit", i)
		}
		q.Record()
	}
	if q.Allow() {
		t.Error("call allowed over limit")
	}

	used, limit, resetAt := q.Usage()
	if used != 2 || limit != 2 {
		t.Errorf("usage = %d/%d, want 2/2", used, limit)
	}
	if !resetAt.After(time.Now().UTC()) {
		t.Errorf("resetAt %s is not in the future", resetAt)
	}
}

func TestNextResetDaily(t *testing.T) {
	now := time.Date(2026, time.March, 15, 13, 45, 0, 0, time.UTC)
	got := nextReset(now, WindowDaily)
	want := time.Date(2026, time.March, 16, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("nextReset daily = %s, want %s", got, want)
	}
}

func TestNextResetMonthly(t *testing.T) {
	now := time.Date(2026, time.March, 15, 13, 45, 0, 0, time.UTC)
	got := nextReset(now, WindowMonthly)
	want := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("nextReset monthly = %s, want %s", got, want)
	}

	// December rolls into January of the next year.
	dec := time.Date(2026, time.December, 31, 23, 0, 0, 0, time.UTC)
	got = nextReset(dec, WindowMonthly)
	want = time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("nextReset year rollover = %s, want %s", got, want)
	}
}
