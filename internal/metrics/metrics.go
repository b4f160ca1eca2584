// CineCheck - LLM Movie Recommendation Validation
// Copyright 2026 CineCheck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinecheck/cinecheck

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for production observability. This package instruments:
// - Validation outcomes and latency
// - External API calls (TMDB, OMDb, Watchmode)
// - Metadata cache efficiency
// - Provider quota consumption
// - HTTP endpoint latency and throughput

var (
	// Validation Metrics
	ValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_validations_total",
			Help: "Total number of movie validations by outcome",
		},
		[]string{"result"}, // "valid", "corrected", "dropped", "errored"
	)

	ValidationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "movie_validation_duration_seconds",
			Help:    "Duration of individual movie validations in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "validation_batch_duration_seconds",
			Help:    "Wall-clock duration of validation batches in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// External API Metrics
	ExternalAPICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "external_api_calls_total",
			Help: "Total number of external API calls",
		},
		[]string{"api", "status"}, // status: "success", "not_found", "error", ...
	)

	ExternalAPIDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "external_api_duration_seconds",
			Help:    "Duration of external API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"api"},
	)

	// Cache Metrics
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_cache_hits_total",
			Help: "Total number of metadata cache hits",
		},
		[]string{"source"},
	)

	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_cache_misses_total",
			Help: "Total number of metadata cache misses",
		},
		[]string{"source"},
	)

	CacheEvictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "movie_cache_evictions_total",
			Help: "Total number of metadata cache evictions (TTL or LRU)",
		},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "movie_cache_entries",
			Help: "Current number of entries in the metadata cache",
		},
	)

	// Provider Quota Metrics
	QuotaUsage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "provider_quota_usage",
			Help: "Current quota period usage per provider",
		},
		[]string{"api"},
	)

	QuotaLimit = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "provider_quota_limit",
			Help: "Quota period limit per provider",
		},
		[]string{"api"},
	)

	QuotaExceededTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_quota_exceeded_total",
			Help: "Total number of calls skipped because a provider quota was exhausted",
		},
		[]string{"api"},
	)

	// HTTP Endpoint Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_requests",
			Help: "Current number of in-flight HTTP requests",
		},
	)
)

// RecordValidation increments the validation outcome counter.
// result is one of "valid", "corrected", "dropped", "errored".
func RecordValidation(result string) {
	ValidationsTotal.WithLabelValues(result).Inc()
}

// ObserveValidation records the duration of a single validation.
func ObserveValidation(d time.Duration) {
	ValidationDuration.Observe(d.Seconds())
}

// ObserveBatch records the wall-clock duration of a validation batch.
func ObserveBatch(d time.Duration) {
	BatchDuration.Observe(d.Seconds())
}

// RecordExternalAPICall records an outbound provider call and its duration.
func RecordExternalAPICall(api, status string, d time.Duration) {
	ExternalAPICallsTotal.WithLabelValues(api, status).Inc()
	ExternalAPIDuration.WithLabelValues(api).Observe(d.Seconds())
}

// RecordCacheLookup records a cache hit or miss for the given source.
func RecordCacheLookup(source string, hit bool) {
	if hit {
		CacheHitsTotal.WithLabelValues(source).Inc()
	} else {
		CacheMissesTotal.WithLabelValues(source).Inc()
	}
}

// RecordCacheEvictions adds n to the eviction counter.
func RecordCacheEvictions(n int) {
	CacheEvictionsTotal.Add(float64(n))
}

// SetCacheEntries updates the cache size gauge.
func SetCacheEntries(n int) {
	CacheEntries.Set(float64(n))
}

// SetQuota updates the quota gauges for a provider.
func SetQuota(api string, used, limit int) {
	QuotaUsage.WithLabelValues(api).Set(float64(used))
	QuotaLimit.WithLabelValues(api).Set(float64(limit))
}

// RecordQuotaExceeded counts a call skipped due to an exhausted quota.
func RecordQuotaExceeded(api string) {
	QuotaExceededTotal.WithLabelValues(api).Inc()
}

// TrackActiveRequest adjusts the in-flight HTTP request gauge.
func TrackActiveRequest(active bool) {
	if active {
		HTTPActiveRequests.Inc()
	} else {
		HTTPActiveRequests.Dec()
	}
}

// RecordHTTPRequest records a completed HTTP request.
func RecordHTTPRequest(method, endpoint, status string, d time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(d.Seconds())
}
