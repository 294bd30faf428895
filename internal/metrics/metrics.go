// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides instrumentation for:
// - Recommendation pipeline outcomes (runs, replays, errors, lock contention)
// - Shared pool cache efficiency
// - External provider calls (search, language model) and circuit breakers
// - API endpoint latency and throughput

var (
	// Pipeline Metrics
	RecommendationRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "podrec_recommendation_runs_total",
			Help: "Total number of recommendation pipeline runs started",
		},
	)

	RecommendationErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "podrec_recommendation_errors_total",
			Help: "Total number of recommendation runs ending in a terminal error",
		},
	)

	LockContention = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "podrec_lock_contention_total",
			Help: "Total number of runs rejected because the per-user lock was held",
		},
	)

	QuotaReplays = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "podrec_quota_replays_total",
			Help: "Total number of runs served from the day cache after quota exhaustion",
		},
	)

	SearchAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "podrec_search_attempts_total",
			Help: "Total number of provider search attempts, including relaxation and emergency",
		},
	)

	AnnotationFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "podrec_annotation_fallbacks_total",
			Help: "Total number of videos served with the templated fallback reasoning",
		},
	)

	// Pool Cache Metrics
	PoolHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "podrec_pool_hits_total",
			Help: "Total number of recommendation runs finding an existing pool",
		},
	)

	PoolMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "podrec_pool_misses_total",
			Help: "Total number of recommendation runs with no pool for the pair",
		},
	)

	// Provider Metrics
	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "podrec_provider_request_duration_seconds",
			Help:    "Duration of external provider requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "operation"}, // "youtube"/"gemini", "search"/"details"/"generate"
	)

	ProviderRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "podrec_provider_request_errors_total",
			Help: "Total number of failed external provider requests",
		},
		[]string{"provider", "operation"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "podrec_circuit_breaker_state",
			Help: "Circuit breaker state per provider (0=closed, 1=half-open, 2=open)",
		},
		[]string{"provider"},
	)

	// API Metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "podrec_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "podrec_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "podrec_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	SSEStreamsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "podrec_sse_streams_active",
			Help: "Current number of open recommendation event streams",
		},
	)
)

// RecordProviderRequest observes one external provider call.
func RecordProviderRequest(provider, operation string, duration time.Duration, err error) {
	ProviderRequestDuration.WithLabelValues(provider, operation).Observe(duration.Seconds())
	if err != nil {
		ProviderRequestErrors.WithLabelValues(provider, operation).Inc()
	}
}

// RecordAPIRequest observes one completed API request.
func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	APIRequestDuration.WithLabelValues(method, endpoint, code).Observe(duration.Seconds())
	APIRequestsTotal.WithLabelValues(method, endpoint, code).Inc()
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// SetCircuitBreakerState records a provider breaker transition.
func SetCircuitBreakerState(provider string, state int) {
	CircuitBreakerState.WithLabelValues(provider).Set(float64(state))
}
