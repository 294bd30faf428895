// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package implements application instrumentation using the Prometheus client
library, exposing metrics for monitoring performance, errors, and system health.

# Overview

The package provides metrics for:
  - Recommendation pipeline outcomes (runs, errors, lock contention, replays)
  - Shared pool cache hit/miss rates
  - External provider call latency, errors, and circuit breaker state
  - API request latency, throughput, and in-flight counts
  - Open SSE stream counts

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8080/metrics

# Usage

Metrics are registered at package load time via promauto and updated either
directly (counter Inc on the hot path) or through the small Record helpers:

	metrics.RecordProviderRequest("youtube", "search", elapsed, err)
	metrics.RecordAPIRequest("GET", "/api/v1/recommendations", 200, elapsed)

All metrics use the "podrec_" prefix.
*/
package metrics
