// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

/*
Package recommend implements the recommendation caching and deduplication
pipeline: shared per-(topic, language) video pools, per-user seen tracking
with a sliding expiry window, a daily refresh quota with verbatim replay,
per-user locking, and multi-attempt relaxation search with an emergency
fallback path.

# Overview

The package is organized around one entry point, Orchestrator.Recommend,
which produces a finite ordered event stream (progress messages, video
events, one terminal done or error event). Supporting components:

  - PoolCache: shared candidate reservoirs in the key-value store, one per
    (topic, language) pair, with a rolling five-day TTL and dedupe by
    video ID on append.
  - History: per-user seen set (sliding window with self-healing TTL),
    day cache (replayed once the quota is spent), and refresh counter
    (expires at local midnight).
  - Guard: short-TTL advisory lock serializing runs per user.
  - Synthesizer: language-model query generation with a deterministic
    template fallback.
  - LLMAnnotator: per-video reasoning generation; failures degrade to a
    templated sentence and never block delivery.
  - OriginFilter: keyword and Unicode-script deny policy applied to
    search candidates.

# State Layout

All persistent state lives in a kvstore.Store under fixed key formats
(see keys.go). Cross-run coordination relies solely on the store's atomic
primitives and the per-user lock; pool appends are read-modify-write with
an accepted lost-update window under concurrent writers.

# External Collaborators

Search, annotation, and query synthesis are consumed through the
SearchProvider, Annotator, and LLM interfaces. Provider failures are
contained: a failed search attempt advances the relaxation loop, a failed
annotation falls back to a template, a failed synthesis falls back to a
deterministic query.
*/
package recommend
