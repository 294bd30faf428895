// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

// Package kvstore defines the key-value store contract the recommendation
// pipeline runs against, and provides two implementations:
//
//   - BadgerStore: embedded BadgerDB with native per-entry TTLs. This is
//     the production store; pools, seen-sets, day caches, quota counters
//     and locks all live here.
//   - MemoryStore: map-backed store with an injectable clock, used by unit
//     tests and ephemeral deployments.
//
// The contract mirrors the small Redis-style surface the pipeline needs:
// string get/set with TTL, set-if-not-exists, set membership, atomic
// increment, and TTL inspection. Atomicity of SetNX, SAdd and Incr comes
// from Badger's serializable transactions rather than application locks.
package kvstore
