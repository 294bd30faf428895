// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

package kvstore

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared by all Store implementations.
var (
	// ErrNotFound indicates the key does not exist (or has expired).
	ErrNotFound = errors.New("kvstore: key not found")

	// ErrClosed indicates the store has been closed.
	ErrClosed = errors.New("kvstore: store is closed")
)

// NoExpiry is returned by TTL for keys that exist but carry no expiry.
const NoExpiry = time.Duration(-1)

// Store is the key-value contract the recommendation pipeline depends on.
//
// Semantics:
//   - Get returns ErrNotFound for missing or expired keys.
//   - Set with ttl <= 0 stores the value without expiry.
//   - SetNX atomically creates the key only if absent and reports whether
//     this call created it.
//   - TTL returns the remaining lifetime, NoExpiry for keys without one,
//     or ErrNotFound for missing keys.
//   - Expire replaces the key's remaining lifetime with the given ttl.
//   - SAdd/SMembers treat the key as a set of string members; SAdd is
//     atomic with respect to concurrent adds and preserves the set's
//     remaining expiry.
//   - Incr atomically increments an integer value (absent counts as 0)
//     and preserves any remaining expiry.
//
// Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, key string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
	SAdd(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) (map[string]struct{}, error)
	Incr(ctx context.Context, key string) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}
