// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clipforge/podrec/internal/kvstore"
)

// Guard serializes recommendation runs per user with a store-backed lock.
// The lock is a liveness bound, not a correctness guarantee: the TTL frees
// a lock whose holder crashed, and a run that outlives the TTL can briefly
// overlap a new one. Both runs still converge because every write path is
// idempotent or additive.
type Guard struct {
	store  kvstore.Store
	ttl    time.Duration
	logger zerolog.Logger
}

// NewGuard creates a per-user lock manager.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewGuard(store kvstore.Store, ttl time.Duration, logger zerolog.Logger) *Guard {
	return &Guard{
		store:  store,
		ttl:    ttl,
		logger: logger.With().Str("component", "lock").Logger(),
	}
}

// Acquire attempts to take the user's lock. Returns false when another run
// already holds it. The stored value is a random token identifying the
// holding run in manual store inspection; release does not check it.
func (g *Guard) Acquire(ctx context.Context, userID string) (bool, error) {
	ok, err := g.store.SetNX(ctx, lockKey(userID), uuid.NewString(), g.ttl)
	if err != nil {
		return false, fmt.Errorf("acquire lock for %s: %w", userID, err)
	}
	if !ok {
		g.logger.Debug().Str("user_id", userID).Msg("lock contended")
	}
	return ok, nil
}

// Release frees the user's lock. Best effort; the TTL is the backstop.
func (g *Guard) Release(ctx context.Context, userID string) {
	if err := g.store.Del(ctx, lockKey(userID)); err != nil {
		g.logger.Warn().Err(err).Str("user_id", userID).Msg("lock release failed, TTL will reap it")
	}
}
