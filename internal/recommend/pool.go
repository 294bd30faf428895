// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/clipforge/podrec/internal/kvstore"
)

// PoolCache owns the shared per-(topic, language) video pools in the store.
//
// Append is a read-modify-write: two concurrent appends to the same pool
// can both read the same base and the later write wins, losing the other's
// additions. Accepted tradeoff: distinct users rarely refill the same
// (topic, language) pool at the same instant, and a lost append only means
// a future refill. If this ever needs fixing, the path is a version field
// and compare-and-swap, not a distributed lock per pool write.
type PoolCache struct {
	store  kvstore.Store
	ttl    time.Duration
	logger zerolog.Logger
}

// NewPoolCache creates a pool manager writing pools with the given TTL.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPoolCache(store kvstore.Store, ttl time.Duration, logger zerolog.Logger) *PoolCache {
	return &PoolCache{
		store:  store,
		ttl:    ttl,
		logger: logger.With().Str("component", "pool").Logger(),
	}
}

// Get loads the pool for (topic, language). A missing key or an
// undecodable value both read as absent; deserialization failure is
// logged and treated as a cache miss, never surfaced as an error.
func (p *PoolCache) Get(ctx context.Context, topic, language string) (*VideoPool, error) {
	key := poolKey(topic, language)
	raw, err := p.store.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read pool %s: %w", key, err)
	}

	var pool VideoPool
	if err := json.Unmarshal([]byte(raw), &pool); err != nil {
		p.logger.Warn().Err(err).Str("key", key).Msg("undecodable pool treated as miss")
		return nil, nil
	}
	return &pool, nil
}

// Create writes a fresh pool, overwriting any existing value, with the
// full TTL.
func (p *PoolCache) Create(ctx context.Context, topic, language string, videos []CachedVideo, query string) error {
	key := poolKey(topic, language)
	pool := VideoPool{
		Videos:    videos,
		Timestamp: time.Now().UTC(),
		Query:     query,
	}
	data, err := json.Marshal(&pool)
	if err != nil {
		return fmt.Errorf("encode pool %s: %w", key, err)
	}
	if err := p.store.Set(ctx, key, string(data), p.ttl); err != nil {
		return fmt.Errorf("write pool %s: %w", key, err)
	}
	p.logger.Debug().Str("key", key).Int("videos", len(videos)).Msg("pool created")
	return nil
}

// Append adds videos not already present (by VideoID) to an existing pool
// and rewrites it with the TTL reset to the full window, extending the
// pool's freshness. If the pool is absent the call is a no-op; the caller
// must Create first. Returns how many videos were actually added.
func (p *PoolCache) Append(ctx context.Context, topic, language string, videos []CachedVideo) (int, error) {
	existing, err := p.Get(ctx, topic, language)
	if err != nil {
		return 0, err
	}
	if existing == nil {
		return 0, nil
	}

	present := make(map[string]struct{}, len(existing.Videos))
	for _, v := range existing.Videos {
		present[v.VideoID] = struct{}{}
	}

	added := 0
	for _, v := range videos {
		if _, dup := present[v.VideoID]; dup {
			continue
		}
		present[v.VideoID] = struct{}{}
		existing.Videos = append(existing.Videos, v)
		added++
	}
	if added == 0 {
		return 0, nil
	}

	key := poolKey(topic, language)
	data, err := json.Marshal(existing)
	if err != nil {
		return 0, fmt.Errorf("encode pool %s: %w", key, err)
	}
	if err := p.store.Set(ctx, key, string(data), p.ttl); err != nil {
		return 0, fmt.Errorf("write pool %s: %w", key, err)
	}
	p.logger.Debug().Str("key", key).Int("added", added).Msg("pool appended")
	return added, nil
}
