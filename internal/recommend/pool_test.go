// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/clipforge/podrec/internal/kvstore"
)

func newTestPoolCache(t *testing.T) (*PoolCache, *kvstore.MemoryStore) {
	t.Helper()
	store := kvstore.NewMemory()
	t.Cleanup(func() { _ = store.Close() })
	return NewPoolCache(store, 5*24*time.Hour, zerolog.Nop()), store
}

func vid(id string) CachedVideo {
	return CachedVideo{VideoID: id, Title: "title " + id, Creator: "creator", VideoURL: "https://example.com/" + id}
}

func TestPoolCacheGetMiss(t *testing.T) {
	pc, _ := newTestPoolCache(t)
	pool, err := pc.Get(context.Background(), "Technology", "English")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if pool != nil {
		t.Errorf("expected nil pool on miss, got %+v", pool)
	}
}

func TestPoolCacheCreateGet(t *testing.T) {
	pc, _ := newTestPoolCache(t)
	ctx := context.Background()

	videos := []CachedVideo{vid("a"), vid("b")}
	if err := pc.Create(ctx, "Technology", "English", videos, "podcast 2025 technology"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	pool, err := pc.Get(ctx, "Technology", "English")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if pool == nil {
		t.Fatal("expected pool after Create")
	}
	if len(pool.Videos) != 2 {
		t.Errorf("got %d videos, want 2", len(pool.Videos))
	}
	if pool.Query != "podcast 2025 technology" {
		t.Errorf("Query = %q", pool.Query)
	}
	if pool.Timestamp.IsZero() {
		t.Error("Timestamp not set")
	}
}

// Pools never hold two entries with the same video ID, regardless of the
// create/append sequence.
func TestPoolCacheAppendDedupes(t *testing.T) {
	pc, _ := newTestPoolCache(t)
	ctx := context.Background()

	if err := pc.Create(ctx, "Technology", "English", []CachedVideo{vid("a"), vid("b")}, "q"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	added, err := pc.Append(ctx, "Technology", "English", []CachedVideo{vid("b"), vid("c"), vid("c"), vid("d")})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if added != 2 {
		t.Errorf("added = %d, want 2", added)
	}

	pool, err := pc.Get(ctx, "Technology", "English")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	ids := make(map[string]int)
	for _, v := range pool.Videos {
		ids[v.VideoID]++
	}
	for id, n := range ids {
		if n > 1 {
			t.Errorf("video %q appears %d times", id, n)
		}
	}
	if len(pool.Videos) != 4 {
		t.Errorf("got %d videos, want 4", len(pool.Videos))
	}
}

func TestPoolCacheAppendWithoutPoolIsNoop(t *testing.T) {
	pc, _ := newTestPoolCache(t)
	added, err := pc.Append(context.Background(), "Technology", "English", []CachedVideo{vid("a")})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if added != 0 {
		t.Errorf("added = %d, want 0", added)
	}
}

func TestPoolCacheAppendResetsTTL(t *testing.T) {
	store := kvstore.NewMemory()
	t.Cleanup(func() { _ = store.Close() })
	pc := NewPoolCache(store, 5*24*time.Hour, zerolog.Nop())

	base := time.Now()
	now := base
	store.SetClock(func() time.Time { return now })

	ctx := context.Background()
	if err := pc.Create(ctx, "Technology", "English", []CachedVideo{vid("a")}, "q"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Three days pass; an append must restore the full window.
	now = base.Add(3 * 24 * time.Hour)
	if _, err := pc.Append(ctx, "Technology", "English", []CachedVideo{vid("b")}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	ttl, err := store.TTL(ctx, "pool:TecEN")
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl < 5*24*time.Hour-time.Minute {
		t.Errorf("TTL after append = %v, want ~120h", ttl)
	}
}

func TestPoolCacheUndecodableValueIsMiss(t *testing.T) {
	pc, store := newTestPoolCache(t)
	ctx := context.Background()

	if err := store.Set(ctx, "pool:TecEN", "{not json", kvstore.NoExpiry); err != nil {
		t.Fatalf("Set: %v", err)
	}
	pool, err := pc.Get(ctx, "Technology", "English")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if pool != nil {
		t.Error("undecodable value must read as a miss")
	}
}
