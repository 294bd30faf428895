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

func newTestHistory(t *testing.T) (*History, *kvstore.MemoryStore, *Config) {
	t.Helper()
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	store := kvstore.NewMemory()
	t.Cleanup(func() { _ = store.Close() })
	return NewHistory(store, cfg, zerolog.Nop()), store, cfg
}

func TestHistorySeenRoundTrip(t *testing.T) {
	h, store, cfg := newTestHistory(t)
	ctx := context.Background()

	seen, err := h.GetSeen(ctx, "u1")
	if err != nil {
		t.Fatalf("GetSeen: %v", err)
	}
	if len(seen) != 0 {
		t.Errorf("fresh user has %d seen videos", len(seen))
	}

	if err := h.MarkSeen(ctx, "u1", []string{"a", "b"}); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}
	seen, err = h.GetSeen(ctx, "u1")
	if err != nil {
		t.Fatalf("GetSeen: %v", err)
	}
	if _, ok := seen["a"]; !ok {
		t.Error("missing a")
	}
	if _, ok := seen["b"]; !ok {
		t.Error("missing b")
	}

	ttl, err := store.TTL(ctx, "seen:u1")
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl < cfg.SeenTTL-time.Minute {
		t.Errorf("seen TTL = %v, want ~%v", ttl, cfg.SeenTTL)
	}
}

// Marking any batch resets the whole set's window.
func TestHistoryMarkSeenSlidesWindow(t *testing.T) {
	h, store, cfg := newTestHistory(t)
	ctx := context.Background()

	base := time.Now()
	now := base
	store.SetClock(func() time.Time { return now })
	h.SetNow(func() time.Time { return now })

	if err := h.MarkSeen(ctx, "u1", []string{"a"}); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}
	now = base.Add(4 * 24 * time.Hour)
	if err := h.MarkSeen(ctx, "u1", []string{"b"}); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}

	// Past the original deadline, both members survive.
	now = base.Add(6 * 24 * time.Hour)
	seen, err := h.GetSeen(ctx, "u1")
	if err != nil {
		t.Fatalf("GetSeen: %v", err)
	}
	if len(seen) != 2 {
		t.Errorf("got %d members after window slide, want 2", len(seen))
	}

	ttl, err := store.TTL(ctx, "seen:u1")
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl > cfg.SeenTTL || ttl < cfg.SeenTTL-2*24*time.Hour-time.Minute {
		t.Errorf("TTL = %v", ttl)
	}
}

func TestHistoryValidateSeenTTL(t *testing.T) {
	h, store, cfg := newTestHistory(t)
	ctx := context.Background()

	// Missing set: nothing to heal.
	if err := h.ValidateSeenTTL(ctx, "u1"); err != nil {
		t.Fatalf("ValidateSeenTTL on missing set: %v", err)
	}

	// Persistent set gets the window reinstated.
	if err := store.SAdd(ctx, "seen:u1", "a"); err != nil {
		t.Fatalf("SAdd: %v", err)
	}
	if err := h.ValidateSeenTTL(ctx, "u1"); err != nil {
		t.Fatalf("ValidateSeenTTL: %v", err)
	}
	ttl, err := store.TTL(ctx, "seen:u1")
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl < cfg.SeenTTL-time.Minute {
		t.Errorf("persistent set not healed: TTL = %v", ttl)
	}

	// Drifted-low TTL also healed.
	if err := store.Expire(ctx, "seen:u1", time.Hour); err != nil {
		t.Fatalf("Expire: %v", err)
	}
	if err := h.ValidateSeenTTL(ctx, "u1"); err != nil {
		t.Fatalf("ValidateSeenTTL: %v", err)
	}
	ttl, err = store.TTL(ctx, "seen:u1")
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl < cfg.SeenTTL-time.Minute {
		t.Errorf("low TTL not healed: TTL = %v", ttl)
	}

	// Healthy TTL left alone.
	healthy := cfg.SeenTTL - time.Hour
	if err := store.Expire(ctx, "seen:u1", healthy); err != nil {
		t.Fatalf("Expire: %v", err)
	}
	if err := h.ValidateSeenTTL(ctx, "u1"); err != nil {
		t.Fatalf("ValidateSeenTTL: %v", err)
	}
	ttl, err = store.TTL(ctx, "seen:u1")
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl > healthy {
		t.Errorf("healthy TTL was extended: %v > %v", ttl, healthy)
	}
}

func TestHistoryTodayCache(t *testing.T) {
	h, store, _ := newTestHistory(t)
	ctx := context.Background()

	cache, err := h.GetTodayCache(ctx, "u1")
	if err != nil {
		t.Fatalf("GetTodayCache: %v", err)
	}
	if cache != nil {
		t.Fatal("expected nil cache for fresh user")
	}

	videos := []CachedVideo{vid("a"), vid("b")}
	if err := h.SetTodayCache(ctx, "u1", videos, 1); err != nil {
		t.Fatalf("SetTodayCache: %v", err)
	}

	cache, err = h.GetTodayCache(ctx, "u1")
	if err != nil {
		t.Fatalf("GetTodayCache: %v", err)
	}
	if cache == nil {
		t.Fatal("expected cache")
	}
	if cache.RefreshCount != 1 || len(cache.Videos) != 2 {
		t.Errorf("cache = %+v", cache)
	}

	// Expiry lands at local midnight: TTL bounded by 24h.
	ttl, err := store.TTL(ctx, "today:u1")
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl <= 0 || ttl > 24*time.Hour {
		t.Errorf("today TTL = %v, want (0, 24h]", ttl)
	}
}

// A cache written yesterday reads as absent even if the key survived.
func TestHistoryTodayCacheStaleDate(t *testing.T) {
	h, _, cfg := newTestHistory(t)
	ctx := context.Background()

	base := time.Now().In(cfg.Location())
	now := base
	h.SetNow(func() time.Time { return now })

	if err := h.SetTodayCache(ctx, "u1", []CachedVideo{vid("a")}, 2); err != nil {
		t.Fatalf("SetTodayCache: %v", err)
	}

	now = base.Add(48 * time.Hour)
	cache, err := h.GetTodayCache(ctx, "u1")
	if err != nil {
		t.Fatalf("GetTodayCache: %v", err)
	}
	if cache != nil {
		t.Errorf("stale-dated cache must read as absent, got %+v", cache)
	}
}

func TestHistoryRefreshQuota(t *testing.T) {
	h, store, cfg := newTestHistory(t)
	ctx := context.Background()

	ok, n, err := h.CanRefresh(ctx, "u1")
	if err != nil {
		t.Fatalf("CanRefresh: %v", err)
	}
	if !ok || n != 0 {
		t.Errorf("fresh user: ok=%v n=%d", ok, n)
	}

	for i := 1; i <= cfg.DailyRefreshLimit; i++ {
		got, err := h.IncrementRefresh(ctx, "u1")
		if err != nil {
			t.Fatalf("IncrementRefresh: %v", err)
		}
		if got != i {
			t.Errorf("IncrementRefresh = %d, want %d", got, i)
		}
	}

	ok, n, err = h.CanRefresh(ctx, "u1")
	if err != nil {
		t.Fatalf("CanRefresh: %v", err)
	}
	if ok {
		t.Errorf("quota should be exhausted at %d", n)
	}

	// First increment stamps a midnight expiry.
	ttl, err := store.TTL(ctx, "refresh:u1")
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl <= 0 || ttl > 24*time.Hour {
		t.Errorf("refresh TTL = %v, want (0, 24h]", ttl)
	}
}
