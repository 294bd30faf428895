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

// History owns the per-user state: the seen-video sliding window, the
// today cache, and the daily refresh counter.
type History struct {
	store  kvstore.Store
	cfg    *Config
	logger zerolog.Logger

	// now is injectable for day-boundary tests.
	now func() time.Time
}

// NewHistory creates a per-user state manager.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHistory(store kvstore.Store, cfg *Config, logger zerolog.Logger) *History {
	return &History{
		store:  store,
		cfg:    cfg,
		logger: logger.With().Str("component", "history").Logger(),
		now:    time.Now,
	}
}

// SetNow overrides the clock. Test hook.
func (h *History) SetNow(now func() time.Time) {
	h.now = now
}

// GetSeen returns the user's seen-video set. A missing key is an empty set.
func (h *History) GetSeen(ctx context.Context, userID string) (map[string]struct{}, error) {
	seen, err := h.store.SMembers(ctx, seenKey(userID))
	if err != nil {
		return nil, fmt.Errorf("read seen set for %s: %w", userID, err)
	}
	return seen, nil
}

// MarkSeen adds video IDs to the user's seen set and resets its TTL to the
// full sliding window. The window is per set, not per member: serving any
// batch keeps the whole history alive for another window.
func (h *History) MarkSeen(ctx context.Context, userID string, videoIDs []string) error {
	if len(videoIDs) == 0 {
		return nil
	}
	key := seenKey(userID)
	if err := h.store.SAdd(ctx, key, videoIDs...); err != nil {
		return fmt.Errorf("add to seen set for %s: %w", userID, err)
	}
	if err := h.store.Expire(ctx, key, h.cfg.SeenTTL); err != nil {
		return fmt.Errorf("refresh seen TTL for %s: %w", userID, err)
	}
	return nil
}

// ValidateSeenTTL self-heals the seen set's expiry. A set that has lost
// its TTL (persistent) or whose TTL has drifted below half the window gets
// the full window reinstated. Missing sets are left alone.
func (h *History) ValidateSeenTTL(ctx context.Context, userID string) error {
	key := seenKey(userID)
	ttl, err := h.store.TTL(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("inspect seen TTL for %s: %w", userID, err)
	}

	if ttl == kvstore.NoExpiry || ttl < h.cfg.SeenTTL/2 {
		h.logger.Warn().
			Str("user_id", userID).
			Dur("ttl", ttl).
			Msg("seen set TTL out of range, reinstating window")
		if err := h.store.Expire(ctx, key, h.cfg.SeenTTL); err != nil {
			return fmt.Errorf("reinstate seen TTL for %s: %w", userID, err)
		}
	}
	return nil
}

// GetTodayCache returns the user's day cache, or nil when absent. Stale
// entries from an earlier local date and undecodable values both read as
// absent; the TTL should make the stale case unreachable, but the date
// check guards against clock or expiry drift.
func (h *History) GetTodayCache(ctx context.Context, userID string) (*UserDayCache, error) {
	raw, err := h.store.Get(ctx, todayKey(userID))
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read day cache for %s: %w", userID, err)
	}

	var cache UserDayCache
	if err := json.Unmarshal([]byte(raw), &cache); err != nil {
		h.logger.Warn().Err(err).Str("user_id", userID).Msg("undecodable day cache treated as miss")
		return nil, nil
	}
	if cache.Date != h.localDate() {
		return nil, nil
	}
	return &cache, nil
}

// SetTodayCache writes the user's day cache, expiring at local midnight.
func (h *History) SetTodayCache(ctx context.Context, userID string, videos []CachedVideo, refreshCount int) error {
	cache := UserDayCache{
		Videos:       videos,
		RefreshCount: refreshCount,
		Date:         h.localDate(),
	}
	data, err := json.Marshal(&cache)
	if err != nil {
		return fmt.Errorf("encode day cache for %s: %w", userID, err)
	}
	if err := h.store.Set(ctx, todayKey(userID), string(data), h.untilMidnight()); err != nil {
		return fmt.Errorf("write day cache for %s: %w", userID, err)
	}
	return nil
}

// RefreshCount returns the user's refresh count for the current local day.
// A missing counter reads as zero.
func (h *History) RefreshCount(ctx context.Context, userID string) (int, error) {
	raw, err := h.store.Get(ctx, refreshKey(userID))
	if errors.Is(err, kvstore.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read refresh count for %s: %w", userID, err)
	}
	var n int
	if _, err := fmt.Sscanf(raw, "%d", &n); err != nil {
		h.logger.Warn().Str("user_id", userID).Str("value", raw).Msg("undecodable refresh counter treated as zero")
		return 0, nil
	}
	return n, nil
}

// CanRefresh reports whether the user has quota left today.
func (h *History) CanRefresh(ctx context.Context, userID string) (bool, int, error) {
	n, err := h.RefreshCount(ctx, userID)
	if err != nil {
		return false, 0, err
	}
	return n < h.cfg.DailyRefreshLimit, n, nil
}

// IncrementRefresh bumps the user's daily counter and returns the new
// value. The first increment of the day stamps the key to expire at local
// midnight; later increments leave the existing expiry in place.
func (h *History) IncrementRefresh(ctx context.Context, userID string) (int, error) {
	key := refreshKey(userID)
	n, err := h.store.Incr(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("increment refresh count for %s: %w", userID, err)
	}
	if n == 1 {
		if err := h.store.Expire(ctx, key, h.untilMidnight()); err != nil {
			return 0, fmt.Errorf("stamp refresh counter expiry for %s: %w", userID, err)
		}
	}
	return int(n), nil
}

// localDate formats the current day in the configured timezone.
func (h *History) localDate() string {
	return h.now().In(h.cfg.Location()).Format("2006-01-02")
}

// untilMidnight returns the duration until the next local midnight,
// clamped to at least one second so a write at the stroke of midnight
// still lands on the new day rather than expiring instantly.
func (h *History) untilMidnight() time.Duration {
	now := h.now().In(h.cfg.Location())
	midnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
	d := midnight.Sub(now)
	if d < time.Second {
		d = time.Second
	}
	return d
}
