// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

package recommend

import (
	"fmt"
	"time"
	"unicode"
)

// Config holds recommendation pipeline tuning. Zero values are replaced by
// defaults in Validate; the documented defaults are the product contract.
type Config struct {
	// VideosPerRequest is the batch size served per refresh. Default: 5.
	VideosPerRequest int

	// MinAcceptable is the floor below which the emergency search path
	// triggers. Default: 3.
	MinAcceptable int

	// PoolRefreshThreshold is the minimum unseen count below which the
	// pool is refilled before serving. Default: 10.
	PoolRefreshThreshold int

	// RefillTarget is how many new videos one refill loop tries to
	// accumulate across its attempts. Default: 10.
	RefillTarget int

	// MaxSearchAttempts bounds the relaxation loop. Default: 3.
	MaxSearchAttempts int

	// DailyRefreshLimit is the per-user per-day refresh quota. Default: 2.
	DailyRefreshLimit int

	// PoolTTL is the shared pool lifetime. Default: 5 days.
	PoolTTL time.Duration

	// SeenTTL is the seen-video sliding window. Default: 5 days.
	SeenTTL time.Duration

	// LockTTL bounds the per-user recommendation lock. Default: 10s.
	LockTTL time.Duration

	// Timezone pins day boundaries for quota and day-cache expiry.
	// Default: Asia/Jakarta.
	Timezone string

	// PacingDelay is the cosmetic gap between emitted video events.
	// Zero disables pacing (tests).
	PacingDelay time.Duration

	// ExcludedKeywords is the content-origin deny-list applied to
	// candidate title/creator/description text. Product policy, not
	// algorithm; see OriginFilter.
	ExcludedKeywords []string

	// ExcludedScripts names Unicode scripts whose presence excludes a
	// candidate (e.g. "Devanagari").
	ExcludedScripts []string
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		VideosPerRequest:     5,
		MinAcceptable:        3,
		PoolRefreshThreshold: 10,
		RefillTarget:         10,
		MaxSearchAttempts:    3,
		DailyRefreshLimit:    2,
		PoolTTL:              5 * 24 * time.Hour,
		SeenTTL:              5 * 24 * time.Hour,
		LockTTL:              10 * time.Second,
		Timezone:             "Asia/Jakarta",
		PacingDelay:          150 * time.Millisecond,
		ExcludedKeywords:     DefaultExcludedKeywords(),
		ExcludedScripts:      DefaultExcludedScripts(),
	}
}

// Validate fills defaults for zero values and rejects inconsistent settings.
func (c *Config) Validate() error {
	d := DefaultConfig()
	if c.VideosPerRequest <= 0 {
		c.VideosPerRequest = d.VideosPerRequest
	}
	if c.MinAcceptable <= 0 {
		c.MinAcceptable = d.MinAcceptable
	}
	if c.PoolRefreshThreshold <= 0 {
		c.PoolRefreshThreshold = d.PoolRefreshThreshold
	}
	if c.RefillTarget <= 0 {
		c.RefillTarget = d.RefillTarget
	}
	if c.MaxSearchAttempts <= 0 {
		c.MaxSearchAttempts = d.MaxSearchAttempts
	}
	if c.DailyRefreshLimit <= 0 {
		c.DailyRefreshLimit = d.DailyRefreshLimit
	}
	if c.PoolTTL <= 0 {
		c.PoolTTL = d.PoolTTL
	}
	if c.SeenTTL <= 0 {
		c.SeenTTL = d.SeenTTL
	}
	if c.LockTTL <= 0 {
		c.LockTTL = d.LockTTL
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	if c.ExcludedKeywords == nil {
		c.ExcludedKeywords = d.ExcludedKeywords
	}
	if c.ExcludedScripts == nil {
		c.ExcludedScripts = d.ExcludedScripts
	}

	if c.MinAcceptable > c.VideosPerRequest {
		return fmt.Errorf("min acceptable (%d) exceeds videos per request (%d)",
			c.MinAcceptable, c.VideosPerRequest)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	for _, name := range c.ExcludedScripts {
		if _, ok := unicode.Scripts[name]; !ok {
			return fmt.Errorf("unknown unicode script %q", name)
		}
	}
	return nil
}

// Location resolves the configured timezone. Validate must have succeeded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
