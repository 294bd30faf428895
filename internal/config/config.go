// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

package config

import (
	"fmt"
	"time"
)

// Config is the root application configuration, loaded in layers:
// defaults, then an optional YAML file, then environment variables.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Store     StoreConfig     `koanf:"store"`
	YouTube   YouTubeConfig   `koanf:"youtube"`
	Gemini    GeminiConfig    `koanf:"gemini"`
	Recommend RecommendConfig `koanf:"recommend"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// StoreConfig holds Badger key-value store settings.
type StoreConfig struct {
	Path           string        `koanf:"path"`
	InMemory       bool          `koanf:"in_memory"`
	GCInterval     time.Duration `koanf:"gc_interval"`
	GCDiscardRatio float64       `koanf:"gc_discard_ratio"`
}

// YouTubeConfig holds YouTube Data API settings.
type YouTubeConfig struct {
	APIKey            string        `koanf:"api_key"`
	BaseURL           string        `koanf:"base_url"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
}

// GeminiConfig holds Gemini API settings. The language model is optional:
// with no API key, query synthesis and annotation use their deterministic
// fallbacks.
type GeminiConfig struct {
	APIKey            string        `koanf:"api_key"`
	Model             string        `koanf:"model"`
	BaseURL           string        `koanf:"base_url"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
}

// RecommendConfig holds recommendation pipeline tuning. Zero values fall
// back to the pipeline defaults.
type RecommendConfig struct {
	VideosPerRequest     int           `koanf:"videos_per_request"`
	MinAcceptable        int           `koanf:"min_acceptable"`
	PoolRefreshThreshold int           `koanf:"pool_refresh_threshold"`
	RefillTarget         int           `koanf:"refill_target"`
	MaxSearchAttempts    int           `koanf:"max_search_attempts"`
	DailyRefreshLimit    int           `koanf:"daily_refresh_limit"`
	PoolTTL              time.Duration `koanf:"pool_ttl"`
	SeenTTL              time.Duration `koanf:"seen_ttl"`
	LockTTL              time.Duration `koanf:"lock_ttl"`
	Timezone             string        `koanf:"timezone"`
	PacingDelay          time.Duration `koanf:"pacing_delay"`
	ExcludedKeywords     []string      `koanf:"excluded_keywords"`
	ExcludedScripts      []string      `koanf:"excluded_scripts"`
}

// APIConfig holds API middleware settings.
type APIConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateYouTube(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("SERVER_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	switch c.Server.Environment {
	case "development", "production":
	default:
		return fmt.Errorf("SERVER_ENVIRONMENT must be development or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateStore() error {
	if !c.Store.InMemory && c.Store.Path == "" {
		return fmt.Errorf("STORE_PATH is required unless STORE_IN_MEMORY=true")
	}
	if c.Store.GCInterval <= 0 {
		return fmt.Errorf("STORE_GC_INTERVAL must be positive, got %v", c.Store.GCInterval)
	}
	if c.Store.GCDiscardRatio <= 0 || c.Store.GCDiscardRatio >= 1 {
		return fmt.Errorf("STORE_GC_DISCARD_RATIO must be in (0, 1), got %v", c.Store.GCDiscardRatio)
	}
	return nil
}

func (c *Config) validateYouTube() error {
	if c.YouTube.APIKey == "" {
		return fmt.Errorf("YOUTUBE_API_KEY is required")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	if c.Recommend.MinAcceptable > c.Recommend.VideosPerRequest {
		return fmt.Errorf("RECOMMEND_MIN_ACCEPTABLE (%d) must not exceed RECOMMEND_VIDEOS_PER_REQUEST (%d)",
			c.Recommend.MinAcceptable, c.Recommend.VideosPerRequest)
	}
	if _, err := time.LoadLocation(c.Recommend.Timezone); err != nil {
		return fmt.Errorf("RECOMMEND_TIMEZONE is invalid: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace/debug/info/warn/error/fatal, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
