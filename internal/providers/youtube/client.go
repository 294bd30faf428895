// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/clipforge/podrec/internal/metrics"
	"github.com/clipforge/podrec/internal/recommend"
)

const (
	defaultBaseURL  = "https://www.googleapis.com/youtube/v3"
	searchPageLimit = 25
	breakerName     = "youtube"
)

// Config holds YouTube Data API client settings.
type Config struct {
	// APIKey is the Data API v3 key. Required.
	APIKey string

	// BaseURL overrides the API endpoint. Tests point this at a local
	// server; empty means the production endpoint.
	BaseURL string

	// Timeout bounds one HTTP round trip. Default: 15s.
	Timeout time.Duration

	// RequestsPerSecond throttles outgoing calls. Default: 5.
	RequestsPerSecond float64
}

// Client queries the YouTube Data API v3 and implements
// recommend.SearchProvider. Each Search is two API round trips: search.list
// for candidate IDs, then videos.list for duration, views, and snippet
// detail.
//
// Calls run behind a circuit breaker (opens at a 60% failure rate with at
// least 10 requests in the window) and a client-side rate limiter.
type Client struct {
	cfg     Config
	client  *http.Client
	cb      *gobreaker.CircuitBreaker[[]recommend.VideoSearchResult]
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// New creates a YouTube client.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, logger zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}

	log := logger.With().Str("component", "youtube").Logger()
	metrics.SetCircuitBreakerState(breakerName, 0)

	cb := gobreaker.NewCircuitBreaker[[]recommend.VideoSearchResult](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state transition")
			metrics.SetCircuitBreakerState(name, stateToInt(to))
		},
	})

	return &Client{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		cb:      cb,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:  log,
	}
}

// Search finds candidate videos for the query under the given constraints.
// The API-side filters are coarse (long-form flag, published-after cutoff);
// precise screening is the caller's job.
func (c *Client) Search(ctx context.Context, query string, opts recommend.SearchOptions) ([]recommend.VideoSearchResult, error) {
	return c.cb.Execute(func() ([]recommend.VideoSearchResult, error) {
		ids, err := c.searchIDs(ctx, query, opts)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return nil, nil
		}
		return c.videoDetails(ctx, ids)
	})
}

// searchIDs runs search.list and returns the candidate video IDs.
func (c *Client) searchIDs(ctx context.Context, query string, opts recommend.SearchOptions) ([]string, error) {
	params := url.Values{}
	params.Set("key", c.cfg.APIKey)
	params.Set("part", "id")
	params.Set("type", "video")
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(searchPageLimit))
	params.Set("order", "viewCount")
	params.Set("relevanceLanguage", "en")
	if opts.MinDurationMinutes >= 20 {
		// "long" is the API's >20 minute bucket, the closest server-side
		// cut to the pipeline's duration floor.
		params.Set("videoDuration", "long")
	}
	if opts.MonthsBack > 0 {
		cutoff := time.Now().UTC().AddDate(0, -opts.MonthsBack, 0)
		params.Set("publishedAfter", cutoff.Format(time.RFC3339))
	}

	var resp searchResponse
	if err := c.getJSON(ctx, "search", "/search?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("search.list failed: %d %s", resp.Error.Code, resp.Error.Message)
	}

	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	return ids, nil
}

// videoDetails runs videos.list for the IDs and maps the items onto search
// results. Items with unparsable metadata are skipped, not fatal.
func (c *Client) videoDetails(ctx context.Context, ids []string) ([]recommend.VideoSearchResult, error) {
	params := url.Values{}
	params.Set("key", c.cfg.APIKey)
	params.Set("part", "snippet,contentDetails,statistics")
	params.Set("id", strings.Join(ids, ","))

	var resp videosResponse
	if err := c.getJSON(ctx, "details", "/videos?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("videos.list failed: %d %s", resp.Error.Code, resp.Error.Message)
	}

	results := make([]recommend.VideoSearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		minutes, err := parseISODurationMinutes(item.ContentDetails.Duration)
		if err != nil {
			c.logger.Debug().Err(err).Str("video_id", item.ID).Msg("skipping video with unparsable duration")
			continue
		}
		views, err := strconv.ParseInt(item.Statistics.ViewCount, 10, 64)
		if err != nil {
			c.logger.Debug().Str("video_id", item.ID).Msg("skipping video with unparsable view count")
			continue
		}
		published, _ := time.Parse(time.RFC3339, item.Snippet.PublishedAt)

		thumb := item.Snippet.Thumbnails.High.URL
		if thumb == "" {
			thumb = item.Snippet.Thumbnails.Medium.URL
		}

		results = append(results, recommend.VideoSearchResult{
			ID:              item.ID,
			Title:           item.Snippet.Title,
			Creator:         item.Snippet.ChannelTitle,
			ThumbnailURL:    thumb,
			URL:             "https://www.youtube.com/watch?v=" + item.ID,
			DurationMinutes: minutes,
			ViewCount:       views,
			PublishedAt:     published,
			Description:     item.Snippet.Description,
		})
	}
	return results, nil
}

// getJSON performs one throttled, instrumented GET against the API.
func (c *Client) getJSON(ctx context.Context, operation, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	start := time.Now()
	err := c.doGet(ctx, path, out)
	metrics.RecordProviderRequest(breakerName, operation, time.Since(start), err)
	return err
}

func (c *Client) doGet(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request failed: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func stateToInt(s gobreaker.State) int {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
