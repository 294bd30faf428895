// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

package recommend

import (
	"context"
	"time"
)

// CachedVideo is a recommendation ready to serve. Immutable once created;
// it is persisted into a VideoPool and only ever expires with the pool.
type CachedVideo struct {
	// VideoID is the stable external identifier, unique within a pool.
	VideoID string `json:"videoId"`

	// Title is the display title.
	Title string `json:"title"`

	// Creator is the channel or show name.
	Creator string `json:"creator"`

	// ThumbnailURL is the display thumbnail.
	ThumbnailURL string `json:"thumbnailUrl"`

	// VideoURL is the watch link.
	VideoURL string `json:"videoUrl"`

	// ViewCount is the popularity metric at discovery time.
	ViewCount int64 `json:"viewCount"`

	// Duration is a formatted display string, e.g. "42 minutes".
	Duration string `json:"duration"`

	// Reasoning is the generated justification for the recommendation.
	Reasoning string `json:"reasoning"`
}

// VideoPool is the shared reservoir of candidate videos for one
// (topic, language) pair. Ordering is discovery order; entries are unique
// by VideoID.
type VideoPool struct {
	// Videos holds the pool entries in discovery order.
	Videos []CachedVideo `json:"videos"`

	// Timestamp is the creation or last-full-write time.
	Timestamp time.Time `json:"timestamp"`

	// Query is the last search query used. Diagnostic only.
	Query string `json:"query"`
}

// UserDayCache accumulates everything served to one user on the current
// calendar day and is replayed verbatim once the daily quota is exhausted.
type UserDayCache struct {
	// Videos delivered today, across all refreshes, in delivery order.
	Videos []CachedVideo `json:"videos"`

	// RefreshCount is the number of refreshes consumed today.
	RefreshCount int `json:"refreshCount"`

	// Date is the calendar day (in the configured timezone) this cache
	// belongs to, formatted as 2006-01-02.
	Date string `json:"date"`
}

// VideoSearchResult is one candidate item returned by the search provider,
// with detail metadata already attached.
type VideoSearchResult struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Creator         string    `json:"creator"`
	ThumbnailURL    string    `json:"thumbnailUrl"`
	URL             string    `json:"url"`
	DurationMinutes int       `json:"durationMinutes"`
	ViewCount       int64     `json:"viewCount"`
	PublishedAt     time.Time `json:"publishedAt"`
	Description     string    `json:"description"`
}

// SearchOptions narrows a provider search. Produced per relaxation attempt
// by relaxationParamsForAttempt.
type SearchOptions struct {
	// MinDurationMinutes is the minimum acceptable video length.
	MinDurationMinutes int

	// MaxDurationMinutes is the maximum acceptable video length.
	MaxDurationMinutes int

	// MinViewCount is the popularity floor.
	MinViewCount int64

	// MonthsBack restricts results to videos published within the last
	// N months. Zero means no freshness restriction.
	MonthsBack int
}

// SearchProvider is the external search collaborator.
type SearchProvider interface {
	// Search returns candidate videos for a query under the given
	// constraints. Providers may return results outside the constraints;
	// the pipeline re-filters locally.
	Search(ctx context.Context, query string, opts SearchOptions) ([]VideoSearchResult, error)
}

// Annotator is the external ranking/annotation collaborator. A failed
// Annotate never aborts the pipeline; the caller substitutes a
// deterministic fallback sentence.
type Annotator interface {
	Annotate(ctx context.Context, video VideoSearchResult, topic string) (string, error)
}

// LLM is the shared language-model channel used by the query synthesizer
// and the default Annotator implementation.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// EventType tags an orchestration event.
type EventType int

const (
	// EventProgress carries a human-readable status message.
	EventProgress EventType = iota
	// EventVideo carries one recommended video.
	EventVideo
	// EventError carries a terminal error message; the stream ends after it.
	EventError
	// EventDone carries the completion message; the stream ends after it.
	EventDone
)

// String returns the SSE event name for the type.
func (t EventType) String() string {
	switch t {
	case EventProgress:
		return "progress"
	case EventVideo:
		return "video"
	case EventError:
		return "error"
	case EventDone:
		return "done"
	default:
		return "unknown"
	}
}

// Event is one element of the finite, ordered stream produced by a
// recommendation run. Exactly one of Message or Video is populated,
// according to Type.
type Event struct {
	Type    EventType    `json:"type"`
	Message string       `json:"message,omitempty"`
	Video   *CachedVideo `json:"video,omitempty"`
}
