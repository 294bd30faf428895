// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/clipforge/podrec/internal/metrics"
)

// searchPageSize bounds how many candidates one attempt keeps after
// sorting by popularity, before annotation.
const searchPageSize = 15

// emergencyQueries builds the last-resort queries, tried in order with the
// loosest relaxation level: generic topic, language-tagged generic,
// interview-style, and year-trending.
func emergencyQueries(topic, language string) []string {
	return []string{
		topic + " podcast",
		"podcast " + languageWord(language),
		topic + " interview podcast",
		"trending podcast 2025",
	}
}

// Orchestrator runs the full recommendation pipeline for one user request:
// lock, replay or quota check, pool selection with refill and emergency
// search, delivery, and state commit.
type Orchestrator struct {
	cfg       *Config
	pool      *PoolCache
	history   *History
	guard     *Guard
	synth     *Synthesizer
	search    SearchProvider
	annotator Annotator
	filter    *OriginFilter
	logger    zerolog.Logger

	// sleep is injectable so tests skip pacing.
	sleep func(time.Duration)
}

// NewOrchestrator wires the pipeline. cfg must have passed Validate.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewOrchestrator(
	cfg *Config,
	pool *PoolCache,
	history *History,
	guard *Guard,
	synth *Synthesizer,
	search SearchProvider,
	annotator Annotator,
	logger zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		pool:      pool,
		history:   history,
		guard:     guard,
		synth:     synth,
		search:    search,
		annotator: annotator,
		filter:    NewOriginFilter(cfg.ExcludedKeywords, cfg.ExcludedScripts),
		logger:    logger.With().Str("component", "orchestrator").Logger(),
		sleep:     time.Sleep,
	}
}

// Recommend runs the pipeline and returns its finite event stream. The
// stream always terminates with EventError or EventDone and is then
// closed. The consumer must drain the channel.
//
// Cancellation is deliberately not honored mid-run: once past the lock,
// the pipeline runs to completion server-side so state commits are never
// skipped because a client disconnected. The caller-facing ctx is detached
// before use.
func (o *Orchestrator) Recommend(ctx context.Context, userID, topic, language string) <-chan Event {
	events := make(chan Event, 32)
	ctx = context.WithoutCancel(ctx)

	go func() {
		defer close(events)
		defer func() {
			if r := recover(); r != nil {
				o.logger.Error().Interface("panic", r).Str("user_id", userID).Msg("recommendation run panicked")
				events <- Event{Type: EventError, Message: "Something went wrong. Please try again."}
			}
		}()
		o.run(ctx, events, userID, topic, language)
	}()

	return events
}

// run executes the pipeline steps. All store and provider errors surface
// here as a single terminal error event; the lock is released on every
// path after a successful acquire.
func (o *Orchestrator) run(ctx context.Context, events chan<- Event, userID, topic, language string) {
	log := o.logger.With().Str("user_id", userID).Str("topic", topic).Logger()
	metrics.RecommendationRuns.Inc()

	acquired, err := o.guard.Acquire(ctx, userID)
	if err != nil {
		o.fail(events, log, "acquire lock", err)
		return
	}
	if !acquired {
		metrics.LockContention.Inc()
		events <- Event{Type: EventProgress, Message: "A recommendation request is already running. Please retry in a few seconds."}
		events <- Event{Type: EventDone, Message: "Request skipped."}
		return
	}
	defer o.guard.Release(ctx, userID)

	if err := o.history.ValidateSeenTTL(ctx, userID); err != nil {
		o.fail(events, log, "validate seen TTL", err)
		return
	}

	today, err := o.history.GetTodayCache(ctx, userID)
	if err != nil {
		o.fail(events, log, "load day cache", err)
		return
	}
	if today != nil && today.RefreshCount >= o.cfg.DailyRefreshLimit {
		o.replay(events, log, today)
		return
	}

	allowed, _, err := o.history.CanRefresh(ctx, userID)
	if err != nil {
		o.fail(events, log, "check refresh quota", err)
		return
	}
	if !allowed {
		events <- Event{Type: EventProgress, Message: "You have used all of today's refreshes. Come back tomorrow for new picks."}
		events <- Event{Type: EventDone, Message: "Daily refresh limit reached."}
		return
	}

	seen, err := o.history.GetSeen(ctx, userID)
	if err != nil {
		o.fail(events, log, "load seen set", err)
		return
	}

	pool, err := o.pool.Get(ctx, topic, language)
	if err != nil {
		o.fail(events, log, "load pool", err)
		return
	}
	if pool == nil {
		metrics.PoolMisses.Inc()
	} else {
		metrics.PoolHits.Inc()
	}

	unseen := unseenVideos(pool, seen)

	if pool == nil || len(unseen) < o.cfg.PoolRefreshThreshold {
		events <- Event{Type: EventProgress, Message: "Searching for fresh episodes..."}

		collected, lastQuery := o.refill(ctx, log, topic, language, seen, pool)

		if pool == nil {
			if err := o.pool.Create(ctx, topic, language, collected, lastQuery); err != nil {
				o.fail(events, log, "create pool", err)
				return
			}
			if len(collected) == 0 {
				log.Error().Msg("no suitable videos found for new pool")
				events <- Event{Type: EventDone, Message: "No suitable podcast episodes found for this topic right now. Try a different topic or language."}
				return
			}
		} else if len(collected) > 0 {
			if _, err := o.pool.Append(ctx, topic, language, collected); err != nil {
				o.fail(events, log, "append pool", err)
				return
			}
		}

		pool, err = o.pool.Get(ctx, topic, language)
		if err != nil {
			o.fail(events, log, "reload pool", err)
			return
		}
		unseen = unseenVideos(pool, seen)
	}

	var selection []CachedVideo
	switch {
	case len(unseen) >= o.cfg.VideosPerRequest:
		selection = unseen[:o.cfg.VideosPerRequest]
	case len(unseen) >= o.cfg.MinAcceptable:
		selection = unseen
	default:
		events <- Event{Type: EventProgress, Message: "Running out of fresh picks, widening the search..."}
		found := o.emergency(ctx, log, topic, language, seen, unseen)
		if len(found) > 0 {
			if _, err := o.pool.Append(ctx, topic, language, found); err != nil {
				o.fail(events, log, "append emergency results", err)
				return
			}
		}
		selection = found
	}

	selection, dropped := dedupeByID(selection)
	if dropped > 0 {
		events <- Event{Type: EventProgress, Message: fmt.Sprintf("Removed %d duplicate result(s).", dropped)}
	}

	if len(selection) == 0 {
		log.Error().Msg("content space exhausted, empty selection after all attempts")
		events <- Event{Type: EventDone, Message: "No new unique podcast episodes left for this topic.\n" +
			"Everything we could find has already been recommended to you.\n" +
			"Try a different topic or language preference."}
		return
	}

	for _, v := range selection {
		v := v
		events <- Event{Type: EventVideo, Video: &v}
		if o.cfg.PacingDelay > 0 {
			o.sleep(o.cfg.PacingDelay)
		}
	}

	ids := make([]string, len(selection))
	for i, v := range selection {
		ids[i] = v.VideoID
	}
	if err := o.history.MarkSeen(ctx, userID, ids); err != nil {
		o.fail(events, log, "mark seen", err)
		return
	}

	priorVideos := []CachedVideo(nil)
	priorCount := 0
	if today != nil {
		priorVideos = today.Videos
		priorCount = today.RefreshCount
	}
	if err := o.history.SetTodayCache(ctx, userID, append(priorVideos, selection...), priorCount+1); err != nil {
		o.fail(events, log, "write day cache", err)
		return
	}
	if _, err := o.history.IncrementRefresh(ctx, userID); err != nil {
		o.fail(events, log, "increment refresh quota", err)
		return
	}

	total := len(seen)
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			total++
		}
	}
	events <- Event{Type: EventDone, Message: fmt.Sprintf("Delivered %d episode(s). %d unique videos recommended so far.", len(selection), total)}
}

// replay serves the exhausted-quota path: the last batch of the day cache,
// verbatim, unfiltered.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (o *Orchestrator) replay(events chan<- Event, log zerolog.Logger, today *UserDayCache) {
	metrics.QuotaReplays.Inc()
	if len(today.Videos) == 0 {
		log.Warn().Msg("exhausted day cache holds no videos")
		events <- Event{Type: EventError, Message: "Today's recommendations are unavailable. Please try again tomorrow."}
		return
	}

	events <- Event{Type: EventProgress, Message: "Daily refresh limit reached. Replaying your latest batch."}
	videos := today.Videos
	if len(videos) > o.cfg.VideosPerRequest {
		videos = videos[len(videos)-o.cfg.VideosPerRequest:]
	}
	for _, v := range videos {
		v := v
		events <- Event{Type: EventVideo, Video: &v}
		if o.cfg.PacingDelay > 0 {
			o.sleep(o.cfg.PacingDelay)
		}
	}
	events <- Event{Type: EventDone, Message: fmt.Sprintf("Replayed %d episode(s) from today's batch.", len(videos))}
}

// refill runs the relaxation loop, accumulating up to RefillTarget new
// annotated videos across MaxSearchAttempts attempts. Search failures skip
// to the next attempt; only exhaustion ends the loop early. The second
// return is the last query used, recorded on the pool for diagnostics.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (o *Orchestrator) refill(ctx context.Context, log zerolog.Logger, topic, language string, seen map[string]struct{}, pool *VideoPool) ([]CachedVideo, string) {
	exclude := make(map[string]struct{}, len(seen))
	for id := range seen {
		exclude[id] = struct{}{}
	}
	if pool != nil {
		for _, v := range pool.Videos {
			exclude[v.VideoID] = struct{}{}
		}
	}

	var (
		collected []CachedVideo
		lastQuery string
	)
	for attempt := 1; attempt <= o.cfg.MaxSearchAttempts && len(collected) < o.cfg.RefillTarget; attempt++ {
		metrics.SearchAttempts.Inc()
		opts := relaxationParamsForAttempt(attempt)

		query := o.synth.Synthesize(ctx, topic, language)
		if mod := modifierForAttempt(attempt); mod != "" {
			query = mod + " " + query
		}
		lastQuery = query

		results, err := o.search.Search(ctx, query, opts)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Str("query", query).Msg("search attempt failed, relaxing")
			continue
		}

		candidates := o.screen(results, opts, exclude)
		budget := o.cfg.RefillTarget - len(collected)
		for _, res := range candidates {
			if budget == 0 {
				break
			}
			video := o.annotate(ctx, log, res, topic)
			collected = append(collected, video)
			exclude[video.VideoID] = struct{}{}
			budget--
		}
		log.Debug().Int("attempt", attempt).Int("collected", len(collected)).Msg("refill attempt done")
	}
	return collected, lastQuery
}

// emergency runs the fixed fallback templates with the loosest relaxation,
// stopping once the acceptable floor is reached. The result replaces the
// depleted unseen remainder entirely.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (o *Orchestrator) emergency(ctx context.Context, log zerolog.Logger, topic, language string, seen map[string]struct{}, unseen []CachedVideo) []CachedVideo {
	exclude := make(map[string]struct{}, len(seen)+len(unseen))
	for id := range seen {
		exclude[id] = struct{}{}
	}
	for _, v := range unseen {
		exclude[v.VideoID] = struct{}{}
	}

	opts := relaxationParamsForAttempt(o.cfg.MaxSearchAttempts)

	var found []CachedVideo
	for _, query := range emergencyQueries(topic, language) {
		if len(found) >= o.cfg.MinAcceptable {
			break
		}

		metrics.SearchAttempts.Inc()
		results, err := o.search.Search(ctx, query, opts)
		if err != nil {
			log.Warn().Err(err).Str("query", query).Msg("emergency search failed, next template")
			continue
		}

		for _, res := range o.screen(results, opts, exclude) {
			if len(found) >= o.cfg.MinAcceptable {
				break
			}
			video := o.annotate(ctx, log, res, topic)
			found = append(found, video)
			exclude[video.VideoID] = struct{}{}
		}
	}
	if len(found) < o.cfg.MinAcceptable {
		log.Warn().Int("found", len(found)).Msg("emergency search below acceptable floor")
	}
	return found
}

// screen applies the local candidate filters in order: constraint window,
// origin policy, exclusion set; then sorts by popularity and keeps the top
// page.
func (o *Orchestrator) screen(results []VideoSearchResult, opts SearchOptions, exclude map[string]struct{}) []VideoSearchResult {
	kept := make([]VideoSearchResult, 0, len(results))
	for _, r := range results {
		if r.DurationMinutes < opts.MinDurationMinutes || r.DurationMinutes > opts.MaxDurationMinutes {
			continue
		}
		if r.ViewCount < opts.MinViewCount {
			continue
		}
		if o.filter.IsLikelyExcludedOrigin(r.Title + " " + r.Creator + " " + r.Description) {
			continue
		}
		if _, dup := exclude[r.ID]; dup {
			continue
		}
		kept = append(kept, r)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].ViewCount > kept[j].ViewCount
	})
	if len(kept) > searchPageSize {
		kept = kept[:searchPageSize]
	}
	return kept
}

// annotate produces the served video, substituting the deterministic
// fallback sentence when the annotator fails.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (o *Orchestrator) annotate(ctx context.Context, log zerolog.Logger, res VideoSearchResult, topic string) CachedVideo {
	reasoning := ""
	if o.annotator != nil {
		var err error
		reasoning, err = o.annotator.Annotate(ctx, res, topic)
		if err != nil {
			log.Debug().Err(err).Str("video_id", res.ID).Msg("annotation failed, using fallback")
			reasoning = ""
		}
	}
	if reasoning == "" {
		metrics.AnnotationFallbacks.Inc()
		reasoning = FallbackReasoning(res, topic)
	}

	return CachedVideo{
		VideoID:      res.ID,
		Title:        res.Title,
		Creator:      res.Creator,
		ThumbnailURL: res.ThumbnailURL,
		VideoURL:     res.URL,
		ViewCount:    res.ViewCount,
		Duration:     fmt.Sprintf("%d minutes", res.DurationMinutes),
		Reasoning:    reasoning,
	}
}

// fail logs a pipeline error and emits the terminal error event.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (o *Orchestrator) fail(events chan<- Event, log zerolog.Logger, stage string, err error) {
	metrics.RecommendationErrors.Inc()
	log.Error().Err(err).Str("stage", stage).Msg("recommendation run failed")
	events <- Event{Type: EventError, Message: "Recommendation service hit an internal error. Please try again."}
}

// unseenVideos returns pool videos not in the seen set, preserving
// discovery order.
func unseenVideos(pool *VideoPool, seen map[string]struct{}) []CachedVideo {
	if pool == nil {
		return nil
	}
	unseen := make([]CachedVideo, 0, len(pool.Videos))
	for _, v := range pool.Videos {
		if _, ok := seen[v.VideoID]; !ok {
			unseen = append(unseen, v)
		}
	}
	return unseen
}

// dedupeByID strips residual duplicate VideoIDs, keeping first occurrence,
// and reports how many were dropped.
func dedupeByID(videos []CachedVideo) ([]CachedVideo, int) {
	seen := make(map[string]struct{}, len(videos))
	out := videos[:0:0]
	for _, v := range videos {
		if _, dup := seen[v.VideoID]; dup {
			continue
		}
		seen[v.VideoID] = struct{}{}
		out = append(out, v)
	}
	return out, len(videos) - len(out)
}

// languageWord maps the preference onto the emergency query language tag.
func languageWord(language string) string {
	if langCode(language) == "ID" {
		return "indonesia"
	}
	return "english"
}
