// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

package api

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/clipforge/podrec/internal/kvstore"
	"github.com/clipforge/podrec/internal/metrics"
	"github.com/clipforge/podrec/internal/recommend"
)

// Recommender is the pipeline surface the handler consumes.
type Recommender interface {
	Recommend(ctx context.Context, userID, topic, language string) <-chan recommend.Event
}

// Handler serves the recommendation API.
type Handler struct {
	rec      Recommender
	store    kvstore.Store
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewHandler creates the API handler.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(rec Recommender, store kvstore.Store, logger zerolog.Logger) *Handler {
	return &Handler{
		rec:      rec,
		store:    store,
		validate: validator.New(),
		logger:   logger.With().Str("component", "api").Logger(),
	}
}

// Recommendations streams one recommendation run as Server-Sent Events.
// Each pipeline event becomes one SSE message named after the event type
// with a JSON body. The stream always runs to pipeline completion: a
// client disconnect stops writes but never the run, so state commits are
// not lost.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	req, err := parseRecommendationRequest(r, h.validate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	metrics.SSEStreamsActive.Inc()
	defer metrics.SSEStreamsActive.Dec()

	events := h.rec.Recommend(r.Context(), req.UserID, req.Topic, req.Language)

	clientGone := false
	for event := range events {
		if clientGone {
			// Keep draining so the pipeline finishes its commits.
			continue
		}
		if err := writeSSE(w, event); err != nil {
			h.logger.Debug().Err(err).Str("user_id", req.UserID).Msg("client disconnected mid-stream")
			clientGone = true
			continue
		}
		flusher.Flush()
	}
}

// writeSSE serializes one pipeline event as an SSE message.
func writeSSE(w http.ResponseWriter, event recommend.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte("event: " + event.Type.String() + "\n")); err != nil {
		return err
	}
	if _, err := w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n\n"))
	return err
}

// Health reports liveness plus store reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("store ping failed")
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]string{"status": status})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
