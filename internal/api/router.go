// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clipforge/podrec/internal/config"
)

// NewRouter assembles the HTTP surface: the recommendations stream, the
// health probe, and the Prometheus scrape endpoint.
func NewRouter(handler *Handler, cfg *config.APIConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogMiddleware(handler.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(corsMiddleware(cfg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(metricsMiddleware)
		r.Get("/health", handler.Health)

		r.Group(func(r chi.Router) {
			r.Use(rateLimitMiddleware(cfg))
			r.Get("/recommendations", handler.Recommendations)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
