// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/clipforge/podrec/internal/api"
	"github.com/clipforge/podrec/internal/config"
	"github.com/clipforge/podrec/internal/kvstore"
	"github.com/clipforge/podrec/internal/logging"
	"github.com/clipforge/podrec/internal/providers/gemini"
	"github.com/clipforge/podrec/internal/providers/youtube"
	"github.com/clipforge/podrec/internal/recommend"
	"github.com/clipforge/podrec/internal/supervisor"
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.Logger()

	logging.Info().
		Str("store_path", cfg.Store.Path).
		Bool("gemini_enabled", cfg.Gemini.APIKey != "").
		Str("timezone", cfg.Recommend.Timezone).
		Msg("Configuration loaded")

	store, err := kvstore.OpenBadger(kvstore.BadgerOptions{
		Path:     cfg.Store.Path,
		InMemory: cfg.Store.InMemory,
	}, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open key-value store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()
	logging.Info().Msg("Key-value store opened")

	recCfg := &recommend.Config{
		VideosPerRequest:     cfg.Recommend.VideosPerRequest,
		MinAcceptable:        cfg.Recommend.MinAcceptable,
		PoolRefreshThreshold: cfg.Recommend.PoolRefreshThreshold,
		RefillTarget:         cfg.Recommend.RefillTarget,
		MaxSearchAttempts:    cfg.Recommend.MaxSearchAttempts,
		DailyRefreshLimit:    cfg.Recommend.DailyRefreshLimit,
		PoolTTL:              cfg.Recommend.PoolTTL,
		SeenTTL:              cfg.Recommend.SeenTTL,
		LockTTL:              cfg.Recommend.LockTTL,
		Timezone:             cfg.Recommend.Timezone,
		PacingDelay:          cfg.Recommend.PacingDelay,
		ExcludedKeywords:     cfg.Recommend.ExcludedKeywords,
		ExcludedScripts:      cfg.Recommend.ExcludedScripts,
	}
	if err := recCfg.Validate(); err != nil {
		logging.Fatal().Err(err).Msg("Invalid recommendation configuration")
	}

	searchProvider := youtube.New(youtube.Config{
		APIKey:            cfg.YouTube.APIKey,
		BaseURL:           cfg.YouTube.BaseURL,
		Timeout:           cfg.YouTube.Timeout,
		RequestsPerSecond: cfg.YouTube.RequestsPerSecond,
	}, logger)

	// The language model is optional; without it the synthesizer and
	// annotator fall back to their deterministic templates.
	var llm recommend.LLM
	var annotator recommend.Annotator
	if cfg.Gemini.APIKey != "" {
		client := gemini.New(gemini.Config{
			APIKey:            cfg.Gemini.APIKey,
			Model:             cfg.Gemini.Model,
			BaseURL:           cfg.Gemini.BaseURL,
			Timeout:           cfg.Gemini.Timeout,
			RequestsPerSecond: cfg.Gemini.RequestsPerSecond,
		}, logger)
		llm = client
		annotator = recommend.NewLLMAnnotator(client, logger)
	} else {
		logging.Warn().Msg("No Gemini API key configured, using template fallbacks")
	}

	orchestrator := recommend.NewOrchestrator(
		recCfg,
		recommend.NewPoolCache(store, recCfg.PoolTTL, logger),
		recommend.NewHistory(store, recCfg, logger),
		recommend.NewGuard(store, recCfg.LockTTL, logger),
		recommend.NewSynthesizer(llm, logger),
		searchProvider,
		annotator,
		logger,
	)

	handler := api.NewHandler(orchestrator, store, logger)
	router := api.NewRouter(handler, &cfg.API)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.Timeout,
		// No WriteTimeout: the recommendations endpoint streams SSE for
		// the lifetime of a pipeline run.
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddDataService(kvstore.NewGCService(store, cfg.Store.GCInterval, cfg.Store.GCDiscardRatio, logger))
	tree.AddAPIService(supervisor.NewHTTPService(server, supervisor.DefaultTreeConfig().ShutdownTimeout, logger))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Int("port", cfg.Server.Port).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}
