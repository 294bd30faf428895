// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

package kvstore

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// GCService periodically reclaims Badger value-log space. It implements
// suture.Service and is supervised from the data layer of the tree.
type GCService struct {
	store        *BadgerStore
	interval     time.Duration
	discardRatio float64
	logger       zerolog.Logger
}

// NewGCService creates a GC worker for the given store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewGCService(store *BadgerStore, interval time.Duration, discardRatio float64, logger zerolog.Logger) *GCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if discardRatio <= 0 || discardRatio >= 1 {
		discardRatio = 0.5
	}
	return &GCService{
		store:        store,
		interval:     interval,
		discardRatio: discardRatio,
		logger:       logger.With().Str("component", "kvstore-gc").Logger(),
	}
}

// Serve runs the GC loop until the context is canceled.
func (g *GCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			g.runOnce()
		}
	}
}

// runOnce triggers value-log GC until Badger reports nothing left to rewrite.
func (g *GCService) runOnce() {
	for {
		err := g.store.db.RunValueLogGC(g.discardRatio)
		if err == nil {
			continue // a file was rewritten, try for another
		}
		if errors.Is(err, badger.ErrNoRewrite) {
			return
		}
		if errors.Is(err, badger.ErrRejected) {
			// GC already running or DB closed; back off until next tick.
			return
		}
		g.logger.Warn().Err(err).Msg("value log GC failed")
		return
	}
}

// String names the service in supervisor logs.
func (g *GCService) String() string {
	return "kvstore-gc"
}
