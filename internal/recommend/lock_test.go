// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/clipforge/podrec/internal/kvstore"
)

func TestGuardMutualExclusion(t *testing.T) {
	store := kvstore.NewMemory()
	t.Cleanup(func() { _ = store.Close() })
	g := NewGuard(store, 10*time.Second, zerolog.Nop())
	ctx := context.Background()

	ok, err := g.Acquire(ctx, "u1")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if !ok {
		t.Fatal("first acquire should succeed")
	}

	ok, err = g.Acquire(ctx, "u1")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if ok {
		t.Error("second acquire for the same user must fail while held")
	}

	// Different users never contend.
	ok, err = g.Acquire(ctx, "u2")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if !ok {
		t.Error("different user should acquire independently")
	}
}

func TestGuardReleaseAllowsReacquire(t *testing.T) {
	store := kvstore.NewMemory()
	t.Cleanup(func() { _ = store.Close() })
	g := NewGuard(store, 10*time.Second, zerolog.Nop())
	ctx := context.Background()

	if ok, _ := g.Acquire(ctx, "u1"); !ok {
		t.Fatal("acquire failed")
	}
	g.Release(ctx, "u1")
	if ok, _ := g.Acquire(ctx, "u1"); !ok {
		t.Error("acquire after release should succeed")
	}
}

// A crashed holder's lock frees itself through the TTL.
func TestGuardTTLReapsStaleLock(t *testing.T) {
	store := kvstore.NewMemory()
	t.Cleanup(func() { _ = store.Close() })
	g := NewGuard(store, 10*time.Second, zerolog.Nop())
	ctx := context.Background()

	base := time.Now()
	now := base
	store.SetClock(func() time.Time { return now })

	if ok, _ := g.Acquire(ctx, "u1"); !ok {
		t.Fatal("acquire failed")
	}

	now = base.Add(11 * time.Second)
	ok, err := g.Acquire(ctx, "u1")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if !ok {
		t.Error("expired lock should be acquirable")
	}
}
