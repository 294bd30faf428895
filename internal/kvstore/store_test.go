// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

package kvstore

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// openTestStores returns one of each Store implementation, both empty.
func openTestStores(t *testing.T) map[string]Store {
	t.Helper()

	badgerStore, err := OpenBadger(BadgerOptions{InMemory: true}, zerolog.New(io.Discard))
	if err != nil {
		t.Fatalf("open in-memory badger: %v", err)
	}
	t.Cleanup(func() { _ = badgerStore.Close() })

	memStore := NewMemory()
	t.Cleanup(func() { _ = memStore.Close() })

	return map[string]Store{
		"badger": badgerStore,
		"memory": memStore,
	}
}

func TestStore_GetSetDel(t *testing.T) {
	ctx := context.Background()
	for name, store := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get missing key: want ErrNotFound, got %v", err)
			}

			if err := store.Set(ctx, "k", "v", 0); err != nil {
				t.Fatalf("Set: %v", err)
			}
			got, err := store.Get(ctx, "k")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got != "v" {
				t.Errorf("Get = %q, want %q", got, "v")
			}

			if err := store.Del(ctx, "k"); err != nil {
				t.Fatalf("Del: %v", err)
			}
			if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get after Del: want ErrNotFound, got %v", err)
			}

			// Deleting a missing key is not an error.
			if err := store.Del(ctx, "never-existed"); err != nil {
				t.Errorf("Del missing key: %v", err)
			}
		})
	}
}

func TestStore_SetNX(t *testing.T) {
	ctx := context.Background()
	for name, store := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			created, err := store.SetNX(ctx, "lock", "a", time.Minute)
			if err != nil {
				t.Fatalf("SetNX: %v", err)
			}
			if !created {
				t.Error("first SetNX should create the key")
			}

			created, err = store.SetNX(ctx, "lock", "b", time.Minute)
			if err != nil {
				t.Fatalf("SetNX: %v", err)
			}
			if created {
				t.Error("second SetNX should not create the key")
			}

			// Losing SetNX must not overwrite the winner's value.
			got, err := store.Get(ctx, "lock")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got != "a" {
				t.Errorf("value after losing SetNX = %q, want %q", got, "a")
			}

			// After deletion the key can be claimed again.
			if err := store.Del(ctx, "lock"); err != nil {
				t.Fatalf("Del: %v", err)
			}
			created, err = store.SetNX(ctx, "lock", "c", time.Minute)
			if err != nil {
				t.Fatalf("SetNX: %v", err)
			}
			if !created {
				t.Error("SetNX after Del should create the key")
			}
		})
	}
}

func TestStore_TTLSemantics(t *testing.T) {
	ctx := context.Background()
	for name, store := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.TTL(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("TTL missing key: want ErrNotFound, got %v", err)
			}

			if err := store.Set(ctx, "forever", "v", 0); err != nil {
				t.Fatalf("Set: %v", err)
			}
			ttl, err := store.TTL(ctx, "forever")
			if err != nil {
				t.Fatalf("TTL: %v", err)
			}
			if ttl != NoExpiry {
				t.Errorf("TTL of key without expiry = %v, want NoExpiry", ttl)
			}

			if err := store.Set(ctx, "bounded", "v", time.Hour); err != nil {
				t.Fatalf("Set: %v", err)
			}
			ttl, err = store.TTL(ctx, "bounded")
			if err != nil {
				t.Fatalf("TTL: %v", err)
			}
			if ttl <= 0 || ttl > time.Hour {
				t.Errorf("TTL = %v, want within (0, 1h]", ttl)
			}

			// Expire replaces the remaining lifetime.
			if err := store.Expire(ctx, "forever", 30*time.Minute); err != nil {
				t.Fatalf("Expire: %v", err)
			}
			ttl, err = store.TTL(ctx, "forever")
			if err != nil {
				t.Fatalf("TTL after Expire: %v", err)
			}
			if ttl <= 0 || ttl > 30*time.Minute {
				t.Errorf("TTL after Expire = %v, want within (0, 30m]", ttl)
			}

			if err := store.Expire(ctx, "missing", time.Minute); !errors.Is(err, ErrNotFound) {
				t.Errorf("Expire missing key: want ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStore_Sets(t *testing.T) {
	ctx := context.Background()
	for name, store := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			// Missing set reads as empty, not as an error.
			members, err := store.SMembers(ctx, "seen")
			if err != nil {
				t.Fatalf("SMembers: %v", err)
			}
			if len(members) != 0 {
				t.Errorf("missing set has %d members, want 0", len(members))
			}

			if err := store.SAdd(ctx, "seen", "a", "b"); err != nil {
				t.Fatalf("SAdd: %v", err)
			}
			if err := store.SAdd(ctx, "seen", "b", "c"); err != nil {
				t.Fatalf("SAdd: %v", err)
			}

			members, err = store.SMembers(ctx, "seen")
			if err != nil {
				t.Fatalf("SMembers: %v", err)
			}
			if len(members) != 3 {
				t.Errorf("set has %d members, want 3", len(members))
			}
			for _, m := range []string{"a", "b", "c"} {
				if _, ok := members[m]; !ok {
					t.Errorf("member %q missing from set", m)
				}
			}

			// SAdd with no members is a no-op.
			if err := store.SAdd(ctx, "seen"); err != nil {
				t.Errorf("empty SAdd: %v", err)
			}
		})
	}
}

func TestStore_SetTTLPreservedAcrossSAdd(t *testing.T) {
	ctx := context.Background()
	for name, store := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.SAdd(ctx, "seen", "a"); err != nil {
				t.Fatalf("SAdd: %v", err)
			}
			if err := store.Expire(ctx, "seen", time.Hour); err != nil {
				t.Fatalf("Expire: %v", err)
			}
			if err := store.SAdd(ctx, "seen", "b"); err != nil {
				t.Fatalf("SAdd: %v", err)
			}

			ttl, err := store.TTL(ctx, "seen")
			if err != nil {
				t.Fatalf("TTL: %v", err)
			}
			if ttl <= 0 || ttl > time.Hour {
				t.Errorf("TTL after SAdd = %v, want preserved within (0, 1h]", ttl)
			}
		})
	}
}

func TestStore_Incr(t *testing.T) {
	ctx := context.Background()
	for name, store := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			n, err := store.Incr(ctx, "count")
			if err != nil {
				t.Fatalf("Incr: %v", err)
			}
			if n != 1 {
				t.Errorf("first Incr = %d, want 1", n)
			}

			n, err = store.Incr(ctx, "count")
			if err != nil {
				t.Fatalf("Incr: %v", err)
			}
			if n != 2 {
				t.Errorf("second Incr = %d, want 2", n)
			}

			got, err := store.Get(ctx, "count")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got != "2" {
				t.Errorf("stored counter = %q, want %q", got, "2")
			}
		})
	}
}

func TestMemoryStore_LazyExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })

	if err := store.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	now = now.Add(59 * time.Second)
	if _, err := store.Get(ctx, "k"); err != nil {
		t.Errorf("Get before expiry: %v", err)
	}

	now = now.Add(2 * time.Second)
	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after expiry: want ErrNotFound, got %v", err)
	}
}

func TestStore_ClosedOperations(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := store.Ping(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("Ping after Close: want ErrClosed, got %v", err)
	}
	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrClosed) {
		t.Errorf("Get after Close: want ErrClosed, got %v", err)
	}
}
