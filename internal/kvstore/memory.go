// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

package kvstore

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store implementation.
//
// It backs unit tests and ephemeral deployments. Expiry is checked lazily
// on access; there is no background sweeper. The clock is injectable so
// tests can step time without sleeping.
type MemoryStore struct {
	mu      sync.Mutex
	strings map[string]memoryEntry
	sets    map[string]memorySet
	now     func() time.Time
	closed  bool
}

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

type memorySet struct {
	members   map[string]struct{}
	expiresAt time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		strings: make(map[string]memoryEntry),
		sets:    make(map[string]memorySet),
		now:     time.Now,
	}
}

// SetClock replaces the store's time source. Test helper.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Get retrieves a string value.
func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}
	entry, ok := s.liveString(key)
	if !ok {
		return "", ErrNotFound
	}
	return entry.value, nil
}

// Set stores a string value with the given TTL (ttl <= 0 means no expiry).
func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.strings[key] = memoryEntry{value: value, expiresAt: s.deadline(ttl)}
	delete(s.sets, key)
	return nil
}

// SetNX stores the value only if the key is absent.
func (s *MemoryStore) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrClosed
	}
	if _, ok := s.liveString(key); ok {
		return false, nil
	}
	s.strings[key] = memoryEntry{value: value, expiresAt: s.deadline(ttl)}
	return true, nil
}

// Del removes a key. Deleting a missing key is not an error.
func (s *MemoryStore) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	delete(s.strings, key)
	delete(s.sets, key)
	return nil
}

// Expire replaces the key's remaining lifetime.
func (s *MemoryStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if entry, ok := s.liveString(key); ok {
		entry.expiresAt = s.deadline(ttl)
		s.strings[key] = entry
		return nil
	}
	if set, ok := s.liveSet(key); ok {
		set.expiresAt = s.deadline(ttl)
		s.sets[key] = set
		return nil
	}
	return ErrNotFound
}

// TTL returns the remaining lifetime, NoExpiry when none, ErrNotFound when absent.
func (s *MemoryStore) TTL(_ context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	var expiresAt time.Time
	if entry, ok := s.liveString(key); ok {
		expiresAt = entry.expiresAt
	} else if set, ok := s.liveSet(key); ok {
		expiresAt = set.expiresAt
	} else {
		return 0, ErrNotFound
	}
	if expiresAt.IsZero() {
		return NoExpiry, nil
	}
	remaining := expiresAt.Sub(s.now())
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// SAdd adds members to the set stored at key, preserving its expiry.
func (s *MemoryStore) SAdd(_ context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	set, ok := s.liveSet(key)
	if !ok {
		set = memorySet{members: make(map[string]struct{})}
	}
	for _, m := range members {
		set.members[m] = struct{}{}
	}
	s.sets[key] = set
	return nil
}

// SMembers returns the set stored at key; a missing key yields an empty set.
func (s *MemoryStore) SMembers(_ context.Context, key string) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := make(map[string]struct{})
	if set, ok := s.liveSet(key); ok {
		for m := range set.members {
			out[m] = struct{}{}
		}
	}
	return out, nil
}

// Incr atomically increments the integer at key, preserving its expiry.
func (s *MemoryStore) Incr(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	var current int64
	entry, ok := s.liveString(key)
	if ok {
		n, err := strconv.ParseInt(entry.value, 10, 64)
		if err != nil {
			return 0, err
		}
		current = n
	}
	next := current + 1
	s.strings[key] = memoryEntry{
		value:     strconv.FormatInt(next, 10),
		expiresAt: entry.expiresAt,
	}
	return next, nil
}

// Ping reports whether the store is open.
func (s *MemoryStore) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close marks the store closed; all further operations fail with ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// liveString returns the entry if present and unexpired; expired entries
// are removed. Must be called with mu held.
func (s *MemoryStore) liveString(key string) (memoryEntry, bool) {
	entry, ok := s.strings[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		delete(s.strings, key)
		return memoryEntry{}, false
	}
	return entry, true
}

// liveSet is the set analog of liveString. Must be called with mu held.
func (s *MemoryStore) liveSet(key string) (memorySet, bool) {
	set, ok := s.sets[key]
	if !ok {
		return memorySet{}, false
	}
	if !set.expiresAt.IsZero() && !s.now().Before(set.expiresAt) {
		delete(s.sets, key)
		return memorySet{}, false
	}
	return set, true
}

func (s *MemoryStore) deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(ttl)
}
