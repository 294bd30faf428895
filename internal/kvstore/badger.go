// Podrec - Podcast Video Recommendation Caching and Delivery Service
// Copyright 2026 ClipForge
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipforge/podrec

package kvstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// BadgerStore implements Store on top of an embedded BadgerDB database.
// Badger entries carry native TTLs, so expiry needs no sweeper of our own;
// only the value log requires periodic GC (see GCService).
type BadgerStore struct {
	db     *badger.DB
	logger zerolog.Logger
}

// BadgerOptions configures OpenBadger.
type BadgerOptions struct {
	// Path is the on-disk database directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps the whole database in memory. Used by tests and
	// ephemeral deployments; all data is lost on close.
	InMemory bool
}

// OpenBadger opens (creating if necessary) a Badger-backed store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func OpenBadger(opts BadgerOptions, logger zerolog.Logger) (*BadgerStore, error) {
	badgerOpts := badger.DefaultOptions(opts.Path).
		WithInMemory(opts.InMemory).
		WithLogger(badgerLogger{logger: logger})

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", opts.Path, err)
	}

	return &BadgerStore{
		db:     db,
		logger: logger.With().Str("component", "kvstore").Logger(),
	}, nil
}

// DB exposes the underlying database for the GC service.
func (s *BadgerStore) DB() *badger.DB {
	return s.db
}

// Get retrieves a string value.
func (s *BadgerStore) Get(_ context.Context, key string) (string, error) {
	var value string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %q: %w", key, err)
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if err != nil {
		return "", err
	}
	return value, nil
}

// Set stores a string value with the given TTL (ttl <= 0 means no expiry).
func (s *BadgerStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), []byte(value))
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

// SetNX stores the value only if the key is absent. The read and write run
// in one Badger transaction, so concurrent winners are serialized.
func (s *BadgerStore) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	created := false
	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		if err == nil {
			return nil // already held
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("setnx probe %q: %w", key, err)
		}
		entry := badger.NewEntry([]byte(key), []byte(value))
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		if err := txn.SetEntry(entry); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// Del removes a key. Deleting a missing key is not an error.
func (s *BadgerStore) Del(_ context.Context, key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Expire replaces the key's remaining lifetime.
func (s *BadgerStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("expire %q: %w", key, err)
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		entry := badger.NewEntry([]byte(key), val)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

// TTL returns the remaining lifetime, NoExpiry when none, ErrNotFound when absent.
func (s *BadgerStore) TTL(_ context.Context, key string) (time.Duration, error) {
	var ttl time.Duration
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("ttl %q: %w", key, err)
		}
		exp := item.ExpiresAt()
		if exp == 0 {
			ttl = NoExpiry
			return nil
		}
		remaining := time.Until(time.Unix(int64(exp), 0))
		if remaining < 0 {
			remaining = 0
		}
		ttl = remaining
		return nil
	})
	if err != nil {
		return 0, err
	}
	return ttl, nil
}

// SAdd adds members to the set stored at key. The set is stored as one
// JSON-encoded sorted slice; the read-merge-write runs in a single
// transaction and the set's remaining expiry is preserved.
func (s *BadgerStore) SAdd(_ context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	return s.db.Update(func(txn *badger.Txn) error {
		existing := make(map[string]struct{})
		var keep time.Duration

		item, err := txn.Get([]byte(key))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			// new set
		case err != nil:
			return fmt.Errorf("sadd read %q: %w", key, err)
		default:
			keep = remainingTTL(item)
			if err := item.Value(func(val []byte) error {
				return decodeSet(val, existing)
			}); err != nil {
				return fmt.Errorf("sadd decode %q: %w", key, err)
			}
		}

		for _, m := range members {
			existing[m] = struct{}{}
		}
		data, err := encodeSet(existing)
		if err != nil {
			return fmt.Errorf("sadd encode %q: %w", key, err)
		}
		entry := badger.NewEntry([]byte(key), data)
		if keep > 0 {
			entry = entry.WithTTL(keep)
		}
		return txn.SetEntry(entry)
	})
}

// SMembers returns the set stored at key; a missing key yields an empty set.
func (s *BadgerStore) SMembers(_ context.Context, key string) (map[string]struct{}, error) {
	members := make(map[string]struct{})
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("smembers %q: %w", key, err)
		}
		return item.Value(func(val []byte) error {
			return decodeSet(val, members)
		})
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}

// Incr atomically increments the integer at key (absent counts as zero)
// and preserves any remaining expiry.
func (s *BadgerStore) Incr(_ context.Context, key string) (int64, error) {
	var result int64
	err := s.db.Update(func(txn *badger.Txn) error {
		var current int64
		var keep time.Duration

		item, err := txn.Get([]byte(key))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			// starts at zero
		case err != nil:
			return fmt.Errorf("incr read %q: %w", key, err)
		default:
			keep = remainingTTL(item)
			if err := item.Value(func(val []byte) error {
				n, parseErr := strconv.ParseInt(string(val), 10, 64)
				if parseErr != nil {
					return fmt.Errorf("incr on non-integer value: %w", parseErr)
				}
				current = n
				return nil
			}); err != nil {
				return err
			}
		}

		result = current + 1
		entry := badger.NewEntry([]byte(key), []byte(strconv.FormatInt(result, 10)))
		if keep > 0 {
			entry = entry.WithTTL(keep)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return 0, err
	}
	return result, nil
}

// Ping verifies the database is usable.
func (s *BadgerStore) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return ErrClosed
	}
	return s.db.View(func(*badger.Txn) error { return nil })
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// remainingTTL computes the entry's remaining lifetime; zero means no expiry.
func remainingTTL(item *badger.Item) time.Duration {
	exp := item.ExpiresAt()
	if exp == 0 {
		return 0
	}
	d := time.Until(time.Unix(int64(exp), 0))
	if d < 0 {
		return 0
	}
	return d
}

func decodeSet(val []byte, into map[string]struct{}) error {
	var list []string
	if err := json.Unmarshal(val, &list); err != nil {
		return err
	}
	for _, m := range list {
		into[m] = struct{}{}
	}
	return nil
}

func encodeSet(set map[string]struct{}) ([]byte, error) {
	list := make([]string, 0, len(set))
	for m := range set {
		list = append(list, m)
	}
	sort.Strings(list) // stable representation for inspection and tests
	return json.Marshal(list)
}

// badgerLogger routes Badger's internal logging into zerolog.
type badgerLogger struct {
	logger zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf("badger: "+format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msgf("badger: "+format, args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug().Msgf("badger: "+format, args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf("badger: "+format, args...)
}
