// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

var badgerKeyPrefix = []byte("cache/")

// badgerEnvelope is the stored value. Data is the payload JSON as produced by
// Set, kept raw so it round-trips byte for byte.
type badgerEnvelope struct {
	CreatedAt int64           `json:"created_at"`
	ExpiresAt int64           `json:"expires_at"`
	Data      json.RawMessage `json:"data"`
}

// BadgerStorage keeps records in a BadgerDB keyspace under cache/<kind>/<id>.
//
// Expiry is decided by the cache clock stored in each envelope. Badger's own
// TTL is only set so that compaction eventually reclaims dead keys.
type BadgerStorage struct {
	db *badger.DB
}

// NewBadgerStorage wraps an open database. The caller owns db.
func NewBadgerStorage(db *badger.DB) *BadgerStorage {
	return &BadgerStorage{db: db}
}

// OpenBadger opens (or creates) a Badger directory for the cache backend.
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for cache: %w", err)
	}
	return db, nil
}

func badgerKey(kind, id string) []byte {
	key := make([]byte, 0, len(badgerKeyPrefix)+len(kind)+1+len(id))
	key = append(key, badgerKeyPrefix...)
	key = append(key, kind...)
	key = append(key, '/')
	return append(key, id...)
}

func badgerKindPrefix(kind string) []byte {
	return badgerKey(kind, "")
}

// readEnvelope returns nil for a missing key.
func readEnvelope(txn *badger.Txn, key []byte) (*badgerEnvelope, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var env badgerEnvelope
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &env)
	}); err != nil {
		return nil, fmt.Errorf("decode cache envelope %s: %w", key, err)
	}
	return &env, nil
}

func writeEnvelope(txn *badger.Txn, key []byte, env *badgerEnvelope, now int64) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	e := badger.NewEntry(key, data)
	if ttl := env.ExpiresAt - now; ttl > 0 {
		e = e.WithTTL(time.Duration(ttl) * time.Second)
	}
	return txn.SetEntry(e)
}

func (s *BadgerStorage) active(kind, id string, now int64) (*badgerEnvelope, error) {
	var env *badgerEnvelope
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		env, err = readEnvelope(txn, badgerKey(kind, id))
		return err
	})
	if err != nil {
		return nil, err
	}
	if env == nil || env.ExpiresAt < now {
		return nil, nil
	}
	return env, nil
}

func (s *BadgerStorage) Get(_ context.Context, kind, id string, now int64) (*Entry, error) {
	env, err := s.active(kind, id, now)
	if err != nil || env == nil {
		return nil, err
	}
	return &Entry{
		Kind:      kind,
		ID:        id,
		Data:      []byte(env.Data),
		CreatedAt: env.CreatedAt,
		ExpiresAt: env.ExpiresAt,
	}, nil
}

func (s *BadgerStorage) ExpiresAt(_ context.Context, kind, id string, now int64) (int64, bool, error) {
	env, err := s.active(kind, id, now)
	if err != nil || env == nil {
		return 0, false, err
	}
	return env.ExpiresAt, true, nil
}

// Set runs the mode check and the write in one Badger transaction. Two
// writers racing on the same key conflict at commit; the loser reports false.
func (s *BadgerStorage) Set(_ context.Context, e *Entry, mode SetMode, now int64) (bool, error) {
	key := badgerKey(e.Kind, e.ID)
	env := &badgerEnvelope{CreatedAt: e.CreatedAt, ExpiresAt: e.ExpiresAt, Data: json.RawMessage(e.Data)}

	written := false
	err := s.db.Update(func(txn *badger.Txn) error {
		if mode != Overwrite {
			existing, err := readEnvelope(txn, key)
			if err != nil {
				return err
			}
			isActive := existing != nil && existing.ExpiresAt >= now
			switch mode {
			case OnlyIfNotExists:
				if isActive {
					return nil
				}
			case OnlyIfExists:
				if !isActive {
					return nil
				}
			default:
				return fmt.Errorf("unknown set mode %s", mode)
			}
		}
		if err := writeEnvelope(txn, key, env, now); err != nil {
			return err
		}
		written = true
		return nil
	})
	if errors.Is(err, badger.ErrConflict) && mode == OnlyIfNotExists {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return written, nil
}

func (s *BadgerStorage) SetExpiresAt(_ context.Context, kind, id string, expiresAt, now int64) (bool, error) {
	key := badgerKey(kind, id)
	updated := false
	err := s.db.Update(func(txn *badger.Txn) error {
		env, err := readEnvelope(txn, key)
		if err != nil {
			return err
		}
		if env == nil || env.ExpiresAt < now {
			return nil
		}
		env.ExpiresAt = expiresAt
		if err := writeEnvelope(txn, key, env, now); err != nil {
			return err
		}
		updated = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return updated, nil
}

func (s *BadgerStorage) Exists(_ context.Context, kind, id string, now int64) (bool, error) {
	env, err := s.active(kind, id, now)
	return env != nil, err
}

func (s *BadgerStorage) Remove(_ context.Context, kind, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(badgerKey(kind, id)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
}

// RemoveByPrefix matches raw key bytes, so the prefix is literal.
func (s *BadgerStorage) RemoveByPrefix(_ context.Context, kind, prefix string) (int64, error) {
	keyPrefix := append(badgerKindPrefix(kind), prefix...)

	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = keyPrefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return s.deleteKeys(keys)
}

func (s *BadgerStorage) RemoveExpired(_ context.Context, now int64, limit int) (int64, error) {
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = badgerKeyPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid() && len(keys) < limit; it.Next() {
			item := it.Item()
			var env badgerEnvelope
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &env)
			}); err != nil {
				continue
			}
			if env.ExpiresAt < now {
				keys = append(keys, item.KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return s.deleteKeys(keys)
}

func (s *BadgerStorage) deleteKeys(keys [][]byte) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	wb := s.db.NewWriteBatch()
	for _, key := range keys {
		if err := wb.Delete(key); err != nil {
			wb.Cancel()
			return 0, err
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, err
	}
	return int64(len(keys)), nil
}

