// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

// Package cache is a persistent TTL store for small typed records.
//
// Records are addressed by (kind, id). The kind comes from the payload type,
// so a visitor identity and an article permit never collide even when their
// ids do. A record is active while expires_at >= now; expired records are
// invisible to every read and are physically removed by RemoveExpired or an
// explicit Remove.
//
// Go methods cannot carry type parameters, so the typed operations are
// package functions taking the *Cache handle:
//
//	ok, err := cache.Set(ctx, c, visitor.Identity{VisitorID: id}, 7*24*time.Hour, cache.OnlyIfNotExists)
//	rec, err := cache.Get[visitor.Identity](ctx, c, id)
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/goccy/go-json"

	"github.com/tomtom215/inkwell/internal/metrics"
	"github.com/tomtom215/inkwell/internal/models"
)

// Payload is implemented by every type stored in the cache. Kind must be
// callable on the zero value.
type Payload interface {
	Kind() string
	CacheID() string
}

// Record is a decoded cache row.
type Record[T Payload] struct {
	ID        string
	Kind      string
	CreatedAt int64
	ExpiresAt int64
	Data      T
}

// SetMode selects the write semantics of Set.
type SetMode int

const (
	// Overwrite upserts unconditionally.
	Overwrite SetMode = iota
	// OnlyIfNotExists writes only when no active record holds the key. An
	// expired record under the key is replaced.
	OnlyIfNotExists
	// OnlyIfExists rewrites an active record and never creates one.
	OnlyIfExists
)

func (m SetMode) String() string {
	switch m {
	case Overwrite:
		return "overwrite"
	case OnlyIfNotExists:
		return "only_if_not_exists"
	case OnlyIfExists:
		return "only_if_exists"
	default:
		return fmt.Sprintf("SetMode(%d)", int(m))
	}
}

// Entry is the byte-level row handed to a Storage.
type Entry = models.CacheEntry

// Storage is a cache backend. now is unix seconds from the cache clock; a
// backend never consults its own clock for expiry.
type Storage interface {
	Get(ctx context.Context, kind, id string, now int64) (*Entry, error)
	ExpiresAt(ctx context.Context, kind, id string, now int64) (int64, bool, error)
	// Set reports false when the mode's precondition did not hold, including
	// losing a concurrent OnlyIfNotExists race.
	Set(ctx context.Context, e *Entry, mode SetMode, now int64) (bool, error)
	SetExpiresAt(ctx context.Context, kind, id string, expiresAt, now int64) (bool, error)
	Exists(ctx context.Context, kind, id string, now int64) (bool, error)
	Remove(ctx context.Context, kind, id string) error
	RemoveByPrefix(ctx context.Context, kind, prefix string) (int64, error)
	RemoveExpired(ctx context.Context, now int64, limit int) (int64, error)
}

// Cache binds a Storage to a clock.
type Cache struct {
	storage Storage
	clock   clock.Clock
}

// New returns a cache over storage. A nil clock means wall time.
func New(storage Storage, clk clock.Clock) *Cache {
	if clk == nil {
		clk = clock.New()
	}
	return &Cache{storage: storage, clock: clk}
}

// Now returns the cache clock's current time.
func (c *Cache) Now() time.Time {
	return c.clock.Now()
}

func (c *Cache) now() int64 {
	return c.clock.Now().Unix()
}

// RemoveExpired physically deletes up to limit expired records.
func (c *Cache) RemoveExpired(ctx context.Context, limit int) (int64, error) {
	n, err := c.storage.RemoveExpired(ctx, c.now(), limit)
	if err != nil {
		return 0, fmt.Errorf("failed to remove expired cache records: %w", err)
	}
	return n, nil
}

func kindOf[T Payload]() string {
	var zero T
	return zero.Kind()
}

// Get returns the active record of kind T with the given id, or nil.
func Get[T Payload](ctx context.Context, c *Cache, id string) (*Record[T], error) {
	kind := kindOf[T]()
	entry, err := c.storage.Get(ctx, kind, id, c.now())
	if err != nil {
		metrics.RecordCacheOperation(kind, "get", "error")
		return nil, fmt.Errorf("failed to get %s record: %w", kind, err)
	}
	if entry == nil {
		metrics.RecordCacheOperation(kind, "get", "miss")
		return nil, nil
	}

	rec := &Record[T]{
		ID:        entry.ID,
		Kind:      entry.Kind,
		CreatedAt: entry.CreatedAt,
		ExpiresAt: entry.ExpiresAt,
	}
	if err := json.Unmarshal(entry.Data, &rec.Data); err != nil {
		metrics.RecordCacheOperation(kind, "get", "error")
		return nil, fmt.Errorf("failed to decode %s record %s: %w", kind, id, err)
	}
	metrics.RecordCacheOperation(kind, "get", "hit")
	return rec, nil
}

// GetTTL returns the remaining lifetime of an active record. ok is false when
// the record is missing, expired, or expires this very second.
func GetTTL[T Payload](ctx context.Context, c *Cache, id string) (ttl time.Duration, ok bool, err error) {
	kind := kindOf[T]()
	now := c.now()
	expiresAt, found, err := c.storage.ExpiresAt(ctx, kind, id, now)
	if err != nil {
		return 0, false, fmt.Errorf("failed to get %s ttl: %w", kind, err)
	}
	if !found || expiresAt <= now {
		return 0, false, nil
	}
	return time.Duration(expiresAt-now) * time.Second, true, nil
}

// Set writes payload under (payload.Kind(), payload.CacheID()) for ttl. The
// result reports whether the mode's precondition held.
func Set[T Payload](ctx context.Context, c *Cache, payload T, ttl time.Duration, mode SetMode) (bool, error) {
	kind := payload.Kind()
	data, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("failed to encode %s record: %w", kind, err)
	}

	now := c.now()
	entry := &Entry{
		Kind:      kind,
		ID:        payload.CacheID(),
		Data:      data,
		CreatedAt: now,
		ExpiresAt: expiry(now, ttl),
	}

	ok, err := c.storage.Set(ctx, entry, mode, now)
	if err != nil {
		metrics.RecordCacheOperation(kind, "set", "error")
		return false, fmt.Errorf("failed to set %s record (%s): %w", kind, mode, err)
	}
	if ok {
		metrics.RecordCacheOperation(kind, "set", "ok")
	} else {
		metrics.RecordCacheOperation(kind, "set", "rejected")
	}
	return ok, nil
}

// SetTTL moves the expiry of an active record to now+ttl. Missing or expired
// records are left alone and false is returned.
func SetTTL[T Payload](ctx context.Context, c *Cache, id string, ttl time.Duration) (bool, error) {
	kind := kindOf[T]()
	now := c.now()
	ok, err := c.storage.SetExpiresAt(ctx, kind, id, expiry(now, ttl), now)
	if err != nil {
		return false, fmt.Errorf("failed to set %s ttl: %w", kind, err)
	}
	return ok, nil
}

// Exists reports whether an active record exists.
func Exists[T Payload](ctx context.Context, c *Cache, id string) (bool, error) {
	kind := kindOf[T]()
	ok, err := c.storage.Exists(ctx, kind, id, c.now())
	if err != nil {
		return false, fmt.Errorf("failed to check %s record: %w", kind, err)
	}
	return ok, nil
}

// Remove deletes the record whether or not it is active.
func Remove[T Payload](ctx context.Context, c *Cache, id string) error {
	kind := kindOf[T]()
	if err := c.storage.Remove(ctx, kind, id); err != nil {
		return fmt.Errorf("failed to remove %s record: %w", kind, err)
	}
	return nil
}

// BatchRemove deletes every record of kind T whose id starts with prefix.
// The prefix is matched literally.
func BatchRemove[T Payload](ctx context.Context, c *Cache, prefix string) error {
	kind := kindOf[T]()
	if _, err := c.storage.RemoveByPrefix(ctx, kind, prefix); err != nil {
		return fmt.Errorf("failed to batch remove %s records: %w", kind, err)
	}
	return nil
}

// expiry saturates instead of wrapping for absurd TTLs.
func expiry(now int64, ttl time.Duration) int64 {
	secs := int64(ttl / time.Second)
	if secs > 0 && now > (1<<63-1)-secs {
		return 1<<63 - 1
	}
	return now + secs
}
