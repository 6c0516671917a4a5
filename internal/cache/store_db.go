// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package cache

import (
	"context"
	"fmt"

	"github.com/tomtom215/inkwell/internal/models"
)

// cacheQueries is the slice of database.Queries the table backend needs.
// *database.DB and *database.Tx both satisfy it.
type cacheQueries interface {
	CacheGet(ctx context.Context, kind, id string, now int64) (*models.CacheEntry, error)
	CacheExpiresAt(ctx context.Context, kind, id string, now int64) (int64, bool, error)
	CacheUpsert(ctx context.Context, e *models.CacheEntry) error
	CacheInsertIfAbsent(ctx context.Context, e *models.CacheEntry, now int64) (bool, error)
	CacheUpdateActive(ctx context.Context, e *models.CacheEntry, now int64) (bool, error)
	CacheSetExpiresAt(ctx context.Context, kind, id string, expiresAt, now int64) (bool, error)
	CacheExists(ctx context.Context, kind, id string, now int64) (bool, error)
	CacheDelete(ctx context.Context, kind, id string) error
	CacheDeleteByPrefix(ctx context.Context, kind, prefix string) (int64, error)
	CacheDeleteExpired(ctx context.Context, now int64, limit int) (int64, error)
}

// DBStorage keeps records in the DuckDB cache table.
type DBStorage struct {
	q cacheQueries
}

// NewDBStorage returns the table backend.
func NewDBStorage(q cacheQueries) *DBStorage {
	return &DBStorage{q: q}
}

func (s *DBStorage) Get(ctx context.Context, kind, id string, now int64) (*Entry, error) {
	return s.q.CacheGet(ctx, kind, id, now)
}

func (s *DBStorage) ExpiresAt(ctx context.Context, kind, id string, now int64) (int64, bool, error) {
	return s.q.CacheExpiresAt(ctx, kind, id, now)
}

func (s *DBStorage) Set(ctx context.Context, e *Entry, mode SetMode, now int64) (bool, error) {
	switch mode {
	case Overwrite:
		if err := s.q.CacheUpsert(ctx, e); err != nil {
			return false, err
		}
		return true, nil
	case OnlyIfNotExists:
		return s.q.CacheInsertIfAbsent(ctx, e, now)
	case OnlyIfExists:
		return s.q.CacheUpdateActive(ctx, e, now)
	default:
		return false, fmt.Errorf("unknown set mode %s", mode)
	}
}

func (s *DBStorage) SetExpiresAt(ctx context.Context, kind, id string, expiresAt, now int64) (bool, error) {
	return s.q.CacheSetExpiresAt(ctx, kind, id, expiresAt, now)
}

func (s *DBStorage) Exists(ctx context.Context, kind, id string, now int64) (bool, error) {
	return s.q.CacheExists(ctx, kind, id, now)
}

func (s *DBStorage) Remove(ctx context.Context, kind, id string) error {
	return s.q.CacheDelete(ctx, kind, id)
}

func (s *DBStorage) RemoveByPrefix(ctx context.Context, kind, prefix string) (int64, error) {
	return s.q.CacheDeleteByPrefix(ctx, kind, prefix)
}

func (s *DBStorage) RemoveExpired(ctx context.Context, now int64, limit int) (int64, error) {
	return s.q.CacheDeleteExpired(ctx, now, limit)
}
