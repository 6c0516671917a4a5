// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/inkwell/internal/models"
)

// Cache rows are active while expires_at >= now. "now" is always passed in by
// the caller so expiry follows the caller's clock rather than DuckDB's.

// CacheGet returns the active entry for (kind, id), or nil.
func (q *Queries) CacheGet(ctx context.Context, kind, id string, now int64) (*models.CacheEntry, error) {
	var (
		entry = models.CacheEntry{Kind: kind, ID: id}
		data  string
	)
	err := q.q.QueryRowContext(ctx,
		`SELECT data, created_at, expires_at FROM cache
		WHERE kind = ? AND id = ? AND expires_at >= ?`,
		kind, id, now,
	).Scan(&data, &entry.CreatedAt, &entry.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache entry %s/%s: %w", kind, id, err)
	}
	entry.Data = []byte(data)
	return &entry, nil
}

// CacheExpiresAt returns the expiry of the active entry for (kind, id).
func (q *Queries) CacheExpiresAt(ctx context.Context, kind, id string, now int64) (int64, bool, error) {
	var expiresAt int64
	err := q.q.QueryRowContext(ctx,
		`SELECT expires_at FROM cache WHERE kind = ? AND id = ? AND expires_at >= ?`,
		kind, id, now,
	).Scan(&expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get cache expiry %s/%s: %w", kind, id, err)
	}
	return expiresAt, true, nil
}

// CacheUpsert writes the entry unconditionally.
func (q *Queries) CacheUpsert(ctx context.Context, e *models.CacheEntry) error {
	err := q.retryOnConflict(ctx, cacheLockKey(e.Kind, e.ID), func() error {
		_, err := q.q.ExecContext(ctx,
			`INSERT INTO cache (id, kind, data, created_at, expires_at) VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (kind, id) DO UPDATE SET
				data = excluded.data,
				created_at = excluded.created_at,
				expires_at = excluded.expires_at`,
			e.ID, e.Kind, string(e.Data), e.CreatedAt, e.ExpiresAt,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to upsert cache entry %s/%s: %w", e.Kind, e.ID, err)
	}
	return nil
}

// CacheInsertIfAbsent inserts the entry unless an active one exists. An
// expired row under the same key is purged first. The unique constraint on
// (kind, id) decides concurrent races: the loser gets false, not an error.
//
// The purge and insert are separate autocommit statements. Running them in
// one DuckDB transaction would report a constraint violation for a key that
// was deleted earlier in the same transaction.
func (q *Queries) CacheInsertIfAbsent(ctx context.Context, e *models.CacheEntry, now int64) (bool, error) {
	if _, err := q.q.ExecContext(ctx,
		`DELETE FROM cache WHERE kind = ? AND id = ? AND expires_at < ?`,
		e.Kind, e.ID, now,
	); err != nil {
		if isTransactionConflict(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to purge expired cache entry %s/%s: %w", e.Kind, e.ID, err)
	}

	_, err := q.q.ExecContext(ctx,
		`INSERT INTO cache (id, kind, data, created_at, expires_at) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Kind, string(e.Data), e.CreatedAt, e.ExpiresAt,
	)
	if err != nil {
		if IsWriteConflict(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert cache entry %s/%s: %w", e.Kind, e.ID, err)
	}
	return true, nil
}

// CacheUpdateActive rewrites the entry only if an active one exists.
func (q *Queries) CacheUpdateActive(ctx context.Context, e *models.CacheEntry, now int64) (bool, error) {
	var updated bool
	err := q.retryOnConflict(ctx, cacheLockKey(e.Kind, e.ID), func() error {
		res, err := q.q.ExecContext(ctx,
			`UPDATE cache SET data = ?, created_at = ?, expires_at = ?
			WHERE kind = ? AND id = ? AND expires_at >= ?`,
			string(e.Data), e.CreatedAt, e.ExpiresAt, e.Kind, e.ID, now,
		)
		if err != nil {
			return err
		}
		updated, err = affected(res)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to update cache entry %s/%s: %w", e.Kind, e.ID, err)
	}
	return updated, nil
}

// CacheSetExpiresAt moves the expiry of an active entry.
func (q *Queries) CacheSetExpiresAt(ctx context.Context, kind, id string, expiresAt, now int64) (bool, error) {
	var updated bool
	err := q.retryOnConflict(ctx, cacheLockKey(kind, id), func() error {
		res, err := q.q.ExecContext(ctx,
			`UPDATE cache SET expires_at = ? WHERE kind = ? AND id = ? AND expires_at >= ?`,
			expiresAt, kind, id, now,
		)
		if err != nil {
			return err
		}
		updated, err = affected(res)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to set cache expiry %s/%s: %w", kind, id, err)
	}
	return updated, nil
}

// CacheExists reports whether an active entry exists.
func (q *Queries) CacheExists(ctx context.Context, kind, id string, now int64) (bool, error) {
	var exists bool
	err := q.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM cache WHERE kind = ? AND id = ? AND expires_at >= ?)`,
		kind, id, now,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check cache entry %s/%s: %w", kind, id, err)
	}
	return exists, nil
}

// CacheDelete removes the entry whether or not it has expired.
func (q *Queries) CacheDelete(ctx context.Context, kind, id string) error {
	err := q.retryOnConflict(ctx, cacheLockKey(kind, id), func() error {
		_, err := q.q.ExecContext(ctx, `DELETE FROM cache WHERE kind = ? AND id = ?`, kind, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete cache entry %s/%s: %w", kind, id, err)
	}
	return nil
}

// CacheDeleteByPrefix removes every entry of kind whose id starts with prefix.
// LIKE wildcards in the prefix match literally.
func (q *Queries) CacheDeleteByPrefix(ctx context.Context, kind, prefix string) (int64, error) {
	res, err := q.q.ExecContext(ctx,
		`DELETE FROM cache WHERE kind = ? AND id LIKE ? ESCAPE '\'`,
		kind, EscapeLike(prefix)+"%",
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete cache entries %s/%s*: %w", kind, prefix, err)
	}
	return res.RowsAffected()
}

// CacheDeleteExpired removes up to limit expired entries, oldest expiry first.
func (q *Queries) CacheDeleteExpired(ctx context.Context, now int64, limit int) (int64, error) {
	res, err := q.q.ExecContext(ctx,
		`DELETE FROM cache WHERE rowid IN (
			SELECT rowid FROM cache WHERE expires_at < ? ORDER BY expires_at LIMIT ?
		)`,
		now, limit,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired cache entries: %w", err)
	}
	return res.RowsAffected()
}

// CacheCount returns the number of cache rows, expired ones included.
func (q *Queries) CacheCount(ctx context.Context) (int64, error) {
	var n int64
	if err := q.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM cache`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return n, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE metacharacters for use with ESCAPE '\'.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func cacheLockKey(kind, id string) string {
	return "cache:" + kind + ":" + id
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}
