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

const resourceColumns = `id, name, extension, path, size, mime_type, is_public, sha256, created_at`

func scanResource(row rowScanner) (*models.Resource, error) {
	var (
		r         models.Resource
		createdAt int64
	)
	if err := row.Scan(&r.ID, &r.Name, &r.Extension, &r.Path, &r.Size, &r.MimeType,
		&r.IsPublic, &r.SHA256, &createdAt); err != nil {
		return nil, err
	}
	r.CreatedAt = fromUnix(createdAt)
	return &r, nil
}

// InsertResource stores resource metadata.
func (q *Queries) InsertResource(ctx context.Context, r *models.Resource) error {
	_, err := q.q.ExecContext(ctx,
		`INSERT INTO resource (`+resourceColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Name, r.Extension, r.Path, r.Size, r.MimeType, r.IsPublic, r.SHA256, r.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert resource %s: %w", r.ID, err)
	}
	return nil
}

// UpdateResourcePath points a resource row at a different stored file.
func (q *Queries) UpdateResourcePath(ctx context.Context, id, path string) error {
	if _, err := q.q.ExecContext(ctx, `UPDATE resource SET path = ? WHERE id = ?`, path, id); err != nil {
		return fmt.Errorf("failed to update path of resource %s: %w", id, err)
	}
	return nil
}

// DeleteResource removes a resource row. The file is left alone.
func (q *Queries) DeleteResource(ctx context.Context, id string) error {
	if _, err := q.q.ExecContext(ctx, `DELETE FROM resource WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete resource %s: %w", id, err)
	}
	return nil
}

// FindResource returns the resource, or nil.
func (q *Queries) FindResource(ctx context.Context, id string) (*models.Resource, error) {
	r, err := scanResource(q.q.QueryRowContext(ctx,
		`SELECT `+resourceColumns+` FROM resource WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find resource %s: %w", id, err)
	}
	return r, nil
}

// FindDuplicateResource returns the newest resource with the same content
// fingerprint, or nil.
func (q *Queries) FindDuplicateResource(ctx context.Context, sha256 string, size uint64) (*models.Resource, error) {
	r, err := scanResource(q.q.QueryRowContext(ctx,
		`SELECT `+resourceColumns+` FROM resource
		WHERE sha256 = ? AND size = ?
		ORDER BY created_at DESC LIMIT 1`,
		sha256, size))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find duplicate resource: %w", err)
	}
	return r, nil
}

// CountResourcesByPath returns how many rows reference a stored file.
func (q *Queries) CountResourcesByPath(ctx context.Context, path string) (int64, error) {
	var n int64
	if err := q.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM resource WHERE path = ?`, path).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count resources by path: %w", err)
	}
	return n, nil
}

// ListResourcesByIDs returns the resources with the given ids, in no
// particular order. Unknown ids are skipped.
func (q *Queries) ListResourcesByIDs(ctx context.Context, ids []string) ([]*models.Resource, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := q.q.QueryContext(ctx,
		`SELECT `+resourceColumns+` FROM resource WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var resources []*models.Resource
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		resources = append(resources, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate resources: %w", err)
	}
	return resources, nil
}
