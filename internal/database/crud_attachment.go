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

	"github.com/tomtom215/inkwell/internal/models"
)

func scanAttachment(row rowScanner) (*models.ArticleAttachment, error) {
	var (
		a         models.ArticleAttachment
		createdAt int64
	)
	if err := row.Scan(&a.ID, &a.ArticleID, &a.ResourceID, &createdAt); err != nil {
		return nil, err
	}
	a.CreatedAt = fromUnix(createdAt)
	return &a, nil
}

// InsertAttachment links a resource to an article.
func (q *Queries) InsertAttachment(ctx context.Context, a *models.ArticleAttachment) error {
	_, err := q.q.ExecContext(ctx,
		`INSERT INTO article_attachment (id, article_id, resource_id, created_at) VALUES (?, ?, ?, ?)`,
		a.ID, a.ArticleID, a.ResourceID, a.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert attachment %s: %w", a.ID, err)
	}
	return nil
}

// DeleteAttachment removes one attachment row.
func (q *Queries) DeleteAttachment(ctx context.Context, id string) error {
	if _, err := q.q.ExecContext(ctx, `DELETE FROM article_attachment WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete attachment %s: %w", id, err)
	}
	return nil
}

// DeleteAttachmentsByArticle removes every attachment row of an article.
func (q *Queries) DeleteAttachmentsByArticle(ctx context.Context, articleID string) error {
	if _, err := q.q.ExecContext(ctx, `DELETE FROM article_attachment WHERE article_id = ?`, articleID); err != nil {
		return fmt.Errorf("failed to delete attachments of article %s: %w", articleID, err)
	}
	return nil
}

// FindAttachment returns the attachment, or nil.
func (q *Queries) FindAttachment(ctx context.Context, id string) (*models.ArticleAttachment, error) {
	a, err := scanAttachment(q.q.QueryRowContext(ctx,
		`SELECT id, article_id, resource_id, created_at FROM article_attachment WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find attachment %s: %w", id, err)
	}
	return a, nil
}

// ListAttachmentsByArticle returns every attachment of an article.
func (q *Queries) ListAttachmentsByArticle(ctx context.Context, articleID string) ([]*models.ArticleAttachment, error) {
	rows, err := q.q.QueryContext(ctx,
		`SELECT id, article_id, resource_id, created_at FROM article_attachment WHERE article_id = ?`,
		articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments of article %s: %w", articleID, err)
	}
	defer closeWithLog(rows, "rows")

	var attachments []*models.ArticleAttachment
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		attachments = append(attachments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attachments: %w", err)
	}
	return attachments, nil
}
