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
	"time"

	"github.com/tomtom215/inkwell/internal/models"
)

const articleColumns = `id, title, excerpt, markdown_content, plain_content, password, status,
	created_at, updated_at, published_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*models.Article, error) {
	var (
		a           models.Article
		password    sql.NullString
		status      string
		createdAt   int64
		updatedAt   int64
		publishedAt sql.NullInt64
	)
	if err := row.Scan(&a.ID, &a.Title, &a.Excerpt, &a.MarkdownContent, &a.PlainContent,
		&password, &status, &createdAt, &updatedAt, &publishedAt); err != nil {
		return nil, err
	}
	if password.Valid {
		a.Password = &password.String
	}
	a.Status = models.ArticleStatus(status)
	a.CreatedAt = fromUnix(createdAt)
	a.UpdatedAt = fromUnix(updatedAt)
	if publishedAt.Valid {
		t := fromUnix(publishedAt.Int64)
		a.PublishedAt = &t
	}
	return &a, nil
}

// InsertArticle stores a new article.
func (q *Queries) InsertArticle(ctx context.Context, a *models.Article) error {
	_, err := q.q.ExecContext(ctx,
		`INSERT INTO article (`+articleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Title, a.Excerpt, a.MarkdownContent, a.PlainContent, nullString(a.Password),
		string(a.Status), a.CreatedAt.Unix(), a.UpdatedAt.Unix(), nullUnix(a.PublishedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert article %s: %w", a.ID, err)
	}
	return nil
}

// UpdateArticle overwrites every column of an existing article.
func (q *Queries) UpdateArticle(ctx context.Context, a *models.Article) (bool, error) {
	res, err := q.q.ExecContext(ctx,
		`UPDATE article SET
			title = ?, excerpt = ?, markdown_content = ?, plain_content = ?, password = ?,
			status = ?, created_at = ?, updated_at = ?, published_at = ?
		WHERE id = ?`,
		a.Title, a.Excerpt, a.MarkdownContent, a.PlainContent, nullString(a.Password),
		string(a.Status), a.CreatedAt.Unix(), a.UpdatedAt.Unix(), nullUnix(a.PublishedAt), a.ID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update article %s: %w", a.ID, err)
	}
	return affected(res)
}

// DeleteArticle removes an article row.
func (q *Queries) DeleteArticle(ctx context.Context, id string) error {
	if _, err := q.q.ExecContext(ctx, `DELETE FROM article WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete article %s: %w", id, err)
	}
	return nil
}

// FindArticle returns the article, or nil if it does not exist.
func (q *Queries) FindArticle(ctx context.Context, id string) (*models.Article, error) {
	a, err := scanArticle(q.q.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM article WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find article %s: %w", id, err)
	}
	return a, nil
}

// SearchArticles returns one page of matching articles, newest publication
// first with unpublished articles leading.
func (q *Queries) SearchArticles(ctx context.Context, s *models.ArticleSearch, limit, offset uint64) ([]*models.Article, error) {
	where, args := articleSearchConditions(s)
	query := `SELECT ` + articleColumns + ` FROM article` + where +
		` ORDER BY published_at DESC NULLS FIRST, updated_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search articles: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var articles []*models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate articles: %w", err)
	}
	return articles, nil
}

// CountArticles returns how many articles match the search.
func (q *Queries) CountArticles(ctx context.Context, s *models.ArticleSearch) (uint64, error) {
	where, args := articleSearchConditions(s)
	var n uint64
	if err := q.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM article`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return n, nil
}

func articleSearchConditions(s *models.ArticleSearch) (string, []any) {
	var (
		conditions []string
		args       []any
	)

	if text := strings.TrimSpace(s.FullText); text != "" {
		pattern := "%" + EscapeLike(text) + "%"
		limit := s.FullTextLimit
		if limit <= 0 {
			limit = 100
		}
		conditions = append(conditions, fmt.Sprintf(
			`id IN (SELECT id FROM article WHERE title ILIKE ? ESCAPE '\' OR plain_content ILIKE ? ESCAPE '\' LIMIT %d)`,
			limit))
		args = append(args, pattern, pattern)
	}
	if s.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*s.Status))
	}
	if s.PublishedAtGE != nil {
		conditions = append(conditions, "published_at >= ?")
		args = append(args, s.PublishedAtGE.Unix())
	}
	if s.PublishedAtLT != nil {
		conditions = append(conditions, "published_at < ?")
		args = append(args, s.PublishedAtLT.Unix())
	}
	if s.NeedPassword != nil {
		if *s.NeedPassword {
			conditions = append(conditions, "password IS NOT NULL")
		} else {
			conditions = append(conditions, "password IS NULL")
		}
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// InsertArticleStats creates the counter row for an article.
func (q *Queries) InsertArticleStats(ctx context.Context, s *models.ArticleStats) error {
	_, err := q.q.ExecContext(ctx,
		`INSERT INTO article_stats (id, article_id, pv, uv) VALUES (?, ?, ?, ?)`,
		s.ID, s.ArticleID, s.PV, s.UV,
	)
	if err != nil {
		return fmt.Errorf("failed to insert stats for article %s: %w", s.ArticleID, err)
	}
	return nil
}

// FindArticleStats returns the counters of an article, or nil.
func (q *Queries) FindArticleStats(ctx context.Context, articleID string) (*models.ArticleStats, error) {
	var s models.ArticleStats
	err := q.q.QueryRowContext(ctx,
		`SELECT id, article_id, pv, uv FROM article_stats WHERE article_id = ?`, articleID,
	).Scan(&s.ID, &s.ArticleID, &s.PV, &s.UV)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find stats for article %s: %w", articleID, err)
	}
	return &s, nil
}

// IncrementArticleStats adds to the page view and unique visitor counters.
// Concurrent increments of one article are retried on conflict, never lost.
func (q *Queries) IncrementArticleStats(ctx context.Context, articleID string, pv, uv uint64) error {
	err := q.retryOnConflict(ctx, "article_stats:"+articleID, func() error {
		_, err := q.q.ExecContext(ctx,
			`UPDATE article_stats SET pv = pv + ?, uv = uv + ? WHERE article_id = ?`,
			pv, uv, articleID,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to increment stats for article %s: %w", articleID, err)
	}
	return nil
}

// DeleteArticleStats removes the counter row of an article.
func (q *Queries) DeleteArticleStats(ctx context.Context, articleID string) error {
	if _, err := q.q.ExecContext(ctx, `DELETE FROM article_stats WHERE article_id = ?`, articleID); err != nil {
		return fmt.Errorf("failed to delete stats for article %s: %w", articleID, err)
	}
	return nil
}

func fromUnix(secs int64) time.Time {
	return time.Unix(secs, 0).UTC()
}

func nullUnix(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
