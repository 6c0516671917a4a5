// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

// tableCreationQueries returns the schema. Timestamps are unix seconds.
//
// Columns rewritten by UPDATE or ON CONFLICT DO UPDATE are kept out of
// indexes: DuckDB implements updates of indexed columns as delete plus
// insert, which trips unique constraints within the same transaction.
func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS cache (
			id VARCHAR NOT NULL,
			kind VARCHAR NOT NULL,
			data VARCHAR NOT NULL,
			created_at BIGINT NOT NULL,
			expires_at BIGINT NOT NULL,
			UNIQUE (kind, id)
		);`,

		`CREATE TABLE IF NOT EXISTS article (
			id VARCHAR PRIMARY KEY,
			title VARCHAR NOT NULL,
			excerpt VARCHAR NOT NULL,
			markdown_content VARCHAR NOT NULL,
			plain_content VARCHAR NOT NULL,
			password VARCHAR,
			status VARCHAR NOT NULL,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL,
			published_at BIGINT
		);`,

		`CREATE TABLE IF NOT EXISTS article_stats (
			id VARCHAR PRIMARY KEY,
			article_id VARCHAR NOT NULL UNIQUE,
			pv UBIGINT NOT NULL DEFAULT 0,
			uv UBIGINT NOT NULL DEFAULT 0
		);`,

		`CREATE TABLE IF NOT EXISTS article_attachment (
			id VARCHAR PRIMARY KEY,
			article_id VARCHAR NOT NULL,
			resource_id VARCHAR NOT NULL,
			created_at BIGINT NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS resource (
			id VARCHAR PRIMARY KEY,
			name VARCHAR NOT NULL,
			extension VARCHAR NOT NULL,
			path VARCHAR NOT NULL,
			size UBIGINT NOT NULL,
			mime_type VARCHAR NOT NULL,
			is_public BOOLEAN NOT NULL,
			sha256 VARCHAR NOT NULL,
			created_at BIGINT NOT NULL
		);`,
	}
}

func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range indexQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}
	return nil
}

func indexQueries() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_article_attachment_article_id ON article_attachment(article_id);`,
		`CREATE INDEX IF NOT EXISTS idx_resource_sha256_size ON resource(sha256, size);`,
		`CREATE INDEX IF NOT EXISTS idx_resource_path ON resource(path);`,
	}
}
