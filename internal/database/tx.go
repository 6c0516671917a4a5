// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tomtom215/inkwell/internal/logging"
)

// querier is the subset of *sql.DB and *sql.Tx that queries need.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries runs statements against either the pool or a transaction.
type Queries struct {
	q     querier
	locks *keyLocks
	inTx  bool
}

// Tx is an open transaction. Its embedded Queries run inside it.
type Tx struct {
	Queries

	tx *sql.Tx
}

// RunInTx runs fn in a transaction. The transaction commits when fn returns
// nil and rolls back otherwise; fn's error is returned unchanged so callers
// can still inspect typed errors.
func (db *DB) RunInTx(ctx context.Context, fn func(tx *Tx) error) (err error) {
	sqlTx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := sqlTx.Rollback(); rbErr != nil {
				logging.Error().
					Err(rbErr).
					AnErr("original_error", err).
					Msg("Transaction rollback failed")
			}
		}
	}()

	if err = fn(&Tx{Queries: Queries{q: sqlTx, locks: db.locks, inTx: true}, tx: sqlTx}); err != nil {
		return err
	}

	if err = sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
