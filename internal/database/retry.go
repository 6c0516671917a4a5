// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/tomtom215/inkwell/internal/logging"
)

// Conflict retry tuning. Backoff doubles from conflictBackoffBase up to
// conflictBackoffMax: 1ms, 2ms, 4ms ... 32ms.
const (
	maxConflictRetries  = 8
	conflictBackoffBase = time.Millisecond
	conflictBackoffMax  = 32 * time.Millisecond
)

const keyLockStripes = 64

// keyLocks serializes in-process writers of the same row. Keys hash onto a
// fixed set of stripes so memory stays bounded however many visitors and
// articles there are.
type keyLocks struct {
	stripes [keyLockStripes]sync.Mutex
}

func (l *keyLocks) lock(key string) func() {
	mu := &l.stripes[xxh3.HashString(key)%keyLockStripes]
	mu.Lock()
	return mu.Unlock
}

// retryOnConflict runs a single-row autocommit write. Writers of the same
// key inside this process take turns; a DuckDB optimistic-concurrency
// conflict with anything else (another process, an open transaction) is
// retried with exponential backoff.
//
// Inside a transaction the first conflict has already aborted it, so fn runs
// once and its error is returned unchanged.
func (q *Queries) retryOnConflict(ctx context.Context, key string, fn func() error) error {
	if q.inTx {
		return fn()
	}
	if q.locks != nil {
		unlock := q.locks.lock(key)
		defer unlock()
	}

	var lastErr error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return fmt.Errorf("operation timed out or canceled: %w", ctx.Err())
		}
		if !isTransactionConflict(err) {
			return err
		}
		if attempt == maxConflictRetries-1 {
			break
		}
		logging.Trace().Str("key", key).Int("attempt", attempt+1).Err(err).Msg("Write conflict, retrying")

		select {
		case <-time.After(conflictBackoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func conflictBackoff(attempt int) time.Duration {
	d := conflictBackoffBase << uint(attempt)
	if d > conflictBackoffMax {
		return conflictBackoffMax
	}
	return d
}
