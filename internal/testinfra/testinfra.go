// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

// Package testinfra provides throwaway backing stores for package tests:
// in-memory DuckDB, in-memory Badger and a pinned mock clock. Everything is
// released through t.Cleanup.
package testinfra

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/inkwell/internal/cache"
	"github.com/tomtom215/inkwell/internal/config"
	"github.com/tomtom215/inkwell/internal/database"
)

// PoolSize is the connection pool of test databases. It is fixed rather than
// runtime.NumCPU() so concurrent tests race real connections on any runner.
const PoolSize = 8

// Epoch is the instant mock clocks start at.
var Epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// dbSemaphore serializes DuckDB usage across tests in one package. Many
// concurrent CGO connections under CI load can hang.
var dbSemaphore = make(chan struct{}, 1)

// NewDB opens an in-memory DuckDB with the full schema. It holds the package
// semaphore until the test ends.
func NewDB(t testing.TB) *database.DB {
	t.Helper()

	dbSemaphore <- struct{}{}
	t.Cleanup(func() { <-dbSemaphore })

	db, err := database.New(&config.DatabaseConfig{
		Path:         database.MemoryPath,
		MaxMemory:    "256MB",
		Threads:      1,
		MaxOpenConns: PoolSize,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})
	return db
}

// NewBadger opens an in-memory Badger instance.
func NewBadger(t testing.TB) *badger.DB {
	t.Helper()

	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("Failed to open in-memory badger: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// NewClock returns a mock clock set to Epoch.
func NewClock() *clock.Mock {
	mock := clock.NewMock()
	mock.Set(Epoch)
	return mock
}

// NewCache returns a cache over an in-memory Badger store and a mock clock.
// Badger keeps these tests off the DuckDB semaphore.
func NewCache(t testing.TB) (*cache.Cache, *clock.Mock) {
	t.Helper()
	mock := NewClock()
	return cache.New(cache.NewBadgerStorage(NewBadger(t)), mock), mock
}

// NewDBCache returns a cache over the table backend of db.
func NewDBCache(db *database.DB) (*cache.Cache, *clock.Mock) {
	mock := NewClock()
	return cache.New(cache.NewDBStorage(db), mock), mock
}
