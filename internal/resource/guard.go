// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package resource

import (
	"errors"
	"io/fs"
	"os"
	"sync"

	"github.com/tomtom215/inkwell/internal/logging"
)

// FileGuard removes a file when Cleanup runs unless Keep was called first.
// Defer Cleanup right after creating the file so every exit path, including
// panics and cancelled requests, is covered. Both methods are idempotent.
type FileGuard struct {
	path string
	once sync.Once
	kept bool
	mu   sync.Mutex
}

// NewFileGuard guards path.
func NewFileGuard(path string) *FileGuard {
	return &FileGuard{path: path}
}

// Path returns the guarded path.
func (g *FileGuard) Path() string {
	return g.path
}

// Keep disarms the guard.
func (g *FileGuard) Keep() {
	g.mu.Lock()
	g.kept = true
	g.mu.Unlock()
}

// Cleanup deletes the file unless the guard was kept. A file that is already
// gone is not an error.
func (g *FileGuard) Cleanup() {
	g.mu.Lock()
	kept := g.kept
	g.mu.Unlock()
	if kept {
		return
	}

	g.once.Do(func() {
		if err := os.Remove(g.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logging.Warn().Err(err).Str("path", g.path).Msg("Failed to remove guarded file")
		}
	})
}
