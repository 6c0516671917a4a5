// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

// Package services adapts Inkwell components to suture.Service.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// DefaultShutdownTimeout is used when no positive timeout is configured.
const DefaultShutdownTimeout = 10 * time.Second

// HTTPServer is the subset of *http.Server the service drives.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService runs an HTTP server under supervision.
//
// The graceful shutdown timeout can be changed while the server runs; the
// value in effect when the context is canceled is the one applied.
type HTTPServerService struct {
	server          HTTPServer
	shutdownTimeout atomic.Int64
	name            string
}

// NewHTTPServerService wraps server.
func NewHTTPServerService(server HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	s := &HTTPServerService{server: server, name: "http-server"}
	s.SetShutdownTimeout(shutdownTimeout)
	return s
}

// ShutdownTimeout returns the current graceful shutdown timeout.
func (h *HTTPServerService) ShutdownTimeout() time.Duration {
	return time.Duration(h.shutdownTimeout.Load())
}

// SetShutdownTimeout replaces the graceful shutdown timeout. Non-positive
// values fall back to DefaultShutdownTimeout.
func (h *HTTPServerService) SetShutdownTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultShutdownTimeout
	}
	h.shutdownTimeout.Store(int64(d))
}

// Serve implements suture.Service. http.ErrServerClosed is not an error.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		// ctx is already canceled; shutdown needs its own deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.ShutdownTimeout())
		defer cancel()

		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

// String implements fmt.Stringer for suture's logs.
func (h *HTTPServerService) String() string {
	return h.name
}
