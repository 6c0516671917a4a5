// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package api

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/inkwell/internal/apperr"
	"github.com/tomtom215/inkwell/internal/feed"
	"github.com/tomtom215/inkwell/internal/logging"
)

// readinessTimeout bounds the database ping of the readiness check.
const readinessTimeout = 2 * time.Second

type livenessResponse struct {
	Alive         bool  `json:"alive"`
	UptimeSeconds int64 `json:"uptime_seconds"`
}

type readinessResponse struct {
	Ready    bool   `json:"ready"`
	Database string `json:"database"`
}

// HealthLive reports that the process is serving requests.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, livenessResponse{
		Alive:         true,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	})
}

// HealthReady reports whether the database answers.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Readiness check failed")
		WriteError(w, r, apperr.Wrap(apperr.ServiceUnavailable, "Database unavailable", err))
		return
	}
	WriteSuccess(w, r, readinessResponse{Ready: true, Database: "OK"})
}

// RSS handles GET /rss. The body is rendered fully before any byte is sent
// so a failed query still yields a JSON error.
func (h *Handler) RSS(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.feed.Write(r.Context(), &buf); err != nil {
		WriteError(w, r, err)
		return
	}

	etag := generateETag(buf.Bytes())
	header := w.Header()
	header.Set("ETag", etag)
	header.Set("Cache-Control", "public, max-age=300")
	if notModified(r, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	header.Set("Content-Type", feed.ContentType)
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Failed to write feed")
	}
}
