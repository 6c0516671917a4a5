// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/zeebo/xxh3"

	"github.com/tomtom215/inkwell/internal/apperr"
	"github.com/tomtom215/inkwell/internal/logging"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError is the error half of the envelope.
type APIError struct {
	// Code is one of the stable apperr wire codes.
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// APIMeta carries tracing and timing information.
type APIMeta struct {
	RequestID  string    `json:"request_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMs int64     `json:"duration_ms"`
}

// ResponseWriter writes enveloped JSON responses.
type ResponseWriter struct {
	w         http.ResponseWriter
	r         *http.Request
	startTime time.Time
}

// NewResponseWriter creates a response writer for one request.
func NewResponseWriter(w http.ResponseWriter, r *http.Request) *ResponseWriter {
	return &ResponseWriter{w: w, r: r, startTime: time.Now()}
}

func (rw *ResponseWriter) meta() *APIMeta {
	return &APIMeta{
		RequestID:  logging.RequestIDFromContext(rw.r.Context()),
		Timestamp:  time.Now().UTC(),
		DurationMs: time.Since(rw.startTime).Milliseconds(),
	}
}

// Success writes a 200 response with data.
func (rw *ResponseWriter) Success(data any) {
	rw.writeJSON(http.StatusOK, &APIResponse{Success: true, Data: data, Meta: rw.meta()})
}

// Error classifies err and writes the matching status and code. Internal
// errors are logged with their cause; clients only see the generic message.
func (rw *ResponseWriter) Error(err error) {
	appErr := apperr.From(err)
	status := appErr.Kind.Status()

	log := logging.Ctx(rw.r.Context())
	switch {
	case status >= http.StatusInternalServerError:
		log.Error().Err(err).Str("method", rw.r.Method).Str("path", sanitizeLogValue(rw.r.URL.Path)).Msg("Request failed")
	case appErr.Kind == apperr.TooManyRequests:
		log.Warn().Str("path", sanitizeLogValue(rw.r.URL.Path)).Msg("Request throttled")
	default:
		log.Debug().Err(err).Str("path", sanitizeLogValue(rw.r.URL.Path)).Msg("Request rejected")
	}

	meta := rw.meta()
	rw.writeJSON(status, &APIResponse{
		Success: false,
		Error: &APIError{
			Code:      appErr.Kind.Code(),
			Message:   appErr.PublicMessage(),
			Details:   appErr.Details(),
			RequestID: meta.RequestID,
		},
		Meta: meta,
	})
}

// writeJSON encodes the envelope. Success responses carry an ETag over the
// data alone, since the meta block differs on every response.
func (rw *ResponseWriter) writeJSON(status int, response *APIResponse) {
	h := rw.w.Header()
	if response.Success && response.Data != nil {
		payload, err := json.Marshal(response.Data)
		if err != nil {
			rw.marshalFailed(err)
			return
		}
		etag := generateETag(payload)
		h.Set("ETag", etag)
		if notModified(rw.r, etag) {
			rw.w.WriteHeader(http.StatusNotModified)
			return
		}
		response.Data = json.RawMessage(payload)
	}

	data, err := json.Marshal(response)
	if err != nil {
		rw.marshalFailed(err)
		return
	}
	h.Set("Content-Type", "application/json; charset=utf-8")
	rw.w.WriteHeader(status)
	if _, err := rw.w.Write(data); err != nil {
		logging.Ctx(rw.r.Context()).Debug().Err(err).Msg("Failed to write JSON response")
	}
}

func (rw *ResponseWriter) marshalFailed(err error) {
	logging.Ctx(rw.r.Context()).Error().Err(err).Msg("Failed to marshal JSON response")
	rw.w.Header().Del("ETag")
	rw.w.WriteHeader(http.StatusInternalServerError)
}

// notModified reports whether a conditional GET already holds etag.
func notModified(r *http.Request, etag string) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	for _, candidate := range strings.Split(r.Header.Get("If-None-Match"), ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == etag || candidate == "*" {
			return true
		}
	}
	return false
}

// generateETag returns a strong ETag over the encoded body.
func generateETag(data []byte) string {
	return fmt.Sprintf(`"%016x"`, xxh3.Hash(data))
}

// WriteSuccess writes a success envelope.
func WriteSuccess(w http.ResponseWriter, r *http.Request, data any) {
	NewResponseWriter(w, r).Success(data)
}

// WriteError writes an error envelope for err.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	NewResponseWriter(w, r).Error(err)
}

// sanitizeLogValue escapes control characters so request data cannot forge
// log lines.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			fmt.Fprintf(&b, "\\x%02x", r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
