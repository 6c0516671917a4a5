// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/inkwell/internal/apperr"
	"github.com/tomtom215/inkwell/internal/logging"
)

type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	return env
}

func TestWriteSuccess(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/x", nil)
	req = req.WithContext(logging.ContextWithRequestID(req.Context(), "req-1"))
	rec := httptest.NewRecorder()

	WriteSuccess(rec, req, map[string]int{"answer": 42})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Header().Get("ETag") == "" {
		t.Error("ETag header missing")
	}
	env := decodeEnvelope(t, rec)
	if !env.Success || env.Error != nil {
		t.Errorf("envelope = %+v, want success", env)
	}
	if string(env.Data) != `{"answer":42}` {
		t.Errorf("data = %s", env.Data)
	}
	if env.Meta == nil || env.Meta.RequestID != "req-1" {
		t.Errorf("meta = %+v, want request id req-1", env.Meta)
	}
}

func TestWriteSuccess_NilData(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/x", nil)
	rec := httptest.NewRecorder()

	WriteSuccess(rec, req, nil)

	if rec.Header().Get("ETag") != "" {
		t.Error("ETag set for an empty body")
	}
	env := decodeEnvelope(t, rec)
	if !env.Success || len(env.Data) != 0 {
		t.Errorf("envelope = %+v", env)
	}
}

func TestWriteSuccess_ETagStableAcrossResponses(t *testing.T) {
	data := []string{"a", "b"}

	first := httptest.NewRecorder()
	WriteSuccess(first, httptest.NewRequest(http.MethodGet, "/x", nil), data)
	second := httptest.NewRecorder()
	WriteSuccess(second, httptest.NewRequest(http.MethodGet, "/x", nil), data)

	if first.Header().Get("ETag") != second.Header().Get("ETag") {
		t.Errorf("ETag changed between identical payloads: %q vs %q",
			first.Header().Get("ETag"), second.Header().Get("ETag"))
	}
}

func TestWriteSuccess_NotModified(t *testing.T) {
	data := map[string]string{"k": "v"}
	first := httptest.NewRecorder()
	WriteSuccess(first, httptest.NewRequest(http.MethodGet, "/x", nil), data)
	etag := first.Header().Get("ETag")

	tests := []struct {
		name   string
		method string
		match  string
		want   int
	}{
		{"GET matching", http.MethodGet, etag, http.StatusNotModified},
		{"GET in list", http.MethodGet, `"other", ` + etag, http.StatusNotModified},
		{"GET wildcard", http.MethodGet, "*", http.StatusNotModified},
		{"GET stale", http.MethodGet, `"stale"`, http.StatusOK},
		{"POST ignores conditional", http.MethodPost, etag, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/x", nil)
			req.Header.Set("If-None-Match", tt.match)
			rec := httptest.NewRecorder()
			WriteSuccess(rec, req, data)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusNotModified && rec.Body.Len() != 0 {
				t.Errorf("304 carried a body: %q", rec.Body.String())
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "bad request keeps message",
			err:         apperr.New(apperr.BadRequest, "Title is required"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    "BAD_REQUEST",
			wantMessage: "Title is required",
		},
		{
			name:       "locked",
			err:        apperr.Locked("a1"),
			wantStatus: http.StatusUnauthorized,
			wantCode:   "ARTICLE_ACCESS_TOKEN_MISSING",
		},
		{
			name:       "too large",
			err:        apperr.TooLarge(1024),
			wantStatus: http.StatusRequestEntityTooLarge,
			wantCode:   "DATA_TOO_LARGE",
		},
		{
			name:        "untyped error is internal and hidden",
			err:         errors.New("duckdb: disk I/O error at /var/lib/secret"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "INTERNAL_ERROR",
			wantMessage: "Internal server error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, httptest.NewRequest(http.MethodPost, "/api/x", nil), tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			env := decodeEnvelope(t, rec)
			if env.Success || env.Error == nil {
				t.Fatalf("envelope = %+v, want error", env)
			}
			if env.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", env.Error.Code, tt.wantCode)
			}
			if tt.wantMessage != "" && env.Error.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", env.Error.Message, tt.wantMessage)
			}
			if strings.Contains(rec.Body.String(), "secret") {
				t.Error("internal error detail leaked to the client")
			}
			if rec.Header().Get("ETag") != "" {
				t.Error("error response carries an ETag")
			}
		})
	}
}

func TestSanitizeLogValue(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/api/article/get", "/api/article/get"},
		{"/a\nfake=1", `/a\x0afake=1`},
		{"tab\there", `tab\x09here`},
		{"del\x7f", `del\x7f`},
		{"unicode/é", "unicode/é"},
	}
	for _, tt := range tests {
		if got := sanitizeLogValue(tt.in); got != tt.want {
			t.Errorf("sanitizeLogValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUploadMetaFromHeaders(t *testing.T) {
	full := func() http.Header {
		h := http.Header{}
		h.Set(headerFileName, "my%20notes.txt")
		h.Set(headerFileSize, "12")
		h.Set(headerFileMimeType, "text/plain")
		h.Set(headerFileSHA256, strings.Repeat("a", 64))
		return h
	}

	t.Run("decodes name", func(t *testing.T) {
		meta, err := uploadMetaFromHeaders(full())
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if meta.Name != "my notes.txt" || meta.Size != 12 || meta.MimeType != "text/plain" {
			t.Errorf("meta = %+v", meta)
		}
	})

	tests := []struct {
		name   string
		mutate func(http.Header)
	}{
		{"missing name", func(h http.Header) { h.Del(headerFileName) }},
		{"bad escape", func(h http.Header) { h.Set(headerFileName, "bad%zz") }},
		{"missing size", func(h http.Header) { h.Del(headerFileSize) }},
		{"negative size", func(h http.Header) { h.Set(headerFileSize, "-1") }},
		{"text size", func(h http.Header) { h.Set(headerFileSize, "twelve") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := full()
			tt.mutate(h)
			_, err := uploadMetaFromHeaders(h)
			if !apperr.IsKind(err, apperr.BadRequest) {
				t.Errorf("error = %v, want BadRequest", err)
			}
		})
	}
}
