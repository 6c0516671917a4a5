// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindStatusAndCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind   Kind
		status int
		code   string
	}{
		{Internal, http.StatusInternalServerError, "INTERNAL_ERROR"},
		{HTTPNotFound, http.StatusNotFound, "HTTP_NOT_FOUND"},
		{HTTPMethodNotAllowed, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
		{ServiceUnavailable, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{BadRequest, http.StatusBadRequest, "BAD_REQUEST"},
		{NotFound, http.StatusNotFound, "NOT_FOUND"},
		{AdminAccessTokenMissing, http.StatusUnauthorized, "ADMIN_ACCESS_TOKEN_MISSING"},
		{AdminAccessTokenInvalid, http.StatusUnauthorized, "ADMIN_ACCESS_TOKEN_INVALID"},
		{AdminAccessTokenNotEffective, http.StatusUnauthorized, "ADMIN_ACCESS_TOKEN_NOT_EFFECTIVE"},
		{AdminAccessTokenExpired, http.StatusUnauthorized, "ADMIN_ACCESS_TOKEN_EXPIRED"},
		{PermissionDenied, http.StatusForbidden, "PERMISSION_DENIED"},
		{DataTooLarge, http.StatusRequestEntityTooLarge, "DATA_TOO_LARGE"},
		{ArticleLocked, http.StatusUnauthorized, "ARTICLE_ACCESS_TOKEN_MISSING"},
		{TooManyRequests, http.StatusTooManyRequests, "TOO_MANY_REQUESTS"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			t.Parallel()
			if got := tt.kind.Status(); got != tt.status {
				t.Errorf("Status() = %d, want %d", got, tt.status)
			}
			if got := tt.kind.Code(); got != tt.code {
				t.Errorf("Code() = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestDetails(t *testing.T) {
	t.Parallel()

	locked := Locked("a1")
	if got := locked.Details()["article_id"]; got != "a1" {
		t.Errorf("Locked details article_id = %v, want a1", got)
	}

	large := TooLarge(1024)
	if got := large.Details()["limit"]; got != int64(1024) {
		t.Errorf("TooLarge details limit = %v, want 1024", got)
	}

	if New(BadRequest, "nope").Details() != nil {
		t.Error("BadRequest should carry no details")
	}
}

func TestFrom(t *testing.T) {
	t.Parallel()

	if From(nil) != nil {
		t.Error("From(nil) should be nil")
	}

	plain := errors.New("disk on fire")
	classified := From(plain)
	if classified.Kind != Internal {
		t.Errorf("From(plain).Kind = %v, want Internal", classified.Kind)
	}
	if classified.PublicMessage() != "Internal server error" {
		t.Errorf("PublicMessage() leaked %q", classified.PublicMessage())
	}
	if !errors.Is(classified, plain) {
		t.Error("cause should stay reachable through errors.Is")
	}

	wrapped := fmt.Errorf("loading article: %w", New(NotFound, "Article not found"))
	if got := From(wrapped); got.Kind != NotFound {
		t.Errorf("From(wrapped).Kind = %v, want NotFound", got.Kind)
	}
}

func TestIsKind(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("outer: %w", Wrap(BadRequest, "bad", errors.New("inner")))
	if !IsKind(err, BadRequest) {
		t.Error("IsKind should see through wrapping")
	}
	if IsKind(err, NotFound) {
		t.Error("IsKind matched the wrong kind")
	}
	if !errors.Is(err, New(BadRequest, "")) {
		t.Error("errors.Is should match by kind")
	}
}
