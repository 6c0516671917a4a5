// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package visitor

import (
	"context"
	"net/http"
	"time"
)

// CookieName carries the visitor id.
const CookieName = "x-visitor-id"

type contextKey struct{}

// NewCookie builds the visitor cookie, expiring IdentityTTL after now.
func NewCookie(visitorID string, secure bool, now time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    visitorID,
		Path:     "/",
		Expires:  now.Add(IdentityTTL),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// FromRequest returns the visitor id cookie value, or "".
func FromRequest(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// WithIdentity stores the identity on ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity stored by WithIdentity.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}
