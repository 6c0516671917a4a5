// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

// Package auth handles the single administrator account: password plus TOTP
// login, signed access tokens, and the per-key throttle used for article
// unlock attempts.
//
// The admin token travels either as an Authorization bearer token or in the
// "admin" cookie set at login. Visitors never hold a token; they are tracked
// by internal/visitor instead.
package auth

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// CookieName is the cookie carrying the admin access token.
const CookieName = "admin"

// Admin is a validated administrator session.
type Admin struct {
	ExpiresAt time.Time
}

type contextKey struct{}

// WithAdmin stores the session on ctx.
func WithAdmin(ctx context.Context, admin *Admin) context.Context {
	return context.WithValue(ctx, contextKey{}, admin)
}

// FromContext returns the session stored by WithAdmin, or nil for a visitor.
func FromContext(ctx context.Context) *Admin {
	admin, _ := ctx.Value(contextKey{}).(*Admin)
	return admin
}

// TokenFromRequest extracts the admin token. A bearer Authorization header
// wins over the cookie.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// NewCookie returns the cookie set after a successful login.
func NewCookie(token AccessToken, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token.Token,
		Path:     "/",
		Expires:  token.ExpiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie returns a cookie that removes the admin token from the browser.
func ClearCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
