// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package api

import (
	"net/http"

	"github.com/tomtom215/inkwell/internal/auth"
)

// loginResponse carries the admin token; expires_at is unix seconds.
type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// Login checks the admin password and one-time code, then issues a token
// both in the body and as the admin cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	token, err := h.authn.Login(r.Context(), req)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	http.SetCookie(w, auth.NewCookie(token, h.cfg.Security.CookieSecure))
	WriteSuccess(w, r, loginResponse{Token: token.Token, ExpiresAt: token.ExpiresAt.Unix()})
}

// Logout clears the admin cookie. Tokens are stateless, so a bearer token
// stays valid until it expires.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ClearCookie(h.cfg.Security.CookieSecure))
	WriteSuccess(w, r, nil)
}
