// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/inkwell/internal/apperr"
)

// adminKind is the only token kind this service issues.
const adminKind = "admin"

// Claims are the admin token claims.
type Claims struct {
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

// AccessToken is a signed admin token and its expiry.
type AccessToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenManager signs and validates admin tokens with HMAC-SHA256.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

// NewTokenManager returns a manager issuing tokens valid for ttl.
func NewTokenManager(secret string, ttl time.Duration, clk clock.Clock) (*TokenManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but was empty")
	}
	if clk == nil {
		clk = clock.New()
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, clock: clk}, nil
}

// Issue signs a new admin token effective immediately.
func (m *TokenManager) Issue() (AccessToken, error) {
	now := m.clock.Now().Truncate(time.Second)
	expiresAt := now.Add(m.ttl)

	claims := &Claims{
		Kind: adminKind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return AccessToken{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return AccessToken{Token: signed, ExpiresAt: expiresAt}, nil
}

// Validate checks signature, algorithm, kind and time window. Failures are
// classified so clients can tell a stale token from a forged one.
func (m *TokenManager) Validate(token string) (*Admin, error) {
	if token == "" {
		return nil, apperr.New(apperr.AdminAccessTokenMissing, "")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.clock.Now),
		jwt.WithExpirationRequired(),
	)
	parsed, err := parser.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return nil, apperr.Wrap(apperr.AdminAccessTokenNotEffective, "", err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, apperr.Wrap(apperr.AdminAccessTokenExpired, "", err)
	case err != nil:
		return nil, apperr.Wrap(apperr.AdminAccessTokenInvalid, "", err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Kind != adminKind {
		return nil, apperr.New(apperr.AdminAccessTokenInvalid, "")
	}
	return &Admin{ExpiresAt: claims.ExpiresAt.Time.UTC()}, nil
}
