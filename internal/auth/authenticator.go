// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/inkwell/internal/apperr"
	"github.com/tomtom215/inkwell/internal/config"
	"github.com/tomtom215/inkwell/internal/logging"
	"github.com/tomtom215/inkwell/internal/metrics"
)

// loginFailedMessage is shared by both factors so a failed login does not
// reveal which one was wrong.
const loginFailedMessage = "Incorrect password or one-time code"

// LoginRequest is the admin login body.
type LoginRequest struct {
	Password string `json:"password" validate:"required,max=72"`
	TOTPCode string `json:"totp_code" validate:"required,numeric,min=6,max=8"`
}

// Authenticator verifies admin credentials and issues tokens.
type Authenticator struct {
	passwordHash []byte
	totpKey      *otp.Key
	tokens       *TokenManager
	clock        clock.Clock
}

// NewAuthenticator parses the configured TOTP key. cfg is expected to have
// passed config validation.
func NewAuthenticator(cfg *config.AdminConfig, tokens *TokenManager, clk clock.Clock) (*Authenticator, error) {
	key, err := otp.NewKeyFromURL(cfg.TOTPURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_TOTP_URL: %w", err)
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Authenticator{
		passwordHash: []byte(cfg.PasswordHash),
		totpKey:      key,
		tokens:       tokens,
		clock:        clk,
	}, nil
}

// Tokens returns the token manager used for validation.
func (a *Authenticator) Tokens() *TokenManager {
	return a.tokens
}

// Login checks the password and then the one-time code. Both must match.
func (a *Authenticator) Login(ctx context.Context, req LoginRequest) (AccessToken, error) {
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(req.Password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			logging.Ctx(ctx).Error().Err(err).Msg("Admin password hash check failed")
		}
		metrics.RecordAdminLogin(false)
		return AccessToken{}, apperr.New(apperr.BadRequest, loginFailedMessage)
	}

	valid, err := totp.ValidateCustom(req.TOTPCode, a.totpKey.Secret(), a.clock.Now().UTC(), totp.ValidateOpts{
		Period:    uint(a.totpKey.Period()),
		Skew:      1,
		Digits:    a.totpKey.Digits(),
		Algorithm: a.totpKey.Algorithm(),
	})
	if err != nil || !valid {
		metrics.RecordAdminLogin(false)
		return AccessToken{}, apperr.New(apperr.BadRequest, loginFailedMessage)
	}

	token, err := a.tokens.Issue()
	if err != nil {
		return AccessToken{}, err
	}
	metrics.RecordAdminLogin(true)
	logging.Ctx(ctx).Info().Time("expires_at", token.ExpiresAt).Msg("Admin logged in")
	return token, nil
}
