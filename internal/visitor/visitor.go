// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

// Package visitor tracks anonymous visitors through cache records: a
// sliding-window identity, per-article unlock permits, and a daily view
// marker that makes unique-view counting idempotent.
package visitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/inkwell/internal/cache"
	"github.com/tomtom215/inkwell/internal/logging"
)

const (
	// IdentityTTL is the lifetime of a visitor identity and its cookie.
	IdentityTTL = 7 * 24 * time.Hour
	// RenewThreshold is the remaining lifetime at or below which Keep
	// extends an identity back to IdentityTTL.
	RenewThreshold = 24 * time.Hour
	// ViewRecordTTL bounds how often a visitor counts as a unique viewer.
	ViewRecordTTL = 24 * time.Hour
)

// ErrIDCollision is returned when a freshly generated visitor id is already
// held by an active identity.
var ErrIDCollision = errors.New("visitor id collision")

// Identity is an anonymous visitor.
type Identity struct {
	VisitorID string `json:"visitor_id"`
}

func (Identity) Kind() string      { return "visitor" }
func (i Identity) CacheID() string { return i.VisitorID }

// ArticlePermit grants a visitor access to one password protected article.
type ArticlePermit struct {
	VisitorID string `json:"visitor_id"`
	ArticleID string `json:"article_id"`
}

func (ArticlePermit) Kind() string      { return "visitor_article_access_permit" }
func (p ArticlePermit) CacheID() string { return pairID(p.VisitorID, p.ArticleID) }

// ArticleViewRecord marks that a visitor viewed an article recently.
type ArticleViewRecord struct {
	VisitorID string `json:"visitor_id"`
	ArticleID string `json:"article_id"`
}

func (ArticleViewRecord) Kind() string      { return "visitor_article_access_record" }
func (r ArticleViewRecord) CacheID() string { return pairID(r.VisitorID, r.ArticleID) }

func pairID(visitorID, articleID string) string {
	return visitorID + ":" + articleID
}

// Manager owns visitor identities and their article permits.
type Manager struct {
	cache     *cache.Cache
	accessTTL time.Duration
}

// NewManager returns a manager. accessTTL is the lifetime of article permits.
func NewManager(c *cache.Cache, accessTTL time.Duration) *Manager {
	return &Manager{cache: c, accessTTL: accessTTL}
}

// Now returns the time on the manager's cache clock.
func (m *Manager) Now() time.Time {
	return m.cache.Now()
}

// CreateAndCache mints a new visitor identity. Permits left behind by an
// earlier holder of the same id are revoked.
func (m *Manager) CreateAndCache(ctx context.Context) (Identity, error) {
	identity := Identity{VisitorID: uuid.NewString()}

	ok, err := cache.Set(ctx, m.cache, identity, IdentityTTL, cache.OnlyIfNotExists)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to cache visitor identity: %w", err)
	}
	if !ok {
		return Identity{}, fmt.Errorf("%w: %s", ErrIDCollision, identity.VisitorID)
	}

	if err := cache.BatchRemove[ArticlePermit](ctx, m.cache, identity.VisitorID+":"); err != nil {
		return Identity{}, fmt.Errorf("failed to revoke stale permits: %w", err)
	}

	logging.Ctx(ctx).Debug().Str("visitor_id", identity.VisitorID).Msg("Created visitor identity")
	return identity, nil
}

// KeepOrCreate returns the identity for candidateID if it is still active,
// renewing it when close to expiry. Otherwise a new identity is minted; the
// candidate id is never adopted.
func (m *Manager) KeepOrCreate(ctx context.Context, candidateID string) (Identity, error) {
	if candidateID != "" {
		kept, err := m.Keep(ctx, candidateID)
		if err != nil {
			return Identity{}, err
		}
		if kept {
			rec, err := cache.Get[Identity](ctx, m.cache, candidateID)
			if err != nil {
				return Identity{}, err
			}
			if rec != nil {
				return rec.Data, nil
			}
		}
	}
	return m.CreateAndCache(ctx)
}

// Keep reports whether visitorID is active, extending it to IdentityTTL when
// its remaining lifetime is at or below RenewThreshold.
func (m *Manager) Keep(ctx context.Context, visitorID string) (bool, error) {
	ttl, ok, err := cache.GetTTL[Identity](ctx, m.cache, visitorID)
	if err != nil {
		return false, fmt.Errorf("failed to read visitor ttl: %w", err)
	}
	if !ok {
		return false, nil
	}
	if ttl > RenewThreshold {
		return true, nil
	}

	renewed, err := cache.SetTTL[Identity](ctx, m.cache, visitorID, IdentityTTL)
	if err != nil {
		return false, fmt.Errorf("failed to renew visitor: %w", err)
	}
	return renewed, nil
}

// AddArticlePermit grants visitorID access to articleID for the access TTL.
func (m *Manager) AddArticlePermit(ctx context.Context, visitorID, articleID string) error {
	permit := ArticlePermit{VisitorID: visitorID, ArticleID: articleID}
	if _, err := cache.Set(ctx, m.cache, permit, m.accessTTL, cache.Overwrite); err != nil {
		return fmt.Errorf("failed to grant article permit: %w", err)
	}
	return nil
}

// HasArticlePermit reports whether visitorID holds an active permit.
func (m *Manager) HasArticlePermit(ctx context.Context, visitorID, articleID string) (bool, error) {
	return cache.Exists[ArticlePermit](ctx, m.cache, pairID(visitorID, articleID))
}

// RecordArticleView marks a view and reports whether it is the first one
// within ViewRecordTTL.
func (m *Manager) RecordArticleView(ctx context.Context, visitorID, articleID string) (bool, error) {
	record := ArticleViewRecord{VisitorID: visitorID, ArticleID: articleID}
	first, err := cache.Set(ctx, m.cache, record, ViewRecordTTL, cache.OnlyIfNotExists)
	if err != nil {
		return false, fmt.Errorf("failed to record article view: %w", err)
	}
	return first, nil
}
