// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package article

import (
	"context"

	"github.com/tomtom215/inkwell/internal/apperr"
	"github.com/tomtom215/inkwell/internal/auth"
	"github.com/tomtom215/inkwell/internal/models"
)

type permitChecker interface {
	HasArticlePermit(ctx context.Context, visitorID, articleID string) (bool, error)
}

// Policy decides who may read an article.
type Policy struct {
	permits permitChecker
}

// NewPolicy returns a policy consulting permits for password-protected
// articles.
func NewPolicy(permits permitChecker) *Policy {
	return &Policy{permits: permits}
}

// Check reports whether a may be shown. A nil article and a draft seen by a
// visitor are both simply not visible; callers answer them like a missing
// article. A protected article without a permit yields ArticleLocked. The
// admin sees everything.
func (p *Policy) Check(ctx context.Context, admin *auth.Admin, visitorID string, a *models.Article, ignoreStatus bool) (bool, error) {
	if a == nil {
		return false, nil
	}
	if admin != nil {
		return true, nil
	}
	if !ignoreStatus && a.Status == models.ArticleStatusDraft {
		return false, nil
	}
	if err := p.checkPermit(ctx, visitorID, a); err != nil {
		return false, err
	}
	return true, nil
}

// CheckUnlocked is the password half of Check, used where status does not
// matter.
func (p *Policy) CheckUnlocked(ctx context.Context, admin *auth.Admin, visitorID string, a *models.Article) error {
	if admin != nil {
		return nil
	}
	return p.checkPermit(ctx, visitorID, a)
}

func (p *Policy) checkPermit(ctx context.Context, visitorID string, a *models.Article) error {
	if !a.NeedsPassword() {
		return nil
	}
	ok, err := p.permits.HasArticlePermit(ctx, visitorID, a.ID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Locked(a.ID)
	}
	return nil
}
