// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

// Package article implements the blog's articles: authoring, search, the
// read policy for drafts and password-protected posts, view counting and
// attachments.
package article

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/tomtom215/inkwell/internal/apperr"
	"github.com/tomtom215/inkwell/internal/auth"
	"github.com/tomtom215/inkwell/internal/config"
	"github.com/tomtom215/inkwell/internal/database"
	"github.com/tomtom215/inkwell/internal/logging"
	"github.com/tomtom215/inkwell/internal/metrics"
	"github.com/tomtom215/inkwell/internal/models"
	"github.com/tomtom215/inkwell/internal/pagination"
	"github.com/tomtom215/inkwell/internal/resource"
	"github.com/tomtom215/inkwell/internal/validation"
	"github.com/tomtom215/inkwell/internal/visitor"
)

// Service is the article application service.
type Service struct {
	db        *database.DB
	resources *resource.Service
	visitors  *visitor.Manager
	policy    *Policy
	views     *ViewRecorder
	unlocks   *auth.KeyedLimiter
	cfg       config.ArticleConfig
	rules     pagination.Rules
	navLen    uint64
	clock     clock.Clock
}

// NewService wires the article service.
func NewService(db *database.DB, resources *resource.Service, visitors *visitor.Manager, cfg *config.Config, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.New()
	}
	return &Service{
		db:        db,
		resources: resources,
		visitors:  visitors,
		policy:    NewPolicy(visitors),
		views:     NewViewRecorder(visitors, db, DefaultBreakerSettings),
		unlocks:   auth.NewKeyedLimiter(cfg.Article.UnlockAttempts, cfg.Article.UnlockWindow, clk),
		cfg:       cfg.Article,
		rules:     pagination.RulesFromConfig(&cfg.Pagination),
		navLen:    cfg.Pagination.NavLen,
		clock:     clk,
	}
}

// Views exposes the view recorder, mainly for health reporting.
func (s *Service) Views() *ViewRecorder {
	return s.views
}

func (s *Service) now() time.Time {
	return s.clock.Now().UTC().Truncate(time.Second)
}

// checkLimits enforces the configured size limits. Title is measured in
// runes, content in bytes.
func (s *Service) checkLimits(title, markdown string) error {
	if n := utf8.RuneCountInString(title); n > s.cfg.TitleMaxSize {
		e := apperr.Newf(apperr.BadRequest, "Title is too long (%d characters, at most %d)", n, s.cfg.TitleMaxSize)
		e.Field = "Title"
		return e
	}
	if len(markdown) > s.cfg.ContentMaxSize {
		e := apperr.Newf(apperr.BadRequest, "Content is too long (%d bytes, at most %d)", len(markdown), s.cfg.ContentMaxSize)
		e.Field = "MarkdownContent"
		return e
	}
	return nil
}

// Create stores a new article and its zeroed counters.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Details, error) {
	if err := validation.Validate(&req); err != nil {
		return nil, err
	}
	if err := s.checkLimits(req.Title, req.MarkdownContent); err != nil {
		return nil, err
	}

	now := s.now()
	plain := PlainText(req.MarkdownContent)
	a := &models.Article{
		ID:              uuid.NewString(),
		Title:           req.Title,
		Excerpt:         Excerpt(plain, s.cfg.ExcerptMaxSize),
		MarkdownContent: req.MarkdownContent,
		PlainContent:    plain,
		Password:        req.Password,
		Status:          req.Status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if a.Status == models.ArticleStatusPublished {
		a.PublishedAt = &now
	}
	stats := &models.ArticleStats{ID: uuid.NewString(), ArticleID: a.ID}

	err := s.db.RunInTx(ctx, func(tx *database.Tx) error {
		if err := tx.InsertArticle(ctx, a); err != nil {
			return err
		}
		return tx.InsertArticleStats(ctx, stats)
	})
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().Str("article_id", a.ID).Str("status", string(a.Status)).Msg("Article created")
	return newDetails(a, []Attachment{}, stats, true), nil
}

// Update rewrites an article. The derived text is recomputed only when the
// markdown changed, and the first publication time is never moved.
func (s *Service) Update(ctx context.Context, req UpdateRequest) error {
	if err := validation.Validate(&req); err != nil {
		return err
	}
	if err := s.checkLimits(req.Title, req.MarkdownContent); err != nil {
		return err
	}

	return s.db.RunInTx(ctx, func(tx *database.Tx) error {
		a, err := tx.FindArticle(ctx, req.ArticleID)
		if err != nil {
			return err
		}
		if a == nil {
			return apperr.New(apperr.NotFound, "Article not found")
		}

		now := s.now()
		if a.MarkdownContent != req.MarkdownContent {
			a.PlainContent = PlainText(req.MarkdownContent)
			a.Excerpt = Excerpt(a.PlainContent, s.cfg.ExcerptMaxSize)
		}
		a.Title = req.Title
		a.MarkdownContent = req.MarkdownContent
		a.Password = req.Password
		a.Status = req.Status
		a.UpdatedAt = now
		if a.PublishedAt == nil && a.Status == models.ArticleStatusPublished {
			a.PublishedAt = &now
		}

		if _, err := tx.UpdateArticle(ctx, a); err != nil {
			return err
		}
		logging.Ctx(ctx).Info().Str("article_id", a.ID).Msg("Article updated")
		return nil
	})
}

// Remove deletes an article with its counters and attachments. Removing a
// missing article succeeds.
func (s *Service) Remove(ctx context.Context, articleID string) error {
	return s.db.RunInTx(ctx, func(tx *database.Tx) error {
		a, err := tx.FindArticle(ctx, articleID)
		if err != nil || a == nil {
			return err
		}
		attachments, err := tx.ListAttachmentsByArticle(ctx, a.ID)
		if err != nil {
			return err
		}

		if err := tx.DeleteAttachmentsByArticle(ctx, a.ID); err != nil {
			return err
		}
		if err := tx.DeleteArticleStats(ctx, a.ID); err != nil {
			return err
		}
		if err := tx.DeleteArticle(ctx, a.ID); err != nil {
			return err
		}
		// Attachment resources are private to their article.
		for _, att := range attachments {
			if err := s.resources.RemoveWith(ctx, tx, att.ResourceID); err != nil {
				return err
			}
		}

		logging.Ctx(ctx).Info().Str("article_id", a.ID).Int("attachments", len(attachments)).Msg("Article removed")
		return nil
	})
}

// Search lists articles. Visitors only see published articles, and a
// full-text query from a visitor skips protected ones so their text cannot
// be guessed.
func (s *Service) Search(ctx context.Context, admin *auth.Admin, req SearchRequest) (*SearchResult, error) {
	if err := validation.Validate(&req); err != nil {
		return nil, err
	}
	page, err := pagination.Resolve(req.Page, req.Size, s.rules)
	if err != nil {
		return nil, err
	}
	offset, err := page.ToOffset()
	if err != nil {
		return nil, apperr.Wrap(apperr.BadRequest, "Page is out of range", err)
	}

	fullText := strings.TrimSpace(req.FullText)
	search := &models.ArticleSearch{
		FullText:      fullText,
		Status:        req.Status,
		PublishedAtGE: timePtr(req.PublishedAtGE),
		PublishedAtLT: timePtr(req.PublishedAtLT),
		FullTextLimit: s.cfg.FullTextSearchLimit,
	}
	if admin == nil {
		published := models.ArticleStatusPublished
		search.Status = &published
		if fullText != "" {
			noPassword := false
			search.NeedPassword = &noPassword
		}
	}

	articles, err := s.db.SearchArticles(ctx, search, offset.Size, offset.Offset)
	if err != nil {
		return nil, err
	}
	total, err := s.db.CountArticles(ctx, search)
	if err != nil {
		return nil, err
	}

	items := make([]ListItem, 0, len(articles))
	for _, a := range articles {
		items = append(items, newListItem(a))
	}
	lastPage := s.rules.MaxPage - 1
	return &SearchResult{
		Data:       pagination.NewPageData(items).WithTotal(total),
		Page:       page,
		Navigation: pagination.NewNavigation(&total, page, s.navLen, &lastPage),
	}, nil
}

// Latest returns up to limit published articles, newest first, as a
// visitor would list them.
func (s *Service) Latest(ctx context.Context, limit uint64) ([]*models.Article, error) {
	published := models.ArticleStatusPublished
	return s.db.SearchArticles(ctx, &models.ArticleSearch{Status: &published}, limit, 0)
}

// Get returns an article, or nil when it does not exist or the caller may
// not know it exists. A visitor's read is counted.
func (s *Service) Get(ctx context.Context, admin *auth.Admin, v visitor.Identity, articleID string, ignoreStatus bool) (*Details, error) {
	a, err := s.db.FindArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	visible, err := s.policy.Check(ctx, admin, v.VisitorID, a, ignoreStatus)
	if err != nil || !visible {
		return nil, err
	}

	attachments, err := s.listAttachments(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	stats, err := s.db.FindArticleStats(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return nil, fmt.Errorf("article %s has no stats row", a.ID)
	}

	if admin == nil {
		s.views.Record(ctx, v.VisitorID, a.ID)
	}
	return newDetails(a, attachments, stats, admin != nil), nil
}

// About returns the configured about page, or nil if none is configured.
// Its status is ignored so it can stay out of listings as a draft.
func (s *Service) About(ctx context.Context, admin *auth.Admin, v visitor.Identity) (*Details, error) {
	if s.cfg.AboutArticleID == "" {
		return nil, nil
	}
	return s.Get(ctx, admin, v, s.cfg.AboutArticleID, true)
}

// Unlock checks an article password and grants the visitor a permit.
func (s *Service) Unlock(ctx context.Context, v visitor.Identity, req UnlockRequest) error {
	if !s.unlocks.Allow(v.VisitorID) {
		metrics.RecordUnlockAttempt("throttled")
		return apperr.New(apperr.TooManyRequests, "Too many unlock attempts, try again later")
	}
	if err := validation.Validate(&req); err != nil {
		metrics.RecordUnlockAttempt("invalid")
		return err
	}

	a, err := s.db.FindArticle(ctx, req.ArticleID)
	if err != nil {
		return err
	}
	if a == nil {
		metrics.RecordUnlockAttempt("not_found")
		return apperr.New(apperr.NotFound, "Article not found")
	}
	if !a.NeedsPassword() {
		metrics.RecordUnlockAttempt("not_needed")
		return apperr.New(apperr.BadRequest, "This article does not need a password")
	}
	if subtle.ConstantTimeCompare([]byte(*a.Password), []byte(req.Password)) != 1 {
		metrics.RecordUnlockAttempt("wrong_password")
		return apperr.New(apperr.BadRequest, "Incorrect article password")
	}

	if err := s.visitors.AddArticlePermit(ctx, v.VisitorID, a.ID); err != nil {
		return err
	}
	metrics.RecordUnlockAttempt("granted")
	return nil
}
