// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

// Package models holds the persisted record types shared by the database
// layer and the services built on it.
package models

import (
	"fmt"
	"time"
)

// ArticleStatus is the publication state of an article.
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusPublished ArticleStatus = "published"
)

// ParseArticleStatus validates a wire value.
func ParseArticleStatus(s string) (ArticleStatus, error) {
	switch ArticleStatus(s) {
	case ArticleStatusDraft, ArticleStatusPublished:
		return ArticleStatus(s), nil
	default:
		return "", fmt.Errorf("unknown article status %q", s)
	}
}

// Article is a stored blog post.
type Article struct {
	ID              string
	Title           string
	Excerpt         string
	MarkdownContent string

	// PlainContent is the markdown with markup and symbols removed, used for
	// full-text matching and excerpts.
	PlainContent string

	// Password gates visitor access when non-nil.
	Password *string

	Status      ArticleStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	PublishedAt *time.Time
}

// NeedsPassword reports whether visitors must unlock the article.
func (a *Article) NeedsPassword() bool {
	return a.Password != nil
}

// ArticleSearch filters an article listing. Nil fields do not filter.
type ArticleSearch struct {
	FullText      string
	Status        *ArticleStatus
	PublishedAtGE *time.Time
	PublishedAtLT *time.Time

	// NeedPassword filters on whether a password is set.
	NeedPassword *bool

	// FullTextLimit caps how many rows the full-text match may select.
	FullTextLimit int
}

// ArticleStats holds view counters for one article.
type ArticleStats struct {
	ID        string
	ArticleID string
	PV        uint64
	UV        uint64
}

// ArticleAttachment links an uploaded resource to an article.
type ArticleAttachment struct {
	ID         string
	ArticleID  string
	ResourceID string
	CreatedAt  time.Time
}

// Resource is the metadata row of an uploaded file.
type Resource struct {
	ID        string
	Name      string
	Extension string

	// Path is where the bytes live on disk. Several rows may share one path
	// when uploads are deduplicated.
	Path      string
	Size      uint64
	MimeType  string
	IsPublic  bool
	SHA256    string
	CreatedAt time.Time
}

// CacheEntry is one row of the TTL cache. Data is the JSON encoded payload.
// Times are unix seconds.
type CacheEntry struct {
	Kind      string
	ID        string
	Data      []byte
	CreatedAt int64
	ExpiresAt int64
}
