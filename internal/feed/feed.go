// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

// Package feed renders the RSS 2.0 channel of recent articles.
package feed

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"github.com/tomtom215/inkwell/internal/config"
	"github.com/tomtom215/inkwell/internal/models"
)

// ContentType is the media type served for the feed.
const ContentType = "application/rss+xml; charset=utf-8"

// DefaultSize is how many articles the channel carries.
const DefaultSize = 20

// protectedDescription replaces the excerpt of password-protected articles.
const protectedDescription = "This article is password protected."

// Source lists the newest published articles.
type Source interface {
	Latest(ctx context.Context, limit uint64) ([]*models.Article, error)
}

// Builder renders the channel.
type Builder struct {
	source Source
	cfg    config.FeedConfig
	size   uint64
}

// NewBuilder returns a builder reading from source.
func NewBuilder(source Source, cfg config.FeedConfig) *Builder {
	return &Builder{source: source, cfg: cfg, size: DefaultSize}
}

// Write renders the channel to w.
func (b *Builder) Write(ctx context.Context, w io.Writer) error {
	articles, err := b.source.Latest(ctx, b.size)
	if err != nil {
		return err
	}
	return b.feed(articles).WriteRss(w)
}

func (b *Builder) feed(articles []*models.Article) *feeds.Feed {
	base := strings.TrimRight(b.cfg.Link, "/")
	f := &feeds.Feed{
		Title:       b.cfg.Title,
		Link:        &feeds.Link{Href: base + "/"},
		Description: b.cfg.Description,
		Items:       make([]*feeds.Item, 0, len(articles)),
	}

	for _, a := range articles {
		published := a.UpdatedAt
		if a.PublishedAt != nil {
			published = *a.PublishedAt
		}
		description := a.Excerpt
		if a.NeedsPassword() {
			description = protectedDescription
		}
		f.Items = append(f.Items, &feeds.Item{
			Id:          a.ID,
			Title:       a.Title,
			Link:        &feeds.Link{Href: base + "/articles/" + a.ID},
			Description: description,
			Created:     published,
			Updated:     a.UpdatedAt,
		})
		if published.After(f.Created) {
			f.Created = published
		}
	}
	if f.Created.IsZero() {
		f.Created = time.Unix(0, 0).UTC()
	}
	return f
}
