// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package feed

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/tomtom215/inkwell/internal/config"
	"github.com/tomtom215/inkwell/internal/models"
)

type stubSource struct {
	articles  []*models.Article
	err       error
	lastLimit uint64
}

func (s *stubSource) Latest(_ context.Context, limit uint64) ([]*models.Article, error) {
	s.lastLimit = limit
	return s.articles, s.err
}

var testFeedConfig = config.FeedConfig{
	Title:       "Inkwell",
	Link:        "https://blog.example.com/",
	Description: "Notes",
}

func TestBuilder_Write(t *testing.T) {
	published := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	password := "secret12"
	src := &stubSource{articles: []*models.Article{
		{
			ID: "a1", Title: "First post", Excerpt: "Hello there",
			Status: models.ArticleStatusPublished, UpdatedAt: published, PublishedAt: &published,
		},
		{
			ID: "a2", Title: "Locked <post>", Excerpt: "should not leak",
			Status: models.ArticleStatusPublished, UpdatedAt: published, PublishedAt: &published, Password: &password,
		},
	}}

	var buf bytes.Buffer
	if err := NewBuilder(src, testFeedConfig).Write(context.Background(), &buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if src.lastLimit != DefaultSize {
		t.Errorf("Latest() limit = %d, want %d", src.lastLimit, DefaultSize)
	}

	parsed, err := gofeed.NewParser().ParseString(buf.String())
	if err != nil {
		t.Fatalf("generated feed does not parse: %v\n%s", err, buf.String())
	}
	if parsed.FeedType != "rss" {
		t.Errorf("FeedType = %q, want rss", parsed.FeedType)
	}
	if parsed.Title != "Inkwell" || parsed.Link != "https://blog.example.com/" {
		t.Errorf("channel = %q %q", parsed.Title, parsed.Link)
	}
	if len(parsed.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(parsed.Items))
	}

	first := parsed.Items[0]
	if first.Title != "First post" || first.Link != "https://blog.example.com/articles/a1" || first.Description != "Hello there" {
		t.Errorf("first item = %+v", first)
	}
	if first.PublishedParsed == nil || !first.PublishedParsed.Equal(published) {
		t.Errorf("first item published = %v, want %v", first.PublishedParsed, published)
	}

	locked := parsed.Items[1]
	if locked.Title != "Locked <post>" {
		t.Errorf("escaped title round trip = %q", locked.Title)
	}
	if locked.Description != protectedDescription {
		t.Errorf("protected item description = %q", locked.Description)
	}
}

func TestBuilder_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewBuilder(&stubSource{}, testFeedConfig).Write(context.Background(), &buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	parsed, err := gofeed.NewParser().ParseString(buf.String())
	if err != nil {
		t.Fatalf("empty feed does not parse: %v", err)
	}
	if len(parsed.Items) != 0 {
		t.Errorf("items = %d, want 0", len(parsed.Items))
	}
}

func TestBuilder_SourceError(t *testing.T) {
	want := errors.New("db down")
	var buf bytes.Buffer
	if err := NewBuilder(&stubSource{err: want}, testFeedConfig).Write(context.Background(), &buf); !errors.Is(err, want) {
		t.Errorf("Write() error = %v, want %v", err, want)
	}
	if buf.Len() != 0 {
		t.Error("partial output written on error")
	}
}
