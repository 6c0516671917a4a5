// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package article

import (
	"time"

	"github.com/tomtom215/inkwell/internal/models"
	"github.com/tomtom215/inkwell/internal/pagination"
)

// CreateRequest is the body of POST /api/article/create.
type CreateRequest struct {
	Title           string               `json:"title" validate:"required,notblank"`
	MarkdownContent string               `json:"markdown_content"`
	Password        *string              `json:"password" validate:"omitempty,alphanum,min=6,max=32"`
	Status          models.ArticleStatus `json:"status" validate:"required,oneof=draft published"`
}

// UpdateRequest is the body of POST /api/article/update.
type UpdateRequest struct {
	ArticleID       string               `json:"article_id" validate:"required"`
	Title           string               `json:"title" validate:"required,notblank"`
	MarkdownContent string               `json:"markdown_content"`
	Password        *string              `json:"password" validate:"omitempty,alphanum,min=6,max=32"`
	Status          models.ArticleStatus `json:"status" validate:"required,oneof=draft published"`
}

// SearchRequest is the body of POST /api/article/search. Timestamps are
// unix seconds.
type SearchRequest struct {
	FullText      string                `json:"full_text" validate:"max=200"`
	Status        *models.ArticleStatus `json:"status" validate:"omitempty,oneof=draft published"`
	PublishedAtGE *int64                `json:"published_at_ge"`
	PublishedAtLT *int64                `json:"published_at_lt"`
	Page          *uint64               `json:"page"`
	Size          *uint64               `json:"size"`
}

// UnlockRequest is the body of POST /api/article/unlock.
type UnlockRequest struct {
	ArticleID string `json:"article_id" validate:"required"`
	Password  string `json:"password" validate:"required,alphanum,min=6,max=32"`
}

// ListItem is one row of a search result.
type ListItem struct {
	ArticleID    string               `json:"article_id"`
	Title        string               `json:"title"`
	Status       models.ArticleStatus `json:"status"`
	CreatedAt    int64                `json:"created_at"`
	UpdatedAt    int64                `json:"updated_at"`
	PublishedAt  *int64               `json:"published_at"`
	NeedPassword bool                 `json:"need_password"`
}

// SearchResult is one page of articles plus its pager.
type SearchResult struct {
	Data       pagination.PageData[ListItem] `json:"data"`
	Page       pagination.Page               `json:"page"`
	Navigation pagination.Navigation         `json:"navigation"`
}

// Attachment is an attachment joined with its resource metadata.
type Attachment struct {
	AttachmentID string `json:"attachment_id"`
	ArticleID    string `json:"article_id"`
	Name         string `json:"name"`
	Extension    string `json:"extension"`
	Size         uint64 `json:"size"`
	MimeType     string `json:"mime_type"`
	SHA256       string `json:"sha256"`
	CreatedAt    int64  `json:"created_at"`
}

// Details is a full article. Password is only filled for the admin.
type Details struct {
	ArticleID       string               `json:"article_id"`
	Title           string               `json:"title"`
	Excerpt         string               `json:"excerpt"`
	MarkdownContent string               `json:"markdown_content"`
	Password        *string              `json:"password,omitempty"`
	Status          models.ArticleStatus `json:"status"`
	CreatedAt       int64                `json:"created_at"`
	UpdatedAt       int64                `json:"updated_at"`
	PublishedAt     *int64               `json:"published_at"`
	NeedPassword    bool                 `json:"need_password"`
	Attachments     []Attachment         `json:"attachments"`
	PV              uint64               `json:"pv"`
	UV              uint64               `json:"uv"`
}

func newListItem(a *models.Article) ListItem {
	return ListItem{
		ArticleID:    a.ID,
		Title:        a.Title,
		Status:       a.Status,
		CreatedAt:    a.CreatedAt.Unix(),
		UpdatedAt:    a.UpdatedAt.Unix(),
		PublishedAt:  unixPtr(a.PublishedAt),
		NeedPassword: a.NeedsPassword(),
	}
}

func newDetails(a *models.Article, attachments []Attachment, stats *models.ArticleStats, admin bool) *Details {
	d := &Details{
		ArticleID:       a.ID,
		Title:           a.Title,
		Excerpt:         a.Excerpt,
		MarkdownContent: a.MarkdownContent,
		Status:          a.Status,
		CreatedAt:       a.CreatedAt.Unix(),
		UpdatedAt:       a.UpdatedAt.Unix(),
		PublishedAt:     unixPtr(a.PublishedAt),
		NeedPassword:    a.NeedsPassword(),
		Attachments:     attachments,
		PV:              stats.PV,
		UV:              stats.UV,
	}
	if admin {
		d.Password = a.Password
	}
	return d
}

func newAttachment(att *models.ArticleAttachment, res *models.Resource) Attachment {
	return Attachment{
		AttachmentID: att.ID,
		ArticleID:    att.ArticleID,
		Name:         res.Name,
		Extension:    res.Extension,
		Size:         res.Size,
		MimeType:     res.MimeType,
		SHA256:       res.SHA256,
		CreatedAt:    att.CreatedAt.Unix(),
	}
}

func unixPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	secs := t.Unix()
	return &secs
}

func timePtr(secs *int64) *time.Time {
	if secs == nil {
		return nil
	}
	t := time.Unix(*secs, 0).UTC()
	return &t
}
