// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/inkwell/internal/apperr"
	"github.com/tomtom215/inkwell/internal/article"
	"github.com/tomtom215/inkwell/internal/auth"
	"github.com/tomtom215/inkwell/internal/validation"
)

type articleIDRequest struct {
	ArticleID string `json:"article_id" validate:"required,max=64"`
}

type attachmentRequest struct {
	ArticleID    string `json:"article_id" validate:"required,max=64"`
	AttachmentID string `json:"attachment_id" validate:"required,max=64"`
}

type createArticleResponse struct {
	ID string `json:"id"`
}

// decodeValid decodes the body into dst and validates it.
func (h *Handler) decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := h.decodeJSON(w, r, dst); err != nil {
		WriteError(w, r, err)
		return false
	}
	if err := validation.Validate(dst); err != nil {
		WriteError(w, r, err)
		return false
	}
	return true
}

// CreateArticle handles POST /api/article/create.
func (h *Handler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var req article.CreateRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	details, err := h.articles.Create(r.Context(), req)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, createArticleResponse{ID: details.ArticleID})
}

// UpdateArticle handles POST /api/article/update.
func (h *Handler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	var req article.UpdateRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	if err := h.articles.Update(r.Context(), req); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, nil)
}

// RemoveArticle handles POST /api/article/remove.
func (h *Handler) RemoveArticle(w http.ResponseWriter, r *http.Request) {
	var req articleIDRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	if err := h.articles.Remove(r.Context(), req.ArticleID); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, nil)
}

// SearchArticles handles POST /api/article/search. Visitors only see
// published articles.
func (h *Handler) SearchArticles(w http.ResponseWriter, r *http.Request) {
	var req article.SearchRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	result, err := h.articles.Search(r.Context(), auth.FromContext(r.Context()), req)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, result)
}

// GetArticle handles POST /api/article/get.
func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	var req articleIDRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	details, err := h.articles.Get(r.Context(), auth.FromContext(r.Context()), visitorOf(r), req.ArticleID, false)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if details == nil {
		WriteError(w, r, apperr.New(apperr.NotFound, "Article not found"))
		return
	}
	WriteSuccess(w, r, details)
}

// GetAbout handles POST /api/article/about.
func (h *Handler) GetAbout(w http.ResponseWriter, r *http.Request) {
	details, err := h.articles.About(r.Context(), auth.FromContext(r.Context()), visitorOf(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if details == nil {
		WriteError(w, r, apperr.New(apperr.NotFound, "No about page is configured"))
		return
	}
	WriteSuccess(w, r, details)
}

// UnlockArticle handles POST /api/article/unlock.
func (h *Handler) UnlockArticle(w http.ResponseWriter, r *http.Request) {
	var req article.UnlockRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	if err := h.articles.Unlock(r.Context(), visitorOf(r), req); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, nil)
}

// UploadAttachment handles POST /api/article/upload_attachment. The body is
// the raw file; metadata and the article id come in x-* headers.
func (h *Handler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	articleID := r.Header.Get(headerArticleID)
	if articleID == "" {
		WriteError(w, r, apperr.Newf(apperr.BadRequest, "Missing %s header", headerArticleID))
		return
	}
	meta, err := uploadMetaFromHeaders(r.Header)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	att, err := h.articles.UploadAttachment(r.Context(), articleID, meta, r.Body)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, att)
}

// RemoveAttachment handles POST /api/article/remove_attachment.
func (h *Handler) RemoveAttachment(w http.ResponseWriter, r *http.Request) {
	var req attachmentRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	if err := h.articles.RemoveAttachment(r.Context(), req.ArticleID, req.AttachmentID); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, nil)
}

// DownloadAttachment handles GET /articles/{article_id}/attachments/{attachment_id}.
func (h *Handler) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	articleID := chi.URLParam(r, "article_id")
	attachmentID := chi.URLParam(r, "attachment_id")

	res, err := h.articles.DownloadAttachment(r.Context(), auth.FromContext(r.Context()), visitorOf(r), articleID, attachmentID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if res == nil {
		WriteError(w, r, apperr.New(apperr.HTTPNotFound, ""))
		return
	}
	h.serveResource(w, r, res)
}
