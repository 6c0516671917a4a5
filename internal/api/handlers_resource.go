// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/inkwell/internal/apperr"
	"github.com/tomtom215/inkwell/internal/models"
	"github.com/tomtom215/inkwell/internal/resource"
)

// Upload metadata headers. The file name is percent-encoded.
const (
	headerArticleID    = "X-Article-Id"
	headerFileName     = "X-File-Name"
	headerFileSize     = "X-File-Size"
	headerFileMimeType = "X-File-Mime-Type"
	headerFileSHA256   = "X-File-Sha256"
)

// resourceView is the wire form of a stored resource.
type resourceView struct {
	ResourceID string `json:"resource_id"`
	Name       string `json:"name"`
	Extension  string `json:"extension"`
	Size       uint64 `json:"size"`
	MimeType   string `json:"mime_type"`
	SHA256     string `json:"sha256"`
	CreatedAt  int64  `json:"created_at"`
	URL        string `json:"url"`
}

func newResourceView(res *models.Resource) resourceView {
	return resourceView{
		ResourceID: res.ID,
		Name:       res.Name,
		Extension:  res.Extension,
		Size:       res.Size,
		MimeType:   res.MimeType,
		SHA256:     res.SHA256,
		CreatedAt:  res.CreatedAt.Unix(),
		URL:        "/resources/" + url.PathEscape(res.ID),
	}
}

type resourceIDRequest struct {
	ResourceID string `json:"resource_id" validate:"required,max=64"`
}

// uploadMetaFromHeaders reads the declared upload metadata. Field
// validation happens in the upload pipeline.
func uploadMetaFromHeaders(h http.Header) (resource.UploadMeta, error) {
	var meta resource.UploadMeta

	rawName := h.Get(headerFileName)
	if rawName == "" {
		return meta, apperr.Newf(apperr.BadRequest, "Missing %s header", headerFileName)
	}
	name, err := url.PathUnescape(rawName)
	if err != nil {
		return meta, apperr.Wrap(apperr.BadRequest, "Malformed "+headerFileName+" header", err)
	}

	rawSize := h.Get(headerFileSize)
	if rawSize == "" {
		return meta, apperr.Newf(apperr.BadRequest, "Missing %s header", headerFileSize)
	}
	size, err := strconv.ParseUint(rawSize, 10, 64)
	if err != nil {
		return meta, apperr.Wrap(apperr.BadRequest, "Malformed "+headerFileSize+" header", err)
	}

	meta.Name = name
	meta.Size = size
	meta.MimeType = h.Get(headerFileMimeType)
	meta.SHA256 = h.Get(headerFileSHA256)
	return meta, nil
}

// UploadResource handles POST /api/resource/upload.
func (h *Handler) UploadResource(w http.ResponseWriter, r *http.Request) {
	meta, err := uploadMetaFromHeaders(r.Header)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	res, err := h.resources.Upload(r.Context(), meta, r.Body)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, newResourceView(res))
}

// RemoveResource handles POST /api/resource/remove.
func (h *Handler) RemoveResource(w http.ResponseWriter, r *http.Request) {
	var req resourceIDRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	if err := h.resources.Remove(r.Context(), req.ResourceID); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, r, nil)
}

// DownloadResource handles GET /resources/{resource_id}. Private resources
// (attachments) are reported as missing.
func (h *Handler) DownloadResource(w http.ResponseWriter, r *http.Request) {
	res, err := h.resources.Find(r.Context(), chi.URLParam(r, "resource_id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if res == nil || !res.IsPublic {
		WriteError(w, r, apperr.New(apperr.NotFound, "Resource not found"))
		return
	}
	h.serveResource(w, r, res)
}

// serveResource streams the stored file with range and conditional
// request support.
func (h *Handler) serveResource(w http.ResponseWriter, r *http.Request, res *models.Resource) {
	f, err := h.resources.Open(res)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	defer func() { _ = f.Close() }()

	header := w.Header()
	header.Set("Content-Type", res.MimeType)
	header.Set("Content-Disposition", "filename="+url.PathEscape(res.Name))
	header.Set("ETag", `"`+res.SHA256+`"`)
	header.Set("Cache-Control", "private, max-age=3600")
	http.ServeContent(w, r, res.Name, res.CreatedAt, f)
}
