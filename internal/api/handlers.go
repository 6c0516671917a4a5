// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

// Package api is Inkwell's HTTP surface: a chi router, the JSON envelope,
// per-request identity middleware and the handlers over the services.
//
// Handlers are split by area:
//   - handlers_auth.go: admin login and logout
//   - handlers_article.go: articles, unlock and attachments
//   - handlers_resource.go: public resource upload and download
//   - handlers_system.go: runtime info, log level and shutdown timeout
//   - handlers_health.go: health checks and the RSS feed
package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/inkwell/internal/apperr"
	"github.com/tomtom215/inkwell/internal/article"
	"github.com/tomtom215/inkwell/internal/auth"
	"github.com/tomtom215/inkwell/internal/config"
	"github.com/tomtom215/inkwell/internal/database"
	"github.com/tomtom215/inkwell/internal/feed"
	"github.com/tomtom215/inkwell/internal/resource"
	"github.com/tomtom215/inkwell/internal/visitor"
)

// maxJSONBodyOverhead is added to the article content limit to size the
// JSON body limit.
const maxJSONBodyOverhead = 64 * 1024

// ShutdownController exposes the HTTP server's live shutdown timeout.
//
// Satisfied by *services.HTTPServerService.
type ShutdownController interface {
	ShutdownTimeout() time.Duration
	SetShutdownTimeout(d time.Duration)
}

// Dependencies are the services handlers call into.
type Dependencies struct {
	Config        *config.Config
	DB            *database.DB
	Articles      *article.Service
	Resources     *resource.Service
	Visitors      *visitor.Manager
	Authenticator *auth.Authenticator
	Feed          *feed.Builder

	// Shutdown may be nil until the HTTP server service exists.
	Shutdown ShutdownController
}

// Handler holds the dependencies of every endpoint.
type Handler struct {
	cfg       *config.Config
	db        *database.DB
	articles  *article.Service
	resources *resource.Service
	visitors  *visitor.Manager
	authn     *auth.Authenticator
	feed      *feed.Builder
	shutdown  ShutdownController
	startTime time.Time
	maxBody   int64
}

// NewHandler creates the handler set.
func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		cfg:       deps.Config,
		db:        deps.DB,
		articles:  deps.Articles,
		resources: deps.Resources,
		visitors:  deps.Visitors,
		authn:     deps.Authenticator,
		feed:      deps.Feed,
		shutdown:  deps.Shutdown,
		startTime: time.Now(),
		maxBody:   int64(deps.Config.Article.ContentMaxSize)*2 + maxJSONBodyOverhead,
	}
}

// SetShutdownController wires the HTTP server service once it is built,
// since the server itself needs the router first.
func (h *Handler) SetShutdownController(c ShutdownController) {
	h.shutdown = c
}

// decodeJSON reads a JSON request body into dst. An empty body leaves dst
// at its zero value.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, h.maxBody)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.TooLarge(tooLarge.Limit)
		}
		return apperr.Wrap(apperr.BadRequest, "Malformed JSON body", err)
	}
	return nil
}

// visitorOf returns the identity VisitorIdentity stored on the request.
func visitorOf(r *http.Request) visitor.Identity {
	id, _ := visitor.FromContext(r.Context())
	return id
}
