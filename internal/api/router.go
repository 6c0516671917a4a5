// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/inkwell/internal/apperr"
	"github.com/tomtom215/inkwell/internal/middleware"
)

// NewRouter builds the HTTP routing tree.
//
// Middleware order matters: the request id comes first so every later log
// line carries it; the visitor and admin identities are resolved only on
// routes that read them, so health checks and metrics scrapes do not mint visitor
// records.
func NewRouter(h *Handler, mw *ChiMiddleware) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())
	r.Use(APISecurityHeaders)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Compression)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		WriteError(w, req, apperr.New(apperr.HTTPNotFound, ""))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		WriteError(w, req, apperr.New(apperr.HTTPMethodNotAllowed, ""))
	})

	r.Group(func(r chi.Router) {
		r.Use(mw.RateLimitCustom("health", RateLimitHealth))
		r.Get("/health/live", h.HealthLive)
		r.Get("/health/ready", h.HealthReady)
		r.Handle("/metrics", promhttp.Handler())
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
			httpSwagger.DeepLinking(true),
			httpSwagger.DocExpansion("list"),
			httpSwagger.DomID("swagger-ui"),
		))
	})

	identity := chi.Chain(
		VisitorIdentity(h.visitors, h.cfg.Security.CookieSecure),
		OptionalAdmin(h.authn.Tokens()),
	)

	r.Route("/api", func(r chi.Router) {
		r.Use(NoStore)
		r.Use(mw.RateLimit())

		r.Route("/auth", func(r chi.Router) {
			r.With(mw.RateLimitCustom("login", RateLimitLogin)).Post("/login", h.Login)
			r.Post("/logout", h.Logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(identity...)

			r.Route("/article", func(r chi.Router) {
				r.Post("/search", h.SearchArticles)
				r.Post("/get", h.GetArticle)
				r.Post("/about", h.GetAbout)
				r.Post("/unlock", h.UnlockArticle)

				r.Group(func(r chi.Router) {
					r.Use(RequireAdmin)
					r.Use(mw.RateLimitCustom("write", RateLimitWrite))
					r.Post("/create", h.CreateArticle)
					r.Post("/update", h.UpdateArticle)
					r.Post("/remove", h.RemoveArticle)
					r.Post("/remove_attachment", h.RemoveAttachment)
				})
				r.With(RequireAdmin, mw.RateLimitCustom("upload", RateLimitUpload)).
					Post("/upload_attachment", h.UploadAttachment)
			})

			r.Route("/resource", func(r chi.Router) {
				r.Use(RequireAdmin)
				r.With(mw.RateLimitCustom("upload", RateLimitUpload)).Post("/upload", h.UploadResource)
				r.With(mw.RateLimitCustom("write", RateLimitWrite)).Post("/remove", h.RemoveResource)
			})

			r.Route("/system", func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Post("/info", h.SystemInfo)
				r.Post("/get_log_level", h.GetLogLevel)
				r.Post("/set_log_level", h.SetLogLevel)
				r.Post("/get_shutdown_timeout", h.GetShutdownTimeout)
				r.Post("/set_shutdown_timeout", h.SetShutdownTimeout)
			})
		})
	})

	r.With(identity...).Get("/articles/{article_id}/attachments/{attachment_id}", h.DownloadAttachment)
	r.Get("/resources/{resource_id}", h.DownloadResource)
	r.Get("/rss", h.RSS)

	if dir := h.cfg.Resource.PublicDir; dir != "" {
		r.Handle("/*", http.FileServer(http.Dir(dir)))
	}

	return r
}
