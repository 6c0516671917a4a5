// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"

	_ "github.com/tomtom215/inkwell/docs" // Registers the OpenAPI document
	"github.com/tomtom215/inkwell/internal/api"
	"github.com/tomtom215/inkwell/internal/article"
	"github.com/tomtom215/inkwell/internal/auth"
	"github.com/tomtom215/inkwell/internal/cache"
	"github.com/tomtom215/inkwell/internal/config"
	"github.com/tomtom215/inkwell/internal/database"
	"github.com/tomtom215/inkwell/internal/feed"
	"github.com/tomtom215/inkwell/internal/logging"
	"github.com/tomtom215/inkwell/internal/metrics"
	"github.com/tomtom215/inkwell/internal/resource"
	"github.com/tomtom215/inkwell/internal/supervisor"
	"github.com/tomtom215/inkwell/internal/supervisor/services"
	"github.com/tomtom215/inkwell/internal/visitor"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})
	metrics.SetAppInfo(version, runtime.Version())

	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Str("cache_backend", cfg.Cache.Backend).
		Msg("Starting Inkwell with supervisor tree")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	clk := clock.New()

	storage, closeStorage, err := openCacheStorage(cfg, db)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to open cache storage")
		return
	}
	defer closeStorage()
	ttlCache := cache.New(storage, clk)

	tokens, err := auth.NewTokenManager(cfg.JWT.Secret, cfg.Admin.SessionTTL, clk)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create token manager")
		return
	}
	authenticator, err := auth.NewAuthenticator(&cfg.Admin, tokens, clk)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create admin authenticator")
		return
	}

	visitors := visitor.NewManager(ttlCache, cfg.Article.AccessTTL)
	resources := resource.NewService(db, &cfg.Resource, clk)
	articles := article.NewService(db, resources, visitors, cfg, clk)

	handler := api.NewHandler(api.Dependencies{
		Config:        cfg,
		DB:            db,
		Articles:      articles,
		Resources:     resources,
		Visitors:      visitors,
		Authenticator: authenticator,
		Feed:          feed.NewBuilder(articles, cfg.Feed),
	})
	middleware := api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(&cfg.Security))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(handler, middleware),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	// === BUILD SUPERVISOR TREE ===

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout + 5*time.Second,
	})

	if task, ok := cfg.Cron.Task(config.TaskCleanExpiredCache); ok && task.Enabled {
		tree.AddDataService(services.NewCachePruneService(ttlCache, task.Interval, services.DefaultPruneLimit, clk))
		logging.Info().Dur("interval", task.Interval).Msg("Cache prune service added")
	} else {
		logging.Info().Msg("Cache prune task disabled")
	}

	httpService := services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout)
	handler.SetShutdownController(httpService)
	tree.AddAPIService(httpService)
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// errCh yields exactly one value and is never closed.
	var treeErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
		treeErr = <-errCh
	case treeErr = <-errCh:
		stop()
	}
	if treeErr != nil && !errors.Is(treeErr, context.Canceled) {
		logging.Error().Err(treeErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	if err := db.Checkpoint(context.Background()); err != nil {
		logging.Warn().Err(err).Msg("Final database checkpoint failed")
	}
	logging.Info().Msg("Application stopped gracefully")
}

// openCacheStorage returns the configured cache backend and its cleanup.
// The database backend shares the DuckDB handle and needs no cleanup.
func openCacheStorage(cfg *config.Config, db *database.DB) (cache.Storage, func(), error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendBadger:
		bdb, err := cache.OpenBadger(cfg.Cache.BadgerPath)
		if err != nil {
			return nil, nil, err
		}
		logging.Info().Str("path", cfg.Cache.BadgerPath).Msg("Cache stored in Badger")
		return cache.NewBadgerStorage(bdb), func() {
			if err := bdb.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing Badger cache")
			}
		}, nil
	default:
		logging.Info().Msg("Cache stored in the database")
		return cache.NewDBStorage(db), func() {}, nil
	}
}
