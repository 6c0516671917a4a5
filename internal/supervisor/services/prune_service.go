// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package services

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/tomtom215/inkwell/internal/logging"
	"github.com/tomtom215/inkwell/internal/metrics"
)

// DefaultPruneLimit caps the records removed per run.
const DefaultPruneLimit = 100

// Pruner physically removes expired cache records.
//
// Satisfied by *cache.Cache.
type Pruner interface {
	RemoveExpired(ctx context.Context, limit int) (int64, error)
}

// CachePruneService removes a bounded batch of expired cache records on
// every tick. A failed run is logged and counted; the loop keeps going.
type CachePruneService struct {
	pruner   Pruner
	interval time.Duration
	limit    int
	clock    clock.Clock
	name     string
	logger   zerolog.Logger
}

// NewCachePruneService creates the prune job. A nil clock uses wall time.
func NewCachePruneService(pruner Pruner, interval time.Duration, limit int, clk clock.Clock) *CachePruneService {
	if interval <= 0 {
		interval = time.Minute
	}
	if limit <= 0 {
		limit = DefaultPruneLimit
	}
	if clk == nil {
		clk = clock.New()
	}
	return &CachePruneService{
		pruner:   pruner,
		interval: interval,
		limit:    limit,
		clock:    clk,
		name:     "cache-prune",
		logger:   logging.WithComponent("cache-prune"),
	}
}

// Serve implements suture.Service.
func (s *CachePruneService) Serve(ctx context.Context) error {
	ticker := s.clock.Ticker(s.interval)
	defer ticker.Stop()

	s.logger.Debug().Dur("interval", s.interval).Int("limit", s.limit).Msg("cache prune job started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce removes one batch of expired records.
func (s *CachePruneService) RunOnce(ctx context.Context) int64 {
	removed, err := s.pruner.RemoveExpired(ctx, s.limit)
	metrics.RecordCachePrune(removed, err)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error().Err(err).Msg("failed to remove expired cache records")
		}
		return 0
	}
	if removed > 0 {
		s.logger.Debug().Int64("removed", removed).Msg("removed expired cache records")
	}
	return removed
}

// String implements fmt.Stringer for suture's logs.
func (s *CachePruneService) String() string {
	return s.name
}
