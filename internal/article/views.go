// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package article

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/inkwell/internal/logging"
	"github.com/tomtom215/inkwell/internal/metrics"
)

const viewBreakerName = "article-views"

// viewDeduper reports whether this is the visitor's first view of the
// article inside the dedup window. *visitor.Manager implements it.
type viewDeduper interface {
	RecordArticleView(ctx context.Context, visitorID, articleID string) (bool, error)
}

type statsIncrementer interface {
	IncrementArticleStats(ctx context.Context, articleID string, pv, uv uint64) error
}

// BreakerSettings tune the view recorder's circuit breaker.
type BreakerSettings struct {
	// FailureThreshold consecutive failures open the circuit.
	FailureThreshold uint32
	// Timeout is how long the circuit stays open before probing again.
	Timeout time.Duration
}

// DefaultBreakerSettings are used in production.
var DefaultBreakerSettings = BreakerSettings{FailureThreshold: 5, Timeout: 30 * time.Second}

// ViewRecorder counts article page views and unique visitors. Counting is
// best effort: failures are logged and never reach the reader, and a run of
// failures opens the circuit so a broken stats path is not hammered on every
// page view.
type ViewRecorder struct {
	dedup viewDeduper
	stats statsIncrementer
	cb    *gobreaker.CircuitBreaker[bool]
}

// NewViewRecorder returns a recorder writing through stats.
func NewViewRecorder(dedup viewDeduper, stats statsIncrementer, settings BreakerSettings) *ViewRecorder {
	metrics.CircuitBreakerState.WithLabelValues(viewBreakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[bool](gobreaker.Settings{
		Name:        viewBreakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("View recorder circuit breaker state change")
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String())
		},
	})

	return &ViewRecorder{dedup: dedup, stats: stats, cb: cb}
}

// Record counts one page view. It never fails the caller.
func (r *ViewRecorder) Record(ctx context.Context, visitorID, articleID string) {
	unique, err := r.cb.Execute(func() (bool, error) {
		return r.record(ctx, visitorID, articleID)
	})
	if err != nil {
		metrics.RecordArticleViewFailure()
		event := logging.Ctx(ctx).Error()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			event = logging.Ctx(ctx).Debug()
		}
		event.Err(err).Str("article_id", articleID).Msg("Failed to record article view")
		return
	}
	metrics.RecordArticleView(unique)
}

// State returns the breaker state.
func (r *ViewRecorder) State() gobreaker.State {
	return r.cb.State()
}

func (r *ViewRecorder) record(ctx context.Context, visitorID, articleID string) (bool, error) {
	first, err := r.dedup.RecordArticleView(ctx, visitorID, articleID)
	if err != nil {
		return false, fmt.Errorf("dedup view: %w", err)
	}
	var uv uint64
	if first {
		uv = 1
	}
	if err := r.stats.IncrementArticleStats(ctx, articleID, 1, uv); err != nil {
		return false, err
	}
	return first, nil
}
