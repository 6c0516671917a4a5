// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

// Package metrics registers Inkwell's Prometheus collectors and the small
// Record helpers the rest of the code calls. Collectors are package globals
// registered through promauto on the default registry, which /metrics serves.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// TTL Cache Metrics
	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkwell_cache_operations_total",
			Help: "TTL cache operations by record kind, operation and result",
		},
		[]string{"kind", "operation", "result"},
	)

	CachePrunedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inkwell_cache_pruned_total",
			Help: "Expired cache records physically removed by the prune job",
		},
	)

	CachePruneRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkwell_cache_prune_runs_total",
			Help: "Prune job runs by outcome",
		},
		[]string{"outcome"},
	)

	// Upload Metrics
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkwell_uploads_total",
			Help: "Upload attempts by outcome",
		},
		[]string{"outcome"}, // "stored", "deduplicated", "rejected", "failed"
	)

	UploadBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inkwell_upload_bytes_total",
			Help: "Bytes received by successful uploads",
		},
	)

	// Article Metrics
	ArticleViews = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkwell_article_views_total",
			Help: "Recorded article views; unique=true counts first views per visitor and day",
		},
		[]string{"unique"},
	)

	ArticleViewRecordFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inkwell_article_view_record_failures_total",
			Help: "View recordings that failed or were shed by the circuit breaker",
		},
	)

	ArticleUnlockAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkwell_article_unlock_attempts_total",
			Help: "Article unlock attempts by outcome",
		},
		[]string{"outcome"}, // "granted", "wrong_password", "throttled", "invalid", "not_needed", "not_found"
	)

	// Auth Metrics
	AdminLogins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkwell_admin_logins_total",
			Help: "Admin login attempts by outcome",
		},
		[]string{"outcome"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Application Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit counts a rejected request.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordCacheOperation counts a TTL cache operation. result is "hit", "miss",
// "ok", "rejected" or "error".
func RecordCacheOperation(kind, operation, result string) {
	CacheOperations.WithLabelValues(kind, operation, result).Inc()
}

// RecordCachePrune records one prune run.
func RecordCachePrune(removed int64, err error) {
	if err != nil {
		CachePruneRuns.WithLabelValues("error").Inc()
		return
	}
	CachePruneRuns.WithLabelValues("ok").Inc()
	CachePrunedTotal.Add(float64(removed))
}

// RecordUpload records an upload outcome; size is only counted for uploads
// that produced a resource.
func RecordUpload(outcome string, size uint64) {
	UploadsTotal.WithLabelValues(outcome).Inc()
	if outcome == "stored" || outcome == "deduplicated" {
		UploadBytes.Add(float64(size))
	}
}

// RecordArticleView counts a page view.
func RecordArticleView(unique bool) {
	if unique {
		ArticleViews.WithLabelValues("true").Inc()
		return
	}
	ArticleViews.WithLabelValues("false").Inc()
}

// RecordArticleViewFailure counts a view that could not be recorded.
func RecordArticleViewFailure() {
	ArticleViewRecordFailures.Inc()
}

// RecordUnlockAttempt counts an article unlock attempt.
func RecordUnlockAttempt(outcome string) {
	ArticleUnlockAttempts.WithLabelValues(outcome).Inc()
}

// RecordAdminLogin counts an admin login attempt.
func RecordAdminLogin(success bool) {
	if success {
		AdminLogins.WithLabelValues("success").Inc()
		return
	}
	AdminLogins.WithLabelValues("failure").Inc()
}

// RecordCircuitBreakerTransition records a breaker state change. States are
// the breaker's String() names.
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

func breakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}

// SetAppInfo publishes build information.
func SetAppInfo(version, goVersion string) {
	AppInfo.WithLabelValues(version, goVersion).Set(1)
}
