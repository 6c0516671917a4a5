// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/tomtom215/inkwell/internal/apperr"
	"github.com/tomtom215/inkwell/internal/logging"
)

// maxShutdownTimeout bounds the timeout accepted from the API.
const maxShutdownTimeout = time.Hour

type systemInfo struct {
	Runtime       runtimeInfo  `json:"runtime"`
	Database      databaseInfo `json:"database"`
	CacheBackend  string       `json:"cache_backend"`
	UptimeSeconds int64        `json:"uptime_seconds"`
}

type runtimeInfo struct {
	GoVersion    string `json:"go_version"`
	OS           string `json:"os"`
	Arch         string `json:"arch"`
	NumCPU       int    `json:"num_cpu"`
	Goroutines   int    `json:"goroutines"`
	HeapAlloc    uint64 `json:"heap_alloc"`
	HeapSys      uint64 `json:"heap_sys"`
	TotalAlloc   uint64 `json:"total_alloc"`
	NumGC        uint32 `json:"num_gc"`
	PauseTotalNs uint64 `json:"pause_total_ns"`
}

type databaseInfo struct {
	// State is "OK" or the ping error.
	State           string `json:"state"`
	Path            string `json:"path"`
	OpenConnections int    `json:"open_connections"`
	InUse           int    `json:"in_use"`
	Idle            int    `json:"idle"`
}

// SystemInfo handles POST /api/system/info.
func (h *Handler) SystemInfo(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	state := "OK"
	if err := h.db.Ping(r.Context()); err != nil {
		state = err.Error()
	}
	stats := h.db.Stats()

	WriteSuccess(w, r, systemInfo{
		Runtime: runtimeInfo{
			GoVersion:    runtime.Version(),
			OS:           runtime.GOOS,
			Arch:         runtime.GOARCH,
			NumCPU:       runtime.NumCPU(),
			Goroutines:   runtime.NumGoroutine(),
			HeapAlloc:    mem.HeapAlloc,
			HeapSys:      mem.HeapSys,
			TotalAlloc:   mem.TotalAlloc,
			NumGC:        mem.NumGC,
			PauseTotalNs: mem.PauseTotalNs,
		},
		Database: databaseInfo{
			State:           state,
			Path:            h.db.Path(),
			OpenConnections: stats.OpenConnections,
			InUse:           stats.InUse,
			Idle:            stats.Idle,
		},
		CacheBackend:  h.cfg.Cache.Backend,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	})
}

type logLevelBody struct {
	Level string `json:"level" validate:"required,loglevel"`
}

// GetLogLevel handles POST /api/system/get_log_level.
func (h *Handler) GetLogLevel(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, logLevelBody{Level: logging.GetLevelString()})
}

// SetLogLevel handles POST /api/system/set_log_level.
func (h *Handler) SetLogLevel(w http.ResponseWriter, r *http.Request) {
	var req logLevelBody
	if !h.decodeValid(w, r, &req) {
		return
	}
	previous := logging.GetLevelString()
	logging.SetLevelString(req.Level)
	logging.Ctx(r.Context()).Info().Str("from", previous).Str("to", req.Level).Msg("Log level changed")
	WriteSuccess(w, r, nil)
}

// shutdownTimeoutBody is in whole seconds.
type shutdownTimeoutBody struct {
	Timeout uint64 `json:"timeout" validate:"gt=0"`
}

// GetShutdownTimeout handles POST /api/system/get_shutdown_timeout.
func (h *Handler) GetShutdownTimeout(w http.ResponseWriter, r *http.Request) {
	if h.shutdown == nil {
		WriteError(w, r, apperr.New(apperr.ServiceUnavailable, "HTTP server is not supervised"))
		return
	}
	WriteSuccess(w, r, shutdownTimeoutBody{Timeout: uint64(h.shutdown.ShutdownTimeout() / time.Second)})
}

// SetShutdownTimeout handles POST /api/system/set_shutdown_timeout. The new
// value applies to the next graceful shutdown.
func (h *Handler) SetShutdownTimeout(w http.ResponseWriter, r *http.Request) {
	if h.shutdown == nil {
		WriteError(w, r, apperr.New(apperr.ServiceUnavailable, "HTTP server is not supervised"))
		return
	}
	var req shutdownTimeoutBody
	if !h.decodeValid(w, r, &req) {
		return
	}
	timeout := time.Duration(req.Timeout) * time.Second
	if req.Timeout > uint64(maxShutdownTimeout/time.Second) {
		WriteError(w, r, apperr.Newf(apperr.BadRequest, "Timeout must not exceed %d seconds", int64(maxShutdownTimeout/time.Second)))
		return
	}
	h.shutdown.SetShutdownTimeout(timeout)
	logging.Ctx(r.Context()).Info().Dur("timeout", timeout).Msg("Shutdown timeout changed")
	WriteSuccess(w, r, nil)
}
