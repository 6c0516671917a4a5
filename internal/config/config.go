// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

// Package config loads Inkwell's layered configuration.
//
// Sources, lowest to highest priority:
//  1. Built-in defaults (defaultConfig)
//  2. An optional YAML file (CONFIG_PATH, config.yaml, /etc/inkwell/config.yaml)
//  3. Environment variables, mapped explicitly in envTransformFunc
//
// The result is validated before it is returned, so a *Config obtained from
// Load is always usable as-is.
package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Database   DatabaseConfig   `koanf:"database"`
	Cache      CacheConfig      `koanf:"cache"`
	Security   SecurityConfig   `koanf:"security"`
	Admin      AdminConfig      `koanf:"admin"`
	JWT        JWTConfig        `koanf:"jwt"`
	Article    ArticleConfig    `koanf:"article"`
	Resource   ResourceConfig   `koanf:"resource"`
	Pagination PaginationConfig `koanf:"pagination"`
	Cron       CronConfig       `koanf:"cron"`
	Feed       FeedConfig       `koanf:"feed"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// Timeout bounds request reads and response writes.
	Timeout time.Duration `koanf:"timeout"`

	// ShutdownTimeout is the initial graceful shutdown budget. It can be
	// changed at runtime through the system API.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig holds logger settings, see internal/logging.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the DuckDB file, or ":memory:" for an ephemeral database.
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()
	// MaxOpenConns caps the connection pool. 0 = runtime.NumCPU().
	MaxOpenConns int `koanf:"max_open_conns"`
}

// Cache backends.
const (
	CacheBackendDatabase = "database"
	CacheBackendBadger   = "badger"
)

// CacheConfig selects where TTL cache records live.
type CacheConfig struct {
	Backend    string `koanf:"backend"`
	BadgerPath string `koanf:"badger_path"` // empty with the badger backend = in-memory
}

// SecurityConfig holds cookie, CORS and rate limiting settings.
type SecurityConfig struct {
	CookieSecure      bool          `koanf:"cookie_secure"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// AdminConfig holds the single administrator's credentials.
type AdminConfig struct {
	// PasswordHash is a bcrypt hash of the admin password.
	PasswordHash string `koanf:"password_hash"`

	// TOTPURL is an otpauth:// key URL as produced by authenticator setup.
	TOTPURL string `koanf:"totp_url"`

	SessionTTL time.Duration `koanf:"session_ttl"`
}

// JWTConfig holds the admin token signing key.
type JWTConfig struct {
	Secret string `koanf:"secret"`
}

// ArticleConfig holds article limits and unlock throttling.
type ArticleConfig struct {
	// AccessTTL is how long an unlock permit stays valid.
	AccessTTL           time.Duration `koanf:"access_ttl"`
	FullTextSearchLimit int           `koanf:"full_text_search_limit"`
	TitleMaxSize        int           `koanf:"title_max_size"`
	ExcerptMaxSize      int           `koanf:"excerpt_max_size"`
	ContentMaxSize      int           `koanf:"content_max_size"`
	AboutArticleID      string        `koanf:"about_article_id"`
	UnlockAttempts      int           `koanf:"unlock_attempts"`
	UnlockWindow        time.Duration `koanf:"unlock_window"`
}

// ResourceConfig holds upload storage settings.
type ResourceConfig struct {
	UploadDir         string `koanf:"upload_dir"`
	UploadFileMaxSize int64  `koanf:"upload_file_max_size"`

	// PublicDir is served as static files under /. Empty disables it.
	PublicDir string `koanf:"public_dir"`
}

// PaginationConfig holds paging limits and navigation shape.
type PaginationConfig struct {
	MaxPage      uint64   `koanf:"max_page"`
	AllowedSizes []uint64 `koanf:"allowed_sizes"`
	DefaultSize  uint64   `koanf:"default_size"`
	NavLen       uint64   `koanf:"nav_len"`
}

// Known background task names.
const (
	TaskCleanExpiredCache = "clean_expired_cache"
)

// CronConfig holds background task settings keyed by task name.
type CronConfig struct {
	Tasks map[string]TaskConfig `koanf:"tasks"`
}

// TaskConfig configures one periodic task.
type TaskConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Interval time.Duration `koanf:"interval"`
}

// Task returns the named task's settings and whether it is configured.
func (c CronConfig) Task(name string) (TaskConfig, bool) {
	task, ok := c.Tasks[name]
	return task, ok
}

// FeedConfig holds RSS channel metadata.
type FeedConfig struct {
	Title       string `koanf:"title"`
	Link        string `koanf:"link"`
	Description string `koanf:"description"`
}

// Load reads configuration using the layered koanf loader.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
