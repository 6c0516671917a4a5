// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/inkwell/config.yaml",
	"/etc/inkwell/config.yml",
}

// ConfigPathEnvVar is the environment variable that overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with every default filled in. Defaults are
// applied first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Database: DatabaseConfig{
			Path:         "/data/inkwell.duckdb",
			MaxMemory:    "512MB",
			Threads:      0,
			MaxOpenConns: 0,
		},
		Cache: CacheConfig{
			Backend:    CacheBackendDatabase,
			BadgerPath: "",
		},
		Security: SecurityConfig{
			CookieSecure:      true,
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Admin: AdminConfig{
			SessionTTL: 24 * time.Hour,
		},
		Article: ArticleConfig{
			AccessTTL:           24 * time.Hour,
			FullTextSearchLimit: 100,
			TitleMaxSize:        255,
			ExcerptMaxSize:      255,
			ContentMaxSize:      1 << 20,
			UnlockAttempts:      5,
			UnlockWindow:        time.Minute,
		},
		Resource: ResourceConfig{
			UploadDir:         "/data/uploads",
			UploadFileMaxSize: 32 << 20,
			PublicDir:         "",
		},
		Pagination: PaginationConfig{
			MaxPage:      1000,
			AllowedSizes: []uint64{10, 20, 30, 40, 50},
			DefaultSize:  20,
			NavLen:       5,
		},
		Cron: CronConfig{
			Tasks: map[string]TaskConfig{
				TaskCleanExpiredCache: {Enabled: true, Interval: time.Minute},
			},
		},
		Feed: FeedConfig{
			Title:       "Inkwell",
			Link:        "http://localhost:8080",
			Description: "Latest articles",
		},
	}
}

// LoadWithKoanf loads configuration using koanf v2 with layered sources:
//  1. Defaults
//  2. Config file (optional YAML)
//  3. Environment variables
//
// Precedence is ENV > File > Defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file found, or "" if none exists.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths lists config paths that arrive from env vars as
// comma-separated strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"pagination.allowed_sizes",
}

// processSliceFields converts comma-separated string values to slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
// Unmapped variables are ignored so the process environment cannot leak
// into configuration by accident.
var envMappings = map[string]string{
	// Server
	"http_host":        "server.host",
	"http_port":        "server.port",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Database
	"duckdb_path":           "database.path",
	"duckdb_max_memory":     "database.max_memory",
	"duckdb_threads":        "database.threads",
	"duckdb_max_open_conns": "database.max_open_conns",

	// Cache
	"cache_backend":     "cache.backend",
	"cache_badger_path": "cache.badger_path",

	// Security
	"cookie_secure":       "security.cookie_secure",
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Admin
	"admin_password_hash": "admin.password_hash",
	"admin_totp_url":      "admin.totp_url",
	"admin_session_ttl":   "admin.session_ttl",
	"jwt_secret":          "jwt.secret",

	// Article
	"article_access_ttl":             "article.access_ttl",
	"article_full_text_search_limit": "article.full_text_search_limit",
	"article_title_max_size":         "article.title_max_size",
	"article_excerpt_max_size":       "article.excerpt_max_size",
	"article_content_max_size":       "article.content_max_size",
	"article_about_article_id":       "article.about_article_id",
	"article_unlock_attempts":        "article.unlock_attempts",
	"article_unlock_window":          "article.unlock_window",

	// Resource
	"upload_dir":           "resource.upload_dir",
	"upload_file_max_size": "resource.upload_file_max_size",
	"public_dir":           "resource.public_dir",

	// Pagination
	"pagination_max_page":      "pagination.max_page",
	"pagination_allowed_sizes": "pagination.allowed_sizes",
	"pagination_default_size":  "pagination.default_size",
	"pagination_nav_len":       "pagination.nav_len",

	// Cron
	"cron_clean_expired_cache_enabled":  "cron.tasks.clean_expired_cache.enabled",
	"cron_clean_expired_cache_interval": "cron.tasks.clean_expired_cache.interval",

	// Feed
	"feed_title":       "feed.title",
	"feed_link":        "feed.link",
	"feed_description": "feed.description",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - DUCKDB_PATH -> database.path
//   - ADMIN_TOTP_URL -> admin.totp_url
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
