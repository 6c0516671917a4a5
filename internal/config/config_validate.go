// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

package config

import (
	"fmt"
	"strings"
	"time"
)

// minJWTSecretLength is the shortest accepted HS256 signing key.
const minJWTSecretLength = 32

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateAdmin(); err != nil {
		return err
	}
	if err := c.validateArticle(); err != nil {
		return err
	}
	if err := c.validateResource(); err != nil {
		return err
	}
	if err := c.validatePagination(); err != nil {
		return err
	}
	return c.validateCron()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %v", c.Server.ShutdownTimeout)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if err := c.validateLogLevel(); err != nil {
		return err
	}
	return c.validateLogFormat()
}

func (c *Config) validateLogLevel() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
}

func (c *Config) validateLogFormat() error {
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}

func (c *Config) validateDatabase() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be >= 0, got %d", c.Database.Threads)
	}
	if c.Database.MaxOpenConns < 0 {
		return fmt.Errorf("DUCKDB_MAX_OPEN_CONNS must be >= 0, got %d", c.Database.MaxOpenConns)
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case CacheBackendDatabase, CacheBackendBadger:
		return nil
	default:
		return fmt.Errorf("CACHE_BACKEND must be %q or %q, got %q",
			CacheBackendDatabase, CacheBackendBadger, c.Cache.Backend)
	}
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow < time.Second {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s, got %v", c.Security.RateLimitWindow)
	}
	return nil
}

// HasWildcardCORS reports whether any configured origin is "*".
func (c *Config) HasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

func (c *Config) validateAdmin() error {
	if !strings.HasPrefix(c.Admin.PasswordHash, "$2") {
		return fmt.Errorf("ADMIN_PASSWORD_HASH must be a bcrypt hash")
	}
	if !strings.HasPrefix(c.Admin.TOTPURL, "otpauth://totp/") {
		return fmt.Errorf("ADMIN_TOTP_URL must be an otpauth://totp/ URL")
	}
	if c.Admin.SessionTTL <= 0 {
		return fmt.Errorf("ADMIN_SESSION_TTL must be positive, got %v", c.Admin.SessionTTL)
	}
	if len(c.JWT.Secret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	return nil
}

func (c *Config) validateArticle() error {
	a := c.Article
	if a.AccessTTL <= 0 {
		return fmt.Errorf("ARTICLE_ACCESS_TTL must be positive, got %v", a.AccessTTL)
	}
	if a.FullTextSearchLimit < 1 {
		return fmt.Errorf("ARTICLE_FULL_TEXT_SEARCH_LIMIT must be at least 1, got %d", a.FullTextSearchLimit)
	}
	if a.TitleMaxSize < 1 || a.ExcerptMaxSize < 1 || a.ContentMaxSize < 1 {
		return fmt.Errorf("article size limits must be positive")
	}
	if a.UnlockAttempts < 1 {
		return fmt.Errorf("ARTICLE_UNLOCK_ATTEMPTS must be at least 1, got %d", a.UnlockAttempts)
	}
	if a.UnlockWindow <= 0 {
		return fmt.Errorf("ARTICLE_UNLOCK_WINDOW must be positive, got %v", a.UnlockWindow)
	}
	return nil
}

func (c *Config) validateResource() error {
	if strings.TrimSpace(c.Resource.UploadDir) == "" {
		return fmt.Errorf("UPLOAD_DIR is required")
	}
	if c.Resource.UploadFileMaxSize < 1 {
		return fmt.Errorf("UPLOAD_FILE_MAX_SIZE must be positive, got %d", c.Resource.UploadFileMaxSize)
	}
	return nil
}

func (c *Config) validatePagination() error {
	p := c.Pagination
	if len(p.AllowedSizes) == 0 {
		return fmt.Errorf("PAGINATION_ALLOWED_SIZES must not be empty")
	}
	found := false
	for _, size := range p.AllowedSizes {
		if size == 0 {
			return fmt.Errorf("PAGINATION_ALLOWED_SIZES must not contain 0")
		}
		if size == p.DefaultSize {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("PAGINATION_DEFAULT_SIZE %d is not one of the allowed sizes", p.DefaultSize)
	}
	if p.MaxPage < 1 {
		return fmt.Errorf("PAGINATION_MAX_PAGE must be at least 1")
	}
	return nil
}

func (c *Config) validateCron() error {
	for name, task := range c.Cron.Tasks {
		if task.Enabled && task.Interval <= 0 {
			return fmt.Errorf("cron task %q needs a positive interval, got %v", name, task.Interval)
		}
	}
	return nil
}
