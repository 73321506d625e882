// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/olegiv/kanri-go/internal/adminapi"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Session store backends.
const (
	SessionStoreMemory = "memory"
	SessionStoreSQLite = "sqlite"
	SessionStoreRedis  = "redis"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	APIBaseURL    string        `env:"KANRI_API_BASE_URL,required"`
	AuthMode      string        `env:"KANRI_AUTH_MODE" envDefault:"token"`
	APITimeout    time.Duration `env:"KANRI_API_TIMEOUT" envDefault:"0s"` // 0 disables the per-request timeout
	SessionSecret string        `env:"KANRI_SESSION_SECRET,required"`
	ServerHost    string        `env:"KANRI_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int           `env:"KANRI_SERVER_PORT" envDefault:"8080"`
	Env           string        `env:"KANRI_ENV" envDefault:"development"`
	LogLevel      string        `env:"KANRI_LOG_LEVEL" envDefault:"info"`

	// Session storage
	SessionStore string `env:"KANRI_SESSION_STORE" envDefault:"memory"`
	DBPath       string `env:"KANRI_DB_PATH" envDefault:"./data/kanri.db"`
	RedisURL     string `env:"KANRI_REDIS_URL"`
	RedisPrefix  string `env:"KANRI_REDIS_PREFIX" envDefault:"kanri:session:"`

	// Form choices offered by the console
	UserRoles    []string `env:"KANRI_USER_ROLES" envSeparator:"," envDefault:"ADMIN,EDITOR,VIEWER"`
	PostStatuses []string `env:"KANRI_POST_STATUSES" envSeparator:"," envDefault:"DRAFT,PUBLISHED,ARCHIVED"`

	// Login protection
	LoginRatePerMinute int           `env:"KANRI_LOGIN_RATE_PER_MINUTE" envDefault:"10"`
	LoginMaxFailures   int           `env:"KANRI_LOGIN_MAX_FAILURES" envDefault:"5"`
	LoginLockout       time.Duration `env:"KANRI_LOGIN_LOCKOUT" envDefault:"15m"`

	// Remote endpoint paths
	Endpoints adminapi.Endpoints `envPrefix:"KANRI_ENDPOINT_"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// APIAuthMode returns the parsed auth mode. Load has already validated it.
func (c Config) APIAuthMode() adminapi.AuthMode {
	mode, err := adminapi.ParseAuthMode(c.AuthMode)
	if err != nil {
		return adminapi.AuthModeToken
	}
	return mode
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if _, err := adminapi.ParseAuthMode(cfg.AuthMode); err != nil {
		return nil, fmt.Errorf("KANRI_AUTH_MODE: %w", err)
	}

	switch cfg.SessionStore {
	case SessionStoreMemory, SessionStoreSQLite:
	case SessionStoreRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("KANRI_REDIS_URL is required when KANRI_SESSION_STORE=redis")
		}
	default:
		return nil, fmt.Errorf("KANRI_SESSION_STORE must be memory, sqlite or redis, got %q", cfg.SessionStore)
	}

	cfg.APIBaseURL = strings.TrimSuffix(strings.TrimSpace(cfg.APIBaseURL), "/")
	cfg.UserRoles = cleanList(cfg.UserRoles)
	cfg.PostStatuses = cleanList(cfg.PostStatuses)
	if len(cfg.UserRoles) == 0 {
		return nil, fmt.Errorf("KANRI_USER_ROLES must name at least one role")
	}
	if len(cfg.PostStatuses) == 0 {
		return nil, fmt.Errorf("KANRI_POST_STATUSES must name at least one status")
	}

	// Validate session secret length
	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("KANRI_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	// Reject known weak/default secrets
	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("KANRI_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("KANRI_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// cleanList trims entries and drops empty ones.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
