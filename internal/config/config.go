// CineCheck - LLM Movie Recommendation Validation
// Copyright 2026 CineCheck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinecheck/cinecheck

// Package config defines the CineCheck configuration and its layered
// loader. Precedence: environment variables > YAML config file > built-in
// defaults.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Client     ClientConfig     `koanf:"client"`
	Cache      CacheConfig      `koanf:"cache"`
	TMDB       TMDBConfig       `koanf:"tmdb"`
	OMDB       OMDBConfig       `koanf:"omdb"`
	Watchmode  WatchmodeConfig  `koanf:"watchmode"`
	Validation ValidationConfig `koanf:"validation"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	CORSOrigins []string `koanf:"cors_origins"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// ClientConfig holds the outbound HTTP client settings shared by all
// provider adapters.
type ClientConfig struct {
	Timeout     time.Duration `koanf:"timeout"`
	MaxRetries  int           `koanf:"max_retries"`
	BackoffBase time.Duration `koanf:"backoff_base"`
}

// CacheConfig holds the metadata cache settings.
type CacheConfig struct {
	TTL     time.Duration `koanf:"ttl"`
	MaxSize int           `koanf:"max_size"`
	Enabled bool          `koanf:"enabled"`

	// CleanupInterval is how often the janitor sweeps expired entries.
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

// TMDBConfig holds the TMDB catalog provider settings.
type TMDBConfig struct {
	APIKey            string  `koanf:"api_key"`
	BaseURL           string  `koanf:"base_url"`
	ImageBaseURL      string  `koanf:"image_base_url"`
	Enabled           bool    `koanf:"enabled"`
	RequestsPerSecond float64 `koanf:"requests_per_second"`
}

// OMDBConfig holds the OMDb facts provider settings.
type OMDBConfig struct {
	APIKey            string  `koanf:"api_key"`
	BaseURL           string  `koanf:"base_url"`
	Enabled           bool    `koanf:"enabled"`
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	DailyLimit        int     `koanf:"daily_limit"`
}

// WatchmodeConfig holds the Watchmode streaming provider settings.
type WatchmodeConfig struct {
	APIKey            string  `koanf:"api_key"`
	BaseURL           string  `koanf:"base_url"`
	Enabled           bool    `koanf:"enabled"`
	Region            string  `koanf:"region"`
	MonthlyLimit      int     `koanf:"monthly_limit"`
	RequestsPerSecond float64 `koanf:"requests_per_second"`
}

// ValidationConfig holds validation engine settings.
type ValidationConfig struct {
	// RequireBothSources accepts candidates only when both metadata
	// sources confirm them.
	RequireBothSources bool `koanf:"require_both_sources"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for values that would misbehave at
// runtime.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Client.Timeout <= 0 {
		return fmt.Errorf("client.timeout must be positive, got %s", c.Client.Timeout)
	}
	if c.Client.MaxRetries < 0 {
		return fmt.Errorf("client.max_retries must not be negative, got %d", c.Client.MaxRetries)
	}
	if c.Client.BackoffBase <= 0 {
		return fmt.Errorf("client.backoff_base must be positive, got %s", c.Client.BackoffBase)
	}
	if c.Cache.MaxSize < 1 {
		return fmt.Errorf("cache.max_size must be at least 1, got %d", c.Cache.MaxSize)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL)
	}

	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("logging.level must be one of trace/debug/info/warn/error/fatal, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}

	// Missing provider API keys are not a startup error: adapters degrade
	// to auth-error lookups so operators can run single-source setups.

	return nil
}
