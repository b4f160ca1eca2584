// CineCheck - LLM Movie Recommendation Validation
// Copyright 2026 CineCheck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinecheck/cinecheck

// Package main is the entry point for the CineCheck server.
//
// CineCheck validates LLM-proposed movie recommendations against
// authoritative metadata sources before they reach users. Every candidate
// title is cross-checked against TMDB and OMDb with fuzzy title matching
// and confidence scoring; accepted titles are enriched with posters,
// ratings, and streaming availability.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 layered loading (env > file > defaults)
//  2. Logging: zerolog, JSON or console format
//  3. HTTP client: shared retrying client for all outbound calls
//  4. Cache: in-memory TTL+LRU metadata cache
//  5. Providers: TMDB, OMDb, and Watchmode adapters
//  6. Validation engine and HTTP API
//  7. Supervisor: suture tree running the HTTP server and cache janitor
//
// # Configuration
//
// Key environment variables:
//   - TMDB_API_KEY: The Movie Database API key
//   - OMDB_API_KEY: Open Movie Database API key
//   - WATCHMODE_API_KEY: Watchmode API key (optional, TMDB fallback used
//     when absent)
//   - HTTP_PORT: listen port (default 8095)
//   - LOG_LEVEL, LOG_FORMAT: logging controls
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the server stops accepting
// connections and waits up to 10s for in-flight requests.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cinecheck/cinecheck/internal/api"
	"github.com/cinecheck/cinecheck/internal/apiclient"
	"github.com/cinecheck/cinecheck/internal/cache"
	"github.com/cinecheck/cinecheck/internal/config"
	"github.com/cinecheck/cinecheck/internal/logging"
	"github.com/cinecheck/cinecheck/internal/provider"
	"github.com/cinecheck/cinecheck/internal/supervisor"
	"github.com/cinecheck/cinecheck/internal/supervisor/services"
	"github.com/cinecheck/cinecheck/internal/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Bool("tmdb", cfg.TMDB.APIKey != "").
		Bool("omdb", cfg.OMDB.APIKey != "").
		Bool("watchmode", cfg.Watchmode.APIKey != "").
		Msg("Starting CineCheck")

	if cfg.TMDB.APIKey == "" && cfg.OMDB.APIKey == "" {
		logging.Warn().Msg("No metadata provider API keys configured; all validations will fail")
	}

	// Shared outbound HTTP client.
	client := apiclient.New(apiclient.Config{
		Timeout:     cfg.Client.Timeout,
		MaxRetries:  cfg.Client.MaxRetries,
		BackoffBase: cfg.Client.BackoffBase,
	})
	defer client.Close()

	// Metadata cache.
	movieCache := cache.New(cache.Config{
		TTL:     cfg.Cache.TTL,
		MaxSize: cfg.Cache.MaxSize,
		Enabled: cfg.Cache.Enabled,
	})

	// Provider adapters.
	tmdb := provider.NewTMDBClient(provider.TMDBConfig{
		APIKey:            cfg.TMDB.APIKey,
		BaseURL:           cfg.TMDB.BaseURL,
		ImageBaseURL:      cfg.TMDB.ImageBaseURL,
		Enabled:           cfg.TMDB.Enabled,
		RequestsPerSecond: cfg.TMDB.RequestsPerSecond,
	}, client, movieCache)

	omdb := provider.NewOMDBClient(provider.OMDBConfig{
		APIKey:            cfg.OMDB.APIKey,
		BaseURL:           cfg.OMDB.BaseURL,
		Enabled:           cfg.OMDB.Enabled,
		RequestsPerSecond: cfg.OMDB.RequestsPerSecond,
		DailyLimit:        cfg.OMDB.DailyLimit,
	}, client, movieCache)

	streaming := provider.NewStreamingClient(provider.WatchmodeConfig{
		APIKey:            cfg.Watchmode.APIKey,
		BaseURL:           cfg.Watchmode.BaseURL,
		Enabled:           cfg.Watchmode.Enabled,
		Region:            cfg.Watchmode.Region,
		MonthlyLimit:      cfg.Watchmode.MonthlyLimit,
		RequestsPerSecond: cfg.Watchmode.RequestsPerSecond,
	}, client, movieCache, tmdb)

	// Validation engine and HTTP surface.
	engine := validation.NewEngine(tmdb, omdb, streaming)

	handler := api.NewHandler(engine, movieCache,
		[]api.StatusReporter{tmdb, omdb, streaming},
		cfg.Validation.RequireBothSources)

	middleware := api.NewMiddleware(&api.MiddlewareConfig{
		CORSAllowedOrigins: cfg.Server.CORSOrigins,
		RateLimitRequests:  cfg.Server.RateLimitReqs,
		RateLimitWindow:    cfg.Server.RateLimitWindow,
		RateLimitDisabled:  cfg.Server.RateLimitDisabled,
	})

	router := api.NewRouter(handler, middleware)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	// Supervision tree.
	treeConfig := supervisor.DefaultTreeConfig()
	tree := supervisor.NewTree(logging.NewSlogLogger(), treeConfig)
	tree.Add(services.NewHTTPService(server, treeConfig.ShutdownTimeout))
	tree.Add(services.NewJanitorService(movieCache, cfg.Cache.CleanupInterval))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor terminated with error")
		os.Exit(1)
	}

	logging.Info().Msg("Shutdown complete")
}
