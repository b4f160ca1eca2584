// CineCheck - LLM Movie Recommendation Validation
// Copyright 2026 CineCheck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinecheck/cinecheck

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/cinecheck/cinecheck/internal/cache"
	"github.com/cinecheck/cinecheck/internal/logging"
	"github.com/cinecheck/cinecheck/internal/provider"
	"github.com/cinecheck/cinecheck/internal/validation"
)

// maxRequestBytes caps inbound request bodies.
const maxRequestBytes = 1 * 1024 * 1024

// maxBatchCandidates caps the number of candidates in one validation
// request. Each candidate costs up to three upstream calls.
const maxBatchCandidates = 50

// StatusReporter exposes a provider adapter's operational state.
type StatusReporter interface {
	Status() provider.Status
}

// Handler holds the HTTP handlers and their dependencies.
type Handler struct {
	engine    *validation.Engine
	cache     *cache.MovieCache
	providers []StatusReporter
	validate  *validator.Validate

	requireBothSources bool
}

// NewHandler creates the handler set.
func NewHandler(engine *validation.Engine, movieCache *cache.MovieCache, providers []StatusReporter, requireBothSources bool) *Handler {
	return &Handler{
		engine:             engine,
		cache:              movieCache,
		providers:          providers,
		validate:           validator.New(),
		requireBothSources: requireBothSources,
	}
}

// ValidateRequest is the payload for POST /api/v1/validate.
type ValidateRequest struct {
	Movies []validation.Candidate `json:"movies" validate:"required,min=1,max=50,dive"`

	// SessionID is an optional caller-supplied correlation ID, echoed in
	// logs alongside the batch ID.
	SessionID string `json:"session_id,omitempty" validate:"omitempty,max=128"`

	// RequireBothSources overrides the configured default when set.
	RequireBothSources *bool `json:"require_both_sources,omitempty"`
}

// ValidateResponse is the result of a batch validation.
type ValidateResponse struct {
	Valid   []validation.EnrichedMovie `json:"valid"`
	Dropped []validation.DroppedMovie  `json:"dropped"`
	Summary validation.Summary         `json:"summary"`
	BatchID string                     `json:"batch_id"`
}

// ValidateBatch handles POST /api/v1/validate: it cross-checks a list of
// movie candidates against the metadata providers and returns accepted
// (enriched) and dropped lists with a batch summary.
func (h *Handler) ValidateBatch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes+1))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "read_error", "Failed to read request body", err)
		return
	}
	if len(body) > maxRequestBytes {
		respondError(w, r, http.StatusRequestEntityTooLarge, "body_too_large", "Request body exceeds 1MB", nil)
		return
	}

	var req ValidateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_json", "Request body is not valid JSON", err)
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			respondError(w, r, http.StatusBadRequest, "invalid_request", verrs.Error(), nil)
			return
		}
		respondError(w, r, http.StatusBadRequest, "invalid_request", "Request validation failed", err)
		return
	}
	if len(req.Movies) > maxBatchCandidates {
		respondError(w, r, http.StatusBadRequest, "batch_too_large", "Too many candidates in one batch", nil)
		return
	}

	opts := validation.Options{RequireBothSources: h.requireBothSources}
	if req.RequireBothSources != nil {
		opts.RequireBothSources = *req.RequireBothSources
	}

	batchID := logging.GenerateBatchID()
	ctx := logging.ContextWithBatchID(r.Context(), batchID)

	if req.SessionID != "" {
		logging.Ctx(ctx).Info().
			Str("session_id", req.SessionID).
			Msg("Batch validation requested")
	}

	valid, dropped, summary := h.engine.ValidateList(ctx, req.Movies, opts)

	respondJSON(w, r, http.StatusOK, &ValidateResponse{
		Valid:   valid,
		Dropped: dropped,
		Summary: summary,
		BatchID: batchID,
	})
}

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, h.cache.Stats())
}

// CacheClearRequest is the payload for POST /api/v1/cache/clear. An empty
// source clears everything.
type CacheClearRequest struct {
	Source string `json:"source,omitempty" validate:"omitempty,oneof=tmdb omdb streaming"`
}

// CacheClear handles POST /api/v1/cache/clear.
func (h *Handler) CacheClear(w http.ResponseWriter, r *http.Request) {
	var req CacheClearRequest

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "read_error", "Failed to read request body", err)
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			respondError(w, r, http.StatusBadRequest, "invalid_json", "Request body is not valid JSON", err)
			return
		}
		if err := h.validate.Struct(&req); err != nil {
			respondError(w, r, http.StatusBadRequest, "invalid_request", "source must be one of tmdb, omdb, streaming", nil)
			return
		}
	}

	removed := h.cache.Clear(req.Source)
	respondJSON(w, r, http.StatusOK, map[string]any{
		"removed": removed,
		"source":  req.Source,
	})
}

// Status handles GET /api/v1/status: per-provider configuration and quota
// state.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	statuses := make([]provider.Status, 0, len(h.providers))
	for _, p := range h.providers {
		statuses = append(statuses, p.Status())
	}
	respondJSON(w, r, http.StatusOK, map[string]any{
		"providers": statuses,
		"cache":     h.cache.Stats(),
	})
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "healthy"})
}

// HealthLive handles GET /api/v1/health/live. Process liveness only.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "alive"})
}

// HealthReady handles GET /api/v1/health/ready. The service is ready when
// at least one metadata provider is configured.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	for _, p := range h.providers {
		s := p.Status()
		if s.Enabled && s.Configured {
			respondJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
			return
		}
	}
	respondError(w, r, http.StatusServiceUnavailable, "not_ready", "No metadata provider is configured", nil)
}
