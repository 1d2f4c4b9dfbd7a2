// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tomtom215/retailrec/internal/recommend"
)

// Engine is the part of *recommend.Engine the ops surface reads.
type Engine interface {
	Status() recommend.Status
	Current() (*recommend.Generation, error)
	Stats() (recommend.Stats, error)
	Evaluate(ctx context.Context, sampleSize int) (recommend.EvaluationReport, error)
}

// Trigger requests an out-of-band training run. It returns false when a
// run is already queued.
type Trigger interface {
	Trigger() bool
}

// Handler serves the ops endpoints.
type Handler struct {
	engine      Engine
	trainer     Trigger
	evalTimeout time.Duration
}

// NewHandler creates a Handler. trainer may be nil, in which case
// POST /v1/train answers 503.
func NewHandler(engine Engine, trainer Trigger, evalTimeout time.Duration) *Handler {
	if evalTimeout <= 0 {
		evalTimeout = 2 * time.Minute
	}
	return &Handler{engine: engine, trainer: trainer, evalTimeout: evalTimeout}
}

// NewRouter builds the chi router for the ops surface.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewRouter(h *Handler, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging(logger))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(AccessLog)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})

	r.Get("/healthz", h.Health)
	r.Get("/readyz", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", h.Status)
		r.Get("/stats", h.Stats)
		r.Get("/evaluate", h.Evaluate)
		r.Post("/train", h.Train)
	})

	return r
}

// routePattern returns the matched chi pattern so metric labels stay
// bounded.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
