// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/retailrec/internal/recommend"
	"github.com/tomtom215/retailrec/internal/validation"
)

// evaluateQuery holds the parsed query of GET /v1/evaluate.
type evaluateQuery struct {
	SampleSize int `validate:"gte=0,lte=10000"`
}

// Health reports that the process is up.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"}, time.Now())
}

// Ready reports whether a generation is serving.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	g, err := h.engine.Current()
	if err != nil {
		respondError(w, r, http.StatusServiceUnavailable, "NOT_READY", "no trained generation available", nil)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{
		"status":        "ready",
		"generation_id": g.ID,
	}, start)
}

// Status returns the engine lifecycle status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, h.engine.Status(), time.Now())
}

// Stats returns size and density figures of the serving generation.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	stats, err := h.engine.Stats()
	if err != nil {
		h.respondEngineError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, stats, start)
}

// Evaluate runs the leave-one-out evaluation on the serving generation.
// sample_size defaults to the configured value when omitted.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var q evaluateQuery
	if raw := r.URL.Query().Get("sample_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "sample_size must be an integer", nil)
			return
		}
		q.SampleSize = n
	}
	if verr := validation.ValidateStruct(&q); verr != nil {
		apiErr := verr.ToAPIError()
		respondAPIError(w, r, http.StatusBadRequest, &APIError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.evalTimeout)
	defer cancel()

	report, err := h.engine.Evaluate(ctx, q.SampleSize)
	if err != nil {
		h.respondEngineError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, report, start)
}

// Train queues an asynchronous training run.
func (h *Handler) Train(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.trainer == nil {
		respondError(w, r, http.StatusServiceUnavailable, "TRAINING_DISABLED", "training scheduler is not running", nil)
		return
	}
	if !h.trainer.Trigger() {
		respondError(w, r, http.StatusConflict, "TRAINING_IN_PROGRESS", "a training run is already queued", nil)
		return
	}
	respondJSON(w, r, http.StatusAccepted, map[string]string{"status": "queued"}, start)
}

func (h *Handler) respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recommend.ErrNotReady):
		respondError(w, r, http.StatusServiceUnavailable, "NOT_READY", "no trained generation available", nil)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, http.StatusGatewayTimeout, "TIMEOUT", "operation timed out", err)
	default:
		respondError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "operation failed", err)
	}
}
