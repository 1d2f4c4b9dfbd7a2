// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/retailrec/internal/logging"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Status   string    `json:"status"`
	Data     any       `json:"data,omitempty"`
	Error    *APIError `json:"error,omitempty"`
	Metadata Metadata  `json:"metadata"`
}

// APIError describes a failed request.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Metadata carries per-response bookkeeping.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}

// respondJSON writes a success envelope.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, data any, start time.Time) {
	writeEnvelope(w, r, status, &APIResponse{
		Status: "success",
		Data:   data,
		Metadata: Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// respondError writes an error envelope. err is logged, never returned to
// the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Str("code", code).Int("status", status).Msg(message)
	}
	writeEnvelope(w, r, status, &APIResponse{
		Status:   "error",
		Error:    &APIError{Code: code, Message: message},
		Metadata: Metadata{Timestamp: time.Now().UTC()},
	})
}

// respondAPIError writes a prepared error body.
func respondAPIError(w http.ResponseWriter, r *http.Request, status int, apiErr *APIError) {
	writeEnvelope(w, r, status, &APIResponse{
		Status:   "error",
		Error:    apiErr,
		Metadata: Metadata{Timestamp: time.Now().UTC()},
	})
}

func writeEnvelope(w http.ResponseWriter, r *http.Request, status int, resp *APIResponse) {
	resp.Metadata.RequestID = logging.RequestIDFromContext(r.Context())

	data, err := json.Marshal(resp)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to encode JSON response")
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	//nolint:errcheck // HTTP response write errors are not recoverable
	w.Write(data)
}
