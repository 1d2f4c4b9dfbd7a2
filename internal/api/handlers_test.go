// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/retailrec/internal/metrics"
	"github.com/tomtom215/retailrec/internal/recommend"
)

type fakeEngine struct {
	generation *recommend.Generation
	evalErr    error
	evalSize   int
}

func (f *fakeEngine) Status() recommend.Status {
	if f.generation == nil {
		return recommend.Status{State: "untrained"}
	}
	return recommend.Status{State: "trained", GenerationID: f.generation.ID, TrainingRuns: 1}
}

func (f *fakeEngine) Current() (*recommend.Generation, error) {
	if f.generation == nil {
		return nil, recommend.ErrNotReady
	}
	return f.generation, nil
}

func (f *fakeEngine) Stats() (recommend.Stats, error) {
	if f.generation == nil {
		return recommend.Stats{}, recommend.ErrNotReady
	}
	return recommend.Stats{NumCustomers: 6, NumProducts: 6}, nil
}

func (f *fakeEngine) Evaluate(_ context.Context, sampleSize int) (recommend.EvaluationReport, error) {
	f.evalSize = sampleSize
	if f.evalErr != nil {
		return recommend.EvaluationReport{}, f.evalErr
	}
	if f.generation == nil {
		return recommend.EvaluationReport{}, recommend.ErrNotReady
	}
	return recommend.EvaluationReport{GenerationID: f.generation.ID, K: 10, SampledCustomers: 3}, nil
}

type fakeTrigger struct {
	queued bool
}

func (f *fakeTrigger) Trigger() bool {
	if f.queued {
		return false
	}
	f.queued = true
	return true
}

func newTestRouter(engine Engine, trainer Trigger) http.Handler {
	return NewRouter(NewHandler(engine, trainer, time.Second), zerolog.Nop())
}

func doRequest(t *testing.T, h http.Handler, method, target string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	req := httptest.NewRequest(method, target, http.NoBody)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp APIResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
		}
	}
	return rec, resp
}

func TestRouter_Endpoints(t *testing.T) {
	trained := &fakeEngine{generation: &recommend.Generation{ID: "0b6c1f2e-5d0a-4e7b-9a51-1d2f0c3b4a5e"}}
	untrained := &fakeEngine{}

	tests := []struct {
		name       string
		engine     Engine
		method     string
		target     string
		wantStatus int
		wantCode   string
	}{
		{"health", untrained, http.MethodGet, "/healthz", http.StatusOK, ""},
		{"ready untrained", untrained, http.MethodGet, "/readyz", http.StatusServiceUnavailable, "NOT_READY"},
		{"ready trained", trained, http.MethodGet, "/readyz", http.StatusOK, ""},
		{"status", untrained, http.MethodGet, "/v1/status", http.StatusOK, ""},
		{"stats untrained", untrained, http.MethodGet, "/v1/stats", http.StatusServiceUnavailable, "NOT_READY"},
		{"stats trained", trained, http.MethodGet, "/v1/stats", http.StatusOK, ""},
		{"evaluate trained", trained, http.MethodGet, "/v1/evaluate?sample_size=20", http.StatusOK, ""},
		{"evaluate untrained", untrained, http.MethodGet, "/v1/evaluate", http.StatusServiceUnavailable, "NOT_READY"},
		{"evaluate not a number", trained, http.MethodGet, "/v1/evaluate?sample_size=abc", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"evaluate too large", trained, http.MethodGet, "/v1/evaluate?sample_size=20000", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"evaluate negative", trained, http.MethodGet, "/v1/evaluate?sample_size=-1", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown route", trained, http.MethodGet, "/v1/nope", http.StatusNotFound, "NOT_FOUND"},
		{"wrong method", trained, http.MethodGet, "/v1/train", http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := doRequest(t, newTestRouter(tt.engine, &fakeTrigger{}), tt.method, tt.target)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantCode == "" {
				if resp.Status != "success" {
					t.Errorf("envelope status = %q, want success", resp.Status)
				}
				return
			}
			if resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", resp.Error, tt.wantCode)
			}
		})
	}
}

func TestEvaluate_PassesSampleSize(t *testing.T) {
	engine := &fakeEngine{generation: &recommend.Generation{ID: "g1"}}
	router := newTestRouter(engine, nil)

	rec, resp := doRequest(t, router, http.MethodGet, "/v1/evaluate?sample_size=7")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if engine.evalSize != 7 {
		t.Errorf("sample size = %d, want 7", engine.evalSize)
	}
	data, ok := resp.Data.(map[string]any)
	if !ok || data["generation_id"] != "g1" {
		t.Errorf("data = %#v", resp.Data)
	}

	doRequest(t, router, http.MethodGet, "/v1/evaluate")
	if engine.evalSize != 0 {
		t.Errorf("omitted sample size = %d, want 0", engine.evalSize)
	}
}

func TestEvaluate_Timeout(t *testing.T) {
	engine := &fakeEngine{
		generation: &recommend.Generation{ID: "g1"},
		evalErr:    context.DeadlineExceeded,
	}
	rec, resp := doRequest(t, newTestRouter(engine, nil), http.MethodGet, "/v1/evaluate")
	if rec.Code != http.StatusGatewayTimeout || resp.Error == nil || resp.Error.Code != "TIMEOUT" {
		t.Errorf("status = %d, error = %+v", rec.Code, resp.Error)
	}

	engine.evalErr = errors.New("boom")
	rec, _ = doRequest(t, newTestRouter(engine, nil), http.MethodGet, "/v1/evaluate")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "boom") {
		t.Errorf("internal error leaked to client: %s", rec.Body.String())
	}
}

func TestTrain(t *testing.T) {
	trigger := &fakeTrigger{}
	router := newTestRouter(&fakeEngine{}, trigger)

	rec, _ := doRequest(t, router, http.MethodPost, "/v1/train")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("first trigger status = %d, want 202", rec.Code)
	}
	rec, resp := doRequest(t, router, http.MethodPost, "/v1/train")
	if rec.Code != http.StatusConflict || resp.Error.Code != "TRAINING_IN_PROGRESS" {
		t.Errorf("second trigger status = %d, error = %+v", rec.Code, resp.Error)
	}

	rec, _ = doRequest(t, newTestRouter(&fakeEngine{}, nil), http.MethodPost, "/v1/train")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("without trainer status = %d, want 503", rec.Code)
	}
}

func TestRequestID(t *testing.T) {
	router := newTestRouter(&fakeEngine{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/status", http.NoBody)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("X-Request-ID = %q, want req-42", got)
	}
	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Metadata.RequestID != "req-42" {
		t.Errorf("metadata request_id = %q", resp.Metadata.RequestID)
	}

	_, resp = doRequest(t, router, http.MethodGet, "/v1/status")
	if resp.Metadata.RequestID == "" {
		t.Error("generated request id missing")
	}
}

func TestAccessLog_RecordsRoutePattern(t *testing.T) {
	router := newTestRouter(&fakeEngine{}, nil)
	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/v1/status", "200")
	unmatched := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404")

	before := testutil.ToFloat64(counter)
	beforeUnmatched := testutil.ToFloat64(unmatched)

	doRequest(t, router, http.MethodGet, "/v1/status")
	doRequest(t, router, http.MethodGet, "/no/such/route")

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("status counter delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(unmatched) - beforeUnmatched; got != 1 {
		t.Errorf("unmatched counter delta = %v, want 1", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	rec := httptest.NewRecorder()
	newTestRouter(&fakeEngine{}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("metrics output missing runtime collectors")
	}
}
