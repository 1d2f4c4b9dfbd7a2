// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/retailrec/internal/metrics"
)

// DataSource supplies the snapshot a training run is built from.
// This is typically implemented by the catalog package.
type DataSource interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// GenerationStore persists whole generations.
// This is typically implemented by the storage package.
type GenerationStore interface {
	// Save persists g as one atomic unit.
	Save(ctx context.Context, g *Generation) error

	// Load returns the most recently saved generation. Any missing or
	// corrupt component fails the whole load with ErrNotReady.
	Load(ctx context.Context) (*Generation, error)
}

// EventSink receives training lifecycle events.
type EventSink interface {
	Publish(ctx context.Context, ev TrainingEvent) error
}

// Training event outcomes.
const (
	EventTrained = "trained"
	EventFailed  = "failed"
)

// TrainingEvent describes the outcome of one training run.
type TrainingEvent struct {
	Outcome      string        `json:"outcome"`
	GenerationID string        `json:"generation_id,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	Duration     time.Duration `json:"duration_ns"`
	Stats        *Stats        `json:"stats,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// Engine owns the current generation and the training lifecycle.
// It is safe for concurrent use: reads load the current generation once
// and never lock, and at most one training run is in flight.
type Engine struct {
	config *Config
	logger zerolog.Logger

	source DataSource
	store  GenerationStore
	events EventSink

	current atomic.Pointer[Generation]
	state   atomic.Int32

	// trainMu is held for the whole of a training run.
	trainMu sync.Mutex
	breaker *gobreaker.CircuitBreaker[*Generation]

	statusMu       sync.RWMutex
	lastTrainedAt  time.Time
	lastDurationMS int64
	lastError      string
	trainingRuns   atomic.Int64
}

// NewEngine creates a new recommendation engine in the Untrained state.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		config: cfg.Clone(),
		logger: logger.With().Str("component", "recommend").Logger(),
	}
	e.state.Store(int32(StateUntrained))
	e.breaker = newTrainingBreaker(e.config.Training, e.logger)
	return e, nil
}

// SetDataSource sets the snapshot source for training.
func (e *Engine) SetDataSource(src DataSource) {
	e.source = src
}

// SetStore sets the generation store. Without a store, generations live
// in memory only.
func (e *Engine) SetStore(store GenerationStore) {
	e.store = store
}

// SetEventSink sets the receiver of training lifecycle events.
func (e *Engine) SetEventSink(sink EventSink) {
	e.events = sink
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// State returns the lifecycle state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Current returns the serving generation, or ErrNotReady.
func (e *Engine) Current() (*Generation, error) {
	g := e.current.Load()
	if g == nil {
		return nil, ErrNotReady
	}
	return g, nil
}

// Train builds a new generation from the data source and swaps it in.
// Returns immediately with ErrTrainingInProgress if a run is in flight.
// Every error wraps ErrTrainingFailed; the previous generation, if any,
// keeps serving.
func (e *Engine) Train(ctx context.Context) (string, error) {
	if !e.trainMu.TryLock() {
		metrics.RecordTraining(0, "rejected")
		return "", trainingFailed(ErrTrainingInProgress)
	}
	defer e.trainMu.Unlock()

	if e.source == nil {
		return "", trainingFailed(errors.New("data source not set"))
	}

	prev := State(e.state.Load())
	e.state.Store(int32(StateTraining))
	e.trainingRuns.Add(1)

	start := time.Now()
	e.logger.Info().Str("previous_state", prev.String()).Msg("starting model training")

	trainCtx, cancel := context.WithTimeout(ctx, e.config.Training.Timeout)
	defer cancel()

	gen, err := e.breaker.Execute(func() (*Generation, error) {
		return e.build(trainCtx)
	})
	duration := time.Since(start)
	recordBreakerResult(err)

	if err != nil {
		e.state.Store(int32(prev))
		e.recordFailure(ctx, err, duration)
		return "", trainingFailed(err)
	}

	e.install(gen)
	e.recordSuccess(ctx, gen, duration)
	e.persist(ctx, gen)

	return gen.ID, nil
}

// install atomically makes g the serving generation.
func (e *Engine) install(g *Generation) {
	e.current.Store(g)
	e.state.Store(int32(StateTrained))

	s := g.Stats()
	metrics.SetGeneration(g.CreatedAt, s.NumCustomers, s.NumProducts, s.NumInteractions)
}

// recordSuccess updates status, metrics, and listeners after a run.
func (e *Engine) recordSuccess(ctx context.Context, g *Generation, duration time.Duration) {
	e.statusMu.Lock()
	e.lastTrainedAt = time.Now()
	e.lastDurationMS = duration.Milliseconds()
	e.lastError = ""
	e.statusMu.Unlock()

	metrics.RecordTraining(duration, "success")

	stats := g.Stats()
	e.logger.Info().
		Str("generation", g.ID).
		Int("customers", stats.NumCustomers).
		Int("products", stats.NumProducts).
		Int("interactions", stats.NumInteractions).
		Bool("collaborative", g.Embeddings != nil).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("model training complete")

	e.publish(ctx, TrainingEvent{
		Outcome:      EventTrained,
		GenerationID: g.ID,
		CreatedAt:    g.CreatedAt,
		Duration:     duration,
		Stats:        &stats,
	})
}

// recordFailure updates status, metrics, and listeners after a failed run.
func (e *Engine) recordFailure(ctx context.Context, err error, duration time.Duration) {
	e.statusMu.Lock()
	e.lastDurationMS = duration.Milliseconds()
	e.lastError = err.Error()
	e.statusMu.Unlock()

	metrics.RecordTraining(duration, "failure")

	e.logger.Error().
		Err(err).
		Str("state", e.State().String()).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("model training failed")

	e.publish(ctx, TrainingEvent{
		Outcome:   EventFailed,
		CreatedAt: time.Now().UTC(),
		Duration:  duration,
		Error:     err.Error(),
	})
}

// persist saves g. Failures are logged; the in-memory generation keeps
// serving.
func (e *Engine) persist(ctx context.Context, g *Generation) {
	if e.store == nil {
		return
	}
	if err := e.store.Save(ctx, g); err != nil {
		e.logger.Warn().Err(err).Str("generation", g.ID).Msg("failed to persist generation")
	}
}

func (e *Engine) publish(ctx context.Context, ev TrainingEvent) {
	if e.events == nil {
		return
	}
	if err := e.events.Publish(ctx, ev); err != nil {
		e.logger.Warn().Err(err).Str("outcome", ev.Outcome).Msg("failed to publish training event")
	}
}

// Restore installs the most recently persisted generation. A load failure
// is logged and treated as a cache miss: the engine keeps its current
// state and the error, wrapping ErrNotReady, is returned for the caller
// to decide whether to train.
func (e *Engine) Restore(ctx context.Context) error {
	if e.store == nil {
		return ErrNotReady
	}

	g, err := e.store.Load(ctx)
	if err == nil {
		err = g.Validate()
	}
	if err != nil {
		e.logger.Warn().Err(err).Msg("no persisted generation restored")
		if !errors.Is(err, ErrNotReady) {
			err = fmt.Errorf("%w: %w", ErrNotReady, err)
		}
		return err
	}

	// A training run that finished while we were loading wins.
	if !e.trainMu.TryLock() {
		return fmt.Errorf("%w: %w", ErrNotReady, ErrTrainingInProgress)
	}
	defer e.trainMu.Unlock()

	if cur := e.current.Load(); cur != nil && cur.CreatedAt.After(g.CreatedAt) {
		return nil
	}

	e.install(g)
	e.logger.Info().
		Str("generation", g.ID).
		Time("created_at", g.CreatedAt).
		Msg("restored persisted generation")
	return nil
}

// Recommend ranks products for a customer under the given mode.
// A non-positive n uses the configured default; n is capped at the
// configured maximum.
func (e *Engine) Recommend(customerID string, n int, mode Mode) (Result, error) {
	start := time.Now()
	res, err := e.recommend(customerID, n, mode)
	metrics.RecordRecommendation(mode.String(), outcomeLabel(err), res.Degraded, time.Since(start))
	return res, err
}

func (e *Engine) recommend(customerID string, n int, mode Mode) (Result, error) {
	g := e.current.Load()
	if g == nil {
		return Result{}, ErrNotReady
	}

	p, err := g.profile(customerID)
	if err != nil {
		return Result{}, err
	}

	items, degraded, err := g.rank(p, e.clampN(n), mode)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Items:        items,
		Mode:         mode,
		Degraded:     degraded,
		GenerationID: g.ID,
	}, nil
}

// SimilarProducts returns the products most similar to productID,
// excluding productID itself.
func (e *Engine) SimilarProducts(productID string, n int) ([]ScoredProduct, error) {
	g := e.current.Load()
	if g == nil {
		return nil, ErrNotReady
	}
	return g.similarProducts(productID, e.clampN(n))
}

// Stats returns size and density figures of the serving generation.
func (e *Engine) Stats() (Stats, error) {
	g := e.current.Load()
	if g == nil {
		return Stats{}, ErrNotReady
	}
	return g.Stats(), nil
}

// Status returns lifecycle information.
func (e *Engine) Status() Status {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()

	s := Status{
		State:                  e.State().String(),
		LastTrainedAt:          e.lastTrainedAt,
		LastTrainingDurationMS: e.lastDurationMS,
		LastError:              e.lastError,
		TrainingRuns:           e.trainingRuns.Load(),
	}
	if g := e.current.Load(); g != nil {
		s.GenerationID = g.ID
		s.GenerationCreatedAt = g.CreatedAt
	}
	return s
}

func (e *Engine) clampN(n int) int {
	if n <= 0 {
		return e.config.Limits.DefaultN
	}
	if n > e.config.Limits.MaxN {
		return e.config.Limits.MaxN
	}
	return n
}

// outcomeLabel maps a request error to a metric label.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrNoHistory):
		return "no_history"
	case errors.Is(err, ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, ErrNotReady):
		return "not_ready"
	case errors.Is(err, ErrInvalidMode):
		return "invalid_mode"
	default:
		return "error"
	}
}
