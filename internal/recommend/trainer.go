// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/retailrec/internal/metrics"
	"github.com/tomtom215/retailrec/internal/recommend/algorithms"
)

const trainingBreakerName = "recommend-training"

// build assembles a complete generation off to the side. Nothing it
// touches is visible to readers until Train installs the result.
func (e *Engine) build(ctx context.Context) (*Generation, error) {
	snap, err := e.source.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	matrix, err := BuildInteractionMatrix(snap)
	if err != nil {
		return nil, fmt.Errorf("build interaction matrix: %w", err)
	}
	if matrix.Dropped > 0 {
		e.logger.Warn().Int("dropped", matrix.Dropped).Msg("transactions rejected while building matrix")
	}

	products := alignProducts(snap.Products, matrix.ProductIDs)

	e.logger.Info().
		Int("customers", len(matrix.CustomerIDs)).
		Int("products", len(matrix.ProductIDs)).
		Int("interactions", matrix.NumInteractions()).
		Msg("loaded training data")

	var (
		embeddings *FactorEmbeddings
		similarity *SimilarityMatrix
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		emb, err := e.fitCollaborative(gctx, matrix)
		if errors.Is(err, ErrInsufficientData) {
			e.logger.Warn().Err(err).Msg("collaborative model skipped")
			return nil
		}
		if err != nil {
			return fmt.Errorf("fit collaborative model: %w", err)
		}
		embeddings = emb
		return nil
	})
	g.Go(func() error {
		sim, err := e.fitContent(gctx, products)
		if err != nil {
			return fmt.Errorf("fit content model: %w", err)
		}
		similarity = sim
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	gen := &Generation{
		ID:            uuid.NewString(),
		SchemaVersion: SchemaVersion,
		CreatedAt:     time.Now().UTC(),
		Products:      products,
		Matrix:        matrix,
		Embeddings:    embeddings,
		Similarity:    similarity,
		Weights:       e.config.Weights,
	}
	if err := gen.Validate(); err != nil {
		return nil, fmt.Errorf("validate generation: %w", err)
	}
	return gen, nil
}

// fitCollaborative runs ALS over the matrix. Matrices with fewer than two
// customers, fewer than two products, or no interactions return
// ErrInsufficientData.
func (e *Engine) fitCollaborative(ctx context.Context, m *InteractionMatrix) (*FactorEmbeddings, error) {
	if len(m.CustomerIDs) < 2 || len(m.ProductIDs) < 2 || m.NumInteractions() == 0 {
		return nil, fmt.Errorf("%d customers x %d products with %d interactions: %w",
			len(m.CustomerIDs), len(m.ProductIDs), m.NumInteractions(), ErrInsufficientData)
	}

	cfg := e.config.ALS
	als := algorithms.NewALS(algorithms.ALSConfig{
		NumFactors:     cfg.Factors,
		NumIterations:  cfg.Iterations,
		Regularization: cfg.Regularization,
		Alpha:          cfg.Alpha,
		NumWorkers:     cfg.Workers,
		Seed:           e.config.Seed,
	})

	factors, err := als.Fit(ctx, m.sparseRows(), len(m.ProductIDs))
	if errors.Is(err, algorithms.ErrEmptyMatrix) {
		return nil, fmt.Errorf("%w: %w", ErrInsufficientData, err)
	}
	if err != nil {
		return nil, err
	}

	return &FactorEmbeddings{
		Factors:        cfg.Factors,
		Alpha:          cfg.Alpha,
		Regularization: cfg.Regularization,
		Customer:       factors.User,
		Product:        factors.Item,
	}, nil
}

// fitContent vectorizes product text and computes pairwise similarity.
func (e *Engine) fitContent(ctx context.Context, products []Product) (*SimilarityMatrix, error) {
	cfg := e.config.Content
	vec := algorithms.NewTFIDF(algorithms.TFIDFConfig{
		MaxFeatures: cfg.MaxFeatures,
		MaxNGram:    cfg.MaxNGram,
		NumWorkers:  cfg.Workers,
	})

	docs := make([]string, len(products))
	for i, p := range products {
		docs[i] = p.Text()
	}

	rows, err := vec.FitTransform(ctx, docs)
	if err != nil {
		return nil, err
	}
	values, err := vec.SimilarityMatrix(ctx, rows)
	if err != nil {
		return nil, err
	}

	e.logger.Debug().Int("vocabulary", len(vec.Terms())).Msg("content model fitted")
	return &SimilarityMatrix{Values: values}, nil
}

// alignProducts returns one catalog entry per matrix column. The first
// entry wins for duplicated ids.
func alignProducts(catalog []Product, ids []string) []Product {
	byID := make(map[string]Product, len(catalog))
	for _, p := range catalog {
		if _, dup := byID[p.ID]; !dup {
			byID[p.ID] = p
		}
	}
	out := make([]Product, len(ids))
	for i, id := range ids {
		out[i] = byID[id]
	}
	return out
}

// newTrainingBreaker opens after BreakerFailures consecutive failed runs
// and rejects training for BreakerCooldown.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func newTrainingBreaker(cfg TrainingConfig, logger zerolog.Logger) *gobreaker.CircuitBreaker[*Generation] {
	metrics.CircuitBreakerState.WithLabelValues(trainingBreakerName).Set(0)

	return gobreaker.NewCircuitBreaker[*Generation](gobreaker.Settings{
		Name:        trainingBreakerName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= cfg.BreakerFailures
			if trip {
				logger.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).Msg("opening training circuit")
			}
			return trip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info().Str("from", from.String()).Str("to", to.String()).Msg("training circuit state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})
}

// recordBreakerResult counts a training attempt by breaker outcome.
func recordBreakerResult(err error) {
	result := "success"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		result = "rejected"
	case err != nil:
		result = "failure"
	}
	metrics.CircuitBreakerRequests.WithLabelValues(trainingBreakerName, result).Inc()
}

// breakerStateValue converts circuit breaker state to numeric value for metrics.
func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
