// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/retailrec/internal/recommend"
)

// TrainingEngine is the part of *recommend.Engine the scheduler drives.
type TrainingEngine interface {
	Train(ctx context.Context) (string, error)
	Current() (*recommend.Generation, error)
}

// TrainingServiceConfig holds configuration for the training service.
type TrainingServiceConfig struct {
	// TrainOnStartup trains when the service starts and no generation is
	// serving yet.
	TrainOnStartup bool

	// TrainInterval is how often to retrain. Zero disables the schedule;
	// manual triggers still run.
	TrainInterval time.Duration
}

// TrainingService runs the engine's training lifecycle under supervision:
// an optional startup run, periodic retraining and on-demand runs queued
// through Trigger.
type TrainingService struct {
	engine  TrainingEngine
	config  TrainingServiceConfig
	logger  zerolog.Logger
	trigger chan struct{}
	name    string
}

// NewTrainingService creates a new training service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTrainingService(engine TrainingEngine, cfg TrainingServiceConfig, logger zerolog.Logger) *TrainingService {
	return &TrainingService{
		engine:  engine,
		config:  cfg,
		logger:  logger.With().Str("service", "training").Logger(),
		trigger: make(chan struct{}, 1),
		name:    "training-service",
	}
}

// Trigger queues a training run. It returns false when one is already
// queued. A run that is in flight does not count as queued.
func (s *TrainingService) Trigger() bool {
	select {
	case s.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Serve implements suture.Service.
func (s *TrainingService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("train_on_startup", s.config.TrainOnStartup).
		Dur("train_interval", s.config.TrainInterval).
		Msg("training service starting")

	if s.config.TrainOnStartup {
		if _, err := s.engine.Current(); err != nil {
			s.logger.Info().Msg("no generation serving, training on startup")
			s.train(ctx, "startup")
		} else {
			s.logger.Info().Msg("generation restored, skipping startup training")
		}
	}

	var tick <-chan time.Time
	if s.config.TrainInterval > 0 {
		ticker := time.NewTicker(s.config.TrainInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("training service shutting down")
			return ctx.Err()

		case <-tick:
			s.train(ctx, "schedule")

		case <-s.trigger:
			s.train(ctx, "manual")
		}
	}
}

// train runs one training cycle. Failures are logged; the previous
// generation keeps serving and the next tick retries.
func (s *TrainingService) train(ctx context.Context, reason string) {
	start := time.Now()
	id, err := s.engine.Train(ctx)
	switch {
	case err == nil:
		s.logger.Info().
			Str("reason", reason).
			Str("generation_id", id).
			Dur("duration", time.Since(start)).
			Msg("model training complete")
	case errors.Is(err, recommend.ErrTrainingInProgress):
		s.logger.Info().Str("reason", reason).Msg("training already in progress, skipped")
	case ctx.Err() != nil:
		s.logger.Debug().Err(err).Str("reason", reason).Msg("training interrupted by shutdown")
	default:
		s.logger.Warn().Err(err).Str("reason", reason).Msg("model training failed")
	}
}

// String returns the service name for logging.
func (s *TrainingService) String() string {
	return s.name
}
