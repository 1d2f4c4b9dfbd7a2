// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package recommend

import (
	"fmt"
	"time"
)

// Config contains all recommendation engine configuration.
type Config struct {
	// ALS contains collaborative model hyperparameters.
	ALS ALSConfig `json:"als"`

	// Content contains content model parameters.
	Content ContentConfig `json:"content"`

	// Weights are the hybrid blend weights.
	Weights HybridWeights `json:"weights"`

	// Training contains training run limits.
	Training TrainingConfig `json:"training"`

	// Evaluation contains leave-one-out parameters.
	Evaluation EvaluationConfig `json:"evaluation"`

	// Limits contains request limits.
	Limits LimitsConfig `json:"limits"`

	// Seed drives factor initialization and evaluation sampling.
	Seed int64 `json:"seed"`
}

// ALSConfig contains ALS hyperparameters.
type ALSConfig struct {
	// Factors is the latent dimension k.
	// Default: 50.
	Factors int `json:"factors"`

	// Iterations is the number of alternating sweeps.
	// Default: 50.
	Iterations int `json:"iterations"`

	// Regularization is the L2 penalty lambda.
	// Default: 0.01.
	Regularization float64 `json:"regularization"`

	// Alpha scales ratings into confidence: c = 1 + alpha * r.
	// Default: 1.0.
	Alpha float64 `json:"alpha"`

	// Workers is the number of goroutines per sweep.
	// Default: 4.
	Workers int `json:"workers"`
}

// ContentConfig contains TF-IDF parameters.
type ContentConfig struct {
	// MaxFeatures caps the vocabulary size.
	// Default: 1000.
	MaxFeatures int `json:"max_features"`

	// MaxNGram is the longest word n-gram.
	// Default: 2.
	MaxNGram int `json:"max_ngram"`

	// Workers bounds similarity matrix goroutines.
	// Default: 4.
	Workers int `json:"workers"`
}

// TrainingConfig contains training run limits.
type TrainingConfig struct {
	// Timeout is the maximum time allowed for a training run.
	// Default: 30m.
	Timeout time.Duration `json:"timeout"`

	// BreakerFailures is the number of consecutive failed runs that opens
	// the training circuit breaker.
	// Default: 3.
	BreakerFailures uint32 `json:"breaker_failures"`

	// BreakerCooldown is how long the breaker stays open.
	// Default: 5m.
	BreakerCooldown time.Duration `json:"breaker_cooldown"`
}

// EvaluationConfig contains leave-one-out parameters.
type EvaluationConfig struct {
	// K is the recommendation list length per trial.
	// Default: 10.
	K int `json:"k"`

	// SampleSize is used when Evaluate is called with a non-positive size.
	// Default: 50.
	SampleSize int `json:"sample_size"`

	// Workers bounds the customers evaluated concurrently.
	// Default: 4.
	Workers int `json:"workers"`
}

// LimitsConfig contains request limits.
type LimitsConfig struct {
	// DefaultN is used when a request asks for a non-positive count.
	// Default: 5.
	DefaultN int `json:"default_n"`

	// MaxN caps the count a request may ask for.
	// Default: 100.
	MaxN int `json:"max_n"`
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() *Config {
	return &Config{
		ALS: ALSConfig{
			Factors:        50,
			Iterations:     50,
			Regularization: 0.01,
			Alpha:          1.0,
			Workers:        4,
		},
		Content: ContentConfig{
			MaxFeatures: 1000,
			MaxNGram:    2,
			Workers:     4,
		},
		Weights: DefaultWeights(),
		Training: TrainingConfig{
			Timeout:         30 * time.Minute,
			BreakerFailures: 3,
			BreakerCooldown: 5 * time.Minute,
		},
		Evaluation: EvaluationConfig{
			K:          10,
			SampleSize: 50,
			Workers:    4,
		},
		Limits: LimitsConfig{
			DefaultN: 5,
			MaxN:     100,
		},
		Seed: 42,
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	if c.ALS.Factors < 1 {
		return fmt.Errorf("als.factors must be positive, got %d", c.ALS.Factors)
	}
	if c.ALS.Iterations < 1 {
		return fmt.Errorf("als.iterations must be positive, got %d", c.ALS.Iterations)
	}
	if c.ALS.Regularization < 0 {
		return fmt.Errorf("als.regularization must be non-negative, got %f", c.ALS.Regularization)
	}
	if c.ALS.Alpha < 0 {
		return fmt.Errorf("als.alpha must be non-negative, got %f", c.ALS.Alpha)
	}
	if c.ALS.Workers < 1 {
		return fmt.Errorf("als.workers must be positive, got %d", c.ALS.Workers)
	}

	if c.Content.MaxFeatures < 1 {
		return fmt.Errorf("content.max_features must be positive, got %d", c.Content.MaxFeatures)
	}
	if c.Content.MaxNGram < 1 {
		return fmt.Errorf("content.max_ngram must be positive, got %d", c.Content.MaxNGram)
	}
	if c.Content.Workers < 1 {
		return fmt.Errorf("content.workers must be positive, got %d", c.Content.Workers)
	}

	if err := c.Weights.Validate(); err != nil {
		return err
	}

	if c.Training.Timeout <= 0 {
		return fmt.Errorf("training.timeout must be positive, got %v", c.Training.Timeout)
	}
	if c.Training.BreakerFailures < 1 {
		return fmt.Errorf("training.breaker_failures must be positive, got %d", c.Training.BreakerFailures)
	}
	if c.Training.BreakerCooldown <= 0 {
		return fmt.Errorf("training.breaker_cooldown must be positive, got %v", c.Training.BreakerCooldown)
	}

	if c.Evaluation.K < 1 {
		return fmt.Errorf("evaluation.k must be positive, got %d", c.Evaluation.K)
	}
	if c.Evaluation.SampleSize < 1 {
		return fmt.Errorf("evaluation.sample_size must be positive, got %d", c.Evaluation.SampleSize)
	}
	if c.Evaluation.Workers < 1 {
		return fmt.Errorf("evaluation.workers must be positive, got %d", c.Evaluation.Workers)
	}

	if c.Limits.DefaultN < 1 {
		return fmt.Errorf("limits.default_n must be positive, got %d", c.Limits.DefaultN)
	}
	if c.Limits.MaxN < c.Limits.DefaultN {
		return fmt.Errorf("limits.max_n must be >= limits.default_n, got %d < %d", c.Limits.MaxN, c.Limits.DefaultN)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs contain only value types.
	clone := *c
	return &clone
}
