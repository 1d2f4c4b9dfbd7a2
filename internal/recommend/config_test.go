// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package recommend

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("default config is valid", func(t *testing.T) {
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("weights favor collaborative", func(t *testing.T) {
		if cfg.Weights.Collaborative != 0.6 || cfg.Weights.Content != 0.4 {
			t.Errorf("Weights = %+v, want 0.6/0.4", cfg.Weights)
		}
	})

	t.Run("ALS config has valid defaults", func(t *testing.T) {
		if cfg.ALS.Factors != 50 {
			t.Errorf("ALS.Factors = %d, want 50", cfg.ALS.Factors)
		}
		if cfg.ALS.Iterations <= 0 {
			t.Errorf("ALS.Iterations = %d, want > 0", cfg.ALS.Iterations)
		}
		if cfg.ALS.Regularization != 0.01 {
			t.Errorf("ALS.Regularization = %f, want 0.01", cfg.ALS.Regularization)
		}
	})

	t.Run("content config has valid defaults", func(t *testing.T) {
		if cfg.Content.MaxFeatures != 1000 {
			t.Errorf("Content.MaxFeatures = %d, want 1000", cfg.Content.MaxFeatures)
		}
		if cfg.Content.MaxNGram != 2 {
			t.Errorf("Content.MaxNGram = %d, want 2", cfg.Content.MaxNGram)
		}
	})

	t.Run("limits config has valid defaults", func(t *testing.T) {
		if cfg.Limits.DefaultN != 5 {
			t.Errorf("Limits.DefaultN = %d, want 5", cfg.Limits.DefaultN)
		}
		if cfg.Limits.MaxN < cfg.Limits.DefaultN {
			t.Errorf("Limits.MaxN = %d, want >= DefaultN (%d)", cfg.Limits.MaxN, cfg.Limits.DefaultN)
		}
	})

	t.Run("seed is set for determinism", func(t *testing.T) {
		if cfg.Seed == 0 {
			t.Error("Seed = 0, want non-zero for determinism")
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantError bool
	}{
		{
			name:      "valid default config",
			modify:    func(c *Config) {},
			wantError: false,
		},
		{
			name:      "zero factors",
			modify:    func(c *Config) { c.ALS.Factors = 0 },
			wantError: true,
		},
		{
			name:      "zero iterations",
			modify:    func(c *Config) { c.ALS.Iterations = 0 },
			wantError: true,
		},
		{
			name:      "negative regularization",
			modify:    func(c *Config) { c.ALS.Regularization = -0.1 },
			wantError: true,
		},
		{
			name:      "zero regularization allowed",
			modify:    func(c *Config) { c.ALS.Regularization = 0 },
			wantError: false,
		},
		{
			name:      "negative alpha",
			modify:    func(c *Config) { c.ALS.Alpha = -1 },
			wantError: true,
		},
		{
			name:      "zero ALS workers",
			modify:    func(c *Config) { c.ALS.Workers = 0 },
			wantError: true,
		},
		{
			name:      "zero max features",
			modify:    func(c *Config) { c.Content.MaxFeatures = 0 },
			wantError: true,
		},
		{
			name:      "zero max ngram",
			modify:    func(c *Config) { c.Content.MaxNGram = 0 },
			wantError: true,
		},
		{
			name:      "negative weight",
			modify:    func(c *Config) { c.Weights.Content = -0.1 },
			wantError: true,
		},
		{
			name:      "both weights zero",
			modify:    func(c *Config) { c.Weights = HybridWeights{} },
			wantError: true,
		},
		{
			name:      "weights need not sum to one",
			modify:    func(c *Config) { c.Weights = HybridWeights{Collaborative: 3, Content: 1} },
			wantError: false,
		},
		{
			name:      "zero timeout",
			modify:    func(c *Config) { c.Training.Timeout = 0 },
			wantError: true,
		},
		{
			name:      "zero breaker failures",
			modify:    func(c *Config) { c.Training.BreakerFailures = 0 },
			wantError: true,
		},
		{
			name:      "zero breaker cooldown",
			modify:    func(c *Config) { c.Training.BreakerCooldown = 0 },
			wantError: true,
		},
		{
			name:      "zero evaluation k",
			modify:    func(c *Config) { c.Evaluation.K = 0 },
			wantError: true,
		},
		{
			name:      "zero evaluation sample size",
			modify:    func(c *Config) { c.Evaluation.SampleSize = 0 },
			wantError: true,
		},
		{
			name:      "zero evaluation workers",
			modify:    func(c *Config) { c.Evaluation.Workers = 0 },
			wantError: true,
		},
		{
			name:      "zero default n",
			modify:    func(c *Config) { c.Limits.DefaultN = 0 },
			wantError: true,
		},
		{
			name:      "max n below default n",
			modify:    func(c *Config) { c.Limits.MaxN = 1 },
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestConfig_Clone(t *testing.T) {
	original := DefaultConfig()
	clone := original.Clone()

	clone.ALS.Factors = 7
	clone.Weights.Content = 0.9
	clone.Training.Timeout = time.Second

	if original.ALS.Factors == 7 || original.Weights.Content == 0.9 || original.Training.Timeout == time.Second {
		t.Error("modifying clone changed the original")
	}
}

func TestConfig_JSONRoundTrip(t *testing.T) {
	original := DefaultConfig()

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded Config
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if decoded != *original {
		t.Errorf("decoded = %+v, want %+v", decoded, *original)
	}
}
