// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package config

import (
	"time"

	"github.com/tomtom215/retailrec/internal/recommend"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting
//
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Recommend RecommendConfig `koanf:"recommend"`
	Training  TrainingConfig  `koanf:"training"`
	Store     StoreConfig     `koanf:"store"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Events    EventsConfig    `koanf:"events"`
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// RecommendConfig holds the engine hyperparameters.
type RecommendConfig struct {
	ALS        ALSConfig        `koanf:"als"`
	Content    ContentConfig    `koanf:"content"`
	Weights    WeightsConfig    `koanf:"weights"`
	Evaluation EvaluationConfig `koanf:"evaluation"`

	// DefaultN is used when a request asks for a non-positive count.
	DefaultN int `koanf:"default_n"`

	// MaxN caps the count a request may ask for.
	MaxN int `koanf:"max_n"`

	// Seed drives factor initialization and evaluation sampling.
	Seed int64 `koanf:"seed"`
}

// ALSConfig holds collaborative model settings.
type ALSConfig struct {
	Factors        int     `koanf:"factors"`
	Iterations     int     `koanf:"iterations"`
	Regularization float64 `koanf:"regularization"`
	Alpha          float64 `koanf:"alpha"`

	// Workers is the number of goroutines per ALS sweep.
	Workers int `koanf:"workers"`
}

// ContentConfig holds TF-IDF settings.
type ContentConfig struct {
	MaxFeatures int `koanf:"max_features"`
	MaxNGram    int `koanf:"max_ngram"`
	Workers     int `koanf:"workers"`
}

// WeightsConfig holds the hybrid blend weights.
type WeightsConfig struct {
	Collaborative float64 `koanf:"collaborative"`
	Content       float64 `koanf:"content"`
}

// EvaluationConfig holds leave-one-out settings.
type EvaluationConfig struct {
	K          int `koanf:"k"`
	SampleSize int `koanf:"sample_size"`
	Workers    int `koanf:"workers"`
}

// TrainingConfig holds training run limits and the retraining schedule.
type TrainingConfig struct {
	// Interval between scheduled runs. 0 disables periodic retraining.
	Interval time.Duration `koanf:"interval"`

	// OnStartup trains once at startup when no stored generation could be
	// restored.
	OnStartup bool `koanf:"on_startup"`

	Timeout         time.Duration `koanf:"timeout"`
	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerCooldown time.Duration `koanf:"breaker_cooldown"`
}

// StoreConfig holds generation bundle storage settings.
type StoreConfig struct {
	// Path is the bundle directory. Empty disables persistence.
	Path string `koanf:"path"`

	// KeepGenerations is the number of bundles retained after each save.
	KeepGenerations int `koanf:"keep_generations" validate:"gte=1"`
}

// CatalogConfig selects and configures the retail data backend.
type CatalogConfig struct {
	// Driver is "duckdb" or "badger".
	Driver string `koanf:"driver" validate:"oneof=duckdb badger"`

	// Path is the DuckDB file or the Badger directory.
	Path string `koanf:"path"`

	// InMemory keeps the catalog in RAM (":memory:" for DuckDB).
	InMemory bool `koanf:"in_memory"`

	// Threads and MaxMemory tune DuckDB.
	Threads   int    `koanf:"threads" validate:"gte=0"`
	MaxMemory string `koanf:"max_memory"`

	// Import files loaded into DuckDB at startup (CSV or Parquet).
	ImportProducts     string `koanf:"import_products"`
	ImportCustomers    string `koanf:"import_customers"`
	ImportTransactions string `koanf:"import_transactions"`
}

// EventsConfig configures generation lifecycle events.
type EventsConfig struct {
	Enabled bool `koanf:"enabled"`

	// Driver is "gochannel" (in-process) or "nats" (JetStream).
	Driver string `koanf:"driver" validate:"oneof=gochannel nats"`

	// NATSURL is the server address used by the nats driver.
	NATSURL string `koanf:"nats_url"`

	// TopicPrefix is prepended to event topics (e.g., "retailrec").
	TopicPrefix string `koanf:"topic_prefix" validate:"required"`
}

// ServerConfig holds ops HTTP server settings.
type ServerConfig struct {
	Enabled bool          `koanf:"enabled"`
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// EngineConfig returns the engine configuration described by c.
func (c *Config) EngineConfig() *recommend.Config {
	r := c.Recommend
	return &recommend.Config{
		ALS: recommend.ALSConfig{
			Factors:        r.ALS.Factors,
			Iterations:     r.ALS.Iterations,
			Regularization: r.ALS.Regularization,
			Alpha:          r.ALS.Alpha,
			Workers:        r.ALS.Workers,
		},
		Content: recommend.ContentConfig{
			MaxFeatures: r.Content.MaxFeatures,
			MaxNGram:    r.Content.MaxNGram,
			Workers:     r.Content.Workers,
		},
		Weights: recommend.HybridWeights{
			Collaborative: r.Weights.Collaborative,
			Content:       r.Weights.Content,
		},
		Training: recommend.TrainingConfig{
			Timeout:         c.Training.Timeout,
			BreakerFailures: c.Training.BreakerFailures,
			BreakerCooldown: c.Training.BreakerCooldown,
		},
		Evaluation: recommend.EvaluationConfig{
			K:          r.Evaluation.K,
			SampleSize: r.Evaluation.SampleSize,
			Workers:    r.Evaluation.Workers,
		},
		Limits: recommend.LimitsConfig{
			DefaultN: r.DefaultN,
			MaxN:     r.MaxN,
		},
		Seed: r.Seed,
	}
}

// Load loads configuration from defaults, an optional YAML file, and the
// environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
