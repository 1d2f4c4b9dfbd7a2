// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/retailrec/internal/recommend"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/retailrec/config.yaml",
	"/etc/retailrec/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all default values. Engine defaults
// come from recommend.DefaultConfig so both stay in step.
func defaultConfig() *Config {
	engine := recommend.DefaultConfig()

	return &Config{
		Recommend: RecommendConfig{
			ALS: ALSConfig{
				Factors:        engine.ALS.Factors,
				Iterations:     engine.ALS.Iterations,
				Regularization: engine.ALS.Regularization,
				Alpha:          engine.ALS.Alpha,
				Workers:        engine.ALS.Workers,
			},
			Content: ContentConfig{
				MaxFeatures: engine.Content.MaxFeatures,
				MaxNGram:    engine.Content.MaxNGram,
				Workers:     engine.Content.Workers,
			},
			Weights: WeightsConfig{
				Collaborative: engine.Weights.Collaborative,
				Content:       engine.Weights.Content,
			},
			Evaluation: EvaluationConfig{
				K:          engine.Evaluation.K,
				SampleSize: engine.Evaluation.SampleSize,
				Workers:    engine.Evaluation.Workers,
			},
			DefaultN: engine.Limits.DefaultN,
			MaxN:     engine.Limits.MaxN,
			Seed:     engine.Seed,
		},
		Training: TrainingConfig{
			Interval:        24 * time.Hour,
			OnStartup:       true,
			Timeout:         engine.Training.Timeout,
			BreakerFailures: engine.Training.BreakerFailures,
			BreakerCooldown: engine.Training.BreakerCooldown,
		},
		Store: StoreConfig{
			Path:            "/data/generations",
			KeepGenerations: 3,
		},
		Catalog: CatalogConfig{
			Driver:    "duckdb",
			Path:      "/data/retailrec.duckdb",
			Threads:   0, // 0 = use runtime.NumCPU()
			MaxMemory: "1GB",
		},
		Events: EventsConfig{
			Enabled:     true,
			Driver:      "gochannel",
			NATSURL:     "nats://127.0.0.1:4222",
			TopicPrefix: "retailrec",
		},
		Server: ServerConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    8090,
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Engine hyperparameters
	"recommend_als_factors":        "recommend.als.factors",
	"recommend_als_iterations":     "recommend.als.iterations",
	"recommend_als_regularization": "recommend.als.regularization",
	"recommend_als_alpha":          "recommend.als.alpha",
	"recommend_als_workers":        "recommend.als.workers",
	"recommend_max_features":       "recommend.content.max_features",
	"recommend_max_ngram":          "recommend.content.max_ngram",
	"recommend_content_workers":    "recommend.content.workers",
	"recommend_weight_cf":          "recommend.weights.collaborative",
	"recommend_weight_content":     "recommend.weights.content",
	"recommend_eval_k":             "recommend.evaluation.k",
	"recommend_eval_sample_size":   "recommend.evaluation.sample_size",
	"recommend_eval_workers":       "recommend.evaluation.workers",
	"recommend_default_n":          "recommend.default_n",
	"recommend_max_n":              "recommend.max_n",
	"recommend_seed":               "recommend.seed",

	// Training schedule and limits
	"train_interval":         "training.interval",
	"train_on_startup":       "training.on_startup",
	"train_timeout":          "training.timeout",
	"train_breaker_failures": "training.breaker_failures",
	"train_breaker_cooldown": "training.breaker_cooldown",

	// Generation store
	"store_path":             "store.path",
	"store_keep_generations": "store.keep_generations",

	// Catalog backend
	"catalog_driver":              "catalog.driver",
	"catalog_path":                "catalog.path",
	"catalog_in_memory":           "catalog.in_memory",
	"duckdb_threads":              "catalog.threads",
	"duckdb_max_memory":           "catalog.max_memory",
	"catalog_import_products":     "catalog.import_products",
	"catalog_import_customers":    "catalog.import_customers",
	"catalog_import_transactions": "catalog.import_transactions",

	// Lifecycle events
	"events_enabled":      "events.enabled",
	"events_driver":       "events.driver",
	"nats_url":            "events.nats_url",
	"events_topic_prefix": "events.topic_prefix",

	// Ops HTTP server
	"http_enabled": "server.enabled",
	"http_host":    "server.host",
	"http_port":    "server.port",
	"http_timeout": "server.timeout",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unknown variables return "" and are ignored.
//
// Examples:
//   - RECOMMEND_ALS_FACTORS -> recommend.als.factors
//   - STORE_PATH -> store.path
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
