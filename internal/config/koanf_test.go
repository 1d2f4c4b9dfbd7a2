// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/retailrec/internal/recommend"
)

// isolateConfig keeps the test from picking up a config file in the
// working directory.
func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "absent.yaml"))
	orig := DefaultConfigPaths
	DefaultConfigPaths = nil
	t.Cleanup(func() { DefaultConfigPaths = orig })
}

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Recommend.ALS.Factors != 50 {
		t.Errorf("ALS.Factors = %d, want 50", cfg.Recommend.ALS.Factors)
	}
	if cfg.Recommend.ALS.Iterations != 50 {
		t.Errorf("ALS.Iterations = %d, want 50", cfg.Recommend.ALS.Iterations)
	}
	if cfg.Recommend.Weights.Collaborative != 0.6 || cfg.Recommend.Weights.Content != 0.4 {
		t.Errorf("Weights = %+v, want {0.6 0.4}", cfg.Recommend.Weights)
	}
	if cfg.Training.Interval != 24*time.Hour {
		t.Errorf("Training.Interval = %v, want 24h", cfg.Training.Interval)
	}
	if cfg.Store.KeepGenerations != 3 {
		t.Errorf("Store.KeepGenerations = %d, want 3", cfg.Store.KeepGenerations)
	}
	if cfg.Catalog.Driver != "duckdb" {
		t.Errorf("Catalog.Driver = %q, want duckdb", cfg.Catalog.Driver)
	}
	if cfg.Server.Port != 8090 {
		t.Errorf("Server.Port = %d, want 8090", cfg.Server.Port)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig().Validate() = %v", err)
	}
}

func TestDefaultConfig_MatchesEngineDefaults(t *testing.T) {
	got := defaultConfig().EngineConfig()
	want := recommend.DefaultConfig()

	if *got != *want {
		t.Errorf("EngineConfig() = %+v, want %+v", got, want)
	}
}

func TestLoadWithKoanf_Defaults(t *testing.T) {
	isolateConfig(t)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Store.Path != "/data/generations" {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
	if cfg.Training.Timeout != 30*time.Minute {
		t.Errorf("Training.Timeout = %v, want 30m", cfg.Training.Timeout)
	}
}

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	isolateConfig(t)
	t.Setenv("RECOMMEND_ALS_FACTORS", "16")
	t.Setenv("RECOMMEND_WEIGHT_CF", "0.8")
	t.Setenv("RECOMMEND_WEIGHT_CONTENT", "0.2")
	t.Setenv("TRAIN_INTERVAL", "6h")
	t.Setenv("TRAIN_ON_STARTUP", "false")
	t.Setenv("STORE_KEEP_GENERATIONS", "5")
	t.Setenv("CATALOG_DRIVER", "badger")
	t.Setenv("CATALOG_PATH", "/tmp/catalog")
	t.Setenv("HTTP_PORT", "9191")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Recommend.ALS.Factors != 16 {
		t.Errorf("ALS.Factors = %d, want 16", cfg.Recommend.ALS.Factors)
	}
	if cfg.Recommend.Weights.Collaborative != 0.8 {
		t.Errorf("Weights.Collaborative = %v, want 0.8", cfg.Recommend.Weights.Collaborative)
	}
	if cfg.Training.Interval != 6*time.Hour {
		t.Errorf("Training.Interval = %v, want 6h", cfg.Training.Interval)
	}
	if cfg.Training.OnStartup {
		t.Error("Training.OnStartup = true, want false")
	}
	if cfg.Store.KeepGenerations != 5 {
		t.Errorf("Store.KeepGenerations = %d, want 5", cfg.Store.KeepGenerations)
	}
	if cfg.Catalog.Driver != "badger" || cfg.Catalog.Path != "/tmp/catalog" {
		t.Errorf("Catalog = %+v", cfg.Catalog)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("Server.Port = %d, want 9191", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadWithKoanf_YAMLFile(t *testing.T) {
	isolateConfig(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
recommend:
  als:
    factors: 8
    iterations: 20
  evaluation:
    k: 5
catalog:
  driver: duckdb
  path: /srv/retail.duckdb
  import_products: /srv/products.csv
events:
  driver: nats
  nats_url: nats://broker:4222
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("RECOMMEND_ALS_ITERATIONS", "30")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Recommend.ALS.Factors != 8 {
		t.Errorf("ALS.Factors = %d, want 8 from file", cfg.Recommend.ALS.Factors)
	}
	if cfg.Recommend.ALS.Iterations != 30 {
		t.Errorf("ALS.Iterations = %d, want 30 from env", cfg.Recommend.ALS.Iterations)
	}
	if cfg.Recommend.Evaluation.K != 5 {
		t.Errorf("Evaluation.K = %d, want 5", cfg.Recommend.Evaluation.K)
	}
	if cfg.Recommend.Evaluation.SampleSize != 50 {
		t.Errorf("Evaluation.SampleSize = %d, want default 50", cfg.Recommend.Evaluation.SampleSize)
	}
	if cfg.Catalog.ImportProducts != "/srv/products.csv" {
		t.Errorf("Catalog.ImportProducts = %q", cfg.Catalog.ImportProducts)
	}
	if cfg.Events.Driver != "nats" || cfg.Events.NATSURL != "nats://broker:4222" {
		t.Errorf("Events = %+v", cfg.Events)
	}
}

func TestLoadWithKoanf_InvalidEnv(t *testing.T) {
	isolateConfig(t)
	t.Setenv("RECOMMEND_WEIGHT_CF", "0")
	t.Setenv("RECOMMEND_WEIGHT_CONTENT", "0")

	if _, err := LoadWithKoanf(); err == nil {
		t.Error("LoadWithKoanf() with zero weights succeeded, want error")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"RECOMMEND_ALS_FACTORS", "recommend.als.factors"},
		{"STORE_PATH", "store.path"},
		{"DUCKDB_MAX_MEMORY", "catalog.max_memory"},
		{"NATS_URL", "events.nats_url"},
		{"HTTP_PORT", "server.port"},
		{"log_level", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := envTransformFunc(tt.key); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Run("env path", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, path)
		if got := findConfigFile(); got != path {
			t.Errorf("findConfigFile() = %q, want %q", got, path)
		}
	})

	t.Run("none found", func(t *testing.T) {
		isolateConfig(t)
		if got := findConfigFile(); got != "" {
			t.Errorf("findConfigFile() = %q, want empty", got)
		}
	})
}
