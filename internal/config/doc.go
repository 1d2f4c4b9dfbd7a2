// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

/*
Package config provides centralized configuration management for Retailrec.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file (CONFIG_PATH, ./config.yaml, or /etc/retailrec/config.yaml), then
environment variables. Later layers override earlier ones.

# Configuration Structure

  - recommend: ALS, TF-IDF, blend weights, evaluation and request limits
  - training: schedule (interval, on_startup), timeout and circuit breaker
  - store: generation bundle directory and retention
  - catalog: duckdb or badger backend, optional CSV/Parquet imports
  - events: lifecycle event publishing (gochannel or nats)
  - server: ops HTTP listener
  - logging: zerolog level, format, caller

# Environment Variables

Engine:
  - RECOMMEND_ALS_FACTORS (default: 50)
  - RECOMMEND_ALS_ITERATIONS (default: 50)
  - RECOMMEND_ALS_REGULARIZATION (default: 0.01)
  - RECOMMEND_ALS_ALPHA (default: 1.0)
  - RECOMMEND_WEIGHT_CF, RECOMMEND_WEIGHT_CONTENT (default: 0.6, 0.4)
  - RECOMMEND_EVAL_K, RECOMMEND_EVAL_SAMPLE_SIZE (default: 10, 50)

Training and storage:
  - TRAIN_INTERVAL (default: 24h, 0 disables)
  - TRAIN_ON_STARTUP (default: true)
  - TRAIN_TIMEOUT (default: 30m)
  - STORE_PATH (default: /data/generations)
  - STORE_KEEP_GENERATIONS (default: 3)

Catalog:
  - CATALOG_DRIVER: duckdb or badger (default: duckdb)
  - CATALOG_PATH (default: /data/retailrec.duckdb)
  - CATALOG_IMPORT_PRODUCTS, CATALOG_IMPORT_CUSTOMERS, CATALOG_IMPORT_TRANSACTIONS

Events, server, logging:
  - EVENTS_ENABLED, EVENTS_DRIVER, NATS_URL, EVENTS_TOPIC_PREFIX
  - HTTP_HOST, HTTP_PORT (default: 8090), HTTP_TIMEOUT
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Example

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal().Err(err).Msg("Failed to load config")
	}
	engine, err := recommend.NewEngine(cfg.EngineConfig(), logger)
*/
package config
