// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

/*
Package metrics provides Prometheus metrics collection and export for observability.

Collectors are package-level variables registered with the default registry
through promauto, so any package can record without wiring.

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint of the ops server in
Prometheus text format:

	curl http://localhost:8090/metrics

# Available Metrics

Training Metrics:
  - recommend_training_duration_seconds: Training run duration (histogram)
  - recommend_training_runs_total: Runs by outcome (counter)
    Labels: outcome (success, failure, rejected)
  - recommend_generation_created_timestamp_seconds: Serving generation age (gauge)
  - recommend_generation_size: Customers, products, interactions (gauge)

Request Metrics:
  - recommend_requests_total: Requests (counter)
    Labels: mode, outcome
  - recommend_request_duration_seconds: Request latency (histogram)
  - recommend_degraded_total: Hybrid answers from one sub-model (counter)
  - recommend_evaluation_runs_total: Evaluation runs (counter)

Store and Catalog Metrics:
  - generation_store_duration_seconds, generation_store_errors_total
    Labels: operation (save, load, prune)
  - catalog_load_duration_seconds, catalog_rows_rejected_total
    Labels: source, kind

Event and Ops API Metrics:
  - lifecycle_events_published_total
    Labels: topic, outcome
  - api_requests_total
    Labels: method, endpoint (chi route pattern), status_code
  - api_request_duration_seconds
    Labels: method, endpoint

Circuit Breaker Metrics:
  - circuit_breaker_state: Current state (gauge)
    Values: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total, circuit_breaker_state_transitions_total

# Usage

	start := time.Now()
	gen, err := store.Load(ctx)
	metrics.RecordStoreOperation("load", time.Since(start), err)
*/
package metrics
