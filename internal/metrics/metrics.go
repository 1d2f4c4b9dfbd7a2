// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Training runs (duration, outcome, generation)
// - Recommendation and similarity requests
// - Generation store I/O
// - Catalog snapshot loads
// - Lifecycle event publishing
// - Circuit breakers

var (
	// Training Metrics
	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_training_duration_seconds",
			Help:    "Duration of recommendation training runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900, 1800},
		},
	)

	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_training_runs_total",
			Help: "Total number of training runs by outcome",
		},
		[]string{"outcome"}, // success, failure, rejected
	)

	GenerationCreated = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_generation_created_timestamp_seconds",
			Help: "Unix timestamp of the generation currently serving",
		},
	)

	GenerationSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recommend_generation_size",
			Help: "Dimensions of the generation currently serving",
		},
		[]string{"dimension"}, // customers, products, interactions
	)

	// Request Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"mode", "outcome"},
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_request_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"mode"},
	)

	RecommendDegraded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_degraded_total",
			Help: "Hybrid requests answered by a single sub-model",
		},
	)

	EvaluationRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_evaluation_runs_total",
			Help: "Total number of leave-one-out evaluation runs",
		},
	)

	// Store Metrics
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generation_store_duration_seconds",
			Help:    "Duration of generation store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // save, load, prune
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_store_errors_total",
			Help: "Total number of failed generation store operations",
		},
		[]string{"operation"},
	)

	// Catalog Metrics
	CatalogLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_load_duration_seconds",
			Help:    "Duration of catalog snapshot loads in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"}, // duckdb, badger
	)

	CatalogRowsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_rows_rejected_total",
			Help: "Rows dropped from catalog snapshots by validation",
		},
		[]string{"source", "kind"}, // kind: product, transaction
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifecycle_events_published_total",
			Help: "Total number of lifecycle events published",
		},
		[]string{"topic", "outcome"},
	)

	// Ops API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of ops API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Ops API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordTraining records the outcome of one training run.
func RecordTraining(duration time.Duration, outcome string) {
	TrainingRuns.WithLabelValues(outcome).Inc()
	if outcome != "rejected" {
		TrainingDuration.Observe(duration.Seconds())
	}
}

// SetGeneration publishes the identity and size of the serving generation.
func SetGeneration(createdAt time.Time, customers, products, interactions int) {
	GenerationCreated.Set(float64(createdAt.Unix()))
	GenerationSize.WithLabelValues("customers").Set(float64(customers))
	GenerationSize.WithLabelValues("products").Set(float64(products))
	GenerationSize.WithLabelValues("interactions").Set(float64(interactions))
}

// RecordRecommendation records one recommendation request.
func RecordRecommendation(mode, outcome string, degraded bool, duration time.Duration) {
	RecommendRequests.WithLabelValues(mode, outcome).Inc()
	RecommendDuration.WithLabelValues(mode).Observe(duration.Seconds())
	if degraded {
		RecommendDegraded.Inc()
	}
}

// RecordStoreOperation records a generation store operation.
func RecordStoreOperation(operation string, duration time.Duration, err error) {
	StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		StoreErrors.WithLabelValues(operation).Inc()
	}
}

// RecordCatalogLoad records a catalog snapshot load and its rejected rows.
func RecordCatalogLoad(source string, duration time.Duration, rejectedProducts, rejectedTransactions int) {
	CatalogLoadDuration.WithLabelValues(source).Observe(duration.Seconds())
	if rejectedProducts > 0 {
		CatalogRowsRejected.WithLabelValues(source, "product").Add(float64(rejectedProducts))
	}
	if rejectedTransactions > 0 {
		CatalogRowsRejected.WithLabelValues(source, "transaction").Add(float64(rejectedTransactions))
	}
}

// RecordEventPublish records a lifecycle event publish attempt.
func RecordEventPublish(topic string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	EventsPublished.WithLabelValues(topic, outcome).Inc()
}

// RecordAPIRequest records an ops API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
