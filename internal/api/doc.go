// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

/*
Package api serves the operational HTTP surface of the recommendation
engine: health and readiness checks, Prometheus metrics, engine status,
generation statistics, on-demand evaluation and a manual training trigger.

Routes:

	GET  /healthz           liveness
	GET  /readyz            503 until a generation is serving
	GET  /metrics           Prometheus exposition
	GET  /v1/status         engine lifecycle status
	GET  /v1/stats          size and density of the serving generation
	GET  /v1/evaluate       leave-one-out report, ?sample_size=N
	POST /v1/train          queue a training run (202, or 409 when queued)

Every JSON response uses the APIResponse envelope with a request id taken
from X-Request-ID or generated by RequestIDWithLogging.
*/
package api
