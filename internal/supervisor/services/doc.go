// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

/*
Package services provides suture.Service wrappers for the long-running parts
of the process.

Each wrapper translates a component's lifecycle into suture's
Serve(ctx) error pattern and implements fmt.Stringer so supervisor logs name
the service.

TrainingService:
  - Trains on startup when no generation was restored
  - Retrains on a ticker (TRAIN_INTERVAL)
  - Accepts manual runs through Trigger, one queued at a time

HTTPServerService:
  - Wraps *http.Server with graceful shutdown

RouterService:
  - Runs a watermill message router, rebuilt on every restart
*/
package services
