// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

/*
Package supervisor provides process supervision using suture v4.

The tree isolates failures by layer:

	RootSupervisor ("retailrec")
	├── TrainingSupervisor ("training-layer")
	│   └── TrainingService
	├── EventsSupervisor ("events-layer")
	│   └── RouterService (if EVENTS_ENABLED)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService (if HTTP_ENABLED)

Supervisor events (restarts, backoff, timeouts) are logged through
sutureslog, which takes a *slog.Logger; logging.NewSlogLogger bridges it to
the zerolog logger the rest of the process uses.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logger), supervisor.DefaultTreeConfig())
	if err != nil {
		return err
	}
	tree.AddTrainingService(services.NewTrainingService(engine, cfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	errCh := tree.ServeBackground(ctx)
	<-ctx.Done()
	<-errCh
*/
package supervisor
