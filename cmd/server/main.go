// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

// Package main is the entry point for the retailrec server.
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, config file and environment (koanf v2)
//  2. Catalog: DuckDB or BadgerDB source, plus optional file imports
//  3. Engine: recommendation engine with its generation store
//  4. Events: lifecycle event publisher and audit router (optional)
//  5. Restore: the last persisted generation, if any
//  6. Supervisor tree: training scheduler, event router, ops HTTP server
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context; the supervisor stops every
// service, the HTTP server drains in-flight requests, and the catalog and
// event publisher are closed.
//
// # Example Usage
//
//	export CATALOG_PATH=/data/retail.duckdb
//	export CATALOG_IMPORT_TRANSACTIONS=/data/sales.csv
//	export STORE_PATH=/data/generations
//	./retailrec
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/retailrec/internal/api"
	"github.com/tomtom215/retailrec/internal/config"
	"github.com/tomtom215/retailrec/internal/logging"
	"github.com/tomtom215/retailrec/internal/recommend"
	"github.com/tomtom215/retailrec/internal/recommend/storage"
	"github.com/tomtom215/retailrec/internal/supervisor"
	"github.com/tomtom215/retailrec/internal/supervisor/services"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logger := logging.Logger()

	logging.Info().
		Str("catalog_driver", cfg.Catalog.Driver).
		Str("store_path", cfg.Store.Path).
		Bool("events_enabled", cfg.Events.Enabled).
		Bool("http_enabled", cfg.Server.Enabled).
		Msg("Starting retailrec with supervisor tree")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source, closeCatalog, err := initCatalog(ctx, &cfg.Catalog, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize catalog")
	}
	defer closeCatalog()

	engine, err := recommend.NewEngine(cfg.EngineConfig(), logging.WithComponent("recommend"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}
	engine.SetDataSource(source)

	if cfg.Store.Path != "" {
		store, err := storage.NewStore(cfg.Store.Path, cfg.Store.KeepGenerations, logging.WithComponent("store"))
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to open generation store")
		}
		engine.SetStore(store)
	}

	evts, err := initEvents(&cfg.Events, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize events")
	}
	if evts != nil {
		engine.SetEventSink(evts.Publisher)
		defer evts.Close()
	}

	if err := engine.Restore(ctx); err != nil {
		logging.Info().Err(err).Msg("No persisted generation restored, engine is untrained")
	}

	tree, err := supervisor.NewSupervisorTree(
		logging.NewSlogLogger(logging.WithComponent("supervisor")),
		supervisor.TreeConfig{
			FailureThreshold: 5,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	training := services.NewTrainingService(engine, services.TrainingServiceConfig{
		TrainOnStartup: cfg.Training.OnStartup,
		TrainInterval:  cfg.Training.Interval,
	}, logger)
	tree.AddTrainingService(training)

	if evts != nil {
		tree.AddEventService(services.NewRouterService(evts.NewRouter, "audit-router"))
	}

	if cfg.Server.Enabled {
		handler := api.NewHandler(engine, training, cfg.Server.Timeout)
		server := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:           api.NewRouter(handler, logging.WithComponent("api")),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       cfg.Server.Timeout,
			// Evaluation may run for the full handler timeout.
			WriteTimeout: cfg.Server.Timeout + 5*time.Second,
			IdleTimeout:  60 * time.Second,
		}
		tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second).WithLogger(logger))
		logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().Msg("Application stopped gracefully")
}
