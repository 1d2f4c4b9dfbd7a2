// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/retailrec/internal/catalog"
	"github.com/tomtom215/retailrec/internal/config"
)

// initCatalog opens the configured catalog backend, runs any configured
// file imports, and returns the validating loader the engine reads from.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initCatalog(ctx context.Context, cfg *config.CatalogConfig, logger zerolog.Logger) (*catalog.Loader, func(), error) {
	path := cfg.Path
	if cfg.InMemory {
		path = ""
	}

	switch cfg.Driver {
	case "badger":
		src, err := catalog.OpenBadger(path, cfg.InMemory)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Str("path", path).Bool("in_memory", cfg.InMemory).Msg("BadgerDB catalog opened")
		return catalog.NewLoader(src, "badger", logger), closeWith(src.Close, logger), nil

	case "duckdb":
		src, err := catalog.OpenDuckDB(ctx, catalog.DuckDBConfig{
			Path:      path,
			Threads:   cfg.Threads,
			MaxMemory: cfg.MaxMemory,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := importFiles(ctx, src, cfg, logger); err != nil {
			//nolint:errcheck // already failing
			src.Close()
			return nil, nil, err
		}
		logger.Info().Str("path", path).Msg("DuckDB catalog opened")
		return catalog.NewLoader(src, "duckdb", logger), closeWith(src.Close, logger), nil

	default:
		return nil, nil, fmt.Errorf("unknown catalog driver %q", cfg.Driver)
	}
}

// importFiles loads the configured files, products and customers before
// transactions.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func importFiles(ctx context.Context, src *catalog.DuckDBSource, cfg *config.CatalogConfig, logger zerolog.Logger) error {
	imports := []struct {
		table string
		path  string
	}{
		{catalog.TableProducts, cfg.ImportProducts},
		{catalog.TableCustomers, cfg.ImportCustomers},
		{catalog.TableTransactions, cfg.ImportTransactions},
	}

	for _, imp := range imports {
		if imp.path == "" {
			continue
		}
		n, err := src.Import(ctx, imp.table, imp.path)
		if err != nil {
			return err
		}
		logger.Info().Str("table", imp.table).Str("file", imp.path).Int64("rows", n).Msg("catalog import complete")
	}
	return nil
}

//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func closeWith(closeFn func() error, logger zerolog.Logger) func() {
	return func() {
		if err := closeFn(); err != nil {
			logger.Error().Err(err).Msg("Error closing catalog")
		}
	}
}
