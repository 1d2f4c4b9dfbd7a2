// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

// Package catalog supplies the product catalog, customer list, and
// purchase transactions that a training run is built from.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/retailrec/internal/metrics"
	"github.com/tomtom215/retailrec/internal/recommend"
	"github.com/tomtom215/retailrec/internal/validation"
)

// Source is a backend holding retail data.
type Source interface {
	Products(ctx context.Context) ([]recommend.Product, error)
	Customers(ctx context.Context) ([]string, error)
	Transactions(ctx context.Context) ([]recommend.Transaction, error)
}

// Loader reads a consistent snapshot from a Source, validating every row.
// It implements recommend.DataSource.
type Loader struct {
	source Source
	name   string
	logger zerolog.Logger
}

// NewLoader wraps src. name labels metrics and logs (e.g., "duckdb").
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewLoader(src Source, name string, logger zerolog.Logger) *Loader {
	return &Loader{
		source: src,
		name:   name,
		logger: logger.With().Str("component", "catalog").Str("source", name).Logger(),
	}
}

// Snapshot loads products, customers, and transactions. Rows that fail
// validation are dropped and counted; products with a duplicated id keep
// the first occurrence.
func (l *Loader) Snapshot(ctx context.Context) (recommend.Snapshot, error) {
	start := time.Now()

	products, err := l.source.Products(ctx)
	if err != nil {
		return recommend.Snapshot{}, fmt.Errorf("load products: %w", err)
	}
	customers, err := l.source.Customers(ctx)
	if err != nil {
		return recommend.Snapshot{}, fmt.Errorf("load customers: %w", err)
	}
	transactions, err := l.source.Transactions(ctx)
	if err != nil {
		return recommend.Snapshot{}, fmt.Errorf("load transactions: %w", err)
	}

	snap := recommend.Snapshot{
		Products:     make([]recommend.Product, 0, len(products)),
		Customers:    make([]string, 0, len(customers)),
		Transactions: make([]recommend.Transaction, 0, len(transactions)),
	}

	rejectedProducts := 0
	seen := make(map[string]struct{}, len(products))
	for i := range products {
		p := &products[i]
		if verr := validation.ValidateStruct(p); verr != nil {
			rejectedProducts++
			l.logger.Debug().Str("product_id", p.ID).Str("reason", verr.Error()).Msg("rejected product")
			continue
		}
		if _, dup := seen[p.ID]; dup {
			rejectedProducts++
			continue
		}
		seen[p.ID] = struct{}{}
		snap.Products = append(snap.Products, *p)
	}

	for _, c := range customers {
		if c != "" {
			snap.Customers = append(snap.Customers, c)
		}
	}

	rejectedTransactions := 0
	for i := range transactions {
		tx := &transactions[i]
		if verr := validation.ValidateStruct(tx); verr != nil {
			rejectedTransactions++
			l.logger.Debug().
				Str("customer_id", tx.CustomerID).
				Str("product_id", tx.ProductID).
				Str("reason", verr.Error()).
				Msg("rejected transaction")
			continue
		}
		snap.Transactions = append(snap.Transactions, *tx)
	}

	duration := time.Since(start)
	metrics.RecordCatalogLoad(l.name, duration, rejectedProducts, rejectedTransactions)

	l.logger.Info().
		Int("products", len(snap.Products)).
		Int("customers", len(snap.Customers)).
		Int("transactions", len(snap.Transactions)).
		Int("rejected_products", rejectedProducts).
		Int("rejected_transactions", rejectedTransactions).
		Dur("duration", duration).
		Msg("catalog snapshot loaded")

	return snap, nil
}
