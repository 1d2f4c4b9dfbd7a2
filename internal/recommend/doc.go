// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

// Package recommend implements a hybrid product recommendation engine for
// retail purchase data.
//
// # Architecture
//
// A training run turns a Snapshot (catalog, customers, transactions) into
// an immutable Generation:
//
//   - Interaction matrix: one implicit rating per (customer, product) pair,
//     ln(1 + quantity) * (1 + total / 1000) summed over transactions
//   - Collaborative model: implicit-feedback ALS latent factors
//   - Content model: TF-IDF cosine similarity over product name and category
//   - Hybrid blend: min-max normalized collaborative and content pools,
//     combined with configurable weights
//
// # Lifecycle
//
// The Engine starts Untrained. Train builds a complete generation off to
// the side and installs it with a single atomic pointer swap, so readers
// always see either the old or the new generation and never a mix. A
// failed run leaves the previous generation serving. Restore installs the
// generation last saved by the GenerationStore.
//
// # Degraded answers
//
// A hybrid request whose customer cannot be scored by one sub-model is
// answered from the other and flagged Degraded. The collaborative model
// is absent when the matrix is too small to factorize; the content model
// cannot score customers without purchases.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), logger)
//	engine.SetDataSource(src)
//	engine.SetStore(store)
//
//	if _, err := engine.Train(ctx); err != nil {
//	    return err
//	}
//	res, err := engine.Recommend("C1", 5, recommend.ModeHybrid)
//
// # Thread Safety
//
// All Engine methods are safe for concurrent use. Request methods never
// block on training; at most one training run is in flight and concurrent
// calls to Train fail fast with ErrTrainingInProgress.
package recommend
