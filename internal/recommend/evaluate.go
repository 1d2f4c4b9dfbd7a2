// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package recommend

import (
	"context"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/retailrec/internal/metrics"
	"github.com/tomtom215/retailrec/internal/recommend/algorithms"
)

// trialTotals accumulates precision and recall sums per mode.
type trialTotals struct {
	precision [3]float64
	recall    [3]float64
	trials    int
}

// Evaluate runs leave-one-out over up to sampleSize customers with at
// least two purchases. Each purchase of a sampled customer is held out in
// turn: the customer's factor is refit without it and it is removed from
// the content history, then every mode is asked for the top K. A
// non-positive sampleSize uses the configured default.
func (e *Engine) Evaluate(ctx context.Context, sampleSize int) (EvaluationReport, error) {
	g := e.current.Load()
	if g == nil {
		return EvaluationReport{}, ErrNotReady
	}
	if sampleSize <= 0 {
		sampleSize = e.config.Evaluation.SampleSize
	}

	metrics.EvaluationRuns.Inc()
	report, err := g.evaluate(ctx, sampleSize, e.config.Evaluation, e.config.Seed)
	if err != nil {
		return EvaluationReport{}, err
	}

	e.logger.Info().
		Str("generation", g.ID).
		Int("customers", report.SampledCustomers).
		Int("trials", report.Models[ModeHybrid.String()].Trials).
		Float64("hybrid_f1", report.Models[ModeHybrid.String()].F1).
		Msg("evaluation complete")
	return report, nil
}

func (g *Generation) evaluate(ctx context.Context, sampleSize int, cfg EvaluationConfig, seed int64) (EvaluationReport, error) {
	report := EvaluationReport{
		GenerationID: g.ID,
		K:            cfg.K,
		Models:       make(map[string]ModelMetrics, len(Modes)),
	}
	for _, m := range Modes {
		report.Models[m.String()] = ModelMetrics{}
	}

	sample := g.sampleCustomers(sampleSize, seed)
	report.SampledCustomers = len(sample)
	if len(sample) == 0 {
		return report, nil
	}

	var folder *algorithms.Folder
	if emb := g.Embeddings; emb != nil {
		folder = algorithms.NewALS(algorithms.ALSConfig{
			NumFactors:     emb.Factors,
			Regularization: emb.Regularization,
			Alpha:          emb.Alpha,
		}).NewFolder(emb.Product)
	}

	// Per-customer totals are summed in sample order so the report does
	// not depend on goroutine scheduling.
	perCustomer := make([]trialTotals, len(sample))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.Workers)
	for i, c := range sample {
		i, c := i, c
		eg.Go(func() error {
			if algorithms.ContextCancelled(egctx) {
				return egctx.Err()
			}
			perCustomer[i] = g.evaluateCustomer(c, cfg.K, folder)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return EvaluationReport{}, err
	}

	var total trialTotals
	for _, t := range perCustomer {
		total.trials += t.trials
		for m := range total.precision {
			total.precision[m] += t.precision[m]
			total.recall[m] += t.recall[m]
		}
	}
	if total.trials == 0 {
		return report, nil
	}

	for _, m := range Modes {
		p := total.precision[m] / float64(total.trials)
		r := total.recall[m] / float64(total.trials)
		report.Models[m.String()] = ModelMetrics{
			Precision: p,
			Recall:    r,
			F1:        f1(p, r),
			Trials:    total.trials,
		}
	}
	return report, nil
}

// sampleCustomers deterministically picks up to n customers with at least
// two purchases.
func (g *Generation) sampleCustomers(n int, seed int64) []int {
	eligible := make([]int, 0, len(g.Matrix.Rows))
	for c, row := range g.Matrix.Rows {
		if len(row) >= 2 {
			eligible = append(eligible, c)
		}
	}

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // sampling, not security sensitive
	rng.Shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})
	if len(eligible) > n {
		eligible = eligible[:n]
	}
	return eligible
}

// evaluateCustomer runs one trial per purchase of customer c.
func (g *Generation) evaluateCustomer(c, k int, folder *algorithms.Folder) trialTotals {
	var t trialTotals
	row := g.Matrix.Rows[c]

	for held := range row {
		target := g.Matrix.ProductIDs[row[held].Product]
		p := g.maskedProfile(c, held, folder)

		for _, m := range Modes {
			items, _, err := g.rank(p, k, m)
			if err != nil || len(items) == 0 {
				continue
			}
			hits := 0
			for _, it := range items {
				if it.ProductID == target {
					hits++
				}
			}
			t.precision[m] += float64(hits) / float64(len(items))
			t.recall[m] += float64(hits)
		}
		t.trials++
	}
	return t
}

// maskedProfile returns customer c's profile with cell held removed from
// both the purchase history and the latent factor. Product factors are not
// refit.
func (g *Generation) maskedProfile(c, held int, folder *algorithms.Folder) profile {
	row := g.Matrix.Rows[c]
	p := profile{
		customer: g.Matrix.CustomerIDs[c],
		history:  make([]int, 0, len(row)-1),
	}
	remaining := make([]algorithms.Entry, 0, len(row)-1)
	for i, cell := range row {
		if i == held {
			continue
		}
		p.history = append(p.history, cell.Product)
		remaining = append(remaining, algorithms.Entry{Index: cell.Product, Value: cell.Rating})
	}
	if folder != nil {
		p.factor = folder.FoldIn(remaining)
	}
	return p
}

// f1 is the harmonic mean of precision and recall, 0 when both are 0.
func f1(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}
