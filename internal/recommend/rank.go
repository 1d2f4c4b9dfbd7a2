// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package recommend

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tomtom215/retailrec/internal/recommend/algorithms"
)

// profile is the view of one customer that the rankers score against.
// Evaluation builds profiles with a held-out purchase removed.
type profile struct {
	customer string

	// history is the set of purchased product columns.
	history []int

	// factor is the customer's latent vector, nil without embeddings.
	factor []float64
}

// profile returns the live profile of a customer in g.
func (g *Generation) profile(customerID string) (profile, error) {
	c, ok := g.Matrix.CustomerIndex(customerID)
	if !ok {
		return profile{}, fmt.Errorf("customer %q: %w", customerID, ErrNotFound)
	}

	p := profile{customer: customerID}
	for _, cell := range g.Matrix.Rows[c] {
		p.history = append(p.history, cell.Product)
	}
	if g.Embeddings != nil {
		p.factor = g.Embeddings.Customer[c]
	}
	return p, nil
}

// purchased returns the history as a lookup set.
func (p profile) purchased() map[int]struct{} {
	set := make(map[int]struct{}, len(p.history))
	for _, idx := range p.history {
		set[idx] = struct{}{}
	}
	return set
}

// rank dispatches to the ranker for mode. degraded reports whether a
// hybrid answer came from a single sub-model.
func (g *Generation) rank(p profile, n int, mode Mode) (items []ScoredProduct, degraded bool, err error) {
	switch mode {
	case ModeCollaborative:
		items, err = g.rankCollaborative(p, n)
		return items, false, err
	case ModeContent:
		items, err = g.rankContent(p, n)
		return items, false, err
	case ModeHybrid:
		return g.rankHybrid(p, n)
	default:
		return nil, false, fmt.Errorf("%w: %d", ErrInvalidMode, int(mode))
	}
}

// rankCollaborative scores every product the customer has not bought by
// dot(customerFactor, productFactor).
func (g *Generation) rankCollaborative(p profile, n int) ([]ScoredProduct, error) {
	if g.Embeddings == nil || p.factor == nil {
		return nil, fmt.Errorf("collaborative model for %q: %w", p.customer, ErrInsufficientData)
	}

	seen := p.purchased()
	scores := make([]float64, len(g.Matrix.ProductIDs))
	for i, y := range g.Embeddings.Product {
		if _, ok := seen[i]; ok {
			continue
		}
		scores[i] = algorithms.Dot(p.factor, y)
	}
	return g.topN(scores, seen, n), nil
}

// rankContent scores every product the customer has not bought by its
// mean similarity to the products they did buy.
func (g *Generation) rankContent(p profile, n int) ([]ScoredProduct, error) {
	if len(p.history) == 0 {
		return nil, fmt.Errorf("customer %q: %w", p.customer, ErrNoHistory)
	}

	seen := p.purchased()
	scores := make([]float64, len(g.Matrix.ProductIDs))
	for _, h := range p.history {
		row := g.Similarity.Values[h]
		for i := range scores {
			scores[i] += row[i]
		}
	}
	inv := 1.0 / float64(len(p.history))
	for i := range scores {
		scores[i] *= inv
	}
	return g.topN(scores, seen, n), nil
}

// rankHybrid blends min-max normalized pools of the top 2n collaborative
// and top 2n content candidates.
func (g *Generation) rankHybrid(p profile, n int) ([]ScoredProduct, bool, error) {
	collab, collabErr := g.rankCollaborative(p, 2*n)
	content, contentErr := g.rankContent(p, 2*n)

	switch {
	case collabErr != nil && contentErr != nil:
		if errors.Is(contentErr, ErrNoHistory) {
			return nil, false, contentErr
		}
		return nil, false, collabErr
	case collabErr != nil && !isRecoverable(collabErr):
		return nil, false, collabErr
	case contentErr != nil && !isRecoverable(contentErr):
		return nil, false, contentErr
	}
	degraded := collabErr != nil || contentErr != nil

	w := g.Weights
	blended := make(map[string]float64, len(collab)+len(content))
	for id, s := range normalizePool(collab) {
		blended[id] += w.Collaborative * s
	}
	for id, s := range normalizePool(content) {
		blended[id] += w.Content * s
	}

	items := make([]ScoredProduct, 0, len(blended))
	for id, s := range blended {
		items = append(items, ScoredProduct{ProductID: id, Score: s})
	}
	sortScored(items)
	if len(items) > n {
		items = items[:n]
	}
	return items, degraded, nil
}

// normalizePool min-max scales a candidate pool to [0, 1]. A pool whose
// scores are all equal maps every member to 1.
func normalizePool(items []ScoredProduct) map[string]float64 {
	out := make(map[string]float64, len(items))
	if len(items) == 0 {
		return out
	}

	lo, hi := items[0].Score, items[0].Score
	for _, it := range items[1:] {
		if it.Score < lo {
			lo = it.Score
		}
		if it.Score > hi {
			hi = it.Score
		}
	}

	span := hi - lo
	for _, it := range items {
		if span == 0 {
			out[it.ProductID] = 1
			continue
		}
		out[it.ProductID] = (it.Score - lo) / span
	}
	return out
}

// topN returns the n best-scoring product columns not in exclude.
func (g *Generation) topN(scores []float64, exclude map[int]struct{}, n int) []ScoredProduct {
	items := make([]ScoredProduct, 0, len(scores))
	for i, s := range scores {
		if _, ok := exclude[i]; ok {
			continue
		}
		items = append(items, ScoredProduct{ProductID: g.Matrix.ProductIDs[i], Score: s})
	}
	sortScored(items)
	if n >= 0 && len(items) > n {
		items = items[:n]
	}
	return items
}

// sortScored orders by descending score, then ascending product id.
func sortScored(items []ScoredProduct) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].ProductID < items[j].ProductID
	})
}

// similarProducts returns the n most similar other products.
func (g *Generation) similarProducts(productID string, n int) ([]ScoredProduct, error) {
	idx, ok := g.Matrix.ProductIndex(productID)
	if !ok {
		return nil, fmt.Errorf("product %q: %w", productID, ErrNotFound)
	}
	self := map[int]struct{}{idx: {}}
	return g.topN(g.Similarity.Values[idx], self, n), nil
}
