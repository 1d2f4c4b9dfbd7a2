// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package recommend

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestSimilarityMatrix_Symmetric(t *testing.T) {
	t.Parallel()

	e := trainedEngine(t)
	g, _ := e.Current()

	sim := g.Similarity.Values
	for i := range sim {
		if math.Abs(sim[i][i]-1) > 1e-9 {
			t.Errorf("sim[%d][%d] = %f, want 1", i, i, sim[i][i])
		}
		for j := range sim {
			if sim[i][j] != sim[j][i] {
				t.Errorf("sim[%d][%d] = %f, sim[%d][%d] = %f", i, j, sim[i][j], j, i, sim[j][i])
			}
		}
	}
}

// withWeights returns a shallow copy of g blending with w.
func withWeights(g *Generation, w HybridWeights) *Generation {
	cp := *g
	cp.Weights = w
	return &cp
}

func TestRankHybrid_WeightExtremes(t *testing.T) {
	t.Parallel()

	e := trainedEngine(t)
	g, _ := e.Current()

	// n at least the candidate count makes both pools the whole shared
	// candidate set.
	const n = 10

	tests := []struct {
		name    string
		weights HybridWeights
		mode    Mode
	}{
		{"collaborative only", HybridWeights{Collaborative: 1, Content: 0}, ModeCollaborative},
		{"content only", HybridWeights{Collaborative: 0, Content: 1}, ModeContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := withWeights(g, tt.weights)
			for _, c := range []string{"C1", "C2", "C3", "C4", "C5"} {
				p, err := gw.profile(c)
				if err != nil {
					t.Fatalf("profile(%s) error = %v", c, err)
				}
				hybrid, _, err := gw.rank(p, n, ModeHybrid)
				if err != nil {
					t.Fatalf("rank(%s, hybrid) error = %v", c, err)
				}
				pure, _, err := gw.rank(p, n, tt.mode)
				if err != nil {
					t.Fatalf("rank(%s, %v) error = %v", c, tt.mode, err)
				}
				if !reflect.DeepEqual(ids(hybrid), ids(pure)) {
					t.Errorf("customer %s: hybrid order %v, %v order %v", c, ids(hybrid), tt.mode, ids(pure))
				}
			}
		})
	}
}

func TestRankHybrid_BothFail(t *testing.T) {
	t.Parallel()

	e := trainedEngine(t)
	g, _ := e.Current()

	cp := *g
	cp.Embeddings = nil

	p, err := cp.profile("C6")
	if err != nil {
		t.Fatalf("profile(C6) error = %v", err)
	}
	_, _, err = cp.rank(p, 3, ModeHybrid)
	if !errors.Is(err, ErrNoHistory) {
		t.Errorf("rank() error = %v, want ErrNoHistory", err)
	}
}

func TestNormalizePool(t *testing.T) {
	tests := []struct {
		name     string
		items    []ScoredProduct
		expected map[string]float64
	}{
		{
			name:     "empty pool",
			items:    nil,
			expected: map[string]float64{},
		},
		{
			name: "scales to unit range",
			items: []ScoredProduct{
				{ProductID: "a", Score: 4},
				{ProductID: "b", Score: 2},
				{ProductID: "c", Score: 3},
			},
			expected: map[string]float64{"a": 1, "b": 0, "c": 0.5},
		},
		{
			name: "negative scores",
			items: []ScoredProduct{
				{ProductID: "a", Score: -1},
				{ProductID: "b", Score: -3},
			},
			expected: map[string]float64{"a": 1, "b": 0},
		},
		{
			name: "equal scores map to one",
			items: []ScoredProduct{
				{ProductID: "a", Score: 0.2},
				{ProductID: "b", Score: 0.2},
			},
			expected: map[string]float64{"a": 1, "b": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizePool(tt.items)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("normalizePool() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSortScored_TiesByID(t *testing.T) {
	items := []ScoredProduct{
		{ProductID: "b", Score: 1},
		{ProductID: "c", Score: 2},
		{ProductID: "a", Score: 1},
	}
	sortScored(items)

	want := []string{"c", "a", "b"}
	if got := ids(items); !reflect.DeepEqual(got, want) {
		t.Errorf("sortScored() order = %v, want %v", got, want)
	}
}
