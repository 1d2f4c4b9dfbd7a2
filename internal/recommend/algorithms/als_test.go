// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package algorithms

import (
	"context"
	"errors"
	"math"
	"testing"
)

// twoClusterRows returns a 4x4 matrix where customers 0,1 buy products 0,1
// and customers 2,3 buy products 2,3.
func twoClusterRows() [][]Entry {
	return [][]Entry{
		{{Index: 0, Value: 2}, {Index: 1, Value: 1}},
		{{Index: 0, Value: 1}},
		{{Index: 2, Value: 1}, {Index: 3, Value: 2}},
		{{Index: 3, Value: 1}},
	}
}

func TestNewALS(t *testing.T) {
	tests := []struct {
		name   string
		cfg    ALSConfig
		verify func(t *testing.T, a *ALS)
	}{
		{
			name: "applies defaults for zero config",
			cfg:  ALSConfig{},
			verify: func(t *testing.T, a *ALS) {
				if a.config.NumFactors != 50 {
					t.Errorf("NumFactors = %d, want 50", a.config.NumFactors)
				}
				if a.config.NumIterations != 50 {
					t.Errorf("NumIterations = %d, want 50", a.config.NumIterations)
				}
				if a.config.NumWorkers != 4 {
					t.Errorf("NumWorkers = %d, want 4", a.config.NumWorkers)
				}
			},
		},
		{
			name: "uses provided config values",
			cfg: ALSConfig{
				NumFactors:     8,
				NumIterations:  20,
				Regularization: 0.05,
				Alpha:          40.0,
			},
			verify: func(t *testing.T, a *ALS) {
				if a.config.NumFactors != 8 {
					t.Errorf("NumFactors = %d, want 8", a.config.NumFactors)
				}
				if a.config.Alpha != 40.0 {
					t.Errorf("Alpha = %f, want 40", a.config.Alpha)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewALS(tt.cfg)
			if a == nil {
				t.Fatal("NewALS() returned nil")
			}
			tt.verify(t, a)
		})
	}
}

func TestALS_FitRejectsEmpty(t *testing.T) {
	tests := []struct {
		name    string
		rows    [][]Entry
		numCols int
	}{
		{name: "no rows", rows: nil, numCols: 3},
		{name: "no columns", rows: [][]Entry{{}}, numCols: 0},
		{name: "no observed entries", rows: [][]Entry{{}, {}}, numCols: 2},
		{name: "only zero ratings", rows: [][]Entry{{{Index: 0, Value: 0}}}, numCols: 1},
	}

	a := NewALS(ALSConfig{NumFactors: 4, NumIterations: 2})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Fit(context.Background(), tt.rows, tt.numCols)
			if !errors.Is(err, ErrEmptyMatrix) {
				t.Errorf("Fit() error = %v, want ErrEmptyMatrix", err)
			}
		})
	}
}

func TestALS_FitShapes(t *testing.T) {
	a := NewALS(ALSConfig{NumFactors: 3, NumIterations: 5, Seed: 42})

	f, err := a.Fit(context.Background(), twoClusterRows(), 4)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if len(f.User) != 4 || len(f.Item) != 4 {
		t.Fatalf("factor rows = %d/%d, want 4/4", len(f.User), len(f.Item))
	}
	for u, row := range f.User {
		if len(row) != 3 {
			t.Errorf("User[%d] len = %d, want 3", u, len(row))
		}
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Errorf("User[%d] contains non-finite value %v", u, v)
			}
		}
	}
}

func TestALS_FitDeterministic(t *testing.T) {
	cfg := ALSConfig{NumFactors: 4, NumIterations: 6, Seed: 7, NumWorkers: 3}

	f1, err := NewALS(cfg).Fit(context.Background(), twoClusterRows(), 4)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	f2, err := NewALS(cfg).Fit(context.Background(), twoClusterRows(), 4)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	for u := range f1.User {
		for k := range f1.User[u] {
			if f1.User[u][k] != f2.User[u][k] {
				t.Fatalf("User[%d][%d] differs between runs: %v vs %v", u, k, f1.User[u][k], f2.User[u][k])
			}
		}
	}
}

func TestALS_FitLearnsClusters(t *testing.T) {
	a := NewALS(ALSConfig{NumFactors: 2, NumIterations: 15, Regularization: 0.01, Alpha: 10, Seed: 42})

	f, err := a.Fit(context.Background(), twoClusterRows(), 4)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	// Customer 1 only bought product 0; product 1 shares its cluster.
	inCluster := Dot(f.User[1], f.Item[1])
	outCluster := Dot(f.User[1], f.Item[2])
	if inCluster <= outCluster {
		t.Errorf("score(1,1) = %f, want > score(1,2) = %f", inCluster, outCluster)
	}
}

func TestALS_FitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewALS(ALSConfig{NumFactors: 2}).Fit(ctx, twoClusterRows(), 4)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Fit() error = %v, want context.Canceled", err)
	}
}

func TestFolder_FoldIn(t *testing.T) {
	a := NewALS(ALSConfig{NumFactors: 2, NumIterations: 15, Alpha: 10, Seed: 42})
	f, err := a.Fit(context.Background(), twoClusterRows(), 4)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	folder := a.NewFolder(f.Item)

	t.Run("empty history yields zero vector", func(t *testing.T) {
		x := folder.FoldIn(nil)
		if len(x) != 2 {
			t.Fatalf("len = %d, want 2", len(x))
		}
		for _, v := range x {
			if v != 0 {
				t.Errorf("FoldIn(nil) = %v, want zeros", x)
				break
			}
		}
	})

	t.Run("folded vector prefers the history cluster", func(t *testing.T) {
		x := folder.FoldIn([]Entry{{Index: 2, Value: 1}})
		if Dot(x, f.Item[3]) <= Dot(x, f.Item[0]) {
			t.Errorf("fold-in of product 2 should score product 3 above product 0")
		}
	})

	t.Run("ignores out of range entries", func(t *testing.T) {
		x := folder.FoldIn([]Entry{{Index: 99, Value: 1}, {Index: -1, Value: 1}})
		for _, v := range x {
			if v != 0 {
				t.Errorf("FoldIn(out of range) = %v, want zeros", x)
				break
			}
		}
	})
}

func TestSolveLinearSystem(t *testing.T) {
	// [4 2; 2 3] x = [2; 1] => x = [0.5; 0]
	A := [][]float64{{4, 2}, {2, 3}}
	b := []float64{2, 1}

	x := solveLinearSystem(A, b)
	if math.Abs(x[0]-0.5) > 1e-9 || math.Abs(x[1]) > 1e-9 {
		t.Errorf("solveLinearSystem() = %v, want [0.5 0]", x)
	}
}

func TestDot(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{name: "simple", a: []float64{1, 2, 3}, b: []float64{4, 5, 6}, want: 32},
		{name: "mismatched length", a: []float64{1}, b: []float64{1, 2}, want: 0},
		{name: "empty", a: nil, b: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Dot(tt.a, tt.b); got != tt.want {
				t.Errorf("Dot() = %f, want %f", got, tt.want)
			}
		})
	}
}
