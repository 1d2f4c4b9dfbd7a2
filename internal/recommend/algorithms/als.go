// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package algorithms

import (
	"context"
	"errors"
	"math/rand"
	"sync"
)

// ErrEmptyMatrix is returned when Fit receives a matrix with no rows,
// no columns, or no observed entries.
var ErrEmptyMatrix = errors.New("interaction matrix has no observed entries")

// Entry is one observed cell of a sparse row: a column index and its rating.
type Entry struct {
	Index int
	Value float64
}

// ALSConfig contains configuration for the ALS algorithm.
type ALSConfig struct {
	// NumFactors is the dimension of the latent factor vectors.
	NumFactors int

	// NumIterations is the number of alternating sweeps.
	NumIterations int

	// Regularization is the L2 regularization parameter.
	Regularization float64

	// Alpha scales the confidence transformation for implicit feedback.
	// c = 1 + alpha * r, where r is the implicit rating.
	Alpha float64

	// NumWorkers is the number of parallel workers per sweep.
	// If <= 0, defaults to 4.
	NumWorkers int

	// Seed drives the initial factor values.
	Seed int64
}

// DefaultALSConfig returns default ALS configuration.
func DefaultALSConfig() ALSConfig {
	return ALSConfig{
		NumFactors:     50,
		NumIterations:  50,
		Regularization: 0.01,
		Alpha:          1.0,
		NumWorkers:     4,
		Seed:           42,
	}
}

// Factors holds the result of one factorization run.
type Factors struct {
	// User is the customer factor matrix (rows x NumFactors).
	User [][]float64

	// Item is the product factor matrix (cols x NumFactors).
	Item [][]float64
}

// ALS implements Alternating Least Squares for implicit feedback.
// Reference: "Collaborative Filtering for Implicit Feedback Datasets" (Hu, Koren, Volinsky, 2008)
//
// The objective minimizes:
// sum_{u,i} c_ui * (p_ui - x_u' * y_i)^2 + lambda * (||x_u||^2 + ||y_i||^2)
//
// where p_ui = 1 if the customer bought product i, 0 otherwise,
// and c_ui = 1 + alpha * r_ui is the confidence.
//
// An ALS value holds only configuration, so one instance may run several
// fits concurrently.
type ALS struct {
	config ALSConfig
}

// NewALS creates a new ALS algorithm with the given configuration.
func NewALS(cfg ALSConfig) *ALS {
	def := DefaultALSConfig()
	if cfg.NumFactors <= 0 {
		cfg.NumFactors = def.NumFactors
	}
	if cfg.NumIterations <= 0 {
		cfg.NumIterations = def.NumIterations
	}
	if cfg.Regularization < 0 {
		cfg.Regularization = def.Regularization
	}
	if cfg.Alpha < 0 {
		cfg.Alpha = def.Alpha
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = def.NumWorkers
	}

	return &ALS{config: cfg}
}

// Config returns the effective configuration.
func (a *ALS) Config() ALSConfig {
	return a.config
}

// Fit factorizes the sparse rating rows (one row per customer, columns in
// [0, numCols)) into customer and product factors.
//
//nolint:gocritic // rangeValCopy is acceptable for clarity
func (a *ALS) Fit(ctx context.Context, rows [][]Entry, numCols int) (*Factors, error) {
	numRows := len(rows)
	if numRows == 0 || numCols == 0 {
		return nil, ErrEmptyMatrix
	}

	// Confidence rows and their transpose for column access.
	userItems := make([][]Entry, numRows)
	itemUsers := make([][]Entry, numCols)
	observed := 0
	for u, row := range rows {
		for _, e := range row {
			if e.Value <= 0 || e.Index < 0 || e.Index >= numCols {
				continue
			}
			conf := 1.0 + a.config.Alpha*e.Value
			userItems[u] = append(userItems[u], Entry{Index: e.Index, Value: conf})
			itemUsers[e.Index] = append(itemUsers[e.Index], Entry{Index: u, Value: conf})
			observed++
		}
	}
	if observed == 0 {
		return nil, ErrEmptyMatrix
	}

	if ContextCancelled(ctx) {
		return nil, ctx.Err()
	}

	numFactors := a.config.NumFactors
	rng := rand.New(rand.NewSource(a.config.Seed)) //nolint:gosec // deterministic initialization, not security sensitive
	factors := &Factors{
		User: randomMatrix(rng, numRows, numFactors),
		Item: randomMatrix(rng, numCols, numFactors),
	}

	lambda := a.config.Regularization
	for iter := 0; iter < a.config.NumIterations; iter++ {
		if ContextCancelled(ctx) {
			return nil, ctx.Err()
		}

		// Fix Y, solve for X
		a.sweep(factors.User, factors.Item, userItems, lambda)

		if ContextCancelled(ctx) {
			return nil, ctx.Err()
		}

		// Fix X, solve for Y
		a.sweep(factors.Item, factors.User, itemUsers, lambda)
	}

	return factors, nil
}

// randomMatrix returns rows x cols values drawn from N(0, 0.01^2).
func randomMatrix(rng *rand.Rand, rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for r := range m {
		m[r] = make([]float64, cols)
		for f := range m[r] {
			m[r][f] = 0.01 * rng.NormFloat64()
		}
	}
	return m
}

// sweep recomputes every row of target with fixed held constant.
// Rows are split into contiguous chunks, one goroutine per chunk.
func (a *ALS) sweep(target, fixed [][]float64, confidence [][]Entry, lambda float64) {
	numFactors := a.config.NumFactors
	FtF := gramian(fixed, numFactors)

	n := len(target)
	var wg sync.WaitGroup
	chunkSize := (n + a.config.NumWorkers - 1) / a.config.NumWorkers

	for w := 0; w < a.config.NumWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			break
		}

		wg.Add(1)
		go func(rStart, rEnd int) {
			defer wg.Done()

			for r := rStart; r < rEnd; r++ {
				target[r] = solveRow(fixed, confidence[r], FtF, numFactors, lambda)
			}
		}(start, end)
	}

	wg.Wait()
}

// solveRow computes one factor row from its confidence entries.
//
//	A = F'F + F'(C - I)F + lambda*I
//	b = F' C p
//
//nolint:gocritic // FtF follows standard linear algebra notation
func solveRow(fixed [][]float64, entries []Entry, FtF [][]float64, numFactors int, lambda float64) []float64 {
	A := make([][]float64, numFactors)
	for f := range A {
		A[f] = make([]float64, numFactors)
		copy(A[f], FtF[f])
		A[f][f] += lambda
	}

	b := make([]float64, numFactors)
	for _, e := range entries {
		y := fixed[e.Index]
		cMinus1 := e.Value - 1.0

		for f1 := 0; f1 < numFactors; f1++ {
			for f2 := f1; f2 < numFactors; f2++ {
				delta := cMinus1 * y[f1] * y[f2]
				A[f1][f2] += delta
				if f1 != f2 {
					A[f2][f1] += delta
				}
			}
			b[f1] += e.Value * y[f1]
		}
	}

	return solveLinearSystem(A, b)
}

// Folder recomputes a single customer factor against fixed product factors.
// It lets callers score a customer whose history differs from the one the
// model was trained on without refitting the whole matrix.
type Folder struct {
	alpha  float64
	lambda float64
	k      int
	item   [][]float64
	gram   [][]float64
}

// NewFolder precomputes Y'Y for the given product factors.
func (a *ALS) NewFolder(itemFactors [][]float64) *Folder {
	return &Folder{
		alpha:  a.config.Alpha,
		lambda: a.config.Regularization,
		k:      a.config.NumFactors,
		item:   itemFactors,
		gram:   gramian(itemFactors, a.config.NumFactors),
	}
}

// FoldIn solves the customer factor for the given rating history.
// An empty history yields the zero vector.
func (fo *Folder) FoldIn(history []Entry) []float64 {
	entries := make([]Entry, 0, len(history))
	for _, e := range history {
		if e.Value <= 0 || e.Index < 0 || e.Index >= len(fo.item) {
			continue
		}
		entries = append(entries, Entry{Index: e.Index, Value: 1.0 + fo.alpha*e.Value})
	}
	if len(entries) == 0 {
		return make([]float64, fo.k)
	}
	return solveRow(fo.item, entries, fo.gram, fo.k, fo.lambda)
}
