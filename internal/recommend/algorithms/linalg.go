// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package algorithms

import (
	"context"
	"math"
)

// Dot returns the inner product of two equal-length vectors.
// Vectors of different length score 0.
func Dot(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// gramian computes M'M for a row-major factor matrix.
//
//nolint:gocritic // M follows standard linear algebra notation
func gramian(M [][]float64, numFactors int) [][]float64 {
	G := make([][]float64, numFactors)
	for f := range G {
		G[f] = make([]float64, numFactors)
	}
	for _, row := range M {
		for f1 := 0; f1 < numFactors; f1++ {
			for f2 := f1; f2 < numFactors; f2++ {
				G[f1][f2] += row[f1] * row[f2]
			}
		}
	}
	for f1 := 0; f1 < numFactors; f1++ {
		for f2 := 0; f2 < f1; f2++ {
			G[f1][f2] = G[f2][f1]
		}
	}
	return G
}

// solveLinearSystem solves A*x = b using Cholesky decomposition.
// A must be symmetric; non-positive pivots are clamped so the solve never
// divides by zero.
//
//nolint:gocritic // A, L follow standard linear algebra notation
func solveLinearSystem(A [][]float64, b []float64) []float64 {
	n := len(b)

	// Cholesky decomposition: A = L * L'
	L := make([][]float64, n)
	for i := range L {
		L[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := A[i][j]
			for k := 0; k < j; k++ {
				sum -= L[i][k] * L[j][k]
			}

			if i == j {
				if sum <= 0 {
					sum = 1e-10
				}
				L[i][j] = math.Sqrt(sum)
			} else if L[j][j] != 0 {
				L[i][j] = sum / L[j][j]
			}
		}
	}

	// Forward substitution: L * z = b
	z := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := b[i]
		for j := 0; j < i; j++ {
			sum -= L[i][j] * z[j]
		}
		z[i] = sum / L[i][i]
	}

	// Back substitution: L' * x = z
	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := z[i]
		for j := i + 1; j < n; j++ {
			sum -= L[j][i] * x[j]
		}
		x[i] = sum / L[i][i]
	}

	return x
}

// ContextCancelled checks if the context has been canceled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
