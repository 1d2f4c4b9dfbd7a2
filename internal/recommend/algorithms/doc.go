// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

// Package algorithms implements the numeric kernels behind the hybrid
// product recommender.
//
// The package is a leaf: it works on dense indices and plain slices and
// knows nothing about customers, products, or generations. The recommend
// package maps identifiers to indices and calls in here.
//
// # Kernels
//
// Collaborative Filtering:
//   - ALS: implicit-feedback Alternating Least Squares (Hu, Koren, Volinsky)
//   - Folder: single-row fold-in against fixed product factors
//
// Content-Based Filtering:
//   - TFIDF: word unigram/bigram vectorizer with English stop words
//   - SimilarityMatrix: pairwise cosine over TF-IDF rows
//
// # Usage Example
//
//	als := algorithms.NewALS(algorithms.ALSConfig{
//	    NumFactors:     50,
//	    NumIterations:  15,
//	    Regularization: 0.01,
//	    Alpha:          1.0,
//	    Seed:           42,
//	})
//	factors, err := als.Fit(ctx, rows, numProducts)
//
//	vec := algorithms.NewTFIDF(algorithms.DefaultTFIDFConfig())
//	rows, err := vec.FitTransform(ctx, docs)
//	sim, err := vec.SimilarityMatrix(ctx, rows)
//
// # Thread Safety
//
// ALS holds configuration only and Fit allocates fresh factors per call.
// TFIDF stores its fitted vocabulary, so one instance serves one fit.
package algorithms
