// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package recommend

import (
	"errors"
	"fmt"
	"time"
)

// SchemaVersion is bumped whenever the persisted layout of a Generation
// changes. Bundles written with another version are rejected on load.
const SchemaVersion = 1

// HybridWeights are the blend weights of the hybrid ranking. They need
// not sum to 1.
type HybridWeights struct {
	Collaborative float64 `json:"collaborative"`
	Content       float64 `json:"content"`
}

// DefaultWeights returns the default (0.6, 0.4) blend.
func DefaultWeights() HybridWeights {
	return HybridWeights{Collaborative: 0.6, Content: 0.4}
}

// Validate checks that both weights are non-negative and not both zero.
func (w HybridWeights) Validate() error {
	if w.Collaborative < 0 {
		return fmt.Errorf("weights.collaborative must be non-negative, got %f", w.Collaborative)
	}
	if w.Content < 0 {
		return fmt.Errorf("weights.content must be non-negative, got %f", w.Content)
	}
	if w.Collaborative == 0 && w.Content == 0 {
		return errors.New("weights must not both be zero")
	}
	return nil
}

// FactorEmbeddings are the latent factors of one ALS run together with
// the hyperparameters needed to fold new histories into the same space.
type FactorEmbeddings struct {
	Factors        int
	Alpha          float64
	Regularization float64

	// Customer is indexed like InteractionMatrix.CustomerIDs.
	Customer [][]float64

	// Product is indexed like InteractionMatrix.ProductIDs.
	Product [][]float64
}

// SimilarityMatrix is the dense product x product cosine matrix, indexed
// like InteractionMatrix.ProductIDs.
type SimilarityMatrix struct {
	Values [][]float64
}

// Generation is one complete, immutable set of trained artifacts.
// Nothing mutates a Generation after it is built or loaded.
type Generation struct {
	ID            string
	SchemaVersion int
	CreatedAt     time.Time

	// Products is the catalog, indexed like Matrix.ProductIDs.
	Products []Product

	Matrix *InteractionMatrix

	// Embeddings is nil when the matrix was too small to factorize; the
	// collaborative model then answers with ErrInsufficientData.
	Embeddings *FactorEmbeddings

	Similarity *SimilarityMatrix
	Weights    HybridWeights
}

// Stats summarizes the generation's interaction matrix.
func (g *Generation) Stats() Stats {
	return g.Matrix.Stats()
}

// Validate checks that every component is present and that their shapes
// agree. Loaders call it before installing a generation.
//
//nolint:gocyclo // one check per component dimension
func (g *Generation) Validate() error {
	if g.ID == "" {
		return errors.New("generation id is empty")
	}
	if g.SchemaVersion != SchemaVersion {
		return fmt.Errorf("schema version %d, want %d", g.SchemaVersion, SchemaVersion)
	}
	if g.Matrix == nil {
		return errors.New("interaction matrix missing")
	}
	if g.Similarity == nil {
		return errors.New("similarity matrix missing")
	}
	if err := g.Weights.Validate(); err != nil {
		return err
	}

	numCustomers := len(g.Matrix.CustomerIDs)
	numProducts := len(g.Matrix.ProductIDs)
	if len(g.Matrix.Rows) != numCustomers {
		return fmt.Errorf("matrix has %d rows for %d customers", len(g.Matrix.Rows), numCustomers)
	}
	if len(g.Products) != numProducts {
		return fmt.Errorf("catalog has %d products, matrix has %d", len(g.Products), numProducts)
	}
	for i, p := range g.Products {
		if p.ID != g.Matrix.ProductIDs[i] {
			return fmt.Errorf("catalog product %d is %q, matrix column is %q", i, p.ID, g.Matrix.ProductIDs[i])
		}
	}
	for c, row := range g.Matrix.Rows {
		for _, cell := range row {
			if cell.Product < 0 || cell.Product >= numProducts {
				return fmt.Errorf("customer %d references product column %d of %d", c, cell.Product, numProducts)
			}
		}
	}

	if len(g.Similarity.Values) != numProducts {
		return fmt.Errorf("similarity matrix has %d rows for %d products", len(g.Similarity.Values), numProducts)
	}
	for i, row := range g.Similarity.Values {
		if len(row) != numProducts {
			return fmt.Errorf("similarity row %d has %d columns, want %d", i, len(row), numProducts)
		}
	}

	if e := g.Embeddings; e != nil {
		if len(e.Customer) != numCustomers || len(e.Product) != numProducts {
			return fmt.Errorf("embeddings are %dx%d, want %dx%d", len(e.Customer), len(e.Product), numCustomers, numProducts)
		}
		for _, v := range e.Customer {
			if len(v) != e.Factors {
				return fmt.Errorf("customer factor has length %d, want %d", len(v), e.Factors)
			}
		}
		for _, v := range e.Product {
			if len(v) != e.Factors {
				return fmt.Errorf("product factor has length %d, want %d", len(v), e.Factors)
			}
		}
	}

	return nil
}
