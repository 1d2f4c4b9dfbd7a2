// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package recommend

import (
	"fmt"
	"strings"
	"time"
)

// Product is one catalog entry. Name and Category feed the content model.
type Product struct {
	// ID is the opaque product identifier.
	ID string `json:"product_id" validate:"required,entityid"`

	// Name is the display name of the product.
	Name string `json:"name"`

	// Category is the merchandising category.
	Category string `json:"category"`
}

// Text returns the document the content model vectorizes.
func (p Product) Text() string {
	return p.Name + " " + p.Category
}

// Transaction is one purchase line.
type Transaction struct {
	// CustomerID is the opaque customer identifier.
	CustomerID string `json:"customer_id" validate:"required,entityid"`

	// ProductID is the purchased product.
	ProductID string `json:"product_id" validate:"required,entityid"`

	// Quantity is the number of units, at least 1.
	Quantity int `json:"quantity" validate:"gte=1"`

	// Total is the monetary value of the line, never negative.
	Total float64 `json:"total_amount" validate:"gte=0"`
}

// Snapshot is the input of one training run: the catalog, the known
// customers, and every transaction observed so far.
type Snapshot struct {
	Products     []Product
	Customers    []string
	Transactions []Transaction
}

// Mode selects which model ranks a recommendation request.
type Mode int

const (
	// ModeHybrid blends collaborative and content scores.
	ModeHybrid Mode = iota
	// ModeCollaborative ranks by latent-factor affinity only.
	ModeCollaborative
	// ModeContent ranks by similarity to purchased products only.
	ModeContent
)

// Modes lists every mode in evaluation order.
var Modes = []Mode{ModeCollaborative, ModeContent, ModeHybrid}

// String returns a human-readable mode name.
func (m Mode) String() string {
	switch m {
	case ModeHybrid:
		return "hybrid"
	case ModeCollaborative:
		return "collaborative"
	case ModeContent:
		return "content"
	default:
		return "unknown"
	}
}

// ParseMode converts a mode tag into a Mode. Unknown tags return
// ErrInvalidMode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hybrid", "":
		return ModeHybrid, nil
	case "collaborative", "collab", "als":
		return ModeCollaborative, nil
	case "content", "content_based":
		return ModeContent, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// ScoredProduct is a ranked product and its score under the ranking model.
type ScoredProduct struct {
	ProductID string  `json:"product_id"`
	Score     float64 `json:"score"`
}

// Result is the answer to a recommendation request.
type Result struct {
	// Items are ordered by descending score.
	Items []ScoredProduct `json:"items"`

	// Mode is the mode that produced the ranking.
	Mode Mode `json:"-"`

	// Degraded is set when a hybrid request was answered by one sub-model
	// because the other could not score the customer.
	Degraded bool `json:"degraded"`

	// GenerationID identifies the generation that answered.
	GenerationID string `json:"generation_id"`
}

// Stats summarizes the interaction matrix of a generation.
type Stats struct {
	NumCustomers               int     `json:"num_customers"`
	NumProducts                int     `json:"num_products"`
	NumInteractions            int     `json:"num_interactions"`
	MatrixDensity              float64 `json:"matrix_density"`
	AvgInteractionsPerCustomer float64 `json:"avg_interactions_per_customer"`
	AvgInteractionsPerProduct  float64 `json:"avg_interactions_per_product"`
}

// ModelMetrics holds leave-one-out accuracy for one model.
type ModelMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Trials    int     `json:"trials"`
}

// EvaluationReport is the outcome of one evaluation run.
type EvaluationReport struct {
	// GenerationID is the generation that was evaluated.
	GenerationID string `json:"generation_id"`

	// K is the recommendation list length used for each trial.
	K int `json:"k"`

	// SampledCustomers is how many customers contributed trials.
	SampledCustomers int `json:"sampled_customers"`

	// Models maps mode name to its metrics.
	Models map[string]ModelMetrics `json:"models"`
}

// State is the lifecycle state of an Engine.
type State int32

const (
	// StateUntrained means no generation has ever been installed.
	StateUntrained State = iota
	// StateTraining means a training run is in flight.
	StateTraining
	// StateTrained means a generation is serving.
	StateTrained
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateUntrained:
		return "untrained"
	case StateTraining:
		return "training"
	case StateTrained:
		return "trained"
	default:
		return "unknown"
	}
}

// Status reports engine lifecycle information.
type Status struct {
	State                  string    `json:"state"`
	GenerationID           string    `json:"generation_id,omitempty"`
	GenerationCreatedAt    time.Time `json:"generation_created_at,omitempty"`
	LastTrainedAt          time.Time `json:"last_trained_at,omitempty"`
	LastTrainingDurationMS int64     `json:"last_training_duration_ms"`
	LastError              string    `json:"last_error,omitempty"`
	TrainingRuns           int64     `json:"training_runs"`
}
