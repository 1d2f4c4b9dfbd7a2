// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package recommend

import "errors"

// Request-level errors. They are recoverable and returned to the caller;
// match them with errors.Is.
var (
	// ErrNotFound reports an unknown customer or product identifier.
	ErrNotFound = errors.New("not found")

	// ErrNoHistory reports a known customer with zero interactions.
	ErrNoHistory = errors.New("customer has no purchase history")

	// ErrInsufficientData reports a matrix too small to factorize.
	// A usable matrix has at least 2 customers, 2 products, and one
	// observed interaction.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrNotReady reports that no trained generation is available.
	ErrNotReady = errors.New("no trained generation available")

	// ErrInvalidMode reports an unsupported recommendation mode tag.
	ErrInvalidMode = errors.New("invalid recommendation mode")

	// ErrEmptyInput reports an empty catalog or transaction snapshot.
	ErrEmptyInput = errors.New("empty input snapshot")
)

// Training errors. Every error returned from Engine.Train wraps
// ErrTrainingFailed.
var (
	// ErrTrainingFailed reports an aborted training run.
	ErrTrainingFailed = errors.New("training failed")

	// ErrTrainingInProgress is returned when Train is called while another
	// run is in flight.
	ErrTrainingInProgress = errors.New("training already in progress")
)

// trainingError marks err as a training failure while keeping its cause
// reachable through errors.Is.
type trainingError struct {
	cause error
}

func (e *trainingError) Error() string {
	return ErrTrainingFailed.Error() + ": " + e.cause.Error()
}

func (e *trainingError) Unwrap() []error {
	return []error{ErrTrainingFailed, e.cause}
}

func trainingFailed(err error) error {
	if err == nil || errors.Is(err, ErrTrainingFailed) {
		return err
	}
	return &trainingError{cause: err}
}

// isRecoverable reports whether a hybrid request may continue without the
// sub-model that returned err.
func isRecoverable(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrNoHistory) || errors.Is(err, ErrInsufficientData)
}
