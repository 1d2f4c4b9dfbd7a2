// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package recommend

import (
	"errors"
	"fmt"
	"testing"
)

func TestMode_String(t *testing.T) {
	tests := []struct {
		mode     Mode
		expected string
	}{
		{ModeHybrid, "hybrid"},
		{ModeCollaborative, "collaborative"},
		{ModeContent, "content"},
		{Mode(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.mode.String(); got != tt.expected {
				t.Errorf("Mode(%d).String() = %q, want %q", tt.mode, got, tt.expected)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input    string
		expected Mode
		wantErr  bool
	}{
		{"hybrid", ModeHybrid, false},
		{"", ModeHybrid, false},
		{"  Hybrid ", ModeHybrid, false},
		{"collaborative", ModeCollaborative, false},
		{"als", ModeCollaborative, false},
		{"content", ModeContent, false},
		{"CONTENT_BASED", ModeContent, false},
		{"popularity", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidMode) {
					t.Errorf("ParseMode(%q) error = %v, want ErrInvalidMode", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMode(%q) error = %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseMode(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestModes_RoundTrip(t *testing.T) {
	for _, m := range Modes {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v; want %v", m.String(), got, err, m)
		}
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateUntrained, "untrained"},
		{StateTraining, "training"},
		{StateTrained, "trained"},
		{State(7), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.state.String(); got != tt.expected {
				t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.expected)
			}
		})
	}
}

func TestProduct_Text(t *testing.T) {
	p := Product{ID: "P1", Name: "Green Tea", Category: "Beverages"}
	if got := p.Text(); got != "Green Tea Beverages" {
		t.Errorf("Text() = %q, want %q", got, "Green Tea Beverages")
	}
}

func TestTrainingFailed(t *testing.T) {
	cause := errors.New("disk on fire")
	err := trainingFailed(cause)

	if !errors.Is(err, ErrTrainingFailed) {
		t.Error("errors.Is(err, ErrTrainingFailed) = false")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
	if trainingFailed(nil) != nil {
		t.Error("trainingFailed(nil) != nil")
	}
	if again := trainingFailed(err); again != err {
		t.Error("trainingFailed wrapped an already wrapped error")
	}
}

func TestIsRecoverable(t *testing.T) {
	tests := []struct {
		err      error
		expected bool
	}{
		{ErrNotFound, true},
		{fmt.Errorf("customer %q: %w", "C1", ErrNoHistory), true},
		{ErrInsufficientData, true},
		{ErrNotReady, false},
		{ErrInvalidMode, false},
		{errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := isRecoverable(tt.err); got != tt.expected {
				t.Errorf("isRecoverable(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}
