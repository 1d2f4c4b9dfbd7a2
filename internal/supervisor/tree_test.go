// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

// testService runs until canceled, failing the first failures times.
type testService struct {
	name     string
	starts   atomic.Int32
	failures int32
}

func (s *testService) Serve(ctx context.Context) error {
	n := s.starts.Add(1)
	if n <= s.failures {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *testService) String() string { return s.name }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewSupervisorTree_Defaults(t *testing.T) {
	tree, err := NewSupervisorTree(testLogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}
	if tree.Root() == nil {
		t.Fatal("root supervisor is nil")
	}
	if tree.config != DefaultTreeConfig() {
		t.Errorf("config = %+v, want %+v", tree.config, DefaultTreeConfig())
	}

	custom, err := NewSupervisorTree(testLogger(), TreeConfig{FailureThreshold: 2, FailureBackoff: time.Second})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}
	if custom.config.FailureThreshold != 2 || custom.config.FailureBackoff != time.Second {
		t.Errorf("custom values overwritten: %+v", custom.config)
	}
	if custom.config.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want default 10s", custom.config.ShutdownTimeout)
	}
}

func TestSupervisorTree_Lifecycle(t *testing.T) {
	tree, err := NewSupervisorTree(testLogger(), TreeConfig{
		FailureBackoff:  10 * time.Millisecond,
		ShutdownTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}

	training := &testService{name: "training"}
	events := &testService{name: "events", failures: 2}
	api := &testService{name: "api"}
	tree.AddTrainingService(training)
	tree.AddEventService(events)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.After(5 * time.Second)
	for events.starts.Load() < 3 || training.starts.Load() < 1 || api.starts.Load() < 1 {
		select {
		case <-deadline:
			t.Fatalf("services not started: training=%d events=%d api=%d",
				training.starts.Load(), events.starts.Load(), api.starts.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}

	// Restarts in the events layer leave the other layers alone.
	if training.starts.Load() != 1 || api.starts.Load() != 1 {
		t.Errorf("unrelated restarts: training=%d api=%d", training.starts.Load(), api.starts.Load())
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("tree stopped with %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("tree did not stop")
	}
}
