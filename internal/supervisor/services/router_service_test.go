// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

type mockRouter struct {
	runErr error
	closed atomic.Bool
}

func (m *mockRouter) Run(ctx context.Context) error {
	if m.runErr != nil {
		return m.runErr
	}
	<-ctx.Done()
	return nil
}

func (m *mockRouter) Close() error {
	m.closed.Store(true)
	return nil
}

func TestRouterService(t *testing.T) {
	t.Run("stops on cancel", func(t *testing.T) {
		router := &mockRouter{}
		svc := NewRouterService(func() (MessageRouter, error) { return router, nil }, "")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := svc.Serve(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
		if !router.closed.Load() {
			t.Error("router not closed")
		}
		if svc.String() != "event-router" {
			t.Errorf("String() = %q", svc.String())
		}
	})

	t.Run("fresh router per run", func(t *testing.T) {
		var built atomic.Int32
		runErr := errors.New("subscribe failed")
		svc := NewRouterService(func() (MessageRouter, error) {
			built.Add(1)
			return &mockRouter{runErr: runErr}, nil
		}, "audit-router")

		for i := 0; i < 2; i++ {
			if err := svc.Serve(context.Background()); !errors.Is(err, runErr) {
				t.Errorf("Serve() = %v, want wrapped run error", err)
			}
		}
		if built.Load() != 2 {
			t.Errorf("routers built = %d, want 2", built.Load())
		}
	})

	t.Run("factory error", func(t *testing.T) {
		buildErr := errors.New("no subscriber")
		svc := NewRouterService(func() (MessageRouter, error) { return nil, buildErr }, "")
		if err := svc.Serve(context.Background()); !errors.Is(err, buildErr) {
			t.Errorf("Serve() = %v, want wrapped build error", err)
		}
	})
}
