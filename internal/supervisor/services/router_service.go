// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package services

import (
	"context"
	"fmt"
)

// MessageRouter matches the lifecycle of *message.Router from watermill.
type MessageRouter interface {
	Run(ctx context.Context) error
	Close() error
}

// RouterFactory builds a fresh router. A closed watermill router cannot be
// run again, so every restart needs a new one.
type RouterFactory func() (MessageRouter, error)

// RouterService runs a watermill router as a supervised service.
type RouterService struct {
	newRouter RouterFactory
	name      string
}

// NewRouterService creates a new router service wrapper.
func NewRouterService(newRouter RouterFactory, name string) *RouterService {
	if name == "" {
		name = "event-router"
	}
	return &RouterService{newRouter: newRouter, name: name}
}

// Serve implements suture.Service. A router that stops while ctx is live is
// reported as a failure so the supervisor restarts it.
func (s *RouterService) Serve(ctx context.Context) error {
	router, err := s.newRouter()
	if err != nil {
		return fmt.Errorf("%s: build router: %w", s.name, err)
	}
	//nolint:errcheck // Close after Run returns only releases handlers
	defer router.Close()

	err = router.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("%s failed: %w", s.name, err)
	}
	return fmt.Errorf("%s stopped unexpectedly", s.name)
}

// String implements fmt.Stringer.
func (s *RouterService) String() string {
	return s.name
}
