// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package events

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/rs/zerolog"

	"github.com/tomtom215/retailrec/internal/recommend"
)

// Observer receives each decoded event consumed by the audit router.
type Observer func(recommend.TrainingEvent)

// NewAuditRouter returns a router that logs every lifecycle event read
// from sub. Malformed payloads are logged and acknowledged. observe may be
// nil.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewAuditRouter(sub message.Subscriber, prefix string, logger zerolog.Logger, observe Observer) (*message.Router, error) {
	wmLogger := NewLoggerAdapter(logger)
	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: 10 * time.Second,
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create router: %w", err)
	}
	router.AddMiddleware(middleware.Recoverer)

	audit := logger.With().Str("component", "event_audit").Logger()
	for _, outcome := range []string{recommend.EventTrained, recommend.EventFailed} {
		topic := Topic(prefix, outcome)
		router.AddNoPublisherHandler("audit_"+outcome, topic, keepOpen{sub}, func(msg *message.Message) error {
			ev, err := DecodeEvent(msg)
			if err != nil {
				audit.Warn().Err(err).Str("topic", topic).Msg("dropping malformed event")
				return nil
			}
			entry := audit.Info()
			if ev.Outcome == recommend.EventFailed {
				entry = audit.Warn().Str("error", ev.Error)
			}
			entry.
				Str("outcome", ev.Outcome).
				Str("generation", ev.GenerationID).
				Dur("duration", ev.Duration).
				Msg("training event")
			if observe != nil {
				observe(ev)
			}
			return nil
		})
	}
	return router, nil
}

// keepOpen stops the router from closing a subscriber it does not own, so
// a restarted router can subscribe again.
type keepOpen struct {
	message.Subscriber
}

func (keepOpen) Close() error { return nil }
