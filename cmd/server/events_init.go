// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package main

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/retailrec/internal/config"
	"github.com/tomtom215/retailrec/internal/events"
	"github.com/tomtom215/retailrec/internal/supervisor/services"
)

// EventComponents holds the lifecycle event plumbing.
type EventComponents struct {
	Publisher *events.Publisher

	subscriber message.Subscriber
	prefix     string
	logger     zerolog.Logger
	closers    []func() error
}

// initEvents builds the publisher and the subscriber the audit router reads
// from. Returns nil when events are disabled.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initEvents(cfg *config.EventsConfig, logger zerolog.Logger) (*EventComponents, error) {
	if !cfg.Enabled {
		logger.Info().Msg("Lifecycle events disabled (EVENTS_ENABLED=false)")
		return nil, nil
	}

	c := &EventComponents{
		prefix: cfg.TopicPrefix,
		logger: logger,
	}

	switch cfg.Driver {
	case "gochannel":
		pubsub := events.NewGoChannel(logger)
		c.Publisher = events.NewPublisher(pubsub, cfg.TopicPrefix, logger)
		c.subscriber = pubsub
		c.closers = append(c.closers, c.Publisher.Close)

	case "nats":
		pub, err := events.NewNATSPublisher(cfg.NATSURL, logger)
		if err != nil {
			return nil, err
		}
		sub, err := events.NewNATSSubscriber(cfg.NATSURL, cfg.TopicPrefix+"-audit", logger)
		if err != nil {
			//nolint:errcheck // already failing
			pub.Close()
			return nil, err
		}
		c.Publisher = events.NewPublisher(pub, cfg.TopicPrefix, logger)
		c.subscriber = sub
		c.closers = append(c.closers, c.Publisher.Close, sub.Close)

	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.Driver)
	}

	logger.Info().Str("driver", cfg.Driver).Str("prefix", cfg.TopicPrefix).Msg("Lifecycle events enabled")
	return c, nil
}

// NewRouter builds a fresh audit router over the shared subscriber.
func (c *EventComponents) NewRouter() (services.MessageRouter, error) {
	return events.NewAuditRouter(c.subscriber, c.prefix, c.logger, nil)
}

// Close releases the publisher and subscriber.
func (c *EventComponents) Close() {
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil {
			c.logger.Error().Err(err).Msg("Error closing event component")
		}
	}
}
