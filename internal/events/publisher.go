// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/tomtom215/retailrec/internal/metrics"
	"github.com/tomtom215/retailrec/internal/recommend"
)

// ErrClosed is returned when publishing after Close.
var ErrClosed = errors.New("publisher is closed")

// Topic returns the topic for a training outcome.
func Topic(prefix, outcome string) string {
	return prefix + ".generation." + outcome
}

// Publisher sends training events to a Watermill publisher. It implements
// recommend.EventSink.
type Publisher struct {
	publisher message.Publisher
	prefix    string
	logger    zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPublisher wraps an existing Watermill publisher.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewPublisher(pub message.Publisher, prefix string, logger zerolog.Logger) *Publisher {
	return &Publisher{
		publisher: pub,
		prefix:    prefix,
		logger:    logger.With().Str("component", "events").Logger(),
	}
}

// NewGoChannel returns an in-process pub/sub. The same value serves as the
// publisher passed to NewPublisher and the subscriber passed to
// NewAuditRouter.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewGoChannel(logger zerolog.Logger) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, NewLoggerAdapter(logger))
}

// natsOptions returns connection options that retry forever and log
// disconnects through the watermill adapter.
func natsOptions(wmLogger watermill.LoggerAdapter) []natsgo.Option {
	return []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				wmLogger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			wmLogger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}
}

// NewNATSPublisher connects a JetStream publisher to url. The stream is
// provisioned on first publish.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewNATSPublisher(url string, logger zerolog.Logger) (message.Publisher, error) {
	wmLogger := NewLoggerAdapter(logger)

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOptions(wmLogger),
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}
	return pub, nil
}

// NewNATSSubscriber connects a durable JetStream subscriber to url for the
// audit router. Only events published after the consumer is created are
// delivered.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewNATSSubscriber(url, durable string, logger zerolog.Logger) (message.Subscriber, error) {
	wmLogger := NewLoggerAdapter(logger)

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		QueueGroupPrefix: durable,
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     10 * time.Second,
		NatsOptions:      natsOptions(wmLogger),
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			DurablePrefix: durable,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.DeliverNew(),
				natsgo.AckWait(30 * time.Second),
			},
		},
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create watermill subscriber: %w", err)
	}
	return sub, nil
}

// Publish encodes ev and sends it on the topic of its outcome.
func (p *Publisher) Publish(ctx context.Context, ev recommend.TrainingEvent) (err error) {
	topic := Topic(p.prefix, ev.Outcome)
	defer func() { metrics.RecordEventPublish(topic, err) }()

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)
	msg.Metadata.Set("outcome", ev.Outcome)
	if ev.GenerationID != "" {
		msg.Metadata.Set("generation_id", ev.GenerationID)
		// JetStream deduplicates on this header.
		msg.Metadata.Set(natsgo.MsgIdHdr, ev.Outcome+"-"+ev.GenerationID)
	}

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	p.logger.Debug().Str("topic", topic).Str("generation", ev.GenerationID).Msg("event published")
	return nil
}

// Close closes the underlying publisher.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}

// DecodeEvent parses a message produced by Publish.
func DecodeEvent(msg *message.Message) (recommend.TrainingEvent, error) {
	var ev recommend.TrainingEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return ev, fmt.Errorf("decode event %s: %w", msg.UUID, err)
	}
	return ev, nil
}
