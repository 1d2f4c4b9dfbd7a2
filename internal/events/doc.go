// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

// Package events publishes generation lifecycle events with Watermill.
//
// Every training run produces one event on
//
//	<prefix>.generation.trained
//	<prefix>.generation.failed
//
// with a JSON-encoded recommend.TrainingEvent as payload and the outcome
// and generation id copied into message metadata. Two transports are
// supported: an in-process GoChannel (default) and NATS JetStream through
// watermill-nats, where the audit side reads through a durable
// subscriber. The AuditRouter consumes both topics and writes one log
// line per event, which keeps the in-process transport observable without
// an external broker.
package events
