// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

// Package events provides the internal event bus built on Watermill and
// embedded NATS JetStream.
//
// Domain services publish BusEvent envelopes when something happened (a
// stream was scheduled, a payment failed, a moderation rule fired, a strike
// was recorded) and worker services consume them asynchronously. Producers
// never call consumers directly; the bus is the only coupling between them.
//
// # Architecture
//
//	┌───────────┐  ┌──────────┐  ┌────────────┐  ┌──────────┐  ┌────────────┐
//	│ Scheduler │  │ Billing  │  │ Moderation │  │ Strikes  │  │ Monitoring │
//	└─────┬─────┘  └────┬─────┘  └─────┬──────┘  └────┬─────┘  └─────┬──────┘
//	      │             │              │              │              │
//	      └─────────────┴──────┬───────┴──────────────┴──────────────┘
//	                           │ Publisher (circuit breaker, Nats-Msg-Id dedup)
//	                           ▼
//	                 ┌───────────────────┐
//	                 │  NATS JetStream   │  stream TUBEFLEET_EVENTS
//	                 │   (tubefleet.>)   │  file storage, 7 day retention
//	                 └─────────┬─────────┘
//	                           │ Router (retry, poison queue)
//	           ┌───────────────┼────────────────┐
//	           ▼               ▼                ▼
//	   ┌───────────────┐ ┌────────────┐ ┌──────────────┐
//	   │ Notifications │ │  Webhooks  │ │  WebSocket   │
//	   │   consumer    │ │ dispatcher │ │  broadcast   │
//	   └───────────────┘ └────────────┘ └──────────────┘
//
// # Subjects
//
// Every event type is "<family>.<name>" and is published on the subject
// "tubefleet.<family>.<name>". The single TUBEFLEET_EVENTS stream captures
// "tubefleet.>"; consumers bind to it and filter by family:
//
//	tubefleet.stream.*      scheduling lifecycle and occurrence materialization
//	tubefleet.billing.*     subscription changes, payment failures, invoices
//	tubefleet.moderation.*  rule violations
//	tubefleet.strike.*      strikes, channel suspension
//	tubefleet.monitor.*     plan quota warnings
//
// # Delivery Semantics
//
// JetStream provides at-least-once delivery. Publishes carry the event ID as
// Nats-Msg-Id so broker-side deduplication drops retransmits inside the
// duplicate window. Consumers ack after successful processing; failures are
// retried with exponential backoff by the Router and routed to the
// tubefleet.poison subject once retries are exhausted.
//
// # Key Components
//
//   - EmbeddedServer: embedded NATS JetStream server for single-instance deployments
//   - StreamInitializer: idempotent stream creation before publishers start
//   - Publisher: Watermill publisher with circuit breaker and reconnection handling
//   - Subscriber: durable JetStream consumer with queue-group load balancing
//   - Router: Watermill router with retry, recovery, and poison queue middleware
//
// # Usage
//
//	server, err := events.NewEmbeddedServer(&serverCfg)
//	if err != nil {
//	    return err
//	}
//	defer server.Shutdown(ctx)
//
//	pub, err := events.NewPublisher(events.DefaultPublisherConfig(server.ClientURL()), logger)
//	if err != nil {
//	    return err
//	}
//	defer pub.Close()
//
//	event := events.NewBusEvent(events.TypeStrikeRecorded)
//	event.ChannelID = channelID.String()
//	_ = event.SetPayload(events.StrikePayload{StrikeType: "copyright", ActiveCount: 1})
//	if err := pub.PublishEvent(ctx, event); err != nil {
//	    return err
//	}
package events
