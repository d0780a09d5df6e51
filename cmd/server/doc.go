// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

// Command server runs the TubeFleet backend: the REST API, the background
// workers, and the embedded NATS JetStream event bus, all under a single
// suture supervision tree.
//
// Supervision layout:
//
//	tubefleet (root)
//	├── data-layer
//	│   ├── session-cleanup          expired auth sessions
//	│   ├── consent-state-cleanup    stale OAuth consent states
//	│   ├── audit-retention          audit log retention sweeps
//	│   └── lockout-sweeper          expired login lockouts
//	├── worker-layer
//	│   ├── materializer             recurrence expansion + broadcast creation
//	│   ├── subscription-renewer     billing cycle rollover and grace handling
//	│   ├── strike-expirer           community strike TTL expiry
//	│   ├── usage-collector          quota usage snapshots and threshold events
//	│   ├── moderation-scanner       pattern scans over unscanned comments
//	│   └── comment-syncer           YouTube comment ingestion + auto replies
//	├── messaging-layer
//	│   ├── event-router             JetStream consumer router
//	│   ├── websocket-bridge         bus events to WebSocket hub
//	│   ├── websocket-hub            client connection registry
//	│   ├── notification-dispatcher  batching, delivery, escalation
//	│   └── webhook-dispatcher       signed outbound webhook delivery
//	└── api-layer
//	    └── http-server              chi REST API
//
// Layers start in order; a failing child is restarted with exponential
// backoff and failures propagate to the root only when a layer exceeds its
// threshold. Shutdown is signal driven (SIGINT/SIGTERM) and drains every
// layer before the process exits.
//
// Configuration comes from environment variables (see internal/config).
// The only required piece of state is the DuckDB database file; NATS,
// YouTube, Stripe, Google OAuth, and the chatbot are all optional and the
// server degrades feature by feature when they are absent.
package main
