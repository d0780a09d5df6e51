// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

// Package services wraps TubeFleet's long-running components as
// suture.Service implementations.
//
// Three lifecycle shapes cover everything in the tree:
//
//   - Worker: components with a Start(ctx)/Stop() pair (the materializer,
//     renewer, expirer, collector, syncer, scanner, dispatchers, and the
//     WebSocket bridge via an adapter).
//   - Runner: components whose entry point blocks until the context is
//     canceled (the event router, the WebSocket hub, cleanup loops that
//     manage their own ticker).
//   - Loop: a bare func(ctx) error invoked on an interval (session and
//     consent-state cleanup).
//
// HTTPServerService translates http.Server's blocking ListenAndServe
// into suture's context-aware Serve with graceful Shutdown.
package services
