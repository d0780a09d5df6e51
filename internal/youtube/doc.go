// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

// Package youtube wraps the subset of the YouTube Data API v3 the platform
// drives: live broadcast and stream lifecycle, comment threads, comment
// moderation, and channel metadata.
//
// The wrapper covers request and response plumbing only. Requests carry the
// API's own resource shapes, every call takes the per-channel OAuth access
// token resolved by the channels service, and each operation records its
// estimated quota cost against the daily project quota.
//
// Layers:
//   - Client: HTTP calls with retry on 429/5xx and typed error
//     classification (ErrQuotaExceeded, ErrAuthRevoked, ErrNotFound)
//   - BreakerClient: the same interface behind a circuit breaker
//   - Broadcaster: adapts the client to the scheduling materializer's
//     contract (create broadcast + stream + bind) and drives reschedule,
//     transition, and cancel for existing broadcasts
package youtube
