// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

// Package notifications creates, batches, and delivers user-facing alerts.
//
// A notification row in the database is the in-app delivery; the optional
// email and admin-webhook channels sit behind the Channel interface with
// transient/permanent error classification. Non-critical notifications of
// the same type are held and flushed as one digest per user when the batch
// window elapses or the size cap is hit; critical notifications bypass
// batching and go out immediately. Critical notifications that stay
// unacknowledged inside the escalation window are escalated exactly once.
package notifications
