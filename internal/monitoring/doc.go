// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

// Package monitoring samples per-user resource usage against subscription
// plan limits.
//
// The Collector counts each user's plan-limited resources on an interval,
// persists the samples, and tracks threshold crossings as quota alerts so a
// sustained overage notifies once, not once per sample. Crossing the warn
// threshold emits a quota warning on the bus; reaching the critical
// threshold emits a quota exceeded event. Alerts clear when usage drops
// back below the threshold, re-arming the notification.
//
// CheckLimit is the synchronous guard: creation paths call it before
// inserting a new resource and surface ErrLimitExceeded to the client when
// the plan is full.
package monitoring
