// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

// Package scheduling implements recurrence expansion, conflict detection, and
// background materialization of scheduled live events.
//
// # Overview
//
// The package has three parts:
//
//   - Recurrence expansion: pure calendar arithmetic that computes occurrence
//     start times for a recurrence pattern (daily, weekly, monthly) in the
//     pattern's timezone. See NextOccurrence and Preview.
//   - Conflict detection: the half-open interval overlap test used everywhere
//     a broadcast slot is claimed. Two events on the same channel conflict
//     when a.start < b.end AND b.start < a.end, with a missing end treated as
//     start plus the default duration. See Overlap and Checker.
//   - Materialization: a background service that walks active patterns on a
//     fixed interval and generates concrete child events inside a rolling
//     horizon, creating the remote broadcast for each one. See Materializer.
//
// # Recurrence Semantics
//
// All arithmetic happens in the pattern's IANA timezone so that wall-clock
// times survive DST transitions: a daily 09:00 pattern fires at 09:00 local
// before and after a clock change. Computed instants are converted to UTC for
// storage.
//
// Weekly patterns with a day-of-week set fire on each listed day within the
// selected week; the interval selects every Nth week counted from the week of
// the pattern start. Monthly patterns clamp the scheduled day to the last day
// of short months, so day 31 fires on February 28 (29 in leap years).
//
// A pattern is exhausted when its end date passes or its occurrence count is
// reached, whichever comes first. Occurrences starting exactly on the end
// date are still generated.
//
// # Materialization Guarantees
//
// The materializer holds per-run concurrency to a configured bound and never
// aborts a run because one pattern failed: a remote broadcast creation error
// marks that child event failed and records the reason, then the run moves on.
// Conflicting slots are skipped without consuming the pattern's occurrence
// budget. Generation is idempotent per (pattern, occurrence time): a slot that
// was already materialized is never generated twice.
package scheduling
