// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

// Package comments ingests YouTube comments and runs the chatbot responder.
//
// The Syncer pulls recent comment threads per linked channel through the
// Data API wrapper and upserts them as local rows; re-fetched comments with
// edited text are reset for re-scanning. Each fresh comment then passes
// through the Responder: triggers are evaluated in priority order, the
// first match wins, and at most one reply is posted per comment. Replies
// are best-effort: a post failure is recorded on the reply row and never
// blocks the rest of the sweep.
package comments
