// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

// Package moderation scans comments against per-channel and global rules.
//
// Rules come in two types: keyword rules carry a comma-separated term list
// matched case-insensitively with one Aho-Corasick automaton per rule, and
// regex rules carry a single RE2 pattern. The Engine runs every enabled
// rule against a comment, records at most one violation per rule, applies
// the strongest matched action to the comment (locally and, when a remote
// moderator is wired, on YouTube), and publishes moderation.violation
// events.
//
// The Scanner is the background half: it walks unscanned comments per
// linked channel on a ticker and feeds them through the Engine.
package moderation
