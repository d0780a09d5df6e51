// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

// Package database provides DuckDB-backed persistence for all TubeFleet
// entities: users, channels, live events, recurrence patterns, billing,
// notifications, moderation, chatbot triggers, strikes, webhooks, and usage
// counters.
//
// # Overview
//
// The package wraps a single embedded DuckDB database opened through
// database/sql. All access goes through the DB type:
//
//	db, err := database.New(&cfg.Database)
//	if err != nil { ... }
//	defer db.Close()
//
//	ev, err := db.GetLiveEvent(ctx, id)
//
// CRUD methods are grouped per entity in crud_*.go files. Placeholders use
// DuckDB's positional `?` style and all timestamps are stored in UTC.
//
// # Schema
//
// The full schema is created at startup by createTables (schema.go); the
// statements use CREATE TABLE IF NOT EXISTS so startup is idempotent.
// Versioned migrations (migrations.go) handle post-release column additions
// and are tracked in the schema_migrations table.
//
// # Error Conventions
//
// Row-absence is reported with ErrNotFound (wrapped per entity where a more
// specific sentinel exists, e.g. ErrEventNotFound). Unique-constraint
// violations map to ErrConflict sentinels. Plan-limit rejections surface as
// ErrLimitExceeded from the monitoring checks, never from this package
// directly.
//
// # Concurrency
//
// database/sql provides connection pooling; DuckDB serializes writes
// internally. Prepared statements for hot queries are cached in the DB's
// statement cache and closed on shutdown. Close checkpoints the database to
// flush the WAL so the next startup does not replay it.
package database
