// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

/*
schema.go - Database Schema Management

This file manages the DuckDB database schema including table creation
and index management.

Tables:
  - users: Account records with bcrypt password hashes
  - channels: Linked YouTube channels with encrypted refresh tokens
  - live_events: Scheduled broadcasts, both one-off and materialized occurrences
  - recurrence_patterns: Expansion rules that generate live_events
  - plans / subscriptions / discount_codes / invoices: Billing entities
  - notifications / notification_batches / notification_preferences: In-app
    and email notification pipeline
  - moderation_rules / moderation_violations: Comment moderation engine state
  - comments / chatbot_triggers / chatbot_replies: Synced comments and the
    auto-responder
  - strikes: Channel policy strikes feeding the suspension threshold
  - webhook_endpoints / webhook_deliveries: Outbound webhook fan-out with
    retry bookkeeping
  - resource_usage / quota_alerts: Plan limit monitoring samples and
    threshold-crossing records

Schema Strategy (Pre-Release):
All columns are defined in the initial CREATE TABLE statement. This provides:
  - Single source of truth for the complete schema
  - Faster startup (no migrations to run)
  - Cleaner codebase

Post-release additive changes go through the versioned migrations in
migrations.go so existing deployments keep their data.

Index Strategy:
Indexes are created for:
  - Slot conflict checks (channel_id + start_time on live_events)
  - Materializer scans (recurrence status + last_materialized_at)
  - Dispatcher scans (webhook delivery status + next_attempt_at)
  - Per-user listing endpoints (user_id on most tables)
  - Comment scanning (channel_id + scanned flag)
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := db.getTableCreationQueries()

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// getTableCreationQueries returns the table creation SQL statements
func (db *DB) getTableCreationQueries() []string {
	queries := []string{
		// Sequences for tables with integer surrogate keys
		`CREATE SEQUENCE IF NOT EXISTS notification_preferences_id_seq;`,
		`CREATE SEQUENCE IF NOT EXISTS resource_usage_id_seq;`,
		`CREATE SEQUENCE IF NOT EXISTS quota_alerts_id_seq;`,

		// Users table - account records
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL,
			display_name TEXT,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'viewer',
			status TEXT NOT NULL DEFAULT 'active',
			last_login_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);`,

		// Channels table - linked YouTube channels.
		// refresh_token_encrypted holds the AES-GCM sealed OAuth refresh
		// token; the plaintext never touches disk.
		`CREATE TABLE IF NOT EXISTS channels (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			youtube_channel_id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			handle TEXT,
			thumbnail_url TEXT,
			refresh_token_encrypted TEXT NOT NULL,
			token_scope TEXT,
			status TEXT NOT NULL DEFAULT 'linked',
			strike_count INTEGER NOT NULL DEFAULT 0,
			subscriber_count BIGINT,
			video_count BIGINT,
			linked_at TIMESTAMP NOT NULL,
			last_synced_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);`,

		// Live events table - scheduled broadcasts.
		// recurrence_id/occurrence_index link materialized occurrences back
		// to their pattern. stream_key_encrypted is AES-GCM sealed.
		`CREATE TABLE IF NOT EXISTS live_events (
			id UUID PRIMARY KEY,
			channel_id UUID NOT NULL,
			user_id UUID NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			start_time TIMESTAMP NOT NULL,
			end_time TIMESTAMP,
			status TEXT NOT NULL DEFAULT 'scheduled',
			visibility TEXT NOT NULL DEFAULT 'private',
			broadcast_id TEXT,
			stream_id TEXT,
			ingestion_url TEXT,
			stream_key_encrypted TEXT,
			recurrence_id UUID,
			occurrence_index INTEGER,
			failure_reason TEXT,
			retry_count INTEGER NOT NULL DEFAULT 0,
			enable_dvr BOOLEAN NOT NULL DEFAULT true,
			enable_auto_start BOOLEAN NOT NULL DEFAULT false,
			enable_auto_stop BOOLEAN NOT NULL DEFAULT false,
			category_id TEXT,
			tags TEXT,
			actual_start_time TIMESTAMP,
			actual_end_time TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);`,

		// Recurrence patterns table - expansion rules.
		// days_of_week is a JSON array of ints (0=Sunday).
		`CREATE TABLE IF NOT EXISTS recurrence_patterns (
			id UUID PRIMARY KEY,
			channel_id UUID NOT NULL,
			user_id UUID NOT NULL,
			template_event_id UUID NOT NULL,
			frequency TEXT NOT NULL,
			interval_count INTEGER NOT NULL DEFAULT 1,
			days_of_week JSON,
			day_of_month INTEGER NOT NULL DEFAULT 0,
			timezone TEXT NOT NULL DEFAULT 'UTC',
			start_date TIMESTAMP NOT NULL,
			end_date TIMESTAMP,
			occurrence_count INTEGER,
			generated_count INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'active',
			last_materialized_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);`,

		// Plans table - subscription tiers with resource limits.
		// A limit of 0 means unlimited.
		`CREATE TABLE IF NOT EXISTS plans (
			id UUID PRIMARY KEY,
			slug TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			price_cents BIGINT NOT NULL DEFAULT 0,
			currency TEXT NOT NULL DEFAULT 'usd',
			billing_interval TEXT NOT NULL DEFAULT 'month',
			max_channels INTEGER NOT NULL DEFAULT 0,
			max_scheduled_events INTEGER NOT NULL DEFAULT 0,
			max_concurrent_streams INTEGER NOT NULL DEFAULT 0,
			max_moderation_rules INTEGER NOT NULL DEFAULT 0,
			max_chatbot_triggers INTEGER NOT NULL DEFAULT 0,
			max_webhook_endpoints INTEGER NOT NULL DEFAULT 0,
			stripe_price_id TEXT,
			active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);`,

		// Subscriptions table - one active subscription per user
		`CREATE TABLE IF NOT EXISTS subscriptions (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			plan_id UUID NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			current_period_start TIMESTAMP NOT NULL,
			current_period_end TIMESTAMP NOT NULL,
			cancel_at_period_end BOOLEAN NOT NULL DEFAULT false,
			canceled_at TIMESTAMP,
			trial_ends_at TIMESTAMP,
			discount_code_id UUID,
			stripe_customer_id TEXT,
			stripe_subscription_id TEXT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);`,

		// Discount codes table - percent or fixed-amount discounts
		`CREATE TABLE IF NOT EXISTS discount_codes (
			id UUID PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			percent_off INTEGER,
			amount_off_cents BIGINT,
			currency TEXT NOT NULL DEFAULT 'usd',
			max_redemptions INTEGER,
			redemption_count INTEGER NOT NULL DEFAULT 0,
			applies_to_plan_id UUID,
			active BOOLEAN NOT NULL DEFAULT true,
			valid_from TIMESTAMP,
			expires_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);`,

		// Invoices table - lines is a JSON array of line items
		`CREATE TABLE IF NOT EXISTS invoices (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			subscription_id UUID NOT NULL,
			status TEXT NOT NULL DEFAULT 'draft',
			currency TEXT NOT NULL DEFAULT 'usd',
			subtotal_cents BIGINT NOT NULL DEFAULT 0,
			discount_cents BIGINT NOT NULL DEFAULT 0,
			total_cents BIGINT NOT NULL DEFAULT 0,
			lines JSON,
			period_start TIMESTAMP NOT NULL,
			period_end TIMESTAMP NOT NULL,
			stripe_invoice_id TEXT,
			paid_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);`,

		// Notifications table - in-app notification records.
		// dedupe_key suppresses duplicates within the batching window;
		// batch_id groups rolled-up notifications.
		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			type TEXT NOT NULL,
			severity TEXT NOT NULL DEFAULT 'info',
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			resource_type TEXT,
			resource_id TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			batch_id UUID,
			dedupe_key TEXT,
			escalated BOOLEAN NOT NULL DEFAULT false,
			read_at TIMESTAMP,
			sent_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL
		);`,

		// Notification batches table - rollup windows
		`CREATE TABLE IF NOT EXISTS notification_batches (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			type TEXT NOT NULL,
			window_start TIMESTAMP NOT NULL,
			window_end TIMESTAMP NOT NULL,
			count INTEGER NOT NULL DEFAULT 0,
			escalated BOOLEAN NOT NULL DEFAULT false,
			sent_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL
		);`,

		// Notification preferences table - per-user, per-type delivery
		// choices. type '*' is the default row.
		`CREATE TABLE IF NOT EXISTS notification_preferences (
			id BIGINT PRIMARY KEY DEFAULT nextval('notification_preferences_id_seq'),
			user_id UUID NOT NULL,
			type TEXT NOT NULL,
			in_app BOOLEAN NOT NULL DEFAULT true,
			email BOOLEAN NOT NULL DEFAULT false,
			muted BOOLEAN NOT NULL DEFAULT false,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE (user_id, type)
		);`,

		// Moderation rules table - keyword and regex rules
		`CREATE TABLE IF NOT EXISTS moderation_rules (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			channel_id UUID,
			name TEXT NOT NULL,
			rule_type TEXT NOT NULL,
			pattern TEXT NOT NULL,
			action TEXT NOT NULL,
			severity TEXT NOT NULL DEFAULT 'medium',
			enabled BOOLEAN NOT NULL DEFAULT true,
			hit_count BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);`,

		// Moderation violations table - matched comments and actions taken
		`CREATE TABLE IF NOT EXISTS moderation_violations (
			id UUID PRIMARY KEY,
			rule_id UUID NOT NULL,
			channel_id UUID NOT NULL,
			comment_id TEXT NOT NULL,
			matched_text TEXT NOT NULL,
			action_taken TEXT NOT NULL,
			review_status TEXT NOT NULL DEFAULT 'pending',
			reviewed_by TEXT,
			reviewed_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL
		);`,

		// Comments table - synced YouTube comments awaiting moderation scan
		`CREATE TABLE IF NOT EXISTS comments (
			id UUID PRIMARY KEY,
			channel_id UUID NOT NULL,
			youtube_comment_id TEXT NOT NULL UNIQUE,
			video_id TEXT NOT NULL,
			parent_comment_id TEXT,
			author_channel_id TEXT NOT NULL,
			author_name TEXT NOT NULL,
			text TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'published',
			scanned BOOLEAN NOT NULL DEFAULT false,
			published_at TIMESTAMP NOT NULL,
			fetched_at TIMESTAMP NOT NULL
		);`,

		// Chatbot triggers table - auto-responder rules
		`CREATE TABLE IF NOT EXISTS chatbot_triggers (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			channel_id UUID NOT NULL,
			name TEXT NOT NULL,
			match_type TEXT NOT NULL,
			pattern TEXT NOT NULL,
			case_sensitive BOOLEAN NOT NULL DEFAULT false,
			priority INTEGER NOT NULL DEFAULT 0,
			response_template TEXT NOT NULL,
			use_ai BOOLEAN NOT NULL DEFAULT false,
			cooldown_seconds BIGINT NOT NULL DEFAULT 0,
			enabled BOOLEAN NOT NULL DEFAULT true,
			hit_count BIGINT NOT NULL DEFAULT 0,
			last_fired_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);`,

		// Chatbot replies table - posted responses for audit and cooldown
		`CREATE TABLE IF NOT EXISTS chatbot_replies (
			id UUID PRIMARY KEY,
			trigger_id UUID NOT NULL,
			channel_id UUID NOT NULL,
			comment_id TEXT NOT NULL,
			reply_comment_id TEXT,
			response_text TEXT NOT NULL,
			failed BOOLEAN NOT NULL DEFAULT false,
			failure_reason TEXT,
			created_at TIMESTAMP NOT NULL
		);`,

		// Strikes table - channel policy strikes
		`CREATE TABLE IF NOT EXISTS strikes (
			id UUID PRIMARY KEY,
			channel_id UUID NOT NULL,
			user_id UUID NOT NULL,
			strike_type TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			reason TEXT NOT NULL,
			source TEXT NOT NULL,
			video_id TEXT,
			issued_at TIMESTAMP NOT NULL,
			expires_at TIMESTAMP,
			appealed_at TIMESTAMP,
			resolved_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);`,

		// Webhook endpoints table - event_types is a JSON array of
		// subscribed types, '*' subscribes to everything
		`CREATE TABLE IF NOT EXISTS webhook_endpoints (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			url TEXT NOT NULL,
			secret TEXT NOT NULL,
			event_types JSON,
			enabled BOOLEAN NOT NULL DEFAULT true,
			consecutive_failures INTEGER NOT NULL DEFAULT 0,
			disabled_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);`,

		// Webhook deliveries table - one row per event per endpoint
		`CREATE TABLE IF NOT EXISTS webhook_deliveries (
			id UUID PRIMARY KEY,
			endpoint_id UUID NOT NULL,
			event_type TEXT NOT NULL,
			payload BLOB,
			status TEXT NOT NULL DEFAULT 'pending',
			attempt_count INTEGER NOT NULL DEFAULT 0,
			next_attempt_at TIMESTAMP,
			last_attempt_at TIMESTAMP,
			last_status_code INTEGER,
			last_error TEXT,
			delivered_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);`,

		// Resource usage table - point-in-time samples from the monitor
		`CREATE TABLE IF NOT EXISTS resource_usage (
			id BIGINT PRIMARY KEY DEFAULT nextval('resource_usage_id_seq'),
			user_id UUID NOT NULL,
			kind TEXT NOT NULL,
			used BIGINT NOT NULL DEFAULT 0,
			usage_limit BIGINT NOT NULL DEFAULT 0,
			captured_at TIMESTAMP NOT NULL
		);`,

		// Quota alerts table - threshold crossings, cleared when usage drops
		`CREATE TABLE IF NOT EXISTS quota_alerts (
			id BIGINT PRIMARY KEY DEFAULT nextval('quota_alerts_id_seq'),
			user_id UUID NOT NULL,
			kind TEXT NOT NULL,
			level TEXT NOT NULL,
			percent_at_alert DOUBLE NOT NULL DEFAULT 0,
			fired_at TIMESTAMP NOT NULL,
			cleared_at TIMESTAMP,
			notified_at TIMESTAMP
		);`,
	}

	return queries
}

// createIndexes creates query indexes after tables exist
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := db.getIndexQueries()

	for _, query := range indexes {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute index query: %s: %w", query, err)
		}
	}

	return nil
}

// getIndexQueries returns index creation SQL statements
func (db *DB) getIndexQueries() []string {
	return []string{
		// Slot conflict checks scan a channel's events by start time
		`CREATE INDEX IF NOT EXISTS idx_events_channel_start ON live_events(channel_id, start_time);`,
		`CREATE INDEX IF NOT EXISTS idx_events_user_id ON live_events(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_events_status ON live_events(status);`,
		`CREATE INDEX IF NOT EXISTS idx_events_recurrence ON live_events(recurrence_id);`,
		`CREATE INDEX IF NOT EXISTS idx_events_start_time ON live_events(start_time);`,

		// Materializer scans active patterns by cursor position
		`CREATE INDEX IF NOT EXISTS idx_recurrence_status ON recurrence_patterns(status, last_materialized_at);`,
		`CREATE INDEX IF NOT EXISTS idx_recurrence_channel ON recurrence_patterns(channel_id);`,
		`CREATE INDEX IF NOT EXISTS idx_recurrence_user ON recurrence_patterns(user_id);`,

		`CREATE INDEX IF NOT EXISTS idx_channels_user_id ON channels(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_channels_status ON channels(status);`,

		`CREATE INDEX IF NOT EXISTS idx_subscriptions_user ON subscriptions(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_subscriptions_status ON subscriptions(status);`,
		`CREATE INDEX IF NOT EXISTS idx_subscriptions_period_end ON subscriptions(current_period_end);`,
		`CREATE INDEX IF NOT EXISTS idx_invoices_user ON invoices(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_invoices_subscription ON invoices(subscription_id);`,

		// Batcher fetches pending notifications per user and window
		`CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_status ON notifications(status);`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_dedupe ON notifications(user_id, dedupe_key);`,
		`CREATE INDEX IF NOT EXISTS idx_notification_batches_user ON notification_batches(user_id);`,

		`CREATE INDEX IF NOT EXISTS idx_moderation_rules_user ON moderation_rules(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_moderation_rules_channel ON moderation_rules(channel_id);`,
		`CREATE INDEX IF NOT EXISTS idx_violations_rule ON moderation_violations(rule_id);`,
		`CREATE INDEX IF NOT EXISTS idx_violations_channel_created ON moderation_violations(channel_id, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_violations_review ON moderation_violations(review_status);`,

		// Scanner picks up unscanned comments per channel
		`CREATE INDEX IF NOT EXISTS idx_comments_channel_scanned ON comments(channel_id, scanned);`,
		`CREATE INDEX IF NOT EXISTS idx_comments_video ON comments(video_id);`,
		`CREATE INDEX IF NOT EXISTS idx_comments_published ON comments(published_at DESC);`,

		`CREATE INDEX IF NOT EXISTS idx_triggers_channel ON chatbot_triggers(channel_id);`,
		`CREATE INDEX IF NOT EXISTS idx_triggers_user ON chatbot_triggers(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_replies_trigger ON chatbot_replies(trigger_id);`,
		`CREATE INDEX IF NOT EXISTS idx_replies_channel_created ON chatbot_replies(channel_id, created_at DESC);`,

		`CREATE INDEX IF NOT EXISTS idx_strikes_channel ON strikes(channel_id);`,
		`CREATE INDEX IF NOT EXISTS idx_strikes_user ON strikes(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_strikes_status ON strikes(status);`,

		// Dispatcher scans due deliveries
		`CREATE INDEX IF NOT EXISTS idx_deliveries_status_next ON webhook_deliveries(status, next_attempt_at);`,
		`CREATE INDEX IF NOT EXISTS idx_deliveries_endpoint ON webhook_deliveries(endpoint_id);`,
		`CREATE INDEX IF NOT EXISTS idx_endpoints_user ON webhook_endpoints(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_endpoints_enabled ON webhook_endpoints(enabled);`,

		`CREATE INDEX IF NOT EXISTS idx_usage_user_kind ON resource_usage(user_id, kind, captured_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_quota_alerts_user_kind ON quota_alerts(user_id, kind);`,
		`CREATE INDEX IF NOT EXISTS idx_quota_alerts_cleared ON quota_alerts(cleared_at);`,
	}
}
