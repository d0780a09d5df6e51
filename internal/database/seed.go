// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tubefleet/tubefleet/internal/logging"
	"github.com/tubefleet/tubefleet/internal/models"
)

// defaultPlans is the built-in plan catalog inserted on first startup.
// A limit of 0 means unlimited. Prices are in cents per billing interval.
// Existing rows are never overwritten so operators can tune limits and
// prices through the admin API without fighting the seeder.
func defaultPlans() []models.Plan {
	now := time.Now().UTC()
	plans := []models.Plan{
		{
			Slug:                 "free",
			Name:                 "Free",
			PriceCents:           0,
			MaxChannels:          1,
			MaxScheduledEvents:   5,
			MaxConcurrentStreams: 1,
			MaxModerationRules:   3,
			MaxChatbotTriggers:   1,
			MaxWebhookEndpoints:  1,
		},
		{
			Slug:                 "creator",
			Name:                 "Creator",
			PriceCents:           1900,
			MaxChannels:          3,
			MaxScheduledEvents:   50,
			MaxConcurrentStreams: 2,
			MaxModerationRules:   25,
			MaxChatbotTriggers:   10,
			MaxWebhookEndpoints:  3,
		},
		{
			Slug:                 "studio",
			Name:                 "Studio",
			PriceCents:           7900,
			MaxChannels:          10,
			MaxScheduledEvents:   500,
			MaxConcurrentStreams: 5,
			MaxModerationRules:   100,
			MaxChatbotTriggers:   50,
			MaxWebhookEndpoints:  10,
		},
		{
			Slug:       "enterprise",
			Name:       "Enterprise",
			PriceCents: 29900,
			// All limits unlimited.
		},
	}

	for i := range plans {
		plans[i].ID = uuid.New()
		plans[i].Currency = "usd"
		plans[i].Interval = models.PlanIntervalMonth
		plans[i].Active = true
		plans[i].CreatedAt = now
		plans[i].UpdatedAt = now
	}
	return plans
}

// seedPlans inserts the default plan catalog, skipping slugs that already
// exist. Called during initialization after tables are created.
func (db *DB) seedPlans() error {
	ctx, cancel := schemaContext()
	defer cancel()

	seeded := 0
	for _, plan := range defaultPlans() {
		var count int
		err := db.conn.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM plans WHERE slug = ?`, plan.Slug).Scan(&count)
		if err != nil {
			return fmt.Errorf("failed to check plan %s: %w", plan.Slug, err)
		}
		if count > 0 {
			continue
		}

		if err := db.createPlanContext(ctx, &plan); err != nil {
			return fmt.Errorf("failed to seed plan %s: %w", plan.Slug, err)
		}
		seeded++
	}

	if seeded > 0 {
		logging.Info().Int("count", seeded).Msg("Seeded default plan catalog")
	}

	return nil
}

// createPlanContext inserts a plan row using the caller's context. The
// public CreatePlan wraps this with the usual query timeout.
func (db *DB) createPlanContext(ctx context.Context, plan *models.Plan) error {
	query := `
		INSERT INTO plans (
			id, slug, name, price_cents, currency, billing_interval,
			max_channels, max_scheduled_events, max_concurrent_streams,
			max_moderation_rules, max_chatbot_triggers, max_webhook_endpoints,
			stripe_price_id, active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.conn.ExecContext(ctx, query,
		plan.ID, plan.Slug, plan.Name, plan.PriceCents, plan.Currency, plan.Interval,
		plan.MaxChannels, plan.MaxScheduledEvents, plan.MaxConcurrentStreams,
		plan.MaxModerationRules, plan.MaxChatbotTriggers, plan.MaxWebhookEndpoints,
		plan.StripePriceID, plan.Active, plan.CreatedAt, plan.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to insert plan: %w", err)
	}
	return nil
}
