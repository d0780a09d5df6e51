// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package monitoring

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tubefleet/tubefleet/internal/database"
	"github.com/tubefleet/tubefleet/internal/metrics"
	"github.com/tubefleet/tubefleet/internal/models"
)

// ErrLimitExceeded is returned by CheckLimit when creating another resource
// would put the user over their plan limit. Handlers map it to 403.
var ErrLimitExceeded = errors.New("plan limit exceeded")

// FreeLimits applies to users without a live subscription. Kept deliberately
// small so the free tier is useful for evaluation without carrying real load.
var FreeLimits = map[string]int64{
	models.ResourceChannels:          1,
	models.ResourceScheduledEvents:   5,
	models.ResourceConcurrentStreams: 1,
	models.ResourceModerationRules:   3,
	models.ResourceChatbotTriggers:   3,
	models.ResourceWebhookEndpoints:  1,
}

// PlanStore resolves a user's subscription plan.
type PlanStore interface {
	GetLiveSubscriptionByUser(ctx context.Context, userID string) (*models.Subscription, error)
	GetPlan(ctx context.Context, id string) (*models.Plan, error)
}

// CountStore counts a user's current consumption of each plan-limited
// resource.
type CountStore interface {
	CountChannelsByUser(ctx context.Context, userID string) (int64, error)
	CountScheduledEventsByUser(ctx context.Context, userID string) (int64, error)
	CountLiveEventsByUser(ctx context.Context, userID string) (int64, error)
	CountModerationRulesByUser(ctx context.Context, userID string) (int64, error)
	CountChatbotTriggersByUser(ctx context.Context, userID string) (int64, error)
	CountWebhookEndpointsByUser(ctx context.Context, userID string) (int64, error)
}

// CheckerStore combines plan resolution with resource counting.
type CheckerStore interface {
	PlanStore
	CountStore
}

// Checker answers "can this user create one more X" synchronously. Creation
// paths call CheckLimit before inserting; the collector handles the async
// warning side.
type Checker struct {
	store CheckerStore
}

// NewChecker creates a limit checker.
func NewChecker(store CheckerStore) *Checker {
	return &Checker{store: store}
}

// Limits returns the limit per resource kind for the user's current plan,
// falling back to the free tier when no subscription is live. The returned
// slug names the plan the limits came from.
func (c *Checker) Limits(ctx context.Context, userID uuid.UUID) (map[string]int64, string, error) {
	sub, err := c.store.GetLiveSubscriptionByUser(ctx, userID.String())
	if err != nil {
		if errors.Is(err, database.ErrSubscriptionNotFound) {
			return FreeLimits, "free", nil
		}
		return nil, "", fmt.Errorf("resolving subscription: %w", err)
	}

	plan, err := c.store.GetPlan(ctx, sub.PlanID.String())
	if err != nil {
		return nil, "", fmt.Errorf("loading plan %s: %w", sub.PlanID, err)
	}
	return planLimits(plan), plan.Slug, nil
}

// CheckLimit returns ErrLimitExceeded when the user's current count of kind
// is at or above the plan limit. A limit of zero or below means unlimited.
func (c *Checker) CheckLimit(ctx context.Context, userID uuid.UUID, kind string) error {
	limits, _, err := c.Limits(ctx, userID)
	if err != nil {
		return err
	}

	limit, ok := limits[kind]
	if !ok || limit <= 0 {
		return nil
	}

	used, err := c.count(ctx, userID.String(), kind)
	if err != nil {
		return err
	}
	if used >= limit {
		metrics.QuotaLimitRejections.WithLabelValues(kind).Inc()
		return fmt.Errorf("%w: %s at %d of %d", ErrLimitExceeded, kind, used, limit)
	}
	return nil
}

func (c *Checker) count(ctx context.Context, userID, kind string) (int64, error) {
	switch kind {
	case models.ResourceChannels:
		return c.store.CountChannelsByUser(ctx, userID)
	case models.ResourceScheduledEvents:
		return c.store.CountScheduledEventsByUser(ctx, userID)
	case models.ResourceConcurrentStreams:
		return c.store.CountLiveEventsByUser(ctx, userID)
	case models.ResourceModerationRules:
		return c.store.CountModerationRulesByUser(ctx, userID)
	case models.ResourceChatbotTriggers:
		return c.store.CountChatbotTriggersByUser(ctx, userID)
	case models.ResourceWebhookEndpoints:
		return c.store.CountWebhookEndpointsByUser(ctx, userID)
	default:
		return 0, fmt.Errorf("unknown resource kind %q", kind)
	}
}

// planLimits flattens a plan's limit columns into the kind map the
// collector and checker consume.
func planLimits(plan *models.Plan) map[string]int64 {
	return map[string]int64{
		models.ResourceChannels:          int64(plan.MaxChannels),
		models.ResourceScheduledEvents:   int64(plan.MaxScheduledEvents),
		models.ResourceConcurrentStreams: int64(plan.MaxConcurrentStreams),
		models.ResourceModerationRules:   int64(plan.MaxModerationRules),
		models.ResourceChatbotTriggers:   int64(plan.MaxChatbotTriggers),
		models.ResourceWebhookEndpoints:  int64(plan.MaxWebhookEndpoints),
	}
}

// countedKinds is the sample order for collection and reports.
var countedKinds = []string{
	models.ResourceChannels,
	models.ResourceScheduledEvents,
	models.ResourceConcurrentStreams,
	models.ResourceModerationRules,
	models.ResourceChatbotTriggers,
	models.ResourceWebhookEndpoints,
}
