// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package billing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tubefleet/tubefleet/internal/logging"
	"github.com/tubefleet/tubefleet/internal/metrics"
	"github.com/tubefleet/tubefleet/internal/models"
)

// RenewerStore extends Store with the renewal scan.
type RenewerStore interface {
	Store

	// ListSubscriptionsDueForRenewal returns live subscriptions whose
	// current period ends at or before cutoff.
	ListSubscriptionsDueForRenewal(ctx context.Context, cutoff time.Time) ([]models.Subscription, error)

	// CountSubscriptionsByStatus feeds the active-subscription gauges.
	CountSubscriptionsByStatus(ctx context.Context) (map[string]int64, error)
}

// RenewerConfig holds renewal loop settings.
type RenewerConfig struct {
	// CheckInterval is how often due subscriptions are scanned.
	CheckInterval time.Duration

	// GraceDays is how long a past_due subscription keeps its entitlements
	// before expiring.
	GraceDays int

	// Enabled controls whether the run loop executes at all.
	Enabled bool
}

// DefaultRenewerConfig returns production defaults.
func DefaultRenewerConfig() RenewerConfig {
	return RenewerConfig{
		CheckInterval: time.Hour,
		GraceDays:     7,
		Enabled:       true,
	}
}

// Renewer rolls subscription periods over: on each pass it renews due
// subscriptions (or cancels ones flagged cancel-at-period-end), issues the
// renewal invoice, and expires past_due subscriptions whose grace window
// has lapsed.
type Renewer struct {
	store   RenewerStore
	service *Service
	config  RenewerConfig

	now func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewRenewer creates the renewal loop around an existing billing service.
func NewRenewer(store RenewerStore, service *Service, config RenewerConfig) *Renewer {
	return &Renewer{
		store:   store,
		service: service,
		config:  config,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Start launches the background run loop. Calling Start on a running
// renewer is a no-op.
func (r *Renewer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return nil
	}
	if !r.config.Enabled {
		logging.Info().Msg("Subscription renewer disabled")
		return nil
	}

	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	r.running = true

	go r.run(ctx)

	logging.Info().
		Dur("check_interval", r.config.CheckInterval).
		Int("grace_days", r.config.GraceDays).
		Msg("Subscription renewer started")
	return nil
}

// Stop terminates the run loop and waits for the in-flight pass to finish.
func (r *Renewer) Stop() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = false
	close(r.stopCh)
	doneCh := r.doneCh
	r.mu.Unlock()

	<-doneCh
	logging.Info().Msg("Subscription renewer stopped")
	return nil
}

func (r *Renewer) run(ctx context.Context) {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.config.CheckInterval)
	defer ticker.Stop()

	r.RenewDue(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.RenewDue(ctx)
		}
	}
}

// RenewDue runs one renewal pass. Exported so tests and the admin API can
// force a pass without waiting for the ticker.
func (r *Renewer) RenewDue(ctx context.Context) {
	now := r.now()

	subs, err := r.store.ListSubscriptionsDueForRenewal(ctx, now)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to list due subscriptions")
		return
	}

	for i := range subs {
		sub := subs[i]
		if err := r.renewOne(ctx, &sub, now); err != nil {
			logging.Error().
				Err(err).
				Str("subscription_id", sub.ID.String()).
				Msg("Subscription renewal failed")
		}
	}

	r.refreshGauges(ctx)
}

// renewOne rolls a single subscription over its period boundary.
func (r *Renewer) renewOne(ctx context.Context, sub *models.Subscription, now time.Time) error {
	plan, err := r.store.GetPlan(ctx, sub.PlanID.String())
	if err != nil {
		return fmt.Errorf("loading plan: %w", err)
	}

	// Flagged subscriptions end instead of renewing.
	if sub.CancelAtPeriodEnd {
		sub.Status = models.SubscriptionStatusCanceled
		sub.UpdatedAt = now
		if err := r.store.UpdateSubscription(ctx, sub); err != nil {
			return fmt.Errorf("canceling subscription: %w", err)
		}
		r.service.publishSubscriptionChanged(ctx, sub, plan.Name, plan.Name, "period_ended")
		logging.Info().Str("subscription_id", sub.ID.String()).Msg("Subscription canceled at period end")
		return nil
	}

	// A past_due subscription past its grace window expires.
	if sub.Status == models.SubscriptionStatusPastDue {
		graceEnd := sub.CurrentPeriodEnd.AddDate(0, 0, r.config.GraceDays)
		if now.After(graceEnd) {
			sub.Status = models.SubscriptionStatusExpired
			sub.UpdatedAt = now
			if err := r.store.UpdateSubscription(ctx, sub); err != nil {
				return fmt.Errorf("expiring subscription: %w", err)
			}
			r.service.publishSubscriptionChanged(ctx, sub, plan.Name, plan.Name, "grace_expired")
			logging.Warn().Str("subscription_id", sub.ID.String()).Msg("Subscription expired after grace window")
		}
		return nil
	}

	periodStart := sub.CurrentPeriodEnd
	periodEnd := addPeriod(periodStart, plan.Interval)

	invoice := &models.Invoice{
		ID:             uuid.New(),
		UserID:         sub.UserID,
		SubscriptionID: sub.ID,
		Status:         models.InvoiceStatusOpen,
		Currency:       r.service.currency(),
		SubtotalCents:  plan.PriceCents,
		TotalCents:     plan.PriceCents,
		Lines: []models.InvoiceLine{
			{
				Description: plan.Name,
				AmountCents: plan.PriceCents,
				PeriodStart: periodStart,
				PeriodEnd:   periodEnd,
			},
		},
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.store.CreateInvoice(ctx, invoice); err != nil {
		return fmt.Errorf("creating renewal invoice: %w", err)
	}
	metrics.BillingInvoicesIssued.Inc()

	sub.CurrentPeriodStart = periodStart
	sub.CurrentPeriodEnd = periodEnd
	sub.Status = models.SubscriptionStatusActive
	sub.TrialEndsAt = nil
	sub.UpdatedAt = now

	if !r.service.collect(ctx, sub, invoice) {
		sub.Status = models.SubscriptionStatusPastDue
	}

	if err := r.store.UpdateSubscription(ctx, sub); err != nil {
		return fmt.Errorf("rolling subscription period: %w", err)
	}

	r.service.publishSubscriptionChanged(ctx, sub, plan.Name, plan.Name, "renewed")
	logging.Info().
		Str("subscription_id", sub.ID.String()).
		Str("status", sub.Status).
		Time("period_end", periodEnd).
		Msg("Subscription renewed")
	return nil
}

// refreshGauges resets the per-plan active subscription gauges from the
// authoritative counts.
func (r *Renewer) refreshGauges(ctx context.Context) {
	counts, err := r.store.CountSubscriptionsByStatus(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to count subscriptions")
		return
	}
	for status, count := range counts {
		metrics.BillingActiveSubscriptions.WithLabelValues(status).Set(float64(count))
	}
}
