// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tubefleet/tubefleet/internal/config"
	"github.com/tubefleet/tubefleet/internal/database"
	"github.com/tubefleet/tubefleet/internal/logging"
	"github.com/tubefleet/tubefleet/internal/metrics"
	"github.com/tubefleet/tubefleet/internal/models"
)

// Service-level errors.
var (
	ErrAlreadySubscribed = errors.New("user already has a live subscription")
	ErrNoSubscription    = errors.New("user has no live subscription")
	ErrSamePlan          = errors.New("subscription is already on this plan")
	ErrPlanInactive      = errors.New("plan is not available")
)

// Store is the persistence surface the billing service needs.
type Store interface {
	GetUser(ctx context.Context, id string) (*models.User, error)

	GetPlan(ctx context.Context, id string) (*models.Plan, error)
	ListPlans(ctx context.Context, activeOnly bool) ([]models.Plan, error)

	CreateSubscription(ctx context.Context, sub *models.Subscription) error
	GetLiveSubscriptionByUser(ctx context.Context, userID string) (*models.Subscription, error)
	UpdateSubscription(ctx context.Context, sub *models.Subscription) error

	GetDiscountCodeByCode(ctx context.Context, code string) (*models.DiscountCode, error)
	RedeemDiscountCode(ctx context.Context, id string) error

	CreateInvoice(ctx context.Context, invoice *models.Invoice) error
	UpdateInvoiceStatus(ctx context.Context, id string, status string) error
	SetInvoiceStripeID(ctx context.Context, id string, stripeInvoiceID string) error
}

// Publisher emits billing events on the bus. Publish failures are logged
// and never roll back billing state.
type Publisher interface {
	SubscriptionChanged(ctx context.Context, sub *models.Subscription, planName, previousPlan, reason string) error
	PaymentFailed(ctx context.Context, sub *models.Subscription, invoiceID string, amountCents int64, reason string) error
	InvoiceIssued(ctx context.Context, invoice *models.Invoice) error
}

// Service orchestrates plans, subscriptions, discounts, and proration.
// The gateway and publisher may be nil (tests, Stripe disabled); local
// state then advances without remote side effects.
type Service struct {
	store     Store
	gateway   Gateway
	publisher Publisher
	cfg       config.BillingConfig

	// now is swapped in tests for deterministic period math.
	now func() time.Time
}

// NewService creates the billing service.
func NewService(store Store, gateway Gateway, publisher Publisher, cfg config.BillingConfig) *Service {
	return &Service{
		store:     store,
		gateway:   gateway,
		publisher: publisher,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Plans lists the purchasable plans.
func (s *Service) Plans(ctx context.Context) ([]models.Plan, error) {
	return s.store.ListPlans(ctx, true)
}

// CurrentSubscription returns the user's live subscription with its plan.
func (s *Service) CurrentSubscription(ctx context.Context, userID uuid.UUID) (*models.Subscription, *models.Plan, error) {
	sub, err := s.store.GetLiveSubscriptionByUser(ctx, userID.String())
	if err != nil {
		return nil, nil, err
	}
	plan, err := s.store.GetPlan(ctx, sub.PlanID.String())
	if err != nil {
		return nil, nil, fmt.Errorf("loading plan for subscription %s: %w", sub.ID, err)
	}
	return sub, plan, nil
}

// ValidateCode checks a discount code against a plan without redeeming it.
func (s *Service) ValidateCode(ctx context.Context, code string, planID uuid.UUID) (*models.DiscountCode, error) {
	dc, err := s.store.GetDiscountCodeByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := ValidateDiscount(dc, planID, s.now()); err != nil {
		return nil, err
	}
	return dc, nil
}

// Subscribe starts a subscription on the given plan, optionally applying a
// discount code. A user can hold at most one live subscription.
//
// The Stripe customer/subscription is created best-effort: a gateway
// failure leaves the local subscription past_due and emits
// billing.payment_failed, matching the never-abort policy.
func (s *Service) Subscribe(ctx context.Context, userID, planID uuid.UUID, discountCode string) (*models.Subscription, error) {
	if _, err := s.store.GetLiveSubscriptionByUser(ctx, userID.String()); err == nil {
		return nil, ErrAlreadySubscribed
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	plan, err := s.store.GetPlan(ctx, planID.String())
	if err != nil {
		return nil, err
	}
	if !plan.Active {
		return nil, ErrPlanInactive
	}

	now := s.now()

	var dc *models.DiscountCode
	if discountCode != "" {
		dc, err = s.ValidateCode(ctx, discountCode, planID)
		if err != nil {
			return nil, err
		}
	}

	sub := &models.Subscription{
		ID:                 uuid.New(),
		UserID:             userID,
		PlanID:             planID,
		Status:             models.SubscriptionStatusActive,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   addPeriod(now, plan.Interval),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if s.cfg.TrialDays > 0 {
		trialEnd := now.AddDate(0, 0, s.cfg.TrialDays)
		sub.Status = models.SubscriptionStatusTrialing
		sub.TrialEndsAt = &trialEnd
	}
	if dc != nil {
		sub.DiscountCodeID = &dc.ID
	}

	if err := s.store.CreateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("creating subscription: %w", err)
	}

	if dc != nil {
		if err := s.store.RedeemDiscountCode(ctx, dc.ID.String()); err != nil {
			// The subscription stands; the cap race only costs one redemption.
			logging.Warn().Err(err).Str("code", dc.Code).Msg("Discount redemption record failed")
		}
	}

	s.attachRemote(ctx, sub, plan)
	s.publishSubscriptionChanged(ctx, sub, plan.Name, "", "subscribed")
	metrics.BillingActiveSubscriptions.WithLabelValues(sub.Status).Inc()

	logging.Info().
		Str("user_id", userID.String()).
		Str("plan", plan.Slug).
		Str("status", sub.Status).
		Msg("Subscription created")
	return sub, nil
}

// attachRemote creates the Stripe customer and subscription. Failures mark
// the local subscription past_due.
func (s *Service) attachRemote(ctx context.Context, sub *models.Subscription, plan *models.Plan) {
	if s.gateway == nil || plan.StripePriceID == nil {
		return
	}

	user, err := s.store.GetUser(ctx, sub.UserID.String())
	if err != nil {
		logging.Error().Err(err).Str("user_id", sub.UserID.String()).Msg("Loading user for Stripe attach failed")
		return
	}

	customerID, err := s.gateway.CreateCustomer(ctx, user.Email, user.Username)
	if err == nil {
		sub.StripeCustomerID = &customerID
		var remoteSubID string
		remoteSubID, err = s.gateway.AttachSubscription(ctx, customerID, *plan.StripePriceID)
		if err == nil {
			sub.StripeSubscriptionID = &remoteSubID
		}
	}

	if err != nil {
		sub.Status = models.SubscriptionStatusPastDue
		metrics.BillingChargesFailed.Inc()
		logging.Error().Err(err).Str("subscription_id", sub.ID.String()).Msg("Stripe attach failed, subscription past_due")
		s.publishPaymentFailed(ctx, sub, "", plan.PriceCents, err.Error())
	}

	sub.UpdatedAt = s.now()
	if uerr := s.store.UpdateSubscription(ctx, sub); uerr != nil {
		logging.Error().Err(uerr).Str("subscription_id", sub.ID.String()).Msg("Persisting Stripe binding failed")
	}
}

// PreviewPlanChange computes the proration for switching the user's live
// subscription to newPlanID, with no side effects.
func (s *Service) PreviewPlanChange(ctx context.Context, userID, newPlanID uuid.UUID) (*ProrationPreview, error) {
	sub, oldPlan, err := s.CurrentSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub.PlanID == newPlanID {
		return nil, ErrSamePlan
	}
	newPlan, err := s.store.GetPlan(ctx, newPlanID.String())
	if err != nil {
		return nil, err
	}
	if !newPlan.Active {
		return nil, ErrPlanInactive
	}

	preview := Prorate(oldPlan.PriceCents, newPlan.PriceCents, sub.CurrentPeriodStart, sub.CurrentPeriodEnd, s.now())
	return &preview, nil
}

// ChangePlan applies a mid-period plan switch: writes the proration invoice,
// moves the subscription to the new plan, and attempts collection through
// Stripe. A collection failure leaves the invoice open and the subscription
// past_due; the plan change itself stands.
func (s *Service) ChangePlan(ctx context.Context, userID, newPlanID uuid.UUID) (*models.Invoice, error) {
	sub, oldPlan, err := s.CurrentSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub.PlanID == newPlanID {
		return nil, ErrSamePlan
	}
	newPlan, err := s.store.GetPlan(ctx, newPlanID.String())
	if err != nil {
		return nil, err
	}
	if !newPlan.Active {
		return nil, ErrPlanInactive
	}

	now := s.now()
	preview := Prorate(oldPlan.PriceCents, newPlan.PriceCents, sub.CurrentPeriodStart, sub.CurrentPeriodEnd, now)

	invoice := &models.Invoice{
		ID:             uuid.New(),
		UserID:         userID,
		SubscriptionID: sub.ID,
		Status:         models.InvoiceStatusOpen,
		Currency:       s.currency(),
		SubtotalCents:  preview.NetCents,
		TotalCents:     preview.NetCents,
		Lines: []models.InvoiceLine{
			{
				Description: fmt.Sprintf("Unused time on %s", oldPlan.Name),
				AmountCents: -preview.CreditCents,
				PeriodStart: now,
				PeriodEnd:   sub.CurrentPeriodEnd,
				Proration:   true,
			},
			{
				Description: fmt.Sprintf("Remaining time on %s", newPlan.Name),
				AmountCents: preview.ChargeCents,
				PeriodStart: now,
				PeriodEnd:   sub.CurrentPeriodEnd,
				Proration:   true,
			},
		},
		PeriodStart: now,
		PeriodEnd:   sub.CurrentPeriodEnd,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateInvoice(ctx, invoice); err != nil {
		return nil, fmt.Errorf("creating proration invoice: %w", err)
	}
	metrics.BillingInvoicesIssued.Inc()

	previousPlan := oldPlan.Name
	sub.PlanID = newPlanID
	sub.UpdatedAt = now

	collected := s.collect(ctx, sub, invoice)
	if !collected {
		sub.Status = models.SubscriptionStatusPastDue
	}

	if err := s.store.UpdateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("updating subscription plan: %w", err)
	}

	s.publishSubscriptionChanged(ctx, sub, newPlan.Name, previousPlan, "plan_changed")
	if s.publisher != nil {
		if perr := s.publisher.InvoiceIssued(ctx, invoice); perr != nil {
			logging.Warn().Err(perr).Msg("Failed to publish invoice event")
		}
	}

	logging.Info().
		Str("user_id", userID.String()).
		Str("from", previousPlan).
		Str("to", newPlan.Name).
		Int64("net_cents", preview.NetCents).
		Msg("Plan changed")
	return invoice, nil
}

// collect settles one invoice through the gateway. A non-positive total is
// paid immediately (net credit); a declined or unavailable gateway leaves
// the invoice open and reports failure.
func (s *Service) collect(ctx context.Context, sub *models.Subscription, invoice *models.Invoice) bool {
	if invoice.TotalCents <= 0 || s.gateway == nil || sub.StripeCustomerID == nil {
		if err := s.store.UpdateInvoiceStatus(ctx, invoice.ID.String(), models.InvoiceStatusPaid); err != nil {
			logging.Error().Err(err).Str("invoice_id", invoice.ID.String()).Msg("Marking invoice paid failed")
		}
		invoice.Status = models.InvoiceStatusPaid
		return true
	}

	description := "TubeFleet proration adjustment"
	stripeID, err := s.gateway.CollectInvoice(ctx, *sub.StripeCustomerID, invoice.TotalCents, invoice.Currency, description)
	if err != nil {
		metrics.BillingChargesFailed.Inc()
		logging.Error().Err(err).Str("invoice_id", invoice.ID.String()).Msg("Invoice collection failed")
		s.publishPaymentFailed(ctx, sub, invoice.ID.String(), invoice.TotalCents, err.Error())
		return false
	}

	if err := s.store.SetInvoiceStripeID(ctx, invoice.ID.String(), stripeID); err != nil {
		logging.Warn().Err(err).Str("invoice_id", invoice.ID.String()).Msg("Recording Stripe invoice id failed")
	}
	if err := s.store.UpdateInvoiceStatus(ctx, invoice.ID.String(), models.InvoiceStatusPaid); err != nil {
		logging.Error().Err(err).Str("invoice_id", invoice.ID.String()).Msg("Marking invoice paid failed")
	}
	invoice.Status = models.InvoiceStatusPaid
	invoice.StripeInvoiceID = &stripeID
	return true
}

// SetCancelAtPeriodEnd flags or unflags the live subscription for
// cancellation when the current period ends.
func (s *Service) SetCancelAtPeriodEnd(ctx context.Context, userID uuid.UUID, cancel bool) (*models.Subscription, error) {
	sub, plan, err := s.CurrentSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sub.CancelAtPeriodEnd = cancel
	if cancel {
		sub.CanceledAt = &now
	} else {
		sub.CanceledAt = nil
	}
	sub.UpdatedAt = now

	if err := s.store.UpdateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("updating subscription: %w", err)
	}

	reason := "cancel_at_period_end"
	if !cancel {
		reason = "cancel_reverted"
	}
	s.publishSubscriptionChanged(ctx, sub, plan.Name, plan.Name, reason)
	return sub, nil
}

func (s *Service) publishSubscriptionChanged(ctx context.Context, sub *models.Subscription, planName, previousPlan, reason string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.SubscriptionChanged(ctx, sub, planName, previousPlan, reason); err != nil {
		logging.Warn().Err(err).Str("subscription_id", sub.ID.String()).Msg("Failed to publish subscription change")
	}
}

func (s *Service) publishPaymentFailed(ctx context.Context, sub *models.Subscription, invoiceID string, amountCents int64, reason string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PaymentFailed(ctx, sub, invoiceID, amountCents, reason); err != nil {
		logging.Warn().Err(err).Str("subscription_id", sub.ID.String()).Msg("Failed to publish payment failure")
	}
}

// currency returns the configured billing currency, defaulting to USD.
func (s *Service) currency() string {
	if s.cfg.Currency != "" {
		return s.cfg.Currency
	}
	return "USD"
}

// addPeriod advances a period boundary by one plan interval. Month
// arithmetic follows time.AddDate normalization (Jan 31 + 1 month lands in
// early March); periods are billing windows, not calendar anniversaries.
func addPeriod(t time.Time, interval string) time.Time {
	if interval == models.PlanIntervalYear {
		return t.AddDate(1, 0, 0)
	}
	return t.AddDate(0, 1, 0)
}
