// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package models

import (
	"time"

	"github.com/google/uuid"
)

// Billing interval constants for plans.
const (
	PlanIntervalMonth = "month"
	PlanIntervalYear  = "year"
)

// ValidPlanIntervals contains all valid plan billing intervals for validation.
var ValidPlanIntervals = []string{PlanIntervalMonth, PlanIntervalYear}

// IsValidPlanInterval checks if a plan interval value is valid.
func IsValidPlanInterval(interval string) bool {
	for _, i := range ValidPlanIntervals {
		if i == interval {
			return true
		}
	}
	return false
}

// Plan represents a subscription tier with its resource limits.
//
// Limits feed the monitoring module: resource usage is compared against the
// subscribed plan's limits and warnings fire at the configured thresholds.
// All monetary amounts are integer cents to avoid floating point drift.
type Plan struct {
	ID   uuid.UUID `json:"id"`
	Slug string    `json:"slug"`
	Name string    `json:"name"`

	PriceCents int64  `json:"price_cents"`
	Currency   string `json:"currency"`
	Interval   string `json:"interval"`

	// Resource limits enforced by the monitoring module.
	MaxChannels          int `json:"max_channels"`
	MaxScheduledEvents   int `json:"max_scheduled_events"`
	MaxConcurrentStreams int `json:"max_concurrent_streams"`
	MaxModerationRules   int `json:"max_moderation_rules"`
	MaxChatbotTriggers   int `json:"max_chatbot_triggers"`
	MaxWebhookEndpoints  int `json:"max_webhook_endpoints"`

	// StripePriceID maps the plan to its Stripe Price for checkout.
	StripePriceID *string `json:"stripe_price_id,omitempty"`

	Active bool `json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Subscription status constants. These mirror Stripe's subscription states
// so webhook updates map directly.
const (
	SubscriptionStatusTrialing = "trialing"
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
	SubscriptionStatusExpired  = "expired"
)

// ValidSubscriptionStatuses contains all valid subscription status values for validation.
var ValidSubscriptionStatuses = []string{
	SubscriptionStatusTrialing,
	SubscriptionStatusActive,
	SubscriptionStatusPastDue,
	SubscriptionStatusCanceled,
	SubscriptionStatusExpired,
}

// IsValidSubscriptionStatus checks if a subscription status value is valid.
func IsValidSubscriptionStatus(status string) bool {
	for _, s := range ValidSubscriptionStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Subscription binds a user to a plan for a billing period.
//
// Plan changes mid-period are prorated: the user is credited for the unused
// fraction of the old plan and charged for the remaining fraction of the new
// plan, each amount rounded to cents separately (see internal/billing).
type Subscription struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	PlanID uuid.UUID `json:"plan_id"`

	Status string `json:"status"`

	CurrentPeriodStart time.Time `json:"current_period_start"`
	CurrentPeriodEnd   time.Time `json:"current_period_end"`

	// CancelAtPeriodEnd schedules a cancellation without cutting service.
	CancelAtPeriodEnd bool       `json:"cancel_at_period_end"`
	CanceledAt        *time.Time `json:"canceled_at,omitempty"`
	TrialEndsAt       *time.Time `json:"trial_ends_at,omitempty"`

	// DiscountCodeID records an applied discount for invoice generation.
	DiscountCodeID *uuid.UUID `json:"discount_code_id,omitempty"`

	// Stripe linkage, nil when billing runs in local-only mode.
	StripeCustomerID     *string `json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID *string `json:"stripe_subscription_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsActive reports whether the subscription currently grants plan resources.
// Trialing and past_due subscriptions keep access; canceled and expired do not.
func (s *Subscription) IsActive() bool {
	switch s.Status {
	case SubscriptionStatusTrialing, SubscriptionStatusActive, SubscriptionStatusPastDue:
		return true
	}
	return false
}

// InTrial reports whether the subscription is inside its trial window.
func (s *Subscription) InTrial(now time.Time) bool {
	return s.Status == SubscriptionStatusTrialing && s.TrialEndsAt != nil && now.Before(*s.TrialEndsAt)
}

// DiscountCode represents a redeemable discount, either percentage or fixed
// amount (exactly one of PercentOff / AmountOffCents is set).
//
// Redemption rules enforced by internal/billing:
//   - Code must be active and inside its valid_from/expires_at window
//   - RedemptionCount must be below MaxRedemptions (when bounded)
//   - Fixed-amount codes must match the plan currency
//   - AppliesToPlanID, when set, restricts the code to one plan
type DiscountCode struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`

	PercentOff     *int   `json:"percent_off,omitempty"`
	AmountOffCents *int64 `json:"amount_off_cents,omitempty"`
	Currency       string `json:"currency"`

	MaxRedemptions  *int `json:"max_redemptions,omitempty"`
	RedemptionCount int  `json:"redemption_count"`

	AppliesToPlanID *uuid.UUID `json:"applies_to_plan_id,omitempty"`

	Active    bool       `json:"active"`
	ValidFrom *time.Time `json:"valid_from,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsExpired reports whether the code's expiry has passed at the given instant.
func (d *DiscountCode) IsExpired(now time.Time) bool {
	if d.ExpiresAt == nil {
		return false
	}
	return now.After(*d.ExpiresAt)
}

// NotYetValid reports whether the code's window has not opened at the given
// instant. A nil ValidFrom means the code is valid from creation.
func (d *DiscountCode) NotYetValid(now time.Time) bool {
	if d.ValidFrom == nil {
		return false
	}
	return now.Before(*d.ValidFrom)
}

// RedemptionsExhausted reports whether the redemption limit has been reached.
func (d *DiscountCode) RedemptionsExhausted() bool {
	if d.MaxRedemptions == nil {
		return false
	}
	return d.RedemptionCount >= *d.MaxRedemptions
}

// IsPercentage reports whether the code discounts by percentage rather than
// a fixed amount.
func (d *DiscountCode) IsPercentage() bool {
	return d.PercentOff != nil
}

// Invoice status constants. These mirror Stripe's invoice states.
const (
	InvoiceStatusDraft         = "draft"
	InvoiceStatusOpen          = "open"
	InvoiceStatusPaid          = "paid"
	InvoiceStatusVoid          = "void"
	InvoiceStatusUncollectible = "uncollectible"
)

// ValidInvoiceStatuses contains all valid invoice status values for validation.
var ValidInvoiceStatuses = []string{
	InvoiceStatusDraft,
	InvoiceStatusOpen,
	InvoiceStatusPaid,
	InvoiceStatusVoid,
	InvoiceStatusUncollectible,
}

// IsValidInvoiceStatus checks if an invoice status value is valid.
func IsValidInvoiceStatus(status string) bool {
	for _, s := range ValidInvoiceStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// InvoiceLine is a single charge or credit on an invoice. Proration produces
// two lines: a negative credit for the old plan and a positive charge for
// the new one.
type InvoiceLine struct {
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`

	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`

	// Proration marks lines produced by a mid-period plan change.
	Proration bool `json:"proration"`
}

// Invoice represents an amount owed for a billing period.
type Invoice struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	SubscriptionID uuid.UUID `json:"subscription_id"`

	Status   string `json:"status"`
	Currency string `json:"currency"`

	SubtotalCents int64 `json:"subtotal_cents"`
	DiscountCents int64 `json:"discount_cents"`
	TotalCents    int64 `json:"total_cents"`

	Lines []InvoiceLine `json:"lines,omitempty"`

	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`

	StripeInvoiceID *string    `json:"stripe_invoice_id,omitempty"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsSettled reports whether no further payment is expected on the invoice.
func (i *Invoice) IsSettled() bool {
	switch i.Status {
	case InvoiceStatusPaid, InvoiceStatusVoid, InvoiceStatusUncollectible:
		return true
	}
	return false
}
