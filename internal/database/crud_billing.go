// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tubefleet/tubefleet/internal/models"
)

// --- Plans ---

// CreatePlan inserts a plan into the catalog.
func (db *DB) CreatePlan(ctx context.Context, plan *models.Plan) error {
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now().UTC()
	}
	plan.UpdatedAt = plan.CreatedAt

	return db.createPlanContext(ctx, plan)
}

// GetPlan retrieves a plan by ID.
func (db *DB) GetPlan(ctx context.Context, id string) (*models.Plan, error) {
	query := planSelectColumns + ` FROM plans WHERE id = ?`
	row := db.conn.QueryRowContext(ctx, query, id)
	return scanPlan(row)
}

// GetPlanBySlug retrieves a plan by its stable slug.
func (db *DB) GetPlanBySlug(ctx context.Context, slug string) (*models.Plan, error) {
	query := planSelectColumns + ` FROM plans WHERE slug = ?`
	row := db.conn.QueryRowContext(ctx, query, slug)
	return scanPlan(row)
}

// ListPlans retrieves the plan catalog, cheapest first. When activeOnly is
// set, retired plans are excluded.
func (db *DB) ListPlans(ctx context.Context, activeOnly bool) ([]models.Plan, error) {
	query := planSelectColumns + ` FROM plans`
	if activeOnly {
		query += ` WHERE active = true`
	}
	query += ` ORDER BY price_cents ASC`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	plans := make([]models.Plan, 0)
	for rows.Next() {
		plan, err := scanPlanRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, *plan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plans: %w", err)
	}

	return plans, nil
}

// UpdatePlan updates plan pricing and limits. Slug is immutable; existing
// subscriptions keep referencing the row by ID.
func (db *DB) UpdatePlan(ctx context.Context, plan *models.Plan) error {
	plan.UpdatedAt = time.Now().UTC()

	query := `UPDATE plans SET
		name = ?, price_cents = ?, currency = ?, billing_interval = ?,
		max_channels = ?, max_scheduled_events = ?, max_concurrent_streams = ?,
		max_moderation_rules = ?, max_chatbot_triggers = ?, max_webhook_endpoints = ?,
		stripe_price_id = ?, active = ?, updated_at = ?
	WHERE id = ?`

	result, err := db.conn.ExecContext(ctx, query,
		plan.Name, plan.PriceCents, plan.Currency, plan.Interval,
		plan.MaxChannels, plan.MaxScheduledEvents, plan.MaxConcurrentStreams,
		plan.MaxModerationRules, plan.MaxChatbotTriggers, plan.MaxWebhookEndpoints,
		plan.StripePriceID, plan.Active, plan.UpdatedAt, plan.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}

	return requireRowsAffected(result, ErrPlanNotFound)
}

const planSelectColumns = `SELECT
	id, slug, name, price_cents, currency, billing_interval,
	max_channels, max_scheduled_events, max_concurrent_streams,
	max_moderation_rules, max_chatbot_triggers, max_webhook_endpoints,
	stripe_price_id, active, created_at, updated_at`

func scanPlan(row *sql.Row) (*models.Plan, error) {
	var plan models.Plan
	var stripePriceID sql.NullString

	err := row.Scan(
		&plan.ID, &plan.Slug, &plan.Name, &plan.PriceCents, &plan.Currency,
		&plan.Interval, &plan.MaxChannels, &plan.MaxScheduledEvents,
		&plan.MaxConcurrentStreams, &plan.MaxModerationRules,
		&plan.MaxChatbotTriggers, &plan.MaxWebhookEndpoints,
		&stripePriceID, &plan.Active, &plan.CreatedAt, &plan.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to scan plan: %w", err)
	}

	if stripePriceID.Valid {
		plan.StripePriceID = &stripePriceID.String
	}
	return &plan, nil
}

func scanPlanRows(rows *sql.Rows) (*models.Plan, error) {
	var plan models.Plan
	var stripePriceID sql.NullString

	err := rows.Scan(
		&plan.ID, &plan.Slug, &plan.Name, &plan.PriceCents, &plan.Currency,
		&plan.Interval, &plan.MaxChannels, &plan.MaxScheduledEvents,
		&plan.MaxConcurrentStreams, &plan.MaxModerationRules,
		&plan.MaxChatbotTriggers, &plan.MaxWebhookEndpoints,
		&stripePriceID, &plan.Active, &plan.CreatedAt, &plan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if stripePriceID.Valid {
		plan.StripePriceID = &stripePriceID.String
	}
	return &plan, nil
}

// --- Subscriptions ---

// CreateSubscription creates a subscription row. Callers enforce the
// one-live-subscription-per-user rule before inserting.
func (db *DB) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	sub.UpdatedAt = sub.CreatedAt
	if sub.Status == "" {
		sub.Status = models.SubscriptionStatusActive
	}

	query := `INSERT INTO subscriptions (
		id, user_id, plan_id, status, current_period_start, current_period_end,
		cancel_at_period_end, canceled_at, trial_ends_at, discount_code_id,
		stripe_customer_id, stripe_subscription_id, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.conn.ExecContext(ctx, query,
		sub.ID, sub.UserID, sub.PlanID, sub.Status,
		sub.CurrentPeriodStart.UTC(), sub.CurrentPeriodEnd.UTC(),
		sub.CancelAtPeriodEnd, nullableUTC(sub.CanceledAt), nullableUTC(sub.TrialEndsAt),
		sub.DiscountCodeID, sub.StripeCustomerID, sub.StripeSubscriptionID,
		sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	return nil
}

// GetSubscription retrieves a subscription by ID.
func (db *DB) GetSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	query := subscriptionSelectColumns + ` FROM subscriptions WHERE id = ?`
	row := db.conn.QueryRowContext(ctx, query, id)
	return scanSubscription(row)
}

// GetLiveSubscriptionByUser retrieves the user's current subscription:
// the newest one in a non-terminal state. Canceled and expired rows stay
// behind as history.
func (db *DB) GetLiveSubscriptionByUser(ctx context.Context, userID string) (*models.Subscription, error) {
	query := subscriptionSelectColumns + ` FROM subscriptions
	WHERE user_id = ? AND status IN (?, ?, ?)
	ORDER BY created_at DESC LIMIT 1`

	row := db.conn.QueryRowContext(ctx, query, userID,
		models.SubscriptionStatusTrialing, models.SubscriptionStatusActive,
		models.SubscriptionStatusPastDue)
	return scanSubscription(row)
}

// ListSubscriptionsDueForRenewal retrieves live subscriptions whose period
// ends at or before the cutoff. The billing cycle worker renews these.
func (db *DB) ListSubscriptionsDueForRenewal(ctx context.Context, cutoff time.Time) ([]models.Subscription, error) {
	query := subscriptionSelectColumns + ` FROM subscriptions
	WHERE status IN (?, ?, ?) AND current_period_end <= ?
	ORDER BY current_period_end ASC`

	rows, err := db.conn.QueryContext(ctx, query,
		models.SubscriptionStatusTrialing, models.SubscriptionStatusActive,
		models.SubscriptionStatusPastDue, cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions due for renewal: %w", err)
	}
	defer rows.Close()

	subs := make([]models.Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscriptionRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, *sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscriptions: %w", err)
	}

	return subs, nil
}

// CountSubscriptionsByStatus returns per-status counts for the billing
// gauge and the admin dashboard.
func (db *DB) CountSubscriptionsByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM subscriptions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count subscriptions: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan subscription count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// UpdateSubscription persists all mutable subscription fields.
func (db *DB) UpdateSubscription(ctx context.Context, sub *models.Subscription) error {
	sub.UpdatedAt = time.Now().UTC()

	query := `UPDATE subscriptions SET
		plan_id = ?, status = ?, current_period_start = ?, current_period_end = ?,
		cancel_at_period_end = ?, canceled_at = ?, trial_ends_at = ?,
		discount_code_id = ?, stripe_customer_id = ?, stripe_subscription_id = ?,
		updated_at = ?
	WHERE id = ?`

	result, err := db.conn.ExecContext(ctx, query,
		sub.PlanID, sub.Status, sub.CurrentPeriodStart.UTC(), sub.CurrentPeriodEnd.UTC(),
		sub.CancelAtPeriodEnd, nullableUTC(sub.CanceledAt), nullableUTC(sub.TrialEndsAt),
		sub.DiscountCodeID, sub.StripeCustomerID, sub.StripeSubscriptionID,
		sub.UpdatedAt, sub.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	return requireRowsAffected(result, ErrSubscriptionNotFound)
}

const subscriptionSelectColumns = `SELECT
	id, user_id, plan_id, status, current_period_start, current_period_end,
	cancel_at_period_end, canceled_at, trial_ends_at, discount_code_id,
	stripe_customer_id, stripe_subscription_id, created_at, updated_at`

func scanSubscription(row *sql.Row) (*models.Subscription, error) {
	var sub models.Subscription
	var canceledAt, trialEndsAt sql.NullTime
	var discountCodeID uuid.NullUUID
	var stripeCustomerID, stripeSubscriptionID sql.NullString

	err := row.Scan(
		&sub.ID, &sub.UserID, &sub.PlanID, &sub.Status,
		&sub.CurrentPeriodStart, &sub.CurrentPeriodEnd,
		&sub.CancelAtPeriodEnd, &canceledAt, &trialEndsAt, &discountCodeID,
		&stripeCustomerID, &stripeSubscriptionID, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to scan subscription: %w", err)
	}

	applySubscriptionNullables(&sub, canceledAt, trialEndsAt, discountCodeID, stripeCustomerID, stripeSubscriptionID)
	return &sub, nil
}

func scanSubscriptionRows(rows *sql.Rows) (*models.Subscription, error) {
	var sub models.Subscription
	var canceledAt, trialEndsAt sql.NullTime
	var discountCodeID uuid.NullUUID
	var stripeCustomerID, stripeSubscriptionID sql.NullString

	err := rows.Scan(
		&sub.ID, &sub.UserID, &sub.PlanID, &sub.Status,
		&sub.CurrentPeriodStart, &sub.CurrentPeriodEnd,
		&sub.CancelAtPeriodEnd, &canceledAt, &trialEndsAt, &discountCodeID,
		&stripeCustomerID, &stripeSubscriptionID, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	applySubscriptionNullables(&sub, canceledAt, trialEndsAt, discountCodeID, stripeCustomerID, stripeSubscriptionID)
	return &sub, nil
}

func applySubscriptionNullables(sub *models.Subscription, canceledAt, trialEndsAt sql.NullTime, discountCodeID uuid.NullUUID, stripeCustomerID, stripeSubscriptionID sql.NullString) {
	if canceledAt.Valid {
		sub.CanceledAt = &canceledAt.Time
	}
	if trialEndsAt.Valid {
		sub.TrialEndsAt = &trialEndsAt.Time
	}
	if discountCodeID.Valid {
		sub.DiscountCodeID = &discountCodeID.UUID
	}
	if stripeCustomerID.Valid {
		sub.StripeCustomerID = &stripeCustomerID.String
	}
	if stripeSubscriptionID.Valid {
		sub.StripeSubscriptionID = &stripeSubscriptionID.String
	}
}

// --- Discount codes ---

// CreateDiscountCode inserts a discount code.
func (db *DB) CreateDiscountCode(ctx context.Context, code *models.DiscountCode) error {
	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now().UTC()
	}
	code.UpdatedAt = code.CreatedAt
	if code.Currency == "" {
		code.Currency = "usd"
	}

	query := `INSERT INTO discount_codes (
		id, code, percent_off, amount_off_cents, currency, max_redemptions,
		redemption_count, applies_to_plan_id, active, valid_from, expires_at,
		created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.conn.ExecContext(ctx, query,
		code.ID, code.Code, code.PercentOff, code.AmountOffCents, code.Currency,
		code.MaxRedemptions, code.RedemptionCount, code.AppliesToPlanID,
		code.Active, nullableUTC(code.ValidFrom), nullableUTC(code.ExpiresAt),
		code.CreatedAt, code.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDiscountCodeTaken
		}
		return fmt.Errorf("failed to create discount code: %w", err)
	}

	return nil
}

// GetDiscountCode retrieves a discount code by ID.
func (db *DB) GetDiscountCode(ctx context.Context, id string) (*models.DiscountCode, error) {
	query := discountSelectColumns + ` FROM discount_codes WHERE id = ?`
	row := db.conn.QueryRowContext(ctx, query, id)
	return scanDiscountCode(row)
}

// GetDiscountCodeByCode retrieves a discount code by its redeemable code.
func (db *DB) GetDiscountCodeByCode(ctx context.Context, code string) (*models.DiscountCode, error) {
	query := discountSelectColumns + ` FROM discount_codes WHERE code = ?`
	row := db.conn.QueryRowContext(ctx, query, code)
	return scanDiscountCode(row)
}

// ListDiscountCodes retrieves all discount codes for admin management.
func (db *DB) ListDiscountCodes(ctx context.Context) ([]models.DiscountCode, error) {
	query := discountSelectColumns + ` FROM discount_codes ORDER BY created_at DESC`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list discount codes: %w", err)
	}
	defer rows.Close()

	codes := make([]models.DiscountCode, 0)
	for rows.Next() {
		code, err := scanDiscountCodeRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan discount code: %w", err)
		}
		codes = append(codes, *code)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating discount codes: %w", err)
	}

	return codes, nil
}

// RedeemDiscountCode atomically increments the redemption count, refusing
// codes that are inactive or already at their cap. Expiry is checked by
// the billing service against ExpiresAt before calling this.
func (db *DB) RedeemDiscountCode(ctx context.Context, id string) error {
	query := `UPDATE discount_codes SET
		redemption_count = redemption_count + 1, updated_at = ?
	WHERE id = ?
	  AND active = true
	  AND (max_redemptions IS NULL OR redemption_count < max_redemptions)`

	result, err := db.conn.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to redeem discount code: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Distinguish a missing code from an exhausted one.
		if _, err := db.GetDiscountCode(ctx, id); err != nil {
			return err
		}
		return ErrDiscountExhausted
	}

	return nil
}

// UpdateDiscountCode updates discount code fields other than the
// redemption counter.
func (db *DB) UpdateDiscountCode(ctx context.Context, code *models.DiscountCode) error {
	code.UpdatedAt = time.Now().UTC()

	query := `UPDATE discount_codes SET
		percent_off = ?, amount_off_cents = ?, currency = ?, max_redemptions = ?,
		applies_to_plan_id = ?, active = ?, valid_from = ?, expires_at = ?,
		updated_at = ?
	WHERE id = ?`

	result, err := db.conn.ExecContext(ctx, query,
		code.PercentOff, code.AmountOffCents, code.Currency, code.MaxRedemptions,
		code.AppliesToPlanID, code.Active, nullableUTC(code.ValidFrom),
		nullableUTC(code.ExpiresAt), code.UpdatedAt, code.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update discount code: %w", err)
	}

	return requireRowsAffected(result, ErrDiscountNotFound)
}

const discountSelectColumns = `SELECT
	id, code, percent_off, amount_off_cents, currency, max_redemptions,
	redemption_count, applies_to_plan_id, active, valid_from, expires_at,
	created_at, updated_at`

func scanDiscountCode(row *sql.Row) (*models.DiscountCode, error) {
	var code models.DiscountCode
	var percentOff sql.NullInt32
	var amountOffCents sql.NullInt64
	var maxRedemptions sql.NullInt32
	var appliesToPlanID uuid.NullUUID
	var validFrom sql.NullTime
	var expiresAt sql.NullTime

	err := row.Scan(
		&code.ID, &code.Code, &percentOff, &amountOffCents, &code.Currency,
		&maxRedemptions, &code.RedemptionCount, &appliesToPlanID,
		&code.Active, &validFrom, &expiresAt, &code.CreatedAt, &code.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDiscountNotFound
		}
		return nil, fmt.Errorf("failed to scan discount code: %w", err)
	}

	applyDiscountNullables(&code, percentOff, amountOffCents, maxRedemptions, appliesToPlanID, validFrom, expiresAt)
	return &code, nil
}

func scanDiscountCodeRows(rows *sql.Rows) (*models.DiscountCode, error) {
	var code models.DiscountCode
	var percentOff sql.NullInt32
	var amountOffCents sql.NullInt64
	var maxRedemptions sql.NullInt32
	var appliesToPlanID uuid.NullUUID
	var validFrom sql.NullTime
	var expiresAt sql.NullTime

	err := rows.Scan(
		&code.ID, &code.Code, &percentOff, &amountOffCents, &code.Currency,
		&maxRedemptions, &code.RedemptionCount, &appliesToPlanID,
		&code.Active, &validFrom, &expiresAt, &code.CreatedAt, &code.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	applyDiscountNullables(&code, percentOff, amountOffCents, maxRedemptions, appliesToPlanID, validFrom, expiresAt)
	return &code, nil
}

func applyDiscountNullables(code *models.DiscountCode, percentOff sql.NullInt32, amountOffCents sql.NullInt64, maxRedemptions sql.NullInt32, appliesToPlanID uuid.NullUUID, validFrom, expiresAt sql.NullTime) {
	if percentOff.Valid {
		v := int(percentOff.Int32)
		code.PercentOff = &v
	}
	if amountOffCents.Valid {
		code.AmountOffCents = &amountOffCents.Int64
	}
	if maxRedemptions.Valid {
		v := int(maxRedemptions.Int32)
		code.MaxRedemptions = &v
	}
	if appliesToPlanID.Valid {
		code.AppliesToPlanID = &appliesToPlanID.UUID
	}
	if validFrom.Valid {
		code.ValidFrom = &validFrom.Time
	}
	if expiresAt.Valid {
		code.ExpiresAt = &expiresAt.Time
	}
}

// --- Invoices ---

// CreateInvoice inserts an invoice with its line items serialized as JSON.
func (db *DB) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = time.Now().UTC()
	}
	invoice.UpdatedAt = invoice.CreatedAt
	if invoice.Status == "" {
		invoice.Status = models.InvoiceStatusDraft
	}

	linesJSON, err := encodeJSON(invoice.Lines)
	if err != nil {
		return fmt.Errorf("failed to encode invoice lines: %w", err)
	}

	query := `INSERT INTO invoices (
		id, user_id, subscription_id, status, currency, subtotal_cents,
		discount_cents, total_cents, lines, period_start, period_end,
		stripe_invoice_id, paid_at, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = db.conn.ExecContext(ctx, query,
		invoice.ID, invoice.UserID, invoice.SubscriptionID, invoice.Status,
		invoice.Currency, invoice.SubtotalCents, invoice.DiscountCents,
		invoice.TotalCents, linesJSON, invoice.PeriodStart.UTC(), invoice.PeriodEnd.UTC(),
		invoice.StripeInvoiceID, nullableUTC(invoice.PaidAt),
		invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	return nil
}

// GetInvoice retrieves an invoice by ID.
func (db *DB) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	query := invoiceSelectColumns + ` FROM invoices WHERE id = ?`
	row := db.conn.QueryRowContext(ctx, query, id)
	return scanInvoice(row)
}

// ListInvoicesByUser retrieves a user's invoices, newest first.
func (db *DB) ListInvoicesByUser(ctx context.Context, userID string, limit, offset int) ([]models.Invoice, error) {
	query := invoiceSelectColumns + ` FROM invoices
	WHERE user_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`

	rows, err := db.conn.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	invoices := make([]models.Invoice, 0)
	for rows.Next() {
		invoice, err := scanInvoiceRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, *invoice)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoices: %w", err)
	}

	return invoices, nil
}

// UpdateInvoiceStatus transitions an invoice, stamping paid_at on the paid
// transition.
func (db *DB) UpdateInvoiceStatus(ctx context.Context, id string, status string) error {
	now := time.Now().UTC()

	var query string
	var args []any

	if status == models.InvoiceStatusPaid {
		query = `UPDATE invoices SET status = ?, paid_at = ?, updated_at = ? WHERE id = ?`
		args = []any{status, now, now, id}
	} else {
		query = `UPDATE invoices SET status = ?, updated_at = ? WHERE id = ?`
		args = []any{status, now, id}
	}

	result, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update invoice status: %w", err)
	}
	return requireRowsAffected(result, ErrInvoiceNotFound)
}

// SetInvoiceStripeID records the remote invoice binding.
func (db *DB) SetInvoiceStripeID(ctx context.Context, id string, stripeInvoiceID string) error {
	query := `UPDATE invoices SET stripe_invoice_id = ?, updated_at = ? WHERE id = ?`
	result, err := db.conn.ExecContext(ctx, query, stripeInvoiceID, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set invoice stripe id: %w", err)
	}
	return requireRowsAffected(result, ErrInvoiceNotFound)
}

const invoiceSelectColumns = `SELECT
	id, user_id, subscription_id, status, currency, subtotal_cents,
	discount_cents, total_cents, lines, period_start, period_end,
	stripe_invoice_id, paid_at, created_at, updated_at`

func scanInvoice(row *sql.Row) (*models.Invoice, error) {
	var invoice models.Invoice
	var lines any
	var stripeInvoiceID sql.NullString
	var paidAt sql.NullTime

	err := row.Scan(
		&invoice.ID, &invoice.UserID, &invoice.SubscriptionID, &invoice.Status,
		&invoice.Currency, &invoice.SubtotalCents, &invoice.DiscountCents,
		&invoice.TotalCents, &lines, &invoice.PeriodStart, &invoice.PeriodEnd,
		&stripeInvoiceID, &paidAt, &invoice.CreatedAt, &invoice.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to scan invoice: %w", err)
	}

	if err := applyInvoiceNullables(&invoice, lines, stripeInvoiceID, paidAt); err != nil {
		return nil, err
	}
	return &invoice, nil
}

func scanInvoiceRows(rows *sql.Rows) (*models.Invoice, error) {
	var invoice models.Invoice
	var lines any
	var stripeInvoiceID sql.NullString
	var paidAt sql.NullTime

	err := rows.Scan(
		&invoice.ID, &invoice.UserID, &invoice.SubscriptionID, &invoice.Status,
		&invoice.Currency, &invoice.SubtotalCents, &invoice.DiscountCents,
		&invoice.TotalCents, &lines, &invoice.PeriodStart, &invoice.PeriodEnd,
		&stripeInvoiceID, &paidAt, &invoice.CreatedAt, &invoice.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := applyInvoiceNullables(&invoice, lines, stripeInvoiceID, paidAt); err != nil {
		return nil, err
	}
	return &invoice, nil
}

func applyInvoiceNullables(invoice *models.Invoice, lines any, stripeInvoiceID sql.NullString, paidAt sql.NullTime) error {
	if err := decodeJSON(lines, &invoice.Lines); err != nil {
		return fmt.Errorf("failed to decode invoice lines: %w", err)
	}
	if stripeInvoiceID.Valid {
		invoice.StripeInvoiceID = &stripeInvoiceID.String
	}
	if paidAt.Valid {
		invoice.PaidAt = &paidAt.Time
	}
	return nil
}
