// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package billing

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tubefleet/tubefleet/internal/models"
)

// Discount validation errors. Callers branch on these to produce
// field-level API errors.
var (
	ErrCodeInactive    = errors.New("discount code is not active")
	ErrCodeNotYetValid = errors.New("discount code is not yet valid")
	ErrCodeExpired     = errors.New("discount code has expired")
	ErrCodeExhausted   = errors.New("discount code redemption limit reached")
	ErrCodeWrongPlan   = errors.New("discount code does not apply to this plan")
	ErrCodeMalformed   = errors.New("discount code must carry exactly one of percent_off or amount_off")
)

// ValidateDiscount checks every redemption precondition for applying code
// to planID at the given instant. It returns the first violated rule; a nil
// return means the code is redeemable right now.
func ValidateDiscount(code *models.DiscountCode, planID uuid.UUID, now time.Time) error {
	if !code.Active {
		return ErrCodeInactive
	}
	if code.NotYetValid(now) {
		return ErrCodeNotYetValid
	}
	if code.IsExpired(now) {
		return ErrCodeExpired
	}
	if code.RedemptionsExhausted() {
		return ErrCodeExhausted
	}
	if code.AppliesToPlanID != nil && *code.AppliesToPlanID != planID {
		return ErrCodeWrongPlan
	}

	// Percent-off and amount-off are mutually exclusive, and one must be set.
	hasPercent := code.PercentOff != nil
	hasAmount := code.AmountOffCents != nil
	if hasPercent == hasAmount {
		return ErrCodeMalformed
	}
	if hasPercent && (*code.PercentOff <= 0 || *code.PercentOff > 100) {
		return ErrCodeMalformed
	}
	if hasAmount && *code.AmountOffCents <= 0 {
		return ErrCodeMalformed
	}
	return nil
}

// ApplyDiscount returns the discount amount in cents that code removes from
// amountCents. The result never exceeds amountCents: a fixed-amount code
// larger than the charge zeroes it rather than going negative.
func ApplyDiscount(amountCents int64, code *models.DiscountCode) int64 {
	var off int64
	switch {
	case code.PercentOff != nil:
		off = roundHalfUpCents(float64(amountCents) * float64(*code.PercentOff) / 100.0)
	case code.AmountOffCents != nil:
		off = *code.AmountOffCents
	}
	if off > amountCents {
		off = amountCents
	}
	if off < 0 {
		off = 0
	}
	return off
}
