// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package billing

import (
	"math"
	"time"
)

// ProrationPreview is the result of prorating a mid-period plan switch.
// CreditCents and ChargeCents are rounded separately so the preview matches
// the invoice lines exactly.
type ProrationPreview struct {
	// UnusedFraction is the share of the current period still ahead,
	// in [0, 1].
	UnusedFraction float64 `json:"unused_fraction"`

	// CreditCents refunds the unused fraction of the old plan price.
	CreditCents int64 `json:"credit_cents"`

	// ChargeCents bills the same fraction of the new plan price.
	ChargeCents int64 `json:"charge_cents"`

	// NetCents is ChargeCents - CreditCents; negative means a net credit.
	NetCents int64 `json:"net_cents"`

	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	EffectiveAt time.Time `json:"effective_at"`
}

// Prorate computes the credit/charge pair for switching from a plan priced
// oldPriceCents to one priced newPriceCents at the instant "at" inside
// [periodStart, periodEnd).
//
// An "at" before the period start uses the whole period (fraction 1); an
// "at" past the period end yields zero on both sides. A degenerate period
// (end <= start) also yields zero: there is nothing left to prorate.
func Prorate(oldPriceCents, newPriceCents int64, periodStart, periodEnd, at time.Time) ProrationPreview {
	preview := ProrationPreview{
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		EffectiveAt: at,
	}

	total := periodEnd.Sub(periodStart)
	if total <= 0 {
		return preview
	}

	remaining := periodEnd.Sub(at)
	if remaining <= 0 {
		return preview
	}
	if remaining > total {
		remaining = total
	}

	fraction := float64(remaining) / float64(total)
	preview.UnusedFraction = fraction
	preview.CreditCents = roundHalfUpCents(float64(oldPriceCents) * fraction)
	preview.ChargeCents = roundHalfUpCents(float64(newPriceCents) * fraction)
	preview.NetCents = preview.ChargeCents - preview.CreditCents
	return preview
}

// roundHalfUpCents rounds to the nearest whole cent with .5 rounding away
// from zero, the convention invoices use.
func roundHalfUpCents(v float64) int64 {
	if v >= 0 {
		return int64(math.Floor(v + 0.5))
	}
	return -int64(math.Floor(-v + 0.5))
}
