// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

// Package billing manages subscription plans, discount codes, proration,
// and invoices.
//
// The Service owns the local subscription lifecycle; Stripe is reached
// only through the Gateway wrapper (create customer, attach subscription,
// collect/void invoice) behind a circuit breaker. A Stripe failure never
// aborts local state: the subscription is marked past_due and a
// billing.payment_failed event is published instead.
//
// Proration on plan changes credits the unused fraction of the old plan
// price and charges the same fraction of the new plan price, each rounded
// half-up to whole cents.
package billing
