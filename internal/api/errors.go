// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package api

import (
	"errors"
	"net/http"

	"github.com/tubefleet/tubefleet/internal/billing"
	"github.com/tubefleet/tubefleet/internal/channels"
	"github.com/tubefleet/tubefleet/internal/comments"
	"github.com/tubefleet/tubefleet/internal/database"
	"github.com/tubefleet/tubefleet/internal/moderation"
	"github.com/tubefleet/tubefleet/internal/monitoring"
)

// respondDomainError maps a domain error onto an HTTP status and error
// code. The catch-all is 500 so a new sentinel that is forgotten here
// fails loudly instead of leaking as a success.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		return

	// 400: the request itself is malformed.
	case errors.Is(err, billing.ErrCodeInactive),
		errors.Is(err, billing.ErrCodeNotYetValid),
		errors.Is(err, billing.ErrCodeExpired),
		errors.Is(err, billing.ErrCodeExhausted),
		errors.Is(err, billing.ErrCodeWrongPlan),
		errors.Is(err, billing.ErrCodeMalformed),
		errors.Is(err, billing.ErrPlanInactive),
		errors.Is(err, moderation.ErrEmptyTermList),
		errors.Is(err, moderation.ErrPatternTooLong),
		errors.Is(err, moderation.ErrInvalidRegexp),
		errors.Is(err, moderation.ErrUnknownRuleType),
		errors.Is(err, comments.ErrEmptyPattern),
		errors.Is(err, comments.ErrEmptyResponse),
		errors.Is(err, comments.ErrBadMatchType),
		errors.Is(err, comments.ErrBadRegexp):
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)

	// 404: the resource does not exist. ErrNoSubscription rides along
	// because "no live subscription" is a missing resource, not a fault.
	case errors.Is(err, database.ErrNotFound),
		errors.Is(err, billing.ErrNoSubscription),
		errors.Is(err, channels.ErrChannelNotLinked):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)

	// 409: the request is valid but collides with current state.
	case errors.Is(err, database.ErrConflict),
		errors.Is(err, database.ErrDiscountExhausted),
		errors.Is(err, billing.ErrAlreadySubscribed),
		errors.Is(err, billing.ErrSamePlan),
		errors.Is(err, channels.ErrLinkedToOtherAccount):
		respondError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)

	// 403 QUOTA_EXCEEDED: the plan limit blocks the creation.
	case errors.Is(err, monitoring.ErrLimitExceeded):
		respondError(w, http.StatusForbidden, "QUOTA_EXCEEDED", err.Error(), nil)

	// 502: a dependency outside our control failed.
	case errors.Is(err, billing.ErrStripeUnavailable),
		errors.Is(err, billing.ErrPaymentDeclined),
		errors.Is(err, billing.ErrStripeRejected),
		errors.Is(err, channels.ErrExchangeFailed),
		errors.Is(err, channels.ErrMissingRefreshToken):
		respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", err.Error(), nil)

	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred", err)
	}
}
