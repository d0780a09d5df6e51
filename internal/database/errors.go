// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package database

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/tubefleet/tubefleet/internal/logging"
)

// Shared persistence errors. Entity-specific sentinels (ErrEventNotFound,
// ErrChannelNotFound, ...) wrap ErrNotFound so handlers can match either.
var (
	// ErrNotFound is the generic row-absence error.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is the generic unique-constraint error.
	ErrConflict = errors.New("record already exists")
)

// Entity sentinels.
var (
	ErrUserNotFound         = wrapNotFound("user")
	ErrChannelNotFound      = wrapNotFound("channel")
	ErrEventNotFound        = wrapNotFound("live event")
	ErrRecurrenceNotFound   = wrapNotFound("recurrence pattern")
	ErrPlanNotFound         = wrapNotFound("plan")
	ErrSubscriptionNotFound = wrapNotFound("subscription")
	ErrDiscountNotFound     = wrapNotFound("discount code")
	ErrInvoiceNotFound      = wrapNotFound("invoice")
	ErrNotificationNotFound = wrapNotFound("notification")
	ErrRuleNotFound         = wrapNotFound("moderation rule")
	ErrViolationNotFound    = wrapNotFound("moderation violation")
	ErrCommentNotFound      = wrapNotFound("comment")
	ErrTriggerNotFound      = wrapNotFound("chatbot trigger")
	ErrStrikeNotFound       = wrapNotFound("strike")
	ErrEndpointNotFound     = wrapNotFound("webhook endpoint")
	ErrDeliveryNotFound     = wrapNotFound("webhook delivery")

	ErrUsernameTaken     = wrapConflict("username")
	ErrChannelLinked     = wrapConflict("channel")
	ErrDiscountCodeTaken = wrapConflict("discount code")

	// ErrDiscountExhausted means the code exists but cannot be redeemed:
	// inactive, expired, or at its redemption cap.
	ErrDiscountExhausted = errors.New("discount code not redeemable")
)

func wrapNotFound(entity string) error {
	return joinedError{msg: entity + " not found", sentinel: ErrNotFound}
}

func wrapConflict(entity string) error {
	return joinedError{msg: entity + " already exists", sentinel: ErrConflict}
}

// joinedError is a named error that also matches its sentinel via errors.Is.
type joinedError struct {
	msg      string
	sentinel error
}

func (e joinedError) Error() string { return e.msg }

func (e joinedError) Is(target error) bool { return target == e.sentinel }

// isUniqueConstraintError checks if an error is a unique constraint violation.
// DuckDB unique constraint error messages contain "UNIQUE constraint" or
// "Duplicate key".
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "unique constraint") || strings.Contains(errMsg, "duplicate key")
}

// closeWithLog closes a resource and logs any error
// Use this for cleanup operations where errors should be acknowledged but not fail the operation
func closeWithLog(closer io.Closer, logger *slog.Logger, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		if logger != nil {
			logger.Error("failed to close resource",
				"type", resourceType,
				"error", err)
		} else {
			logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
		}
	}
}

// closeQuietly closes a resource and explicitly ignores any error
// Use this for cleanup operations in error paths where Close() errors are not actionable
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close() // Explicitly ignore error - cleanup is best-effort
	}
}
