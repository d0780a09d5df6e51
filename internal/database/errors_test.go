// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package database

import (
	"errors"
	"fmt"
	"testing"
)

func TestEntitySentinelsMatchGeneric(t *testing.T) {
	notFound := []struct {
		name string
		err  error
	}{
		{"user", ErrUserNotFound},
		{"channel", ErrChannelNotFound},
		{"event", ErrEventNotFound},
		{"recurrence", ErrRecurrenceNotFound},
		{"plan", ErrPlanNotFound},
		{"subscription", ErrSubscriptionNotFound},
		{"discount", ErrDiscountNotFound},
		{"invoice", ErrInvoiceNotFound},
		{"notification", ErrNotificationNotFound},
		{"rule", ErrRuleNotFound},
		{"violation", ErrViolationNotFound},
		{"comment", ErrCommentNotFound},
		{"trigger", ErrTriggerNotFound},
		{"strike", ErrStrikeNotFound},
		{"endpoint", ErrEndpointNotFound},
		{"delivery", ErrDeliveryNotFound},
	}

	for _, tt := range notFound {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.err) {
				t.Error("sentinel does not match itself")
			}
			if !errors.Is(tt.err, ErrNotFound) {
				t.Error("sentinel does not match ErrNotFound")
			}
			if errors.Is(tt.err, ErrConflict) {
				t.Error("not-found sentinel matches ErrConflict")
			}
		})
	}

	conflicts := []struct {
		name string
		err  error
	}{
		{"username", ErrUsernameTaken},
		{"channel link", ErrChannelLinked},
		{"discount code", ErrDiscountCodeTaken},
	}

	for _, tt := range conflicts {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, ErrConflict) {
				t.Error("sentinel does not match ErrConflict")
			}
			if errors.Is(tt.err, ErrNotFound) {
				t.Error("conflict sentinel matches ErrNotFound")
			}
		})
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	if errors.Is(ErrUserNotFound, ErrChannelNotFound) {
		t.Error("ErrUserNotFound matches ErrChannelNotFound")
	}
	if errors.Is(ErrUsernameTaken, ErrChannelLinked) {
		t.Error("ErrUsernameTaken matches ErrChannelLinked")
	}
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("get event: %w", ErrEventNotFound)
	if !errors.Is(wrapped, ErrEventNotFound) {
		t.Error("wrapped error does not match ErrEventNotFound")
	}
	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("wrapped error does not match ErrNotFound")
	}
}

func TestDiscountExhaustedIsStandalone(t *testing.T) {
	if errors.Is(ErrDiscountExhausted, ErrNotFound) {
		t.Error("ErrDiscountExhausted matches ErrNotFound")
	}
	if errors.Is(ErrDiscountExhausted, ErrConflict) {
		t.Error("ErrDiscountExhausted matches ErrConflict")
	}
}

func TestIsUniqueConstraintError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unique constraint", errors.New("Constraint Error: UNIQUE constraint failed: users.username"), true},
		{"duplicate key", errors.New("Duplicate key \"youtube_channel_id: UC123\" violates unique constraint"), true},
		{"lowercase", errors.New("unique constraint violated"), true},
		{"unrelated", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUniqueConstraintError(tt.err); got != tt.want {
				t.Errorf("isUniqueConstraintError() = %v, want %v", got, tt.want)
			}
		})
	}
}
