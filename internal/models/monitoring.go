// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package models

import (
	"time"

	"github.com/google/uuid"
)

// Resource kind constants for plan limit monitoring.
const (
	ResourceChannels          = "channels"
	ResourceScheduledEvents   = "scheduled_events"
	ResourceConcurrentStreams = "concurrent_streams"
	ResourceModerationRules   = "moderation_rules"
	ResourceChatbotTriggers   = "chatbot_triggers"
	ResourceWebhookEndpoints  = "webhook_endpoints"
	ResourceAPIQuota          = "api_quota"
)

// ValidResourceKinds contains all monitored resource kinds for validation.
var ValidResourceKinds = []string{
	ResourceChannels,
	ResourceScheduledEvents,
	ResourceConcurrentStreams,
	ResourceModerationRules,
	ResourceChatbotTriggers,
	ResourceWebhookEndpoints,
	ResourceAPIQuota,
}

// IsValidResourceKind checks if a resource kind value is valid.
func IsValidResourceKind(kind string) bool {
	for _, k := range ValidResourceKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Quota alert level constants.
const (
	// AlertLevelWarn fires at the warn threshold (default 80% of the limit).
	AlertLevelWarn = "warn"

	// AlertLevelCritical fires when the limit is reached.
	AlertLevelCritical = "critical"
)

// ResourceUsage is one point-in-time measurement of a user's consumption of
// a plan-limited resource.
//
// The monitoring collector captures usage on an interval and compares
// Percent() against the warn/critical thresholds; crossing a threshold
// emits a quota notification (once per crossing, not per sample).
type ResourceUsage struct {
	ID     int64     `json:"id"`
	UserID uuid.UUID `json:"user_id"`

	Kind string `json:"kind"`

	Used  int64 `json:"used"`
	Limit int64 `json:"limit"`

	CapturedAt time.Time `json:"captured_at"`
}

// Percent returns usage as a percentage of the limit. Unlimited resources
// (Limit <= 0) report 0.
func (r *ResourceUsage) Percent() float64 {
	if r.Limit <= 0 {
		return 0
	}
	return float64(r.Used) / float64(r.Limit) * 100
}

// Exceeds reports whether usage is at or above the given threshold percentage.
func (r *ResourceUsage) Exceeds(thresholdPct int) bool {
	if r.Limit <= 0 {
		return false
	}
	return r.Percent() >= float64(thresholdPct)
}

// UsageReport aggregates a user's current usage across all resource kinds,
// returned by the usage endpoint and the admin dashboard.
type UsageReport struct {
	UserID   uuid.UUID `json:"user_id"`
	PlanSlug string    `json:"plan_slug"`

	Resources []ResourceUsage `json:"resources"`

	// Warnings lists resource kinds currently at or above the warn threshold.
	Warnings []string `json:"warnings,omitempty"`

	// Criticals lists resource kinds currently at or above the critical threshold.
	Criticals []string `json:"criticals,omitempty"`

	GeneratedAt time.Time `json:"generated_at"`
}

// QuotaAlert records a threshold crossing so repeated samples above the
// threshold do not re-notify. Cleared when usage drops below the threshold.
type QuotaAlert struct {
	ID     int64     `json:"id"`
	UserID uuid.UUID `json:"user_id"`

	Kind string `json:"kind"`

	// Level is "warn" or "critical".
	Level string `json:"level"`

	// PercentAtAlert is the usage percentage when the alert fired.
	PercentAtAlert float64 `json:"percent_at_alert"`

	FiredAt    time.Time  `json:"fired_at"`
	ClearedAt  *time.Time `json:"cleared_at,omitempty"`
	NotifiedAt *time.Time `json:"notified_at,omitempty"`
}

// IsCleared reports whether the alert condition has resolved.
func (a *QuotaAlert) IsCleared() bool {
	return a.ClearedAt != nil
}
