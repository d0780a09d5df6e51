// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package models

import (
	"time"

	"github.com/google/uuid"
)

// Audit level constants.
const (
	AuditLevelInfo     = "info"
	AuditLevelWarning  = "warning"
	AuditLevelCritical = "critical"
)

// ValidAuditLevels contains all valid audit levels for validation.
var ValidAuditLevels = []string{AuditLevelInfo, AuditLevelWarning, AuditLevelCritical}

// IsValidAuditLevel checks if an audit level value is valid.
func IsValidAuditLevel(level string) bool {
	for _, l := range ValidAuditLevels {
		if l == level {
			return true
		}
	}
	return false
}

// Audit action constants for common administrative operations.
// Actions follow a resource.verb convention; handlers may record actions
// outside this list for less common operations.
const (
	AuditActionUserCreate      = "user.create"
	AuditActionUserSuspend     = "user.suspend"
	AuditActionUserDelete      = "user.delete"
	AuditActionRoleAssign      = "role.assign"
	AuditActionRoleRevoke      = "role.revoke"
	AuditActionChannelLink     = "channel.link"
	AuditActionChannelUnlink   = "channel.unlink"
	AuditActionChannelSuspend  = "channel.suspend"
	AuditActionEventCreate     = "event.create"
	AuditActionEventCancel     = "event.cancel"
	AuditActionRecurrenceStop  = "recurrence.stop"
	AuditActionStrikeIssue     = "strike.issue"
	AuditActionStrikeResolve   = "strike.resolve"
	AuditActionPlanChange      = "plan.change"
	AuditActionDiscountRedeem  = "discount.redeem"
	AuditActionRuleCreate      = "moderation_rule.create"
	AuditActionRuleDelete      = "moderation_rule.delete"
	AuditActionViolationReview = "violation.review"
	AuditActionLoginSuccess    = "auth.login"
	AuditActionLoginFailure    = "auth.login_failed"
	AuditActionLockout         = "auth.lockout"
	AuditActionConfigReload    = "config.reload"
)

// AuditEvent records an administrative or security-relevant action.
//
// The audit log is append-only: entries are never updated or deleted
// through the API, and purge is retention-based only. Every entry captures
// who (actor), what (action + resource), and the request context it
// happened in.
//
// Key Fields:
//   - Action: resource.verb key (see AuditAction constants)
//   - ResourceType/ResourceID: Subject entity of the action
//   - Level: info for routine changes, warning/critical for security events
//   - Details: Optional JSON payload with action-specific context
//     (old/new values for mutations, reason strings, etc.)
type AuditEvent struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	// ActorID is the acting user, or "system" for automated actions.
	ActorID       string `json:"actor_id"`
	ActorUsername string `json:"actor_username,omitempty"`

	Action string `json:"action"`
	Level  string `json:"level"`

	ResourceType string `json:"resource_type,omitempty"`
	ResourceID   string `json:"resource_id,omitempty"`

	// Details contains optional action-specific JSON context.
	Details *string `json:"details,omitempty"`

	// Request context, populated for actions taken over HTTP.
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// NewAuditEvent creates an info-level audit entry timestamped now.
func NewAuditEvent(actorID, actorUsername, action string) *AuditEvent {
	return &AuditEvent{
		ID:            uuid.New(),
		Timestamp:     time.Now().UTC(),
		ActorID:       actorID,
		ActorUsername: actorUsername,
		Action:        action,
		Level:         AuditLevelInfo,
	}
}

// WithResource attaches the subject entity and returns the event for chaining.
func (a *AuditEvent) WithResource(resourceType, resourceID string) *AuditEvent {
	a.ResourceType = resourceType
	a.ResourceID = resourceID
	return a
}

// WithLevel overrides the audit level and returns the event for chaining.
func (a *AuditEvent) WithLevel(level string) *AuditEvent {
	a.Level = level
	return a
}

// AuditStats summarizes audit activity for the admin dashboard.
type AuditStats struct {
	TotalEvents int64 `json:"total_events"`

	// ByLevel is the count of entries per audit level.
	ByLevel map[string]int64 `json:"by_level"`

	// ByAction is the count of entries per action key.
	ByAction map[string]int64 `json:"by_action"`

	// Last24Hours is the entry count in the trailing day.
	Last24Hours int64 `json:"last_24_hours"`

	OldestEntry *time.Time `json:"oldest_entry,omitempty"`
	NewestEntry *time.Time `json:"newest_entry,omitempty"`
}
