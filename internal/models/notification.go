// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification severity constants.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// ValidSeverities contains all valid severity values for validation.
var ValidSeverities = []string{SeverityInfo, SeverityWarning, SeverityCritical}

// IsValidSeverity checks if a severity value is valid.
func IsValidSeverity(severity string) bool {
	for _, s := range ValidSeverities {
		if s == severity {
			return true
		}
	}
	return false
}

// Notification type constants. Types key per-user preferences and batching.
const (
	NotificationTypeStreamFailed    = "stream.failed"
	NotificationTypeStreamStarting  = "stream.starting"
	NotificationTypeStreamConflict  = "stream.conflict"
	NotificationTypeStrikeIssued    = "strike.issued"
	NotificationTypeModerationHit   = "moderation.hit"
	NotificationTypeQuotaWarning    = "quota.warning"
	NotificationTypeQuotaCritical   = "quota.critical"
	NotificationTypeBillingPastDue  = "billing.past_due"
	NotificationTypeChannelRevoked  = "channel.revoked"
	NotificationTypeSecurityLockout = "security.lockout"
)

// Notification lifecycle status constants.
const (
	// NotificationStatusPending notifications await the batcher.
	NotificationStatusPending = "pending"

	// NotificationStatusBatched notifications were grouped into a digest
	// that has been dispatched.
	NotificationStatusBatched = "batched"

	// NotificationStatusSent notifications were dispatched individually.
	NotificationStatusSent = "sent"

	// NotificationStatusFailed notifications could not be dispatched on any
	// configured delivery path.
	NotificationStatusFailed = "failed"
)

// ValidNotificationStatuses contains all valid notification status values for validation.
var ValidNotificationStatuses = []string{
	NotificationStatusPending,
	NotificationStatusBatched,
	NotificationStatusSent,
	NotificationStatusFailed,
}

// IsValidNotificationStatus checks if a notification status value is valid.
func IsValidNotificationStatus(status string) bool {
	for _, s := range ValidNotificationStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Notification represents a single user-facing alert.
//
// Notifications of the same (user, type) within the batch window are grouped
// into one digest instead of being delivered individually. When the count of
// same-type notifications inside the escalation window crosses the threshold,
// one escalated critical notification is emitted for the group (exactly once
// per window; Escalated marks members of an escalated group).
//
// Key Fields:
//   - Type: Notification type key (see NotificationType constants)
//   - Severity: info, warning, critical
//   - BatchID: Digest this notification was grouped into, nil if sent solo
//   - DedupeKey: Optional key collapsing duplicates within the window
type Notification struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`

	Type     string `json:"type"`
	Severity string `json:"severity"`

	Title string `json:"title"`
	Body  string `json:"body"`

	// ResourceType/ResourceID link the notification to the subject entity
	// (event, channel, strike) for client navigation.
	ResourceType *string `json:"resource_type,omitempty"`
	ResourceID   *string `json:"resource_id,omitempty"`

	Status    string     `json:"status"`
	BatchID   *uuid.UUID `json:"batch_id,omitempty"`
	DedupeKey *string    `json:"dedupe_key,omitempty"`
	Escalated bool       `json:"escalated"`

	ReadAt *time.Time `json:"read_at,omitempty"`
	SentAt *time.Time `json:"sent_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// IsRead reports whether the user has seen the notification.
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// NewNotification creates a pending notification with the given content.
func NewNotification(userID uuid.UUID, ntype, severity, title, body string) *Notification {
	return &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      ntype,
		Severity:  severity,
		Title:     title,
		Body:      body,
		Status:    NotificationStatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

// NotificationBatch is a digest of grouped notifications dispatched as one
// delivery.
type NotificationBatch struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	Type   string    `json:"type"`

	// WindowStart/WindowEnd bound the batch window this digest covers.
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`

	Count     int        `json:"count"`
	Escalated bool       `json:"escalated"`
	SentAt    *time.Time `json:"sent_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NotificationPreference controls delivery paths per user and type.
// Absent rows fall back to in-app delivery only.
type NotificationPreference struct {
	ID     int64     `json:"id"`
	UserID uuid.UUID `json:"user_id"`

	// Type is the notification type key, or "*" for the user default.
	Type string `json:"type"`

	InApp bool `json:"in_app"`
	Email bool `json:"email"`

	// Muted suppresses the type entirely, including batching.
	Muted bool `json:"muted"`

	UpdatedAt time.Time `json:"updated_at"`
}
