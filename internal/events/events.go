// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package events

import (
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// SchemaVersion is the current event schema version.
// Increment this when making breaking changes to BusEvent.
const SchemaVersion = 1

// SubjectPrefix is the root token of every NATS subject on the bus.
const SubjectPrefix = "tubefleet"

// Event type constants. Each type is "<family>.<name>" and maps to the
// NATS subject "tubefleet.<family>.<name>", so a subscription to
// "tubefleet.<family>.*" receives every event of that family. The name
// part never contains dots for that reason.
const (
	// Stream lifecycle events.
	TypeStreamScheduled = "stream.scheduled"
	TypeStreamUpdated   = "stream.updated"
	TypeStreamCanceled  = "stream.canceled"

	// Recurrence materialization events.
	TypeOccurrenceCreated   = "stream.occurrence_created"
	TypeOccurrenceFailed    = "stream.occurrence_failed"
	TypeRecurrenceCompleted = "stream.recurrence_completed"

	// Billing events.
	TypeSubscriptionChanged = "billing.subscription_changed"
	TypePaymentFailed       = "billing.payment_failed"
	TypeInvoiceIssued       = "billing.invoice_issued"

	// Moderation events.
	TypeModerationViolation = "moderation.violation"

	// Strike events.
	TypeStrikeRecorded   = "strike.recorded"
	TypeStrikeResolved   = "strike.resolved"
	TypeChannelSuspended = "strike.channel_suspended"
	TypeSuspensionLifted = "strike.suspension_lifted"

	// Resource monitoring events.
	TypeQuotaWarning  = "monitor.quota_warning"
	TypeQuotaExceeded = "monitor.quota_exceeded"
)

// BusEvent is the canonical envelope for domain events on the internal bus.
// The payload carries family-specific detail as JSON; consumers decode it
// into the matching payload struct below.
//
// Schema versioning:
//   - SchemaVersion tracks the envelope format version
//   - Consumers should handle older schema versions for backward compatibility
//   - Version 1: initial schema
type BusEvent struct {
	// Schema version for forward/backward compatibility
	SchemaVersion int `json:"schema_version,omitempty"`

	// Identification
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"` // e.g. "stream.scheduled"
	OccurredAt time.Time `json:"occurred_at"`

	// Routing context. UserID selects the notification recipient and
	// webhook endpoints; ChannelID scopes channel-bound events.
	UserID    string `json:"user_id,omitempty"`
	ChannelID string `json:"channel_id,omitempty"`

	// Subject entity
	ResourceType string `json:"resource_type,omitempty"` // live_event, subscription, comment, strike
	ResourceID   string `json:"resource_id,omitempty"`

	// Family-specific detail
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewBusEvent creates an event with a unique ID, timestamp, and schema version.
func NewBusEvent(eventType string) *BusEvent {
	return &BusEvent{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.New().String(),
		Type:          eventType,
		OccurredAt:    time.Now().UTC(),
	}
}

// GetSchemaVersion returns the schema version, defaulting to 1 for legacy events.
func (e *BusEvent) GetSchemaVersion() int {
	if e.SchemaVersion == 0 {
		return 1
	}
	return e.SchemaVersion
}

// EnsureSchemaVersion sets the schema version if not already set.
// Call this when processing events that may not have a version set.
func (e *BusEvent) EnsureSchemaVersion() {
	if e.SchemaVersion == 0 {
		e.SchemaVersion = SchemaVersion
	}
}

// Validate checks required fields and returns an error if validation fails.
func (e *BusEvent) Validate() error {
	if e.EventID == "" {
		return &ValidationError{Field: "event_id", Message: "required"}
	}
	if e.Type == "" {
		return &ValidationError{Field: "type", Message: "required"}
	}
	if !strings.Contains(e.Type, ".") {
		return &ValidationError{Field: "type", Message: "must be <family>.<name>"}
	}
	if e.OccurredAt.IsZero() {
		return &ValidationError{Field: "occurred_at", Message: "required"}
	}
	return nil
}

// Topic returns the NATS subject for this event.
// Format: tubefleet.<family>.<name>
// Example: tubefleet.stream.scheduled
func (e *BusEvent) Topic() string {
	return SubjectPrefix + "." + e.Type
}

// Family returns the event family token ("stream", "billing", ...).
func (e *BusEvent) Family() string {
	if i := strings.IndexByte(e.Type, '.'); i > 0 {
		return e.Type[:i]
	}
	return e.Type
}

// SetPayload marshals v into the event payload.
func (e *BusEvent) SetPayload(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	e.Payload = data
	return nil
}

// DecodePayload unmarshals the event payload into dst.
// Returns nil without touching dst when the payload is empty.
func (e *BusEvent) DecodePayload(dst interface{}) error {
	if len(e.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(e.Payload, dst)
}

// StreamPayload carries detail for stream.* lifecycle and occurrence events.
type StreamPayload struct {
	Title          string     `json:"title,omitempty"`
	Status         string     `json:"status,omitempty"`
	ScheduledStart *time.Time `json:"scheduled_start,omitempty"`
	RecurrenceID   string     `json:"recurrence_id,omitempty"`
	Reason         string     `json:"reason,omitempty"` // failure or cancellation reason
}

// BillingPayload carries detail for billing.* events.
type BillingPayload struct {
	SubscriptionID string `json:"subscription_id,omitempty"`
	InvoiceID      string `json:"invoice_id,omitempty"`
	PlanName       string `json:"plan_name,omitempty"`
	PreviousPlan   string `json:"previous_plan,omitempty"`
	Status         string `json:"status,omitempty"`
	AmountCents    int64  `json:"amount_cents,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

// ViolationPayload carries detail for moderation.violation events.
type ViolationPayload struct {
	RuleID    string `json:"rule_id,omitempty"`
	RuleName  string `json:"rule_name,omitempty"`
	RuleType  string `json:"rule_type,omitempty"` // keyword, regexp
	CommentID string `json:"comment_id,omitempty"`
	Action    string `json:"action,omitempty"` // flag, hold, remove
	Severity  string `json:"severity,omitempty"`
	Matched   string `json:"matched,omitempty"` // matched term or pattern
}

// StrikePayload carries detail for strike.* events.
type StrikePayload struct {
	StrikeID     string `json:"strike_id,omitempty"`
	StrikeType   string `json:"strike_type,omitempty"` // copyright, community, terms
	Reason       string `json:"reason,omitempty"`
	ActiveCount  int    `json:"active_count"`
	ChannelTitle string `json:"channel_title,omitempty"`
}

// QuotaPayload carries detail for monitor.quota_* events.
type QuotaPayload struct {
	Resource string  `json:"resource"` // channels, streams_per_day, concurrent_streams, storage
	Used     int64   `json:"used"`
	Limit    int64   `json:"limit"`
	Percent  float64 `json:"percent"`
}

// ValidationError represents a field validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
