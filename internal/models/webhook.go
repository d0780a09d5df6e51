// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package models

import (
	"time"

	"github.com/google/uuid"
)

// WebhookEndpoint represents a user-registered outbound webhook target.
//
// Endpoints subscribe to event types ("*" subscribes to everything).
// Deliveries are signed with the endpoint secret (HMAC-SHA256 over the
// payload, sent as X-TubeFleet-Signature). After too many consecutive
// failures the endpoint is auto-disabled and the owner notified.
type WebhookEndpoint struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`

	URL string `json:"url"`

	// Secret signs outgoing payloads. Excluded from JSON serialization.
	Secret string `json:"-"`

	// EventTypes filters which events this endpoint receives.
	EventTypes []string `json:"event_types"`

	Enabled bool `json:"enabled"`

	// ConsecutiveFailures counts failed deliveries since the last success;
	// reset on success, auto-disable when it crosses the configured cap.
	ConsecutiveFailures int        `json:"consecutive_failures"`
	DisabledAt          *time.Time `json:"disabled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubscribesTo reports whether the endpoint wants the given event type.
func (e *WebhookEndpoint) SubscribesTo(eventType string) bool {
	for _, t := range e.EventTypes {
		if t == "*" || t == eventType {
			return true
		}
	}
	return false
}

// NewWebhookEndpoint creates an enabled endpoint subscribed to all events.
// The caller is responsible for setting Secret before persisting.
func NewWebhookEndpoint(userID uuid.UUID, url string) *WebhookEndpoint {
	now := time.Now().UTC()
	return &WebhookEndpoint{
		ID:         uuid.New(),
		UserID:     userID,
		URL:        url,
		EventTypes: []string{"*"},
		Enabled:    true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Webhook delivery status constants.
const (
	// WebhookStatusPending deliveries await their first attempt.
	WebhookStatusPending = "pending"

	// WebhookStatusRetrying deliveries failed and are waiting for
	// NextAttemptAt.
	WebhookStatusRetrying = "retrying"

	// WebhookStatusDelivered deliveries got a 2xx response.
	WebhookStatusDelivered = "delivered"

	// WebhookStatusAbandoned deliveries exhausted all retry attempts.
	WebhookStatusAbandoned = "abandoned"
)

// ValidWebhookStatuses contains all valid delivery status values for validation.
var ValidWebhookStatuses = []string{
	WebhookStatusPending,
	WebhookStatusRetrying,
	WebhookStatusDelivered,
	WebhookStatusAbandoned,
}

// IsValidWebhookStatus checks if a delivery status value is valid.
func IsValidWebhookStatus(status string) bool {
	for _, s := range ValidWebhookStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// WebhookDelivery represents one event dispatched to one endpoint.
//
// Failed attempts retry with exponential backoff: the delay after attempt n
// is InitialBackoff * BackoffFactor^(n-1), capped at MaxBackoff, until
// MaxRetries is exhausted and the delivery is abandoned (see
// internal/webhooks). Every attempt updates LastStatusCode/LastError for
// operator inspection.
type WebhookDelivery struct {
	ID         uuid.UUID `json:"id"`
	EndpointID uuid.UUID `json:"endpoint_id"`

	EventType string `json:"event_type"`
	Payload   []byte `json:"payload"`

	Status string `json:"status"`

	AttemptCount  int        `json:"attempt_count"`
	NextAttemptAt *time.Time `json:"next_attempt_at,omitempty"`
	LastAttemptAt *time.Time `json:"last_attempt_at,omitempty"`

	LastStatusCode *int    `json:"last_status_code,omitempty"`
	LastError      *string `json:"last_error,omitempty"`

	DeliveredAt *time.Time `json:"delivered_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTerminal reports whether no further attempts will be made.
func (d *WebhookDelivery) IsTerminal() bool {
	return d.Status == WebhookStatusDelivered || d.Status == WebhookStatusAbandoned
}

// Due reports whether the delivery is ready for another attempt at the
// given instant.
func (d *WebhookDelivery) Due(now time.Time) bool {
	if d.IsTerminal() {
		return false
	}
	if d.NextAttemptAt == nil {
		return true
	}
	return !now.Before(*d.NextAttemptAt)
}

// NewWebhookDelivery creates a pending delivery for the given endpoint.
func NewWebhookDelivery(endpointID uuid.UUID, eventType string, payload []byte) *WebhookDelivery {
	now := time.Now().UTC()
	return &WebhookDelivery{
		ID:         uuid.New(),
		EndpointID: endpointID,
		EventType:  eventType,
		Payload:    payload,
		Status:     WebhookStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
