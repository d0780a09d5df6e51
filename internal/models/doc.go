// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

/*
Package models defines data structures for the TubeFleet application.

This package contains all data models used throughout the application, including
database schemas, API request/response structures, and internal data transfer
objects. It serves as the single source of truth for data structure definitions.

Key Components:

  - LiveEvent: Core database model for scheduled live broadcasts
  - RecurrencePattern: Repeating series description (frequency, interval, bounds)
  - Channel: Linked YouTube channel with encrypted OAuth credentials
  - APIResponse: Standardized API response wrapper
  - AuditEvent: Append-only administrative audit log entry

Model Categories:

1. Scheduling Models:
  - LiveEvent: Broadcast with slot boundaries, status lifecycle, failure tracking
  - RecurrencePattern: daily/weekly/monthly expansion rules with end bounds

2. Account Models:
  - User: Operator account with bcrypt credentials
  - Channel: Linked YouTube channel, strike cache, encrypted refresh token
  - UserRole: RBAC role assignment (viewer, editor, admin)

3. Billing Models:
  - Plan: Tier with resource limits and integer-cent pricing
  - Subscription: Period binding with Stripe linkage
  - DiscountCode: Percentage or fixed-amount discount with redemption rules
  - Invoice: Period charges including proration lines

4. Automation Models:
  - ModerationRule/ModerationViolation: Comment scanning rules and evidence
  - ChatbotTrigger/ChatbotReply: Automated responders with cooldowns
  - Comment: Working copy of YouTube comments for scanning

5. Operations Models:
  - Notification/NotificationBatch: Alerts with batching and escalation state
  - WebhookEndpoint/WebhookDelivery: Outbound webhooks with retry tracking
  - ResourceUsage/QuotaAlert: Plan limit monitoring
  - Strike: Channel policy strikes with suspension threshold
  - AuditEvent: Admin action log

Usage Example - Scheduling:

	import "github.com/tubefleet/tubefleet/internal/models"

	// Create a live event occupying tonight's slot
	event := models.NewLiveEvent(channelID, userID, "Friday Gaming", startTime)
	event.EndTime = &endTime

	// Conflict probe against another event on the same channel
	if event.Overlaps(existing) && existing.OccupiesSlot() {
	    // reject: slot already taken
	}

Usage Example - API Response:

	import "github.com/tubefleet/tubefleet/internal/models"

	// Success response
	response := models.APIResponse{
	    Status: "success",
	    Data: map[string]interface{}{
	        "total":  1000,
	        "events": events,
	    },
	    Metadata: models.Metadata{
	        Timestamp:   time.Now(),
	        QueryTimeMS: 45,
	    },
	}

	json.NewEncoder(w).Encode(response)

	// Error response
	errorResponse := models.APIResponse{
	    Status: "error",
	    Error: &models.APIError{
	        Code:    "CONFLICT",
	        Message: "Channel already has a broadcast in this slot",
	        Details: map[string]interface{}{
	            "conflicting_event_id": existing.ID,
	        },
	    },
	}

Time Handling:

All timestamps are stored and serialized in UTC. Recurrence expansion is the
one place local time matters: patterns expand in their IANA timezone so wall
clock times survive DST transitions, and results convert to UTC before
persisting (see internal/scheduling).

Sensitive Fields:

Credentials never serialize to JSON:
  - User.PasswordHash (bcrypt hash)
  - Channel.RefreshTokenEncrypted (AES-GCM encrypted OAuth token)
  - LiveEvent.StreamKeyEncrypted (AES-GCM encrypted RTMP key)
  - WebhookEndpoint.Secret (HMAC signing key)

Thread Safety:

All models are:
  - Immutable after creation (pass-by-value or pointers)
  - Safe for concurrent read access
  - No internal mutexes needed (data structures only)

JSON Marshaling:

All models support JSON serialization:
  - snake_case struct tags for field naming
  - Omitempty tags for optional pointer fields
  - time.Time uses RFC3339 format

See Also:

  - internal/database: Database operations using these models
  - internal/api: API handlers returning these models
  - internal/scheduling: Conflict detection and recurrence expansion
*/
package models
