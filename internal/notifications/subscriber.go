// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tubefleet/tubefleet/internal/events"
	"github.com/tubefleet/tubefleet/internal/logging"
	"github.com/tubefleet/tubefleet/internal/models"
)

// HandleBusEvent converts a domain event into a user notification. Event
// types without a notification mapping are acked silently; a malformed
// event is logged and acked rather than redelivered forever.
func (s *Service) HandleBusEvent(ctx context.Context, event *events.BusEvent) error {
	if event.UserID == "" {
		return nil
	}
	userID, err := uuid.Parse(event.UserID)
	if err != nil {
		logging.Warn().Str("event_id", event.EventID).Str("user_id", event.UserID).Msg("Event carries unparseable user ID")
		return nil
	}

	n := notificationForEvent(userID, event)
	if n == nil {
		return nil
	}
	if event.ChannelID != "" && n.ResourceType == nil {
		rt, rid := "channel", event.ChannelID
		n.ResourceType = &rt
		n.ResourceID = &rid
	}

	if _, err := s.Create(ctx, n); err != nil {
		return fmt.Errorf("notifying for %s: %w", event.Type, err)
	}
	return nil
}

// notificationForEvent maps one bus event to notification content, or nil
// for event types users are not alerted about.
func notificationForEvent(userID uuid.UUID, event *events.BusEvent) *models.Notification {
	switch event.Type {
	case events.TypeOccurrenceFailed:
		var p events.StreamPayload
		_ = event.DecodePayload(&p)
		n := models.NewNotification(userID, models.NotificationTypeStreamFailed, models.SeverityWarning,
			"Stream occurrence failed",
			failureBody("A scheduled stream could not be created", p.Title, p.Reason))
		return n

	case events.TypePaymentFailed:
		var p events.BillingPayload
		_ = event.DecodePayload(&p)
		n := models.NewNotification(userID, models.NotificationTypeBillingPastDue, models.SeverityCritical,
			"Payment failed",
			failureBody("Your subscription payment was declined", p.PlanName, p.Reason))
		key := "billing.past_due:" + p.SubscriptionID
		n.DedupeKey = &key
		return n

	case events.TypeModerationViolation:
		var p events.ViolationPayload
		_ = event.DecodePayload(&p)
		n := models.NewNotification(userID, models.NotificationTypeModerationHit, models.SeverityInfo,
			"Moderation rule matched",
			fmt.Sprintf("Rule %q matched a comment (action: %s).", p.RuleName, p.Action))
		// One pending hit alert per rule; the digest carries the rest.
		key := "moderation.hit:" + p.RuleID
		n.DedupeKey = &key
		return n

	case events.TypeStrikeRecorded:
		var p events.StrikePayload
		_ = event.DecodePayload(&p)
		n := models.NewNotification(userID, models.NotificationTypeStrikeIssued, models.SeverityWarning,
			"Strike recorded",
			fmt.Sprintf("A %s strike was recorded against %s (%d active).", p.StrikeType, channelLabel(p.ChannelTitle), p.ActiveCount))
		return n

	case events.TypeChannelSuspended:
		var p events.StrikePayload
		_ = event.DecodePayload(&p)
		n := models.NewNotification(userID, models.NotificationTypeStrikeIssued, models.SeverityCritical,
			"Channel suspended",
			fmt.Sprintf("%s was suspended after reaching %d active strikes. Automation is paused until strikes are resolved.", channelLabel(p.ChannelTitle), p.ActiveCount))
		return n

	case events.TypeQuotaWarning:
		var p events.QuotaPayload
		_ = event.DecodePayload(&p)
		n := models.NewNotification(userID, models.NotificationTypeQuotaWarning, models.SeverityWarning,
			"Approaching plan limit",
			fmt.Sprintf("%s usage is at %.0f%% of your plan limit (%d of %d).", p.Resource, p.Percent, p.Used, p.Limit))
		key := "quota.warning:" + p.Resource
		n.DedupeKey = &key
		return n

	case events.TypeQuotaExceeded:
		var p events.QuotaPayload
		_ = event.DecodePayload(&p)
		n := models.NewNotification(userID, models.NotificationTypeQuotaCritical, models.SeverityCritical,
			"Plan limit reached",
			fmt.Sprintf("%s usage reached your plan limit (%d of %d). Further creation is blocked until usage drops or the plan is upgraded.", p.Resource, p.Used, p.Limit))
		key := "quota.critical:" + p.Resource
		n.DedupeKey = &key
		return n

	default:
		return nil
	}
}

func failureBody(lead, subject, reason string) string {
	body := lead
	if subject != "" {
		body += fmt.Sprintf(" (%s)", subject)
	}
	if reason != "" {
		body += ": " + reason
	}
	return body + "."
}

func channelLabel(title string) string {
	if title == "" {
		return "your channel"
	}
	return title
}
