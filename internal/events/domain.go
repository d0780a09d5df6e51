// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/tubefleet/tubefleet/internal/models"
)

// BusPublisher is the transport the domain publisher writes to.
// Satisfied by *Publisher; tests substitute an in-memory capture.
type BusPublisher interface {
	Publish(ctx context.Context, topic string, msg *message.Message) error
}

// DomainPublisher builds BusEvent envelopes from domain models and publishes
// them on the bus. It satisfies the narrow publisher interfaces declared by
// the scheduling, billing, moderation, monitoring, and strikes packages, so
// one instance is wired everywhere events are emitted.
//
// The BusEvent.EventID doubles as the watermill message UUID and therefore
// the JetStream deduplication ID.
type DomainPublisher struct {
	bus        BusPublisher
	serializer *Serializer
}

// NewDomainPublisher creates a domain publisher over the given transport.
func NewDomainPublisher(bus BusPublisher) *DomainPublisher {
	return &DomainPublisher{
		bus:        bus,
		serializer: NewSerializer(),
	}
}

func (p *DomainPublisher) publish(ctx context.Context, event *BusEvent) error {
	data, err := p.serializer.Marshal(event)
	if err != nil {
		return fmt.Errorf("serialize %s: %w", event.Type, err)
	}
	msg := message.NewMessage(event.EventID, data)
	if err := p.bus.Publish(ctx, event.Topic(), msg); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

func streamEvent(eventType string, ev *models.LiveEvent, reason string) *BusEvent {
	event := NewBusEvent(eventType)
	event.UserID = ev.UserID.String()
	event.ChannelID = ev.ChannelID.String()
	event.ResourceType = "live_event"
	event.ResourceID = ev.ID.String()

	payload := StreamPayload{
		Title:          ev.Title,
		Status:         ev.Status,
		ScheduledStart: &ev.StartTime,
		Reason:         reason,
	}
	if ev.RecurrenceID != nil {
		payload.RecurrenceID = ev.RecurrenceID.String()
	}
	_ = event.SetPayload(payload)
	return event
}

// StreamScheduled announces a newly scheduled broadcast.
func (p *DomainPublisher) StreamScheduled(ctx context.Context, ev *models.LiveEvent) error {
	return p.publish(ctx, streamEvent(TypeStreamScheduled, ev, ""))
}

// StreamUpdated announces a rescheduled or edited broadcast.
func (p *DomainPublisher) StreamUpdated(ctx context.Context, ev *models.LiveEvent) error {
	return p.publish(ctx, streamEvent(TypeStreamUpdated, ev, ""))
}

// StreamCanceled announces a cancellation with the operator's reason.
func (p *DomainPublisher) StreamCanceled(ctx context.Context, ev *models.LiveEvent, reason string) error {
	return p.publish(ctx, streamEvent(TypeStreamCanceled, ev, reason))
}

// OccurrenceCreated announces an occurrence materialized from a recurrence
// pattern.
func (p *DomainPublisher) OccurrenceCreated(ctx context.Context, ev *models.LiveEvent) error {
	return p.publish(ctx, streamEvent(TypeOccurrenceCreated, ev, ""))
}

// OccurrenceFailed announces a materialization failure (conflict, remote
// broadcast creation error).
func (p *DomainPublisher) OccurrenceFailed(ctx context.Context, ev *models.LiveEvent, reason string) error {
	return p.publish(ctx, streamEvent(TypeOccurrenceFailed, ev, reason))
}

// RecurrenceCompleted announces that a pattern generated its final occurrence.
func (p *DomainPublisher) RecurrenceCompleted(ctx context.Context, pattern *models.RecurrencePattern) error {
	event := NewBusEvent(TypeRecurrenceCompleted)
	event.UserID = pattern.UserID.String()
	event.ChannelID = pattern.ChannelID.String()
	event.ResourceType = "recurrence_pattern"
	event.ResourceID = pattern.ID.String()
	_ = event.SetPayload(StreamPayload{RecurrenceID: pattern.ID.String()})
	return p.publish(ctx, event)
}

// SubscriptionChanged announces a plan change, cancellation, or renewal.
func (p *DomainPublisher) SubscriptionChanged(ctx context.Context, sub *models.Subscription, planName, previousPlan, reason string) error {
	event := NewBusEvent(TypeSubscriptionChanged)
	event.UserID = sub.UserID.String()
	event.ResourceType = "subscription"
	event.ResourceID = sub.ID.String()
	_ = event.SetPayload(BillingPayload{
		SubscriptionID: sub.ID.String(),
		PlanName:       planName,
		PreviousPlan:   previousPlan,
		Status:         sub.Status,
		Reason:         reason,
	})
	return p.publish(ctx, event)
}

// PaymentFailed announces a failed charge on a subscription.
func (p *DomainPublisher) PaymentFailed(ctx context.Context, sub *models.Subscription, invoiceID string, amountCents int64, reason string) error {
	event := NewBusEvent(TypePaymentFailed)
	event.UserID = sub.UserID.String()
	event.ResourceType = "subscription"
	event.ResourceID = sub.ID.String()
	_ = event.SetPayload(BillingPayload{
		SubscriptionID: sub.ID.String(),
		InvoiceID:      invoiceID,
		Status:         sub.Status,
		AmountCents:    amountCents,
		Reason:         reason,
	})
	return p.publish(ctx, event)
}

// InvoiceIssued announces a newly issued invoice.
func (p *DomainPublisher) InvoiceIssued(ctx context.Context, invoice *models.Invoice) error {
	event := NewBusEvent(TypeInvoiceIssued)
	event.UserID = invoice.UserID.String()
	event.ResourceType = "invoice"
	event.ResourceID = invoice.ID.String()
	_ = event.SetPayload(BillingPayload{
		SubscriptionID: invoice.SubscriptionID.String(),
		InvoiceID:      invoice.ID.String(),
		Status:         invoice.Status,
		AmountCents:    invoice.TotalCents,
	})
	return p.publish(ctx, event)
}

// ViolationDetected announces a moderation rule match on a comment.
func (p *DomainPublisher) ViolationDetected(ctx context.Context, v *models.ModerationViolation, rule *models.ModerationRule) error {
	event := NewBusEvent(TypeModerationViolation)
	event.UserID = rule.UserID.String()
	event.ChannelID = v.ChannelID.String()
	event.ResourceType = "comment"
	event.ResourceID = v.CommentID
	_ = event.SetPayload(ViolationPayload{
		RuleID:    rule.ID.String(),
		RuleName:  rule.Name,
		RuleType:  rule.RuleType,
		CommentID: v.CommentID,
		Action:    v.ActionTaken,
		Severity:  rule.Severity,
		Matched:   v.MatchedText,
	})
	return p.publish(ctx, event)
}

func quotaEvent(eventType string, userID uuid.UUID, usage models.ResourceUsage) *BusEvent {
	event := NewBusEvent(eventType)
	event.UserID = userID.String()
	event.ResourceType = "resource_usage"
	event.ResourceID = usage.Kind
	_ = event.SetPayload(QuotaPayload{
		Resource: usage.Kind,
		Used:     usage.Used,
		Limit:    usage.Limit,
		Percent:  usage.Percent(),
	})
	return event
}

// QuotaWarning announces usage crossing the warn threshold of a plan limit.
func (p *DomainPublisher) QuotaWarning(ctx context.Context, userID uuid.UUID, usage models.ResourceUsage) error {
	return p.publish(ctx, quotaEvent(TypeQuotaWarning, userID, usage))
}

// QuotaExceeded announces usage crossing the critical threshold of a plan limit.
func (p *DomainPublisher) QuotaExceeded(ctx context.Context, userID uuid.UUID, usage models.ResourceUsage) error {
	return p.publish(ctx, quotaEvent(TypeQuotaExceeded, userID, usage))
}

func strikeEvent(eventType string, strike *models.Strike, channel *models.Channel, activeCount int) *BusEvent {
	event := NewBusEvent(eventType)
	event.UserID = channel.UserID.String()
	event.ChannelID = channel.ID.String()
	event.ResourceType = "strike"
	event.ResourceID = strike.ID.String()
	_ = event.SetPayload(StrikePayload{
		StrikeID:     strike.ID.String(),
		StrikeType:   strike.StrikeType,
		Reason:       strike.Reason,
		ActiveCount:  activeCount,
		ChannelTitle: channel.Title,
	})
	return event
}

// StrikeRecorded announces a new strike against a channel.
func (p *DomainPublisher) StrikeRecorded(ctx context.Context, strike *models.Strike, channel *models.Channel, activeCount int) error {
	return p.publish(ctx, strikeEvent(TypeStrikeRecorded, strike, channel, activeCount))
}

// StrikeResolved announces a strike leaving the active set.
func (p *DomainPublisher) StrikeResolved(ctx context.Context, strike *models.Strike, channel *models.Channel, activeCount int) error {
	return p.publish(ctx, strikeEvent(TypeStrikeResolved, strike, channel, activeCount))
}

func suspensionEvent(eventType string, channel *models.Channel, activeCount int) *BusEvent {
	event := NewBusEvent(eventType)
	event.UserID = channel.UserID.String()
	event.ChannelID = channel.ID.String()
	event.ResourceType = "channel"
	event.ResourceID = channel.ID.String()
	_ = event.SetPayload(StrikePayload{
		ActiveCount:  activeCount,
		ChannelTitle: channel.Title,
	})
	return event
}

// ChannelSuspended announces strike enforcement suspending a channel.
func (p *DomainPublisher) ChannelSuspended(ctx context.Context, channel *models.Channel, activeCount int) error {
	return p.publish(ctx, suspensionEvent(TypeChannelSuspended, channel, activeCount))
}

// SuspensionLifted announces the active strike count dropping back below
// the suspension threshold.
func (p *DomainPublisher) SuspensionLifted(ctx context.Context, channel *models.Channel, activeCount int) error {
	return p.publish(ctx, suspensionEvent(TypeSuspensionLifted, channel, activeCount))
}
