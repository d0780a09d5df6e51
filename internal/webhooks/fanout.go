// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package webhooks

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tubefleet/tubefleet/internal/events"
	"github.com/tubefleet/tubefleet/internal/logging"
	"github.com/tubefleet/tubefleet/internal/models"
)

// FanoutStore is the persistence surface the fanout consumer needs.
type FanoutStore interface {
	ListEnabledEndpointsByUser(ctx context.Context, userID string) ([]models.WebhookEndpoint, error)
	CreateWebhookDelivery(ctx context.Context, delivery *models.WebhookDelivery) error
}

// Fanout turns bus events into pending deliveries, one per subscribed
// endpoint. Dispatch happens later in the Dispatcher; the fanout only
// writes queue rows, so a slow endpoint never backpressures the bus.
type Fanout struct {
	store FanoutStore

	// maxPayloadBytes drops oversized events instead of queueing them.
	maxPayloadBytes int
}

// NewFanout creates the fanout consumer. maxPayloadBytes <= 0 disables the
// size check.
func NewFanout(store FanoutStore, maxPayloadBytes int) *Fanout {
	return &Fanout{store: store, maxPayloadBytes: maxPayloadBytes}
}

// HandleBusEvent queues the event for every enabled endpoint of the event's
// user that subscribes to its type. Events without a user have no tenant to
// deliver to and are acked silently.
func (f *Fanout) HandleBusEvent(ctx context.Context, event *events.BusEvent) error {
	if event.UserID == "" {
		return nil
	}

	endpoints, err := f.store.ListEnabledEndpointsByUser(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("listing endpoints: %w", err)
	}
	if len(endpoints) == 0 {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event %s: %w", event.EventID, err)
	}
	if f.maxPayloadBytes > 0 && len(payload) > f.maxPayloadBytes {
		logging.Warn().
			Str("event_id", event.EventID).
			Str("type", event.Type).
			Int("bytes", len(payload)).
			Msg("Event exceeds webhook payload cap, not queued")
		return nil
	}

	for i := range endpoints {
		ep := &endpoints[i]
		if !ep.SubscribesTo(event.Type) {
			continue
		}
		delivery := models.NewWebhookDelivery(ep.ID, event.Type, payload)
		if err := f.store.CreateWebhookDelivery(ctx, delivery); err != nil {
			return fmt.Errorf("queueing delivery for endpoint %s: %w", ep.ID, err)
		}
	}
	return nil
}
