// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package websocket

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tubefleet/tubefleet/internal/events"
	"github.com/tubefleet/tubefleet/internal/logging"
)

// EventSource yields bus messages for a topic. Satisfied by
// events.Subscriber.
type EventSource interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
}

// Bridge forwards every bus event to the WebSocket hub so dashboard
// clients see scheduling, billing, moderation, strike, and quota activity
// as it happens.
type Bridge struct {
	hub    *Hub
	source EventSource
	topic  string

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewBridge creates a bridge over the full event space ("tubefleet.>").
func NewBridge(hub *Hub, source EventSource) *Bridge {
	return &Bridge{
		hub:    hub,
		source: source,
		topic:  events.SubjectPrefix + ".>",
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start subscribes to the bus and begins forwarding. Idempotent.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = true
	b.mu.Unlock()

	messages, err := b.source.Subscribe(ctx, b.topic)
	if err != nil {
		b.mu.Lock()
		b.running = false
		b.mu.Unlock()
		return fmt.Errorf("subscribe %s: %w", b.topic, err)
	}

	go b.forward(ctx, messages)

	logging.Info().Str("topic", b.topic).Msg("websocket event bridge started")
	return nil
}

// Stop halts forwarding and waits for the forward goroutine to exit.
// Idempotent; Stop before Start is a no-op.
func (b *Bridge) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.running = false
	b.mu.Unlock()

	close(b.stopCh)
	<-b.doneCh
	logging.Info().Msg("websocket event bridge stopped")
}

func (b *Bridge) forward(ctx context.Context, messages <-chan *message.Message) {
	defer close(b.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-b.stopCh:
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			b.handleMessage(msg)
		}
	}
}

// handleMessage decodes a bus event and hands it to the hub. Undecodable
// messages are acked and dropped; redelivery would not fix them.
func (b *Bridge) handleMessage(msg *message.Message) {
	defer msg.Ack()

	var event events.BusEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		logging.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("failed to unmarshal bus event for broadcast")
		return
	}

	b.hub.BroadcastEvent(&event)
}
