// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tubefleet/tubefleet/internal/config"
	"github.com/tubefleet/tubefleet/internal/events"
	"github.com/tubefleet/tubefleet/internal/logging"
)

// busComponents holds the event bus infrastructure for lifecycle management.
// The embedded NATS server, the JetStream stream, the resilient publisher,
// and the Watermill router with its per-consumer durable subscribers all
// live here; main wires the router into the supervisor tree and calls
// Shutdown after the tree has drained.
type busComponents struct {
	server  *events.EmbeddedServer
	conn    *natsgo.Conn
	streams *events.StreamInitializer

	publisher *events.Publisher
	domain    *events.DomainPublisher
	router    *events.Router

	// Durable subscribers, one per consumer so each tracks its own
	// position in the stream.
	notifySub  *events.Subscriber
	webhookSub *events.Subscriber
	bridgeSub  *events.Subscriber
}

// busConsumer is a BusEvent processing function registered on the router.
type busConsumer func(ctx context.Context, event *events.BusEvent) error

// initBus starts the embedded NATS server (when configured), ensures the
// JetStream stream, and builds the publisher, domain publisher, and router.
// Returns nil, nil when the bus is disabled; callers treat a nil bus as
// fire-and-forget mode with no event fanout.
func initBus(ctx context.Context, cfg *config.Config) (*busComponents, error) {
	if !cfg.NATS.Enabled {
		logging.Info().Msg("Event bus disabled (NATS_ENABLED=false)")
		return nil, nil
	}

	bus := &busComponents{}

	var natsURL string
	if cfg.NATS.EmbeddedServer {
		serverCfg := events.DefaultServerConfig()
		serverCfg.StoreDir = cfg.NATS.StoreDir
		serverCfg.JetStreamMaxMem = cfg.NATS.MaxMemory
		serverCfg.JetStreamMaxStore = cfg.NATS.MaxStore

		server, err := events.NewEmbeddedServer(&serverCfg)
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS server: %w", err)
		}
		bus.server = server
		natsURL = server.ClientURL()
		logging.Info().Str("url", natsURL).Msg("Embedded NATS server started")
	} else {
		natsURL = cfg.NATS.URL
		logging.Info().Str("url", natsURL).Msg("Using external NATS server")
	}

	nc, err := natsgo.Connect(natsURL,
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2*time.Second),
	)
	if err != nil {
		bus.Shutdown(ctx)
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	bus.conn = nc

	js, err := jetstream.New(nc)
	if err != nil {
		bus.Shutdown(ctx)
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	streamCfg := events.DefaultStreamConfig()
	if cfg.NATS.StreamRetentionDays > 0 {
		streamCfg.MaxAge = time.Duration(cfg.NATS.StreamRetentionDays) * 24 * time.Hour
	}
	initializer, err := events.NewStreamInitializer(js, &streamCfg)
	if err != nil {
		bus.Shutdown(ctx)
		return nil, fmt.Errorf("create stream initializer: %w", err)
	}
	bus.streams = initializer

	stream, err := initializer.EnsureStream(ctx)
	if err != nil {
		bus.Shutdown(ctx)
		return nil, fmt.Errorf("ensure stream: %w", err)
	}
	info := stream.CachedInfo()
	logging.Info().
		Str("name", info.Config.Name).
		Strs("subjects", info.Config.Subjects).
		Dur("max_age", info.Config.MaxAge).
		Msg("JetStream stream ready")

	publisher, err := events.NewPublisher(events.DefaultPublisherConfig(natsURL), nil)
	if err != nil {
		bus.Shutdown(ctx)
		return nil, fmt.Errorf("create publisher: %w", err)
	}
	publisher.SetCircuitBreaker(events.NewCircuitBreaker(
		events.DefaultCircuitBreakerConfig("bus-publisher")))
	bus.publisher = publisher
	bus.domain = events.NewDomainPublisher(publisher)

	routerCfg := events.DefaultRouterConfig()
	routerCfg.RetryMaxRetries = cfg.NATS.RouterRetryCount
	routerCfg.RetryInitialInterval = cfg.NATS.RouterRetryInitialInterval
	routerCfg.RetryMaxInterval = cfg.NATS.RouterRetryInitialInterval * 10
	routerCfg.ThrottlePerSecond = int64(cfg.NATS.RouterThrottlePerSecond)
	routerCfg.DeduplicationEnabled = cfg.NATS.RouterDeduplicationEnabled
	routerCfg.DeduplicationTTL = cfg.NATS.RouterDeduplicationTTL
	routerCfg.CloseTimeout = cfg.NATS.RouterCloseTimeout

	var poisonPub message.Publisher
	if cfg.NATS.RouterPoisonQueueEnabled {
		routerCfg.PoisonQueueTopic = cfg.NATS.RouterPoisonQueueTopic
		poisonPub = publisher.WatermillPublisher()
	} else {
		routerCfg.PoisonQueueTopic = ""
	}

	router, err := events.NewRouter(&routerCfg, poisonPub, nil)
	if err != nil {
		bus.Shutdown(ctx)
		return nil, fmt.Errorf("create router: %w", err)
	}
	bus.router = router
	logging.Info().
		Int("retry", routerCfg.RetryMaxRetries).
		Bool("dedup", routerCfg.DeduplicationEnabled).
		Bool("poison", cfg.NATS.RouterPoisonQueueEnabled).
		Msg("Event router created")

	// Consumer subscribers. Each gets its own durable name so the
	// notification writer, the webhook fanout, and the WebSocket bridge
	// advance through the stream independently.
	bus.notifySub, err = bus.newSubscriber(cfg, natsURL, "notifications")
	if err != nil {
		bus.Shutdown(ctx)
		return nil, err
	}
	bus.webhookSub, err = bus.newSubscriber(cfg, natsURL, "webhooks")
	if err != nil {
		bus.Shutdown(ctx)
		return nil, err
	}
	bus.bridgeSub, err = bus.newSubscriber(cfg, natsURL, "bridge")
	if err != nil {
		bus.Shutdown(ctx)
		return nil, err
	}

	return bus, nil
}

func (b *busComponents) newSubscriber(cfg *config.Config, natsURL, consumer string) (*events.Subscriber, error) {
	subCfg := events.DefaultSubscriberConfig(natsURL)
	if cfg.NATS.DurableName != "" {
		subCfg.DurableName = cfg.NATS.DurableName
	}
	if cfg.NATS.QueueGroup != "" {
		subCfg.QueueGroup = cfg.NATS.QueueGroup
	}
	subCfg.DurableName += "-" + consumer
	subCfg.QueueGroup += "-" + consumer
	if cfg.NATS.SubscribersCount > 0 {
		subCfg.SubscribersCount = cfg.NATS.SubscribersCount
	}

	sub, err := events.NewSubscriber(&subCfg, nil)
	if err != nil {
		return nil, fmt.Errorf("create %s subscriber: %w", consumer, err)
	}
	return sub, nil
}

// addConsumer registers a BusEvent consumer on the router. Undecodable
// payloads are acked and dropped since redelivery cannot fix them.
func (b *busComponents) addConsumer(name string, sub *events.Subscriber, fn busConsumer) {
	serializer := events.NewSerializer()
	b.router.AddConsumerHandler(
		name,
		events.SubjectPrefix+".>",
		sub.WatermillSubscriber(),
		func(msg *message.Message) error {
			event, err := serializer.Unmarshal(msg.Payload)
			if err != nil {
				logging.Warn().
					Err(err).
					Str("handler", name).
					Str("message_uuid", msg.UUID).
					Msg("Dropping undecodable bus event")
				return nil
			}
			return fn(msg.Context(), event)
		},
	)
	logging.Info().Str("handler", name).Msg("Bus consumer registered")
}

// Shutdown tears the bus down in consumer-to-transport order: subscribers,
// publisher, connection, embedded server. The router is stopped separately
// by the supervisor before this runs.
func (b *busComponents) Shutdown(ctx context.Context) {
	if b == nil {
		return
	}

	for _, sub := range []*events.Subscriber{b.notifySub, b.webhookSub, b.bridgeSub} {
		if sub == nil {
			continue
		}
		if err := sub.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing subscriber")
		}
	}
	if b.publisher != nil {
		if err := b.publisher.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing publisher")
		}
	}
	if b.conn != nil {
		b.conn.Close()
	}
	if b.server != nil {
		if err := b.server.Shutdown(ctx); err != nil {
			logging.Error().Err(err).Msg("Error shutting down embedded NATS server")
		}
		logging.Info().Msg("Embedded NATS server stopped")
	}
}
