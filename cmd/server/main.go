// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/tubefleet/tubefleet/docs" // Generated swagger docs
	"github.com/tubefleet/tubefleet/internal/api"
	"github.com/tubefleet/tubefleet/internal/audit"
	"github.com/tubefleet/tubefleet/internal/auth"
	"github.com/tubefleet/tubefleet/internal/authz"
	"github.com/tubefleet/tubefleet/internal/billing"
	"github.com/tubefleet/tubefleet/internal/channels"
	"github.com/tubefleet/tubefleet/internal/chatbot"
	"github.com/tubefleet/tubefleet/internal/comments"
	"github.com/tubefleet/tubefleet/internal/config"
	"github.com/tubefleet/tubefleet/internal/database"
	"github.com/tubefleet/tubefleet/internal/logging"
	"github.com/tubefleet/tubefleet/internal/middleware"
	"github.com/tubefleet/tubefleet/internal/moderation"
	"github.com/tubefleet/tubefleet/internal/monitoring"
	"github.com/tubefleet/tubefleet/internal/notifications"
	"github.com/tubefleet/tubefleet/internal/scheduling"
	"github.com/tubefleet/tubefleet/internal/strikes"
	"github.com/tubefleet/tubefleet/internal/supervisor"
	"github.com/tubefleet/tubefleet/internal/supervisor/services"
	"github.com/tubefleet/tubefleet/internal/webhooks"
	ws "github.com/tubefleet/tubefleet/internal/websocket"
	"github.com/tubefleet/tubefleet/internal/youtube"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("auth_mode", cfg.Security.AuthMode).
		Bool("youtube_enabled", cfg.YouTube.Enabled).
		Bool("stripe_enabled", cfg.Stripe.Enabled).
		Msg("Starting TubeFleet")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized")

	// Root context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === SECURITY: SESSIONS, JWT, AUDIT, RBAC ===

	sessions, closeSessions, err := auth.NewSessionStore(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize session store")
	}
	defer func() {
		if err := closeSessions(); err != nil {
			logging.Error().Err(err).Msg("Error closing session store")
		}
	}()

	var jwtManager *auth.JWTManager
	switch cfg.Security.AuthMode {
	case "jwt", "multi":
		jwtManager, err = auth.NewJWTManager(&cfg.Security)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
		}
		logging.Info().Msg("JWT authentication enabled")
	case "none":
		logging.Warn().Msg("Authentication is DISABLED (AUTH_MODE=none). Development only!")
	}

	auditStore := audit.NewDuckDBStore(db.Conn())
	var auditLogger *audit.Logger
	if err := auditStore.CreateTable(ctx); err != nil {
		logging.Warn().Err(err).Msg("Failed to create audit table, audit logging disabled")
	} else {
		auditCfg := audit.DefaultConfig()
		auditCfg.Enabled = cfg.Audit.Enabled
		auditCfg.LogLevel = audit.Severity(cfg.Audit.LogLevel)
		auditCfg.RetentionDays = cfg.Audit.RetentionDays
		auditCfg.CleanupInterval = cfg.Audit.CleanupInterval
		auditCfg.BufferSize = cfg.Audit.BufferSize
		auditCfg.LogToStdout = cfg.Audit.LogToStdout
		auditLogger = audit.NewLogger(auditStore, auditCfg)
		defer func() {
			if err := auditLogger.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing audit logger")
			}
		}()
		logging.Info().Int("retention_days", auditCfg.RetentionDays).Msg("Audit logging initialized")
	}

	authSvc := auth.NewService(db, sessions, jwtManager, &cfg.Security, auditLogger)
	if err := authSvc.EnsureAdmin(ctx, &cfg.Security); err != nil {
		logging.Fatal().Err(err).Msg("Failed to bootstrap admin account")
	}

	authMW, err := auth.NewMiddleware(jwtManager, sessions, &cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize auth middleware")
	}

	enforcer, err := authz.NewEnforcer(&cfg.Security.Casbin)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize RBAC enforcer")
	}
	authzMW := authz.NewMiddleware(enforcer, auditLogger)

	// The credential encryptor seals OAuth refresh tokens and RTMP stream
	// keys. It derives its key from the JWT secret, so it is only available
	// when one is configured.
	var cipher *config.CredentialEncryptor
	if cfg.Security.JWTSecret != "" {
		cipher, err = config.NewCredentialEncryptor(cfg.Security.JWTSecret)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize credential encryptor")
		}
	} else {
		logging.Warn().Msg("No JWT secret configured, credential encryption disabled")
	}

	// === EVENT BUS ===

	bus, err := initBus(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize event bus")
	}
	defer bus.Shutdown(context.Background())

	// === GOOGLE OIDC + YOUTUBE DATA API ===

	var (
		googleAuth  *channels.GoogleAuthorizer
		channelsSvc *channels.Service
		tokenSource *channels.TokenSource
		broadcaster *youtube.Broadcaster
		gateway     *youtube.CommentGateway
	)

	checker := monitoring.NewChecker(db)

	if cfg.Security.Google.ClientID != "" && cfg.Security.Google.RedirectURL != "" {
		googleAuth, err = channels.NewGoogleAuthorizer(ctx, &cfg.Security.Google)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize Google authorizer")
		}
		var channelCipher channels.Cipher
		if cipher != nil {
			channelCipher = cipher
		}
		tokenSource = channels.NewTokenSource(db, googleAuth, channelCipher)

		var states channels.StateStore
		if bs, ok := sessions.(*auth.BadgerSessionStore); ok {
			states = channels.NewBadgerStateStoreFromDB(bs.DB())
		} else {
			states = channels.NewMemoryStateStore()
		}

		var directory channels.Directory
		if cfg.YouTube.Enabled {
			client := youtube.NewBreakerClient(youtube.NewClient(&cfg.YouTube))
			directory = client
			broadcaster = youtube.NewBroadcaster(client, tokenSource)
			gateway = youtube.NewCommentGateway(client, tokenSource)
			logging.Info().Str("base_url", cfg.YouTube.BaseURL).Msg("YouTube Data API enabled")
		} else {
			logging.Info().Msg("YouTube API disabled, broadcasts stay local")
		}

		channelsSvc = channels.NewService(db, states, googleAuth, channelCipher, checker, directory, tokenSource,
			channels.ServiceConfig{StateTTL: cfg.Security.Google.StateTTL})
		logging.Info().Msg("Channel linking enabled")
	} else {
		logging.Info().Msg("Google OAuth not configured, channel linking disabled")
	}

	// === DOMAIN SERVICES ===

	// The domain publisher satisfies every package's narrow publisher
	// interface. Assigning through typed variables keeps the interfaces
	// nil when the bus is disabled.
	var (
		materializerPub scheduling.MaterializerPublisher
		billingPub      billing.Publisher
		moderationPub   moderation.Publisher
		monitoringPub   monitoring.Publisher
		strikesPub      strikes.Publisher
	)
	if bus != nil {
		materializerPub = bus.domain
		billingPub = bus.domain
		moderationPub = bus.domain
		monitoringPub = bus.domain
		strikesPub = bus.domain
	}

	var stripeGateway billing.Gateway
	if cfg.Stripe.Enabled {
		stripeGateway = billing.NewStripeClient(&cfg.Stripe)
		logging.Info().Msg("Stripe gateway enabled")
	} else {
		logging.Info().Msg("Stripe disabled, billing runs locally")
	}
	billingSvc := billing.NewService(db, stripeGateway, billingPub, cfg.Billing)

	renewerCfg := billing.DefaultRenewerConfig()
	renewerCfg.GraceDays = cfg.Billing.GraceDays
	renewer := billing.NewRenewer(db, billingSvc, renewerCfg)

	collectorCfg := monitoring.DefaultCollectorConfig()
	collectorCfg.CollectInterval = cfg.Monitoring.CollectInterval
	collectorCfg.WarnThreshold = cfg.Monitoring.WarnThreshold
	collectorCfg.CriticalThreshold = cfg.Monitoring.CriticalThreshold
	collectorCfg.Enabled = cfg.Monitoring.Enabled
	collector := monitoring.NewCollector(db, monitoringPub, collectorCfg)

	emailChannel := notifications.NewEmailChannel(cfg.Notifications.Email)
	adminHook := notifications.NewAdminWebhookChannel(cfg.Notifications.AdminWebhook)
	notifSvc := notifications.NewService(db, emailChannel)

	notifDispatcherCfg := notifications.DefaultDispatcherConfig()
	notifDispatcherCfg.BatchWindow = cfg.Notifications.BatchWindow
	notifDispatcherCfg.BatchMaxSize = cfg.Notifications.BatchMaxSize
	notifDispatcherCfg.EscalationEnabled = cfg.Notifications.EscalationEnabled
	notifDispatcherCfg.EscalationThreshold = cfg.Notifications.EscalationThreshold
	notifDispatcherCfg.EscalationWindow = cfg.Notifications.EscalationWindow
	notifDispatcherCfg.Enabled = cfg.Notifications.Enabled
	notifDispatcher := notifications.NewDispatcher(db, emailChannel, adminHook, notifDispatcherCfg)

	strikesSvc := strikes.NewService(db, strikesPub, strikes.DefaultServiceConfig())
	expirer := strikes.NewExpirer(strikesSvc)

	var remote moderation.RemoteModerator
	if gateway != nil {
		remote = gateway
	}
	engine := moderation.NewEngine(db, remote, moderationPub, moderation.EngineConfig{
		AutoAction:  cfg.Moderation.AutoAction,
		ScanTimeout: cfg.Moderation.ScanTimeout,
	})
	scannerCfg := moderation.DefaultScannerConfig()
	scannerCfg.Enabled = cfg.Moderation.Enabled
	scanner := moderation.NewScanner(db, engine, scannerCfg)

	var completer comments.Completer
	if cfg.Chatbot.Enabled {
		completer = chatbot.NewClient(cfg.Chatbot)
		logging.Info().Str("model", cfg.Chatbot.Model).Msg("Chatbot replies enabled")
	}
	var poster comments.Poster
	if gateway != nil {
		poster = gateway
	}
	responder := comments.NewResponder(db, poster, completer)
	triggers := comments.NewTriggers(db)

	var syncer *comments.Syncer
	if gateway != nil {
		syncer = comments.NewSyncer(db, gateway, responder, comments.DefaultSyncerConfig())
	} else {
		logging.Info().Msg("Comment sync disabled (no YouTube gateway)")
	}

	endpoints := webhooks.NewEndpoints(db)
	webhookDispatcherCfg := webhooks.DefaultDispatcherConfig()
	webhookDispatcherCfg.DispatchInterval = cfg.Webhooks.DispatchInterval
	webhookDispatcherCfg.MaxRetries = cfg.Webhooks.MaxRetries
	webhookDispatcherCfg.InitialBackoff = cfg.Webhooks.InitialBackoff
	webhookDispatcherCfg.BackoffFactor = cfg.Webhooks.BackoffFactor
	webhookDispatcherCfg.MaxBackoff = cfg.Webhooks.MaxBackoff
	webhookDispatcherCfg.Timeout = cfg.Webhooks.Timeout
	webhookDispatcherCfg.Enabled = cfg.Webhooks.Enabled
	webhookDispatcher := webhooks.NewDispatcher(db, webhookDispatcherCfg)
	fanout := webhooks.NewFanout(db, int(cfg.Webhooks.MaxPayloadBytes))

	conflicts := scheduling.NewChecker(db)

	var materializerCipher scheduling.SecretCipher
	if cipher != nil {
		materializerCipher = cipher
	}
	var materializerBroadcast scheduling.Broadcaster
	if broadcaster != nil {
		materializerBroadcast = broadcaster
	}
	materializer := scheduling.NewMaterializer(db, materializerBroadcast, materializerCipher, materializerPub,
		scheduling.MaterializerConfig{
			CheckInterval:    cfg.Scheduler.MaterializeInterval,
			Horizon:          cfg.Scheduler.Horizon,
			MaxConcurrent:    cfg.Scheduler.MaxConcurrent,
			ExecutionTimeout: 2 * time.Minute,
			Enabled:          cfg.Scheduler.Enabled,
		})

	// === WEBSOCKET + BUS CONSUMERS ===

	hub := ws.NewHub()

	var bridge *ws.Bridge
	if bus != nil {
		bridge = ws.NewBridge(hub, bus.bridgeSub)
		bus.addConsumer("notification-writer", bus.notifySub, notifSvc.HandleBusEvent)
		bus.addConsumer("webhook-fanout", bus.webhookSub, fanout.HandleBusEvent)
	}

	// === HTTP SERVER ===

	perf := middleware.NewPerformanceMonitor(1000)

	deps := api.Deps{
		Config:        cfg,
		DB:            db,
		Auth:          authSvc,
		AuthMW:        authMW,
		AuthzMW:       authzMW,
		Audit:         auditLogger,
		Billing:       billingSvc,
		Channels:      channelsSvc,
		Notifications: notifSvc,
		Strikes:       strikesSvc,
		Moderation:    engine,
		Triggers:      triggers,
		Syncer:        syncer,
		Checker:       checker,
		Collector:     collector,
		Endpoints:     endpoints,
		Dispatcher:    webhookDispatcher,
		Conflicts:     conflicts,
		Broadcaster:   broadcaster,
		Publisher:     nil,
		Hub:           hub,
		Perf:          perf,
	}
	if cipher != nil {
		deps.Cipher = cipher
	}
	if bus != nil {
		deps.Publisher = bus.domain
	}
	apiServer := api.NewServer(deps)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      apiServer.Routes(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// === SUPERVISOR TREE ===

	tree, err := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// Data layer: storage-only maintenance loops.
	tree.AddDataService(services.NewLoopService("session-cleanup", time.Hour, authSvc.CleanupSessions))
	if channelsSvc != nil {
		tree.AddDataService(services.NewLoopService("consent-state-cleanup", 10*time.Minute,
			func(ctx context.Context) error {
				_, err := channelsSvc.CleanupStates(ctx)
				return err
			}))
	}
	if auditLogger != nil {
		tree.AddDataService(services.NewRunnerService("audit-retention", func(ctx context.Context) error {
			auditLogger.RunCleanup(ctx)
			return ctx.Err()
		}))
	}
	if lockout := authSvc.Lockout(); lockout.Enabled() {
		tree.AddDataService(services.NewRunnerService("lockout-sweeper", func(ctx context.Context) error {
			lockout.Run(ctx)
			return ctx.Err()
		}))
	}

	// Worker layer: domain background loops.
	tree.AddWorkerService(services.NewWorkerService("materializer", materializer))
	tree.AddWorkerService(services.NewWorkerService("subscription-renewer", renewer))
	tree.AddWorkerService(services.NewWorkerService("strike-expirer", expirer))
	tree.AddWorkerService(services.NewWorkerService("usage-collector", collector))
	tree.AddWorkerService(services.NewWorkerService("moderation-scanner", scanner))
	if syncer != nil {
		tree.AddWorkerService(services.NewWorkerService("comment-syncer", syncer))
	}

	// Messaging layer: event router, WebSocket fanout, dispatchers.
	if bus != nil {
		tree.AddMessagingService(services.NewRunnerService("event-router", bus.router.Run))
		tree.AddMessagingService(services.NewRunnerService("websocket-bridge", func(ctx context.Context) error {
			if err := bridge.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			bridge.Stop()
			return ctx.Err()
		}))
	}
	tree.AddMessagingService(services.NewRunnerService("websocket-hub", hub.RunWithContext))
	tree.AddMessagingService(services.NewWorkerService("notification-dispatcher", notifDispatcher))
	tree.AddMessagingService(services.NewWorkerService("webhook-dispatcher", webhookDispatcher))

	// API layer.
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === RUN ===

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("TubeFleet stopped gracefully")
}
