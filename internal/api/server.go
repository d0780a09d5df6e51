// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package api

import (
	"time"

	"github.com/tubefleet/tubefleet/internal/audit"
	"github.com/tubefleet/tubefleet/internal/auth"
	"github.com/tubefleet/tubefleet/internal/authz"
	"github.com/tubefleet/tubefleet/internal/billing"
	"github.com/tubefleet/tubefleet/internal/channels"
	"github.com/tubefleet/tubefleet/internal/comments"
	"github.com/tubefleet/tubefleet/internal/config"
	"github.com/tubefleet/tubefleet/internal/database"
	"github.com/tubefleet/tubefleet/internal/events"
	"github.com/tubefleet/tubefleet/internal/middleware"
	"github.com/tubefleet/tubefleet/internal/moderation"
	"github.com/tubefleet/tubefleet/internal/monitoring"
	"github.com/tubefleet/tubefleet/internal/notifications"
	"github.com/tubefleet/tubefleet/internal/scheduling"
	"github.com/tubefleet/tubefleet/internal/strikes"
	"github.com/tubefleet/tubefleet/internal/webhooks"
	"github.com/tubefleet/tubefleet/internal/websocket"
	"github.com/tubefleet/tubefleet/internal/youtube"
)

// Version is the build version, overridden at link time.
var Version = "dev"

// SecretCipher seals and opens stream keys for the ingestion endpoints.
// Satisfied by config.CredentialEncryptor.
type SecretCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Deps carries everything the HTTP layer depends on. Optional fields may
// be nil; routes that need a missing dependency respond 503.
type Deps struct {
	Config *config.Config
	DB     *database.DB

	Auth    *auth.Service
	AuthMW  *auth.Middleware
	AuthzMW *authz.Middleware
	Audit   *audit.Logger

	Billing       *billing.Service
	Channels      *channels.Service
	Notifications *notifications.Service
	Strikes       *strikes.Service
	Moderation    *moderation.Engine
	Triggers      *comments.Triggers
	Syncer        *comments.Syncer
	Checker       *monitoring.Checker
	Collector     *monitoring.Collector
	Endpoints     *webhooks.Endpoints
	Dispatcher    *webhooks.Dispatcher
	Conflicts     *scheduling.Checker
	Broadcaster   *youtube.Broadcaster
	Cipher        SecretCipher
	Publisher     *events.DomainPublisher

	Hub  *websocket.Hub
	Perf *middleware.PerformanceMonitor
}

// Server holds the handler state and builds the router.
type Server struct {
	cfg *config.Config
	db  *database.DB

	auth    *auth.Service
	authMW  *auth.Middleware
	authzMW *authz.Middleware
	audit   *audit.Logger

	billing       *billing.Service
	channels      *channels.Service
	notifications *notifications.Service
	strikes       *strikes.Service
	moderation    *moderation.Engine
	triggers      *comments.Triggers
	syncer        *comments.Syncer
	checker       *monitoring.Checker
	collector     *monitoring.Collector
	endpoints     *webhooks.Endpoints
	dispatcher    *webhooks.Dispatcher
	conflicts     *scheduling.Checker
	broadcaster   *youtube.Broadcaster
	cipher        SecretCipher
	publisher     *events.DomainPublisher

	hub  *websocket.Hub
	perf *middleware.PerformanceMonitor

	startTime time.Time
}

// NewServer wires the HTTP layer over the given dependencies.
func NewServer(deps Deps) *Server {
	return &Server{
		cfg:           deps.Config,
		db:            deps.DB,
		auth:          deps.Auth,
		authMW:        deps.AuthMW,
		authzMW:       deps.AuthzMW,
		audit:         deps.Audit,
		billing:       deps.Billing,
		channels:      deps.Channels,
		notifications: deps.Notifications,
		strikes:       deps.Strikes,
		moderation:    deps.Moderation,
		triggers:      deps.Triggers,
		syncer:        deps.Syncer,
		checker:       deps.Checker,
		collector:     deps.Collector,
		endpoints:     deps.Endpoints,
		dispatcher:    deps.Dispatcher,
		conflicts:     deps.Conflicts,
		broadcaster:   deps.Broadcaster,
		cipher:        deps.Cipher,
		publisher:     deps.Publisher,
		hub:           deps.Hub,
		perf:          deps.Perf,
		startTime:     time.Now(),
	}
}
