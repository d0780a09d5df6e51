// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

/*
Package config provides centralized configuration management for TubeFleet.

This package handles loading, validation, and parsing of configuration for all
application components. It ensures consistent configuration across the backend
services and provides sensible defaults for optional settings.

# Configuration Sources

Configuration is loaded in layers (later layers override earlier ones):

  - Built-in defaults (all optional settings)
  - YAML config file (config.yaml, or CONFIG_PATH)
  - Environment variables (production/Docker)

# Configuration Structure

The package organizes configuration into logical groups:

  - YouTubeConfig: YouTube Data API access and quota settings
  - StripeConfig: Stripe payment processing
  - ChatbotConfig: Completion API for automated comment replies
  - NATSConfig: Embedded JetStream event bus and Watermill router
  - DatabaseConfig: DuckDB connection and performance tuning
  - SchedulerConfig: Live event materialization and remote creation
  - NotificationsConfig: Batching, escalation, and delivery channels
  - ModerationConfig: Comment scanning limits and caching
  - MonitoringConfig: Resource usage thresholds
  - WebhooksConfig: Outbound delivery retries and backoff
  - BillingConfig: Currency, trial, and dunning settings
  - AuditConfig: Admin action logging and retention
  - SecurityConfig: Authentication, rate limiting, sessions, RBAC

# Environment Variables

The package supports 90+ environment variables organized by component:

HTTP Server (ServerConfig):
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - HTTP_PORT: Listen port (default: 8480)
  - HTTP_TIMEOUT: Request timeout (default: 30s)
  - ENVIRONMENT: development, staging, or production (default: development)

Authentication (SecurityConfig):
  - AUTH_MODE: Authentication mode (none, jwt, basic, multi)
  - JWT_SECRET: JWT signing secret (min 32 chars, required for jwt mode)
  - SESSION_TIMEOUT: Session duration (default: 24h)
  - ADMIN_USERNAME: Admin login username (required for jwt/basic)
  - ADMIN_PASSWORD: Admin login password (policy-checked, required)
  - LOCKOUT_THRESHOLD: Failed logins before lockout (default: 5, 0 disables)
  - LOCKOUT_DURATION: Lockout duration (default: 15m)
  - SESSION_STORE: Session backend, memory or badger (default: badger)
  - TRUSTED_PROXIES: Comma-separated list of trusted proxy IPs

YouTube Integration (YouTubeConfig):
  - YOUTUBE_ENABLED: Enable remote broadcast creation (default: false)
  - YOUTUBE_BASE_URL: Data API base URL
  - YOUTUBE_QUOTA_DAILY_LIMIT: Daily quota units (default: 10000)
  - GOOGLE_CLIENT_ID / GOOGLE_CLIENT_SECRET / GOOGLE_REDIRECT_URL: OAuth
    client for channel linking (required when YOUTUBE_ENABLED=true)

Billing (StripeConfig, BillingConfig):
  - STRIPE_ENABLED: Enable Stripe integration (default: false)
  - STRIPE_API_KEY: Secret key (sk_live_... or sk_test_...)
  - STRIPE_WEBHOOK_SECRET: Inbound event signing secret
  - BILLING_CURRENCY: ISO 4217 code (default: usd)
  - BILLING_TRIAL_DAYS: Trial period (default: 14)

Scheduling (SchedulerConfig):
  - SCHEDULER_MATERIALIZE_INTERVAL: Pattern expansion interval (default: 1m)
  - SCHEDULER_HORIZON: Materialization lookahead (default: 336h)
  - SCHEDULER_DEFAULT_DURATION: Event length when no end given (default: 2h)

Database (DatabaseConfig):
  - DUCKDB_PATH: Database file path (default: /data/tubefleet.duckdb)
  - DUCKDB_THREADS: Thread count (default: CPU count)
  - DUCKDB_MAX_MEMORY: Memory limit (default: 2GB)

Event Bus (NATSConfig):
  - NATS_ENABLED: Enable event processing (default: true)
  - NATS_EMBEDDED: Run embedded JetStream server (default: true)
  - NATS_STORE_DIR: JetStream storage directory
  - NATS_SUBSCRIBERS: Concurrent message processors (default: 4)

# Usage Example

Basic configuration loading:

	import "github.com/tubefleet/tubefleet/internal/config"

	// Load configuration from defaults, file, and environment
	cfg, err := config.Load()
	if err != nil {
	    log.Fatalf("Failed to load config: %v", err)
	}

	// Access configuration values
	fmt.Printf("Starting server on %s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("Database: %s\n", cfg.Database.Path)

Testing with custom configuration:

	// Override environment variables for testing
	os.Setenv("HTTP_PORT", "8080")
	os.Setenv("AUTH_MODE", "none")
	os.Setenv("NATS_ENABLED", "false")

	cfg, err := config.Load()
	// Use cfg for testing

# Validation

The package performs comprehensive validation at load time:

  - Required fields: STRIPE_API_KEY (if Stripe enabled), JWT_SECRET (if AUTH_MODE=jwt),
    GOOGLE_CLIENT_ID/SECRET (if YouTube enabled)
  - String length: JWT_SECRET >=32 chars, admin password policy (NIST SP 800-63B)
  - Numeric ranges: HTTP_PORT (1-65535), NATS_SUBSCRIBERS (1-32),
    MONITOR_WARN_THRESHOLD < MONITOR_CRITICAL_THRESHOLD
  - Duration ranges: SCHEDULER_HORIZON (1h-90d), NOTIFY_BATCH_WINDOW (10s-1h)
  - URL formats: base URLs, webhook endpoints, and NATS URLs are parsed and checked
  - Placeholder detection: secrets containing CHANGEME, REPLACE, etc. are rejected
  - Production hardening: AUTH_MODE=none and wildcard CORS refused when
    ENVIRONMENT=production

# Defaults

Sensible defaults are provided for all optional settings:

  - HTTP_PORT: 8480
  - SCHEDULER_DEFAULT_DURATION: 2 hours (live events without an explicit end)
  - SCHEDULER_HORIZON: 14 days (recurrence materialization lookahead)
  - NOTIFY_BATCH_WINDOW: 5 minutes (notification aggregation)
  - SESSION_TIMEOUT: 24 hours
  - DUCKDB_THREADS: CPU count (max parallelism)

# Security Best Practices

When configuring authentication:

 1. Use strong JWT secrets: Minimum 32 characters, cryptographically random
    Generate with: openssl rand -base64 48

 2. Use strong admin passwords: The default policy requires 12+ characters
    with mixed case, digits, and symbols

 3. Configure trusted proxies: Only allow known reverse proxy IPs
    Example: TRUSTED_PROXIES=127.0.0.1,10.0.0.0/8

 4. Restrict CORS origins in production: CORS_ORIGINS=https://app.example.com

 5. Keep credential encryption healthy: channel OAuth tokens and stream keys
    are encrypted with a key derived from JWT_SECRET, so rotating the secret
    requires re-linking channels

# Docker Deployment

For Docker deployments, use environment variables or docker-compose.yml:

	services:
	  tubefleet:
	    image: ghcr.io/tubefleet/tubefleet:latest
	    environment:
	      JWT_SECRET: ${JWT_SECRET}
	      ADMIN_USERNAME: admin
	      ADMIN_PASSWORD: ${ADMIN_PASSWORD}
	      STRIPE_API_KEY: ${STRIPE_API_KEY}
	      GOOGLE_CLIENT_ID: ${GOOGLE_CLIENT_ID}
	      GOOGLE_CLIENT_SECRET: ${GOOGLE_CLIENT_SECRET}
	    ports:
	      - "8480:8480"

# Thread Safety

The Config struct is immutable after Load() returns, making it safe for concurrent
access from multiple goroutines without synchronization.

# Performance

Configuration loading is fast (<10ms) and only happens once at startup. Values
are parsed and validated during Load(), so runtime access is direct field reads
with zero overhead.

# See Also

  - .env.example: Complete configuration template with all variables
  - README.md: User-facing configuration documentation
*/
package config
