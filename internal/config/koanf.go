// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// k is the global koanf instance for configuration management.
// Using "." as the key path delimiter (e.g., "database.path").
var k = koanf.New(".")

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/tubefleet/config.yaml",
	"/etc/tubefleet/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct populated with all default values.
// These defaults are loaded first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		YouTube: YouTubeConfig{
			Enabled:         false,
			BaseURL:         "https://www.googleapis.com/youtube/v3",
			Timeout:         30 * time.Second,
			MaxRetries:      2,
			QuotaDailyLimit: 10000,
		},
		Stripe: StripeConfig{
			Enabled:       false,
			APIKey:        "",
			WebhookSecret: "",
			BaseURL:       "https://api.stripe.com",
			Timeout:       20 * time.Second,
		},
		Chatbot: ChatbotConfig{
			Enabled:     false,
			BaseURL:     "https://api.openai.com/v1",
			APIKey:      "",
			Model:       "gpt-4o-mini",
			MaxTokens:   256,
			Temperature: 0.7,
			Timeout:     30 * time.Second,
			RateLimitMs: 500,
		},
		NATS: NATSConfig{
			Enabled:                    true,
			URL:                        "nats://127.0.0.1:4222",
			EmbeddedServer:             true,
			StoreDir:                   "/data/nats/jetstream",
			MaxMemory:                  1 << 30,  // 1GB
			MaxStore:                   10 << 30, // 10GB
			StreamRetentionDays:        7,
			SubscribersCount:           4,
			DurableName:                "tubefleet-workers",
			QueueGroup:                 "workers",
			RouterRetryCount:           3,
			RouterRetryInitialInterval: 100 * time.Millisecond,
			RouterThrottlePerSecond:    0,
			RouterDeduplicationEnabled: false,
			RouterDeduplicationTTL:     5 * time.Minute,
			RouterPoisonQueueEnabled:   true,
			RouterPoisonQueueTopic:     "tubefleet.poison",
			RouterCloseTimeout:         30 * time.Second,
		},
		Database: DatabaseConfig{
			Path:                   "/data/tubefleet.duckdb",
			MaxMemory:              "2GB",
			Threads:                0, // 0 = use runtime.NumCPU()
			PreserveInsertionOrder: true,
		},
		Scheduler: SchedulerConfig{
			Enabled:             true,
			MaterializeInterval: time.Minute,
			Horizon:             14 * 24 * time.Hour,
			MaxConcurrent:       4,
			DefaultDuration:     2 * time.Hour,
			RetryAttempts:       3,
			RetryDelay:          2 * time.Second,
		},
		Notifications: NotificationsConfig{
			Enabled:             true,
			BatchWindow:         5 * time.Minute,
			BatchMaxSize:        20,
			EscalationEnabled:   true,
			EscalationThreshold: 5,
			EscalationWindow:    30 * time.Minute,
			Email: EmailConfig{
				Enabled: false,
				Port:    587,
				UseTLS:  true,
				Timeout: 10 * time.Second,
			},
			AdminWebhook: AdminWebhookConfig{
				Enabled:     false,
				RateLimitMs: 1000,
			},
		},
		Moderation: ModerationConfig{
			Enabled:          true,
			MaxPatternLength: 512,
			CacheSize:        10000,
			AutoAction:       true,
			ScanTimeout:      5 * time.Second,
		},
		Monitoring: MonitoringConfig{
			Enabled:           true,
			CollectInterval:   5 * time.Minute,
			WarnThreshold:     80,
			CriticalThreshold: 95,
		},
		Webhooks: WebhooksConfig{
			Enabled:          true,
			DispatchInterval: 10 * time.Second,
			MaxRetries:       5,
			InitialBackoff:   time.Minute,
			BackoffFactor:    2.0,
			MaxBackoff:       time.Hour,
			Timeout:          10 * time.Second,
			MaxPayloadBytes:  1 << 20, // 1MB
		},
		Billing: BillingConfig{
			Currency:  "usd",
			TrialDays: 14,
			GraceDays: 3,
		},
		Audit: AuditConfig{
			Enabled:         true,
			LogLevel:        "info",
			RetentionDays:   90,
			CleanupInterval: 24 * time.Hour,
			BufferSize:      1000,
			LogToStdout:     false,
		},
		Server: ServerConfig{
			Port:        8480,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		Security: SecurityConfig{
			AuthMode:          "jwt",
			JWTSecret:         "",
			SessionTimeout:    24 * time.Hour,
			AdminUsername:     "",
			AdminPassword:     "",
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
			TrustedProxies:    []string{},
			LockoutThreshold:  5,
			LockoutDuration:   15 * time.Minute,
			SessionStore:      "badger",
			SessionStorePath:  "/data/sessions",
			Google: GoogleOAuthConfig{
				Scopes:       []string{"openid", "email", "https://www.googleapis.com/auth/youtube"},
				PKCEEnabled:  true,
				StateTTL:     10 * time.Minute,
				CookieSecure: true,
			},
			Casbin: CasbinConfig{
				ModelPath:      "", // empty = use embedded model
				PolicyPath:     "", // empty = use embedded policy
				DefaultRole:    "viewer",
				AutoReload:     true,
				ReloadInterval: 30 * time.Second,
				CacheEnabled:   true,
				CacheTTL:       5 * time.Minute,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using koanf with layered sources:
// 1. Defaults (from defaultConfig)
// 2. Config file (YAML) if present
// 3. Environment variables (override everything)
//
// Returns the loaded and validated configuration.
func LoadWithKoanf() (*Config, error) {
	// Reset koanf instance for clean load (important for tests)
	k = koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file if it exists
	configFile := findConfigFile()
	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configFile, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// Uses an explicit mapping from env var names to config paths.
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Handle comma-separated slices from env vars
	processSliceFields()

	// Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// findConfigFile searches for a config file in default locations.
// Also checks CONFIG_PATH env var for explicit path.
func findConfigFile() string {
	// Explicit path via env var takes precedence
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		// If explicitly specified but doesn't exist, fall through to
		// env-only config for backward compatibility
		return ""
	}

	// Search default locations
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envTransformFunc maps environment variable names to koanf config paths.
// Returns empty string for unmapped variables (they are ignored).
//
// Mapping convention: flat env var names map to nested koanf paths, e.g.
// DUCKDB_PATH -> database.path, NOTIFY_BATCH_WINDOW -> notifications.batch_window.
func envTransformFunc(s string) string {
	// Explicit mappings for all known config vars
	mappings := map[string]string{
		// YouTube
		"YOUTUBE_ENABLED":           "youtube.enabled",
		"YOUTUBE_BASE_URL":          "youtube.base_url",
		"YOUTUBE_TIMEOUT":           "youtube.timeout",
		"YOUTUBE_MAX_RETRIES":       "youtube.max_retries",
		"YOUTUBE_QUOTA_DAILY_LIMIT": "youtube.quota_daily_limit",

		// Stripe
		"STRIPE_ENABLED":        "stripe.enabled",
		"STRIPE_API_KEY":        "stripe.api_key",
		"STRIPE_WEBHOOK_SECRET": "stripe.webhook_secret",
		"STRIPE_BASE_URL":       "stripe.base_url",
		"STRIPE_TIMEOUT":        "stripe.timeout",

		// Chatbot
		"CHATBOT_ENABLED":       "chatbot.enabled",
		"CHATBOT_BASE_URL":      "chatbot.base_url",
		"CHATBOT_API_KEY":       "chatbot.api_key",
		"CHATBOT_MODEL":         "chatbot.model",
		"CHATBOT_MAX_TOKENS":    "chatbot.max_tokens",
		"CHATBOT_TEMPERATURE":   "chatbot.temperature",
		"CHATBOT_TIMEOUT":       "chatbot.timeout",
		"CHATBOT_RATE_LIMIT_MS": "chatbot.rate_limit_ms",

		// NATS
		"NATS_ENABLED":               "nats.enabled",
		"NATS_URL":                   "nats.url",
		"NATS_EMBEDDED":              "nats.embedded_server",
		"NATS_STORE_DIR":             "nats.store_dir",
		"NATS_MAX_MEMORY":            "nats.max_memory",
		"NATS_MAX_STORE":             "nats.max_store",
		"NATS_RETENTION_DAYS":        "nats.stream_retention_days",
		"NATS_SUBSCRIBERS":           "nats.subscribers_count",
		"NATS_DURABLE_NAME":          "nats.durable_name",
		"NATS_QUEUE_GROUP":           "nats.queue_group",
		"NATS_ROUTER_RETRY_COUNT":    "nats.router_retry_count",
		"NATS_ROUTER_RETRY_INTERVAL": "nats.router_retry_initial_interval",
		"NATS_ROUTER_THROTTLE":       "nats.router_throttle_per_second",
		"NATS_ROUTER_DEDUP_ENABLED":  "nats.router_deduplication_enabled",
		"NATS_ROUTER_DEDUP_TTL":      "nats.router_deduplication_ttl",
		"NATS_ROUTER_POISON_ENABLED": "nats.router_poison_queue_enabled",
		"NATS_ROUTER_POISON_TOPIC":   "nats.router_poison_queue_topic",
		"NATS_ROUTER_CLOSE_TIMEOUT":  "nats.router_close_timeout",

		// Database
		"DUCKDB_PATH":                     "database.path",
		"DUCKDB_MAX_MEMORY":               "database.max_memory",
		"DUCKDB_THREADS":                  "database.threads",
		"DUCKDB_PRESERVE_INSERTION_ORDER": "database.preserve_insertion_order",

		// Scheduler
		"SCHEDULER_ENABLED":              "scheduler.enabled",
		"SCHEDULER_MATERIALIZE_INTERVAL": "scheduler.materialize_interval",
		"SCHEDULER_HORIZON":              "scheduler.horizon",
		"SCHEDULER_MAX_CONCURRENT":       "scheduler.max_concurrent",
		"SCHEDULER_DEFAULT_DURATION":     "scheduler.default_duration",
		"SCHEDULER_RETRY_ATTEMPTS":       "scheduler.retry_attempts",
		"SCHEDULER_RETRY_DELAY":          "scheduler.retry_delay",

		// Notifications
		"NOTIFY_ENABLED":              "notifications.enabled",
		"NOTIFY_BATCH_WINDOW":         "notifications.batch_window",
		"NOTIFY_BATCH_MAX_SIZE":       "notifications.batch_max_size",
		"NOTIFY_ESCALATION_ENABLED":   "notifications.escalation_enabled",
		"NOTIFY_ESCALATION_THRESHOLD": "notifications.escalation_threshold",
		"NOTIFY_ESCALATION_WINDOW":    "notifications.escalation_window",
		"SMTP_ENABLED":                "notifications.email.enabled",
		"SMTP_HOST":                   "notifications.email.host",
		"SMTP_PORT":                   "notifications.email.port",
		"SMTP_USERNAME":               "notifications.email.username",
		"SMTP_PASSWORD":               "notifications.email.password",
		"SMTP_FROM":                   "notifications.email.from",
		"SMTP_USE_TLS":                "notifications.email.use_tls",
		"SMTP_TIMEOUT":                "notifications.email.timeout",
		"ADMIN_WEBHOOK_URL":           "notifications.admin_webhook.webhook_url",
		"ADMIN_WEBHOOK_ENABLED":       "notifications.admin_webhook.enabled",
		"ADMIN_WEBHOOK_RATE_LIMIT_MS": "notifications.admin_webhook.rate_limit_ms",
		// ADMIN_WEBHOOK_HEADERS handled separately (key=value map)

		// Moderation
		"MODERATION_ENABLED":            "moderation.enabled",
		"MODERATION_MAX_PATTERN_LENGTH": "moderation.max_pattern_length",
		"MODERATION_CACHE_SIZE":         "moderation.cache_size",
		"MODERATION_AUTO_ACTION":        "moderation.auto_action",
		"MODERATION_SCAN_TIMEOUT":       "moderation.scan_timeout",

		// Monitoring
		"MONITOR_ENABLED":            "monitoring.enabled",
		"MONITOR_COLLECT_INTERVAL":   "monitoring.collect_interval",
		"MONITOR_WARN_THRESHOLD":     "monitoring.warn_threshold",
		"MONITOR_CRITICAL_THRESHOLD": "monitoring.critical_threshold",

		// Webhooks
		"WEBHOOKS_ENABLED":           "webhooks.enabled",
		"WEBHOOKS_DISPATCH_INTERVAL": "webhooks.dispatch_interval",
		"WEBHOOKS_MAX_RETRIES":       "webhooks.max_retries",
		"WEBHOOKS_INITIAL_BACKOFF":   "webhooks.initial_backoff",
		"WEBHOOKS_BACKOFF_FACTOR":    "webhooks.backoff_factor",
		"WEBHOOKS_MAX_BACKOFF":       "webhooks.max_backoff",
		"WEBHOOKS_TIMEOUT":           "webhooks.timeout",
		"WEBHOOKS_MAX_PAYLOAD_BYTES": "webhooks.max_payload_bytes",

		// Billing
		"BILLING_CURRENCY":   "billing.currency",
		"BILLING_TRIAL_DAYS": "billing.trial_days",
		"BILLING_GRACE_DAYS": "billing.grace_days",

		// Audit
		"AUDIT_ENABLED":          "audit.enabled",
		"AUDIT_LOG_LEVEL":        "audit.log_level",
		"AUDIT_RETENTION_DAYS":   "audit.retention_days",
		"AUDIT_CLEANUP_INTERVAL": "audit.cleanup_interval",
		"AUDIT_BUFFER_SIZE":      "audit.buffer_size",
		"AUDIT_LOG_TO_STDOUT":    "audit.log_to_stdout",

		// Server
		"HTTP_PORT":    "server.port",
		"HTTP_HOST":    "server.host",
		"HTTP_TIMEOUT": "server.timeout",
		"ENVIRONMENT":  "server.environment",

		// API
		"API_DEFAULT_PAGE_SIZE": "api.default_page_size",
		"API_MAX_PAGE_SIZE":     "api.max_page_size",

		// Security
		"AUTH_MODE":           "security.auth_mode",
		"JWT_SECRET":          "security.jwt_secret",
		"SESSION_TIMEOUT":     "security.session_timeout",
		"ADMIN_USERNAME":      "security.admin_username",
		"ADMIN_PASSWORD":      "security.admin_password",
		"RATE_LIMIT_REQUESTS": "security.rate_limit_reqs",
		"RATE_LIMIT_WINDOW":   "security.rate_limit_window",
		"DISABLE_RATE_LIMIT":  "security.rate_limit_disabled",
		"CORS_ORIGINS":        "security.cors_origins",
		"TRUSTED_PROXIES":     "security.trusted_proxies",
		"LOCKOUT_THRESHOLD":   "security.lockout_threshold",
		"LOCKOUT_DURATION":    "security.lockout_duration",
		"SESSION_STORE":       "security.session_store",
		"SESSION_STORE_PATH":  "security.session_store_path",

		// Google OAuth (channel linking)
		"GOOGLE_CLIENT_ID":     "security.google.client_id",
		"GOOGLE_CLIENT_SECRET": "security.google.client_secret",
		"GOOGLE_REDIRECT_URL":  "security.google.redirect_url",
		"GOOGLE_SCOPES":        "security.google.scopes",
		"GOOGLE_PKCE_ENABLED":  "security.google.pkce_enabled",
		"GOOGLE_STATE_TTL":     "security.google.state_ttl",
		"GOOGLE_COOKIE_SECURE": "security.google.cookie_secure",

		// Casbin
		"CASBIN_MODEL_PATH":      "security.casbin.model_path",
		"CASBIN_POLICY_PATH":     "security.casbin.policy_path",
		"CASBIN_DEFAULT_ROLE":    "security.casbin.default_role",
		"CASBIN_AUTO_RELOAD":     "security.casbin.auto_reload",
		"CASBIN_RELOAD_INTERVAL": "security.casbin.reload_interval",
		"CASBIN_CACHE_ENABLED":   "security.casbin.cache_enabled",
		"CASBIN_CACHE_TTL":       "security.casbin.cache_ttl",

		// Logging
		"LOG_LEVEL":  "logging.level",
		"LOG_FORMAT": "logging.format",
		"LOG_CALLER": "logging.caller",
	}

	if path, ok := mappings[s]; ok {
		return path
	}

	// Ignore unmapped env vars
	return ""
}

// sliceConfigPaths lists config paths that hold string slices and may arrive
// from env vars as comma-separated scalars.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"security.trusted_proxies",
	"security.google.scopes",
}

// processSliceFields handles env vars that contain comma-separated values
// destined for []string fields. Koanf's env provider loads them as plain
// strings; this converts them to slices before unmarshaling.
func processSliceFields() {
	for _, path := range sliceConfigPaths {
		if v := k.Get(path); v != nil {
			if s, ok := v.(string); ok {
				parts := strings.Split(s, ",")
				values := make([]string, 0, len(parts))
				for _, p := range parts {
					if trimmed := strings.TrimSpace(p); trimmed != "" {
						values = append(values, trimmed)
					}
				}
				_ = k.Set(path, values)
			}
		}
	}

	// ADMIN_WEBHOOK_HEADERS arrives as comma-separated key=value pairs
	if raw := os.Getenv("ADMIN_WEBHOOK_HEADERS"); raw != "" {
		headers := make(map[string]string)
		for _, pair := range strings.Split(raw, ",") {
			kv := strings.SplitN(pair, "=", 2)
			if len(kv) == 2 {
				key := strings.TrimSpace(kv[0])
				value := strings.TrimSpace(kv[1])
				if key != "" {
					headers[key] = value
				}
			}
		}
		if len(headers) > 0 {
			_ = k.Set("notifications.admin_webhook.headers", headers)
		}
	}
}

// GetKoanfInstance returns the global koanf instance.
// Useful for advanced use cases like runtime config inspection.
func GetKoanfInstance() *koanf.Koanf {
	return k
}

// WatchConfigFile sets up a file watcher for hot-reload of configuration.
// The callback is invoked with the newly loaded config whenever the file changes.
// Note: Not all config changes can be applied at runtime (e.g., server port).
//
// Returns an error if no config file is in use.
func WatchConfigFile(callback func(*Config)) error {
	configFile := findConfigFile()
	if configFile == "" {
		return fmt.Errorf("no config file found to watch")
	}

	fp := file.Provider(configFile)
	return fp.Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}

		// Reload the full config stack on change
		cfg, loadErr := LoadWithKoanf()
		if loadErr != nil {
			return
		}

		callback(cfg)
	})
}
