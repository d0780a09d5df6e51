// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from environment variables and config files.
// Provides centralized configuration management for all application components including
// external services (YouTube, Stripe, chatbot), database, scheduling, server, API,
// security, and logging.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. External Services:
//     - YouTube: Data API access for broadcast and comment management
//     - Stripe: Payment processing for subscription billing
//     - Chatbot: Completion API for automated comment replies
//
//  2. Infrastructure:
//     - Database: DuckDB configuration (path, memory, threads)
//     - NATS: Internal event bus with Watermill/NATS JetStream
//     - Server: HTTP server configuration (port, host, timeout)
//     - Scheduler: Live event materialization and remote creation
//
//  3. Platform Features:
//     - Notifications: Batching, escalation, and delivery channels
//     - Moderation: Comment scanning limits and caching
//     - Monitoring: Resource usage collection and warning thresholds
//     - Webhooks: Outbound delivery retries and backoff
//     - Billing: Currency, trial, and dunning settings
//
//  4. API & Security:
//     - API: Pagination and response limits
//     - Security: Authentication, rate limiting, session management, RBAC
//     - Audit: Admin action logging and retention
//
//  5. Observability:
//     - Logging: Log levels and output formats
//
// Example - Load configuration from environment:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	// cfg.YouTube.BaseURL, cfg.Database.Path, etc. are now populated
//
// Validation:
// The Load() function validates all required fields and returns an error if:
//   - Required settings are missing for enabled integrations (STRIPE_API_KEY, JWT_SECRET)
//   - Values are malformed (invalid URL format, out-of-range numbers)
//   - Authentication is enabled but credentials are incomplete
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access from multiple goroutines.
type Config struct {
	YouTube       YouTubeConfig       `koanf:"youtube"`       // YouTube Data API access
	Stripe        StripeConfig        `koanf:"stripe"`        // Stripe payment processing
	Chatbot       ChatbotConfig       `koanf:"chatbot"`       // Completion API for automated replies
	NATS          NATSConfig          `koanf:"nats"`          // Internal event bus (Watermill/NATS JetStream)
	Database      DatabaseConfig      `koanf:"database"`      // DuckDB storage
	Scheduler     SchedulerConfig     `koanf:"scheduler"`     // Live event materialization
	Notifications NotificationsConfig `koanf:"notifications"` // Notification batching and delivery
	Moderation    ModerationConfig    `koanf:"moderation"`    // Comment moderation engine
	Monitoring    MonitoringConfig    `koanf:"monitoring"`    // Resource usage monitoring
	Webhooks      WebhooksConfig      `koanf:"webhooks"`      // Outbound webhook dispatch
	Billing       BillingConfig       `koanf:"billing"`       // Subscription billing rules
	Audit         AuditConfig         `koanf:"audit"`         // Admin audit logging
	Server        ServerConfig        `koanf:"server"`
	API           APIConfig           `koanf:"api"`
	Security      SecurityConfig      `koanf:"security"`
	Logging       LoggingConfig       `koanf:"logging"`
}

// YouTubeConfig holds YouTube Data API connection settings.
// The platform uses the Data API for live broadcast creation, stream binding,
// comment listing, and strike-relevant policy notices.
//
// When Enabled is false, remote broadcast creation is skipped entirely: live
// events are persisted locally and marked pending. This is the intended mode
// for development and CI where no Google project is configured.
//
// Environment Variables:
//   - YOUTUBE_ENABLED: Enable remote YouTube API calls (default: false)
//   - YOUTUBE_BASE_URL: API base URL (default: https://www.googleapis.com/youtube/v3)
//   - YOUTUBE_TIMEOUT: HTTP timeout for API calls (default: 30s)
//   - YOUTUBE_MAX_RETRIES: Retries for transient API failures (default: 2)
//   - YOUTUBE_QUOTA_DAILY_LIMIT: Daily quota units for usage monitoring (default: 10000)
//
// Example - Production configuration:
//
//	cfg := YouTubeConfig{
//	    Enabled:         true,
//	    BaseURL:         "https://www.googleapis.com/youtube/v3",
//	    Timeout:         30 * time.Second,
//	    MaxRetries:      2,
//	    QuotaDailyLimit: 10000,
//	}
type YouTubeConfig struct {
	Enabled         bool          `koanf:"enabled"`           // Master toggle for remote API calls
	BaseURL         string        `koanf:"base_url"`          // Data API base URL
	Timeout         time.Duration `koanf:"timeout"`           // HTTP timeout per call
	MaxRetries      int           `koanf:"max_retries"`       // Transient failure retries
	QuotaDailyLimit int           `koanf:"quota_daily_limit"` // Daily quota units (for usage warnings)
}

// StripeConfig holds Stripe API connection settings for subscription billing.
// The platform uses Stripe for payment method handling and charge execution;
// plan definitions, discount validation, and proration are computed locally.
//
// Environment Variables:
//   - STRIPE_ENABLED: Enable Stripe integration (default: false)
//   - STRIPE_API_KEY: Secret API key (sk_live_... or sk_test_...)
//   - STRIPE_WEBHOOK_SECRET: Signing secret for inbound event verification (whsec_...)
//   - STRIPE_BASE_URL: API base URL (default: https://api.stripe.com)
//   - STRIPE_TIMEOUT: HTTP timeout for API calls (default: 20s)
type StripeConfig struct {
	Enabled       bool          `koanf:"enabled"`        // Master toggle for Stripe integration
	APIKey        string        `koanf:"api_key"`        // Secret key for API authentication
	WebhookSecret string        `koanf:"webhook_secret"` // Signing secret for inbound events
	BaseURL       string        `koanf:"base_url"`       // API base URL
	Timeout       time.Duration `koanf:"timeout"`        // HTTP timeout per call
}

// ChatbotConfig holds completion API settings for automated comment replies.
// When a chatbot trigger matches an incoming comment, the responder calls the
// configured completion endpoint to generate the reply text.
//
// Environment Variables:
//   - CHATBOT_ENABLED: Enable automated replies (default: false)
//   - CHATBOT_BASE_URL: Completion API base URL (default: https://api.openai.com/v1)
//   - CHATBOT_API_KEY: API key for the completion provider
//   - CHATBOT_MODEL: Model identifier (default: gpt-4o-mini)
//   - CHATBOT_MAX_TOKENS: Maximum tokens per reply (default: 256)
//   - CHATBOT_TEMPERATURE: Sampling temperature (default: 0.7)
//   - CHATBOT_TIMEOUT: HTTP timeout per completion call (default: 30s)
//   - CHATBOT_RATE_LIMIT_MS: Minimum interval between completion calls (default: 500)
type ChatbotConfig struct {
	Enabled     bool          `koanf:"enabled"`       // Master toggle for automated replies
	BaseURL     string        `koanf:"base_url"`      // Completion API base URL
	APIKey      string        `koanf:"api_key"`       // Provider API key
	Model       string        `koanf:"model"`         // Model identifier
	MaxTokens   int           `koanf:"max_tokens"`    // Reply length cap
	Temperature float64       `koanf:"temperature"`   // Sampling temperature
	Timeout     time.Duration `koanf:"timeout"`       // HTTP timeout per call
	RateLimitMs int           `koanf:"rate_limit_ms"` // Minimum interval between calls
}

// NATSConfig holds NATS JetStream configuration for the internal event bus.
// Domain events (stream lifecycle, moderation verdicts, billing changes,
// strikes, resource warnings) are published through Watermill to an embedded
// NATS JetStream server and consumed by the worker services.
//
// Architecture Benefits:
//   - Decoupled event processing from HTTP handlers
//   - At-least-once delivery via JetStream acknowledgments
//   - Message deduplication via Nats-Msg-Id headers
//   - Poison queue for permanently failing messages
//
// Environment Variables:
//   - NATS_ENABLED: Enable event processing (default: true)
//   - NATS_URL: NATS server connection URL (default: nats://127.0.0.1:4222)
//   - NATS_EMBEDDED: Use embedded NATS server (default: true)
//   - NATS_STORE_DIR: JetStream storage directory (default: /data/nats/jetstream)
//   - NATS_MAX_MEMORY: Max memory for JetStream in bytes (default: 1073741824 = 1GB)
//   - NATS_MAX_STORE: Max disk storage for JetStream in bytes (default: 10737418240 = 10GB)
//   - NATS_RETENTION_DAYS: Event retention period in days (default: 7)
//   - NATS_SUBSCRIBERS: Number of concurrent message processors (default: 4)
//   - NATS_DURABLE_NAME: Consumer durable name (default: tubefleet-workers)
//   - NATS_QUEUE_GROUP: Queue group for load balancing (default: workers)
type NATSConfig struct {
	// Enabled controls whether event processing is active.
	Enabled bool `koanf:"enabled"`

	// URL is the NATS server connection URL.
	URL string `koanf:"url"`

	// EmbeddedServer enables the embedded NATS server.
	// If false, expects an external NATS server at URL.
	EmbeddedServer bool `koanf:"embedded_server"`

	// StoreDir is the JetStream storage directory.
	StoreDir string `koanf:"store_dir"`

	// MaxMemory is the maximum memory for JetStream in bytes.
	MaxMemory int64 `koanf:"max_memory"`

	// MaxStore is the maximum disk storage for JetStream in bytes.
	MaxStore int64 `koanf:"max_store"`

	// StreamRetentionDays is how long to keep events.
	StreamRetentionDays int `koanf:"stream_retention_days"`

	// SubscribersCount is the number of concurrent message processors.
	SubscribersCount int `koanf:"subscribers_count"`

	// DurableName is the consumer durable name for message tracking.
	DurableName string `koanf:"durable_name"`

	// QueueGroup is the queue group for load balancing.
	QueueGroup string `koanf:"queue_group"`

	// Router configuration (Watermill Router-based message processing)
	// These settings control the middleware stack for message handling.

	// RouterRetryCount is the maximum number of retries for failed messages.
	// Default: 3
	RouterRetryCount int `koanf:"router_retry_count"`

	// RouterRetryInitialInterval is the initial backoff interval for retries.
	// Default: 100ms
	RouterRetryInitialInterval time.Duration `koanf:"router_retry_initial_interval"`

	// RouterThrottlePerSecond limits messages processed per second (0 = unlimited).
	// Default: 0 (unlimited)
	RouterThrottlePerSecond int `koanf:"router_throttle_per_second"`

	// RouterDeduplicationEnabled enables message ID deduplication in the Router.
	// Default: false (JetStream already deduplicates via Nats-Msg-Id)
	RouterDeduplicationEnabled bool `koanf:"router_deduplication_enabled"`

	// RouterDeduplicationTTL is how long to remember message IDs for deduplication.
	// Default: 5m
	RouterDeduplicationTTL time.Duration `koanf:"router_deduplication_ttl"`

	// RouterPoisonQueueEnabled enables routing of permanently failed messages to a poison queue.
	// Default: true
	RouterPoisonQueueEnabled bool `koanf:"router_poison_queue_enabled"`

	// RouterPoisonQueueTopic is the topic for permanently failed messages.
	// Default: "tubefleet.poison"
	RouterPoisonQueueTopic string `koanf:"router_poison_queue_topic"`

	// RouterCloseTimeout is the maximum time to wait for graceful router shutdown.
	// Default: 30s
	RouterCloseTimeout time.Duration `koanf:"router_close_timeout"`
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"`                  // Number of DuckDB threads (0 = use NumCPU)
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"` // Whether to preserve insertion order (default true)
}

// SchedulerConfig holds live event scheduling settings.
// The materializer periodically expands recurrence patterns into concrete
// live events inside the configured horizon and creates the remote broadcasts.
//
// Environment Variables:
//   - SCHEDULER_ENABLED: Enable the materializer loop (default: true)
//   - SCHEDULER_MATERIALIZE_INTERVAL: How often to expand due patterns (default: 1m)
//   - SCHEDULER_HORIZON: How far ahead occurrences are materialized (default: 336h = 14 days)
//   - SCHEDULER_MAX_CONCURRENT: Parallel remote broadcast creations (default: 4)
//   - SCHEDULER_DEFAULT_DURATION: Event length when no end time is given (default: 2h)
//   - SCHEDULER_RETRY_ATTEMPTS: Remote creation retries before marking failed (default: 3)
//   - SCHEDULER_RETRY_DELAY: Delay between remote creation retries (default: 2s)
type SchedulerConfig struct {
	Enabled             bool          `koanf:"enabled"`
	MaterializeInterval time.Duration `koanf:"materialize_interval"`
	Horizon             time.Duration `koanf:"horizon"`
	MaxConcurrent       int           `koanf:"max_concurrent"`
	DefaultDuration     time.Duration `koanf:"default_duration"`
	RetryAttempts       int           `koanf:"retry_attempts"`
	RetryDelay          time.Duration `koanf:"retry_delay"`
}

// NotificationsConfig holds notification batching, escalation, and delivery settings.
//
// Batching groups notifications of the same type for a user inside BatchWindow
// into a single delivery. Escalation promotes a user's unacknowledged critical
// notifications to the admin webhook when the count inside EscalationWindow
// reaches EscalationThreshold.
//
// Environment Variables:
//   - NOTIFY_ENABLED: Enable the notification service (default: true)
//   - NOTIFY_BATCH_WINDOW: Aggregation window for same-type notifications (default: 5m)
//   - NOTIFY_BATCH_MAX_SIZE: Flush a batch early at this size (default: 20)
//   - NOTIFY_ESCALATION_ENABLED: Enable escalation to the admin webhook (default: true)
//   - NOTIFY_ESCALATION_THRESHOLD: Unacknowledged critical count to escalate (default: 5)
//   - NOTIFY_ESCALATION_WINDOW: Window for counting critical notifications (default: 30m)
//   - SMTP_ENABLED: Enable email delivery (default: false)
//   - SMTP_HOST, SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD: SMTP connection
//   - SMTP_FROM: From address for outbound mail
//   - SMTP_USE_TLS: Use STARTTLS (default: true)
//   - ADMIN_WEBHOOK_URL: Webhook URL for escalated alerts
//   - ADMIN_WEBHOOK_ENABLED: Enable the admin webhook channel (default: false)
//   - ADMIN_WEBHOOK_RATE_LIMIT_MS: Rate limit between messages (default: 1000)
//   - ADMIN_WEBHOOK_HEADERS: Comma-separated key=value headers
type NotificationsConfig struct {
	Enabled             bool          `koanf:"enabled"`
	BatchWindow         time.Duration `koanf:"batch_window"`
	BatchMaxSize        int           `koanf:"batch_max_size"`
	EscalationEnabled   bool          `koanf:"escalation_enabled"`
	EscalationThreshold int           `koanf:"escalation_threshold"`
	EscalationWindow    time.Duration `koanf:"escalation_window"`

	// Email delivery channel (SMTP)
	Email EmailConfig `koanf:"email"`

	// AdminWebhook receives escalated alerts (ops channel, e.g. Slack-compatible)
	AdminWebhook AdminWebhookConfig `koanf:"admin_webhook"`
}

// EmailConfig holds SMTP delivery settings for the email notification channel.
type EmailConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Host     string        `koanf:"host"`
	Port     int           `koanf:"port"`
	Username string        `koanf:"username"`
	Password string        `koanf:"password"`
	From     string        `koanf:"from"`
	UseTLS   bool          `koanf:"use_tls"`
	Timeout  time.Duration `koanf:"timeout"`
}

// AdminWebhookConfig holds the ops webhook channel for escalated alerts.
type AdminWebhookConfig struct {
	WebhookURL  string            `koanf:"webhook_url"`
	Enabled     bool              `koanf:"enabled"`
	RateLimitMs int               `koanf:"rate_limit_ms"`
	Headers     map[string]string `koanf:"headers"`
}

// ModerationConfig holds comment moderation engine settings.
//
// Environment Variables:
//   - MODERATION_ENABLED: Enable comment scanning (default: true)
//   - MODERATION_MAX_PATTERN_LENGTH: Regex pattern length cap (default: 512)
//   - MODERATION_CACHE_SIZE: Scan decision cache entries (default: 10000)
//   - MODERATION_AUTO_ACTION: Apply rule actions automatically (default: true)
//   - MODERATION_SCAN_TIMEOUT: Per-comment scan timeout (default: 5s)
type ModerationConfig struct {
	Enabled          bool          `koanf:"enabled"`
	MaxPatternLength int           `koanf:"max_pattern_length"` // Cap on regex rule length
	CacheSize        int           `koanf:"cache_size"`         // Decision cache entries
	AutoAction       bool          `koanf:"auto_action"`
	ScanTimeout      time.Duration `koanf:"scan_timeout"`
}

// MonitoringConfig holds resource usage collection settings.
// Usage counters (channels, scheduled events, API quota) are sampled per
// account on CollectInterval and compared against the account's plan limits.
//
// Environment Variables:
//   - MONITOR_ENABLED: Enable usage collection (default: true)
//   - MONITOR_COLLECT_INTERVAL: Sampling interval (default: 5m)
//   - MONITOR_WARN_THRESHOLD: Warning threshold as percent of plan limit (default: 80)
//   - MONITOR_CRITICAL_THRESHOLD: Critical threshold as percent of plan limit (default: 95)
type MonitoringConfig struct {
	Enabled           bool          `koanf:"enabled"`
	CollectInterval   time.Duration `koanf:"collect_interval"`
	WarnThreshold     int           `koanf:"warn_threshold"`     // Percent of plan limit
	CriticalThreshold int           `koanf:"critical_threshold"` // Percent of plan limit
}

// WebhooksConfig holds outbound webhook dispatch settings.
// Failed deliveries are retried with exponential backoff until MaxRetries
// is exhausted, then the delivery is marked permanently failed.
//
// Environment Variables:
//   - WEBHOOKS_ENABLED: Enable outbound dispatch (default: true)
//   - WEBHOOKS_DISPATCH_INTERVAL: Queue poll interval (default: 10s)
//   - WEBHOOKS_MAX_RETRIES: Delivery attempts before giving up (default: 5)
//   - WEBHOOKS_INITIAL_BACKOFF: First retry delay (default: 1m)
//   - WEBHOOKS_BACKOFF_FACTOR: Backoff multiplier per attempt (default: 2.0)
//   - WEBHOOKS_MAX_BACKOFF: Backoff ceiling (default: 1h)
//   - WEBHOOKS_TIMEOUT: Per-delivery HTTP timeout (default: 10s)
//   - WEBHOOKS_MAX_PAYLOAD_BYTES: Payload size cap (default: 1048576 = 1MB)
type WebhooksConfig struct {
	Enabled          bool          `koanf:"enabled"`
	DispatchInterval time.Duration `koanf:"dispatch_interval"`
	MaxRetries       int           `koanf:"max_retries"`
	InitialBackoff   time.Duration `koanf:"initial_backoff"`
	BackoffFactor    float64       `koanf:"backoff_factor"`
	MaxBackoff       time.Duration `koanf:"max_backoff"`
	Timeout          time.Duration `koanf:"timeout"`
	MaxPayloadBytes  int64         `koanf:"max_payload_bytes"`
}

// BillingConfig holds subscription billing rules applied locally.
// Charges themselves go through Stripe; plan changes, proration, and
// discount validation are computed here.
//
// Environment Variables:
//   - BILLING_CURRENCY: ISO 4217 currency code (default: usd)
//   - BILLING_TRIAL_DAYS: Trial period for new subscriptions (default: 14)
//   - BILLING_GRACE_DAYS: Dunning grace period after failed payment (default: 3)
type BillingConfig struct {
	Currency  string `koanf:"currency"`
	TrialDays int    `koanf:"trial_days"`
	GraceDays int    `koanf:"grace_days"`
}

// AuditConfig holds admin audit logging settings.
//
// Environment Variables:
//   - AUDIT_ENABLED: Enable audit logging (default: true)
//   - AUDIT_LOG_LEVEL: Minimum severity to record: info, warning, critical (default: info)
//   - AUDIT_RETENTION_DAYS: Days to keep audit events (default: 90)
//   - AUDIT_CLEANUP_INTERVAL: Retention sweep interval (default: 24h)
//   - AUDIT_BUFFER_SIZE: Async write buffer size (default: 1000)
//   - AUDIT_LOG_TO_STDOUT: Mirror audit events to the application log (default: false)
type AuditConfig struct {
	Enabled         bool          `koanf:"enabled"`
	LogLevel        string        `koanf:"log_level"`
	RetentionDays   int           `koanf:"retention_days"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
	BufferSize      int           `koanf:"buffer_size"`
	LogToStdout     bool          `koanf:"log_to_stdout"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // Environment mode: "development", "staging", "production" (default: "development")
}

// APIConfig holds API pagination and response settings
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// SecurityConfig holds authentication and authorization settings
type SecurityConfig struct {
	AuthMode          string        `koanf:"auth_mode"`
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionTimeout    time.Duration `koanf:"session_timeout"`
	AdminUsername     string        `koanf:"admin_username"`
	AdminPassword     string        `koanf:"admin_password"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	TrustedProxies    []string      `koanf:"trusted_proxies"`

	// Account lockout after repeated failed logins
	LockoutThreshold int           `koanf:"lockout_threshold"` // Failed attempts before lockout (0 = disabled)
	LockoutDuration  time.Duration `koanf:"lockout_duration"`  // How long a lockout lasts

	// Session Store Configuration
	// SessionStore specifies the session storage backend: "memory" or "badger"
	SessionStore string `koanf:"session_store"`
	// SessionStorePath is the path for BadgerDB storage (required when session_store=badger)
	SessionStorePath string `koanf:"session_store_path"`

	// Google OAuth for YouTube channel linking
	Google GoogleOAuthConfig `koanf:"google"`
	// Casbin RBAC authorization
	Casbin CasbinConfig `koanf:"casbin"`
}

// GoogleOAuthConfig holds Google OIDC settings for YouTube channel linking.
// Channel linking runs the authorization-code flow against Google and stores
// the granted refresh token (encrypted) with the channel record. This is
// separate from user login, which uses local credentials and JWT sessions.
//
// Environment Variables:
//   - GOOGLE_CLIENT_ID: OAuth 2.0 client ID (required when YOUTUBE_ENABLED=true)
//   - GOOGLE_CLIENT_SECRET: OAuth 2.0 client secret
//   - GOOGLE_REDIRECT_URL: OAuth callback URL (e.g., https://host/api/v1/channels/link/callback)
//   - GOOGLE_SCOPES: Comma-separated OAuth scopes
//     (default: openid,email,https://www.googleapis.com/auth/youtube)
//   - GOOGLE_PKCE_ENABLED: Enable PKCE (default: true)
//   - GOOGLE_STATE_TTL: OAuth state validity window (default: 10m)
//   - GOOGLE_COOKIE_SECURE: Use secure cookies for the state cookie (default: true)
type GoogleOAuthConfig struct {
	ClientID     string        `koanf:"client_id"`
	ClientSecret string        `koanf:"client_secret"`
	RedirectURL  string        `koanf:"redirect_url"`
	Scopes       []string      `koanf:"scopes"`
	PKCEEnabled  bool          `koanf:"pkce_enabled"`
	StateTTL     time.Duration `koanf:"state_ttl"`
	CookieSecure bool          `koanf:"cookie_secure"`
}

// CasbinConfig holds Casbin RBAC authorization settings.
//
// Environment Variables:
//   - CASBIN_MODEL_PATH: Path to Casbin model file (default: embedded)
//   - CASBIN_POLICY_PATH: Path to Casbin policy file (default: embedded)
//   - CASBIN_DEFAULT_ROLE: Default role for users without explicit role (default: viewer)
//   - CASBIN_AUTO_RELOAD: Enable automatic policy reload (default: true)
//   - CASBIN_RELOAD_INTERVAL: Policy reload interval (default: 30s)
//   - CASBIN_CACHE_ENABLED: Enable authorization decision caching (default: true)
//   - CASBIN_CACHE_TTL: Authorization cache TTL (default: 5m)
type CasbinConfig struct {
	ModelPath      string        `koanf:"model_path"`
	PolicyPath     string        `koanf:"policy_path"`
	DefaultRole    string        `koanf:"default_role"`
	AutoReload     bool          `koanf:"auto_reload"`
	ReloadInterval time.Duration `koanf:"reload_interval"`
	CacheEnabled   bool          `koanf:"cache_enabled"`
	CacheTTL       time.Duration `koanf:"cache_ttl"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// JSON is recommended for production (structured, machine-parseable).
	// Console is human-readable for development.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Adds slight performance overhead.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Load reads configuration from environment variables and optional config file.
// Configuration is loaded in the following order (later sources override earlier ones):
//  1. Built-in defaults
//  2. Config file (config.yaml if exists, or path specified in CONFIG_PATH env var)
//  3. Environment variables
//
// This function uses Koanf v2 for flexible, layered configuration management.
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// LoadLegacy reads configuration directly from environment variables only.
// This is the legacy loading method preserved for testing and backward compatibility.
// For production use, prefer Load() which supports config files and layered loading.
//
// Deprecated: Use Load() instead for new code.
func LoadLegacy() (*Config, error) {
	cfg := &Config{
		YouTube: YouTubeConfig{
			Enabled:         getBoolEnv("YOUTUBE_ENABLED", false),
			BaseURL:         getEnv("YOUTUBE_BASE_URL", "https://www.googleapis.com/youtube/v3"),
			Timeout:         getDurationEnv("YOUTUBE_TIMEOUT", 30*time.Second),
			MaxRetries:      getIntEnv("YOUTUBE_MAX_RETRIES", 2),
			QuotaDailyLimit: getIntEnv("YOUTUBE_QUOTA_DAILY_LIMIT", 10000),
		},
		Stripe: StripeConfig{
			Enabled:       getBoolEnv("STRIPE_ENABLED", false),
			APIKey:        getEnv("STRIPE_API_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			BaseURL:       getEnv("STRIPE_BASE_URL", "https://api.stripe.com"),
			Timeout:       getDurationEnv("STRIPE_TIMEOUT", 20*time.Second),
		},
		Chatbot: ChatbotConfig{
			Enabled:     getBoolEnv("CHATBOT_ENABLED", false),
			BaseURL:     getEnv("CHATBOT_BASE_URL", "https://api.openai.com/v1"),
			APIKey:      getEnv("CHATBOT_API_KEY", ""),
			Model:       getEnv("CHATBOT_MODEL", "gpt-4o-mini"),
			MaxTokens:   getIntEnv("CHATBOT_MAX_TOKENS", 256),
			Temperature: getFloatEnv("CHATBOT_TEMPERATURE", 0.7),
			Timeout:     getDurationEnv("CHATBOT_TIMEOUT", 30*time.Second),
			RateLimitMs: getIntEnv("CHATBOT_RATE_LIMIT_MS", 500),
		},
		NATS: NATSConfig{
			Enabled:             getBoolEnv("NATS_ENABLED", true),
			URL:                 getEnv("NATS_URL", "nats://127.0.0.1:4222"),
			EmbeddedServer:      getBoolEnv("NATS_EMBEDDED", true),
			StoreDir:            getEnv("NATS_STORE_DIR", "/data/nats/jetstream"),
			MaxMemory:           getInt64Env("NATS_MAX_MEMORY", 1<<30), // 1GB default
			MaxStore:            getInt64Env("NATS_MAX_STORE", 10<<30), // 10GB default
			StreamRetentionDays: getIntEnv("NATS_RETENTION_DAYS", 7),
			SubscribersCount:    getIntEnv("NATS_SUBSCRIBERS", 4),
			DurableName:         getEnv("NATS_DURABLE_NAME", "tubefleet-workers"),
			QueueGroup:          getEnv("NATS_QUEUE_GROUP", "workers"),
			// Router configuration defaults
			RouterRetryCount:           getIntEnv("NATS_ROUTER_RETRY_COUNT", 3),
			RouterRetryInitialInterval: getDurationEnv("NATS_ROUTER_RETRY_INTERVAL", 100*time.Millisecond),
			RouterThrottlePerSecond:    getIntEnv("NATS_ROUTER_THROTTLE", 0),
			// Router dedup is disabled by default: JetStream already deduplicates
			// exact message IDs via the Nats-Msg-Id header within its duplicate window.
			RouterDeduplicationEnabled: getBoolEnv("NATS_ROUTER_DEDUP_ENABLED", false),
			RouterDeduplicationTTL:     getDurationEnv("NATS_ROUTER_DEDUP_TTL", 5*time.Minute),
			RouterPoisonQueueEnabled:   getBoolEnv("NATS_ROUTER_POISON_ENABLED", true),
			RouterPoisonQueueTopic:     getEnv("NATS_ROUTER_POISON_TOPIC", "tubefleet.poison"),
			RouterCloseTimeout:         getDurationEnv("NATS_ROUTER_CLOSE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Path:                   getEnv("DUCKDB_PATH", "/data/tubefleet.duckdb"),
			MaxMemory:              getEnv("DUCKDB_MAX_MEMORY", "2GB"),
			Threads:                getIntEnv("DUCKDB_THREADS", 0), // 0 means use runtime.NumCPU()
			PreserveInsertionOrder: getBoolEnv("DUCKDB_PRESERVE_INSERTION_ORDER", true),
		},
		Scheduler: SchedulerConfig{
			Enabled:             getBoolEnv("SCHEDULER_ENABLED", true),
			MaterializeInterval: getDurationEnv("SCHEDULER_MATERIALIZE_INTERVAL", time.Minute),
			Horizon:             getDurationEnv("SCHEDULER_HORIZON", 14*24*time.Hour),
			MaxConcurrent:       getIntEnv("SCHEDULER_MAX_CONCURRENT", 4),
			DefaultDuration:     getDurationEnv("SCHEDULER_DEFAULT_DURATION", 2*time.Hour),
			RetryAttempts:       getIntEnv("SCHEDULER_RETRY_ATTEMPTS", 3),
			RetryDelay:          getDurationEnv("SCHEDULER_RETRY_DELAY", 2*time.Second),
		},
		Notifications: NotificationsConfig{
			Enabled:             getBoolEnv("NOTIFY_ENABLED", true),
			BatchWindow:         getDurationEnv("NOTIFY_BATCH_WINDOW", 5*time.Minute),
			BatchMaxSize:        getIntEnv("NOTIFY_BATCH_MAX_SIZE", 20),
			EscalationEnabled:   getBoolEnv("NOTIFY_ESCALATION_ENABLED", true),
			EscalationThreshold: getIntEnv("NOTIFY_ESCALATION_THRESHOLD", 5),
			EscalationWindow:    getDurationEnv("NOTIFY_ESCALATION_WINDOW", 30*time.Minute),
			Email: EmailConfig{
				Enabled:  getBoolEnv("SMTP_ENABLED", false),
				Host:     getEnv("SMTP_HOST", ""),
				Port:     getIntEnv("SMTP_PORT", 587),
				Username: getEnv("SMTP_USERNAME", ""),
				Password: getEnv("SMTP_PASSWORD", ""),
				From:     getEnv("SMTP_FROM", ""),
				UseTLS:   getBoolEnv("SMTP_USE_TLS", true),
				Timeout:  getDurationEnv("SMTP_TIMEOUT", 10*time.Second),
			},
			AdminWebhook: AdminWebhookConfig{
				WebhookURL:  getEnv("ADMIN_WEBHOOK_URL", ""),
				Enabled:     getBoolEnv("ADMIN_WEBHOOK_ENABLED", false),
				RateLimitMs: getIntEnv("ADMIN_WEBHOOK_RATE_LIMIT_MS", 1000),
				Headers:     getMapEnv("ADMIN_WEBHOOK_HEADERS", nil),
			},
		},
		Moderation: ModerationConfig{
			Enabled:          getBoolEnv("MODERATION_ENABLED", true),
			MaxPatternLength: getIntEnv("MODERATION_MAX_PATTERN_LENGTH", 512),
			CacheSize:        getIntEnv("MODERATION_CACHE_SIZE", 10000),
			AutoAction:       getBoolEnv("MODERATION_AUTO_ACTION", true),
			ScanTimeout:      getDurationEnv("MODERATION_SCAN_TIMEOUT", 5*time.Second),
		},
		Monitoring: MonitoringConfig{
			Enabled:           getBoolEnv("MONITOR_ENABLED", true),
			CollectInterval:   getDurationEnv("MONITOR_COLLECT_INTERVAL", 5*time.Minute),
			WarnThreshold:     getIntEnv("MONITOR_WARN_THRESHOLD", 80),
			CriticalThreshold: getIntEnv("MONITOR_CRITICAL_THRESHOLD", 95),
		},
		Webhooks: WebhooksConfig{
			Enabled:          getBoolEnv("WEBHOOKS_ENABLED", true),
			DispatchInterval: getDurationEnv("WEBHOOKS_DISPATCH_INTERVAL", 10*time.Second),
			MaxRetries:       getIntEnv("WEBHOOKS_MAX_RETRIES", 5),
			InitialBackoff:   getDurationEnv("WEBHOOKS_INITIAL_BACKOFF", time.Minute),
			BackoffFactor:    getFloatEnv("WEBHOOKS_BACKOFF_FACTOR", 2.0),
			MaxBackoff:       getDurationEnv("WEBHOOKS_MAX_BACKOFF", time.Hour),
			Timeout:          getDurationEnv("WEBHOOKS_TIMEOUT", 10*time.Second),
			MaxPayloadBytes:  getInt64Env("WEBHOOKS_MAX_PAYLOAD_BYTES", 1<<20),
		},
		Billing: BillingConfig{
			Currency:  getEnv("BILLING_CURRENCY", "usd"),
			TrialDays: getIntEnv("BILLING_TRIAL_DAYS", 14),
			GraceDays: getIntEnv("BILLING_GRACE_DAYS", 3),
		},
		Audit: AuditConfig{
			Enabled:         getBoolEnv("AUDIT_ENABLED", true),
			LogLevel:        getEnv("AUDIT_LOG_LEVEL", "info"),
			RetentionDays:   getIntEnv("AUDIT_RETENTION_DAYS", 90),
			CleanupInterval: getDurationEnv("AUDIT_CLEANUP_INTERVAL", 24*time.Hour),
			BufferSize:      getIntEnv("AUDIT_BUFFER_SIZE", 1000),
			LogToStdout:     getBoolEnv("AUDIT_LOG_TO_STDOUT", false),
		},
		Server: ServerConfig{
			Port:        getIntEnv("HTTP_PORT", 8480),
			Host:        getEnv("HTTP_HOST", "0.0.0.0"),
			Timeout:     getDurationEnv("HTTP_TIMEOUT", 30*time.Second),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		API: APIConfig{
			DefaultPageSize: getIntEnv("API_DEFAULT_PAGE_SIZE", 20),
			MaxPageSize:     getIntEnv("API_MAX_PAGE_SIZE", 100),
		},
		Security: SecurityConfig{
			AuthMode:          getEnv("AUTH_MODE", "jwt"),
			JWTSecret:         getEnv("JWT_SECRET", ""),
			SessionTimeout:    getDurationEnv("SESSION_TIMEOUT", 24*time.Hour),
			AdminUsername:     getEnv("ADMIN_USERNAME", ""),
			AdminPassword:     getEnv("ADMIN_PASSWORD", ""),
			RateLimitReqs:     getIntEnv("RATE_LIMIT_REQUESTS", 100),
			RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", 1*time.Minute),
			RateLimitDisabled: getBoolEnv("DISABLE_RATE_LIMIT", false),
			CORSOrigins:       getSliceEnv("CORS_ORIGINS", []string{"*"}),
			TrustedProxies:    getSliceEnv("TRUSTED_PROXIES", []string{}),
			LockoutThreshold:  getIntEnv("LOCKOUT_THRESHOLD", 5),
			LockoutDuration:   getDurationEnv("LOCKOUT_DURATION", 15*time.Minute),
			SessionStore:      getEnv("SESSION_STORE", "badger"),
			SessionStorePath:  getEnv("SESSION_STORE_PATH", "/data/sessions"),
			Google: GoogleOAuthConfig{
				ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
				ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
				RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
				Scopes: getSliceEnv("GOOGLE_SCOPES", []string{
					"openid", "email", "https://www.googleapis.com/auth/youtube",
				}),
				PKCEEnabled:  getBoolEnv("GOOGLE_PKCE_ENABLED", true),
				StateTTL:     getDurationEnv("GOOGLE_STATE_TTL", 10*time.Minute),
				CookieSecure: getBoolEnv("GOOGLE_COOKIE_SECURE", true),
			},
			Casbin: CasbinConfig{
				ModelPath:      getEnv("CASBIN_MODEL_PATH", ""),
				PolicyPath:     getEnv("CASBIN_POLICY_PATH", ""),
				DefaultRole:    getEnv("CASBIN_DEFAULT_ROLE", "viewer"),
				AutoReload:     getBoolEnv("CASBIN_AUTO_RELOAD", true),
				ReloadInterval: getDurationEnv("CASBIN_RELOAD_INTERVAL", 30*time.Second),
				CacheEnabled:   getBoolEnv("CASBIN_CACHE_ENABLED", true),
				CacheTTL:       getDurationEnv("CASBIN_CACHE_TTL", 5*time.Minute),
			},
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Caller: getBoolEnv("LOG_CALLER", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// NOTE: Validate() method lives in config_validate.go
// NOTE: URL validation functions live in config_url.go
// NOTE: Environment variable helpers live in config_env.go
