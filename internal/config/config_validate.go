// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateYouTube(); err != nil {
		return err
	}

	if err := c.validateStripe(); err != nil {
		return err
	}

	if err := c.validateChatbot(); err != nil {
		return err
	}

	if err := c.validateNATS(); err != nil {
		return err
	}

	if err := c.validateScheduler(); err != nil {
		return err
	}

	if err := c.validateNotifications(); err != nil {
		return err
	}

	if err := c.validateModeration(); err != nil {
		return err
	}

	if err := c.validateMonitoring(); err != nil {
		return err
	}

	if err := c.validateWebhooks(); err != nil {
		return err
	}

	if err := c.validateBilling(); err != nil {
		return err
	}

	if err := c.validateAudit(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateAPI(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateYouTube validates YouTube API configuration (only if enabled).
// Remote broadcast creation requires a Google OAuth client for channel linking,
// so enabling YouTube pulls in the Google OAuth validation as well.
func (c *Config) validateYouTube() error {
	if !c.YouTube.Enabled {
		return nil
	}

	if err := validateAPIBaseURL(c.YouTube.BaseURL, "YOUTUBE_BASE_URL"); err != nil {
		return err
	}

	if c.YouTube.Timeout <= 0 {
		return fmt.Errorf("YOUTUBE_TIMEOUT must be positive")
	}

	if c.YouTube.MaxRetries < 0 || c.YouTube.MaxRetries > 10 {
		return fmt.Errorf("YOUTUBE_MAX_RETRIES must be between 0 and 10")
	}

	if c.YouTube.QuotaDailyLimit < 1 {
		return fmt.Errorf("YOUTUBE_QUOTA_DAILY_LIMIT must be at least 1")
	}

	return c.validateGoogleOAuth()
}

// validateGoogleOAuth validates the Google OAuth client used for channel linking
func (c *Config) validateGoogleOAuth() error {
	if c.Security.Google.ClientID == "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID is required when YOUTUBE_ENABLED=true")
	}
	if c.Security.Google.ClientSecret == "" {
		return fmt.Errorf("GOOGLE_CLIENT_SECRET is required when YOUTUBE_ENABLED=true")
	}
	if c.Security.Google.RedirectURL == "" {
		return fmt.Errorf("GOOGLE_REDIRECT_URL is required when YOUTUBE_ENABLED=true")
	}
	if err := validateEndpointURL(c.Security.Google.RedirectURL, "GOOGLE_REDIRECT_URL"); err != nil {
		return err
	}
	if len(c.Security.Google.Scopes) == 0 {
		return fmt.Errorf("GOOGLE_SCOPES must contain at least one scope")
	}
	if c.Security.Google.StateTTL < time.Minute || c.Security.Google.StateTTL > time.Hour {
		return fmt.Errorf("GOOGLE_STATE_TTL must be between 1m and 1h")
	}
	return nil
}

// Stripe key constants
const (
	stripeMinKeyLength = 20
)

// validateStripe validates Stripe configuration (only if enabled)
func (c *Config) validateStripe() error {
	if !c.Stripe.Enabled {
		return nil
	}

	if err := c.validateStripeAPIKey(); err != nil {
		return err
	}

	if err := validateHTTPURL(c.Stripe.BaseURL, "STRIPE_BASE_URL"); err != nil {
		return err
	}

	if c.Stripe.Timeout <= 0 {
		return fmt.Errorf("STRIPE_TIMEOUT must be positive")
	}

	return nil
}

// validateStripeAPIKey validates the Stripe secret key
func (c *Config) validateStripeAPIKey() error {
	if c.Stripe.APIKey == "" {
		return fmt.Errorf("STRIPE_API_KEY is required when STRIPE_ENABLED=true")
	}
	if !strings.HasPrefix(c.Stripe.APIKey, "sk_") {
		return fmt.Errorf("STRIPE_API_KEY must be a secret key (sk_live_... or sk_test_...)")
	}
	if len(c.Stripe.APIKey) < stripeMinKeyLength {
		return fmt.Errorf("STRIPE_API_KEY appears truncated (minimum %d characters)", stripeMinKeyLength)
	}
	if containsPlaceholder(c.Stripe.APIKey) {
		return fmt.Errorf("STRIPE_API_KEY contains a placeholder value - set the real secret key")
	}
	return nil
}

// Chatbot bounds
const (
	chatbotMaxTokensCap   = 4096
	chatbotMaxTemperature = 2.0
)

// validateChatbot validates chatbot configuration (only if enabled)
func (c *Config) validateChatbot() error {
	if !c.Chatbot.Enabled {
		return nil
	}

	if err := validateAPIBaseURL(c.Chatbot.BaseURL, "CHATBOT_BASE_URL"); err != nil {
		return err
	}

	if c.Chatbot.APIKey == "" {
		return fmt.Errorf("CHATBOT_API_KEY is required when CHATBOT_ENABLED=true")
	}

	if c.Chatbot.Model == "" {
		return fmt.Errorf("CHATBOT_MODEL is required when CHATBOT_ENABLED=true")
	}

	if c.Chatbot.MaxTokens < 1 || c.Chatbot.MaxTokens > chatbotMaxTokensCap {
		return fmt.Errorf("CHATBOT_MAX_TOKENS must be between 1 and 4096")
	}

	if c.Chatbot.Temperature < 0 || c.Chatbot.Temperature > chatbotMaxTemperature {
		return fmt.Errorf("CHATBOT_TEMPERATURE must be between 0 and 2")
	}

	if c.Chatbot.RateLimitMs < 0 {
		return fmt.Errorf("CHATBOT_RATE_LIMIT_MS must be non-negative")
	}

	return nil
}

// validateNATS validates NATS configuration (only if enabled)
func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}

	if err := validateNATSURL(c.NATS.URL); err != nil {
		return fmt.Errorf("NATS_URL %w", err)
	}

	return c.validateNATSLimits()
}

// NATS storage and processing limits
const (
	natsMinMemory      = 64 * 1024 * 1024  // 64MB
	natsMinStore       = 100 * 1024 * 1024 // 100MB
	natsMaxRetention   = 365
	natsMinRetention   = 1
	natsMaxSubscribers = 32
	natsMaxRetryCount  = 10
)

// validateNATSLimits validates NATS storage and processing limits
func (c *Config) validateNATSLimits() error {
	validators := []func() error{
		c.validateNATSMemory,
		c.validateNATSStore,
		c.validateNATSRetention,
		c.validateNATSSubscribers,
		c.validateNATSRouter,
	}

	for _, validator := range validators {
		if err := validator(); err != nil {
			return err
		}
	}
	return nil
}

// validateNATSMemory validates NATS max memory setting
func (c *Config) validateNATSMemory() error {
	if c.NATS.MaxMemory < natsMinMemory {
		return fmt.Errorf("NATS_MAX_MEMORY must be at least 64MB (67108864 bytes)")
	}
	return nil
}

// validateNATSStore validates NATS max store setting
func (c *Config) validateNATSStore() error {
	if c.NATS.MaxStore < natsMinStore {
		return fmt.Errorf("NATS_MAX_STORE must be at least 100MB (104857600 bytes)")
	}
	return nil
}

// validateNATSRetention validates NATS stream retention days
func (c *Config) validateNATSRetention() error {
	if c.NATS.StreamRetentionDays < natsMinRetention || c.NATS.StreamRetentionDays > natsMaxRetention {
		return fmt.Errorf("NATS_RETENTION_DAYS must be between 1 and 365")
	}
	return nil
}

// validateNATSSubscribers validates NATS subscribers count
func (c *Config) validateNATSSubscribers() error {
	if c.NATS.SubscribersCount < 1 || c.NATS.SubscribersCount > natsMaxSubscribers {
		return fmt.Errorf("NATS_SUBSCRIBERS must be between 1 and 32")
	}
	return nil
}

// validateNATSRouter validates Watermill router settings
func (c *Config) validateNATSRouter() error {
	if c.NATS.RouterRetryCount < 0 || c.NATS.RouterRetryCount > natsMaxRetryCount {
		return fmt.Errorf("NATS_ROUTER_RETRY_COUNT must be between 0 and 10")
	}
	if c.NATS.RouterPoisonQueueEnabled && c.NATS.RouterPoisonQueueTopic == "" {
		return fmt.Errorf("NATS_ROUTER_POISON_TOPIC is required when poison queue is enabled")
	}
	return nil
}

// Scheduler bounds
const (
	schedulerMinInterval    = 10 * time.Second
	schedulerMaxInterval    = time.Hour
	schedulerMinHorizon     = time.Hour
	schedulerMaxHorizon     = 90 * 24 * time.Hour
	schedulerMaxConcurrency = 64
	schedulerMinDuration    = time.Minute
	schedulerMaxDuration    = 12 * time.Hour
	schedulerMaxRetries     = 10
)

// validateScheduler validates live event scheduler configuration (only if enabled)
func (c *Config) validateScheduler() error {
	if !c.Scheduler.Enabled {
		return nil
	}

	if c.Scheduler.MaterializeInterval < schedulerMinInterval || c.Scheduler.MaterializeInterval > schedulerMaxInterval {
		return fmt.Errorf("SCHEDULER_MATERIALIZE_INTERVAL must be between 10s and 1h")
	}

	if c.Scheduler.Horizon < schedulerMinHorizon || c.Scheduler.Horizon > schedulerMaxHorizon {
		return fmt.Errorf("SCHEDULER_HORIZON must be between 1h and 2160h (90 days)")
	}

	if c.Scheduler.MaxConcurrent < 1 || c.Scheduler.MaxConcurrent > schedulerMaxConcurrency {
		return fmt.Errorf("SCHEDULER_MAX_CONCURRENT must be between 1 and 64")
	}

	if c.Scheduler.DefaultDuration < schedulerMinDuration || c.Scheduler.DefaultDuration > schedulerMaxDuration {
		return fmt.Errorf("SCHEDULER_DEFAULT_DURATION must be between 1m and 12h")
	}

	if c.Scheduler.RetryAttempts < 0 || c.Scheduler.RetryAttempts > schedulerMaxRetries {
		return fmt.Errorf("SCHEDULER_RETRY_ATTEMPTS must be between 0 and 10")
	}

	if c.Scheduler.RetryDelay < 0 {
		return fmt.Errorf("SCHEDULER_RETRY_DELAY must be non-negative")
	}

	return nil
}

// Notification bounds
const (
	notifyMinBatchWindow     = 10 * time.Second
	notifyMaxBatchWindow     = time.Hour
	notifyMaxBatchSize       = 1000
	notifyMaxEscalationCount = 100
	notifyMinEscalationWin   = time.Minute
	notifyMaxEscalationWin   = 24 * time.Hour
)

// validateNotifications validates notification configuration (only if enabled)
func (c *Config) validateNotifications() error {
	if !c.Notifications.Enabled {
		return nil
	}

	if c.Notifications.BatchWindow < notifyMinBatchWindow || c.Notifications.BatchWindow > notifyMaxBatchWindow {
		return fmt.Errorf("NOTIFY_BATCH_WINDOW must be between 10s and 1h")
	}

	if c.Notifications.BatchMaxSize < 1 || c.Notifications.BatchMaxSize > notifyMaxBatchSize {
		return fmt.Errorf("NOTIFY_BATCH_MAX_SIZE must be between 1 and 1000")
	}

	if c.Notifications.EscalationEnabled {
		if c.Notifications.EscalationThreshold < 1 || c.Notifications.EscalationThreshold > notifyMaxEscalationCount {
			return fmt.Errorf("NOTIFY_ESCALATION_THRESHOLD must be between 1 and 100")
		}
		if c.Notifications.EscalationWindow < notifyMinEscalationWin || c.Notifications.EscalationWindow > notifyMaxEscalationWin {
			return fmt.Errorf("NOTIFY_ESCALATION_WINDOW must be between 1m and 24h")
		}
	}

	if err := c.validateEmail(); err != nil {
		return err
	}

	return c.validateAdminWebhook()
}

// validateEmail validates SMTP settings (only if the email channel is enabled)
func (c *Config) validateEmail() error {
	if !c.Notifications.Email.Enabled {
		return nil
	}

	if c.Notifications.Email.Host == "" {
		return fmt.Errorf("SMTP_HOST is required when SMTP_ENABLED=true")
	}
	if c.Notifications.Email.Port < 1 || c.Notifications.Email.Port > 65535 {
		return fmt.Errorf("SMTP_PORT must be between 1 and 65535")
	}
	if c.Notifications.Email.From == "" {
		return fmt.Errorf("SMTP_FROM is required when SMTP_ENABLED=true")
	}
	return nil
}

// validateAdminWebhook validates the admin webhook channel (only if enabled)
func (c *Config) validateAdminWebhook() error {
	if !c.Notifications.AdminWebhook.Enabled {
		return nil
	}

	if c.Notifications.AdminWebhook.WebhookURL == "" {
		return fmt.Errorf("ADMIN_WEBHOOK_URL is required when ADMIN_WEBHOOK_ENABLED=true")
	}
	if err := validateEndpointURL(c.Notifications.AdminWebhook.WebhookURL, "ADMIN_WEBHOOK_URL"); err != nil {
		return err
	}
	if c.Notifications.AdminWebhook.RateLimitMs < 0 {
		return fmt.Errorf("ADMIN_WEBHOOK_RATE_LIMIT_MS must be non-negative")
	}
	return nil
}

// Moderation bounds
const (
	moderationMaxPatternCap = 4096
	moderationMaxCacheSize  = 1000000
)

// validateModeration validates moderation configuration (only if enabled)
func (c *Config) validateModeration() error {
	if !c.Moderation.Enabled {
		return nil
	}

	if c.Moderation.MaxPatternLength < 1 || c.Moderation.MaxPatternLength > moderationMaxPatternCap {
		return fmt.Errorf("MODERATION_MAX_PATTERN_LENGTH must be between 1 and 4096")
	}

	if c.Moderation.CacheSize < 0 || c.Moderation.CacheSize > moderationMaxCacheSize {
		return fmt.Errorf("MODERATION_CACHE_SIZE must be between 0 and 1000000")
	}

	if c.Moderation.ScanTimeout <= 0 {
		return fmt.Errorf("MODERATION_SCAN_TIMEOUT must be positive")
	}

	return nil
}

// Monitoring bounds
const (
	monitorMinCollectInterval = 10 * time.Second
	monitorMaxCollectInterval = 24 * time.Hour
)

// validateMonitoring validates resource monitoring configuration (only if enabled)
func (c *Config) validateMonitoring() error {
	if !c.Monitoring.Enabled {
		return nil
	}

	if c.Monitoring.CollectInterval < monitorMinCollectInterval || c.Monitoring.CollectInterval > monitorMaxCollectInterval {
		return fmt.Errorf("MONITOR_COLLECT_INTERVAL must be between 10s and 24h")
	}

	if c.Monitoring.WarnThreshold < 1 || c.Monitoring.WarnThreshold > 100 {
		return fmt.Errorf("MONITOR_WARN_THRESHOLD must be between 1 and 100")
	}

	if c.Monitoring.CriticalThreshold < 1 || c.Monitoring.CriticalThreshold > 100 {
		return fmt.Errorf("MONITOR_CRITICAL_THRESHOLD must be between 1 and 100")
	}

	if c.Monitoring.WarnThreshold >= c.Monitoring.CriticalThreshold {
		return fmt.Errorf("MONITOR_WARN_THRESHOLD must be less than MONITOR_CRITICAL_THRESHOLD")
	}

	return nil
}

// Webhook dispatch bounds
const (
	webhookMaxRetriesCap   = 10
	webhookMinBackoff      = time.Second
	webhookMaxBackoffCap   = 24 * time.Hour
	webhookMinTimeout      = time.Second
	webhookMaxTimeout      = 5 * time.Minute
	webhookMinPayloadBytes = 1024
	webhookMaxPayloadCap   = 10 << 20 // 10MB
	webhookMaxFactor       = 10.0
)

// validateWebhooks validates outbound webhook configuration (only if enabled)
func (c *Config) validateWebhooks() error {
	if !c.Webhooks.Enabled {
		return nil
	}

	if c.Webhooks.MaxRetries < 0 || c.Webhooks.MaxRetries > webhookMaxRetriesCap {
		return fmt.Errorf("WEBHOOKS_MAX_RETRIES must be between 0 and 10")
	}

	if c.Webhooks.InitialBackoff < webhookMinBackoff || c.Webhooks.InitialBackoff > webhookMaxBackoffCap {
		return fmt.Errorf("WEBHOOKS_INITIAL_BACKOFF must be between 1s and 24h")
	}

	if c.Webhooks.BackoffFactor < 1.0 || c.Webhooks.BackoffFactor > webhookMaxFactor {
		return fmt.Errorf("WEBHOOKS_BACKOFF_FACTOR must be between 1.0 and 10.0")
	}

	if c.Webhooks.MaxBackoff < c.Webhooks.InitialBackoff {
		return fmt.Errorf("WEBHOOKS_MAX_BACKOFF must be at least WEBHOOKS_INITIAL_BACKOFF")
	}

	if c.Webhooks.Timeout < webhookMinTimeout || c.Webhooks.Timeout > webhookMaxTimeout {
		return fmt.Errorf("WEBHOOKS_TIMEOUT must be between 1s and 5m")
	}

	if c.Webhooks.MaxPayloadBytes < webhookMinPayloadBytes || c.Webhooks.MaxPayloadBytes > webhookMaxPayloadCap {
		return fmt.Errorf("WEBHOOKS_MAX_PAYLOAD_BYTES must be between 1024 and 10485760")
	}

	return nil
}

// Billing bounds
const (
	billingMaxTrialDays = 365
	billingMaxGraceDays = 30
)

// validateBilling validates billing configuration
func (c *Config) validateBilling() error {
	if len(c.Billing.Currency) != 3 {
		return fmt.Errorf("BILLING_CURRENCY must be a 3-letter ISO 4217 code (e.g., usd, eur)")
	}

	if c.Billing.TrialDays < 0 || c.Billing.TrialDays > billingMaxTrialDays {
		return fmt.Errorf("BILLING_TRIAL_DAYS must be between 0 and 365")
	}

	if c.Billing.GraceDays < 0 || c.Billing.GraceDays > billingMaxGraceDays {
		return fmt.Errorf("BILLING_GRACE_DAYS must be between 0 and 30")
	}

	return nil
}

// validAuditLevels defines the allowed audit severity floors
var validAuditLevels = map[string]bool{
	"info":     true,
	"warning":  true,
	"critical": true,
}

// Audit bounds
const (
	auditMinRetentionDays = 1
	auditMaxRetentionDays = 3650
	auditMaxBufferSize    = 100000
	auditMinCleanup       = time.Minute
	auditMaxCleanup       = 7 * 24 * time.Hour
)

// validateAudit validates audit logging configuration (only if enabled)
func (c *Config) validateAudit() error {
	if !c.Audit.Enabled {
		return nil
	}

	if !validAuditLevels[c.Audit.LogLevel] {
		return fmt.Errorf("AUDIT_LOG_LEVEL must be one of: info, warning, critical")
	}

	if c.Audit.RetentionDays < auditMinRetentionDays || c.Audit.RetentionDays > auditMaxRetentionDays {
		return fmt.Errorf("AUDIT_RETENTION_DAYS must be between 1 and 3650")
	}

	if c.Audit.BufferSize < 1 || c.Audit.BufferSize > auditMaxBufferSize {
		return fmt.Errorf("AUDIT_BUFFER_SIZE must be between 1 and 100000")
	}

	if c.Audit.CleanupInterval < auditMinCleanup || c.Audit.CleanupInterval > auditMaxCleanup {
		return fmt.Errorf("AUDIT_CLEANUP_INTERVAL must be between 1m and 168h")
	}

	return nil
}

// validateServer validates HTTP server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}

	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}

	return nil
}

// validateAPI validates API pagination configuration
func (c *Config) validateAPI() error {
	if c.API.MaxPageSize < 1 || c.API.MaxPageSize > 1000 {
		return fmt.Errorf("API_MAX_PAGE_SIZE must be between 1 and 1000")
	}

	if c.API.DefaultPageSize < 1 || c.API.DefaultPageSize > c.API.MaxPageSize {
		return fmt.Errorf("API_DEFAULT_PAGE_SIZE must be between 1 and API_MAX_PAGE_SIZE")
	}

	return nil
}

// validateSecurity validates authentication and authorization configuration
func (c *Config) validateSecurity() error {
	if err := c.validateAuthMode(); err != nil {
		return err
	}

	// Wildcard CORS with authentication enabled is rejected in production
	if err := c.validateCORS(); err != nil {
		return err
	}

	if err := c.validateRateLimits(); err != nil {
		return err
	}

	if err := c.validateLockout(); err != nil {
		return err
	}

	if err := c.validateSessionStore(); err != nil {
		return err
	}

	return c.validateAuthModeConfig()
}

// validateAuthModeConfig validates configuration for the selected auth mode
func (c *Config) validateAuthModeConfig() error {
	validators := map[string]func() error{
		"jwt":   c.validateJWTAuth,
		"basic": c.validateBasicAuth,
		"multi": c.validateMultiAuth,
	}

	validator, exists := validators[c.Security.AuthMode]
	if !exists {
		return nil // "none" mode has no additional validation
	}

	return validator()
}

// validateCORS validates CORS configuration for security best practices.
// In production mode with authentication enabled, wildcard CORS is rejected
// as it creates a security vulnerability where any origin can access
// protected resources using stolen credentials.
func (c *Config) validateCORS() error {
	if c.Security.AuthMode != "none" && c.hasWildcardCORS() && c.IsProduction() {
		return fmt.Errorf("CORS_ORIGINS=* (wildcard) is not allowed in production with authentication enabled. " +
			"This creates a security vulnerability where attackers can steal credentials via malicious websites. " +
			"Either set specific origins: CORS_ORIGINS=https://yourdomain.com,https://app.yourdomain.com " +
			"or use ENVIRONMENT=development for testing purposes")
	}
	return nil
}

// hasWildcardCORS checks if CORS is configured with wildcard origins
func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS returns true if CORS configuration has security concerns
// that should be logged at startup
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.Security.AuthMode != "none" && c.hasWildcardCORS()
}

// Rate limit constants
const (
	rateLimitMinReqs   = 1
	rateLimitMaxReqs   = 100000
	rateLimitMinWindow = time.Second
	rateLimitMaxWindow = time.Hour
)

// validateRateLimits validates rate limiting configuration bounds
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}

	if err := c.validateRateLimitRequests(); err != nil {
		return err
	}
	return c.validateRateLimitWindow()
}

// validateRateLimitRequests validates the rate limit request count
func (c *Config) validateRateLimitRequests() error {
	if c.Security.RateLimitReqs < rateLimitMinReqs || c.Security.RateLimitReqs > rateLimitMaxReqs {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between 1 and 100000")
	}
	return nil
}

// validateRateLimitWindow validates the rate limit time window
func (c *Config) validateRateLimitWindow() error {
	if c.Security.RateLimitWindow < rateLimitMinWindow || c.Security.RateLimitWindow > rateLimitMaxWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between 1s and 1h")
	}
	return nil
}

// Lockout bounds
const (
	lockoutMaxThreshold = 20
	lockoutMinDuration  = time.Minute
	lockoutMaxDuration  = 24 * time.Hour
)

// validateLockout validates account lockout configuration.
// A threshold of 0 disables lockout entirely.
func (c *Config) validateLockout() error {
	if c.Security.LockoutThreshold < 0 || c.Security.LockoutThreshold > lockoutMaxThreshold {
		return fmt.Errorf("LOCKOUT_THRESHOLD must be between 0 and 20")
	}

	if c.Security.LockoutThreshold > 0 {
		if c.Security.LockoutDuration < lockoutMinDuration || c.Security.LockoutDuration > lockoutMaxDuration {
			return fmt.Errorf("LOCKOUT_DURATION must be between 1m and 24h")
		}
	}

	return nil
}

// validSessionStores defines the allowed session storage backends
var validSessionStores = map[string]bool{
	"memory": true,
	"badger": true,
}

// validateSessionStore validates session storage configuration
func (c *Config) validateSessionStore() error {
	if !validSessionStores[c.Security.SessionStore] {
		return fmt.Errorf("SESSION_STORE must be one of: memory, badger")
	}

	if c.Security.SessionStore == "badger" && c.Security.SessionStorePath == "" {
		return fmt.Errorf("SESSION_STORE_PATH is required when SESSION_STORE=badger")
	}

	return nil
}

// validAuthModes defines the allowed authentication modes
var validAuthModes = map[string]bool{
	"none":  true,
	"jwt":   true,
	"basic": true,
	"multi": true,
}

// validateAuthMode checks if auth mode is valid
func (c *Config) validateAuthMode() error {
	if !validAuthModes[c.Security.AuthMode] {
		return fmt.Errorf("AUTH_MODE must be one of: none, jwt, basic, multi")
	}

	return c.validateAuthModeForEnvironment()
}

// validateAuthModeForEnvironment ensures AUTH_MODE is appropriate for the environment
func (c *Config) validateAuthModeForEnvironment() error {
	// Refuse to start with AUTH_MODE=none in production environment.
	// This prevents accidental deployment of insecure configurations.
	if c.Security.AuthMode == "none" && c.IsProduction() {
		return fmt.Errorf("AUTH_MODE=none is not allowed when ENVIRONMENT=production. " +
			"Either set AUTH_MODE to a secure option (jwt, basic, multi) " +
			"or use ENVIRONMENT=development for testing purposes")
	}

	return nil
}

// IsProduction returns true if the application is running in production mode.
// Production mode is determined by the ENVIRONMENT environment variable.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// IsDevelopment returns true if the application is running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "" || env == "development" || env == "dev"
}

// validateJWTAuth validates JWT authentication configuration
func (c *Config) validateJWTAuth() error {
	if err := c.validateJWTSecret(); err != nil {
		return err
	}
	return c.validateAdminCredentials("jwt")
}

// validateJWTSecret validates the JWT secret configuration
func (c *Config) validateJWTSecret() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_MODE is jwt")
	}
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters for security")
	}
	if containsPlaceholder(c.Security.JWTSecret) {
		return fmt.Errorf("JWT_SECRET contains a placeholder value - generate a secure secret with: openssl rand -base64 32")
	}
	return nil
}

// validateBasicAuth validates Basic authentication configuration
func (c *Config) validateBasicAuth() error {
	return c.validateAdminCredentials("basic")
}

// validateAdminCredentials validates admin username and password
func (c *Config) validateAdminCredentials(authMode string) error {
	if err := c.validateAdminUsername(authMode); err != nil {
		return err
	}
	return c.validateAdminPassword(authMode)
}

// validateAdminUsername validates the admin username configuration
func (c *Config) validateAdminUsername(authMode string) error {
	if c.Security.AdminUsername == "" {
		return fmt.Errorf("ADMIN_USERNAME is required when AUTH_MODE is %s", authMode)
	}
	return nil
}

// validateAdminPassword validates the admin password configuration
func (c *Config) validateAdminPassword(authMode string) error {
	if c.Security.AdminPassword == "" {
		return fmt.Errorf("ADMIN_PASSWORD is required when AUTH_MODE is %s", authMode)
	}
	if containsPlaceholder(c.Security.AdminPassword) {
		return fmt.Errorf("ADMIN_PASSWORD contains a placeholder value - set a secure password")
	}
	// Enforce password policy for admin credentials
	if err := c.validatePasswordPolicy(c.Security.AdminPassword, c.Security.AdminUsername); err != nil {
		return fmt.Errorf("ADMIN_PASSWORD: %w", err)
	}
	return nil
}

// validatePasswordPolicy validates a password against the configured password policy.
func (c *Config) validatePasswordPolicy(password, username string) error {
	policy := DefaultPasswordPolicy()
	return policy.ValidateWithError(password, username)
}

// validateMultiAuth validates multi-mode authentication configuration
func (c *Config) validateMultiAuth() error {
	if c.hasAnyAuthenticator() {
		return nil
	}
	return fmt.Errorf("multi auth mode requires at least one authenticator (JWT or Basic)")
}

// hasAnyAuthenticator checks if at least one authenticator is properly configured
func (c *Config) hasAnyAuthenticator() bool {
	authenticators := []func() bool{
		c.hasJWTAuthenticator,
		c.hasBasicAuthenticator,
	}

	for _, check := range authenticators {
		if check() {
			return true
		}
	}
	return false
}

// hasJWTAuthenticator checks if JWT is properly configured
func (c *Config) hasJWTAuthenticator() bool {
	return c.Security.JWTSecret != "" && len(c.Security.JWTSecret) >= 32
}

// hasBasicAuthenticator checks if Basic auth is properly configured
func (c *Config) hasBasicAuthenticator() bool {
	return c.Security.AdminUsername != "" && c.Security.AdminPassword != ""
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if err := c.validateLogLevel(); err != nil {
		return err
	}
	return c.validateLogFormat()
}

// validateLogLevel validates the log level configuration
func (c *Config) validateLogLevel() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	return nil
}

// validateLogFormat validates the log format configuration
func (c *Config) validateLogFormat() error {
	if c.Logging.Format == "" {
		return nil
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// placeholderPatterns defines common placeholder patterns that indicate
// the user forgot to set a real value. This prevents accidental deployment
// with insecure default credentials.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"YOUR_PASSWORD",
	"PLACEHOLDER",
	"TODO",
	"FIXME",
	"XXX",
	"EXAMPLE",
}

// containsPlaceholder checks if a value contains common placeholder patterns
// that indicate the user forgot to set a real value. This prevents accidental
// deployment with insecure default credentials.
func containsPlaceholder(value string) bool {
	upperValue := strings.ToUpper(value)
	return containsAnyPattern(upperValue, placeholderPatterns)
}

// containsAnyPattern checks if a string contains any of the provided patterns
func containsAnyPattern(s string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(s, pattern) {
			return true
		}
	}
	return false
}
