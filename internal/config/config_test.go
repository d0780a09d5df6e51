// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

// Test helpers to reduce cyclomatic complexity

// setupTestEnv sets up test environment variables and returns cleanup function
func setupTestEnv(t *testing.T, envVars map[string]string) func() {
	t.Helper()
	os.Clearenv()
	for k, v := range envVars {
		if err := os.Setenv(k, v); err != nil {
			t.Fatalf("failed to set env var %s: %v", k, err)
		}
	}
	return func() {
		os.Clearenv()
	}
}

// assertNoError checks that error is nil
func assertNoError(t *testing.T, err error, testName string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", testName, err)
	}
}

// assertError checks that error occurred and optionally matches message
func assertError(t *testing.T, err error, expectedMsg, testName string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected error containing %q, got nil", testName, expectedMsg)
	}
	if expectedMsg != "" && err.Error() != expectedMsg {
		t.Errorf("%s: error = %v, want error containing %q", testName, err, expectedMsg)
	}
}

// assertConfigNotNil checks that config is not nil
func assertConfigNotNil(t *testing.T, cfg *Config, testName string) {
	t.Helper()
	if cfg == nil {
		t.Fatalf("%s: config is nil", testName)
	}
}

// assertIntEqual checks integer equality
func assertIntEqual(t *testing.T, got, want int, field, testName string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: %s = %v, want %v", testName, field, got, want)
	}
}

// assertStringEqual checks string equality
func assertStringEqual(t *testing.T, got, want, field string) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", field, got, want)
	}
}

// assertBoolEqual checks boolean equality
func assertBoolEqual(t *testing.T, got, want bool, field string) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", field, got, want)
	}
}

// assertFloatEqual checks float equality
func assertFloatEqual(t *testing.T, got, want float64, field string) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", field, got, want)
	}
}

// assertDurationEqual checks time.Duration equality
func assertDurationEqual(t *testing.T, got, want time.Duration, field string) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", field, got, want)
	}
}

// assertSliceLength checks slice length
func assertSliceLength(t *testing.T, got, want int, field string) {
	t.Helper()
	if got != want {
		t.Errorf("%s length = %v, want %v", field, got, want)
	}
}

// assertStripeConfig validates Stripe configuration section
func assertStripeConfig(t *testing.T, cfg *Config, enabled bool, apiKey, webhookSecret string) {
	t.Helper()
	assertBoolEqual(t, cfg.Stripe.Enabled, enabled, "Stripe.Enabled")
	assertStringEqual(t, cfg.Stripe.APIKey, apiKey, "Stripe.APIKey")
	assertStringEqual(t, cfg.Stripe.WebhookSecret, webhookSecret, "Stripe.WebhookSecret")
}

// assertDatabaseConfig validates Database configuration section
func assertDatabaseConfig(t *testing.T, cfg *Config, path, maxMemory string, preserveOrder bool) {
	t.Helper()
	assertStringEqual(t, cfg.Database.Path, path, "Database.Path")
	assertStringEqual(t, cfg.Database.MaxMemory, maxMemory, "Database.MaxMemory")
	assertBoolEqual(t, cfg.Database.PreserveInsertionOrder, preserveOrder, "Database.PreserveInsertionOrder")
}

// assertSchedulerConfig validates Scheduler configuration section
func assertSchedulerConfig(t *testing.T, cfg *Config, materializeInterval, horizon, defaultDuration, retryDelay time.Duration, maxConcurrent, retryAttempts int) {
	t.Helper()
	assertDurationEqual(t, cfg.Scheduler.MaterializeInterval, materializeInterval, "Scheduler.MaterializeInterval")
	assertDurationEqual(t, cfg.Scheduler.Horizon, horizon, "Scheduler.Horizon")
	assertDurationEqual(t, cfg.Scheduler.DefaultDuration, defaultDuration, "Scheduler.DefaultDuration")
	assertDurationEqual(t, cfg.Scheduler.RetryDelay, retryDelay, "Scheduler.RetryDelay")
	assertIntEqual(t, cfg.Scheduler.MaxConcurrent, maxConcurrent, "Scheduler.MaxConcurrent", "")
	assertIntEqual(t, cfg.Scheduler.RetryAttempts, retryAttempts, "Scheduler.RetryAttempts", "")
}

// assertServerConfig validates Server configuration section
func assertServerConfig(t *testing.T, cfg *Config, port int, host string, timeout time.Duration) {
	t.Helper()
	assertIntEqual(t, cfg.Server.Port, port, "Server.Port", "")
	assertStringEqual(t, cfg.Server.Host, host, "Server.Host")
	assertDurationEqual(t, cfg.Server.Timeout, timeout, "Server.Timeout")
}

// assertAPIConfig validates API configuration section
func assertAPIConfig(t *testing.T, cfg *Config, defaultPageSize, maxPageSize int) {
	t.Helper()
	assertIntEqual(t, cfg.API.DefaultPageSize, defaultPageSize, "API.DefaultPageSize", "")
	assertIntEqual(t, cfg.API.MaxPageSize, maxPageSize, "API.MaxPageSize", "")
}

// assertSecurityConfig validates Security configuration section
func assertSecurityConfig(t *testing.T, cfg *Config, authMode string, rateLimitReqs int, rateLimitWindow time.Duration, rateLimitDisabled bool, corsOriginsLen, trustedProxiesLen int) {
	t.Helper()
	assertStringEqual(t, cfg.Security.AuthMode, authMode, "Security.AuthMode")
	assertIntEqual(t, cfg.Security.RateLimitReqs, rateLimitReqs, "Security.RateLimitReqs", "")
	assertDurationEqual(t, cfg.Security.RateLimitWindow, rateLimitWindow, "Security.RateLimitWindow")
	assertBoolEqual(t, cfg.Security.RateLimitDisabled, rateLimitDisabled, "Security.RateLimitDisabled")
	assertSliceLength(t, len(cfg.Security.CORSOrigins), corsOriginsLen, "Security.CORSOrigins")
	assertSliceLength(t, len(cfg.Security.TrustedProxies), trustedProxiesLen, "Security.TrustedProxies")
}

// assertLoggingConfig validates Logging configuration section
func assertLoggingConfig(t *testing.T, cfg *Config, level string) {
	t.Helper()
	assertStringEqual(t, cfg.Logging.Level, level, "Logging.Level")
}

// assertYouTubeConfig validates YouTube configuration section
func assertYouTubeConfig(t *testing.T, cfg *Config, enabled bool, baseURL string, timeout time.Duration, maxRetries, quotaDailyLimit int) {
	t.Helper()
	assertBoolEqual(t, cfg.YouTube.Enabled, enabled, "YouTube.Enabled")
	assertStringEqual(t, cfg.YouTube.BaseURL, baseURL, "YouTube.BaseURL")
	assertDurationEqual(t, cfg.YouTube.Timeout, timeout, "YouTube.Timeout")
	assertIntEqual(t, cfg.YouTube.MaxRetries, maxRetries, "YouTube.MaxRetries", "")
	assertIntEqual(t, cfg.YouTube.QuotaDailyLimit, quotaDailyLimit, "YouTube.QuotaDailyLimit", "")
}

// assertWebhooksConfig validates outbound webhook configuration section
func assertWebhooksConfig(t *testing.T, cfg *Config, maxRetries int, initialBackoff, maxBackoff time.Duration, backoffFactor float64) {
	t.Helper()
	assertIntEqual(t, cfg.Webhooks.MaxRetries, maxRetries, "Webhooks.MaxRetries", "")
	assertDurationEqual(t, cfg.Webhooks.InitialBackoff, initialBackoff, "Webhooks.InitialBackoff")
	assertDurationEqual(t, cfg.Webhooks.MaxBackoff, maxBackoff, "Webhooks.MaxBackoff")
	assertFloatEqual(t, cfg.Webhooks.BackoffFactor, backoffFactor, "Webhooks.BackoffFactor")
}

// assertNotificationsConfig validates Notifications configuration section
func assertNotificationsConfig(t *testing.T, cfg *Config, batchWindow time.Duration, batchMaxSize int, escalationEnabled bool, escalationThreshold int, escalationWindow time.Duration) {
	t.Helper()
	assertDurationEqual(t, cfg.Notifications.BatchWindow, batchWindow, "Notifications.BatchWindow")
	assertIntEqual(t, cfg.Notifications.BatchMaxSize, batchMaxSize, "Notifications.BatchMaxSize", "")
	assertBoolEqual(t, cfg.Notifications.EscalationEnabled, escalationEnabled, "Notifications.EscalationEnabled")
	assertIntEqual(t, cfg.Notifications.EscalationThreshold, escalationThreshold, "Notifications.EscalationThreshold", "")
	assertDurationEqual(t, cfg.Notifications.EscalationWindow, escalationWindow, "Notifications.EscalationWindow")
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid configuration",
			envVars: map[string]string{
				"AUTH_MODE":      "jwt",
				"JWT_SECRET":     "this_is_a_very_long_secret_key_with_more_than_32_characters",
				"ADMIN_USERNAME": "admin",
				"ADMIN_PASSWORD": "SecureP@ss123!",
			},
			wantErr: false,
		},
		{
			name: "missing STRIPE_API_KEY when enabled",
			envVars: map[string]string{
				"STRIPE_ENABLED": "true",
				"AUTH_MODE":      "none",
			},
			wantErr: true,
			errMsg:  "configuration validation failed: STRIPE_API_KEY is required when STRIPE_ENABLED=true",
		},
		{
			name: "STRIPE_API_KEY must be a secret key",
			envVars: map[string]string{
				"STRIPE_ENABLED": "true",
				"STRIPE_API_KEY": "pk_test_4eC39HqLyjWDarjtT1zdp7dc",
				"AUTH_MODE":      "none",
			},
			wantErr: true,
			errMsg:  "configuration validation failed: STRIPE_API_KEY must be a secret key (sk_live_... or sk_test_...)",
		},
		{
			name: "local-only mode - no integrations required",
			envVars: map[string]string{
				"AUTH_MODE": "none",
			},
			wantErr: false,
		},
		{
			name: "YouTube enabled requires GOOGLE_CLIENT_ID",
			envVars: map[string]string{
				"YOUTUBE_ENABLED": "true",
				"AUTH_MODE":       "none",
			},
			wantErr: true,
			errMsg:  "configuration validation failed: GOOGLE_CLIENT_ID is required when YOUTUBE_ENABLED=true",
		},
		{
			name: "YouTube enabled requires GOOGLE_CLIENT_SECRET",
			envVars: map[string]string{
				"YOUTUBE_ENABLED":  "true",
				"GOOGLE_CLIENT_ID": "client-id.apps.googleusercontent.com",
				"AUTH_MODE":        "none",
			},
			wantErr: true,
			errMsg:  "configuration validation failed: GOOGLE_CLIENT_SECRET is required when YOUTUBE_ENABLED=true",
		},
		{
			name: "YouTube enabled requires GOOGLE_REDIRECT_URL",
			envVars: map[string]string{
				"YOUTUBE_ENABLED":      "true",
				"GOOGLE_CLIENT_ID":     "client-id.apps.googleusercontent.com",
				"GOOGLE_CLIENT_SECRET": "client-secret-value",
				"AUTH_MODE":            "none",
			},
			wantErr: true,
			errMsg:  "configuration validation failed: GOOGLE_REDIRECT_URL is required when YOUTUBE_ENABLED=true",
		},
		{
			name: "valid YouTube configuration",
			envVars: map[string]string{
				"YOUTUBE_ENABLED":      "true",
				"GOOGLE_CLIENT_ID":     "client-id.apps.googleusercontent.com",
				"GOOGLE_CLIENT_SECRET": "client-secret-value",
				"GOOGLE_REDIRECT_URL":  "https://tubefleet.example.com/api/v1/channels/oauth/callback",
				"AUTH_MODE":            "none",
			},
			wantErr: false,
		},
		{
			name: "JWT mode requires JWT_SECRET",
			envVars: map[string]string{
				"AUTH_MODE": "jwt",
			},
			wantErr: true,
			errMsg:  "configuration validation failed: JWT_SECRET is required when AUTH_MODE is jwt",
		},
		{
			name: "JWT_SECRET too short",
			envVars: map[string]string{
				"AUTH_MODE":      "jwt",
				"JWT_SECRET":     "short",
				"ADMIN_USERNAME": "admin",
				"ADMIN_PASSWORD": "SecureP@ss123!",
			},
			wantErr: true,
			errMsg:  "configuration validation failed: JWT_SECRET must be at least 32 characters for security",
		},
		{
			name: "JWT mode requires ADMIN_USERNAME",
			envVars: map[string]string{
				"AUTH_MODE":      "jwt",
				"JWT_SECRET":     "this_is_a_very_long_secret_key_with_more_than_32_characters",
				"ADMIN_PASSWORD": "SecureP@ss123!",
			},
			wantErr: true,
			errMsg:  "configuration validation failed: ADMIN_USERNAME is required when AUTH_MODE is jwt",
		},
		{
			name: "JWT mode requires ADMIN_PASSWORD",
			envVars: map[string]string{
				"AUTH_MODE":      "jwt",
				"JWT_SECRET":     "this_is_a_very_long_secret_key_with_more_than_32_characters",
				"ADMIN_USERNAME": "admin",
			},
			wantErr: true,
			errMsg:  "configuration validation failed: ADMIN_PASSWORD is required when AUTH_MODE is jwt",
		},
		{
			name: "ADMIN_PASSWORD too short",
			envVars: map[string]string{
				"AUTH_MODE":      "jwt",
				"JWT_SECRET":     "this_is_a_very_long_secret_key_with_more_than_32_characters",
				"ADMIN_USERNAME": "admin",
				"ADMIN_PASSWORD": "Sh0rt!",
			},
			wantErr: true,
			errMsg:  "configuration validation failed: ADMIN_PASSWORD: password too short: need at least 12 characters, got 6",
		},
		{
			name: "invalid AUTH_MODE",
			envVars: map[string]string{
				"AUTH_MODE": "invalid_mode",
			},
			wantErr: true,
			errMsg:  "configuration validation failed: AUTH_MODE must be one of: none, jwt, basic, multi",
		},
		{
			name: "invalid port",
			envVars: map[string]string{
				"HTTP_PORT": "99999",
				"AUTH_MODE": "none",
			},
			wantErr: true,
			errMsg:  "configuration validation failed: HTTP_PORT must be between 1 and 65535",
		},
		{
			name: "invalid port (zero)",
			envVars: map[string]string{
				"HTTP_PORT": "0",
				"AUTH_MODE": "none",
			},
			wantErr: true,
			errMsg:  "configuration validation failed: HTTP_PORT must be between 1 and 65535",
		},
		{
			name: "invalid log level",
			envVars: map[string]string{
				"LOG_LEVEL": "invalid_level",
				"AUTH_MODE": "none",
			},
			wantErr: true,
			errMsg:  "configuration validation failed: LOG_LEVEL must be one of: trace, debug, info, warn, error",
		},
		{
			name: "basic auth mode requires ADMIN_USERNAME",
			envVars: map[string]string{
				"AUTH_MODE":      "basic",
				"ADMIN_PASSWORD": "SecureP@ss123!",
			},
			wantErr: true,
			errMsg:  "configuration validation failed: ADMIN_USERNAME is required when AUTH_MODE is basic",
		},
		{
			name: "basic auth mode requires ADMIN_PASSWORD",
			envVars: map[string]string{
				"AUTH_MODE":      "basic",
				"ADMIN_USERNAME": "admin",
			},
			wantErr: true,
			errMsg:  "configuration validation failed: ADMIN_PASSWORD is required when AUTH_MODE is basic",
		},
		{
			name: "basic auth ADMIN_PASSWORD too short",
			envVars: map[string]string{
				"AUTH_MODE":      "basic",
				"ADMIN_USERNAME": "admin",
				"ADMIN_PASSWORD": "Sh0rt!",
			},
			wantErr: true,
			errMsg:  "configuration validation failed: ADMIN_PASSWORD: password too short: need at least 12 characters, got 6",
		},
		{
			name: "valid basic auth configuration",
			envVars: map[string]string{
				"AUTH_MODE":      "basic",
				"ADMIN_USERNAME": "admin",
				"ADMIN_PASSWORD": "SecureP@ss123!",
			},
			wantErr: false,
		},
		{
			name: "JWT_SECRET placeholder detection - REPLACE",
			envVars: map[string]string{
				"AUTH_MODE":      "jwt",
				"JWT_SECRET":     "REPLACE_WITH_RANDOM_STRING_MIN_32_CHARS",
				"ADMIN_USERNAME": "admin",
				"ADMIN_PASSWORD": "SecureP@ss123!",
			},
			wantErr: true,
			errMsg:  "configuration validation failed: JWT_SECRET contains a placeholder value - generate a secure secret with: openssl rand -base64 32",
		},
		{
			name: "JWT_SECRET placeholder detection - CHANGEME",
			envVars: map[string]string{
				"AUTH_MODE":      "jwt",
				"JWT_SECRET":     "changeme_this_is_a_very_long_secret_key_placeholder",
				"ADMIN_USERNAME": "admin",
				"ADMIN_PASSWORD": "SecureP@ss123!",
			},
			wantErr: true,
			errMsg:  "configuration validation failed: JWT_SECRET contains a placeholder value - generate a secure secret with: openssl rand -base64 32",
		},
		{
			name: "ADMIN_PASSWORD placeholder detection - REPLACE",
			envVars: map[string]string{
				"AUTH_MODE":      "jwt",
				"JWT_SECRET":     "this_is_a_very_long_secret_key_with_more_than_32_characters",
				"ADMIN_USERNAME": "admin",
				"ADMIN_PASSWORD": "REPLACE_WITH_SECURE_PASSWORD",
			},
			wantErr: true,
			errMsg:  "configuration validation failed: ADMIN_PASSWORD contains a placeholder value - set a secure password",
		},
		{
			name: "ADMIN_PASSWORD placeholder detection basic auth - CHANGEME",
			envVars: map[string]string{
				"AUTH_MODE":      "basic",
				"ADMIN_USERNAME": "admin",
				"ADMIN_PASSWORD": "changeme123",
			},
			wantErr: true,
			errMsg:  "configuration validation failed: ADMIN_PASSWORD contains a placeholder value - set a secure password",
		},
		{
			name: "invalid session store",
			envVars: map[string]string{
				"AUTH_MODE":     "none",
				"SESSION_STORE": "redis",
			},
			wantErr: true,
			errMsg:  "configuration validation failed: SESSION_STORE must be one of: memory, badger",
		},
		{
			name: "badger session store requires path",
			envVars: map[string]string{
				"AUTH_MODE":          "none",
				"SESSION_STORE":      "badger",
				"SESSION_STORE_PATH": "",
			},
			wantErr: true,
			errMsg:  "configuration validation failed: SESSION_STORE_PATH is required when SESSION_STORE=badger",
		},
		{
			name: "invalid billing currency",
			envVars: map[string]string{
				"AUTH_MODE":        "none",
				"BILLING_CURRENCY": "dollars",
			},
			wantErr: true,
			errMsg:  "configuration validation failed: BILLING_CURRENCY must be a 3-letter ISO 4217 code (e.g., usd, eur)",
		},
		{
			name: "invalid webhook backoff factor",
			envVars: map[string]string{
				"AUTH_MODE":               "none",
				"WEBHOOKS_BACKOFF_FACTOR": "0.5",
			},
			wantErr: true,
			errMsg:  "configuration validation failed: WEBHOOKS_BACKOFF_FACTOR must be between 1.0 and 10.0",
		},
		{
			name: "webhook max backoff below initial backoff",
			envVars: map[string]string{
				"AUTH_MODE":                "none",
				"WEBHOOKS_INITIAL_BACKOFF": "10m",
				"WEBHOOKS_MAX_BACKOFF":     "5m",
			},
			wantErr: true,
			errMsg:  "configuration validation failed: WEBHOOKS_MAX_BACKOFF must be at least WEBHOOKS_INITIAL_BACKOFF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := setupTestEnv(t, tt.envVars)
			defer cleanup()

			cfg, err := Load()

			if tt.wantErr {
				assertError(t, err, tt.errMsg, tt.name)
			} else {
				assertNoError(t, err, tt.name)
				assertConfigNotNil(t, cfg, tt.name)
			}
		})
	}
}

func TestGetIntEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		value        string
		defaultValue int
		want         int
	}{
		{
			name:         "valid integer",
			key:          "TEST_INT",
			value:        "42",
			defaultValue: 10,
			want:         42,
		},
		{
			name:         "empty value uses default",
			key:          "TEST_INT",
			value:        "",
			defaultValue: 10,
			want:         10,
		},
		{
			name:         "invalid value uses default",
			key:          "TEST_INT",
			value:        "not_a_number",
			defaultValue: 10,
			want:         10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			envVars := map[string]string{}
			if tt.value != "" {
				envVars[tt.key] = tt.value
			}
			cleanup := setupTestEnv(t, envVars)
			defer cleanup()

			got := getIntEnv(tt.key, tt.defaultValue)
			assertIntEqual(t, got, tt.want, "getIntEnv", tt.name)
		})
	}
}

func TestGetDurationEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		value        string
		defaultValue time.Duration
		want         time.Duration
	}{
		{
			name:         "valid duration",
			key:          "TEST_DURATION",
			value:        "5m",
			defaultValue: 1 * time.Minute,
			want:         5 * time.Minute,
		},
		{
			name:         "empty value uses default",
			key:          "TEST_DURATION",
			value:        "",
			defaultValue: 1 * time.Minute,
			want:         1 * time.Minute,
		},
		{
			name:         "invalid value uses default",
			key:          "TEST_DURATION",
			value:        "invalid",
			defaultValue: 1 * time.Minute,
			want:         1 * time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			if tt.value != "" {
				_ = os.Setenv(tt.key, tt.value)
			}

			got := getDurationEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getDurationEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateHTTPURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
		errMsg  string
	}{
		// Valid URLs - HTTP
		{
			name:    "valid HTTP with hostname and port",
			url:     "http://localhost:12111",
			wantErr: false,
		},
		{
			name:    "valid HTTP with IP address and port",
			url:     "http://192.168.1.100:12111",
			wantErr: false,
		},
		{
			name:    "valid HTTP with hostname (no port)",
			url:     "http://stripe-mock.example.com",
			wantErr: false,
		},
		{
			name:    "valid HTTP with trailing slash",
			url:     "http://localhost:12111/",
			wantErr: false,
		},
		// Valid URLs - HTTPS
		{
			name:    "valid HTTPS with hostname",
			url:     "https://api.stripe.com",
			wantErr: false,
		},
		{
			name:    "valid HTTPS with subdomain",
			url:     "https://api.eu.stripe.example.com:8443",
			wantErr: false,
		},
		// IPv6 addresses
		{
			name:    "valid HTTP with IPv6 address",
			url:     "http://[::1]:12111",
			wantErr: false,
		},
		{
			name:    "valid HTTP with full IPv6 address",
			url:     "http://[2001:db8::1]:12111",
			wantErr: false,
		},
		// Invalid URLs - Missing scheme
		{
			name:    "missing scheme",
			url:     "localhost:12111",
			wantErr: true,
			errMsg:  "scheme must be http or https",
		},
		{
			name:    "invalid scheme (ftp)",
			url:     "ftp://localhost:12111",
			wantErr: true,
			errMsg:  "scheme must be http or https, got: ftp",
		},
		// Invalid URLs - Missing host
		{
			name:    "missing host",
			url:     "http://",
			wantErr: true,
			errMsg:  "host is required",
		},
		// Invalid URLs - Path/Query parameters
		{
			name:    "has path component",
			url:     "https://api.stripe.com/v1",
			wantErr: true,
			errMsg:  "should be base URL only",
		},
		{
			name:    "has query parameters",
			url:     "https://api.stripe.com?key=test",
			wantErr: true,
			errMsg:  "should not contain query parameters",
		},
		// Edge cases
		{
			name:    "empty string",
			url:     "",
			wantErr: true,
			errMsg:  "scheme must be http or https",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateHTTPURL(tt.url, "STRIPE_BASE_URL")

			if tt.wantErr {
				if err == nil {
					t.Errorf("validateHTTPURL(%q) expected error containing %q, got nil", tt.url, tt.errMsg)
				} else if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("validateHTTPURL(%q) error = %v, want error containing %q", tt.url, err, tt.errMsg)
				}
			} else {
				if err != nil {
					t.Errorf("validateHTTPURL(%q) unexpected error = %v", tt.url, err)
				}
			}
		})
	}
}

func TestValidateAPIBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "versioned path is allowed",
			url:     "https://www.googleapis.com/youtube/v3",
			wantErr: false,
		},
		{
			name:    "single version segment is allowed",
			url:     "https://api.openai.com/v1",
			wantErr: false,
		},
		{
			name:    "bare host is allowed",
			url:     "https://api.example.com",
			wantErr: false,
		},
		{
			name:    "localhost with port",
			url:     "http://localhost:8089/youtube/v3",
			wantErr: false,
		},
		{
			name:    "query parameters rejected",
			url:     "https://www.googleapis.com/youtube/v3?key=abc",
			wantErr: true,
			errMsg:  "should not contain query parameters",
		},
		{
			name:    "missing scheme",
			url:     "www.googleapis.com/youtube/v3",
			wantErr: true,
			errMsg:  "scheme must be http or https",
		},
		{
			name:    "missing host",
			url:     "https://",
			wantErr: true,
			errMsg:  "host is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAPIBaseURL(tt.url, "YOUTUBE_BASE_URL")

			if tt.wantErr {
				if err == nil {
					t.Errorf("validateAPIBaseURL(%q) expected error containing %q, got nil", tt.url, tt.errMsg)
				} else if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("validateAPIBaseURL(%q) error = %v, want error containing %q", tt.url, err, tt.errMsg)
				}
			} else {
				if err != nil {
					t.Errorf("validateAPIBaseURL(%q) unexpected error = %v", tt.url, err)
				}
			}
		})
	}
}

func TestValidateEndpointURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "https endpoint with path",
			url:     "https://hooks.example.com/tubefleet/events",
			wantErr: false,
		},
		{
			name:    "localhost callback for development",
			url:     "http://localhost:8480/api/v1/channels/oauth/callback",
			wantErr: false,
		},
		{
			name:    "query parameters are allowed",
			url:     "https://hooks.example.com/notify?channel=ops",
			wantErr: false,
		},
		{
			name:    "missing scheme",
			url:     "hooks.example.com/notify",
			wantErr: true,
			errMsg:  "scheme must be http or https",
		},
		{
			name:    "invalid scheme (ws)",
			url:     "ws://hooks.example.com/notify",
			wantErr: true,
			errMsg:  "scheme must be http or https, got: ws",
		},
		{
			name:    "missing host",
			url:     "https:///notify",
			wantErr: true,
			errMsg:  "host is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateEndpointURL(tt.url, "ADMIN_WEBHOOK_URL")

			if tt.wantErr {
				if err == nil {
					t.Errorf("validateEndpointURL(%q) expected error containing %q, got nil", tt.url, tt.errMsg)
				} else if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("validateEndpointURL(%q) error = %v, want error containing %q", tt.url, err, tt.errMsg)
				}
			} else {
				if err != nil {
					t.Errorf("validateEndpointURL(%q) unexpected error = %v", tt.url, err)
				}
			}
		})
	}
}

func TestGetSliceEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		value        string
		defaultValue []string
		want         []string
	}{
		{
			name:         "single value",
			key:          "TEST_SLICE",
			value:        "value1",
			defaultValue: []string{"default"},
			want:         []string{"value1"},
		},
		{
			name:         "multiple values",
			key:          "TEST_SLICE",
			value:        "value1,value2,value3",
			defaultValue: []string{"default"},
			want:         []string{"value1", "value2", "value3"},
		},
		{
			name:         "values with spaces",
			key:          "TEST_SLICE",
			value:        " value1 , value2 , value3 ",
			defaultValue: []string{"default"},
			want:         []string{"value1", "value2", "value3"},
		},
		{
			name:         "empty value uses default",
			key:          "TEST_SLICE",
			value:        "",
			defaultValue: []string{"default"},
			want:         []string{"default"},
		},
		{
			name:         "only commas uses default",
			key:          "TEST_SLICE",
			value:        ",,,",
			defaultValue: []string{"default"},
			want:         []string{"default"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			if tt.value != "" {
				_ = os.Setenv(tt.key, tt.value)
			}

			got := getSliceEnv(tt.key, tt.defaultValue)
			if len(got) != len(tt.want) {
				t.Errorf("getSliceEnv() length = %v, want %v", len(got), len(tt.want))
				return
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("getSliceEnv()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// =====================================================
// Additional Tests for Full Coverage
// =====================================================

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		value        string
		defaultValue string
		want         string
	}{
		{
			name:         "value set",
			key:          "TEST_ENV",
			value:        "test_value",
			defaultValue: "default",
			want:         "test_value",
		},
		{
			name:         "empty value uses default",
			key:          "TEST_ENV",
			value:        "",
			defaultValue: "default",
			want:         "default",
		},
		{
			name:         "env not set uses default",
			key:          "TEST_ENV_NOT_SET",
			value:        "",
			defaultValue: "default",
			want:         "default",
		},
		{
			name:         "whitespace value is kept",
			key:          "TEST_ENV",
			value:        "  spaces  ",
			defaultValue: "default",
			want:         "  spaces  ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			if tt.value != "" {
				_ = os.Setenv(tt.key, tt.value)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetBoolEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		value        string
		defaultValue bool
		want         bool
	}{
		{
			name:         "true string",
			key:          "TEST_BOOL",
			value:        "true",
			defaultValue: false,
			want:         true,
		},
		{
			name:         "false string",
			key:          "TEST_BOOL",
			value:        "false",
			defaultValue: true,
			want:         false,
		},
		{
			name:         "1 is true",
			key:          "TEST_BOOL",
			value:        "1",
			defaultValue: false,
			want:         true,
		},
		{
			name:         "0 is false",
			key:          "TEST_BOOL",
			value:        "0",
			defaultValue: true,
			want:         false,
		},
		{
			name:         "TRUE uppercase",
			key:          "TEST_BOOL",
			value:        "TRUE",
			defaultValue: false,
			want:         true,
		},
		{
			name:         "FALSE uppercase",
			key:          "TEST_BOOL",
			value:        "FALSE",
			defaultValue: true,
			want:         false,
		},
		{
			name:         "empty value uses default true",
			key:          "TEST_BOOL",
			value:        "",
			defaultValue: true,
			want:         true,
		},
		{
			name:         "empty value uses default false",
			key:          "TEST_BOOL",
			value:        "",
			defaultValue: false,
			want:         false,
		},
		{
			name:         "invalid value uses default",
			key:          "TEST_BOOL",
			value:        "invalid",
			defaultValue: true,
			want:         true,
		},
		{
			name:         "yes is invalid",
			key:          "TEST_BOOL",
			value:        "yes",
			defaultValue: false,
			want:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			if tt.value != "" {
				_ = os.Setenv(tt.key, tt.value)
			}

			got := getBoolEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getBoolEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetFloatEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		value        string
		defaultValue float64
		want         float64
	}{
		{
			name:         "valid float",
			key:          "TEST_FLOAT",
			value:        "3.14",
			defaultValue: 1.0,
			want:         3.14,
		},
		{
			name:         "integer value",
			key:          "TEST_FLOAT",
			value:        "42",
			defaultValue: 1.0,
			want:         42.0,
		},
		{
			name:         "negative float",
			key:          "TEST_FLOAT",
			value:        "-123.456",
			defaultValue: 1.0,
			want:         -123.456,
		},
		{
			name:         "zero value",
			key:          "TEST_FLOAT",
			value:        "0.0",
			defaultValue: 1.0,
			want:         0.0,
		},
		{
			name:         "scientific notation",
			key:          "TEST_FLOAT",
			value:        "1.5e10",
			defaultValue: 1.0,
			want:         1.5e10,
		},
		{
			name:         "empty value uses default",
			key:          "TEST_FLOAT",
			value:        "",
			defaultValue: 99.9,
			want:         99.9,
		},
		{
			name:         "invalid value uses default",
			key:          "TEST_FLOAT",
			value:        "not_a_float",
			defaultValue: 99.9,
			want:         99.9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			if tt.value != "" {
				_ = os.Setenv(tt.key, tt.value)
			}

			got := getFloatEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getFloatEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetMapEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		value        string
		defaultValue map[string]string
		want         map[string]string
	}{
		{
			name:         "single pair",
			key:          "TEST_MAP",
			value:        "Authorization=Bearer abc123",
			defaultValue: nil,
			want:         map[string]string{"Authorization": "Bearer abc123"},
		},
		{
			name:         "multiple pairs",
			key:          "TEST_MAP",
			value:        "X-Header-One=value1,X-Header-Two=value2",
			defaultValue: nil,
			want:         map[string]string{"X-Header-One": "value1", "X-Header-Two": "value2"},
		},
		{
			name:         "pairs with spaces",
			key:          "TEST_MAP",
			value:        " X-Header = value ",
			defaultValue: nil,
			want:         map[string]string{"X-Header": "value"},
		},
		{
			name:         "empty value uses default",
			key:          "TEST_MAP",
			value:        "",
			defaultValue: map[string]string{"X-Default": "yes"},
			want:         map[string]string{"X-Default": "yes"},
		},
		{
			name:         "malformed entry without equals is skipped",
			key:          "TEST_MAP",
			value:        "X-Good=ok,malformed",
			defaultValue: nil,
			want:         map[string]string{"X-Good": "ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			if tt.value != "" {
				_ = os.Setenv(tt.key, tt.value)
			}

			got := getMapEnv(tt.key, tt.defaultValue)
			if len(got) != len(tt.want) {
				t.Errorf("getMapEnv() length = %v, want %v", len(got), len(tt.want))
				return
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("getMapEnv()[%q] = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}

func TestLoad_ConfigValues(t *testing.T) {
	os.Clearenv()

	// Set up a valid configuration with various custom values
	envVars := map[string]string{
		"AUTH_MODE":                  "none",
		"DUCKDB_PATH":                "/custom/path/db.duckdb",
		"DUCKDB_MAX_MEMORY":          "4GB",
		"YOUTUBE_ENABLED":            "true",
		"YOUTUBE_BASE_URL":           "http://localhost:8089/youtube/v3",
		"YOUTUBE_TIMEOUT":            "45s",
		"YOUTUBE_MAX_RETRIES":        "4",
		"YOUTUBE_QUOTA_DAILY_LIMIT":  "50000",
		"GOOGLE_CLIENT_ID":           "client-id.apps.googleusercontent.com",
		"GOOGLE_CLIENT_SECRET":       "client-secret-value",
		"GOOGLE_REDIRECT_URL":        "http://localhost:8480/api/v1/channels/oauth/callback",
		"STRIPE_ENABLED":             "true",
		"STRIPE_API_KEY":             "sk_test_4eC39HqLyjWDarjtT1zdp7dc",
		"STRIPE_WEBHOOK_SECRET":      "whsec_test_secret_value",
		"SCHEDULER_MATERIALIZE_INTERVAL": "30s",
		"SCHEDULER_HORIZON":          "168h",
		"SCHEDULER_MAX_CONCURRENT":   "8",
		"SCHEDULER_DEFAULT_DURATION": "90m",
		"SCHEDULER_RETRY_ATTEMPTS":   "5",
		"SCHEDULER_RETRY_DELAY":      "5s",
		"NOTIFY_BATCH_WINDOW":        "10m",
		"NOTIFY_BATCH_MAX_SIZE":      "50",
		"NOTIFY_ESCALATION_ENABLED":  "true",
		"NOTIFY_ESCALATION_THRESHOLD": "10",
		"NOTIFY_ESCALATION_WINDOW":   "1h",
		"WEBHOOKS_MAX_RETRIES":       "7",
		"WEBHOOKS_INITIAL_BACKOFF":   "30s",
		"WEBHOOKS_MAX_BACKOFF":       "2h",
		"WEBHOOKS_BACKOFF_FACTOR":    "3.0",
		"HTTP_PORT":                  "8080",
		"HTTP_HOST":                  "127.0.0.1",
		"HTTP_TIMEOUT":               "60s",
		"API_DEFAULT_PAGE_SIZE":      "50",
		"API_MAX_PAGE_SIZE":          "200",
		"RATE_LIMIT_REQUESTS":        "200",
		"RATE_LIMIT_WINDOW":          "2m",
		"DISABLE_RATE_LIMIT":         "true",
		"CORS_ORIGINS":               "http://localhost:3000,http://localhost:8080",
		"TRUSTED_PROXIES":            "10.0.0.1,10.0.0.2",
		"LOG_LEVEL":                  "debug",
	}

	for k, v := range envVars {
		_ = os.Setenv(k, v)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Verify all configuration sections using helper functions
	assertDatabaseConfig(t, cfg, "/custom/path/db.duckdb", "4GB", true)
	assertYouTubeConfig(t, cfg, true, "http://localhost:8089/youtube/v3", 45*time.Second, 4, 50000)
	assertStripeConfig(t, cfg, true, "sk_test_4eC39HqLyjWDarjtT1zdp7dc", "whsec_test_secret_value")
	assertSchedulerConfig(t, cfg, 30*time.Second, 168*time.Hour, 90*time.Minute, 5*time.Second, 8, 5)
	assertNotificationsConfig(t, cfg, 10*time.Minute, 50, true, 10, time.Hour)
	assertWebhooksConfig(t, cfg, 7, 30*time.Second, 2*time.Hour, 3.0)
	assertServerConfig(t, cfg, 8080, "127.0.0.1", 60*time.Second)
	assertAPIConfig(t, cfg, 50, 200)
	assertSecurityConfig(t, cfg, "none", 200, 2*time.Minute, true, 2, 2)
	assertLoggingConfig(t, cfg, "debug")
}

func TestLoad_DefaultValues(t *testing.T) {
	os.Clearenv()

	// Set only required values
	envVars := map[string]string{
		"AUTH_MODE": "none",
	}

	for k, v := range envVars {
		_ = os.Setenv(k, v)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Verify default values using helper functions
	assertDatabaseConfig(t, cfg, "/data/tubefleet.duckdb", "2GB", true)
	assertYouTubeConfig(t, cfg, false, "https://www.googleapis.com/youtube/v3", 30*time.Second, 2, 10000)
	assertSchedulerConfig(t, cfg, time.Minute, 14*24*time.Hour, 2*time.Hour, 2*time.Second, 4, 3)
	assertNotificationsConfig(t, cfg, 5*time.Minute, 20, true, 5, 30*time.Minute)
	assertWebhooksConfig(t, cfg, 5, time.Minute, time.Hour, 2.0)
	assertIntEqual(t, cfg.Server.Port, 8480, "Server.Port", "")
	assertStringEqual(t, cfg.Server.Host, "0.0.0.0", "Server.Host")
	assertAPIConfig(t, cfg, 20, 100)
	assertLoggingConfig(t, cfg, "info")
	assertStringEqual(t, cfg.Billing.Currency, "usd", "Billing.Currency")
	assertIntEqual(t, cfg.Billing.TrialDays, 14, "Billing.TrialDays", "")
	assertIntEqual(t, cfg.Billing.GraceDays, 3, "Billing.GraceDays", "")
	assertIntEqual(t, cfg.Monitoring.WarnThreshold, 80, "Monitoring.WarnThreshold", "")
	assertIntEqual(t, cfg.Monitoring.CriticalThreshold, 95, "Monitoring.CriticalThreshold", "")
	assertBoolEqual(t, cfg.Moderation.Enabled, true, "Moderation.Enabled")
	assertBoolEqual(t, cfg.Moderation.AutoAction, true, "Moderation.AutoAction")
}

func TestValidate_AllLogLevels(t *testing.T) {
	validLevels := []string{"debug", "info", "warn", "error"}

	for _, level := range validLevels {
		t.Run("valid_"+level, func(t *testing.T) {
			os.Clearenv()
			os.Setenv("AUTH_MODE", "none")
			os.Setenv("LOG_LEVEL", level)

			cfg, err := Load()
			if err != nil {
				t.Errorf("Load() with LOG_LEVEL=%s unexpected error = %v", level, err)
			}
			if cfg.Logging.Level != level {
				t.Errorf("Logging.Level = %v, want %v", cfg.Logging.Level, level)
			}
		})
	}
}

// =====================================================
// NATS Configuration Tests
// =====================================================

func TestGetInt64Env(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		value        string
		defaultValue int64
		want         int64
	}{
		{
			name:         "valid int64",
			key:          "TEST_INT64",
			value:        "1073741824",
			defaultValue: 0,
			want:         1073741824,
		},
		{
			name:         "negative int64",
			key:          "TEST_INT64",
			value:        "-123456789",
			defaultValue: 0,
			want:         -123456789,
		},
		{
			name:         "empty value uses default",
			key:          "TEST_INT64",
			value:        "",
			defaultValue: 1073741824,
			want:         1073741824,
		},
		{
			name:         "invalid value uses default",
			key:          "TEST_INT64",
			value:        "not_a_number",
			defaultValue: 1073741824,
			want:         1073741824,
		},
		{
			name:         "large value",
			key:          "TEST_INT64",
			value:        "10737418240",
			defaultValue: 0,
			want:         10737418240,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			if tt.value != "" {
				_ = os.Setenv(tt.key, tt.value)
			}

			got := getInt64Env(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getInt64Env() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateNATSURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid nats URL",
			url:     "nats://localhost:4222",
			wantErr: false,
		},
		{
			name:    "valid nats URL with IP",
			url:     "nats://192.168.1.100:4222",
			wantErr: false,
		},
		{
			name:    "valid tls URL",
			url:     "tls://nats.example.com:4222",
			wantErr: false,
		},
		{
			name:    "valid ws URL",
			url:     "ws://localhost:8222",
			wantErr: false,
		},
		{
			name:    "valid wss URL",
			url:     "wss://nats.example.com:443",
			wantErr: false,
		},
		{
			name:    "invalid http scheme",
			url:     "http://localhost:4222",
			wantErr: true,
			errMsg:  "scheme must be nats, tls, ws, or wss",
		},
		{
			name:    "missing host",
			url:     "nats://",
			wantErr: true,
			errMsg:  "host is required",
		},
		{
			name:    "missing scheme",
			url:     "localhost:4222",
			wantErr: true,
			errMsg:  "scheme must be nats, tls, ws, or wss",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateNATSURL(tt.url)

			if tt.wantErr {
				if err == nil {
					t.Errorf("validateNATSURL(%q) expected error containing %q, got nil", tt.url, tt.errMsg)
				} else if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("validateNATSURL(%q) error = %v, want error containing %q", tt.url, err, tt.errMsg)
				}
			} else {
				if err != nil {
					t.Errorf("validateNATSURL(%q) unexpected error = %v", tt.url, err)
				}
			}
		})
	}
}

func TestLoad_NATSConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid NATS configuration",
			envVars: map[string]string{
				"AUTH_MODE":           "none",
				"NATS_ENABLED":        "true",
				"NATS_URL":            "nats://localhost:4222",
				"NATS_EMBEDDED":       "true",
				"NATS_STORE_DIR":      "/data/nats/jetstream",
				"NATS_MAX_MEMORY":     "1073741824",
				"NATS_MAX_STORE":      "10737418240",
				"NATS_RETENTION_DAYS": "7",
				"NATS_SUBSCRIBERS":    "4",
			},
			wantErr: false,
		},
		{
			name: "NATS invalid URL scheme",
			envVars: map[string]string{
				"AUTH_MODE":    "none",
				"NATS_ENABLED": "true",
				"NATS_URL":     "http://localhost:4222",
			},
			wantErr: true,
			errMsg:  "NATS_URL is invalid",
		},
		{
			name: "NATS max memory too low",
			envVars: map[string]string{
				"AUTH_MODE":       "none",
				"NATS_ENABLED":    "true",
				"NATS_URL":        "nats://localhost:4222",
				"NATS_MAX_MEMORY": "1000000", // Less than 64MB
			},
			wantErr: true,
			errMsg:  "NATS_MAX_MEMORY must be at least 64MB",
		},
		{
			name: "NATS max store too low",
			envVars: map[string]string{
				"AUTH_MODE":       "none",
				"NATS_ENABLED":    "true",
				"NATS_URL":        "nats://localhost:4222",
				"NATS_MAX_MEMORY": "67108864",
				"NATS_MAX_STORE":  "1000000", // Less than 100MB
			},
			wantErr: true,
			errMsg:  "NATS_MAX_STORE must be at least 100MB",
		},
		{
			name: "NATS retention days too low",
			envVars: map[string]string{
				"AUTH_MODE":           "none",
				"NATS_ENABLED":        "true",
				"NATS_URL":            "nats://localhost:4222",
				"NATS_RETENTION_DAYS": "0",
			},
			wantErr: true,
			errMsg:  "NATS_RETENTION_DAYS must be between 1 and 365",
		},
		{
			name: "NATS retention days too high",
			envVars: map[string]string{
				"AUTH_MODE":           "none",
				"NATS_ENABLED":        "true",
				"NATS_URL":            "nats://localhost:4222",
				"NATS_RETENTION_DAYS": "400",
			},
			wantErr: true,
			errMsg:  "NATS_RETENTION_DAYS must be between 1 and 365",
		},
		{
			name: "NATS subscribers too low",
			envVars: map[string]string{
				"AUTH_MODE":        "none",
				"NATS_ENABLED":     "true",
				"NATS_URL":         "nats://localhost:4222",
				"NATS_SUBSCRIBERS": "0",
			},
			wantErr: true,
			errMsg:  "NATS_SUBSCRIBERS must be between 1 and 32",
		},
		{
			name: "NATS subscribers too high",
			envVars: map[string]string{
				"AUTH_MODE":        "none",
				"NATS_ENABLED":     "true",
				"NATS_URL":         "nats://localhost:4222",
				"NATS_SUBSCRIBERS": "100",
			},
			wantErr: true,
			errMsg:  "NATS_SUBSCRIBERS must be between 1 and 32",
		},
		{
			name: "NATS router retry count too high",
			envVars: map[string]string{
				"AUTH_MODE":               "none",
				"NATS_ENABLED":            "true",
				"NATS_URL":                "nats://localhost:4222",
				"NATS_ROUTER_RETRY_COUNT": "50",
			},
			wantErr: true,
			errMsg:  "NATS_ROUTER_RETRY_COUNT must be between 0 and 10",
		},
		{
			name: "NATS poison queue requires topic",
			envVars: map[string]string{
				"AUTH_MODE":                 "none",
				"NATS_ENABLED":              "true",
				"NATS_URL":                  "nats://localhost:4222",
				"NATS_ROUTER_POISON_ENABLED": "true",
				"NATS_ROUTER_POISON_TOPIC":  "",
			},
			wantErr: true,
			errMsg:  "NATS_ROUTER_POISON_TOPIC is required",
		},
		{
			name: "NATS disabled doesn't validate NATS config",
			envVars: map[string]string{
				"AUTH_MODE":    "none",
				"NATS_ENABLED": "false",
				// Invalid values should be ignored when disabled
				"NATS_URL":         "invalid_url",
				"NATS_SUBSCRIBERS": "0",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.envVars {
				_ = os.Setenv(k, v)
			}

			cfg, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error containing %q, got nil", tt.errMsg)
				} else if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Load() error = %v, want error containing %q", err, tt.errMsg)
				}
			} else {
				if err != nil {
					t.Errorf("Load() unexpected error = %v", err)
				}
				if cfg == nil {
					t.Error("Load() returned nil config")
				}
			}
		})
	}
}

func TestLoad_NATSConfigValues(t *testing.T) {
	os.Clearenv()

	// Set up a valid configuration with NATS values
	envVars := map[string]string{
		"AUTH_MODE":           "none",
		"NATS_ENABLED":        "true",
		"NATS_URL":            "nats://nats-server:4222",
		"NATS_EMBEDDED":       "false",
		"NATS_STORE_DIR":      "/custom/nats/store",
		"NATS_MAX_MEMORY":     "2147483648",
		"NATS_MAX_STORE":      "21474836480",
		"NATS_RETENTION_DAYS": "14",
		"NATS_SUBSCRIBERS":    "8",
		"NATS_DURABLE_NAME":   "custom-workers",
		"NATS_QUEUE_GROUP":    "custom-group",
	}

	for k, v := range envVars {
		_ = os.Setenv(k, v)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Verify NATS configuration
	assertBoolEqual(t, cfg.NATS.Enabled, true, "NATS.Enabled")
	assertStringEqual(t, cfg.NATS.URL, "nats://nats-server:4222", "NATS.URL")
	assertBoolEqual(t, cfg.NATS.EmbeddedServer, false, "NATS.EmbeddedServer")
	assertStringEqual(t, cfg.NATS.StoreDir, "/custom/nats/store", "NATS.StoreDir")
	if cfg.NATS.MaxMemory != 2147483648 {
		t.Errorf("NATS.MaxMemory = %v, want %v", cfg.NATS.MaxMemory, 2147483648)
	}
	if cfg.NATS.MaxStore != 21474836480 {
		t.Errorf("NATS.MaxStore = %v, want %v", cfg.NATS.MaxStore, 21474836480)
	}
	assertIntEqual(t, cfg.NATS.StreamRetentionDays, 14, "NATS.StreamRetentionDays", "")
	assertIntEqual(t, cfg.NATS.SubscribersCount, 8, "NATS.SubscribersCount", "")
	assertStringEqual(t, cfg.NATS.DurableName, "custom-workers", "NATS.DurableName")
	assertStringEqual(t, cfg.NATS.QueueGroup, "custom-group", "NATS.QueueGroup")
}

func TestLoad_NATSDefaultValues(t *testing.T) {
	os.Clearenv()

	// Set only required values
	envVars := map[string]string{
		"AUTH_MODE": "none",
	}

	for k, v := range envVars {
		_ = os.Setenv(k, v)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Verify NATS default values (enabled with embedded JetStream by default)
	assertBoolEqual(t, cfg.NATS.Enabled, true, "NATS.Enabled")
	assertStringEqual(t, cfg.NATS.URL, "nats://127.0.0.1:4222", "NATS.URL")
	assertBoolEqual(t, cfg.NATS.EmbeddedServer, true, "NATS.EmbeddedServer")
	assertStringEqual(t, cfg.NATS.StoreDir, "/data/nats/jetstream", "NATS.StoreDir")
	if cfg.NATS.MaxMemory != 1<<30 { // 1GB
		t.Errorf("NATS.MaxMemory = %v, want %v", cfg.NATS.MaxMemory, 1<<30)
	}
	if cfg.NATS.MaxStore != 10<<30 { // 10GB
		t.Errorf("NATS.MaxStore = %v, want %v", cfg.NATS.MaxStore, 10<<30)
	}
	assertIntEqual(t, cfg.NATS.StreamRetentionDays, 7, "NATS.StreamRetentionDays", "")
	assertIntEqual(t, cfg.NATS.SubscribersCount, 4, "NATS.SubscribersCount", "")
	assertStringEqual(t, cfg.NATS.DurableName, "tubefleet-workers", "NATS.DurableName")
	assertStringEqual(t, cfg.NATS.QueueGroup, "workers", "NATS.QueueGroup")
	assertBoolEqual(t, cfg.NATS.RouterDeduplicationEnabled, true, "NATS.RouterDeduplicationEnabled")
	assertBoolEqual(t, cfg.NATS.RouterPoisonQueueEnabled, true, "NATS.RouterPoisonQueueEnabled")
	assertStringEqual(t, cfg.NATS.RouterPoisonQueueTopic, "tubefleet.poison", "NATS.RouterPoisonQueueTopic")
}

// =====================================================
// Domain Section Bounds Tests
// =====================================================

func TestLoad_SchedulerConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		errMsg  string
	}{
		{
			name: "materialize interval too short",
			envVars: map[string]string{
				"AUTH_MODE":                      "none",
				"SCHEDULER_MATERIALIZE_INTERVAL": "5s",
			},
			wantErr: true,
			errMsg:  "SCHEDULER_MATERIALIZE_INTERVAL must be between 10s and 1h",
		},
		{
			name: "horizon too long",
			envVars: map[string]string{
				"AUTH_MODE":         "none",
				"SCHEDULER_HORIZON": "2400h",
			},
			wantErr: true,
			errMsg:  "SCHEDULER_HORIZON must be between 1h and 2160h",
		},
		{
			name: "horizon too short",
			envVars: map[string]string{
				"AUTH_MODE":         "none",
				"SCHEDULER_HORIZON": "30m",
			},
			wantErr: true,
			errMsg:  "SCHEDULER_HORIZON must be between 1h and 2160h",
		},
		{
			name: "default duration too long",
			envVars: map[string]string{
				"AUTH_MODE":                  "none",
				"SCHEDULER_DEFAULT_DURATION": "24h",
			},
			wantErr: true,
			errMsg:  "SCHEDULER_DEFAULT_DURATION must be between 1m and 12h",
		},
		{
			name: "max concurrent too high",
			envVars: map[string]string{
				"AUTH_MODE":                "none",
				"SCHEDULER_MAX_CONCURRENT": "128",
			},
			wantErr: true,
			errMsg:  "SCHEDULER_MAX_CONCURRENT must be between 1 and 64",
		},
		{
			name: "disabled skips validation",
			envVars: map[string]string{
				"AUTH_MODE":         "none",
				"SCHEDULER_ENABLED": "false",
				"SCHEDULER_HORIZON": "9000h",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.envVars {
				_ = os.Setenv(k, v)
			}

			_, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error containing %q, got nil", tt.errMsg)
				} else if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Load() error = %v, want error containing %q", err, tt.errMsg)
				}
			} else if err != nil {
				t.Errorf("Load() unexpected error = %v", err)
			}
		})
	}
}

func TestLoad_NotificationsConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		errMsg  string
	}{
		{
			name: "batch window too short",
			envVars: map[string]string{
				"AUTH_MODE":           "none",
				"NOTIFY_BATCH_WINDOW": "5s",
			},
			wantErr: true,
			errMsg:  "NOTIFY_BATCH_WINDOW must be between 10s and 1h",
		},
		{
			name: "batch max size too high",
			envVars: map[string]string{
				"AUTH_MODE":             "none",
				"NOTIFY_BATCH_MAX_SIZE": "5000",
			},
			wantErr: true,
			errMsg:  "NOTIFY_BATCH_MAX_SIZE must be between 1 and 1000",
		},
		{
			name: "escalation threshold too high",
			envVars: map[string]string{
				"AUTH_MODE":                   "none",
				"NOTIFY_ESCALATION_THRESHOLD": "500",
			},
			wantErr: true,
			errMsg:  "NOTIFY_ESCALATION_THRESHOLD must be between 1 and 100",
		},
		{
			name: "SMTP enabled requires host",
			envVars: map[string]string{
				"AUTH_MODE":    "none",
				"SMTP_ENABLED": "true",
				"SMTP_FROM":    "alerts@tubefleet.example.com",
			},
			wantErr: true,
			errMsg:  "SMTP_HOST is required when SMTP_ENABLED=true",
		},
		{
			name: "SMTP enabled requires from address",
			envVars: map[string]string{
				"AUTH_MODE":    "none",
				"SMTP_ENABLED": "true",
				"SMTP_HOST":    "smtp.example.com",
			},
			wantErr: true,
			errMsg:  "SMTP_FROM is required when SMTP_ENABLED=true",
		},
		{
			name: "admin webhook enabled requires URL",
			envVars: map[string]string{
				"AUTH_MODE":             "none",
				"ADMIN_WEBHOOK_ENABLED": "true",
			},
			wantErr: true,
			errMsg:  "ADMIN_WEBHOOK_URL is required when ADMIN_WEBHOOK_ENABLED=true",
		},
		{
			name: "valid SMTP configuration",
			envVars: map[string]string{
				"AUTH_MODE":    "none",
				"SMTP_ENABLED": "true",
				"SMTP_HOST":    "smtp.example.com",
				"SMTP_PORT":    "587",
				"SMTP_FROM":    "alerts@tubefleet.example.com",
			},
			wantErr: false,
		},
		{
			name: "disabled skips validation",
			envVars: map[string]string{
				"AUTH_MODE":           "none",
				"NOTIFY_ENABLED":      "false",
				"NOTIFY_BATCH_WINDOW": "1s",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.envVars {
				_ = os.Setenv(k, v)
			}

			_, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error containing %q, got nil", tt.errMsg)
				} else if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Load() error = %v, want error containing %q", err, tt.errMsg)
				}
			} else if err != nil {
				t.Errorf("Load() unexpected error = %v", err)
			}
		})
	}
}

func TestLoad_ModerationAndMonitoring(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		errMsg  string
	}{
		{
			name: "pattern length too long",
			envVars: map[string]string{
				"AUTH_MODE":                     "none",
				"MODERATION_MAX_PATTERN_LENGTH": "10000",
			},
			wantErr: true,
			errMsg:  "MODERATION_MAX_PATTERN_LENGTH must be between 1 and 4096",
		},
		{
			name: "cache size too large",
			envVars: map[string]string{
				"AUTH_MODE":             "none",
				"MODERATION_CACHE_SIZE": "2000000",
			},
			wantErr: true,
			errMsg:  "MODERATION_CACHE_SIZE must be between 0 and 1000000",
		},
		{
			name: "collect interval too short",
			envVars: map[string]string{
				"AUTH_MODE":                "none",
				"MONITOR_COLLECT_INTERVAL": "1s",
			},
			wantErr: true,
			errMsg:  "MONITOR_COLLECT_INTERVAL must be between 10s and 24h",
		},
		{
			name: "warn threshold out of range",
			envVars: map[string]string{
				"AUTH_MODE":              "none",
				"MONITOR_WARN_THRESHOLD": "150",
			},
			wantErr: true,
			errMsg:  "MONITOR_WARN_THRESHOLD must be between 1 and 100",
		},
		{
			name: "warn threshold above critical",
			envVars: map[string]string{
				"AUTH_MODE":                  "none",
				"MONITOR_WARN_THRESHOLD":     "95",
				"MONITOR_CRITICAL_THRESHOLD": "90",
			},
			wantErr: true,
			errMsg:  "MONITOR_WARN_THRESHOLD must be less than MONITOR_CRITICAL_THRESHOLD",
		},
		{
			name: "moderation disabled skips validation",
			envVars: map[string]string{
				"AUTH_MODE":                     "none",
				"MODERATION_ENABLED":            "false",
				"MODERATION_MAX_PATTERN_LENGTH": "10000",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.envVars {
				_ = os.Setenv(k, v)
			}

			_, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error containing %q, got nil", tt.errMsg)
				} else if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Load() error = %v, want error containing %q", err, tt.errMsg)
				}
			} else if err != nil {
				t.Errorf("Load() unexpected error = %v", err)
			}
		})
	}
}

// =====================================================
// Production Environment Tests
// =====================================================

func TestLoad_ProductionSafety(t *testing.T) {
	tests := []struct {
		name        string
		envVars     map[string]string
		wantErr     bool
		errContains string
	}{
		{
			name: "AUTH_MODE=none rejected in production",
			envVars: map[string]string{
				"ENVIRONMENT": "production",
				"AUTH_MODE":   "none",
			},
			wantErr:     true,
			errContains: "AUTH_MODE=none is not allowed when ENVIRONMENT=production",
		},
		{
			name: "AUTH_MODE=none rejected in prod shorthand",
			envVars: map[string]string{
				"ENVIRONMENT": "prod",
				"AUTH_MODE":   "none",
			},
			wantErr:     true,
			errContains: "AUTH_MODE=none is not allowed when ENVIRONMENT=production",
		},
		{
			name: "wildcard CORS rejected in production with auth",
			envVars: map[string]string{
				"ENVIRONMENT":    "production",
				"AUTH_MODE":      "jwt",
				"JWT_SECRET":     "this_is_a_very_long_secret_key_with_more_than_32_characters",
				"ADMIN_USERNAME": "admin",
				"ADMIN_PASSWORD": "SecureP@ss123!",
				"CORS_ORIGINS":   "*",
			},
			wantErr:     true,
			errContains: "CORS_ORIGINS=* (wildcard) is not allowed in production",
		},
		{
			name: "specific CORS origins allowed in production",
			envVars: map[string]string{
				"ENVIRONMENT":    "production",
				"AUTH_MODE":      "jwt",
				"JWT_SECRET":     "this_is_a_very_long_secret_key_with_more_than_32_characters",
				"ADMIN_USERNAME": "admin",
				"ADMIN_PASSWORD": "SecureP@ss123!",
				"CORS_ORIGINS":   "https://studio.tubefleet.example.com",
			},
			wantErr: false,
		},
		{
			name: "AUTH_MODE=none allowed in development",
			envVars: map[string]string{
				"ENVIRONMENT": "development",
				"AUTH_MODE":   "none",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.envVars {
				_ = os.Setenv(k, v)
			}

			_, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error containing %q, got nil", tt.errContains)
				} else if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("Load() error = %v, want error containing %q", err, tt.errContains)
				}
			} else if err != nil {
				t.Errorf("Load() unexpected error = %v", err)
			}
		})
	}
}

func TestIsProduction(t *testing.T) {
	tests := []struct {
		environment string
		want        bool
	}{
		{"production", true},
		{"prod", true},
		{"PRODUCTION", true},
		{"Production", true},
		{"development", false},
		{"dev", false},
		{"staging", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run("env_"+tt.environment, func(t *testing.T) {
			cfg := &Config{Server: ServerConfig{Environment: tt.environment}}
			if got := cfg.IsProduction(); got != tt.want {
				t.Errorf("IsProduction() with %q = %v, want %v", tt.environment, got, tt.want)
			}
		})
	}
}

func TestIsDevelopment(t *testing.T) {
	tests := []struct {
		environment string
		want        bool
	}{
		{"development", true},
		{"dev", true},
		{"", true},
		{"DEV", true},
		{"production", false},
		{"staging", false},
	}

	for _, tt := range tests {
		t.Run("env_"+tt.environment, func(t *testing.T) {
			cfg := &Config{Server: ServerConfig{Environment: tt.environment}}
			if got := cfg.IsDevelopment(); got != tt.want {
				t.Errorf("IsDevelopment() with %q = %v, want %v", tt.environment, got, tt.want)
			}
		})
	}
}

func TestShouldWarnAboutCORS(t *testing.T) {
	tests := []struct {
		name        string
		authMode    string
		corsOrigins []string
		want        bool
	}{
		{
			name:        "wildcard with jwt auth warns",
			authMode:    "jwt",
			corsOrigins: []string{"*"},
			want:        true,
		},
		{
			name:        "wildcard with no auth does not warn",
			authMode:    "none",
			corsOrigins: []string{"*"},
			want:        false,
		},
		{
			name:        "specific origins do not warn",
			authMode:    "jwt",
			corsOrigins: []string{"https://studio.example.com"},
			want:        false,
		},
		{
			name:        "wildcard among specific origins warns",
			authMode:    "basic",
			corsOrigins: []string{"https://studio.example.com", "*"},
			want:        true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Security: SecurityConfig{
					AuthMode:    tt.authMode,
					CORSOrigins: tt.corsOrigins,
				},
			}
			if got := cfg.ShouldWarnAboutCORS(); got != tt.want {
				t.Errorf("ShouldWarnAboutCORS() = %v, want %v", got, tt.want)
			}
		})
	}
}

// =====================================================
// Direct Validator Tests
// =====================================================

func TestValidateRateLimits(t *testing.T) {
	tests := []struct {
		name        string
		requests    int
		window      time.Duration
		disabled    bool
		wantErr     bool
		errContains string
	}{
		{
			name:     "valid defaults",
			requests: 100,
			window:   time.Minute,
			disabled: false,
			wantErr:  false,
		},
		{
			name:     "valid minimum requests",
			requests: 1,
			window:   time.Minute,
			disabled: false,
			wantErr:  false,
		},
		{
			name:     "valid maximum requests",
			requests: 100000,
			window:   time.Minute,
			disabled: false,
			wantErr:  false,
		},
		{
			name:     "valid minimum window",
			requests: 100,
			window:   time.Second,
			disabled: false,
			wantErr:  false,
		},
		{
			name:     "valid maximum window",
			requests: 100,
			window:   time.Hour,
			disabled: false,
			wantErr:  false,
		},
		{
			name:        "invalid zero requests",
			requests:    0,
			window:      time.Minute,
			disabled:    false,
			wantErr:     true,
			errContains: "RATE_LIMIT_REQUESTS",
		},
		{
			name:        "invalid negative requests",
			requests:    -1,
			window:      time.Minute,
			disabled:    false,
			wantErr:     true,
			errContains: "RATE_LIMIT_REQUESTS",
		},
		{
			name:        "invalid too many requests",
			requests:    100001,
			window:      time.Minute,
			disabled:    false,
			wantErr:     true,
			errContains: "RATE_LIMIT_REQUESTS",
		},
		{
			name:        "invalid zero window",
			requests:    100,
			window:      0,
			disabled:    false,
			wantErr:     true,
			errContains: "RATE_LIMIT_WINDOW",
		},
		{
			name:        "invalid window too small",
			requests:    100,
			window:      500 * time.Millisecond,
			disabled:    false,
			wantErr:     true,
			errContains: "RATE_LIMIT_WINDOW",
		},
		{
			name:        "invalid window too large",
			requests:    100,
			window:      2 * time.Hour,
			disabled:    false,
			wantErr:     true,
			errContains: "RATE_LIMIT_WINDOW",
		},
		{
			name:     "disabled skips validation",
			requests: 0, // Would be invalid if enabled
			window:   0, // Would be invalid if enabled
			disabled: true,
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Security: SecurityConfig{
					RateLimitReqs:     tt.requests,
					RateLimitWindow:   tt.window,
					RateLimitDisabled: tt.disabled,
				},
			}

			err := cfg.validateRateLimits()

			if tt.wantErr {
				if err == nil {
					t.Errorf("validateRateLimits() expected error containing %q, got nil", tt.errContains)
				} else if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("validateRateLimits() error = %v, want error containing %q", err, tt.errContains)
				}
			} else {
				if err != nil {
					t.Errorf("validateRateLimits() unexpected error = %v", err)
				}
			}
		})
	}
}

func TestValidateLockout(t *testing.T) {
	tests := []struct {
		name        string
		threshold   int
		duration    time.Duration
		wantErr     bool
		errContains string
	}{
		{
			name:      "valid defaults",
			threshold: 5,
			duration:  15 * time.Minute,
			wantErr:   false,
		},
		{
			name:      "zero threshold disables lockout",
			threshold: 0,
			duration:  0,
			wantErr:   false,
		},
		{
			name:        "threshold too high",
			threshold:   50,
			duration:    15 * time.Minute,
			wantErr:     true,
			errContains: "LOCKOUT_THRESHOLD",
		},
		{
			name:        "negative threshold",
			threshold:   -1,
			duration:    15 * time.Minute,
			wantErr:     true,
			errContains: "LOCKOUT_THRESHOLD",
		},
		{
			name:        "duration too short",
			threshold:   5,
			duration:    30 * time.Second,
			wantErr:     true,
			errContains: "LOCKOUT_DURATION",
		},
		{
			name:        "duration too long",
			threshold:   5,
			duration:    48 * time.Hour,
			wantErr:     true,
			errContains: "LOCKOUT_DURATION",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Security: SecurityConfig{
					LockoutThreshold: tt.threshold,
					LockoutDuration:  tt.duration,
				},
			}

			err := cfg.validateLockout()

			if tt.wantErr {
				if err == nil {
					t.Errorf("validateLockout() expected error containing %q, got nil", tt.errContains)
				} else if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("validateLockout() error = %v, want error containing %q", err, tt.errContains)
				}
			} else {
				if err != nil {
					t.Errorf("validateLockout() unexpected error = %v", err)
				}
			}
		})
	}
}
