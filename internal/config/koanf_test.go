// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	// YouTube defaults (disabled - credentials required to enable)
	if cfg.YouTube.Enabled != false {
		t.Errorf("YouTube.Enabled should be false by default")
	}
	if cfg.YouTube.BaseURL != "https://www.googleapis.com/youtube/v3" {
		t.Errorf("YouTube.BaseURL = %q, want https://www.googleapis.com/youtube/v3", cfg.YouTube.BaseURL)
	}
	if cfg.YouTube.QuotaDailyLimit != 10000 {
		t.Errorf("YouTube.QuotaDailyLimit = %d, want 10000", cfg.YouTube.QuotaDailyLimit)
	}

	// Stripe defaults (disabled)
	if cfg.Stripe.Enabled != false {
		t.Errorf("Stripe.Enabled should be false by default")
	}
	if cfg.Stripe.BaseURL != "https://api.stripe.com" {
		t.Errorf("Stripe.BaseURL = %q, want https://api.stripe.com", cfg.Stripe.BaseURL)
	}

	// NATS defaults (enabled)
	if cfg.NATS.Enabled != true {
		t.Errorf("NATS.Enabled should be true by default")
	}
	if cfg.NATS.URL != "nats://127.0.0.1:4222" {
		t.Errorf("NATS.URL = %q, want nats://127.0.0.1:4222", cfg.NATS.URL)
	}
	if cfg.NATS.MaxMemory != 1<<30 {
		t.Errorf("NATS.MaxMemory = %d, want 1GB", cfg.NATS.MaxMemory)
	}
	if cfg.NATS.MaxStore != 10<<30 {
		t.Errorf("NATS.MaxStore = %d, want 10GB", cfg.NATS.MaxStore)
	}
	if cfg.NATS.DurableName != "tubefleet-workers" {
		t.Errorf("NATS.DurableName = %q, want tubefleet-workers", cfg.NATS.DurableName)
	}

	// Database defaults
	if cfg.Database.Path != "/data/tubefleet.duckdb" {
		t.Errorf("Database.Path = %q, want /data/tubefleet.duckdb", cfg.Database.Path)
	}
	if cfg.Database.MaxMemory != "2GB" {
		t.Errorf("Database.MaxMemory = %q, want 2GB", cfg.Database.MaxMemory)
	}

	// Scheduler defaults
	if cfg.Scheduler.Enabled != true {
		t.Errorf("Scheduler.Enabled should be true by default")
	}
	if cfg.Scheduler.Horizon != 14*24*time.Hour {
		t.Errorf("Scheduler.Horizon = %v, want 336h", cfg.Scheduler.Horizon)
	}
	if cfg.Scheduler.DefaultDuration != 2*time.Hour {
		t.Errorf("Scheduler.DefaultDuration = %v, want 2h", cfg.Scheduler.DefaultDuration)
	}

	// Notification defaults
	if cfg.Notifications.BatchWindow != 5*time.Minute {
		t.Errorf("Notifications.BatchWindow = %v, want 5m", cfg.Notifications.BatchWindow)
	}
	if cfg.Notifications.EscalationThreshold != 5 {
		t.Errorf("Notifications.EscalationThreshold = %d, want 5", cfg.Notifications.EscalationThreshold)
	}

	// Monitoring defaults
	if cfg.Monitoring.WarnThreshold != 80 {
		t.Errorf("Monitoring.WarnThreshold = %d, want 80", cfg.Monitoring.WarnThreshold)
	}
	if cfg.Monitoring.CriticalThreshold != 95 {
		t.Errorf("Monitoring.CriticalThreshold = %d, want 95", cfg.Monitoring.CriticalThreshold)
	}

	// Webhook defaults
	if cfg.Webhooks.MaxRetries != 5 {
		t.Errorf("Webhooks.MaxRetries = %d, want 5", cfg.Webhooks.MaxRetries)
	}
	if cfg.Webhooks.InitialBackoff != time.Minute {
		t.Errorf("Webhooks.InitialBackoff = %v, want 1m", cfg.Webhooks.InitialBackoff)
	}

	// Server defaults
	if cfg.Server.Port != 8480 {
		t.Errorf("Server.Port = %d, want 8480", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0", cfg.Server.Host)
	}

	// API defaults
	if cfg.API.DefaultPageSize != 20 {
		t.Errorf("API.DefaultPageSize = %d, want 20", cfg.API.DefaultPageSize)
	}
	if cfg.API.MaxPageSize != 100 {
		t.Errorf("API.MaxPageSize = %d, want 100", cfg.API.MaxPageSize)
	}

	// Security defaults
	if cfg.Security.AuthMode != "jwt" {
		t.Errorf("Security.AuthMode = %q, want jwt", cfg.Security.AuthMode)
	}
	if cfg.Security.RateLimitReqs != 100 {
		t.Errorf("Security.RateLimitReqs = %d, want 100", cfg.Security.RateLimitReqs)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "*" {
		t.Errorf("Security.CORSOrigins = %v, want [*]", cfg.Security.CORSOrigins)
	}
	if cfg.Security.LockoutThreshold != 5 {
		t.Errorf("Security.LockoutThreshold = %d, want 5", cfg.Security.LockoutThreshold)
	}
	if cfg.Security.SessionStore != "badger" {
		t.Errorf("Security.SessionStore = %q, want badger", cfg.Security.SessionStore)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

// TestEnvTransformFunc verifies environment variable name transformations
func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// YouTube
		{"YOUTUBE_ENABLED", "youtube.enabled"},
		{"YOUTUBE_BASE_URL", "youtube.base_url"},
		{"YOUTUBE_QUOTA_DAILY_LIMIT", "youtube.quota_daily_limit"},

		// Stripe
		{"STRIPE_API_KEY", "stripe.api_key"},
		{"STRIPE_WEBHOOK_SECRET", "stripe.webhook_secret"},

		// Chatbot
		{"CHATBOT_MODEL", "chatbot.model"},
		{"CHATBOT_TEMPERATURE", "chatbot.temperature"},

		// NATS
		{"NATS_ENABLED", "nats.enabled"},
		{"NATS_URL", "nats.url"},
		{"NATS_EMBEDDED", "nats.embedded_server"},
		{"NATS_MAX_MEMORY", "nats.max_memory"},
		{"NATS_RETENTION_DAYS", "nats.stream_retention_days"},

		// Database
		{"DUCKDB_PATH", "database.path"},
		{"DUCKDB_MAX_MEMORY", "database.max_memory"},

		// Scheduler
		{"SCHEDULER_HORIZON", "scheduler.horizon"},
		{"SCHEDULER_DEFAULT_DURATION", "scheduler.default_duration"},

		// Notifications
		{"NOTIFY_BATCH_WINDOW", "notifications.batch_window"},
		{"SMTP_HOST", "notifications.email.host"},
		{"ADMIN_WEBHOOK_URL", "notifications.admin_webhook.webhook_url"},

		// Server
		{"HTTP_PORT", "server.port"},
		{"HTTP_HOST", "server.host"},
		{"HTTP_TIMEOUT", "server.timeout"},
		{"ENVIRONMENT", "server.environment"},

		// Security
		{"AUTH_MODE", "security.auth_mode"},
		{"JWT_SECRET", "security.jwt_secret"},
		{"ADMIN_USERNAME", "security.admin_username"},
		{"RATE_LIMIT_REQUESTS", "security.rate_limit_reqs"},
		{"DISABLE_RATE_LIMIT", "security.rate_limit_disabled"},
		{"GOOGLE_CLIENT_ID", "security.google.client_id"},
		{"CASBIN_DEFAULT_ROLE", "security.casbin.default_role"},

		// Logging
		{"LOG_LEVEL", "logging.level"},

		// Unknown (should return empty)
		{"RANDOM_VAR", ""},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := envTransformFunc(tt.input)
			if result != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

// TestFindConfigFile verifies config file discovery
func TestFindConfigFile(t *testing.T) {
	// Create a temporary directory for test files
	tmpDir, err := os.MkdirTemp("", "config_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// Save original working directory
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	defer func() {
		if err := os.Chdir(origDir); err != nil {
			t.Errorf("Failed to restore working directory: %v", err)
		}
	}()

	// Change to temp directory
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}

	t.Run("no config file exists", func(t *testing.T) {
		os.Unsetenv(ConfigPathEnvVar)
		result := findConfigFile()
		if result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})

	t.Run("config.yaml exists", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, "config.yaml")
		if err := os.WriteFile(configPath, []byte("test: true"), 0644); err != nil {
			t.Fatalf("Failed to create config file: %v", err)
		}
		defer os.Remove(configPath)

		os.Unsetenv(ConfigPathEnvVar)
		result := findConfigFile()
		if result != "config.yaml" {
			t.Errorf("findConfigFile() = %q, want config.yaml", result)
		}
	})

	t.Run("CONFIG_PATH env var takes precedence", func(t *testing.T) {
		// Create a custom config file
		customPath := filepath.Join(tmpDir, "custom_config.yaml")
		if err := os.WriteFile(customPath, []byte("test: true"), 0644); err != nil {
			t.Fatalf("Failed to create custom config file: %v", err)
		}
		defer os.Remove(customPath)

		os.Setenv(ConfigPathEnvVar, customPath)
		defer os.Unsetenv(ConfigPathEnvVar)

		result := findConfigFile()
		if result != customPath {
			t.Errorf("findConfigFile() = %q, want %q", result, customPath)
		}
	})

	t.Run("CONFIG_PATH env var with non-existent file", func(t *testing.T) {
		os.Setenv(ConfigPathEnvVar, "/non/existent/config.yaml")
		defer os.Unsetenv(ConfigPathEnvVar)

		result := findConfigFile()
		// Should fall back to default paths (which don't exist in temp dir)
		if result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})
}

// TestLoadWithKoanfEnvVars tests loading configuration from environment variables
func TestLoadWithKoanfEnvVars(t *testing.T) {
	// Clear all environment variables
	os.Clearenv()

	// Minimal valid configuration
	os.Setenv("AUTH_MODE", "none")

	// Set some custom values to override defaults
	os.Setenv("HTTP_PORT", "9000")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("SCHEDULER_HORIZON", "168h")
	os.Setenv("NOTIFY_BATCH_MAX_SIZE", "50")
	os.Setenv("CORS_ORIGINS", "https://app.example.com,https://admin.example.com")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	// Verify custom overrides
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Scheduler.Horizon != 7*24*time.Hour {
		t.Errorf("Scheduler.Horizon = %v, want 168h", cfg.Scheduler.Horizon)
	}
	if cfg.Notifications.BatchMaxSize != 50 {
		t.Errorf("Notifications.BatchMaxSize = %d, want 50", cfg.Notifications.BatchMaxSize)
	}

	// Comma-separated env var becomes a slice
	if len(cfg.Security.CORSOrigins) != 2 {
		t.Fatalf("Security.CORSOrigins = %v, want 2 origins", cfg.Security.CORSOrigins)
	}
	if cfg.Security.CORSOrigins[0] != "https://app.example.com" {
		t.Errorf("Security.CORSOrigins[0] = %q, want https://app.example.com", cfg.Security.CORSOrigins[0])
	}

	// Verify defaults are still applied for unset values
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0 (default)", cfg.Server.Host)
	}
	if cfg.Database.MaxMemory != "2GB" {
		t.Errorf("Database.MaxMemory = %q, want 2GB (default)", cfg.Database.MaxMemory)
	}
}

// TestLoadWithKoanfConfigFile tests loading configuration from a YAML file
func TestLoadWithKoanfConfigFile(t *testing.T) {
	// Create a temporary directory
	tmpDir, err := os.MkdirTemp("", "config_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// Create a test config file
	configContent := `
server:
  port: 8888
  host: "127.0.0.1"

scheduler:
  horizon: "72h"
  default_duration: "90m"

security:
  auth_mode: "none"

logging:
  level: "warn"
`
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}

	// Clear environment and set CONFIG_PATH
	os.Clearenv()
	os.Setenv(ConfigPathEnvVar, configPath)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	// Verify values from config file
	if cfg.Server.Port != 8888 {
		t.Errorf("Server.Port = %d, want 8888", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want 127.0.0.1", cfg.Server.Host)
	}
	if cfg.Scheduler.Horizon != 72*time.Hour {
		t.Errorf("Scheduler.Horizon = %v, want 72h", cfg.Scheduler.Horizon)
	}
	if cfg.Scheduler.DefaultDuration != 90*time.Minute {
		t.Errorf("Scheduler.DefaultDuration = %v, want 90m", cfg.Scheduler.DefaultDuration)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}

	// Verify defaults are still applied for unset values
	if cfg.Database.Path != "/data/tubefleet.duckdb" {
		t.Errorf("Database.Path = %q, want /data/tubefleet.duckdb (default)", cfg.Database.Path)
	}
}

// TestLoadWithKoanfEnvOverridesFile tests that env vars override config file
func TestLoadWithKoanfEnvOverridesFile(t *testing.T) {
	// Create a temporary directory
	tmpDir, err := os.MkdirTemp("", "config_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// Create a test config file with some values
	configContent := `
server:
  port: 8888

scheduler:
  max_concurrent: 8

security:
  auth_mode: "none"

logging:
  level: "warn"
`
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}

	// Clear environment and set CONFIG_PATH + override values
	os.Clearenv()
	os.Setenv(ConfigPathEnvVar, configPath)
	os.Setenv("HTTP_PORT", "9999")                // Override port from config file
	os.Setenv("LOG_LEVEL", "error")               // Override log level from config file
	os.Setenv("DUCKDB_PATH", "/custom/db.duckdb") // Override a default value

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	// Verify values from config file (not overridden by env)
	if cfg.Scheduler.MaxConcurrent != 8 {
		t.Errorf("Scheduler.MaxConcurrent = %d, want 8 (from file)", cfg.Scheduler.MaxConcurrent)
	}

	// Verify env vars override config file
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999 (env override)", cfg.Server.Port)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want error (env override)", cfg.Logging.Level)
	}

	// Verify env vars override defaults
	if cfg.Database.Path != "/custom/db.duckdb" {
		t.Errorf("Database.Path = %q, want /custom/db.duckdb (env override)", cfg.Database.Path)
	}
}

// TestLoadWithKoanfValidation tests that validation still works
func TestLoadWithKoanfValidation(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		errMsg  string
	}{
		{
			name: "missing STRIPE_API_KEY when enabled",
			envVars: map[string]string{
				"STRIPE_ENABLED": "true",
				"AUTH_MODE":      "none",
			},
			wantErr: true,
			errMsg:  "STRIPE_API_KEY is required when STRIPE_ENABLED=true",
		},
		{
			name: "missing Google client when YouTube enabled",
			envVars: map[string]string{
				"YOUTUBE_ENABLED": "true",
				"AUTH_MODE":       "none",
			},
			wantErr: true,
			errMsg:  "GOOGLE_CLIENT_ID is required when YOUTUBE_ENABLED=true",
		},
		{
			name: "local-only mode - no integrations required",
			envVars: map[string]string{
				"AUTH_MODE": "none",
			},
			wantErr: false,
		},
		{
			name: "JWT mode requires JWT_SECRET",
			envVars: map[string]string{
				"AUTH_MODE": "jwt",
			},
			wantErr: true,
			errMsg:  "JWT_SECRET is required",
		},
		{
			name: "warn threshold must stay below critical",
			envVars: map[string]string{
				"AUTH_MODE":                  "none",
				"MONITOR_WARN_THRESHOLD":     "95",
				"MONITOR_CRITICAL_THRESHOLD": "90",
			},
			wantErr: true,
			errMsg:  "MONITOR_WARN_THRESHOLD must be less than MONITOR_CRITICAL_THRESHOLD",
		},
		{
			name: "valid configuration",
			envVars: map[string]string{
				"AUTH_MODE":      "none",
				"STRIPE_ENABLED": "true",
				"STRIPE_API_KEY": "sk_test_4eC39HqLyjWDarjtT1zdp7dc",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}

			_, err := LoadWithKoanf()

			if tt.wantErr {
				if err == nil {
					t.Errorf("LoadWithKoanf() expected error containing %q, got nil", tt.errMsg)
				}
			} else {
				if err != nil {
					t.Errorf("LoadWithKoanf() unexpected error = %v", err)
				}
			}
		})
	}
}

// TestLoadBackwardCompatibility ensures Load() still works with plain env vars
func TestLoadBackwardCompatibility(t *testing.T) {
	os.Clearenv()

	// Set up a complete configuration using env var names
	envVars := map[string]string{
		"AUTH_MODE":                  "none",
		"NATS_ENABLED":               "false",
		"DUCKDB_PATH":                "/legacy/db.duckdb",
		"DUCKDB_MAX_MEMORY":          "4GB",
		"SCHEDULER_DEFAULT_DURATION": "3h",
		"SCHEDULER_RETRY_ATTEMPTS":   "5",
		"HTTP_PORT":                  "8080",
		"HTTP_HOST":                  "192.168.1.1",
		"API_DEFAULT_PAGE_SIZE":      "50",
		"LOG_LEVEL":                  "debug",
		"RATE_LIMIT_REQUESTS":        "200",
		"DISABLE_RATE_LIMIT":         "true",
		"WEBHOOKS_BACKOFF_FACTOR":    "3.5",
		"BILLING_TRIAL_DAYS":         "30",
	}

	for k, v := range envVars {
		os.Setenv(k, v)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Verify all values loaded correctly
	if cfg.NATS.Enabled != false {
		t.Errorf("NATS.Enabled = %v, want false", cfg.NATS.Enabled)
	}
	if cfg.Database.Path != "/legacy/db.duckdb" {
		t.Errorf("Database.Path = %q, want /legacy/db.duckdb", cfg.Database.Path)
	}
	if cfg.Database.MaxMemory != "4GB" {
		t.Errorf("Database.MaxMemory = %q, want 4GB", cfg.Database.MaxMemory)
	}
	if cfg.Scheduler.DefaultDuration != 3*time.Hour {
		t.Errorf("Scheduler.DefaultDuration = %v, want 3h", cfg.Scheduler.DefaultDuration)
	}
	if cfg.Scheduler.RetryAttempts != 5 {
		t.Errorf("Scheduler.RetryAttempts = %d, want 5", cfg.Scheduler.RetryAttempts)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.Host != "192.168.1.1" {
		t.Errorf("Server.Host = %q, want 192.168.1.1", cfg.Server.Host)
	}
	if cfg.API.DefaultPageSize != 50 {
		t.Errorf("API.DefaultPageSize = %d, want 50", cfg.API.DefaultPageSize)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Security.RateLimitReqs != 200 {
		t.Errorf("Security.RateLimitReqs = %d, want 200", cfg.Security.RateLimitReqs)
	}
	if cfg.Security.RateLimitDisabled != true {
		t.Errorf("Security.RateLimitDisabled = %v, want true", cfg.Security.RateLimitDisabled)
	}
	if cfg.Webhooks.BackoffFactor != 3.5 {
		t.Errorf("Webhooks.BackoffFactor = %v, want 3.5", cfg.Webhooks.BackoffFactor)
	}
	if cfg.Billing.TrialDays != 30 {
		t.Errorf("Billing.TrialDays = %d, want 30", cfg.Billing.TrialDays)
	}
}

// TestGetKoanfInstance verifies we can get a Koanf instance for custom use
func TestGetKoanfInstance(t *testing.T) {
	k := GetKoanfInstance()
	if k == nil {
		t.Error("GetKoanfInstance() returned nil")
	}
}
