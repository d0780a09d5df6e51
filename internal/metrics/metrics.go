// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Database query performance (DuckDB)
// - API endpoint latency and throughput
// - Recurrence materialization and conflict detection
// - YouTube API calls and quota consumption
// - Notification delivery, webhook dispatch, moderation throughput
// - WebSocket connections and NATS bus traffic

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets, // 0.005s, 0.01s, 0.025s, 0.05s, 0.1s, 0.25s, 0.5s, 1s, 2.5s, 5s, 10s
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	DBConnectionPoolSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "duckdb_connection_pool_size",
			Help: "Current number of database connections in use",
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of API requests being processed",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Scheduling Metrics
	RecurrenceOccurrencesGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recurrence_occurrences_generated_total",
			Help: "Total number of occurrences materialized from recurrence patterns",
		},
	)

	RecurrenceOccurrencesFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recurrence_occurrences_failed_total",
			Help: "Total number of occurrences whose remote broadcast creation failed",
		},
	)

	RecurrenceOccurrencesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recurrence_occurrences_skipped_total",
			Help: "Total number of occurrences skipped due to slot conflicts",
		},
	)

	RecurrencePatternsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recurrence_patterns_active",
			Help: "Current number of active recurrence patterns",
		},
	)

	ConflictChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conflict_checks_total",
			Help: "Total number of slot conflict checks",
		},
		[]string{"result"}, // "free", "conflict"
	)

	// YouTube API Metrics
	YouTubeAPICalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "youtube_api_calls_total",
			Help: "Total number of YouTube Data API calls",
		},
		[]string{"operation", "status"}, // status: "success", "error", "quota"
	)

	YouTubeAPICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "youtube_api_call_duration_seconds",
			Help:    "Duration of YouTube Data API calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	YouTubeQuotaUnitsUsed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "youtube_quota_units_used_total",
			Help: "Estimated YouTube Data API quota units consumed",
		},
	)

	// Billing Metrics
	BillingInvoicesIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "billing_invoices_issued_total",
			Help: "Total number of invoices issued",
		},
	)

	BillingChargesFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "billing_charges_failed_total",
			Help: "Total number of failed charge attempts",
		},
	)

	BillingActiveSubscriptions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "billing_active_subscriptions",
			Help: "Current number of subscriptions by status",
		},
		[]string{"status"},
	)

	// Notification Metrics
	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Total number of notifications created",
		},
		[]string{"type", "severity"},
	)

	NotificationsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_delivered_total",
			Help: "Total number of notification deliveries by channel and outcome",
		},
		[]string{"channel", "status"}, // status: "sent", "failed"
	)

	NotificationsBatched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_batched_total",
			Help: "Total number of notifications folded into digest batches",
		},
	)

	NotificationsEscalated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_escalated_total",
			Help: "Total number of critical notifications escalated after the acknowledgment window",
		},
	)

	// Moderation Metrics
	ModerationCommentsScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moderation_comments_scanned_total",
			Help: "Total number of comments run through the moderation pipeline",
		},
	)

	ModerationActionsTaken = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_actions_total",
			Help: "Total number of moderation actions by rule type and action",
		},
		[]string{"rule_type", "action"},
	)

	ModerationScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "moderation_scan_duration_seconds",
			Help:    "Duration of a single comment moderation scan",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	// Chatbot Metrics
	ChatbotTriggerMatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_trigger_matches_total",
			Help: "Total number of chatbot trigger matches by match type",
		},
		[]string{"match_type"},
	)

	ChatbotRepliesPosted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_replies_posted_total",
			Help: "Total number of chatbot replies by outcome",
		},
		[]string{"status"}, // "posted", "failed", "cooldown"
	)

	// Webhook Metrics
	WebhookDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_deliveries_total",
			Help: "Total number of webhook delivery attempts by outcome",
		},
		[]string{"status"}, // "delivered", "retrying", "dead", "disabled"
	)

	WebhookDeliveryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "webhook_delivery_duration_seconds",
			Help:    "Duration of webhook HTTP delivery attempts",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	WebhookEndpointsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "webhook_endpoints_active",
			Help: "Current number of enabled webhook endpoints",
		},
	)

	// Quota / Monitoring Metrics
	QuotaUsagePercent = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "quota_usage_percent",
			Help: "Per-resource plan quota consumption as a percentage",
		},
		[]string{"resource"},
	)

	QuotaLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quota_limit_rejections_total",
			Help: "Total number of operations rejected because a plan limit was reached",
		},
		[]string{"resource"},
	)

	// Strike Metrics
	StrikesRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strikes_recorded_total",
			Help: "Total number of channel strikes recorded by type",
		},
		[]string{"type"},
	)

	ChannelsSuspended = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "channels_suspended_total",
			Help: "Total number of channels suspended for reaching the strike threshold",
		},
	)

	// Channel Linking Metrics
	ChannelsLinked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "channels_linked_total",
			Help: "Total number of YouTube channels linked through the OAuth consent flow",
		},
	)

	OAuthTokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oauth_token_refreshes_total",
			Help: "Total number of OAuth access token refreshes by outcome",
		},
		[]string{"status"},
	)

	// Authentication Metrics
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Total number of panel login attempts by outcome",
		},
		[]string{"status"},
	)

	AuthzDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_denials_total",
			Help: "Total number of requests denied by the authorization policy",
		},
		[]string{"role"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_name"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_name"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache_name"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions",
		},
		[]string{"cache_name"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_received_total",
			Help: "Total number of WebSocket messages received",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breakers",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// NATS Bus Metrics
	NATSMessagesPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_published_total",
			Help: "Total number of messages published to the event bus",
		},
	)

	NATSMessagesConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_consumed_total",
			Help: "Total number of messages consumed from the event bus",
		},
	)

	NATSMessagesDeduplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_deduplicated_total",
			Help: "Total number of messages dropped as JetStream duplicates",
		},
	)

	NATSMessagesParseFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_parse_failed_total",
			Help: "Total number of bus messages that failed deserialization",
		},
	)

	NATSProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nats_processing_duration_seconds",
			Help:    "Duration of bus message handling",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	// Application Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table, classifyDBError(err)).Inc()
	}
}

// classifyDBError buckets database errors into coarse categories so the
// error counter's label cardinality stays bounded.
func classifyDBError(err error) string {
	msg := err.Error()
	switch {
	case contains(msg, "timeout") || contains(msg, "deadline"):
		return "timeout"
	case contains(msg, "constraint") || contains(msg, "duplicate"):
		return "constraint"
	case contains(msg, "connection"):
		return "connection"
	default:
		return "other"
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRateLimitHit counts a rate-limited request on an endpoint.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordYouTubeCall records a YouTube Data API call and its quota cost.
func RecordYouTubeCall(operation, status string, duration time.Duration, quotaUnits int) {
	YouTubeAPICalls.WithLabelValues(operation, status).Inc()
	YouTubeAPICallDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if quotaUnits > 0 {
		YouTubeQuotaUnitsUsed.Add(float64(quotaUnits))
	}
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordNATSPublish records a message published to the event bus
func RecordNATSPublish() {
	NATSMessagesPublished.Inc()
}

// RecordNATSConsume records a message consumed from the event bus
func RecordNATSConsume() {
	NATSMessagesConsumed.Inc()
}

// RecordNATSDeduplicated records a message dropped as a JetStream duplicate
func RecordNATSDeduplicated() {
	NATSMessagesDeduplicated.Inc()
}

// RecordNATSParseFailed records a bus message that failed deserialization
func RecordNATSParseFailed() {
	NATSMessagesParseFailed.Inc()
}

// RecordNATSProcessingDuration records the duration of bus message handling
func RecordNATSProcessingDuration(duration time.Duration) {
	NATSProcessingDuration.Observe(duration.Seconds())
}

// Helper function to check if string contains substring
func contains(s, substr string) bool {
	if len(substr) == 0 {
		return true
	}
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
