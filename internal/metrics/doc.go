// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package implements application instrumentation using the Prometheus client
library, exposing metrics for monitoring performance, errors, and system health.

# Overview

The package provides metrics for:
  - HTTP request latency and throughput
  - Database query performance (DuckDB)
  - Recurrence materialization and slot conflict detection
  - YouTube Data API calls and estimated quota consumption
  - Billing, notification, moderation, chatbot, and webhook throughput
  - Circuit breaker state transitions
  - Cache hit/miss rates
  - WebSocket connection counts
  - NATS event bus traffic

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8080/metrics

# Naming

Metric names follow the Prometheus convention of a subsystem prefix plus a
unit-suffixed name, e.g.:

	duckdb_query_duration_seconds
	recurrence_occurrences_generated_total
	youtube_quota_units_used_total
	webhook_deliveries_total

All metrics are package-level variables registered via promauto at init time.
Handlers and services record through the exported variables directly or via
the Record* helpers:

	metrics.RecordDBQuery("select", "live_events", elapsed, err)
	metrics.RecordAPIRequest("GET", "/api/v1/events", 200, elapsed)
	metrics.RecordYouTubeCall("broadcasts.insert", "success", elapsed, 50)
	metrics.RecurrenceOccurrencesGenerated.Inc()

# Label Cardinality

Labels are restricted to low-cardinality values (operation names, table
names, status buckets). Database errors are classified into coarse
categories (timeout, constraint, connection, other) rather than recorded
verbatim so the error counter cannot grow unbounded.

# Grafana Integration

Useful starter queries:

	rate(api_requests_total[5m])
	histogram_quantile(0.95, rate(api_request_duration_seconds_bucket[5m]))
	rate(recurrence_occurrences_failed_total[1h])
	quota_usage_percent{resource="channels"}
*/
package metrics
