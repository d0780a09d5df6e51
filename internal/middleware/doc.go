// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

/*
Package middleware provides infrastructure HTTP middleware shared by the
REST API: request ID propagation, gzip compression, Prometheus
instrumentation, and in-process latency tracking.

All middleware uses the chi-compatible func(http.Handler) http.Handler
signature so it can be mounted with router.Use.

Components:

  - RequestID: X-Request-ID passthrough/generation plus correlation ID for
    structured log tracing
  - Compression: pooled gzip writers for clients that send
    Accept-Encoding: gzip (WebSocket upgrades are skipped)
  - Prometheus: per-request counters, latency histograms, and an active
    request gauge via internal/metrics
  - PerformanceMonitor: rolling window of request latencies with per-endpoint
    percentile aggregation, exposed through the admin API

A typical stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Prometheus)
	r.Use(middleware.Compression)
	r.Use(perfMon.Middleware)

Thread safety: Compression pools gzip writers with sync.Pool, the
performance monitor guards its window with a sync.RWMutex, and request IDs
live in immutable context values.
*/
package middleware
