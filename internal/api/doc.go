// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

// Package api is the HTTP surface of the platform. A chi router groups
// endpoints under /api/v1 behind request-ID, CORS, security-header,
// Prometheus, rate-limit, authentication, and authorization middleware.
// Handlers translate between HTTP and the domain services; all responses
// use the models.APIResponse envelope.
//
// Route protection is split three ways: /health, /ready, /metrics, and
// /swagger/* are open; the login endpoint and the Google OAuth callback
// are public but strictly rate limited; everything else requires an
// authenticated subject whose role passes the casbin policy.
package api
