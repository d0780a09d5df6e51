// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

// Package webhooks fans domain events out to tenant-registered endpoints.
//
// The fanout consumer turns each bus event into one pending delivery per
// subscribed endpoint. The dispatcher polls due deliveries and POSTs the
// event JSON signed with the endpoint secret (HMAC-SHA256 in
// X-TubeFleet-Signature). A 2xx completes the delivery, 410 Gone disables
// the endpoint, and anything else retries on exponential backoff with
// jitter until the attempt cap, after which the delivery is abandoned.
// Endpoints that fail too many times in a row are auto-disabled.
package webhooks
