// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

// Package documentation for Swagger/OpenAPI generation.
// Regenerate with: swag init -g cmd/server/docs.go -o docs
//
// @title TubeFleet API
// @version 1.0
// @description YouTube multi-channel automation backend: stream scheduling, channel linking, billing, moderation, notifications, and outbound webhooks.
//
// @contact.name TubeFleet Contributors
// @contact.url https://github.com/tubefleet/tubefleet
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @BasePath /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT access token, prefixed with "Bearer ".
//
// @tag.name Streams
// @tag.description Stream scheduling, recurrence rules, and conflict checks
//
// @tag.name Channels
// @tag.description YouTube channel linking via Google OAuth and channel management
//
// @tag.name Billing
// @tag.description Plans, subscriptions, proration, and invoices
//
// @tag.name Moderation
// @tag.description Pattern rules, violation review, and strikes
//
// @tag.name Comments
// @tag.description Comment sync, trigger rules, and automated replies
//
// @tag.name Notifications
// @tag.description In-app notifications and delivery preferences
//
// @tag.name Webhooks
// @tag.description Outbound webhook endpoints and delivery history
//
// @tag.name Monitoring
// @tag.description Usage metrics, quota limits, and system health
//
// @tag.name Auth
// @tag.description Authentication and session management
//
// @tag.name Admin
// @tag.description Administrative operations and audit log access
package main
