// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

// Package testinfra provides container-backed infrastructure for integration
// tests.
//
// This package uses testcontainers-go to manage Docker containers, giving
// integration tests real services instead of mocks.
//
// # SMTP Sink
//
// MailSinkContainer runs a MailHog instance that accepts SMTP deliveries and
// exposes the captured mail over an HTTP API, so the email notification
// channel can be tested end to end:
//
//	func TestEmailDelivery(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//
//	    ctx := context.Background()
//	    sink, err := testinfra.NewMailSinkContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, sink)
//
//	    // Point the email channel at sink.SMTPHost:sink.SMTPPort,
//	    // deliver, then inspect sink.Messages(ctx).
//	}
//
// # CI Considerations
//
// These tests require Docker and are guarded by the integration build tag.
// Tests are skipped gracefully when Docker is unavailable, and the first run
// may need to download container images.
package testinfra
