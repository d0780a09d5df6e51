// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

// Package channels links YouTube channels through the Google OAuth consent
// flow and manages their stored credentials.
//
// Linking runs the authorization-code flow with PKCE against Google's OIDC
// endpoints. The state parameter is single-use and stored server-side (badger
// in production, memory in tests) so the callback can be validated without
// cookies. The granted refresh token is sealed with AES-GCM before it is
// written to the channels table; access tokens are minted on demand by the
// TokenSource and cached in memory until shortly before expiry.
//
// Unlinking revokes the grant at Google best-effort, scrubs the stored
// refresh token, and marks the channel revoked so automation pauses until
// the owner relinks.
package channels
