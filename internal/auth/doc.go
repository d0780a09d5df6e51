// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

// Package auth implements panel authentication: local username/password
// login with bcrypt verification, JWT (HS256) access tokens carrying the
// user's role, and revocable session records behind the tokens.
//
// Flow:
//
//  1. Login verifies the password, creates a session record, and issues a
//     JWT whose jti claim is the session ID.
//  2. Request middleware validates the JWT signature and expiry, then looks
//     the session up in the store. A deleted session invalidates the token
//     immediately, which is what makes logout and admin revocation work
//     despite stateless tokens.
//  3. Refresh rotates the token and extends the session before expiry.
//
// Brute-force protection is layered: a per-IP rate limiter throttles login
// attempts, and a per-account lockout engages after repeated failures.
// Both outcomes are recorded in the audit log.
//
// Session records live in memory or badger depending on SESSION_STORE;
// badger survives restarts and is the production default.
package auth
