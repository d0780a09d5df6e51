// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package auth

import (
	"context"
	"errors"
)

// AuthMode selects how request middleware authenticates callers.
type AuthMode string

const (
	// AuthModeNone disables authentication. Development only.
	AuthModeNone AuthMode = "none"

	// AuthModeBasic accepts HTTP Basic credentials for the configured
	// admin account. Intended for scripted access.
	AuthModeBasic AuthMode = "basic"

	// AuthModeJWT accepts Bearer tokens issued by the login endpoint.
	AuthModeJWT AuthMode = "jwt"

	// AuthModeMulti tries JWT first, then Basic.
	AuthModeMulti AuthMode = "multi"
)

// ParseAuthMode converts a config string to an AuthMode.
func ParseAuthMode(s string) (AuthMode, error) {
	switch s {
	case "none", "":
		return AuthModeNone, nil
	case "basic":
		return AuthModeBasic, nil
	case "jwt":
		return AuthModeJWT, nil
	case "multi":
		return AuthModeMulti, nil
	default:
		return "", errors.New("invalid auth mode: " + s)
	}
}

func (m AuthMode) String() string {
	return string(m)
}

// Authentication errors surfaced to handlers. Handlers map all of them to
// 401/423/429 without leaking which one occurred to the client.
var (
	// ErrNoCredentials indicates no credentials were provided.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidCredentials indicates the username or password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountLocked indicates the account is locked out after repeated
	// failed attempts.
	ErrAccountLocked = errors.New("account temporarily locked")

	// ErrAccountDisabled indicates the account exists but cannot log in.
	ErrAccountDisabled = errors.New("account disabled")

	// ErrRateLimited indicates the client IP exceeded the login rate limit.
	ErrRateLimited = errors.New("too many login attempts")
)

// AuthSubject is the authenticated caller attached to the request context.
// It normalizes JWT and Basic authentication into one shape that the
// authorization layer consumes.
type AuthSubject struct {
	// ID is the user's UUID, or the admin username for Basic auth.
	ID string `json:"id"`

	// Username is the login name.
	Username string `json:"username"`

	// Role is the authorization role (viewer, editor, admin).
	Role string `json:"role"`

	// SessionID identifies the revocable session backing a JWT.
	// Empty for Basic auth, which has no session record.
	SessionID string `json:"session_id,omitempty"`

	// Provider names the authenticator that produced this subject
	// ("jwt" or "basic").
	Provider string `json:"provider"`
}

// IsAdmin reports whether the subject carries the admin role.
func (s *AuthSubject) IsAdmin() bool {
	return s != nil && s.Role == "admin"
}

type contextKey string

const subjectContextKey contextKey = "auth_subject"

// WithSubject returns a context carrying the authenticated subject.
func WithSubject(ctx context.Context, subject *AuthSubject) context.Context {
	return context.WithValue(ctx, subjectContextKey, subject)
}

// SubjectFromContext extracts the authenticated subject, or nil when the
// request was not authenticated.
func SubjectFromContext(ctx context.Context) *AuthSubject {
	subject, _ := ctx.Value(subjectContextKey).(*AuthSubject)
	return subject
}
