// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package youtube

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for API failure classes. Callers branch with errors.Is;
// APIError.Is maps status codes and Google error reasons onto these.
var (
	// ErrQuotaExceeded means the daily quota or a rate limit was exhausted.
	// Callers should back off until the quota window resets.
	ErrQuotaExceeded = errors.New("youtube: api quota exceeded")

	// ErrAuthRevoked means the channel's OAuth grant no longer works.
	// The channel should be moved to the revoked state and relinked.
	ErrAuthRevoked = errors.New("youtube: authorization revoked")

	// ErrNotFound means the remote resource does not exist (deleted
	// broadcast, removed comment).
	ErrNotFound = errors.New("youtube: resource not found")

	// ErrUnavailable means the API kept failing with retryable statuses
	// until the retry budget ran out.
	ErrUnavailable = errors.New("youtube: api unavailable")
)

// APIError is a non-2xx response from the Data API, carrying the HTTP status
// and the reason code from Google's error envelope when one was present.
type APIError struct {
	StatusCode int
	Reason     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("youtube api: %s (status %d, reason %s)", e.Message, e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("youtube api: %s (status %d)", e.Message, e.StatusCode)
}

// Is maps the error onto the package sentinels so errors.Is works without
// callers inspecting status codes or reason strings.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrQuotaExceeded:
		return e.StatusCode == http.StatusTooManyRequests ||
			e.Reason == "quotaExceeded" ||
			e.Reason == "rateLimitExceeded" ||
			e.Reason == "userRateLimitExceeded"
	case ErrAuthRevoked:
		return e.StatusCode == http.StatusUnauthorized ||
			e.Reason == "authError" ||
			e.Reason == "invalidCredentials"
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}
