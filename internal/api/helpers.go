// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tubefleet/tubefleet/internal/audit"
	"github.com/tubefleet/tubefleet/internal/auth"
	"github.com/tubefleet/tubefleet/internal/logging"
	"github.com/tubefleet/tubefleet/internal/models"
	"github.com/tubefleet/tubefleet/internal/validation"
)

// sanitizeLogValue strips control characters from strings before they reach
// the log, so a crafted header or username cannot forge log lines.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with caching headers and an ETag.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=60")
	w.Header().Set("Vary", "Accept-Encoding")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", generateETag(data))

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondData wraps a payload in the success envelope.
func respondData(w http.ResponseWriter, status int, data interface{}) {
	respondJSON(w, status, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// generateETag creates an ETag from the response body using FNV-1a.
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return strconv.FormatUint(uint64(hash), 16)
}

// respondError sends an error envelope and logs the underlying cause.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().Str("code", sanitizeLogValue(code)).Str("error", sanitizeLogValue(err.Error())).Msg("API Error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondErrorDetails sends an error envelope carrying structured details,
// used for conflict sets and field-level validation failures.
func respondErrorDetails(w http.ResponseWriter, status int, code, message string, details map[string]interface{}) {
	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// decodeBody unmarshals and validates a JSON request body. On failure it
// writes the error response and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body", err)
		return false
	}
	if verr := validation.ValidateStruct(v); verr != nil {
		apiErr := verr.ToAPIError()
		respondErrorDetails(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return false
	}
	return true
}

// getIntParam parses an integer query parameter, falling back to the
// default on absence or garbage.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// getTimeParam parses an RFC 3339 query parameter. Returns nil when the
// parameter is absent or unparseable.
func getTimeParam(r *http.Request, key string) *time.Time {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &t
}

// pageParams resolves limit/offset against the configured page bounds.
func (s *Server) pageParams(r *http.Request) (limit, offset int) {
	defaultSize, maxSize := 50, 500
	if s.cfg != nil {
		if s.cfg.API.DefaultPageSize > 0 {
			defaultSize = s.cfg.API.DefaultPageSize
		}
		if s.cfg.API.MaxPageSize > 0 {
			maxSize = s.cfg.API.MaxPageSize
		}
	}
	limit = getIntParam(r, "limit", defaultSize)
	if limit <= 0 {
		limit = defaultSize
	}
	if limit > maxSize {
		limit = maxSize
	}
	offset = getIntParam(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// subject extracts the authenticated caller. Requests that reach a handler
// without a subject were mounted outside the auth group by mistake; the
// handler responds 401 and we log loudly.
func subject(w http.ResponseWriter, r *http.Request) (*auth.AuthSubject, bool) {
	sub := auth.SubjectFromContext(r.Context())
	if sub == nil {
		logging.Error().Str("path", r.URL.Path).Msg("Handler reached without authenticated subject")
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "Authentication required", nil)
		return nil, false
	}
	return sub, true
}

// mustSubject returns the subject for handlers that already passed the
// subject() check in the same request.
func mustSubject(r *http.Request) *auth.AuthSubject {
	return auth.SubjectFromContext(r.Context())
}

// auditActor converts the authenticated subject into an audit actor.
func auditActor(sub *auth.AuthSubject) audit.Actor {
	return audit.ActorFromUser(sub.ID, sub.Username, []string{sub.Role}, sub.Provider, sub.SessionID)
}

// canAccess reports whether the subject may touch a resource owned by
// ownerID. Admins see everything.
func canAccess(sub *auth.AuthSubject, ownerID string) bool {
	if sub == nil {
		return false
	}
	return sub.IsAdmin() || sub.ID == ownerID
}

// subjectUUID parses the subject's user ID. Basic-auth admins have a
// username instead of a UUID and cannot own tenant resources.
func subjectUUID(sub *auth.AuthSubject) (uuid.UUID, error) {
	return uuid.Parse(sub.ID)
}

// actorUUID resolves the user a request operates on: admins may act on
// behalf of another user via the user_id query parameter, everyone else
// acts as themselves.
func actorUUID(sub *auth.AuthSubject, r *http.Request) (uuid.UUID, error) {
	if sub.IsAdmin() {
		if raw := r.URL.Query().Get("user_id"); raw != "" {
			return uuid.Parse(raw)
		}
	}
	return subjectUUID(sub)
}
