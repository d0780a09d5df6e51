// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package authz

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tubefleet/tubefleet/internal/audit"
	"github.com/tubefleet/tubefleet/internal/auth"
	"github.com/tubefleet/tubefleet/internal/logging"
	"github.com/tubefleet/tubefleet/internal/metrics"
	"github.com/tubefleet/tubefleet/internal/models"
)

// Middleware enforces the RBAC policy against each request's path and
// method. It runs after the authentication middleware and reads the
// subject from the request context.
type Middleware struct {
	enforcer *Enforcer
	auditLog *audit.Logger
}

// NewMiddleware builds the authorization middleware. auditLog may be nil,
// which disables denial recording.
func NewMiddleware(enforcer *Enforcer, auditLog *audit.Logger) *Middleware {
	return &Middleware{enforcer: enforcer, auditLog: auditLog}
}

// Authorize is a chi-compatible middleware that checks the subject's role
// against the request path and method.
func (m *Middleware) Authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject := auth.SubjectFromContext(r.Context())
		if subject == nil {
			m.forbidden(w, r, nil)
			return
		}

		action := methodToAction(r.Method)
		allowed, err := m.enforcer.Enforce(subject.Role, r.URL.Path, action)
		if err != nil {
			logging.Error().Err(err).Str("path", r.URL.Path).Msg("Authorization check failed")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if !allowed {
			m.forbidden(w, r, subject)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// methodToAction maps HTTP methods to policy actions.
func methodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return "read"
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return "write"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

// forbidden writes the 403 envelope and records the denial.
func (m *Middleware) forbidden(w http.ResponseWriter, r *http.Request, subject *auth.AuthSubject) {
	role := "none"
	if subject != nil {
		role = subject.Role
		if m.auditLog != nil {
			actor := audit.Actor{ID: subject.ID, Type: "user", Name: subject.Username}
			source := audit.Source{IPAddress: r.RemoteAddr, UserAgent: r.UserAgent()}
			m.auditLog.LogAuthzDenied(r.Context(), actor, source, r.URL.Path, methodToAction(r.Method))
		}
	}
	metrics.AuthzDenials.WithLabelValues(role).Inc()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)

	response := models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error: &models.APIError{
			Code:    "FORBIDDEN",
			Message: "insufficient permissions",
		},
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.Debug().Err(err).Str("path", r.URL.Path).Msg("Failed to write 403 response")
	}
}
