// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tubefleet/tubefleet/internal/config"
	"github.com/tubefleet/tubefleet/internal/logging"
	"github.com/tubefleet/tubefleet/internal/models"
)

// Middleware authenticates HTTP requests and attaches the AuthSubject to
// the request context. Supported modes: none, basic, jwt, multi.
type Middleware struct {
	jwt      *JWTManager
	sessions SessionStore
	mode     AuthMode

	adminUsername     string
	adminPasswordHash string
}

// NewMiddleware builds the request authentication middleware. The admin
// password is hashed once at startup so Basic auth never compares
// plaintext.
func NewMiddleware(jwtManager *JWTManager, sessions SessionStore, cfg *config.SecurityConfig) (*Middleware, error) {
	mode, err := ParseAuthMode(cfg.AuthMode)
	if err != nil {
		return nil, err
	}

	m := &Middleware{
		jwt:           jwtManager,
		sessions:      sessions,
		mode:          mode,
		adminUsername: cfg.AdminUsername,
	}

	if (mode == AuthModeBasic || mode == AuthModeMulti) && cfg.AdminPassword != "" {
		hash, err := HashPassword(cfg.AdminPassword)
		if err != nil {
			return nil, err
		}
		m.adminPasswordHash = hash
	}

	return m, nil
}

// Authenticate is a chi-compatible middleware that rejects unauthenticated
// requests with 401 and otherwise attaches the subject to the context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.mode == AuthModeNone {
			// Development mode: every request acts as the admin.
			subject := &AuthSubject{
				ID:       "anonymous",
				Username: "anonymous",
				Role:     models.RoleAdmin,
				Provider: "none",
			}
			next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), subject)))
			return
		}

		subject, err := m.authenticate(r)
		if err != nil {
			m.unauthorized(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), subject)))
	})
}

// authenticate dispatches on the Authorization header scheme within the
// configured mode.
func (m *Middleware) authenticate(r *http.Request) (*AuthSubject, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, ErrNoCredentials
	}

	switch {
	case strings.HasPrefix(header, "Bearer "):
		if m.mode != AuthModeJWT && m.mode != AuthModeMulti {
			return nil, ErrInvalidCredentials
		}
		return m.authenticateJWT(r, strings.TrimPrefix(header, "Bearer "))

	case strings.HasPrefix(header, "Basic "):
		if m.mode != AuthModeBasic && m.mode != AuthModeMulti {
			return nil, ErrInvalidCredentials
		}
		return m.authenticateBasic(r)

	default:
		return nil, ErrInvalidCredentials
	}
}

// authenticateJWT validates the token and confirms its session still
// exists. A revoked session kills the token even before its expiry.
func (m *Middleware) authenticateJWT(r *http.Request, token string) (*AuthSubject, error) {
	claims, err := m.jwt.ValidateToken(token)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	session, err := m.sessions.Get(r.Context(), claims.ID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	return &AuthSubject{
		ID:        claims.Subject,
		Username:  claims.Username,
		Role:      session.Role,
		SessionID: session.ID,
		Provider:  "jwt",
	}, nil
}

// authenticateBasic checks the configured admin credentials. There is
// exactly one Basic account; panel users log in through the JWT flow.
func (m *Middleware) authenticateBasic(r *http.Request) (*AuthSubject, error) {
	username, password, ok := r.BasicAuth()
	if !ok {
		return nil, ErrNoCredentials
	}

	if m.adminPasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	usernameMatch := subtle.ConstantTimeCompare([]byte(username), []byte(m.adminUsername)) == 1
	passwordMatch := VerifyPassword(m.adminPasswordHash, password)
	if !usernameMatch || !passwordMatch {
		return nil, ErrInvalidCredentials
	}

	return &AuthSubject{
		ID:       username,
		Username: username,
		Role:     models.RoleAdmin,
		Provider: "basic",
	}, nil
}

// unauthorized writes the standard 401 envelope. Basic-capable modes get a
// challenge header so curl prompts for credentials.
func (m *Middleware) unauthorized(w http.ResponseWriter, r *http.Request) {
	if m.mode == AuthModeBasic || m.mode == AuthModeMulti {
		w.Header().Set("WWW-Authenticate", `Basic realm="tubefleet", charset="UTF-8"`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	response := models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error: &models.APIError{
			Code:    "UNAUTHORIZED",
			Message: "authentication required",
		},
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.Debug().Err(err).Str("path", r.URL.Path).Msg("Failed to write 401 response")
	}
}
