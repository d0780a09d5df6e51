// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tubefleet/tubefleet/internal/config"
	"github.com/tubefleet/tubefleet/internal/models"
)

// echoSubject records the subject the middleware attached.
func echoSubject(captured **AuthSubject) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func newTestMiddleware(t *testing.T, cfg *config.SecurityConfig, sessions SessionStore) *Middleware {
	t.Helper()

	jwtManager, err := NewJWTManager(cfg)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	middleware, err := NewMiddleware(jwtManager, sessions, cfg)
	if err != nil {
		t.Fatalf("NewMiddleware() error = %v", err)
	}
	return middleware
}

func TestMiddleware_NoneModeActsAsAdmin(t *testing.T) {
	cfg := testSecurityConfig()
	cfg.AuthMode = "none"
	middleware := newTestMiddleware(t, cfg, NewMemorySessionStore())

	var subject *AuthSubject
	recorder := httptest.NewRecorder()
	middleware.Authenticate(echoSubject(&subject)).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}
	if subject == nil || subject.Role != models.RoleAdmin {
		t.Errorf("subject = %+v, want admin role", subject)
	}
}

func TestMiddleware_MissingCredentials(t *testing.T) {
	middleware := newTestMiddleware(t, testSecurityConfig(), NewMemorySessionStore())

	recorder := httptest.NewRecorder()
	var subject *AuthSubject
	middleware.Authenticate(echoSubject(&subject)).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", recorder.Code)
	}
	if contentType := recorder.Header().Get("Content-Type"); contentType != "application/json" {
		t.Errorf("Content-Type = %s, want application/json", contentType)
	}
}

func TestMiddleware_JWTHappyPath(t *testing.T) {
	cfg := testSecurityConfig()
	sessions := NewMemorySessionStore()
	middleware := newTestMiddleware(t, cfg, sessions)

	jwtManager, _ := NewJWTManager(cfg)
	session := NewSession("user-1", "alice", models.RoleEditor, time.Hour)
	if err := sessions.Create(context.Background(), session); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	token, err := jwtManager.GenerateToken("user-1", "alice", models.RoleEditor, session.ID)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer "+token)

	var subject *AuthSubject
	recorder := httptest.NewRecorder()
	middleware.Authenticate(echoSubject(&subject)).ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}
	if subject == nil {
		t.Fatal("no subject attached")
	}
	if subject.ID != "user-1" || subject.Role != models.RoleEditor || subject.SessionID != session.ID {
		t.Errorf("subject = %+v", subject)
	}
}

func TestMiddleware_RevokedSessionKillsToken(t *testing.T) {
	cfg := testSecurityConfig()
	sessions := NewMemorySessionStore()
	middleware := newTestMiddleware(t, cfg, sessions)

	jwtManager, _ := NewJWTManager(cfg)
	session := NewSession("user-1", "alice", models.RoleViewer, time.Hour)
	if err := sessions.Create(context.Background(), session); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	token, err := jwtManager.GenerateToken("user-1", "alice", models.RoleViewer, session.ID)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	// Revoke, then present the still-unexpired token.
	if err := sessions.Delete(context.Background(), session.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer "+token)

	var subject *AuthSubject
	recorder := httptest.NewRecorder()
	middleware.Authenticate(echoSubject(&subject)).ServeHTTP(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for revoked session", recorder.Code)
	}
}

func TestMiddleware_GarbageToken(t *testing.T) {
	middleware := newTestMiddleware(t, testSecurityConfig(), NewMemorySessionStore())

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer not.a.token")

	var subject *AuthSubject
	recorder := httptest.NewRecorder()
	middleware.Authenticate(echoSubject(&subject)).ServeHTTP(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", recorder.Code)
	}
}

func TestMiddleware_BasicAuth(t *testing.T) {
	cfg := testSecurityConfig()
	cfg.AuthMode = "multi"
	cfg.AdminUsername = "root"
	cfg.AdminPassword = "bootstrap pass 7"
	middleware := newTestMiddleware(t, cfg, NewMemorySessionStore())

	tests := []struct {
		name       string
		username   string
		password   string
		wantStatus int
	}{
		{"correct credentials", "root", "bootstrap pass 7", http.StatusOK},
		{"wrong password", "root", "nope", http.StatusUnauthorized},
		{"wrong username", "admin", "bootstrap pass 7", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			request.SetBasicAuth(tt.username, tt.password)

			var subject *AuthSubject
			recorder := httptest.NewRecorder()
			middleware.Authenticate(echoSubject(&subject)).ServeHTTP(recorder, request)

			if recorder.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", recorder.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if subject == nil || subject.Role != models.RoleAdmin || subject.Provider != "basic" {
					t.Errorf("subject = %+v, want basic admin", subject)
				}
			}
		})
	}
}

func TestMiddleware_ModeRestrictsScheme(t *testing.T) {
	cfg := testSecurityConfig()
	cfg.AuthMode = "basic"
	cfg.AdminUsername = "root"
	cfg.AdminPassword = "bootstrap pass 7"
	sessions := NewMemorySessionStore()
	middleware := newTestMiddleware(t, cfg, sessions)

	// A valid JWT is rejected in basic-only mode.
	jwtManager, _ := NewJWTManager(cfg)
	session := NewSession("user-1", "alice", models.RoleViewer, time.Hour)
	if err := sessions.Create(context.Background(), session); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	token, _ := jwtManager.GenerateToken("user-1", "alice", models.RoleViewer, session.ID)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer "+token)

	var subject *AuthSubject
	recorder := httptest.NewRecorder()
	middleware.Authenticate(echoSubject(&subject)).ServeHTTP(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for Bearer in basic mode", recorder.Code)
	}
	if challenge := recorder.Header().Get("WWW-Authenticate"); challenge == "" {
		t.Error("missing WWW-Authenticate challenge in basic mode")
	}
}
