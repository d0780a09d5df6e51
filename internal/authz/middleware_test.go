// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tubefleet/tubefleet/internal/auth"
	"github.com/tubefleet/tubefleet/internal/models"
)

func authorizedRequest(method, path, role string) *http.Request {
	request := httptest.NewRequest(method, path, nil)
	subject := &auth.AuthSubject{ID: "user-1", Username: "alice", Role: role, Provider: "jwt"}
	return request.WithContext(auth.WithSubject(request.Context(), subject))
}

func TestAuthorize(t *testing.T) {
	enforcer := testEnforcer(t)
	middleware := NewMiddleware(enforcer, nil)

	handler := middleware.Authorize(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		request    *http.Request
		wantStatus int
	}{
		{"viewer reads", authorizedRequest(http.MethodGet, "/api/v1/streams", models.RoleViewer), http.StatusOK},
		{"viewer blocked from writes", authorizedRequest(http.MethodPost, "/api/v1/streams", models.RoleViewer), http.StatusForbidden},
		{"editor writes", authorizedRequest(http.MethodPost, "/api/v1/streams", models.RoleEditor), http.StatusOK},
		{"editor blocked from admin", authorizedRequest(http.MethodGet, "/api/v1/admin/users", models.RoleEditor), http.StatusForbidden},
		{"admin deletes anywhere", authorizedRequest(http.MethodDelete, "/api/v1/admin/users/u1", models.RoleAdmin), http.StatusOK},
		{"no subject", httptest.NewRequest(http.MethodGet, "/api/v1/streams", nil), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, tt.request)
			if recorder.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", recorder.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusForbidden {
				if contentType := recorder.Header().Get("Content-Type"); contentType != "application/json" {
					t.Errorf("Content-Type = %s, want application/json", contentType)
				}
			}
		})
	}
}
