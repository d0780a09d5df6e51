// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tubefleet/tubefleet/internal/auth"
	"github.com/tubefleet/tubefleet/internal/models"
)

// Login authenticates a username/password pair and issues a JWT.
//
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.APIResponse{data=models.LoginResponse}
// @Failure 401 {object} models.APIResponse
// @Router /api/v1/auth/login [post]
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	if s.auth == nil {
		respondError(w, http.StatusServiceUnavailable, "AUTHENTICATION_ERROR", "Authentication is not configured", nil)
		return
	}

	var req models.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.auth.Login(r.Context(), req.Username, req.Password, r.RemoteAddr, r.UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrRateLimited):
			respondError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Too many login attempts", nil)
		case errors.Is(err, auth.ErrAccountLocked):
			respondError(w, http.StatusLocked, "AUTHENTICATION_ERROR", "Account temporarily locked", nil)
		default:
			// Wrong password, unknown user, and disabled account all
			// collapse to one message so the endpoint does not enumerate
			// accounts.
			respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "Invalid username or password", nil)
		}
		return
	}

	respondData(w, http.StatusOK, models.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.Session.ExpiresAt,
		Username:  result.User.Username,
		Role:      result.User.Role,
		UserID:    result.User.ID,
	})
}

// Logout revokes the caller's session.
//
// @Summary Log out
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Router /api/v1/auth/logout [post]
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	if sub.SessionID == "" {
		// Basic-auth and development subjects carry no revocable session.
		respondData(w, http.StatusOK, map[string]string{"status": "logged out"})
		return
	}
	if err := s.auth.Logout(r.Context(), sub.SessionID, r.RemoteAddr, r.UserAgent()); err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Refresh rotates the caller's token, extending the session.
//
// @Summary Refresh token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=models.LoginResponse}
// @Router /api/v1/auth/refresh [post]
func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	if sub.SessionID == "" {
		respondError(w, http.StatusBadRequest, "AUTHENTICATION_ERROR", "No refreshable session", nil)
		return
	}

	result, err := s.auth.Refresh(r.Context(), sub.SessionID)
	if err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) || errors.Is(err, auth.ErrSessionExpired) {
			respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "Session expired", nil)
			return
		}
		respondDomainError(w, err)
		return
	}

	respondData(w, http.StatusOK, models.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.Session.ExpiresAt,
		Username:  result.User.Username,
		Role:      result.User.Role,
		UserID:    result.User.ID,
	})
}

// Me returns the authenticated subject.
//
// @Summary Current subject
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Router /api/v1/auth/me [get]
func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	respondData(w, http.StatusOK, sub)
}

// Sessions lists the caller's active sessions.
//
// @Summary List sessions
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Router /api/v1/auth/sessions [get]
func (s *Server) Sessions(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	sessions, err := s.auth.Sessions(r.Context(), sub.ID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, sessions)
}

// RevokeSession revokes one of the caller's sessions by ID.
//
// @Summary Revoke session
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /api/v1/auth/sessions/{id} [delete]
func (s *Server) RevokeSession(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	if err := s.auth.RevokeSession(r.Context(), sub.ID, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Session not found", nil)
			return
		}
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"status": "revoked"})
}

// ChangePassword verifies the current password and sets a new one. All
// other sessions are revoked by the service.
//
// @Summary Change password
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Failure 401 {object} models.APIResponse
// @Router /api/v1/auth/password [post]
func (s *Server) ChangePassword(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}

	var req changePasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.auth.ChangePassword(r.Context(), sub.ID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "Current password is incorrect", nil)
			return
		}
		// Password policy violations surface with their reason.
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"status": "password changed"})
}
