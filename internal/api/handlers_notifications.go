// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tubefleet/tubefleet/internal/database"
	"github.com/tubefleet/tubefleet/internal/models"
)

// ListNotifications returns the caller's notifications, newest first.
//
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "Only unread"
// @Success 200 {object} models.APIResponse
// @Router /api/v1/notifications [get]
func (s *Server) ListNotifications(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	limit, offset := s.pageParams(r)
	unreadOnly := r.URL.Query().Get("unread") == "true"

	list, err := s.notifications.List(r.Context(), sub.ID, unreadOnly, limit, offset)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, list)
}

// UnreadCount returns the caller's unread notification count.
//
// @Summary Unread notification count
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Router /api/v1/notifications/unread-count [get]
func (s *Server) UnreadCount(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	count, err := s.notifications.UnreadCount(r.Context(), sub.ID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]int64{"unread": count})
}

// MarkNotificationRead acknowledges one notification. Acknowledging
// another user's notification reads as not found.
//
// @Summary Mark notification read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /api/v1/notifications/{id}/read [post]
func (s *Server) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	if err := s.notifications.MarkRead(r.Context(), chi.URLParam(r, "id"), sub.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Notification not found", nil)
			return
		}
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"status": "read"})
}

// MarkAllNotificationsRead acknowledges everything unread.
//
// @Summary Mark all notifications read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Router /api/v1/notifications/read-all [post]
func (s *Server) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	updated, err := s.notifications.MarkAllRead(r.Context(), sub.ID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]int64{"marked_read": updated})
}

// NotificationPreferences returns the caller's per-type channel settings.
//
// @Summary Get notification preferences
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Router /api/v1/notifications/preferences [get]
func (s *Server) NotificationPreferences(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	prefs, err := s.notifications.Preferences(r.Context(), sub.ID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, prefs)
}

// SetNotificationPreference upserts one per-type preference. Type "*" is
// the default row applied to types without their own.
//
// @Summary Set notification preference
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Router /api/v1/notifications/preferences [put]
func (s *Server) SetNotificationPreference(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}

	var req setPreferenceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	userID, err := uuid.Parse(sub.ID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Subject has no user record", err)
		return
	}

	pref := &models.NotificationPreference{
		UserID: userID,
		Type:   req.Type,
		InApp:  req.InApp,
		Email:  req.Email,
		Muted:  req.Muted,
	}
	if err := s.notifications.SetPreference(r.Context(), pref); err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, pref)
}
