// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tubefleet/tubefleet/internal/audit"
	"github.com/tubefleet/tubefleet/internal/channels"
	"github.com/tubefleet/tubefleet/internal/models"
)

// ListChannels lists the caller's linked channels.
//
// @Summary List channels
// @Tags channels
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Router /api/v1/channels [get]
func (s *Server) ListChannels(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	userID, err := actorUUID(sub, r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user ID", err)
		return
	}
	list, err := s.channels.List(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, list)
}

// StartChannelLink begins the Google OAuth consent flow and returns the
// authorization URL the browser should visit.
//
// @Summary Start channel link
// @Tags channels
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Router /api/v1/channels/link [post]
func (s *Server) StartChannelLink(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	if s.channels == nil {
		respondError(w, http.StatusServiceUnavailable, "UPSTREAM_ERROR", "Channel linking is not configured", nil)
		return
	}

	var req startLinkRequest
	if !decodeBody(w, r, &req) {
		return
	}

	userID, err := subjectUUID(sub)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Subject has no user record", err)
		return
	}

	authURL, err := s.channels.StartLink(r.Context(), userID, req.ReturnTo)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"auth_url": authURL})
}

// CompleteChannelLink handles the OAuth redirect from Google. The route is
// public because the browser arrives without a bearer token; the signed
// state parameter proves the link was started by an authenticated user.
//
// @Summary Complete channel link (OAuth callback)
// @Tags channels
// @Produce json
// @Param code query string true "Authorization code"
// @Param state query string true "Opaque state key"
// @Success 200 {object} models.APIResponse{data=models.Channel}
// @Router /api/v1/channels/link/callback [get]
func (s *Server) CompleteChannelLink(w http.ResponseWriter, r *http.Request) {
	if s.channels == nil {
		respondError(w, http.StatusServiceUnavailable, "UPSTREAM_ERROR", "Channel linking is not configured", nil)
		return
	}

	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Missing code or state", nil)
		return
	}

	channel, returnTo, err := s.channels.CompleteLink(r.Context(), code, state)
	if err != nil {
		switch {
		case errors.Is(err, channels.ErrStateNotFound), errors.Is(err, channels.ErrStateExpired):
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Link state expired, start again", nil)
		default:
			respondDomainError(w, err)
		}
		return
	}

	if returnTo != "" && strings.HasPrefix(returnTo, "/") {
		// Only relative redirects; an absolute returnTo would be an open
		// redirect.
		http.Redirect(w, r, returnTo, http.StatusFound)
		return
	}
	respondData(w, http.StatusOK, channel)
}

// GetChannel returns one linked channel.
//
// @Summary Get channel
// @Tags channels
// @Produce json
// @Security BearerAuth
// @Param id path string true "Channel ID"
// @Success 200 {object} models.APIResponse{data=models.Channel}
// @Router /api/v1/channels/{id} [get]
func (s *Server) GetChannel(w http.ResponseWriter, r *http.Request) {
	channel, ok := s.ownedChannel(w, r)
	if !ok {
		return
	}
	respondData(w, http.StatusOK, channel)
}

// ownedChannel loads the channel in the path and enforces ownership.
func (s *Server) ownedChannel(w http.ResponseWriter, r *http.Request) (*models.Channel, bool) {
	sub, ok := subject(w, r)
	if !ok {
		return nil, false
	}
	channel, err := s.db.GetChannel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return nil, false
	}
	if !canAccess(sub, channel.UserID.String()) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Channel not found", nil)
		return nil, false
	}
	return channel, true
}

// UnlinkChannel revokes the channel's tokens and scrubs them from storage.
// Scheduled streams on the channel are canceled by the service.
//
// @Summary Unlink channel
// @Tags channels
// @Produce json
// @Security BearerAuth
// @Param id path string true "Channel ID"
// @Success 200 {object} models.APIResponse
// @Router /api/v1/channels/{id} [delete]
func (s *Server) UnlinkChannel(w http.ResponseWriter, r *http.Request) {
	channel, ok := s.ownedChannel(w, r)
	if !ok {
		return
	}
	if err := s.channels.Unlink(r.Context(), channel.ID.String()); err != nil {
		respondDomainError(w, err)
		return
	}
	if s.audit != nil {
		sub := mustSubject(r)
		s.audit.LogChannelUnlinked(r.Context(), auditActor(sub), audit.SourceFromRequest(r), channel.ID.String(), channel.Title)
	}
	respondData(w, http.StatusOK, map[string]string{"status": "unlinked"})
}

// SyncChannel refreshes the channel's metadata from YouTube.
//
// @Summary Sync channel metadata
// @Tags channels
// @Produce json
// @Security BearerAuth
// @Param id path string true "Channel ID"
// @Success 200 {object} models.APIResponse{data=models.Channel}
// @Router /api/v1/channels/{id}/sync [post]
func (s *Server) SyncChannel(w http.ResponseWriter, r *http.Request) {
	channel, ok := s.ownedChannel(w, r)
	if !ok {
		return
	}
	updated, err := s.channels.SyncMetadata(r.Context(), channel.ID.String())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, updated)
}
