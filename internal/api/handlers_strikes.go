// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tubefleet/tubefleet/internal/audit"
	"github.com/tubefleet/tubefleet/internal/models"
)

// ListStrikes lists a channel's strikes, newest first.
//
// @Summary List strikes
// @Tags strikes
// @Produce json
// @Security BearerAuth
// @Param channel_id query string true "Channel ID"
// @Success 200 {object} models.APIResponse
// @Router /api/v1/strikes [get]
func (s *Server) ListStrikes(w http.ResponseWriter, r *http.Request) {
	channel, ok := s.strikeChannel(w, r)
	if !ok {
		return
	}
	list, err := s.strikes.List(r.Context(), channel.ID.String())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, list)
}

// ActiveStrikeCount returns the strikes currently counting toward
// suspension.
//
// @Summary Active strike count
// @Tags strikes
// @Produce json
// @Security BearerAuth
// @Param channel_id query string true "Channel ID"
// @Success 200 {object} models.APIResponse
// @Router /api/v1/strikes/active-count [get]
func (s *Server) ActiveStrikeCount(w http.ResponseWriter, r *http.Request) {
	channel, ok := s.strikeChannel(w, r)
	if !ok {
		return
	}
	count, err := s.strikes.ActiveCount(r.Context(), channel.ID.String())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"channel_id":           channel.ID,
		"active":               count,
		"suspension_threshold": models.StrikeSuspensionThreshold,
	})
}

// strikeChannel resolves the channel_id query parameter and enforces
// ownership for non-admins.
func (s *Server) strikeChannel(w http.ResponseWriter, r *http.Request) (*models.Channel, bool) {
	sub, ok := subject(w, r)
	if !ok {
		return nil, false
	}
	channelID := r.URL.Query().Get("channel_id")
	if channelID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "channel_id is required", nil)
		return nil, false
	}
	channel, err := s.db.GetChannel(r.Context(), channelID)
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

// RecordStrike records a policy strike against a channel. The third
// active strike suspends the channel; that consequence lives in the
// strikes service.
//
// @Summary Record strike
// @Tags strikes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.APIResponse{data=models.Strike}
// @Router /api/v1/strikes [post]
func (s *Server) RecordStrike(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}

	var req recordStrikeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	channelID, err := uuid.Parse(req.ChannelID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid channel ID", err)
		return
	}
	channel, err := s.db.GetChannel(r.Context(), channelID.String())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	source := req.Source
	if source == "" {
		source = "manual"
	}
	strike := models.NewStrike(channelID, channel.UserID, req.StrikeType, req.Reason, source)
	if req.VideoID != "" {
		strike.VideoID = &req.VideoID
	}
	if req.ExpiresAt != nil {
		strike.ExpiresAt = req.ExpiresAt
	}

	recorded, err := s.strikes.Record(r.Context(), strike)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if s.audit != nil {
		active, countErr := s.strikes.ActiveCount(r.Context(), channel.ID.String())
		if countErr != nil {
			active = -1
		}
		s.audit.LogStrikeRecorded(r.Context(), auditActor(sub), audit.SourceFromRequest(r),
			channel.ID.String(), channel.Title, recorded.StrikeType, active)
	}
	respondData(w, http.StatusCreated, recorded)
}

// AppealStrike marks a strike appealed, taking it out of the active count
// while the appeal is pending.
//
// @Summary Appeal strike
// @Tags strikes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Strike ID"
// @Success 200 {object} models.APIResponse{data=models.Strike}
// @Router /api/v1/strikes/{id}/appeal [post]
func (s *Server) AppealStrike(w http.ResponseWriter, r *http.Request) {
	if _, ok := subject(w, r); !ok {
		return
	}
	strike, err := s.strikes.Appeal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, strike)
}

// ResolveStrike resolves a strike, lifting suspension when the active
// count drops below the threshold.
//
// @Summary Resolve strike
// @Tags strikes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Strike ID"
// @Success 200 {object} models.APIResponse{data=models.Strike}
// @Router /api/v1/strikes/{id}/resolve [post]
func (s *Server) ResolveStrike(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	strikeID := chi.URLParam(r, "id")
	strike, err := s.strikes.Resolve(r.Context(), strikeID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if s.audit != nil {
		s.audit.LogStrikeResolved(r.Context(), auditActor(sub), audit.SourceFromRequest(r),
			strike.ChannelID.String(), strikeID)
	}
	respondData(w, http.StatusOK, strike)
}

