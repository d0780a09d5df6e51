// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tubefleet/tubefleet/internal/auth"
	"github.com/tubefleet/tubefleet/internal/models"
)

// queryChannel loads the channel named by ?channel_id= and enforces
// ownership. Non-owners get 404 rather than 403.
func (s *Server) queryChannel(w http.ResponseWriter, r *http.Request, sub *auth.AuthSubject) (*models.Channel, bool) {
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

// ListComments lists synced comments for a channel, newest first.
//
// @Summary List comments
// @Tags comments
// @Produce json
// @Param channel_id query string true "Channel ID"
// @Success 200 {array} models.Comment
// @Router /api/v1/comments [get]
func (s *Server) ListComments(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	channel, ok := s.queryChannel(w, r, sub)
	if !ok {
		return
	}
	limit, offset := s.pageParams(r)
	list, err := s.db.ListCommentsByChannel(r.Context(), channel.ID.String(), limit, offset)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, list)
}

// SyncComments pulls fresh comments from YouTube. With channel_id it syncs
// one channel synchronously; without, it kicks a full pass across all
// linked channels.
//
// @Summary Sync comments
// @Tags comments
// @Produce json
// @Param channel_id query string false "Channel ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/comments/sync [post]
func (s *Server) SyncComments(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	if s.syncer == nil {
		respondError(w, http.StatusServiceUnavailable, "UPSTREAM_ERROR", "Comment sync is not configured", nil)
		return
	}
	if channelID := r.URL.Query().Get("channel_id"); channelID != "" {
		channel, err := s.db.GetChannel(r.Context(), channelID)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		if !canAccess(sub, channel.UserID.String()) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Channel not found", nil)
			return
		}
		if err := s.syncer.SyncChannel(r.Context(), channel.ID.String()); err != nil {
			respondDomainError(w, err)
			return
		}
		respondData(w, http.StatusOK, map[string]interface{}{"synced": channel.ID})
		return
	}
	s.syncer.SyncOnce(r.Context())
	respondData(w, http.StatusOK, map[string]interface{}{"synced": "all"})
}

// ListTriggers lists a channel's chatbot triggers in evaluation order.
//
// @Summary List chatbot triggers
// @Tags chatbot
// @Produce json
// @Param channel_id query string true "Channel ID"
// @Success 200 {array} models.ChatbotTrigger
// @Router /api/v1/chatbot/triggers [get]
func (s *Server) ListTriggers(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	if s.triggers == nil {
		respondError(w, http.StatusServiceUnavailable, "UPSTREAM_ERROR", "Chatbot is not configured", nil)
		return
	}
	channel, ok := s.queryChannel(w, r, sub)
	if !ok {
		return
	}
	list, err := s.triggers.List(r.Context(), channel.ID.String())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, list)
}

// CreateTrigger creates an automated comment responder rule.
//
// @Summary Create chatbot trigger
// @Tags chatbot
// @Accept json
// @Produce json
// @Param trigger body createTriggerRequest true "Trigger definition"
// @Success 201 {object} models.ChatbotTrigger
// @Router /api/v1/chatbot/triggers [post]
func (s *Server) CreateTrigger(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	if s.triggers == nil {
		respondError(w, http.StatusServiceUnavailable, "UPSTREAM_ERROR", "Chatbot is not configured", nil)
		return
	}
	var req createTriggerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	channel, err := s.db.GetChannel(r.Context(), req.ChannelID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if !canAccess(sub, channel.UserID.String()) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Channel not found", nil)
		return
	}
	if s.checker != nil {
		if err := s.checker.CheckLimit(r.Context(), channel.UserID, models.ResourceChatbotTriggers); err != nil {
			respondDomainError(w, err)
			return
		}
	}

	trigger := models.NewChatbotTrigger(channel.UserID, channel.ID,
		req.Name, req.MatchType, req.Pattern, req.ResponseTemplate)
	trigger.CaseSensitive = req.CaseSensitive
	trigger.Priority = req.Priority
	trigger.UseAI = req.UseAI
	trigger.Cooldown = time.Duration(req.CooldownSeconds) * time.Second
	if req.Enabled != nil {
		trigger.Enabled = *req.Enabled
	}

	if err := s.triggers.Create(r.Context(), trigger); err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusCreated, trigger)
}

// ownedTrigger loads a trigger by path id and enforces ownership.
func (s *Server) ownedTrigger(w http.ResponseWriter, r *http.Request) (*models.ChatbotTrigger, bool) {
	sub, ok := subject(w, r)
	if !ok {
		return nil, false
	}
	if s.triggers == nil {
		respondError(w, http.StatusServiceUnavailable, "UPSTREAM_ERROR", "Chatbot is not configured", nil)
		return nil, false
	}
	trigger, err := s.triggers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return nil, false
	}
	if !canAccess(sub, trigger.UserID.String()) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Trigger not found", nil)
		return nil, false
	}
	return trigger, true
}

// GetTrigger returns a single trigger.
//
// @Summary Get chatbot trigger
// @Tags chatbot
// @Produce json
// @Param id path string true "Trigger ID"
// @Success 200 {object} models.ChatbotTrigger
// @Router /api/v1/chatbot/triggers/{id} [get]
func (s *Server) GetTrigger(w http.ResponseWriter, r *http.Request) {
	trigger, ok := s.ownedTrigger(w, r)
	if !ok {
		return
	}
	respondData(w, http.StatusOK, trigger)
}

// UpdateTrigger modifies a trigger definition.
//
// @Summary Update chatbot trigger
// @Tags chatbot
// @Accept json
// @Produce json
// @Param id path string true "Trigger ID"
// @Param trigger body updateTriggerRequest true "Fields to update"
// @Success 200 {object} models.ChatbotTrigger
// @Router /api/v1/chatbot/triggers/{id} [put]
func (s *Server) UpdateTrigger(w http.ResponseWriter, r *http.Request) {
	trigger, ok := s.ownedTrigger(w, r)
	if !ok {
		return
	}
	var req updateTriggerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name != nil {
		trigger.Name = *req.Name
	}
	if req.MatchType != nil {
		trigger.MatchType = *req.MatchType
	}
	if req.Pattern != nil {
		trigger.Pattern = *req.Pattern
	}
	if req.CaseSensitive != nil {
		trigger.CaseSensitive = *req.CaseSensitive
	}
	if req.Priority != nil {
		trigger.Priority = *req.Priority
	}
	if req.ResponseTemplate != nil {
		trigger.ResponseTemplate = *req.ResponseTemplate
	}
	if req.UseAI != nil {
		trigger.UseAI = *req.UseAI
	}
	if req.CooldownSeconds != nil {
		trigger.Cooldown = time.Duration(*req.CooldownSeconds) * time.Second
	}
	if req.Enabled != nil {
		trigger.Enabled = *req.Enabled
	}

	if err := s.triggers.Update(r.Context(), trigger); err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, trigger)
}

// DeleteTrigger removes a trigger. Reply history is kept.
//
// @Summary Delete chatbot trigger
// @Tags chatbot
// @Param id path string true "Trigger ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/chatbot/triggers/{id} [delete]
func (s *Server) DeleteTrigger(w http.ResponseWriter, r *http.Request) {
	trigger, ok := s.ownedTrigger(w, r)
	if !ok {
		return
	}
	if err := s.triggers.Delete(r.Context(), trigger.ID.String()); err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{"deleted": trigger.ID})
}

// TestTrigger dry-runs a trigger against sample text. Accepts either a
// stored trigger id or an inline definition; nothing fires and no counters
// move.
//
// @Summary Test chatbot trigger
// @Tags chatbot
// @Accept json
// @Produce json
// @Param test body testTriggerRequest true "Trigger and sample text"
// @Success 200 {object} comments.TestResult
// @Router /api/v1/chatbot/triggers/test [post]
func (s *Server) TestTrigger(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	if s.triggers == nil {
		respondError(w, http.StatusServiceUnavailable, "UPSTREAM_ERROR", "Chatbot is not configured", nil)
		return
	}
	var req testTriggerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var trigger *models.ChatbotTrigger
	if req.TriggerID != "" {
		stored, err := s.triggers.Get(r.Context(), req.TriggerID)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		if !canAccess(sub, stored.UserID.String()) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Trigger not found", nil)
			return
		}
		trigger = stored
	} else {
		if req.MatchType == "" || req.Pattern == "" {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "match_type and pattern are required without trigger_id", nil)
			return
		}
		trigger = &models.ChatbotTrigger{
			MatchType:        req.MatchType,
			Pattern:          req.Pattern,
			CaseSensitive:    req.CaseSensitive,
			ResponseTemplate: req.Response,
		}
	}

	result, err := s.triggers.Test(trigger, req.SampleText)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, result)
}

// ListReplies lists replies the chatbot has posted for a channel.
//
// @Summary List chatbot replies
// @Tags chatbot
// @Produce json
// @Param channel_id query string true "Channel ID"
// @Success 200 {array} models.ChatbotReply
// @Router /api/v1/chatbot/replies [get]
func (s *Server) ListReplies(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	if s.triggers == nil {
		respondError(w, http.StatusServiceUnavailable, "UPSTREAM_ERROR", "Chatbot is not configured", nil)
		return
	}
	channel, ok := s.queryChannel(w, r, sub)
	if !ok {
		return
	}
	limit, offset := s.pageParams(r)
	replies, err := s.triggers.Replies(r.Context(), channel.ID.String(), limit, offset)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, replies)
}

