// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tubefleet/tubefleet/internal/models"
	"github.com/tubefleet/tubefleet/internal/moderation"
)

// ListModerationRules lists the caller's moderation rules.
//
// @Summary List moderation rules
// @Tags moderation
// @Produce json
// @Success 200 {array} models.ModerationRule
// @Router /api/v1/moderation/rules [get]
func (s *Server) ListModerationRules(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	userID, err := actorUUID(sub, r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user id", nil)
		return
	}
	rules, err := s.db.ListModerationRulesByUser(r.Context(), userID.String())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, rules)
}

// CreateModerationRule creates a keyword or regex rule for the caller.
//
// @Summary Create moderation rule
// @Tags moderation
// @Accept json
// @Produce json
// @Param rule body createRuleRequest true "Rule definition"
// @Success 201 {object} models.ModerationRule
// @Router /api/v1/moderation/rules [post]
func (s *Server) CreateModerationRule(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	var req createRuleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	userID, err := subjectUUID(sub)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user id", nil)
		return
	}

	maxLen := moderation.DefaultMaxPatternLength
	if s.cfg != nil && s.cfg.Moderation.MaxPatternLength > 0 {
		maxLen = s.cfg.Moderation.MaxPatternLength
	}
	if err := moderation.ValidatePattern(req.RuleType, req.Pattern, maxLen); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	if s.checker != nil {
		if err := s.checker.CheckLimit(r.Context(), userID, models.ResourceModerationRules); err != nil {
			respondDomainError(w, err)
			return
		}
	}

	rule := models.NewModerationRule(userID, req.Name, req.RuleType, req.Pattern, req.Action)
	rule.Severity = req.Severity
	if req.Enabled != nil {
		rule.Enabled = *req.Enabled
	}
	if req.ChannelID != nil {
		channelID, err := uuid.Parse(*req.ChannelID)
		if err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid channel id", nil)
			return
		}
		channel, err := s.db.GetChannel(r.Context(), channelID.String())
		if err != nil {
			respondDomainError(w, err)
			return
		}
		if !canAccess(sub, channel.UserID.String()) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Channel not found", nil)
			return
		}
		rule.ChannelID = &channelID
	}

	if err := s.db.CreateModerationRule(r.Context(), rule); err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusCreated, rule)
}

// ownedRule loads a rule by path id and enforces ownership. Non-owners get
// 404 rather than 403 to avoid leaking rule existence.
func (s *Server) ownedRule(w http.ResponseWriter, r *http.Request) (*models.ModerationRule, bool) {
	sub, ok := subject(w, r)
	if !ok {
		return nil, false
	}
	rule, err := s.db.GetModerationRule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return nil, false
	}
	if !canAccess(sub, rule.UserID.String()) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Rule not found", nil)
		return nil, false
	}
	return rule, true
}

// GetModerationRule returns a single rule.
//
// @Summary Get moderation rule
// @Tags moderation
// @Produce json
// @Param id path string true "Rule ID"
// @Success 200 {object} models.ModerationRule
// @Router /api/v1/moderation/rules/{id} [get]
func (s *Server) GetModerationRule(w http.ResponseWriter, r *http.Request) {
	rule, ok := s.ownedRule(w, r)
	if !ok {
		return
	}
	respondData(w, http.StatusOK, rule)
}

// UpdateModerationRule modifies a rule and drops any cached detector for it.
//
// @Summary Update moderation rule
// @Tags moderation
// @Accept json
// @Produce json
// @Param id path string true "Rule ID"
// @Param rule body updateRuleRequest true "Fields to update"
// @Success 200 {object} models.ModerationRule
// @Router /api/v1/moderation/rules/{id} [put]
func (s *Server) UpdateModerationRule(w http.ResponseWriter, r *http.Request) {
	rule, ok := s.ownedRule(w, r)
	if !ok {
		return
	}
	var req updateRuleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.Pattern != nil {
		maxLen := moderation.DefaultMaxPatternLength
		if s.cfg != nil && s.cfg.Moderation.MaxPatternLength > 0 {
			maxLen = s.cfg.Moderation.MaxPatternLength
		}
		if err := moderation.ValidatePattern(rule.RuleType, *req.Pattern, maxLen); err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}
		rule.Pattern = *req.Pattern
	}
	if req.Action != nil {
		rule.Action = *req.Action
	}
	if req.Severity != nil {
		rule.Severity = *req.Severity
	}
	if req.Enabled != nil {
		rule.Enabled = *req.Enabled
	}

	if err := s.db.UpdateModerationRule(r.Context(), rule); err != nil {
		respondDomainError(w, err)
		return
	}
	if s.moderation != nil {
		s.moderation.Forget(rule.ID)
	}
	respondData(w, http.StatusOK, rule)
}

// DeleteModerationRule removes a rule.
//
// @Summary Delete moderation rule
// @Tags moderation
// @Param id path string true "Rule ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/moderation/rules/{id} [delete]
func (s *Server) DeleteModerationRule(w http.ResponseWriter, r *http.Request) {
	rule, ok := s.ownedRule(w, r)
	if !ok {
		return
	}
	if err := s.db.DeleteModerationRule(r.Context(), rule.ID.String()); err != nil {
		respondDomainError(w, err)
		return
	}
	if s.moderation != nil {
		s.moderation.Forget(rule.ID)
	}
	respondData(w, http.StatusOK, map[string]interface{}{"deleted": rule.ID})
}

// ListViolations lists moderation violations for a channel, optionally
// filtered by review status.
//
// @Summary List violations
// @Tags moderation
// @Produce json
// @Param channel_id query string true "Channel ID"
// @Param status query string false "Review status filter"
// @Success 200 {array} models.ModerationViolation
// @Router /api/v1/moderation/violations [get]
func (s *Server) ListViolations(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	channelID := r.URL.Query().Get("channel_id")
	if channelID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "channel_id is required", nil)
		return
	}
	channel, err := s.db.GetChannel(r.Context(), channelID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if !canAccess(sub, channel.UserID.String()) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Channel not found", nil)
		return
	}
	status := r.URL.Query().Get("status")
	switch status {
	case "", models.ReviewStatusPending, models.ReviewStatusUpheld, models.ReviewStatusOverturned:
	default:
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown review status", nil)
		return
	}
	limit, offset := s.pageParams(r)
	violations, err := s.db.ListViolationsByChannel(r.Context(), channel.ID.String(), status, limit, offset)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, violations)
}

// ReviewViolation marks a pending violation upheld or overturned.
//
// @Summary Review violation
// @Tags moderation
// @Accept json
// @Produce json
// @Param id path string true "Violation ID"
// @Param review body reviewViolationRequest true "Review decision"
// @Success 200 {object} models.ModerationViolation
// @Router /api/v1/moderation/violations/{id}/review [post]
func (s *Server) ReviewViolation(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	var req reviewViolationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	violationID := chi.URLParam(r, "id")
	violation, err := s.db.GetViolation(r.Context(), violationID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	channel, err := s.db.GetChannel(r.Context(), violation.ChannelID.String())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if !canAccess(sub, channel.UserID.String()) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Violation not found", nil)
		return
	}
	if violation.ReviewStatus != models.ReviewStatusPending {
		respondError(w, http.StatusConflict, "CONFLICT", "Violation has already been reviewed", nil)
		return
	}
	if err := s.db.ReviewViolation(r.Context(), violationID, req.Status, sub.Username); err != nil {
		respondDomainError(w, err)
		return
	}
	updated, err := s.db.GetViolation(r.Context(), violationID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, updated)
}

// ScanComment runs the moderation engine against a stored comment on demand.
//
// @Summary Scan comment
// @Tags moderation
// @Accept json
// @Produce json
// @Param scan body scanCommentRequest true "Comment to scan"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/moderation/scan [post]
func (s *Server) ScanComment(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	if s.moderation == nil {
		respondError(w, http.StatusServiceUnavailable, "UPSTREAM_ERROR", "Moderation is not configured", nil)
		return
	}
	var req scanCommentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	comment, err := s.db.GetCommentByYouTubeID(r.Context(), req.CommentID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	channel, err := s.db.GetChannel(r.Context(), comment.ChannelID.String())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if !canAccess(sub, channel.UserID.String()) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Comment not found", nil)
		return
	}
	violations, err := s.moderation.ScanComment(r.Context(), comment)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"comment_id": comment.YouTubeCommentID,
		"violations": violations,
	})
}
