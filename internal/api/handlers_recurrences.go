// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tubefleet/tubefleet/internal/models"
	"github.com/tubefleet/tubefleet/internal/scheduling"
)

const defaultPreviewCount = 10

// ListRecurrences lists the caller's recurrence patterns, optionally
// scoped to one channel.
//
// @Summary List recurrence patterns
// @Tags recurrences
// @Produce json
// @Security BearerAuth
// @Param channel_id query string false "Filter by channel"
// @Success 200 {object} models.APIResponse
// @Router /api/v1/streams/recurrences [get]
func (s *Server) ListRecurrences(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}

	if channelID := r.URL.Query().Get("channel_id"); channelID != "" {
		channel, err := s.db.GetChannel(r.Context(), channelID)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		if !canAccess(sub, channel.UserID.String()) {
			respondError(w, http.StatusForbidden, "AUTHORIZATION_ERROR", "Channel belongs to another account", nil)
			return
		}
		patterns, err := s.db.ListRecurrencesByChannel(r.Context(), channelID)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		respondData(w, http.StatusOK, patterns)
		return
	}

	userID := sub.ID
	if sub.IsAdmin() {
		if uid := r.URL.Query().Get("user_id"); uid != "" {
			userID = uid
		}
	}
	patterns, err := s.db.ListRecurrencesByUser(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, patterns)
}

// CreateRecurrence registers a pattern over an existing template event.
// The materializer picks it up on its next run.
//
// @Summary Create recurrence pattern
// @Tags recurrences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.APIResponse{data=models.RecurrencePattern}
// @Router /api/v1/streams/recurrences [post]
func (s *Server) CreateRecurrence(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}

	var req createRecurrenceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	channel, err := s.db.GetChannel(r.Context(), req.ChannelID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if !canAccess(sub, channel.UserID.String()) {
		respondError(w, http.StatusForbidden, "AUTHORIZATION_ERROR", "Channel belongs to another account", nil)
		return
	}

	template, err := s.db.GetEvent(r.Context(), req.TemplateEventID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if template.ChannelID != channel.ID {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Template event belongs to a different channel", nil)
		return
	}

	pattern := models.NewRecurrencePattern(channel.ID, channel.UserID, template.ID, req.Frequency, req.StartDate)
	if req.Interval > 0 {
		pattern.Interval = req.Interval
	}
	pattern.DaysOfWeek = req.DaysOfWeek
	pattern.DayOfMonth = req.DayOfMonth
	if req.Timezone != "" {
		if _, err := time.LoadLocation(req.Timezone); err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown timezone", err)
			return
		}
		pattern.Timezone = req.Timezone
	}
	pattern.EndDate = req.EndDate
	pattern.OccurrenceCount = req.OccurrenceCount

	// A pattern with neither bound would generate forever; the horizon
	// caps how far, but we still require the rule to match something.
	if _, ok := scheduling.NextOccurrence(pattern, pattern.StartDate.Add(-time.Second)); !ok {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Pattern never produces an occurrence", nil)
		return
	}

	if err := s.db.CreateRecurrence(r.Context(), pattern); err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusCreated, pattern)
}

// GetRecurrence returns one pattern.
//
// @Summary Get recurrence pattern
// @Tags recurrences
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pattern ID"
// @Success 200 {object} models.APIResponse{data=models.RecurrencePattern}
// @Router /api/v1/streams/recurrences/{id} [get]
func (s *Server) GetRecurrence(w http.ResponseWriter, r *http.Request) {
	pattern, ok := s.ownedRecurrence(w, r)
	if !ok {
		return
	}
	respondData(w, http.StatusOK, pattern)
}

// ownedRecurrence loads the pattern in the path and enforces ownership.
func (s *Server) ownedRecurrence(w http.ResponseWriter, r *http.Request) (*models.RecurrencePattern, bool) {
	sub, ok := subject(w, r)
	if !ok {
		return nil, false
	}
	pattern, err := s.db.GetRecurrence(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return nil, false
	}
	if !canAccess(sub, pattern.UserID.String()) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Pattern not found", nil)
		return nil, false
	}
	return pattern, true
}

// UpdateRecurrence edits a pattern's rule. Already-generated occurrences
// are not touched; the new rule applies from the next materializer run.
//
// @Summary Update recurrence pattern
// @Tags recurrences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pattern ID"
// @Success 200 {object} models.APIResponse{data=models.RecurrencePattern}
// @Router /api/v1/streams/recurrences/{id} [put]
func (s *Server) UpdateRecurrence(w http.ResponseWriter, r *http.Request) {
	pattern, ok := s.ownedRecurrence(w, r)
	if !ok {
		return
	}

	var req updateRecurrenceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Frequency != nil {
		pattern.Frequency = *req.Frequency
	}
	if req.Interval != nil {
		pattern.Interval = *req.Interval
	}
	if req.DaysOfWeek != nil {
		pattern.DaysOfWeek = req.DaysOfWeek
	}
	if req.DayOfMonth != nil {
		pattern.DayOfMonth = *req.DayOfMonth
	}
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown timezone", err)
			return
		}
		pattern.Timezone = *req.Timezone
	}
	if req.EndDate != nil {
		pattern.EndDate = req.EndDate
	}
	if req.OccurrenceCount != nil {
		pattern.OccurrenceCount = req.OccurrenceCount
	}
	pattern.UpdatedAt = time.Now().UTC()

	if err := s.db.UpdateRecurrence(r.Context(), pattern); err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, pattern)
}

// DeleteRecurrence cancels a pattern. Generated child events stay.
//
// @Summary Delete recurrence pattern
// @Tags recurrences
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pattern ID"
// @Success 200 {object} models.APIResponse
// @Router /api/v1/streams/recurrences/{id} [delete]
func (s *Server) DeleteRecurrence(w http.ResponseWriter, r *http.Request) {
	pattern, ok := s.ownedRecurrence(w, r)
	if !ok {
		return
	}
	if err := s.db.DeleteRecurrence(r.Context(), pattern.ID.String()); err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// PauseRecurrence stops materialization without losing progress.
//
// @Summary Pause recurrence pattern
// @Tags recurrences
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pattern ID"
// @Success 200 {object} models.APIResponse
// @Router /api/v1/streams/recurrences/{id}/pause [post]
func (s *Server) PauseRecurrence(w http.ResponseWriter, r *http.Request) {
	s.setRecurrenceStatus(w, r, models.RecurrenceStatusActive, models.RecurrenceStatusPaused)
}

// ResumeRecurrence re-enables a paused pattern.
//
// @Summary Resume recurrence pattern
// @Tags recurrences
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pattern ID"
// @Success 200 {object} models.APIResponse
// @Router /api/v1/streams/recurrences/{id}/resume [post]
func (s *Server) ResumeRecurrence(w http.ResponseWriter, r *http.Request) {
	s.setRecurrenceStatus(w, r, models.RecurrenceStatusPaused, models.RecurrenceStatusActive)
}

func (s *Server) setRecurrenceStatus(w http.ResponseWriter, r *http.Request, from, to string) {
	pattern, ok := s.ownedRecurrence(w, r)
	if !ok {
		return
	}
	if pattern.Status != from {
		respondError(w, http.StatusConflict, "CONFLICT", "Pattern is "+pattern.Status+", not "+from, nil)
		return
	}
	if err := s.db.SetRecurrenceStatus(r.Context(), pattern.ID.String(), to); err != nil {
		respondDomainError(w, err)
		return
	}
	pattern.Status = to
	respondData(w, http.StatusOK, pattern)
}

// PreviewRecurrence expands an ad-hoc pattern without persisting anything.
//
// @Summary Preview occurrences for an ad-hoc pattern
// @Tags recurrences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Router /api/v1/streams/recurrences/preview [post]
func (s *Server) PreviewRecurrence(w http.ResponseWriter, r *http.Request) {
	if _, ok := subject(w, r); !ok {
		return
	}

	var req previewRecurrenceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	pattern := &models.RecurrencePattern{
		ID:              uuid.New(),
		Frequency:       req.Frequency,
		Interval:        req.Interval,
		DaysOfWeek:      req.DaysOfWeek,
		DayOfMonth:      req.DayOfMonth,
		Timezone:        req.Timezone,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		OccurrenceCount: req.OccurrenceCount,
		Status:          models.RecurrenceStatusActive,
	}
	if pattern.Interval <= 0 {
		pattern.Interval = 1
	}
	if pattern.Timezone != "" {
		if _, err := time.LoadLocation(pattern.Timezone); err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown timezone", err)
			return
		}
	}

	after := pattern.StartDate.Add(-time.Second)
	if req.After != nil {
		after = *req.After
	}
	count := req.Count
	if count <= 0 {
		count = defaultPreviewCount
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"occurrences": scheduling.Preview(pattern, after, count),
	})
}

// PreviewRecurrenceByID expands a stored pattern from where it left off.
//
// @Summary Preview upcoming occurrences
// @Tags recurrences
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pattern ID"
// @Param count query int false "Occurrences to preview"
// @Success 200 {object} models.APIResponse
// @Router /api/v1/streams/recurrences/{id}/preview [get]
func (s *Server) PreviewRecurrenceByID(w http.ResponseWriter, r *http.Request) {
	pattern, ok := s.ownedRecurrence(w, r)
	if !ok {
		return
	}

	after := time.Now()
	if pattern.LastMaterializedAt != nil && pattern.LastMaterializedAt.After(after) {
		after = *pattern.LastMaterializedAt
	}
	if t := getTimeParam(r, "after"); t != nil {
		after = *t
	}

	count := getIntParam(r, "count", defaultPreviewCount)
	if count <= 0 || count > 100 {
		count = defaultPreviewCount
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"pattern_id":  pattern.ID,
		"occurrences": scheduling.Preview(pattern, after, count),
	})
}
