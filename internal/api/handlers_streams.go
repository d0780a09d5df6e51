// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tubefleet/tubefleet/internal/database"
	"github.com/tubefleet/tubefleet/internal/logging"
	"github.com/tubefleet/tubefleet/internal/models"
	"github.com/tubefleet/tubefleet/internal/youtube"
)

// validTransitions whitelists lifecycle moves. Terminal states have no
// outgoing edges; a canceled or failed stream is rescheduled by creating
// a new one.
var validTransitions = map[string][]string{
	models.EventStatusScheduled: {models.EventStatusReady, models.EventStatusLive, models.EventStatusCanceled, models.EventStatusFailed},
	models.EventStatusReady:     {models.EventStatusLive, models.EventStatusCanceled, models.EventStatusFailed},
	models.EventStatusLive:      {models.EventStatusComplete, models.EventStatusFailed},
}

func transitionAllowed(from, to string) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ListStreams lists live events, filtered and paginated. Non-admins only
// see their own.
//
// @Summary List streams
// @Tags streams
// @Produce json
// @Security BearerAuth
// @Param channel_id query string false "Filter by channel"
// @Param status query string false "Comma-separated statuses"
// @Param from query string false "RFC 3339 lower bound"
// @Param to query string false "RFC 3339 upper bound"
// @Success 200 {object} models.APIResponse{data=models.EventsResponse}
// @Router /api/v1/streams [get]
func (s *Server) ListStreams(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}

	limit, offset := s.pageParams(r)
	filter := database.EventFilter{
		ChannelID:    r.URL.Query().Get("channel_id"),
		RecurrenceID: r.URL.Query().Get("recurrence_id"),
		From:         getTimeParam(r, "from"),
		To:           getTimeParam(r, "to"),
		Limit:        limit + 1, // one extra row decides has_more
		Offset:       offset,
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		filter.Statuses = strings.Split(raw, ",")
	}
	if !sub.IsAdmin() {
		filter.UserID = sub.ID
	} else if uid := r.URL.Query().Get("user_id"); uid != "" {
		filter.UserID = uid
	}

	sortBy := r.URL.Query().Get("sort_by")
	descending := r.URL.Query().Get("order") == "desc"

	events, err := s.db.ListEvents(r.Context(), filter, sortBy, descending)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	hasMore := len(events) > limit
	if hasMore {
		events = events[:limit]
	}

	respondData(w, http.StatusOK, models.EventsResponse{
		Events: events,
		Pagination: models.PaginationInfo{
			Limit:   limit,
			HasMore: hasMore,
		},
	})
}

// CreateStream schedules a new live event. The plan limit and the conflict
// check both run before the row is written; conflicts reject with 409 and
// the conflicting set unless force is set.
//
// @Summary Schedule stream
// @Tags streams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.APIResponse{data=models.LiveEvent}
// @Failure 409 {object} models.APIResponse
// @Router /api/v1/streams [post]
func (s *Server) CreateStream(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}

	var req createStreamRequest
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

	userID := channel.UserID
	if s.checker != nil {
		if err := s.checker.CheckLimit(r.Context(), userID, models.ResourceScheduledEvents); err != nil {
			respondDomainError(w, err)
			return
		}
	}

	ev := models.NewLiveEvent(channel.ID, userID, req.Title, req.StartTime)
	ev.Description = req.Description
	ev.EndTime = req.EndTime
	if req.Visibility != "" {
		ev.Visibility = req.Visibility
	}
	ev.EnableDVR = req.EnableDVR
	ev.EnableAutoStart = req.AutoStart
	ev.EnableAutoStop = req.AutoStop
	if req.CategoryID != "" {
		ev.CategoryID = &req.CategoryID
	}
	if len(req.Tags) > 0 {
		tags := strings.Join(req.Tags, ",")
		ev.Tags = &tags
	}

	if !s.respondOnConflict(w, r, ev, req.Force, "") {
		return
	}

	if err := s.db.CreateEvent(r.Context(), ev); err != nil {
		respondDomainError(w, err)
		return
	}
	if s.publisher != nil {
		if err := s.publisher.StreamScheduled(r.Context(), ev); err != nil {
			logging.Warn().Err(err).Str("event_id", ev.ID.String()).Msg("Failed to publish stream.scheduled")
		}
	}

	respondData(w, http.StatusCreated, ev)
}

// respondOnConflict runs the conflict check for a candidate event. It
// returns false after writing the 409 when conflicts exist and force is
// unset. excludeID drops the event being updated from its own conflicts.
func (s *Server) respondOnConflict(w http.ResponseWriter, r *http.Request, ev *models.LiveEvent, force bool, excludeID string) bool {
	if s.conflicts == nil {
		return true
	}
	conflicts, err := s.conflicts.Check(r.Context(), ev)
	if err != nil {
		respondDomainError(w, err)
		return false
	}
	if excludeID != "" {
		kept := conflicts[:0]
		for _, c := range conflicts {
			if c.ID.String() != excludeID {
				kept = append(kept, c)
			}
		}
		conflicts = kept
	}
	if len(conflicts) > 0 && !force {
		respondErrorDetails(w, http.StatusConflict, "CONFLICT", "Time slot conflicts with existing streams", map[string]interface{}{
			"conflicts": conflicts,
		})
		return false
	}
	return true
}

// GetStream returns one live event.
//
// @Summary Get stream
// @Tags streams
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} models.APIResponse{data=models.LiveEvent}
// @Failure 404 {object} models.APIResponse
// @Router /api/v1/streams/{id} [get]
func (s *Server) GetStream(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	ev, err := s.db.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if !canAccess(sub, ev.UserID.String()) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Event not found", nil)
		return
	}
	respondData(w, http.StatusOK, ev)
}

// UpdateStream reschedules or edits an event. Time changes re-run the
// conflict check; the remote broadcast is pushed the new metadata
// best-effort.
//
// @Summary Update stream
// @Tags streams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} models.APIResponse{data=models.LiveEvent}
// @Failure 409 {object} models.APIResponse
// @Router /api/v1/streams/{id} [put]
func (s *Server) UpdateStream(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}

	var req updateStreamRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ev, err := s.db.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if !canAccess(sub, ev.UserID.String()) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Event not found", nil)
		return
	}
	if ev.IsTerminal() {
		respondError(w, http.StatusConflict, "CONFLICT", "Event is in a terminal state", nil)
		return
	}

	timesChanged := false
	if req.Title != nil {
		ev.Title = *req.Title
	}
	if req.Description != nil {
		ev.Description = req.Description
	}
	if req.StartTime != nil {
		ev.StartTime = *req.StartTime
		timesChanged = true
	}
	if req.EndTime != nil {
		ev.EndTime = req.EndTime
		timesChanged = true
	}
	if req.Visibility != nil {
		ev.Visibility = *req.Visibility
	}
	if req.EnableDVR != nil {
		ev.EnableDVR = *req.EnableDVR
	}
	if req.AutoStart != nil {
		ev.EnableAutoStart = *req.AutoStart
	}
	if req.AutoStop != nil {
		ev.EnableAutoStop = *req.AutoStop
	}
	if req.CategoryID != nil {
		ev.CategoryID = req.CategoryID
	}
	if req.Tags != nil {
		tags := strings.Join(req.Tags, ",")
		ev.Tags = &tags
	}
	ev.UpdatedAt = time.Now().UTC()

	if timesChanged && !s.respondOnConflict(w, r, ev, req.Force, ev.ID.String()) {
		return
	}

	if err := s.db.UpdateEvent(r.Context(), ev); err != nil {
		respondDomainError(w, err)
		return
	}

	if s.broadcaster != nil && ev.BroadcastID != nil {
		if err := s.broadcaster.Reschedule(r.Context(), ev.ChannelID.String(), ev); err != nil {
			logging.Warn().Err(err).Str("event_id", ev.ID.String()).Msg("Failed to push update to remote broadcast")
		}
	}
	if s.publisher != nil {
		if err := s.publisher.StreamUpdated(r.Context(), ev); err != nil {
			logging.Warn().Err(err).Str("event_id", ev.ID.String()).Msg("Failed to publish stream.updated")
		}
	}

	respondData(w, http.StatusOK, ev)
}

// CancelStream cancels an event, deleting the remote broadcast if one was
// created. The row is kept for history.
//
// @Summary Cancel stream
// @Tags streams
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} models.APIResponse{data=models.LiveEvent}
// @Router /api/v1/streams/{id} [delete]
func (s *Server) CancelStream(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}

	ev, err := s.db.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if !canAccess(sub, ev.UserID.String()) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Event not found", nil)
		return
	}
	if ev.Status == models.EventStatusCanceled {
		respondData(w, http.StatusOK, ev)
		return
	}
	if ev.IsTerminal() {
		respondError(w, http.StatusConflict, "CONFLICT", "Event is in a terminal state", nil)
		return
	}

	if err := s.db.SetEventStatus(r.Context(), ev.ID.String(), models.EventStatusCanceled); err != nil {
		respondDomainError(w, err)
		return
	}
	ev.Status = models.EventStatusCanceled

	if s.broadcaster != nil && ev.BroadcastID != nil {
		if err := s.broadcaster.Cancel(r.Context(), ev.ChannelID.String(), *ev.BroadcastID); err != nil {
			logging.Warn().Err(err).Str("event_id", ev.ID.String()).Msg("Failed to delete remote broadcast")
		}
	}
	if s.publisher != nil {
		if err := s.publisher.StreamCanceled(r.Context(), ev, "canceled by "+sub.Username); err != nil {
			logging.Warn().Err(err).Str("event_id", ev.ID.String()).Msg("Failed to publish stream.canceled")
		}
	}

	respondData(w, http.StatusOK, ev)
}

// TransitionStream moves an event through its lifecycle, driving the
// remote broadcast transition for ready/live/complete.
//
// @Summary Transition stream status
// @Tags streams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} models.APIResponse{data=models.LiveEvent}
// @Failure 409 {object} models.APIResponse
// @Router /api/v1/streams/{id}/status [post]
func (s *Server) TransitionStream(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}

	var req transitionStreamRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ev, err := s.db.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if !canAccess(sub, ev.UserID.String()) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Event not found", nil)
		return
	}
	if !transitionAllowed(ev.Status, req.Status) {
		respondError(w, http.StatusConflict, "CONFLICT",
			"Cannot transition from "+ev.Status+" to "+req.Status, nil)
		return
	}

	if s.broadcaster != nil && ev.BroadcastID != nil {
		if lifecycle := remoteLifecycle(req.Status); lifecycle != "" {
			if err := s.broadcaster.Transition(r.Context(), ev.ChannelID.String(), *ev.BroadcastID, lifecycle); err != nil {
				respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Remote broadcast transition failed", err)
				return
			}
		}
	}

	if err := s.db.SetEventStatus(r.Context(), ev.ID.String(), req.Status); err != nil {
		respondDomainError(w, err)
		return
	}
	ev.Status = req.Status

	if s.publisher != nil {
		var pubErr error
		if req.Status == models.EventStatusCanceled {
			pubErr = s.publisher.StreamCanceled(r.Context(), ev, req.Reason)
		} else {
			pubErr = s.publisher.StreamUpdated(r.Context(), ev)
		}
		if pubErr != nil {
			logging.Warn().Err(pubErr).Str("event_id", ev.ID.String()).Msg("Failed to publish stream transition")
		}
	}

	respondData(w, http.StatusOK, ev)
}

// remoteLifecycle maps a local status to the YouTube broadcast lifecycle
// transition that realizes it. Statuses without a remote counterpart map
// to empty.
func remoteLifecycle(status string) string {
	switch status {
	case models.EventStatusReady:
		return youtube.BroadcastLifeCycleTesting
	case models.EventStatusLive:
		return youtube.BroadcastLifeCycleLive
	case models.EventStatusComplete:
		return youtube.BroadcastLifeCycleComplete
	default:
		return ""
	}
}

// CheckConflicts returns the events overlapping a candidate window.
//
// @Summary Check schedule conflicts
// @Tags streams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Router /api/v1/streams/conflicts [post]
func (s *Server) CheckConflicts(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}

	var req conflictCheckRequest
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

	end := req.StartTime.Add(models.DefaultEventDuration)
	if req.EndTime != nil {
		end = *req.EndTime
	}

	conflicts, err := s.conflicts.CheckWindow(r.Context(), req.ChannelID, req.StartTime, end)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if req.ExcludeID != "" {
		kept := conflicts[:0]
		for _, c := range conflicts {
			if c.ID.String() != req.ExcludeID {
				kept = append(kept, c)
			}
		}
		conflicts = kept
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"conflict":  len(conflicts) > 0,
		"conflicts": conflicts,
	})
}

// StreamIngestion reveals the RTMP ingestion address and stream key to the
// event's owner. The key is stored sealed and opened on demand.
//
// @Summary Get ingestion credentials
// @Tags streams
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /api/v1/streams/{id}/ingestion [get]
func (s *Server) StreamIngestion(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	ev, err := s.db.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if !canAccess(sub, ev.UserID.String()) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Event not found", nil)
		return
	}
	if ev.IngestionURL == nil || ev.StreamKeyEncrypted == nil || s.cipher == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "No ingestion credentials issued for this event", nil)
		return
	}

	key, err := s.cipher.Decrypt(*ev.StreamKeyEncrypted)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to open stream key", err)
		return
	}

	respondData(w, http.StatusOK, streamIngestionResponse(ev, key))
}

// RotateStreamKey binds a fresh RTMP stream to the event's broadcast,
// invalidating the previous stream key.
//
// @Summary Rotate stream key
// @Tags streams
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} models.APIResponse
// @Failure 409 {object} models.APIResponse
// @Router /api/v1/streams/{id}/ingestion/rotate [post]
func (s *Server) RotateStreamKey(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	if s.broadcaster == nil || s.cipher == nil {
		respondError(w, http.StatusServiceUnavailable, "UPSTREAM_ERROR", "Broadcast service unavailable", nil)
		return
	}

	ev, err := s.db.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if !canAccess(sub, ev.UserID.String()) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Event not found", nil)
		return
	}
	if ev.BroadcastID == nil {
		respondError(w, http.StatusConflict, "CONFLICT", "Event has no remote broadcast yet", nil)
		return
	}
	if ev.IsTerminal() {
		respondError(w, http.StatusConflict, "CONFLICT", "Event is in a terminal state", nil)
		return
	}

	binding, err := s.broadcaster.RotateStream(r.Context(), ev.ChannelID.String(), ev)
	if err != nil {
		respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Failed to rotate stream", err)
		return
	}

	sealed, err := s.cipher.Encrypt(binding.StreamKey)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to seal stream key", err)
		return
	}
	ev.StreamID = &binding.StreamID
	ev.IngestionURL = &binding.IngestionURL
	ev.StreamKeyEncrypted = &sealed
	ev.UpdatedAt = time.Now().UTC()

	if err := s.db.UpdateEvent(r.Context(), ev); err != nil {
		respondDomainError(w, err)
		return
	}

	respondData(w, http.StatusOK, streamIngestionResponse(ev, binding.StreamKey))
}

func streamIngestionResponse(ev *models.LiveEvent, key string) map[string]interface{} {
	resp := map[string]interface{}{
		"event_id":   ev.ID,
		"stream_key": key,
	}
	if ev.IngestionURL != nil {
		resp["ingestion_url"] = *ev.IngestionURL
	}
	if ev.StreamID != nil {
		resp["stream_id"] = *ev.StreamID
	}
	if ev.BroadcastID != nil {
		resp["broadcast_id"] = *ev.BroadcastID
	}
	return resp
}
