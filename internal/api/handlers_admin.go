// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tubefleet/tubefleet/internal/audit"
	"github.com/tubefleet/tubefleet/internal/auth"
	"github.com/tubefleet/tubefleet/internal/database"
	"github.com/tubefleet/tubefleet/internal/models"
)

// ListUsers lists accounts with pagination.
//
// @Summary List users
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/admin/users [get]
func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := s.pageParams(r)
	users, err := s.db.ListUsers(r.Context(), limit, offset)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	total, err := s.db.CountUsers(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"users": users,
		"total": total,
	})
}

// CreateUser provisions an account.
//
// @Summary Create user
// @Tags admin
// @Accept json
// @Produce json
// @Param user body createUserRequest true "Account definition"
// @Success 201 {object} models.User
// @Router /api/v1/admin/users [post]
func (s *Server) CreateUser(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	var req createUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := auth.ValidatePassword(req.Password, req.Username); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	user := models.NewUser(req.Username, req.Email)
	user.Role = req.Role
	user.PasswordHash = hash
	user.DisplayName = req.DisplayName

	if err := s.db.CreateUser(r.Context(), user); err != nil {
		respondDomainError(w, err)
		return
	}
	if s.audit != nil {
		s.audit.LogUserChange(r.Context(), audit.EventTypeUserCreated,
			auditActor(sub), audit.SourceFromRequest(r),
			user.ID.String(), user.Username,
			fmt.Sprintf("created with role %s", user.Role))
	}
	respondData(w, http.StatusCreated, user)
}

// GetUser returns a single account.
//
// @Summary Get user
// @Tags admin
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.User
// @Router /api/v1/admin/users/{id} [get]
func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.db.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, user)
}

// UpdateUser modifies an account's email, role, status, or display name.
//
// @Summary Update user
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param user body updateUserRequest true "Fields to update"
// @Success 200 {object} models.User
// @Router /api/v1/admin/users/{id} [put]
func (s *Server) UpdateUser(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	user, err := s.db.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	var req updateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var changes []string
	if req.Email != nil && *req.Email != user.Email {
		user.Email = *req.Email
		changes = append(changes, "email")
	}
	if req.Role != nil && *req.Role != user.Role {
		user.Role = *req.Role
		changes = append(changes, "role="+user.Role)
	}
	if req.Status != nil && *req.Status != user.Status {
		user.Status = *req.Status
		changes = append(changes, "status="+user.Status)
	}
	if req.DisplayName != nil {
		user.DisplayName = req.DisplayName
		changes = append(changes, "display_name")
	}

	if len(changes) == 0 {
		respondData(w, http.StatusOK, user)
		return
	}
	if err := s.db.UpdateUser(r.Context(), user); err != nil {
		respondDomainError(w, err)
		return
	}
	if s.audit != nil {
		s.audit.LogUserChange(r.Context(), audit.EventTypeUserModified,
			auditActor(sub), audit.SourceFromRequest(r),
			user.ID.String(), user.Username,
			"changed "+strings.Join(changes, ", "))
	}
	respondData(w, http.StatusOK, user)
}

// DeactivateUser suspends an account and revokes all of its sessions.
//
// @Summary Deactivate user
// @Tags admin
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/admin/users/{id}/deactivate [post]
func (s *Server) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	userID := chi.URLParam(r, "id")
	if userID == sub.ID {
		respondError(w, http.StatusConflict, "CONFLICT", "Cannot deactivate your own account", nil)
		return
	}
	user, err := s.db.GetUser(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if err := s.db.SetUserStatus(r.Context(), user.ID.String(), models.UserStatusSuspended); err != nil {
		respondDomainError(w, err)
		return
	}
	revoked := 0
	if s.auth != nil {
		if n, err := s.auth.LogoutAll(r.Context(), user.ID.String()); err == nil {
			revoked = n
		}
	}
	if s.audit != nil {
		s.audit.LogUserChange(r.Context(), audit.EventTypeUserDeactivated,
			auditActor(sub), audit.SourceFromRequest(r),
			user.ID.String(), user.Username,
			fmt.Sprintf("suspended, %d sessions revoked", revoked))
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"id":               user.ID,
		"status":           models.UserStatusSuspended,
		"sessions_revoked": revoked,
	})
}

// auditFilterFromRequest builds a query filter from URL parameters. Shared
// by the audit query and export endpoints.
func (s *Server) auditFilterFromRequest(r *http.Request) audit.QueryFilter {
	q := r.URL.Query()
	filter := audit.QueryFilter{
		ActorID:    q.Get("actor_id"),
		TargetID:   q.Get("target_id"),
		SourceIP:   q.Get("source_ip"),
		RequestID:  q.Get("request_id"),
		SearchText: q.Get("search"),
		StartTime:  getTimeParam(r, "start"),
		EndTime:    getTimeParam(r, "end"),
		OrderBy:    "timestamp",
		OrderDesc:  true,
	}
	for _, t := range strings.Split(q.Get("types"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			filter.Types = append(filter.Types, audit.EventType(t))
		}
	}
	for _, sev := range strings.Split(q.Get("severities"), ",") {
		if sev = strings.TrimSpace(sev); sev != "" {
			filter.Severities = append(filter.Severities, audit.Severity(sev))
		}
	}
	filter.Limit, filter.Offset = s.pageParams(r)
	return filter
}

// QueryAudit searches the audit trail.
//
// @Summary Query audit events
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/admin/audit [get]
func (s *Server) QueryAudit(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		respondError(w, http.StatusServiceUnavailable, "UPSTREAM_ERROR", "Audit logging is not configured", nil)
		return
	}
	filter := s.auditFilterFromRequest(r)
	events, err := s.audit.Query(r.Context(), filter)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	total, err := s.audit.Count(r.Context(), filter)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"total":  total,
	})
}

// ExportAudit downloads matching audit events as CSV or JSON. The export
// itself is recorded in the trail.
//
// @Summary Export audit events
// @Tags admin
// @Produce json
// @Param format query string false "csv or json (default json)"
// @Success 200 {string} string
// @Router /api/v1/admin/audit/export [get]
func (s *Server) ExportAudit(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	if s.audit == nil {
		respondError(w, http.StatusServiceUnavailable, "UPSTREAM_ERROR", "Audit logging is not configured", nil)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	filter := s.auditFilterFromRequest(r)
	events, err := s.audit.Query(r.Context(), filter)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	var body []byte
	var contentType, filename string
	switch format {
	case "csv":
		body, err = (&audit.CSVExporter{}).Export(events)
		contentType = "text/csv"
		filename = "audit.csv"
	case "json":
		body, err = (&audit.JSONExporter{}).Export(events)
		contentType = "application/json"
		filename = "audit.json"
	default:
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "format must be csv or json", nil)
		return
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}

	s.audit.LogDataExport(r.Context(), auditActor(sub), audit.SourceFromRequest(r), format, len(events))

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// PerformanceStats returns per-endpoint latency percentiles from the
// in-memory sample window.
//
// @Summary Performance statistics
// @Tags admin
// @Produce json
// @Success 200 {array} middleware.EndpointStats
// @Router /api/v1/admin/performance [get]
func (s *Server) PerformanceStats(w http.ResponseWriter, r *http.Request) {
	if s.perf == nil {
		respondError(w, http.StatusServiceUnavailable, "UPSTREAM_ERROR", "Performance monitoring is not configured", nil)
		return
	}
	respondData(w, http.StatusOK, s.perf.Stats())
}

// ExportUserData bundles an account's stored data for a portability
// request: profile, channels, events, subscription, invoices, and
// notifications.
//
// @Summary Export user data
// @Tags admin
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/admin/export/{user_id} [get]
func (s *Server) ExportUserData(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	userID := chi.URLParam(r, "user_id")
	user, err := s.db.GetUser(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	channels, err := s.db.ListChannelsByUser(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	events, err := s.db.ListEvents(r.Context(), database.EventFilter{UserID: userID}, "start_time", false)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	invoices, err := s.db.ListInvoicesByUser(r.Context(), userID, 1000, 0)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	notifications, err := s.db.ListNotificationsByUser(r.Context(), userID, false, 1000, 0)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	export := map[string]interface{}{
		"user":          user,
		"channels":      channels,
		"events":        events,
		"invoices":      invoices,
		"notifications": notifications,
	}
	// Subscription is optional; absence is not an error.
	if subscription, err := s.db.GetLiveSubscriptionByUser(r.Context(), userID); err == nil {
		export["subscription"] = subscription
	}

	records := 1 + len(channels) + len(events) + len(invoices) + len(notifications)
	if s.audit != nil {
		s.audit.LogDataExport(r.Context(), auditActor(sub), audit.SourceFromRequest(r), "json", records)
	}
	respondData(w, http.StatusOK, export)
}

// EraseUser anonymizes an account: status set to deleted, identifying
// fields scrubbed, and every session revoked. Domain records are kept
// under the anonymized id for billing history integrity.
//
// @Summary Erase user account
// @Tags admin
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/admin/erasure/{user_id} [post]
func (s *Server) EraseUser(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	userID := chi.URLParam(r, "user_id")
	if userID == sub.ID {
		respondError(w, http.StatusConflict, "CONFLICT", "Cannot erase your own account", nil)
		return
	}
	user, err := s.db.GetUser(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	shortID := user.ID.String()[:8]
	user.Email = "erased-" + shortID + "@invalid"
	user.DisplayName = nil
	user.Status = models.UserStatusDeleted
	if err := s.db.UpdateUser(r.Context(), user); err != nil {
		respondDomainError(w, err)
		return
	}
	revoked := 0
	if s.auth != nil {
		if n, err := s.auth.LogoutAll(r.Context(), user.ID.String()); err == nil {
			revoked = n
		}
	}
	if s.audit != nil {
		s.audit.LogAccountErasure(r.Context(), auditActor(sub), audit.SourceFromRequest(r), user.ID.String())
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"id":               user.ID,
		"status":           models.UserStatusDeleted,
		"sessions_revoked": revoked,
	})
}
