// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package api

import (
	"net/http"
)

// UsageReport returns the caller's usage across all counted resources.
//
// @Summary Usage report
// @Tags monitoring
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=models.UsageReport}
// @Router /api/v1/usage [get]
func (s *Server) UsageReport(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	if s.collector == nil {
		respondError(w, http.StatusServiceUnavailable, "UPSTREAM_ERROR", "Usage collection is not running", nil)
		return
	}

	userID, err := actorUUID(sub, r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user ID", err)
		return
	}

	report, err := s.collector.UsageReport(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, report)
}

// Limits returns the caller's plan limits per resource kind.
//
// @Summary Plan limits
// @Tags monitoring
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Router /api/v1/limits [get]
func (s *Server) Limits(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	if s.checker == nil {
		respondError(w, http.StatusServiceUnavailable, "UPSTREAM_ERROR", "Limit checking is not running", nil)
		return
	}

	userID, err := actorUUID(sub, r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user ID", err)
		return
	}

	limits, planName, err := s.checker.Limits(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"plan":   planName,
		"limits": limits,
	})
}
