// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package api

import (
	"net/http"
	"time"
)

// Health reports liveness plus a database probe. A failing database turns
// the response 503 so load balancers drain the instance.
//
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} models.APIResponse
// @Failure 503 {object} models.APIResponse
// @Router /health [get]
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK

	dbStatus := "ok"
	if s.db == nil {
		dbStatus = "absent"
		status = "degraded"
		code = http.StatusServiceUnavailable
	} else if err := s.db.Ping(r.Context()); err != nil {
		dbStatus = err.Error()
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	respondData(w, code, map[string]interface{}{
		"status":         status,
		"version":        Version,
		"uptime_seconds": int64(time.Since(s.startTime).Seconds()),
		"database":       dbStatus,
	})
}

// Ready reports whether the instance can serve traffic. Unlike Health it
// carries no diagnostic payload; orchestrator probes only read the code.
//
// @Summary Readiness check
// @Tags system
// @Produce json
// @Success 200 {object} models.APIResponse
// @Failure 503 {object} models.APIResponse
// @Router /ready [get]
func (s *Server) Ready(w http.ResponseWriter, r *http.Request) {
	if s.db == nil || s.db.Ping(r.Context()) != nil {
		respondError(w, http.StatusServiceUnavailable, "UPSTREAM_ERROR", "Database not ready", nil)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"status": "ready"})
}
