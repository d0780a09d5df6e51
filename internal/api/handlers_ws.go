// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package api

import (
	"net/http"

	gorillaws "github.com/gorilla/websocket"

	"github.com/tubefleet/tubefleet/internal/logging"
	"github.com/tubefleet/tubefleet/internal/websocket"
)

// wsUpgrader upgrades dashboard connections. Origin is not checked here;
// the CORS middleware and session auth upstream already gate access.
var wsUpgrader = gorillaws.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS upgrades the connection and attaches it to the broadcast hub.
// Events published on the bus are forwarded to the client until it
// disconnects.
//
// @Summary Live event stream
// @Tags websocket
// @Success 101 {string} string "Switching Protocols"
// @Router /api/v1/ws [get]
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	if _, ok := subject(w, r); !ok {
		return
	}
	if s.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "UPSTREAM_ERROR", "Live updates are not configured", nil)
		return
	}
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		logging.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	client := websocket.NewClient(s.hub, conn)
	s.hub.Register <- client
	client.Start()
}
