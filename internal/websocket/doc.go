// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

/*
Package websocket pushes live updates to connected dashboard clients.

A single Hub fans domain events out to every connected client using the
hub-and-spoke pattern from gorilla/websocket. Each client runs a readPump
(application-level ping handling, read deadlines) and a writePump (JSON
writes, protocol pings) goroutine.

The Bridge subscribes to the internal events bus and forwards every
BusEvent to the hub, so scheduling, billing, moderation, strike, and quota
events reach the dashboard in real time without the API handlers knowing
about WebSocket clients.

Message framing is {"type": ..., "data": ...} where type is either a bus
event type ("stream.scheduled", "strike.recorded", ...) or one of the
control types "ping"/"pong".

Slow consumers are dropped rather than allowed to block the hub: when a
client's send buffer is full the hub closes the connection.

The hub is designed for suture supervision via RunWithContext, which
closes all clients and returns the context error on cancellation.
*/
package websocket
