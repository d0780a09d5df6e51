// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// dialTestClient spins up an httptest server that upgrades the connection,
// registers a Client with the hub, and returns the caller's side of the
// socket.
func dialTestClient(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		client := NewClient(hub, conn)
		hub.Register <- client
		client.Start()
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})

	time.Sleep(20 * time.Millisecond)
	return conn
}

func TestNewClientUniqueIDs(t *testing.T) {
	hub := NewHub()
	a := NewClient(hub, nil)
	b := NewClient(hub, nil)

	if a.ID() == b.ID() {
		t.Errorf("expected unique client IDs, both are %d", a.ID())
	}
	if cap(a.send) != 256 {
		t.Errorf("expected send buffer of 256, got %d", cap(a.send))
	}
}

func TestClientReceivesBroadcast(t *testing.T) {
	hub := startHub(t)
	conn := dialTestClient(t, hub)

	hub.BroadcastJSON("monitor.quota_warning", map[string]int{"used_percent": 85})

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("set read deadline: %v", err)
	}
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	if msg.Type != "monitor.quota_warning" {
		t.Errorf("expected type monitor.quota_warning, got %q", msg.Type)
	}
}

func TestClientPingPong(t *testing.T) {
	hub := startHub(t)
	conn := dialTestClient(t, hub)

	if err := conn.WriteJSON(Message{Type: MessageTypePing}); err != nil {
		t.Fatalf("write ping: %v", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("set read deadline: %v", err)
	}
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read pong: %v", err)
	}
	if msg.Type != MessageTypePong {
		t.Errorf("expected pong, got %q", msg.Type)
	}
}

func TestClientDisconnectUnregisters(t *testing.T) {
	hub := startHub(t)
	conn := dialTestClient(t, hub)

	if hub.GetClientCount() != 1 {
		t.Fatalf("expected 1 client, got %d", hub.GetClientCount())
	}

	_ = conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.GetClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client never unregistered, count %d", hub.GetClientCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
