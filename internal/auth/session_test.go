// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewSession_PopulatesFields(t *testing.T) {
	session := NewSession("user-1", "alice", "editor", time.Hour)

	if session.ID == "" {
		t.Error("NewSession() did not set ID")
	}
	if session.UserID != "user-1" || session.Username != "alice" || session.Role != "editor" {
		t.Errorf("NewSession() = %+v, identity fields wrong", session)
	}
	if !session.ExpiresAt.After(time.Now().Add(59 * time.Minute)) {
		t.Errorf("ExpiresAt = %v, want about an hour out", session.ExpiresAt)
	}

	other := NewSession("user-1", "alice", "editor", time.Hour)
	if other.ID == session.ID {
		t.Error("NewSession() produced duplicate IDs")
	}
}

func TestMemorySessionStore_CRUD(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	session := NewSession("user-1", "alice", "viewer", time.Hour)
	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := store.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.UserID != "user-1" {
		t.Errorf("Get() UserID = %s, want user-1", got.UserID)
	}

	// The store returns copies; mutating one must not leak back.
	got.Role = "admin"
	again, err := store.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if again.Role != "viewer" {
		t.Error("Get() returned shared session pointer")
	}

	if err := store.Delete(ctx, session.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrSessionNotFound", err)
	}
}

func TestMemorySessionStore_ExpiredSession(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	session := NewSession("user-1", "alice", "viewer", -time.Minute)
	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := store.Get(ctx, session.ID); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("Get() error = %v, want ErrSessionExpired", err)
	}

	count, err := store.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("CleanupExpired() error = %v", err)
	}
	if count != 1 {
		t.Errorf("CleanupExpired() = %d, want 1", count)
	}
}

func TestMemorySessionStore_DeleteByUser(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := store.Create(ctx, NewSession("user-1", "alice", "viewer", time.Hour)); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	other := NewSession("user-2", "bob", "viewer", time.Hour)
	if err := store.Create(ctx, other); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	count, err := store.DeleteByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("DeleteByUser() error = %v", err)
	}
	if count != 3 {
		t.Errorf("DeleteByUser() = %d, want 3", count)
	}

	remaining, err := store.ListByUser(ctx, "user-2")
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(remaining) != 1 {
		t.Errorf("ListByUser(user-2) = %d sessions, want 1", len(remaining))
	}
}

func TestMemorySessionStore_Touch(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	session := NewSession("user-1", "alice", "viewer", time.Hour)
	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	newExpiry := time.Now().Add(2 * time.Hour)
	if err := store.Touch(ctx, session.ID, newExpiry); err != nil {
		t.Fatalf("Touch() error = %v", err)
	}

	got, err := store.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.ExpiresAt.Equal(newExpiry) {
		t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, newExpiry)
	}

	if err := store.Touch(ctx, "missing", newExpiry); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Touch(missing) error = %v, want ErrSessionNotFound", err)
	}
}
