// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"
)

var (
	// ErrSessionNotFound is returned when a session is not in the store.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned when the session outlived its TTL.
	ErrSessionExpired = errors.New("session expired")
)

// Session is the revocable record behind a JWT. Deleting it invalidates
// every token minted with its ID.
type Session struct {
	// ID is the opaque session identifier, carried in the JWT jti claim.
	ID string `json:"id"`

	// UserID is the authenticated user's UUID.
	UserID string `json:"user_id"`

	// Username is denormalized for session listings.
	Username string `json:"username"`

	// Role captured at login time. A role change takes effect on the
	// next login, not mid-session.
	Role string `json:"role"`

	// IPAddress and UserAgent record where the session was created,
	// shown in the active-sessions listing.
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`

	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// IsExpired reports whether the session outlived its TTL.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// NewSession creates a session for a user with the given lifetime.
func NewSession(userID, username, role string, duration time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:         generateSessionID(),
		UserID:     userID,
		Username:   username,
		Role:       role,
		CreatedAt:  now,
		ExpiresAt:  now.Add(duration),
		LastSeenAt: now,
	}
}

// generateSessionID returns 32 bytes of hex-encoded randomness.
func generateSessionID() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		// rand.Read never fails on supported platforms.
		panic("session id entropy unavailable: " + err.Error())
	}
	return hex.EncodeToString(bytes)
}

// SessionStore persists session records.
type SessionStore interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// Get retrieves a session by ID. Returns ErrSessionNotFound or
	// ErrSessionExpired when it cannot be used.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete revokes a session. Unknown IDs are not an error.
	Delete(ctx context.Context, id string) error

	// DeleteByUser revokes all of a user's sessions and returns how many
	// were dropped.
	DeleteByUser(ctx context.Context, userID string) (int, error)

	// ListByUser returns a user's live sessions.
	ListByUser(ctx context.Context, userID string) ([]*Session, error)

	// Touch updates LastSeenAt and extends the expiry.
	Touch(ctx context.Context, id string, newExpiry time.Time) error

	// CleanupExpired removes expired sessions and returns the count.
	CleanupExpired(ctx context.Context) (int, error)
}

// MemorySessionStore is an in-memory SessionStore. Sessions do not survive
// restarts; production uses the badger store.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*Session)}
}

// Create stores a new session.
func (s *MemorySessionStore) Create(ctx context.Context, session *Session) error {
	if session.ID == "" {
		return errors.New("session id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *session
	s.sessions[session.ID] = &stored
	return nil
}

// Get retrieves a session by ID.
func (s *MemorySessionStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.IsExpired() {
		return nil, ErrSessionExpired
	}

	found := *session
	return &found, nil
}

// Delete revokes a session.
func (s *MemorySessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// DeleteByUser revokes all of a user's sessions.
func (s *MemorySessionStore) DeleteByUser(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id, session := range s.sessions {
		if session.UserID == userID {
			delete(s.sessions, id)
			count++
		}
	}
	return count, nil
}

// ListByUser returns a user's unexpired sessions.
func (s *MemorySessionStore) ListByUser(ctx context.Context, userID string) ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]*Session, 0)
	for _, session := range s.sessions {
		if session.UserID == userID && !session.IsExpired() {
			found := *session
			sessions = append(sessions, &found)
		}
	}
	return sessions, nil
}

// Touch updates LastSeenAt and extends the expiry.
func (s *MemorySessionStore) Touch(ctx context.Context, id string, newExpiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	session.LastSeenAt = time.Now()
	session.ExpiresAt = newExpiry
	return nil
}

// CleanupExpired removes expired sessions.
func (s *MemorySessionStore) CleanupExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id, session := range s.sessions {
		if session.IsExpired() {
			delete(s.sessions, id)
			count++
		}
	}
	return count, nil
}

var _ SessionStore = (*MemorySessionStore)(nil)
