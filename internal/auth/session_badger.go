// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// Key prefix namespaces sessions inside a shared badger instance. The
// OAuth state store may share the same database under its own prefix.
const badgerSessionKeyPrefix = "session:"

// BadgerSessionStore is a badger-backed SessionStore. Sessions are written
// with a TTL matching their expiry so badger reclaims them automatically;
// the expiry check on Get is belt and suspenders.
type BadgerSessionStore struct {
	db *badger.DB
}

// NewBadgerSessionStore opens a badger database at path for sessions.
func NewBadgerSessionStore(path string) (*BadgerSessionStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	// Sessions are tiny; keep the value log small.
	opts.ValueLogFileSize = 16 << 20
	opts.SyncWrites = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for sessions: %w", err)
	}
	return &BadgerSessionStore{db: db}, nil
}

// NewBadgerSessionStoreFromDB wraps an existing badger instance.
func NewBadgerSessionStoreFromDB(db *badger.DB) *BadgerSessionStore {
	return &BadgerSessionStore{db: db}
}

// DB exposes the underlying badger instance so other stores can share it.
func (s *BadgerSessionStore) DB() *badger.DB {
	return s.db
}

// Create stores a new session with a TTL.
func (s *BadgerSessionStore) Create(ctx context.Context, session *Session) error {
	if session.ID == "" {
		return errors.New("session id cannot be empty")
	}
	return s.write(session)
}

func (s *BadgerSessionStore) write(session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(badgerSessionKeyPrefix+session.ID), data)
		if ttl := time.Until(session.ExpiresAt); ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Get retrieves a session by ID.
func (s *BadgerSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrSessionNotFound
	}

	var session Session
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerSessionKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &session)
		})
	})
	if err != nil {
		return nil, err
	}

	if session.IsExpired() {
		//nolint:errcheck // Best-effort cleanup, session is already expired
		s.Delete(ctx, id)
		return nil, ErrSessionExpired
	}
	return &session, nil
}

// Delete revokes a session.
func (s *BadgerSessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(badgerSessionKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// DeleteByUser revokes all of a user's sessions.
func (s *BadgerSessionStore) DeleteByUser(ctx context.Context, userID string) (int, error) {
	sessions, err := s.scan(func(session *Session) bool {
		return session.UserID == userID
	})
	if err != nil {
		return 0, err
	}

	count := 0
	for _, session := range sessions {
		if err := s.Delete(ctx, session.ID); err == nil {
			count++
		}
	}
	return count, nil
}

// ListByUser returns a user's unexpired sessions.
func (s *BadgerSessionStore) ListByUser(ctx context.Context, userID string) ([]*Session, error) {
	return s.scan(func(session *Session) bool {
		return session.UserID == userID && !session.IsExpired()
	})
}

// Touch updates LastSeenAt and extends the expiry.
func (s *BadgerSessionStore) Touch(ctx context.Context, id string, newExpiry time.Time) error {
	session, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	session.LastSeenAt = time.Now()
	session.ExpiresAt = newExpiry
	return s.write(session)
}

// CleanupExpired removes expired sessions badger has not yet reclaimed.
func (s *BadgerSessionStore) CleanupExpired(ctx context.Context) (int, error) {
	expired, err := s.scan(func(session *Session) bool {
		return session.IsExpired()
	})
	if err != nil {
		return 0, err
	}

	count := 0
	for _, session := range expired {
		if err := s.Delete(ctx, session.ID); err == nil {
			count++
		}
	}
	return count, nil
}

// scan iterates all session records and returns those matching the filter.
// Records that fail to decode are skipped; their badger TTL reclaims them.
func (s *BadgerSessionStore) scan(match func(*Session) bool) ([]*Session, error) {
	var sessions []*Session

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(badgerSessionKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var session Session
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &session)
			})
			if err != nil {
				continue
			}
			if match(&session) {
				found := session
				sessions = append(sessions, &found)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}
	return sessions, nil
}

// Close closes the underlying badger database.
func (s *BadgerSessionStore) Close() error {
	return s.db.Close()
}

var _ SessionStore = (*BadgerSessionStore)(nil)
