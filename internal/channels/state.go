// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package channels

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

var (
	// ErrStateNotFound is returned when a callback presents an unknown state.
	ErrStateNotFound = errors.New("oauth state not found")

	// ErrStateExpired is returned when the state outlived its TTL.
	ErrStateExpired = errors.New("oauth state expired")
)

// LinkState holds the server side of one in-flight consent flow. It is
// created when the user is redirected to Google and consumed exactly once
// by the callback.
type LinkState struct {
	// UserID is the panel account that initiated the link.
	UserID uuid.UUID `json:"user_id"`

	// CodeVerifier is the PKCE verifier whose S256 challenge was sent
	// with the authorization request.
	CodeVerifier string `json:"code_verifier"`

	// Nonce is echoed back in the ID token and checked on exchange.
	Nonce string `json:"nonce"`

	// ReturnTo is where the panel redirects after a successful link.
	ReturnTo string `json:"return_to,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the state outlived its TTL.
func (s *LinkState) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// StateStore persists in-flight consent states keyed by the opaque state
// parameter. States are single-use: the callback deletes them after
// validation to prevent replay.
type StateStore interface {
	Store(ctx context.Context, key string, state *LinkState) error
	Get(ctx context.Context, key string) (*LinkState, error)
	Delete(ctx context.Context, key string) error
	CleanupExpired(ctx context.Context) (int, error)
}

// MemoryStateStore is an in-memory StateStore. Thread-safe. States do not
// survive restarts, so it is only suitable for tests and single-node dev.
type MemoryStateStore struct {
	mu     sync.RWMutex
	states map[string]*LinkState
}

// NewMemoryStateStore creates an empty in-memory state store.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]*LinkState)}
}

// Store saves state data under the given key.
func (s *MemoryStateStore) Store(ctx context.Context, key string, state *LinkState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *state
	s.states[key] = &stored
	return nil
}

// Get retrieves state data by key.
func (s *MemoryStateStore) Get(ctx context.Context, key string) (*LinkState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[key]
	if !ok {
		return nil, ErrStateNotFound
	}
	if state.IsExpired() {
		return nil, ErrStateExpired
	}

	found := *state
	return &found, nil
}

// Delete removes state data by key.
func (s *MemoryStateStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, key)
	return nil
}

// CleanupExpired removes all expired states and returns how many were dropped.
func (s *MemoryStateStore) CleanupExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for key, state := range s.states {
		if state.IsExpired() {
			delete(s.states, key)
			count++
		}
	}
	return count, nil
}

var _ StateStore = (*MemoryStateStore)(nil)

// Key prefix namespaces consent states inside a shared badger instance.
const badgerStateKeyPrefix = "oauth_state:"

// BadgerStateStore is a badger-backed StateStore. States are written with a
// TTL matching their expiry so badger reclaims them automatically; the
// expiry check on Get is belt and suspenders.
type BadgerStateStore struct {
	db *badger.DB
}

// NewBadgerStateStore opens a badger database at path for consent states.
func NewBadgerStateStore(path string) (*BadgerStateStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	// States are tiny; keep the value log small.
	opts.ValueLogFileSize = 16 << 20
	opts.SyncWrites = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for oauth state: %w", err)
	}
	return &BadgerStateStore{db: db}, nil
}

// NewBadgerStateStoreFromDB wraps an existing badger instance. Used when the
// session store and state store share one database.
func NewBadgerStateStoreFromDB(db *badger.DB) *BadgerStateStore {
	return &BadgerStateStore{db: db}
}

// Store saves state data under the given key with a TTL.
func (s *BadgerStateStore) Store(ctx context.Context, key string, state *LinkState) error {
	if key == "" {
		return errors.New("state key cannot be empty")
	}
	if state == nil {
		return errors.New("state data cannot be nil")
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(badgerStateKeyPrefix+key), data)
		if ttl := time.Until(state.ExpiresAt); ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Get retrieves state data by key.
func (s *BadgerStateStore) Get(ctx context.Context, key string) (*LinkState, error) {
	if key == "" {
		return nil, ErrStateNotFound
	}

	var state LinkState
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerStateKeyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrStateNotFound
		}
		if err != nil {
			return fmt.Errorf("get state: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &state)
		})
	})
	if err != nil {
		return nil, err
	}

	if state.IsExpired() {
		//nolint:errcheck // Best-effort cleanup, state is already expired
		s.Delete(ctx, key)
		return nil, ErrStateExpired
	}
	return &state, nil
}

// Delete removes state data by key.
func (s *BadgerStateStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(badgerStateKeyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// CleanupExpired scans for expired states badger has not yet reclaimed.
func (s *BadgerStateStore) CleanupExpired(ctx context.Context) (int, error) {
	var expired []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(badgerStateKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var state LinkState
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &state)
			})
			if err != nil || state.IsExpired() {
				expired = append(expired, string(item.KeyCopy(nil)))
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan states: %w", err)
	}

	count := 0
	for _, key := range expired {
		err := s.db.Update(func(txn *badger.Txn) error {
			return txn.Delete([]byte(key))
		})
		if err == nil {
			count++
		}
	}
	return count, nil
}

// Close closes the underlying badger database.
func (s *BadgerStateStore) Close() error {
	return s.db.Close()
}

var _ StateStore = (*BadgerStateStore)(nil)
