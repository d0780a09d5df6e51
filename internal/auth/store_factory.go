// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package auth

import (
	"fmt"

	"github.com/tubefleet/tubefleet/internal/config"
	"github.com/tubefleet/tubefleet/internal/logging"
)

// NewSessionStore builds the configured session store backend. The caller
// must Close a badger store on shutdown; the memory store's Close is a
// no-op via the returned closer.
func NewSessionStore(cfg *config.SecurityConfig) (SessionStore, func() error, error) {
	switch cfg.SessionStore {
	case "", "memory":
		logging.Debug().Msg("Using in-memory session store")
		return NewMemorySessionStore(), func() error { return nil }, nil

	case "badger":
		if cfg.SessionStorePath == "" {
			return nil, nil, fmt.Errorf("SESSION_STORE_PATH is required when session_store=badger")
		}
		store, err := NewBadgerSessionStore(cfg.SessionStorePath)
		if err != nil {
			return nil, nil, err
		}
		logging.Debug().Str("path", cfg.SessionStorePath).Msg("Using badger session store")
		return store, store.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown session store backend: %q", cfg.SessionStore)
	}
}
