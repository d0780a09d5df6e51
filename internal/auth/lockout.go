// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package auth

import (
	"context"
	"sync"
	"time"
)

// lockoutEntry tracks failed attempts for one account.
type lockoutEntry struct {
	failures    int
	lockedUntil time.Time
	lastFailure time.Time
}

// LockoutManager locks accounts after repeated failed logins. Failures are
// counted per username, not per IP, so a distributed guessing attack still
// trips the lock. A zero threshold disables the manager.
//
// State is in-memory: a restart clears all lockouts, which is acceptable
// because the per-IP rate limiter still throttles fresh attempts.
type LockoutManager struct {
	mu        sync.Mutex
	entries   map[string]*lockoutEntry
	threshold int
	duration  time.Duration
}

// NewLockoutManager creates a lockout manager. threshold is the number of
// consecutive failures before a lock engages; duration is how long the lock
// lasts.
func NewLockoutManager(threshold int, duration time.Duration) *LockoutManager {
	if duration <= 0 {
		duration = 15 * time.Minute
	}
	return &LockoutManager{
		entries:   make(map[string]*lockoutEntry),
		threshold: threshold,
		duration:  duration,
	}
}

// Enabled reports whether lockout enforcement is active.
func (m *LockoutManager) Enabled() bool {
	return m != nil && m.threshold > 0
}

// Locked reports whether the account is currently locked and for how much
// longer.
func (m *LockoutManager) Locked(username string) (bool, time.Duration) {
	if !m.Enabled() {
		return false, 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[username]
	if !ok {
		return false, 0
	}
	remaining := time.Until(entry.lockedUntil)
	if remaining <= 0 {
		return false, 0
	}
	return true, remaining
}

// RecordFailure counts a failed attempt and reports whether it tripped the
// lock, along with the total consecutive failures.
func (m *LockoutManager) RecordFailure(username string) (locked bool, failures int) {
	if !m.Enabled() {
		return false, 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[username]
	if !ok {
		entry = &lockoutEntry{}
		m.entries[username] = entry
	}

	entry.failures++
	entry.lastFailure = time.Now()
	if entry.failures >= m.threshold {
		entry.lockedUntil = time.Now().Add(m.duration)
		return true, entry.failures
	}
	return false, entry.failures
}

// Clear resets the failure counter, typically after a successful login.
func (m *LockoutManager) Clear(username string) {
	if !m.Enabled() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, username)
}

// Duration returns the configured lock duration.
func (m *LockoutManager) Duration() time.Duration {
	return m.duration
}

// CleanupExpired drops entries whose lock expired and whose last failure is
// old enough that the counter should no longer carry over.
func (m *LockoutManager) CleanupExpired() int {
	if !m.Enabled() {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	stale := now.Add(-2 * m.duration)
	count := 0
	for username, entry := range m.entries {
		if entry.lockedUntil.Before(now) && entry.lastFailure.Before(stale) {
			delete(m.entries, username)
			count++
		}
	}
	return count
}

// Run periodically evicts stale entries until the context is canceled.
func (m *LockoutManager) Run(ctx context.Context) {
	if !m.Enabled() {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CleanupExpired()
		}
	}
}
