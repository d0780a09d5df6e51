// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Default login throttle when the config leaves it unset: a burst of 10
// attempts, refilling one per six seconds.
const (
	defaultLoginBurst  = 10
	defaultLoginWindow = time.Minute
)

// LoginLimiter throttles login attempts per client IP with a token bucket.
// It sits in front of password verification so credential guessing burns
// the attacker's budget before any bcrypt work happens.
type LoginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter
	limit    rate.Limit
	burst    int
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLoginLimiter creates a limiter allowing attempts login attempts per
// window from each IP, with a burst of the same size.
func NewLoginLimiter(attempts int, window time.Duration) *LoginLimiter {
	if attempts <= 0 {
		attempts = defaultLoginBurst
	}
	if window <= 0 {
		window = defaultLoginWindow
	}
	return &LoginLimiter{
		limiters: make(map[string]*ipLimiter),
		limit:    rate.Every(window / time.Duration(attempts)),
		burst:    attempts,
	}
}

// Allow reports whether the IP may attempt a login now.
func (l *LoginLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.limiters[ip]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

// CleanupInactive drops per-IP buckets not seen since the cutoff. Called
// periodically so the map does not grow with every IP that ever tried.
func (l *LoginLimiter) CleanupInactive(olderThan time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	count := 0
	for ip, entry := range l.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(l.limiters, ip)
			count++
		}
	}
	return count
}
