// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package services

import (
	"context"
	"time"

	"github.com/tubefleet/tubefleet/internal/logging"
)

// LoopService invokes a function on a fixed interval until the context is
// canceled. A failing iteration is logged and the loop continues; the
// next tick gets a fresh chance.
type LoopService struct {
	name     string
	interval time.Duration
	fn       func(ctx context.Context) error
}

// NewLoopService wraps a periodic cleanup func for supervision. An
// interval of zero defaults to one hour.
func NewLoopService(name string, interval time.Duration, fn func(ctx context.Context) error) *LoopService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &LoopService{name: name, interval: interval, fn: fn}
}

// Serve implements suture.Service.
func (l *LoopService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	// Immediate first pass so a restart does not wait a full interval.
	l.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.runOnce(ctx)
		}
	}
}

func (l *LoopService) runOnce(ctx context.Context) {
	if err := l.fn(ctx); err != nil && ctx.Err() == nil {
		logging.Warn().Err(err).Str("service", l.name).Msg("Periodic task failed")
	}
}

func (l *LoopService) String() string {
	return l.name
}
