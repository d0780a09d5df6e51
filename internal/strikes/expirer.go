// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package strikes

import (
	"context"
	"sync"
	"time"

	"github.com/tubefleet/tubefleet/internal/logging"
)

// Expirer runs the strike expiry sweep on an interval.
type Expirer struct {
	service  *Service
	interval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewExpirer creates the expiry loop around a strikes service.
func NewExpirer(service *Service) *Expirer {
	interval := service.config.ExpiryInterval
	if interval <= 0 {
		interval = time.Hour
	}
	return &Expirer{service: service, interval: interval}
}

// Start launches the sweep loop. No-op when already running.
func (e *Expirer) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return nil
	}

	e.stopCh = make(chan struct{})
	e.doneCh = make(chan struct{})
	e.running = true

	go e.run(ctx)

	logging.Info().Dur("interval", e.interval).Msg("Strike expirer started")
	return nil
}

// Stop halts the sweep loop and waits for the current sweep.
func (e *Expirer) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return nil
	}
	close(e.stopCh)
	<-e.doneCh
	e.running = false

	logging.Info().Msg("Strike expirer stopped")
	return nil
}

func (e *Expirer) run(ctx context.Context) {
	defer close(e.doneCh)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	if err := e.service.ExpireOnce(ctx); err != nil {
		logging.Error().Err(err).Msg("Strike expiry sweep failed")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.stopCh:
			return
		case <-ticker.C:
			if err := e.service.ExpireOnce(ctx); err != nil {
				logging.Error().Err(err).Msg("Strike expiry sweep failed")
			}
		}
	}
}
