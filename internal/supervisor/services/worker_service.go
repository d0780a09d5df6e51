// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package services

import (
	"context"
	"fmt"
)

// StartStopper is the lifecycle shape shared by TubeFleet's background
// workers: Start launches the loop and returns, Stop blocks until
// in-flight work finishes.
type StartStopper interface {
	Start(ctx context.Context) error
	Stop() error
}

// WorkerService adapts a StartStopper to suture.Service. Serve starts the
// worker, parks until the context is canceled, then stops it. A Start
// failure is returned to suture so the worker is restarted with backoff.
type WorkerService struct {
	name   string
	worker StartStopper
}

// NewWorkerService wraps a Start/Stop worker for supervision.
func NewWorkerService(name string, worker StartStopper) *WorkerService {
	return &WorkerService{name: name, worker: worker}
}

// Serve implements suture.Service.
func (w *WorkerService) Serve(ctx context.Context) error {
	if err := w.worker.Start(ctx); err != nil {
		return fmt.Errorf("%s start failed: %w", w.name, err)
	}

	<-ctx.Done()

	if err := w.worker.Stop(); err != nil {
		return fmt.Errorf("%s stop failed: %w", w.name, err)
	}
	return ctx.Err()
}

func (w *WorkerService) String() string {
	return w.name
}
