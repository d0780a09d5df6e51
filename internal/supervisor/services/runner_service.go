// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package services

import (
	"context"
	"errors"
)

// RunnerService adapts a blocking run function to suture.Service. The
// function is expected to block until its context is canceled; returning
// early with an error triggers a supervised restart.
type RunnerService struct {
	name string
	run  func(ctx context.Context) error
}

// NewRunnerService wraps a blocking run function for supervision.
func NewRunnerService(name string, run func(ctx context.Context) error) *RunnerService {
	return &RunnerService{name: name, run: run}
}

// Serve implements suture.Service.
func (r *RunnerService) Serve(ctx context.Context) error {
	err := r.run(ctx)
	if err == nil && ctx.Err() != nil {
		// Normalize a clean exit after cancellation so suture records a
		// graceful stop rather than an unexpected return.
		return ctx.Err()
	}
	if err != nil && errors.Is(err, context.Canceled) {
		return ctx.Err()
	}
	return err
}

func (r *RunnerService) String() string {
	return r.name
}
