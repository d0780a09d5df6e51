// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoopServiceRunsImmediatelyAndOnTicks(t *testing.T) {
	var calls atomic.Int32
	svc := NewLoopService("cleanup", 30*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Serve(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}

	// One immediate pass plus at least two ticks.
	if calls.Load() < 3 {
		t.Errorf("calls = %d, want at least 3", calls.Load())
	}
}

func TestLoopServiceSurvivesIterationErrors(t *testing.T) {
	var calls atomic.Int32
	svc := NewLoopService("flaky-cleanup", 20*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("transient")
	})

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()

	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve error = %v, want deadline exceeded", err)
	}
	if calls.Load() < 2 {
		t.Errorf("calls = %d, want the loop to continue past errors", calls.Load())
	}
}

func TestLoopServiceDefaultInterval(t *testing.T) {
	svc := NewLoopService("hourly", 0, func(ctx context.Context) error { return nil })
	if svc.interval != time.Hour {
		t.Errorf("interval = %v, want 1h default", svc.interval)
	}
}

func TestRunnerServiceNormalizesCancellation(t *testing.T) {
	svc := NewRunnerService("router", func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Serve(ctx)
	}()
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
}

func TestRunnerServicePropagatesFailure(t *testing.T) {
	boom := errors.New("subscribe failed")
	svc := NewRunnerService("bridge", func(ctx context.Context) error {
		return boom
	})

	if err := svc.Serve(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Serve error = %v, want %v", err, boom)
	}
}

func TestRunnerServiceString(t *testing.T) {
	svc := NewRunnerService("hub", func(ctx context.Context) error { return nil })
	if svc.String() != "hub" {
		t.Errorf("String() = %q, want hub", svc.String())
	}
}
