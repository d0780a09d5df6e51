// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package webhooks

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/tubefleet/tubefleet/internal/logging"
	"github.com/tubefleet/tubefleet/internal/metrics"
	"github.com/tubefleet/tubefleet/internal/models"
)

// DispatcherStore is the persistence surface the dispatcher needs.
type DispatcherStore interface {
	ListDueDeliveries(ctx context.Context, now time.Time, limit int) ([]models.WebhookDelivery, error)
	UpdateWebhookDelivery(ctx context.Context, delivery *models.WebhookDelivery) error
	GetWebhookDelivery(ctx context.Context, id string) (*models.WebhookDelivery, error)

	GetWebhookEndpoint(ctx context.Context, id string) (*models.WebhookEndpoint, error)
	RecordEndpointSuccess(ctx context.Context, id string) error

	// RecordEndpointFailure bumps the consecutive-failure counter and
	// returns the new count.
	RecordEndpointFailure(ctx context.Context, id string) (int, error)
	DisableWebhookEndpoint(ctx context.Context, id string) error
	CountEnabledWebhookEndpoints(ctx context.Context) (int64, error)
}

// DispatcherConfig holds delivery and retry settings.
type DispatcherConfig struct {
	// DispatchInterval is how often the due-delivery queue is polled.
	DispatchInterval time.Duration

	// MaxRetries is the attempt cap before a delivery is abandoned.
	MaxRetries int

	// InitialBackoff, BackoffFactor, and MaxBackoff shape the retry delay:
	// InitialBackoff * BackoffFactor^(attempt-1), capped, with jitter.
	InitialBackoff time.Duration
	BackoffFactor  float64
	MaxBackoff     time.Duration

	// JitterFraction spreads retry times by +/- this fraction of the delay.
	JitterFraction float64

	// Timeout bounds one HTTP delivery attempt.
	Timeout time.Duration

	// MaxPerSweep caps due deliveries taken per pass.
	MaxPerSweep int

	// MaxConcurrent limits deliveries attempted in parallel.
	MaxConcurrent int

	// DisableAfterFailures auto-disables an endpoint after this many
	// consecutive failed deliveries.
	DisableAfterFailures int

	// Enabled controls whether the run loop executes at all.
	Enabled bool
}

// DefaultDispatcherConfig returns production defaults.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		DispatchInterval:     10 * time.Second,
		MaxRetries:           5,
		InitialBackoff:       time.Minute,
		BackoffFactor:        2.0,
		MaxBackoff:           time.Hour,
		JitterFraction:       0.1,
		Timeout:              10 * time.Second,
		MaxPerSweep:          100,
		MaxConcurrent:        8,
		DisableAfterFailures: 10,
		Enabled:              true,
	}
}

// Dispatcher polls the delivery queue and POSTs signed event payloads.
type Dispatcher struct {
	store  DispatcherStore
	client *http.Client
	config DispatcherConfig

	rngMu sync.Mutex
	rng   *rand.Rand

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewDispatcher creates a dispatcher with its own HTTP client.
func NewDispatcher(store DispatcherStore, config DispatcherConfig) *Dispatcher {
	if config.BackoffFactor < 1 {
		config.BackoffFactor = 2.0
	}
	return &Dispatcher{
		store:  store,
		client: &http.Client{Timeout: config.Timeout},
		config: config,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // jitter only
	}
}

// Start launches the background run loop. Calling Start on a running
// dispatcher is a no-op.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return nil
	}
	if !d.config.Enabled {
		logging.Info().Msg("Webhook dispatcher disabled")
		return nil
	}

	d.stopCh = make(chan struct{})
	d.doneCh = make(chan struct{})
	d.running = true

	go d.run(ctx)

	logging.Info().
		Dur("dispatch_interval", d.config.DispatchInterval).
		Int("max_retries", d.config.MaxRetries).
		Msg("Webhook dispatcher started")
	return nil
}

// Stop terminates the run loop and waits for in-flight work to finish.
func (d *Dispatcher) Stop() error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return nil
	}
	d.running = false
	close(d.stopCh)
	doneCh := d.doneCh
	d.mu.Unlock()

	<-doneCh
	logging.Info().Msg("Webhook dispatcher stopped")
	return nil
}

func (d *Dispatcher) run(ctx context.Context) {
	defer close(d.doneCh)

	ticker := time.NewTicker(d.config.DispatchInterval)
	defer ticker.Stop()

	// Immediate first pass so queued deliveries do not wait out a restart.
	d.DispatchOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.stopCh:
			return
		case <-ticker.C:
			d.DispatchOnce(ctx)
		}
	}
}

// DispatchOnce attempts every due delivery once. It is exported so tests
// and the manual redeliver path can drive the queue deterministically.
func (d *Dispatcher) DispatchOnce(ctx context.Context) {
	now := time.Now().UTC()

	due, err := d.store.ListDueDeliveries(ctx, now, d.config.MaxPerSweep)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to list due webhook deliveries")
		return
	}

	if count, err := d.store.CountEnabledWebhookEndpoints(ctx); err == nil {
		metrics.WebhookEndpointsActive.Set(float64(count))
	}
	if len(due) == 0 {
		return
	}

	maxConcurrent := d.config.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup

	for i := range due {
		delivery := due[i]

		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case <-d.stopCh:
			wg.Wait()
			return
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			if err := d.Attempt(ctx, &delivery); err != nil {
				logging.Error().
					Err(err).
					Str("delivery_id", delivery.ID.String()).
					Msg("Webhook delivery attempt errored")
			}
		}()
	}

	wg.Wait()
}

// Attempt runs one delivery attempt and persists the outcome. The returned
// error covers storage problems only; an HTTP failure is an outcome, not an
// error.
func (d *Dispatcher) Attempt(ctx context.Context, delivery *models.WebhookDelivery) error {
	endpoint, err := d.store.GetWebhookEndpoint(ctx, delivery.EndpointID.String())
	if err != nil {
		return fmt.Errorf("loading endpoint: %w", err)
	}
	now := time.Now().UTC()
	if !endpoint.Enabled {
		// Queue rows for an endpoint disabled after fanout are dead.
		delivery.Status = models.WebhookStatusAbandoned
		delivery.UpdatedAt = now
		metrics.WebhookDeliveries.WithLabelValues("dead").Inc()
		return d.store.UpdateWebhookDelivery(ctx, delivery)
	}

	delivery.AttemptCount++
	delivery.LastAttemptAt = &now

	statusCode, attemptErr := d.post(ctx, endpoint, delivery)
	if statusCode != 0 {
		delivery.LastStatusCode = &statusCode
	}

	switch {
	case attemptErr == nil && statusCode >= 200 && statusCode < 300:
		delivery.Status = models.WebhookStatusDelivered
		delivery.DeliveredAt = &now
		delivery.LastError = nil
		delivery.NextAttemptAt = nil
		metrics.WebhookDeliveries.WithLabelValues("delivered").Inc()
		if err := d.store.RecordEndpointSuccess(ctx, endpoint.ID.String()); err != nil {
			logging.Warn().Err(err).Str("endpoint_id", endpoint.ID.String()).Msg("Failed to reset endpoint failure count")
		}

	case statusCode == http.StatusGone:
		// The receiver told us to stop.
		delivery.Status = models.WebhookStatusAbandoned
		msg := "endpoint returned 410 Gone"
		delivery.LastError = &msg
		metrics.WebhookDeliveries.WithLabelValues("disabled").Inc()
		if err := d.store.DisableWebhookEndpoint(ctx, endpoint.ID.String()); err != nil {
			logging.Error().Err(err).Str("endpoint_id", endpoint.ID.String()).Msg("Failed to disable gone endpoint")
		} else {
			logging.Info().Str("endpoint_id", endpoint.ID.String()).Str("url", endpoint.URL).Msg("Endpoint disabled by 410 Gone")
		}

	default:
		msg := attemptError(statusCode, attemptErr)
		delivery.LastError = &msg
		d.handleFailure(ctx, endpoint, delivery, now)
	}

	delivery.UpdatedAt = now
	return d.store.UpdateWebhookDelivery(ctx, delivery)
}

// handleFailure schedules a retry or abandons the delivery, and trips the
// endpoint auto-disable when failures keep stacking up.
func (d *Dispatcher) handleFailure(ctx context.Context, endpoint *models.WebhookEndpoint, delivery *models.WebhookDelivery, now time.Time) {
	if delivery.AttemptCount >= d.config.MaxRetries {
		delivery.Status = models.WebhookStatusAbandoned
		delivery.NextAttemptAt = nil
		metrics.WebhookDeliveries.WithLabelValues("dead").Inc()
	} else {
		next := now.Add(d.retryDelay(delivery.AttemptCount))
		delivery.Status = models.WebhookStatusRetrying
		delivery.NextAttemptAt = &next
		metrics.WebhookDeliveries.WithLabelValues("retrying").Inc()
	}

	failures, err := d.store.RecordEndpointFailure(ctx, endpoint.ID.String())
	if err != nil {
		logging.Warn().Err(err).Str("endpoint_id", endpoint.ID.String()).Msg("Failed to bump endpoint failure count")
		return
	}
	if d.config.DisableAfterFailures > 0 && failures >= d.config.DisableAfterFailures {
		if err := d.store.DisableWebhookEndpoint(ctx, endpoint.ID.String()); err != nil {
			logging.Error().Err(err).Str("endpoint_id", endpoint.ID.String()).Msg("Failed to auto-disable endpoint")
			return
		}
		logging.Warn().
			Str("endpoint_id", endpoint.ID.String()).
			Str("url", endpoint.URL).
			Int("consecutive_failures", failures).
			Msg("Endpoint auto-disabled after consecutive failures")
	}
}

// post performs the signed HTTP POST. A non-nil error means the request
// never produced a status code (transport failure, timeout).
func (d *Dispatcher) post(ctx context.Context, endpoint *models.WebhookEndpoint, delivery *models.WebhookDelivery) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL, bytes.NewReader(delivery.Payload))
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "TubeFleet-Webhooks/1.0")
	req.Header.Set(SignatureHeader, Sign(endpoint.Secret, delivery.Payload))
	req.Header.Set(EventHeader, delivery.EventType)
	req.Header.Set(DeliveryHeader, delivery.ID.String())

	started := time.Now()
	resp, err := d.client.Do(req)
	metrics.WebhookDeliveryDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	// Drain so the connection is reusable.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	return resp.StatusCode, nil
}

// retryDelay computes the backoff before the next attempt:
// InitialBackoff * BackoffFactor^(attempt-1), capped at MaxBackoff, with
// +/- JitterFraction spread so retries from one outage do not stampede.
func (d *Dispatcher) retryDelay(attempt int) time.Duration {
	delay := float64(d.config.InitialBackoff) * math.Pow(d.config.BackoffFactor, float64(attempt-1))
	if delay > float64(d.config.MaxBackoff) {
		delay = float64(d.config.MaxBackoff)
	}

	d.rngMu.Lock()
	jitter := delay * d.config.JitterFraction * (d.rng.Float64()*2 - 1)
	d.rngMu.Unlock()

	return time.Duration(delay + jitter)
}

// Redeliver requeues a terminal delivery for one fresh attempt cycle. Used
// by the manual redeliver operation.
func (d *Dispatcher) Redeliver(ctx context.Context, deliveryID string) (*models.WebhookDelivery, error) {
	delivery, err := d.store.GetWebhookDelivery(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	endpoint, err := d.store.GetWebhookEndpoint(ctx, delivery.EndpointID.String())
	if err != nil {
		return nil, err
	}
	if !endpoint.Enabled {
		return nil, fmt.Errorf("endpoint %s is disabled", endpoint.ID)
	}

	delivery.Status = models.WebhookStatusPending
	delivery.AttemptCount = 0
	delivery.NextAttemptAt = nil
	delivery.LastError = nil
	delivery.UpdatedAt = time.Now().UTC()
	if err := d.store.UpdateWebhookDelivery(ctx, delivery); err != nil {
		return nil, fmt.Errorf("requeueing delivery: %w", err)
	}
	return delivery, nil
}

func attemptError(statusCode int, err error) string {
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("endpoint returned %d", statusCode)
}
