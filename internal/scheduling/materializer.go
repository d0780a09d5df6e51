// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package scheduling

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tubefleet/tubefleet/internal/logging"
	"github.com/tubefleet/tubefleet/internal/metrics"
	"github.com/tubefleet/tubefleet/internal/models"
)

// MaterializerStore is the persistence surface the materializer needs.
// Implementations are expected to be safe for concurrent use.
type MaterializerStore interface {
	ConflictStore

	// ListMaterializablePatterns returns active patterns whose next
	// occurrence could fall before the horizon. Implementations may
	// over-approximate; the materializer re-checks each pattern.
	ListMaterializablePatterns(ctx context.Context, horizon time.Time) ([]models.RecurrencePattern, error)

	// GetEvent loads the template event a pattern copies from.
	GetEvent(ctx context.Context, id string) (*models.LiveEvent, error)

	// CreateEvent persists a new child occurrence.
	CreateEvent(ctx context.Context, ev *models.LiveEvent) error

	// UpdateEvent persists status and broadcast-binding changes.
	UpdateEvent(ctx context.Context, ev *models.LiveEvent) error

	// UpdateRecurrenceProgress advances a pattern's generation state.
	UpdateRecurrenceProgress(ctx context.Context, patternID string, generatedCount int, lastMaterializedAt time.Time) error

	// SetRecurrenceStatus transitions a pattern (active -> completed).
	SetRecurrenceStatus(ctx context.Context, patternID, status string) error
}

// BroadcastBinding is the remote identity of a created YouTube broadcast.
type BroadcastBinding struct {
	BroadcastID  string
	StreamID     string
	IngestionURL string
	StreamKey    string
}

// Broadcaster creates the remote YouTube broadcast for an occurrence.
type Broadcaster interface {
	CreateBroadcast(ctx context.Context, channelID string, ev *models.LiveEvent) (*BroadcastBinding, error)
}

// SecretCipher seals the RTMP stream key before it is persisted.
type SecretCipher interface {
	Encrypt(plaintext string) (string, error)
}

// MaterializerPublisher emits bus events for generated occurrences.
// Publish failures are logged and never block generation.
type MaterializerPublisher interface {
	OccurrenceCreated(ctx context.Context, ev *models.LiveEvent) error
	OccurrenceFailed(ctx context.Context, ev *models.LiveEvent, reason string) error
	RecurrenceCompleted(ctx context.Context, pattern *models.RecurrencePattern) error
}

// MaterializerConfig holds materializer settings.
type MaterializerConfig struct {
	// CheckInterval is how often patterns are scanned for due occurrences.
	CheckInterval time.Duration

	// Horizon is how far ahead occurrences are generated. Each run
	// materializes every occurrence starting before now + Horizon.
	Horizon time.Duration

	// MaxConcurrent limits patterns materialized in parallel.
	MaxConcurrent int

	// ExecutionTimeout bounds a single pattern's materialization,
	// including remote broadcast creation calls.
	ExecutionTimeout time.Duration

	// Enabled controls whether the run loop executes at all.
	Enabled bool
}

// DefaultMaterializerConfig returns production defaults.
func DefaultMaterializerConfig() MaterializerConfig {
	return MaterializerConfig{
		CheckInterval:    time.Minute,
		Horizon:          7 * 24 * time.Hour,
		MaxConcurrent:    4,
		ExecutionTimeout: 2 * time.Minute,
		Enabled:          true,
	}
}

// Materializer expands active recurrence patterns into concrete child events
// on a fixed interval.
//
// Each run lists patterns with occurrences due inside the horizon and
// materializes them concurrently up to MaxConcurrent. A single pattern's
// occurrences are generated sequentially so per-pattern state (generated
// count, last materialized time) advances deterministically.
type Materializer struct {
	store     MaterializerStore
	checker   *Checker
	broadcast Broadcaster
	cipher    SecretCipher
	publisher MaterializerPublisher
	config    MaterializerConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewMaterializer creates a materializer. The broadcaster, cipher, and
// publisher may be nil; generation then stops at the local scheduled record,
// which is how tests and degraded single-node deployments run.
func NewMaterializer(store MaterializerStore, broadcast Broadcaster, cipher SecretCipher, publisher MaterializerPublisher, config MaterializerConfig) *Materializer {
	return &Materializer{
		store:     store,
		checker:   NewChecker(store),
		broadcast: broadcast,
		cipher:    cipher,
		publisher: publisher,
		config:    config,
	}
}

// Start launches the background run loop. Calling Start on a running
// materializer is a no-op.
func (m *Materializer) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}
	if !m.config.Enabled {
		logging.Info().Msg("Recurrence materializer disabled")
		return nil
	}

	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	m.running = true

	go m.run(ctx)

	logging.Info().
		Dur("check_interval", m.config.CheckInterval).
		Dur("horizon", m.config.Horizon).
		Int("max_concurrent", m.config.MaxConcurrent).
		Msg("Recurrence materializer started")
	return nil
}

// Stop terminates the run loop and waits for in-flight work to finish.
func (m *Materializer) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	close(m.stopCh)
	doneCh := m.doneCh
	m.mu.Unlock()

	<-doneCh
	logging.Info().Msg("Recurrence materializer stopped")
	return nil
}

func (m *Materializer) run(ctx context.Context) {
	defer close(m.doneCh)

	ticker := time.NewTicker(m.config.CheckInterval)
	defer ticker.Stop()

	// Immediate first pass so a restart does not wait a full interval.
	m.materializeDue(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.materializeDue(ctx)
		}
	}
}

// materializeDue runs one materialization pass over all due patterns.
func (m *Materializer) materializeDue(ctx context.Context) {
	horizon := time.Now().UTC().Add(m.config.Horizon)

	patterns, err := m.store.ListMaterializablePatterns(ctx, horizon)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to list materializable patterns")
		return
	}
	if len(patterns) == 0 {
		return
	}

	maxConcurrent := m.config.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup

	for i := range patterns {
		pattern := patterns[i]

		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case <-m.stopCh:
			wg.Wait()
			return
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			execCtx := ctx
			if m.config.ExecutionTimeout > 0 {
				var cancel context.CancelFunc
				execCtx, cancel = context.WithTimeout(ctx, m.config.ExecutionTimeout)
				defer cancel()
			}
			if err := m.MaterializePattern(execCtx, &pattern, horizon); err != nil {
				logging.Error().
					Err(err).
					Str("pattern_id", pattern.ID.String()).
					Msg("Pattern materialization failed")
			}
		}()
	}

	wg.Wait()
}

// MaterializePattern generates every occurrence of one pattern that starts
// before the horizon. It is exported so the API can force materialization
// after a pattern is created or resumed.
//
// Failure policy: a remote broadcast error marks that child event failed and
// generation continues with the next slot. A storage error aborts the
// pattern for this run; the next run resumes from persisted state.
func (m *Materializer) MaterializePattern(ctx context.Context, pattern *models.RecurrencePattern, horizon time.Time) error {
	if !pattern.IsActive() {
		return nil
	}

	template, err := m.store.GetEvent(ctx, pattern.TemplateEventID.String())
	if err != nil {
		return fmt.Errorf("loading template event %s: %w", pattern.TemplateEventID, err)
	}

	cursor := pattern.StartDate.Add(-time.Second)
	if pattern.LastMaterializedAt != nil {
		cursor = *pattern.LastMaterializedAt
	}

	for {
		if pattern.CountExhausted() {
			return m.completePattern(ctx, pattern)
		}

		next, ok := NextOccurrence(pattern, cursor)
		if !ok {
			return m.completePattern(ctx, pattern)
		}
		if next.After(horizon) {
			return nil
		}

		generated, err := m.materializeOccurrence(ctx, pattern, template, next)
		if err != nil {
			return err
		}

		cursor = next
		if generated {
			pattern.GeneratedCount++
		}
		pattern.LastMaterializedAt = &cursor
		if err := m.store.UpdateRecurrenceProgress(ctx, pattern.ID.String(), pattern.GeneratedCount, cursor); err != nil {
			return fmt.Errorf("updating pattern progress: %w", err)
		}
	}
}

// materializeOccurrence creates one child event at the given start time.
// The returned bool reports whether an occurrence was generated; conflicting
// slots return false without error so they do not consume the count budget.
func (m *Materializer) materializeOccurrence(ctx context.Context, pattern *models.RecurrencePattern, template *models.LiveEvent, start time.Time) (bool, error) {
	end := start.Add(templateDuration(template))

	conflicts, err := m.checker.CheckWindow(ctx, pattern.ChannelID.String(), start, end)
	if err != nil {
		return false, fmt.Errorf("checking conflicts: %w", err)
	}
	if len(conflicts) > 0 {
		metrics.RecurrenceOccurrencesSkipped.Inc()
		logging.Warn().
			Str("pattern_id", pattern.ID.String()).
			Time("start", start).
			Int("conflicts", len(conflicts)).
			Msg("Skipping conflicting occurrence")
		return false, nil
	}

	ev := childEvent(pattern, template, start, end)
	if err := m.store.CreateEvent(ctx, ev); err != nil {
		return false, fmt.Errorf("creating occurrence event: %w", err)
	}

	if m.broadcast == nil {
		metrics.RecurrenceOccurrencesGenerated.Inc()
		m.publishCreated(ctx, ev)
		return true, nil
	}

	binding, err := m.broadcast.CreateBroadcast(ctx, pattern.ChannelID.String(), ev)
	if err != nil {
		reason := err.Error()
		ev.Status = models.EventStatusFailed
		ev.FailureReason = &reason
		ev.UpdatedAt = time.Now().UTC()
		if uerr := m.store.UpdateEvent(ctx, ev); uerr != nil {
			return false, fmt.Errorf("marking occurrence failed: %w", uerr)
		}
		metrics.RecurrenceOccurrencesFailed.Inc()
		logging.Error().
			Err(err).
			Str("pattern_id", pattern.ID.String()).
			Str("event_id", ev.ID.String()).
			Time("start", start).
			Msg("Remote broadcast creation failed, continuing series")
		if m.publisher != nil {
			if perr := m.publisher.OccurrenceFailed(ctx, ev, reason); perr != nil {
				logging.Warn().Err(perr).Msg("Failed to publish occurrence failure")
			}
		}
		// The occurrence exists locally; it counts toward the budget.
		return true, nil
	}

	ev.Status = models.EventStatusReady
	ev.BroadcastID = &binding.BroadcastID
	ev.StreamID = &binding.StreamID
	ev.IngestionURL = &binding.IngestionURL
	if m.cipher != nil && binding.StreamKey != "" {
		sealed, err := m.cipher.Encrypt(binding.StreamKey)
		if err != nil {
			return false, fmt.Errorf("sealing stream key: %w", err)
		}
		ev.StreamKeyEncrypted = &sealed
	}
	ev.UpdatedAt = time.Now().UTC()
	if err := m.store.UpdateEvent(ctx, ev); err != nil {
		return false, fmt.Errorf("binding broadcast to occurrence: %w", err)
	}

	metrics.RecurrenceOccurrencesGenerated.Inc()
	m.publishCreated(ctx, ev)
	return true, nil
}

func (m *Materializer) publishCreated(ctx context.Context, ev *models.LiveEvent) {
	if m.publisher == nil {
		return
	}
	if err := m.publisher.OccurrenceCreated(ctx, ev); err != nil {
		logging.Warn().Err(err).Str("event_id", ev.ID.String()).Msg("Failed to publish occurrence creation")
	}
}

func (m *Materializer) completePattern(ctx context.Context, pattern *models.RecurrencePattern) error {
	if err := m.store.SetRecurrenceStatus(ctx, pattern.ID.String(), models.RecurrenceStatusCompleted); err != nil {
		return fmt.Errorf("completing pattern: %w", err)
	}
	pattern.Status = models.RecurrenceStatusCompleted
	logging.Info().
		Str("pattern_id", pattern.ID.String()).
		Int("generated", pattern.GeneratedCount).
		Msg("Recurrence pattern completed")
	if m.publisher != nil {
		if err := m.publisher.RecurrenceCompleted(ctx, pattern); err != nil {
			logging.Warn().Err(err).Msg("Failed to publish recurrence completion")
		}
	}
	return nil
}

// childEvent copies the template onto a concrete occurrence at start.
func childEvent(pattern *models.RecurrencePattern, template *models.LiveEvent, start, end time.Time) *models.LiveEvent {
	now := time.Now().UTC()
	index := pattern.GeneratedCount
	ev := &models.LiveEvent{
		ID:              uuid.New(),
		ChannelID:       pattern.ChannelID,
		UserID:          pattern.UserID,
		Title:           template.Title,
		Description:     template.Description,
		StartTime:       start,
		Status:          models.EventStatusScheduled,
		Visibility:      template.Visibility,
		RecurrenceID:    &pattern.ID,
		OccurrenceIndex: &index,
		EnableDVR:       template.EnableDVR,
		EnableAutoStart: template.EnableAutoStart,
		EnableAutoStop:  template.EnableAutoStop,
		CategoryID:      template.CategoryID,
		Tags:            template.Tags,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if template.EndTime != nil {
		ev.EndTime = &end
	}
	return ev
}

// templateDuration returns the slot length occurrences inherit.
func templateDuration(template *models.LiveEvent) time.Duration {
	if template.EndTime != nil {
		if d := template.EndTime.Sub(template.StartTime); d > 0 {
			return d
		}
	}
	return models.DefaultEventDuration
}
