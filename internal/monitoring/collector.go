// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package monitoring

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

// CollectorStore is the persistence surface the usage collector needs.
type CollectorStore interface {
	CheckerStore

	ListUsers(ctx context.Context, limit, offset int) ([]models.User, error)

	InsertResourceUsage(ctx context.Context, usage *models.ResourceUsage) error
	PruneResourceUsage(ctx context.Context, before time.Time) (int64, error)

	GetOpenQuotaAlert(ctx context.Context, userID, kind, level string) (*models.QuotaAlert, error)
	ListOpenQuotaAlertsByUser(ctx context.Context, userID string) ([]models.QuotaAlert, error)
	CreateQuotaAlert(ctx context.Context, alert *models.QuotaAlert) error
	ClearQuotaAlert(ctx context.Context, id int64, clearedAt time.Time) error
	MarkQuotaAlertNotified(ctx context.Context, id int64, notifiedAt time.Time) error
}

// Publisher emits quota events on the bus. Publish failures are logged and
// never block collection.
type Publisher interface {
	QuotaWarning(ctx context.Context, userID uuid.UUID, usage models.ResourceUsage) error
	QuotaExceeded(ctx context.Context, userID uuid.UUID, usage models.ResourceUsage) error
}

// CollectorConfig holds usage collection settings.
type CollectorConfig struct {
	// CollectInterval is how often usage is sampled.
	CollectInterval time.Duration

	// WarnThreshold is the warning level as a percent of the plan limit.
	WarnThreshold int

	// CriticalThreshold is the limit-reached level as a percent.
	CriticalThreshold int

	// Retention bounds how long raw usage samples are kept.
	Retention time.Duration

	// PageSize is the user page size per sweep.
	PageSize int

	// MaxConcurrent bounds parallel per-user collection.
	MaxConcurrent int

	// Enabled turns the collector on.
	Enabled bool
}

// DefaultCollectorConfig returns production defaults.
func DefaultCollectorConfig() CollectorConfig {
	return CollectorConfig{
		CollectInterval:   5 * time.Minute,
		WarnThreshold:     80,
		CriticalThreshold: 95,
		Retention:         30 * 24 * time.Hour,
		PageSize:          200,
		MaxConcurrent:     4,
		Enabled:           true,
	}
}

// Collector samples per-user resource usage on an interval, records
// threshold crossings as quota alerts, and emits quota events on each
// crossing.
type Collector struct {
	store     CollectorStore
	checker   *Checker
	publisher Publisher
	config    CollectorConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewCollector creates a usage collector.
func NewCollector(store CollectorStore, publisher Publisher, config CollectorConfig) *Collector {
	return &Collector{
		store:     store,
		checker:   NewChecker(store),
		publisher: publisher,
		config:    config,
	}
}

// Checker exposes the synchronous limit checker sharing this collector's
// store.
func (c *Collector) Checker() *Checker {
	return c.checker
}

// Start launches the collection loop. No-op when already running.
func (c *Collector) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}
	if !c.config.Enabled {
		logging.Info().Msg("Usage collector disabled")
		return nil
	}

	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})
	c.running = true

	go c.run(ctx)

	logging.Info().
		Dur("collect_interval", c.config.CollectInterval).
		Int("warn_threshold", c.config.WarnThreshold).
		Int("critical_threshold", c.config.CriticalThreshold).
		Msg("Usage collector started")
	return nil
}

// Stop halts the collection loop and waits for the current sweep.
func (c *Collector) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}
	close(c.stopCh)
	<-c.doneCh
	c.running = false

	logging.Info().Msg("Usage collector stopped")
	return nil
}

func (c *Collector) run(ctx context.Context) {
	defer close(c.doneCh)

	ticker := time.NewTicker(c.config.CollectInterval)
	defer ticker.Stop()

	c.CollectOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.CollectOnce(ctx)
			c.prune(ctx)
		}
	}
}

// CollectOnce samples usage for every active user.
func (c *Collector) CollectOnce(ctx context.Context) {
	maxConcurrent := c.config.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	pageSize := c.config.PageSize
	if pageSize < 1 {
		pageSize = 200
	}

	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup

	for offset := 0; ; offset += pageSize {
		users, err := c.store.ListUsers(ctx, pageSize, offset)
		if err != nil {
			logging.Error().Err(err).Msg("Failed to list users for usage collection")
			break
		}
		if len(users) == 0 {
			break
		}

		for i := range users {
			user := users[i]
			if user.Status != models.UserStatusActive {
				continue
			}

			select {
			case <-ctx.Done():
				wg.Wait()
				return
			case <-c.stopCh:
				wg.Wait()
				return
			case sem <- struct{}{}:
			}

			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() { <-sem }()

				if err := c.CollectUser(ctx, user.ID); err != nil {
					logging.Error().
						Err(err).
						Str("user_id", user.ID.String()).
						Msg("Usage collection failed for user")
				}
			}()
		}

		if len(users) < pageSize {
			break
		}
	}

	wg.Wait()
}

// CollectUser samples one user's usage across all counted resource kinds,
// persists the samples, and runs the threshold transitions.
func (c *Collector) CollectUser(ctx context.Context, userID uuid.UUID) error {
	limits, _, err := c.checker.Limits(ctx, userID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	for _, kind := range countedKinds {
		used, err := c.checker.count(ctx, userID.String(), kind)
		if err != nil {
			return fmt.Errorf("counting %s: %w", kind, err)
		}

		usage := models.ResourceUsage{
			UserID:     userID,
			Kind:       kind,
			Used:       used,
			Limit:      limits[kind],
			CapturedAt: now,
		}
		if err := c.store.InsertResourceUsage(ctx, &usage); err != nil {
			return fmt.Errorf("recording %s usage: %w", kind, err)
		}

		// The gauge is per resource, not per user; it tracks the most
		// constrained account so operators see headroom shrinking.
		if pct := usage.Percent(); pct > 0 {
			metrics.QuotaUsagePercent.WithLabelValues(kind).Set(pct)
		}

		if err := c.applyThresholds(ctx, usage, now); err != nil {
			return fmt.Errorf("threshold transitions for %s: %w", kind, err)
		}
	}
	return nil
}

// applyThresholds fires or clears quota alerts for one usage sample. An
// alert fires once per crossing: while it stays open, further samples above
// the threshold are silent.
func (c *Collector) applyThresholds(ctx context.Context, usage models.ResourceUsage, now time.Time) error {
	userID := usage.UserID.String()

	openWarn, err := c.store.GetOpenQuotaAlert(ctx, userID, usage.Kind, models.AlertLevelWarn)
	if err != nil {
		return err
	}
	openCrit, err := c.store.GetOpenQuotaAlert(ctx, userID, usage.Kind, models.AlertLevelCritical)
	if err != nil {
		return err
	}

	switch {
	case usage.Exceeds(c.config.CriticalThreshold):
		if openCrit == nil {
			if err := c.fireAlert(ctx, usage, models.AlertLevelCritical, now); err != nil {
				return err
			}
		}

	case usage.Exceeds(c.config.WarnThreshold):
		if openCrit != nil {
			if err := c.store.ClearQuotaAlert(ctx, openCrit.ID, now); err != nil {
				return err
			}
		}
		if openWarn == nil {
			if err := c.fireAlert(ctx, usage, models.AlertLevelWarn, now); err != nil {
				return err
			}
		}

	default:
		if openCrit != nil {
			if err := c.store.ClearQuotaAlert(ctx, openCrit.ID, now); err != nil {
				return err
			}
		}
		if openWarn != nil {
			if err := c.store.ClearQuotaAlert(ctx, openWarn.ID, now); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Collector) fireAlert(ctx context.Context, usage models.ResourceUsage, level string, now time.Time) error {
	alert := models.QuotaAlert{
		UserID:         usage.UserID,
		Kind:           usage.Kind,
		Level:          level,
		PercentAtAlert: usage.Percent(),
		FiredAt:        now,
	}
	if err := c.store.CreateQuotaAlert(ctx, &alert); err != nil {
		return err
	}

	logging.Warn().
		Str("user_id", usage.UserID.String()).
		Str("resource", usage.Kind).
		Str("level", level).
		Int64("used", usage.Used).
		Int64("limit", usage.Limit).
		Msg("Plan quota threshold crossed")

	if c.publisher != nil {
		var pubErr error
		if level == models.AlertLevelCritical {
			pubErr = c.publisher.QuotaExceeded(ctx, usage.UserID, usage)
		} else {
			pubErr = c.publisher.QuotaWarning(ctx, usage.UserID, usage)
		}
		if pubErr != nil {
			logging.Error().Err(pubErr).Str("resource", usage.Kind).Msg("Failed to publish quota event")
			return nil
		}
	}

	if err := c.store.MarkQuotaAlertNotified(ctx, alert.ID, now); err != nil {
		logging.Warn().Err(err).Int64("alert_id", alert.ID).Msg("Failed to stamp quota alert notified")
	}
	return nil
}

func (c *Collector) prune(ctx context.Context) {
	if c.config.Retention <= 0 {
		return
	}
	before := time.Now().UTC().Add(-c.config.Retention)
	pruned, err := c.store.PruneResourceUsage(ctx, before)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to prune usage samples")
		return
	}
	if pruned > 0 {
		logging.Debug().Int64("rows", pruned).Msg("Pruned old usage samples")
	}
}

// UsageReport builds the current usage snapshot for one user from live
// counts, independent of the sampling interval.
func (c *Collector) UsageReport(ctx context.Context, userID uuid.UUID) (*models.UsageReport, error) {
	limits, slug, err := c.checker.Limits(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()

	report := &models.UsageReport{
		UserID:      userID,
		PlanSlug:    slug,
		GeneratedAt: now,
	}
	for _, kind := range countedKinds {
		used, err := c.checker.count(ctx, userID.String(), kind)
		if err != nil {
			return nil, fmt.Errorf("counting %s: %w", kind, err)
		}
		usage := models.ResourceUsage{
			UserID:     userID,
			Kind:       kind,
			Used:       used,
			Limit:      limits[kind],
			CapturedAt: now,
		}
		report.Resources = append(report.Resources, usage)

		switch {
		case usage.Exceeds(c.config.CriticalThreshold):
			report.Criticals = append(report.Criticals, kind)
		case usage.Exceeds(c.config.WarnThreshold):
			report.Warnings = append(report.Warnings, kind)
		}
	}
	return report, nil
}
