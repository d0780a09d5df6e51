// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package moderation

import (
	"context"
	"sync"
	"time"

	"github.com/tubefleet/tubefleet/internal/logging"
	"github.com/tubefleet/tubefleet/internal/models"
)

// ScannerStore is the persistence surface the scanner needs on top of the
// engine's Store.
type ScannerStore interface {
	ListChannelsByStatus(ctx context.Context, status string) ([]models.Channel, error)
	ListUnscannedComments(ctx context.Context, channelID string, limit int) ([]models.Comment, error)
	MarkCommentsScanned(ctx context.Context, ids []string) error
}

// ScannerConfig holds scanner loop settings.
type ScannerConfig struct {
	// ScanInterval is how often linked channels are swept for new comments.
	ScanInterval time.Duration

	// BatchSize caps comments taken per channel per pass.
	BatchSize int

	// MaxConcurrent limits channels scanned in parallel.
	MaxConcurrent int

	// Enabled controls whether the run loop executes at all.
	Enabled bool
}

// DefaultScannerConfig returns production defaults.
func DefaultScannerConfig() ScannerConfig {
	return ScannerConfig{
		ScanInterval:  30 * time.Second,
		BatchSize:     200,
		MaxConcurrent: 4,
		Enabled:       true,
	}
}

// Scanner sweeps unscanned comments on linked channels through the engine
// on a fixed interval. Channels are processed concurrently; one channel's
// batch is scanned sequentially so its comments are judged in fetch order.
type Scanner struct {
	store  ScannerStore
	engine *Engine
	config ScannerConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewScanner creates a scanner. Calling Start on a running scanner is a
// no-op, as is Stop on a stopped one.
func NewScanner(store ScannerStore, engine *Engine, config ScannerConfig) *Scanner {
	return &Scanner{
		store:  store,
		engine: engine,
		config: config,
	}
}

// Start launches the background run loop.
func (s *Scanner) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if !s.config.Enabled {
		logging.Info().Msg("Moderation scanner disabled")
		return nil
	}

	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.running = true

	go s.run(ctx)

	logging.Info().
		Dur("scan_interval", s.config.ScanInterval).
		Int("batch_size", s.config.BatchSize).
		Msg("Moderation scanner started")
	return nil
}

// Stop terminates the run loop and waits for in-flight work to finish.
func (s *Scanner) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	doneCh := s.doneCh
	s.mu.Unlock()

	<-doneCh
	logging.Info().Msg("Moderation scanner stopped")
	return nil
}

func (s *Scanner) run(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.config.ScanInterval)
	defer ticker.Stop()

	// Immediate first pass so a restart does not wait a full interval.
	s.ScanOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.ScanOnce(ctx)
		}
	}
}

// ScanOnce runs one sweep over all linked channels. It is exported so the
// API can force a sweep after rules change.
func (s *Scanner) ScanOnce(ctx context.Context) {
	channels, err := s.store.ListChannelsByStatus(ctx, models.ChannelStatusLinked)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to list linked channels")
		return
	}
	if len(channels) == 0 {
		return
	}

	maxConcurrent := s.config.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup

	for i := range channels {
		channel := channels[i]

		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case <-s.stopCh:
			wg.Wait()
			return
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			if err := s.scanChannel(ctx, &channel); err != nil {
				logging.Error().
					Err(err).
					Str("channel_id", channel.ID.String()).
					Msg("Channel comment sweep failed")
			}
		}()
	}

	wg.Wait()
}

// scanChannel pulls one batch of unscanned comments and runs each through
// the engine. A comment that fails to scan is left unscanned and retried
// next pass; the rest of the batch still completes.
func (s *Scanner) scanChannel(ctx context.Context, channel *models.Channel) error {
	comments, err := s.store.ListUnscannedComments(ctx, channel.ID.String(), s.config.BatchSize)
	if err != nil {
		return err
	}
	if len(comments) == 0 {
		return nil
	}

	scanned := make([]string, 0, len(comments))
	for i := range comments {
		if _, err := s.engine.ScanComment(ctx, &comments[i]); err != nil {
			logging.Warn().
				Err(err).
				Str("comment_id", comments[i].YouTubeCommentID).
				Msg("Comment scan failed, will retry")
			continue
		}
		scanned = append(scanned, comments[i].YouTubeCommentID)
	}
	if len(scanned) == 0 {
		return nil
	}
	return s.store.MarkCommentsScanned(ctx, scanned)
}
