// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package comments

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tubefleet/tubefleet/internal/logging"
	"github.com/tubefleet/tubefleet/internal/models"
)

// SyncerStore is the persistence surface the comment sync needs.
type SyncerStore interface {
	GetChannel(ctx context.Context, id string) (*models.Channel, error)
	ListChannelsByStatus(ctx context.Context, status string) ([]models.Channel, error)
	UpsertComment(ctx context.Context, comment *models.Comment) error
}

// Source lists a channel's recent comments through the Data API wrapper.
// Implemented by youtube.CommentGateway.
type Source interface {
	ListRecentThreads(ctx context.Context, channel *models.Channel, maxComments int) ([]models.Comment, error)
}

// SyncerConfig holds comment ingestion settings.
type SyncerConfig struct {
	// SyncInterval is how often linked channels are polled.
	SyncInterval time.Duration

	// MaxComments caps the comments fetched per channel per sweep.
	MaxComments int

	// MaxConcurrent bounds parallel per-channel syncs.
	MaxConcurrent int

	// Enabled turns the sync loop on.
	Enabled bool
}

// DefaultSyncerConfig returns production defaults.
func DefaultSyncerConfig() SyncerConfig {
	return SyncerConfig{
		SyncInterval:  5 * time.Minute,
		MaxComments:   200,
		MaxConcurrent: 4,
		Enabled:       true,
	}
}

// Syncer polls linked channels for recent comments and feeds fresh ones
// through the responder.
type Syncer struct {
	store     SyncerStore
	source    Source
	responder *Responder
	config    SyncerConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewSyncer creates a comment syncer. The responder may be nil; comments
// are then ingested without chatbot evaluation.
func NewSyncer(store SyncerStore, source Source, responder *Responder, config SyncerConfig) *Syncer {
	return &Syncer{
		store:     store,
		source:    source,
		responder: responder,
		config:    config,
	}
}

// Start launches the sync loop. No-op when already running.
func (s *Syncer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if !s.config.Enabled {
		logging.Info().Msg("Comment sync disabled")
		return nil
	}

	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.running = true

	go s.run(ctx)

	logging.Info().
		Dur("sync_interval", s.config.SyncInterval).
		Int("max_comments", s.config.MaxComments).
		Msg("Comment sync started")
	return nil
}

// Stop halts the sync loop and waits for the current sweep.
func (s *Syncer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	close(s.stopCh)
	<-s.doneCh
	s.running = false

	logging.Info().Msg("Comment sync stopped")
	return nil
}

func (s *Syncer) run(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.config.SyncInterval)
	defer ticker.Stop()

	s.SyncOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.SyncOnce(ctx)
		}
	}
}

// SyncOnce polls every linked channel once.
func (s *Syncer) SyncOnce(ctx context.Context) {
	channels, err := s.store.ListChannelsByStatus(ctx, models.ChannelStatusLinked)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to list channels for comment sync")
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

			if err := s.syncChannel(ctx, &channel); err != nil {
				logging.Error().
					Err(err).
					Str("channel_id", channel.ID.String()).
					Msg("Comment sync failed for channel")
			}
		}()
	}

	wg.Wait()
}

// SyncChannel polls one channel on demand. Backs the manual sync endpoint.
func (s *Syncer) SyncChannel(ctx context.Context, channelID string) error {
	channel, err := s.store.GetChannel(ctx, channelID)
	if err != nil {
		return err
	}
	if !channel.IsLinked() {
		return fmt.Errorf("channel %s is %s, sync requires a linked channel", channelID, channel.Status)
	}
	return s.syncChannel(ctx, channel)
}

func (s *Syncer) syncChannel(ctx context.Context, channel *models.Channel) error {
	fetched, err := s.source.ListRecentThreads(ctx, channel, s.config.MaxComments)
	if err != nil {
		return fmt.Errorf("fetching threads: %w", err)
	}

	var replies int
	for i := range fetched {
		comment := &fetched[i]
		if err := s.store.UpsertComment(ctx, comment); err != nil {
			return fmt.Errorf("upserting comment %s: %w", comment.YouTubeCommentID, err)
		}

		if s.responder == nil {
			continue
		}
		attempted, err := s.responder.ProcessComment(ctx, channel, comment)
		if err != nil {
			logging.Warn().
				Err(err).
				Str("comment_id", comment.YouTubeCommentID).
				Msg("Chatbot evaluation failed for comment")
			continue
		}
		if attempted {
			replies++
		}
	}

	logging.Debug().
		Str("channel_id", channel.ID.String()).
		Int("comments", len(fetched)).
		Int("replies", replies).
		Msg("Comment sync pass complete")
	return nil
}
