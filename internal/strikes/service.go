// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

// Package strikes tracks policy strikes against channels and enforces the
// three-strike suspension rule.
package strikes

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tubefleet/tubefleet/internal/logging"
	"github.com/tubefleet/tubefleet/internal/metrics"
	"github.com/tubefleet/tubefleet/internal/models"
)

// Store is the persistence surface the strikes service needs.
type Store interface {
	CreateStrike(ctx context.Context, strike *models.Strike) error
	GetStrike(ctx context.Context, id string) (*models.Strike, error)
	ListStrikesByChannel(ctx context.Context, channelID string) ([]models.Strike, error)
	CountStrikesTowardSuspension(ctx context.Context, channelID string) (int, error)
	SetStrikeStatus(ctx context.Context, id string, status string) error
	ExpireStrikes(ctx context.Context, now time.Time) ([]uuid.UUID, error)

	GetChannel(ctx context.Context, id string) (*models.Channel, error)
	SetChannelStatus(ctx context.Context, id string, status string) error
	SetChannelStrikeCount(ctx context.Context, id string, count int) error
}

// Publisher emits strike events on the bus. Publish failures are logged and
// never roll back strike state.
type Publisher interface {
	StrikeRecorded(ctx context.Context, strike *models.Strike, channel *models.Channel, activeCount int) error
	StrikeResolved(ctx context.Context, strike *models.Strike, channel *models.Channel, activeCount int) error
	ChannelSuspended(ctx context.Context, channel *models.Channel, activeCount int) error
	SuspensionLifted(ctx context.Context, channel *models.Channel, activeCount int) error
}

// ServiceConfig holds strike handling settings.
type ServiceConfig struct {
	// CommunityStrikeTTL is the default expiry applied to community strikes
	// recorded without one. Copyright and terms strikes do not expire.
	CommunityStrikeTTL time.Duration

	// ExpiryInterval is how often expired strikes are swept.
	ExpiryInterval time.Duration
}

// DefaultServiceConfig returns production defaults. The 90-day community
// strike expiry matches the platform policy the strikes mirror.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		CommunityStrikeTTL: 90 * 24 * time.Hour,
		ExpiryInterval:     time.Hour,
	}
}

// Service records and resolves strikes, keeps the channel's cached count
// accurate, and suspends or unsuspends channels as the count crosses the
// threshold.
type Service struct {
	store     Store
	publisher Publisher
	config    ServiceConfig
}

// NewService creates the strikes service. The publisher may be nil in tests.
func NewService(store Store, publisher Publisher, config ServiceConfig) *Service {
	return &Service{store: store, publisher: publisher, config: config}
}

// Record persists a strike and applies its consequences: the channel's
// cached count is updated, and reaching the suspension threshold suspends
// the channel.
func (s *Service) Record(ctx context.Context, strike *models.Strike) (*models.Strike, error) {
	if !models.IsValidStrikeType(strike.StrikeType) {
		return nil, fmt.Errorf("invalid strike type %q", strike.StrikeType)
	}

	channel, err := s.store.GetChannel(ctx, strike.ChannelID.String())
	if err != nil {
		return nil, fmt.Errorf("loading channel: %w", err)
	}
	strike.UserID = channel.UserID

	if strike.ExpiresAt == nil && strike.StrikeType == models.StrikeTypeCommunity && s.config.CommunityStrikeTTL > 0 {
		expires := time.Now().UTC().Add(s.config.CommunityStrikeTTL)
		strike.ExpiresAt = &expires
	}

	if err := s.store.CreateStrike(ctx, strike); err != nil {
		return nil, fmt.Errorf("creating strike: %w", err)
	}
	metrics.StrikesRecorded.WithLabelValues(strike.StrikeType).Inc()

	count, err := s.refreshCount(ctx, channel)
	if err != nil {
		return nil, err
	}

	logging.Info().
		Str("strike_id", strike.ID.String()).
		Str("channel_id", channel.ID.String()).
		Str("type", strike.StrikeType).
		Int("active_count", count).
		Msg("Strike recorded")

	if s.publisher != nil {
		if err := s.publisher.StrikeRecorded(ctx, strike, channel, count); err != nil {
			logging.Error().Err(err).Str("strike_id", strike.ID.String()).Msg("Failed to publish strike event")
		}
	}

	if count >= models.StrikeSuspensionThreshold && channel.Status != models.ChannelStatusSuspended {
		if err := s.suspend(ctx, channel, count); err != nil {
			return nil, err
		}
	}
	return strike, nil
}

// Appeal marks a strike under appeal. Appealed strikes still count toward
// suspension until resolved.
func (s *Service) Appeal(ctx context.Context, strikeID string) (*models.Strike, error) {
	strike, err := s.store.GetStrike(ctx, strikeID)
	if err != nil {
		return nil, err
	}
	if strike.Status != models.StrikeStatusActive {
		return nil, fmt.Errorf("strike %s is %s, only active strikes can be appealed", strikeID, strike.Status)
	}
	if err := s.store.SetStrikeStatus(ctx, strikeID, models.StrikeStatusAppealed); err != nil {
		return nil, err
	}
	return s.store.GetStrike(ctx, strikeID)
}

// Resolve overturns a strike. Dropping the channel below the threshold
// lifts its suspension.
func (s *Service) Resolve(ctx context.Context, strikeID string) (*models.Strike, error) {
	strike, err := s.store.GetStrike(ctx, strikeID)
	if err != nil {
		return nil, err
	}
	if !strike.CountsTowardSuspension() {
		return nil, fmt.Errorf("strike %s is already %s", strikeID, strike.Status)
	}
	if err := s.store.SetStrikeStatus(ctx, strikeID, models.StrikeStatusResolved); err != nil {
		return nil, err
	}

	channel, err := s.store.GetChannel(ctx, strike.ChannelID.String())
	if err != nil {
		return nil, fmt.Errorf("loading channel: %w", err)
	}
	count, err := s.refreshCount(ctx, channel)
	if err != nil {
		return nil, err
	}

	resolved, err := s.store.GetStrike(ctx, strikeID)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.StrikeResolved(ctx, resolved, channel, count); err != nil {
			logging.Error().Err(err).Str("strike_id", strikeID).Msg("Failed to publish strike event")
		}
	}

	if err := s.maybeLift(ctx, channel, count); err != nil {
		return nil, err
	}
	return resolved, nil
}

// List returns a channel's strikes, newest first.
func (s *Service) List(ctx context.Context, channelID string) ([]models.Strike, error) {
	return s.store.ListStrikesByChannel(ctx, channelID)
}

// ActiveCount returns the channel's count toward suspension.
func (s *Service) ActiveCount(ctx context.Context, channelID string) (int, error) {
	return s.store.CountStrikesTowardSuspension(ctx, channelID)
}

// ExpireOnce transitions strikes past their expiry and lifts suspensions
// on the channels that dropped below the threshold.
func (s *Service) ExpireOnce(ctx context.Context) error {
	channelIDs, err := s.store.ExpireStrikes(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("expiring strikes: %w", err)
	}

	for _, channelID := range channelIDs {
		channel, err := s.store.GetChannel(ctx, channelID.String())
		if err != nil {
			logging.Error().Err(err).Str("channel_id", channelID.String()).Msg("Failed to load channel after strike expiry")
			continue
		}
		count, err := s.refreshCount(ctx, channel)
		if err != nil {
			logging.Error().Err(err).Str("channel_id", channelID.String()).Msg("Failed to refresh strike count")
			continue
		}
		if err := s.maybeLift(ctx, channel, count); err != nil {
			logging.Error().Err(err).Str("channel_id", channelID.String()).Msg("Failed to lift suspension after expiry")
		}
	}
	return nil
}

// refreshCount recomputes the channel's count toward suspension and
// updates the cached column. The channel struct is updated in place.
func (s *Service) refreshCount(ctx context.Context, channel *models.Channel) (int, error) {
	count, err := s.store.CountStrikesTowardSuspension(ctx, channel.ID.String())
	if err != nil {
		return 0, fmt.Errorf("counting strikes: %w", err)
	}
	if err := s.store.SetChannelStrikeCount(ctx, channel.ID.String(), count); err != nil {
		return 0, fmt.Errorf("caching strike count: %w", err)
	}
	channel.StrikeCount = count
	return count, nil
}

func (s *Service) suspend(ctx context.Context, channel *models.Channel, count int) error {
	if err := s.store.SetChannelStatus(ctx, channel.ID.String(), models.ChannelStatusSuspended); err != nil {
		return fmt.Errorf("suspending channel: %w", err)
	}
	channel.Status = models.ChannelStatusSuspended
	metrics.ChannelsSuspended.Inc()

	logging.Warn().
		Str("channel_id", channel.ID.String()).
		Str("title", channel.Title).
		Int("active_count", count).
		Msg("Channel suspended at strike threshold")

	if s.publisher != nil {
		if err := s.publisher.ChannelSuspended(ctx, channel, count); err != nil {
			logging.Error().Err(err).Str("channel_id", channel.ID.String()).Msg("Failed to publish suspension event")
		}
	}
	return nil
}

// maybeLift returns the channel to linked when it is suspended and the
// count toward suspension has dropped below the threshold.
func (s *Service) maybeLift(ctx context.Context, channel *models.Channel, count int) error {
	if channel.Status != models.ChannelStatusSuspended || count >= models.StrikeSuspensionThreshold {
		return nil
	}
	if err := s.store.SetChannelStatus(ctx, channel.ID.String(), models.ChannelStatusLinked); err != nil {
		return fmt.Errorf("lifting suspension: %w", err)
	}
	channel.Status = models.ChannelStatusLinked

	logging.Info().
		Str("channel_id", channel.ID.String()).
		Int("active_count", count).
		Msg("Channel suspension lifted")

	if s.publisher != nil {
		if err := s.publisher.SuspensionLifted(ctx, channel, count); err != nil {
			logging.Error().Err(err).Str("channel_id", channel.ID.String()).Msg("Failed to publish suspension event")
		}
	}
	return nil
}
