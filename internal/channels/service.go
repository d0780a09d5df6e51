// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package channels

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tubefleet/tubefleet/internal/database"
	"github.com/tubefleet/tubefleet/internal/logging"
	"github.com/tubefleet/tubefleet/internal/metrics"
	"github.com/tubefleet/tubefleet/internal/models"
	"github.com/tubefleet/tubefleet/internal/youtube"
)

var (
	// ErrMissingRefreshToken is returned when Google completes the exchange
	// without granting a refresh token. prompt=consent should prevent this;
	// it indicates the consent screen was bypassed.
	ErrMissingRefreshToken = errors.New("google did not return a refresh token")

	// ErrLinkedToOtherAccount is returned when the consented YouTube channel
	// is already linked by a different panel account.
	ErrLinkedToOtherAccount = errors.New("channel is linked to another account")
)

// Store is the persistence surface the linking service needs.
type Store interface {
	CreateChannel(ctx context.Context, channel *models.Channel) error
	GetChannel(ctx context.Context, id string) (*models.Channel, error)
	GetChannelByYouTubeID(ctx context.Context, youtubeChannelID string) (*models.Channel, error)
	ListChannelsByUser(ctx context.Context, userID string) ([]models.Channel, error)
	UpdateChannel(ctx context.Context, channel *models.Channel) error
	UpdateChannelToken(ctx context.Context, id string, tokenEncrypted string, scope *string) error
	SetChannelStatus(ctx context.Context, id string, status string) error
}

// Cipher seals refresh tokens before they reach the database.
// Satisfied by config.CredentialEncryptor.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// LimitChecker guards channel creation against the account's plan.
// Satisfied by monitoring.Checker. A nil checker disables enforcement.
type LimitChecker interface {
	CheckLimit(ctx context.Context, userID uuid.UUID, kind string) error
}

// Directory fetches the consenting account's channel metadata.
// Satisfied by the YouTube API client.
type Directory interface {
	GetMyChannel(ctx context.Context, token string) (*youtube.ChannelResource, error)
}

// ServiceConfig holds linking flow settings.
type ServiceConfig struct {
	// StateTTL is how long a consent state stays valid.
	StateTTL time.Duration
}

// DefaultServiceConfig returns production defaults.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{StateTTL: 10 * time.Minute}
}

// Service runs the channel linking lifecycle: consent URL generation,
// callback exchange, unlink, and metadata refresh.
type Service struct {
	store  Store
	states StateStore
	auth   Authorizer
	cipher Cipher
	limits LimitChecker
	api    Directory
	tokens *TokenSource
	config ServiceConfig
}

// NewService creates a linking service. tokens may be nil when no token
// source is wired (the unlink path then skips cache invalidation).
func NewService(store Store, states StateStore, auth Authorizer, cipher Cipher, limits LimitChecker, api Directory, tokens *TokenSource, cfg ServiceConfig) *Service {
	if cfg.StateTTL <= 0 {
		cfg.StateTTL = DefaultServiceConfig().StateTTL
	}
	return &Service{
		store:  store,
		states: states,
		auth:   auth,
		cipher: cipher,
		limits: limits,
		api:    api,
		tokens: tokens,
		config: cfg,
	}
}

// StartLink begins the consent flow for userID and returns the Google
// consent URL. The plan's channel limit is enforced before any state is
// written so the user is rejected early rather than after consenting.
func (s *Service) StartLink(ctx context.Context, userID uuid.UUID, returnTo string) (string, error) {
	if s.limits != nil {
		if err := s.limits.CheckLimit(ctx, userID, models.ResourceChannels); err != nil {
			return "", err
		}
	}

	stateKey, err := randomToken(32)
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	verifier, err := randomToken(32)
	if err != nil {
		return "", fmt.Errorf("generate code verifier: %w", err)
	}
	nonce, err := randomToken(32)
	if err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	now := time.Now().UTC()
	st := &LinkState{
		UserID:       userID,
		CodeVerifier: verifier,
		Nonce:        nonce,
		ReturnTo:     returnTo,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.config.StateTTL),
	}

	authURL, err := s.auth.AuthCodeURL(stateKey, st)
	if err != nil {
		return "", fmt.Errorf("build consent URL: %w", err)
	}

	if err := s.states.Store(ctx, stateKey, st); err != nil {
		return "", fmt.Errorf("store state: %w", err)
	}

	logging.Debug().
		Str("user_id", userID.String()).
		Msg("Started channel link flow")

	return authURL, nil
}

// CompleteLink handles the OAuth callback: it consumes the state, exchanges
// the code, fetches the consenting channel, and creates or relinks the
// channel record. Returns the channel and the panel redirect recorded at
// flow start.
func (s *Service) CompleteLink(ctx context.Context, code, stateKey string) (*models.Channel, string, error) {
	st, err := s.consumeState(ctx, stateKey)
	if err != nil {
		return nil, "", err
	}

	grant, err := s.auth.Exchange(ctx, code, st)
	if err != nil {
		return nil, st.ReturnTo, err
	}
	if grant.RefreshToken == "" {
		return nil, st.ReturnTo, ErrMissingRefreshToken
	}

	res, err := s.api.GetMyChannel(ctx, grant.AccessToken)
	if err != nil {
		return nil, st.ReturnTo, fmt.Errorf("fetch channel metadata: %w", err)
	}

	sealed, err := s.cipher.Encrypt(grant.RefreshToken)
	if err != nil {
		return nil, st.ReturnTo, fmt.Errorf("seal refresh token: %w", err)
	}

	channel, err := s.upsertLink(ctx, st.UserID, res, sealed, grant.Scope)
	if err != nil {
		return nil, st.ReturnTo, err
	}
	return channel, st.ReturnTo, nil
}

// consumeState validates and deletes the state to prevent replay.
func (s *Service) consumeState(ctx context.Context, stateKey string) (*LinkState, error) {
	st, err := s.states.Get(ctx, stateKey)
	if err != nil {
		return nil, err
	}
	if err := s.states.Delete(ctx, stateKey); err != nil {
		logging.Warn().Err(err).Msg("Failed to delete consumed oauth state")
	}
	return st, nil
}

func (s *Service) upsertLink(ctx context.Context, userID uuid.UUID, res *youtube.ChannelResource, sealedToken, scope string) (*models.Channel, error) {
	var scopePtr *string
	if scope != "" {
		scopePtr = &scope
	}

	existing, err := s.store.GetChannelByYouTubeID(ctx, res.ID)
	switch {
	case err == nil:
		// Relink. Suspension from strike enforcement survives a relink;
		// only the revoked state is cleared.
		if existing.UserID != userID {
			return nil, ErrLinkedToOtherAccount
		}
		applyMetadata(existing, res)
		if existing.Status == models.ChannelStatusRevoked {
			existing.Status = models.ChannelStatusLinked
		}
		existing.UpdatedAt = time.Now().UTC()
		if err := s.store.UpdateChannel(ctx, existing); err != nil {
			return nil, fmt.Errorf("update channel: %w", err)
		}
		if err := s.store.UpdateChannelToken(ctx, existing.ID.String(), sealedToken, scopePtr); err != nil {
			return nil, fmt.Errorf("store refresh token: %w", err)
		}
		if s.tokens != nil {
			s.tokens.Invalidate(existing.ID.String())
		}

		logging.Info().
			Str("channel_id", existing.ID.String()).
			Str("youtube_channel_id", existing.YouTubeChannelID).
			Msg("Relinked channel")
		return existing, nil

	case errors.Is(err, database.ErrChannelNotFound):
		// First link. The limit was checked at flow start; check again in
		// case channels were created while the consent screen was open.
		if s.limits != nil {
			if err := s.limits.CheckLimit(ctx, userID, models.ResourceChannels); err != nil {
				return nil, err
			}
		}

		channel := models.NewChannel(userID, res.ID, res.Snippet.Title)
		applyMetadata(channel, res)
		channel.RefreshTokenEncrypted = sealedToken
		channel.TokenScope = scopePtr
		if err := s.store.CreateChannel(ctx, channel); err != nil {
			return nil, fmt.Errorf("create channel: %w", err)
		}
		metrics.ChannelsLinked.Inc()

		logging.Info().
			Str("channel_id", channel.ID.String()).
			Str("youtube_channel_id", channel.YouTubeChannelID).
			Str("title", channel.Title).
			Msg("Linked new channel")
		return channel, nil

	default:
		return nil, fmt.Errorf("lookup channel: %w", err)
	}
}

// Unlink revokes the Google grant best-effort, scrubs the stored refresh
// token, and marks the channel revoked. Automation pauses until relinked.
func (s *Service) Unlink(ctx context.Context, channelID string) error {
	channel, err := s.store.GetChannel(ctx, channelID)
	if err != nil {
		return err
	}

	if channel.RefreshTokenEncrypted != "" {
		refreshToken, err := s.cipher.Decrypt(channel.RefreshTokenEncrypted)
		if err != nil {
			logging.Warn().Err(err).
				Str("channel_id", channelID).
				Msg("Could not unseal refresh token for revocation")
		} else if err := s.auth.Revoke(ctx, refreshToken); err != nil {
			logging.Warn().Err(err).
				Str("channel_id", channelID).
				Msg("Token revocation at provider failed")
		}
	}

	if err := s.store.UpdateChannelToken(ctx, channelID, "", nil); err != nil {
		return fmt.Errorf("scrub refresh token: %w", err)
	}
	if err := s.store.SetChannelStatus(ctx, channelID, models.ChannelStatusRevoked); err != nil {
		return fmt.Errorf("mark channel revoked: %w", err)
	}
	if s.tokens != nil {
		s.tokens.Invalidate(channelID)
	}

	logging.Info().
		Str("channel_id", channelID).
		Str("youtube_channel_id", channel.YouTubeChannelID).
		Msg("Unlinked channel")
	return nil
}

// Get returns a single channel record.
func (s *Service) Get(ctx context.Context, channelID string) (*models.Channel, error) {
	return s.store.GetChannel(ctx, channelID)
}

// List returns all channels owned by a user.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]models.Channel, error) {
	return s.store.ListChannelsByUser(ctx, userID.String())
}

// SyncMetadata refreshes a channel's title, handle, thumbnail, and counters
// from the YouTube API. Requires a wired token source.
func (s *Service) SyncMetadata(ctx context.Context, channelID string) (*models.Channel, error) {
	if s.tokens == nil {
		return nil, errors.New("no token source configured")
	}

	channel, err := s.store.GetChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.AccessToken(ctx, channelID)
	if err != nil {
		return nil, err
	}
	res, err := s.api.GetMyChannel(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("fetch channel metadata: %w", err)
	}

	applyMetadata(channel, res)
	channel.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateChannel(ctx, channel); err != nil {
		return nil, fmt.Errorf("update channel: %w", err)
	}
	return channel, nil
}

// CleanupStates drops expired consent states. Called periodically by the
// supervisor alongside session cleanup.
func (s *Service) CleanupStates(ctx context.Context) (int, error) {
	return s.states.CleanupExpired(ctx)
}

// applyMetadata copies YouTube channel metadata onto the record and stamps
// the sync time.
func applyMetadata(channel *models.Channel, res *youtube.ChannelResource) {
	channel.Title = res.Snippet.Title
	if res.Snippet.CustomURL != "" {
		handle := res.Snippet.CustomURL
		channel.Handle = &handle
	}
	if res.Snippet.Thumbnails.Default.URL != "" {
		thumb := res.Snippet.Thumbnails.Default.URL
		channel.ThumbnailURL = &thumb
	}
	if res.Statistics != nil {
		subs := res.Statistics.Subscribers()
		videos := res.Statistics.Videos()
		channel.SubscriberCount = &subs
		channel.VideoCount = &videos
	}
	now := time.Now().UTC()
	channel.LastSyncedAt = &now
}
