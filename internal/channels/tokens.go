// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package channels

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tubefleet/tubefleet/internal/logging"
	"github.com/tubefleet/tubefleet/internal/metrics"
	"github.com/tubefleet/tubefleet/internal/models"
	"github.com/tubefleet/tubefleet/internal/youtube"
)

// ErrChannelNotLinked is returned when a token is requested for a channel
// whose grant was revoked or that is suspended.
var ErrChannelNotLinked = errors.New("channel is not linked")

// expiryLeeway is subtracted from a cached token's expiry so a token that
// is about to lapse mid-request is refreshed instead of served.
const expiryLeeway = time.Minute

// TokenStore is the persistence surface the token source needs.
type TokenStore interface {
	GetChannel(ctx context.Context, id string) (*models.Channel, error)
	UpdateChannelToken(ctx context.Context, id string, tokenEncrypted string, scope *string) error
	SetChannelStatus(ctx context.Context, id string, status string) error
}

// TokenSource mints YouTube API access tokens for linked channels. It
// implements youtube.TokenProvider: the stored refresh token is unsealed,
// exchanged at Google, and the resulting access token cached in memory
// until shortly before expiry.
//
// A refresh rejected with invalid_grant means the owner revoked access in
// their Google account; the channel is marked revoked so automation stops
// retrying a dead grant.
type TokenSource struct {
	store  TokenStore
	auth   Authorizer
	cipher Cipher

	mu    sync.Mutex
	cache map[string]cachedToken
}

type cachedToken struct {
	accessToken string
	expiresAt   time.Time
}

// NewTokenSource creates a token source with an empty cache.
func NewTokenSource(store TokenStore, auth Authorizer, cipher Cipher) *TokenSource {
	return &TokenSource{
		store:  store,
		auth:   auth,
		cipher: cipher,
		cache:  make(map[string]cachedToken),
	}
}

// AccessToken returns a valid access token for the channel, refreshing
// through the provider when the cached one is missing or near expiry.
func (ts *TokenSource) AccessToken(ctx context.Context, channelID string) (string, error) {
	ts.mu.Lock()
	cached, ok := ts.cache[channelID]
	ts.mu.Unlock()
	if ok && time.Now().Before(cached.expiresAt.Add(-expiryLeeway)) {
		return cached.accessToken, nil
	}

	channel, err := ts.store.GetChannel(ctx, channelID)
	if err != nil {
		return "", err
	}
	if !channel.IsLinked() {
		return "", fmt.Errorf("%w: channel %s is %s", ErrChannelNotLinked, channelID, channel.Status)
	}
	if channel.RefreshTokenEncrypted == "" {
		return "", fmt.Errorf("%w: channel %s has no stored grant", ErrChannelNotLinked, channelID)
	}

	refreshToken, err := ts.cipher.Decrypt(channel.RefreshTokenEncrypted)
	if err != nil {
		return "", fmt.Errorf("unseal refresh token: %w", err)
	}

	grant, err := ts.auth.Refresh(ctx, refreshToken)
	if err != nil {
		metrics.OAuthTokenRefreshes.WithLabelValues("failed").Inc()
		if isInvalidGrant(err) {
			ts.markRevoked(ctx, channelID)
			return "", fmt.Errorf("%w: grant revoked by owner", ErrChannelNotLinked)
		}
		return "", fmt.Errorf("refresh access token: %w", err)
	}
	metrics.OAuthTokenRefreshes.WithLabelValues("refreshed").Inc()

	// Google rotates refresh tokens occasionally; persist the replacement
	// or the next refresh fails.
	if grant.RefreshToken != "" && grant.RefreshToken != refreshToken {
		ts.rotateRefreshToken(ctx, channel, grant)
	}

	expiresAt := grant.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(30 * time.Minute)
	}
	ts.mu.Lock()
	ts.cache[channelID] = cachedToken{accessToken: grant.AccessToken, expiresAt: expiresAt}
	ts.mu.Unlock()

	return grant.AccessToken, nil
}

// Invalidate drops the cached access token for a channel. Called on unlink
// and relink so a stale token is never served against a new grant.
func (ts *TokenSource) Invalidate(channelID string) {
	ts.mu.Lock()
	delete(ts.cache, channelID)
	ts.mu.Unlock()
}

func (ts *TokenSource) rotateRefreshToken(ctx context.Context, channel *models.Channel, grant *TokenGrant) {
	sealed, err := ts.cipher.Encrypt(grant.RefreshToken)
	if err != nil {
		logging.Warn().Err(err).
			Str("channel_id", channel.ID.String()).
			Msg("Could not seal rotated refresh token")
		return
	}
	scope := channel.TokenScope
	if grant.Scope != "" {
		scope = &grant.Scope
	}
	if err := ts.store.UpdateChannelToken(ctx, channel.ID.String(), sealed, scope); err != nil {
		logging.Warn().Err(err).
			Str("channel_id", channel.ID.String()).
			Msg("Could not persist rotated refresh token")
	}
}

func (ts *TokenSource) markRevoked(ctx context.Context, channelID string) {
	if err := ts.store.SetChannelStatus(ctx, channelID, models.ChannelStatusRevoked); err != nil {
		logging.Warn().Err(err).
			Str("channel_id", channelID).
			Msg("Could not mark channel revoked after failed refresh")
		return
	}
	ts.Invalidate(channelID)
	logging.Warn().
		Str("channel_id", channelID).
		Msg("Channel grant revoked by owner, automation paused")
}

// isInvalidGrant detects the OAuth invalid_grant error, which is terminal:
// the stored refresh token will never work again.
func isInvalidGrant(err error) bool {
	return err != nil && strings.Contains(err.Error(), "invalid_grant")
}

var _ youtube.TokenProvider = (*TokenSource)(nil)
