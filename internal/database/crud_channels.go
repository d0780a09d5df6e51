// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tubefleet/tubefleet/internal/models"
)

// CreateChannel links a YouTube channel to a user. The refresh token must
// already be encrypted before calling this method.
func (db *DB) CreateChannel(ctx context.Context, channel *models.Channel) error {
	if channel.ID == uuid.Nil {
		channel.ID = uuid.New()
	}
	now := time.Now().UTC()
	if channel.CreatedAt.IsZero() {
		channel.CreatedAt = now
	}
	channel.UpdatedAt = channel.CreatedAt
	if channel.LinkedAt.IsZero() {
		channel.LinkedAt = now
	}
	if channel.Status == "" {
		channel.Status = models.ChannelStatusLinked
	}

	query := `INSERT INTO channels (
		id, user_id, youtube_channel_id, title, handle, thumbnail_url,
		refresh_token_encrypted, token_scope, status, strike_count,
		subscriber_count, video_count, linked_at, last_synced_at,
		created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.conn.ExecContext(ctx, query,
		channel.ID, channel.UserID, channel.YouTubeChannelID, channel.Title,
		channel.Handle, channel.ThumbnailURL, channel.RefreshTokenEncrypted,
		channel.TokenScope, channel.Status, channel.StrikeCount,
		channel.SubscriberCount, channel.VideoCount, channel.LinkedAt,
		channel.LastSyncedAt, channel.CreatedAt, channel.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrChannelLinked
		}
		return fmt.Errorf("failed to create channel: %w", err)
	}

	return nil
}

// GetChannel retrieves a channel by ID.
func (db *DB) GetChannel(ctx context.Context, id string) (*models.Channel, error) {
	query := channelSelectColumns + ` FROM channels WHERE id = ?`
	row := db.conn.QueryRowContext(ctx, query, id)
	return scanChannel(row)
}

// GetChannelByYouTubeID retrieves a channel by its YouTube channel ID,
// used to reject double-linking during the OIDC callback.
func (db *DB) GetChannelByYouTubeID(ctx context.Context, youtubeChannelID string) (*models.Channel, error) {
	query := channelSelectColumns + ` FROM channels WHERE youtube_channel_id = ?`
	row := db.conn.QueryRowContext(ctx, query, youtubeChannelID)
	return scanChannel(row)
}

// ListChannelsByUser retrieves all channels linked by a user.
func (db *DB) ListChannelsByUser(ctx context.Context, userID string) ([]models.Channel, error) {
	query := channelSelectColumns + ` FROM channels WHERE user_id = ? ORDER BY linked_at ASC`

	rows, err := db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	defer rows.Close()

	return collectChannels(rows)
}

// ListChannelsByStatus retrieves channels in a given lifecycle state.
// The comment sync worker uses this to pick up linked channels.
func (db *DB) ListChannelsByStatus(ctx context.Context, status string) ([]models.Channel, error) {
	query := channelSelectColumns + ` FROM channels WHERE status = ? ORDER BY last_synced_at ASC NULLS FIRST`

	rows, err := db.conn.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels by status: %w", err)
	}
	defer rows.Close()

	return collectChannels(rows)
}

// CountChannelsByUser returns the number of channels a user has linked,
// compared against the plan's MaxChannels limit.
func (db *DB) CountChannelsByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM channels WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count channels: %w", err)
	}
	return count, nil
}

// UpdateChannel updates channel metadata from a sync pass.
func (db *DB) UpdateChannel(ctx context.Context, channel *models.Channel) error {
	channel.UpdatedAt = time.Now().UTC()

	query := `UPDATE channels SET
		title = ?, handle = ?, thumbnail_url = ?, status = ?,
		strike_count = ?, subscriber_count = ?, video_count = ?,
		last_synced_at = ?, updated_at = ?
	WHERE id = ?`

	result, err := db.conn.ExecContext(ctx, query,
		channel.Title, channel.Handle, channel.ThumbnailURL, channel.Status,
		channel.StrikeCount, channel.SubscriberCount, channel.VideoCount,
		channel.LastSyncedAt, channel.UpdatedAt, channel.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update channel: %w", err)
	}

	return requireRowsAffected(result, ErrChannelNotFound)
}

// UpdateChannelToken replaces the encrypted refresh token and granted
// scopes after a re-link or token rotation.
func (db *DB) UpdateChannelToken(ctx context.Context, id string, tokenEncrypted string, scope *string) error {
	query := `UPDATE channels SET
		refresh_token_encrypted = ?, token_scope = ?, status = ?, updated_at = ?
	WHERE id = ?`

	result, err := db.conn.ExecContext(ctx, query,
		tokenEncrypted, scope, models.ChannelStatusLinked, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update channel token: %w", err)
	}
	return requireRowsAffected(result, ErrChannelNotFound)
}

// SetChannelStatus transitions a channel between linked, revoked, and
// suspended.
func (db *DB) SetChannelStatus(ctx context.Context, id string, status string) error {
	query := `UPDATE channels SET status = ?, updated_at = ? WHERE id = ?`
	result, err := db.conn.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set channel status: %w", err)
	}
	return requireRowsAffected(result, ErrChannelNotFound)
}

// SetChannelStrikeCount updates the cached active-strike count.
func (db *DB) SetChannelStrikeCount(ctx context.Context, id string, count int) error {
	query := `UPDATE channels SET strike_count = ?, updated_at = ? WHERE id = ?`
	result, err := db.conn.ExecContext(ctx, query, count, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set channel strike count: %w", err)
	}
	return requireRowsAffected(result, ErrChannelNotFound)
}

// DeleteChannel removes an unlinked channel. The channels service scrubs
// the stored token and cancels pending events before calling this.
func (db *DB) DeleteChannel(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM channels WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete channel: %w", err)
	}
	return requireRowsAffected(result, ErrChannelNotFound)
}

const channelSelectColumns = `SELECT
	id, user_id, youtube_channel_id, title, handle, thumbnail_url,
	refresh_token_encrypted, token_scope, status, strike_count,
	subscriber_count, video_count, linked_at, last_synced_at,
	created_at, updated_at`

func scanChannel(row *sql.Row) (*models.Channel, error) {
	var channel models.Channel
	var handle, thumbnailURL, tokenScope sql.NullString
	var subscriberCount, videoCount sql.NullInt64
	var lastSyncedAt sql.NullTime

	err := row.Scan(
		&channel.ID, &channel.UserID, &channel.YouTubeChannelID, &channel.Title,
		&handle, &thumbnailURL, &channel.RefreshTokenEncrypted, &tokenScope,
		&channel.Status, &channel.StrikeCount, &subscriberCount, &videoCount,
		&channel.LinkedAt, &lastSyncedAt, &channel.CreatedAt, &channel.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChannelNotFound
		}
		return nil, fmt.Errorf("failed to scan channel: %w", err)
	}

	applyChannelNullables(&channel, handle, thumbnailURL, tokenScope, subscriberCount, videoCount, lastSyncedAt)
	return &channel, nil
}

func scanChannelRows(rows *sql.Rows) (*models.Channel, error) {
	var channel models.Channel
	var handle, thumbnailURL, tokenScope sql.NullString
	var subscriberCount, videoCount sql.NullInt64
	var lastSyncedAt sql.NullTime

	err := rows.Scan(
		&channel.ID, &channel.UserID, &channel.YouTubeChannelID, &channel.Title,
		&handle, &thumbnailURL, &channel.RefreshTokenEncrypted, &tokenScope,
		&channel.Status, &channel.StrikeCount, &subscriberCount, &videoCount,
		&channel.LinkedAt, &lastSyncedAt, &channel.CreatedAt, &channel.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	applyChannelNullables(&channel, handle, thumbnailURL, tokenScope, subscriberCount, videoCount, lastSyncedAt)
	return &channel, nil
}

func applyChannelNullables(channel *models.Channel, handle, thumbnailURL, tokenScope sql.NullString, subscriberCount, videoCount sql.NullInt64, lastSyncedAt sql.NullTime) {
	if handle.Valid {
		channel.Handle = &handle.String
	}
	if thumbnailURL.Valid {
		channel.ThumbnailURL = &thumbnailURL.String
	}
	if tokenScope.Valid {
		channel.TokenScope = &tokenScope.String
	}
	if subscriberCount.Valid {
		channel.SubscriberCount = &subscriberCount.Int64
	}
	if videoCount.Valid {
		channel.VideoCount = &videoCount.Int64
	}
	if lastSyncedAt.Valid {
		channel.LastSyncedAt = &lastSyncedAt.Time
	}
}

func collectChannels(rows *sql.Rows) ([]models.Channel, error) {
	channels := make([]models.Channel, 0)
	for rows.Next() {
		channel, err := scanChannelRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}
		channels = append(channels, *channel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating channels: %w", err)
	}

	return channels, nil
}
