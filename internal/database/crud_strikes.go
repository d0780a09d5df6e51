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

// CreateStrike records a strike against a channel.
func (db *DB) CreateStrike(ctx context.Context, strike *models.Strike) error {
	if strike.ID == uuid.Nil {
		strike.ID = uuid.New()
	}
	if strike.CreatedAt.IsZero() {
		strike.CreatedAt = time.Now().UTC()
	}
	strike.UpdatedAt = strike.CreatedAt
	if strike.Status == "" {
		strike.Status = models.StrikeStatusActive
	}
	if strike.IssuedAt.IsZero() {
		strike.IssuedAt = strike.CreatedAt
	}

	query := `INSERT INTO strikes (
		id, channel_id, user_id, strike_type, status, reason, source,
		video_id, issued_at, expires_at, appealed_at, resolved_at,
		created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.conn.ExecContext(ctx, query,
		strike.ID, strike.ChannelID, strike.UserID, strike.StrikeType,
		strike.Status, strike.Reason, strike.Source, strike.VideoID,
		strike.IssuedAt.UTC(), nullableUTC(strike.ExpiresAt),
		nullableUTC(strike.AppealedAt), nullableUTC(strike.ResolvedAt),
		strike.CreatedAt, strike.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create strike: %w", err)
	}

	return nil
}

// GetStrike retrieves a strike by ID.
func (db *DB) GetStrike(ctx context.Context, id string) (*models.Strike, error) {
	query := strikeSelectColumns + ` FROM strikes WHERE id = ?`
	row := db.conn.QueryRowContext(ctx, query, id)
	return scanStrike(row)
}

// ListStrikesByChannel retrieves a channel's strikes, newest first.
func (db *DB) ListStrikesByChannel(ctx context.Context, channelID string) ([]models.Strike, error) {
	query := strikeSelectColumns + ` FROM strikes
	WHERE channel_id = ? ORDER BY issued_at DESC`

	rows, err := db.conn.QueryContext(ctx, query, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list strikes: %w", err)
	}
	defer rows.Close()

	return collectStrikes(rows)
}

// CountStrikesTowardSuspension returns the channel's active plus appealed
// strike count, compared against the suspension threshold.
func (db *DB) CountStrikesTowardSuspension(ctx context.Context, channelID string) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM strikes WHERE channel_id = ? AND status IN (?, ?)`,
		channelID, models.StrikeStatusActive, models.StrikeStatusAppealed).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count strikes: %w", err)
	}
	return count, nil
}

// SetStrikeStatus transitions a strike, stamping the matching timestamp
// for appealed and resolved.
func (db *DB) SetStrikeStatus(ctx context.Context, id string, status string) error {
	now := time.Now().UTC()

	var query string
	var args []any

	switch status {
	case models.StrikeStatusAppealed:
		query = `UPDATE strikes SET status = ?, appealed_at = ?, updated_at = ? WHERE id = ?`
		args = []any{status, now, now, id}
	case models.StrikeStatusResolved:
		query = `UPDATE strikes SET status = ?, resolved_at = ?, updated_at = ? WHERE id = ?`
		args = []any{status, now, now, id}
	default:
		query = `UPDATE strikes SET status = ?, updated_at = ? WHERE id = ?`
		args = []any{status, now, id}
	}

	result, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to set strike status: %w", err)
	}
	return requireRowsAffected(result, ErrStrikeNotFound)
}

// ExpireStrikes transitions active strikes past their expiry and returns
// the channels whose counts changed, so the strikes service can
// recompute cached counts and lift suspensions.
func (db *DB) ExpireStrikes(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	nowUTC := now.UTC()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT channel_id FROM strikes
		WHERE status = ? AND expires_at IS NOT NULL AND expires_at <= ?`,
		models.StrikeStatusActive, nowUTC)
	if err != nil {
		return nil, fmt.Errorf("failed to find expiring strikes: %w", err)
	}

	channelIDs := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			closeQuietly(rows)
			return nil, fmt.Errorf("failed to scan channel id: %w", err)
		}
		channelIDs = append(channelIDs, id)
	}
	if err := rows.Err(); err != nil {
		closeQuietly(rows)
		return nil, fmt.Errorf("error iterating expiring strikes: %w", err)
	}
	closeQuietly(rows)

	if len(channelIDs) == 0 {
		return channelIDs, nil
	}

	_, err = db.conn.ExecContext(ctx,
		`UPDATE strikes SET status = ?, updated_at = ?
		WHERE status = ? AND expires_at IS NOT NULL AND expires_at <= ?`,
		models.StrikeStatusExpired, nowUTC, models.StrikeStatusActive, nowUTC)
	if err != nil {
		return nil, fmt.Errorf("failed to expire strikes: %w", err)
	}

	return channelIDs, nil
}

const strikeSelectColumns = `SELECT
	id, channel_id, user_id, strike_type, status, reason, source,
	video_id, issued_at, expires_at, appealed_at, resolved_at,
	created_at, updated_at`

func scanStrike(row *sql.Row) (*models.Strike, error) {
	var strike models.Strike
	var videoID sql.NullString
	var expiresAt, appealedAt, resolvedAt sql.NullTime

	err := row.Scan(
		&strike.ID, &strike.ChannelID, &strike.UserID, &strike.StrikeType,
		&strike.Status, &strike.Reason, &strike.Source, &videoID,
		&strike.IssuedAt, &expiresAt, &appealedAt, &resolvedAt,
		&strike.CreatedAt, &strike.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStrikeNotFound
		}
		return nil, fmt.Errorf("failed to scan strike: %w", err)
	}

	applyStrikeNullables(&strike, videoID, expiresAt, appealedAt, resolvedAt)
	return &strike, nil
}

func scanStrikeRows(rows *sql.Rows) (*models.Strike, error) {
	var strike models.Strike
	var videoID sql.NullString
	var expiresAt, appealedAt, resolvedAt sql.NullTime

	err := rows.Scan(
		&strike.ID, &strike.ChannelID, &strike.UserID, &strike.StrikeType,
		&strike.Status, &strike.Reason, &strike.Source, &videoID,
		&strike.IssuedAt, &expiresAt, &appealedAt, &resolvedAt,
		&strike.CreatedAt, &strike.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	applyStrikeNullables(&strike, videoID, expiresAt, appealedAt, resolvedAt)
	return &strike, nil
}

func applyStrikeNullables(strike *models.Strike, videoID sql.NullString, expiresAt, appealedAt, resolvedAt sql.NullTime) {
	if videoID.Valid {
		strike.VideoID = &videoID.String
	}
	if expiresAt.Valid {
		strike.ExpiresAt = &expiresAt.Time
	}
	if appealedAt.Valid {
		strike.AppealedAt = &appealedAt.Time
	}
	if resolvedAt.Valid {
		strike.ResolvedAt = &resolvedAt.Time
	}
}

func collectStrikes(rows *sql.Rows) ([]models.Strike, error) {
	strikes := make([]models.Strike, 0)
	for rows.Next() {
		strike, err := scanStrikeRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan strike: %w", err)
		}
		strikes = append(strikes, *strike)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating strikes: %w", err)
	}

	return strikes, nil
}
