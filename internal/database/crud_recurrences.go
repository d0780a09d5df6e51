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

// CreateRecurrence persists a recurrence pattern. The template event must
// exist before the pattern referencing it.
func (db *DB) CreateRecurrence(ctx context.Context, pattern *models.RecurrencePattern) error {
	if pattern.ID == uuid.Nil {
		pattern.ID = uuid.New()
	}
	if pattern.CreatedAt.IsZero() {
		pattern.CreatedAt = time.Now().UTC()
	}
	pattern.UpdatedAt = pattern.CreatedAt
	if pattern.Status == "" {
		pattern.Status = models.RecurrenceStatusActive
	}
	if pattern.Interval <= 0 {
		pattern.Interval = 1
	}
	if pattern.Timezone == "" {
		pattern.Timezone = "UTC"
	}

	daysJSON, err := encodeJSON(pattern.DaysOfWeek)
	if err != nil {
		return fmt.Errorf("failed to encode days of week: %w", err)
	}

	query := `INSERT INTO recurrence_patterns (
		id, channel_id, user_id, template_event_id, frequency,
		interval_count, days_of_week, day_of_month, timezone,
		start_date, end_date, occurrence_count, generated_count,
		status, last_materialized_at, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = db.conn.ExecContext(ctx, query,
		pattern.ID, pattern.ChannelID, pattern.UserID, pattern.TemplateEventID,
		pattern.Frequency, pattern.Interval, daysJSON, pattern.DayOfMonth,
		pattern.Timezone, pattern.StartDate.UTC(), nullableUTC(pattern.EndDate),
		pattern.OccurrenceCount, pattern.GeneratedCount, pattern.Status,
		nullableUTC(pattern.LastMaterializedAt), pattern.CreatedAt, pattern.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to create recurrence pattern: %w", err)
	}

	return nil
}

// GetRecurrence retrieves a recurrence pattern by ID.
func (db *DB) GetRecurrence(ctx context.Context, id string) (*models.RecurrencePattern, error) {
	query := recurrenceSelectColumns + ` FROM recurrence_patterns WHERE id = ?`
	row := db.conn.QueryRowContext(ctx, query, id)
	return scanRecurrence(row)
}

// ListRecurrencesByUser retrieves a user's recurrence patterns.
func (db *DB) ListRecurrencesByUser(ctx context.Context, userID string) ([]models.RecurrencePattern, error) {
	query := recurrenceSelectColumns + ` FROM recurrence_patterns
	WHERE user_id = ? ORDER BY created_at DESC`

	rows, err := db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurrence patterns: %w", err)
	}
	defer rows.Close()

	return collectRecurrences(rows)
}

// ListRecurrencesByChannel retrieves a channel's recurrence patterns.
func (db *DB) ListRecurrencesByChannel(ctx context.Context, channelID string) ([]models.RecurrencePattern, error) {
	query := recurrenceSelectColumns + ` FROM recurrence_patterns
	WHERE channel_id = ? ORDER BY created_at DESC`

	rows, err := db.conn.QueryContext(ctx, query, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurrence patterns: %w", err)
	}
	defer rows.Close()

	return collectRecurrences(rows)
}

// ListMaterializablePatterns retrieves active patterns that may still have
// occurrences to generate inside the horizon. Date-bound patterns whose
// end already passed the cursor are left for the materializer to complete.
func (db *DB) ListMaterializablePatterns(ctx context.Context, horizon time.Time) ([]models.RecurrencePattern, error) {
	query := recurrenceSelectColumns + ` FROM recurrence_patterns
	WHERE status = ?
	  AND start_date <= ?
	  AND (last_materialized_at IS NULL OR last_materialized_at < ?)
	ORDER BY COALESCE(last_materialized_at, start_date) ASC`

	horizonUTC := horizon.UTC()
	rows, err := db.conn.QueryContext(ctx, query, models.RecurrenceStatusActive, horizonUTC, horizonUTC)
	if err != nil {
		return nil, fmt.Errorf("failed to list materializable patterns: %w", err)
	}
	defer rows.Close()

	return collectRecurrences(rows)
}

// CountActiveRecurrences returns the number of active patterns, for the
// scheduler gauge.
func (db *DB) CountActiveRecurrences(ctx context.Context) (int64, error) {
	var count int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recurrence_patterns WHERE status = ?`,
		models.RecurrenceStatusActive).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active recurrences: %w", err)
	}
	return count, nil
}

// UpdateRecurrence persists rule changes on a pattern. Progress fields
// (generated_count, last_materialized_at) go through
// UpdateRecurrenceProgress so an editing user cannot rewind the cursor.
func (db *DB) UpdateRecurrence(ctx context.Context, pattern *models.RecurrencePattern) error {
	pattern.UpdatedAt = time.Now().UTC()

	daysJSON, err := encodeJSON(pattern.DaysOfWeek)
	if err != nil {
		return fmt.Errorf("failed to encode days of week: %w", err)
	}

	query := `UPDATE recurrence_patterns SET
		frequency = ?, interval_count = ?, days_of_week = ?, day_of_month = ?,
		timezone = ?, start_date = ?, end_date = ?, occurrence_count = ?,
		status = ?, updated_at = ?
	WHERE id = ?`

	result, err := db.conn.ExecContext(ctx, query,
		pattern.Frequency, pattern.Interval, daysJSON, pattern.DayOfMonth,
		pattern.Timezone, pattern.StartDate.UTC(), nullableUTC(pattern.EndDate),
		pattern.OccurrenceCount, pattern.Status, pattern.UpdatedAt, pattern.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update recurrence pattern: %w", err)
	}

	return requireRowsAffected(result, ErrRecurrenceNotFound)
}

// UpdateRecurrenceProgress advances the materialization cursor after a
// slot is processed.
func (db *DB) UpdateRecurrenceProgress(ctx context.Context, patternID string, generatedCount int, lastMaterializedAt time.Time) error {
	query := `UPDATE recurrence_patterns SET
		generated_count = ?, last_materialized_at = ?, updated_at = ?
	WHERE id = ?`

	result, err := db.conn.ExecContext(ctx, query,
		generatedCount, lastMaterializedAt.UTC(), time.Now().UTC(), patternID)
	if err != nil {
		return fmt.Errorf("failed to update recurrence progress: %w", err)
	}
	return requireRowsAffected(result, ErrRecurrenceNotFound)
}

// SetRecurrenceStatus transitions a pattern between active, paused,
// completed, and canceled.
func (db *DB) SetRecurrenceStatus(ctx context.Context, patternID, status string) error {
	query := `UPDATE recurrence_patterns SET status = ?, updated_at = ? WHERE id = ?`
	result, err := db.conn.ExecContext(ctx, query, status, time.Now().UTC(), patternID)
	if err != nil {
		return fmt.Errorf("failed to set recurrence status: %w", err)
	}
	return requireRowsAffected(result, ErrRecurrenceNotFound)
}

// DeleteRecurrence removes a pattern. Future occurrences it generated are
// canceled by the scheduling service before the row goes away.
func (db *DB) DeleteRecurrence(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM recurrence_patterns WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recurrence pattern: %w", err)
	}
	return requireRowsAffected(result, ErrRecurrenceNotFound)
}

const recurrenceSelectColumns = `SELECT
	id, channel_id, user_id, template_event_id, frequency,
	interval_count, days_of_week, day_of_month, timezone,
	start_date, end_date, occurrence_count, generated_count,
	status, last_materialized_at, created_at, updated_at`

func scanRecurrence(row *sql.Row) (*models.RecurrencePattern, error) {
	var pattern models.RecurrencePattern
	var daysOfWeek any
	var endDate, lastMaterializedAt sql.NullTime
	var occurrenceCount sql.NullInt32

	err := row.Scan(
		&pattern.ID, &pattern.ChannelID, &pattern.UserID, &pattern.TemplateEventID,
		&pattern.Frequency, &pattern.Interval, &daysOfWeek, &pattern.DayOfMonth,
		&pattern.Timezone, &pattern.StartDate, &endDate, &occurrenceCount,
		&pattern.GeneratedCount, &pattern.Status, &lastMaterializedAt,
		&pattern.CreatedAt, &pattern.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecurrenceNotFound
		}
		return nil, fmt.Errorf("failed to scan recurrence pattern: %w", err)
	}

	if err := applyRecurrenceNullables(&pattern, daysOfWeek, endDate, occurrenceCount, lastMaterializedAt); err != nil {
		return nil, err
	}
	return &pattern, nil
}

func scanRecurrenceRows(rows *sql.Rows) (*models.RecurrencePattern, error) {
	var pattern models.RecurrencePattern
	var daysOfWeek any
	var endDate, lastMaterializedAt sql.NullTime
	var occurrenceCount sql.NullInt32

	err := rows.Scan(
		&pattern.ID, &pattern.ChannelID, &pattern.UserID, &pattern.TemplateEventID,
		&pattern.Frequency, &pattern.Interval, &daysOfWeek, &pattern.DayOfMonth,
		&pattern.Timezone, &pattern.StartDate, &endDate, &occurrenceCount,
		&pattern.GeneratedCount, &pattern.Status, &lastMaterializedAt,
		&pattern.CreatedAt, &pattern.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := applyRecurrenceNullables(&pattern, daysOfWeek, endDate, occurrenceCount, lastMaterializedAt); err != nil {
		return nil, err
	}
	return &pattern, nil
}

func applyRecurrenceNullables(pattern *models.RecurrencePattern, daysOfWeek any, endDate sql.NullTime, occurrenceCount sql.NullInt32, lastMaterializedAt sql.NullTime) error {
	if err := decodeJSON(daysOfWeek, &pattern.DaysOfWeek); err != nil {
		return fmt.Errorf("failed to decode days of week: %w", err)
	}
	if endDate.Valid {
		pattern.EndDate = &endDate.Time
	}
	if occurrenceCount.Valid {
		count := int(occurrenceCount.Int32)
		pattern.OccurrenceCount = &count
	}
	if lastMaterializedAt.Valid {
		pattern.LastMaterializedAt = &lastMaterializedAt.Time
	}
	return nil
}

func collectRecurrences(rows *sql.Rows) ([]models.RecurrencePattern, error) {
	patterns := make([]models.RecurrencePattern, 0)
	for rows.Next() {
		pattern, err := scanRecurrenceRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recurrence pattern: %w", err)
		}
		patterns = append(patterns, *pattern)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recurrence patterns: %w", err)
	}

	return patterns, nil
}
