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

// CreateEvent persists a live event. The stream key must already be
// encrypted before calling this method; plaintext keys never reach disk.
func (db *DB) CreateEvent(ctx context.Context, event *models.LiveEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	event.UpdatedAt = event.CreatedAt
	if event.Status == "" {
		event.Status = models.EventStatusScheduled
	}
	if event.Visibility == "" {
		event.Visibility = models.VisibilityPrivate
	}

	query := `INSERT INTO live_events (
		id, channel_id, user_id, title, description, start_time, end_time,
		status, visibility, broadcast_id, stream_id, ingestion_url,
		stream_key_encrypted, recurrence_id, occurrence_index,
		failure_reason, retry_count, enable_dvr, enable_auto_start,
		enable_auto_stop, category_id, tags, actual_start_time,
		actual_end_time, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.conn.ExecContext(ctx, query,
		event.ID, event.ChannelID, event.UserID, event.Title, event.Description,
		event.StartTime.UTC(), nullableUTC(event.EndTime), event.Status, event.Visibility,
		event.BroadcastID, event.StreamID, event.IngestionURL,
		event.StreamKeyEncrypted, event.RecurrenceID, event.OccurrenceIndex,
		event.FailureReason, event.RetryCount, event.EnableDVR, event.EnableAutoStart,
		event.EnableAutoStop, event.CategoryID, event.Tags,
		nullableUTC(event.ActualStartTime), nullableUTC(event.ActualEndTime),
		event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to create event: %w", err)
	}

	return nil
}

// GetEvent retrieves a live event by ID.
func (db *DB) GetEvent(ctx context.Context, id string) (*models.LiveEvent, error) {
	query := eventSelectColumns + ` FROM live_events WHERE id = ?`
	row := db.conn.QueryRowContext(ctx, query, id)
	return scanEvent(row)
}

// ListEvents retrieves events matching the filter, ordered by the given
// sort column.
func (db *DB) ListEvents(ctx context.Context, filter EventFilter, sortBy string, descending bool) ([]models.LiveEvent, error) {
	whereClauses, args := buildEventFilterConditions(filter)

	query := eventSelectColumns + ` FROM live_events` + whereSQL(whereClauses)
	query += eventOrderClause(sortBy, descending)
	query += limitOffsetSQL(filter.Limit, filter.Offset, &args)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// CountEvents returns the number of events matching the filter, for
// pagination metadata.
func (db *DB) CountEvents(ctx context.Context, filter EventFilter) (int64, error) {
	whereClauses, args := buildEventFilterConditions(filter)
	query := `SELECT COUNT(*) FROM live_events` + whereSQL(whereClauses)

	var count int64
	if err := db.conn.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

// ListEventsOverlapping retrieves a channel's events whose occupied slot
// intersects [start, end). Slots are half-open, so an event ending exactly
// at start does not overlap. Open-ended events occupy the default duration.
func (db *DB) ListEventsOverlapping(ctx context.Context, channelID string, start, end time.Time) ([]models.LiveEvent, error) {
	query := eventSelectColumns + ` FROM live_events
	WHERE channel_id = ?
	  AND start_time < ?
	  AND COALESCE(end_time, start_time + INTERVAL 2 HOUR) > ?
	ORDER BY start_time ASC`

	rows, err := db.conn.QueryContext(ctx, query, channelID, end.UTC(), start.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list overlapping events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// ListUpcomingEvents retrieves ready or scheduled events starting within
// the window, ordered soonest first. The dashboard and the go-live
// transition watcher both use this.
func (db *DB) ListUpcomingEvents(ctx context.Context, until time.Time, limit int) ([]models.LiveEvent, error) {
	query := eventSelectColumns + ` FROM live_events
	WHERE status IN (?, ?)
	  AND start_time <= ?
	ORDER BY start_time ASC
	LIMIT ?`

	rows, err := db.conn.QueryContext(ctx, query,
		models.EventStatusScheduled, models.EventStatusReady, until.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// CountScheduledEventsByUser returns the number of pending events a user
// has, compared against the plan's MaxScheduledEvents limit. Terminal
// events no longer count against the quota.
func (db *DB) CountScheduledEventsByUser(ctx context.Context, userID string) (int64, error) {
	query := `SELECT COUNT(*) FROM live_events
	WHERE user_id = ? AND status IN (?, ?)`

	var count int64
	err := db.conn.QueryRowContext(ctx, query,
		userID, models.EventStatusScheduled, models.EventStatusReady).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count scheduled events: %w", err)
	}
	return count, nil
}

// CountLiveEventsByUser returns the number of broadcasts currently on air,
// compared against the plan's MaxConcurrentStreams limit.
func (db *DB) CountLiveEventsByUser(ctx context.Context, userID string) (int64, error) {
	query := `SELECT COUNT(*) FROM live_events WHERE user_id = ? AND status = ?`

	var count int64
	err := db.conn.QueryRowContext(ctx, query, userID, models.EventStatusLive).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count live events: %w", err)
	}
	return count, nil
}

// UpdateEvent persists all mutable fields of an event.
func (db *DB) UpdateEvent(ctx context.Context, event *models.LiveEvent) error {
	event.UpdatedAt = time.Now().UTC()

	query := `UPDATE live_events SET
		title = ?, description = ?, start_time = ?, end_time = ?,
		status = ?, visibility = ?, broadcast_id = ?, stream_id = ?,
		ingestion_url = ?, stream_key_encrypted = ?, failure_reason = ?,
		retry_count = ?, enable_dvr = ?, enable_auto_start = ?,
		enable_auto_stop = ?, category_id = ?, tags = ?,
		actual_start_time = ?, actual_end_time = ?, updated_at = ?
	WHERE id = ?`

	result, err := db.conn.ExecContext(ctx, query,
		event.Title, event.Description, event.StartTime.UTC(), nullableUTC(event.EndTime),
		event.Status, event.Visibility, event.BroadcastID, event.StreamID,
		event.IngestionURL, event.StreamKeyEncrypted, event.FailureReason,
		event.RetryCount, event.EnableDVR, event.EnableAutoStart,
		event.EnableAutoStop, event.CategoryID, event.Tags,
		nullableUTC(event.ActualStartTime), nullableUTC(event.ActualEndTime),
		event.UpdatedAt, event.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	return requireRowsAffected(result, ErrEventNotFound)
}

// SetEventStatus transitions an event's lifecycle state without touching
// other fields. Actual start/end timestamps are stamped on the live and
// complete transitions.
func (db *DB) SetEventStatus(ctx context.Context, id string, status string) error {
	now := time.Now().UTC()

	var query string
	var args []any

	switch status {
	case models.EventStatusLive:
		query = `UPDATE live_events SET status = ?, actual_start_time = ?, updated_at = ? WHERE id = ?`
		args = []any{status, now, now, id}
	case models.EventStatusComplete:
		query = `UPDATE live_events SET status = ?, actual_end_time = ?, updated_at = ? WHERE id = ?`
		args = []any{status, now, now, id}
	default:
		query = `UPDATE live_events SET status = ?, updated_at = ? WHERE id = ?`
		args = []any{status, now, id}
	}

	result, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to set event status: %w", err)
	}
	return requireRowsAffected(result, ErrEventNotFound)
}

// DeleteEvent removes an event row. Canceling is preferred for events that
// reached YouTube; delete is for drafts and failed locals.
func (db *DB) DeleteEvent(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM live_events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return requireRowsAffected(result, ErrEventNotFound)
}

const eventSelectColumns = `SELECT
	id, channel_id, user_id, title, description, start_time, end_time,
	status, visibility, broadcast_id, stream_id, ingestion_url,
	stream_key_encrypted, recurrence_id, occurrence_index,
	failure_reason, retry_count, enable_dvr, enable_auto_start,
	enable_auto_stop, category_id, tags, actual_start_time,
	actual_end_time, created_at, updated_at`

func scanEvent(row *sql.Row) (*models.LiveEvent, error) {
	var event models.LiveEvent
	var fields eventNullables

	err := row.Scan(
		&event.ID, &event.ChannelID, &event.UserID, &event.Title, &fields.description,
		&event.StartTime, &fields.endTime, &event.Status, &event.Visibility,
		&fields.broadcastID, &fields.streamID, &fields.ingestionURL,
		&fields.streamKeyEncrypted, &fields.recurrenceID, &fields.occurrenceIndex,
		&fields.failureReason, &event.RetryCount, &event.EnableDVR, &event.EnableAutoStart,
		&event.EnableAutoStop, &fields.categoryID, &fields.tags,
		&fields.actualStartTime, &fields.actualEndTime,
		&event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}

	fields.apply(&event)
	return &event, nil
}

func scanEventRows(rows *sql.Rows) (*models.LiveEvent, error) {
	var event models.LiveEvent
	var fields eventNullables

	err := rows.Scan(
		&event.ID, &event.ChannelID, &event.UserID, &event.Title, &fields.description,
		&event.StartTime, &fields.endTime, &event.Status, &event.Visibility,
		&fields.broadcastID, &fields.streamID, &fields.ingestionURL,
		&fields.streamKeyEncrypted, &fields.recurrenceID, &fields.occurrenceIndex,
		&fields.failureReason, &event.RetryCount, &event.EnableDVR, &event.EnableAutoStart,
		&event.EnableAutoStop, &fields.categoryID, &fields.tags,
		&fields.actualStartTime, &fields.actualEndTime,
		&event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	fields.apply(&event)
	return &event, nil
}

// eventNullables collects the nullable columns of a live_events row so the
// two scan paths share one conversion.
type eventNullables struct {
	description        sql.NullString
	endTime            sql.NullTime
	broadcastID        sql.NullString
	streamID           sql.NullString
	ingestionURL       sql.NullString
	streamKeyEncrypted sql.NullString
	recurrenceID       uuid.NullUUID
	occurrenceIndex    sql.NullInt32
	failureReason      sql.NullString
	categoryID         sql.NullString
	tags               sql.NullString
	actualStartTime    sql.NullTime
	actualEndTime      sql.NullTime
}

func (f *eventNullables) apply(event *models.LiveEvent) {
	if f.description.Valid {
		event.Description = &f.description.String
	}
	if f.endTime.Valid {
		event.EndTime = &f.endTime.Time
	}
	if f.broadcastID.Valid {
		event.BroadcastID = &f.broadcastID.String
	}
	if f.streamID.Valid {
		event.StreamID = &f.streamID.String
	}
	if f.ingestionURL.Valid {
		event.IngestionURL = &f.ingestionURL.String
	}
	if f.streamKeyEncrypted.Valid {
		event.StreamKeyEncrypted = &f.streamKeyEncrypted.String
	}
	if f.recurrenceID.Valid {
		event.RecurrenceID = &f.recurrenceID.UUID
	}
	if f.occurrenceIndex.Valid {
		index := int(f.occurrenceIndex.Int32)
		event.OccurrenceIndex = &index
	}
	if f.failureReason.Valid {
		event.FailureReason = &f.failureReason.String
	}
	if f.categoryID.Valid {
		event.CategoryID = &f.categoryID.String
	}
	if f.tags.Valid {
		event.Tags = &f.tags.String
	}
	if f.actualStartTime.Valid {
		event.ActualStartTime = &f.actualStartTime.Time
	}
	if f.actualEndTime.Valid {
		event.ActualEndTime = &f.actualEndTime.Time
	}
}

func collectEvents(rows *sql.Rows) ([]models.LiveEvent, error) {
	events := make([]models.LiveEvent, 0)
	for rows.Next() {
		event, err := scanEventRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

// nullableUTC normalizes an optional timestamp to UTC for storage.
func nullableUTC(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
