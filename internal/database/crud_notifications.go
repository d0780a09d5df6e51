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

// CreateNotification inserts a notification. Duplicate suppression via
// DedupeKey is handled by the notifications service, which checks
// HasPendingNotificationWithKey first.
func (db *DB) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if n.Status == "" {
		n.Status = models.NotificationStatusPending
	}
	if n.Severity == "" {
		n.Severity = models.SeverityInfo
	}

	query := `INSERT INTO notifications (
		id, user_id, type, severity, title, body, resource_type, resource_id,
		status, batch_id, dedupe_key, escalated, read_at, sent_at, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.conn.ExecContext(ctx, query,
		n.ID, n.UserID, n.Type, n.Severity, n.Title, n.Body,
		n.ResourceType, n.ResourceID, n.Status, n.BatchID, n.DedupeKey,
		n.Escalated, nullableUTC(n.ReadAt), nullableUTC(n.SentAt), n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// GetNotification retrieves a notification by ID.
func (db *DB) GetNotification(ctx context.Context, id string) (*models.Notification, error) {
	query := notificationSelectColumns + ` FROM notifications WHERE id = ?`
	row := db.conn.QueryRowContext(ctx, query, id)
	return scanNotification(row)
}

// ListNotificationsByUser retrieves a user's notifications, newest first.
// When unreadOnly is set, read notifications are excluded.
func (db *DB) ListNotificationsByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	query := notificationSelectColumns + ` FROM notifications WHERE user_id = ?`
	args := []any{userID}

	if unreadOnly {
		query += ` AND read_at IS NULL`
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	return collectNotifications(rows)
}

// CountUnreadNotifications returns the user's unread badge count.
func (db *DB) CountUnreadNotifications(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read_at IS NULL`,
		userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// HasPendingNotificationWithKey reports whether an unsent notification
// with the dedupe key already exists for the user.
func (db *DB) HasPendingNotificationWithKey(ctx context.Context, userID string, dedupeKey string) (bool, error) {
	var count int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications
		WHERE user_id = ? AND dedupe_key = ? AND status IN (?, ?)`,
		userID, dedupeKey,
		models.NotificationStatusPending, models.NotificationStatusBatched).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check dedupe key: %w", err)
	}
	return count > 0, nil
}

// ListPendingNotifications retrieves pending notifications older than the
// cutoff, grouped for the batcher by ordering on user and type.
func (db *DB) ListPendingNotifications(ctx context.Context, cutoff time.Time, limit int) ([]models.Notification, error) {
	query := notificationSelectColumns + ` FROM notifications
	WHERE status = ? AND created_at <= ?
	ORDER BY user_id, type, created_at ASC
	LIMIT ?`

	rows, err := db.conn.QueryContext(ctx, query,
		models.NotificationStatusPending, cutoff.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending notifications: %w", err)
	}
	defer rows.Close()

	return collectNotifications(rows)
}

// MarkNotificationRead stamps read_at, ignoring already-read rows.
func (db *DB) MarkNotificationRead(ctx context.Context, id string, userID string) error {
	query := `UPDATE notifications SET read_at = ?
	WHERE id = ? AND user_id = ? AND read_at IS NULL`

	result, err := db.conn.ExecContext(ctx, query, time.Now().UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Either missing or already read; only the former is an error.
		if _, err := db.GetNotification(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// MarkAllNotificationsRead stamps read_at on every unread notification
// for the user and returns how many were affected.
func (db *DB) MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error) {
	query := `UPDATE notifications SET read_at = ?
	WHERE user_id = ? AND read_at IS NULL`

	result, err := db.conn.ExecContext(ctx, query, time.Now().UTC(), userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return result.RowsAffected()
}

// AssignNotificationsToBatch moves pending notifications into a batch.
func (db *DB) AssignNotificationsToBatch(ctx context.Context, ids []string, batchID uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	whereClauses := []string{}
	args := []any{batchID, models.NotificationStatusBatched}
	appendInCondition("id", ids, &whereClauses, &args)

	query := `UPDATE notifications SET batch_id = ?, status = ?` + whereSQL(whereClauses)
	if _, err := db.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to assign notifications to batch: %w", err)
	}
	return nil
}

// MarkNotificationsSent transitions notifications to sent with a delivery
// timestamp. Used for both direct sends and batch flushes.
func (db *DB) MarkNotificationsSent(ctx context.Context, ids []string, sentAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	whereClauses := []string{}
	args := []any{models.NotificationStatusSent, sentAt.UTC()}
	appendInCondition("id", ids, &whereClauses, &args)

	query := `UPDATE notifications SET status = ?, sent_at = ?` + whereSQL(whereClauses)
	if _, err := db.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark notifications sent: %w", err)
	}
	return nil
}

// MarkNotificationsEscalated flags notifications that were escalated to
// the admin webhook so the escalator never re-fires for them.
func (db *DB) MarkNotificationsEscalated(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	whereClauses := []string{}
	args := []any{}
	appendInCondition("id", ids, &whereClauses, &args)

	query := `UPDATE notifications SET escalated = true` + whereSQL(whereClauses)
	if _, err := db.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark notifications escalated: %w", err)
	}
	return nil
}

// ListUnescalatedCritical retrieves critical notifications created inside
// the window that have not yet been escalated.
func (db *DB) ListUnescalatedCritical(ctx context.Context, since time.Time) ([]models.Notification, error) {
	query := notificationSelectColumns + ` FROM notifications
	WHERE severity = ? AND escalated = false AND created_at >= ?
	ORDER BY created_at ASC`

	rows, err := db.conn.QueryContext(ctx, query, models.SeverityCritical, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list critical notifications: %w", err)
	}
	defer rows.Close()

	return collectNotifications(rows)
}

// --- Batches ---

// CreateNotificationBatch inserts a batch window record.
func (db *DB) CreateNotificationBatch(ctx context.Context, batch *models.NotificationBatch) error {
	if batch.ID == uuid.Nil {
		batch.ID = uuid.New()
	}
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO notification_batches (
		id, user_id, type, window_start, window_end, count, escalated,
		sent_at, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.conn.ExecContext(ctx, query,
		batch.ID, batch.UserID, batch.Type,
		batch.WindowStart.UTC(), batch.WindowEnd.UTC(), batch.Count,
		batch.Escalated, nullableUTC(batch.SentAt), batch.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification batch: %w", err)
	}

	return nil
}

// MarkBatchSent stamps the batch's delivery timestamp.
func (db *DB) MarkBatchSent(ctx context.Context, id string, sentAt time.Time) error {
	query := `UPDATE notification_batches SET sent_at = ? WHERE id = ?`
	result, err := db.conn.ExecContext(ctx, query, sentAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark batch sent: %w", err)
	}
	return requireRowsAffected(result, ErrNotificationNotFound)
}

// --- Preferences ---

// GetNotificationPreference retrieves the user's preference row for a
// type, falling back to the "*" default row, then to nil when the user
// never configured anything.
func (db *DB) GetNotificationPreference(ctx context.Context, userID string, notificationType string) (*models.NotificationPreference, error) {
	query := `SELECT id, user_id, type, in_app, email, muted, updated_at
	FROM notification_preferences
	WHERE user_id = ? AND type IN (?, '*')
	ORDER BY CASE WHEN type = '*' THEN 1 ELSE 0 END
	LIMIT 1`

	row := db.conn.QueryRowContext(ctx, query, userID, notificationType)

	var pref models.NotificationPreference
	err := row.Scan(&pref.ID, &pref.UserID, &pref.Type, &pref.InApp, &pref.Email, &pref.Muted, &pref.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get notification preference: %w", err)
	}
	return &pref, nil
}

// ListNotificationPreferences retrieves all preference rows for a user.
func (db *DB) ListNotificationPreferences(ctx context.Context, userID string) ([]models.NotificationPreference, error) {
	query := `SELECT id, user_id, type, in_app, email, muted, updated_at
	FROM notification_preferences WHERE user_id = ? ORDER BY type`

	rows, err := db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notification preferences: %w", err)
	}
	defer rows.Close()

	prefs := make([]models.NotificationPreference, 0)
	for rows.Next() {
		var pref models.NotificationPreference
		if err := rows.Scan(&pref.ID, &pref.UserID, &pref.Type, &pref.InApp, &pref.Email, &pref.Muted, &pref.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification preference: %w", err)
		}
		prefs = append(prefs, pref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification preferences: %w", err)
	}

	return prefs, nil
}

// UpsertNotificationPreference creates or replaces the user's preference
// for a type.
func (db *DB) UpsertNotificationPreference(ctx context.Context, pref *models.NotificationPreference) error {
	pref.UpdatedAt = time.Now().UTC()

	// DuckDB upsert on the (user_id, type) unique constraint.
	query := `INSERT INTO notification_preferences (user_id, type, in_app, email, muted, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (user_id, type) DO UPDATE SET
		in_app = excluded.in_app,
		email = excluded.email,
		muted = excluded.muted,
		updated_at = excluded.updated_at`

	_, err := db.conn.ExecContext(ctx, query,
		pref.UserID, pref.Type, pref.InApp, pref.Email, pref.Muted, pref.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert notification preference: %w", err)
	}
	return nil
}

const notificationSelectColumns = `SELECT
	id, user_id, type, severity, title, body, resource_type, resource_id,
	status, batch_id, dedupe_key, escalated, read_at, sent_at, created_at`

func scanNotification(row *sql.Row) (*models.Notification, error) {
	var n models.Notification
	var resourceType, resourceID, dedupeKey sql.NullString
	var batchID uuid.NullUUID
	var readAt, sentAt sql.NullTime

	err := row.Scan(
		&n.ID, &n.UserID, &n.Type, &n.Severity, &n.Title, &n.Body,
		&resourceType, &resourceID, &n.Status, &batchID, &dedupeKey,
		&n.Escalated, &readAt, &sentAt, &n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to scan notification: %w", err)
	}

	applyNotificationNullables(&n, resourceType, resourceID, dedupeKey, batchID, readAt, sentAt)
	return &n, nil
}

func scanNotificationRows(rows *sql.Rows) (*models.Notification, error) {
	var n models.Notification
	var resourceType, resourceID, dedupeKey sql.NullString
	var batchID uuid.NullUUID
	var readAt, sentAt sql.NullTime

	err := rows.Scan(
		&n.ID, &n.UserID, &n.Type, &n.Severity, &n.Title, &n.Body,
		&resourceType, &resourceID, &n.Status, &batchID, &dedupeKey,
		&n.Escalated, &readAt, &sentAt, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	applyNotificationNullables(&n, resourceType, resourceID, dedupeKey, batchID, readAt, sentAt)
	return &n, nil
}

func applyNotificationNullables(n *models.Notification, resourceType, resourceID, dedupeKey sql.NullString, batchID uuid.NullUUID, readAt, sentAt sql.NullTime) {
	if resourceType.Valid {
		n.ResourceType = &resourceType.String
	}
	if resourceID.Valid {
		n.ResourceID = &resourceID.String
	}
	if dedupeKey.Valid {
		n.DedupeKey = &dedupeKey.String
	}
	if batchID.Valid {
		n.BatchID = &batchID.UUID
	}
	if readAt.Valid {
		n.ReadAt = &readAt.Time
	}
	if sentAt.Valid {
		n.SentAt = &sentAt.Time
	}
}

func collectNotifications(rows *sql.Rows) ([]models.Notification, error) {
	notifications := make([]models.Notification, 0)
	for rows.Next() {
		n, err := scanNotificationRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, *n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}

	return notifications, nil
}
