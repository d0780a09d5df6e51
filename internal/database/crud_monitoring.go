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

	"github.com/tubefleet/tubefleet/internal/models"
)

// InsertResourceUsage stores a usage sample. Uses RETURNING because
// DuckDB does not support LastInsertId with sequences.
func (db *DB) InsertResourceUsage(ctx context.Context, usage *models.ResourceUsage) error {
	if usage.CapturedAt.IsZero() {
		usage.CapturedAt = time.Now().UTC()
	}

	query := `INSERT INTO resource_usage (user_id, kind, used, usage_limit, captured_at)
	VALUES (?, ?, ?, ?, ?)
	RETURNING id`

	err := db.conn.QueryRowContext(ctx, query,
		usage.UserID, usage.Kind, usage.Used, usage.Limit, usage.CapturedAt,
	).Scan(&usage.ID)
	if err != nil {
		return fmt.Errorf("failed to insert resource usage: %w", err)
	}

	return nil
}

// ListLatestUsageByUser returns the most recent sample per resource kind.
func (db *DB) ListLatestUsageByUser(ctx context.Context, userID string) ([]models.ResourceUsage, error) {
	query := `SELECT r.id, r.user_id, r.kind, r.used, r.usage_limit, r.captured_at
	FROM resource_usage r
	JOIN (
		SELECT kind, MAX(captured_at) AS latest
		FROM resource_usage
		WHERE user_id = ?
		GROUP BY kind
	) m ON r.kind = m.kind AND r.captured_at = m.latest
	WHERE r.user_id = ?
	ORDER BY r.kind ASC`

	rows, err := db.conn.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list latest usage: %w", err)
	}
	defer rows.Close()

	samples := make([]models.ResourceUsage, 0)
	for rows.Next() {
		var usage models.ResourceUsage
		if err := rows.Scan(&usage.ID, &usage.UserID, &usage.Kind,
			&usage.Used, &usage.Limit, &usage.CapturedAt); err != nil {
			return nil, fmt.Errorf("failed to scan resource usage: %w", err)
		}
		samples = append(samples, usage)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating resource usage: %w", err)
	}

	return samples, nil
}

// PruneResourceUsage deletes samples captured before the cutoff and
// returns the number removed.
func (db *DB) PruneResourceUsage(ctx context.Context, before time.Time) (int64, error) {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM resource_usage WHERE captured_at < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune resource usage: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned rows: %w", err)
	}
	return removed, nil
}

// GetOpenQuotaAlert returns the uncleared alert for a user, resource
// kind, and level, or nil when no alert is open.
func (db *DB) GetOpenQuotaAlert(ctx context.Context, userID, kind, level string) (*models.QuotaAlert, error) {
	query := quotaAlertSelectColumns + ` FROM quota_alerts
	WHERE user_id = ? AND kind = ? AND level = ? AND cleared_at IS NULL
	ORDER BY fired_at DESC
	LIMIT 1`

	alert, err := scanQuotaAlert(db.conn.QueryRowContext(ctx, query, userID, kind, level))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return alert, nil
}

// ListOpenQuotaAlertsByUser returns all uncleared alerts for a user.
func (db *DB) ListOpenQuotaAlertsByUser(ctx context.Context, userID string) ([]models.QuotaAlert, error) {
	query := quotaAlertSelectColumns + ` FROM quota_alerts
	WHERE user_id = ? AND cleared_at IS NULL
	ORDER BY fired_at DESC`

	rows, err := db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list open quota alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]models.QuotaAlert, 0)
	for rows.Next() {
		var alert models.QuotaAlert
		var cleared, notified sql.NullTime
		if err := rows.Scan(&alert.ID, &alert.UserID, &alert.Kind, &alert.Level,
			&alert.PercentAtAlert, &alert.FiredAt, &cleared, &notified); err != nil {
			return nil, fmt.Errorf("failed to scan quota alert: %w", err)
		}
		if cleared.Valid {
			alert.ClearedAt = &cleared.Time
		}
		if notified.Valid {
			alert.NotifiedAt = &notified.Time
		}
		alerts = append(alerts, alert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quota alerts: %w", err)
	}

	return alerts, nil
}

// CreateQuotaAlert records a threshold crossing.
func (db *DB) CreateQuotaAlert(ctx context.Context, alert *models.QuotaAlert) error {
	if alert.FiredAt.IsZero() {
		alert.FiredAt = time.Now().UTC()
	}

	query := `INSERT INTO quota_alerts (user_id, kind, level, percent_at_alert, fired_at, cleared_at, notified_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	RETURNING id`

	err := db.conn.QueryRowContext(ctx, query,
		alert.UserID, alert.Kind, alert.Level, alert.PercentAtAlert,
		alert.FiredAt, nullableUTC(alert.ClearedAt), nullableUTC(alert.NotifiedAt),
	).Scan(&alert.ID)
	if err != nil {
		return fmt.Errorf("failed to create quota alert: %w", err)
	}

	return nil
}

// ClearQuotaAlert marks an alert resolved so the threshold can fire
// again on the next crossing.
func (db *DB) ClearQuotaAlert(ctx context.Context, id int64, clearedAt time.Time) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE quota_alerts SET cleared_at = ? WHERE id = ? AND cleared_at IS NULL`,
		clearedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to clear quota alert: %w", err)
	}
	return requireRowsAffected(result, ErrNotFound)
}

// MarkQuotaAlertNotified stamps the alert after its notification is
// enqueued, preventing duplicate notifications for the same crossing.
func (db *DB) MarkQuotaAlertNotified(ctx context.Context, id int64, notifiedAt time.Time) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE quota_alerts SET notified_at = ? WHERE id = ?`,
		notifiedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark quota alert notified: %w", err)
	}
	return requireRowsAffected(result, ErrNotFound)
}

const quotaAlertSelectColumns = `SELECT
	id, user_id, kind, level, percent_at_alert, fired_at, cleared_at, notified_at`

func scanQuotaAlert(row *sql.Row) (*models.QuotaAlert, error) {
	var alert models.QuotaAlert
	var cleared, notified sql.NullTime

	err := row.Scan(&alert.ID, &alert.UserID, &alert.Kind, &alert.Level,
		&alert.PercentAtAlert, &alert.FiredAt, &cleared, &notified)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to scan quota alert: %w", err)
	}

	if cleared.Valid {
		alert.ClearedAt = &cleared.Time
	}
	if notified.Valid {
		alert.NotifiedAt = &notified.Time
	}
	return &alert, nil
}
