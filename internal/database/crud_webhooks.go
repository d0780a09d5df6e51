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

// CreateWebhookEndpoint registers an outbound webhook endpoint. The
// signing secret is generated by the webhooks service before persistence.
func (db *DB) CreateWebhookEndpoint(ctx context.Context, endpoint *models.WebhookEndpoint) error {
	if endpoint.ID == uuid.Nil {
		endpoint.ID = uuid.New()
	}
	if endpoint.CreatedAt.IsZero() {
		endpoint.CreatedAt = time.Now().UTC()
	}
	endpoint.UpdatedAt = endpoint.CreatedAt

	eventTypesJSON, err := encodeJSON(endpoint.EventTypes)
	if err != nil {
		return fmt.Errorf("failed to encode event types: %w", err)
	}

	query := `INSERT INTO webhook_endpoints (
		id, user_id, url, secret, event_types, enabled,
		consecutive_failures, disabled_at, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = db.conn.ExecContext(ctx, query,
		endpoint.ID, endpoint.UserID, endpoint.URL, endpoint.Secret,
		eventTypesJSON, endpoint.Enabled, endpoint.ConsecutiveFailures,
		nullableUTC(endpoint.DisabledAt), endpoint.CreatedAt, endpoint.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create webhook endpoint: %w", err)
	}

	return nil
}

// GetWebhookEndpoint retrieves an endpoint by ID.
func (db *DB) GetWebhookEndpoint(ctx context.Context, id string) (*models.WebhookEndpoint, error) {
	query := endpointSelectColumns + ` FROM webhook_endpoints WHERE id = ?`
	row := db.conn.QueryRowContext(ctx, query, id)
	return scanEndpoint(row)
}

// ListWebhookEndpointsByUser retrieves a user's endpoints.
func (db *DB) ListWebhookEndpointsByUser(ctx context.Context, userID string) ([]models.WebhookEndpoint, error) {
	query := endpointSelectColumns + ` FROM webhook_endpoints
	WHERE user_id = ? ORDER BY created_at ASC`

	rows, err := db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list webhook endpoints: %w", err)
	}
	defer rows.Close()

	return collectEndpoints(rows)
}

// ListEnabledEndpointsByUser retrieves a user's enabled endpoints. Event
// type filtering happens in Go via SubscribesTo since types live in a
// JSON column.
func (db *DB) ListEnabledEndpointsByUser(ctx context.Context, userID string) ([]models.WebhookEndpoint, error) {
	query := endpointSelectColumns + ` FROM webhook_endpoints
	WHERE user_id = ? AND enabled = true ORDER BY created_at ASC`

	rows, err := db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enabled endpoints: %w", err)
	}
	defer rows.Close()

	return collectEndpoints(rows)
}

// CountWebhookEndpointsByUser returns the user's endpoint count, compared
// against the plan's MaxWebhookEndpoints limit.
func (db *DB) CountWebhookEndpointsByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM webhook_endpoints WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count webhook endpoints: %w", err)
	}
	return count, nil
}

// CountEnabledWebhookEndpoints returns the total enabled endpoint count
// for the dispatcher gauge.
func (db *DB) CountEnabledWebhookEndpoints(ctx context.Context) (int64, error) {
	var count int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM webhook_endpoints WHERE enabled = true`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count enabled endpoints: %w", err)
	}
	return count, nil
}

// UpdateWebhookEndpoint persists endpoint changes.
func (db *DB) UpdateWebhookEndpoint(ctx context.Context, endpoint *models.WebhookEndpoint) error {
	endpoint.UpdatedAt = time.Now().UTC()

	eventTypesJSON, err := encodeJSON(endpoint.EventTypes)
	if err != nil {
		return fmt.Errorf("failed to encode event types: %w", err)
	}

	query := `UPDATE webhook_endpoints SET
		url = ?, secret = ?, event_types = ?, enabled = ?,
		consecutive_failures = ?, disabled_at = ?, updated_at = ?
	WHERE id = ?`

	result, err := db.conn.ExecContext(ctx, query,
		endpoint.URL, endpoint.Secret, eventTypesJSON, endpoint.Enabled,
		endpoint.ConsecutiveFailures, nullableUTC(endpoint.DisabledAt),
		endpoint.UpdatedAt, endpoint.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update webhook endpoint: %w", err)
	}

	return requireRowsAffected(result, ErrEndpointNotFound)
}

// RecordEndpointSuccess resets the consecutive failure counter.
func (db *DB) RecordEndpointSuccess(ctx context.Context, id string) error {
	query := `UPDATE webhook_endpoints SET
		consecutive_failures = 0, updated_at = ?
	WHERE id = ?`

	result, err := db.conn.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to record endpoint success: %w", err)
	}
	return requireRowsAffected(result, ErrEndpointNotFound)
}

// RecordEndpointFailure bumps the consecutive failure counter and returns
// the new count so the dispatcher can decide whether to auto-disable.
func (db *DB) RecordEndpointFailure(ctx context.Context, id string) (int, error) {
	query := `UPDATE webhook_endpoints SET
		consecutive_failures = consecutive_failures + 1, updated_at = ?
	WHERE id = ?`

	result, err := db.conn.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return 0, fmt.Errorf("failed to record endpoint failure: %w", err)
	}
	if err := requireRowsAffected(result, ErrEndpointNotFound); err != nil {
		return 0, err
	}

	var count int
	err = db.conn.QueryRowContext(ctx,
		`SELECT consecutive_failures FROM webhook_endpoints WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to read failure count: %w", err)
	}
	return count, nil
}

// DisableWebhookEndpoint turns an endpoint off, recording when and
// leaving the failure counter intact for inspection.
func (db *DB) DisableWebhookEndpoint(ctx context.Context, id string) error {
	query := `UPDATE webhook_endpoints SET
		enabled = false, disabled_at = ?, updated_at = ?
	WHERE id = ?`

	now := time.Now().UTC()
	result, err := db.conn.ExecContext(ctx, query, now, now, id)
	if err != nil {
		return fmt.Errorf("failed to disable webhook endpoint: %w", err)
	}
	return requireRowsAffected(result, ErrEndpointNotFound)
}

// DeleteWebhookEndpoint removes an endpoint and its delivery history.
func (db *DB) DeleteWebhookEndpoint(ctx context.Context, id string) error {
	if _, err := db.conn.ExecContext(ctx,
		`DELETE FROM webhook_deliveries WHERE endpoint_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete endpoint deliveries: %w", err)
	}

	result, err := db.conn.ExecContext(ctx, `DELETE FROM webhook_endpoints WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete webhook endpoint: %w", err)
	}
	return requireRowsAffected(result, ErrEndpointNotFound)
}

const endpointSelectColumns = `SELECT
	id, user_id, url, secret, event_types, enabled,
	consecutive_failures, disabled_at, created_at, updated_at`

func scanEndpoint(row *sql.Row) (*models.WebhookEndpoint, error) {
	var endpoint models.WebhookEndpoint
	var eventTypes any
	var disabledAt sql.NullTime

	err := row.Scan(
		&endpoint.ID, &endpoint.UserID, &endpoint.URL, &endpoint.Secret,
		&eventTypes, &endpoint.Enabled, &endpoint.ConsecutiveFailures,
		&disabledAt, &endpoint.CreatedAt, &endpoint.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEndpointNotFound
		}
		return nil, fmt.Errorf("failed to scan webhook endpoint: %w", err)
	}

	if err := decodeJSON(eventTypes, &endpoint.EventTypes); err != nil {
		return nil, fmt.Errorf("failed to decode event types: %w", err)
	}
	if disabledAt.Valid {
		endpoint.DisabledAt = &disabledAt.Time
	}
	return &endpoint, nil
}

func scanEndpointRows(rows *sql.Rows) (*models.WebhookEndpoint, error) {
	var endpoint models.WebhookEndpoint
	var eventTypes any
	var disabledAt sql.NullTime

	err := rows.Scan(
		&endpoint.ID, &endpoint.UserID, &endpoint.URL, &endpoint.Secret,
		&eventTypes, &endpoint.Enabled, &endpoint.ConsecutiveFailures,
		&disabledAt, &endpoint.CreatedAt, &endpoint.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := decodeJSON(eventTypes, &endpoint.EventTypes); err != nil {
		return nil, fmt.Errorf("failed to decode event types: %w", err)
	}
	if disabledAt.Valid {
		endpoint.DisabledAt = &disabledAt.Time
	}
	return &endpoint, nil
}

func collectEndpoints(rows *sql.Rows) ([]models.WebhookEndpoint, error) {
	endpoints := make([]models.WebhookEndpoint, 0)
	for rows.Next() {
		endpoint, err := scanEndpointRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan webhook endpoint: %w", err)
		}
		endpoints = append(endpoints, *endpoint)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating webhook endpoints: %w", err)
	}

	return endpoints, nil
}

// --- Deliveries ---

// CreateWebhookDelivery enqueues a delivery attempt.
func (db *DB) CreateWebhookDelivery(ctx context.Context, delivery *models.WebhookDelivery) error {
	if delivery.ID == uuid.Nil {
		delivery.ID = uuid.New()
	}
	if delivery.CreatedAt.IsZero() {
		delivery.CreatedAt = time.Now().UTC()
	}
	delivery.UpdatedAt = delivery.CreatedAt
	if delivery.Status == "" {
		delivery.Status = models.WebhookStatusPending
	}

	query := `INSERT INTO webhook_deliveries (
		id, endpoint_id, event_type, payload, status, attempt_count,
		next_attempt_at, last_attempt_at, last_status_code, last_error,
		delivered_at, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.conn.ExecContext(ctx, query,
		delivery.ID, delivery.EndpointID, delivery.EventType, delivery.Payload,
		delivery.Status, delivery.AttemptCount, nullableUTC(delivery.NextAttemptAt),
		nullableUTC(delivery.LastAttemptAt), delivery.LastStatusCode,
		delivery.LastError, nullableUTC(delivery.DeliveredAt),
		delivery.CreatedAt, delivery.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create webhook delivery: %w", err)
	}

	return nil
}

// GetWebhookDelivery retrieves a delivery by ID.
func (db *DB) GetWebhookDelivery(ctx context.Context, id string) (*models.WebhookDelivery, error) {
	query := deliverySelectColumns + ` FROM webhook_deliveries WHERE id = ?`
	row := db.conn.QueryRowContext(ctx, query, id)
	return scanDelivery(row)
}

// ListDueDeliveries retrieves non-terminal deliveries ready for an
// attempt, oldest first.
func (db *DB) ListDueDeliveries(ctx context.Context, now time.Time, limit int) ([]models.WebhookDelivery, error) {
	query := deliverySelectColumns + ` FROM webhook_deliveries
	WHERE status IN (?, ?)
	  AND (next_attempt_at IS NULL OR next_attempt_at <= ?)
	ORDER BY created_at ASC
	LIMIT ?`

	rows, err := db.conn.QueryContext(ctx, query,
		models.WebhookStatusPending, models.WebhookStatusRetrying, now.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due deliveries: %w", err)
	}
	defer rows.Close()

	return collectDeliveries(rows)
}

// ListDeliveriesByEndpoint retrieves an endpoint's delivery history,
// newest first.
func (db *DB) ListDeliveriesByEndpoint(ctx context.Context, endpointID string, limit, offset int) ([]models.WebhookDelivery, error) {
	query := deliverySelectColumns + ` FROM webhook_deliveries
	WHERE endpoint_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`

	rows, err := db.conn.QueryContext(ctx, query, endpointID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}
	defer rows.Close()

	return collectDeliveries(rows)
}

// UpdateWebhookDelivery persists the outcome of an attempt.
func (db *DB) UpdateWebhookDelivery(ctx context.Context, delivery *models.WebhookDelivery) error {
	delivery.UpdatedAt = time.Now().UTC()

	query := `UPDATE webhook_deliveries SET
		status = ?, attempt_count = ?, next_attempt_at = ?, last_attempt_at = ?,
		last_status_code = ?, last_error = ?, delivered_at = ?, updated_at = ?
	WHERE id = ?`

	result, err := db.conn.ExecContext(ctx, query,
		delivery.Status, delivery.AttemptCount, nullableUTC(delivery.NextAttemptAt),
		nullableUTC(delivery.LastAttemptAt), delivery.LastStatusCode,
		delivery.LastError, nullableUTC(delivery.DeliveredAt),
		delivery.UpdatedAt, delivery.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update webhook delivery: %w", err)
	}

	return requireRowsAffected(result, ErrDeliveryNotFound)
}

const deliverySelectColumns = `SELECT
	id, endpoint_id, event_type, payload, status, attempt_count,
	next_attempt_at, last_attempt_at, last_status_code, last_error,
	delivered_at, created_at, updated_at`

func scanDelivery(row *sql.Row) (*models.WebhookDelivery, error) {
	var delivery models.WebhookDelivery
	var fields deliveryNullables

	err := row.Scan(
		&delivery.ID, &delivery.EndpointID, &delivery.EventType, &delivery.Payload,
		&delivery.Status, &delivery.AttemptCount, &fields.nextAttemptAt,
		&fields.lastAttemptAt, &fields.lastStatusCode, &fields.lastError,
		&fields.deliveredAt, &delivery.CreatedAt, &delivery.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeliveryNotFound
		}
		return nil, fmt.Errorf("failed to scan webhook delivery: %w", err)
	}

	fields.apply(&delivery)
	return &delivery, nil
}

func scanDeliveryRows(rows *sql.Rows) (*models.WebhookDelivery, error) {
	var delivery models.WebhookDelivery
	var fields deliveryNullables

	err := rows.Scan(
		&delivery.ID, &delivery.EndpointID, &delivery.EventType, &delivery.Payload,
		&delivery.Status, &delivery.AttemptCount, &fields.nextAttemptAt,
		&fields.lastAttemptAt, &fields.lastStatusCode, &fields.lastError,
		&fields.deliveredAt, &delivery.CreatedAt, &delivery.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	fields.apply(&delivery)
	return &delivery, nil
}

type deliveryNullables struct {
	nextAttemptAt  sql.NullTime
	lastAttemptAt  sql.NullTime
	lastStatusCode sql.NullInt32
	lastError      sql.NullString
	deliveredAt    sql.NullTime
}

func (f *deliveryNullables) apply(delivery *models.WebhookDelivery) {
	if f.nextAttemptAt.Valid {
		delivery.NextAttemptAt = &f.nextAttemptAt.Time
	}
	if f.lastAttemptAt.Valid {
		delivery.LastAttemptAt = &f.lastAttemptAt.Time
	}
	if f.lastStatusCode.Valid {
		code := int(f.lastStatusCode.Int32)
		delivery.LastStatusCode = &code
	}
	if f.lastError.Valid {
		delivery.LastError = &f.lastError.String
	}
	if f.deliveredAt.Valid {
		delivery.DeliveredAt = &f.deliveredAt.Time
	}
}

func collectDeliveries(rows *sql.Rows) ([]models.WebhookDelivery, error) {
	deliveries := make([]models.WebhookDelivery, 0)
	for rows.Next() {
		delivery, err := scanDeliveryRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan webhook delivery: %w", err)
		}
		deliveries = append(deliveries, *delivery)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating webhook deliveries: %w", err)
	}

	return deliveries, nil
}
