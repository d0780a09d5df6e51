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

// CreateUser creates a new user account. The password must already be
// hashed before calling this method.
func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.UpdatedAt = user.CreatedAt
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}
	if user.Role == "" {
		user.Role = models.RoleViewer
	}

	query := `INSERT INTO users (
		id, username, email, display_name, password_hash, role, status,
		last_login_at, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.conn.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.DisplayName, user.PasswordHash,
		user.Role, user.Status, user.LastLoginAt, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUser retrieves a user by ID.
func (db *DB) GetUser(ctx context.Context, id string) (*models.User, error) {
	query := userSelectColumns + ` FROM users WHERE id = ?`
	row := db.conn.QueryRowContext(ctx, query, id)
	return scanUser(row)
}

// GetUserByUsername retrieves a user by username for login flows.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := userSelectColumns + ` FROM users WHERE username = ?`
	row := db.conn.QueryRowContext(ctx, query, username)
	return scanUser(row)
}

// ListUsers retrieves all users ordered by creation time, newest first.
// Used by the admin user management endpoints.
func (db *DB) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	query := userSelectColumns + ` FROM users ORDER BY created_at DESC LIMIT ? OFFSET ?`

	rows, err := db.conn.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		user, err := scanUserRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// CountUsers returns the total user count for admin pagination.
func (db *DB) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// UpdateUser updates mutable profile fields on an existing user.
func (db *DB) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()

	query := `UPDATE users SET
		email = ?, display_name = ?, role = ?, status = ?, updated_at = ?
	WHERE id = ?`

	result, err := db.conn.ExecContext(ctx, query,
		user.Email, user.DisplayName, user.Role, user.Status, user.UpdatedAt, user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return requireRowsAffected(result, ErrUserNotFound)
}

// UpdateUserPassword replaces the stored password hash.
func (db *DB) UpdateUserPassword(ctx context.Context, id string, passwordHash string) error {
	query := `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`
	result, err := db.conn.ExecContext(ctx, query, passwordHash, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update user password: %w", err)
	}
	return requireRowsAffected(result, ErrUserNotFound)
}

// SetUserStatus transitions a user between active, suspended, and deleted.
func (db *DB) SetUserStatus(ctx context.Context, id string, status string) error {
	query := `UPDATE users SET status = ?, updated_at = ? WHERE id = ?`
	result, err := db.conn.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set user status: %w", err)
	}
	return requireRowsAffected(result, ErrUserNotFound)
}

// TouchUserLogin records a successful login timestamp.
func (db *DB) TouchUserLogin(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE users SET last_login_at = ? WHERE id = ?`
	result, err := db.conn.ExecContext(ctx, query, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	return requireRowsAffected(result, ErrUserNotFound)
}

// DeleteUser removes a user row. Dependent rows (channels, events,
// subscriptions) are the caller's responsibility; the admin service
// deletes them first so a failed delete never strands half a tree.
func (db *DB) DeleteUser(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireRowsAffected(result, ErrUserNotFound)
}

const userSelectColumns = `SELECT
	id, username, email, display_name, password_hash, role, status,
	last_login_at, created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var displayName sql.NullString
	var lastLoginAt sql.NullTime

	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &displayName, &user.PasswordHash,
		&user.Role, &user.Status, &lastLoginAt, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	if displayName.Valid {
		user.DisplayName = &displayName.String
	}
	if lastLoginAt.Valid {
		user.LastLoginAt = &lastLoginAt.Time
	}

	return &user, nil
}

func scanUserRows(rows *sql.Rows) (*models.User, error) {
	var user models.User
	var displayName sql.NullString
	var lastLoginAt sql.NullTime

	err := rows.Scan(
		&user.ID, &user.Username, &user.Email, &displayName, &user.PasswordHash,
		&user.Role, &user.Status, &lastLoginAt, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if displayName.Valid {
		user.DisplayName = &displayName.String
	}
	if lastLoginAt.Valid {
		user.LastLoginAt = &lastLoginAt.Time
	}

	return &user, nil
}

// requireRowsAffected maps a zero-row UPDATE or DELETE to the entity's
// not-found sentinel.
func requireRowsAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
