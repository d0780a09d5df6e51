// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package models

import (
	"time"

	"github.com/google/uuid"
)

// User status constants.
const (
	// UserStatusActive is the normal state for a usable account.
	UserStatusActive = "active"

	// UserStatusSuspended blocks login and all automation for the account.
	// Scheduled events stay in the database but are not materialized or
	// pushed to YouTube while suspended.
	UserStatusSuspended = "suspended"

	// UserStatusDeleted marks a soft-deleted account pending purge.
	UserStatusDeleted = "deleted"
)

// ValidUserStatuses contains all valid user status values for validation.
var ValidUserStatuses = []string{UserStatusActive, UserStatusSuspended, UserStatusDeleted}

// IsValidUserStatus checks if a user status value is valid.
func IsValidUserStatus(status string) bool {
	for _, s := range ValidUserStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// User represents an operator account.
//
// A user owns linked YouTube channels, scheduled live events, moderation rules,
// chatbot triggers, and a billing subscription. Authorization derives from the
// Role field, carried into the JWT role claim at login.
//
// Key Fields:
//   - ID: Unique UUID for the account
//   - Username: Login name, unique across the system
//   - PasswordHash: bcrypt hash (never serialized to JSON)
//   - Role: Authorization role (viewer, editor, admin)
//   - Status: Account lifecycle state (active, suspended, deleted)
type User struct {
	ID uuid.UUID `json:"id"`

	Username    string  `json:"username"`
	Email       string  `json:"email"`
	DisplayName *string `json:"display_name,omitempty"`

	// PasswordHash is the bcrypt hash of the user's password.
	// Excluded from JSON serialization.
	PasswordHash string `json:"-"`

	// Role names the casbin role used for authorization decisions.
	Role string `json:"role"`

	Status string `json:"status"`

	// LastLoginAt tracks the most recent successful authentication.
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsActive reports whether the account can log in and run automation.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// NewUser creates a new User with default values.
// The caller is responsible for setting PasswordHash before persisting.
func NewUser(username, email string) *User {
	now := time.Now().UTC()
	return &User{
		ID:        uuid.New(),
		Username:  username,
		Email:     email,
		Role:      RoleViewer,
		Status:    UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
