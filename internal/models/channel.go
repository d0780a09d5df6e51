// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package models

import (
	"time"

	"github.com/google/uuid"
)

// Channel status constants.
const (
	// ChannelStatusLinked means the OAuth grant is valid and automation runs.
	ChannelStatusLinked = "linked"

	// ChannelStatusRevoked means the Google OAuth grant was revoked or the
	// refresh token stopped working. Automation pauses until relinked.
	ChannelStatusRevoked = "revoked"

	// ChannelStatusSuspended means the channel was suspended by an admin or
	// by strike enforcement. Automation pauses but the link is kept.
	ChannelStatusSuspended = "suspended"
)

// ValidChannelStatuses contains all valid channel status values for validation.
var ValidChannelStatuses = []string{ChannelStatusLinked, ChannelStatusRevoked, ChannelStatusSuspended}

// IsValidChannelStatus checks if a channel status value is valid.
func IsValidChannelStatus(status string) bool {
	for _, s := range ValidChannelStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Channel represents a linked YouTube channel.
//
// A channel is the unit of scheduling: live events belong to a channel, and
// the conflict checker rejects overlapping broadcasts on the same channel.
// Channels are linked through the Google OAuth consent flow; the refresh
// token is encrypted at rest (AES-GCM, key derived from JWT_SECRET) and
// never serialized to JSON.
//
// Key Fields:
//   - ID: Internal UUID (primary key, stable across relinks)
//   - YouTubeChannelID: YouTube's channel identifier (UC...)
//   - RefreshTokenEncrypted: Encrypted OAuth refresh token (json:"-")
//   - Status: Link lifecycle state (linked, revoked, suspended)
//   - StrikeCount: Cached count of active strikes for quick enforcement checks
type Channel struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`

	YouTubeChannelID string  `json:"youtube_channel_id"`
	Title            string  `json:"title"`
	Handle           *string `json:"handle,omitempty"`
	ThumbnailURL     *string `json:"thumbnail_url,omitempty"`

	// RefreshTokenEncrypted holds the AES-GCM encrypted Google OAuth refresh
	// token. Excluded from JSON serialization.
	RefreshTokenEncrypted string `json:"-"`

	// TokenScope is the granted OAuth scope set (space-separated).
	TokenScope *string `json:"token_scope,omitempty"`

	Status string `json:"status"`

	// StrikeCount caches the number of active strikes on this channel.
	// The authoritative record is the strikes table.
	StrikeCount int `json:"strike_count"`

	// Channel statistics from the last metadata sync.
	SubscriberCount *int64 `json:"subscriber_count,omitempty"`
	VideoCount      *int64 `json:"video_count,omitempty"`

	LinkedAt     time.Time  `json:"linked_at"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsLinked reports whether automation may run against this channel.
func (c *Channel) IsLinked() bool {
	return c.Status == ChannelStatusLinked
}

// NewChannel creates a new Channel in the linked state.
// The caller is responsible for setting RefreshTokenEncrypted before persisting.
func NewChannel(userID uuid.UUID, youtubeChannelID, title string) *Channel {
	now := time.Now().UTC()
	return &Channel{
		ID:               uuid.New(),
		UserID:           userID,
		YouTubeChannelID: youtubeChannelID,
		Title:            title,
		Status:           ChannelStatusLinked,
		LinkedAt:         now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
