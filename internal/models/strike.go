// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package models

import (
	"time"

	"github.com/google/uuid"
)

// Strike type constants.
const (
	// StrikeTypeCopyright is a copyright strike from a takedown request.
	StrikeTypeCopyright = "copyright"

	// StrikeTypeCommunity is a Community Guidelines strike.
	StrikeTypeCommunity = "community"

	// StrikeTypeTerms is a Terms of Service violation.
	StrikeTypeTerms = "terms"
)

// ValidStrikeTypes contains all valid strike types for validation.
var ValidStrikeTypes = []string{StrikeTypeCopyright, StrikeTypeCommunity, StrikeTypeTerms}

// IsValidStrikeType checks if a strike type value is valid.
func IsValidStrikeType(strikeType string) bool {
	for _, t := range ValidStrikeTypes {
		if t == strikeType {
			return true
		}
	}
	return false
}

// Strike status constants.
const (
	// StrikeStatusActive strikes count toward enforcement thresholds.
	StrikeStatusActive = "active"

	// StrikeStatusAppealed strikes are under appeal but still count until
	// resolved.
	StrikeStatusAppealed = "appealed"

	// StrikeStatusResolved strikes were overturned on appeal.
	StrikeStatusResolved = "resolved"

	// StrikeStatusExpired strikes aged out (community strikes expire after
	// 90 days on YouTube).
	StrikeStatusExpired = "expired"
)

// ValidStrikeStatuses contains all valid strike status values for validation.
var ValidStrikeStatuses = []string{
	StrikeStatusActive,
	StrikeStatusAppealed,
	StrikeStatusResolved,
	StrikeStatusExpired,
}

// IsValidStrikeStatus checks if a strike status value is valid.
func IsValidStrikeStatus(status string) bool {
	for _, s := range ValidStrikeStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// StrikeSuspensionThreshold is the active-strike count at which a channel
// is automatically suspended. Mirrors YouTube's three-strike policy.
const StrikeSuspensionThreshold = 3

// Strike represents a policy strike recorded against a channel.
//
// Strikes arrive from YouTube API sync or manual admin entry. Active and
// appealed strikes count toward StrikeSuspensionThreshold; reaching it
// suspends the channel and pauses its automation. Channel.StrikeCount
// caches the active count.
type Strike struct {
	ID        uuid.UUID `json:"id"`
	ChannelID uuid.UUID `json:"channel_id"`
	UserID    uuid.UUID `json:"user_id"`

	StrikeType string `json:"strike_type"`
	Status     string `json:"status"`

	Reason string `json:"reason"`

	// Source is "youtube" for API-synced strikes or "manual" for admin entry.
	Source string `json:"source"`

	// VideoID is the offending video when YouTube reports one.
	VideoID *string `json:"video_id,omitempty"`

	IssuedAt  time.Time  `json:"issued_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	AppealedAt *time.Time `json:"appealed_at,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CountsTowardSuspension reports whether the strike counts toward the
// suspension threshold. Appeals do not suspend the count until resolved.
func (s *Strike) CountsTowardSuspension() bool {
	return s.Status == StrikeStatusActive || s.Status == StrikeStatusAppealed
}

// IsExpired reports whether the strike's expiry has passed at the given instant.
func (s *Strike) IsExpired(now time.Time) bool {
	if s.ExpiresAt == nil {
		return false
	}
	return now.After(*s.ExpiresAt)
}

// NewStrike creates an active strike issued now.
func NewStrike(channelID, userID uuid.UUID, strikeType, reason, source string) *Strike {
	now := time.Now().UTC()
	return &Strike{
		ID:         uuid.New(),
		ChannelID:  channelID,
		UserID:     userID,
		StrikeType: strikeType,
		Status:     StrikeStatusActive,
		Reason:     reason,
		Source:     source,
		IssuedAt:   now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
