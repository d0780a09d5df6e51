// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package models

import (
	"time"

	"github.com/google/uuid"
)

// Moderation rule type constants.
const (
	// RuleTypeKeyword matches literal substrings (case-insensitive,
	// multi-pattern via Aho-Corasick).
	RuleTypeKeyword = "keyword"

	// RuleTypeRegex matches Go RE2 regular expressions.
	RuleTypeRegex = "regex"
)

// ValidRuleTypes contains all valid moderation rule types for validation.
var ValidRuleTypes = []string{RuleTypeKeyword, RuleTypeRegex}

// IsValidRuleType checks if a rule type value is valid.
func IsValidRuleType(ruleType string) bool {
	for _, t := range ValidRuleTypes {
		if t == ruleType {
			return true
		}
	}
	return false
}

// Moderation action constants, ordered by escalating severity.
const (
	// ModerationActionFlag records a violation without touching the comment.
	ModerationActionFlag = "flag"

	// ModerationActionHold sends the comment to held-for-review on YouTube.
	ModerationActionHold = "hold"

	// ModerationActionDelete removes the comment.
	ModerationActionDelete = "delete"

	// ModerationActionBan removes the comment and hides the author from the
	// channel.
	ModerationActionBan = "ban"
)

// ValidModerationActions contains all valid moderation actions for validation.
var ValidModerationActions = []string{
	ModerationActionFlag,
	ModerationActionHold,
	ModerationActionDelete,
	ModerationActionBan,
}

// IsValidModerationAction checks if a moderation action value is valid.
func IsValidModerationAction(action string) bool {
	for _, a := range ValidModerationActions {
		if a == action {
			return true
		}
	}
	return false
}

// ModerationRule represents a comment-scanning rule.
//
// Rules are either keyword rules (literal substrings, compiled together into
// one Aho-Corasick automaton per channel) or regex rules (compiled RE2,
// evaluated per rule). A nil ChannelID applies the rule to every channel
// the owner has linked.
//
// When several rules match one comment, the most severe action wins
// (flag < hold < delete < ban) and one violation row is recorded per
// matching rule.
type ModerationRule struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`

	// ChannelID scopes the rule to one channel; nil means all channels.
	ChannelID *uuid.UUID `json:"channel_id,omitempty"`

	Name     string `json:"name"`
	RuleType string `json:"rule_type"`
	Pattern  string `json:"pattern"`
	Action   string `json:"action"`
	Severity string `json:"severity"`

	Enabled  bool  `json:"enabled"`
	HitCount int64 `json:"hit_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppliesTo reports whether the rule covers the given channel.
func (r *ModerationRule) AppliesTo(channelID uuid.UUID) bool {
	if r.ChannelID == nil {
		return true
	}
	return *r.ChannelID == channelID
}

// NewModerationRule creates an enabled rule with the given pattern.
func NewModerationRule(userID uuid.UUID, name, ruleType, pattern, action string) *ModerationRule {
	now := time.Now().UTC()
	return &ModerationRule{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		RuleType:  ruleType,
		Pattern:   pattern,
		Action:    action,
		Severity:  SeverityWarning,
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Violation review status constants.
const (
	ReviewStatusPending    = "pending"
	ReviewStatusUpheld     = "upheld"
	ReviewStatusOverturned = "overturned"
)

// ValidReviewStatuses contains all valid review status values for validation.
var ValidReviewStatuses = []string{ReviewStatusPending, ReviewStatusUpheld, ReviewStatusOverturned}

// IsValidReviewStatus checks if a review status value is valid.
func IsValidReviewStatus(status string) bool {
	for _, s := range ValidReviewStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ModerationViolation records a rule match against a comment.
//
// Violations are append-only evidence: they survive rule edits and comment
// deletion, and feed the review queue where moderators uphold or overturn
// the automated action.
type ModerationViolation struct {
	ID        uuid.UUID `json:"id"`
	RuleID    uuid.UUID `json:"rule_id"`
	ChannelID uuid.UUID `json:"channel_id"`

	// CommentID is the YouTube comment identifier.
	CommentID string `json:"comment_id"`

	// MatchedText is the substring or regex capture that triggered the rule.
	MatchedText string `json:"matched_text"`

	// ActionTaken is the action actually applied (the most severe across
	// all rules matching the comment).
	ActionTaken string `json:"action_taken"`

	ReviewStatus string     `json:"review_status"`
	ReviewedBy   *string    `json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// ModerationActionRank returns a comparable severity rank for an action.
// Higher ranks win when multiple rules match one comment.
func ModerationActionRank(action string) int {
	switch action {
	case ModerationActionFlag:
		return 1
	case ModerationActionHold:
		return 2
	case ModerationActionDelete:
		return 3
	case ModerationActionBan:
		return 4
	default:
		return 0
	}
}
