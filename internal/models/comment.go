// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment moderation status constants, mirroring YouTube's moderation states.
const (
	CommentStatusPublished = "published"
	CommentStatusHeld      = "heldForReview"
	CommentStatusRejected  = "rejected"
)

// Comment represents a YouTube comment fetched for scanning and chatbot
// processing. The YouTube comment thread is authoritative; this row is a
// working copy for the moderation scanner and trigger matcher.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	ChannelID uuid.UUID `json:"channel_id"`

	// YouTubeCommentID is YouTube's identifier for the comment.
	YouTubeCommentID string `json:"youtube_comment_id"`

	// VideoID is the YouTube video or broadcast the comment belongs to.
	VideoID string `json:"video_id"`

	// ParentCommentID is set for replies within a thread.
	ParentCommentID *string `json:"parent_comment_id,omitempty"`

	AuthorChannelID string `json:"author_channel_id"`
	AuthorName      string `json:"author_name"`

	Text string `json:"text"`

	Status string `json:"status"`

	// Scanned marks that the moderation scanner has processed this comment.
	Scanned bool `json:"scanned"`

	PublishedAt time.Time `json:"published_at"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// IsReply reports whether the comment is a reply within a thread.
func (c *Comment) IsReply() bool {
	return c.ParentCommentID != nil
}

// Chatbot trigger match type constants.
const (
	// MatchTypeExact fires when the comment text equals the pattern.
	MatchTypeExact = "exact"

	// MatchTypeContains fires when the comment text contains the pattern.
	MatchTypeContains = "contains"

	// MatchTypePrefix fires when the comment text starts with the pattern
	// (command-style triggers like "!schedule").
	MatchTypePrefix = "prefix"

	// MatchTypeRegex fires when the comment text matches the RE2 pattern.
	MatchTypeRegex = "regex"
)

// ValidMatchTypes contains all valid trigger match types for validation.
var ValidMatchTypes = []string{MatchTypeExact, MatchTypeContains, MatchTypePrefix, MatchTypeRegex}

// IsValidMatchType checks if a match type value is valid.
func IsValidMatchType(matchType string) bool {
	for _, t := range ValidMatchTypes {
		if t == matchType {
			return true
		}
	}
	return false
}

// ChatbotTrigger represents an automated comment responder rule.
//
// Triggers are evaluated against incoming comments in priority order
// (highest first); the first match wins and at most one reply is posted per
// comment. Cooldown throttles a trigger so a popular pattern does not spam
// the thread. Response templates may reference the OpenAI completion wrapper
// when UseAI is set; otherwise ResponseTemplate is posted verbatim with
// placeholder substitution.
type ChatbotTrigger struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ChannelID uuid.UUID `json:"channel_id"`

	Name      string `json:"name"`
	MatchType string `json:"match_type"`
	Pattern   string `json:"pattern"`

	// CaseSensitive applies to exact, contains, and prefix matching.
	// Regex patterns manage their own case handling.
	CaseSensitive bool `json:"case_sensitive"`

	// Priority orders trigger evaluation; highest first, ties broken by
	// creation time (oldest first).
	Priority int `json:"priority"`

	ResponseTemplate string `json:"response_template"`

	// UseAI routes the response through the completion wrapper, with
	// ResponseTemplate as the prompt prefix.
	UseAI bool `json:"use_ai"`

	// Cooldown is the minimum interval between firings, 0 disables.
	Cooldown time.Duration `json:"cooldown"`

	Enabled     bool       `json:"enabled"`
	HitCount    int64      `json:"hit_count"`
	LastFiredAt *time.Time `json:"last_fired_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OnCooldown reports whether the trigger is throttled at the given instant.
func (t *ChatbotTrigger) OnCooldown(now time.Time) bool {
	if t.Cooldown <= 0 || t.LastFiredAt == nil {
		return false
	}
	return now.Sub(*t.LastFiredAt) < t.Cooldown
}

// NewChatbotTrigger creates an enabled trigger with default priority.
func NewChatbotTrigger(userID, channelID uuid.UUID, name, matchType, pattern, response string) *ChatbotTrigger {
	now := time.Now().UTC()
	return &ChatbotTrigger{
		ID:               uuid.New(),
		UserID:           userID,
		ChannelID:        channelID,
		Name:             name,
		MatchType:        matchType,
		Pattern:          pattern,
		ResponseTemplate: response,
		Enabled:          true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// ChatbotReply records a response posted by a trigger, for audit and
// cooldown bookkeeping.
type ChatbotReply struct {
	ID        uuid.UUID `json:"id"`
	TriggerID uuid.UUID `json:"trigger_id"`
	ChannelID uuid.UUID `json:"channel_id"`

	// CommentID is the YouTube comment that was replied to.
	CommentID string `json:"comment_id"`

	// ReplyCommentID is YouTube's id for the posted reply.
	ReplyCommentID *string `json:"reply_comment_id,omitempty"`

	ResponseText string `json:"response_text"`

	// Failed marks replies that could not be posted (API error, quota).
	Failed        bool    `json:"failed"`
	FailureReason *string `json:"failure_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
