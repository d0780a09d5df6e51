// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package api

import "time"

// Request bodies for the mutating endpoints. Validation tags run through
// the shared validator before a handler sees the struct.

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

type createStreamRequest struct {
	ChannelID   string     `json:"channel_id" validate:"required,uuid"`
	Title       string     `json:"title" validate:"required,max=100"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=5000"`
	StartTime   time.Time  `json:"start_time" validate:"required"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Visibility  string     `json:"visibility,omitempty" validate:"omitempty,oneof=public unlisted private"`
	EnableDVR   bool       `json:"enable_dvr,omitempty"`
	AutoStart   bool       `json:"auto_start,omitempty"`
	AutoStop    bool       `json:"auto_stop,omitempty"`
	CategoryID  string     `json:"category_id,omitempty"`
	Tags        []string   `json:"tags,omitempty" validate:"omitempty,max=50"`

	// Force skips the conflict check. The conflicting set is still
	// returned in the response metadata for the caller's information.
	Force bool `json:"force,omitempty"`
}

type updateStreamRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,max=100"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=5000"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Visibility  *string    `json:"visibility,omitempty" validate:"omitempty,oneof=public unlisted private"`
	EnableDVR   *bool      `json:"enable_dvr,omitempty"`
	AutoStart   *bool      `json:"auto_start,omitempty"`
	AutoStop    *bool      `json:"auto_stop,omitempty"`
	CategoryID  *string    `json:"category_id,omitempty"`
	Tags        []string   `json:"tags,omitempty" validate:"omitempty,max=50"`
	Force       bool       `json:"force,omitempty"`
}

type transitionStreamRequest struct {
	Status string `json:"status" validate:"required,oneof=scheduled ready live complete canceled failed"`
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

type conflictCheckRequest struct {
	ChannelID string     `json:"channel_id" validate:"required,uuid"`
	StartTime time.Time  `json:"start_time" validate:"required"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	ExcludeID string     `json:"exclude_id,omitempty" validate:"omitempty,uuid"`
}

type createRecurrenceRequest struct {
	ChannelID       string     `json:"channel_id" validate:"required,uuid"`
	TemplateEventID string     `json:"template_event_id" validate:"required,uuid"`
	Frequency       string     `json:"frequency" validate:"required,oneof=daily weekly monthly"`
	Interval        int        `json:"interval" validate:"omitempty,min=1,max=52"`
	DaysOfWeek      []int      `json:"days_of_week,omitempty" validate:"omitempty,dive,min=0,max=6"`
	DayOfMonth      int        `json:"day_of_month,omitempty" validate:"omitempty,min=1,max=31"`
	Timezone        string     `json:"timezone,omitempty"`
	StartDate       time.Time  `json:"start_date" validate:"required"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	OccurrenceCount *int       `json:"occurrence_count,omitempty" validate:"omitempty,min=1,max=1000"`
}

type updateRecurrenceRequest struct {
	Frequency       *string    `json:"frequency,omitempty" validate:"omitempty,oneof=daily weekly monthly"`
	Interval        *int       `json:"interval,omitempty" validate:"omitempty,min=1,max=52"`
	DaysOfWeek      []int      `json:"days_of_week,omitempty" validate:"omitempty,dive,min=0,max=6"`
	DayOfMonth      *int       `json:"day_of_month,omitempty" validate:"omitempty,min=1,max=31"`
	Timezone        *string    `json:"timezone,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	OccurrenceCount *int       `json:"occurrence_count,omitempty" validate:"omitempty,min=1,max=1000"`
}

type previewRecurrenceRequest struct {
	Frequency       string     `json:"frequency" validate:"required,oneof=daily weekly monthly"`
	Interval        int        `json:"interval" validate:"omitempty,min=1,max=52"`
	DaysOfWeek      []int      `json:"days_of_week,omitempty" validate:"omitempty,dive,min=0,max=6"`
	DayOfMonth      int        `json:"day_of_month,omitempty" validate:"omitempty,min=1,max=31"`
	Timezone        string     `json:"timezone,omitempty"`
	StartDate       time.Time  `json:"start_date" validate:"required"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	OccurrenceCount *int       `json:"occurrence_count,omitempty" validate:"omitempty,min=1,max=1000"`
	After           *time.Time `json:"after,omitempty"`
	Count           int        `json:"count,omitempty" validate:"omitempty,min=1,max=100"`
}

type startLinkRequest struct {
	ReturnTo string `json:"return_to,omitempty" validate:"omitempty,max=512"`
}

type subscribeRequest struct {
	UserID       string `json:"user_id,omitempty" validate:"omitempty,uuid"`
	PlanID       string `json:"plan_id" validate:"required,uuid"`
	DiscountCode string `json:"discount_code,omitempty" validate:"omitempty,max=64"`
}

type validateDiscountRequest struct {
	Code   string `json:"code" validate:"required,max=64"`
	PlanID string `json:"plan_id" validate:"required,uuid"`
}

type planChangeRequest struct {
	UserID string `json:"user_id,omitempty" validate:"omitempty,uuid"`
	PlanID string `json:"plan_id" validate:"required,uuid"`
}

type cancelSubscriptionRequest struct {
	UserID string `json:"user_id,omitempty" validate:"omitempty,uuid"`
	Cancel bool   `json:"cancel"`
}

type setPreferenceRequest struct {
	Type  string `json:"type" validate:"required,max=64"`
	InApp bool   `json:"in_app"`
	Email bool   `json:"email"`
	Muted bool   `json:"muted"`
}

type createRuleRequest struct {
	ChannelID *string `json:"channel_id,omitempty" validate:"omitempty,uuid"`
	Name      string  `json:"name" validate:"required,max=100"`
	RuleType  string  `json:"rule_type" validate:"required,oneof=keyword regex"`
	Pattern   string  `json:"pattern" validate:"required"`
	Action    string  `json:"action" validate:"required,oneof=flag hold delete ban"`
	Severity  string  `json:"severity" validate:"required,oneof=info warning critical"`
	Enabled   *bool   `json:"enabled,omitempty"`
}

type updateRuleRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Pattern  *string `json:"pattern,omitempty"`
	Action   *string `json:"action,omitempty" validate:"omitempty,oneof=flag hold delete ban"`
	Severity *string `json:"severity,omitempty" validate:"omitempty,oneof=info warning critical"`
	Enabled  *bool   `json:"enabled,omitempty"`
}

type reviewViolationRequest struct {
	Status string `json:"status" validate:"required,oneof=upheld overturned"`
}

type scanCommentRequest struct {
	CommentID string `json:"comment_id" validate:"required,max=128"`
}

type createTriggerRequest struct {
	ChannelID        string `json:"channel_id" validate:"required,uuid"`
	Name             string `json:"name" validate:"required,max=100"`
	MatchType        string `json:"match_type" validate:"required,oneof=exact contains prefix regex"`
	Pattern          string `json:"pattern" validate:"required"`
	CaseSensitive    bool   `json:"case_sensitive"`
	Priority         int    `json:"priority" validate:"omitempty,min=-1000,max=1000"`
	ResponseTemplate string `json:"response_template" validate:"required,max=5000"`
	UseAI            bool   `json:"use_ai"`
	CooldownSeconds  int    `json:"cooldown_seconds" validate:"omitempty,min=0,max=86400"`
	Enabled          *bool  `json:"enabled,omitempty"`
}

type updateTriggerRequest struct {
	Name             *string `json:"name,omitempty" validate:"omitempty,max=100"`
	MatchType        *string `json:"match_type,omitempty" validate:"omitempty,oneof=exact contains prefix regex"`
	Pattern          *string `json:"pattern,omitempty"`
	CaseSensitive    *bool   `json:"case_sensitive,omitempty"`
	Priority         *int    `json:"priority,omitempty" validate:"omitempty,min=-1000,max=1000"`
	ResponseTemplate *string `json:"response_template,omitempty" validate:"omitempty,max=5000"`
	UseAI            *bool   `json:"use_ai,omitempty"`
	CooldownSeconds  *int    `json:"cooldown_seconds,omitempty" validate:"omitempty,min=0,max=86400"`
	Enabled          *bool   `json:"enabled,omitempty"`
}

type testTriggerRequest struct {
	TriggerID  string `json:"trigger_id,omitempty" validate:"omitempty,uuid"`
	SampleText string `json:"sample_text" validate:"required,max=5000"`

	// Inline trigger definition, used when trigger_id is absent.
	MatchType     string `json:"match_type,omitempty" validate:"omitempty,oneof=exact contains prefix regex"`
	Pattern       string `json:"pattern,omitempty"`
	CaseSensitive bool   `json:"case_sensitive"`
	Response      string `json:"response,omitempty"`
}

type recordStrikeRequest struct {
	ChannelID  string     `json:"channel_id" validate:"required,uuid"`
	StrikeType string     `json:"strike_type" validate:"required,oneof=copyright community terms"`
	Reason     string     `json:"reason" validate:"required,max=1000"`
	Source     string     `json:"source,omitempty" validate:"omitempty,max=64"`
	VideoID    string     `json:"video_id,omitempty" validate:"omitempty,max=64"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

type createWebhookRequest struct {
	URL        string   `json:"url" validate:"required,url,max=2048"`
	EventTypes []string `json:"event_types" validate:"required,min=1,dive,max=64"`
}

type updateWebhookRequest struct {
	URL        *string  `json:"url,omitempty" validate:"omitempty,url,max=2048"`
	EventTypes []string `json:"event_types,omitempty" validate:"omitempty,min=1,dive,max=64"`
	Enabled    *bool    `json:"enabled,omitempty"`
}

type createUserRequest struct {
	Username    string  `json:"username" validate:"required,min=3,max=32"`
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required"`
	Role        string  `json:"role" validate:"required,oneof=viewer editor admin"`
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,max=100"`
}

type updateUserRequest struct {
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Role        *string `json:"role,omitempty" validate:"omitempty,oneof=viewer editor admin"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=active suspended deleted"`
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,max=100"`
}
