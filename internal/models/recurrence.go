// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package models

import (
	"time"

	"github.com/google/uuid"
)

// Recurrence frequency constants.
const (
	// FrequencyDaily repeats every Interval days.
	FrequencyDaily = "daily"

	// FrequencyWeekly repeats every Interval weeks, optionally restricted
	// to a set of weekdays (DaysOfWeek).
	FrequencyWeekly = "weekly"

	// FrequencyMonthly repeats every Interval months on DayOfMonth.
	// When the target month is shorter than DayOfMonth the occurrence is
	// clamped to the month's last day (31 -> Feb 28/29).
	FrequencyMonthly = "monthly"
)

// ValidFrequencies contains all valid recurrence frequencies for validation.
var ValidFrequencies = []string{FrequencyDaily, FrequencyWeekly, FrequencyMonthly}

// IsValidFrequency checks if a frequency value is valid.
func IsValidFrequency(freq string) bool {
	for _, f := range ValidFrequencies {
		if f == freq {
			return true
		}
	}
	return false
}

// Recurrence pattern status constants.
const (
	// RecurrenceStatusActive patterns are materialized by the scheduler.
	RecurrenceStatusActive = "active"

	// RecurrenceStatusPaused patterns keep their state but generate nothing.
	RecurrenceStatusPaused = "paused"

	// RecurrenceStatusCompleted patterns reached their end date or
	// occurrence count and will never generate again.
	RecurrenceStatusCompleted = "completed"

	// RecurrenceStatusCanceled patterns were stopped by the user.
	RecurrenceStatusCanceled = "canceled"
)

// ValidRecurrenceStatuses contains all valid pattern status values for validation.
var ValidRecurrenceStatuses = []string{
	RecurrenceStatusActive,
	RecurrenceStatusPaused,
	RecurrenceStatusCompleted,
	RecurrenceStatusCanceled,
}

// IsValidRecurrenceStatus checks if a pattern status value is valid.
func IsValidRecurrenceStatus(status string) bool {
	for _, s := range ValidRecurrenceStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// RecurrencePattern describes a repeating live event series.
//
// The pattern holds the template fields copied onto each occurrence (title,
// duration, visibility come from the template event referenced by
// TemplateEventID) plus the repetition rule. Expansion happens in the
// pattern's IANA timezone so that "every day at 19:00" stays at 19:00 local
// across DST transitions; results are converted to UTC before persisting.
//
// Termination: a pattern ends at EndDate (inclusive of occurrences starting
// on it), after OccurrenceCount generated occurrences, or never when both
// are nil. GeneratedCount tracks how many occurrences exist, including ones
// whose remote creation failed.
//
// Key Fields:
//   - Frequency: daily, weekly, or monthly
//   - Interval: Repeat every N units (1 = every day/week/month)
//   - DaysOfWeek: Weekly only; weekday numbers 0 (Sunday) to 6 (Saturday).
//     Empty means the weekday of StartDate.
//   - DayOfMonth: Monthly only; 1-31, clamped to short months.
//     Zero means the day-of-month of StartDate.
type RecurrencePattern struct {
	ID              uuid.UUID `json:"id"`
	ChannelID       uuid.UUID `json:"channel_id"`
	UserID          uuid.UUID `json:"user_id"`
	TemplateEventID uuid.UUID `json:"template_event_id"`

	Frequency  string `json:"frequency"`
	Interval   int    `json:"interval"`
	DaysOfWeek []int  `json:"days_of_week,omitempty"`
	DayOfMonth int    `json:"day_of_month,omitempty"`

	// Timezone is the IANA zone the pattern expands in (default UTC).
	Timezone string `json:"timezone"`

	// StartDate anchors the series: the first occurrence is the first
	// rule match at or after this instant.
	StartDate time.Time `json:"start_date"`

	// EndDate stops the series; occurrences starting after it are not
	// generated. Nil means no date bound.
	EndDate *time.Time `json:"end_date,omitempty"`

	// OccurrenceCount stops the series after this many generated
	// occurrences. Nil means no count bound.
	OccurrenceCount *int `json:"occurrence_count,omitempty"`

	// GeneratedCount is the number of occurrences materialized so far,
	// including failed ones.
	GeneratedCount int `json:"generated_count"`

	Status string `json:"status"`

	// LastMaterializedAt is the start time of the most recently generated
	// occurrence. The scheduler resumes expansion after this instant.
	LastMaterializedAt *time.Time `json:"last_materialized_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsActive reports whether the scheduler should materialize this pattern.
func (rp *RecurrencePattern) IsActive() bool {
	return rp.Status == RecurrenceStatusActive
}

// CountExhausted reports whether the occurrence-count bound has been reached.
func (rp *RecurrencePattern) CountExhausted() bool {
	if rp.OccurrenceCount == nil {
		return false
	}
	return rp.GeneratedCount >= *rp.OccurrenceCount
}

// DateExhausted reports whether the given instant is past the pattern's end date.
func (rp *RecurrencePattern) DateExhausted(at time.Time) bool {
	if rp.EndDate == nil {
		return false
	}
	return at.After(*rp.EndDate)
}

// RemainingOccurrences returns how many occurrences may still be generated
// under the count bound, or -1 when unbounded.
func (rp *RecurrencePattern) RemainingOccurrences() int {
	if rp.OccurrenceCount == nil {
		return -1
	}
	remaining := *rp.OccurrenceCount - rp.GeneratedCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Location resolves the pattern's timezone, falling back to UTC when the
// field is empty or invalid.
func (rp *RecurrencePattern) Location() *time.Location {
	if rp.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(rp.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// NewRecurrencePattern creates a new active pattern with Interval 1 in UTC.
func NewRecurrencePattern(channelID, userID, templateEventID uuid.UUID, frequency string, startDate time.Time) *RecurrencePattern {
	now := time.Now().UTC()
	return &RecurrencePattern{
		ID:              uuid.New(),
		ChannelID:       channelID,
		UserID:          userID,
		TemplateEventID: templateEventID,
		Frequency:       frequency,
		Interval:        1,
		Timezone:        "UTC",
		StartDate:       startDate.UTC(),
		Status:          RecurrenceStatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
