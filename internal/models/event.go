// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultEventDuration is the assumed length of a broadcast when no end time
// is given. Conflict detection treats an open-ended event as occupying
// [StartTime, StartTime+DefaultEventDuration).
const DefaultEventDuration = 2 * time.Hour

// Event status constants.
//
// Lifecycle: scheduled -> ready -> live -> complete. An event can leave the
// pipeline at any point via canceled (user action) or failed (remote creation
// or transition error). Failed events keep their local record so operators
// can inspect and retry; recurrence materialization continues past them.
const (
	// EventStatusScheduled means the event exists locally and occupies its
	// slot, but the YouTube broadcast has not been created yet.
	EventStatusScheduled = "scheduled"

	// EventStatusReady means the YouTube broadcast exists and ingestion
	// details (RTMP URL, stream key) are bound.
	EventStatusReady = "ready"

	// EventStatusLive means the broadcast is on air.
	EventStatusLive = "live"

	// EventStatusComplete means the broadcast ended normally.
	EventStatusComplete = "complete"

	// EventStatusCanceled means the event was canceled before completion.
	EventStatusCanceled = "canceled"

	// EventStatusFailed means remote creation or a lifecycle transition
	// failed. The local record is kept with FailureReason populated.
	EventStatusFailed = "failed"
)

// ValidEventStatuses contains all valid event status values for validation.
var ValidEventStatuses = []string{
	EventStatusScheduled,
	EventStatusReady,
	EventStatusLive,
	EventStatusComplete,
	EventStatusCanceled,
	EventStatusFailed,
}

// IsValidEventStatus checks if an event status value is valid.
func IsValidEventStatus(status string) bool {
	for _, s := range ValidEventStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Event visibility constants (YouTube privacy status).
const (
	VisibilityPublic   = "public"
	VisibilityUnlisted = "unlisted"
	VisibilityPrivate  = "private"
)

// ValidVisibilities contains all valid visibility values for validation.
var ValidVisibilities = []string{VisibilityPublic, VisibilityUnlisted, VisibilityPrivate}

// IsValidVisibility checks if a visibility value is valid.
func IsValidVisibility(v string) bool {
	for _, s := range ValidVisibilities {
		if s == v {
			return true
		}
	}
	return false
}

// LiveEvent represents a scheduled YouTube live broadcast.
//
// This is the core scheduling model. Events are created directly by users or
// materialized from a RecurrencePattern; either way they occupy a time slot
// on their channel and participate in conflict detection.
//
// Key Fields:
//   - ID: Unique UUID per event (occurrences of a pattern get distinct IDs)
//   - ChannelID: Owning channel; conflicts are checked per channel
//   - StartTime/EndTime: Slot boundaries in UTC. EndTime nil means open-ended;
//     EffectiveEnd substitutes StartTime + DefaultEventDuration
//   - Status: Lifecycle state (see EventStatus constants)
//   - BroadcastID: YouTube's liveBroadcast id once remote creation succeeds
//   - StreamKeyEncrypted: Encrypted RTMP stream key (json:"-")
//   - RecurrenceID/OccurrenceIndex: Link back to the generating pattern
//   - FailureReason/RetryCount: Populated when remote creation fails
//
// Times are stored in UTC. Recurrence expansion happens in the pattern's
// timezone and results are converted to UTC before persisting.
type LiveEvent struct {
	ID        uuid.UUID `json:"id"`
	ChannelID uuid.UUID `json:"channel_id"`
	UserID    uuid.UUID `json:"user_id"`

	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`

	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	Status     string `json:"status"`
	Visibility string `json:"visibility"`

	// Remote broadcast binding, populated once YouTube creation succeeds.
	BroadcastID  *string `json:"broadcast_id,omitempty"`
	StreamID     *string `json:"stream_id,omitempty"`
	IngestionURL *string `json:"ingestion_url,omitempty"`

	// StreamKeyEncrypted holds the AES-GCM encrypted RTMP stream key.
	// Excluded from JSON serialization.
	StreamKeyEncrypted *string `json:"-"`

	// Recurrence linkage for materialized occurrences.
	RecurrenceID    *uuid.UUID `json:"recurrence_id,omitempty"`
	OccurrenceIndex *int       `json:"occurrence_index,omitempty"`

	// Failure tracking for remote creation errors.
	FailureReason *string `json:"failure_reason,omitempty"`
	RetryCount    int     `json:"retry_count"`

	// Broadcast options forwarded to YouTube.
	EnableDVR       bool `json:"enable_dvr"`
	EnableAutoStart bool `json:"enable_auto_start"`
	EnableAutoStop  bool `json:"enable_auto_stop"`

	CategoryID *string `json:"category_id,omitempty"`
	Tags       *string `json:"tags,omitempty"` // Comma-separated

	ActualStartTime *time.Time `json:"actual_start_time,omitempty"`
	ActualEndTime   *time.Time `json:"actual_end_time,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveEnd returns the end of the slot this event occupies.
// Open-ended events (EndTime nil) occupy StartTime + DefaultEventDuration.
func (e *LiveEvent) EffectiveEnd() time.Time {
	if e.EndTime != nil {
		return *e.EndTime
	}
	return e.StartTime.Add(DefaultEventDuration)
}

// Overlaps reports whether two events occupy intersecting time slots.
// Two slots [aStart, aEnd) and [bStart, bEnd) overlap when
// aStart < bEnd && bStart < aEnd. Touching boundaries (one ends exactly
// when the other starts) do not overlap.
func (e *LiveEvent) Overlaps(other *LiveEvent) bool {
	return e.StartTime.Before(other.EffectiveEnd()) && other.StartTime.Before(e.EffectiveEnd())
}

// OccupiesSlot reports whether the event participates in conflict detection.
// Only events that will actually go (or are) on air block their slot;
// completed, canceled, and failed events free it.
func (e *LiveEvent) OccupiesSlot() bool {
	switch e.Status {
	case EventStatusScheduled, EventStatusReady, EventStatusLive:
		return true
	}
	return false
}

// IsTerminal reports whether the event has left the scheduling pipeline.
func (e *LiveEvent) IsTerminal() bool {
	switch e.Status {
	case EventStatusComplete, EventStatusCanceled, EventStatusFailed:
		return true
	}
	return false
}

// IsOccurrence reports whether the event was materialized from a recurrence pattern.
func (e *LiveEvent) IsOccurrence() bool {
	return e.RecurrenceID != nil
}

// NewLiveEvent creates a new LiveEvent in the scheduled state.
func NewLiveEvent(channelID, userID uuid.UUID, title string, startTime time.Time) *LiveEvent {
	now := time.Now().UTC()
	return &LiveEvent{
		ID:         uuid.New(),
		ChannelID:  channelID,
		UserID:     userID,
		Title:      title,
		StartTime:  startTime.UTC(),
		Status:     EventStatusScheduled,
		Visibility: VisibilityPrivate,
		EnableDVR:  true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
