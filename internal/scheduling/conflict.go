// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/tubefleet/tubefleet/internal/models"
)

// Overlap reports whether two half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Back-to-back events sharing a boundary instant
// do not overlap.
func Overlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// ConflictStore is the slice of the database the checker needs: every
// slot-occupying event on one channel that intersects a time window.
type ConflictStore interface {
	ListEventsOverlapping(ctx context.Context, channelID string, start, end time.Time) ([]models.LiveEvent, error)
}

// Checker answers whether a candidate event can claim its broadcast slot on
// a channel. Completed, canceled, and failed events never block a slot.
type Checker struct {
	store ConflictStore
}

// NewChecker creates a conflict checker backed by the given store.
func NewChecker(store ConflictStore) *Checker {
	return &Checker{store: store}
}

// Check returns the slot-occupying events on the candidate's channel that
// overlap it. An empty result means the slot is free. The candidate itself
// is excluded so updates can re-validate an existing event in place.
func (c *Checker) Check(ctx context.Context, candidate *models.LiveEvent) ([]models.LiveEvent, error) {
	start := candidate.StartTime
	end := candidate.EffectiveEnd()

	existing, err := c.store.ListEventsOverlapping(ctx, candidate.ChannelID.String(), start, end)
	if err != nil {
		return nil, fmt.Errorf("listing overlapping events: %w", err)
	}

	var conflicts []models.LiveEvent
	for i := range existing {
		ev := &existing[i]
		if ev.ID == candidate.ID {
			continue
		}
		if !ev.OccupiesSlot() {
			continue
		}
		if candidate.Overlaps(ev) {
			conflicts = append(conflicts, *ev)
		}
	}
	return conflicts, nil
}

// CheckWindow is Check for a bare time window, used by the materializer
// before a child event object exists.
func (c *Checker) CheckWindow(ctx context.Context, channelID string, start, end time.Time) ([]models.LiveEvent, error) {
	existing, err := c.store.ListEventsOverlapping(ctx, channelID, start, end)
	if err != nil {
		return nil, fmt.Errorf("listing overlapping events: %w", err)
	}

	var conflicts []models.LiveEvent
	for i := range existing {
		ev := &existing[i]
		if !ev.OccupiesSlot() {
			continue
		}
		if Overlap(start, end, ev.StartTime, ev.EffectiveEnd()) {
			conflicts = append(conflicts, *ev)
		}
	}
	return conflicts, nil
}
