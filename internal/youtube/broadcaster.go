// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package youtube

import (
	"context"
	"errors"
	"fmt"

	"github.com/tubefleet/tubefleet/internal/logging"
	"github.com/tubefleet/tubefleet/internal/models"
	"github.com/tubefleet/tubefleet/internal/scheduling"
)

// TokenProvider resolves a channel's current OAuth access token, refreshing
// it when stale. Implemented by the channels service.
type TokenProvider interface {
	AccessToken(ctx context.Context, channelID string) (string, error)
}

// Broadcaster is the remote arm of the scheduler: it turns a local LiveEvent
// into a YouTube broadcast bound to an RTMP stream, and drives lifecycle
// changes (reschedule, transition, cancel) for existing broadcasts.
//
// Implements scheduling.Broadcaster.
type Broadcaster struct {
	api    ClientInterface
	tokens TokenProvider
}

// Ensure Broadcaster satisfies the materializer's contract
var _ scheduling.Broadcaster = (*Broadcaster)(nil)

// NewBroadcaster creates a broadcaster over the given API client and token
// provider.
func NewBroadcaster(api ClientInterface, tokens TokenProvider) *Broadcaster {
	return &Broadcaster{
		api:    api,
		tokens: tokens,
	}
}

// CreateBroadcast creates the remote broadcast for a local event:
// insert the broadcast, insert an RTMP stream, bind them, and return the
// binding with ingestion details. A failure after the broadcast insert
// deletes the half-created broadcast so retries do not accumulate unbound
// broadcasts on the channel.
func (b *Broadcaster) CreateBroadcast(ctx context.Context, channelID string, ev *models.LiveEvent) (*scheduling.BroadcastBinding, error) {
	token, err := b.tokens.AccessToken(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("resolving channel token: %w", err)
	}

	created, err := b.api.InsertBroadcast(ctx, token, broadcastFromEvent(ev))
	if err != nil {
		return nil, fmt.Errorf("creating broadcast: %w", err)
	}

	stream, err := b.api.InsertStream(ctx, token, ev.Title)
	if err != nil {
		b.deleteOrphan(ctx, token, created.ID)
		return nil, fmt.Errorf("creating stream: %w", err)
	}

	if _, err := b.api.BindBroadcast(ctx, token, created.ID, stream.ID); err != nil {
		b.deleteOrphan(ctx, token, created.ID)
		return nil, fmt.Errorf("binding stream: %w", err)
	}

	binding := &scheduling.BroadcastBinding{
		BroadcastID: created.ID,
		StreamID:    stream.ID,
	}
	if stream.CDN.IngestionInfo != nil {
		binding.IngestionURL = stream.CDN.IngestionInfo.IngestionAddress
		binding.StreamKey = stream.CDN.IngestionInfo.StreamName
	}
	return binding, nil
}

// RotateStream binds a freshly created RTMP stream to an event's existing
// broadcast, replacing the ingestion credentials. YouTube invalidates the
// previous stream key once the broadcast is bound elsewhere.
func (b *Broadcaster) RotateStream(ctx context.Context, channelID string, ev *models.LiveEvent) (*scheduling.BroadcastBinding, error) {
	if ev.BroadcastID == nil {
		return nil, errors.New("event has no broadcast to rebind")
	}

	token, err := b.tokens.AccessToken(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("resolving channel token: %w", err)
	}

	stream, err := b.api.InsertStream(ctx, token, ev.Title)
	if err != nil {
		return nil, fmt.Errorf("creating replacement stream: %w", err)
	}

	if _, err := b.api.BindBroadcast(ctx, token, *ev.BroadcastID, stream.ID); err != nil {
		return nil, fmt.Errorf("binding replacement stream: %w", err)
	}

	binding := &scheduling.BroadcastBinding{
		BroadcastID: *ev.BroadcastID,
		StreamID:    stream.ID,
	}
	if stream.CDN.IngestionInfo != nil {
		binding.IngestionURL = stream.CDN.IngestionInfo.IngestionAddress
		binding.StreamKey = stream.CDN.IngestionInfo.StreamName
	}
	return binding, nil
}

// Reschedule pushes an event's updated title, description, times, and
// visibility to its existing broadcast.
func (b *Broadcaster) Reschedule(ctx context.Context, channelID string, ev *models.LiveEvent) error {
	if ev.BroadcastID == nil {
		return nil
	}

	token, err := b.tokens.AccessToken(ctx, channelID)
	if err != nil {
		return fmt.Errorf("resolving channel token: %w", err)
	}

	update := broadcastFromEvent(ev)
	update.ID = *ev.BroadcastID
	update.ContentDetails = nil // bind state is not part of a reschedule

	if _, err := b.api.UpdateBroadcast(ctx, token, update); err != nil {
		return fmt.Errorf("rescheduling broadcast: %w", err)
	}
	return nil
}

// Transition moves a broadcast to the given lifecycle status
// (BroadcastLifeCycleTesting, Live, or Complete).
func (b *Broadcaster) Transition(ctx context.Context, channelID, broadcastID, lifeCycleStatus string) error {
	token, err := b.tokens.AccessToken(ctx, channelID)
	if err != nil {
		return fmt.Errorf("resolving channel token: %w", err)
	}

	if _, err := b.api.TransitionBroadcast(ctx, token, broadcastID, lifeCycleStatus); err != nil {
		return fmt.Errorf("transitioning broadcast: %w", err)
	}
	return nil
}

// Cancel deletes the remote broadcast for a canceled event. A broadcast
// that is already gone counts as canceled.
func (b *Broadcaster) Cancel(ctx context.Context, channelID, broadcastID string) error {
	token, err := b.tokens.AccessToken(ctx, channelID)
	if err != nil {
		return fmt.Errorf("resolving channel token: %w", err)
	}

	if err := b.api.DeleteBroadcast(ctx, token, broadcastID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return fmt.Errorf("canceling broadcast: %w", err)
	}
	return nil
}

// deleteOrphan removes a broadcast whose stream setup failed.
func (b *Broadcaster) deleteOrphan(ctx context.Context, token, broadcastID string) {
	if err := b.api.DeleteBroadcast(ctx, token, broadcastID); err != nil {
		logging.Warn().
			Err(err).
			Str("broadcast_id", broadcastID).
			Msg("Failed to delete orphaned broadcast")
	}
}

// broadcastFromEvent maps a local event onto the liveBroadcast resource.
func broadcastFromEvent(ev *models.LiveEvent) *Broadcast {
	start := ev.StartTime
	broadcast := &Broadcast{
		Snippet: BroadcastSnippet{
			Title:              ev.Title,
			ScheduledStartTime: &start,
			ScheduledEndTime:   ev.EndTime,
		},
		Status: &BroadcastStatus{
			PrivacyStatus: ev.Visibility,
		},
		ContentDetails: &BroadcastContentDetails{
			EnableDvr:       ev.EnableDVR,
			EnableAutoStart: ev.EnableAutoStart,
			EnableAutoStop:  ev.EnableAutoStop,
		},
	}
	if ev.Description != nil {
		broadcast.Snippet.Description = *ev.Description
	}
	return broadcast
}
