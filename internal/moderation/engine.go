// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package moderation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tubefleet/tubefleet/internal/logging"
	"github.com/tubefleet/tubefleet/internal/metrics"
	"github.com/tubefleet/tubefleet/internal/models"
)

// Store is the persistence surface the engine needs.
type Store interface {
	GetChannel(ctx context.Context, id string) (*models.Channel, error)

	// ListEnabledRulesForChannel returns the user's enabled rules scoped to
	// the channel plus their enabled global rules.
	ListEnabledRulesForChannel(ctx context.Context, userID, channelID string) ([]models.ModerationRule, error)

	CreateViolation(ctx context.Context, v *models.ModerationViolation) error
	IncrementRuleHitCounts(ctx context.Context, ruleIDs map[string]int64) error
	SetCommentStatus(ctx context.Context, youtubeCommentID string, status string) error
}

// RemoteModerator applies a moderation verdict on YouTube. Remote failures
// are logged, never fatal: the local verdict stands.
type RemoteModerator interface {
	SetModerationStatus(ctx context.Context, channelID, commentID, status string) error
}

// Publisher emits moderation.violation events on the bus.
type Publisher interface {
	ViolationDetected(ctx context.Context, v *models.ModerationViolation, rule *models.ModerationRule) error
}

// EngineConfig holds scanning engine settings.
type EngineConfig struct {
	// AutoAction applies the strongest matched action to the comment.
	// When false the engine only records violations (dry-run moderation).
	AutoAction bool

	// ScanTimeout bounds one comment's scan, including remote calls.
	ScanTimeout time.Duration
}

// DefaultEngineConfig returns production defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		AutoAction:  true,
		ScanTimeout: 10 * time.Second,
	}
}

// compiledEntry caches a rule's detector keyed by its update time, so a
// rule edit invalidates the compiled form without an explicit flush.
type compiledEntry struct {
	updatedAt time.Time
	det       detector
}

// Engine runs enabled rules against comments and applies verdicts.
type Engine struct {
	store     Store
	remote    RemoteModerator
	publisher Publisher
	config    EngineConfig

	mu       sync.RWMutex
	compiled map[uuid.UUID]compiledEntry
}

// NewEngine creates the scanning engine. remote and publisher may be nil;
// verdicts then stay local and unpublished.
func NewEngine(store Store, remote RemoteModerator, publisher Publisher, config EngineConfig) *Engine {
	return &Engine{
		store:     store,
		remote:    remote,
		publisher: publisher,
		config:    config,
		compiled:  make(map[uuid.UUID]compiledEntry),
	}
}

// ScanComment runs every enabled rule for the comment's channel against its
// text. At most one violation is recorded per rule; the strongest matched
// action is applied to the comment when AutoAction is on.
func (e *Engine) ScanComment(ctx context.Context, comment *models.Comment) ([]models.ModerationViolation, error) {
	if e.config.ScanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.ScanTimeout)
		defer cancel()
	}

	started := time.Now()
	defer func() {
		metrics.ModerationScanDuration.Observe(time.Since(started).Seconds())
		metrics.ModerationCommentsScanned.Inc()
	}()

	channel, err := e.store.GetChannel(ctx, comment.ChannelID.String())
	if err != nil {
		return nil, fmt.Errorf("loading channel %s: %w", comment.ChannelID, err)
	}

	rules, err := e.store.ListEnabledRulesForChannel(ctx, channel.UserID.String(), channel.ID.String())
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}
	if len(rules) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	var violations []models.ModerationViolation
	strongest := ""
	hits := make(map[string]int64)

	for i := range rules {
		rule := &rules[i]
		det, err := e.detector(rule)
		if err != nil {
			logging.Warn().Err(err).Str("rule_id", rule.ID.String()).Msg("Skipping uncompilable rule")
			continue
		}
		matched, hit := det.Detect(comment.Text)
		if !hit {
			continue
		}

		violations = append(violations, models.ModerationViolation{
			ID:           uuid.New(),
			RuleID:       rule.ID,
			ChannelID:    comment.ChannelID,
			CommentID:    comment.YouTubeCommentID,
			MatchedText:  matched,
			ReviewStatus: models.ReviewStatusPending,
			CreatedAt:    now,
		})
		hits[rule.ID.String()]++
		if models.ModerationActionRank(rule.Action) > models.ModerationActionRank(strongest) {
			strongest = rule.Action
		}
	}
	if len(violations) == 0 {
		return nil, nil
	}

	action := strongest
	if !e.config.AutoAction {
		action = models.ModerationActionFlag
	}
	for i := range violations {
		violations[i].ActionTaken = action
		if err := e.store.CreateViolation(ctx, &violations[i]); err != nil {
			return nil, fmt.Errorf("persisting violation: %w", err)
		}
	}
	if err := e.store.IncrementRuleHitCounts(ctx, hits); err != nil {
		logging.Warn().Err(err).Msg("Failed to bump rule hit counts")
	}

	if e.config.AutoAction {
		e.applyAction(ctx, comment, strongest)
	}

	byID := make(map[uuid.UUID]*models.ModerationRule, len(rules))
	for i := range rules {
		byID[rules[i].ID] = &rules[i]
	}
	for i := range violations {
		if rule := byID[violations[i].RuleID]; rule != nil {
			metrics.ModerationActionsTaken.WithLabelValues(rule.RuleType, action).Inc()
		}
	}

	e.publish(ctx, violations, byID)

	logging.Info().
		Str("comment_id", comment.YouTubeCommentID).
		Str("channel_id", comment.ChannelID.String()).
		Int("violations", len(violations)).
		Str("action", action).
		Msg("Comment moderated")
	return violations, nil
}

// detector returns the cached compiled form of a rule, recompiling when
// the rule changed since it was cached.
func (e *Engine) detector(rule *models.ModerationRule) (detector, error) {
	e.mu.RLock()
	entry, ok := e.compiled[rule.ID]
	e.mu.RUnlock()
	if ok && entry.updatedAt.Equal(rule.UpdatedAt) {
		return entry.det, nil
	}

	det, err := compileRule(rule)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.compiled[rule.ID] = compiledEntry{updatedAt: rule.UpdatedAt, det: det}
	e.mu.Unlock()
	return det, nil
}

// Forget drops a rule's compiled form after deletion.
func (e *Engine) Forget(ruleID uuid.UUID) {
	e.mu.Lock()
	delete(e.compiled, ruleID)
	e.mu.Unlock()
}

// applyAction moves the comment to the status the action demands, locally
// first, then best-effort on YouTube.
func (e *Engine) applyAction(ctx context.Context, comment *models.Comment, action string) {
	status := statusForAction(action)
	if status == comment.Status {
		return
	}

	if err := e.store.SetCommentStatus(ctx, comment.YouTubeCommentID, status); err != nil {
		logging.Error().Err(err).Str("comment_id", comment.YouTubeCommentID).Msg("Failed to set local comment status")
		return
	}
	comment.Status = status

	if e.remote == nil || action == models.ModerationActionFlag {
		return
	}
	if err := e.remote.SetModerationStatus(ctx, comment.ChannelID.String(), comment.YouTubeCommentID, status); err != nil {
		logging.Warn().
			Err(err).
			Str("comment_id", comment.YouTubeCommentID).
			Str("status", status).
			Msg("Remote moderation call failed, local verdict stands")
	}
}

func (e *Engine) publish(ctx context.Context, violations []models.ModerationViolation, byID map[uuid.UUID]*models.ModerationRule) {
	if e.publisher == nil {
		return
	}
	for i := range violations {
		rule := byID[violations[i].RuleID]
		if err := e.publisher.ViolationDetected(ctx, &violations[i], rule); err != nil {
			logging.Warn().Err(err).Msg("Failed to publish violation")
		}
	}
}

// statusForAction maps a rule action onto the comment status it enforces.
// Flag leaves the comment visible; hold sends it to review; delete and ban
// reject it.
func statusForAction(action string) string {
	switch action {
	case models.ModerationActionHold:
		return models.CommentStatusHeld
	case models.ModerationActionDelete, models.ModerationActionBan:
		return models.CommentStatusRejected
	default:
		return models.CommentStatusPublished
	}
}
