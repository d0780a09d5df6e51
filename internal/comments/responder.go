// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package comments

import (
	"context"
	"time"

	"github.com/tubefleet/tubefleet/internal/logging"
	"github.com/tubefleet/tubefleet/internal/metrics"
	"github.com/tubefleet/tubefleet/internal/models"
)

// ResponderStore is the persistence surface the responder needs.
type ResponderStore interface {
	ListTriggersByChannel(ctx context.Context, channelID string, enabledOnly bool) ([]models.ChatbotTrigger, error)
	RecordTriggerFired(ctx context.Context, id string, firedAt time.Time) error
	CreateChatbotReply(ctx context.Context, reply *models.ChatbotReply) error
	HasReplyForComment(ctx context.Context, commentID string) (bool, error)
}

// Poster posts a reply through the Data API wrapper. Implemented by
// youtube.CommentGateway.
type Poster interface {
	PostReply(ctx context.Context, channelID, parentCommentID, text string) (string, error)
}

// Completer generates AI replies. Implemented by chatbot.Client.
type Completer interface {
	Complete(ctx context.Context, instruction, commentText string) (string, error)
}

// Responder evaluates chatbot triggers against incoming comments and posts
// at most one reply per comment.
type Responder struct {
	store     ResponderStore
	poster    Poster
	completer Completer
}

// NewResponder creates the responder. poster and completer may be nil:
// without a poster replies are recorded as failed, without a completer AI
// triggers fall back to their template.
func NewResponder(store ResponderStore, poster Poster, completer Completer) *Responder {
	return &Responder{store: store, poster: poster, completer: completer}
}

// ProcessComment runs trigger evaluation for one comment. Returns true when
// a reply was attempted (posted or recorded as failed). The channel's own
// comments and comments already replied to are skipped.
func (r *Responder) ProcessComment(ctx context.Context, channel *models.Channel, comment *models.Comment) (bool, error) {
	if comment.AuthorChannelID == channel.YouTubeChannelID {
		return false, nil
	}

	replied, err := r.store.HasReplyForComment(ctx, comment.YouTubeCommentID)
	if err != nil {
		return false, err
	}
	if replied {
		return false, nil
	}

	triggers, err := r.store.ListTriggersByChannel(ctx, channel.ID.String(), true)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	for i := range triggers {
		trigger := &triggers[i]
		if !Matches(trigger, comment.Text) {
			continue
		}
		metrics.ChatbotTriggerMatches.WithLabelValues(trigger.MatchType).Inc()

		// First match wins. A match on cooldown suppresses the comment
		// entirely rather than falling through to a lower-priority trigger,
		// so cooldowns cannot promote unexpected responses.
		if trigger.OnCooldown(now) {
			metrics.ChatbotRepliesPosted.WithLabelValues("cooldown").Inc()
			return false, nil
		}

		return true, r.fire(ctx, trigger, channel, comment, now)
	}
	return false, nil
}

// fire builds the response, posts it best-effort, and records the reply.
// Cooldown and hit counters move on every attempt, success or not, so a
// failing API cannot be hammered at full comment rate.
func (r *Responder) fire(ctx context.Context, trigger *models.ChatbotTrigger, channel *models.Channel, comment *models.Comment, now time.Time) error {
	text := r.buildResponse(ctx, trigger, comment)

	reply := &models.ChatbotReply{
		TriggerID:    trigger.ID,
		ChannelID:    channel.ID,
		CommentID:    comment.YouTubeCommentID,
		ResponseText: text,
		CreatedAt:    now,
	}

	if r.poster == nil {
		reason := "no reply poster configured"
		reply.Failed = true
		reply.FailureReason = &reason
	} else if postedID, err := r.poster.PostReply(ctx, channel.ID.String(), comment.YouTubeCommentID, text); err != nil {
		reason := err.Error()
		reply.Failed = true
		reply.FailureReason = &reason
		logging.Warn().
			Err(err).
			Str("trigger_id", trigger.ID.String()).
			Str("comment_id", comment.YouTubeCommentID).
			Msg("Failed to post chatbot reply")
	} else {
		reply.ReplyCommentID = &postedID
	}

	if reply.Failed {
		metrics.ChatbotRepliesPosted.WithLabelValues("failed").Inc()
	} else {
		metrics.ChatbotRepliesPosted.WithLabelValues("posted").Inc()
	}

	if err := r.store.RecordTriggerFired(ctx, trigger.ID.String(), now); err != nil {
		logging.Warn().Err(err).Str("trigger_id", trigger.ID.String()).Msg("Failed to record trigger firing")
	}
	return r.store.CreateChatbotReply(ctx, reply)
}

// buildResponse renders the trigger's reply text. AI triggers call the
// completion wrapper with the template as the steering prompt; a completion
// failure falls back to the rendered template so the trigger still answers.
func (r *Responder) buildResponse(ctx context.Context, trigger *models.ChatbotTrigger, comment *models.Comment) string {
	rendered := renderTemplate(trigger.ResponseTemplate, comment.Text, comment.AuthorName)

	if !trigger.UseAI || r.completer == nil {
		return rendered
	}

	generated, err := r.completer.Complete(ctx, trigger.ResponseTemplate, comment.Text)
	if err != nil {
		logging.Warn().
			Err(err).
			Str("trigger_id", trigger.ID.String()).
			Msg("Completion failed, falling back to template")
		return rendered
	}
	return generated
}
