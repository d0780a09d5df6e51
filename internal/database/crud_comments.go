// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tubefleet/tubefleet/internal/models"
)

// UpsertComment stores a synced comment, keyed by YouTube's comment ID.
// Re-syncing the same comment refreshes its text and status but never
// clears the scanned flag, so edits get rescanned while untouched
// comments do not.
func (db *DB) UpsertComment(ctx context.Context, comment *models.Comment) error {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	if comment.FetchedAt.IsZero() {
		comment.FetchedAt = time.Now().UTC()
	}
	if comment.Status == "" {
		comment.Status = models.CommentStatusPublished
	}

	query := `INSERT INTO comments (
		id, channel_id, youtube_comment_id, video_id, parent_comment_id,
		author_channel_id, author_name, text, status, scanned,
		published_at, fetched_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (youtube_comment_id) DO UPDATE SET
		text = excluded.text,
		status = excluded.status,
		scanned = CASE WHEN comments.text = excluded.text THEN comments.scanned ELSE false END,
		fetched_at = excluded.fetched_at`

	_, err := db.conn.ExecContext(ctx, query,
		comment.ID, comment.ChannelID, comment.YouTubeCommentID, comment.VideoID,
		comment.ParentCommentID, comment.AuthorChannelID, comment.AuthorName,
		comment.Text, comment.Status, comment.Scanned,
		comment.PublishedAt.UTC(), comment.FetchedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert comment: %w", err)
	}

	return nil
}

// GetCommentByYouTubeID retrieves a comment by YouTube's identifier.
func (db *DB) GetCommentByYouTubeID(ctx context.Context, youtubeCommentID string) (*models.Comment, error) {
	query := commentSelectColumns + ` FROM comments WHERE youtube_comment_id = ?`
	row := db.conn.QueryRowContext(ctx, query, youtubeCommentID)
	return scanComment(row)
}

// ListUnscannedComments retrieves comments awaiting a moderation pass for
// a channel, oldest first so the backlog drains in order.
func (db *DB) ListUnscannedComments(ctx context.Context, channelID string, limit int) ([]models.Comment, error) {
	query := commentSelectColumns + ` FROM comments
	WHERE channel_id = ? AND scanned = false
	ORDER BY published_at ASC
	LIMIT ?`

	rows, err := db.conn.QueryContext(ctx, query, channelID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unscanned comments: %w", err)
	}
	defer rows.Close()

	return collectComments(rows)
}

// ListCommentsByChannel retrieves a channel's synced comments, newest
// first.
func (db *DB) ListCommentsByChannel(ctx context.Context, channelID string, limit, offset int) ([]models.Comment, error) {
	query := commentSelectColumns + ` FROM comments
	WHERE channel_id = ?
	ORDER BY published_at DESC
	LIMIT ? OFFSET ?`

	rows, err := db.conn.QueryContext(ctx, query, channelID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	return collectComments(rows)
}

// MarkCommentsScanned flags comments as processed by the moderation
// scanner.
func (db *DB) MarkCommentsScanned(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	whereClauses := []string{}
	args := []any{}
	appendInCondition("id", ids, &whereClauses, &args)

	query := `UPDATE comments SET scanned = true` + whereSQL(whereClauses)
	if _, err := db.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark comments scanned: %w", err)
	}
	return nil
}

// SetCommentStatus records the moderation outcome on the local copy after
// the remote action succeeds.
func (db *DB) SetCommentStatus(ctx context.Context, youtubeCommentID string, status string) error {
	query := `UPDATE comments SET status = ? WHERE youtube_comment_id = ?`
	result, err := db.conn.ExecContext(ctx, query, status, youtubeCommentID)
	if err != nil {
		return fmt.Errorf("failed to set comment status: %w", err)
	}
	return requireRowsAffected(result, ErrCommentNotFound)
}

const commentSelectColumns = `SELECT
	id, channel_id, youtube_comment_id, video_id, parent_comment_id,
	author_channel_id, author_name, text, status, scanned,
	published_at, fetched_at`

func scanComment(row *sql.Row) (*models.Comment, error) {
	var comment models.Comment
	var parentCommentID sql.NullString

	err := row.Scan(
		&comment.ID, &comment.ChannelID, &comment.YouTubeCommentID, &comment.VideoID,
		&parentCommentID, &comment.AuthorChannelID, &comment.AuthorName,
		&comment.Text, &comment.Status, &comment.Scanned,
		&comment.PublishedAt, &comment.FetchedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to scan comment: %w", err)
	}

	if parentCommentID.Valid {
		comment.ParentCommentID = &parentCommentID.String
	}
	return &comment, nil
}

func scanCommentRows(rows *sql.Rows) (*models.Comment, error) {
	var comment models.Comment
	var parentCommentID sql.NullString

	err := rows.Scan(
		&comment.ID, &comment.ChannelID, &comment.YouTubeCommentID, &comment.VideoID,
		&parentCommentID, &comment.AuthorChannelID, &comment.AuthorName,
		&comment.Text, &comment.Status, &comment.Scanned,
		&comment.PublishedAt, &comment.FetchedAt,
	)
	if err != nil {
		return nil, err
	}

	if parentCommentID.Valid {
		comment.ParentCommentID = &parentCommentID.String
	}
	return &comment, nil
}

func collectComments(rows *sql.Rows) ([]models.Comment, error) {
	comments := make([]models.Comment, 0)
	for rows.Next() {
		comment, err := scanCommentRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, *comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}

	return comments, nil
}

// --- Chatbot triggers ---

// CreateChatbotTrigger inserts an auto-responder trigger.
func (db *DB) CreateChatbotTrigger(ctx context.Context, trigger *models.ChatbotTrigger) error {
	if trigger.ID == uuid.Nil {
		trigger.ID = uuid.New()
	}
	if trigger.CreatedAt.IsZero() {
		trigger.CreatedAt = time.Now().UTC()
	}
	trigger.UpdatedAt = trigger.CreatedAt

	query := `INSERT INTO chatbot_triggers (
		id, user_id, channel_id, name, match_type, pattern, case_sensitive,
		priority, response_template, use_ai, cooldown_seconds, enabled,
		hit_count, last_fired_at, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.conn.ExecContext(ctx, query,
		trigger.ID, trigger.UserID, trigger.ChannelID, trigger.Name,
		trigger.MatchType, trigger.Pattern, trigger.CaseSensitive,
		trigger.Priority, trigger.ResponseTemplate, trigger.UseAI,
		int64(trigger.Cooldown/time.Second), trigger.Enabled,
		trigger.HitCount, nullableUTC(trigger.LastFiredAt),
		trigger.CreatedAt, trigger.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create chatbot trigger: %w", err)
	}

	return nil
}

// GetChatbotTrigger retrieves a trigger by ID.
func (db *DB) GetChatbotTrigger(ctx context.Context, id string) (*models.ChatbotTrigger, error) {
	query := triggerSelectColumns + ` FROM chatbot_triggers WHERE id = ?`
	row := db.conn.QueryRowContext(ctx, query, id)
	return scanTrigger(row)
}

// ListTriggersByChannel retrieves a channel's triggers in evaluation
// order: highest priority first, ties broken oldest first. When
// enabledOnly is set, disabled triggers are excluded.
func (db *DB) ListTriggersByChannel(ctx context.Context, channelID string, enabledOnly bool) ([]models.ChatbotTrigger, error) {
	query := triggerSelectColumns + ` FROM chatbot_triggers WHERE channel_id = ?`
	if enabledOnly {
		query += ` AND enabled = true`
	}
	query += ` ORDER BY priority DESC, created_at ASC`

	rows, err := db.conn.QueryContext(ctx, query, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chatbot triggers: %w", err)
	}
	defer rows.Close()

	return collectTriggers(rows)
}

// CountChatbotTriggersByUser returns the user's trigger count, compared
// against the plan's MaxChatbotTriggers limit.
func (db *DB) CountChatbotTriggersByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chatbot_triggers WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count chatbot triggers: %w", err)
	}
	return count, nil
}

// UpdateChatbotTrigger persists trigger changes.
func (db *DB) UpdateChatbotTrigger(ctx context.Context, trigger *models.ChatbotTrigger) error {
	trigger.UpdatedAt = time.Now().UTC()

	query := `UPDATE chatbot_triggers SET
		name = ?, match_type = ?, pattern = ?, case_sensitive = ?,
		priority = ?, response_template = ?, use_ai = ?, cooldown_seconds = ?,
		enabled = ?, updated_at = ?
	WHERE id = ?`

	result, err := db.conn.ExecContext(ctx, query,
		trigger.Name, trigger.MatchType, trigger.Pattern, trigger.CaseSensitive,
		trigger.Priority, trigger.ResponseTemplate, trigger.UseAI,
		int64(trigger.Cooldown/time.Second), trigger.Enabled,
		trigger.UpdatedAt, trigger.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update chatbot trigger: %w", err)
	}

	return requireRowsAffected(result, ErrTriggerNotFound)
}

// RecordTriggerFired bumps the hit counter and cooldown clock after a
// reply is posted.
func (db *DB) RecordTriggerFired(ctx context.Context, id string, firedAt time.Time) error {
	query := `UPDATE chatbot_triggers SET
		hit_count = hit_count + 1, last_fired_at = ?, updated_at = ?
	WHERE id = ?`

	result, err := db.conn.ExecContext(ctx, query, firedAt.UTC(), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to record trigger firing: %w", err)
	}
	return requireRowsAffected(result, ErrTriggerNotFound)
}

// DeleteChatbotTrigger removes a trigger. Its replies stay for history.
func (db *DB) DeleteChatbotTrigger(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM chatbot_triggers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete chatbot trigger: %w", err)
	}
	return requireRowsAffected(result, ErrTriggerNotFound)
}

const triggerSelectColumns = `SELECT
	id, user_id, channel_id, name, match_type, pattern, case_sensitive,
	priority, response_template, use_ai, cooldown_seconds, enabled,
	hit_count, last_fired_at, created_at, updated_at`

func scanTrigger(row *sql.Row) (*models.ChatbotTrigger, error) {
	var trigger models.ChatbotTrigger
	var cooldownSeconds int64
	var lastFiredAt sql.NullTime

	err := row.Scan(
		&trigger.ID, &trigger.UserID, &trigger.ChannelID, &trigger.Name,
		&trigger.MatchType, &trigger.Pattern, &trigger.CaseSensitive,
		&trigger.Priority, &trigger.ResponseTemplate, &trigger.UseAI,
		&cooldownSeconds, &trigger.Enabled, &trigger.HitCount, &lastFiredAt,
		&trigger.CreatedAt, &trigger.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTriggerNotFound
		}
		return nil, fmt.Errorf("failed to scan chatbot trigger: %w", err)
	}

	trigger.Cooldown = time.Duration(cooldownSeconds) * time.Second
	if lastFiredAt.Valid {
		trigger.LastFiredAt = &lastFiredAt.Time
	}
	return &trigger, nil
}

func scanTriggerRows(rows *sql.Rows) (*models.ChatbotTrigger, error) {
	var trigger models.ChatbotTrigger
	var cooldownSeconds int64
	var lastFiredAt sql.NullTime

	err := rows.Scan(
		&trigger.ID, &trigger.UserID, &trigger.ChannelID, &trigger.Name,
		&trigger.MatchType, &trigger.Pattern, &trigger.CaseSensitive,
		&trigger.Priority, &trigger.ResponseTemplate, &trigger.UseAI,
		&cooldownSeconds, &trigger.Enabled, &trigger.HitCount, &lastFiredAt,
		&trigger.CreatedAt, &trigger.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	trigger.Cooldown = time.Duration(cooldownSeconds) * time.Second
	if lastFiredAt.Valid {
		trigger.LastFiredAt = &lastFiredAt.Time
	}
	return &trigger, nil
}

func collectTriggers(rows *sql.Rows) ([]models.ChatbotTrigger, error) {
	triggers := make([]models.ChatbotTrigger, 0)
	for rows.Next() {
		trigger, err := scanTriggerRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chatbot trigger: %w", err)
		}
		triggers = append(triggers, *trigger)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chatbot triggers: %w", err)
	}

	return triggers, nil
}

// --- Chatbot replies ---

// CreateChatbotReply records a posted (or failed) reply.
func (db *DB) CreateChatbotReply(ctx context.Context, reply *models.ChatbotReply) error {
	if reply.ID == uuid.Nil {
		reply.ID = uuid.New()
	}
	if reply.CreatedAt.IsZero() {
		reply.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO chatbot_replies (
		id, trigger_id, channel_id, comment_id, reply_comment_id,
		response_text, failed, failure_reason, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.conn.ExecContext(ctx, query,
		reply.ID, reply.TriggerID, reply.ChannelID, reply.CommentID,
		reply.ReplyCommentID, reply.ResponseText, reply.Failed,
		reply.FailureReason, reply.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create chatbot reply: %w", err)
	}

	return nil
}

// HasReplyForComment reports whether any trigger already replied to the
// comment. At most one reply is posted per comment across all triggers.
func (db *DB) HasReplyForComment(ctx context.Context, commentID string) (bool, error) {
	var count int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chatbot_replies WHERE comment_id = ? AND failed = false`,
		commentID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check reply existence: %w", err)
	}
	return count > 0, nil
}

// ListRepliesByChannel retrieves a channel's posted replies, newest first.
func (db *DB) ListRepliesByChannel(ctx context.Context, channelID string, limit, offset int) ([]models.ChatbotReply, error) {
	query := `SELECT
		id, trigger_id, channel_id, comment_id, reply_comment_id,
		response_text, failed, failure_reason, created_at
	FROM chatbot_replies
	WHERE channel_id = ?
	ORDER BY created_at DESC
	LIMIT ? OFFSET ?`

	rows, err := db.conn.QueryContext(ctx, query, channelID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list chatbot replies: %w", err)
	}
	defer rows.Close()

	replies := make([]models.ChatbotReply, 0)
	for rows.Next() {
		var reply models.ChatbotReply
		var replyCommentID, failureReason sql.NullString

		err := rows.Scan(
			&reply.ID, &reply.TriggerID, &reply.ChannelID, &reply.CommentID,
			&replyCommentID, &reply.ResponseText, &reply.Failed,
			&failureReason, &reply.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chatbot reply: %w", err)
		}

		if replyCommentID.Valid {
			reply.ReplyCommentID = &replyCommentID.String
		}
		if failureReason.Valid {
			reply.FailureReason = &failureReason.String
		}
		replies = append(replies, reply)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chatbot replies: %w", err)
	}

	return replies, nil
}
