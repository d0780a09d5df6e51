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

// CreateModerationRule inserts a moderation rule. Pattern validity
// (keyword length, regex compilation) is checked by the moderation
// service before persistence.
func (db *DB) CreateModerationRule(ctx context.Context, rule *models.ModerationRule) error {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now().UTC()
	}
	rule.UpdatedAt = rule.CreatedAt

	query := `INSERT INTO moderation_rules (
		id, user_id, channel_id, name, rule_type, pattern, action,
		severity, enabled, hit_count, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.conn.ExecContext(ctx, query,
		rule.ID, rule.UserID, rule.ChannelID, rule.Name, rule.RuleType,
		rule.Pattern, rule.Action, rule.Severity, rule.Enabled,
		rule.HitCount, rule.CreatedAt, rule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create moderation rule: %w", err)
	}

	return nil
}

// GetModerationRule retrieves a rule by ID.
func (db *DB) GetModerationRule(ctx context.Context, id string) (*models.ModerationRule, error) {
	query := moderationRuleSelectColumns + ` FROM moderation_rules WHERE id = ?`
	row := db.conn.QueryRowContext(ctx, query, id)
	return scanModerationRule(row)
}

// ListModerationRulesByUser retrieves a user's rules.
func (db *DB) ListModerationRulesByUser(ctx context.Context, userID string) ([]models.ModerationRule, error) {
	query := moderationRuleSelectColumns + ` FROM moderation_rules
	WHERE user_id = ? ORDER BY created_at ASC`

	rows, err := db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list moderation rules: %w", err)
	}
	defer rows.Close()

	return collectModerationRules(rows)
}

// ListEnabledRulesForChannel retrieves the rules that apply to a channel:
// channel-scoped rules plus the owner's account-wide rules (NULL
// channel_id). The scanner compiles these into its matcher.
func (db *DB) ListEnabledRulesForChannel(ctx context.Context, userID, channelID string) ([]models.ModerationRule, error) {
	query := moderationRuleSelectColumns + ` FROM moderation_rules
	WHERE user_id = ? AND enabled = true
	  AND (channel_id IS NULL OR channel_id = ?)
	ORDER BY created_at ASC`

	rows, err := db.conn.QueryContext(ctx, query, userID, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enabled rules: %w", err)
	}
	defer rows.Close()

	return collectModerationRules(rows)
}

// CountModerationRulesByUser returns the user's rule count, compared
// against the plan's MaxModerationRules limit.
func (db *DB) CountModerationRulesByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM moderation_rules WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count moderation rules: %w", err)
	}
	return count, nil
}

// UpdateModerationRule persists rule changes.
func (db *DB) UpdateModerationRule(ctx context.Context, rule *models.ModerationRule) error {
	rule.UpdatedAt = time.Now().UTC()

	query := `UPDATE moderation_rules SET
		name = ?, rule_type = ?, pattern = ?, action = ?, severity = ?,
		enabled = ?, updated_at = ?
	WHERE id = ?`

	result, err := db.conn.ExecContext(ctx, query,
		rule.Name, rule.RuleType, rule.Pattern, rule.Action, rule.Severity,
		rule.Enabled, rule.UpdatedAt, rule.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update moderation rule: %w", err)
	}

	return requireRowsAffected(result, ErrRuleNotFound)
}

// IncrementRuleHitCounts bumps hit counters for the rules that matched a
// scan pass. One statement per rule keeps this simple; scans batch their
// increments so the per-comment cost stays off the hot path.
func (db *DB) IncrementRuleHitCounts(ctx context.Context, ruleIDs map[string]int64) error {
	for id, hits := range ruleIDs {
		if hits <= 0 {
			continue
		}
		_, err := db.conn.ExecContext(ctx,
			`UPDATE moderation_rules SET hit_count = hit_count + ? WHERE id = ?`, hits, id)
		if err != nil {
			return fmt.Errorf("failed to increment rule hit count: %w", err)
		}
	}
	return nil
}

// DeleteModerationRule removes a rule. Its violations stay for history.
func (db *DB) DeleteModerationRule(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM moderation_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete moderation rule: %w", err)
	}
	return requireRowsAffected(result, ErrRuleNotFound)
}

const moderationRuleSelectColumns = `SELECT
	id, user_id, channel_id, name, rule_type, pattern, action,
	severity, enabled, hit_count, created_at, updated_at`

func scanModerationRule(row *sql.Row) (*models.ModerationRule, error) {
	var rule models.ModerationRule
	var channelID uuid.NullUUID

	err := row.Scan(
		&rule.ID, &rule.UserID, &channelID, &rule.Name, &rule.RuleType,
		&rule.Pattern, &rule.Action, &rule.Severity, &rule.Enabled,
		&rule.HitCount, &rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("failed to scan moderation rule: %w", err)
	}

	if channelID.Valid {
		rule.ChannelID = &channelID.UUID
	}
	return &rule, nil
}

func scanModerationRuleRows(rows *sql.Rows) (*models.ModerationRule, error) {
	var rule models.ModerationRule
	var channelID uuid.NullUUID

	err := rows.Scan(
		&rule.ID, &rule.UserID, &channelID, &rule.Name, &rule.RuleType,
		&rule.Pattern, &rule.Action, &rule.Severity, &rule.Enabled,
		&rule.HitCount, &rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if channelID.Valid {
		rule.ChannelID = &channelID.UUID
	}
	return &rule, nil
}

func collectModerationRules(rows *sql.Rows) ([]models.ModerationRule, error) {
	rules := make([]models.ModerationRule, 0)
	for rows.Next() {
		rule, err := scanModerationRuleRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan moderation rule: %w", err)
		}
		rules = append(rules, *rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating moderation rules: %w", err)
	}

	return rules, nil
}

// --- Violations ---

// CreateViolation records a moderation hit.
func (db *DB) CreateViolation(ctx context.Context, v *models.ModerationViolation) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	if v.ReviewStatus == "" {
		v.ReviewStatus = models.ReviewStatusPending
	}

	query := `INSERT INTO moderation_violations (
		id, rule_id, channel_id, comment_id, matched_text, action_taken,
		review_status, reviewed_by, reviewed_at, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.conn.ExecContext(ctx, query,
		v.ID, v.RuleID, v.ChannelID, v.CommentID, v.MatchedText,
		v.ActionTaken, v.ReviewStatus, v.ReviewedBy, nullableUTC(v.ReviewedAt),
		v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create violation: %w", err)
	}

	return nil
}

// GetViolation retrieves a violation by ID.
func (db *DB) GetViolation(ctx context.Context, id string) (*models.ModerationViolation, error) {
	query := violationSelectColumns + ` FROM moderation_violations WHERE id = ?`
	row := db.conn.QueryRowContext(ctx, query, id)

	v, err := scanViolationRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrViolationNotFound
		}
		return nil, err
	}
	return v, nil
}

// ListViolationsByChannel retrieves a channel's violations, newest first,
// optionally filtered by review status.
func (db *DB) ListViolationsByChannel(ctx context.Context, channelID string, reviewStatus string, limit, offset int) ([]models.ModerationViolation, error) {
	query := violationSelectColumns + ` FROM moderation_violations WHERE channel_id = ?`
	args := []any{channelID}

	if reviewStatus != "" {
		query += ` AND review_status = ?`
		args = append(args, reviewStatus)
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list violations: %w", err)
	}
	defer rows.Close()

	violations := make([]models.ModerationViolation, 0)
	for rows.Next() {
		v, err := scanViolationRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan violation: %w", err)
		}
		violations = append(violations, *v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating violations: %w", err)
	}

	return violations, nil
}

// ReviewViolation records a manual review decision.
func (db *DB) ReviewViolation(ctx context.Context, id string, reviewStatus string, reviewedBy string) error {
	query := `UPDATE moderation_violations SET
		review_status = ?, reviewed_by = ?, reviewed_at = ?
	WHERE id = ?`

	result, err := db.conn.ExecContext(ctx, query,
		reviewStatus, reviewedBy, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to review violation: %w", err)
	}
	return requireRowsAffected(result, ErrViolationNotFound)
}

const violationSelectColumns = `SELECT
	id, rule_id, channel_id, comment_id, matched_text, action_taken,
	review_status, reviewed_by, reviewed_at, created_at`

func scanViolationRow(row *sql.Row) (*models.ModerationViolation, error) {
	var v models.ModerationViolation
	var reviewedBy sql.NullString
	var reviewedAt sql.NullTime

	err := row.Scan(
		&v.ID, &v.RuleID, &v.ChannelID, &v.CommentID, &v.MatchedText,
		&v.ActionTaken, &v.ReviewStatus, &reviewedBy, &reviewedAt, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if reviewedBy.Valid {
		v.ReviewedBy = &reviewedBy.String
	}
	if reviewedAt.Valid {
		v.ReviewedAt = &reviewedAt.Time
	}
	return &v, nil
}

func scanViolationRows(rows *sql.Rows) (*models.ModerationViolation, error) {
	var v models.ModerationViolation
	var reviewedBy sql.NullString
	var reviewedAt sql.NullTime

	err := rows.Scan(
		&v.ID, &v.RuleID, &v.ChannelID, &v.CommentID, &v.MatchedText,
		&v.ActionTaken, &v.ReviewStatus, &reviewedBy, &reviewedAt, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if reviewedBy.Valid {
		v.ReviewedBy = &reviewedBy.String
	}
	if reviewedAt.Valid {
		v.ReviewedAt = &reviewedAt.Time
	}
	return &v, nil
}
