// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tubefleet/tubefleet/internal/models"
)

func TestCreateModerationRule(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "moderator")

	rule := models.NewModerationRule(user.ID, "No spam", models.RuleTypeKeyword, "buy followers", models.ModerationActionHold)
	if err := db.CreateModerationRule(ctx, rule); err != nil {
		t.Fatalf("CreateModerationRule() error = %v", err)
	}

	got, err := db.GetModerationRule(ctx, rule.ID.String())
	if err != nil {
		t.Fatalf("GetModerationRule() error = %v", err)
	}
	if got.Pattern != "buy followers" {
		t.Errorf("pattern = %s, want buy followers", got.Pattern)
	}
	if got.ChannelID != nil {
		t.Errorf("channel scope = %v, want nil (all channels)", got.ChannelID)
	}
	if !got.Enabled {
		t.Error("new rule not enabled")
	}
}

func TestListEnabledRulesForChannel(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "scoper")
	channelA := seedTestChannel(t, db, user.ID, "UCscopeA")
	channelB := seedTestChannel(t, db, user.ID, "UCscopeB")

	global := models.NewModerationRule(user.ID, "Global", models.RuleTypeKeyword, "scam", models.ModerationActionFlag)
	if err := db.CreateModerationRule(ctx, global); err != nil {
		t.Fatalf("CreateModerationRule() error = %v", err)
	}

	scoped := models.NewModerationRule(user.ID, "Only A", models.RuleTypeKeyword, "spoilers", models.ModerationActionDelete)
	scoped.ChannelID = &channelA.ID
	if err := db.CreateModerationRule(ctx, scoped); err != nil {
		t.Fatalf("CreateModerationRule() error = %v", err)
	}

	disabled := models.NewModerationRule(user.ID, "Off", models.RuleTypeKeyword, "off", models.ModerationActionFlag)
	disabled.Enabled = false
	if err := db.CreateModerationRule(ctx, disabled); err != nil {
		t.Fatalf("CreateModerationRule() error = %v", err)
	}

	forA, err := db.ListEnabledRulesForChannel(ctx, user.ID.String(), channelA.ID.String())
	if err != nil {
		t.Fatalf("ListEnabledRulesForChannel(A) error = %v", err)
	}
	if len(forA) != 2 {
		t.Errorf("rules for channel A = %d, want 2 (global + scoped)", len(forA))
	}

	forB, err := db.ListEnabledRulesForChannel(ctx, user.ID.String(), channelB.ID.String())
	if err != nil {
		t.Fatalf("ListEnabledRulesForChannel(B) error = %v", err)
	}
	if len(forB) != 1 {
		t.Errorf("rules for channel B = %d, want 1 (global only)", len(forB))
	}
	if forB[0].ID != global.ID {
		t.Errorf("channel B rule = %v, want global %v", forB[0].ID, global.ID)
	}
}

func TestIncrementRuleHitCounts(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "counter")

	ruleA := models.NewModerationRule(user.ID, "A", models.RuleTypeKeyword, "a", models.ModerationActionFlag)
	ruleB := models.NewModerationRule(user.ID, "B", models.RuleTypeKeyword, "b", models.ModerationActionFlag)
	for _, r := range []*models.ModerationRule{ruleA, ruleB} {
		if err := db.CreateModerationRule(ctx, r); err != nil {
			t.Fatalf("CreateModerationRule() error = %v", err)
		}
	}

	hits := map[string]int64{
		ruleA.ID.String(): 3,
		ruleB.ID.String(): 1,
	}
	if err := db.IncrementRuleHitCounts(ctx, hits); err != nil {
		t.Fatalf("IncrementRuleHitCounts() error = %v", err)
	}

	gotA, _ := db.GetModerationRule(ctx, ruleA.ID.String())
	if gotA.HitCount != 3 {
		t.Errorf("rule A hit count = %d, want 3", gotA.HitCount)
	}

	// Counters accumulate across scan batches.
	if err := db.IncrementRuleHitCounts(ctx, map[string]int64{ruleA.ID.String(): 2}); err != nil {
		t.Fatalf("IncrementRuleHitCounts() second batch error = %v", err)
	}
	gotA, _ = db.GetModerationRule(ctx, ruleA.ID.String())
	if gotA.HitCount != 5 {
		t.Errorf("rule A hit count after second batch = %d, want 5", gotA.HitCount)
	}
}

func TestViolationLifecycle(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "reviewer")
	channel := seedTestChannel(t, db, user.ID, "UCreview")

	rule := models.NewModerationRule(user.ID, "Rule", models.RuleTypeKeyword, "bad", models.ModerationActionHold)
	if err := db.CreateModerationRule(ctx, rule); err != nil {
		t.Fatalf("CreateModerationRule() error = %v", err)
	}

	violation := &models.ModerationViolation{
		RuleID:      rule.ID,
		ChannelID:   channel.ID,
		CommentID:   "yt-comment-1",
		MatchedText: "bad",
		ActionTaken: models.ModerationActionHold,
	}
	if err := db.CreateViolation(ctx, violation); err != nil {
		t.Fatalf("CreateViolation() error = %v", err)
	}

	got, err := db.GetViolation(ctx, violation.ID.String())
	if err != nil {
		t.Fatalf("GetViolation() error = %v", err)
	}
	if got.ReviewStatus != models.ReviewStatusPending {
		t.Errorf("review status = %s, want pending", got.ReviewStatus)
	}

	if err := db.ReviewViolation(ctx, violation.ID.String(), models.ReviewStatusOverturned, user.ID.String()); err != nil {
		t.Fatalf("ReviewViolation() error = %v", err)
	}
	got, _ = db.GetViolation(ctx, violation.ID.String())
	if got.ReviewStatus != models.ReviewStatusOverturned {
		t.Errorf("review status = %s, want overturned", got.ReviewStatus)
	}
	if got.ReviewedBy == nil || *got.ReviewedBy != user.ID.String() {
		t.Errorf("reviewed by = %v, want %s", got.ReviewedBy, user.ID)
	}
	if got.ReviewedAt == nil {
		t.Error("ReviewedAt not stamped")
	}

	pending, err := db.ListViolationsByChannel(ctx, channel.ID.String(), models.ReviewStatusPending, 10, 0)
	if err != nil {
		t.Fatalf("ListViolationsByChannel() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending violations = %d, want 0 after review", len(pending))
	}

	all, err := db.ListViolationsByChannel(ctx, channel.ID.String(), "", 10, 0)
	if err != nil {
		t.Fatalf("ListViolationsByChannel(all) error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("all violations = %d, want 1", len(all))
	}

	if _, err := db.GetViolation(ctx, uuid.NewString()); !errors.Is(err, ErrViolationNotFound) {
		t.Errorf("GetViolation() missing error = %v, want %v", err, ErrViolationNotFound)
	}
}

func seedTestComment(t *testing.T, db *DB, channelID uuid.UUID, youtubeID, text string) *models.Comment {
	t.Helper()

	comment := &models.Comment{
		ChannelID:        channelID,
		YouTubeCommentID: youtubeID,
		VideoID:          "vid-1",
		AuthorChannelID:  "UCauthor",
		AuthorName:       "Viewer",
		Text:             text,
		Status:           models.CommentStatusPublished,
		PublishedAt:      time.Now().UTC().Add(-time.Hour),
		FetchedAt:        time.Now().UTC(),
	}
	if err := db.UpsertComment(context.Background(), comment); err != nil {
		t.Fatalf("Failed to seed comment %s: %v", youtubeID, err)
	}
	return comment
}

func TestUpsertComment(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "commenter")
	channel := seedTestChannel(t, db, user.ID, "UCcomments")

	comment := seedTestComment(t, db, channel.ID, "yt-c1", "first version")

	if err := db.MarkCommentsScanned(ctx, []string{comment.ID.String()}); err != nil {
		t.Fatalf("MarkCommentsScanned() error = %v", err)
	}

	t.Run("unchanged text keeps scanned flag", func(t *testing.T) {
		same := &models.Comment{
			ChannelID:        channel.ID,
			YouTubeCommentID: "yt-c1",
			VideoID:          "vid-1",
			AuthorChannelID:  "UCauthor",
			AuthorName:       "Viewer",
			Text:             "first version",
			Status:           models.CommentStatusPublished,
			PublishedAt:      comment.PublishedAt,
			FetchedAt:        time.Now().UTC(),
		}
		if err := db.UpsertComment(ctx, same); err != nil {
			t.Fatalf("UpsertComment() error = %v", err)
		}

		got, _ := db.GetCommentByYouTubeID(ctx, "yt-c1")
		if !got.Scanned {
			t.Error("re-sync of unchanged comment reset the scanned flag")
		}
	})

	t.Run("edited text triggers rescan", func(t *testing.T) {
		edited := &models.Comment{
			ChannelID:        channel.ID,
			YouTubeCommentID: "yt-c1",
			VideoID:          "vid-1",
			AuthorChannelID:  "UCauthor",
			AuthorName:       "Viewer",
			Text:             "edited version",
			Status:           models.CommentStatusPublished,
			PublishedAt:      comment.PublishedAt,
			FetchedAt:        time.Now().UTC(),
		}
		if err := db.UpsertComment(ctx, edited); err != nil {
			t.Fatalf("UpsertComment() edited error = %v", err)
		}

		got, _ := db.GetCommentByYouTubeID(ctx, "yt-c1")
		if got.Scanned {
			t.Error("edited comment not queued for rescan")
		}
		if got.Text != "edited version" {
			t.Errorf("text = %s, want edited version", got.Text)
		}
	})
}

func TestListUnscannedComments(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "scanner")
	channel := seedTestChannel(t, db, user.ID, "UCscan")

	first := seedTestComment(t, db, channel.ID, "yt-s1", "one")
	seedTestComment(t, db, channel.ID, "yt-s2", "two")
	scanned := seedTestComment(t, db, channel.ID, "yt-s3", "three")

	if err := db.MarkCommentsScanned(ctx, []string{scanned.ID.String()}); err != nil {
		t.Fatalf("MarkCommentsScanned() error = %v", err)
	}

	got, err := db.ListUnscannedComments(ctx, channel.ID.String(), 10)
	if err != nil {
		t.Fatalf("ListUnscannedComments() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unscanned = %d, want 2", len(got))
	}
	// Oldest fetched first so the scan backlog drains in order.
	if got[0].ID != first.ID {
		t.Errorf("first unscanned = %v, want %v", got[0].ID, first.ID)
	}
}

func TestSetCommentStatus(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "holder")
	channel := seedTestChannel(t, db, user.ID, "UChold")
	seedTestComment(t, db, channel.ID, "yt-h1", "questionable")

	if err := db.SetCommentStatus(ctx, "yt-h1", models.CommentStatusHeld); err != nil {
		t.Fatalf("SetCommentStatus() error = %v", err)
	}

	got, _ := db.GetCommentByYouTubeID(ctx, "yt-h1")
	if got.Status != models.CommentStatusHeld {
		t.Errorf("status = %s, want heldForReview", got.Status)
	}

	if err := db.SetCommentStatus(ctx, "yt-missing", models.CommentStatusRejected); !errors.Is(err, ErrCommentNotFound) {
		t.Errorf("SetCommentStatus() missing error = %v, want %v", err, ErrCommentNotFound)
	}
}

func TestChatbotTriggerCooldownRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "botter")
	channel := seedTestChannel(t, db, user.ID, "UCbot")

	trigger := &models.ChatbotTrigger{
		UserID:           user.ID,
		ChannelID:        channel.ID,
		Name:             "Schedule question",
		MatchType:        models.MatchTypeContains,
		Pattern:          "when do you stream",
		ResponseTemplate: "Every Friday at 18:00 UTC!",
		Cooldown:         90 * time.Second,
		Enabled:          true,
		Priority:         5,
	}
	if err := db.CreateChatbotTrigger(ctx, trigger); err != nil {
		t.Fatalf("CreateChatbotTrigger() error = %v", err)
	}

	got, err := db.GetChatbotTrigger(ctx, trigger.ID.String())
	if err != nil {
		t.Fatalf("GetChatbotTrigger() error = %v", err)
	}
	if got.Cooldown != 90*time.Second {
		t.Errorf("cooldown = %v, want 90s", got.Cooldown)
	}
	if got.Priority != 5 {
		t.Errorf("priority = %d, want 5", got.Priority)
	}
}

func TestListTriggersByChannel(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "prioritizer")
	channel := seedTestChannel(t, db, user.ID, "UCprio")

	newTrigger := func(name string, priority int, enabled bool) *models.ChatbotTrigger {
		tr := &models.ChatbotTrigger{
			UserID:           user.ID,
			ChannelID:        channel.ID,
			Name:             name,
			MatchType:        models.MatchTypeExact,
			Pattern:          name,
			ResponseTemplate: "reply",
			Enabled:          enabled,
			Priority:         priority,
		}
		if err := db.CreateChatbotTrigger(ctx, tr); err != nil {
			t.Fatalf("CreateChatbotTrigger(%s) error = %v", name, err)
		}
		return tr
	}

	low := newTrigger("low", 1, true)
	high := newTrigger("high", 10, true)
	newTrigger("off", 20, false)

	enabled, err := db.ListTriggersByChannel(ctx, channel.ID.String(), true)
	if err != nil {
		t.Fatalf("ListTriggersByChannel() error = %v", err)
	}
	if len(enabled) != 2 {
		t.Fatalf("enabled triggers = %d, want 2", len(enabled))
	}
	// Highest priority first so the matcher takes the strongest rule.
	if enabled[0].ID != high.ID || enabled[1].ID != low.ID {
		t.Errorf("trigger order = [%s %s], want [high low]", enabled[0].Name, enabled[1].Name)
	}

	all, err := db.ListTriggersByChannel(ctx, channel.ID.String(), false)
	if err != nil {
		t.Fatalf("ListTriggersByChannel(all) error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all triggers = %d, want 3", len(all))
	}

	count, err := db.CountChatbotTriggersByUser(ctx, user.ID.String())
	if err != nil {
		t.Fatalf("CountChatbotTriggersByUser() error = %v", err)
	}
	if count != 3 {
		t.Errorf("CountChatbotTriggersByUser() = %d, want 3", count)
	}
}

func TestRecordTriggerFired(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "firer")
	channel := seedTestChannel(t, db, user.ID, "UCfire")

	trigger := &models.ChatbotTrigger{
		UserID:           user.ID,
		ChannelID:        channel.ID,
		Name:             "greet",
		MatchType:        models.MatchTypePrefix,
		Pattern:          "hello",
		ResponseTemplate: "hi!",
		Cooldown:         time.Minute,
		Enabled:          true,
	}
	if err := db.CreateChatbotTrigger(ctx, trigger); err != nil {
		t.Fatalf("CreateChatbotTrigger() error = %v", err)
	}

	firedAt := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	if err := db.RecordTriggerFired(ctx, trigger.ID.String(), firedAt); err != nil {
		t.Fatalf("RecordTriggerFired() error = %v", err)
	}

	got, _ := db.GetChatbotTrigger(ctx, trigger.ID.String())
	if got.HitCount != 1 {
		t.Errorf("hit count = %d, want 1", got.HitCount)
	}
	if got.LastFiredAt == nil || !got.LastFiredAt.Equal(firedAt) {
		t.Errorf("last fired = %v, want %v", got.LastFiredAt, firedAt)
	}

	// The cooldown gate works off the persisted timestamp.
	if !got.OnCooldown(firedAt.Add(30 * time.Second)) {
		t.Error("trigger not on cooldown 30s after firing")
	}
	if got.OnCooldown(firedAt.Add(2 * time.Minute)) {
		t.Error("trigger still on cooldown after it elapsed")
	}
}

func TestChatbotReplies(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "replier")
	channel := seedTestChannel(t, db, user.ID, "UCreply")

	trigger := &models.ChatbotTrigger{
		UserID:           user.ID,
		ChannelID:        channel.ID,
		Name:             "faq",
		MatchType:        models.MatchTypeContains,
		Pattern:          "faq",
		ResponseTemplate: "See the channel description.",
		Enabled:          true,
	}
	if err := db.CreateChatbotTrigger(ctx, trigger); err != nil {
		t.Fatalf("CreateChatbotTrigger() error = %v", err)
	}

	replyID := "yt-reply-1"
	reply := &models.ChatbotReply{
		TriggerID:      trigger.ID,
		ChannelID:      channel.ID,
		CommentID:      "yt-q1",
		ReplyCommentID: &replyID,
		ResponseText:   "See the channel description.",
	}
	if err := db.CreateChatbotReply(ctx, reply); err != nil {
		t.Fatalf("CreateChatbotReply() error = %v", err)
	}

	has, err := db.HasReplyForComment(ctx, "yt-q1")
	if err != nil {
		t.Fatalf("HasReplyForComment() error = %v", err)
	}
	if !has {
		t.Error("reply not found for comment")
	}

	has, _ = db.HasReplyForComment(ctx, "yt-q2")
	if has {
		t.Error("reply reported for comment without one")
	}

	t.Run("failed replies do not count", func(t *testing.T) {
		reason := "comments disabled"
		failed := &models.ChatbotReply{
			TriggerID:     trigger.ID,
			ChannelID:     channel.ID,
			CommentID:     "yt-q3",
			ResponseText:  "hello",
			Failed:        true,
			FailureReason: &reason,
		}
		if err := db.CreateChatbotReply(ctx, failed); err != nil {
			t.Fatalf("CreateChatbotReply(failed) error = %v", err)
		}

		has, err := db.HasReplyForComment(ctx, "yt-q3")
		if err != nil {
			t.Fatalf("HasReplyForComment() error = %v", err)
		}
		if has {
			t.Error("failed reply suppresses retry")
		}
	})

	replies, err := db.ListRepliesByChannel(ctx, channel.ID.String(), 10, 0)
	if err != nil {
		t.Fatalf("ListRepliesByChannel() error = %v", err)
	}
	if len(replies) != 2 {
		t.Errorf("replies = %d, want 2", len(replies))
	}
}
