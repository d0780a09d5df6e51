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

func seedTestNotification(t *testing.T, db *DB, userID uuid.UUID, ntype, severity string) *models.Notification {
	t.Helper()

	n := models.NewNotification(userID, ntype, severity, "Title", "Body")
	if err := db.CreateNotification(context.Background(), n); err != nil {
		t.Fatalf("Failed to seed notification: %v", err)
	}
	return n
}

func TestCreateNotification(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "notified")

	dedupe := "stream.failed:ev-1"
	resType := "event"
	resID := uuid.NewString()
	n := models.NewNotification(user.ID, models.NotificationTypeStreamFailed, models.SeverityCritical, "Stream failed", "Broadcast could not start")
	n.DedupeKey = &dedupe
	n.ResourceType = &resType
	n.ResourceID = &resID

	if err := db.CreateNotification(ctx, n); err != nil {
		t.Fatalf("CreateNotification() error = %v", err)
	}

	got, err := db.GetNotification(ctx, n.ID.String())
	if err != nil {
		t.Fatalf("GetNotification() error = %v", err)
	}
	if got.Status != models.NotificationStatusPending {
		t.Errorf("status = %s, want pending", got.Status)
	}
	if got.DedupeKey == nil || *got.DedupeKey != dedupe {
		t.Errorf("dedupe key = %v, want %s", got.DedupeKey, dedupe)
	}
	if got.ResourceType == nil || *got.ResourceType != "event" {
		t.Errorf("resource type = %v, want event", got.ResourceType)
	}
}

func TestHasPendingNotificationWithKey(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "deduper")

	dedupe := "quota.warning:channels"
	n := models.NewNotification(user.ID, models.NotificationTypeQuotaWarning, models.SeverityWarning, "80% of channels", "Approaching limit")
	n.DedupeKey = &dedupe
	if err := db.CreateNotification(ctx, n); err != nil {
		t.Fatalf("CreateNotification() error = %v", err)
	}

	has, err := db.HasPendingNotificationWithKey(ctx, user.ID.String(), dedupe)
	if err != nil {
		t.Fatalf("HasPendingNotificationWithKey() error = %v", err)
	}
	if !has {
		t.Error("pending notification with key not found")
	}

	has, err = db.HasPendingNotificationWithKey(ctx, user.ID.String(), "other-key")
	if err != nil {
		t.Fatalf("HasPendingNotificationWithKey() error = %v", err)
	}
	if has {
		t.Error("reported pending notification for unused key")
	}

	// Sent notifications no longer suppress new ones with the same key.
	if err := db.MarkNotificationsSent(ctx, []string{n.ID.String()}, time.Now().UTC()); err != nil {
		t.Fatalf("MarkNotificationsSent() error = %v", err)
	}
	has, err = db.HasPendingNotificationWithKey(ctx, user.ID.String(), dedupe)
	if err != nil {
		t.Fatalf("HasPendingNotificationWithKey() error = %v", err)
	}
	if has {
		t.Error("sent notification still suppresses its dedupe key")
	}
}

func TestListNotificationsByUser(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "reader")

	first := seedTestNotification(t, db, user.ID, models.NotificationTypeStreamStarting, models.SeverityInfo)
	seedTestNotification(t, db, user.ID, models.NotificationTypeStrikeIssued, models.SeverityWarning)
	seedTestNotification(t, db, user.ID, models.NotificationTypeModerationHit, models.SeverityInfo)

	all, err := db.ListNotificationsByUser(ctx, user.ID.String(), false, 10, 0)
	if err != nil {
		t.Fatalf("ListNotificationsByUser() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListNotificationsByUser() returned %d, want 3", len(all))
	}

	if err := db.MarkNotificationRead(ctx, first.ID.String(), user.ID.String()); err != nil {
		t.Fatalf("MarkNotificationRead() error = %v", err)
	}

	unread, err := db.ListNotificationsByUser(ctx, user.ID.String(), true, 10, 0)
	if err != nil {
		t.Fatalf("ListNotificationsByUser(unread) error = %v", err)
	}
	if len(unread) != 2 {
		t.Errorf("unread count = %d, want 2", len(unread))
	}

	count, err := db.CountUnreadNotifications(ctx, user.ID.String())
	if err != nil {
		t.Fatalf("CountUnreadNotifications() error = %v", err)
	}
	if count != 2 {
		t.Errorf("CountUnreadNotifications() = %d, want 2", count)
	}
}

func TestMarkNotificationRead(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "marker")
	n := seedTestNotification(t, db, user.ID, models.NotificationTypeStreamStarting, models.SeverityInfo)

	if err := db.MarkNotificationRead(ctx, n.ID.String(), user.ID.String()); err != nil {
		t.Fatalf("MarkNotificationRead() error = %v", err)
	}

	// Marking an already-read notification is a no-op, not an error.
	if err := db.MarkNotificationRead(ctx, n.ID.String(), user.ID.String()); err != nil {
		t.Errorf("MarkNotificationRead() second call error = %v", err)
	}

	// A missing notification is an error.
	err := db.MarkNotificationRead(ctx, uuid.NewString(), user.ID.String())
	if !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("MarkNotificationRead() missing error = %v, want %v", err, ErrNotificationNotFound)
	}
}

func TestMarkAllNotificationsRead(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "bulk")

	for i := 0; i < 3; i++ {
		seedTestNotification(t, db, user.ID, models.NotificationTypeModerationHit, models.SeverityInfo)
	}

	affected, err := db.MarkAllNotificationsRead(ctx, user.ID.String())
	if err != nil {
		t.Fatalf("MarkAllNotificationsRead() error = %v", err)
	}
	if affected != 3 {
		t.Errorf("MarkAllNotificationsRead() = %d, want 3", affected)
	}

	count, _ := db.CountUnreadNotifications(ctx, user.ID.String())
	if count != 0 {
		t.Errorf("unread after bulk mark = %d, want 0", count)
	}
}

func TestNotificationBatchLifecycle(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "batched")

	a := seedTestNotification(t, db, user.ID, models.NotificationTypeModerationHit, models.SeverityInfo)
	b := seedTestNotification(t, db, user.ID, models.NotificationTypeModerationHit, models.SeverityInfo)

	pending, err := db.ListPendingNotifications(ctx, time.Now().UTC().Add(time.Minute), 50)
	if err != nil {
		t.Fatalf("ListPendingNotifications() error = %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}

	batch := &models.NotificationBatch{
		UserID:      user.ID,
		Type:        models.NotificationTypeModerationHit,
		WindowStart: time.Now().UTC().Add(-5 * time.Minute),
		WindowEnd:   time.Now().UTC(),
		Count:       2,
	}
	if err := db.CreateNotificationBatch(ctx, batch); err != nil {
		t.Fatalf("CreateNotificationBatch() error = %v", err)
	}

	ids := []string{a.ID.String(), b.ID.String()}
	if err := db.AssignNotificationsToBatch(ctx, ids, batch.ID); err != nil {
		t.Fatalf("AssignNotificationsToBatch() error = %v", err)
	}

	gotA, _ := db.GetNotification(ctx, a.ID.String())
	if gotA.Status != models.NotificationStatusBatched {
		t.Errorf("status after batching = %s, want batched", gotA.Status)
	}
	if gotA.BatchID == nil || *gotA.BatchID != batch.ID {
		t.Errorf("batch ID = %v, want %v", gotA.BatchID, batch.ID)
	}

	// Batched notifications are no longer picked up by the batcher.
	pending, _ = db.ListPendingNotifications(ctx, time.Now().UTC().Add(time.Minute), 50)
	if len(pending) != 0 {
		t.Errorf("pending after batching = %d, want 0", len(pending))
	}

	sentAt := time.Now().UTC()
	if err := db.MarkNotificationsSent(ctx, ids, sentAt); err != nil {
		t.Fatalf("MarkNotificationsSent() error = %v", err)
	}
	if err := db.MarkBatchSent(ctx, batch.ID.String(), sentAt); err != nil {
		t.Fatalf("MarkBatchSent() error = %v", err)
	}

	gotA, _ = db.GetNotification(ctx, a.ID.String())
	if gotA.Status != models.NotificationStatusSent {
		t.Errorf("status after send = %s, want sent", gotA.Status)
	}
	if gotA.SentAt == nil {
		t.Error("SentAt not stamped")
	}
}

func TestListUnescalatedCritical(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "escalated")

	critical := seedTestNotification(t, db, user.ID, models.NotificationTypeStreamFailed, models.SeverityCritical)
	seedTestNotification(t, db, user.ID, models.NotificationTypeStreamStarting, models.SeverityInfo)

	since := time.Now().UTC().Add(-time.Hour)
	got, err := db.ListUnescalatedCritical(ctx, since)
	if err != nil {
		t.Fatalf("ListUnescalatedCritical() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != critical.ID {
		t.Fatalf("ListUnescalatedCritical() returned %d, want the critical one", len(got))
	}

	if err := db.MarkNotificationsEscalated(ctx, []string{critical.ID.String()}); err != nil {
		t.Fatalf("MarkNotificationsEscalated() error = %v", err)
	}

	// Escalation happens at most once per notification.
	got, _ = db.ListUnescalatedCritical(ctx, since)
	if len(got) != 0 {
		t.Errorf("escalated notification listed again: %d", len(got))
	}
}

func TestNotificationPreferences(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "prefs")

	t.Run("no preference returns nil", func(t *testing.T) {
		pref, err := db.GetNotificationPreference(ctx, user.ID.String(), models.NotificationTypeModerationHit)
		if err != nil {
			t.Fatalf("GetNotificationPreference() error = %v", err)
		}
		if pref != nil {
			t.Errorf("preference = %+v, want nil", pref)
		}
	})

	// User default applies to types without a specific row.
	wildcard := &models.NotificationPreference{
		UserID: user.ID,
		Type:   "*",
		InApp:  true,
		Email:  false,
	}
	if err := db.UpsertNotificationPreference(ctx, wildcard); err != nil {
		t.Fatalf("UpsertNotificationPreference(*) error = %v", err)
	}

	specific := &models.NotificationPreference{
		UserID: user.ID,
		Type:   models.NotificationTypeModerationHit,
		InApp:  true,
		Email:  true,
		Muted:  true,
	}
	if err := db.UpsertNotificationPreference(ctx, specific); err != nil {
		t.Fatalf("UpsertNotificationPreference(specific) error = %v", err)
	}

	t.Run("specific row wins over wildcard", func(t *testing.T) {
		pref, err := db.GetNotificationPreference(ctx, user.ID.String(), models.NotificationTypeModerationHit)
		if err != nil {
			t.Fatalf("GetNotificationPreference() error = %v", err)
		}
		if pref == nil {
			t.Fatal("preference not found")
		}
		if !pref.Muted {
			t.Error("specific preference not returned (wildcard won)")
		}
	})

	t.Run("wildcard covers other types", func(t *testing.T) {
		pref, err := db.GetNotificationPreference(ctx, user.ID.String(), models.NotificationTypeStrikeIssued)
		if err != nil {
			t.Fatalf("GetNotificationPreference() error = %v", err)
		}
		if pref == nil {
			t.Fatal("wildcard preference not returned")
		}
		if pref.Type != "*" {
			t.Errorf("preference type = %s, want *", pref.Type)
		}
		if pref.Email {
			t.Error("wildcard email setting wrong")
		}
	})

	t.Run("upsert replaces existing", func(t *testing.T) {
		specific.Muted = false
		if err := db.UpsertNotificationPreference(ctx, specific); err != nil {
			t.Fatalf("UpsertNotificationPreference() re-upsert error = %v", err)
		}
		pref, _ := db.GetNotificationPreference(ctx, user.ID.String(), models.NotificationTypeModerationHit)
		if pref.Muted {
			t.Error("upsert did not replace muted flag")
		}

		prefs, err := db.ListNotificationPreferences(ctx, user.ID.String())
		if err != nil {
			t.Fatalf("ListNotificationPreferences() error = %v", err)
		}
		if len(prefs) != 2 {
			t.Errorf("preferences = %d, want 2 (no duplicates)", len(prefs))
		}
	})
}
