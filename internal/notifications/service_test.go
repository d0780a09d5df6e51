// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package notifications

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tubefleet/tubefleet/internal/database"
	"github.com/tubefleet/tubefleet/internal/models"
)

// fakeStore implements Store and DispatcherStore in memory.
type fakeStore struct {
	mu sync.Mutex

	notifications map[uuid.UUID]*models.Notification
	batches       map[uuid.UUID]*models.NotificationBatch
	prefs         map[string]*models.NotificationPreference // userID|type
	users         map[uuid.UUID]*models.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		notifications: make(map[uuid.UUID]*models.Notification),
		batches:       make(map[uuid.UUID]*models.NotificationBatch),
		prefs:         make(map[string]*models.NotificationPreference),
		users:         make(map[uuid.UUID]*models.User),
	}
}

func (f *fakeStore) CreateNotification(_ context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *n
	f.notifications[n.ID] = &cp
	return nil
}

func (f *fakeStore) HasPendingNotificationWithKey(_ context.Context, userID, dedupeKey string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notifications {
		if n.UserID.String() == userID && n.Status == models.NotificationStatusPending &&
			n.DedupeKey != nil && *n.DedupeKey == dedupeKey {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) MarkNotificationsSent(_ context.Context, ids []string, sentAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		if n, ok := f.notifications[uuid.MustParse(id)]; ok {
			n.Status = models.NotificationStatusSent
			at := sentAt
			n.SentAt = &at
		}
	}
	return nil
}

func (f *fakeStore) GetNotification(_ context.Context, id string) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notifications[uuid.MustParse(id)]
	if !ok {
		return nil, database.ErrNotificationNotFound
	}
	cp := *n
	return &cp, nil
}

func (f *fakeStore) ListNotificationsByUser(_ context.Context, userID string, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.notifications {
		if n.UserID.String() != userID {
			continue
		}
		if unreadOnly && n.ReadAt != nil {
			continue
		}
		out = append(out, *n)
	}
	return out, nil
}

func (f *fakeStore) CountUnreadNotifications(_ context.Context, userID string) (int64, error) {
	list, _ := f.ListNotificationsByUser(context.Background(), userID, true, 0, 0)
	return int64(len(list)), nil
}

func (f *fakeStore) MarkNotificationRead(_ context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notifications[uuid.MustParse(id)]
	if !ok || n.UserID.String() != userID {
		return database.ErrNotificationNotFound
	}
	now := time.Now().UTC()
	n.ReadAt = &now
	return nil
}

func (f *fakeStore) MarkAllNotificationsRead(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	now := time.Now().UTC()
	for _, n := range f.notifications {
		if n.UserID.String() == userID && n.ReadAt == nil {
			n.ReadAt = &now
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) GetNotificationPreference(_ context.Context, userID, notificationType string) (*models.NotificationPreference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.prefs[userID+"|"+notificationType]; ok {
		cp := *p
		return &cp, nil
	}
	if p, ok := f.prefs[userID+"|*"]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) ListNotificationPreferences(_ context.Context, userID string) ([]models.NotificationPreference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.NotificationPreference
	for _, p := range f.prefs {
		if p.UserID.String() == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStore) UpsertNotificationPreference(_ context.Context, pref *models.NotificationPreference) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *pref
	f.prefs[pref.UserID.String()+"|"+pref.Type] = &cp
	return nil
}

func (f *fakeStore) GetUser(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[uuid.MustParse(id)]
	if !ok {
		return nil, database.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) ListPendingNotifications(_ context.Context, cutoff time.Time, limit int) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.notifications {
		if n.Status == models.NotificationStatusPending && n.CreatedAt.Before(cutoff) {
			out = append(out, *n)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) CreateNotificationBatch(_ context.Context, batch *models.NotificationBatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *batch
	f.batches[batch.ID] = &cp
	return nil
}

func (f *fakeStore) AssignNotificationsToBatch(_ context.Context, ids []string, batchID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		if n, ok := f.notifications[uuid.MustParse(id)]; ok {
			n.Status = models.NotificationStatusBatched
			b := batchID
			n.BatchID = &b
		}
	}
	return nil
}

func (f *fakeStore) MarkBatchSent(_ context.Context, id string, sentAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.batches[uuid.MustParse(id)]; ok {
		at := sentAt
		b.SentAt = &at
	}
	return nil
}

func (f *fakeStore) ListUnescalatedCritical(_ context.Context, since time.Time) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.notifications {
		if n.Severity == models.SeverityCritical && !n.Escalated && n.ReadAt == nil && !n.CreatedAt.Before(since) {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkNotificationsEscalated(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		if n, ok := f.notifications[uuid.MustParse(id)]; ok {
			n.Escalated = true
		}
	}
	return nil
}

func (f *fakeStore) get(id uuid.UUID) *models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.notifications[id]
	if n == nil {
		return nil
	}
	cp := *n
	return &cp
}

func seedUser(store *fakeStore) *models.User {
	u := &models.User{
		ID:       uuid.New(),
		Username: "creator",
		Email:    "creator@example.com",
		Status:   models.UserStatusActive,
	}
	store.users[u.ID] = u
	return u
}

func TestService_Create_Pending(t *testing.T) {
	store := newFakeStore()
	user := seedUser(store)
	svc := NewService(store, nil)

	n := models.NewNotification(user.ID, models.NotificationTypeStreamFailed, models.SeverityWarning, "Stream failed", "details")
	created, err := svc.Create(context.Background(), n)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !created {
		t.Fatal("Create() = false, want true")
	}
	got := store.get(n.ID)
	if got == nil {
		t.Fatal("notification not persisted")
	}
	if got.Status != models.NotificationStatusPending {
		t.Errorf("status = %q, want pending (warnings wait for the batcher)", got.Status)
	}
}

func TestService_Create_CriticalBypassesBatching(t *testing.T) {
	store := newFakeStore()
	user := seedUser(store)
	svc := NewService(store, nil)

	n := models.NewNotification(user.ID, models.NotificationTypeQuotaCritical, models.SeverityCritical, "Limit reached", "channels at cap")
	if _, err := svc.Create(context.Background(), n); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	got := store.get(n.ID)
	if got.Status != models.NotificationStatusSent {
		t.Errorf("status = %q, want sent (critical skips the batcher)", got.Status)
	}
	if got.SentAt == nil {
		t.Error("SentAt not set")
	}
}

func TestService_Create_MutedTypeSuppressed(t *testing.T) {
	store := newFakeStore()
	user := seedUser(store)
	store.prefs[user.ID.String()+"|"+models.NotificationTypeModerationHit] = &models.NotificationPreference{
		UserID: user.ID, Type: models.NotificationTypeModerationHit, InApp: true, Muted: true,
	}
	svc := NewService(store, nil)

	n := models.NewNotification(user.ID, models.NotificationTypeModerationHit, models.SeverityInfo, "Rule matched", "")
	created, err := svc.Create(context.Background(), n)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created {
		t.Error("Create() = true, want false for muted type")
	}
	if store.get(n.ID) != nil {
		t.Error("muted notification was persisted")
	}
}

func TestService_Create_WildcardMuteApplies(t *testing.T) {
	store := newFakeStore()
	user := seedUser(store)
	store.prefs[user.ID.String()+"|*"] = &models.NotificationPreference{
		UserID: user.ID, Type: "*", Muted: true,
	}
	svc := NewService(store, nil)

	n := models.NewNotification(user.ID, models.NotificationTypeStreamFailed, models.SeverityWarning, "Stream failed", "")
	created, err := svc.Create(context.Background(), n)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created {
		t.Error("wildcard mute did not suppress")
	}
}

func TestService_Create_DedupeCollapsesPending(t *testing.T) {
	store := newFakeStore()
	user := seedUser(store)
	svc := NewService(store, nil)

	key := "quota.warning:channels"
	first := models.NewNotification(user.ID, models.NotificationTypeQuotaWarning, models.SeverityWarning, "80% of limit", "")
	first.DedupeKey = &key
	if created, _ := svc.Create(context.Background(), first); !created {
		t.Fatal("first notification suppressed")
	}

	second := models.NewNotification(user.ID, models.NotificationTypeQuotaWarning, models.SeverityWarning, "81% of limit", "")
	second.DedupeKey = &key
	created, err := svc.Create(context.Background(), second)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created {
		t.Error("duplicate pending notification created despite dedupe key")
	}
}

func TestService_Create_InvalidSeverity(t *testing.T) {
	store := newFakeStore()
	user := seedUser(store)
	svc := NewService(store, nil)

	n := models.NewNotification(user.ID, models.NotificationTypeStreamFailed, "urgent", "x", "")
	if _, err := svc.Create(context.Background(), n); err == nil {
		t.Error("Create() accepted invalid severity")
	}
}

func TestService_MarkRead(t *testing.T) {
	store := newFakeStore()
	user := seedUser(store)
	svc := NewService(store, nil)

	n := models.NewNotification(user.ID, models.NotificationTypeStreamFailed, models.SeverityWarning, "x", "")
	if _, err := svc.Create(context.Background(), n); err != nil {
		t.Fatal(err)
	}

	count, err := svc.UnreadCount(context.Background(), user.ID.String())
	if err != nil || count != 1 {
		t.Fatalf("UnreadCount() = %d, %v, want 1", count, err)
	}
	if err := svc.MarkRead(context.Background(), n.ID.String(), user.ID.String()); err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	count, _ = svc.UnreadCount(context.Background(), user.ID.String())
	if count != 0 {
		t.Errorf("UnreadCount() after read = %d, want 0", count)
	}
}
