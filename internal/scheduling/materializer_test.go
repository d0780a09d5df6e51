// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package scheduling

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tubefleet/tubefleet/internal/models"
)

// fakeMaterializerStore is an in-memory MaterializerStore.
type fakeMaterializerStore struct {
	mu       sync.Mutex
	patterns map[string]*models.RecurrencePattern
	events   map[string]*models.LiveEvent

	createErr error
	updateErr error
}

func newFakeMaterializerStore() *fakeMaterializerStore {
	return &fakeMaterializerStore{
		patterns: make(map[string]*models.RecurrencePattern),
		events:   make(map[string]*models.LiveEvent),
	}
}

func (f *fakeMaterializerStore) ListEventsOverlapping(_ context.Context, channelID string, start, end time.Time) ([]models.LiveEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.LiveEvent
	for _, ev := range f.events {
		if ev.ChannelID.String() != channelID {
			continue
		}
		if Overlap(start, end, ev.StartTime, ev.EffectiveEnd()) {
			out = append(out, *ev)
		}
	}
	return out, nil
}

func (f *fakeMaterializerStore) ListMaterializablePatterns(_ context.Context, _ time.Time) ([]models.RecurrencePattern, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.RecurrencePattern
	for _, p := range f.patterns {
		if p.IsActive() {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeMaterializerStore) GetEvent(_ context.Context, id string) (*models.LiveEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, ok := f.events[id]
	if !ok {
		return nil, errors.New("event not found")
	}
	cp := *ev
	return &cp, nil
}

func (f *fakeMaterializerStore) CreateEvent(_ context.Context, ev *models.LiveEvent) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *ev
	f.events[ev.ID.String()] = &cp
	return nil
}

func (f *fakeMaterializerStore) UpdateEvent(_ context.Context, ev *models.LiveEvent) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *ev
	f.events[ev.ID.String()] = &cp
	return nil
}

func (f *fakeMaterializerStore) UpdateRecurrenceProgress(_ context.Context, patternID string, generatedCount int, lastMaterializedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.patterns[patternID]
	if !ok {
		return errors.New("pattern not found")
	}
	p.GeneratedCount = generatedCount
	at := lastMaterializedAt
	p.LastMaterializedAt = &at
	return nil
}

func (f *fakeMaterializerStore) SetRecurrenceStatus(_ context.Context, patternID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.patterns[patternID]
	if !ok {
		return errors.New("pattern not found")
	}
	p.Status = status
	return nil
}

func (f *fakeMaterializerStore) occurrences(patternID uuid.UUID) []*models.LiveEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.LiveEvent
	for _, ev := range f.events {
		if ev.RecurrenceID != nil && *ev.RecurrenceID == patternID {
			cp := *ev
			out = append(out, &cp)
		}
	}
	return out
}

// fakeBroadcaster counts creations and can fail selectively.
type fakeBroadcaster struct {
	mu      sync.Mutex
	calls   int
	failOn  map[int]error // 1-based call index -> error
	binding BroadcastBinding
}

func (f *fakeBroadcaster) CreateBroadcast(_ context.Context, _ string, _ *models.LiveEvent) (*BroadcastBinding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err, ok := f.failOn[f.calls]; ok {
		return nil, err
	}
	b := f.binding
	if b.BroadcastID == "" {
		b = BroadcastBinding{
			BroadcastID:  "bc-1",
			StreamID:     "st-1",
			IngestionURL: "rtmp://a.rtmp.youtube.com/live2",
			StreamKey:    "key-secret",
		}
	}
	return &b, nil
}

type fakeCipher struct{}

func (fakeCipher) Encrypt(plaintext string) (string, error) { return "enc:" + plaintext, nil }

type recordingPublisher struct {
	mu        sync.Mutex
	created   []string
	failed    []string
	completed []string
}

func (r *recordingPublisher) OccurrenceCreated(_ context.Context, ev *models.LiveEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, ev.ID.String())
	return nil
}

func (r *recordingPublisher) OccurrenceFailed(_ context.Context, ev *models.LiveEvent, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, ev.ID.String())
	return nil
}

func (r *recordingPublisher) RecurrenceCompleted(_ context.Context, p *models.RecurrencePattern) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, p.ID.String())
	return nil
}

// seedPattern installs a daily pattern plus its template event and returns both.
func seedPattern(store *fakeMaterializerStore, start time.Time, occurrenceCount *int) *models.RecurrencePattern {
	channelID := uuid.New()
	userID := uuid.New()

	template := models.NewLiveEvent(channelID, userID, "Morning Show", start.Add(-30*24*time.Hour))
	end := template.StartTime.Add(time.Hour)
	template.EndTime = &end
	template.Status = models.EventStatusComplete
	store.events[template.ID.String()] = template

	p := models.NewRecurrencePattern(channelID, userID, template.ID, models.FrequencyDaily, start)
	p.OccurrenceCount = occurrenceCount
	store.patterns[p.ID.String()] = p
	return p
}

func TestMaterializePatternGeneratesWithinHorizon(t *testing.T) {
	store := newFakeMaterializerStore()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	p := seedPattern(store, start, nil)

	broadcaster := &fakeBroadcaster{}
	publisher := &recordingPublisher{}
	m := NewMaterializer(store, broadcaster, fakeCipher{}, publisher, DefaultMaterializerConfig())

	horizon := start.Add(60 * time.Hour)
	if err := m.MaterializePattern(context.Background(), p, horizon); err != nil {
		t.Fatalf("MaterializePattern: %v", err)
	}

	occ := store.occurrences(p.ID)
	// Mar 1, 2, 3 09:00 fall inside the horizon (Mar 4 09:00 exceeds it).
	if len(occ) != 3 {
		t.Fatalf("occurrences = %d, want 3", len(occ))
	}
	for _, ev := range occ {
		if ev.Status != models.EventStatusReady {
			t.Errorf("occurrence %s status = %s, want ready", ev.ID, ev.Status)
		}
		if ev.BroadcastID == nil || *ev.BroadcastID == "" {
			t.Errorf("occurrence %s missing broadcast binding", ev.ID)
		}
		if ev.StreamKeyEncrypted == nil || *ev.StreamKeyEncrypted != "enc:key-secret" {
			t.Errorf("occurrence %s stream key not sealed", ev.ID)
		}
	}

	stored := store.patterns[p.ID.String()]
	if stored.GeneratedCount != 3 {
		t.Errorf("GeneratedCount = %d, want 3", stored.GeneratedCount)
	}
	if stored.LastMaterializedAt == nil || !stored.LastMaterializedAt.Equal(start.Add(48*time.Hour)) {
		t.Errorf("LastMaterializedAt = %v, want %v", stored.LastMaterializedAt, start.Add(48*time.Hour))
	}
	if len(publisher.created) != 3 {
		t.Errorf("created events published = %d, want 3", len(publisher.created))
	}
}

func TestMaterializePatternRemoteFailureContinues(t *testing.T) {
	store := newFakeMaterializerStore()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	p := seedPattern(store, start, nil)

	broadcaster := &fakeBroadcaster{failOn: map[int]error{2: errors.New("quotaExceeded")}}
	publisher := &recordingPublisher{}
	m := NewMaterializer(store, broadcaster, fakeCipher{}, publisher, DefaultMaterializerConfig())

	horizon := start.Add(60 * time.Hour)
	if err := m.MaterializePattern(context.Background(), p, horizon); err != nil {
		t.Fatalf("MaterializePattern: %v", err)
	}

	occ := store.occurrences(p.ID)
	if len(occ) != 3 {
		t.Fatalf("occurrences = %d, want 3 (failure must not stop the series)", len(occ))
	}

	var failed, ready int
	for _, ev := range occ {
		switch ev.Status {
		case models.EventStatusFailed:
			failed++
			if ev.FailureReason == nil || *ev.FailureReason != "quotaExceeded" {
				t.Errorf("failure reason = %v, want quotaExceeded", ev.FailureReason)
			}
		case models.EventStatusReady:
			ready++
		}
	}
	if failed != 1 || ready != 2 {
		t.Errorf("failed=%d ready=%d, want 1 and 2", failed, ready)
	}

	// Failed occurrences still count toward the budget.
	if store.patterns[p.ID.String()].GeneratedCount != 3 {
		t.Errorf("GeneratedCount = %d, want 3", store.patterns[p.ID.String()].GeneratedCount)
	}
	if len(publisher.failed) != 1 {
		t.Errorf("failure events published = %d, want 1", len(publisher.failed))
	}
}

func TestMaterializePatternOccurrenceCountCompletes(t *testing.T) {
	store := newFakeMaterializerStore()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	count := 2
	p := seedPattern(store, start, &count)

	publisher := &recordingPublisher{}
	m := NewMaterializer(store, &fakeBroadcaster{}, fakeCipher{}, publisher, DefaultMaterializerConfig())

	horizon := start.Add(30 * 24 * time.Hour)
	if err := m.MaterializePattern(context.Background(), p, horizon); err != nil {
		t.Fatalf("MaterializePattern: %v", err)
	}

	if got := len(store.occurrences(p.ID)); got != 2 {
		t.Errorf("occurrences = %d, want 2", got)
	}
	if status := store.patterns[p.ID.String()].Status; status != models.RecurrenceStatusCompleted {
		t.Errorf("pattern status = %s, want completed", status)
	}
	if len(publisher.completed) != 1 {
		t.Errorf("completion events published = %d, want 1", len(publisher.completed))
	}
}

func TestMaterializePatternSkipsConflictingSlot(t *testing.T) {
	store := newFakeMaterializerStore()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	p := seedPattern(store, start, nil)

	// A manually scheduled event occupies the Mar 2 slot.
	blocker := models.NewLiveEvent(p.ChannelID, p.UserID, "Special", start.Add(24*time.Hour))
	store.events[blocker.ID.String()] = blocker

	m := NewMaterializer(store, &fakeBroadcaster{}, fakeCipher{}, &recordingPublisher{}, DefaultMaterializerConfig())

	horizon := start.Add(60 * time.Hour)
	if err := m.MaterializePattern(context.Background(), p, horizon); err != nil {
		t.Fatalf("MaterializePattern: %v", err)
	}

	occ := store.occurrences(p.ID)
	if len(occ) != 2 {
		t.Fatalf("occurrences = %d, want 2 (Mar 2 slot skipped)", len(occ))
	}
	for _, ev := range occ {
		if ev.StartTime.Equal(start.Add(24 * time.Hour)) {
			t.Error("conflicting slot was materialized")
		}
	}

	// Skipped slots never consume the occurrence budget.
	if got := store.patterns[p.ID.String()].GeneratedCount; got != 2 {
		t.Errorf("GeneratedCount = %d, want 2", got)
	}
}

func TestMaterializePatternIdempotentResume(t *testing.T) {
	store := newFakeMaterializerStore()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	p := seedPattern(store, start, nil)

	m := NewMaterializer(store, &fakeBroadcaster{}, fakeCipher{}, &recordingPublisher{}, DefaultMaterializerConfig())

	horizon := start.Add(72 * time.Hour)
	if err := m.MaterializePattern(context.Background(), p, horizon); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first := len(store.occurrences(p.ID))

	// Re-running with the same horizon resumes from LastMaterializedAt and
	// generates nothing new.
	resumed := *store.patterns[p.ID.String()]
	if err := m.MaterializePattern(context.Background(), &resumed, horizon); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if got := len(store.occurrences(p.ID)); got != first {
		t.Errorf("occurrences after rerun = %d, want %d", got, first)
	}
}

func TestMaterializePatternNilBroadcasterLeavesScheduled(t *testing.T) {
	store := newFakeMaterializerStore()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	count := 1
	p := seedPattern(store, start, &count)

	m := NewMaterializer(store, nil, nil, nil, DefaultMaterializerConfig())
	if err := m.MaterializePattern(context.Background(), p, start.Add(48*time.Hour)); err != nil {
		t.Fatalf("MaterializePattern: %v", err)
	}

	occ := store.occurrences(p.ID)
	if len(occ) != 1 {
		t.Fatalf("occurrences = %d, want 1", len(occ))
	}
	if occ[0].Status != models.EventStatusScheduled {
		t.Errorf("status = %s, want scheduled", occ[0].Status)
	}
}

func TestMaterializePatternInactiveIsNoop(t *testing.T) {
	store := newFakeMaterializerStore()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	p := seedPattern(store, start, nil)
	p.Status = models.RecurrenceStatusPaused

	m := NewMaterializer(store, &fakeBroadcaster{}, fakeCipher{}, nil, DefaultMaterializerConfig())
	if err := m.MaterializePattern(context.Background(), p, start.Add(72*time.Hour)); err != nil {
		t.Fatalf("MaterializePattern: %v", err)
	}
	if got := len(store.occurrences(p.ID)); got != 0 {
		t.Errorf("occurrences = %d, want 0 for paused pattern", got)
	}
}

func TestMaterializerStartStop(t *testing.T) {
	store := newFakeMaterializerStore()
	start := time.Now().UTC().Add(time.Hour)
	count := 1
	seedPattern(store, start, &count)

	cfg := DefaultMaterializerConfig()
	cfg.CheckInterval = 10 * time.Millisecond
	m := NewMaterializer(store, &fakeBroadcaster{}, fakeCipher{}, &recordingPublisher{}, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// Second Start is a no-op.
	if err := m.Start(ctx); err != nil {
		t.Fatalf("second Start: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		if len(store.occurrences(patternID(store))) == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("materializer never generated the due occurrence")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if err := m.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	// Second Stop is a no-op.
	if err := m.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}

func TestMaterializerDisabled(t *testing.T) {
	cfg := DefaultMaterializerConfig()
	cfg.Enabled = false
	m := NewMaterializer(newFakeMaterializerStore(), nil, nil, nil, cfg)

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := m.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func patternID(store *fakeMaterializerStore) uuid.UUID {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, p := range store.patterns {
		return p.ID
	}
	return uuid.Nil
}
