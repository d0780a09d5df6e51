// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package notifications

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tubefleet/tubefleet/internal/logging"
	"github.com/tubefleet/tubefleet/internal/metrics"
	"github.com/tubefleet/tubefleet/internal/models"
)

// DispatcherStore is the persistence surface the dispatcher needs.
type DispatcherStore interface {
	ListPendingNotifications(ctx context.Context, cutoff time.Time, limit int) ([]models.Notification, error)
	CreateNotificationBatch(ctx context.Context, batch *models.NotificationBatch) error
	AssignNotificationsToBatch(ctx context.Context, ids []string, batchID uuid.UUID) error
	MarkBatchSent(ctx context.Context, id string, sentAt time.Time) error

	ListUnescalatedCritical(ctx context.Context, since time.Time) ([]models.Notification, error)
	MarkNotificationsEscalated(ctx context.Context, ids []string) error

	GetNotificationPreference(ctx context.Context, userID string, notificationType string) (*models.NotificationPreference, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// DispatcherConfig holds batching and escalation settings.
type DispatcherConfig struct {
	// FlushInterval is how often pending notifications are swept.
	FlushInterval time.Duration

	// BatchWindow is how long same-type notifications are held before the
	// group flushes as one digest.
	BatchWindow time.Duration

	// BatchMaxSize flushes a group early once it reaches this many members.
	BatchMaxSize int

	// MaxPerSweep caps pending rows considered per pass.
	MaxPerSweep int

	EscalationEnabled bool

	// EscalationThreshold is the unacknowledged critical count inside the
	// escalation window that triggers exactly one escalation per group.
	EscalationThreshold int
	EscalationWindow    time.Duration

	// Enabled controls whether the run loop executes at all.
	Enabled bool
}

// DefaultDispatcherConfig returns production defaults.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		FlushInterval:       30 * time.Second,
		BatchWindow:         5 * time.Minute,
		BatchMaxSize:        20,
		MaxPerSweep:         500,
		EscalationEnabled:   true,
		EscalationThreshold: 5,
		EscalationWindow:    30 * time.Minute,
		Enabled:             true,
	}
}

// Dispatcher runs the batching and escalation passes on a fixed interval.
//
// Batching groups a user's pending notifications by type and flushes a
// group as one digest when its oldest member has aged past the batch window
// or the group hits the size cap. Escalation counts a user's unread,
// unescalated critical notifications inside the escalation window and, at
// the threshold, re-delivers one summary over email and the ops webhook,
// then marks the group escalated so it never fires twice.
type Dispatcher struct {
	store     DispatcherStore
	email     *EmailChannel
	adminHook *AdminWebhookChannel
	config    DispatcherConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewDispatcher creates a dispatcher. email and adminHook may be nil; the
// in-app digest rows are still written.
func NewDispatcher(store DispatcherStore, email *EmailChannel, adminHook *AdminWebhookChannel, config DispatcherConfig) *Dispatcher {
	return &Dispatcher{
		store:     store,
		email:     email,
		adminHook: adminHook,
		config:    config,
	}
}

// Start launches the background run loop. Calling Start on a running
// dispatcher is a no-op.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return nil
	}
	if !d.config.Enabled {
		logging.Info().Msg("Notification dispatcher disabled")
		return nil
	}

	d.stopCh = make(chan struct{})
	d.doneCh = make(chan struct{})
	d.running = true

	go d.run(ctx)

	logging.Info().
		Dur("flush_interval", d.config.FlushInterval).
		Dur("batch_window", d.config.BatchWindow).
		Int("batch_max_size", d.config.BatchMaxSize).
		Msg("Notification dispatcher started")
	return nil
}

// Stop terminates the run loop and waits for in-flight work to finish.
func (d *Dispatcher) Stop() error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return nil
	}
	d.running = false
	close(d.stopCh)
	doneCh := d.doneCh
	d.mu.Unlock()

	<-doneCh
	logging.Info().Msg("Notification dispatcher stopped")
	return nil
}

func (d *Dispatcher) run(ctx context.Context) {
	defer close(d.doneCh)

	ticker := time.NewTicker(d.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.stopCh:
			return
		case <-ticker.C:
			d.FlushOnce(ctx)
			d.EscalateOnce(ctx)
		}
	}
}

// batchKey groups pending notifications per user and type.
type batchKey struct {
	userID uuid.UUID
	ntype  string
}

// FlushOnce runs one batching pass. It is exported so tests and shutdown
// hooks can drain pending digests deterministically.
func (d *Dispatcher) FlushOnce(ctx context.Context) {
	now := time.Now().UTC()

	pending, err := d.store.ListPendingNotifications(ctx, now, d.config.MaxPerSweep)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to list pending notifications")
		return
	}
	if len(pending) == 0 {
		return
	}

	groups := make(map[batchKey][]models.Notification)
	for _, n := range pending {
		key := batchKey{userID: n.UserID, ntype: n.Type}
		groups[key] = append(groups[key], n)
	}

	for key, group := range groups {
		sort.Slice(group, func(i, j int) bool { return group[i].CreatedAt.Before(group[j].CreatedAt) })

		due := len(group) >= d.config.BatchMaxSize ||
			now.Sub(group[0].CreatedAt) >= d.config.BatchWindow ||
			group[0].Severity == models.SeverityCritical
		if !due {
			continue
		}

		if err := d.flushGroup(ctx, key, group, now); err != nil {
			logging.Error().
				Err(err).
				Str("user_id", key.userID.String()).
				Str("type", key.ntype).
				Msg("Digest flush failed")
		}
	}
}

// flushGroup folds one (user, type) group into a digest and delivers it.
func (d *Dispatcher) flushGroup(ctx context.Context, key batchKey, group []models.Notification, now time.Time) error {
	batch := &models.NotificationBatch{
		ID:          uuid.New(),
		UserID:      key.userID,
		Type:        key.ntype,
		WindowStart: group[0].CreatedAt,
		WindowEnd:   now,
		Count:       len(group),
		CreatedAt:   now,
	}
	if err := d.store.CreateNotificationBatch(ctx, batch); err != nil {
		return fmt.Errorf("creating batch: %w", err)
	}

	ids := make([]string, len(group))
	for i := range group {
		ids[i] = group[i].ID.String()
	}
	if err := d.store.AssignNotificationsToBatch(ctx, ids, batch.ID); err != nil {
		return fmt.Errorf("assigning notifications: %w", err)
	}
	metrics.NotificationsBatched.Add(float64(len(group)))

	d.deliverDigest(ctx, key, group, batch)

	if err := d.store.MarkBatchSent(ctx, batch.ID.String(), time.Now().UTC()); err != nil {
		return fmt.Errorf("marking batch sent: %w", err)
	}
	return nil
}

// deliverDigest emails the digest when the user opted in. The batch rows
// themselves are the in-app delivery, so an email failure is not a flush
// failure.
func (d *Dispatcher) deliverDigest(ctx context.Context, key batchKey, group []models.Notification, batch *models.NotificationBatch) {
	if d.email == nil {
		return
	}
	pref, err := d.store.GetNotificationPreference(ctx, key.userID.String(), key.ntype)
	if err != nil || pref == nil || !pref.Email {
		return
	}
	user, err := d.store.GetUser(ctx, key.userID.String())
	if err != nil {
		logging.Warn().Err(err).Str("user_id", key.userID.String()).Msg("Cannot load user for digest email")
		return
	}

	res, err := d.email.Deliver(ctx, Recipient{UserID: user.ID.String(), Email: user.Email, Name: user.Username}, &Message{
		Type:     key.ntype,
		Severity: group[0].Severity,
		Subject:  fmt.Sprintf("[TubeFleet] %d %s notifications", len(group), key.ntype),
		Body:     digestBody(group),
		Count:    len(group),
	})
	if err != nil {
		logging.Error().Err(err).Msg("Email channel misconfigured")
		return
	}
	if !res.Success {
		logging.Warn().
			Str("user_id", key.userID.String()).
			Str("batch_id", batch.ID.String()).
			Str("error", res.ErrorMessage).
			Msg("Digest email delivery failed")
	}
}

func digestBody(group []models.Notification) string {
	var b strings.Builder
	for i := range group {
		b.WriteString("- ")
		b.WriteString(group[i].Title)
		if group[i].Body != "" {
			b.WriteString(": ")
			b.WriteString(group[i].Body)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// EscalateOnce runs one escalation pass.
func (d *Dispatcher) EscalateOnce(ctx context.Context) {
	if !d.config.EscalationEnabled {
		return
	}
	now := time.Now().UTC()

	criticals, err := d.store.ListUnescalatedCritical(ctx, now.Add(-d.config.EscalationWindow))
	if err != nil {
		logging.Error().Err(err).Msg("Failed to list critical notifications")
		return
	}
	if len(criticals) == 0 {
		return
	}

	byUser := make(map[uuid.UUID][]models.Notification)
	for _, n := range criticals {
		byUser[n.UserID] = append(byUser[n.UserID], n)
	}

	for userID, group := range byUser {
		if len(group) < d.config.EscalationThreshold {
			continue
		}
		if err := d.escalateGroup(ctx, userID, group); err != nil {
			logging.Error().Err(err).Str("user_id", userID.String()).Msg("Escalation failed")
		}
	}
}

// escalateGroup re-delivers one summary for a user's unacknowledged
// criticals and marks them escalated. Marking happens after delivery is
// attempted but regardless of its outcome: escalation fires once.
func (d *Dispatcher) escalateGroup(ctx context.Context, userID uuid.UUID, group []models.Notification) error {
	msg := &Message{
		Type:      "escalation",
		Severity:  models.SeverityCritical,
		Subject:   fmt.Sprintf("[TubeFleet] %d unacknowledged critical alerts", len(group)),
		Body:      digestBody(group),
		Count:     len(group),
		Escalated: true,
	}
	rcpt := Recipient{UserID: userID.String()}

	if d.email != nil {
		pref, err := d.store.GetNotificationPreference(ctx, userID.String(), group[0].Type)
		if err == nil && pref != nil && pref.Email {
			if user, err := d.store.GetUser(ctx, userID.String()); err == nil {
				rcpt.Email = user.Email
				rcpt.Name = user.Username
				if res, err := d.email.Deliver(ctx, rcpt, msg); err == nil && !res.Success {
					logging.Warn().Str("user_id", userID.String()).Str("error", res.ErrorMessage).Msg("Escalation email failed")
				}
			}
		}
	}

	if d.adminHook != nil {
		if res, err := d.adminHook.Deliver(ctx, rcpt, msg); err == nil && !res.Success {
			logging.Warn().Str("user_id", userID.String()).Str("error", res.ErrorMessage).Msg("Ops webhook escalation failed")
		}
	}

	ids := make([]string, len(group))
	for i := range group {
		ids[i] = group[i].ID.String()
	}
	if err := d.store.MarkNotificationsEscalated(ctx, ids); err != nil {
		return fmt.Errorf("marking escalated: %w", err)
	}
	metrics.NotificationsEscalated.Add(float64(len(group)))

	logging.Info().
		Str("user_id", userID.String()).
		Int("count", len(group)).
		Msg("Critical notifications escalated")
	return nil
}
