// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/tubefleet/tubefleet/internal/logging"
	"github.com/tubefleet/tubefleet/internal/metrics"
	"github.com/tubefleet/tubefleet/internal/models"
)

// Store is the persistence surface the service needs.
type Store interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	HasPendingNotificationWithKey(ctx context.Context, userID string, dedupeKey string) (bool, error)
	MarkNotificationsSent(ctx context.Context, ids []string, sentAt time.Time) error

	GetNotification(ctx context.Context, id string) (*models.Notification, error)
	ListNotificationsByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]models.Notification, error)
	CountUnreadNotifications(ctx context.Context, userID string) (int64, error)
	MarkNotificationRead(ctx context.Context, id string, userID string) error
	MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error)

	// GetNotificationPreference resolves the (user, type) preference with
	// "*" fallback; nil means no row, which defaults to in-app only.
	GetNotificationPreference(ctx context.Context, userID string, notificationType string) (*models.NotificationPreference, error)
	ListNotificationPreferences(ctx context.Context, userID string) ([]models.NotificationPreference, error)
	UpsertNotificationPreference(ctx context.Context, pref *models.NotificationPreference) error

	GetUser(ctx context.Context, id string) (*models.User, error)
}

// Service creates notifications and answers the in-app read surface.
// Creation applies mute preferences and dedupe keys before persisting;
// critical notifications skip the batcher and deliver immediately.
type Service struct {
	store Store
	email *EmailChannel
}

// NewService creates the notification service. email may be nil; critical
// notifications then stay in-app only.
func NewService(store Store, email *EmailChannel) *Service {
	return &Service{store: store, email: email}
}

// Create persists the notification unless the user muted its type or a
// pending duplicate with the same dedupe key exists. The returned bool
// reports whether a row was created.
func (s *Service) Create(ctx context.Context, n *models.Notification) (bool, error) {
	if !models.IsValidSeverity(n.Severity) {
		return false, fmt.Errorf("invalid severity %q", n.Severity)
	}
	if n.Status == "" {
		n.Status = models.NotificationStatusPending
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	pref, err := s.store.GetNotificationPreference(ctx, n.UserID.String(), n.Type)
	if err != nil {
		return false, fmt.Errorf("resolving preference: %w", err)
	}
	if pref != nil && pref.Muted {
		logging.Debug().
			Str("user_id", n.UserID.String()).
			Str("type", n.Type).
			Msg("Notification suppressed by mute preference")
		return false, nil
	}

	if n.DedupeKey != nil && *n.DedupeKey != "" {
		dup, err := s.store.HasPendingNotificationWithKey(ctx, n.UserID.String(), *n.DedupeKey)
		if err != nil {
			return false, fmt.Errorf("checking dedupe key: %w", err)
		}
		if dup {
			return false, nil
		}
	}

	if err := s.store.CreateNotification(ctx, n); err != nil {
		return false, fmt.Errorf("creating notification: %w", err)
	}
	metrics.NotificationsCreated.WithLabelValues(n.Type, n.Severity).Inc()

	if n.Severity == models.SeverityCritical {
		s.deliverCritical(ctx, n, pref)
	}
	return true, nil
}

// deliverCritical sends a critical notification out immediately. The in-app
// row is the guaranteed delivery; an email failure is logged and the
// notification is still marked sent so the batcher never digests it.
func (s *Service) deliverCritical(ctx context.Context, n *models.Notification, pref *models.NotificationPreference) {
	if s.email != nil && pref != nil && pref.Email {
		user, err := s.store.GetUser(ctx, n.UserID.String())
		if err != nil {
			logging.Warn().Err(err).Str("user_id", n.UserID.String()).Msg("Cannot load user for critical email")
		} else {
			res, err := s.email.Deliver(ctx, Recipient{UserID: user.ID.String(), Email: user.Email, Name: user.Username}, &Message{
				Type:     n.Type,
				Severity: n.Severity,
				Subject:  "[TubeFleet] " + n.Title,
				Body:     n.Body,
				Count:    1,
			})
			if err != nil {
				logging.Error().Err(err).Msg("Email channel misconfigured")
			} else if !res.Success {
				logging.Warn().
					Str("user_id", n.UserID.String()).
					Str("error", res.ErrorMessage).
					Bool("transient", res.Transient).
					Msg("Critical email delivery failed")
			}
		}
	}

	if err := s.store.MarkNotificationsSent(ctx, []string{n.ID.String()}, time.Now().UTC()); err != nil {
		logging.Error().Err(err).Str("notification_id", n.ID.String()).Msg("Failed to mark critical notification sent")
	}
}

// List returns a page of the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	return s.store.ListNotificationsByUser(ctx, userID, unreadOnly, limit, offset)
}

// UnreadCount returns the user's unread notification count.
func (s *Service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.store.CountUnreadNotifications(ctx, userID)
}

// MarkRead acknowledges one notification. Reading a critical notification
// also stops it from escalating.
func (s *Service) MarkRead(ctx context.Context, id, userID string) error {
	return s.store.MarkNotificationRead(ctx, id, userID)
}

// MarkAllRead acknowledges every unread notification for the user and
// returns how many were affected.
func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.store.MarkAllNotificationsRead(ctx, userID)
}

// Preferences returns the user's preference rows.
func (s *Service) Preferences(ctx context.Context, userID string) ([]models.NotificationPreference, error) {
	return s.store.ListNotificationPreferences(ctx, userID)
}

// SetPreference creates or replaces the user's preference for a type.
func (s *Service) SetPreference(ctx context.Context, pref *models.NotificationPreference) error {
	if pref.Type == "" {
		return fmt.Errorf("preference type is required")
	}
	return s.store.UpsertNotificationPreference(ctx, pref)
}
