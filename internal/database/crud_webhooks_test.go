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

func seedTestEndpoint(t *testing.T, db *DB, userID uuid.UUID, url string, eventTypes []string) *models.WebhookEndpoint {
	t.Helper()

	endpoint := models.NewWebhookEndpoint(userID, url)
	endpoint.Secret = "whsec_test"
	if eventTypes != nil {
		endpoint.EventTypes = eventTypes
	}
	if err := db.CreateWebhookEndpoint(context.Background(), endpoint); err != nil {
		t.Fatalf("Failed to seed endpoint %s: %v", url, err)
	}
	return endpoint
}

func TestCreateWebhookEndpoint(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "hooked")

	endpoint := seedTestEndpoint(t, db, user.ID, "https://example.com/hooks", []string{"stream.started", "stream.failed"})

	got, err := db.GetWebhookEndpoint(ctx, endpoint.ID.String())
	if err != nil {
		t.Fatalf("GetWebhookEndpoint() error = %v", err)
	}
	if got.URL != "https://example.com/hooks" {
		t.Errorf("url = %s, want https://example.com/hooks", got.URL)
	}
	if got.Secret != "whsec_test" {
		t.Error("signing secret not round-tripped")
	}
	if len(got.EventTypes) != 2 || got.EventTypes[0] != "stream.started" {
		t.Errorf("event types = %v, want [stream.started stream.failed]", got.EventTypes)
	}
	if !got.Enabled {
		t.Error("new endpoint not enabled")
	}
}

func TestCreateWebhookEndpoint_WildcardTypes(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "wildcard")

	// The constructor's default subscribes to all event types.
	endpoint := seedTestEndpoint(t, db, user.ID, "https://example.com/all", nil)

	got, err := db.GetWebhookEndpoint(ctx, endpoint.ID.String())
	if err != nil {
		t.Fatalf("GetWebhookEndpoint() error = %v", err)
	}
	if len(got.EventTypes) != 1 || got.EventTypes[0] != "*" {
		t.Errorf("event types = %v, want [*]", got.EventTypes)
	}
	if !got.SubscribesTo("stream.started") {
		t.Error("wildcard endpoint should subscribe to everything")
	}
}

func TestListWebhookEndpointsByUser(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "many-hooks")

	seedTestEndpoint(t, db, user.ID, "https://example.com/1", nil)
	disabled := seedTestEndpoint(t, db, user.ID, "https://example.com/2", nil)

	if err := db.DisableWebhookEndpoint(ctx, disabled.ID.String()); err != nil {
		t.Fatalf("DisableWebhookEndpoint() error = %v", err)
	}

	all, err := db.ListWebhookEndpointsByUser(ctx, user.ID.String())
	if err != nil {
		t.Fatalf("ListWebhookEndpointsByUser() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all endpoints = %d, want 2", len(all))
	}

	enabled, err := db.ListEnabledEndpointsByUser(ctx, user.ID.String())
	if err != nil {
		t.Fatalf("ListEnabledEndpointsByUser() error = %v", err)
	}
	if len(enabled) != 1 {
		t.Errorf("enabled endpoints = %d, want 1", len(enabled))
	}

	count, err := db.CountWebhookEndpointsByUser(ctx, user.ID.String())
	if err != nil {
		t.Fatalf("CountWebhookEndpointsByUser() error = %v", err)
	}
	if count != 2 {
		t.Errorf("CountWebhookEndpointsByUser() = %d, want 2", count)
	}
}

func TestEndpointFailureTracking(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "flaky")
	endpoint := seedTestEndpoint(t, db, user.ID, "https://example.com/flaky", nil)

	for want := 1; want <= 3; want++ {
		count, err := db.RecordEndpointFailure(ctx, endpoint.ID.String())
		if err != nil {
			t.Fatalf("RecordEndpointFailure() error = %v", err)
		}
		if count != want {
			t.Errorf("failure count = %d, want %d", count, want)
		}
	}

	if err := db.RecordEndpointSuccess(ctx, endpoint.ID.String()); err != nil {
		t.Fatalf("RecordEndpointSuccess() error = %v", err)
	}

	got, _ := db.GetWebhookEndpoint(ctx, endpoint.ID.String())
	if got.ConsecutiveFailures != 0 {
		t.Errorf("failures after success = %d, want 0", got.ConsecutiveFailures)
	}
	if !got.Enabled {
		t.Error("endpoint disabled without crossing the failure cap")
	}
}

func TestDisableWebhookEndpoint(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "disabler")
	endpoint := seedTestEndpoint(t, db, user.ID, "https://example.com/gone", nil)

	if err := db.DisableWebhookEndpoint(ctx, endpoint.ID.String()); err != nil {
		t.Fatalf("DisableWebhookEndpoint() error = %v", err)
	}

	got, _ := db.GetWebhookEndpoint(ctx, endpoint.ID.String())
	if got.Enabled {
		t.Error("endpoint still enabled")
	}
	if got.DisabledAt == nil {
		t.Error("DisabledAt not stamped")
	}
}

func TestDeleteWebhookEndpoint(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "deleter")
	endpoint := seedTestEndpoint(t, db, user.ID, "https://example.com/del", nil)

	delivery := &models.WebhookDelivery{
		EndpointID: endpoint.ID,
		EventType:  "stream.started",
		Payload:    []byte(`{"event":"stream.started"}`),
	}
	if err := db.CreateWebhookDelivery(ctx, delivery); err != nil {
		t.Fatalf("CreateWebhookDelivery() error = %v", err)
	}

	if err := db.DeleteWebhookEndpoint(ctx, endpoint.ID.String()); err != nil {
		t.Fatalf("DeleteWebhookEndpoint() error = %v", err)
	}

	if _, err := db.GetWebhookEndpoint(ctx, endpoint.ID.String()); !errors.Is(err, ErrEndpointNotFound) {
		t.Errorf("GetWebhookEndpoint() after delete error = %v, want %v", err, ErrEndpointNotFound)
	}
	// Delivery history goes with the endpoint.
	if _, err := db.GetWebhookDelivery(ctx, delivery.ID.String()); !errors.Is(err, ErrDeliveryNotFound) {
		t.Errorf("GetWebhookDelivery() after endpoint delete error = %v, want %v", err, ErrDeliveryNotFound)
	}
}

func TestCreateWebhookDelivery(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "sender")
	endpoint := seedTestEndpoint(t, db, user.ID, "https://example.com/recv", nil)

	payload := []byte(`{"event":"strike.issued","channel_id":"abc"}`)
	delivery := &models.WebhookDelivery{
		EndpointID: endpoint.ID,
		EventType:  "strike.issued",
		Payload:    payload,
	}
	if err := db.CreateWebhookDelivery(ctx, delivery); err != nil {
		t.Fatalf("CreateWebhookDelivery() error = %v", err)
	}

	got, err := db.GetWebhookDelivery(ctx, delivery.ID.String())
	if err != nil {
		t.Fatalf("GetWebhookDelivery() error = %v", err)
	}
	if got.Status != models.WebhookStatusPending {
		t.Errorf("default status = %s, want pending", got.Status)
	}
	if string(got.Payload) != string(payload) {
		t.Errorf("payload = %s, want %s", got.Payload, payload)
	}
	if got.AttemptCount != 0 {
		t.Errorf("attempt count = %d, want 0", got.AttemptCount)
	}
}

func TestListDueDeliveries(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "due")
	endpoint := seedTestEndpoint(t, db, user.ID, "https://example.com/due", nil)

	now := time.Date(2026, 8, 24, 15, 0, 0, 0, time.UTC)

	newDelivery := func(status string, nextAttempt *time.Time) *models.WebhookDelivery {
		d := &models.WebhookDelivery{
			EndpointID:    endpoint.ID,
			EventType:     "stream.started",
			Payload:       []byte(`{}`),
			Status:        status,
			NextAttemptAt: nextAttempt,
		}
		if err := db.CreateWebhookDelivery(ctx, d); err != nil {
			t.Fatalf("CreateWebhookDelivery() error = %v", err)
		}
		return d
	}

	fresh := newDelivery(models.WebhookStatusPending, nil)

	retryAt := now.Add(-time.Minute)
	retry := newDelivery(models.WebhookStatusRetrying, &retryAt)

	// Backed off into the future; not yet due.
	laterAt := now.Add(10 * time.Minute)
	newDelivery(models.WebhookStatusRetrying, &laterAt)

	// Terminal states never reappear.
	newDelivery(models.WebhookStatusDelivered, nil)
	newDelivery(models.WebhookStatusAbandoned, nil)

	due, err := db.ListDueDeliveries(ctx, now, 50)
	if err != nil {
		t.Fatalf("ListDueDeliveries() error = %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("due deliveries = %d, want 2", len(due))
	}
	if due[0].ID != fresh.ID || due[1].ID != retry.ID {
		t.Errorf("due order = [%v %v], want oldest first", due[0].ID, due[1].ID)
	}
}

func TestUpdateWebhookDelivery(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "updater")
	endpoint := seedTestEndpoint(t, db, user.ID, "https://example.com/upd", nil)

	delivery := &models.WebhookDelivery{
		EndpointID: endpoint.ID,
		EventType:  "stream.failed",
		Payload:    []byte(`{}`),
	}
	if err := db.CreateWebhookDelivery(ctx, delivery); err != nil {
		t.Fatalf("CreateWebhookDelivery() error = %v", err)
	}

	attemptAt := time.Now().UTC()
	nextAt := attemptAt.Add(30 * time.Second)
	statusCode := 503
	lastError := "503 Service Unavailable"
	delivery.Status = models.WebhookStatusRetrying
	delivery.AttemptCount = 1
	delivery.LastAttemptAt = &attemptAt
	delivery.NextAttemptAt = &nextAt
	delivery.LastStatusCode = &statusCode
	delivery.LastError = &lastError
	if err := db.UpdateWebhookDelivery(ctx, delivery); err != nil {
		t.Fatalf("UpdateWebhookDelivery() error = %v", err)
	}

	got, _ := db.GetWebhookDelivery(ctx, delivery.ID.String())
	if got.Status != models.WebhookStatusRetrying {
		t.Errorf("status = %s, want retrying", got.Status)
	}
	if got.AttemptCount != 1 {
		t.Errorf("attempt count = %d, want 1", got.AttemptCount)
	}
	if got.LastStatusCode == nil || *got.LastStatusCode != 503 {
		t.Errorf("last status code = %v, want 503", got.LastStatusCode)
	}
	if got.LastError == nil || *got.LastError != lastError {
		t.Errorf("last error = %v, want %s", got.LastError, lastError)
	}

	deliveredAt := time.Now().UTC()
	delivery.Status = models.WebhookStatusDelivered
	delivery.AttemptCount = 2
	delivery.NextAttemptAt = nil
	delivery.DeliveredAt = &deliveredAt
	if err := db.UpdateWebhookDelivery(ctx, delivery); err != nil {
		t.Fatalf("UpdateWebhookDelivery() delivered error = %v", err)
	}

	got, _ = db.GetWebhookDelivery(ctx, delivery.ID.String())
	if !got.IsTerminal() {
		t.Error("delivered delivery not terminal")
	}
	if got.DeliveredAt == nil {
		t.Error("DeliveredAt not persisted")
	}
	if got.NextAttemptAt != nil {
		t.Error("NextAttemptAt not cleared")
	}
}

func TestListDeliveriesByEndpoint(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "historian")
	endpoint := seedTestEndpoint(t, db, user.ID, "https://example.com/hist", nil)

	for i := 0; i < 3; i++ {
		d := &models.WebhookDelivery{
			EndpointID: endpoint.ID,
			EventType:  "stream.started",
			Payload:    []byte(`{}`),
		}
		if err := db.CreateWebhookDelivery(ctx, d); err != nil {
			t.Fatalf("CreateWebhookDelivery() error = %v", err)
		}
	}

	got, err := db.ListDeliveriesByEndpoint(ctx, endpoint.ID.String(), 2, 0)
	if err != nil {
		t.Fatalf("ListDeliveriesByEndpoint() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("ListDeliveriesByEndpoint(limit 2) returned %d", len(got))
	}
}
