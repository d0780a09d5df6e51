// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/tubefleet/tubefleet/internal/models"
)

func TestCreateAndGetStream(t *testing.T) {
	srv, db := newTestServer(t)
	user := seedUser(t, db, "creator")
	channel := seedChannel(t, db, user.ID, "UCcreate")
	h := routerAs(srv, ownerSubject(user))

	start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	rec := doJSON(t, h, http.MethodPost, "/api/v1/streams", map[string]interface{}{
		"channel_id": channel.ID.String(),
		"title":      "Friday show",
		"start_time": start.Format(time.RFC3339),
		"visibility": "unlisted",
		"tags":       []string{"gaming", "live"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/v1/streams = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	var created models.LiveEvent
	decodeData(t, rec, &created)
	if created.Title != "Friday show" {
		t.Errorf("created title = %q, want Friday show", created.Title)
	}
	if created.Visibility != "unlisted" {
		t.Errorf("created visibility = %q, want unlisted", created.Visibility)
	}
	if created.Status != models.EventStatusScheduled {
		t.Errorf("created status = %q, want scheduled", created.Status)
	}
	if created.Tags == nil || *created.Tags != "gaming,live" {
		t.Errorf("created tags = %v, want gaming,live", created.Tags)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/streams/"+created.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET stream = %d, want 200", rec.Code)
	}
	var fetched models.LiveEvent
	decodeData(t, rec, &fetched)
	if fetched.ID != created.ID {
		t.Errorf("fetched id = %s, want %s", fetched.ID, created.ID)
	}
}

func TestCreateStreamRejectsUnknownChannel(t *testing.T) {
	srv, db := newTestServer(t)
	user := seedUser(t, db, "nochannel")
	h := routerAs(srv, ownerSubject(user))

	rec := doJSON(t, h, http.MethodPost, "/api/v1/streams", map[string]interface{}{
		"channel_id": "0f0f0f0f-0f0f-0f0f-0f0f-0f0f0f0f0f0f",
		"title":      "Orphan",
		"start_time": time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("create with unknown channel = %d, want 404", rec.Code)
	}
}

func TestCreateStreamValidation(t *testing.T) {
	srv, db := newTestServer(t)
	user := seedUser(t, db, "invalid")
	h := routerAs(srv, ownerSubject(user))

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing title", map[string]interface{}{
			"channel_id": "0f0f0f0f-0f0f-0f0f-0f0f-0f0f0f0f0f0f",
			"start_time": time.Now().Format(time.RFC3339),
		}},
		{"bad channel id", map[string]interface{}{
			"channel_id": "not-a-uuid",
			"title":      "x",
			"start_time": time.Now().Format(time.RFC3339),
		}},
		{"bad visibility", map[string]interface{}{
			"channel_id": "0f0f0f0f-0f0f-0f0f-0f0f-0f0f0f0f0f0f",
			"title":      "x",
			"start_time": time.Now().Format(time.RFC3339),
			"visibility": "secret",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/api/v1/streams", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("create = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
			if code := errorCode(t, rec); code != "VALIDATION_ERROR" {
				t.Errorf("error code = %q, want VALIDATION_ERROR", code)
			}
		})
	}
}

func TestCreateStreamConflict(t *testing.T) {
	srv, db := newTestServer(t)
	user := seedUser(t, db, "clasher")
	channel := seedChannel(t, db, user.ID, "UCclash")
	h := routerAs(srv, ownerSubject(user))

	start := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	first := map[string]interface{}{
		"channel_id": channel.ID.String(),
		"title":      "First",
		"start_time": start.Format(time.RFC3339),
	}
	if rec := doJSON(t, h, http.MethodPost, "/api/v1/streams", first); rec.Code != http.StatusCreated {
		t.Fatalf("first create = %d, want 201", rec.Code)
	}

	overlapping := map[string]interface{}{
		"channel_id": channel.ID.String(),
		"title":      "Second",
		"start_time": start.Add(30 * time.Minute).Format(time.RFC3339),
	}
	rec := doJSON(t, h, http.MethodPost, "/api/v1/streams", overlapping)
	if rec.Code != http.StatusConflict {
		t.Fatalf("overlapping create = %d, want 409 (body %s)", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "CONFLICT" {
		t.Errorf("error code = %q, want CONFLICT", code)
	}

	overlapping["force"] = true
	rec = doJSON(t, h, http.MethodPost, "/api/v1/streams", overlapping)
	if rec.Code != http.StatusCreated {
		t.Fatalf("forced create = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestCheckConflictsEndpoint(t *testing.T) {
	srv, db := newTestServer(t)
	user := seedUser(t, db, "checker")
	channel := seedChannel(t, db, user.ID, "UCcheck")
	h := routerAs(srv, ownerSubject(user))

	start := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Second)
	create := map[string]interface{}{
		"channel_id": channel.ID.String(),
		"title":      "Existing",
		"start_time": start.Format(time.RFC3339),
	}
	if rec := doJSON(t, h, http.MethodPost, "/api/v1/streams", create); rec.Code != http.StatusCreated {
		t.Fatalf("create = %d, want 201", rec.Code)
	}

	rec := doJSON(t, h, http.MethodPost, "/api/v1/streams/conflicts", map[string]interface{}{
		"channel_id": channel.ID.String(),
		"start_time": start.Add(time.Hour).Format(time.RFC3339),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("conflict check = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var result struct {
		Conflict  bool               `json:"conflict"`
		Conflicts []models.LiveEvent `json:"conflicts"`
	}
	decodeData(t, rec, &result)
	if !result.Conflict {
		t.Error("conflict = false, want true for overlapping window")
	}

	rec = doJSON(t, h, http.MethodPost, "/api/v1/streams/conflicts", map[string]interface{}{
		"channel_id": channel.ID.String(),
		"start_time": start.Add(100 * time.Hour).Format(time.RFC3339),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("clear conflict check = %d, want 200", rec.Code)
	}
	decodeData(t, rec, &result)
	if result.Conflict {
		t.Error("conflict = true, want false for clear window")
	}
}

func TestListStreamsPagination(t *testing.T) {
	srv, db := newTestServer(t)
	user := seedUser(t, db, "pager")
	channel := seedChannel(t, db, user.ID, "UCpage")
	h := routerAs(srv, ownerSubject(user))

	base := time.Now().Add(200 * time.Hour).UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		rec := doJSON(t, h, http.MethodPost, "/api/v1/streams", map[string]interface{}{
			"channel_id": channel.ID.String(),
			"title":      "Show",
			"start_time": base.Add(time.Duration(i) * 5 * time.Hour).Format(time.RFC3339),
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create %d = %d, want 201", i, rec.Code)
		}
	}

	rec := doJSON(t, h, http.MethodGet, "/api/v1/streams?limit=2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list = %d, want 200", rec.Code)
	}
	var page models.EventsResponse
	decodeData(t, rec, &page)
	if len(page.Events) != 2 {
		t.Fatalf("page size = %d, want 2", len(page.Events))
	}
	if !page.Pagination.HasMore {
		t.Error("has_more = false, want true")
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/streams?limit=2&offset=2", nil)
	decodeData(t, rec, &page)
	if len(page.Events) != 1 {
		t.Fatalf("second page size = %d, want 1", len(page.Events))
	}
	if page.Pagination.HasMore {
		t.Error("has_more = true on last page, want false")
	}
}

func TestListStreamsIsolatesTenants(t *testing.T) {
	srv, db := newTestServer(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	aliceChannel := seedChannel(t, db, alice.ID, "UCalice")

	hAlice := routerAs(srv, ownerSubject(alice))
	rec := doJSON(t, hAlice, http.MethodPost, "/api/v1/streams", map[string]interface{}{
		"channel_id": aliceChannel.ID.String(),
		"title":      "Alice only",
		"start_time": time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d, want 201", rec.Code)
	}
	var created models.LiveEvent
	decodeData(t, rec, &created)

	hBob := routerAs(srv, ownerSubject(bob))
	rec = doJSON(t, hBob, http.MethodGet, "/api/v1/streams", nil)
	var page models.EventsResponse
	decodeData(t, rec, &page)
	if len(page.Events) != 0 {
		t.Fatalf("bob sees %d of alice's events, want 0", len(page.Events))
	}

	rec = doJSON(t, hBob, http.MethodGet, "/api/v1/streams/"+created.ID.String(), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("bob GET alice's stream = %d, want 404", rec.Code)
	}

	hAdmin := routerAs(srv, adminSubject(bob))
	rec = doJSON(t, hAdmin, http.MethodGet, "/api/v1/streams/"+created.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin GET alice's stream = %d, want 200", rec.Code)
	}
}

func TestUpdateStream(t *testing.T) {
	srv, db := newTestServer(t)
	user := seedUser(t, db, "updater")
	channel := seedChannel(t, db, user.ID, "UCupd")
	h := routerAs(srv, ownerSubject(user))

	rec := doJSON(t, h, http.MethodPost, "/api/v1/streams", map[string]interface{}{
		"channel_id": channel.ID.String(),
		"title":      "Before",
		"start_time": time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	var created models.LiveEvent
	decodeData(t, rec, &created)

	rec = doJSON(t, h, http.MethodPut, "/api/v1/streams/"+created.ID.String(), map[string]interface{}{
		"title":      "After",
		"visibility": "private",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var updated models.LiveEvent
	decodeData(t, rec, &updated)
	if updated.Title != "After" {
		t.Errorf("title = %q, want After", updated.Title)
	}
	if updated.Visibility != "private" {
		t.Errorf("visibility = %q, want private", updated.Visibility)
	}
}

func TestCancelStreamIdempotent(t *testing.T) {
	srv, db := newTestServer(t)
	user := seedUser(t, db, "canceler")
	channel := seedChannel(t, db, user.ID, "UCcancel")
	h := routerAs(srv, ownerSubject(user))

	rec := doJSON(t, h, http.MethodPost, "/api/v1/streams", map[string]interface{}{
		"channel_id": channel.ID.String(),
		"title":      "Doomed",
		"start_time": time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	var created models.LiveEvent
	decodeData(t, rec, &created)

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/streams/"+created.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	// Canceling again is a no-op, not an error.
	rec = doJSON(t, h, http.MethodDelete, "/api/v1/streams/"+created.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("repeat cancel = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	ev, err := db.GetEvent(context.Background(), created.ID.String())
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if ev.Status != models.EventStatusCanceled {
		t.Errorf("status = %q, want canceled", ev.Status)
	}
}

func TestTransitionStream(t *testing.T) {
	srv, db := newTestServer(t)
	user := seedUser(t, db, "transitioner")
	channel := seedChannel(t, db, user.ID, "UCtrans")
	h := routerAs(srv, ownerSubject(user))

	rec := doJSON(t, h, http.MethodPost, "/api/v1/streams", map[string]interface{}{
		"channel_id": channel.ID.String(),
		"title":      "Lifecycle",
		"start_time": time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	var created models.LiveEvent
	decodeData(t, rec, &created)
	path := "/api/v1/streams/" + created.ID.String() + "/status"

	// scheduled -> complete skips live and must be refused.
	rec = doJSON(t, h, http.MethodPost, path, map[string]interface{}{"status": "complete"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("scheduled->complete = %d, want 409 (body %s)", rec.Code, rec.Body.String())
	}

	// No broadcaster is wired, so transitions only touch local state.
	for _, status := range []string{"ready", "live", "complete"} {
		rec = doJSON(t, h, http.MethodPost, path, map[string]interface{}{"status": status})
		if rec.Code != http.StatusOK {
			t.Fatalf("transition to %s = %d, want 200 (body %s)", status, rec.Code, rec.Body.String())
		}
	}

	// complete is terminal.
	rec = doJSON(t, h, http.MethodPost, path, map[string]interface{}{"status": "live"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("complete->live = %d, want 409", rec.Code)
	}
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{models.EventStatusScheduled, models.EventStatusReady, true},
		{models.EventStatusScheduled, models.EventStatusLive, true},
		{models.EventStatusScheduled, models.EventStatusComplete, false},
		{models.EventStatusReady, models.EventStatusLive, true},
		{models.EventStatusReady, models.EventStatusComplete, false},
		{models.EventStatusLive, models.EventStatusComplete, true},
		{models.EventStatusLive, models.EventStatusReady, false},
		{models.EventStatusComplete, models.EventStatusLive, false},
		{models.EventStatusCanceled, models.EventStatusScheduled, false},
		{models.EventStatusFailed, models.EventStatusScheduled, false},
	}
	for _, tt := range tests {
		if got := transitionAllowed(tt.from, tt.to); got != tt.want {
			t.Errorf("transitionAllowed(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestStreamIngestionUnavailable(t *testing.T) {
	srv, db := newTestServer(t)
	user := seedUser(t, db, "ingester")
	channel := seedChannel(t, db, user.ID, "UCingest")
	h := routerAs(srv, ownerSubject(user))

	rec := doJSON(t, h, http.MethodPost, "/api/v1/streams", map[string]interface{}{
		"channel_id": channel.ID.String(),
		"title":      "No creds",
		"start_time": time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	var created models.LiveEvent
	decodeData(t, rec, &created)

	// Event has no broadcast binding and the server has no cipher, so
	// ingestion credentials cannot exist.
	rec = doJSON(t, h, http.MethodGet, "/api/v1/streams/"+created.ID.String()+"/ingestion", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("ingestion without binding = %d, want 404 (body %s)", rec.Code, rec.Body.String())
	}
}
