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

func seedTestStrike(t *testing.T, db *DB, user *models.User, channel *models.Channel, strikeType string, expiresAt *time.Time) *models.Strike {
	t.Helper()

	strike := &models.Strike{
		ChannelID:  channel.ID,
		UserID:     user.ID,
		StrikeType: strikeType,
		Reason:     "test strike",
		Source:     "manual",
		ExpiresAt:  expiresAt,
	}
	if err := db.CreateStrike(context.Background(), strike); err != nil {
		t.Fatalf("Failed to seed strike: %v", err)
	}
	return strike
}

func TestCreateStrike(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "struck")
	channel := seedTestChannel(t, db, user.ID, "UCstruck")

	strike := seedTestStrike(t, db, user, channel, models.StrikeTypeCopyright, nil)

	got, err := db.GetStrike(ctx, strike.ID.String())
	if err != nil {
		t.Fatalf("GetStrike() error = %v", err)
	}
	if got.Status != models.StrikeStatusActive {
		t.Errorf("default status = %s, want active", got.Status)
	}
	if got.IssuedAt.IsZero() {
		t.Error("IssuedAt not set")
	}

	if _, err := db.GetStrike(ctx, uuid.NewString()); !errors.Is(err, ErrStrikeNotFound) {
		t.Errorf("GetStrike() missing error = %v, want %v", err, ErrStrikeNotFound)
	}
}

func TestCountStrikesTowardSuspension(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "threshold")
	channel := seedTestChannel(t, db, user.ID, "UCthresh")

	active := seedTestStrike(t, db, user, channel, models.StrikeTypeCommunity, nil)
	appealed := seedTestStrike(t, db, user, channel, models.StrikeTypeCommunity, nil)
	resolved := seedTestStrike(t, db, user, channel, models.StrikeTypeTerms, nil)
	_ = active

	if err := db.SetStrikeStatus(ctx, appealed.ID.String(), models.StrikeStatusAppealed); err != nil {
		t.Fatalf("SetStrikeStatus(appealed) error = %v", err)
	}
	if err := db.SetStrikeStatus(ctx, resolved.ID.String(), models.StrikeStatusResolved); err != nil {
		t.Fatalf("SetStrikeStatus(resolved) error = %v", err)
	}

	// Appealed strikes still count; a successful appeal resolves the
	// strike, which is what removes it.
	count, err := db.CountStrikesTowardSuspension(ctx, channel.ID.String())
	if err != nil {
		t.Fatalf("CountStrikesTowardSuspension() error = %v", err)
	}
	if count != 2 {
		t.Errorf("CountStrikesTowardSuspension() = %d, want 2", count)
	}
}

func TestSetStrikeStatus_Timestamps(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "appealer")
	channel := seedTestChannel(t, db, user.ID, "UCappeal")
	strike := seedTestStrike(t, db, user, channel, models.StrikeTypeCopyright, nil)

	if err := db.SetStrikeStatus(ctx, strike.ID.String(), models.StrikeStatusAppealed); err != nil {
		t.Fatalf("SetStrikeStatus(appealed) error = %v", err)
	}
	got, _ := db.GetStrike(ctx, strike.ID.String())
	if got.AppealedAt == nil {
		t.Error("AppealedAt not stamped")
	}
	if got.ResolvedAt != nil {
		t.Error("ResolvedAt stamped prematurely")
	}

	if err := db.SetStrikeStatus(ctx, strike.ID.String(), models.StrikeStatusResolved); err != nil {
		t.Fatalf("SetStrikeStatus(resolved) error = %v", err)
	}
	got, _ = db.GetStrike(ctx, strike.ID.String())
	if got.ResolvedAt == nil {
		t.Error("ResolvedAt not stamped")
	}
}

func TestExpireStrikes(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "expirer")
	channelA := seedTestChannel(t, db, user.ID, "UCexpA")
	channelB := seedTestChannel(t, db, user.ID, "UCexpB")

	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(24 * time.Hour)

	expiredA := seedTestStrike(t, db, user, channelA, models.StrikeTypeCommunity, &past)
	stillActive := seedTestStrike(t, db, user, channelA, models.StrikeTypeCommunity, &future)
	expiredB := seedTestStrike(t, db, user, channelB, models.StrikeTypeTerms, &past)
	noExpiry := seedTestStrike(t, db, user, channelB, models.StrikeTypeCopyright, nil)

	affected, err := db.ExpireStrikes(ctx, now)
	if err != nil {
		t.Fatalf("ExpireStrikes() error = %v", err)
	}
	if len(affected) != 2 {
		t.Fatalf("ExpireStrikes() affected %d channels, want 2", len(affected))
	}

	gotA, _ := db.GetStrike(ctx, expiredA.ID.String())
	if gotA.Status != models.StrikeStatusExpired {
		t.Errorf("expired strike A status = %s, want expired", gotA.Status)
	}
	gotB, _ := db.GetStrike(ctx, expiredB.ID.String())
	if gotB.Status != models.StrikeStatusExpired {
		t.Errorf("expired strike B status = %s, want expired", gotB.Status)
	}

	gotActive, _ := db.GetStrike(ctx, stillActive.ID.String())
	if gotActive.Status != models.StrikeStatusActive {
		t.Errorf("future strike status = %s, want active", gotActive.Status)
	}
	gotNoExpiry, _ := db.GetStrike(ctx, noExpiry.ID.String())
	if gotNoExpiry.Status != models.StrikeStatusActive {
		t.Errorf("no-expiry strike status = %s, want active", gotNoExpiry.Status)
	}

	// Second run finds nothing to expire.
	affected, err = db.ExpireStrikes(ctx, now)
	if err != nil {
		t.Fatalf("ExpireStrikes() second run error = %v", err)
	}
	if len(affected) != 0 {
		t.Errorf("ExpireStrikes() second run affected %d channels, want 0", len(affected))
	}
}

func TestListStrikesByChannel(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	user := seedTestUser(t, db, "lister-strikes")
	channel := seedTestChannel(t, db, user.ID, "UCstrikelist")
	other := seedTestChannel(t, db, user.ID, "UCother")

	seedTestStrike(t, db, user, channel, models.StrikeTypeCommunity, nil)
	seedTestStrike(t, db, user, channel, models.StrikeTypeCopyright, nil)
	seedTestStrike(t, db, user, other, models.StrikeTypeTerms, nil)

	strikes, err := db.ListStrikesByChannel(ctx, channel.ID.String())
	if err != nil {
		t.Fatalf("ListStrikesByChannel() error = %v", err)
	}
	if len(strikes) != 2 {
		t.Errorf("ListStrikesByChannel() returned %d, want 2", len(strikes))
	}
}
