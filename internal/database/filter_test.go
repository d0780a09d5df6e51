// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package database

import (
	"testing"
	"time"
)

func TestEventOrderClause(t *testing.T) {
	tests := []struct {
		name       string
		sortBy     string
		descending bool
		want       string
	}{
		{"default ascending", "", false, " ORDER BY start_time ASC"},
		{"start_time descending", "start_time", true, " ORDER BY start_time DESC"},
		{"created_at", "created_at", false, " ORDER BY created_at ASC"},
		{"title", "title", false, " ORDER BY title ASC"},
		{"status", "status", true, " ORDER BY status DESC"},
		{"unknown column falls back", "password_hash", false, " ORDER BY start_time ASC"},
		{"injection attempt falls back", "start_time; DROP TABLE users", true, " ORDER BY start_time DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := eventOrderClause(tt.sortBy, tt.descending)
			if got != tt.want {
				t.Errorf("eventOrderClause(%q, %v) = %q, want %q", tt.sortBy, tt.descending, got, tt.want)
			}
		})
	}
}

func TestBuildEventFilterConditions(t *testing.T) {
	t.Run("empty filter", func(t *testing.T) {
		clauses, args := buildEventFilterConditions(EventFilter{})
		if len(clauses) != 0 {
			t.Errorf("clauses = %v, want none", clauses)
		}
		if len(args) != 0 {
			t.Errorf("args = %v, want none", args)
		}
	})

	t.Run("all fields", func(t *testing.T) {
		from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
		filter := EventFilter{
			UserID:       "user-1",
			ChannelID:    "channel-1",
			RecurrenceID: "recurrence-1",
			Statuses:     []string{"scheduled", "ready"},
			From:         &from,
			To:           &to,
		}

		clauses, args := buildEventFilterConditions(filter)
		if len(clauses) != 6 {
			t.Fatalf("clauses = %d, want 6: %v", len(clauses), clauses)
		}
		// Two status values plus four scalar conditions.
		if len(args) != 7 {
			t.Errorf("args = %d, want 7", len(args))
		}
		if clauses[3] != "status IN (?, ?)" {
			t.Errorf("status clause = %q", clauses[3])
		}
	})
}

func TestWhereSQL(t *testing.T) {
	if got := whereSQL(nil); got != "" {
		t.Errorf("whereSQL(nil) = %q, want empty", got)
	}
	got := whereSQL([]string{"a = ?", "b IN (?, ?)"})
	want := " WHERE a = ? AND b IN (?, ?)"
	if got != want {
		t.Errorf("whereSQL() = %q, want %q", got, want)
	}
}

func TestLimitOffsetSQL(t *testing.T) {
	t.Run("no limit", func(t *testing.T) {
		args := []any{}
		if got := limitOffsetSQL(0, 10, &args); got != "" {
			t.Errorf("limitOffsetSQL(0, ...) = %q, want empty", got)
		}
		if len(args) != 0 {
			t.Errorf("args appended without limit: %v", args)
		}
	})

	t.Run("limit with offset", func(t *testing.T) {
		args := []any{"existing"}
		got := limitOffsetSQL(25, 50, &args)
		if got != " LIMIT ? OFFSET ?" {
			t.Errorf("limitOffsetSQL() = %q", got)
		}
		if len(args) != 3 || args[1] != 25 || args[2] != 50 {
			t.Errorf("args = %v, want [existing 25 50]", args)
		}
	})
}

func TestAppendConditions(t *testing.T) {
	clauses := []string{}
	args := []any{}

	appendEqualCondition("user_id", "", &clauses, &args)
	if len(clauses) != 0 {
		t.Error("empty value appended a condition")
	}

	appendEqualCondition("user_id", "u1", &clauses, &args)
	appendInCondition("status", nil, &clauses, &args)
	appendInCondition("status", []string{"live"}, &clauses, &args)

	if len(clauses) != 2 {
		t.Fatalf("clauses = %v, want 2", clauses)
	}
	if clauses[0] != "user_id = ?" {
		t.Errorf("clause[0] = %q", clauses[0])
	}
	if clauses[1] != "status IN (?)" {
		t.Errorf("clause[1] = %q", clauses[1])
	}
	if len(args) != 2 {
		t.Errorf("args = %v, want [u1 live]", args)
	}
}
