// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package database

import (
	"fmt"
	"strings"
	"time"
)

// EventFilter contains filter parameters for live event listing queries.
//
// All fields are optional and combine using AND logic. Multi-select fields
// (slices) use OR logic within the field via IN clauses. From/To bound the
// event start time, so a calendar view passes its visible range directly.
type EventFilter struct {
	UserID       string
	ChannelID    string
	RecurrenceID string
	Statuses     []string
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

// eventSortColumns whitelists ORDER BY targets for event listing. Sorting
// is never interpolated from raw client input.
var eventSortColumns = map[string]string{
	"start_time": "start_time",
	"created_at": "created_at",
	"title":      "title",
	"status":     "status",
}

// OrderClause returns a safe ORDER BY clause for the requested column,
// falling back to start_time ascending for unknown columns.
func eventOrderClause(sortBy string, descending bool) string {
	column, ok := eventSortColumns[sortBy]
	if !ok {
		column = "start_time"
	}
	direction := "ASC"
	if descending {
		direction = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s", column, direction)
}

// buildEventFilterConditions builds WHERE clause conditions and args from
// an EventFilter. Returns (whereClauses, args) for parameterized queries.
func buildEventFilterConditions(filter EventFilter) ([]string, []any) {
	whereClauses := []string{}
	args := []any{}

	appendEqualCondition("user_id", filter.UserID, &whereClauses, &args)
	appendEqualCondition("channel_id", filter.ChannelID, &whereClauses, &args)
	appendEqualCondition("recurrence_id", filter.RecurrenceID, &whereClauses, &args)
	appendInCondition("status", filter.Statuses, &whereClauses, &args)

	if filter.From != nil {
		whereClauses = append(whereClauses, "start_time >= ?")
		args = append(args, filter.From.UTC())
	}
	if filter.To != nil {
		whereClauses = append(whereClauses, "start_time <= ?")
		args = append(args, filter.To.UTC())
	}

	return whereClauses, args
}

// appendEqualCondition adds "column = ?" when value is non-empty.
func appendEqualCondition(column, value string, whereClauses *[]string, args *[]any) {
	if value == "" {
		return
	}
	*whereClauses = append(*whereClauses, column+" = ?")
	*args = append(*args, value)
}

// appendInCondition adds "column IN (?, ...)" when values is non-empty.
func appendInCondition(column string, values []string, whereClauses *[]string, args *[]any) {
	if len(values) == 0 {
		return
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		*args = append(*args, v)
	}
	*whereClauses = append(*whereClauses, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")))
}

// whereSQL joins accumulated conditions into a WHERE clause, or returns
// the empty string when there are none.
func whereSQL(whereClauses []string) string {
	if len(whereClauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(whereClauses, " AND ")
}

// limitOffsetSQL appends LIMIT/OFFSET when a positive limit is set.
func limitOffsetSQL(limit, offset int, args *[]any) string {
	if limit <= 0 {
		return ""
	}
	*args = append(*args, limit, offset)
	return " LIMIT ? OFFSET ?"
}
