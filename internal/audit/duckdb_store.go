// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/tubefleet/tubefleet/internal/logging"
)

// DuckDBStore implements Store on a DuckDB table. The admin trail is
// append-only: rows are inserted by Save and only ever removed by the
// retention sweep in Delete.
type DuckDBStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewDuckDBStore wraps an open DuckDB handle. Call CreateTable before the
// first Save.
func NewDuckDBStore(db *sql.DB) *DuckDBStore {
	return &DuckDBStore{db: db}
}

// auditSchema creates the trail table and its query indexes. DuckDB accepts
// one statement per Exec, so CreateTable splits on ";".
const auditSchema = `
	CREATE TABLE IF NOT EXISTS audit_events (
		id TEXT PRIMARY KEY,
		timestamp TIMESTAMPTZ NOT NULL,
		type TEXT NOT NULL,
		severity TEXT NOT NULL,
		outcome TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		actor_type TEXT NOT NULL,
		actor_name TEXT,
		actor_roles JSON,
		actor_session_id TEXT,
		actor_auth_method TEXT,
		target_id TEXT,
		target_type TEXT,
		target_name TEXT,
		source_ip TEXT NOT NULL,
		source_user_agent TEXT,
		source_hostname TEXT,
		source_port INTEGER,
		action TEXT NOT NULL,
		description TEXT NOT NULL,
		metadata JSON,
		request_id TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_events(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_audit_type ON audit_events(type);
	CREATE INDEX IF NOT EXISTS idx_audit_severity ON audit_events(severity);
	CREATE INDEX IF NOT EXISTS idx_audit_outcome ON audit_events(outcome);
	CREATE INDEX IF NOT EXISTS idx_audit_actor_id ON audit_events(actor_id);
	CREATE INDEX IF NOT EXISTS idx_audit_actor_type ON audit_events(actor_type);
	CREATE INDEX IF NOT EXISTS idx_audit_target_id ON audit_events(target_id);
	CREATE INDEX IF NOT EXISTS idx_audit_source_ip ON audit_events(source_ip);
	CREATE INDEX IF NOT EXISTS idx_audit_request_id ON audit_events(request_id);
	CREATE INDEX IF NOT EXISTS idx_audit_created_at ON audit_events(created_at DESC);
`

// selectColumns is the column list shared by Get and Query. JSON columns are
// cast to VARCHAR so database/sql can scan them as strings.
const selectColumns = `
	SELECT
		id, timestamp, type, severity, outcome,
		actor_id, actor_type, actor_name,
		CAST(actor_roles AS VARCHAR) AS actor_roles,
		actor_session_id, actor_auth_method,
		target_id, target_type, target_name,
		source_ip, source_user_agent, source_hostname, source_port,
		action, description,
		CAST(metadata AS VARCHAR) AS metadata,
		request_id
	FROM audit_events
`

const insertEvent = `
	INSERT INTO audit_events (
		id, timestamp, type, severity, outcome,
		actor_id, actor_type, actor_name, actor_roles, actor_session_id, actor_auth_method,
		target_id, target_type, target_name,
		source_ip, source_user_agent, source_hostname, source_port,
		action, description, metadata,
		request_id, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// CreateTable creates the audit_events table and indexes if absent.
func (s *DuckDBStore) CreateTable(ctx context.Context) error {
	for _, stmt := range strings.Split(auditSchema, ";") {
		if stmt = strings.TrimSpace(stmt); stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	logging.Info().Msg("Audit events table created/verified")
	return nil
}

// Save appends one event to the trail.
func (s *DuckDBStore) Save(ctx context.Context, event *Event) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	roles := "[]"
	if len(event.Actor.Roles) > 0 {
		if data, err := json.Marshal(event.Actor.Roles); err == nil {
			roles = string(data)
		}
	}

	var targetID, targetType, targetName *string
	if t := event.Target; t != nil {
		targetID, targetType, targetName = &t.ID, &t.Type, &t.Name
	}

	var metadata *string
	if len(event.Metadata) > 0 {
		m := string(event.Metadata)
		metadata = &m
	}

	_, err := s.db.ExecContext(ctx, insertEvent,
		event.ID, event.Timestamp,
		string(event.Type), string(event.Severity), string(event.Outcome),
		event.Actor.ID, event.Actor.Type, event.Actor.Name, roles,
		event.Actor.SessionID, event.Actor.AuthMethod,
		targetID, targetType, targetName,
		event.Source.IPAddress, event.Source.UserAgent, event.Source.Hostname, event.Source.Port,
		event.Action, event.Description, metadata,
		event.RequestID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save audit event: %w", err)
	}
	return nil
}

// Get retrieves one event by ID.
func (s *DuckDBStore) Get(ctx context.Context, id string) (*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("event not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get audit event: %w", err)
	}
	return event, nil
}

// Query retrieves events matching the filter. Rows that fail to scan are
// logged and skipped rather than aborting the whole result set.
func (s *DuckDBStore) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where := newEventFilter(filter)
	query := selectColumns + where.clause() + orderAndLimit(filter)

	rows, err := s.db.QueryContext(ctx, query, where.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			logging.Warn().Err(err).Msg("Failed to scan audit event row")
			continue
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit events: %w", err)
	}
	return events, nil
}

// Count returns the number of events matching the filter.
func (s *DuckDBStore) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where := newEventFilter(filter)
	query := "SELECT COUNT(*) FROM audit_events" + where.clause()

	var count int64
	if err := s.db.QueryRowContext(ctx, query, where.args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count audit events: %w", err)
	}
	return count, nil
}

// Delete removes events older than the given time. This is the retention
// sweep, the only sanctioned deletion path for the trail.
func (s *DuckDBStore) Delete(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM audit_events WHERE timestamp < ?", olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old audit events: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get deleted count: %w", err)
	}
	if count > 0 {
		logging.Info().Int64("deleted", count).Time("older_than", olderThan).Msg("Deleted old audit events")
	}
	return count, nil
}

// GetStats summarizes the trail for the admin dashboard.
func (s *DuckDBStore) GetStats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_events").Scan(&stats.TotalEvents); err != nil {
		return nil, fmt.Errorf("failed to get total count: %w", err)
	}

	var err error
	if stats.EventsByType, err = s.groupCount(ctx, "type"); err != nil {
		return nil, err
	}
	if stats.EventsBySeverity, err = s.groupCount(ctx, "severity"); err != nil {
		return nil, err
	}
	if stats.EventsByOutcome, err = s.groupCount(ctx, "outcome"); err != nil {
		return nil, err
	}

	var oldest, newest sql.NullTime
	if err := s.db.QueryRowContext(ctx,
		"SELECT MIN(timestamp), MAX(timestamp) FROM audit_events").Scan(&oldest, &newest); err == nil {
		if oldest.Valid {
			stats.OldestEvent = &oldest.Time
		}
		if newest.Valid {
			stats.NewestEvent = &newest.Time
		}
	}

	return stats, nil
}

// groupCount returns per-value counts for one column.
func (s *DuckDBStore) groupCount(ctx context.Context, column string) (map[string]int64, error) {
	query := fmt.Sprintf("SELECT %s, COUNT(*) FROM audit_events GROUP BY %s", column, column)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s counts: %w", column, err)
	}
	defer rows.Close()

	result := make(map[string]int64)
	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err == nil {
			result[key] = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s counts: %w", column, err)
	}
	return result, nil
}

// eventFilter accumulates WHERE conditions and their bind arguments.
type eventFilter struct {
	conditions []string
	args       []interface{}
}

func newEventFilter(filter QueryFilter) *eventFilter {
	f := &eventFilter{}

	filterIn(f, "type", filter.Types)
	filterIn(f, "severity", filter.Severities)
	filterIn(f, "outcome", filter.Outcomes)

	f.eq("actor_id", filter.ActorID)
	f.eq("actor_type", filter.ActorType)
	f.eq("target_id", filter.TargetID)
	f.eq("target_type", filter.TargetType)
	f.eq("source_ip", filter.SourceIP)
	f.eq("request_id", filter.RequestID)

	if filter.StartTime != nil {
		f.add("timestamp >= ?", *filter.StartTime)
	}
	if filter.EndTime != nil {
		f.add("timestamp <= ?", *filter.EndTime)
	}

	if filter.SearchText != "" {
		pattern := "%" + strings.ToLower(filter.SearchText) + "%"
		f.add("(LOWER(description) LIKE ? OR LOWER(action) LIKE ?)", pattern, pattern)
	}

	return f
}

func (f *eventFilter) add(condition string, args ...interface{}) {
	f.conditions = append(f.conditions, condition)
	f.args = append(f.args, args...)
}

func (f *eventFilter) eq(column, value string) {
	if value != "" {
		f.add(column+" = ?", value)
	}
}

// filterIn appends an IN condition. Methods cannot be generic, so this is a
// free function over the enum-backed string types in QueryFilter.
func filterIn[T ~string](f *eventFilter, column string, values []T) {
	if len(values) == 0 {
		return
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		f.args = append(f.args, string(v))
	}
	f.conditions = append(f.conditions, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ",")))
}

func (f *eventFilter) clause() string {
	if len(f.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conditions, " AND ")
}

// sortableColumns whitelists ORDER BY targets so filter.OrderBy can never
// smuggle SQL into the query.
var sortableColumns = map[string]bool{
	"timestamp": true, "type": true, "severity": true,
	"outcome": true, "actor_id": true, "created_at": true,
}

func orderAndLimit(filter QueryFilter) string {
	orderBy := "timestamp"
	if filter.OrderBy != "" && sortableColumns[filter.OrderBy] {
		orderBy = filter.OrderBy
	}
	direction := "ASC"
	if filter.OrderDesc {
		direction = "DESC"
	}

	clause := fmt.Sprintf(" ORDER BY %s %s", orderBy, direction)
	if filter.Limit > 0 {
		clause += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		clause += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}
	return clause
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanEvent decodes one trail row, reconstructing the optional target and
// JSON-encoded fields.
func scanEvent(row rowScanner) (*Event, error) {
	var (
		event                          Event
		eventType, severity, outcome   string
		actorRoles, metadata           sql.NullString
		targetID, targetType, targetNm sql.NullString
		sourcePort                     sql.NullInt64
	)

	err := row.Scan(
		&event.ID, &event.Timestamp, &eventType, &severity, &outcome,
		&event.Actor.ID, &event.Actor.Type, &event.Actor.Name,
		&actorRoles, &event.Actor.SessionID, &event.Actor.AuthMethod,
		&targetID, &targetType, &targetNm,
		&event.Source.IPAddress, &event.Source.UserAgent, &event.Source.Hostname, &sourcePort,
		&event.Action, &event.Description, &metadata,
		&event.RequestID,
	)
	if err != nil {
		return nil, err
	}

	event.Type = EventType(eventType)
	event.Severity = Severity(severity)
	event.Outcome = Outcome(outcome)

	if actorRoles.Valid && actorRoles.String != "" {
		if err := json.Unmarshal([]byte(actorRoles.String), &event.Actor.Roles); err != nil {
			logging.Debug().Err(err).Str("roles", actorRoles.String).Msg("Failed to parse actor roles JSON")
		}
	}
	if sourcePort.Valid {
		event.Source.Port = int(sourcePort.Int64)
	}
	if targetID.Valid {
		event.Target = &Target{ID: targetID.String, Type: targetType.String, Name: targetNm.String}
	}
	if metadata.Valid && metadata.String != "" {
		event.Metadata = json.RawMessage(metadata.String)
	}

	return &event, nil
}
