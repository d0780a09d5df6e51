// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package database

import (
	"encoding/json"
	"fmt"
)

// encodeJSON marshals a value for insertion into a JSON column.
// Nil and empty slices insert as NULL so the column stays queryable
// with IS NULL.
func encodeJSON(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch val := v.(type) {
	case []int:
		if len(val) == 0 {
			return nil, nil
		}
	case []string:
		if len(val) == 0 {
			return nil, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode json column: %w", err)
	}
	return string(b), nil
}

// decodeJSON unmarshals a scanned JSON column into dst. DuckDB hands JSON
// back as a string, []byte, or an already-parsed Go value depending on
// driver version, so normalize through text form first.
func decodeJSON(v any, dst any) error {
	if v == nil {
		return nil
	}
	var raw []byte
	switch val := v.(type) {
	case string:
		raw = []byte(val)
	case []byte:
		raw = val
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Errorf("failed to normalize json column: %w", err)
		}
		raw = b
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
