// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

// Package validation wraps go-playground/validator v10 behind a singleton
// with error translation into the API's VALIDATION_ERROR envelope.
//
// Request structs declare their constraints with `validate` tags and the API
// layer calls ValidateStruct after JSON decoding:
//
//	type CreateEventRequest struct {
//	    Title        string `validate:"required,min=1,max=200"`
//	    StartTime    string `validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
//	    Timezone     string `validate:"omitempty,timezone"`
//	    IngestionURL string `validate:"omitempty,rtmp"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    // 400 with apiErr.Code, apiErr.Message, apiErr.Details
//	}
//
// Beyond the library's built-ins (required, min/max, email, url, uuid,
// base64url, datetime, timezone, iso4217, oneof, gte/lte), the package
// registers one custom tag:
//
//   - rtmp: an rtmp:// or rtmps:// ingestion URL with a non-empty host.
//     The built-in url tag accepts any scheme, which is too loose for
//     stream ingestion addresses.
//
// Failed fields are translated to client-facing messages ("StartTime must be
// a valid date/time in RFC3339 format") and aggregated: a single failure
// yields a flat details map, multiple failures a details.fields list. See
// RequestValidationError.ToAPIError for the exact envelope shapes.
//
// The singleton is initialized once via sync.Once and is safe for concurrent
// use; validator caches per-type reflection data so repeat validations of
// the same request struct are cheap.
package validation
