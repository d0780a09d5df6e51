// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package comments

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tubefleet/tubefleet/internal/models"
)

// Trigger validation sentinels, surfaced as 400s by the API layer.
var (
	ErrEmptyPattern  = errors.New("trigger pattern must not be empty")
	ErrEmptyResponse = errors.New("response template must not be empty")
	ErrBadMatchType  = errors.New("unknown match type")
	ErrBadRegexp     = errors.New("pattern is not a valid regular expression")
)

// maxPatternLength bounds trigger patterns; YouTube comments cap out well
// below this.
const maxPatternLength = 1024

// TriggerStore is the persistence surface for trigger management.
type TriggerStore interface {
	CreateChatbotTrigger(ctx context.Context, trigger *models.ChatbotTrigger) error
	GetChatbotTrigger(ctx context.Context, id string) (*models.ChatbotTrigger, error)
	ListTriggersByChannel(ctx context.Context, channelID string, enabledOnly bool) ([]models.ChatbotTrigger, error)
	UpdateChatbotTrigger(ctx context.Context, trigger *models.ChatbotTrigger) error
	DeleteChatbotTrigger(ctx context.Context, id string) error
	ListRepliesByChannel(ctx context.Context, channelID string, limit, offset int) ([]models.ChatbotReply, error)
}

// Triggers manages chatbot trigger definitions.
type Triggers struct {
	store TriggerStore
}

// NewTriggers creates the trigger manager.
func NewTriggers(store TriggerStore) *Triggers {
	return &Triggers{store: store}
}

// ValidateTrigger rejects definitions that could never fire or would break
// at evaluation time. Regex patterns must compile at write time so the
// responder never sees an uncompilable pattern.
func ValidateTrigger(trigger *models.ChatbotTrigger) error {
	if !models.IsValidMatchType(trigger.MatchType) {
		return fmt.Errorf("%w: %q", ErrBadMatchType, trigger.MatchType)
	}
	if strings.TrimSpace(trigger.Pattern) == "" {
		return ErrEmptyPattern
	}
	if len(trigger.Pattern) > maxPatternLength {
		return fmt.Errorf("pattern exceeds %d characters", maxPatternLength)
	}
	if trigger.MatchType == models.MatchTypeRegex {
		if _, err := regexp.Compile(trigger.Pattern); err != nil {
			return fmt.Errorf("%w: %v", ErrBadRegexp, err)
		}
	}
	// AI triggers use the template as the steering prompt; it may be empty,
	// the system prompt alone then frames the reply.
	if !trigger.UseAI && strings.TrimSpace(trigger.ResponseTemplate) == "" {
		return ErrEmptyResponse
	}
	return nil
}

// Create validates and persists a trigger.
func (t *Triggers) Create(ctx context.Context, trigger *models.ChatbotTrigger) error {
	if err := ValidateTrigger(trigger); err != nil {
		return err
	}
	return t.store.CreateChatbotTrigger(ctx, trigger)
}

// Get returns one trigger.
func (t *Triggers) Get(ctx context.Context, id string) (*models.ChatbotTrigger, error) {
	return t.store.GetChatbotTrigger(ctx, id)
}

// List returns a channel's triggers in evaluation order.
func (t *Triggers) List(ctx context.Context, channelID string) ([]models.ChatbotTrigger, error) {
	return t.store.ListTriggersByChannel(ctx, channelID, false)
}

// Update validates and persists trigger changes.
func (t *Triggers) Update(ctx context.Context, trigger *models.ChatbotTrigger) error {
	if err := ValidateTrigger(trigger); err != nil {
		return err
	}
	return t.store.UpdateChatbotTrigger(ctx, trigger)
}

// Delete removes a trigger. Its reply history stays.
func (t *Triggers) Delete(ctx context.Context, id string) error {
	return t.store.DeleteChatbotTrigger(ctx, id)
}

// Replies returns a page of a channel's posted replies, newest first.
func (t *Triggers) Replies(ctx context.Context, channelID string, limit, offset int) ([]models.ChatbotReply, error) {
	return t.store.ListRepliesByChannel(ctx, channelID, limit, offset)
}

// TestResult is the outcome of a dry trigger evaluation.
type TestResult struct {
	Matched bool `json:"matched"`

	// Response is the rendered template reply. Empty for AI triggers, which
	// generate at post time.
	Response string `json:"response,omitempty"`
}

// Test evaluates a trigger definition against sample text without firing
// it: no reply is posted, no counters move. Backs the trigger test endpoint.
func (t *Triggers) Test(trigger *models.ChatbotTrigger, sampleText string) (*TestResult, error) {
	if err := ValidateTrigger(trigger); err != nil {
		return nil, err
	}
	result := &TestResult{Matched: Matches(trigger, sampleText)}
	if result.Matched && !trigger.UseAI {
		result.Response = renderTemplate(trigger.ResponseTemplate, sampleText, "")
	}
	return result, nil
}

// Matches reports whether the trigger fires on the given comment text.
// Exact, contains, and prefix matching honor CaseSensitive; regex patterns
// manage their own case handling.
func Matches(trigger *models.ChatbotTrigger, text string) bool {
	pattern := trigger.Pattern

	if trigger.MatchType == models.MatchTypeRegex {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false
		}
		return re.MatchString(text)
	}

	if !trigger.CaseSensitive {
		text = strings.ToLower(text)
		pattern = strings.ToLower(pattern)
	}

	switch trigger.MatchType {
	case models.MatchTypeExact:
		return strings.TrimSpace(text) == pattern
	case models.MatchTypeContains:
		return strings.Contains(text, pattern)
	case models.MatchTypePrefix:
		return strings.HasPrefix(strings.TrimSpace(text), pattern)
	default:
		return false
	}
}

// renderTemplate substitutes the supported placeholders into a response
// template: {author} for the comment author's display name, {comment} for
// the comment text.
func renderTemplate(template, commentText, authorName string) string {
	out := strings.ReplaceAll(template, "{author}", authorName)
	out = strings.ReplaceAll(out, "{comment}", commentText)
	return strings.TrimSpace(out)
}
