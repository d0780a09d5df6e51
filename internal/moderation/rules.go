// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package moderation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tubefleet/tubefleet/internal/cache"
	"github.com/tubefleet/tubefleet/internal/models"
)

// Pattern validation errors, surfaced at rule creation time so a rule that
// cannot match anything never reaches the engine.
var (
	ErrEmptyTermList   = errors.New("keyword rule requires at least one term")
	ErrPatternTooLong  = errors.New("pattern exceeds the configured length cap")
	ErrInvalidRegexp   = errors.New("regex rule pattern does not compile")
	ErrUnknownRuleType = errors.New("unknown rule type")
)

// DefaultMaxPatternLength caps rule patterns when config leaves it unset.
const DefaultMaxPatternLength = 1024

// ValidatePattern checks a rule pattern at write time. Keyword patterns are
// comma-separated term lists; regex patterns must compile as RE2.
func ValidatePattern(ruleType, pattern string, maxLength int) error {
	if maxLength <= 0 {
		maxLength = DefaultMaxPatternLength
	}
	if len(pattern) > maxLength {
		return fmt.Errorf("%w: %d > %d bytes", ErrPatternTooLong, len(pattern), maxLength)
	}

	switch ruleType {
	case models.RuleTypeKeyword:
		if len(splitTerms(pattern)) == 0 {
			return ErrEmptyTermList
		}
		return nil
	case models.RuleTypeRegex:
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("%w: empty pattern", ErrInvalidRegexp)
		}
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRegexp, err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRuleType, ruleType)
	}
}

// splitTerms breaks a keyword pattern into its non-empty trimmed terms.
func splitTerms(pattern string) []string {
	var terms []string
	for _, raw := range strings.Split(pattern, ",") {
		term := strings.TrimSpace(raw)
		if term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

// detector is one compiled rule. Detect returns the first matched text, or
// "" when the rule does not fire; overlapping matches inside one comment
// count once per rule.
type detector interface {
	Rule() *models.ModerationRule
	Detect(text string) (matched string, hit bool)
}

// keywordDetector matches a term list with one case-insensitive automaton.
type keywordDetector struct {
	rule    *models.ModerationRule
	matcher *cache.AhoCorasick
}

func (d *keywordDetector) Rule() *models.ModerationRule { return d.rule }

func (d *keywordDetector) Detect(text string) (string, bool) {
	m, ok := d.matcher.SearchFirst(text)
	if !ok {
		return "", false
	}
	return m.Pattern, true
}

// regexDetector matches a compiled RE2 pattern.
type regexDetector struct {
	rule *models.ModerationRule
	re   *regexp.Regexp
}

func (d *regexDetector) Rule() *models.ModerationRule { return d.rule }

func (d *regexDetector) Detect(text string) (string, bool) {
	loc := d.re.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	return text[loc[0]:loc[1]], true
}

// compileRule builds the detector for one rule. The caller is expected to
// have validated the pattern at write time; a pattern that no longer
// compiles (schema drift, manual edits) is reported as an error rather
// than silently skipped.
func compileRule(rule *models.ModerationRule) (detector, error) {
	switch rule.RuleType {
	case models.RuleTypeKeyword:
		terms := splitTerms(rule.Pattern)
		if len(terms) == 0 {
			return nil, fmt.Errorf("rule %s: %w", rule.ID, ErrEmptyTermList)
		}
		matcher := cache.NewAhoCorasick()
		for _, term := range terms {
			matcher.AddPattern(term, rule.ID)
		}
		matcher.Build()
		return &keywordDetector{rule: rule, matcher: matcher}, nil
	case models.RuleTypeRegex:
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w: %v", rule.ID, ErrInvalidRegexp, err)
		}
		return &regexDetector{rule: rule, re: re}, nil
	default:
		return nil, fmt.Errorf("rule %s: %w: %q", rule.ID, ErrUnknownRuleType, rule.RuleType)
	}
}
