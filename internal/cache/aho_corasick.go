// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

// Package cache provides in-memory caches and the multi-pattern matcher
// used by moderation, RBAC decision caching, and event deduplication.
package cache

import (
	"strings"
	"sync"
)

// AhoCorasick matches many patterns against a text in a single pass,
// O(n + m + z) for text length n, total pattern length m, and z matches.
// Moderation compiles each keyword rule's term list into one automaton so
// scanning a comment costs one walk regardless of how many terms the rule
// carries.
//
//	ac := NewAhoCorasick()
//	ac.AddPattern("free robux", ruleID)
//	ac.AddPattern("sub4sub", ruleID)
//	ac.Build()
//	m, ok := ac.SearchFirst(commentText)
type AhoCorasick struct {
	mu            sync.RWMutex
	root          *acNode
	patterns      []Pattern
	built         bool
	caseSensitive bool
}

type acNode struct {
	children map[rune]*acNode
	failure  *acNode
	output   []int // indices of patterns ending at this node
	depth    int
}

// Pattern is a search term with caller-supplied data carried into matches.
type Pattern struct {
	Text string
	Data any
}

// Match reports one pattern occurrence.
type Match struct {
	Pattern  string
	Data     any
	Position int // byte offset of the match start
}

// NewAhoCorasick creates a case-insensitive automaton.
func NewAhoCorasick() *AhoCorasick {
	return &AhoCorasick{root: newACNode(0)}
}

// NewAhoCorasickCaseSensitive creates a case-sensitive automaton.
func NewAhoCorasickCaseSensitive() *AhoCorasick {
	return &AhoCorasick{root: newACNode(0), caseSensitive: true}
}

func newACNode(depth int) *acNode {
	return &acNode{children: make(map[rune]*acNode), depth: depth}
}

// AddPattern registers a pattern. Empty patterns are ignored. Adding after
// Build marks the automaton dirty; Build must be called again before the
// next search sees the new pattern.
func (ac *AhoCorasick) AddPattern(pattern string, data any) {
	if pattern == "" {
		return
	}

	ac.mu.Lock()
	defer ac.mu.Unlock()

	ac.built = false
	ac.patterns = append(ac.patterns, Pattern{Text: pattern, Data: data})
}

// AddPatterns registers several patterns sharing the same data value.
func (ac *AhoCorasick) AddPatterns(patterns []string, data any) {
	for _, p := range patterns {
		ac.AddPattern(p, data)
	}
}

// Build constructs the trie and failure links. Idempotent until the next
// AddPattern.
func (ac *AhoCorasick) Build() {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	if ac.built {
		return
	}

	ac.root = newACNode(0)
	for i, p := range ac.patterns {
		ac.insert(i, p.Text)
	}
	ac.linkFailures()
	ac.built = true
}

func (ac *AhoCorasick) insert(index int, pattern string) {
	if !ac.caseSensitive {
		pattern = strings.ToLower(pattern)
	}

	node := ac.root
	for _, ch := range pattern {
		if node.children[ch] == nil {
			node.children[ch] = newACNode(node.depth + 1)
		}
		node = node.children[ch]
	}
	node.output = append(node.output, index)
}

// linkFailures wires each node to its longest proper suffix via BFS, the
// standard Aho-Corasick construction.
func (ac *AhoCorasick) linkFailures() {
	queue := make([]*acNode, 0, len(ac.root.children))
	for _, child := range ac.root.children {
		child.failure = ac.root
		queue = append(queue, child)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for ch, child := range current.children {
			queue = append(queue, child)

			fail := current.failure
			for fail != nil && fail.children[ch] == nil {
				fail = fail.failure
			}
			if fail == nil {
				child.failure = ac.root
			} else {
				child.failure = fail.children[ch]
				child.output = append(child.output, child.failure.output...)
			}
		}
	}
}

// Search returns every pattern occurrence in text. Returns nil when the
// automaton is empty or unbuilt.
func (ac *AhoCorasick) Search(text string) []Match {
	ac.mu.RLock()
	defer ac.mu.RUnlock()

	if !ac.built || len(ac.patterns) == 0 {
		return nil
	}
	if !ac.caseSensitive {
		text = strings.ToLower(text)
	}

	var matches []Match
	node := ac.root
	for i, ch := range text {
		for node != nil && node.children[ch] == nil {
			node = node.failure
		}
		if node == nil {
			node = ac.root
			continue
		}
		node = node.children[ch]

		for _, idx := range node.output {
			p := ac.patterns[idx]
			matches = append(matches, Match{
				Pattern:  p.Text,
				Data:     p.Data,
				Position: i - len(p.Text) + 1,
			})
		}
	}
	return matches
}

// SearchFirst returns the first occurrence of any pattern. Cheaper than
// Search when the caller only needs to know which term fired.
func (ac *AhoCorasick) SearchFirst(text string) (Match, bool) {
	ac.mu.RLock()
	defer ac.mu.RUnlock()

	if !ac.built || len(ac.patterns) == 0 {
		return Match{}, false
	}
	if !ac.caseSensitive {
		text = strings.ToLower(text)
	}

	node := ac.root
	for i, ch := range text {
		for node != nil && node.children[ch] == nil {
			node = node.failure
		}
		if node == nil {
			node = ac.root
			continue
		}
		node = node.children[ch]

		if len(node.output) > 0 {
			p := ac.patterns[node.output[0]]
			return Match{
				Pattern:  p.Text,
				Data:     p.Data,
				Position: i - len(p.Text) + 1,
			}, true
		}
	}
	return Match{}, false
}

// Contains reports whether any pattern occurs in text.
func (ac *AhoCorasick) Contains(text string) bool {
	_, found := ac.SearchFirst(text)
	return found
}

// PatternCount returns the number of registered patterns.
func (ac *AhoCorasick) PatternCount() int {
	ac.mu.RLock()
	defer ac.mu.RUnlock()
	return len(ac.patterns)
}

// Clear drops all patterns and resets the automaton.
func (ac *AhoCorasick) Clear() {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	ac.root = newACNode(0)
	ac.patterns = nil
	ac.built = false
}
