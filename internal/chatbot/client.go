// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

// Package chatbot wraps an OpenAI-compatible chat completion API for
// automated comment replies.
package chatbot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tubefleet/tubefleet/internal/config"
	"github.com/tubefleet/tubefleet/internal/logging"
	"github.com/tubefleet/tubefleet/internal/metrics"
)

// breakerName labels the completion API breaker in metrics and logs.
const breakerName = "chatbot-api"

// ErrDisabled is returned when automated replies are turned off.
var ErrDisabled = errors.New("chatbot is disabled")

// ErrEmptyCompletion is returned when the API responds without usable text.
var ErrEmptyCompletion = errors.New("completion response contained no text")

// systemPrompt frames every reply request. Trigger templates supply the
// per-trigger instruction on top.
const systemPrompt = "You write short, friendly replies to YouTube comments " +
	"on behalf of a channel owner. Keep replies under two sentences and never " +
	"promise anything on the owner's behalf."

// Client calls an OpenAI-compatible chat completions endpoint behind a
// circuit breaker, with a minimum interval between calls so a comment burst
// cannot exhaust the provider quota.
//
// Thread Safety: all methods are safe for concurrent use.
type Client struct {
	config     config.ChatbotConfig
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[string]

	mu       sync.Mutex
	lastCall time.Time
}

// NewClient creates a completion client from configuration.
func NewClient(cfg config.ChatbotConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("[CIRCUIT BREAKER] Completion API state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: timeout},
		cb:         cb,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete generates a reply for the given comment text. instruction is the
// trigger's template, used as the per-trigger steering prompt.
func (c *Client) Complete(ctx context.Context, instruction, commentText string) (string, error) {
	if !c.config.Enabled {
		return "", ErrDisabled
	}

	if err := c.throttle(ctx); err != nil {
		return "", err
	}

	return c.cb.Execute(func() (string, error) {
		return c.complete(ctx, instruction, commentText)
	})
}

// throttle reserves the next call slot. With RateLimitMs at 500 a burst of
// matches drains at two completions per second.
func (c *Client) throttle(ctx context.Context) error {
	if c.config.RateLimitMs <= 0 {
		return nil
	}
	interval := time.Duration(c.config.RateLimitMs) * time.Millisecond

	c.mu.Lock()
	now := time.Now()
	wait := c.lastCall.Add(interval).Sub(now)
	if wait < 0 {
		wait = 0
	}
	c.lastCall = now.Add(wait)
	c.mu.Unlock()

	if wait == 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) complete(ctx context.Context, instruction, commentText string) (string, error) {
	reqBody := completionRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "system", Content: instruction},
			{Role: "user", Content: commentText},
		},
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encoding completion request: %w", err)
	}

	url := strings.TrimRight(c.config.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling completion API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading completion response: %w", err)
	}

	var parsed completionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decoding completion response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if parsed.Error != nil {
			return "", fmt.Errorf("completion API returned %d: %s", resp.StatusCode, parsed.Error.Message)
		}
		return "", fmt.Errorf("completion API returned %d", resp.StatusCode)
	}

	if len(parsed.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
