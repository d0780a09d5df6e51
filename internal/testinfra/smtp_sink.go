// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultMailSinkImage is the MailHog SMTP sink image.
	DefaultMailSinkImage = "mailhog/mailhog:v1.0.1"

	mailSinkSMTPPort = "1025"
	mailSinkHTTPPort = "8025"
)

// MailSinkContainer is a running MailHog instance. Mail delivered to
// SMTPHost:SMTPPort is captured and readable through Messages.
type MailSinkContainer struct {
	testcontainers.Container
	SMTPHost string
	SMTPPort int
	APIBase  string
}

// MailSinkOption configures the sink container.
type MailSinkOption func(*mailSinkConfig)

type mailSinkConfig struct {
	image        string
	startTimeout time.Duration
}

// WithMailSinkImage sets a custom MailHog image.
func WithMailSinkImage(image string) MailSinkOption {
	return func(c *mailSinkConfig) {
		c.image = image
	}
}

// WithMailSinkStartTimeout sets the timeout for waiting for the sink to start.
func WithMailSinkStartTimeout(timeout time.Duration) MailSinkOption {
	return func(c *mailSinkConfig) {
		c.startTimeout = timeout
	}
}

// NewMailSinkContainer creates and starts a MailHog container.
func NewMailSinkContainer(ctx context.Context, opts ...MailSinkOption) (*MailSinkContainer, error) {
	cfg := &mailSinkConfig{
		image:        DefaultMailSinkImage,
		startTimeout: 60 * time.Second,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{mailSinkSMTPPort + "/tcp", mailSinkHTTPPort + "/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(mailSinkSMTPPort+"/tcp"),
			wait.ForHTTP("/api/v2/messages").WithPort(mailSinkHTTPPort+"/tcp"),
		).WithStartupTimeout(cfg.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create mail sink container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get container host: %w", err)
	}

	smtpPort, err := container.MappedPort(ctx, mailSinkSMTPPort)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped SMTP port: %w", err)
	}

	httpPort, err := container.MappedPort(ctx, mailSinkHTTPPort)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped HTTP port: %w", err)
	}

	return &MailSinkContainer{
		Container: container,
		SMTPHost:  host,
		SMTPPort:  smtpPort.Int(),
		APIBase:   fmt.Sprintf("http://%s:%s", host, httpPort.Port()),
	}, nil
}

// SinkMessage is one captured mail.
type SinkMessage struct {
	Subject string
	Body    string
	Headers map[string][]string
}

// mailhogEnvelope mirrors the fields of MailHog's /api/v2/messages response
// that the tests read.
type mailhogEnvelope struct {
	Total int `json:"total"`
	Items []struct {
		Content struct {
			Headers map[string][]string `json:"Headers"`
			Body    string              `json:"Body"`
		} `json:"Content"`
	} `json:"items"`
}

// Messages returns all mail the sink has captured, newest first.
func (c *MailSinkContainer) Messages(ctx context.Context) ([]SinkMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIBase+"/api/v2/messages", nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query mail sink: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mail sink returned %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read mail sink response: %w", err)
	}

	var envelope mailhogEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode mail sink response: %w", err)
	}

	messages := make([]SinkMessage, 0, len(envelope.Items))
	for _, item := range envelope.Items {
		msg := SinkMessage{
			Body:    item.Content.Body,
			Headers: item.Content.Headers,
		}
		if subjects := item.Content.Headers["Subject"]; len(subjects) > 0 {
			msg.Subject = subjects[0]
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

// WaitForMessages polls until at least n messages arrive or the timeout
// elapses. SMTP delivery is asynchronous from the sender's point of view, so
// tests poll rather than read immediately after a send.
func (c *MailSinkContainer) WaitForMessages(ctx context.Context, n int, timeout time.Duration) ([]SinkMessage, error) {
	var messages []SinkMessage
	err := WaitForReady(ctx, func() bool {
		got, err := c.Messages(ctx)
		if err != nil || len(got) < n {
			return false
		}
		messages = got
		return true
	}, timeout)
	if err != nil {
		return nil, fmt.Errorf("waiting for %d messages: %w", n, err)
	}
	return messages, nil
}

// Clear deletes all captured mail so tests can assert on exact counts.
func (c *MailSinkContainer) Clear(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.APIBase+"/api/v1/messages", nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("clear mail sink: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mail sink returned %d", resp.StatusCode)
	}
	return nil
}

// Terminate stops and removes the sink container.
func (c *MailSinkContainer) Terminate(ctx context.Context) error {
	return c.Container.Terminate(ctx)
}
