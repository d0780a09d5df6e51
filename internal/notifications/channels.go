// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package notifications

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/smtp"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tubefleet/tubefleet/internal/config"
	"github.com/tubefleet/tubefleet/internal/metrics"
)

// Recipient identifies who a delivery goes to.
type Recipient struct {
	UserID string
	Email  string
	Name   string
}

// Message is the channel-independent delivery content.
type Message struct {
	Type     string
	Severity string
	Subject  string
	Body     string

	// Count is the number of notifications folded into a digest; 1 for a
	// solo delivery.
	Count int

	// Escalated marks escalation re-deliveries.
	Escalated bool
}

// Result reports one delivery attempt. A failed attempt is carried in the
// result, not as an error; the error return is reserved for caller bugs
// (nil message, unconfigured channel).
type Result struct {
	Success      bool
	ErrorMessage string

	// Transient marks failures worth retrying (connection, timeout, 5xx).
	Transient bool

	ResponseCode int
	DeliveredAt  *time.Time
}

// Channel is one delivery path. Implementations classify their own errors
// as transient or permanent in the Result.
type Channel interface {
	Name() string
	Deliver(ctx context.Context, rcpt Recipient, msg *Message) (*Result, error)
}

func failure(err error, transient bool) *Result {
	return &Result{ErrorMessage: err.Error(), Transient: transient}
}

func success() *Result {
	now := time.Now().UTC()
	return &Result{Success: true, DeliveredAt: &now}
}

// recordDelivery feeds the per-channel delivery counters.
func recordDelivery(channel string, res *Result) {
	status := "failed"
	if res.Success {
		status = "sent"
	}
	metrics.NotificationsDelivered.WithLabelValues(channel, status).Inc()
}

// EmailChannel delivers over SMTP with STARTTLS.
type EmailChannel struct {
	cfg config.EmailConfig
}

// NewEmailChannel creates the SMTP channel. Returns nil when email delivery
// is disabled so callers can treat the channel as absent.
func NewEmailChannel(cfg config.EmailConfig) *EmailChannel {
	if !cfg.Enabled || cfg.Host == "" {
		return nil
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &EmailChannel{cfg: cfg}
}

func (c *EmailChannel) Name() string { return "email" }

// Deliver sends one plain-text mail.
func (c *EmailChannel) Deliver(ctx context.Context, rcpt Recipient, msg *Message) (*Result, error) {
	if msg == nil {
		return nil, fmt.Errorf("nil message")
	}
	if err := validateEmailAddress(rcpt.Email); err != nil {
		res := failure(err, false)
		recordDelivery(c.Name(), res)
		return res, nil
	}

	if err := c.send(ctx, rcpt.Email, c.buildMessage(rcpt, msg)); err != nil {
		res := failure(err, isTransientSMTPError(err))
		recordDelivery(c.Name(), res)
		return res, nil
	}

	res := success()
	recordDelivery(c.Name(), res)
	return res, nil
}

func (c *EmailChannel) buildMessage(rcpt Recipient, msg *Message) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("From: TubeFleet <%s>\r\n", c.cfg.From))
	b.WriteString(fmt.Sprintf("To: %s\r\n", rcpt.Email))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString(fmt.Sprintf("X-TubeFleet-Type: %s\r\n", msg.Type))
	if msg.Escalated {
		b.WriteString("X-TubeFleet-Escalated: true\r\n")
	}
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	b.WriteString("\r\n")
	return b.String()
}

func (c *EmailChannel) send(ctx context.Context, to, msg string) error {
	addr := fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.Port)

	dialer := &net.Dialer{Timeout: c.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connecting to SMTP server: %w", err)
	}
	defer func() { _ = conn.Close() }()

	client, err := smtp.NewClient(conn, c.cfg.Host)
	if err != nil {
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }()

	if c.cfg.UseTLS {
		tlsConfig := &tls.Config{
			ServerName: c.cfg.Host,
			MinVersion: tls.VersionTLS12,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("starting TLS: %w", err)
		}
	}

	if c.cfg.Username != "" && c.cfg.Password != "" {
		auth := smtp.PlainAuth("", c.cfg.Username, c.cfg.Password, c.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(c.cfg.From); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("starting message body: %w", err)
	}
	if _, err := writer.Write([]byte(msg)); err != nil {
		return fmt.Errorf("writing message body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing message body: %w", err)
	}

	// Quit failures after a completed DATA are ignored; the mail was sent.
	_ = client.Quit()
	return nil
}

// isTransientSMTPError classifies by message text; net/smtp does not expose
// reply codes on its errors.
func isTransientSMTPError(err error) bool {
	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "connect"), strings.Contains(s, "connection"):
		return true
	case strings.Contains(s, "timeout"), strings.Contains(s, "deadline"):
		return true
	case strings.Contains(s, "rate"), strings.Contains(s, "limit"), strings.Contains(s, "try again"):
		return true
	default:
		return false
	}
}

func validateEmailAddress(email string) error {
	if email == "" {
		return fmt.Errorf("recipient has no email address")
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" || !strings.Contains(parts[1], ".") {
		return fmt.Errorf("invalid email address %q", email)
	}
	return nil
}

// AdminWebhookChannel posts escalated alerts to the ops webhook. Deliveries
// are spaced by the configured rate limit so an alert storm cannot flood
// the receiving service.
type AdminWebhookChannel struct {
	cfg    config.AdminWebhookConfig
	client *http.Client

	mu       sync.Mutex
	lastSent time.Time
}

// NewAdminWebhookChannel creates the ops webhook channel, or nil when it is
// disabled or has no URL.
func NewAdminWebhookChannel(cfg config.AdminWebhookConfig) *AdminWebhookChannel {
	if !cfg.Enabled || cfg.WebhookURL == "" {
		return nil
	}
	return &AdminWebhookChannel{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *AdminWebhookChannel) Name() string { return "admin_webhook" }

// adminAlert is the JSON body posted to the ops webhook.
type adminAlert struct {
	Event     string    `json:"event"`
	Severity  string    `json:"severity"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	UserID    string    `json:"user_id,omitempty"`
	Count     int       `json:"count,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Deliver posts the alert. 2xx is success, 5xx and transport errors are
// transient, everything else is permanent.
func (c *AdminWebhookChannel) Deliver(ctx context.Context, rcpt Recipient, msg *Message) (*Result, error) {
	if msg == nil {
		return nil, fmt.Errorf("nil message")
	}
	c.throttle(ctx)

	body, err := json.Marshal(adminAlert{
		Event:     msg.Type,
		Severity:  msg.Severity,
		Subject:   msg.Subject,
		Body:      msg.Body,
		UserID:    rcpt.UserID,
		Count:     msg.Count,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "TubeFleet-Notifications/1.0")
	for key, value := range c.cfg.Headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		res := failure(fmt.Errorf("posting alert: %w", err), true)
		recordDelivery(c.Name(), res)
		return res, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		res := success()
		res.ResponseCode = resp.StatusCode
		recordDelivery(c.Name(), res)
		return res, nil
	}

	res := failure(fmt.Errorf("alert webhook returned %d", resp.StatusCode), resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests)
	res.ResponseCode = resp.StatusCode
	recordDelivery(c.Name(), res)
	return res, nil
}

// throttle waits out the minimum spacing between posts, giving up early on
// context cancellation.
func (c *AdminWebhookChannel) throttle(ctx context.Context) {
	if c.cfg.RateLimitMs <= 0 {
		return
	}
	c.mu.Lock()
	wait := time.Duration(c.cfg.RateLimitMs)*time.Millisecond - time.Since(c.lastSent)
	c.lastSent = time.Now().Add(max(wait, 0))
	c.mu.Unlock()

	if wait <= 0 {
		return
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
