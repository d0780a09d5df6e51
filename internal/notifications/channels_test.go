// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package notifications

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tubefleet/tubefleet/internal/config"
)

func TestNewEmailChannel_DisabledReturnsNil(t *testing.T) {
	if ch := NewEmailChannel(config.EmailConfig{Enabled: false, Host: "mail.example.com"}); ch != nil {
		t.Error("disabled email config produced a channel")
	}
	if ch := NewEmailChannel(config.EmailConfig{Enabled: true}); ch != nil {
		t.Error("email config without host produced a channel")
	}
}

func TestEmailChannel_InvalidRecipient(t *testing.T) {
	ch := NewEmailChannel(config.EmailConfig{
		Enabled: true,
		Host:    "mail.example.com",
		Port:    587,
		From:    "noreply@tubefleet.example",
	})
	if ch == nil {
		t.Fatal("channel not created")
	}

	res, err := ch.Deliver(context.Background(), Recipient{Email: "not-an-address"}, &Message{Subject: "x", Body: "y", Count: 1})
	if err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if res.Success {
		t.Error("delivery to invalid address succeeded")
	}
	if res.Transient {
		t.Error("invalid address classified transient")
	}
}

func TestValidateEmailAddress(t *testing.T) {
	valid := []string{"a@b.co", "user.name@sub.example.com"}
	invalid := []string{"", "plain", "@host.com", "user@", "user@nodot"}

	for _, addr := range valid {
		if err := validateEmailAddress(addr); err != nil {
			t.Errorf("validateEmailAddress(%q) = %v, want nil", addr, err)
		}
	}
	for _, addr := range invalid {
		if err := validateEmailAddress(addr); err == nil {
			t.Errorf("validateEmailAddress(%q) = nil, want error", addr)
		}
	}
}

func TestAdminWebhookChannel_Success(t *testing.T) {
	var gotBody string
	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotHeader = r.Header.Get("X-Ops-Token")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ch := NewAdminWebhookChannel(config.AdminWebhookConfig{
		Enabled:    true,
		WebhookURL: server.URL,
		Headers:    map[string]string{"X-Ops-Token": "secret"},
	})
	if ch == nil {
		t.Fatal("channel not created")
	}

	res, err := ch.Deliver(context.Background(), Recipient{UserID: "user-1"}, &Message{
		Type:     "escalation",
		Severity: "critical",
		Subject:  "5 unacknowledged critical alerts",
		Body:     "- title: body\n",
		Count:    5,
	})
	if err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if !res.Success {
		t.Fatalf("delivery failed: %s", res.ErrorMessage)
	}
	if res.ResponseCode != http.StatusOK {
		t.Errorf("response code = %d", res.ResponseCode)
	}
	if gotHeader != "secret" {
		t.Errorf("custom header = %q, want secret", gotHeader)
	}
	if !strings.Contains(gotBody, `"severity":"critical"`) || !strings.Contains(gotBody, `"count":5`) {
		t.Errorf("unexpected payload: %s", gotBody)
	}
}

func TestAdminWebhookChannel_ServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	ch := NewAdminWebhookChannel(config.AdminWebhookConfig{Enabled: true, WebhookURL: server.URL})
	res, err := ch.Deliver(context.Background(), Recipient{}, &Message{Subject: "x", Count: 1})
	if err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if res.Success {
		t.Error("5xx treated as success")
	}
	if !res.Transient {
		t.Error("5xx not classified transient")
	}
}

func TestAdminWebhookChannel_ClientErrorIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	ch := NewAdminWebhookChannel(config.AdminWebhookConfig{Enabled: true, WebhookURL: server.URL})
	res, err := ch.Deliver(context.Background(), Recipient{}, &Message{Subject: "x", Count: 1})
	if err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if res.Success || res.Transient {
		t.Errorf("403 classification: success=%v transient=%v, want permanent failure", res.Success, res.Transient)
	}
}

func TestAdminWebhookChannel_Throttle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ch := NewAdminWebhookChannel(config.AdminWebhookConfig{
		Enabled:     true,
		WebhookURL:  server.URL,
		RateLimitMs: 50,
	})

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := ch.Deliver(context.Background(), Recipient{}, &Message{Subject: "x", Count: 1}); err != nil {
			t.Fatalf("Deliver() error = %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("three posts took %v, want >= 100ms with 50ms spacing", elapsed)
	}
}

func TestNewAdminWebhookChannel_DisabledReturnsNil(t *testing.T) {
	if ch := NewAdminWebhookChannel(config.AdminWebhookConfig{Enabled: false, WebhookURL: "http://x"}); ch != nil {
		t.Error("disabled webhook config produced a channel")
	}
	if ch := NewAdminWebhookChannel(config.AdminWebhookConfig{Enabled: true}); ch != nil {
		t.Error("webhook config without URL produced a channel")
	}
}
