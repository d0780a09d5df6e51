// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package billing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tubefleet/tubefleet/internal/config"
)

func newTestStripeClient(baseURL string) *StripeClient {
	return NewStripeClient(&config.StripeConfig{
		Enabled: true,
		APIKey:  "sk_test_123",
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
	})
}

func TestStripeCreateCustomer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/customers" {
			t.Errorf("path = %s, want /customers", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test_123" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/x-www-form-urlencoded" {
			t.Errorf("Content-Type = %q", got)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parsing form: %v", err)
		}
		if got := r.PostForm.Get("email"); got != "op@example.com" {
			t.Errorf("email = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cus_abc123"}`))
	}))
	defer srv.Close()

	client := newTestStripeClient(srv.URL)
	id, err := client.CreateCustomer(context.Background(), "op@example.com", "operator")
	if err != nil {
		t.Fatalf("CreateCustomer() error = %v", err)
	}
	if id != "cus_abc123" {
		t.Errorf("id = %q, want cus_abc123", id)
	}
}

func TestStripeAttachSubscription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parsing form: %v", err)
		}
		if got := r.PostForm.Get("items[0][price]"); got != "price_pro" {
			t.Errorf("price = %q", got)
		}
		_, _ = w.Write([]byte(`{"id":"sub_abc"}`))
	}))
	defer srv.Close()

	client := newTestStripeClient(srv.URL)
	id, err := client.AttachSubscription(context.Background(), "cus_abc", "price_pro")
	if err != nil {
		t.Fatalf("AttachSubscription() error = %v", err)
	}
	if id != "sub_abc" {
		t.Errorf("id = %q, want sub_abc", id)
	}
}

func TestStripeDeclinedMapsToErrPaymentDeclined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"message":"Your card was declined."}}`))
	}))
	defer srv.Close()

	client := newTestStripeClient(srv.URL)
	_, err := client.CollectInvoice(context.Background(), "cus_abc", 1000, "USD", "proration")
	if !errors.Is(err, ErrPaymentDeclined) {
		t.Errorf("error = %v, want ErrPaymentDeclined", err)
	}
}

func TestStripeBadRequestMapsToErrStripeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Missing required param: customer"}}`))
	}))
	defer srv.Close()

	client := newTestStripeClient(srv.URL)
	_, err := client.CollectInvoice(context.Background(), "", 1000, "USD", "proration")
	if !errors.Is(err, ErrStripeRejected) {
		t.Errorf("error = %v, want ErrStripeRejected", err)
	}
}

func TestStripeServerErrorMapsToUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestStripeClient(srv.URL)
	_, err := client.CreateCustomer(context.Background(), "op@example.com", "")
	if !errors.Is(err, ErrStripeUnavailable) {
		t.Errorf("error = %v, want ErrStripeUnavailable", err)
	}
}

func TestStripeVoidInvoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/invoices/in_abc/void" {
			t.Errorf("path = %s, want /invoices/in_abc/void", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id":"in_abc"}`))
	}))
	defer srv.Close()

	client := newTestStripeClient(srv.URL)
	if err := client.VoidInvoice(context.Background(), "in_abc"); err != nil {
		t.Fatalf("VoidInvoice() error = %v", err)
	}
}
