// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package billing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tubefleet/tubefleet/internal/config"
	"github.com/tubefleet/tubefleet/internal/logging"
	"github.com/tubefleet/tubefleet/internal/metrics"
)

// stripeBreakerName labels the Stripe breaker in metrics and logs.
const stripeBreakerName = "stripe-api"

// Stripe wrapper errors.
var (
	// ErrStripeUnavailable marks transport failures, 5xx responses, and an
	// open circuit. Callers fall back to past_due, never to an abort.
	ErrStripeUnavailable = errors.New("stripe api unavailable")

	// ErrPaymentDeclined marks a 402 from a collection attempt.
	ErrPaymentDeclined = errors.New("payment declined")

	// ErrStripeRejected marks 4xx responses other than 402: the request
	// itself is wrong and retrying will not help.
	ErrStripeRejected = errors.New("stripe rejected request")
)

// Gateway is the Stripe surface the billing service consumes. The product
// only needs customer creation, subscription attachment, and invoice
// collection/voiding; no fuller client is reproduced.
type Gateway interface {
	CreateCustomer(ctx context.Context, email, description string) (string, error)
	AttachSubscription(ctx context.Context, customerID, priceID string) (string, error)
	CollectInvoice(ctx context.Context, customerID string, amountCents int64, currency, description string) (string, error)
	VoidInvoice(ctx context.Context, stripeInvoiceID string) error
}

// StripeClient is the thin HTTP wrapper over the Stripe REST API
// (form-encoded requests, Bearer authentication) behind a circuit breaker.
type StripeClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[interface{}]
}

var _ Gateway = (*StripeClient)(nil)

// NewStripeClient creates the wrapper from config. The breaker opens at a
// 60% failure rate over a minute with at least 8 observed calls; declined
// payments are verdicts, not failures, and never trip it.
func NewStripeClient(cfg *config.StripeConfig) *StripeClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.stripe.com/v1"
	}

	metrics.CircuitBreakerState.WithLabelValues(stripeBreakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        stripeBreakerName,
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 8 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("[CIRCUIT BREAKER] Stripe API state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			return errors.Is(err, ErrPaymentDeclined) || errors.Is(err, ErrStripeRejected)
		},
	})

	return &StripeClient{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		cb:      cb,
	}
}

// stateToFloat converts circuit breaker state to the metrics gauge value.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
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

// CreateCustomer creates a Stripe customer and returns its id.
func (c *StripeClient) CreateCustomer(ctx context.Context, email, description string) (string, error) {
	form := url.Values{}
	form.Set("email", email)
	if description != "" {
		form.Set("description", description)
	}
	return c.postForID(ctx, "/customers", form)
}

// AttachSubscription subscribes an existing customer to a price.
func (c *StripeClient) AttachSubscription(ctx context.Context, customerID, priceID string) (string, error) {
	form := url.Values{}
	form.Set("customer", customerID)
	form.Set("items[0][price]", priceID)
	return c.postForID(ctx, "/subscriptions", form)
}

// CollectInvoice creates and immediately charges a one-off invoice for a
// proration adjustment. A negative amount is sent as a credit line.
func (c *StripeClient) CollectInvoice(ctx context.Context, customerID string, amountCents int64, currency, description string) (string, error) {
	form := url.Values{}
	form.Set("customer", customerID)
	form.Set("amount", strconv.FormatInt(amountCents, 10))
	form.Set("currency", strings.ToLower(currency))
	form.Set("description", description)
	form.Set("collection_method", "charge_automatically")
	return c.postForID(ctx, "/invoices", form)
}

// VoidInvoice voids an open Stripe invoice.
func (c *StripeClient) VoidInvoice(ctx context.Context, stripeInvoiceID string) error {
	_, err := c.postForID(ctx, "/invoices/"+url.PathEscape(stripeInvoiceID)+"/void", url.Values{})
	return err
}

// postForID runs one form-encoded POST through the breaker and returns the
// "id" field of the response object.
func (c *StripeClient) postForID(ctx context.Context, path string, form url.Values) (string, error) {
	result, err := c.cb.Execute(func() (interface{}, error) {
		return c.doPost(ctx, path, form)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(stripeBreakerName, "rejected").Inc()
			return "", fmt.Errorf("%w: circuit open", ErrStripeUnavailable)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(stripeBreakerName, "failure").Inc()
		return "", err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(stripeBreakerName, "success").Inc()

	id, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("stripe: unexpected result type %T", result)
	}
	return id, nil
}

func (c *StripeClient) doPost(ctx context.Context, path string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("building stripe request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStripeUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrStripeUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode == http.StatusPaymentRequired:
		return "", fmt.Errorf("%w: %s", ErrPaymentDeclined, stripeErrorMessage(body))
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return "", fmt.Errorf("%w: status %d: %s", ErrStripeRejected, resp.StatusCode, stripeErrorMessage(body))
	default:
		return "", fmt.Errorf("%w: status %d", ErrStripeUnavailable, resp.StatusCode)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decoding stripe response: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("%w: response missing id", ErrStripeRejected)
	}
	return out.ID, nil
}

// stripeErrorMessage extracts error.message from a Stripe error body,
// falling back to a truncated raw body.
func stripeErrorMessage(body []byte) string {
	var out struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &out); err == nil && out.Error.Message != "" {
		return out.Error.Message
	}
	s := string(body)
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
