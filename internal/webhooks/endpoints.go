// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package webhooks

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/tubefleet/tubefleet/internal/models"
)

// EndpointStore is the persistence surface for endpoint management.
type EndpointStore interface {
	CreateWebhookEndpoint(ctx context.Context, endpoint *models.WebhookEndpoint) error
	GetWebhookEndpoint(ctx context.Context, id string) (*models.WebhookEndpoint, error)
	ListWebhookEndpointsByUser(ctx context.Context, userID string) ([]models.WebhookEndpoint, error)
	UpdateWebhookEndpoint(ctx context.Context, endpoint *models.WebhookEndpoint) error
	DeleteWebhookEndpoint(ctx context.Context, id string) error
	ListDeliveriesByEndpoint(ctx context.Context, endpointID string, limit, offset int) ([]models.WebhookDelivery, error)
}

// Endpoints manages tenant webhook endpoints and their secrets.
type Endpoints struct {
	store EndpointStore
}

// NewEndpoints creates the endpoint manager.
func NewEndpoints(store EndpointStore) *Endpoints {
	return &Endpoints{store: store}
}

// ValidateURL checks an endpoint URL at registration time.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("endpoint URL is required")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid endpoint URL: %w", err)
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return fmt.Errorf("endpoint URL must use http or https")
	}
	if parsed.Host == "" {
		return fmt.Errorf("endpoint URL must have a host")
	}
	return nil
}

// Create registers an endpoint with a freshly generated secret. The secret
// is returned on the endpoint exactly once; reads afterwards never expose it.
func (e *Endpoints) Create(ctx context.Context, userID uuid.UUID, rawURL string, eventTypes []string) (*models.WebhookEndpoint, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	endpoint := models.NewWebhookEndpoint(userID, rawURL)
	if len(eventTypes) > 0 {
		endpoint.EventTypes = eventTypes
	}

	secret, err := GenerateSecret()
	if err != nil {
		return nil, err
	}
	endpoint.Secret = secret

	if err := e.store.CreateWebhookEndpoint(ctx, endpoint); err != nil {
		return nil, fmt.Errorf("creating endpoint: %w", err)
	}
	return endpoint, nil
}

// Get returns one endpoint.
func (e *Endpoints) Get(ctx context.Context, id string) (*models.WebhookEndpoint, error) {
	return e.store.GetWebhookEndpoint(ctx, id)
}

// List returns the user's endpoints.
func (e *Endpoints) List(ctx context.Context, userID string) ([]models.WebhookEndpoint, error) {
	return e.store.ListWebhookEndpointsByUser(ctx, userID)
}

// Update persists URL, subscription, and enabled changes. Re-enabling a
// disabled endpoint clears its failure streak.
func (e *Endpoints) Update(ctx context.Context, endpoint *models.WebhookEndpoint) error {
	if err := ValidateURL(endpoint.URL); err != nil {
		return err
	}
	if endpoint.Enabled {
		endpoint.ConsecutiveFailures = 0
		endpoint.DisabledAt = nil
	}
	endpoint.UpdatedAt = time.Now().UTC()
	return e.store.UpdateWebhookEndpoint(ctx, endpoint)
}

// Delete removes an endpoint and its delivery history.
func (e *Endpoints) Delete(ctx context.Context, id string) error {
	return e.store.DeleteWebhookEndpoint(ctx, id)
}

// RotateSecret replaces the endpoint secret and returns the new value.
// In-flight deliveries signed with the old secret will fail verification;
// receivers are expected to update out of band.
func (e *Endpoints) RotateSecret(ctx context.Context, id string) (string, error) {
	endpoint, err := e.store.GetWebhookEndpoint(ctx, id)
	if err != nil {
		return "", err
	}
	secret, err := GenerateSecret()
	if err != nil {
		return "", err
	}
	endpoint.Secret = secret
	endpoint.UpdatedAt = time.Now().UTC()
	if err := e.store.UpdateWebhookEndpoint(ctx, endpoint); err != nil {
		return "", fmt.Errorf("rotating secret: %w", err)
	}
	return secret, nil
}

// Deliveries returns a page of the endpoint's delivery log, newest first.
func (e *Endpoints) Deliveries(ctx context.Context, endpointID string, limit, offset int) ([]models.WebhookDelivery, error) {
	return e.store.ListDeliveriesByEndpoint(ctx, endpointID, limit, offset)
}
