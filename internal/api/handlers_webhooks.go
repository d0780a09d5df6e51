// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tubefleet/tubefleet/internal/models"
	"github.com/tubefleet/tubefleet/internal/webhooks"
)

// ListWebhookEndpoints lists the caller's webhook endpoints.
//
// @Summary List webhook endpoints
// @Tags webhooks
// @Produce json
// @Success 200 {array} models.WebhookEndpoint
// @Router /api/v1/webhooks [get]
func (s *Server) ListWebhookEndpoints(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	if s.endpoints == nil {
		respondError(w, http.StatusServiceUnavailable, "UPSTREAM_ERROR", "Webhooks are not configured", nil)
		return
	}
	userID, err := actorUUID(sub, r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user id", nil)
		return
	}
	list, err := s.endpoints.List(r.Context(), userID.String())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, list)
}

// CreateWebhookEndpoint registers an endpoint. The signing secret is
// returned in this response only; subsequent reads never expose it.
//
// @Summary Create webhook endpoint
// @Tags webhooks
// @Accept json
// @Produce json
// @Param endpoint body createWebhookRequest true "Endpoint definition"
// @Success 201 {object} map[string]interface{}
// @Router /api/v1/webhooks [post]
func (s *Server) CreateWebhookEndpoint(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	if s.endpoints == nil {
		respondError(w, http.StatusServiceUnavailable, "UPSTREAM_ERROR", "Webhooks are not configured", nil)
		return
	}
	var req createWebhookRequest
	if !decodeBody(w, r, &req) {
		return
	}
	userID, err := subjectUUID(sub)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user id", nil)
		return
	}
	if err := webhooks.ValidateURL(req.URL); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	if s.checker != nil {
		if err := s.checker.CheckLimit(r.Context(), userID, models.ResourceWebhookEndpoints); err != nil {
			respondDomainError(w, err)
			return
		}
	}
	endpoint, err := s.endpoints.Create(r.Context(), userID, req.URL, req.EventTypes)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusCreated, map[string]interface{}{
		"endpoint": endpoint,
		"secret":   endpoint.Secret,
	})
}

// ownedEndpoint loads an endpoint by path id and enforces ownership.
func (s *Server) ownedEndpoint(w http.ResponseWriter, r *http.Request) (*models.WebhookEndpoint, bool) {
	sub, ok := subject(w, r)
	if !ok {
		return nil, false
	}
	if s.endpoints == nil {
		respondError(w, http.StatusServiceUnavailable, "UPSTREAM_ERROR", "Webhooks are not configured", nil)
		return nil, false
	}
	endpoint, err := s.endpoints.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return nil, false
	}
	if !canAccess(sub, endpoint.UserID.String()) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found", nil)
		return nil, false
	}
	return endpoint, true
}

// GetWebhookEndpoint returns a single endpoint, secret excluded.
//
// @Summary Get webhook endpoint
// @Tags webhooks
// @Produce json
// @Param id path string true "Endpoint ID"
// @Success 200 {object} models.WebhookEndpoint
// @Router /api/v1/webhooks/{id} [get]
func (s *Server) GetWebhookEndpoint(w http.ResponseWriter, r *http.Request) {
	endpoint, ok := s.ownedEndpoint(w, r)
	if !ok {
		return
	}
	respondData(w, http.StatusOK, endpoint)
}

// UpdateWebhookEndpoint modifies URL, subscriptions, or the enabled flag.
// Re-enabling clears the failure streak.
//
// @Summary Update webhook endpoint
// @Tags webhooks
// @Accept json
// @Produce json
// @Param id path string true "Endpoint ID"
// @Param endpoint body updateWebhookRequest true "Fields to update"
// @Success 200 {object} models.WebhookEndpoint
// @Router /api/v1/webhooks/{id} [put]
func (s *Server) UpdateWebhookEndpoint(w http.ResponseWriter, r *http.Request) {
	endpoint, ok := s.ownedEndpoint(w, r)
	if !ok {
		return
	}
	var req updateWebhookRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.URL != nil {
		if err := webhooks.ValidateURL(*req.URL); err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}
		endpoint.URL = *req.URL
	}
	if len(req.EventTypes) > 0 {
		endpoint.EventTypes = req.EventTypes
	}
	if req.Enabled != nil {
		endpoint.Enabled = *req.Enabled
	}
	if err := s.endpoints.Update(r.Context(), endpoint); err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, endpoint)
}

// DeleteWebhookEndpoint removes an endpoint and its delivery history.
//
// @Summary Delete webhook endpoint
// @Tags webhooks
// @Param id path string true "Endpoint ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/webhooks/{id} [delete]
func (s *Server) DeleteWebhookEndpoint(w http.ResponseWriter, r *http.Request) {
	endpoint, ok := s.ownedEndpoint(w, r)
	if !ok {
		return
	}
	if err := s.endpoints.Delete(r.Context(), endpoint.ID.String()); err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{"deleted": endpoint.ID})
}

// RotateWebhookSecret replaces the endpoint's signing secret and returns
// the new value once. In-flight deliveries signed with the old secret will
// fail verification on the receiver.
//
// @Summary Rotate webhook secret
// @Tags webhooks
// @Produce json
// @Param id path string true "Endpoint ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/webhooks/{id}/rotate [post]
func (s *Server) RotateWebhookSecret(w http.ResponseWriter, r *http.Request) {
	endpoint, ok := s.ownedEndpoint(w, r)
	if !ok {
		return
	}
	secret, err := s.endpoints.RotateSecret(r.Context(), endpoint.ID.String())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"id":     endpoint.ID,
		"secret": secret,
	})
}

// ListWebhookDeliveries returns a page of the endpoint's delivery log,
// newest first.
//
// @Summary List webhook deliveries
// @Tags webhooks
// @Produce json
// @Param id path string true "Endpoint ID"
// @Success 200 {array} models.WebhookDelivery
// @Router /api/v1/webhooks/{id}/deliveries [get]
func (s *Server) ListWebhookDeliveries(w http.ResponseWriter, r *http.Request) {
	endpoint, ok := s.ownedEndpoint(w, r)
	if !ok {
		return
	}
	limit, offset := s.pageParams(r)
	deliveries, err := s.endpoints.Deliveries(r.Context(), endpoint.ID.String(), limit, offset)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, deliveries)
}

// RedeliverWebhook re-sends a failed or dead delivery immediately,
// bypassing the backoff schedule.
//
// @Summary Redeliver webhook
// @Tags webhooks
// @Produce json
// @Param id path string true "Delivery ID"
// @Success 200 {object} models.WebhookDelivery
// @Router /api/v1/webhooks/deliveries/{id}/redeliver [post]
func (s *Server) RedeliverWebhook(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	if s.dispatcher == nil || s.endpoints == nil {
		respondError(w, http.StatusServiceUnavailable, "UPSTREAM_ERROR", "Webhooks are not configured", nil)
		return
	}
	deliveryID := chi.URLParam(r, "id")
	delivery, err := s.db.GetWebhookDelivery(r.Context(), deliveryID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	endpoint, err := s.endpoints.Get(r.Context(), delivery.EndpointID.String())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if !canAccess(sub, endpoint.UserID.String()) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Delivery not found", nil)
		return
	}
	result, err := s.dispatcher.Redeliver(r.Context(), deliveryID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, result)
}
