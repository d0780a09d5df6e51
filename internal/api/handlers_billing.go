// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tubefleet/tubefleet/internal/audit"
)

// ListPlans returns the active plans.
//
// @Summary List plans
// @Tags billing
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Router /api/v1/billing/plans [get]
func (s *Server) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.billing.Plans(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, plans)
}

// GetSubscription returns the caller's live subscription with its plan.
//
// @Summary Current subscription
// @Tags billing
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /api/v1/billing/subscription [get]
func (s *Server) GetSubscription(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	userID, err := actorUUID(sub, r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user ID", err)
		return
	}

	subscription, plan, err := s.billing.CurrentSubscription(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"subscription": subscription,
		"plan":         plan,
	})
}

// ListInvoices returns the caller's invoices, newest first.
//
// @Summary List invoices
// @Tags billing
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Router /api/v1/billing/invoices [get]
func (s *Server) ListInvoices(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	userID, err := actorUUID(sub, r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user ID", err)
		return
	}
	limit, offset := s.pageParams(r)

	invoices, err := s.db.ListInvoicesByUser(r.Context(), userID.String(), limit, offset)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, invoices)
}

// Subscribe puts a user on a plan, optionally redeeming a discount code.
// The policy restricts this to admins; the target user comes from the
// body and defaults to the caller.
//
// @Summary Subscribe user to plan
// @Tags billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.APIResponse
// @Failure 409 {object} models.APIResponse
// @Router /api/v1/billing/subscribe [post]
func (s *Server) Subscribe(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}

	var req subscribeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	userID, err := billingTarget(sub.ID, req.UserID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user ID", err)
		return
	}
	planID, err := uuid.Parse(req.PlanID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid plan ID", err)
		return
	}

	subscription, err := s.billing.Subscribe(r.Context(), userID, planID, req.DiscountCode)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if s.audit != nil {
		s.audit.LogSubscriptionOverride(r.Context(), auditActor(sub), audit.SourceFromRequest(r),
			userID.String(), "", req.PlanID)
	}
	respondData(w, http.StatusCreated, subscription)
}

// ValidateDiscount checks a discount code against a plan without redeeming
// it.
//
// @Summary Validate discount code
// @Tags billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Router /api/v1/billing/discounts/validate [post]
func (s *Server) ValidateDiscount(w http.ResponseWriter, r *http.Request) {
	var req validateDiscountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	planID, err := uuid.Parse(req.PlanID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid plan ID", err)
		return
	}

	discount, err := s.billing.ValidateCode(r.Context(), req.Code, planID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, discount)
}

// PreviewPlanChange computes the proration for switching plans without
// touching any state.
//
// @Summary Preview plan change
// @Tags billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Router /api/v1/billing/plan-change/preview [post]
func (s *Server) PreviewPlanChange(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}

	var req planChangeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	userID, planID, ok := parsePlanChange(w, sub.ID, req)
	if !ok {
		return
	}

	preview, err := s.billing.PreviewPlanChange(r.Context(), userID, planID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, preview)
}

// ChangePlan applies a prorated plan switch and returns the invoice.
//
// @Summary Change plan
// @Tags billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=models.Invoice}
// @Failure 409 {object} models.APIResponse
// @Router /api/v1/billing/plan-change [post]
func (s *Server) ChangePlan(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}

	var req planChangeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	userID, planID, ok := parsePlanChange(w, sub.ID, req)
	if !ok {
		return
	}

	invoice, err := s.billing.ChangePlan(r.Context(), userID, planID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if s.audit != nil {
		s.audit.LogSubscriptionOverride(r.Context(), auditActor(sub), audit.SourceFromRequest(r),
			userID.String(), "", req.PlanID)
	}
	respondData(w, http.StatusOK, invoice)
}

// CancelSubscription toggles cancel-at-period-end.
//
// @Summary Cancel subscription at period end
// @Tags billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Router /api/v1/billing/cancel [post]
func (s *Server) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}

	var req cancelSubscriptionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	userID, err := billingTarget(sub.ID, req.UserID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user ID", err)
		return
	}

	subscription, err := s.billing.SetCancelAtPeriodEnd(r.Context(), userID, req.Cancel)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, subscription)
}

// billingTarget resolves the user a billing operation applies to: the
// explicit body user_id if given, otherwise the caller.
func billingTarget(subjectID, bodyUserID string) (uuid.UUID, error) {
	if bodyUserID != "" {
		return uuid.Parse(bodyUserID)
	}
	return uuid.Parse(subjectID)
}

func parsePlanChange(w http.ResponseWriter, subjectID string, req planChangeRequest) (userID, planID uuid.UUID, ok bool) {
	userID, err := billingTarget(subjectID, req.UserID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user ID", err)
		return uuid.Nil, uuid.Nil, false
	}
	planID, err = uuid.Parse(req.PlanID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid plan ID", err)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, planID, true
}
