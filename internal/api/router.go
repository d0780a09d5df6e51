// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tubefleet/tubefleet/internal/middleware"
)

// Routes builds the full router. Middleware order matters: the request ID
// must exist before anything logs, and authentication must run before
// authorization reads the subject.
func (s *Server) Routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	if s.cfg != nil {
		r.Use(corsHandler(&s.cfg.Security))
	}
	r.Use(middleware.Prometheus)
	r.Use(middleware.Compression)
	if s.perf != nil {
		r.Use(s.perf.Middleware)
	}

	// Operational endpoints stay open so orchestrators can probe them.
	r.Get("/health", s.Health)
	r.Get("/ready", s.Ready)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	// Public but strictly rate limited: credentials in, OAuth redirect back.
	r.Group(func(r chi.Router) {
		r.Use(securityHeaders())
		r.With(loginRateLimiter()).Post("/api/v1/auth/login", s.Login)
		r.With(loginRateLimiter()).Get("/api/v1/channels/link/callback", s.CompleteChannelLink)
	})

	// Everything else requires an authenticated subject whose role passes
	// the policy.
	r.Group(func(r chi.Router) {
		r.Use(securityHeaders())
		if s.cfg != nil && !s.cfg.Security.RateLimitDisabled {
			r.Use(rateLimiter(&s.cfg.Security))
		}
		if s.authMW != nil {
			r.Use(s.authMW.Authenticate)
		}
		if s.authzMW != nil {
			r.Use(s.authzMW.Authorize)
		}

		r.Route("/api/v1", func(r chi.Router) {
			r.Route("/auth", func(r chi.Router) {
				r.Post("/logout", s.Logout)
				r.Post("/refresh", s.Refresh)
				r.Get("/me", s.Me)
				r.Get("/sessions", s.Sessions)
				r.Delete("/sessions/{id}", s.RevokeSession)
				r.Post("/password", s.ChangePassword)
			})

			r.Route("/streams", func(r chi.Router) {
				// Recurrences live under /streams so the streams policy
				// rules cover them.
				r.Route("/recurrences", func(r chi.Router) {
					r.Get("/", s.ListRecurrences)
					r.Post("/", s.CreateRecurrence)
					r.Post("/preview", s.PreviewRecurrence)
					r.Get("/{id}", s.GetRecurrence)
					r.Put("/{id}", s.UpdateRecurrence)
					r.Delete("/{id}", s.DeleteRecurrence)
					r.Post("/{id}/pause", s.PauseRecurrence)
					r.Post("/{id}/resume", s.ResumeRecurrence)
					r.Get("/{id}/preview", s.PreviewRecurrenceByID)
				})

				r.Get("/", s.ListStreams)
				r.Post("/", s.CreateStream)
				r.Post("/conflicts", s.CheckConflicts)
				r.Get("/{id}", s.GetStream)
				r.Put("/{id}", s.UpdateStream)
				r.Delete("/{id}", s.CancelStream)
				r.Post("/{id}/status", s.TransitionStream)
				r.Get("/{id}/ingestion", s.StreamIngestion)
				r.Post("/{id}/ingestion/rotate", s.RotateStreamKey)
			})

			r.Route("/channels", func(r chi.Router) {
				r.Get("/", s.ListChannels)
				r.Post("/link", s.StartChannelLink)
				r.Get("/{id}", s.GetChannel)
				r.Delete("/{id}", s.UnlinkChannel)
				r.Post("/{id}/sync", s.SyncChannel)
			})

			r.Route("/billing", func(r chi.Router) {
				r.Get("/plans", s.ListPlans)
				r.Get("/subscription", s.GetSubscription)
				r.Get("/invoices", s.ListInvoices)
				r.Post("/subscribe", s.Subscribe)
				r.Post("/discounts/validate", s.ValidateDiscount)
				r.Post("/plan-change/preview", s.PreviewPlanChange)
				r.Post("/plan-change", s.ChangePlan)
				r.Post("/cancel", s.CancelSubscription)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", s.ListNotifications)
				r.Get("/unread-count", s.UnreadCount)
				r.Post("/read-all", s.MarkAllNotificationsRead)
				r.Post("/{id}/read", s.MarkNotificationRead)
				r.Get("/preferences", s.NotificationPreferences)
				r.Put("/preferences", s.SetNotificationPreference)
			})

			r.Route("/moderation", func(r chi.Router) {
				r.Get("/rules", s.ListModerationRules)
				r.Post("/rules", s.CreateModerationRule)
				r.Get("/rules/{id}", s.GetModerationRule)
				r.Put("/rules/{id}", s.UpdateModerationRule)
				r.Delete("/rules/{id}", s.DeleteModerationRule)
				r.Get("/violations", s.ListViolations)
				r.Post("/violations/{id}/review", s.ReviewViolation)
				r.Post("/scan", s.ScanComment)
			})

			r.Route("/comments", func(r chi.Router) {
				r.Get("/", s.ListComments)
				r.Post("/sync", s.SyncComments)
			})

			r.Route("/chatbot", func(r chi.Router) {
				r.Get("/triggers", s.ListTriggers)
				r.Post("/triggers", s.CreateTrigger)
				r.Post("/triggers/test", s.TestTrigger)
				r.Get("/triggers/{id}", s.GetTrigger)
				r.Put("/triggers/{id}", s.UpdateTrigger)
				r.Delete("/triggers/{id}", s.DeleteTrigger)
				r.Get("/replies", s.ListReplies)
			})

			r.Get("/usage", s.UsageReport)
			r.Get("/limits", s.Limits)

			r.Route("/strikes", func(r chi.Router) {
				r.Get("/", s.ListStrikes)
				r.Get("/active-count", s.ActiveStrikeCount)
				r.Post("/", s.RecordStrike)
				r.Post("/{id}/appeal", s.AppealStrike)
				r.Post("/{id}/resolve", s.ResolveStrike)
			})

			r.Route("/webhooks", func(r chi.Router) {
				r.Get("/", s.ListWebhookEndpoints)
				r.Post("/", s.CreateWebhookEndpoint)
				r.Post("/deliveries/{id}/redeliver", s.RedeliverWebhook)
				r.Get("/{id}", s.GetWebhookEndpoint)
				r.Put("/{id}", s.UpdateWebhookEndpoint)
				r.Delete("/{id}", s.DeleteWebhookEndpoint)
				r.Post("/{id}/rotate", s.RotateWebhookSecret)
				r.Get("/{id}/deliveries", s.ListWebhookDeliveries)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Get("/users", s.ListUsers)
				r.Post("/users", s.CreateUser)
				r.Get("/users/{id}", s.GetUser)
				r.Put("/users/{id}", s.UpdateUser)
				r.Post("/users/{id}/deactivate", s.DeactivateUser)
				r.Get("/audit", s.QueryAudit)
				r.Get("/audit/export", s.ExportAudit)
				r.Get("/performance", s.PerformanceStats)
				r.Get("/export/{user_id}", s.ExportUserData)
				r.Post("/erasure/{user_id}", s.EraseUser)
			})

			r.Get("/ws", s.ServeWS)
		})
	})

	return r
}
