// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tubefleet/tubefleet/internal/config"
	"github.com/tubefleet/tubefleet/internal/metrics"
)

// loginRateLimit is deliberately strict: five attempts per IP per five
// minutes. Credential stuffing burns out long before the lockout manager
// has to step in.
var loginRateLimit = struct {
	requests int
	window   time.Duration
}{requests: 5, window: 5 * time.Minute}

// securityHeaders adds browser hardening headers to API responses.
// Content-Security-Policy is omitted because these endpoints never serve
// HTML; HSTS is added only when the request arrived over TLS.
func securityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// corsHandler builds the CORS middleware from the configured origins.
func corsHandler(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	origins := []string{"*"}
	if cfg != nil && len(cfg.CORSOrigins) > 0 {
		origins = cfg.CORSOrigins
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"ETag", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// rateLimiter limits by client IP using the configured window. Hits are
// counted in Prometheus before the 429 goes out.
func rateLimiter(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	requests, window := 100, time.Minute
	if cfg != nil {
		if cfg.RateLimitReqs > 0 {
			requests = cfg.RateLimitReqs
		}
		if cfg.RateLimitWindow > 0 {
			window = cfg.RateLimitWindow
		}
	}
	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(rateLimitExceeded),
	)
}

// loginRateLimiter guards the credential endpoints.
func loginRateLimiter() func(http.Handler) http.Handler {
	return httprate.Limit(
		loginRateLimit.requests,
		loginRateLimit.window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(rateLimitExceeded),
	)
}

func rateLimitExceeded(w http.ResponseWriter, r *http.Request) {
	metrics.RecordRateLimitHit(r.URL.Path)
	respondError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Too many requests", nil)
}
