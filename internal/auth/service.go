// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tubefleet/tubefleet/internal/audit"
	"github.com/tubefleet/tubefleet/internal/config"
	"github.com/tubefleet/tubefleet/internal/database"
	"github.com/tubefleet/tubefleet/internal/logging"
	"github.com/tubefleet/tubefleet/internal/metrics"
	"github.com/tubefleet/tubefleet/internal/models"
)

// UserStore is the subset of the database layer the auth service needs.
type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUserPassword(ctx context.Context, id string, passwordHash string) error
	TouchUserLogin(ctx context.Context, id string, at time.Time) error
	CountUsers(ctx context.Context) (int64, error)
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token   string       `json:"token"`
	Session *Session     `json:"-"`
	User    *AuthSubject `json:"user"`
}

// Service implements login, logout, token refresh, and password changes.
// It ties together the user store, the session store, the JWT manager,
// the per-IP limiter, the per-account lockout, and the audit log.
type Service struct {
	users    UserStore
	sessions SessionStore
	jwt      *JWTManager
	lockout  *LockoutManager
	limiter  *LoginLimiter
	auditLog *audit.Logger
}

// NewService builds the auth service. auditLog may be nil in tests, which
// disables audit recording.
func NewService(users UserStore, sessions SessionStore, jwtManager *JWTManager, cfg *config.SecurityConfig, auditLog *audit.Logger) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		jwt:      jwtManager,
		lockout:  NewLockoutManager(cfg.LockoutThreshold, cfg.LockoutDuration),
		limiter:  NewLoginLimiter(defaultLoginBurst, defaultLoginWindow),
		auditLog: auditLog,
	}
}

// Lockout exposes the lockout manager so the supervisor can run its
// cleanup loop.
func (s *Service) Lockout() *LockoutManager {
	return s.lockout
}

// Limiter exposes the login rate limiter for periodic cleanup.
func (s *Service) Limiter() *LoginLimiter {
	return s.limiter
}

// Login verifies credentials and issues a session-backed JWT.
//
// The checks run cheapest first: the per-IP rate limit, then the account
// lockout, then the bcrypt comparison. Failed verification counts toward
// the lockout whether or not the username exists, so probing for valid
// usernames costs the same as guessing passwords.
func (s *Service) Login(ctx context.Context, username, password, ip, userAgent string) (*LoginResult, error) {
	source := audit.Source{IPAddress: ip, UserAgent: userAgent}

	if !s.limiter.Allow(ip) {
		metrics.LoginAttempts.WithLabelValues("rate_limited").Inc()
		s.logAuthFailure(ctx, username, source, "rate limited")
		return nil, ErrRateLimited
	}

	if locked, _ := s.lockout.Locked(username); locked {
		metrics.LoginAttempts.WithLabelValues("locked").Inc()
		s.logAuthFailure(ctx, username, source, "account locked")
		return nil, ErrAccountLocked
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, s.recordFailure(ctx, username, source, "unknown user")
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if !VerifyPassword(user.PasswordHash, password) {
		return nil, s.recordFailure(ctx, username, source, "wrong password")
	}

	if !user.IsActive() {
		metrics.LoginAttempts.WithLabelValues("disabled").Inc()
		s.logAuthFailure(ctx, username, source, "account disabled")
		return nil, ErrAccountDisabled
	}

	s.lockout.Clear(username)

	session := NewSession(user.ID.String(), user.Username, user.Role, s.jwt.Timeout())
	session.IPAddress = ip
	session.UserAgent = userAgent
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, err := s.jwt.GenerateToken(session.UserID, user.Username, user.Role, session.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	if err := s.users.TouchUserLogin(ctx, session.UserID, time.Now()); err != nil {
		logging.Warn().Err(err).Str("user_id", session.UserID).Msg("Failed to record login timestamp")
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	if s.auditLog != nil {
		s.auditLog.LogAuthSuccess(ctx, s.actor(session), source, "password")
	}

	return &LoginResult{
		Token:   token,
		Session: session,
		User: &AuthSubject{
			ID:        session.UserID,
			Username:  user.Username,
			Role:      user.Role,
			SessionID: session.ID,
			Provider:  "jwt",
		},
	}, nil
}

// recordFailure counts a failed attempt and maps it to ErrInvalidCredentials
// or ErrAccountLocked when this attempt tripped the lock.
func (s *Service) recordFailure(ctx context.Context, username string, source audit.Source, reason string) error {
	metrics.LoginAttempts.WithLabelValues("failure").Inc()
	s.logAuthFailure(ctx, username, source, reason)

	locked, failures := s.lockout.RecordFailure(username)
	if locked {
		logging.Warn().Str("username", username).Int("failures", failures).Msg("Account locked after repeated failed logins")
		if s.auditLog != nil {
			s.auditLog.LogAuthLockout(ctx, "", username, source, s.lockout.Duration(), failures)
		}
		return ErrAccountLocked
	}
	return ErrInvalidCredentials
}

func (s *Service) logAuthFailure(ctx context.Context, username string, source audit.Source, reason string) {
	if s.auditLog != nil {
		s.auditLog.LogAuthFailure(ctx, "", username, source, reason)
	}
}

func (s *Service) actor(session *Session) audit.Actor {
	return audit.Actor{
		ID:   session.UserID,
		Type: "user",
		Name: session.Username,
	}
}

// Logout revokes the session backing the caller's token.
func (s *Service) Logout(ctx context.Context, sessionID, ip, userAgent string) error {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		// Already gone is fine; logout is idempotent.
		if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionExpired) {
			return nil
		}
		return err
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	if s.auditLog != nil {
		s.auditLog.LogLogout(ctx, s.actor(session), audit.Source{IPAddress: ip, UserAgent: userAgent}, sessionID)
	}
	return nil
}

// LogoutAll revokes every session of a user, forcing re-login everywhere.
func (s *Service) LogoutAll(ctx context.Context, userID string) (int, error) {
	return s.sessions.DeleteByUser(ctx, userID)
}

// Refresh rotates the token and extends the session. The caller must hold
// a valid token; its session must still exist.
func (s *Service) Refresh(ctx context.Context, sessionID string) (*LoginResult, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	newExpiry := time.Now().Add(s.jwt.Timeout())
	if err := s.sessions.Touch(ctx, sessionID, newExpiry); err != nil {
		return nil, fmt.Errorf("extend session: %w", err)
	}
	session.ExpiresAt = newExpiry

	token, err := s.jwt.GenerateToken(session.UserID, session.Username, session.Role, session.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &LoginResult{
		Token:   token,
		Session: session,
		User: &AuthSubject{
			ID:        session.UserID,
			Username:  session.Username,
			Role:      session.Role,
			SessionID: session.ID,
			Provider:  "jwt",
		},
	}, nil
}

// Sessions lists a user's live sessions for the account security page.
func (s *Service) Sessions(ctx context.Context, userID string) ([]*Session, error) {
	return s.sessions.ListByUser(ctx, userID)
}

// RevokeSession deletes one of the user's sessions. Revoking a session the
// user does not own returns ErrSessionNotFound rather than admitting it
// exists.
func (s *Service) RevokeSession(ctx context.Context, userID, sessionID string) error {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.UserID != userID {
		return ErrSessionNotFound
	}
	return s.sessions.Delete(ctx, sessionID)
}

// ChangePassword verifies the current password, enforces the policy on the
// new one, stores the new hash, and revokes all of the user's sessions.
func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if !VerifyPassword(user.PasswordHash, currentPassword) {
		return ErrInvalidCredentials
	}
	if err := ValidatePassword(newPassword, user.Username); err != nil {
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdateUserPassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("store new password: %w", err)
	}

	// Every outstanding token is suspect once the password changes.
	if _, err := s.sessions.DeleteByUser(ctx, userID); err != nil {
		logging.Warn().Err(err).Str("user_id", userID).Msg("Failed to revoke sessions after password change")
	}
	return nil
}

// EnsureAdmin bootstraps the configured admin account on first start. It
// is a no-op when the username already exists or no admin is configured.
func (s *Service) EnsureAdmin(ctx context.Context, cfg *config.SecurityConfig) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}

	_, err := s.users.GetUserByUsername(ctx, cfg.AdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, database.ErrUserNotFound) {
		return fmt.Errorf("look up admin user: %w", err)
	}

	hash, err := HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	admin := models.NewUser(cfg.AdminUsername, "")
	admin.Role = models.RoleAdmin
	admin.PasswordHash = hash
	if err := s.users.CreateUser(ctx, admin); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	logging.Info().Str("username", cfg.AdminUsername).Msg("Bootstrapped admin account")
	return nil
}

// CleanupSessions removes expired sessions and stale limiter buckets.
// Run periodically by the supervisor.
func (s *Service) CleanupSessions(ctx context.Context) error {
	count, err := s.sessions.CleanupExpired(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		logging.Debug().Int("count", count).Msg("Removed expired sessions")
	}
	s.limiter.CleanupInactive(time.Hour)
	s.lockout.CleanupExpired()
	return nil
}
