// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package channels

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/zitadel/oidc/v3/pkg/client/rp"
	"github.com/zitadel/oidc/v3/pkg/oidc"

	"github.com/tubefleet/tubefleet/internal/config"
	"github.com/tubefleet/tubefleet/internal/logging"
)

// googleIssuer is Google's OIDC issuer; endpoints are discovered from it.
const googleIssuer = "https://accounts.google.com"

var (
	// ErrNonceMismatch is returned when the ID token nonce does not match
	// the one stored with the consent state.
	ErrNonceMismatch = errors.New("id token nonce mismatch")

	// ErrExchangeFailed wraps code-exchange failures from the provider.
	ErrExchangeFailed = errors.New("authorization code exchange failed")
)

// TokenGrant is the provider-neutral result of a code exchange or refresh.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	Scope        string
	ExpiresAt    time.Time
}

// Authorizer abstracts the OAuth provider so the linking service and token
// source can be tested without a live OIDC endpoint.
type Authorizer interface {
	// AuthCodeURL builds the consent URL for the given state parameter.
	AuthCodeURL(state string, st *LinkState) (string, error)

	// Exchange trades the authorization code for tokens, validating the
	// PKCE verifier and nonce recorded in the consent state.
	Exchange(ctx context.Context, code string, st *LinkState) (*TokenGrant, error)

	// Refresh trades a refresh token for a fresh access token.
	Refresh(ctx context.Context, refreshToken string) (*TokenGrant, error)

	// Revoke invalidates a refresh token at the provider.
	Revoke(ctx context.Context, refreshToken string) error
}

// GoogleAuthorizer implements Authorizer against Google's OIDC endpoints
// using the certified relying-party client. Offline access is always
// requested so Google returns a refresh token on consent.
type GoogleAuthorizer struct {
	rp   rp.RelyingParty
	pkce bool
}

// NewGoogleAuthorizer performs OIDC discovery against Google and builds the
// relying party. The context bounds the discovery request.
func NewGoogleAuthorizer(ctx context.Context, cfg *config.GoogleOAuthConfig) (*GoogleAuthorizer, error) {
	if cfg == nil {
		return nil, errors.New("google oauth config is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("google client_id is required")
	}
	if cfg.RedirectURL == "" {
		return nil, errors.New("google redirect_url is required")
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{"openid", "email", "https://www.googleapis.com/auth/youtube"}
	}

	relyingParty, err := rp.NewRelyingPartyOIDC(ctx,
		googleIssuer,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.RedirectURL,
		scopes,
		rp.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
	)
	if err != nil {
		return nil, fmt.Errorf("create google relying party: %w", err)
	}

	return &GoogleAuthorizer{rp: relyingParty, pkce: cfg.PKCEEnabled}, nil
}

// AuthCodeURL builds the Google consent URL. access_type=offline and
// prompt=consent force a refresh token grant even on relinks.
func (g *GoogleAuthorizer) AuthCodeURL(state string, st *LinkState) (string, error) {
	authURL := rp.AuthURL(state, g.rp)

	parsed, err := url.Parse(authURL)
	if err != nil {
		return "", fmt.Errorf("parse auth URL: %w", err)
	}

	query := parsed.Query()
	query.Set("access_type", "offline")
	query.Set("prompt", "consent")
	if st.Nonce != "" {
		query.Set("nonce", st.Nonce)
	}
	if g.pkce && st.CodeVerifier != "" {
		query.Set("code_challenge", codeChallengeS256(st.CodeVerifier))
		query.Set("code_challenge_method", "S256")
	}
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}

// Exchange trades the authorization code for tokens and validates the nonce.
func (g *GoogleAuthorizer) Exchange(ctx context.Context, code string, st *LinkState) (*TokenGrant, error) {
	var opts []rp.CodeExchangeOpt
	if g.pkce && st.CodeVerifier != "" {
		opts = append(opts, rp.WithCodeVerifier(st.CodeVerifier))
	}

	tokens, err := rp.CodeExchange[*oidc.IDTokenClaims](ctx, code, g.rp, opts...)
	if err != nil {
		logging.Error().Err(err).Msg("Google code exchange failed")
		return nil, fmt.Errorf("%w: %s", ErrExchangeFailed, err.Error())
	}

	if st.Nonce != "" {
		if tokens.IDTokenClaims == nil || tokens.IDTokenClaims.Nonce != st.Nonce {
			return nil, ErrNonceMismatch
		}
	}

	return grantFromTokens(tokens), nil
}

// Refresh trades a refresh token for a fresh access token.
func (g *GoogleAuthorizer) Refresh(ctx context.Context, refreshToken string) (*TokenGrant, error) {
	tokens, err := rp.RefreshTokens[*oidc.IDTokenClaims](ctx, g.rp, refreshToken, "", "")
	if err != nil {
		return nil, fmt.Errorf("refresh failed: %w", err)
	}
	return grantFromTokens(tokens), nil
}

// Revoke invalidates a refresh token at Google's revocation endpoint.
func (g *GoogleAuthorizer) Revoke(ctx context.Context, refreshToken string) error {
	if err := rp.RevokeToken(ctx, g.rp, refreshToken, "refresh_token"); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func grantFromTokens(tokens *oidc.Tokens[*oidc.IDTokenClaims]) *TokenGrant {
	grant := &TokenGrant{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    tokens.Expiry,
	}
	if scope, ok := tokens.Extra("scope").(string); ok {
		grant.Scope = scope
	}
	return grant
}

// codeChallengeS256 derives the PKCE challenge from a verifier (RFC 7636).
func codeChallengeS256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// randomToken generates a URL-safe random string from n bytes of entropy.
func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

var _ Authorizer = (*GoogleAuthorizer)(nil)
