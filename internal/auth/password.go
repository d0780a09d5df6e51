// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package auth

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Password policy bounds. The upper bound is bcrypt's input limit.
const (
	minPasswordLength = 10
	maxPasswordLength = 72
)

// Password policy errors. Returned verbatim to the client so the user can
// fix the password.
var (
	ErrPasswordTooShort     = fmt.Errorf("password must be at least %d characters", minPasswordLength)
	ErrPasswordTooLong      = fmt.Errorf("password must be at most %d characters", maxPasswordLength)
	ErrPasswordTooSimple    = errors.New("password must contain both letters and digits")
	ErrPasswordMatchesLogin = errors.New("password must not contain the username")
)

// HashPassword hashes a plaintext password with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plaintext matches the stored bcrypt
// hash. The comparison is constant time.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword enforces the password policy for new and changed
// passwords. Existing hashes are never re-checked against the policy.
func ValidatePassword(password, username string) error {
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > maxPasswordLength {
		return ErrPasswordTooLong
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrPasswordTooSimple
	}

	if username != "" && strings.Contains(strings.ToLower(password), strings.ToLower(username)) {
		return ErrPasswordMatchesLogin
	}

	return nil
}
