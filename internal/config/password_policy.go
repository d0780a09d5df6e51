// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// PasswordPolicy constrains the credentials accepted for the bootstrap admin
// account. Operator-created users go through the auth package's own checks;
// this policy only gates what arrives via ADMIN_PASSWORD at startup.
type PasswordPolicy struct {
	// MinLength is the minimum password length in bytes.
	MinLength int

	// MinClasses is how many distinct character classes (upper, lower,
	// digit, other) the password must contain.
	MinClasses int

	// MaxRun is the longest permitted run of one repeated character.
	// Zero disables the check.
	MaxRun int

	// ForbidCommon rejects passwords on the deny list, after leetspeak
	// normalization.
	ForbidCommon bool

	// ForbidLoginEcho rejects passwords derived from the username.
	ForbidLoginEcho bool
}

// Policy violations. ValidateWithError wraps these so callers can match with
// errors.Is while still seeing the concrete limits in the message.
var (
	ErrPasswordLength  = errors.New("password too short")
	ErrPasswordClasses = errors.New("password needs more character variety")
	ErrPasswordRun     = errors.New("password repeats one character too many times")
	ErrPasswordCommon  = errors.New("password is on the deny list")
	ErrPasswordEchoes  = errors.New("password is derived from the username")
)

// DefaultPasswordPolicy is the policy applied to ADMIN_PASSWORD. Twelve
// characters and three classes keeps bootstrap credentials out of the
// dictionary-attack range without demanding full passphrase discipline.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:       12,
		MinClasses:      3,
		MaxRun:          3,
		ForbidCommon:    true,
		ForbidLoginEcho: true,
	}
}

// Check returns every violation of the policy for the candidate password.
// An empty slice means the password is acceptable.
func (p PasswordPolicy) Check(password, username string) []error {
	var violations []error

	if len(password) < p.MinLength {
		violations = append(violations,
			fmt.Errorf("%w: need at least %d characters, got %d", ErrPasswordLength, p.MinLength, len(password)))
	}

	if classes := countClasses(password); classes < p.MinClasses {
		violations = append(violations,
			fmt.Errorf("%w: need %d of upper/lower/digit/symbol, got %d", ErrPasswordClasses, p.MinClasses, classes))
	}

	if p.MaxRun > 0 {
		if run := longestRun(password); run > p.MaxRun {
			violations = append(violations,
				fmt.Errorf("%w: %d consecutive, limit %d", ErrPasswordRun, run, p.MaxRun))
		}
	}

	if p.ForbidCommon && isDenied(password) {
		violations = append(violations, ErrPasswordCommon)
	}

	if p.ForbidLoginEcho && username != "" && echoesLogin(password, username) {
		violations = append(violations, ErrPasswordEchoes)
	}

	return violations
}

// ValidateWithError collapses Check into a single error for the config
// validation path. Returns nil when the password passes.
func (p PasswordPolicy) ValidateWithError(password, username string) error {
	violations := p.Check(password, username)
	if len(violations) == 0 {
		return nil
	}
	return errors.Join(violations...)
}

// countClasses reports how many of the four character classes appear.
func countClasses(password string) int {
	var upper, lower, digit, other bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			other = true
		}
	}
	n := 0
	for _, present := range []bool{upper, lower, digit, other} {
		if present {
			n++
		}
	}
	return n
}

// longestRun returns the length of the longest run of a single repeated rune.
func longestRun(password string) int {
	var best, current int
	var prev rune = -1
	for _, r := range password {
		if r == prev {
			current++
		} else {
			current = 1
			prev = r
		}
		if current > best {
			best = current
		}
	}
	return best
}

// leetspeak substitutions undone before deny-list and username comparison.
var deleet = strings.NewReplacer(
	"@", "a", "4", "a", "3", "e", "1", "i", "!", "i", "0", "o", "$", "s", "5", "s", "7", "t",
)

// normalize lowercases and reverses common leetspeak substitutions so that
// "P@ssw0rd" and "Y0uTub3" land on their dictionary forms.
func normalize(s string) string {
	return deleet.Replace(strings.ToLower(s))
}

// deniedPasswords holds breached-list staples plus the words an operator of
// this product is most likely to reach for. Checked post-normalization, so
// one entry covers its leetspeak variants too.
var deniedPasswords = map[string]struct{}{
	// perennial breach-list leaders
	"password":      {},
	"passwordi":     {}, // "password1" after normalization
	"letmein":       {},
	"welcome":       {},
	"iloveyou":      {},
	"dragon":        {},
	"monkey":        {},
	"sunshine":      {},
	"trustnoi":      {},
	"qwerty":        {},
	"qwertyuiop":    {},
	"asdfghjkl":     {},
	"administrator": {},
	"admin":         {},
	"root":          {},
	"toor":          {},
	"changeme":      {},
	"default":       {},
	"secret":        {},
	"guest":         {},
	"testing":       {},
	// product and domain vocabulary
	"tubefleet":  {},
	"youtube":    {},
	"creator":    {},
	"streamer":   {},
	"streaming":  {},
	"livestream": {},
	"broadcast":  {},
	"channel":    {},
	"studio":     {},
	"subscribe":  {},
	"moderator":  {},
	// ops vocabulary
	"server":     {},
	"database":   {},
	"sysadmin":   {},
	"devops":     {},
	"kubernetes": {},
}

// isDenied reports whether the password, stripped of digit/punctuation
// suffixes and leetspeak, is on the deny list. The suffix strip runs on the
// raw lowercase form first so "Youtube123!" reduces to "youtube" before
// normalization rewrites its digits.
func isDenied(password string) bool {
	lower := strings.ToLower(password)
	stripped := strings.TrimRight(lower, "0123456789!@#$%^&*.")
	for _, candidate := range []string{lower, stripped} {
		if _, ok := deniedPasswords[normalize(candidate)]; ok {
			return true
		}
	}
	return false
}

// echoesLogin reports whether the password contains the username, its
// reversal, or its leetspeak form. Usernames shorter than 3 runes are skipped
// to avoid matching on incidental substrings.
func echoesLogin(password, username string) bool {
	user := strings.ToLower(username)
	if len([]rune(user)) < 3 {
		return false
	}
	pass := normalize(password)

	if strings.Contains(pass, normalize(user)) {
		return true
	}

	runes := []rune(user)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return strings.Contains(pass, string(runes))
}
