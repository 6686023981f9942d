// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loginform Contributors

package auth

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Password composition defaults.
const (
	DefaultMinPasswordLength = 8
	DefaultSpecialChars      = "@$!%*?&_^#- "
)

// PolicyOption customizes password composition rules.
type PolicyOption func(*policyRules)

type policyRules struct {
	minLength    int
	specialChars string
}

// WithMinLength overrides the minimum password length.
func WithMinLength(n int) PolicyOption {
	return func(r *policyRules) { r.minLength = n }
}

// WithSpecialChars overrides the set of accepted special characters.
func WithSpecialChars(chars string) PolicyOption {
	return func(r *policyRules) { r.specialChars = chars }
}

// ValidatePassword reports whether a candidate password satisfies the
// composition rules: minimum length plus at least one uppercase letter,
// one lowercase letter, one digit, and one accepted special character.
// Pure function; enforcement is a per-flow toggle (Config.ConstrainPassword).
func ValidatePassword(password string, opts ...PolicyOption) bool {
	rules := policyRules{
		minLength:    DefaultMinPasswordLength,
		specialChars: DefaultSpecialChars,
	}
	for _, opt := range opts {
		opt(&rules)
	}

	// Length is counted in characters, not bytes, so multibyte input
	// cannot shortcut the minimum.
	if utf8.RuneCountInString(password) < rules.minLength {
		return false
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
		if strings.ContainsRune(rules.specialChars, r) {
			special = true
		}
	}
	return upper && lower && digit && special
}
