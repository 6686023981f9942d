// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loginform Contributors

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/loginform/loginform/internal/auth"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"valid password", "Abc12345!", true},
		{"valid with space as special", "Abc12345 x", true},
		{"valid with underscore", "Passw0rd_", true},
		{"too short", "Ab1!", false},
		{"no uppercase", "abc12345!", false},
		{"no lowercase", "ABC12345!", false},
		{"no digit", "Abcdefgh!", false},
		{"no special char", "Abc123456", false},
		{"empty", "", false},
		{"special char not in allowed set", "Abc12345~", false},
		{"multibyte runes below min despite byte length", "Aa1!\U0001F642", false},
		{"multibyte runes counted as characters", "Aa1!\U0001F642\U0001F642\U0001F642\U0001F642", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.ValidatePassword(tt.password))
		})
	}
}

func TestValidatePassword_Options(t *testing.T) {
	t.Run("custom min length", func(t *testing.T) {
		assert.True(t, auth.ValidatePassword("Ab1!", auth.WithMinLength(4)))
		assert.False(t, auth.ValidatePassword("Abc12345!", auth.WithMinLength(12)))
	})

	t.Run("custom special chars", func(t *testing.T) {
		assert.True(t, auth.ValidatePassword("Abc12345~", auth.WithSpecialChars("~")))
		assert.False(t, auth.ValidatePassword("Abc12345!", auth.WithSpecialChars("~")))
	})
}
