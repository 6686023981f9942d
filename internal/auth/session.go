// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loginform Contributors

package auth

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

// GuestRole is assigned to guest sessions when role tracking is enabled.
const GuestRole = "guest"

// Session holds the authentication state for one interactive session.
// It is created per interaction and owned by the caller; it is not safe
// for concurrent use and is never shared across sessions.
//
// Invariants: Authenticated == false implies Username and Role are empty;
// an authenticated session with an empty Username is a guest session.
type Session struct {
	ID            ulid.ULID
	Authenticated bool
	Username      string
	Role          string
}

// NewSession creates an unauthenticated session with a fresh
// log-correlation id.
func NewSession() *Session {
	return &Session{ID: ulid.Make()}
}

// SetAuthenticated marks the session authenticated as the given user.
func (s *Session) SetAuthenticated(username string) {
	s.Authenticated = true
	s.Username = username
}

// SetGuest marks the session authenticated with no associated username.
// Role assignment is left to the flow, which knows whether role tracking
// is enabled.
func (s *Session) SetGuest() {
	s.Authenticated = true
	s.Username = ""
}

// SetRole records the session's role, normalized to lowercase so role
// comparisons elsewhere are case-insensitive by construction.
func (s *Session) SetRole(role string) {
	s.Role = strings.ToLower(role)
}

// IsGuest reports whether the session is authenticated without a username.
func (s *Session) IsGuest() bool {
	return s.Authenticated && s.Username == ""
}

// Reset returns the session to its initial unauthenticated state.
// The correlation id is kept.
func (s *Session) Reset() {
	s.Authenticated = false
	s.Username = ""
	s.Role = ""
}
