// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loginform Contributors

package auth

import (
	"context"
	"regexp"

	"github.com/samber/oops"
)

// Default table and column names for the backing user store.
const (
	DefaultUserTable   = "users"
	DefaultUsernameCol = "username"
	DefaultPasswordCol = "password"
	DefaultRoleCol     = "role"
)

// identRegex matches SQL identifiers that are safe to interpolate into
// statements: start with a letter or underscore, then letters, digits,
// or underscores.
var identRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// TableSpec names the table and columns holding credential records.
// RoleCol is empty when role tracking is disabled.
type TableSpec struct {
	Table       string
	UsernameCol string
	PasswordCol string
	RoleCol     string
}

// DefaultTableSpec returns the conventional users-table layout without
// role tracking.
func DefaultTableSpec() TableSpec {
	return TableSpec{
		Table:       DefaultUserTable,
		UsernameCol: DefaultUsernameCol,
		PasswordCol: DefaultPasswordCol,
	}
}

// HasRole reports whether the table spec carries a role column.
func (s TableSpec) HasRole() bool {
	return s.RoleCol != ""
}

// Validate checks that every named identifier is safe to use in a query.
func (s TableSpec) Validate() error {
	idents := []struct {
		what  string
		value string
	}{
		{"table", s.Table},
		{"username column", s.UsernameCol},
		{"password column", s.PasswordCol},
	}
	if s.RoleCol != "" {
		idents = append(idents, struct {
			what  string
			value string
		}{"role column", s.RoleCol})
	}
	for _, id := range idents {
		if !identRegex.MatchString(id.value) {
			return oops.Code("AUTH_INVALID_IDENTIFIER").
				With("identifier", id.value).
				Errorf("%s is not a valid identifier", id.what)
		}
	}
	return nil
}

// Credential is one row of the backing user store.
type Credential struct {
	Username     string
	PasswordHash string
	Role         string // empty unless the table spec carries a role column
}

// IsLegacy reports whether the stored password value still needs hashing.
func (c Credential) IsLegacy() bool {
	return !hasHashTag(c.PasswordHash)
}

func hasHashTag(v string) bool {
	return len(v) >= len(HashTag) && v[:len(HashTag)] == HashTag
}

// UserRepository abstracts the backing credential store. Implementations
// own the SQL/REST dialect; the core only speaks this contract.
type UserRepository interface {
	// FindByUsername retrieves a credential by exact username.
	// Returns ErrNotFound if no row matches.
	FindByUsername(ctx context.Context, spec TableSpec, username string) (*Credential, error)

	// Insert stores a new credential. Returns ErrDuplicateUsername when
	// the store's uniqueness constraint rejects the row.
	Insert(ctx context.Context, spec TableSpec, cred *Credential) error

	// UpdatePassword replaces the stored password value for a username.
	UpdatePassword(ctx context.Context, spec TableSpec, username, newHash string) error

	// ScanLegacy returns all credentials whose password column does not
	// start with tagPrefix, i.e. rows still holding legacy values.
	ScanLegacy(ctx context.Context, spec TableSpec, tagPrefix string) ([]Credential, error)
}
