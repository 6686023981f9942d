// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loginform Contributors

// Package postgres implements auth.UserRepository using PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/loginform/loginform/internal/auth"
)

// pool abstracts pgxpool.Pool so tests can substitute pgxmock.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository implements auth.UserRepository over a pgx pool. The
// table and column names come from the auth.TableSpec on each call;
// they are validated and quoted before interpolation since identifiers
// cannot be bound as statement parameters.
type UserRepository struct {
	pool pool
}

// NewUserRepository creates a UserRepository.
func NewUserRepository(pool pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// FindByUsername retrieves a credential by exact username.
func (r *UserRepository) FindByUsername(ctx context.Context, spec auth.TableSpec, username string) (*auth.Credential, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	cred := auth.Credential{Username: username}
	var err error
	if spec.HasRole() {
		var role *string
		err = r.pool.QueryRow(ctx, fmt.Sprintf(
			`SELECT %s, %s FROM %s WHERE %s = $1`,
			quote(spec.PasswordCol), quote(spec.RoleCol), quote(spec.Table), quote(spec.UsernameCol),
		), username).Scan(&cred.PasswordHash, &role)
		if role != nil {
			cred.Role = *role
		}
	} else {
		err = r.pool.QueryRow(ctx, fmt.Sprintf(
			`SELECT %s FROM %s WHERE %s = $1`,
			quote(spec.PasswordCol), quote(spec.Table), quote(spec.UsernameCol),
		), username).Scan(&cred.PasswordHash)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_FIND_FAILED").
			With("operation", "find credential by username").
			With("username", username).
			Wrap(err)
	}
	return &cred, nil
}

// Insert stores a new credential row.
func (r *UserRepository) Insert(ctx context.Context, spec auth.TableSpec, cred *auth.Credential) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	var err error
	if spec.HasRole() {
		_, err = r.pool.Exec(ctx, fmt.Sprintf(
			`INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3)`,
			quote(spec.Table), quote(spec.UsernameCol), quote(spec.PasswordCol), quote(spec.RoleCol),
		), cred.Username, cred.PasswordHash, cred.Role)
	} else {
		_, err = r.pool.Exec(ctx, fmt.Sprintf(
			`INSERT INTO %s (%s, %s) VALUES ($1, $2)`,
			quote(spec.Table), quote(spec.UsernameCol), quote(spec.PasswordCol),
		), cred.Username, cred.PasswordHash)
	}

	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("USER_DUPLICATE").
				With("username", cred.Username).
				Wrap(auth.ErrDuplicateUsername)
		}
		return oops.Code("USER_INSERT_FAILED").
			With("operation", "insert credential").
			With("username", cred.Username).
			Wrap(err)
	}
	return nil
}

// UpdatePassword replaces the stored password value for a username.
func (r *UserRepository) UpdatePassword(ctx context.Context, spec auth.TableSpec, username, newHash string) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	result, err := r.pool.Exec(ctx, fmt.Sprintf(
		`UPDATE %s SET %s = $2 WHERE %s = $1`,
		quote(spec.Table), quote(spec.PasswordCol), quote(spec.UsernameCol),
	), username, newHash)
	if err != nil {
		return oops.Code("USER_UPDATE_PASSWORD_FAILED").
			With("operation", "update password").
			With("username", username).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// ScanLegacy returns all credentials whose password column does not
// start with tagPrefix.
func (r *UserRepository) ScanLegacy(ctx context.Context, spec auth.TableSpec, tagPrefix string) ([]auth.Credential, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		`SELECT %s, %s FROM %s WHERE %s NOT LIKE $1`,
		quote(spec.UsernameCol), quote(spec.PasswordCol), quote(spec.Table), quote(spec.PasswordCol),
	), likePrefix(tagPrefix))
	if err != nil {
		return nil, oops.Code("USER_SCAN_FAILED").
			With("operation", "scan legacy credentials").
			Wrap(err)
	}
	defer rows.Close()

	var creds []auth.Credential
	for rows.Next() {
		var cred auth.Credential
		if err := rows.Scan(&cred.Username, &cred.PasswordHash); err != nil {
			return nil, oops.Code("USER_SCAN_FAILED").
				With("operation", "scan legacy credential row").
				Wrap(err)
		}
		creds = append(creds, cred)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("USER_SCAN_FAILED").
			With("operation", "iterate legacy credentials").
			Wrap(err)
	}
	return creds, nil
}

// quote sanitizes an identifier for interpolation into a statement.
func quote(ident string) string {
	return pgx.Identifier{ident}.Sanitize()
}

// likeEscaper escapes LIKE metacharacters so the tag prefix matches
// literally. The argon2id tag contains none today, but the prefix is
// caller-supplied.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePrefix(prefix string) string {
	return likeEscaper.Replace(prefix) + "%"
}

// isUniqueViolation reports whether err is the store's uniqueness
// constraint rejecting a row.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// Compile-time interface check.
var _ auth.UserRepository = (*UserRepository)(nil)
