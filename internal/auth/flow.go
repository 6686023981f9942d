// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loginform Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/samber/oops"
)

// Default user-facing message strings. The login error is deliberately
// shared between unknown-username and wrong-password so failure responses
// never reveal whether a username exists.
const (
	DefaultLoginErrorMessage       = "Wrong username/password"
	DefaultPasswordMismatchMessage = "Passwords do not match"
	DefaultPasswordFailMessage     = "Password must contain at least 8 characters, " +
		"including one uppercase letter, one lowercase letter, one number, " +
		"and one special character (@$!%*?&_^#- )."
	DefaultEmptyFieldsMessage = "Username and password are required"
)

// Status classifies a flow outcome.
type Status int

const (
	// StatusSuccess means the session transitioned to authenticated.
	StatusSuccess Status = iota
	// StatusRejected means the submission was refused without a fault:
	// a validation failure, wrong credentials, or a disabled sub-flow.
	StatusRejected
	// StatusError means the backing store failed; the message carries the
	// store error text.
	StatusError
)

// String returns the status name for logs.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusRejected:
		return "rejected"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Outcome is the result of one flow operation, ready for the presentation
// layer to render.
type Outcome struct {
	Status  Status
	Message string
}

func success() Outcome {
	return Outcome{Status: StatusSuccess}
}

func rejected(msg string) Outcome {
	return Outcome{Status: StatusRejected, Message: msg}
}

func failed(msg string) Outcome {
	return Outcome{Status: StatusError, Message: msg}
}

// Config enumerates the options of every flow variant. The zero value is
// not usable; start from DefaultConfig.
type Config struct {
	Table TableSpec

	AllowCreate       bool
	AllowGuest        bool
	ConstrainPassword bool
	RequireConfirm    bool

	// RetrieveRole enables role tracking: the role column is read on
	// login and RoleDefault is written on account creation. Requires
	// Table.RoleCol to be set.
	RetrieveRole bool
	RoleDefault  string

	LoginErrorMessage       string
	PasswordMismatchMessage string
	PasswordFailMessage     string
	EmptyFieldsMessage      string
}

// DefaultConfig returns the conventional configuration: create and guest
// sub-flows enabled, password policy enforced, no role tracking.
func DefaultConfig() Config {
	return Config{
		Table:                   DefaultTableSpec(),
		AllowCreate:             true,
		AllowGuest:              true,
		ConstrainPassword:       true,
		RequireConfirm:          true,
		LoginErrorMessage:       DefaultLoginErrorMessage,
		PasswordMismatchMessage: DefaultPasswordMismatchMessage,
		PasswordFailMessage:     DefaultPasswordFailMessage,
		EmptyFieldsMessage:      DefaultEmptyFieldsMessage,
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if err := c.Table.Validate(); err != nil {
		return err
	}
	if c.RetrieveRole && !c.Table.HasRole() {
		return oops.Code("CONFIG_INVALID").
			Errorf("role tracking requires a role column in the table spec")
	}
	return nil
}

// MetricsRecorder receives flow outcome events. Implementations must be
// safe for concurrent use; a nil recorder disables recording.
type MetricsRecorder interface {
	RecordLogin(status string)
	RecordAccountCreated()
	RecordRehashUpgrade()
}

// Flow orchestrates the create-account, login, and guest sub-flows
// against a password hasher and a user repository. One Flow serves many
// sessions; all per-interaction state lives in the Session passed to
// each operation.
type Flow struct {
	cfg     Config
	repo    UserRepository
	hasher  PasswordHasher
	logger  *slog.Logger
	metrics MetricsRecorder
}

// NewFlow creates a Flow with the default logger.
func NewFlow(cfg Config, repo UserRepository, hasher PasswordHasher) (*Flow, error) {
	return NewFlowWithLogger(cfg, repo, hasher, slog.Default())
}

// NewFlowWithLogger creates a Flow with an explicit logger.
func NewFlowWithLogger(cfg Config, repo UserRepository, hasher PasswordHasher, logger *slog.Logger) (*Flow, error) {
	if repo == nil {
		return nil, oops.Code("FLOW_INVALID_DEPS").Errorf("user repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("FLOW_INVALID_DEPS").Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Code("FLOW_INVALID_DEPS").Errorf("logger is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Flow{cfg: cfg, repo: repo, hasher: hasher, logger: logger}, nil
}

// AttachMetrics wires an outcome recorder into the flow.
func (f *Flow) AttachMetrics(m MetricsRecorder) {
	f.metrics = m
}

// Config returns the flow's configuration.
func (f *Flow) Config() Config {
	return f.cfg
}

// Repository exposes the backing store handle for downstream use, but
// only while the session is authenticated.
func (f *Flow) Repository(session *Session) UserRepository {
	if session == nil || !session.Authenticated {
		return nil
	}
	return f.repo
}

// CreateAccount hashes the password and inserts a new credential row.
// Validation failures leave the session unchanged; store failures reset
// it and surface the store error text verbatim.
func (f *Flow) CreateAccount(ctx context.Context, session *Session, username, password, confirm string) Outcome {
	if !f.cfg.AllowCreate {
		return rejected("account creation is not enabled")
	}
	if session.Authenticated {
		return rejected("already authenticated")
	}
	if username == "" || password == "" {
		return rejected(f.cfg.EmptyFieldsMessage)
	}
	if f.cfg.RequireConfirm && password != confirm {
		return rejected(f.cfg.PasswordMismatchMessage)
	}
	if f.cfg.ConstrainPassword && !ValidatePassword(password) {
		return rejected(f.cfg.PasswordFailMessage)
	}

	hash, err := f.hasher.Hash(password)
	if err != nil {
		session.Reset()
		return failed(err.Error())
	}

	cred := &Credential{Username: username, PasswordHash: hash}
	if f.cfg.RetrieveRole {
		cred.Role = strings.ToLower(f.cfg.RoleDefault)
	}

	if err := f.repo.Insert(ctx, f.cfg.Table, cred); err != nil {
		f.logger.Warn("account creation failed",
			"session_id", session.ID.String(),
			"username", username,
			"error", err)
		session.Reset()
		return failed(err.Error())
	}

	session.SetAuthenticated(username)
	if f.cfg.RetrieveRole {
		session.SetRole(cred.Role)
	}
	if f.metrics != nil {
		f.metrics.RecordAccountCreated()
	}
	f.logger.Info("account created",
		"session_id", session.ID.String(),
		"username", username)
	return success()
}

// Login verifies the submitted credentials. A stored value still in
// legacy form is hashed and written back before verification, so one
// successful login is enough to retire a plaintext row. Unknown username,
// wrong password, and store faults on this path all collapse into the
// same configured message.
func (f *Flow) Login(ctx context.Context, session *Session, username, password string) Outcome {
	if session.Authenticated {
		return rejected("already authenticated")
	}
	if username == "" || password == "" {
		return rejected(f.cfg.EmptyFieldsMessage)
	}

	cred, err := f.repo.FindByUsername(ctx, f.cfg.Table, username)
	if err != nil {
		f.logLoginFailure(session, username, err)
		session.Reset()
		return f.loginRejected()
	}

	storedHash := cred.PasswordHash
	if cred.IsLegacy() {
		// The stored value is the user's plaintext password. Hash it and
		// update the row before verification proceeds against the new hash.
		newHash, hashErr := f.hasher.Hash(storedHash)
		if hashErr != nil {
			f.logLoginFailure(session, username, hashErr)
			session.Reset()
			return f.loginRejected()
		}
		if updateErr := f.repo.UpdatePassword(ctx, f.cfg.Table, username, newHash); updateErr != nil {
			f.logLoginFailure(session, username, updateErr)
			session.Reset()
			return f.loginRejected()
		}
		storedHash = newHash
	}

	// Malformed stored hashes verify as a plain mismatch.
	ok, verifyErr := f.hasher.Verify(password, storedHash)
	if verifyErr != nil || !ok {
		if verifyErr != nil {
			f.logLoginFailure(session, username, verifyErr)
		}
		session.Reset()
		return f.loginRejected()
	}

	session.SetAuthenticated(username)
	if f.cfg.RetrieveRole {
		session.SetRole(cred.Role)
	}

	// Opportunistic cost upgrade, checked only after successful
	// verification. Best effort: login succeeds regardless.
	if f.hasher.NeedsRehash(storedHash) {
		if newHash, hashErr := f.hasher.Hash(password); hashErr == nil {
			if updateErr := f.repo.UpdatePassword(ctx, f.cfg.Table, username, newHash); updateErr != nil {
				f.logger.Warn("rehash upgrade failed",
					"session_id", session.ID.String(),
					"username", username,
					"error", updateErr)
			} else if f.metrics != nil {
				f.metrics.RecordRehashUpgrade()
			}
		}
	}

	if f.metrics != nil {
		f.metrics.RecordLogin(StatusSuccess.String())
	}
	f.logger.Info("login succeeded",
		"session_id", session.ID.String(),
		"username", username)
	return success()
}

// GuestLogin authenticates the session without credentials.
func (f *Flow) GuestLogin(session *Session) Outcome {
	if !f.cfg.AllowGuest {
		return rejected("guest login is not enabled")
	}
	if session.Authenticated {
		return rejected("already authenticated")
	}

	session.SetGuest()
	if f.cfg.RetrieveRole {
		session.SetRole(GuestRole)
	}
	if f.metrics != nil {
		f.metrics.RecordLogin(StatusSuccess.String())
	}
	f.logger.Info("guest login", "session_id", session.ID.String())
	return success()
}

// Logout unconditionally resets the session.
func (f *Flow) Logout(session *Session) Outcome {
	session.Reset()
	f.logger.Info("logout", "session_id", session.ID.String())
	return success()
}

// loginRejected builds the shared enumeration-resistant login failure.
func (f *Flow) loginRejected() Outcome {
	if f.metrics != nil {
		f.metrics.RecordLogin(StatusRejected.String())
	}
	return rejected(f.cfg.LoginErrorMessage)
}

// logLoginFailure records the underlying cause without leaking it to the
// caller. ErrNotFound is logged at debug to keep noise down.
func (f *Flow) logLoginFailure(session *Session, username string, err error) {
	level := slog.LevelWarn
	if isNotFound(err) {
		level = slog.LevelDebug
	}
	f.logger.Log(context.Background(), level, "login failed",
		"session_id", session.ID.String(),
		"username", username,
		"error", err)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
