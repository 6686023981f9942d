// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loginform Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loginform/loginform/internal/auth"
	"github.com/loginform/loginform/internal/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "loginform.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// storeFlags mirrors the flag set the CLI registers, with defaults
// matching config.Default so the merge is lossless.
func storeFlags(t *testing.T) *pflag.FlagSet {
	t.Helper()
	defaults := config.Default()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("database-url", "", "")
	fs.String("user-table", defaults.UserTable, "")
	fs.String("username-col", defaults.UsernameCol, "")
	fs.String("password-col", defaults.PasswordCol, "")
	fs.String("role-col", "", "")
	fs.String("log-format", defaults.LogFormat, "")
	fs.String("log-level", defaults.LogLevel, "")
	return fs
}

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, auth.DefaultUserTable, cfg.UserTable)
	assert.Empty(t, cfg.RoleCol)
	assert.True(t, cfg.AllowCreate)
	assert.True(t, cfg.AllowGuest)
	assert.True(t, cfg.ConstrainPassword)
	assert.True(t, cfg.RequireConfirm)
	assert.False(t, cfg.RetrieveRole)
	assert.Equal(t, auth.DefaultLoginErrorMessage, cfg.LoginErrorMessage)
	assert.Equal(t, uint32(auth.DefaultArgon2Time), cfg.ArgonTime)
	assert.Equal(t, uint32(auth.DefaultArgon2Memory), cfg.ArgonMemoryKiB)
	assert.Equal(t, uint8(auth.DefaultArgon2Threads), cfg.ArgonThreads)
}

func TestLoad(t *testing.T) {
	t.Run("no file and no flags yields defaults", func(t *testing.T) {
		cfg, err := config.Load("", nil)
		require.NoError(t, err)
		assert.Equal(t, config.Default(), cfg)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := writeConfigFile(t, `
database_url: postgres://localhost/loginform
user_table: accounts
allow_guest: false
login_error_message: "Nope"
argon_memory_kib: 131072
`)
		cfg, err := config.Load(path, nil)
		require.NoError(t, err)

		assert.Equal(t, "postgres://localhost/loginform", cfg.DatabaseURL)
		assert.Equal(t, "accounts", cfg.UserTable)
		assert.False(t, cfg.AllowGuest)
		assert.Equal(t, "Nope", cfg.LoginErrorMessage)
		assert.Equal(t, uint32(131072), cfg.ArgonMemoryKiB)
		// Untouched options keep their defaults.
		assert.True(t, cfg.AllowCreate)
		assert.Equal(t, auth.DefaultUsernameCol, cfg.UsernameCol)
	})

	t.Run("changed flags override the file", func(t *testing.T) {
		path := writeConfigFile(t, `
user_table: accounts
log_level: debug
`)
		fs := storeFlags(t)
		require.NoError(t, fs.Set("user-table", "members"))

		cfg, err := config.Load(path, fs)
		require.NoError(t, err)

		assert.Equal(t, "members", cfg.UserTable, "changed flag wins")
		assert.Equal(t, "debug", cfg.LogLevel, "file survives unchanged flags")
	})

	t.Run("unchanged flag defaults do not clobber file values", func(t *testing.T) {
		path := writeConfigFile(t, `
password_col: secret
log_format: text
`)
		cfg, err := config.Load(path, storeFlags(t))
		require.NoError(t, err)

		assert.Equal(t, "secret", cfg.PasswordCol)
		assert.Equal(t, "text", cfg.LogFormat)
	})

	t.Run("missing file errors", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})

	t.Run("schema violation rejected before merging", func(t *testing.T) {
		path := writeConfigFile(t, `
log_format: xml
`)
		_, err := config.Load(path, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "schema validation failed")
	})

	t.Run("role tracking without role column rejected", func(t *testing.T) {
		path := writeConfigFile(t, `
retrieve_role: true
`)
		_, err := config.Load(path, nil)
		require.Error(t, err)
	})

	t.Run("role tracking with role column accepted", func(t *testing.T) {
		path := writeConfigFile(t, `
retrieve_role: true
role_col: role
role_default: viewer
`)
		cfg, err := config.Load(path, nil)
		require.NoError(t, err)
		assert.True(t, cfg.RetrieveRole)
		assert.Equal(t, "role", cfg.RoleCol)
		assert.Equal(t, "viewer", cfg.RoleDefault)
	})
}

func TestConfig_Builders(t *testing.T) {
	cfg := config.Default()
	cfg.DatabaseURL = "postgres://localhost/loginform"
	cfg.RoleCol = "role"
	cfg.RetrieveRole = true
	cfg.RoleDefault = "viewer"
	cfg.ArgonTime = 2
	cfg.ArgonMemoryKiB = 131072
	cfg.ArgonThreads = 8

	t.Run("table spec", func(t *testing.T) {
		spec := cfg.TableSpec()
		assert.Equal(t, auth.TableSpec{
			Table:       auth.DefaultUserTable,
			UsernameCol: auth.DefaultUsernameCol,
			PasswordCol: auth.DefaultPasswordCol,
			RoleCol:     "role",
		}, spec)
		assert.True(t, spec.HasRole())
	})

	t.Run("flow config", func(t *testing.T) {
		flow := cfg.FlowConfig()
		require.NoError(t, flow.Validate())
		assert.True(t, flow.RetrieveRole)
		assert.Equal(t, "viewer", flow.RoleDefault)
		assert.Equal(t, cfg.LoginErrorMessage, flow.LoginErrorMessage)
	})

	t.Run("hasher params", func(t *testing.T) {
		assert.Equal(t, auth.Params{Time: 2, Memory: 131072, Threads: 8}, cfg.HasherParams())
	})
}
