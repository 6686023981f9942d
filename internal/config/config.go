// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loginform Contributors

// Package config loads loginform configuration from defaults, an
// optional YAML file, and command-line flags, in that precedence order.
// The surface is deliberately a flat set of named options so embedders
// can map it onto whatever configuration system they already have.
package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/loginform/loginform/internal/auth"
)

// Config is the flat option surface. Field defaults mirror the
// documented behavior of the login flow.
type Config struct {
	// All fields are optional in the file; anything can instead come
	// from flags, so the schema marks nothing required.
	DatabaseURL string `koanf:"database_url" json:"database_url,omitempty" jsonschema:"description=PostgreSQL connection URL"`

	LogFormat string `koanf:"log_format" json:"log_format,omitempty" jsonschema:"enum=json,enum=text"`
	LogLevel  string `koanf:"log_level" json:"log_level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`

	MetricsAddr string `koanf:"metrics_addr" json:"metrics_addr,omitempty" jsonschema:"description=Listen address for /metrics and health probes; empty disables"`

	UserTable   string `koanf:"user_table" json:"user_table,omitempty"`
	UsernameCol string `koanf:"username_col" json:"username_col,omitempty"`
	PasswordCol string `koanf:"password_col" json:"password_col,omitempty"`
	RoleCol     string `koanf:"role_col" json:"role_col,omitempty"`

	AllowCreate       bool   `koanf:"allow_create" json:"allow_create,omitempty"`
	AllowGuest        bool   `koanf:"allow_guest" json:"allow_guest,omitempty"`
	ConstrainPassword bool   `koanf:"constrain_password" json:"constrain_password,omitempty"`
	RequireConfirm    bool   `koanf:"require_confirm" json:"require_confirm,omitempty"`
	RetrieveRole      bool   `koanf:"retrieve_role" json:"retrieve_role,omitempty"`
	RoleDefault       string `koanf:"role_default" json:"role_default,omitempty"`

	LoginErrorMessage       string `koanf:"login_error_message" json:"login_error_message,omitempty"`
	PasswordMismatchMessage string `koanf:"password_mismatch_message" json:"password_mismatch_message,omitempty"`
	PasswordFailMessage     string `koanf:"password_fail_message" json:"password_fail_message,omitempty"`
	EmptyFieldsMessage      string `koanf:"empty_fields_message" json:"empty_fields_message,omitempty"`

	ArgonTime      uint32 `koanf:"argon_time" json:"argon_time,omitempty" jsonschema:"minimum=1"`
	ArgonMemoryKiB uint32 `koanf:"argon_memory_kib" json:"argon_memory_kib,omitempty" jsonschema:"minimum=1024"`
	ArgonThreads   uint8  `koanf:"argon_threads" json:"argon_threads,omitempty" jsonschema:"minimum=1"`
}

// Default returns the configuration used when nothing is supplied.
func Default() Config {
	flow := auth.DefaultConfig()
	return Config{
		LogFormat:               "json",
		LogLevel:                "info",
		UserTable:               auth.DefaultUserTable,
		UsernameCol:             auth.DefaultUsernameCol,
		PasswordCol:             auth.DefaultPasswordCol,
		AllowCreate:             flow.AllowCreate,
		AllowGuest:              flow.AllowGuest,
		ConstrainPassword:       flow.ConstrainPassword,
		RequireConfirm:          flow.RequireConfirm,
		LoginErrorMessage:       flow.LoginErrorMessage,
		PasswordMismatchMessage: flow.PasswordMismatchMessage,
		PasswordFailMessage:     flow.PasswordFailMessage,
		EmptyFieldsMessage:      flow.EmptyFieldsMessage,
		ArgonTime:               auth.DefaultArgon2Time,
		ArgonMemoryKiB:          auth.DefaultArgon2Memory,
		ArgonThreads:            auth.DefaultArgon2Threads,
	}
}

// Load merges defaults, the optional YAML file at path, and any changed
// flags from fs. The file is schema-validated before merging. Flag names
// use kebab-case and map onto the underscore option names.
func Load(path string, fs *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		data, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := ValidateYAML(data); err != nil {
			return Config{}, oops.Code("CONFIG_INVALID").
				With("path", path).
				Wrap(err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if fs != nil {
		provider := posflag.ProviderWithValue(fs, ".", k, func(key, value string) (string, any) {
			return strings.ReplaceAll(key, "-", "_"), value
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").
				With("operation", "merge flags").
				Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").
			With("operation", "unmarshal config").
			Wrap(err)
	}

	if err := cfg.FlowConfig().Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// TableSpec builds the repository table spec from the flat options.
func (c Config) TableSpec() auth.TableSpec {
	return auth.TableSpec{
		Table:       c.UserTable,
		UsernameCol: c.UsernameCol,
		PasswordCol: c.PasswordCol,
		RoleCol:     c.RoleCol,
	}
}

// FlowConfig builds the auth flow configuration from the flat options.
func (c Config) FlowConfig() auth.Config {
	return auth.Config{
		Table:                   c.TableSpec(),
		AllowCreate:             c.AllowCreate,
		AllowGuest:              c.AllowGuest,
		ConstrainPassword:       c.ConstrainPassword,
		RequireConfirm:          c.RequireConfirm,
		RetrieveRole:            c.RetrieveRole,
		RoleDefault:             c.RoleDefault,
		LoginErrorMessage:       c.LoginErrorMessage,
		PasswordMismatchMessage: c.PasswordMismatchMessage,
		PasswordFailMessage:     c.PasswordFailMessage,
		EmptyFieldsMessage:      c.EmptyFieldsMessage,
	}
}

// HasherParams builds the argon2id cost parameters from the flat options.
func (c Config) HasherParams() auth.Params {
	return auth.Params{
		Time:    c.ArgonTime,
		Memory:  c.ArgonMemoryKiB,
		Threads: c.ArgonThreads,
	}
}
