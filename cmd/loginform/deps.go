// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loginform Contributors

package main

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/loginform/loginform/internal/auth"
	"github.com/loginform/loginform/internal/auth/postgres"
	"github.com/loginform/loginform/internal/config"
	"github.com/loginform/loginform/internal/logging"
	"github.com/loginform/loginform/internal/observability"
	"github.com/loginform/loginform/internal/store"
)

// addStoreFlags registers the flags shared by every command that talks
// to the user store. Values merge over the config file.
func addStoreFlags(cmd *cobra.Command) {
	defaults := config.Default()
	f := cmd.Flags()
	f.String("database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	f.String("user-table", defaults.UserTable, "user table name")
	f.String("username-col", defaults.UsernameCol, "username column name")
	f.String("password-col", defaults.PasswordCol, "password column name")
	f.String("role-col", "", "role column name (enables role tracking with --retrieve-role)")
	f.String("log-format", defaults.LogFormat, "log format (json or text)")
	f.String("log-level", defaults.LogLevel, "log level (debug, info, warn, error)")
	f.String("metrics-addr", defaults.MetricsAddr, "serve /metrics and health probes on this address (empty disables)")
}

// startObservability starts the metrics server when an address is
// configured. The returned stop func is safe to call unconditionally;
// obs is nil when metrics are disabled.
func startObservability(cfg config.Config) (*observability.Server, func(), error) {
	if cfg.MetricsAddr == "" {
		return nil, func() {}, nil
	}

	obs := observability.NewServer(cfg.MetricsAddr, nil)
	if _, err := obs.Start(); err != nil {
		return nil, nil, err
	}
	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = obs.Stop(ctx) //nolint:errcheck // best effort on exit
	}
	return obs, stop, nil
}

// loadConfig merges the config file and the command's changed flags,
// then installs the default logger.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return config.Config{}, err
	}
	logging.SetDefault("loginform", version, cfg.LogFormat, logging.ParseLevel(cfg.LogLevel))
	return cfg, nil
}

// databaseURL resolves the connection URL from config or environment.
func databaseURL(cfg config.Config) (string, error) {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL, nil
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url, nil
	}
	return "", oops.Code("CONFIG_INVALID").
		Errorf("database URL is required (--database-url, config file, or DATABASE_URL)")
}

// openStore connects to the database and builds the repository, hasher,
// and flow from the configuration.
func openStore(ctx context.Context, cfg config.Config) (*pgxpool.Pool, *auth.Flow, error) {
	url, err := databaseURL(cfg)
	if err != nil {
		return nil, nil, err
	}

	pool, err := store.Connect(ctx, url)
	if err != nil {
		return nil, nil, err
	}

	repo := postgres.NewUserRepository(pool)
	hasher := auth.NewArgon2idHasherWithParams(cfg.HasherParams())

	flow, err := auth.NewFlow(cfg.FlowConfig(), repo, hasher)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	return pool, flow, nil
}
