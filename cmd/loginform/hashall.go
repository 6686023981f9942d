// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loginform Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/loginform/loginform/internal/auth"
	"github.com/loginform/loginform/internal/auth/postgres"
	"github.com/loginform/loginform/internal/store"
)

// NewHashPasswordsCmd creates the hash-passwords subcommand: the bulk
// fallback for rows never revisited by a login.
func NewHashPasswordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-passwords",
		Short: "Hash all remaining plaintext passwords in the user table",
		Long: `Scan the user table for rows whose password column is not yet an
argon2id hash and upgrade them in place, one row at a time. Safe to
re-run; a partial failure leaves completed rows upgraded.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			url, err := databaseURL(cfg)
			if err != nil {
				return err
			}
			pool, err := store.Connect(ctx, url)
			if err != nil {
				return err
			}
			defer pool.Close()

			obs, stopObs, err := startObservability(cfg)
			if err != nil {
				return err
			}
			defer stopObs()

			repo := postgres.NewUserRepository(pool)
			hasher := auth.NewArgon2idHasherWithParams(cfg.HasherParams())

			upgraded, err := auth.RehashAll(ctx, repo, cfg.TableSpec(), hasher)
			if err != nil {
				return err
			}
			if obs != nil {
				obs.Metrics().AddRehashUpgrades(upgraded)
			}

			if upgraded == 0 {
				cmd.Println("All passwords are already hashed")
			} else {
				cmd.Printf("Hashed %d plaintext passwords\n", upgraded)
			}
			return nil
		},
	}

	addStoreFlags(cmd)

	return cmd
}
