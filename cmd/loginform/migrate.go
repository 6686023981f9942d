// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loginform Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/loginform/loginform/internal/store"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	var down bool
	var force int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations for the default user table",
		Long: `Run all pending migrations against the PostgreSQL database.
Installations pointing loginform at a pre-existing user table do not
need this command.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			url, err := databaseURL(cfg)
			if err != nil {
				return err
			}

			migrator, err := store.NewMigrator(url)
			if err != nil {
				return err
			}
			defer migrator.Close() //nolint:errcheck // best effort on exit

			if force >= 0 {
				cmd.Printf("Forcing migration version to %d...\n", force)
				return migrator.Force(force)
			}
			if down {
				cmd.Println("Rolling back all migrations...")
				return migrator.Down()
			}

			cmd.Println("Running migrations...")
			if err := migrator.Up(); err != nil {
				return err
			}

			ver, dirty, err := migrator.Version()
			if err != nil {
				return err
			}
			cmd.Printf("Migrations completed (version %d, dirty %t)\n", ver, dirty)
			return nil
		},
	}

	addStoreFlags(cmd)
	cmd.Flags().BoolVar(&down, "down", false, "roll back all migrations (destructive)")
	cmd.Flags().IntVar(&force, "force", -1, "force migration version without running migrations")

	return cmd
}
