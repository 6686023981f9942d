// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loginform Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the loginform CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loginform",
		Short: "loginform - username/password authentication workflow",
		Long: `loginform manages a relational user store with argon2id password
hashing: account creation, login verification, and migration of legacy
plaintext rows to tagged hashes.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewHashPasswordsCmd())
	cmd.AddCommand(NewCreateUserCmd())
	cmd.AddCommand(NewLoginCmd())
	cmd.AddCommand(NewSchemaCmd())

	return cmd
}
