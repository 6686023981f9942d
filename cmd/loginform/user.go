// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loginform Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/loginform/loginform/internal/auth"
)

// NewCreateUserCmd creates the create-user subcommand: the create-account
// flow driven from the terminal for bootstrap and smoke testing.
func NewCreateUserCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			pool, flow, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			obs, stopObs, err := startObservability(cfg)
			if err != nil {
				return err
			}
			defer stopObs()
			if obs != nil {
				flow.AttachMetrics(obs.Metrics())
			}

			session := auth.NewSession()
			outcome := flow.CreateAccount(cmd.Context(), session, username, password, password)
			if outcome.Status != auth.StatusSuccess {
				return oops.Code("CREATE_FAILED").Errorf("%s", outcome.Message)
			}

			cmd.Printf("Created account %q\n", session.Username)
			return nil
		},
	}

	addStoreFlags(cmd)
	cmd.Flags().StringVar(&username, "username", "", "username to create")
	cmd.Flags().StringVar(&password, "password", "", "password for the new account")
	_ = cmd.MarkFlagRequired("username") //nolint:errcheck // flag exists
	_ = cmd.MarkFlagRequired("password") //nolint:errcheck // flag exists

	return cmd
}

// NewLoginCmd creates the login subcommand: runs the login flow once and
// reports the outcome, upgrading a legacy row as a side effect.
func NewLoginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Verify credentials against the user store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			pool, flow, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			obs, stopObs, err := startObservability(cfg)
			if err != nil {
				return err
			}
			defer stopObs()
			if obs != nil {
				flow.AttachMetrics(obs.Metrics())
			}

			session := auth.NewSession()
			outcome := flow.Login(cmd.Context(), session, username, password)
			if outcome.Status != auth.StatusSuccess {
				return oops.Code("LOGIN_FAILED").Errorf("%s", outcome.Message)
			}

			if session.Role != "" {
				cmd.Printf("Authenticated as %q (role %s)\n", session.Username, session.Role)
			} else {
				cmd.Printf("Authenticated as %q\n", session.Username)
			}
			return nil
		},
	}

	addStoreFlags(cmd)
	cmd.Flags().StringVar(&username, "username", "", "username to verify")
	cmd.Flags().StringVar(&password, "password", "", "password to verify")
	cmd.Flags().Bool("retrieve-role", false, "read the role column on login")
	_ = cmd.MarkFlagRequired("username") //nolint:errcheck // flag exists
	_ = cmd.MarkFlagRequired("password") //nolint:errcheck // flag exists

	return cmd
}
