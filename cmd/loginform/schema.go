// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loginform Contributors

package main

import (
	"os"
	"path/filepath"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/loginform/loginform/internal/config"
)

// NewSchemaCmd creates the schema subcommand, which writes the JSON
// Schema for the YAML configuration file.
func NewSchemaCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Generate the configuration file JSON Schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, err := config.GenerateSchema()
			if err != nil {
				return oops.Code("SCHEMA_GENERATE_FAILED").Wrap(err)
			}

			if outPath == "-" {
				cmd.Println(string(schema))
				return nil
			}

			if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
				return oops.Code("SCHEMA_WRITE_FAILED").With("path", outPath).Wrap(err)
			}
			if err := os.WriteFile(outPath, schema, 0o600); err != nil {
				return oops.Code("SCHEMA_WRITE_FAILED").With("path", outPath).Wrap(err)
			}

			cmd.Printf("Generated %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", filepath.Join("schemas", "config.schema.json"), `output path ("-" for stdout)`)

	return cmd
}
