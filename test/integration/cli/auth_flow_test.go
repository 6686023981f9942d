// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loginform Contributors

//go:build integration

package cli_test

import (
	"context"
	"os/exec"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
)

// runCLI runs the loginform binary from source with DATABASE_URL pointed
// at the test container.
func runCLI(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "go", append([]string{"run", "."}, args...)...)
	cmd.Dir = "../../../cmd/loginform"
	cmd.Env = append(cmd.Environ(), "DATABASE_URL="+env.connStr)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

var _ = Describe("Auth commands", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
		cleanupDatabase(ctx, env.pool)

		output, err := runCLI(ctx, "migrate")
		Expect(err).NotTo(HaveOccurred(), "migrate failed: %s", output)
		Expect(output).To(ContainSubstring("Migrations completed"))
	})

	Describe("create-user", func() {
		It("creates an account and stores a tagged hash", func() {
			output, err := runCLI(ctx, "create-user", "--username", "alice", "--password", "Abc12345!")
			Expect(err).NotTo(HaveOccurred(), "create-user failed: %s", output)
			Expect(output).To(ContainSubstring(`Created account "alice"`))

			var stored string
			err = env.pool.QueryRow(ctx,
				"SELECT password FROM users WHERE username = $1", "alice",
			).Scan(&stored)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored).To(HavePrefix("$argon2id$"))
		})

		It("rejects a password that fails the policy", func() {
			output, err := runCLI(ctx, "create-user", "--username", "alice", "--password", "weak")
			Expect(err).To(HaveOccurred())
			Expect(output).To(ContainSubstring("Password must contain"))
		})

		It("rejects a duplicate username", func() {
			output, err := runCLI(ctx, "create-user", "--username", "alice", "--password", "Abc12345!")
			Expect(err).NotTo(HaveOccurred(), "first create failed: %s", output)

			output, err = runCLI(ctx, "create-user", "--username", "alice", "--password", "Xyz98765!")
			Expect(err).To(HaveOccurred())
			Expect(output).To(ContainSubstring("already exists"))
		})
	})

	Describe("login", func() {
		BeforeEach(func() {
			output, err := runCLI(ctx, "create-user", "--username", "bob", "--password", "Abc12345!")
			Expect(err).NotTo(HaveOccurred(), "create-user failed: %s", output)
		})

		It("authenticates with correct credentials", func() {
			output, err := runCLI(ctx, "login", "--username", "bob", "--password", "Abc12345!")
			Expect(err).NotTo(HaveOccurred(), "login failed: %s", output)
			Expect(output).To(ContainSubstring(`Authenticated as "bob"`))
		})

		It("reports the same message for wrong password and unknown user", func() {
			wrongPass, err := runCLI(ctx, "login", "--username", "bob", "--password", "wrongpass")
			Expect(err).To(HaveOccurred())

			unknownUser, err := runCLI(ctx, "login", "--username", "nobody", "--password", "Abc12345!")
			Expect(err).To(HaveOccurred())

			Expect(wrongPass).To(ContainSubstring("Wrong username/password"))
			Expect(unknownUser).To(ContainSubstring("Wrong username/password"))
		})

		It("migrates a plaintext row on first login", func() {
			_, err := env.pool.Exec(ctx,
				"INSERT INTO users (username, password) VALUES ($1, $2)",
				"legacy", "Plain123!pass")
			Expect(err).NotTo(HaveOccurred())

			output, err := runCLI(ctx, "login", "--username", "legacy", "--password", "Plain123!pass")
			Expect(err).NotTo(HaveOccurred(), "login failed: %s", output)

			var stored string
			err = env.pool.QueryRow(ctx,
				"SELECT password FROM users WHERE username = $1", "legacy",
			).Scan(&stored)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored).To(HavePrefix("$argon2id$"))
		})
	})

	Describe("hash-passwords", func() {
		It("upgrades every plaintext row in place", func() {
			for _, row := range [][2]string{
				{"legacy_one", "password-one"},
				{"legacy_two", "password-two"},
			} {
				_, err := env.pool.Exec(ctx,
					"INSERT INTO users (username, password) VALUES ($1, $2)", row[0], row[1])
				Expect(err).NotTo(HaveOccurred())
			}

			output, err := runCLI(ctx, "hash-passwords")
			Expect(err).NotTo(HaveOccurred(), "hash-passwords failed: %s", output)
			Expect(output).To(ContainSubstring("Hashed 2 plaintext passwords"))

			rows, err := env.pool.Query(ctx, "SELECT password FROM users")
			Expect(err).NotTo(HaveOccurred())
			defer rows.Close()
			for rows.Next() {
				var stored string
				Expect(rows.Scan(&stored)).To(Succeed())
				Expect(stored).To(HavePrefix("$argon2id$"))
			}
			Expect(rows.Err()).NotTo(HaveOccurred())
		})

		It("is a no-op when everything is hashed", func() {
			output, err := runCLI(ctx, "hash-passwords")
			Expect(err).NotTo(HaveOccurred(), "hash-passwords failed: %s", output)
			Expect(output).To(ContainSubstring("All passwords are already hashed"))
		})
	})
})
