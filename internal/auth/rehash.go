// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loginform Contributors

package auth

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// RehashAll hashes every credential row still holding a legacy value,
// one row at a time keyed by username. Each update is independent, so a
// partial failure leaves completed rows upgraded and the rest eligible
// for the next run or the next login. Returns the number of rows
// upgraded before any error.
func RehashAll(ctx context.Context, repo UserRepository, spec TableSpec, hasher PasswordHasher) (int, error) {
	if err := spec.Validate(); err != nil {
		return 0, err
	}

	legacy, err := repo.ScanLegacy(ctx, spec, HashTag)
	if err != nil {
		return 0, oops.Code("REHASH_SCAN_FAILED").
			With("operation", "scan legacy credentials").
			Wrap(err)
	}
	if len(legacy) == 0 {
		slog.Info("all stored passwords already hashed")
		return 0, nil
	}

	slog.Warn("hashing legacy passwords", "count", len(legacy))

	upgraded := 0
	skipped := 0
	for _, cred := range legacy {
		hash, hashErr := hasher.Hash(cred.PasswordHash)
		if hashErr != nil {
			// A row the hasher refuses (e.g. an empty stored value) stays
			// legacy; aborting here would strand every row behind it.
			slog.Warn("skipping unhashable legacy row",
				"username", cred.Username,
				"error", hashErr)
			skipped++
			continue
		}
		if updateErr := repo.UpdatePassword(ctx, spec, cred.Username, hash); updateErr != nil {
			return upgraded, oops.Code("REHASH_UPDATE_FAILED").
				With("username", cred.Username).
				Wrap(updateErr)
		}
		upgraded++
	}

	slog.Info("legacy passwords hashed", "count", upgraded, "skipped", skipped)
	return upgraded, nil
}
