// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loginform Contributors

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// HashTag is the self-describing prefix of every hash this package
// produces. A stored credential value without this prefix is treated as
// legacy/plaintext and is upgraded on the next successful login or by
// RehashAll.
const HashTag = "$argon2id$"

// OWASP-recommended argon2id parameters.
const (
	DefaultArgon2Time    = 1         // iterations
	DefaultArgon2Memory  = 64 * 1024 // 64 MB
	DefaultArgon2Threads = 4         // parallelism
	argon2SaltLen        = 16        // salt length in bytes
	argon2KeyLen         = 32        // output length in bytes
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// Params are the argon2id cost parameters for newly produced hashes.
type Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
}

// DefaultParams returns the OWASP-recommended cost parameters.
func DefaultParams() Params {
	return Params{
		Time:    DefaultArgon2Time,
		Memory:  DefaultArgon2Memory,
		Threads: DefaultArgon2Threads,
	}
}

// PasswordHasher provides password hashing and verification.
type PasswordHasher interface {
	// Hash produces an argon2id hash of the password. Input already in
	// tagged-hash form is returned unchanged.
	Hash(password string) (string, error)

	// Verify checks if the password matches the hash.
	// Returns (true, nil) on match, (false, nil) on mismatch, or error on invalid hash.
	Verify(password, hash string) (bool, error)

	// NeedsRehash returns true if the hash was produced with cost
	// parameters weaker than the current configuration.
	NeedsRehash(hash string) bool
}

// Argon2idHasher implements PasswordHasher using argon2id.
type Argon2idHasher struct {
	params Params
}

// NewArgon2idHasher creates an Argon2idHasher with default parameters.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{params: DefaultParams()}
}

// NewArgon2idHasherWithParams creates an Argon2idHasher with custom cost
// parameters. Zero fields fall back to their defaults.
func NewArgon2idHasherWithParams(p Params) *Argon2idHasher {
	if p.Time == 0 {
		p.Time = DefaultArgon2Time
	}
	if p.Memory == 0 {
		p.Memory = DefaultArgon2Memory
	}
	if p.Threads == 0 {
		p.Threads = DefaultArgon2Threads
	}
	return &Argon2idHasher{params: p}
}

// Hash produces an argon2id hash of the password. A value that already
// carries the hash tag is returned unchanged, so a single code path can
// handle both new passwords and values read back from storage.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if strings.HasPrefix(password, HashTag) {
		return password, nil
	}
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	hash := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.Memory, h.params.Threads, argon2KeyLen)

	// Encode as PHC string format
	// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
	encoded := fmt.Sprintf(
		"%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		HashTag,
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)

	return encoded, nil
}

// Verify checks if the password matches the hash.
func (h *Argon2idHasher) Verify(password, encodedHash string) (bool, error) {
	memory, time, threads, salt, expectedHash, err := parseHash(encodedHash)
	if err != nil {
		return false, err
	}

	keyLen := len(expectedHash)
	if keyLen <= 0 || keyLen > 1<<30 {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("invalid hash key length: %d", keyLen)
	}

	computedHash := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(keyLen))

	if subtle.ConstantTimeCompare(computedHash, expectedHash) == 1 {
		return true, nil
	}

	return false, nil
}

// NeedsRehash returns true if the hash is not argon2id, or if its encoded
// cost parameters are weaker than the hasher's current configuration.
// Callers must check this only after a successful Verify.
func (h *Argon2idHasher) NeedsRehash(hash string) bool {
	if !strings.HasPrefix(hash, HashTag) {
		return true
	}
	memory, time, threads, _, _, err := parseHash(hash)
	if err != nil {
		return true
	}
	return memory < h.params.Memory || time < h.params.Time || threads < h.params.Threads
}

// parseHash decodes a PHC-format argon2id hash into its parameters,
// salt, and key.
func parseHash(encodedHash string) (memory, time uint32, threads uint8, salt, key []byte, err error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return 0, 0, 0, nil, nil, oops.Code("AUTH_INVALID_HASH").Errorf("invalid hash format")
	}

	if parts[1] != "argon2id" {
		return 0, 0, 0, nil, nil, oops.Code("AUTH_INVALID_HASH").Errorf("unsupported hash algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return 0, 0, 0, nil, nil, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}

	var m, t, p uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &m, &t, &p); err != nil {
		return 0, 0, 0, nil, nil, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}

	// Validate threads fits in uint8 to prevent silent truncation
	if p > 255 {
		return 0, 0, 0, nil, nil, oops.Code("AUTH_INVALID_HASH").Errorf("threads value %d exceeds uint8 max", p)
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return 0, 0, 0, nil, nil, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}

	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return 0, 0, 0, nil, nil, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}

	return m, t, uint8(p), salt, key, nil
}

// Compile-time interface check.
var _ PasswordHasher = (*Argon2idHasher)(nil)
