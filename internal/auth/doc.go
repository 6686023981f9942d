// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loginform Contributors

// Package auth implements the credential-management core for loginform.
//
// # Domain Types
//
// Credential is the stored username/password-hash record; Session is the
// in-process authentication state for one interactive session. Sessions
// should be created with NewSession so each one carries a log-correlation
// id. Direct struct initialization of Session skips that id and is only
// appropriate in tests.
//
// # Services
//
// Flow coordinates the three entry sub-flows (create-account, login,
// guest login) plus logout against a PasswordHasher and a UserRepository.
// RehashAll is the bulk maintenance counterpart to the opportunistic
// hash upgrade Flow performs on the login read path.
package auth
