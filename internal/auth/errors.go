// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loginform Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested credential does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateUsername is returned when inserting a credential whose
// username already exists in the store.
var ErrDuplicateUsername = errors.New("username already exists")
