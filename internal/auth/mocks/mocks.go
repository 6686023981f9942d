// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loginform Contributors

// Package mocks provides testify mocks for the auth package interfaces.
package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/loginform/loginform/internal/auth"
)

// MockUserRepository is a testify mock of auth.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

// NewMockUserRepository creates a MockUserRepository whose expectations
// are asserted on test cleanup.
func NewMockUserRepository(t *testing.T) *MockUserRepository {
	t.Helper()
	m := &MockUserRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, spec auth.TableSpec, username string) (*auth.Credential, error) {
	args := m.Called(ctx, spec, username)
	cred, _ := args.Get(0).(*auth.Credential)
	return cred, args.Error(1)
}

func (m *MockUserRepository) Insert(ctx context.Context, spec auth.TableSpec, cred *auth.Credential) error {
	args := m.Called(ctx, spec, cred)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, spec auth.TableSpec, username, newHash string) error {
	args := m.Called(ctx, spec, username, newHash)
	return args.Error(0)
}

func (m *MockUserRepository) ScanLegacy(ctx context.Context, spec auth.TableSpec, tagPrefix string) ([]auth.Credential, error) {
	args := m.Called(ctx, spec, tagPrefix)
	creds, _ := args.Get(0).([]auth.Credential)
	return creds, args.Error(1)
}

// MockPasswordHasher is a testify mock of auth.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a MockPasswordHasher whose expectations
// are asserted on test cleanup.
func NewMockPasswordHasher(t *testing.T) *MockPasswordHasher {
	t.Helper()
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(password, hash string) (bool, error) {
	args := m.Called(password, hash)
	return args.Bool(0), args.Error(1)
}

func (m *MockPasswordHasher) NeedsRehash(hash string) bool {
	args := m.Called(hash)
	return args.Bool(0)
}

// Compile-time interface checks.
var (
	_ auth.UserRepository = (*MockUserRepository)(nil)
	_ auth.PasswordHasher = (*MockPasswordHasher)(nil)
)
