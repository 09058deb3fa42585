// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package kdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStore creates an in-memory principal store for tests and closes
// it when the test completes.
func TestStore(t testing.TB, opt ...Option) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := Open(ctx, opt...)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, s.Close(context.Background()))
	})
	return s
}

// TestRepository creates a repository backed by the given store.
func TestRepository(t testing.TB, s *Store) *Repository {
	t.Helper()
	ctx := context.Background()
	repo, err := NewRepository(ctx, s)
	require.NoError(t, err)
	return repo
}

// TestPrincipal creates a principal entry with the given name.
func TestPrincipal(t testing.TB, repo *Repository, name string) *PrincipalEntry {
	t.Helper()
	ctx := context.Background()
	entry, err := repo.CreatePrincipal(ctx, name)
	require.NoError(t, err)
	return entry
}

// TestAttribute sets a string attribute on a principal entry.
func TestAttribute(t testing.TB, repo *Repository, principalId, name, value string) *PrincipalAttribute {
	t.Helper()
	ctx := context.Background()
	attr, err := repo.SetAttribute(ctx, principalId, name, value)
	require.NoError(t, err)
	return attr
}
