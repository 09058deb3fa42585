// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package db

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUrl uses a temp in-memory sqlite database, see:
// https://www.sqlite.org/inmemorydb.html
const TestUrl = "file::memory:?_pragma=foreign_keys(1)"

// TestSetup sets up the database for a test and returns an open connection.
// A temp in-memory sqlite database is used unless the DB_DIALECT and DB_DSN
// env vars override it.  The connection is closed when the test and all its
// subtests complete.
func TestSetup(t *testing.T, opt ...Option) *DB {
	t.Helper()
	require := require.New(t)
	ctx := context.Background()

	dialect := Sqlite
	url := TestUrl
	if v := os.Getenv("DB_DIALECT"); v != "" {
		var err error
		dialect, err = StringToDbType(strings.ToLower(v))
		require.NoError(err)
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		url = v
	}

	conn, err := Open(ctx, dialect, url, opt...)
	require.NoError(err)
	t.Cleanup(func() {
		assert.NoError(t, conn.Close(ctx))
	})
	return conn
}
