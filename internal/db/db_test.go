// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package db

import (
	"context"
	"testing"

	"github.com/hashicorp/xrealmauthz/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringToDbType(t *testing.T) {
	tests := []struct {
		name    string
		want    DbType
		wantErr bool
	}{
		{name: "postgres", want: Postgres},
		{name: "sqlite", want: Sqlite},
		{name: "mysql", want: UnknownDB, wantErr: true},
		{name: "", want: UnknownDB, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			got, err := StringToDbType(tt.name)
			if tt.wantErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
			}
			assert.Equal(tt.want, got)
		})
	}
}

func TestDbType_String(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("unknown", UnknownDB.String())
	assert.Equal("postgres", Postgres.String())
	assert.Equal("sqlite", Sqlite.String())
}

func TestOpen(t *testing.T) {
	testCtx := context.Background()

	t.Run("missing-url", func(t *testing.T) {
		assert := assert.New(t)
		conn, err := Open(testCtx, Sqlite, "")
		assert.Error(err)
		assert.Nil(conn)
		assert.True(errors.Match(errors.T(errors.InvalidParameter), err))
	})
	t.Run("unknown-type", func(t *testing.T) {
		assert := assert.New(t)
		conn, err := Open(testCtx, UnknownDB, TestUrl)
		assert.Error(err)
		assert.Nil(conn)
		assert.True(errors.Match(errors.T(errors.InvalidParameter), err))
	})
	t.Run("valid-sqlite", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		conn, err := Open(testCtx, Sqlite, TestUrl)
		require.NoError(err)
		require.NotNil(conn)

		underlying, err := conn.SqlDB(testCtx)
		require.NoError(err)
		assert.NoError(underlying.Ping())
		assert.NoError(conn.Close(testCtx))
	})
	t.Run("with-options", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		conn, err := Open(testCtx, Sqlite, TestUrl, WithMaxOpenConnections(1), WithDebug(true))
		require.NoError(err)
		require.NotNil(conn)
		assert.NoError(conn.Close(testCtx))
	})
}

func TestDB_SqlDB(t *testing.T) {
	testCtx := context.Background()

	t.Run("missing-underlying", func(t *testing.T) {
		assert := assert.New(t)
		d := &DB{}
		got, err := d.SqlDB(testCtx)
		assert.Error(err)
		assert.Nil(got)
		assert.True(errors.Match(errors.T(errors.Internal), err))
	})
	t.Run("valid", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		conn := TestSetup(t)
		got, err := conn.SqlDB(testCtx)
		require.NoError(err)
		assert.NotNil(got)
	})
}

func TestDB_Close(t *testing.T) {
	testCtx := context.Background()

	t.Run("missing-underlying", func(t *testing.T) {
		assert := assert.New(t)
		d := &DB{}
		err := d.Close(testCtx)
		assert.Error(err)
		assert.True(errors.Match(errors.T(errors.Internal), err))
	})
	t.Run("valid", func(t *testing.T) {
		require := require.New(t)
		conn, err := Open(testCtx, Sqlite, TestUrl)
		require.NoError(err)
		require.NoError(conn.Close(testCtx))
	})
}
