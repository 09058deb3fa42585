// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package db

import (
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
)

func Test_GetOpts(t *testing.T) {
	t.Parallel()
	t.Run("default", func(t *testing.T) {
		assert := assert.New(t)
		opts := GetOpts()
		testOpts := getDefaultOptions()
		assert.Equal(testOpts, opts)
	})
	t.Run("WithLookup", func(t *testing.T) {
		assert := assert.New(t)
		opts := GetOpts(WithLookup(true))
		testOpts := getDefaultOptions()
		testOpts.withLookup = true
		assert.Equal(testOpts, opts)
	})
	t.Run("WithLimit", func(t *testing.T) {
		assert := assert.New(t)
		opts := GetOpts(WithLimit(-1))
		testOpts := getDefaultOptions()
		testOpts.withLimit = -1
		assert.Equal(testOpts, opts)
	})
	t.Run("WithOrder", func(t *testing.T) {
		assert := assert.New(t)
		opts := GetOpts(WithOrder("create_time asc"))
		testOpts := getDefaultOptions()
		testOpts.withOrder = "create_time asc"
		assert.Equal(testOpts, opts)
	})
	t.Run("WithVersion", func(t *testing.T) {
		assert := assert.New(t)
		version := uint32(2)
		opts := GetOpts(WithVersion(&version))
		testOpts := getDefaultOptions()
		testOpts.withVersion = &version
		assert.Equal(testOpts, opts)
	})
	t.Run("WithSkipVetForWrite", func(t *testing.T) {
		assert := assert.New(t)
		opts := GetOpts(WithSkipVetForWrite(true))
		testOpts := getDefaultOptions()
		testOpts.withSkipVetForWrite = true
		assert.Equal(testOpts, opts)
	})
	t.Run("WithWhere", func(t *testing.T) {
		assert := assert.New(t)
		opts := GetOpts(WithWhere("name = ?", "REALM1.COM"))
		testOpts := getDefaultOptions()
		testOpts.withWhereClause = "name = ?"
		testOpts.withWhereClauseArgs = []any{"REALM1.COM"}
		assert.Equal(testOpts, opts)
	})
	t.Run("WithOnConflict", func(t *testing.T) {
		assert := assert.New(t)
		onConflict := &OnConflict{
			Target: Columns{"name"},
			Action: DoNothing(true),
		}
		opts := GetOpts(WithOnConflict(onConflict))
		testOpts := getDefaultOptions()
		testOpts.withOnConflict = onConflict
		assert.Equal(testOpts, opts)
	})
	t.Run("WithReturnRowsAffected", func(t *testing.T) {
		assert := assert.New(t)
		var rowsAffected int64
		opts := GetOpts(WithReturnRowsAffected(&rowsAffected))
		testOpts := getDefaultOptions()
		testOpts.withRowsAffected = &rowsAffected
		assert.Equal(testOpts, opts)
	})
	t.Run("WithDebug", func(t *testing.T) {
		assert := assert.New(t)
		opts := GetOpts(WithDebug(true))
		testOpts := getDefaultOptions()
		testOpts.withDebug = true
		assert.Equal(testOpts, opts)
	})
	t.Run("WithGormFormatter", func(t *testing.T) {
		assert := assert.New(t)
		logger := hclog.New(&hclog.LoggerOptions{Name: "test"})
		opts := GetOpts(WithGormFormatter(logger))
		testOpts := getDefaultOptions()
		testOpts.withGormFormatter = logger
		assert.Equal(testOpts, opts)
	})
	t.Run("WithMaxOpenConnections", func(t *testing.T) {
		assert := assert.New(t)
		opts := GetOpts(WithMaxOpenConnections(5))
		testOpts := getDefaultOptions()
		testOpts.withMaxOpenConnections = 5
		assert.Equal(testOpts, opts)
	})
	t.Run("WithPrngValues", func(t *testing.T) {
		assert := assert.New(t)
		opts := GetOpts(WithPrngValues([]string{"alice", "bob"}))
		testOpts := getDefaultOptions()
		testOpts.withPrngValues = []string{"alice", "bob"}
		assert.Equal(testOpts, opts)
	})
}
