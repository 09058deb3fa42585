// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package db

import (
	"context"
	"strings"
	"testing"

	"github.com/hashicorp/xrealmauthz/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewPrivateId(t *testing.T) {
	testCtx := context.Background()

	t.Run("missing-prefix", func(t *testing.T) {
		assert := assert.New(t)
		id, err := NewPrivateId(testCtx, "")
		assert.Error(err)
		assert.Empty(id)
		assert.True(errors.Match(errors.T(errors.InvalidParameter), err))
	})
	t.Run("valid", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		id, err := NewPrivateId(testCtx, "kpe")
		require.NoError(err)
		assert.True(strings.HasPrefix(id, "kpe_"))
		assert.Len(id, len("kpe_")+10)
	})
	t.Run("unique", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		first, err := NewPrivateId(testCtx, "kpe")
		require.NoError(err)
		second, err := NewPrivateId(testCtx, "kpe")
		require.NoError(err)
		assert.NotEqual(first, second)
	})
	t.Run("prng-is-deterministic", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		first, err := NewPrivateId(testCtx, "kpe", WithPrngValues([]string{"alice", "REALM1.COM"}))
		require.NoError(err)
		second, err := NewPrivateId(testCtx, "kpe", WithPrngValues([]string{"alice", "REALM1.COM"}))
		require.NoError(err)
		assert.Equal(first, second)

		third, err := NewPrivateId(testCtx, "kpe", WithPrngValues([]string{"bob", "REALM1.COM"}))
		require.NoError(err)
		assert.NotEqual(first, third)
	})
}
