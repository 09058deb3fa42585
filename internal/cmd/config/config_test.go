// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/xrealmauthz/internal/errors"
	"github.com/hashicorp/xrealmauthz/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	ctx := context.Background()

	t.Run("empty document", func(t *testing.T) {
		c, err := Parse(ctx, "")
		require.NoError(t, err)
		want := &Config{
			Kdc: &Kdc{
				XRealmAuthzEnforcing: true,
			},
			Eventing: event.DefaultEventerConfig(),
		}
		assert.Empty(t, cmp.Diff(want, c))
	})

	t.Run("full document", func(t *testing.T) {
		c, err := Parse(ctx, `
kdc {
	xrealmauthz_enforcing      = "true"
	xrealmauthz_allowed_realms = ["TRUSTED.EXAMPLE", "REALM2.COM", "TRUSTED.EXAMPLE"]
}

database {
	url = "env://XREALMAUTHZ_DB"
}

events {
	audit_enabled        = false
	observations_enabled = false
	sysevents_enabled    = true
	sink "file" {
		name        = "ops"
		format      = "hclog-json"
		event_types = ["error", "system"]
		file {
			path            = "/var/log/xrealmauthz"
			file_name       = "events.ndjson"
			rotate_duration = "24h"
		}
	}
}
`)
		require.NoError(t, err)
		want := &Config{
			Kdc: &Kdc{
				XRealmAuthzEnforcing:     true,
				XRealmAuthzAllowedRealms: []string{"TRUSTED.EXAMPLE", "REALM2.COM"},
			},
			Database: &Database{
				Url: "env://XREALMAUTHZ_DB",
			},
			Eventing: &event.EventerConfig{
				AuditEnabled:        false,
				ObservationsEnabled: false,
				SysEventsEnabled:    true,
				Sinks: []*event.SinkConfig{
					{
						Name:       "ops",
						EventTypes: []event.Type{event.ErrorType, event.SystemType},
						Format:     event.JSONHclogSinkFormat,
						Type:       event.FileSink,
						FileConfig: &event.FileSinkTypeConfig{
							Path:              "/var/log/xrealmauthz",
							FileName:          "events.ndjson",
							RotateDuration:    24 * time.Hour,
							RotateDurationHCL: "24h",
						},
					},
				},
			},
		}
		assert.Empty(t, cmp.Diff(want, c))
	})

	t.Run("enforcing values", func(t *testing.T) {
		tests := []struct {
			value string
			want  bool
		}{
			{value: "true", want: true},
			{value: `"true"`, want: true},
			{value: `"TRUE"`, want: true},
			{value: "1", want: true},
			{value: "false", want: false},
			{value: `"false"`, want: false},
			{value: "0", want: false},
		}
		for _, tt := range tests {
			t.Run(tt.value, func(t *testing.T) {
				c, err := Parse(ctx, `kdc { xrealmauthz_enforcing = `+tt.value+` }`)
				require.NoError(t, err)
				require.NotNil(t, c.Kdc)
				assert.Equal(t, tt.want, c.Kdc.XRealmAuthzEnforcing)
				assert.Nil(t, c.Kdc.XRealmAuthzEnforcingRaw)
			})
		}
	})

	t.Run("enforcing defaults to true", func(t *testing.T) {
		c, err := Parse(ctx, `kdc { xrealmauthz_allowed_realms = ["REALM2.COM"] }`)
		require.NoError(t, err)
		assert.True(t, c.Kdc.XRealmAuthzEnforcing)
	})

	t.Run("invalid enforcing value", func(t *testing.T) {
		c, err := Parse(ctx, `kdc { xrealmauthz_enforcing = "sometimes" }`)
		require.Error(t, err)
		assert.Nil(t, c)
		assert.True(t, errors.Match(errors.T(errors.InvalidConfiguration), err))
	})

	t.Run("empty allowed realm", func(t *testing.T) {
		c, err := Parse(ctx, `kdc { xrealmauthz_allowed_realms = ["REALM2.COM", " "] }`)
		require.Error(t, err)
		assert.Nil(t, c)
		assert.True(t, errors.Match(errors.T(errors.InvalidConfiguration), err))
		assert.ErrorContains(t, err, "allowed realm is empty")
	})

	t.Run("allowed realms are case sensitive", func(t *testing.T) {
		c, err := Parse(ctx, `kdc { xrealmauthz_allowed_realms = ["EXAMPLE.COM", "example.com"] }`)
		require.NoError(t, err)
		assert.Equal(t, []string{"EXAMPLE.COM", "example.com"}, c.Kdc.XRealmAuthzAllowedRealms)
	})

	t.Run("default eventing", func(t *testing.T) {
		c, err := Parse(ctx, `kdc { xrealmauthz_enforcing = true }`)
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(event.DefaultEventerConfig(), c.Eventing))
	})

	t.Run("events block without sinks gets the default sink", func(t *testing.T) {
		c, err := Parse(ctx, `events { audit_enabled = true }`)
		require.NoError(t, err)
		require.NotNil(t, c.Eventing)
		assert.True(t, c.Eventing.AuditEnabled)
		assert.True(t, c.Eventing.ObservationsEnabled)
		assert.True(t, c.Eventing.SysEventsEnabled)
		assert.Empty(t, cmp.Diff([]*event.SinkConfig{event.DefaultSink()}, c.Eventing.Sinks))
	})

	t.Run("unlabeled sink with a file block is a file sink", func(t *testing.T) {
		c, err := Parse(ctx, `
events {
	sink {
		name = "ops"
		file {
			file_name = "events.log"
		}
	}
}
`)
		require.NoError(t, err)
		require.Len(t, c.Eventing.Sinks, 1)
		sink := c.Eventing.Sinks[0]
		assert.Equal(t, event.FileSink, sink.Type)
		assert.Equal(t, event.TextHclogSinkFormat, sink.Format)
		assert.Equal(t, []event.Type{event.EveryType}, sink.EventTypes)
	})

	t.Run("too many events blocks", func(t *testing.T) {
		_, err := Parse(ctx, `
events { audit_enabled = true }
events { audit_enabled = false }
`)
		require.Error(t, err)
		assert.True(t, errors.Match(errors.T(errors.InvalidConfiguration), err))
	})

	t.Run("sink label conflicts with type", func(t *testing.T) {
		_, err := Parse(ctx, `
events {
	sink "stderr" {
		name = "ops"
		type = "file"
	}
}
`)
		require.Error(t, err)
		assert.True(t, errors.Match(errors.T(errors.InvalidConfiguration), err))
	})

	t.Run("sink without a name", func(t *testing.T) {
		_, err := Parse(ctx, `events { sink "stderr" {} }`)
		require.Error(t, err)
		assert.True(t, errors.Match(errors.T(errors.InvalidConfiguration), err))
	})

	t.Run("sink with an unknown format", func(t *testing.T) {
		_, err := Parse(ctx, `
events {
	sink "stderr" {
		name   = "ops"
		format = "xml"
	}
}
`)
		require.Error(t, err)
		assert.True(t, errors.Match(errors.T(errors.InvalidConfiguration), err))
	})

	t.Run("unparseable document", func(t *testing.T) {
		c, err := Parse(ctx, `kdc {`)
		require.Error(t, err)
		assert.Nil(t, c)
		assert.True(t, errors.Match(errors.T(errors.InvalidConfiguration), err))
	})
}

func TestLoadFile(t *testing.T) {
	ctx := context.Background()

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.hcl")
		require.NoError(t, os.WriteFile(path, []byte(`
kdc {
	xrealmauthz_enforcing = false
}
database {
	url = "xrealmauthz.db"
}
`), 0o600))

		c, err := LoadFile(ctx, path)
		require.NoError(t, err)
		assert.False(t, c.Kdc.XRealmAuthzEnforcing)
		assert.Equal(t, "xrealmauthz.db", c.Database.Url)
	})

	t.Run("missing file", func(t *testing.T) {
		c, err := LoadFile(ctx, filepath.Join(t.TempDir(), "nope.hcl"))
		require.Error(t, err)
		assert.Nil(t, c)
		assert.True(t, errors.Match(errors.T(errors.Io), err))
	})
}

func TestDev(t *testing.T) {
	ctx := context.Background()
	c, err := Dev(ctx)
	require.NoError(t, err)
	require.NotNil(t, c.Kdc)
	require.NotNil(t, c.Database)
	assert.False(t, c.Kdc.XRealmAuthzEnforcing)
	assert.Contains(t, c.Database.Url, "file:")
	require.NotNil(t, c.Eventing)
	require.Len(t, c.Eventing.Sinks, 1)
	assert.Equal(t, event.StderrSink, c.Eventing.Sinks[0].Type)
}
