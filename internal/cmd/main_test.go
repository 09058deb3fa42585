// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package cmd

import (
	"testing"

	"github.com/hashicorp/xrealmauthz/internal/cmd/base"
	"github.com/stretchr/testify/assert"
)

func TestSetupEnv(t *testing.T) {
	tests := []struct {
		name       string
		in         []string
		env        string
		wantArgs   []string
		wantFormat string
	}{
		{
			name:       "zero length",
			wantFormat: "table",
		},
		{
			name:       "passthrough",
			in:         []string{"attribute", "list"},
			wantArgs:   []string{"attribute", "list"},
			wantFormat: "table",
		},
		{
			name:       "format with equal sign",
			in:         []string{"check", "-format=json"},
			wantArgs:   []string{"check", "-format=json"},
			wantFormat: "json",
		},
		{
			name:       "format as separate arg",
			in:         []string{"check", "-format", "json"},
			wantArgs:   []string{"check", "-format", "json"},
			wantFormat: "json",
		},
		{
			name:       "format lowercased",
			in:         []string{"check", "-format=JSON"},
			wantArgs:   []string{"check", "-format=JSON"},
			wantFormat: "json",
		},
		{
			name:       "format from env",
			in:         []string{"check"},
			env:        "json",
			wantArgs:   []string{"check"},
			wantFormat: "json",
		},
		{
			name:       "flag overrides env",
			in:         []string{"check", "-format=table"},
			env:        "json",
			wantArgs:   []string{"check", "-format=table"},
			wantFormat: "table",
		},
		{
			name:       "double dash stops parsing",
			in:         []string{"check", "--", "-format=json"},
			wantArgs:   []string{"check", "--", "-format=json"},
			wantFormat: "table",
		},
		{
			name:       "lone version flag",
			in:         []string{"-version"},
			wantArgs:   []string{"version"},
			wantFormat: "table",
		},
		{
			name:       "lone v flag",
			in:         []string{"-v"},
			wantArgs:   []string{"version"},
			wantFormat: "table",
		},
		{
			name:       "version flag among others stays",
			in:         []string{"check", "-version"},
			wantArgs:   []string{"check", "-version"},
			wantFormat: "table",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(base.EnvXRealmAuthzCLIFormat, tc.env)
			args, format := setupEnv(tc.in)
			assert.EqualValues(t, tc.wantArgs, args)
			assert.Equal(t, tc.wantFormat, format)
		})
	}
}
