// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package check

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/xrealmauthz/internal/cmd/base"
	"github.com/hashicorp/xrealmauthz/internal/kdb"
	"github.com/mitchellh/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig seeds a principal database for a KDC serving REALM1.COM
// with three cross-realm TGT entries: one granting all of REALM2.COM,
// one granting only alice from REALM3.COM, and one carrying no grants.
// It returns the path of a config file pointing at the database.
func testConfig(t *testing.T, enforcing bool) string {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	url := "file:" + filepath.Join(dir, "kdc.db") + "?_pragma=foreign_keys(1)"

	store, err := kdb.Open(ctx, kdb.WithUrl(url))
	require.NoError(t, err)
	repo, err := kdb.NewRepository(ctx, store)
	require.NoError(t, err)

	realmGranted, err := repo.CreatePrincipal(ctx, "krbtgt/REALM1.COM@REALM2.COM")
	require.NoError(t, err)
	_, err = repo.SetAttribute(ctx, realmGranted.PrivateId, "xr:@REALM2.COM", "")
	require.NoError(t, err)

	principalGranted, err := repo.CreatePrincipal(ctx, "krbtgt/REALM1.COM@REALM3.COM")
	require.NoError(t, err)
	_, err = repo.SetAttribute(ctx, principalGranted.PrivateId, "xr:alice", "")
	require.NoError(t, err)

	_, err = repo.CreatePrincipal(ctx, "krbtgt/REALM1.COM@OTHER.COM")
	require.NoError(t, err)

	require.NoError(t, store.Close(ctx))

	cfgPath := filepath.Join(dir, "kdc.hcl")
	cfg := fmt.Sprintf(`
kdc {
  xrealmauthz_enforcing     = %t
  xrealmauthz_allowed_realms = ["PREAPPROVED.COM"]
}

database {
  url = %q
}
`, enforcing, url)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))
	return cfgPath
}

func testCommand(t *testing.T, ui cli.Ui) *Command {
	t.Helper()
	return &Command{
		Server: base.NewServer(base.NewCommand(ui)),
	}
}

func TestCommand_Verdicts(t *testing.T) {
	cfgPath := testConfig(t, true)

	tests := []struct {
		name       string
		client     string
		wantCode   int
		wantOut    string
		wantErrOut string
	}{
		{
			name:     "local request outside the policy",
			client:   "bob@REALM1.COM",
			wantCode: ExitAllow,
			wantOut:  "allow",
		},
		{
			name:     "preapproved realm",
			client:   "carol@PREAPPROVED.COM",
			wantCode: ExitAllow,
			wantOut:  "allow",
		},
		{
			name:     "realm grant",
			client:   "dave@REALM2.COM",
			wantCode: ExitAllow,
			wantOut:  "allow",
		},
		{
			name:     "principal grant",
			client:   "alice@REALM3.COM",
			wantCode: ExitAllow,
			wantOut:  "allow",
		},
		{
			name:     "principal without grant",
			client:   "bob@REALM3.COM",
			wantCode: ExitDeny,
			wantOut:  "xrealmauthz plugin denied from REALM1.COM",
		},
		{
			name:     "realm without grants",
			client:   "mallory@OTHER.COM",
			wantCode: ExitDeny,
			wantOut:  "xrealmauthz plugin denied from REALM1.COM",
		},
		{
			name:       "unknown TGT entry",
			client:     "eve@UNKNOWN.COM",
			wantCode:   ExitError,
			wantErrOut: "failed to retrieve cross-realm TGT",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ui := cli.NewMockUi()
			code := testCommand(t, ui).Run([]string{
				"-config", cfgPath,
				"-client", tt.client,
				"-server", "host/web.realm1.com@REALM1.COM",
			})
			assert.Equal(t, tt.wantCode, code, ui.ErrorWriter.String())
			if tt.wantOut != "" {
				assert.Contains(t, ui.OutputWriter.String(), tt.wantOut)
			}
			if tt.wantErrOut != "" {
				assert.Contains(t, ui.ErrorWriter.String(), tt.wantErrOut)
			}
		})
	}
}

func TestCommand_Permissive(t *testing.T) {
	cfgPath := testConfig(t, false)

	ui := cli.NewMockUi()
	code := testCommand(t, ui).Run([]string{
		"-config", cfgPath,
		"-client", "mallory@OTHER.COM",
		"-server", "host/web.realm1.com@REALM1.COM",
	})
	require.Equal(t, ExitAllow, code, ui.ErrorWriter.String())
	out := ui.OutputWriter.String()
	assert.Contains(t, out, "permissive")
	assert.Contains(t, out, "xrealmauthz plugin would deny mallory@OTHER.COM for host/web.realm1.com@REALM1.COM from REALM1.COM")
}

func TestCommand_TicketServerOverride(t *testing.T) {
	cfgPath := testConfig(t, true)

	// A forwarded ticket from a third realm: alice's grant was stored
	// bare, so a client arriving on REALM3.COM's TGT from elsewhere
	// must not match it.
	ui := cli.NewMockUi()
	code := testCommand(t, ui).Run([]string{
		"-config", cfgPath,
		"-client", "alice@REALM9.COM",
		"-server", "host/web.realm1.com@REALM1.COM",
		"-ticket-server", "krbtgt/REALM1.COM@REALM3.COM",
	})
	require.Equal(t, ExitDeny, code, ui.ErrorWriter.String())
}

func TestCommand_Validation(t *testing.T) {
	cfgPath := testConfig(t, true)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "missing config",
			args:    []string{"-client", "alice@REALM3.COM", "-server", "host@REALM1.COM"},
			wantErr: "Must specify a config file using -config",
		},
		{
			name:    "missing client",
			args:    []string{"-config", cfgPath, "-server", "host@REALM1.COM"},
			wantErr: "Must specify the requesting client principal using -client",
		},
		{
			name:    "missing server",
			args:    []string{"-config", cfgPath, "-client", "alice@REALM3.COM"},
			wantErr: "Must specify the requested service principal using -server",
		},
		{
			name: "bad event flag",
			args: []string{
				"-config", cfgPath, "-client", "alice@REALM3.COM", "-server", "host@REALM1.COM",
				"-sysevents", "not-a-bool",
			},
			wantErr: "unable to parse system events flag",
		},
		{
			name: "bad client principal",
			args: []string{
				"-config", cfgPath, "-client", "alice@AT@SIGN.COM", "-server", "host@REALM1.COM",
			},
			wantErr: "Error parsing -client value",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ui := cli.NewMockUi()
			code := testCommand(t, ui).Run(tt.args)
			assert.Equal(t, ExitError, code)
			assert.Contains(t, ui.ErrorWriter.String(), tt.wantErr)
		})
	}
}

func TestCommand_JsonOutput(t *testing.T) {
	cfgPath := testConfig(t, true)

	ui := cli.NewMockUi()
	jsonUi := &base.XRealmAuthzUI{Ui: ui, Format: "json"}
	code := testCommand(t, jsonUi).Run([]string{
		"-config", cfgPath,
		"-client", "dave@REALM2.COM",
		"-server", "host/web.realm1.com@REALM1.COM",
	})
	require.Equal(t, ExitAllow, code, ui.ErrorWriter.String())

	var out struct {
		Check *CheckInfo `json:"check"`
	}
	require.NoError(t, json.Unmarshal(ui.OutputWriter.Bytes(), &out))
	require.NotNil(t, out.Check)
	assert.Equal(t, "dave@REALM2.COM", out.Check.Client)
	assert.Equal(t, "krbtgt/REALM1.COM@REALM2.COM", out.Check.TicketServer)
	assert.Equal(t, "allow", out.Check.Verdict)
	assert.Empty(t, out.Check.Status)
}
