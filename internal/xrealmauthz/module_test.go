// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package xrealmauthz

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/xrealmauthz/internal/errors"
	"github.com/hashicorp/xrealmauthz/internal/event"
	"github.com/hashicorp/xrealmauthz/internal/kdb"
	"github.com/hashicorp/xrealmauthz/internal/kdcpolicy"
	"github.com/hashicorp/xrealmauthz/internal/krb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParse(t testing.TB, name string) *krb.Principal {
	t.Helper()
	p, err := krb.Parse(context.Background(), name)
	require.NoError(t, err)
	return p
}

// testReq builds a TGS request: client asking for server, presenting a
// ticket for tgt that authenticates the same client.
func testReq(t testing.TB, client, server, tgt string) *kdcpolicy.TGSRequest {
	t.Helper()
	c := testParse(t, client)
	return &kdcpolicy.TGSRequest{
		Client: c,
		Server: testParse(t, server),
		Ticket: &kdcpolicy.Ticket{
			Client: c,
			Server: testParse(t, tgt),
		},
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	repo := kdb.TestRepository(t, kdb.TestStore(t))

	t.Run("missing config", func(t *testing.T) {
		m, err := New(ctx, nil, repo)
		require.Error(t, err)
		assert.Nil(t, m)
		assert.True(t, errors.Match(errors.T(errors.InvalidParameter), err))
	})

	t.Run("missing repository", func(t *testing.T) {
		conf, err := NewConfig(ctx, true, nil)
		require.NoError(t, err)
		m, err := New(ctx, conf, nil)
		require.Error(t, err)
		assert.Nil(t, m)
		assert.True(t, errors.Match(errors.T(errors.InvalidParameter), err))
	})

	t.Run("reports enforcing config", func(t *testing.T) {
		testLock := &sync.Mutex{}
		testLogger := hclog.New(&hclog.LoggerOptions{Mutex: testLock, Name: "test"})
		c := event.TestEventerConfig(t, "TestNew")
		require.NoError(t, event.InitSysEventer(testLogger, testLock, "TestNew", event.WithEventerConfig(&c.EventerConfig)))
		defer event.TestResetSystEventer(t)

		conf, err := NewConfig(ctx, true, []string{"REALM2.COM", "TRUSTED.EXAMPLE"})
		require.NoError(t, err)
		m, err := New(ctx, conf, repo)
		require.NoError(t, err)
		require.NotNil(t, m)

		b, err := os.ReadFile(c.AllEvents.Name())
		require.NoError(t, err)
		assert.Contains(t, string(b), "xrealmauthz cross-realm authorization plugin loaded (enforcing mode: enabled, pre-approved realms: 2)")
	})

	t.Run("reports permissive config", func(t *testing.T) {
		testLock := &sync.Mutex{}
		testLogger := hclog.New(&hclog.LoggerOptions{Mutex: testLock, Name: "test"})
		c := event.TestEventerConfig(t, "TestNewPermissive")
		require.NoError(t, event.InitSysEventer(testLogger, testLock, "TestNewPermissive", event.WithEventerConfig(&c.EventerConfig)))
		defer event.TestResetSystEventer(t)

		conf, err := NewConfig(ctx, false, nil)
		require.NoError(t, err)
		_, err = New(ctx, conf, repo)
		require.NoError(t, err)

		b, err := os.ReadFile(c.AllEvents.Name())
		require.NoError(t, err)
		assert.Contains(t, string(b), "xrealmauthz cross-realm authorization plugin loaded (enforcing mode: disabled, pre-approved realms: 0)")
	})
}

func TestModule_NameAndClose(t *testing.T) {
	ctx := context.Background()
	repo := kdb.TestRepository(t, kdb.TestStore(t))
	conf, err := NewConfig(ctx, true, nil)
	require.NoError(t, err)
	m, err := New(ctx, conf, repo)
	require.NoError(t, err)

	assert.Equal(t, "xrealmauthz", m.Name())
	assert.NoError(t, m.Close(ctx))
}

func TestModule_CheckTGS_Validation(t *testing.T) {
	ctx := context.Background()
	repo := kdb.TestRepository(t, kdb.TestStore(t))
	conf, err := NewConfig(ctx, true, nil)
	require.NoError(t, err)
	m, err := New(ctx, conf, repo)
	require.NoError(t, err)

	valid := func() *kdcpolicy.TGSRequest {
		return testReq(t, "alice@REALM2.COM", "host/files.example.com@REALM1.COM", "krbtgt/REALM1.COM@REALM2.COM")
	}

	tests := []struct {
		name string
		req  *kdcpolicy.TGSRequest
	}{
		{
			name: "missing request",
			req:  nil,
		},
		{
			name: "missing server principal",
			req: func() *kdcpolicy.TGSRequest {
				r := valid()
				r.Server = nil
				return r
			}(),
		},
		{
			name: "missing ticket",
			req: func() *kdcpolicy.TGSRequest {
				r := valid()
				r.Ticket = nil
				return r
			}(),
		},
		{
			name: "missing ticket client principal",
			req: func() *kdcpolicy.TGSRequest {
				r := valid()
				r.Ticket.Client = nil
				return r
			}(),
		},
		{
			name: "missing ticket server principal",
			req: func() *kdcpolicy.TGSRequest {
				r := valid()
				r.Ticket.Server = nil
				return r
			}(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.CheckTGS(ctx, tt.req)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, errors.Match(errors.T(errors.InvalidParameter), err))
		})
	}
}

func TestModule_CheckTGS(t *testing.T) {
	ctx := context.Background()
	repo := kdb.TestRepository(t, kdb.TestStore(t))

	// Inbound trust from REALM2.COM, carrying one bare grant for its
	// own alice and one qualified grant for REALM3.COM's carol.
	fromRealm2 := kdb.TestPrincipal(t, repo, "krbtgt/REALM1.COM@REALM2.COM")
	kdb.TestAttribute(t, repo, fromRealm2.PrivateId, "xr:alice", "")
	kdb.TestAttribute(t, repo, fromRealm2.PrivateId, "xr:carol@REALM3.COM", "")

	// Inbound trust from REALM4.COM, granted wholesale.
	fromRealm4 := kdb.TestPrincipal(t, repo, "krbtgt/REALM1.COM@REALM4.COM")
	kdb.TestAttribute(t, repo, fromRealm4.PrivateId, "xr:@REALM4.COM", "")

	enforcing, err := NewConfig(ctx, true, nil)
	require.NoError(t, err)
	preapproving, err := NewConfig(ctx, true, []string{"TRUSTED.EXAMPLE"})
	require.NoError(t, err)

	const service = "host/files.example.com@REALM1.COM"

	tests := []struct {
		name         string
		conf         *Config
		req          *kdcpolicy.TGSRequest
		wantVerdict  kdcpolicy.Verdict
		wantStatus   string
		wantErrMatch *errors.Template
		wantErrMsg   string
	}{
		{
			name:        "local tgs is out of scope",
			conf:        enforcing,
			req:         testReq(t, "u@REALM1.COM", service, "krbtgt/REALM1.COM@REALM1.COM"),
			wantVerdict: kdcpolicy.Allow,
		},
		{
			name:        "non-tgs ticket is out of scope",
			conf:        enforcing,
			req:         testReq(t, "u@REALM1.COM", service, "host/kdc.example.com@REALM1.COM"),
			wantVerdict: kdcpolicy.Allow,
		},
		{
			name:        "three component ticket server is out of scope",
			conf:        enforcing,
			req:         testReq(t, "u@REALM1.COM", service, "krbtgt/a/b@REALM1.COM"),
			wantVerdict: kdcpolicy.Allow,
		},
		{
			name:        "pre-approved realm",
			conf:        preapproving,
			req:         testReq(t, "u@TRUSTED.EXAMPLE", service, "krbtgt/REALM1.COM@TRUSTED.EXAMPLE"),
			wantVerdict: kdcpolicy.Allow,
		},
		{
			name:        "realm grant",
			conf:        enforcing,
			req:         testReq(t, "u@REALM4.COM", service, "krbtgt/REALM1.COM@REALM4.COM"),
			wantVerdict: kdcpolicy.Allow,
		},
		{
			name:        "direct principal grant",
			conf:        enforcing,
			req:         testReq(t, "alice@REALM2.COM", service, "krbtgt/REALM1.COM@REALM2.COM"),
			wantVerdict: kdcpolicy.Allow,
		},
		{
			name:        "transitive principal grant",
			conf:        enforcing,
			req:         testReq(t, "carol@REALM3.COM", service, "krbtgt/REALM1.COM@REALM2.COM"),
			wantVerdict: kdcpolicy.Allow,
		},
		{
			name:        "bare grant does not cover a transitive client",
			conf:        enforcing,
			req:         testReq(t, "alice@REALM3.COM", service, "krbtgt/REALM1.COM@REALM2.COM"),
			wantVerdict: kdcpolicy.Deny,
			wantStatus:  "xrealmauthz plugin denied from REALM1.COM",
		},
		{
			name:        "qualified grant does not cover a direct client",
			conf:        enforcing,
			req:         testReq(t, "carol@REALM2.COM", service, "krbtgt/REALM1.COM@REALM2.COM"),
			wantVerdict: kdcpolicy.Deny,
			wantStatus:  "xrealmauthz plugin denied from REALM1.COM",
		},
		{
			name:        "no grant",
			conf:        enforcing,
			req:         testReq(t, "bob@REALM2.COM", service, "krbtgt/REALM1.COM@REALM2.COM"),
			wantVerdict: kdcpolicy.Deny,
			wantStatus:  "xrealmauthz plugin denied from REALM1.COM",
		},
		{
			name:         "missing tgt entry is an error not a denial",
			conf:         enforcing,
			req:          testReq(t, "u@REALM9.COM", service, "krbtgt/REALM1.COM@REALM9.COM"),
			wantErrMatch: errors.T(errors.RecordNotFound),
			wantErrMsg:   "xrealmauthz plugin failed to retrieve cross-realm TGT from database",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(ctx, tt.conf, repo)
			require.NoError(t, err)

			got, err := m.CheckTGS(ctx, tt.req)
			if tt.wantErrMatch != nil {
				require.Error(t, err)
				assert.Nil(t, got)
				assert.True(t, errors.Match(tt.wantErrMatch, err), "want err code %q, got %q", tt.wantErrMatch.Code, err)
				if tt.wantErrMsg != "" {
					assert.ErrorContains(t, err, tt.wantErrMsg)
				}
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantVerdict, got.Verdict)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Zero(t, got.TicketLifetime)
			assert.Zero(t, got.RenewLifetime)
		})
	}
}

// TestModule_CheckTGS_NoDatabaseFetch proves the short-circuit paths
// never reach the store: with the store closed they still allow, while
// any path that does consult the store fails loudly.
func TestModule_CheckTGS_NoDatabaseFetch(t *testing.T) {
	ctx := context.Background()
	s, err := kdb.Open(ctx)
	require.NoError(t, err)
	repo, err := kdb.NewRepository(ctx, s)
	require.NoError(t, err)
	require.NoError(t, s.Close(ctx))

	conf, err := NewConfig(ctx, true, []string{"TRUSTED.EXAMPLE"})
	require.NoError(t, err)
	m, err := New(ctx, conf, repo)
	require.NoError(t, err)

	const service = "host/files.example.com@REALM1.COM"

	t.Run("pre-approved realm", func(t *testing.T) {
		got, err := m.CheckTGS(ctx, testReq(t, "u@TRUSTED.EXAMPLE", service, "krbtgt/REALM1.COM@TRUSTED.EXAMPLE"))
		require.NoError(t, err)
		assert.Equal(t, kdcpolicy.Allow, got.Verdict)
		assert.Empty(t, got.Status)
	})

	t.Run("local tgs", func(t *testing.T) {
		got, err := m.CheckTGS(ctx, testReq(t, "u@REALM1.COM", service, "krbtgt/REALM1.COM@REALM1.COM"))
		require.NoError(t, err)
		assert.Equal(t, kdcpolicy.Allow, got.Verdict)
		assert.Empty(t, got.Status)
	})

	t.Run("control: grant checks do reach the store", func(t *testing.T) {
		got, err := m.CheckTGS(ctx, testReq(t, "u@OTHER.EXAMPLE", service, "krbtgt/REALM1.COM@OTHER.EXAMPLE"))
		require.Error(t, err)
		assert.Nil(t, got)
		assert.ErrorContains(t, err, "xrealmauthz plugin failed to retrieve cross-realm TGT from database")
	})
}

func TestModule_CheckTGS_Permissive(t *testing.T) {
	ctx := context.Background()
	testLock := &sync.Mutex{}
	testLogger := hclog.New(&hclog.LoggerOptions{Mutex: testLock, Name: "test"})
	c := event.TestEventerConfig(t, "TestPermissive")
	require.NoError(t, event.InitSysEventer(testLogger, testLock, "TestPermissive", event.WithEventerConfig(&c.EventerConfig)))
	defer event.TestResetSystEventer(t)

	repo := kdb.TestRepository(t, kdb.TestStore(t))
	kdb.TestPrincipal(t, repo, "krbtgt/THIS.EXAMPLE@OTHER.EXAMPLE")

	conf, err := NewConfig(ctx, false, nil)
	require.NoError(t, err)
	m, err := New(ctx, conf, repo)
	require.NoError(t, err)

	req := testReq(t, "alice@OTHER.EXAMPLE", "host/www.this.example@THIS.EXAMPLE", "krbtgt/THIS.EXAMPLE@OTHER.EXAMPLE")
	got, err := m.CheckTGS(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, got)

	wantStatus := "xrealmauthz plugin would deny alice@OTHER.EXAMPLE for host/www.this.example@THIS.EXAMPLE from THIS.EXAMPLE"
	assert.Equal(t, kdcpolicy.Allow, got.Verdict)
	assert.Equal(t, wantStatus, got.Status)
	assert.Zero(t, got.TicketLifetime)
	assert.Zero(t, got.RenewLifetime)

	// The request proceeds, so the engine itself must leave the audit
	// trail.
	b, err := os.ReadFile(c.AllEvents.Name())
	require.NoError(t, err)
	assert.Contains(t, string(b), wantStatus)
}

func TestModule_CheckTGS_EnforcingDenialsNotLogged(t *testing.T) {
	ctx := context.Background()
	testLock := &sync.Mutex{}
	testLogger := hclog.New(&hclog.LoggerOptions{Mutex: testLock, Name: "test"})
	c := event.TestEventerConfig(t, "TestEnforcingNotLogged")
	require.NoError(t, event.InitSysEventer(testLogger, testLock, "TestEnforcingNotLogged", event.WithEventerConfig(&c.EventerConfig)))
	defer event.TestResetSystEventer(t)

	repo := kdb.TestRepository(t, kdb.TestStore(t))
	kdb.TestPrincipal(t, repo, "krbtgt/THIS.EXAMPLE@OTHER.EXAMPLE")

	conf, err := NewConfig(ctx, true, nil)
	require.NoError(t, err)
	m, err := New(ctx, conf, repo)
	require.NoError(t, err)

	got, err := m.CheckTGS(ctx, testReq(t, "alice@OTHER.EXAMPLE", "host/www.this.example@THIS.EXAMPLE", "krbtgt/THIS.EXAMPLE@OTHER.EXAMPLE"))
	require.NoError(t, err)
	assert.Equal(t, kdcpolicy.Deny, got.Verdict)
	assert.Equal(t, "xrealmauthz plugin denied from THIS.EXAMPLE", got.Status)

	// Rejection logging is the caller's job; the engine only reports
	// its own load line.
	b, err := os.ReadFile(c.AllEvents.Name())
	require.NoError(t, err)
	assert.NotContains(t, string(b), "denied from")
	assert.Contains(t, string(b), "xrealmauthz cross-realm authorization plugin loaded")
}

func TestModule_CheckTGS_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := kdb.TestRepository(t, kdb.TestStore(t))
	kdb.TestPrincipal(t, repo, "krbtgt/THIS.EXAMPLE@OTHER.EXAMPLE")

	req := func() *kdcpolicy.TGSRequest {
		return testReq(t, "alice@OTHER.EXAMPLE", "host/www.this.example@THIS.EXAMPLE", "krbtgt/THIS.EXAMPLE@OTHER.EXAMPLE")
	}

	t.Run("enforcing", func(t *testing.T) {
		conf, err := NewConfig(ctx, true, nil)
		require.NoError(t, err)
		m, err := New(ctx, conf, repo)
		require.NoError(t, err)

		first, err := m.CheckTGS(ctx, req())
		require.NoError(t, err)
		second, err := m.CheckTGS(ctx, req())
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("permissive", func(t *testing.T) {
		conf, err := NewConfig(ctx, false, nil)
		require.NoError(t, err)
		m, err := New(ctx, conf, repo)
		require.NoError(t, err)

		first, err := m.CheckTGS(ctx, req())
		require.NoError(t, err)
		second, err := m.CheckTGS(ctx, req())
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

type testEntry struct {
	attrs  map[string]bool
	err    error
	probed []string
}

func (e *testEntry) HasAttribute(ctx context.Context, name string) (bool, error) {
	e.probed = append(e.probed, name)
	if e.err != nil {
		return false, e.err
	}
	return e.attrs[name], nil
}

func Test_entryAllows(t *testing.T) {
	ctx := context.Background()
	m := &Module{}

	directClient := testParse(t, "alice@REALM2.COM")
	transitiveClient := testParse(t, "alice@REALM3.COM")
	tgt := testParse(t, "krbtgt/REALM1.COM@REALM2.COM")

	t.Run("realm grant short-circuits", func(t *testing.T) {
		entry := &testEntry{attrs: map[string]bool{"xr:@REALM2.COM": true}}
		allowed, err := m.entryAllows(ctx, entry, directClient, tgt)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, []string{"xr:@REALM2.COM"}, entry.probed)
	})

	t.Run("direct client probes the bare key only", func(t *testing.T) {
		entry := &testEntry{}
		allowed, err := m.entryAllows(ctx, entry, directClient, tgt)
		require.NoError(t, err)
		assert.False(t, allowed)
		assert.Equal(t, []string{"xr:@REALM2.COM", "xr:alice"}, entry.probed)
	})

	t.Run("transitive client probes the qualified key only", func(t *testing.T) {
		entry := &testEntry{}
		allowed, err := m.entryAllows(ctx, entry, transitiveClient, tgt)
		require.NoError(t, err)
		assert.False(t, allowed)
		assert.Equal(t, []string{"xr:@REALM3.COM", "xr:alice@REALM3.COM"}, entry.probed)
	})

	t.Run("check failure propagates instead of reading as absent", func(t *testing.T) {
		entry := &testEntry{
			err: errors.New(ctx, errors.Io, "test", "attribute backend unavailable", errors.WithoutEvent()),
		}
		allowed, err := m.entryAllows(ctx, entry, directClient, tgt)
		require.Error(t, err)
		assert.False(t, allowed)
		assert.ErrorContains(t, err, "attribute backend unavailable")
	})
}

// TestModule_Integration_ThreeRealmChain walks a client from
// REALM3.COM to a service in REALM1.COM through the intermediate
// REALM2.COM: each KDC on the path runs its own module over its own
// principal store.
func TestModule_Integration_ThreeRealmChain(t *testing.T) {
	ctx := context.Background()

	// REALM1.COM trusts traffic in from REALM2.COM: all of REALM2.COM
	// may enter, and REALM3.COM's alice may transit.
	realm1 := kdb.TestRepository(t, kdb.TestStore(t))
	in1 := kdb.TestPrincipal(t, realm1, "krbtgt/REALM1.COM@REALM2.COM")
	kdb.TestAttribute(t, realm1, in1.PrivateId, RealmACLKey("REALM2.COM"), "")
	kdb.TestAttribute(t, realm1, in1.PrivateId, AttributePrefix+"alice@REALM3.COM", "")

	// REALM2.COM lets all of REALM3.COM through.
	realm2 := kdb.TestRepository(t, kdb.TestStore(t))
	in2 := kdb.TestPrincipal(t, realm2, "krbtgt/REALM2.COM@REALM3.COM")
	kdb.TestAttribute(t, realm2, in2.PrivateId, RealmACLKey("REALM3.COM"), "")

	conf, err := NewConfig(ctx, true, nil)
	require.NoError(t, err)
	kdc1, err := New(ctx, conf, realm1)
	require.NoError(t, err)
	kdc2, err := New(ctx, conf, realm2)
	require.NoError(t, err)

	t.Run("realm2 client enters realm1 on the realm grant", func(t *testing.T) {
		got, err := kdc1.CheckTGS(ctx, testReq(t, "bob@REALM2.COM",
			"host/files.realm1.com@REALM1.COM", "krbtgt/REALM1.COM@REALM2.COM"))
		require.NoError(t, err)
		assert.Equal(t, kdcpolicy.Allow, got.Verdict)
		assert.Empty(t, got.Status)
	})

	t.Run("realm3 client crosses realm2 on the realm grant", func(t *testing.T) {
		// At the intermediate hop the requested service is the next
		// cross-realm TGS entry.
		got, err := kdc2.CheckTGS(ctx, testReq(t, "alice@REALM3.COM",
			"krbtgt/REALM1.COM@REALM2.COM", "krbtgt/REALM2.COM@REALM3.COM"))
		require.NoError(t, err)
		assert.Equal(t, kdcpolicy.Allow, got.Verdict)
	})

	t.Run("realm3 client finishes in realm1 on the principal grant", func(t *testing.T) {
		got, err := kdc1.CheckTGS(ctx, testReq(t, "alice@REALM3.COM",
			"host/files.realm1.com@REALM1.COM", "krbtgt/REALM1.COM@REALM2.COM"))
		require.NoError(t, err)
		assert.Equal(t, kdcpolicy.Allow, got.Verdict)
	})

	t.Run("unlisted realm3 client crosses realm2 but realm1 refuses", func(t *testing.T) {
		crossed, err := kdc2.CheckTGS(ctx, testReq(t, "mallory@REALM3.COM",
			"krbtgt/REALM1.COM@REALM2.COM", "krbtgt/REALM2.COM@REALM3.COM"))
		require.NoError(t, err)
		assert.Equal(t, kdcpolicy.Allow, crossed.Verdict)

		refused, err := kdc1.CheckTGS(ctx, testReq(t, "mallory@REALM3.COM",
			"host/files.realm1.com@REALM1.COM", "krbtgt/REALM1.COM@REALM2.COM"))
		require.NoError(t, err)
		assert.Equal(t, kdcpolicy.Deny, refused.Verdict)
		assert.Equal(t, "xrealmauthz plugin denied from REALM1.COM", refused.Status)
	})
}

func TestModule_Registration(t *testing.T) {
	ctx := context.Background()
	repo := kdb.TestRepository(t, kdb.TestStore(t))
	conf, err := NewConfig(ctx, true, nil)
	require.NoError(t, err)

	m, err := New(ctx, conf, repo)
	require.NoError(t, err)

	reg := kdcpolicy.NewRegistry()
	require.NoError(t, reg.Register(ctx, m))

	got, ok := reg.Lookup(ModuleName)
	require.True(t, ok)
	assert.Same(t, m, got)

	other, err := New(ctx, conf, repo)
	require.NoError(t, err)
	err = reg.Register(ctx, other)
	require.Error(t, err)
	assert.True(t, errors.Match(errors.T(errors.ModuleAlreadyRegistered), err))
}
