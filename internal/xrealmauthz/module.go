// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package xrealmauthz

import (
	"context"
	"fmt"

	"github.com/hashicorp/xrealmauthz/internal/errors"
	"github.com/hashicorp/xrealmauthz/internal/event"
	"github.com/hashicorp/xrealmauthz/internal/kdb"
	"github.com/hashicorp/xrealmauthz/internal/kdcpolicy"
	"github.com/hashicorp/xrealmauthz/internal/krb"
	"github.com/hashicorp/xrealmauthz/internal/util"
)

// ModuleName is the name the module registers under.
const ModuleName = "xrealmauthz"

// fetchFailedStatus is reported when the TGS entry cannot be
// retrieved. Retrieval failure is an operational error the host must
// surface, never a denial.
const fetchFailedStatus = "xrealmauthz plugin failed to retrieve cross-realm TGT from database"

// EntryAttributes is the view of a fetched principal record the
// decision engine checks grants against. *kdb.PrincipalEntry satisfies
// it. A check failure must come back as an error; it is never the same
// as an absent attribute.
type EntryAttributes interface {
	HasAttribute(ctx context.Context, name string) (bool, error)
}

// Module is the cross-realm authorization policy module.
type Module struct {
	conf *Config
	repo *kdb.Repository
}

var _ kdcpolicy.Module = (*Module)(nil)

// New creates the module from its configuration and the principal
// database repository, and reports the loaded configuration to the
// operational log.
func New(ctx context.Context, conf *Config, repo *kdb.Repository) (*Module, error) {
	const op = "xrealmauthz.New"
	switch {
	case conf == nil:
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing config")
	case util.IsNil(repo):
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing repository")
	}
	m := &Module{
		conf: conf,
		repo: repo,
	}
	mode := "disabled"
	if conf.Enforcing {
		mode = "enabled"
	}
	event.WriteSysEvent(ctx, op,
		fmt.Sprintf("xrealmauthz cross-realm authorization plugin loaded (enforcing mode: %s, pre-approved realms: %d)",
			mode, len(conf.AllowedRealms)))
	return m, nil
}

// Name satisfies kdcpolicy.Module.
func (m *Module) Name() string {
	return ModuleName
}

// Close satisfies kdcpolicy.Module. The host owns the database
// lifetime; the module holds nothing else.
func (m *Module) Close(ctx context.Context) error {
	return nil
}

// CheckTGS decides whether a request entering this realm on a
// cross-realm TGT is authorized. Requests whose ticket is not a
// cross-realm TGS entry are outside this policy and allowed through
// untouched. For cross-realm requests the decision is: pre-approved
// client realm, then a realm grant on the TGS entry, then a principal
// grant on the TGS entry; otherwise deny. In permissive mode a denial
// is returned as Allow with the denial status populated and written to
// the operational log, since the request will proceed and nothing
// downstream will record it.
func (m *Module) CheckTGS(ctx context.Context, req *kdcpolicy.TGSRequest) (*kdcpolicy.CheckResult, error) {
	const op = "xrealmauthz.(Module).CheckTGS"
	switch {
	case req == nil:
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing request")
	case req.Server == nil:
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing server principal")
	case req.Ticket == nil:
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing ticket")
	case req.Ticket.Client == nil:
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing ticket client principal")
	case req.Ticket.Server == nil:
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing ticket server principal")
	}

	tgt := req.Ticket.Server
	if !isCrossRealmTGT(tgt) {
		return &kdcpolicy.CheckResult{Verdict: kdcpolicy.Allow}, nil
	}

	client := req.Ticket.Client
	if m.conf.IsRealmPreapproved(client.Realm) {
		return &kdcpolicy.CheckResult{Verdict: kdcpolicy.Allow}, nil
	}

	// One fetch serves both grant checks below.
	entry, err := m.repo.LookupPrincipal(ctx, tgt.String())
	if err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithMsg(fetchFailedStatus))
	}
	if entry == nil {
		return nil, errors.New(ctx, errors.RecordNotFound, op, fetchFailedStatus)
	}

	allowed, err := m.entryAllows(ctx, entry, client, tgt)
	if err != nil {
		return nil, errors.Wrap(ctx, err, op)
	}
	if allowed {
		return &kdcpolicy.CheckResult{Verdict: kdcpolicy.Allow}, nil
	}

	if !m.conf.Enforcing {
		status := fmt.Sprintf("xrealmauthz plugin would deny %s for %s from %s",
			client.String(), req.Server.String(), req.Server.Realm)
		event.WriteSysEvent(ctx, op, status)
		return &kdcpolicy.CheckResult{Verdict: kdcpolicy.Allow, Status: status}, nil
	}
	return &kdcpolicy.CheckResult{
		Verdict: kdcpolicy.Deny,
		Status:  fmt.Sprintf("xrealmauthz plugin denied from %s", req.Server.Realm),
	}, nil
}

// entryAllows runs the grant checks against the fetched TGS entry: the
// realm-level key first, then exactly one principal-level key. With
// direct trust (the client comes straight from the realm that issued
// the TGT) the bare form is the only one consulted; otherwise only the
// fully qualified form is.
func (m *Module) entryAllows(ctx context.Context, entry EntryAttributes, client, tgt *krb.Principal) (bool, error) {
	const op = "xrealmauthz.(Module).entryAllows"
	ok, err := entry.HasAttribute(ctx, RealmACLKey(client.Realm))
	if err != nil {
		return false, errors.Wrap(ctx, err, op)
	}
	if ok {
		return true, nil
	}

	key, err := PrincipalACLKey(ctx, client, krb.RealmEqual(tgt, client))
	if err != nil {
		return false, errors.Wrap(ctx, err, op)
	}
	ok, err = entry.HasAttribute(ctx, key)
	if err != nil {
		return false, errors.Wrap(ctx, err, op)
	}
	return ok, nil
}

// isCrossRealmTGT reports whether p names a cross-realm TGS entry:
// exactly two components, krbtgt first, and a second component naming
// a realm other than the principal's own (krbtgt/REALM@REALM is the
// local TGS).
func isCrossRealmTGT(p *krb.Principal) bool {
	return len(p.Components) == 2 &&
		p.Components[0] == krb.TGSName &&
		p.Components[1] != p.Realm
}
