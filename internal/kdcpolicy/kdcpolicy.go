// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

// Package kdcpolicy defines the contract between a KDC host and its
// request policy modules: the ticket-granting request handed to a
// module, the result a module returns, and a registry of named
// modules.
package kdcpolicy

import (
	"context"
	"time"

	"github.com/hashicorp/xrealmauthz/internal/krb"
)

// Verdict is a policy module's terminal outcome for a request.
type Verdict int

const (
	UnknownVerdict Verdict = iota
	Allow
	Deny
)

func (v Verdict) String() string {
	switch v {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	}
	return "unknown"
}

// Ticket is the evidence presented with a TGS request: the decrypted
// header ticket. Client is the authenticated client from the ticket,
// not the (unauthenticated) name in the request body. Server is the
// principal the ticket was issued for; when a client enters from
// another realm this is the cross-realm TGS principal
// krbtgt/LOCAL@REMOTE.
type Ticket struct {
	Client *krb.Principal
	Server *krb.Principal
}

// TGSRequest is a ticket-granting service request as seen by policy
// modules. Server is the service the client is asking a ticket for,
// in the realm this KDC serves.
type TGSRequest struct {
	Client *krb.Principal
	Server *krb.Principal
	Ticket *Ticket
}

// CheckResult is a policy module's decision. Status carries the short
// policy message attached to the verdict; the host appends it to its
// own request logging. TicketLifetime and RenewLifetime, when nonzero,
// cap the lifetimes the host computes for the issued ticket.
type CheckResult struct {
	Verdict Verdict
	Status  string

	TicketLifetime time.Duration
	RenewLifetime  time.Duration
}

// Module is a KDC request policy module. CheckTGS returns a result
// with exactly one verdict per request; an error return means the
// module could not evaluate the request and the host must fail it
// rather than treat it as a denial.
type Module interface {
	// Name returns the name the module registers under.
	Name() string

	// CheckTGS evaluates a ticket-granting service request.
	CheckTGS(ctx context.Context, req *TGSRequest) (*CheckResult, error)

	// Close releases any resources the module holds. The host calls it
	// once, at shutdown.
	Close(ctx context.Context) error
}
