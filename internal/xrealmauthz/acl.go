// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package xrealmauthz

import (
	"context"

	"github.com/hashicorp/xrealmauthz/internal/errors"
	"github.com/hashicorp/xrealmauthz/internal/krb"
)

// AttributePrefix is the fixed prefix of every authorization attribute
// key stored on a cross-realm TGS entry.
const AttributePrefix = "xr:"

// RealmACLKey returns the attribute key granting an entire client
// realm: the prefix, '@', then the realm's raw bytes.
func RealmACLKey(realm string) string {
	return AttributePrefix + "@" + realm
}

// PrincipalACLKey returns the attribute key granting a single client
// principal. With direct trust the client is stored without its realm;
// the realm is implied by the TGS entry the grant lives on. Any other
// trust path stores the fully qualified name so principals from
// different originating realms cannot collide.
func PrincipalACLKey(ctx context.Context, client *krb.Principal, direct bool) (string, error) {
	const op = "xrealmauthz.PrincipalACLKey"
	if client == nil {
		return "", errors.New(ctx, errors.InvalidParameter, op, "missing client principal")
	}
	if direct {
		return AttributePrefix + client.StringNoRealm(), nil
	}
	return AttributePrefix + client.String(), nil
}
