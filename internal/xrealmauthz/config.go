// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

// Package xrealmauthz implements cross-realm authorization for a KDC:
// a policy module deciding, per ticket-granting request entering this
// realm on a cross-realm TGT, whether the issuing realm has explicitly
// authorized the requesting principal or its entire realm to transit.
package xrealmauthz

import (
	"context"

	"github.com/hashicorp/xrealmauthz/internal/errors"
)

// RealmEntry is one pre-approved realm. Length caches the byte length
// of Name; allow-list matching compares lengths before content.
type RealmEntry struct {
	Name   string
	Length int
}

// Config is the module's configuration: the enforcing switch and the
// pre-approved realm allow-list. It is built once and read-only
// afterward; requests never mutate it.
type Config struct {
	// Enforcing selects whether a computed denial rejects the request
	// or is only recorded. It changes the consequence of a denial,
	// never which verdict is computed.
	Enforcing bool

	// AllowedRealms are realms whose clients bypass all grant checks.
	AllowedRealms []RealmEntry
}

// NewConfig builds a Config from the values read out of the host's
// configuration. An empty realm name in the allow-list is a
// configuration error.
func NewConfig(ctx context.Context, enforcing bool, allowedRealms []string) (*Config, error) {
	const op = "xrealmauthz.NewConfig"
	c := &Config{
		Enforcing: enforcing,
	}
	for _, realm := range allowedRealms {
		if realm == "" {
			return nil, errors.New(ctx, errors.InvalidConfiguration, op, "allowed realm is empty")
		}
		c.AllowedRealms = append(c.AllowedRealms, RealmEntry{Name: realm, Length: len(realm)})
	}
	return c, nil
}

// IsRealmPreapproved reports whether realm is on the allow-list:
// identical byte length, then identical bytes. No normalization, no
// wildcards; an empty allow-list approves nothing.
func (c *Config) IsRealmPreapproved(realm string) bool {
	for _, e := range c.AllowedRealms {
		if len(realm) == e.Length && realm == e.Name {
			return true
		}
	}
	return false
}
