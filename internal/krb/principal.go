// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

// Package krb provides Kerberos principal name handling: parsing and
// rendering names with the standard quoting rules, plus the realm
// comparison primitive used to distinguish direct from transitive
// cross-realm trust.
package krb

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/xrealmauthz/internal/errors"
)

// TGSName is the first component of every ticket-granting service
// principal: krbtgt/REALM@REALM locally, krbtgt/LOCAL@REMOTE for
// cross-realm trust.
const TGSName = "krbtgt"

// Principal is a parsed Kerberos principal name: one or more name
// components plus a realm. Components and realm hold unquoted values;
// String reapplies quoting when rendering.
type Principal struct {
	Components []string
	Realm      string
}

// Parse interprets name using the Kerberos quoting rules: a backslash
// quotes the next character (with "\n", "\t", "\b" and "\0" producing
// the control characters and anything else taken literally), an
// unquoted '/' separates components, and the first unquoted '@' begins
// the realm. An unquoted '/' or '@' within the realm is malformed. A
// trailing backslash is ignored. A name without an unquoted '@' parses
// with an empty realm.
func Parse(ctx context.Context, name string) (*Principal, error) {
	const op = "krb.Parse"
	if name == "" {
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing name")
	}
	var (
		components []string
		component  strings.Builder
		realm      strings.Builder
		gotRealm   bool
	)
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '\\' {
			i++
			if i >= len(name) {
				break
			}
			switch name[i] {
			case 'n':
				c = '\n'
			case 't':
				c = '\t'
			case 'b':
				c = '\b'
			case '0':
				c = 0
			default:
				c = name[i]
			}
			if gotRealm {
				realm.WriteByte(c)
			} else {
				component.WriteByte(c)
			}
			continue
		}
		switch {
		case c == '/' && !gotRealm:
			components = append(components, component.String())
			component.Reset()
		case c == '@' && !gotRealm:
			components = append(components, component.String())
			component.Reset()
			gotRealm = true
		case (c == '/' || c == '@') && gotRealm:
			return nil, errors.New(ctx, errors.InvalidPrincipalName, op, fmt.Sprintf("malformed principal name %q", name))
		case gotRealm:
			realm.WriteByte(c)
		default:
			component.WriteByte(c)
		}
	}
	if !gotRealm {
		components = append(components, component.String())
	}
	return &Principal{
		Components: components,
		Realm:      realm.String(),
	}, nil
}

// String renders the principal as components joined by '/' followed by
// '@' and the realm, quoting separators and control characters so the
// result parses back to an identical principal.
func (p *Principal) String() string {
	var b strings.Builder
	for i, c := range p.Components {
		if i > 0 {
			b.WriteByte('/')
		}
		appendQuoted(&b, c)
	}
	b.WriteByte('@')
	appendQuoted(&b, p.Realm)
	return b.String()
}

// StringNoRealm renders only the quoted name components, without the
// '@' or realm. Grants for directly trusted clients are stored under
// this unqualified form.
func (p *Principal) StringNoRealm() string {
	var b strings.Builder
	for i, c := range p.Components {
		if i > 0 {
			b.WriteByte('/')
		}
		appendQuoted(&b, c)
	}
	return b.String()
}

// RealmEqual reports whether the two principals belong to the same
// realm. Realm comparison is exact: byte equality, case-sensitive, no
// normalization.
func RealmEqual(a, b *Principal) bool {
	return a.Realm == b.Realm
}

// TGSPrincipal builds the cross-realm ticket-granting service
// principal krbtgt/localRealm@clientRealm: the database entry through
// which clients coming from clientRealm present tickets to the
// localRealm KDC.
func TGSPrincipal(localRealm, clientRealm string) *Principal {
	return &Principal{
		Components: []string{TGSName, localRealm},
		Realm:      clientRealm,
	}
}

func appendQuoted(b *strings.Builder, s string) {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '/', '@', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\b':
			b.WriteString(`\b`)
		case 0:
			b.WriteString(`\0`)
		default:
			b.WriteByte(c)
		}
	}
}
