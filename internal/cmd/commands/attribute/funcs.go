// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package attribute

import (
	"fmt"
	"strings"

	"github.com/hashicorp/xrealmauthz/internal/cmd/base"
	"github.com/hashicorp/xrealmauthz/internal/xrealmauthz"
)

// GrantInfo is the command output for a single grant.
type GrantInfo struct {
	Key         string `json:"key"`
	Scope       string `json:"scope"`
	Principal   string `json:"principal,omitempty"`
	CreatedTime string `json:"created_time,omitempty"`
}

// grantScope reports whether a grant key authorizes a whole realm or a
// single principal.
func grantScope(key string) string {
	if strings.HasPrefix(strings.TrimPrefix(key, xrealmauthz.AttributePrefix), "@") {
		return "realm"
	}
	return "principal"
}

func generateGrantTableOutput(in *GrantInfo) string {
	nonAttributeMap := map[string]any{
		"Grant Key": in.Key,
		"Scope":     in.Scope,
		"Stored On": in.Principal,
	}

	maxLength := base.MaxAttributesLength(nonAttributeMap, nil, nil)

	ret := []string{
		"",
		"Grant information:",
		base.WrapMap(2, maxLength+2, nonAttributeMap),
	}

	return base.WrapForHelpText(ret)
}

func generateGrantListOutput(in []*GrantInfo) string {
	rows := []string{"Grant Key | Scope | Created Time"}
	for _, item := range in {
		rows = append(rows, fmt.Sprintf("%s | %s | %s", item.Key, item.Scope, item.CreatedTime))
	}
	return base.TableOutput(rows, nil)
}
