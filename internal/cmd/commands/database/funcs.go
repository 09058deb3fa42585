// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package database

import (
	"github.com/hashicorp/xrealmauthz/internal/cmd/base"
)

// PrincipalInfo is the reported shape of a created principal entry.
type PrincipalInfo struct {
	PrincipalId string `json:"principal_id"`
	Name        string `json:"name"`
}

func generatePrincipalTableOutput(in *PrincipalInfo) string {
	nonAttributeMap := map[string]any{
		"Principal ID":   in.PrincipalId,
		"Principal Name": in.Name,
	}

	maxLength := base.MaxAttributesLength(nonAttributeMap, nil, nil)

	ret := []string{
		"",
		"Principal entry information:",
		base.WrapMap(2, maxLength+2, nonAttributeMap),
	}

	return base.WrapForHelpText(ret)
}
