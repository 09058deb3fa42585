// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package database

import (
	"github.com/hashicorp/xrealmauthz/internal/cmd/base"
	"github.com/mitchellh/cli"
)

var _ cli.Command = (*Command)(nil)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Manage xrealmauthz's principal database"
}

func (c *Command) Help() string {
	return base.WrapForHelpText([]string{
		"Usage: xrealmauthz database <subcommand> [options] [args]",
		"",
		"  This command groups subcommands for operators interacting with the",
		"  principal database. Example:",
		"",
		"    Initialize the database:",
		"",
		"      $ xrealmauthz database init -config=/etc/xrealmauthz/kdc.hcl -realm=REALM1.COM",
		"",
		"  Please see the individual subcommand help for detailed usage information.",
	})
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}
