// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package cmd

import (
	"github.com/hashicorp/xrealmauthz/internal/cmd/base"
	"github.com/hashicorp/xrealmauthz/internal/cmd/commands/attribute"
	"github.com/hashicorp/xrealmauthz/internal/cmd/commands/check"
	"github.com/hashicorp/xrealmauthz/internal/cmd/commands/database"
	"github.com/hashicorp/xrealmauthz/internal/cmd/commands/version"

	"github.com/mitchellh/cli"
)

// Commands is the mapping of all the available commands.
var Commands map[string]cli.CommandFactory

func initCommands(ui, serverCmdUi cli.Ui, runOpts *RunOptions) {
	Commands = map[string]cli.CommandFactory{
		"check": func() (cli.Command, error) {
			return &check.Command{
				Server: base.NewServer(base.NewCommand(ui)),
			}, nil
		},

		"attribute": func() (cli.Command, error) {
			return &attribute.Command{
				Server: base.NewServer(base.NewCommand(ui)),
			}, nil
		},
		"attribute add": func() (cli.Command, error) {
			return &attribute.Command{
				Server: base.NewServer(base.NewCommand(ui)),
				Func:   "add",
			}, nil
		},
		"attribute remove": func() (cli.Command, error) {
			return &attribute.Command{
				Server: base.NewServer(base.NewCommand(ui)),
				Func:   "remove",
			}, nil
		},
		"attribute list": func() (cli.Command, error) {
			return &attribute.Command{
				Server: base.NewServer(base.NewCommand(ui)),
				Func:   "list",
			}, nil
		},

		"database": func() (cli.Command, error) {
			return &database.Command{
				Command: base.NewCommand(ui),
			}, nil
		},
		"database init": func() (cli.Command, error) {
			return &database.InitCommand{
				Server: base.NewServer(base.NewCommand(serverCmdUi)),
			}, nil
		},

		"version": func() (cli.Command, error) {
			return &version.Command{
				Command: base.NewCommand(ui),
			}, nil
		},
	}
}
