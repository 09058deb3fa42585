// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

// Package attribute implements the CLI commands managing cross-realm
// authorization grants: the "xr:" string attributes stored on
// cross-realm TGT entries in the principal database.
package attribute

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-secure-stdlib/parseutil"
	"github.com/hashicorp/xrealmauthz/internal/cmd/base"
	"github.com/hashicorp/xrealmauthz/internal/cmd/config"
	"github.com/hashicorp/xrealmauthz/internal/errors"
	"github.com/hashicorp/xrealmauthz/internal/kdb"
	"github.com/hashicorp/xrealmauthz/internal/krb"
	"github.com/hashicorp/xrealmauthz/internal/xrealmauthz"
	"github.com/mitchellh/cli"
	"github.com/posener/complete"
)

var (
	_ cli.Command             = (*Command)(nil)
	_ cli.CommandAutocomplete = (*Command)(nil)
)

type Command struct {
	*base.Server

	// Func is the subcommand: "add", "remove" or "list". Empty prints
	// the grouping help.
	Func string

	Config *config.Config

	flagConfig    string
	flagLogLevel  string
	flagLogFormat string
	flagTgt       string
	flagRealm     string
	flagPrincipal string
}

func (c *Command) Synopsis() string {
	switch c.Func {
	case "add":
		return "Add a cross-realm authorization grant to a TGT entry"
	case "remove":
		return "Remove a cross-realm authorization grant from a TGT entry"
	case "list":
		return "List the cross-realm authorization grants on a TGT entry"
	default:
		return "Manage cross-realm authorization grants on TGT entries"
	}
}

func (c *Command) Help() string {
	var helpStr string
	switch c.Func {
	case "add":
		helpStr = base.WrapForHelpText([]string{
			"Usage: xrealmauthz attribute add -tgt=<principal> [options]",
			"",
			"  Add a cross-realm authorization grant to a cross-realm TGT entry:",
			"",
			"    Authorize an entire client realm:",
			"",
			"      $ xrealmauthz attribute add -config=kdc.hcl -tgt=krbtgt/REALM1.COM@REALM2.COM -realm=REALM2.COM",
			"",
			"    Authorize a single client principal:",
			"",
			"      $ xrealmauthz attribute add -config=kdc.hcl -tgt=krbtgt/REALM1.COM@REALM2.COM -principal=alice@REALM3.COM",
			"",
			"  The grant key is derived from the subject: a realm grant is stored as",
			"  \"xr:@REALM\"; a principal grant stores the principal without its realm",
			"  when it comes directly from the realm that issued the TGT, and fully",
			"  qualified otherwise.",
		})
	case "remove":
		helpStr = base.WrapForHelpText([]string{
			"Usage: xrealmauthz attribute remove -tgt=<principal> [options]",
			"",
			"  Remove a cross-realm authorization grant from a cross-realm TGT entry:",
			"",
			"    $ xrealmauthz attribute remove -config=kdc.hcl -tgt=krbtgt/REALM1.COM@REALM2.COM -realm=REALM2.COM",
			"",
			"  The grant key is derived the same way \"attribute add\" derives it.",
		})
	case "list":
		helpStr = base.WrapForHelpText([]string{
			"Usage: xrealmauthz attribute list -tgt=<principal> [options]",
			"",
			"  List the cross-realm authorization grants stored on a cross-realm TGT",
			"  entry:",
			"",
			"    $ xrealmauthz attribute list -config=kdc.hcl -tgt=krbtgt/REALM1.COM@REALM2.COM",
		})
	default:
		return base.WrapForHelpText([]string{
			"Usage: xrealmauthz attribute <subcommand> [options] [args]",
			"",
			"  This command groups subcommands for managing the cross-realm",
			"  authorization grants stored on cross-realm TGT entries. Example:",
			"",
			"    Authorize clients from REALM2.COM:",
			"",
			"      $ xrealmauthz attribute add -config=kdc.hcl -tgt=krbtgt/REALM1.COM@REALM2.COM -realm=REALM2.COM",
			"",
			"  Please see the individual subcommand help for detailed usage information.",
		})
	}
	return helpStr + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSets {
	set := c.FlagSet(base.FlagSetOutputFormat)

	f := set.NewFlagSet("Command Options")

	f.StringVar(&base.StringVar{
		Name:   "config",
		Target: &c.flagConfig,
		Completion: complete.PredictOr(
			complete.PredictFiles("*.hcl"),
			complete.PredictFiles("*.json"),
		),
		Usage: "Path to the configuration file.",
	})

	f.StringVar(&base.StringVar{
		Name:       "log-level",
		Target:     &c.flagLogLevel,
		EnvVar:     "XREALMAUTHZ_LOG_LEVEL",
		Completion: complete.PredictSet("trace", "debug", "info", "warn", "err"),
		Usage: "Log verbosity level. Supported values (in order of more detail to less) are " +
			"\"trace\", \"debug\", \"info\", \"warn\", and \"err\".",
	})

	f.StringVar(&base.StringVar{
		Name:       "log-format",
		Target:     &c.flagLogFormat,
		Completion: complete.PredictSet("standard", "json"),
		Usage:      `Log format. Supported values are "standard" and "json".`,
	})

	f = set.NewFlagSet("Grant Options")

	f.StringVar(&base.StringVar{
		Name:   "tgt",
		Target: &c.flagTgt,
		Usage: "The cross-realm ticket-granting service entry the grant lives on, " +
			`for example "krbtgt/REALM1.COM@REALM2.COM".`,
	})

	switch c.Func {
	case "add", "remove":
		f.StringVar(&base.StringVar{
			Name:   "realm",
			Target: &c.flagRealm,
			Usage:  "The client realm to authorize wholesale. Exactly one of -realm or -principal must be given.",
		})

		f.StringVar(&base.StringVar{
			Name:   "principal",
			Target: &c.flagPrincipal,
			Usage: `The client principal to authorize, for example "alice@REALM3.COM". ` +
				"Exactly one of -realm or -principal must be given.",
		})
	}

	return set
}

func (c *Command) AutocompleteArgs() complete.Predictor {
	return complete.PredictNothing
}

func (c *Command) AutocompleteFlags() complete.Flags {
	return c.Flags().Completions()
}

func (c *Command) Run(args []string) (retCode int) {
	switch c.Func {
	case "add", "remove", "list":
	default:
		return cli.RunResultHelp
	}

	if result := c.ParseFlagsAndConfig(args); result > 0 {
		return result
	}

	defer func() {
		if err := c.RunShutdownFuncs(); err != nil {
			c.UI.Error(fmt.Errorf("Error running shutdown tasks: %w", err).Error())
		}
	}()

	if err := c.SetupLogging(c.flagLogLevel, c.flagLogFormat, c.Config.LogLevel, c.Config.LogFormat); err != nil {
		c.UI.Error(err.Error())
		return base.CommandCliError
	}

	serverName, err := os.Hostname()
	if err != nil {
		c.UI.Error(fmt.Errorf("Unable to determine hostname: %w", err).Error())
		return base.CommandCliError
	}
	serverName = fmt.Sprintf("%s/xrealmauthz-attribute-%s", serverName, c.Func)
	if err := c.SetupEventing(c.Context, c.Logger, c.StderrLock, serverName, base.WithEventerConfig(c.Config.Eventing)); err != nil {
		c.UI.Error(err.Error())
		return base.CommandCliError
	}

	tgt, err := krb.Parse(c.Context, c.flagTgt)
	if err != nil {
		c.UI.Error(fmt.Errorf("Error parsing -tgt value: %w", err).Error())
		return base.CommandUserError
	}
	if len(tgt.Components) != 2 || tgt.Components[0] != krb.TGSName || tgt.Components[1] == tgt.Realm {
		c.UI.Warn(base.WrapAtLength(fmt.Sprintf(
			"Warning: %q does not name a cross-realm ticket-granting service entry; "+
				"the authorization policy will never consult grants stored on it.", c.flagTgt)))
	}

	var key string
	switch {
	case c.flagRealm != "":
		key = xrealmauthz.RealmACLKey(c.flagRealm)
	case c.flagPrincipal != "":
		var client *krb.Principal
		client, err = krb.Parse(c.Context, c.flagPrincipal)
		if err != nil {
			c.UI.Error(fmt.Errorf("Error parsing -principal value: %w", err).Error())
			return base.CommandUserError
		}
		key, err = xrealmauthz.PrincipalACLKey(c.Context, client, krb.RealmEqual(tgt, client))
		if err != nil {
			c.UI.Error(fmt.Errorf("Error deriving grant key: %w", err).Error())
			return base.CommandCliError
		}
	}

	if c.Config.Database == nil {
		c.UI.Error(`"database" config block not found`)
		return base.CommandUserError
	}
	urlToParse := c.Config.Database.Url
	if urlToParse == "" {
		c.UI.Error(`"url" not specified in "database" config block`)
		return base.CommandUserError
	}
	dbUrl, err := parseutil.ParsePath(urlToParse)
	if err != nil && !errors.Is(err, parseutil.ErrNotAUrl) {
		c.UI.Error(fmt.Errorf("Error parsing database url: %w", err).Error())
		return base.CommandUserError
	}

	store, err := kdb.Open(c.Context, kdb.WithUrl(dbUrl))
	if err != nil {
		c.UI.Error(fmt.Errorf("Error opening principal database: %w", err).Error())
		return base.CommandDbError
	}
	c.ShutdownFuncs = append(c.ShutdownFuncs, func() error {
		return store.Close(context.Background())
	})

	repo, err := kdb.NewRepository(c.Context, store)
	if err != nil {
		c.UI.Error(fmt.Errorf("Error creating principal repository: %w", err).Error())
		return base.CommandDbError
	}

	entry, err := repo.LookupPrincipal(c.Context, tgt.String())
	if err != nil {
		c.UI.Error(fmt.Errorf("Error looking up %q: %w", c.flagTgt, err).Error())
		return base.CommandDbError
	}
	if entry == nil {
		c.UI.Error(fmt.Sprintf("Cross-realm TGT entry %q not found in the principal database", c.flagTgt))
		return base.CommandUserError
	}

	var jsonMap map[string]any
	if base.Format(c.UI) == "json" {
		jsonMap = make(map[string]any)
		defer func() {
			b, err := base.JsonFormatter{}.Format(jsonMap)
			if err != nil {
				c.UI.Error(fmt.Errorf("Error formatting as JSON: %w", err).Error())
				retCode = base.CommandCliError
				return
			}
			c.UI.Output(string(b))
		}()
	}

	switch c.Func {
	case "add":
		attr, err := repo.SetAttribute(c.Context, entry.PrivateId, key, "")
		if err != nil {
			c.UI.Error(fmt.Errorf("Error adding grant %q to %q: %w", key, entry.PrincipalName, err).Error())
			return base.CommandDbError
		}
		info := &GrantInfo{
			Key:       attr.Name,
			Scope:     grantScope(attr.Name),
			Principal: entry.PrincipalName,
		}
		switch base.Format(c.UI) {
		case "table":
			c.UI.Output(generateGrantTableOutput(info))
		case "json":
			jsonMap["grant"] = info
		}

	case "remove":
		if err := repo.DeleteAttribute(c.Context, entry.PrivateId, key); err != nil {
			if errors.Match(errors.T(errors.RecordNotFound), err) {
				c.UI.Error(fmt.Sprintf("Grant %q not found on %q", key, entry.PrincipalName))
				return base.CommandUserError
			}
			c.UI.Error(fmt.Errorf("Error removing grant %q from %q: %w", key, entry.PrincipalName, err).Error())
			return base.CommandDbError
		}
		info := &GrantInfo{
			Key:       key,
			Scope:     grantScope(key),
			Principal: entry.PrincipalName,
		}
		switch base.Format(c.UI) {
		case "table":
			c.UI.Output("The grant was successfully removed.")
		case "json":
			jsonMap["grant"] = info
		}

	case "list":
		attrs, err := repo.ListAttributes(c.Context, entry.PrivateId)
		if err != nil {
			c.UI.Error(fmt.Errorf("Error listing grants on %q: %w", entry.PrincipalName, err).Error())
			return base.CommandDbError
		}
		items := make([]*GrantInfo, 0, len(attrs))
		for _, a := range attrs {
			if !strings.HasPrefix(a.Name, xrealmauthz.AttributePrefix) {
				continue
			}
			items = append(items, &GrantInfo{
				Key:         a.Name,
				Scope:       grantScope(a.Name),
				CreatedTime: a.CreateTime.Format(time.RFC3339),
			})
		}
		switch base.Format(c.UI) {
		case "table":
			if len(items) == 0 {
				c.UI.Output(fmt.Sprintf("No cross-realm authorization grants found on %q", entry.PrincipalName))
				break
			}
			c.UI.Output(generateGrantListOutput(items))
		case "json":
			jsonMap["grants"] = items
		}
	}

	return base.CommandSuccess
}

func (c *Command) ParseFlagsAndConfig(args []string) int {
	var err error

	f := c.Flags()

	if err = f.Parse(args); err != nil {
		c.UI.Error(err.Error())
		return base.CommandUserError
	}

	// Validation
	switch {
	case c.flagConfig == "":
		c.UI.Error("Must specify a config file using -config")
		return base.CommandUserError
	case c.flagTgt == "":
		c.UI.Error("Must specify the cross-realm TGT entry using -tgt")
		return base.CommandUserError
	}

	switch c.Func {
	case "add", "remove":
		switch {
		case c.flagRealm == "" && c.flagPrincipal == "":
			c.UI.Error("Must specify a grant subject using -realm or -principal")
			return base.CommandUserError
		case c.flagRealm != "" && c.flagPrincipal != "":
			c.UI.Error("Only one of -realm or -principal can be given")
			return base.CommandUserError
		}
	}

	c.Config, err = config.LoadFile(c.Context, c.flagConfig)
	if err != nil {
		c.UI.Error("Error parsing config: " + err.Error())
		return base.CommandUserError
	}

	return base.CommandSuccess
}
