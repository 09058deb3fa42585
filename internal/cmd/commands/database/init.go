// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package database

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-secure-stdlib/parseutil"
	"github.com/hashicorp/go-secure-stdlib/strutil"
	"github.com/hashicorp/xrealmauthz/internal/cmd/base"
	"github.com/hashicorp/xrealmauthz/internal/cmd/config"
	"github.com/hashicorp/xrealmauthz/internal/errors"
	"github.com/hashicorp/xrealmauthz/internal/kdb"
	"github.com/hashicorp/xrealmauthz/internal/krb"
	"github.com/mitchellh/cli"
	"github.com/posener/complete"
)

var (
	_ cli.Command             = (*InitCommand)(nil)
	_ cli.CommandAutocomplete = (*InitCommand)(nil)
)

type InitCommand struct {
	*base.Server

	Config *config.Config

	flagConfig                       string
	flagLogLevel                     string
	flagLogFormat                    string
	flagRealm                        string
	flagTrustRealms                  []string
	flagSkipInitialPrincipalCreation bool
}

func (c *InitCommand) Synopsis() string {
	return "Initialize the xrealmauthz principal database"
}

func (c *InitCommand) Help() string {
	return base.WrapForHelpText([]string{
		"Usage: xrealmauthz database init [options]",
		"",
		"  Initialize the principal database:",
		"",
		"    $ xrealmauthz database init -config=/etc/xrealmauthz/kdc.hcl -realm=REALM1.COM -trust-realm=REALM2.COM",
		"",
		"  Unless told not to via flags, the initial principal entries are created:",
		"",
		"    The local ticket-granting service (krbtgt/REALM@REALM)",
		"    One cross-realm ticket-granting service entry per trusted realm",
		"      (krbtgt/REALM@TRUSTED)",
		"",
		"  Cross-realm authorization grants are attached to the cross-realm entries",
		"  afterwards with \"xrealmauthz attribute add\".",
	}) + c.Flags().Help()
}

func (c *InitCommand) Flags() *base.FlagSets {
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

	f = set.NewFlagSet("Init Options")

	f.StringVar(&base.StringVar{
		Name:   "realm",
		Target: &c.flagRealm,
		Usage:  "The realm this KDC serves. Required unless initial principal creation is skipped.",
	})

	f.StringSliceVar(&base.StringSliceVar{
		Name:   "trust-realm",
		Target: &c.flagTrustRealms,
		Usage: "A realm whose clients this KDC accepts over cross-realm trust. May be " +
			"specified multiple times; a cross-realm ticket-granting service entry is " +
			"created for each.",
	})

	f.BoolVar(&base.BoolVar{
		Name:   "skip-initial-principal-creation",
		Target: &c.flagSkipInitialPrincipalCreation,
		Usage: "If set, no principal entries will be created as part of initialization; " +
			"only the schema is applied.",
	})

	return set
}

func (c *InitCommand) AutocompleteArgs() complete.Predictor {
	return complete.PredictNothing
}

func (c *InitCommand) AutocompleteFlags() complete.Flags {
	return c.Flags().Completions()
}

func (c *InitCommand) Run(args []string) (retCode int) {
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
	serverName = fmt.Sprintf("%s/xrealmauthz-database-init", serverName)
	if err := c.SetupEventing(c.Context, c.Logger, c.StderrLock, serverName, base.WithEventerConfig(c.Config.Eventing)); err != nil {
		c.UI.Error(err.Error())
		return base.CommandCliError
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

	if base.Format(c.UI) == "table" {
		c.UI.Info("Principal database schema successfully applied.")
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

	if c.flagSkipInitialPrincipalCreation {
		return base.CommandSuccess
	}

	names := []string{krb.TGSPrincipal(c.flagRealm, c.flagRealm).String()}
	for _, realm := range strutil.RemoveDuplicatesStable(c.flagTrustRealms, false) {
		if realm == c.flagRealm {
			continue
		}
		names = append(names, krb.TGSPrincipal(c.flagRealm, realm).String())
	}

	principalInfos := make([]*PrincipalInfo, 0, len(names))
	for _, name := range names {
		entry, err := repo.CreatePrincipal(c.Context, name)
		if err != nil {
			if errors.Match(errors.T(errors.NotUnique), err) {
				c.UI.Error(fmt.Sprintf("The database appears to have already been initialized: %q exists", name))
				return base.CommandDbError
			}
			c.UI.Error(fmt.Errorf("Error creating principal entry %q: %w", name, err).Error())
			return base.CommandDbError
		}
		principalInfos = append(principalInfos, &PrincipalInfo{
			PrincipalId: entry.PrivateId,
			Name:        entry.PrincipalName,
		})
	}

	switch base.Format(c.UI) {
	case "table":
		for _, info := range principalInfos {
			c.UI.Output(generatePrincipalTableOutput(info))
		}
	case "json":
		jsonMap["principals"] = principalInfos
	}

	return base.CommandSuccess
}

func (c *InitCommand) ParseFlagsAndConfig(args []string) int {
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
	case c.flagRealm == "" && !c.flagSkipInitialPrincipalCreation:
		c.UI.Error("Must specify the realm this KDC serves using -realm")
		return base.CommandUserError
	}

	c.Config, err = config.LoadFile(c.Context, c.flagConfig)
	if err != nil {
		c.UI.Error("Error parsing config: " + err.Error())
		return base.CommandUserError
	}

	return base.CommandSuccess
}
