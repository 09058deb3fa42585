// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

// Package check implements the CLI command evaluating the cross-realm
// authorization policy for a single TGS request, the same decision the
// KDC host asks the module for in-process.
package check

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/hashicorp/go-secure-stdlib/parseutil"
	"github.com/hashicorp/xrealmauthz/internal/cmd/base"
	"github.com/hashicorp/xrealmauthz/internal/cmd/config"
	"github.com/hashicorp/xrealmauthz/internal/errors"
	"github.com/hashicorp/xrealmauthz/internal/event"
	"github.com/hashicorp/xrealmauthz/internal/kdb"
	"github.com/hashicorp/xrealmauthz/internal/kdcpolicy"
	"github.com/hashicorp/xrealmauthz/internal/krb"
	"github.com/hashicorp/xrealmauthz/internal/xrealmauthz"
	"github.com/mitchellh/cli"
	"github.com/posener/complete"
)

// Exit codes. The verdict is the exit status so KDC wrappers and
// scripts can branch on it without parsing output.
const (
	ExitAllow = 0
	ExitDeny  = 1
	ExitError = 2
)

var (
	_ cli.Command             = (*Command)(nil)
	_ cli.CommandAutocomplete = (*Command)(nil)
)

type Command struct {
	*base.Server

	Config *config.Config

	flagConfig       string
	flagLogLevel     string
	flagLogFormat    string
	flagClient       string
	flagServer       string
	flagTicketServer string

	flagEventFormat       string
	flagObservationEvents string
	flagAuditEvents       string
	flagSysEvents         string
	flagEventAllowFilters []string
	flagEventDenyFilters  []string
}

func (c *Command) Synopsis() string {
	return "Evaluate the cross-realm authorization policy for one request"
}

func (c *Command) Help() string {
	helpText := `
Usage: xrealmauthz check -client=<principal> -server=<principal> [options]

  Evaluate the cross-realm authorization policy for a single TGS
  request, exactly as the KDC would, and print the verdict:

      $ xrealmauthz check \
          -config=kdc.hcl \
          -client=alice@REALM2.COM \
          -server=host/web.realm1.com@REALM1.COM

  The ticket's service principal defaults to the cross-realm TGT such a
  client presents, "krbtgt/<server realm>@<client realm>"; override it
  with -ticket-server to model other tickets. The command exits 0 when
  the request is allowed, 1 when it is denied and 2 on any error.

` + c.Flags().Help()

	return helpText[1:]
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

	f = set.NewFlagSet("Check Options")

	f.StringVar(&base.StringVar{
		Name:   "client",
		Target: &c.flagClient,
		Usage:  `The requesting client principal, for example "alice@REALM2.COM".`,
	})

	f.StringVar(&base.StringVar{
		Name:   "server",
		Target: &c.flagServer,
		Usage:  `The requested service principal, for example "host/web.realm1.com@REALM1.COM".`,
	})

	f.StringVar(&base.StringVar{
		Name:   "ticket-server",
		Target: &c.flagTicketServer,
		Usage: "The service principal of the ticket accompanying the request. " +
			`Defaults to the cross-realm TGT "krbtgt/<server realm>@<client realm>".`,
	})

	f = set.NewFlagSet("Event Options")

	f.StringVar(&base.StringVar{
		Name:       "event-format",
		Target:     &c.flagEventFormat,
		Completion: complete.PredictSet(string(event.TextHclogSinkFormat), string(event.JSONHclogSinkFormat)),
		Usage: `Event format. Supported values are "hclog-text" and "hclog-json", ` +
			"overriding whatever the config file sinks specify.",
	})

	f.StringVar(&base.StringVar{
		Name:       "observation-events",
		Target:     &c.flagObservationEvents,
		Completion: complete.PredictSet("true", "false"),
		Usage:      "Emit observation events, overriding the config file.",
	})

	f.StringVar(&base.StringVar{
		Name:       "audit-events",
		Target:     &c.flagAuditEvents,
		Completion: complete.PredictSet("true", "false"),
		Usage:      "Emit audit events, overriding the config file.",
	})

	f.StringVar(&base.StringVar{
		Name:       "sysevents",
		Target:     &c.flagSysEvents,
		Completion: complete.PredictSet("true", "false"),
		Usage:      "Emit system events, overriding the config file.",
	})

	f.StringSliceVar(&base.StringSliceVar{
		Name:   "event-allow-filter",
		Target: &c.flagEventAllowFilters,
		Usage:  "Allow filter to apply to every sink. May be specified multiple times.",
	})

	f.StringSliceVar(&base.StringSliceVar{
		Name:   "event-deny-filter",
		Target: &c.flagEventDenyFilters,
		Usage:  "Deny filter to apply to every sink. May be specified multiple times.",
	})

	return set
}

func (c *Command) AutocompleteArgs() complete.Predictor {
	return complete.PredictNothing
}

func (c *Command) AutocompleteFlags() complete.Flags {
	return c.Flags().Completions()
}

func (c *Command) Run(args []string) int {
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
		return ExitError
	}

	serverName, err := os.Hostname()
	if err != nil {
		c.UI.Error(fmt.Errorf("Unable to determine hostname: %w", err).Error())
		return ExitError
	}
	serverName = fmt.Sprintf("%s/xrealmauthz-check", serverName)

	eventFlags, err := base.NewEventFlags(event.TextHclogSinkFormat, base.ComposedOfEventArgs{
		Format:       c.flagEventFormat,
		Observations: c.flagObservationEvents,
		Audit:        c.flagAuditEvents,
		SysEvents:    c.flagSysEvents,
		Allow:        c.flagEventAllowFilters,
		Deny:         c.flagEventDenyFilters,
	})
	if err != nil {
		c.UI.Error(err.Error())
		return ExitError
	}

	if err := c.SetupEventing(c.Context, c.Logger, c.StderrLock, serverName,
		base.WithEventerConfig(c.Config.Eventing),
		base.WithEventFlags(eventFlags)); err != nil {
		c.UI.Error(err.Error())
		return ExitError
	}

	ctx, err := c.AddEventerToContext(c.Context)
	if err != nil {
		c.UI.Error(err.Error())
		return ExitError
	}

	client, err := krb.Parse(ctx, c.flagClient)
	if err != nil {
		c.UI.Error(fmt.Errorf("Error parsing -client value: %w", err).Error())
		return ExitError
	}
	server, err := krb.Parse(ctx, c.flagServer)
	if err != nil {
		c.UI.Error(fmt.Errorf("Error parsing -server value: %w", err).Error())
		return ExitError
	}
	var ticketServer *krb.Principal
	switch c.flagTicketServer {
	case "":
		ticketServer = krb.TGSPrincipal(server.Realm, client.Realm)
	default:
		ticketServer, err = krb.Parse(ctx, c.flagTicketServer)
		if err != nil {
			c.UI.Error(fmt.Errorf("Error parsing -ticket-server value: %w", err).Error())
			return ExitError
		}
	}

	if c.Config.Database == nil {
		c.UI.Error(`"database" config block not found`)
		return ExitError
	}
	urlToParse := c.Config.Database.Url
	if urlToParse == "" {
		c.UI.Error(`"url" not specified in "database" config block`)
		return ExitError
	}
	dbUrl, err := parseutil.ParsePath(urlToParse)
	if err != nil && !errors.Is(err, parseutil.ErrNotAUrl) {
		c.UI.Error(fmt.Errorf("Error parsing database url: %w", err).Error())
		return ExitError
	}

	store, err := kdb.Open(ctx, kdb.WithUrl(dbUrl))
	if err != nil {
		c.UI.Error(fmt.Errorf("Error opening principal database: %w", err).Error())
		return ExitError
	}
	c.ShutdownFuncs = append(c.ShutdownFuncs, func() error {
		return store.Close(context.Background())
	})

	repo, err := kdb.NewRepository(ctx, store)
	if err != nil {
		c.UI.Error(fmt.Errorf("Error creating principal repository: %w", err).Error())
		return ExitError
	}

	conf, err := xrealmauthz.NewConfig(ctx, c.Config.Kdc.XRealmAuthzEnforcing, c.Config.Kdc.XRealmAuthzAllowedRealms)
	if err != nil {
		c.UI.Error(fmt.Errorf("Error building policy configuration: %w", err).Error())
		return ExitError
	}

	m, err := xrealmauthz.New(ctx, conf, repo)
	if err != nil {
		c.UI.Error(fmt.Errorf("Error loading policy module: %w", err).Error())
		return ExitError
	}
	c.ShutdownFuncs = append(c.ShutdownFuncs, func() error {
		return m.Close(context.Background())
	})

	reg := kdcpolicy.NewRegistry()
	if err := reg.Register(ctx, m); err != nil {
		c.UI.Error(fmt.Errorf("Error registering policy module: %w", err).Error())
		return ExitError
	}

	if base.Format(c.UI) == "table" {
		c.InfoKeys = append(c.InfoKeys, "config file", "database url", "enforcing mode", "pre-approved realms")
		c.Info["config file"] = c.flagConfig
		c.Info["database url"] = dbUrl
		mode := "permissive"
		if conf.Enforcing {
			mode = "enforcing"
		}
		c.Info["enforcing mode"] = mode
		c.Info["pre-approved realms"] = strconv.Itoa(len(conf.AllowedRealms))
		c.PrintInfo(c.UI, "check")
	}

	req := &kdcpolicy.TGSRequest{
		Client: client,
		Server: server,
		Ticket: &kdcpolicy.Ticket{
			Client: client,
			Server: ticketServer,
		},
	}

	// Run every registered module against the request the way the KDC
	// host would; the first denial ends the evaluation.
	result := &kdcpolicy.CheckResult{Verdict: kdcpolicy.Allow}
	for _, mod := range reg.Modules() {
		result, err = mod.CheckTGS(ctx, req)
		if err != nil {
			c.UI.Error(fmt.Errorf("Error evaluating request: %w", err).Error())
			return ExitError
		}
		if result.Verdict == kdcpolicy.Deny {
			break
		}
	}

	info := &CheckInfo{
		Client:       client.String(),
		Server:       server.String(),
		TicketServer: ticketServer.String(),
		Verdict:      result.Verdict.String(),
		Status:       result.Status,
	}
	switch base.Format(c.UI) {
	case "table":
		c.UI.Output(generateCheckTableOutput(info))
	case "json":
		b, err := base.JsonFormatter{}.Format(map[string]any{"check": info})
		if err != nil {
			c.UI.Error(fmt.Errorf("Error formatting as JSON: %w", err).Error())
			return ExitError
		}
		c.UI.Output(string(b))
	}

	if result.Verdict == kdcpolicy.Deny {
		return ExitDeny
	}
	return ExitAllow
}

func (c *Command) ParseFlagsAndConfig(args []string) int {
	var err error

	f := c.Flags()

	if err = f.Parse(args); err != nil {
		c.UI.Error(err.Error())
		return ExitError
	}

	// Validation
	switch {
	case c.flagConfig == "":
		c.UI.Error("Must specify a config file using -config")
		return ExitError
	case c.flagClient == "":
		c.UI.Error("Must specify the requesting client principal using -client")
		return ExitError
	case c.flagServer == "":
		c.UI.Error("Must specify the requested service principal using -server")
		return ExitError
	}

	c.Config, err = config.LoadFile(c.Context, c.flagConfig)
	if err != nil {
		c.UI.Error("Error parsing config: " + err.Error())
		return ExitError
	}

	return base.CommandSuccess
}

// CheckInfo is the command output for one evaluated request.
type CheckInfo struct {
	Client       string `json:"client"`
	Server       string `json:"server"`
	TicketServer string `json:"ticket_server"`
	Verdict      string `json:"verdict"`
	Status       string `json:"status,omitempty"`
}

func generateCheckTableOutput(in *CheckInfo) string {
	nonAttributeMap := map[string]any{
		"Client":        in.Client,
		"Server":        in.Server,
		"Ticket Server": in.TicketServer,
		"Verdict":       in.Verdict,
	}
	if in.Status != "" {
		nonAttributeMap["Status"] = in.Status
	}

	maxLength := base.MaxAttributesLength(nonAttributeMap, nil, nil)

	ret := []string{
		"",
		"Authorization check information:",
		base.WrapMap(2, maxLength+2, nonAttributeMap),
	}

	return base.WrapForHelpText(ret)
}
