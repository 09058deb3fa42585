// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package base

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/xrealmauthz/internal/errors"
	"github.com/hashicorp/xrealmauthz/internal/event"
	"github.com/hashicorp/xrealmauthz/version"
	"github.com/mitchellh/cli"
)

type Server struct {
	*Command

	InfoKeys []string
	Info     map[string]string

	Logger  hclog.Logger
	Eventer *event.Eventer

	// StderrLock is passed to the eventer to serialize writes shared between
	// the logger and the stderr sinks.
	StderrLock *sync.Mutex

	ShutdownFuncs []func() error
}

// NewServer creates a new Server.
func NewServer(cmd *Command) *Server {
	return &Server{
		Command:    cmd,
		InfoKeys:   make([]string, 0, 20),
		Info:       make(map[string]string),
		StderrLock: new(sync.Mutex),
	}
}

// SetupLogging creates the logger for the server, taking the command line
// values over the config file values.
func (b *Server) SetupLogging(flagLogLevel, flagLogFormat, configLogLevel, configLogFormat string) error {
	logLevel := strings.ToLower(strings.TrimSpace(flagLogLevel))
	if logLevel == "" {
		logLevel = strings.ToLower(strings.TrimSpace(configLogLevel))
	}
	if logLevel == "" {
		logLevel = "info"
	}

	var level hclog.Level
	switch logLevel {
	case "trace":
		level = hclog.Trace
	case "debug":
		level = hclog.Debug
	case "notice", "info":
		level = hclog.Info
	case "warn", "warning":
		level = hclog.Warn
	case "err", "error":
		level = hclog.Error
	default:
		return fmt.Errorf("unknown log level: %s", logLevel)
	}

	logFormat := flagLogFormat
	if logFormat == "" {
		logFormat = configLogFormat
	}
	logFormat = strings.ToLower(strings.TrimSpace(logFormat))
	switch logFormat {
	case "", "standard", "json":
	default:
		return fmt.Errorf("unknown log format: %s", logFormat)
	}

	b.Logger = hclog.New(&hclog.LoggerOptions{
		Output:     os.Stderr,
		Level:      level,
		JSONFormat: logFormat == "json",
		Mutex:      b.StderrLock,
	})

	b.Info["log level"] = level.String()
	b.InfoKeys = append(b.InfoKeys, "log level")

	return nil
}

// SetupEventing initializes the system wide eventer from the config or
// flag-supplied overrides and retains it on the server. Supports the
// WithEventerConfig, WithEventFlags and WithEventGating options.
func (b *Server) SetupEventing(ctx context.Context, logger hclog.Logger, serializationLock *sync.Mutex, serverName string, opt ...Option) error {
	const op = "base.(Server).SetupEventing"

	if logger == nil {
		return errors.New(ctx, errors.InvalidParameter, op, "missing logger", errors.WithoutEvent())
	}
	if serializationLock == nil {
		return errors.New(ctx, errors.InvalidParameter, op, "missing serialization lock", errors.WithoutEvent())
	}
	if serverName == "" {
		return errors.New(ctx, errors.InvalidParameter, op, "missing server name", errors.WithoutEvent())
	}

	opts := GetOpts(opt...)
	eventerConfig := event.DefaultEventerConfig()
	if opts.withEventerConfig != nil {
		eventerConfig = opts.withEventerConfig
	}
	if opts.withEventFlags != nil {
		if err := opts.withEventFlags.Validate(); err != nil {
			return errors.Wrap(ctx, err, op, errors.WithMsg("invalid event flags"), errors.WithoutEvent())
		}
		if opts.withEventFlags.Format != "" {
			for i := 0; i < len(eventerConfig.Sinks); i++ {
				eventerConfig.Sinks[i].Format = opts.withEventFlags.Format
			}
		}
		if opts.withEventFlags.AuditEnabled != nil {
			eventerConfig.AuditEnabled = *opts.withEventFlags.AuditEnabled
		}
		if opts.withEventFlags.ObservationsEnabled != nil {
			eventerConfig.ObservationsEnabled = *opts.withEventFlags.ObservationsEnabled
		}
		if opts.withEventFlags.SysEventsEnabled != nil {
			eventerConfig.SysEventsEnabled = *opts.withEventFlags.SysEventsEnabled
		}
		if len(opts.withEventFlags.AllowFilters) > 0 {
			for i := 0; i < len(eventerConfig.Sinks); i++ {
				eventerConfig.Sinks[i].AllowFilters = opts.withEventFlags.AllowFilters
			}
		}
		if len(opts.withEventFlags.DenyFilters) > 0 {
			for i := 0; i < len(eventerConfig.Sinks); i++ {
				eventerConfig.Sinks[i].DenyFilters = opts.withEventFlags.DenyFilters
			}
		}
	}

	if err := event.InitSysEventer(logger, serializationLock, serverName, event.WithEventerConfig(eventerConfig), event.WithGating(opts.withEventGating)); err != nil {
		return errors.Wrap(ctx, err, op, errors.WithoutEvent())
	}
	b.Eventer = event.SysEventer()

	return nil
}

// AddEventerToContext adds the server eventer to the context provided
func (b *Server) AddEventerToContext(ctx context.Context) (context.Context, error) {
	const op = "base.(Server).AddEventerToContext"
	if b.Eventer == nil {
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing server eventer", errors.WithoutEvent())
	}
	e, err := event.NewEventerContext(ctx, b.Eventer)
	if err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithMsg("unable to add eventer to context"), errors.WithoutEvent())
	}
	return e, nil
}

func (b *Server) PrintInfo(ui cli.Ui, mode string) {
	b.InfoKeys = append(b.InfoKeys, "version")
	verInfo := version.Get()
	b.Info["version"] = verInfo.FullVersionNumber(false)
	if verInfo.Revision != "" {
		b.Info["version sha"] = strings.Trim(verInfo.Revision, "'")
		b.InfoKeys = append(b.InfoKeys, "version sha")
	}
	b.InfoKeys = append(b.InfoKeys, "cgo")
	b.Info["cgo"] = "disabled"
	if verInfo.CgoEnabled {
		b.Info["cgo"] = "enabled"
	}

	// Server configuration output
	padding := 24
	sort.Strings(b.InfoKeys)
	ui.Output(fmt.Sprintf("==> XRealmAuthz %s configuration:\n", mode))
	for _, k := range b.InfoKeys {
		ui.Output(fmt.Sprintf(
			"%s%s: %s",
			strings.Repeat(" ", padding-len(k)),
			strings.Title(k),
			b.Info[k]))
	}
	ui.Output("")
}

// RunShutdownFuncs runs the registered shutdown tasks in order and reports
// the first error encountered.
func (b *Server) RunShutdownFuncs() error {
	for _, f := range b.ShutdownFuncs {
		if err := f(); err != nil {
			return err
		}
	}
	return nil
}
