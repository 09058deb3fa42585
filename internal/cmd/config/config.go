// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

// Package config parses the HCL configuration shared by the KDC policy
// engine and the companion CLI.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-secure-stdlib/parseutil"
	"github.com/hashicorp/go-secure-stdlib/strutil"
	"github.com/hashicorp/hcl"
	"github.com/hashicorp/hcl/hcl/ast"
	"github.com/hashicorp/xrealmauthz/internal/errors"
	"github.com/hashicorp/xrealmauthz/internal/event"
)

const devConfig = `
kdc {
	xrealmauthz_enforcing = false
}

database {
	url = %q
}

events {
	audit_enabled        = false
	observations_enabled = true
	sysevents_enabled    = true
	sink "stderr" {
		name   = "default"
		format = "hclog-text"
	}
}
`

// Config is the configuration for the xrealmauthz policy engine and its
// companion CLI.
type Config struct {
	Kdc      *Kdc      `hcl:"kdc"`
	Database *Database `hcl:"database"`

	// LogLevel and LogFormat configure the fallback hclog logger; flags
	// of the same name take precedence.
	LogLevel  string `hcl:"log_level"`
	LogFormat string `hcl:"log_format"`

	Eventing *event.EventerConfig `hcl:"-"`
}

// Kdc holds the policy settings the KDC host hands to the engine.
type Kdc struct {
	// XRealmAuthzEnforcing toggles enforcement. In permissive mode a
	// denial is logged and the request proceeds. Unset means enforcing.
	XRealmAuthzEnforcing    bool `hcl:"-"`
	XRealmAuthzEnforcingRaw any  `hcl:"xrealmauthz_enforcing"`

	// XRealmAuthzAllowedRealms lists client realms approved wholesale,
	// before any per-principal grants are consulted. Comparison is
	// case-sensitive.
	XRealmAuthzAllowedRealms []string `hcl:"xrealmauthz_allowed_realms"`
}

// Database holds the principal store settings.
type Database struct {
	// Url is kept raw; env:// and file:// indirection is resolved by
	// the consumer at open time.
	Url string `hcl:"url"`
}

func New() *Config {
	return &Config{
		Kdc: &Kdc{
			XRealmAuthzEnforcing: true,
		},
	}
}

// Dev returns a Config for local experimentation: a throwaway sqlite
// store and permissive enforcement so denials are observable without
// breaking requests.
func Dev(ctx context.Context) (*Config, error) {
	const op = "config.Dev"
	dir, err := os.MkdirTemp("", "xrealmauthz-dev-")
	if err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithCode(errors.Io), errors.WithMsg("error creating dev database directory"))
	}
	url := "file:" + filepath.Join(dir, "kdb.db") + "?_pragma=foreign_keys(1)"
	parsed, err := Parse(ctx, fmt.Sprintf(devConfig, url))
	if err != nil {
		return nil, errors.Wrap(ctx, err, op)
	}
	return parsed, nil
}

// LoadFile loads the configuration from the given file.
func LoadFile(ctx context.Context, path string) (*Config, error) {
	const op = "config.LoadFile"
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithCode(errors.Io), errors.WithMsg(fmt.Sprintf("error reading config file %q", path)))
	}
	return Parse(ctx, string(d))
}

// Parse parses the HCL document into a Config. Any problem with the
// document is an InvalidConfiguration error; callers are expected to
// treat that as fatal rather than fall back to defaults.
func Parse(ctx context.Context, d string) (*Config, error) {
	const op = "config.Parse"

	obj, err := hcl.Parse(d)
	if err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithCode(errors.InvalidConfiguration), errors.WithMsg("error parsing config"))
	}

	result := New()
	if err := hcl.DecodeObject(result, obj); err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithCode(errors.InvalidConfiguration), errors.WithMsg("error decoding config"))
	}

	if result.Kdc != nil {
		// DecodeObject replaces the Kdc pointer wholesale, so the
		// enforcing default is applied here rather than in New.
		switch result.Kdc.XRealmAuthzEnforcingRaw {
		case nil:
			result.Kdc.XRealmAuthzEnforcing = true
		default:
			result.Kdc.XRealmAuthzEnforcing, err = parseutil.ParseBool(result.Kdc.XRealmAuthzEnforcingRaw)
			if err != nil {
				return nil, errors.Wrap(ctx, err, op, errors.WithCode(errors.InvalidConfiguration), errors.WithMsg("error parsing xrealmauthz_enforcing"))
			}
			result.Kdc.XRealmAuthzEnforcingRaw = nil
		}
		for _, r := range result.Kdc.XRealmAuthzAllowedRealms {
			if strings.TrimSpace(r) == "" {
				return nil, errors.New(ctx, errors.InvalidConfiguration, op, "allowed realm is empty")
			}
		}
		result.Kdc.XRealmAuthzAllowedRealms = strutil.RemoveDuplicatesStable(result.Kdc.XRealmAuthzAllowedRealms, false)
	}

	list, ok := obj.Node.(*ast.ObjectList)
	if !ok {
		return nil, errors.New(ctx, errors.InvalidConfiguration, op, "file doesn't contain a root object")
	}
	eventList := list.Filter("events")
	switch len(eventList.Items) {
	case 0:
		result.Eventing = event.DefaultEventerConfig()
	case 1:
		if result.Eventing, err = parseEventing(ctx, eventList.Items[0]); err != nil {
			return nil, errors.Wrap(ctx, err, op, errors.WithCode(errors.InvalidConfiguration))
		}
	default:
		return nil, errors.New(ctx, errors.InvalidConfiguration, op, "only one \"events\" block is allowed")
	}

	return result, nil
}

func parseEventing(ctx context.Context, item *ast.ObjectItem) (*event.EventerConfig, error) {
	const op = "config.parseEventing"

	// Decode over the defaults so an omitted flag keeps its default
	// rather than reading as disabled.
	result := event.DefaultEventerConfig()
	if err := hcl.DecodeObject(result, item.Val); err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithMsg("error decoding \"events\" block"))
	}
	result.Sinks = nil

	ot, ok := item.Val.(*ast.ObjectType)
	if !ok {
		return nil, errors.New(ctx, errors.InvalidConfiguration, op, "\"events\" block is not an object")
	}
	for i, sinkItem := range ot.List.Filter("sink").Items {
		sink, err := parseSink(ctx, i, sinkItem)
		if err != nil {
			return nil, errors.Wrap(ctx, err, op)
		}
		result.Sinks = append(result.Sinks, sink)
	}
	if len(result.Sinks) == 0 {
		result.Sinks = []*event.SinkConfig{event.DefaultSink()}
	}

	if err := result.Validate(); err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithMsg("invalid \"events\" block"))
	}
	return result, nil
}

func parseSink(ctx context.Context, i int, item *ast.ObjectItem) (*event.SinkConfig, error) {
	const op = "config.parseSink"

	var sink event.SinkConfig
	if err := hcl.DecodeObject(&sink, item.Val); err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithMsg(fmt.Sprintf("error decoding sink %d", i)))
	}

	// The block label, if given, names the sink type: sink "stderr" {}.
	switch len(item.Keys) {
	case 0:
	case 1:
		label, ok := item.Keys[0].Token.Value().(string)
		if !ok {
			return nil, errors.New(ctx, errors.InvalidConfiguration, op, fmt.Sprintf("sink %d has a non-string label", i))
		}
		switch {
		case sink.Type == "":
			sink.Type = event.SinkType(label)
		case sink.Type != event.SinkType(label):
			return nil, errors.New(ctx, errors.InvalidConfiguration, op,
				fmt.Sprintf("sink %d type %q conflicts with label %q", i, sink.Type, label))
		}
	default:
		return nil, errors.New(ctx, errors.InvalidConfiguration, op, fmt.Sprintf("sink %d has too many labels", i))
	}
	if sink.Type == "" {
		switch {
		case sink.FileConfig != nil:
			sink.Type = event.FileSink
		default:
			sink.Type = event.StderrSink
		}
	}
	if sink.Format == "" {
		sink.Format = event.TextHclogSinkFormat
	}
	if len(sink.EventTypes) == 0 {
		sink.EventTypes = []event.Type{event.EveryType}
	}
	if sink.FileConfig != nil && sink.FileConfig.RotateDurationHCL != "" {
		var err error
		sink.FileConfig.RotateDuration, err = parseutil.ParseDurationSecond(sink.FileConfig.RotateDurationHCL)
		if err != nil {
			return nil, errors.Wrap(ctx, err, op, errors.WithCode(errors.InvalidConfiguration),
				errors.WithMsg(fmt.Sprintf("error parsing sink %d rotate_duration", i)))
		}
	}

	if err := sink.Validate(); err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithCode(errors.InvalidConfiguration),
			errors.WithMsg(fmt.Sprintf("sink %d is invalid", i)))
	}
	return &sink, nil
}
