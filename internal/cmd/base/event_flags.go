// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package base

import (
	"fmt"

	"github.com/hashicorp/go-bexpr"
	"github.com/hashicorp/go-secure-stdlib/parseutil"
	"github.com/hashicorp/xrealmauthz/internal/event"
)

// EventFlags represent the cmd flags supported overriding the configured or
// default configuration for eventing
type EventFlags struct {
	Format              event.SinkFormat
	AuditEnabled        *bool
	ObservationsEnabled *bool
	SysEventsEnabled    *bool
	AllowFilters        []string
	DenyFilters         []string
}

// Validate the flags
func (ef *EventFlags) Validate() error {
	if ef != nil {
		if err := ef.Format.Validate(); err != nil {
			return err
		}
	}
	return nil
}

type ComposedOfEventArgs struct {
	Format       string
	Observations string
	Audit        string
	SysEvents    string
	Allow        []string
	Deny         []string
}

// NewEventFlags will create a new EventFlags based on the ComposedOfEventArgs
// which should be populated with the string values of the cmd flags
func NewEventFlags(defaultFormat event.SinkFormat, c ComposedOfEventArgs) (*EventFlags, error) {
	const op = "base.NewEventFlags"
	if defaultFormat == "" {
		return nil, fmt.Errorf("%s: missing default sink format: %w", op, event.ErrInvalidParameter)
	}
	f := &EventFlags{
		Format: defaultFormat,
	}
	if c.Format != "" {
		f.Format = event.SinkFormat(c.Format)
	}
	if err := f.Format.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if c.Observations != "" {
		v, err := parseutil.ParseBool(c.Observations)
		if err != nil {
			return nil, fmt.Errorf("%s: unable to parse observation events flag: %w", op, err)
		}
		f.ObservationsEnabled = &v
	}
	if c.Audit != "" {
		v, err := parseutil.ParseBool(c.Audit)
		if err != nil {
			return nil, fmt.Errorf("%s: unable to parse audit events flag: %w", op, err)
		}
		f.AuditEnabled = &v
	}
	if c.SysEvents != "" {
		v, err := parseutil.ParseBool(c.SysEvents)
		if err != nil {
			return nil, fmt.Errorf("%s: unable to parse system events flag: %w", op, err)
		}
		f.SysEventsEnabled = &v
	}
	for _, filter := range c.Allow {
		if _, err := bexpr.CreateEvaluator(filter); err != nil {
			return nil, fmt.Errorf("%s: invalid allow filter '%s': %w", op, filter, err)
		}
		f.AllowFilters = append(f.AllowFilters, filter)
	}
	for _, filter := range c.Deny {
		if _, err := bexpr.CreateEvaluator(filter); err != nil {
			return nil, fmt.Errorf("%s: invalid deny filter '%s': %w", op, filter, err)
		}
		f.DenyFilters = append(f.DenyFilters, filter)
	}
	return f, nil
}
