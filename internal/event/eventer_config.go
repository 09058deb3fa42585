// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package event

import (
	"fmt"
)

// EventerConfig supplies all the configuration needed to create/config an
// Eventer.
type EventerConfig struct {
	AuditEnabled        bool              `hcl:"audit_enabled"`        // AuditEnabled specifies if audit events should be emitted.
	ObservationsEnabled bool              `hcl:"observations_enabled"` // ObservationsEnabled specifies if observation events should be emitted.
	SysEventsEnabled    bool              `hcl:"sysevents_enabled"`    // SysEventsEnabled specifies if sysevents should be emitted.
	AuditDelivery       DeliveryGuarantee `hcl:"audit_delivery"`       // AuditDelivery specifies the delivery guarantee for audit events.
	ObservationDelivery DeliveryGuarantee `hcl:"observation_delivery"` // ObservationDelivery specifies the delivery guarantee for observation events.
	Sinks               []*SinkConfig     `hcl:"-"`                    // Sinks are all the configured sinks
	ErrorEventsDisabled bool              `hcl:"-"`                    // ErrorEventsDisabled disables error events.  This should only be used to turn off error events in tests.
}

// Validate will Validate the config. A config isn't required to have any
// sinks to be valid.
func (c *EventerConfig) Validate() error {
	const op = "event.(EventerConfig).Validate"
	if err := c.AuditDelivery.validate(); err != nil {
		return fmt.Errorf("%s: invalid audit delivery: %w", op, err)
	}
	if err := c.ObservationDelivery.validate(); err != nil {
		return fmt.Errorf("%s: invalid observation delivery: %w", op, err)
	}
	for i, s := range c.Sinks {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("%s: sink %d is invalid: %w", op, i, err)
		}
	}
	return nil
}

// DefaultEventerConfig returns a config for the case where the operator has
// not defined an events stanza: observation and system events written to a
// stderr sink.
func DefaultEventerConfig() *EventerConfig {
	return &EventerConfig{
		AuditEnabled:        false,
		ObservationsEnabled: true,
		SysEventsEnabled:    true,
		Sinks:               []*SinkConfig{DefaultSink()},
	}
}

// DefaultSink returns a sink config for written hclog text to stderr.
func DefaultSink() *SinkConfig {
	return &SinkConfig{
		Name:       "default",
		EventTypes: []Type{EveryType},
		Format:     TextHclogSinkFormat,
		Type:       StderrSink,
	}
}
