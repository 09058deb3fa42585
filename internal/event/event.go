// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package event

import (
	"fmt"
)

const (
	EveryType       Type = "*"           // EveryType represents every (all) types of events
	ObservationType Type = "observation" // ObservationType represents observation events
	AuditType       Type = "audit"       // AuditType represents audit events
	ErrorType       Type = "error"       // ErrorType represents error events
	SystemType      Type = "system"      // SystemType represents system events
)

const (
	OpField          = "op"           // OpField in an event.
	RequestInfoField = "request_info" // RequestInfoField in an event.
	VersionField     = "version"      // VersionField in an event.
	DetailsField     = "details"      // DetailsField in an event.
	HeaderField      = "header"       // HeaderField in an event.
	IdField          = "id"           // IdField in an event.

	msgField = "msg"
)

// Id is the indentifier of an event
type Id string

// Op is the operation which raised an event
type Op string

// Type defines the type of event
type Type string

// Validate the event Type
func (et Type) Validate() error {
	const op = "event.(Type).Validate"
	switch et {
	case EveryType, ObservationType, AuditType, ErrorType, SystemType:
		return nil
	default:
		return fmt.Errorf("%s: '%s' is not a valid event type: %w", op, et, ErrInvalidParameter)
	}
}
