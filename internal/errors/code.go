// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package errors

// Code specifies a code for the error.
type Code uint32

// String will return the Code's Info.Message
func (c Code) String() string {
	return c.Info().Message
}

// Info will look up the Code's Info.  If the Info is not found, it will return
// Info for an Unknown Code.
func (c Code) Info() Info {
	if info, ok := errorCodeInfo[c]; ok {
		return info
	}
	return errorCodeInfo[Unknown]
}

const (
	Unknown Code = 0 // Unknown will be equal to a zero value for Codes

	// General function errors are reserved Codes 100-999
	InvalidParameter     Code = 100 // InvalidParameter represents an invalid parameter for an operation.
	InvalidConfiguration Code = 101 // InvalidConfiguration represents a configuration that cannot be used to initialize the module.
	InvalidPrincipalName Code = 102 // InvalidPrincipalName represents a principal name that cannot be parsed or rendered.
	MaxRetries           Code = 103 // MaxRetries represents that a db tx (transaction) retry limit was reached

	// Registry errors are reserved Codes 110-119
	ModuleAlreadyRegistered Code = 110 // ModuleAlreadyRegistered represents a duplicate policy module registration.

	// Internal/system errors are reserved Codes 500-599
	Internal Code = 500 // Internal represents an internal error that should never happen.
	Io       Code = 501 // Io represents an error that happened while performing an io operation.
	Encode   Code = 502 // Encode represents an error that happened while encoding a value (an ACL key, a principal's textual form).

	// DB errors are reserved Codes 1000-1999
	CheckConstraint Code = 1000 // CheckConstraint represents a check constraint error
	NotNull         Code = 1001 // NotNull represents a value must not be null error
	NotUnique       Code = 1002 // NotUnique represents a value must be unique error
	RecordNotFound  Code = 1100 // RecordNotFound represents that a record/row was not found matching the criteria
	MultipleRecords Code = 1101 // MultipleRecords represents that multiple records/rows were found matching the criteria
)
