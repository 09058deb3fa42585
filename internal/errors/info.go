// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package errors

// Info contains details of the specific error code
type Info struct {
	// Kind specifies the kind of error (unknown, parameter, integrity, etc).
	Kind Kind

	// Message provides a default message for the error code
	Message string
}

// errorCodeInfo provides a map of unique Codes (IDs) to their
// corresponding Kind and a default Message.
var errorCodeInfo = map[Code]Info{
	Unknown: {
		Message: "unknown",
		Kind:    Other,
	},
	InvalidParameter: {
		Message: "invalid parameter",
		Kind:    Parameter,
	},
	InvalidConfiguration: {
		Message: "invalid configuration",
		Kind:    Configuration,
	},
	InvalidPrincipalName: {
		Message: "invalid principal name",
		Kind:    Parameter,
	},
	MaxRetries: {
		Message: "too many retries",
		Kind:    Transaction,
	},
	ModuleAlreadyRegistered: {
		Message: "module already registered",
		Kind:    Parameter,
	},
	Internal: {
		Message: "internal error",
		Kind:    System,
	},
	Io: {
		Message: "io error",
		Kind:    System,
	},
	Encode: {
		Message: "encoding error",
		Kind:    Encoding,
	},
	CheckConstraint: {
		Message: "constraint check failed",
		Kind:    Integrity,
	},
	NotNull: {
		Message: "must not be empty (null) violation",
		Kind:    Integrity,
	},
	NotUnique: {
		Message: "must be unique violation",
		Kind:    Integrity,
	},
	RecordNotFound: {
		Message: "record not found",
		Kind:    Search,
	},
	MultipleRecords: {
		Message: "multiple records",
		Kind:    Search,
	},
}
