// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package errors

// Convenience errors which can be used as targets for the std errors.Is().
// Domain code should prefer Match() with a Template, which can match on any
// combination of Err fields.
var (
	// ErrInvalidParameter is an invalid parameter error
	ErrInvalidParameter = &Err{Code: InvalidParameter, Msg: "invalid parameter"}

	// ErrInvalidPrincipalName is an invalid principal name error
	ErrInvalidPrincipalName = &Err{Code: InvalidPrincipalName, Msg: "invalid principal name"}

	// ErrInternal is an internal error
	ErrInternal = &Err{Code: Internal, Msg: "internal error"}

	// ErrRecordNotFound is a not found record error
	ErrRecordNotFound = &Err{Code: RecordNotFound, Msg: "record not found"}

	// ErrNotUnique is a not unique error
	ErrNotUnique = &Err{Code: NotUnique, Msg: "unique constraint violation"}
)
