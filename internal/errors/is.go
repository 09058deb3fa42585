// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package errors

import (
	"strings"
)

// IsUniqueError returns a boolean indicating whether the error is known to
// report a "unique constraint violation" error.
func IsUniqueError(err error) bool {
	if err == nil {
		return false
	}

	var domainErr *Err
	if As(err, &domainErr) {
		if domainErr.Code == NotUnique {
			return true
		}
	}

	return false
}

// IsCheckConstraintError returns a boolean indicating whether the error is
// known to report a "check constraint" violation.
func IsCheckConstraintError(err error) bool {
	if err == nil {
		return false
	}

	var domainErr *Err
	if As(err, &domainErr) {
		if domainErr.Code == CheckConstraint {
			return true
		}
	}

	return false
}

// IsNotNullError returns a boolean indicating whether the error is known to
// report a "not null" violation.
func IsNotNullError(err error) bool {
	if err == nil {
		return false
	}

	var domainErr *Err
	if As(err, &domainErr) {
		if domainErr.Code == NotNull {
			return true
		}
	}

	return false
}

// IsNotFoundError returns a boolean indicating whether the error is known to
// report a "record not found" error.
func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	var domainErr *Err
	if As(err, &domainErr) {
		if domainErr.Code == RecordNotFound {
			return true
		}
	}

	return false
}

// IsMissingTableError returns a boolean indicating whether the error is known
// to report a missing table, which most often means the store's schema has
// not been initialized.
func IsMissingTableError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "no such table")
}
