// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package event

import (
	"errors"
)

// The event package uses its own stdlib sentinel errors, rather than the
// domain errors package, to avoid an import cycle (the domain errors package
// emits error events).
var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrMaxRetries       = errors.New("too many retries")
	ErrIo               = errors.New("error during io operation")
	ErrRecordNotFound   = errors.New("record not found")
)
