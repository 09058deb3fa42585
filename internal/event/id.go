// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package event

import (
	"fmt"

	"github.com/hashicorp/go-secure-stdlib/base62"
)

const IdPrefix = "e"

// NewId creates a new id with the provided prefix.  Ids are generated here
// rather than via the db package, which would create a circular dependency
// with the errors package.
func NewId(prefix string) (string, error) {
	const op = "event.newId"
	if prefix == "" {
		return "", fmt.Errorf("%s: missing prefix: %w", op, ErrInvalidParameter)
	}
	var publicId string
	var err error

	publicId, err = base62.Random(10)
	if err != nil {
		return "", fmt.Errorf("%s: unable to generate id %v: %w", op, err, ErrIo)
	}
	return fmt.Sprintf("%s_%s", prefix, publicId), nil
}
