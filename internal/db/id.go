// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package db

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-secure-stdlib/base62"
	"github.com/hashicorp/xrealmauthz/internal/errors"
	"golang.org/x/crypto/blake2b"
)

// NewPrivateId creates a new random id with the prefix.  The WithPrngValues
// option is supported, which seeds the id generation so it's deterministic
// for the given values.
func NewPrivateId(ctx context.Context, prefix string, opt ...Option) (string, error) {
	const op = "db.NewPrivateId"
	if prefix == "" {
		return "", errors.New(ctx, errors.InvalidParameter, op, "missing prefix")
	}
	var id string
	var err error
	opts := GetOpts(opt...)
	if len(opts.withPrngValues) > 0 {
		sum := blake2b.Sum256([]byte(strings.Join(opts.withPrngValues, "|")))
		reader := bytes.NewReader(sum[0:])
		id, err = base62.RandomWithReader(10, reader)
	} else {
		id, err = base62.Random(10)
	}
	if err != nil {
		return "", errors.Wrap(ctx, err, op, errors.WithMsg("unable to generate id"), errors.WithCode(errors.Io))
	}
	return fmt.Sprintf("%s_%s", prefix, id), nil
}
