// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

// Package kdb implements the KDC principal database consulted by the
// cross-realm authorization policy: principal entries plus their string
// attributes, backed by sqlite.
package kdb

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/hashicorp/xrealmauthz/internal/db"
	"github.com/hashicorp/xrealmauthz/internal/errors"
)

//go:embed schema.sql
var kdbSchema string

// DefaultStoreUrl uses a temp in-memory sqlite database see: https://www.sqlite.org/inmemorydb.html
const DefaultStoreUrl = "file::memory:?_pragma=foreign_keys(1)"

type Store struct {
	conn *db.DB
}

// Open creates the principal store, applying the schema if it isn't
// already present. With no options an in-memory sqlite database is
// used; WithUrl points the store at a file.
func Open(ctx context.Context, opt ...Option) (*Store, error) {
	const op = "kdb.Open"
	opts, err := getOpts(opt...)
	if err != nil {
		return nil, errors.Wrap(ctx, err, op)
	}
	var url string
	switch {
	case opts.withUrl != "":
		url = opts.withUrl
	default:
		url = DefaultStoreUrl
	}
	switch opts.withDbType {
	case db.Sqlite:
		underlying, err := db.Open(ctx, db.Sqlite, url)
		if err != nil {
			return nil, errors.Wrap(ctx, err, op)
		}
		s := &Store{conn: underlying}
		s.conn.Debug(opts.withDebug)
		if err := s.createTables(ctx); err != nil {
			return nil, errors.Wrap(ctx, err, op)
		}
		return s, nil
	default:
		return nil, errors.New(ctx, errors.InvalidParameter, op, fmt.Sprintf("%q is not a supported principal store type", opts.withDbType))
	}
}

// Close releases the underlying database connection.
func (s *Store) Close(ctx context.Context) error {
	const op = "kdb.(Store).Close"
	if err := s.conn.Close(ctx); err != nil {
		return errors.Wrap(ctx, err, op)
	}
	return nil
}

func (s *Store) createTables(ctx context.Context) error {
	const op = "kdb.(Store).createTables"
	rw := db.New(s.conn)
	if _, err := rw.Exec(ctx, kdbSchema, nil); err != nil {
		return errors.Wrap(ctx, err, op)
	}
	return nil
}
