// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package db

import (
	"github.com/hashicorp/go-dbw"
	"github.com/hashicorp/go-hclog"
)

// GetOpts - iterate the inbound Options and return a struct
func GetOpts(opt ...Option) Options {
	opts := getDefaultOptions()
	for _, o := range opt {
		o(&opts)
	}
	return opts
}

// Option - how Options are passed as arguments
type Option func(*Options)

// Options - how Options are represented
type Options struct {
	withLookup             bool
	withLimit              int
	withOrder              string
	withVersion            *uint32
	withSkipVetForWrite    bool
	withWhereClause        string
	withWhereClauseArgs    []any
	withOnConflict         *OnConflict
	withRowsAffected       *int64
	withDebug              bool
	withGormFormatter      hclog.Logger
	withMaxOpenConnections int
	withPrngValues         []string
}

func getDefaultOptions() Options {
	return Options{}
}

// Columns defines a set of column names
type Columns = dbw.Columns

// ColumnValue defines a column and it's assigned value
type ColumnValue = dbw.ColumnValue

// Constraint defines a db constraint name
type Constraint = dbw.Constraint

// DoNothing defines an "on conflict" action of doing nothing
type DoNothing = dbw.DoNothing

// UpdateAll defines an "on conflict" action of updating all the columns using
// the proposed insert column values
type UpdateAll = dbw.UpdateAll

// OnConflict specifies how to handle alternative actions to take when an
// insert results in a unique constraint or exclusion constraint error
type OnConflict = dbw.OnConflict

// SetColumns defines a list of column (names) to update using the set of
// proposed insert columns during an on conflict update
func SetColumns(names []string) []ColumnValue {
	return dbw.SetColumns(names)
}

// SetColumnValues defines a set of column assignments to update during an on
// conflict update
func SetColumnValues(columnValues map[string]any) []ColumnValue {
	return dbw.SetColumnValues(columnValues)
}

// WithLookup enables a lookup after a write operation
func WithLookup(enable bool) Option {
	return func(o *Options) {
		o.withLookup = enable
	}
}

// WithLimit provides an option to provide a limit.  Intentionally allowing
// negative integers.   If WithLimit < 0, then unlimited results are returned.
// If WithLimit == 0, then default limits are used for results.
func WithLimit(limit int) Option {
	return func(o *Options) {
		o.withLimit = limit
	}
}

// WithOrder provides an option to provide an order when searching
func WithOrder(order string) Option {
	return func(o *Options) {
		o.withOrder = order
	}
}

// WithVersion provides an option version number for update operations.  The
// update will only succeed if the existing row's version matches.
func WithVersion(version *uint32) Option {
	return func(o *Options) {
		o.withVersion = version
	}
}

// WithSkipVetForWrite provides an option to skip vet checks for write
// operations, which repositories use when the check has already been done
// within the same transaction.
func WithSkipVetForWrite(enable bool) Option {
	return func(o *Options) {
		o.withSkipVetForWrite = enable
	}
}

// WithWhere provides an option to provide a where clause with arguments for an
// operation.
func WithWhere(whereClause string, args ...any) Option {
	return func(o *Options) {
		o.withWhereClause = whereClause
		o.withWhereClauseArgs = append(o.withWhereClauseArgs, args...)
	}
}

// WithOnConflict specifies an optional on conflict criteria which specify
// alternative actions to take when an insert results in a unique constraint or
// exclusion constraint error
func WithOnConflict(onConflict *OnConflict) Option {
	return func(o *Options) {
		o.withOnConflict = onConflict
	}
}

// WithReturnRowsAffected specifies an option for returning the rows affected
// by an operation
func WithReturnRowsAffected(rowsAffected *int64) Option {
	return func(o *Options) {
		o.withRowsAffected = rowsAffected
	}
}

// WithDebug specifies the given operation should invoke debug output mode
func WithDebug(with bool) Option {
	return func(o *Options) {
		o.withDebug = with
	}
}

// WithGormFormatter specifies an optional hclog to use for gorm's log
// formatter
func WithGormFormatter(l hclog.Logger) Option {
	return func(o *Options) {
		o.withGormFormatter = l
	}
}

// WithMaxOpenConnections specifies an optional max open connections for the
// database
func WithMaxOpenConnections(max int) Option {
	return func(o *Options) {
		o.withMaxOpenConnections = max
	}
}

// WithPrngValues provides an option to provide values to seed an PRNG when
// generating IDs
func WithPrngValues(withPrngValues []string) Option {
	return func(o *Options) {
		o.withPrngValues = withPrngValues
	}
}
