// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/hashicorp/go-dbw"
	"github.com/hashicorp/xrealmauthz/internal/errors"
	"gorm.io/driver/postgres"
)

// DbType defines a database type.
type DbType int

const (
	// UnknownDB is an unknown db type
	UnknownDB DbType = 0

	// Postgres is a postgres db type
	Postgres DbType = 1

	// Sqlite is a sqlite db type
	Sqlite DbType = 2
)

// String provides a string rep of the DbType.
func (db DbType) String() string {
	return [...]string{
		"unknown",
		"postgres",
		"sqlite",
	}[db]
}

// StringToDbType provides a string to type conversion.  If the type is
// unknown, then UnknownDB and an error are returned.
func StringToDbType(dialect string) (DbType, error) {
	switch dialect {
	case "postgres":
		return Postgres, nil
	case "sqlite":
		return Sqlite, nil
	default:
		return UnknownDB, fmt.Errorf("%s is an unknown dialect", dialect)
	}
}

// DB is a wrapper around the ORM.  The wrapped connection is held behind an
// atomic pointer so a *DB handed out to repositories stays valid if the
// underlying connection is ever swapped.
type DB struct {
	wrapped *atomic.Pointer[dbw.DB]
}

// Debug will enable/disable debug info for the connection.
func (d *DB) Debug(on bool) {
	d.wrapped.Load().Debug(on)
}

// SqlDB returns the underlying sql.DB.  Note: this makes it possible to do
// things like set database/sql connection options like SetMaxIdleConns.  If
// you're simply setting max open connections, then you should use the
// WithMaxOpenConnections option when "opening" the database.
func (d *DB) SqlDB(ctx context.Context) (*sql.DB, error) {
	const op = "db.(DB).SqlDB"
	if d.wrapped == nil {
		return nil, errors.New(ctx, errors.Internal, op, "missing underlying database")
	}
	return d.wrapped.Load().SqlDB(ctx)
}

// Close the underlying sql.DB.
//
// Note: Consider if you need to call Close() on the returned DB.  Typically
// the answer is no, but there are occasions when it's necessary.  See the
// sql.DB docs for more information.
func (d *DB) Close(ctx context.Context) error {
	const op = "db.(DB).Close"
	if d.wrapped == nil {
		return errors.New(ctx, errors.Internal, op, "missing underlying database")
	}
	if err := d.wrapped.Load().Close(ctx); err != nil {
		return errors.Wrap(ctx, err, op)
	}
	return nil
}

// Open a database connection which is long-lived.  The options of
// WithGormFormatter, WithMaxOpenConnections and WithDebug are supported.
func Open(ctx context.Context, dbType DbType, connectionUrl string, opt ...Option) (*DB, error) {
	const op = "db.Open"
	if connectionUrl == "" {
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing connection url")
	}
	var dialect dbw.Dialector
	switch dbType {
	case Postgres:
		dialect = postgres.New(postgres.Config{
			DSN: connectionUrl,
		})
	case Sqlite:
		dialect = sqliteOpen(connectionUrl)
	default:
		return nil, errors.New(ctx, errors.InvalidParameter, op, fmt.Sprintf("unable to open %s database type", dbType))
	}

	opts := GetOpts(opt...)
	var dbwOpts []dbw.Option
	if opts.withGormFormatter != nil {
		dbwOpts = append(dbwOpts, dbw.WithLogger(opts.withGormFormatter))
	}
	if opts.withMaxOpenConnections > 0 {
		dbwOpts = append(dbwOpts, dbw.WithMaxOpenConnections(opts.withMaxOpenConnections))
	}

	wrapped, err := dbw.OpenWith(dialect, dbwOpts...)
	if err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithMsg("unable to open %s database", dbType))
	}
	if opts.withDebug {
		wrapped.Debug(true)
	}

	ret := &DB{wrapped: new(atomic.Pointer[dbw.DB])}
	ret.wrapped.Store(wrapped)
	return ret, nil
}
