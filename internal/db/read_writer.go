// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-dbw"
	"github.com/hashicorp/xrealmauthz/internal/errors"
)

const (
	NoRowsAffected = 0

	// DefaultLimit is the default for search results when no limit is
	// specified via the WithLimit(...) option
	DefaultLimit = 10000

	// StdRetryCnt defines a standard retry count for transactions
	StdRetryCnt = 20
)

// Reader interface defines lookups/searching for resources
type Reader interface {
	// LookupById will lookup a resource by its primary key id, which must be
	// unique.  The resourceWithIder must implement either ResourcePublicIder
	// or ResourcePrivateIder interface.
	LookupById(ctx context.Context, resourceWithIder any, opt ...Option) error

	// LookupWhere will lookup and return the first resource using a where
	// clause with parameters.
	LookupWhere(ctx context.Context, resource any, where string, args []any, opt ...Option) error

	// SearchWhere will search for all the resources it can find using a where
	// clause with parameters.  Supports the WithLimit option.  If
	// WithLimit < 0, then unlimited results are returned.  If WithLimit == 0,
	// then default limits are used for results.  Supports the WithOrder
	// option.
	SearchWhere(ctx context.Context, resources any, where string, args []any, opt ...Option) error

	// Query will run the raw query and return the *sql.Rows results.  Query
	// will operate within the context of any ongoing transaction for the
	// db.Reader.  The caller must close the returned *sql.Rows.  Query can/
	// should be used in combination with ScanRows.
	Query(ctx context.Context, sql string, values []any, opt ...Option) (*sql.Rows, error)

	// ScanRows will scan sql rows into the interface provided
	ScanRows(rows *sql.Rows, result any) error
}

// Writer interface defines create, update and retryable transaction handlers
type Writer interface {
	// DoTx will wrap the TxHandler in a retryable transaction
	DoTx(ctx context.Context, retries uint, backOff Backoff, Handler TxHandler) (RetryInfo, error)

	// Update an object in the db, fieldMask is required and provides
	// field_mask.proto paths for fields that should be updated.  The i
	// interface parameter is the type the caller wants to update in the db
	// and its fields are set to the update values.  setToNullPaths is
	// optional and provides field_mask.proto paths for the fields that
	// should be set to null.  fieldMaskPaths and setToNullPaths must not
	// intersect.  Update returns the number of rows updated or an error.
	// Supported options: WithVersion and WithWhere.
	Update(ctx context.Context, i any, fieldMaskPaths []string, setToNullPaths []string, opt ...Option) (int, error)

	// Create an object in the db.  Supported options: WithLookup,
	// WithOnConflict and WithReturnRowsAffected.
	Create(ctx context.Context, i any, opt ...Option) error

	// CreateItems will create multiple items of the same type.  WithLookup
	// is not a supported option.
	CreateItems(ctx context.Context, createItems []any, opt ...Option) error

	// Delete an object in the db.  Delete returns the number of rows deleted
	// or an error.  Supported options: WithWhere.
	Delete(ctx context.Context, i any, opt ...Option) (int, error)

	// DeleteItems will delete multiple items of the same type.  DeleteItems
	// returns the number of rows deleted or an error.
	DeleteItems(ctx context.Context, deleteItems []any, opt ...Option) (int, error)

	// Exec will execute the sql with the values as parameters.  The int
	// returned is the number of rows affected by the sql.
	Exec(ctx context.Context, sql string, values []any, opt ...Option) (int, error)
}

// RetryInfo provides information on the retries of a transaction
type RetryInfo struct {
	Retries int
	Backoff time.Duration
}

// TxHandler defines a handler for a func that writes a transaction for use with DoTx
type TxHandler func(Reader, Writer) error

// ResourcePublicIder defines an interface that LookupById() can use to get the
// resource's public id.
type ResourcePublicIder interface {
	GetPublicId() string
}

// ResourcePrivateIder defines an interface that LookupById() can use to get the
// resource's private id.
type ResourcePrivateIder interface {
	GetPrivateId() string
}

// Db uses a dbw connection for read/write
type Db struct {
	underlying *DB
}

// ensure that Db implements the interfaces of: Reader and Writer
var (
	_ Reader = (*Db)(nil)
	_ Writer = (*Db)(nil)
)

func New(underlying *DB) *Db {
	return &Db{underlying: underlying}
}

// Exec will execute the sql with the values as parameters. The int returned
// is the number of rows affected by the sql.
func (rw *Db) Exec(ctx context.Context, sql string, values []any, opt ...Option) (int, error) {
	const op = "db.(Db).Exec"
	if rw.underlying == nil {
		return NoRowsAffected, errors.New(ctx, errors.InvalidParameter, op, "missing underlying db")
	}
	opts := GetOpts(opt...)
	rowsAffected, err := dbw.New(rw.underlying.wrapped.Load()).Exec(ctx, sql, values, dbwOptions(opts)...)
	if err != nil {
		return NoRowsAffected, wrapError(ctx, err, op)
	}
	return rowsAffected, nil
}

// Query will run the raw query and return the *sql.Rows results. Query will
// operate within the context of any ongoing transaction for the db.Reader.  The
// caller must close the returned *sql.Rows. Query can/should be used in
// combination with ScanRows.
func (rw *Db) Query(ctx context.Context, sql string, values []any, opt ...Option) (*sql.Rows, error) {
	const op = "db.(Db).Query"
	if rw.underlying == nil {
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing underlying db")
	}
	opts := GetOpts(opt...)
	rows, err := dbw.New(rw.underlying.wrapped.Load()).Query(ctx, sql, values, dbwOptions(opts)...)
	if err != nil {
		return nil, wrapError(ctx, err, op)
	}
	return rows, nil
}

// ScanRows will scan the rows into the interface
func (rw *Db) ScanRows(rows *sql.Rows, result any) error {
	const op = "db.(Db).ScanRows"
	if rw.underlying == nil {
		return errors.New(context.TODO(), errors.InvalidParameter, op, "missing underlying db")
	}
	if err := dbw.New(rw.underlying.wrapped.Load()).ScanRows(rows, result); err != nil {
		return wrapError(context.TODO(), err, op)
	}
	return nil
}

// Create an object in the db with options: WithLookup, WithOnConflict and
// WithReturnRowsAffected.  WithLookup will force a lookup after create.
func (rw *Db) Create(ctx context.Context, i any, opt ...Option) error {
	const op = "db.(Db).Create"
	if rw.underlying == nil {
		return errors.New(ctx, errors.InvalidParameter, op, "missing underlying db")
	}
	opts := GetOpts(opt...)
	if err := dbw.New(rw.underlying.wrapped.Load()).Create(ctx, i, dbwOptions(opts)...); err != nil {
		return wrapError(ctx, err, op)
	}
	return nil
}

// CreateItems will create multiple items of the same type.  WithLookup is not
// a supported option.
func (rw *Db) CreateItems(ctx context.Context, createItems []any, opt ...Option) error {
	const op = "db.(Db).CreateItems"
	if rw.underlying == nil {
		return errors.New(ctx, errors.InvalidParameter, op, "missing underlying db")
	}
	opts := GetOpts(opt...)
	if err := dbw.New(rw.underlying.wrapped.Load()).CreateItems(ctx, createItems, dbwOptions(opts)...); err != nil {
		return wrapError(ctx, err, op)
	}
	return nil
}

// Update an object in the db. fieldMaskPaths provides paths for fields that
// should be updated and setToNullPaths provides paths for the fields that
// should be set to null; they must not intersect. Update returns the number
// of rows updated. Supported options: WithVersion and WithWhere. If
// WithVersion is used, then the update will include the version number in the
// update where clause, which basically makes the update use optimistic
// locking and the update will only succeed if the existing rows version
// matches the WithVersion option.
func (rw *Db) Update(ctx context.Context, i any, fieldMaskPaths []string, setToNullPaths []string, opt ...Option) (int, error) {
	const op = "db.(Db).Update"
	if rw.underlying == nil {
		return NoRowsAffected, errors.New(ctx, errors.InvalidParameter, op, "missing underlying db")
	}
	opts := GetOpts(opt...)
	rowsUpdated, err := dbw.New(rw.underlying.wrapped.Load()).Update(ctx, i, fieldMaskPaths, setToNullPaths, dbwOptions(opts)...)
	if err != nil {
		return NoRowsAffected, wrapError(ctx, err, op)
	}
	return rowsUpdated, nil
}

// Delete an object in the db. Delete returns the number of rows deleted.
// Supported options: WithWhere.
func (rw *Db) Delete(ctx context.Context, i any, opt ...Option) (int, error) {
	const op = "db.(Db).Delete"
	if rw.underlying == nil {
		return NoRowsAffected, errors.New(ctx, errors.InvalidParameter, op, "missing underlying db")
	}
	opts := GetOpts(opt...)
	rowsDeleted, err := dbw.New(rw.underlying.wrapped.Load()).Delete(ctx, i, dbwOptions(opts)...)
	if err != nil {
		return NoRowsAffected, wrapError(ctx, err, op)
	}
	return rowsDeleted, nil
}

// DeleteItems will delete multiple items of the same type. DeleteItems
// returns the number of rows deleted.
func (rw *Db) DeleteItems(ctx context.Context, deleteItems []any, opt ...Option) (int, error) {
	const op = "db.(Db).DeleteItems"
	if rw.underlying == nil {
		return NoRowsAffected, errors.New(ctx, errors.InvalidParameter, op, "missing underlying db")
	}
	opts := GetOpts(opt...)
	rowsDeleted, err := dbw.New(rw.underlying.wrapped.Load()).DeleteItems(ctx, deleteItems, dbwOptions(opts)...)
	if err != nil {
		return NoRowsAffected, wrapError(ctx, err, op)
	}
	return rowsDeleted, nil
}

// DoTx will wrap the Handler func passed within a transaction with retries.
// You should ensure that any objects written to the db in your TxHandler are
// retryable, which means that the object may be sent to the db several times
// (retried), so things like the primary key must be reset before retry.
func (rw *Db) DoTx(ctx context.Context, retries uint, backOff Backoff, Handler TxHandler) (RetryInfo, error) {
	const op = "db.(Db).DoTx"
	if rw.underlying == nil {
		return RetryInfo{}, errors.New(ctx, errors.InvalidParameter, op, "missing underlying db")
	}
	if backOff == nil {
		return RetryInfo{}, errors.New(ctx, errors.InvalidParameter, op, "missing backoff")
	}
	if Handler == nil {
		return RetryInfo{}, errors.New(ctx, errors.InvalidParameter, op, "missing handler")
	}
	info := RetryInfo{}
	for attempts := uint(1); ; attempts++ {
		if attempts > retries+1 {
			return info, errors.New(ctx, errors.MaxRetries, op,
				fmt.Sprintf("too many retries: %d of %d", attempts-1, retries+1), errors.WithoutEvent())
		}

		beginTx, err := dbw.New(rw.underlying.wrapped.Load()).Begin(ctx)
		if err != nil {
			return info, wrapError(ctx, err, op)
		}
		newTxDb := &DB{wrapped: new(atomic.Pointer[dbw.DB])}
		newTxDb.wrapped.Store(beginTx.DB())
		newRW := New(newTxDb)

		if err := Handler(newRW, newRW); err != nil {
			if err := beginTx.Rollback(ctx); err != nil {
				return info, wrapError(ctx, err, op)
			}
			if retryable(err) {
				d := backOff.Duration(attempts)
				info.Retries++
				info.Backoff = info.Backoff + d
				select {
				case <-ctx.Done():
					return info, errors.Wrap(ctx, ctx.Err(), op, errors.WithoutEvent())
				case <-time.After(d):
					continue
				}
			}
			return info, wrapError(ctx, err, op, errors.WithoutEvent())
		}

		if err := beginTx.Commit(ctx); err != nil {
			if err := beginTx.Rollback(ctx); err != nil {
				return info, wrapError(ctx, err, op)
			}
			return info, wrapError(ctx, err, op)
		}
		return info, nil
	}
}

// LookupById will lookup a resource by its primary key id, which must be
// unique.  The resourceWithIder must implement either ResourcePublicIder or
// ResourcePrivateIder interface.
func (rw *Db) LookupById(ctx context.Context, resourceWithIder any, opt ...Option) error {
	const op = "db.(Db).LookupById"
	if rw.underlying == nil {
		return errors.New(ctx, errors.InvalidParameter, op, "missing underlying db")
	}
	opts := GetOpts(opt...)
	if err := dbw.New(rw.underlying.wrapped.Load()).LookupBy(ctx, resourceWithIder, dbwOptions(opts)...); err != nil {
		return wrapError(ctx, err, op)
	}
	return nil
}

// LookupWhere will lookup and return the first resource using a where clause
// with parameters.
func (rw *Db) LookupWhere(ctx context.Context, resource any, where string, args []any, opt ...Option) error {
	const op = "db.(Db).LookupWhere"
	if rw.underlying == nil {
		return errors.New(ctx, errors.InvalidParameter, op, "missing underlying db")
	}
	opts := GetOpts(opt...)
	if err := dbw.New(rw.underlying.wrapped.Load()).LookupWhere(ctx, resource, where, args, dbwOptions(opts)...); err != nil {
		return wrapError(ctx, err, op)
	}
	return nil
}

// SearchWhere will search for all the resources it can find using a where
// clause with parameters. Supports the WithLimit option.  If WithLimit < 0,
// then unlimited results are returned.  If WithLimit == 0, then default
// limits are used for results.  Supports the WithOrder option.
func (rw *Db) SearchWhere(ctx context.Context, resources any, where string, args []any, opt ...Option) error {
	const op = "db.(Db).SearchWhere"
	if rw.underlying == nil {
		return errors.New(ctx, errors.InvalidParameter, op, "missing underlying db")
	}
	opts := GetOpts(opt...)
	if err := dbw.New(rw.underlying.wrapped.Load()).SearchWhere(ctx, resources, where, args, dbwOptions(opts)...); err != nil {
		return wrapError(ctx, err, op)
	}
	return nil
}

// dbwOptions converts the db options into their dbw equivalents.
func dbwOptions(opts Options) []dbw.Option {
	dbwOpts := make([]dbw.Option, 0, 4)
	if opts.withLookup {
		dbwOpts = append(dbwOpts, dbw.WithLookup(opts.withLookup))
	}
	if opts.withLimit != 0 {
		dbwOpts = append(dbwOpts, dbw.WithLimit(opts.withLimit))
	}
	if opts.withOrder != "" {
		dbwOpts = append(dbwOpts, dbw.WithOrder(opts.withOrder))
	}
	if opts.withVersion != nil {
		dbwOpts = append(dbwOpts, dbw.WithVersion(opts.withVersion))
	}
	if opts.withSkipVetForWrite {
		dbwOpts = append(dbwOpts, dbw.WithSkipVetForWrite(opts.withSkipVetForWrite))
	}
	if opts.withWhereClause != "" {
		dbwOpts = append(dbwOpts, dbw.WithWhere(opts.withWhereClause, opts.withWhereClauseArgs...))
	}
	if opts.withOnConflict != nil {
		dbwOpts = append(dbwOpts, dbw.WithOnConflict(opts.withOnConflict))
	}
	if opts.withRowsAffected != nil {
		dbwOpts = append(dbwOpts, dbw.WithReturnRowsAffected(opts.withRowsAffected))
	}
	if opts.withDebug {
		dbwOpts = append(dbwOpts, dbw.WithDebug(opts.withDebug))
	}
	return dbwOpts
}

// retryable reports whether a failed transaction should be retried.  Both
// drivers surface contention as error strings: sqlite when the database is
// locked by another writer and postgres when a serializable transaction
// fails.
func retryable(err error) bool {
	if err == nil {
		return false
	}
	for _, s := range []string{
		"database is locked",
		"database table is locked",
		"SQLSTATE 40001",
	} {
		if strings.Contains(err.Error(), s) {
			return true
		}
	}
	return false
}

// wrapError converts a dbw error into a domain error.  Not found results are
// an expected outcome of authorization lookups, so they don't emit error
// events.
func wrapError(ctx context.Context, err error, op errors.Op, opt ...errors.Option) error {
	if errors.Is(err, dbw.ErrRecordNotFound) {
		opt = append(opt, errors.WithoutEvent())
	}
	return errors.Wrap(ctx, err, op, opt...)
}
