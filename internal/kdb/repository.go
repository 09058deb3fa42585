// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package kdb

import (
	"context"
	"time"

	"github.com/hashicorp/xrealmauthz/internal/db"
	"github.com/hashicorp/xrealmauthz/internal/errors"
	"github.com/hashicorp/xrealmauthz/internal/util"
)

// PrincipalEntryPrefix is the id prefix for principal entries.
const PrincipalEntryPrefix = "kpe"

// Repository provides access to principal entries and their string
// attributes.
type Repository struct {
	rw *db.Db
}

func NewRepository(ctx context.Context, s *Store) (*Repository, error) {
	const op = "kdb.NewRepository"
	if util.IsNil(s) {
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing store")
	}
	return &Repository{rw: db.New(s.conn)}, nil
}

// CreatePrincipal adds a principal entry for the given name. The name
// is stored exactly as provided; callers render principal names before
// storing them.
func (r *Repository) CreatePrincipal(ctx context.Context, name string) (*PrincipalEntry, error) {
	const op = "kdb.(Repository).CreatePrincipal"
	if name == "" {
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing principal name")
	}
	id, err := db.NewPrivateId(ctx, PrincipalEntryPrefix)
	if err != nil {
		return nil, errors.Wrap(ctx, err, op)
	}
	entry := &PrincipalEntry{
		PrivateId:     id,
		PrincipalName: name,
	}
	if err := r.rw.Create(ctx, entry); err != nil {
		return nil, errors.Wrap(ctx, err, op)
	}
	return entry, nil
}

// LookupPrincipal returns the entry for the given principal name along
// with its attributes, or nil if no entry exists. The name must match
// the stored name exactly.
func (r *Repository) LookupPrincipal(ctx context.Context, name string) (*PrincipalEntry, error) {
	const op = "kdb.(Repository).LookupPrincipal"
	if name == "" {
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing principal name")
	}
	entry := &PrincipalEntry{}
	if err := r.rw.LookupWhere(ctx, entry, "principal_name = ?", []any{name}); err != nil {
		if errors.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, errors.Wrap(ctx, err, op)
	}
	attrs, err := listAttributes(ctx, r.rw, entry.PrivateId)
	if err != nil {
		return nil, errors.Wrap(ctx, err, op)
	}
	entry.Attributes = attrs
	return entry, nil
}

// DeletePrincipal removes the entry for the given principal name and,
// through the schema's cascade, all of its attributes.
func (r *Repository) DeletePrincipal(ctx context.Context, name string) error {
	const op = "kdb.(Repository).DeletePrincipal"
	if name == "" {
		return errors.New(ctx, errors.InvalidParameter, op, "missing principal name")
	}
	// TODO(https://github.com/go-gorm/gorm/issues/4879): use rw.Delete
	// once the sqlite driver builds the delete statement correctly;
	// until then execute the query directly.
	n, err := r.rw.Exec(ctx, "delete from kdb_principal_entry where principal_name = ?", []any{name})
	if err != nil {
		return errors.Wrap(ctx, err, op)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return errors.New(ctx, errors.RecordNotFound, op, "principal not found when attempting deletion")
	default:
		return errors.New(ctx, errors.MultipleRecords, op, "multiple principals deleted when one was requested")
	}
}

// ListPrincipals returns all principal entries, ordered by name.
// Attributes are not loaded.
func (r *Repository) ListPrincipals(ctx context.Context) ([]*PrincipalEntry, error) {
	const op = "kdb.(Repository).ListPrincipals"
	var entries []*PrincipalEntry
	if err := r.rw.SearchWhere(ctx, &entries, "", nil, db.WithLimit(-1), db.WithOrder("principal_name")); err != nil {
		return nil, errors.Wrap(ctx, err, op)
	}
	return entries, nil
}

// PrincipalEntry is a principal known to the KDC database. Attributes
// holds the entry's string attributes once loaded by LookupPrincipal;
// it is not read or written by the db layer directly.
type PrincipalEntry struct {
	PrivateId     string `gorm:"primaryKey"`
	PrincipalName string
	CreateTime    time.Time `gorm:"default:(strftime('%Y-%m-%d %H:%M:%f','now'))"`
	UpdateTime    time.Time `gorm:"default:(strftime('%Y-%m-%d %H:%M:%f','now'))"`

	Attributes []*PrincipalAttribute `gorm:"-"`
}

func (*PrincipalEntry) TableName() string {
	return "kdb_principal_entry"
}

// GetPrivateId satisfies the db layer's private id accessor.
func (e *PrincipalEntry) GetPrivateId() string {
	return e.PrivateId
}

// HasAttribute reports whether the loaded entry carries an attribute
// with the given name. The check is an exact, case-sensitive match
// against the attributes fetched with the entry; it never goes back to
// the database.
func (e *PrincipalEntry) HasAttribute(ctx context.Context, name string) (bool, error) {
	const op = "kdb.(PrincipalEntry).HasAttribute"
	if name == "" {
		return false, errors.New(ctx, errors.InvalidParameter, op, "missing attribute name")
	}
	for _, a := range e.Attributes {
		if a.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (e *PrincipalEntry) clone() *PrincipalEntry {
	ret := &PrincipalEntry{
		PrivateId:     e.PrivateId,
		PrincipalName: e.PrincipalName,
		CreateTime:    e.CreateTime,
		UpdateTime:    e.UpdateTime,
	}
	for _, a := range e.Attributes {
		ret.Attributes = append(ret.Attributes, a.clone())
	}
	return ret
}
