// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package kdb

import (
	"context"
	"time"

	"github.com/hashicorp/xrealmauthz/internal/db"
	"github.com/hashicorp/xrealmauthz/internal/errors"
)

// SetAttribute sets a string attribute on a principal entry, replacing
// the value if the attribute is already present. An empty value is
// valid: authorization grants are presence-only and conventionally
// store "".
func (r *Repository) SetAttribute(ctx context.Context, principalId, name, value string) (*PrincipalAttribute, error) {
	const op = "kdb.(Repository).SetAttribute"
	switch {
	case principalId == "":
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing principal id")
	case name == "":
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing attribute name")
	}
	attr := &PrincipalAttribute{
		PrincipalId: principalId,
		Name:        name,
		Value:       value,
	}
	onConflict := &db.OnConflict{
		Target: db.Columns{"principal_id", "name"},
		Action: db.SetColumns([]string{"value"}),
	}
	if err := r.rw.Create(ctx, attr, db.WithOnConflict(onConflict)); err != nil {
		return nil, errors.Wrap(ctx, err, op)
	}
	return attr, nil
}

// DeleteAttribute removes a string attribute from a principal entry.
func (r *Repository) DeleteAttribute(ctx context.Context, principalId, name string) error {
	const op = "kdb.(Repository).DeleteAttribute"
	switch {
	case principalId == "":
		return errors.New(ctx, errors.InvalidParameter, op, "missing principal id")
	case name == "":
		return errors.New(ctx, errors.InvalidParameter, op, "missing attribute name")
	}
	n, err := r.rw.Exec(ctx, "delete from kdb_principal_attribute where (principal_id, name) in (values (?, ?))",
		[]any{principalId, name})
	if err != nil {
		return errors.Wrap(ctx, err, op)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return errors.New(ctx, errors.RecordNotFound, op, "attribute not found when attempting deletion")
	default:
		return errors.New(ctx, errors.MultipleRecords, op, "multiple attributes deleted when one was requested")
	}
}

// ListAttributes returns all string attributes of a principal entry,
// ordered by name.
func (r *Repository) ListAttributes(ctx context.Context, principalId string) ([]*PrincipalAttribute, error) {
	const op = "kdb.(Repository).ListAttributes"
	if principalId == "" {
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing principal id")
	}
	attrs, err := listAttributes(ctx, r.rw, principalId)
	if err != nil {
		return nil, errors.Wrap(ctx, err, op)
	}
	return attrs, nil
}

// HasAttribute reports whether a principal entry carries an attribute
// with the given name, directly against the database. Absence is a
// false result, not an error; an error means the check itself failed.
func (r *Repository) HasAttribute(ctx context.Context, principalId, name string) (bool, error) {
	const op = "kdb.(Repository).HasAttribute"
	switch {
	case principalId == "":
		return false, errors.New(ctx, errors.InvalidParameter, op, "missing principal id")
	case name == "":
		return false, errors.New(ctx, errors.InvalidParameter, op, "missing attribute name")
	}
	var attrs []*PrincipalAttribute
	if err := r.rw.SearchWhere(ctx, &attrs, "principal_id = ? and name = ?", []any{principalId, name}, db.WithLimit(1)); err != nil {
		return false, errors.Wrap(ctx, err, op)
	}
	return len(attrs) > 0, nil
}

func listAttributes(ctx context.Context, reader db.Reader, principalId string) ([]*PrincipalAttribute, error) {
	const op = "kdb.listAttributes"
	var attrs []*PrincipalAttribute
	if err := reader.SearchWhere(ctx, &attrs, "principal_id = ?", []any{principalId}, db.WithLimit(-1), db.WithOrder("name")); err != nil {
		return nil, errors.Wrap(ctx, err, op)
	}
	return attrs, nil
}

// PrincipalAttribute is a string attribute attached to a principal
// entry. The pair (PrincipalId, Name) is unique; for authorization
// grants the row's existence is the grant and Value is "".
type PrincipalAttribute struct {
	PrincipalId string `gorm:"primaryKey"`
	Name        string `gorm:"primaryKey"`
	Value       string
	CreateTime  time.Time `gorm:"default:(strftime('%Y-%m-%d %H:%M:%f','now'))"`
}

func (*PrincipalAttribute) TableName() string {
	return "kdb_principal_attribute"
}

func (a *PrincipalAttribute) clone() *PrincipalAttribute {
	return &PrincipalAttribute{
		PrincipalId: a.PrincipalId,
		Name:        a.Name,
		Value:       a.Value,
		CreateTime:  a.CreateTime,
	}
}
