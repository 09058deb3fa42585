// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package event

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-bexpr"
)

type filter struct {
	raw  string
	eval *bexpr.Evaluator
}

// newFilter returns a filter which can be matched against.
func newFilter(f string) (*filter, error) {
	const op = "event.newFilter"
	if f == "" {
		return nil, fmt.Errorf("%s: missing filter: %w", op, ErrInvalidParameter)
	}
	e, err := bexpr.CreateEvaluator(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &filter{eval: e, raw: f}, nil
}

// Match returns if the provided interface matches the filter. If the filter
// does not match the structure of the object being Matched, false is returned.
func (f *filter) Match(item any) bool {
	if f.eval == nil {
		return true
	}
	m, err := f.eval.Evaluate(item)
	// There isn't a clear way to differentiate between a JSON Pointer which
	// doesn't represent the structure of the object being Matched and a JSON
	// Pointer which references a field which is part of a sub structure that
	// is nil in this item. Because of this, any filter which would result in
	// an error using the underlying library is simply interpreted as not a
	// match.
	return err == nil && m
}

// newPredicate builds a predicate from the optional allow and deny filters.
// Deny filters are applied first and if any match the event is excluded.  The
// allow filters are applied after the denies and if any match the event is
// included.
func newPredicate(allow, deny []*filter) func(ctx context.Context, i any) (bool, error) {
	return func(ctx context.Context, i any) (bool, error) {
		if len(allow) == 0 && len(deny) == 0 {
			return true, nil
		}
		for _, f := range deny {
			if f.Match(i) {
				return false, nil
			}
		}
		switch {
		case len(allow) > 0:
			for _, f := range allow {
				if f.Match(i) {
					return true, nil
				}
			}
			return false, nil
		default:
			return true, nil
		}
	}
}
