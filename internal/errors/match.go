// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package errors

// Template is useful for constructing Match templates.  A Template can match
// on any combination of an Err's Code, Msg, Op, Kind and Wrapped error.
type Template struct {
	Err       // Err embedded to support matching Errs
	Kind Kind // Kind allows matching on a Kind without a specific Code
}

// T creates a new Template for matching Errs.  Invalid parameters are
// ignored.
func T(args ...any) *Template {
	t := &Template{}
	for _, a := range args {
		switch arg := a.(type) {
		case Code:
			t.Code = arg
		case string:
			t.Msg = arg
		case Op:
			t.Op = arg
		case *Err:
			c := *arg
			t.Err = c
		case error:
			t.Err.Wrapped = arg
		case Kind:
			t.Kind = arg
		}
	}
	return t
}

// Error satisfies the error interface but we intentionally don't return
// anything of value, in an effort to stop users from substituting Templates
// in place of Errs, when creating domain errors.
func (t *Template) Error() string {
	return "Template error"
}

// Match the template against the error.  The error must be a *Err, or wrap a
// *Err, otherwise match will return false.  Matches all non-empty fields of
// the template against the error.
func Match(t *Template, err error) bool {
	if t == nil || err == nil {
		return false
	}

	var e *Err
	if !As(err, &e) {
		return false
	}

	if t.Code != Unknown && t.Code != e.Code {
		return false
	}
	if t.Msg != "" && t.Msg != e.Msg {
		return false
	}
	if t.Op != "" && t.Op != e.Op {
		return false
	}
	if t.Kind != Other && e.Info().Kind != t.Kind {
		return false
	}
	if t.Wrapped != nil {
		if wrappedT, ok := t.Wrapped.(*Template); ok {
			return Match(wrappedT, e.Wrapped)
		}
		if e.Wrapped == nil || t.Wrapped.Error() != e.Wrapped.Error() {
			return false
		}
	}
	return true
}
