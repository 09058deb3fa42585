// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-dbw"
	"github.com/hashicorp/xrealmauthz/internal/event"
)

// Op describes an operation (package.function or package.(Type).method) that
// is raising/propagating an error.
type Op string

// Err provides the ability to specify a Msg, Op, Code and Wrapped error.
// We've chosen Err over Error for the identifier to support the easy embedding
// of Errs.  Errs can be embedded without a conflict between the embedded Err
// and Err.Error().
type Err struct {
	// Code is the error's code, which can be used to get the error's
	// errorCodeInfo, which contains the error's Kind and Message
	Code Code

	// Msg for the error
	Msg string

	// Op represents the operation raising/propagating an error and is optional.
	Op Op

	// Wrapped is the error which this Err wraps and will be nil if there's no
	// error to wrap.
	Wrapped error
}

// E creates a new Err with provided code and supports the options of:
//
// * WithOp() - allows you to specify an optional Op (operation).
//
// * WithMsg() - allows you to specify an optional error msg, if the default
// msg for the error Code is not sufficient.
//
// * WithWrap() - allows you to specify an error to wrap.  If the wrapped error
// is an Err, and its Code is set, then the new error will inherit that Code
// unless one is explicitly provided.
//
// * WithCode() - allows you to specify an optional Code; this code will be
// prioritized over a code used from WithWrap().
//
// * WithoutEvent - allows you to specify that no error event should be
// emitted.
//
// Unless WithoutEvent is provided, E will emit an error event via
// event.WriteError; if no eventer is available the event is dropped (the
// error itself is still returned to the caller).
func E(ctx context.Context, opt ...Option) error {
	opts := GetOpts(opt...)
	var code Code
	if opts.withErrCode != nil {
		code = *opts.withErrCode
	}
	err := &Err{
		Code:    code,
		Op:      opts.withOp,
		Msg:     opts.withErrMsg,
		Wrapped: opts.withErrWrapped,
	}
	if opts.withErrCode == nil {
		// try to inherit the code from the wrapped error
		var wrappedErr *Err
		if As(opts.withErrWrapped, &wrappedErr) {
			err.Code = wrappedErr.Code
		}
	}
	if !opts.withoutEvent {
		event.WriteError(ctx, event.Op(opts.withOp), err)
	}
	return err
}

// New creates a new Err with provided code, op and msg.  It supports the
// options of WithWrap() and WithoutEvent; see E() for how they're handled.
func New(ctx context.Context, c Code, op Op, msg string, opt ...Option) error {
	opt = append(opt, WithOp(op))
	opt = append(opt, WithMsg(msg))
	opt = append(opt, WithCode(c))
	return E(ctx, opt...)
}

// Wrap creates a new Err from the provided err and op.  If the wrapped err is
// not an Err it will be converted (see Convert) into one with a best-effort
// Code.  It supports the options of WithMsg(), WithCode() and WithoutEvent;
// see E() for how they're handled.
func Wrap(ctx context.Context, e error, op Op, opt ...Option) error {
	opt = append(opt, WithOp(op))
	err := Convert(e)
	if err != nil {
		// wrap the converted error, which is already an *Err
		e = err
	}
	opt = append(opt, WithWrap(e))
	return E(ctx, opt...)
}

// Convert converts the error to an *Err with a best-effort matching Code (if
// that's not possible, it just returns nil).  Database errors raised by the
// sqlite backed store arrive as wrapped sentinels from go-dbw or as driver
// messages; both are mapped to their domain codes here.
func Convert(e error) *Err {
	if e == nil {
		return nil
	}

	var alreadyConverted *Err
	if As(e, &alreadyConverted) {
		return alreadyConverted
	}

	if code, ok := matchKnown(e); ok {
		return &Err{
			Code:    code,
			Msg:     e.Error(),
			Wrapped: e,
		}
	}
	// unfortunately, we can't help.
	return nil
}

// matchKnown maps well-known store/db errors to a Code.
func matchKnown(e error) (Code, bool) {
	switch {
	case Is(e, dbw.ErrInvalidParameter), Is(e, dbw.ErrInvalidFieldMask):
		return InvalidParameter, true
	case Is(e, dbw.ErrMaxRetries):
		return MaxRetries, true
	case Is(e, dbw.ErrInternal):
		return Internal, true
	case Is(e, dbw.ErrRecordNotFound):
		return RecordNotFound, true
	case strings.Contains(e.Error(), "record not found"):
		return RecordNotFound, true
	case strings.Contains(e.Error(), "UNIQUE constraint failed"):
		return NotUnique, true
	case strings.Contains(e.Error(), "NOT NULL constraint failed"):
		return NotNull, true
	case strings.Contains(e.Error(), "CHECK constraint failed"):
		return CheckConstraint, true
	case strings.Contains(e.Error(), "FOREIGN KEY constraint failed"):
		return CheckConstraint, true
	}
	return Unknown, false
}

// Info about the Err
func (e *Err) Info() Info {
	if e == nil {
		return errorCodeInfo[Unknown]
	}
	return e.Code.Info()
}

// Error satisfies the error interface and returns a string representation of
// the Err
func (e *Err) Error() string {
	if e == nil {
		return ""
	}
	var msgs []string

	if e.Op != "" {
		msgs = append(msgs, string(e.Op))
	}
	if e.Msg != "" {
		msgs = append(msgs, e.Msg)
	}

	// since there's no msg, let's try the err's code info...
	if e.Msg == "" && e.Code != Unknown {
		if info, ok := errorCodeInfo[e.Code]; ok {
			msgs = append(msgs, info.Message, info.Kind.String())
		}
	}
	if e.Code != Unknown {
		msgs = append(msgs, fmt.Sprintf("error #%d", e.Code))
	}

	if e.Wrapped != nil {
		msgs = append(msgs, e.Wrapped.Error())
	}

	if len(msgs) == 0 {
		msgs = append(msgs, "unknown")
	}
	return strings.Join(msgs, ": ")
}

// Unwrap implements the errors.Unwrap interface and allows callers to use the
// errors.Is() and errors.As() functions effectively for any wrapped errors.
func (e *Err) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Wrapped
}

// Is is the equivalent of the std errors.Is, and allows devs to only import
// this package for the capability.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As is the equivalent of the std errors.As, and allows devs to only import
// this package for the capability.
func As(err error, target any) bool {
	if err == nil {
		return false
	}
	return stderrors.As(err, target)
}
