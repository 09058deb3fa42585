// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package errors

import "fmt"

// GetOpts - iterate the inbound Options and return a struct.
func GetOpts(opt ...Option) Options {
	opts := getDefaultOptions()
	for _, o := range opt {
		if o != nil {
			o(&opts)
		}
	}
	return opts
}

// Option - how Options are passed as arguments.
type Option func(*Options)

// Options - how Options are represented.
type Options struct {
	withErrMsg    string
	withErrWrapped error
	withErrCode   *Code
	withOp        Op
	withoutEvent  bool
}

func getDefaultOptions() Options {
	return Options{}
}

// WithMsg provides an option to provide a message when the error is created.
// The message may be a printf-style format with args.
func WithMsg(msg string, args ...any) Option {
	return func(o *Options) {
		switch {
		case len(args) > 0:
			o.withErrMsg = fmt.Sprintf(msg, args...)
		default:
			o.withErrMsg = msg
		}
	}
}

// WithWrap provides an option to provide an error to wrap when the error is
// created.
func WithWrap(e error) Option {
	return func(o *Options) {
		o.withErrWrapped = e
	}
}

// WithCode provides an option to provide a code when the error is created.
func WithCode(code Code) Option {
	return func(o *Options) {
		o.withErrCode = &code
	}
}

// WithOp provides an option to provide the operation that's raising/propagating
// the error.
func WithOp(op Op) Option {
	return func(o *Options) {
		o.withOp = op
	}
}

// WithoutEvent provides an option to suppress the error event that's normally
// emitted when an error is created via New(...) or Wrap(...).
func WithoutEvent() Option {
	return func(o *Options) {
		o.withoutEvent = true
	}
}
