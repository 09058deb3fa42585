// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package event

import (
	"time"

	"github.com/hashicorp/go-hclog"
)

// getOpts - iterate the inbound Options and return a struct.
func getOpts(opt ...Option) options {
	opts := getDefaultOptions()
	for _, o := range opt {
		if o != nil {
			o(&opts)
		}
	}
	return opts
}

// Option - how Options are passed as arguments.
type Option func(*options)

// options = how options are represented
type options struct {
	withId            string
	withDetails       map[string]any
	withHeader        map[string]any
	withFlush         bool
	withInfo          map[string]any
	withRequestInfo   *RequestInfo
	withNow           time.Time
	withRequest       *Request
	withResponse      *Response
	withAuth          *Auth
	withEventer       *Eventer
	withEventerConfig *EventerConfig
	withAllow         []string
	withDeny          []string
	withGating        bool
	withCorrelationId string
	withHclogLevel    hclog.Level

	withBroker broker // test only option
}

func getDefaultOptions() options {
	return options{
		withHclogLevel: hclog.NoLevel,
	}
}

// WithId allows an optional Id
func WithId(id string) Option {
	return func(o *options) {
		o.withId = id
	}
}

// WithDetails allows an optional set of key/value pairs about an observation
// event at the detail level and observation events may have multiple "details"
func WithDetails(args ...any) Option {
	return func(o *options) {
		o.withDetails = ConvertArgs(args...)
	}
}

// WithHeader allows an optional set of key/value pairs about an observation
// event at the header level and observation events will only have one "header"
func WithHeader(args ...any) Option {
	return func(o *options) {
		o.withHeader = ConvertArgs(args...)
	}
}

// WithFlush allows an optional flush option.
func WithFlush() Option {
	return func(o *options) {
		o.withFlush = true
	}
}

// WithInfo allows an optional set of key/value pairs about an error event.
func WithInfo(args ...any) Option {
	return func(o *options) {
		o.withInfo = ConvertArgs(args...)
	}
}

// WithInfoMsg allows an optional msg and optional set of key/value pairs about
// an error event.
func WithInfoMsg(msg string, args ...any) Option {
	return func(o *options) {
		o.withInfo = ConvertArgs(args...)
		if o.withInfo == nil {
			o.withInfo = make(map[string]any, 1)
		}
		o.withInfo[msgField] = msg
	}
}

// WithRequestInfo allows an optional RequestInfo
func WithRequestInfo(i *RequestInfo) Option {
	return func(o *options) {
		o.withRequestInfo = i
	}
}

// WithNow allows an optional time.Time to represent now.
func WithNow(now time.Time) Option {
	return func(o *options) {
		o.withNow = now
	}
}

// WithRequest allows an optional request
func WithRequest(r *Request) Option {
	return func(o *options) {
		o.withRequest = r
	}
}

// WithResponse allows an optional response
func WithResponse(r *Response) Option {
	return func(o *options) {
		o.withResponse = r
	}
}

// WithAuth allows an optional Auth
func WithAuth(a *Auth) Option {
	return func(o *options) {
		o.withAuth = a
	}
}

// WithEventer allows an optional eventer
func WithEventer(e *Eventer) Option {
	return func(o *options) {
		o.withEventer = e
	}
}

// WithEventerConfig allows an optional eventer config
func WithEventerConfig(c *EventerConfig) Option {
	return func(o *options) {
		o.withEventerConfig = c
	}
}

// WithAllow provides an optional set of allow filters for a formatter/filter
// node
func WithAllow(f ...string) Option {
	return func(o *options) {
		o.withAllow = f
	}
}

// WithDeny provides an optional set of deny filters for a formatter/filter
// node
func WithDeny(f ...string) Option {
	return func(o *options) {
		o.withDeny = f
	}
}

// WithGating starts the eventer in gated mode: error and system events are
// queued until (Eventer).ReleaseGate() is called.
func WithGating(enable bool) Option {
	return func(o *options) {
		o.withGating = enable
	}
}

// WithHclogLevel allows an optional hclog.Level when creating an hclog adapter
// for the eventer.
func WithHclogLevel(l hclog.Level) Option {
	return func(o *options) {
		o.withHclogLevel = l
	}
}

// withCorrelationId allows an optional correlation id, set from the context
// when an event is written.
func withCorrelationId(id string) Option {
	return func(o *options) {
		o.withCorrelationId = id
	}
}
