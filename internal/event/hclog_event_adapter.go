// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package event

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync/atomic"

	"github.com/hashicorp/go-hclog"
)

// originalLogNameKey is added to the event payload when the adapter has been
// given a name, so the source logger survives the translation to an event.
const originalLogNameKey = "@original-log-name"

// hclogAdapter is an hclog.Logger that writes system events via an Eventer.
// It allows dependencies that only know how to log through hclog to
// participate in eventing.
type hclogAdapter struct {
	ctx     context.Context
	eventer *Eventer
	name    string
	implied []any
	level   *int32
}

// NewHclogLogger creates an hclog.Logger that emits system events through the
// provided Eventer.  Supports the WithHclogLevel option (defaults to
// hclog.Info).
func NewHclogLogger(ctx context.Context, e *Eventer, opt ...Option) (hclog.Logger, error) {
	const op = "event.NewHclogLogger"
	if ctx == nil {
		return nil, fmt.Errorf("%s: missing context: %w", op, ErrInvalidParameter)
	}
	if e == nil {
		return nil, fmt.Errorf("%s: missing eventer: %w", op, ErrInvalidParameter)
	}
	ctx, err := NewEventerContext(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	opts := getOpts(opt...)
	level := opts.withHclogLevel
	if level == hclog.NoLevel {
		level = hclog.Info
	}
	l := int32(level)
	return &hclogAdapter{
		ctx:     ctx,
		eventer: e,
		level:   &l,
	}, nil
}

func (h *hclogAdapter) Log(level hclog.Level, msg string, args ...any) {
	switch level {
	case hclog.Trace:
		h.Trace(msg, args...)
	case hclog.Debug:
		h.Debug(msg, args...)
	case hclog.Info, hclog.NoLevel:
		h.Info(msg, args...)
	case hclog.Warn:
		h.Warn(msg, args...)
	case hclog.Error:
		h.Error(msg, args...)
	}
}

func (h *hclogAdapter) Trace(msg string, args ...any) {
	if !h.IsTrace() {
		return
	}
	h.emit(msg, args)
}

func (h *hclogAdapter) Debug(msg string, args ...any) {
	if !h.IsDebug() {
		return
	}
	h.emit(msg, args)
}

func (h *hclogAdapter) Info(msg string, args ...any) {
	if !h.IsInfo() {
		return
	}
	h.emit(msg, args)
}

func (h *hclogAdapter) Warn(msg string, args ...any) {
	if !h.IsWarn() {
		return
	}
	h.emit(msg, args)
}

func (h *hclogAdapter) Error(msg string, args ...any) {
	if !h.IsError() {
		return
	}
	h.emit(msg, args)
}

// emit writes the log line as a system event, folding in any implied args and
// the adapter's name.
func (h *hclogAdapter) emit(msg string, args []any) {
	all := make([]any, 0, len(h.implied)+len(args)+2)
	all = append(all, h.implied...)
	all = append(all, args...)
	if h.name != "" {
		all = append(all, originalLogNameKey, h.name)
	}
	WriteSysEvent(h.ctx, Op("hclog-adapter"), msg, all...)
}

func (h *hclogAdapter) IsTrace() bool { return h.GetLevel() <= hclog.Trace }
func (h *hclogAdapter) IsDebug() bool { return h.GetLevel() <= hclog.Debug }
func (h *hclogAdapter) IsInfo() bool  { return h.GetLevel() <= hclog.Info }
func (h *hclogAdapter) IsWarn() bool  { return h.GetLevel() <= hclog.Warn }
func (h *hclogAdapter) IsError() bool { return h.GetLevel() <= hclog.Error }

// ImpliedArgs returns the loggers implied args
func (h *hclogAdapter) ImpliedArgs() []any {
	return h.implied
}

// With returns a logger with the given key/value pairs folded into every
// event it emits
func (h *hclogAdapter) With(args ...any) hclog.Logger {
	c := h.clone()
	c.implied = append(c.implied, args...)
	return c
}

// Name returns the name of the logger
func (h *hclogAdapter) Name() string {
	return h.name
}

// Named creates a sublogger, appending the new name to any current one
func (h *hclogAdapter) Named(name string) hclog.Logger {
	c := h.clone()
	switch {
	case h.name != "":
		c.name = h.name + "." + name
	default:
		c.name = name
	}
	return c
}

// ResetNamed creates a logger with the given name, discarding any current one
func (h *hclogAdapter) ResetNamed(name string) hclog.Logger {
	c := h.clone()
	c.name = name
	return c
}

// SetLevel updates the level for this logger and any of its clones
func (h *hclogAdapter) SetLevel(level hclog.Level) {
	atomic.StoreInt32(h.level, int32(level))
}

// GetLevel returns the current level
func (h *hclogAdapter) GetLevel() hclog.Level {
	return hclog.Level(atomic.LoadInt32(h.level))
}

// StandardLogger returns a stdlib logger which emits system events
func (h *hclogAdapter) StandardLogger(_ *hclog.StandardLoggerOptions) *log.Logger {
	l, err := h.eventer.StandardLogger(h.ctx, h.name, SystemType)
	if err != nil {
		return nil
	}
	return l
}

// StandardWriter returns an io.Writer which emits system events
func (h *hclogAdapter) StandardWriter(_ *hclog.StandardLoggerOptions) io.Writer {
	w, err := h.eventer.StandardWriter(h.ctx, SystemType)
	if err != nil {
		return nil
	}
	return w
}

// clone shares the level pointer so SetLevel applies across all derived
// loggers, matching hclog's behavior for subloggers.
func (h *hclogAdapter) clone() *hclogAdapter {
	implied := make([]any, len(h.implied))
	copy(implied, h.implied)
	return &hclogAdapter{
		ctx:     h.ctx,
		eventer: h.eventer,
		name:    h.name,
		implied: implied,
		level:   h.level,
	}
}
