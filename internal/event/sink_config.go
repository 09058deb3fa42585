// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package event

import (
	"fmt"
	"io"
	"time"
)

const (
	TextHclogSinkFormat SinkFormat = "hclog-text" // TextHclogSinkFormat means the event is formatted as an hclog text entry
	JSONHclogSinkFormat SinkFormat = "hclog-json" // JSONHclogSinkFormat means the event is formatted as an hclog json entry
)

// SinkFormat defines the formatting for a sink in a config file stanza
type SinkFormat string

// Validate the SinkFormat
func (f SinkFormat) Validate() error {
	const op = "event.(SinkFormat).Validate"
	switch f {
	case TextHclogSinkFormat, JSONHclogSinkFormat:
		return nil
	default:
		return fmt.Errorf("%s: '%s' is not a valid sink format: %w", op, f, ErrInvalidParameter)
	}
}

// FileSinkTypeConfig defines the configuration for a FileSink
type FileSinkTypeConfig struct {
	Path              string        `hcl:"path"`
	FileName          string        `hcl:"file_name"`
	RotateBytes       int           `hcl:"rotate_bytes"`
	RotateDuration    time.Duration `hcl:"-"`
	RotateDurationHCL string        `hcl:"rotate_duration"`
	RotateMaxFiles    int           `hcl:"rotate_max_files"`
}

// StderrSinkTypeConfig defines the configuration for a StderrSink
type StderrSinkTypeConfig struct{}

// WriterSinkTypeConfig defines the configuration for a WriterSink.  It can
// only be defined in code (not in a config file) and exists to support
// embedding hosts and tests which need to capture the event stream.
type WriterSinkTypeConfig struct {
	Writer io.Writer
}

// SinkConfig defines the configuration for a Eventer sink
type SinkConfig struct {
	Name         string                `hcl:"name"`          // Name defines a name for the sink.
	Description  string                `hcl:"description"`   // Description defines a description for the sink.
	EventTypes   []Type                `hcl:"event_types"`   // EventTypes defines a list of event types that will be sent to the sink. See the docs for EventTypes for a list of accepted values.
	AllowFilters []string              `hcl:"allow_filters"` // AllowFilters define a set of predicates for including an event in the sink. If any filter matches, the event will be included.
	DenyFilters  []string              `hcl:"deny_filters"`  // DenyFilters define a set of predicates for excluding an event from the sink. If any filter matches, the event will be excluded.
	Format       SinkFormat            `hcl:"format"`        // Format defines the format for the sink (hclog-text or hclog-json).
	Type         SinkType              `hcl:"type"`          // Type defines the type of sink (file, stderr or writer).
	StderrConfig *StderrSinkTypeConfig `hcl:"stderr"`        // StderrConfig defines the config for a stderr sink
	FileConfig   *FileSinkTypeConfig   `hcl:"file"`          // FileConfig defines the config for a file sink
	WriterConfig *WriterSinkTypeConfig `hcl:"-"`             // WriterConfig defines the config for a writer sink
}

// Validate the SinkConfig
func (sc *SinkConfig) Validate() error {
	const op = "event.(SinkConfig).Validate"
	if sc.Name == "" {
		return fmt.Errorf("%s: missing sink name: %w", op, ErrInvalidParameter)
	}
	if len(sc.EventTypes) == 0 {
		return fmt.Errorf("%s: missing event types: %w", op, ErrInvalidParameter)
	}
	for _, et := range sc.EventTypes {
		if err := et.Validate(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if err := sc.Type.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := sc.Format.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, f := range sc.AllowFilters {
		if _, err := newFilter(f); err != nil {
			return fmt.Errorf("%s: invalid allow filter '%s': %w", op, f, err)
		}
	}
	for _, f := range sc.DenyFilters {
		if _, err := newFilter(f); err != nil {
			return fmt.Errorf("%s: invalid deny filter '%s': %w", op, f, err)
		}
	}

	var typeConfigBlocks int
	if sc.StderrConfig != nil {
		typeConfigBlocks++
	}
	if sc.FileConfig != nil {
		typeConfigBlocks++
	}
	if sc.WriterConfig != nil {
		typeConfigBlocks++
	}
	if typeConfigBlocks > 1 {
		return fmt.Errorf("%s: too many sink type config blocks: %w", op, ErrInvalidParameter)
	}

	switch sc.Type {
	case FileSink:
		if sc.FileConfig == nil {
			return fmt.Errorf("%s: missing \"file\" block: %w", op, ErrInvalidParameter)
		}
		if sc.FileConfig.FileName == "" {
			return fmt.Errorf("%s: missing file name: %w", op, ErrInvalidParameter)
		}
	case StderrSink:
		if sc.FileConfig != nil || sc.WriterConfig != nil {
			return fmt.Errorf("%s: mismatch between sink type and sink configuration block: %w", op, ErrInvalidParameter)
		}
	case WriterSink:
		if sc.WriterConfig == nil {
			return fmt.Errorf("%s: missing \"writer\" config: %w", op, ErrInvalidParameter)
		}
		if sc.WriterConfig.Writer == nil {
			return fmt.Errorf("%s: missing writer: %w", op, ErrInvalidParameter)
		}
	}
	return nil
}
