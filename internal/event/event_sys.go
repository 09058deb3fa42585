// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package event

// sysVersion defines the version of system events
const sysVersion = "v0.1"

type sysEvent struct {
	Id      Id             `json:"id,omitempty"`
	Version string         `json:"version"`
	Op      Op             `json:"op,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// EventType is required for all event types by the eventlogger broker
func (s *sysEvent) EventType() string { return string(SystemType) }
