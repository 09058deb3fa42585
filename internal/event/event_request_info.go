// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package event

// RequestInfo defines the fields captured about the request which raised an
// event.  For policy checks the Method is the policy operation and the
// ClientIp is the address the ticket request came from, when known.
type RequestInfo struct {
	EventId  string `json:"-"`
	Id       string `json:"id,omitempty"`
	Method   string `json:"method,omitempty"`
	Path     string `json:"path,omitempty"`
	ClientIp string `json:"client_ip,omitempty"`
}

// Auth describes the principal performing an audited admin operation.
type Auth struct {
	Principal string `json:"principal,omitempty"`
}

// Request describes an audited admin request (for example an attribute
// change).
type Request struct {
	Operation string         `json:"operation,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// Response describes the result of an audited admin request.
type Response struct {
	StatusCode int            `json:"status_code,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
}
