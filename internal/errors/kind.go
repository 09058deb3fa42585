// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package errors

// Kind specifies the kind of error (unknown, parameter, integrity, etc).
type Kind uint32

const (
	Other Kind = iota
	Parameter
	Configuration
	Integrity
	Search
	Encoding
	System
	Transaction
)

// String returns the Kind's string equivalent for error output.
func (e Kind) String() string {
	return [...]string{
		"unknown",
		"parameter violation",
		"configuration issue",
		"integrity violation",
		"search issue",
		"encoding issue",
		"system issue",
		"db transaction issue",
	}[e]
}
