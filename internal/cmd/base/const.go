// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package base

const (
	// FlagNameConfig is the flag used in the base command to read in the
	// path of the configuration file.
	FlagNameConfig = "config"
)

const (
	EnvXRealmAuthzCLINoColor = `XREALMAUTHZ_CLI_NO_COLOR`
	EnvXRealmAuthzCLIFormat  = `XREALMAUTHZ_CLI_FORMAT`
)
