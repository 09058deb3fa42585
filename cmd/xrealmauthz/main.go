// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package main

import (
	"os"

	"github.com/hashicorp/xrealmauthz/internal/cmd"
)

func main() {
	os.Exit(cmd.Run(os.Args[1:]))
}
