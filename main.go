// Copyright 2025 The Prospecta Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/jcodagnone/prospecta/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
