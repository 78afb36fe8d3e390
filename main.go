// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/jcodagnone/transporte/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
