// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"

	"github.com/seedhost/seedhost/cmd/seedhost/commands"
	"github.com/seedhost/seedhost/lib/process"
)

func main() {
	if err := commands.Root(commands.DefaultEnv()).Execute(os.Args[1:]); err != nil {
		process.Fatal(err)
	}
}
