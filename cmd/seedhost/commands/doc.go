// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the seedhost command tree.
//
// Every command loads the options file (--config, else SEEDHOST_CONFIG)
// and runs one evaluation through lib/deploy. The commands differ in what
// they do with the result: build and install write the file set, check
// runs the host preflight first, show prints one rendered piece, and smoke
// runs a service once under systemd-run with its sandbox applied.
package commands
