// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command framework of the seedhost binary.
//
// A [Command] is a named node in a tree with optional subcommands, a
// [pflag.FlagSet] factory and a Run function. [Command.Execute] routes
// arguments down the tree, parses flags and prints structured help. An
// unknown command or flag gets a "did you mean" suggestion when one is
// within a Levenshtein distance of three.
//
// Flags are declared as tagged struct fields and bound with
// [FlagsFromParams]:
//
//	type buildParams struct {
//	    Out string `flag:"out,o" desc:"output directory"`
//	}
//
// Commands that finish with a non-zero status after printing their own
// report return an [ExitError].
package cli
