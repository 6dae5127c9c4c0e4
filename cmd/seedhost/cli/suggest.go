// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"

	"github.com/spf13/pflag"
)

// suggestionDistance is the largest edit distance that still produces a
// suggestion.
const suggestionDistance = 3

// suggestCommand returns the subcommand name closest to unknown, or "".
func suggestCommand(unknown string, commands []*Command) string {
	best, bestDistance := "", suggestionDistance+1
	for _, command := range commands {
		if distance := levenshtein(unknown, command.Name); distance < bestDistance {
			best, bestDistance = command.Name, distance
		}
	}
	return best
}

// suggestFlag finds the first undefined flag in args and returns the
// closest defined flag with its dashes, or "".
func suggestFlag(args []string, flagSet *pflag.FlagSet) string {
	for _, arg := range args {
		if arg == "--" {
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			continue
		}
		name, _, _ := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if flagSet.Lookup(name) != nil {
			continue
		}
		// ShorthandLookup panics on names longer than one character.
		if len(name) == 1 && flagSet.ShorthandLookup(name) != nil {
			continue
		}

		best, bestDistance := "", suggestionDistance+1
		flagSet.VisitAll(func(f *pflag.Flag) {
			if distance := levenshtein(name, f.Name); distance < bestDistance {
				best, bestDistance = f.Name, distance
			}
		})
		if best == "" {
			return ""
		}
		return "--" + best
	}
	return ""
}

// levenshtein is the edit distance between a and b, computed over one
// row of the matrix.
func levenshtein(a, b string) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	if len(a) == 0 {
		return len(b)
	}

	previous := make([]int, len(a)+1)
	current := make([]int, len(a)+1)
	for i := range previous {
		previous[i] = i
	}
	for j := 1; j <= len(b); j++ {
		current[0] = j
		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			current[i] = min(previous[i]+1, current[i-1]+1, previous[i-1]+cost)
		}
		previous, current = current, previous
	}
	return previous[len(a)]
}
