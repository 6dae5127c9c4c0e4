// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"strings"
)

// EscapeArg quotes one command-line token for ExecStart=. Specifiers
// ("%") and variable references ("$") are doubled so the program sees them
// literally; tokens containing whitespace (line breaks included), quotes,
// backslashes or ";" are double-quoted with backslash escapes.
func EscapeArg(arg string) string {
	arg = strings.ReplaceAll(arg, "%", "%%")
	arg = strings.ReplaceAll(arg, "$", "$$")
	if arg != "" && !strings.ContainsAny(arg, " \t\n\r\"'\\;") {
		return arg
	}
	return quote(arg)
}

// EscapeEnvironment renders one Environment= assignment. Specifiers are
// doubled; "$" is literal in Environment= and left alone.
func EscapeEnvironment(name, value string) string {
	return quote(strings.ReplaceAll(name+"="+value, "%", "%%"))
}

// JoinArgs escapes and joins a command line for ExecStart=.
func JoinArgs(args []string) string {
	escaped := make([]string, len(args))
	for i, arg := range args {
		escaped[i] = EscapeArg(arg)
	}
	return strings.Join(escaped, " ")
}

func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\', '"':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
