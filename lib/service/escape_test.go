// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"strings"
	"testing"
)

func TestEscapeArg(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input, want string
	}{
		{"--listen", "--listen"},
		{"0.0.0.0:8776", "0.0.0.0:8776"},
		{"", `""`},
		{"two words", `"two words"`},
		{`say "hi"`, `"say \"hi\""`},
		{`C:\path`, `"C:\\path"`},
		{"it's", `"it's"`},
		{"100%", "100%%"},
		{"$HOME", "$$HOME"},
		{"${SEED_HOME}/x y", `"$${SEED_HOME}/x y"`},
		{";", `";"`},
		{"a\nExecStartPre=/bin/sh", `"a\nExecStartPre=/bin/sh"`},
		{"a\rb", `"a\rb"`},
	}
	for _, tt := range tests {
		got := EscapeArg(tt.input)
		if got != tt.want {
			t.Errorf("EscapeArg(%q) = %s, want %s", tt.input, got, tt.want)
		}
		if strings.ContainsAny(got, "\n\r") {
			t.Errorf("EscapeArg(%q) left a raw line break", tt.input)
		}
	}
}

func TestEscapeEnvironment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, value, want string
	}{
		{"SEED_LOG", "info", `"SEED_LOG=info"`},
		{"GREETING", `a "b" c`, `"GREETING=a \"b\" c"`},
		{"RATE", "50%", `"RATE=50%%"`},
		{"PRICE", "$5", `"PRICE=$5"`},
	}
	for _, tt := range tests {
		if got := EscapeEnvironment(tt.name, tt.value); got != tt.want {
			t.Errorf("EscapeEnvironment(%q, %q) = %s, want %s", tt.name, tt.value, got, tt.want)
		}
	}
}

func TestJoinArgsKeepsTokensIntact(t *testing.T) {
	t.Parallel()

	got := JoinArgs([]string{"/usr/bin/seed-node", "--listen", "[::]:8776", "--alias", "my node"})
	want := `/usr/bin/seed-node --listen [::]:8776 --alias "my node"`
	if got != want {
		t.Errorf("JoinArgs = %s, want %s", got, want)
	}
}
