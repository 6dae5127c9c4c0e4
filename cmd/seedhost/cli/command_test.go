// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestExecuteDispatchesToSubcommand(t *testing.T) {
	t.Parallel()

	var called string
	root := &Command{
		Name: "seedhost",
		Subcommands: []*Command{
			{Name: "build", Run: func([]string) error { called = "build"; return nil }},
			{Name: "check", Run: func([]string) error { called = "check"; return nil }},
		},
	}
	if err := root.Execute([]string{"check"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if called != "check" {
		t.Errorf("dispatched to %q, want check", called)
	}
}

func TestExecuteNestedSubcommands(t *testing.T) {
	t.Parallel()

	var received []string
	root := &Command{
		Name: "seedhost",
		Subcommands: []*Command{{
			Name: "show",
			Subcommands: []*Command{{
				Name: "unit",
				Run:  func(args []string) error { received = args; return nil },
			}},
		}},
	}
	if err := root.Execute([]string{"show", "unit", "node"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(received) != 1 || received[0] != "node" {
		t.Errorf("args = %v, want [node]", received)
	}
}

func TestExecuteParsesFlags(t *testing.T) {
	t.Parallel()

	var params struct {
		Out     string `flag:"out,o" desc:"output directory"`
		NoCache bool   `flag:"no-cache" desc:"skip the cache"`
	}
	var positional []string
	command := &Command{
		Name:  "build",
		Flags: func() *pflag.FlagSet { return FlagsFromParams("build", &params) },
		Run:   func(args []string) error { positional = args; return nil },
	}
	if err := command.Execute([]string{"-o", "/tmp/out", "--no-cache", "extra"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if params.Out != "/tmp/out" || !params.NoCache {
		t.Errorf("params = %+v", params)
	}
	if len(positional) != 1 || positional[0] != "extra" {
		t.Errorf("positional = %v, want [extra]", positional)
	}
}

func TestExecuteUnknownCommandSuggests(t *testing.T) {
	t.Parallel()

	root := &Command{
		Name:        "seedhost",
		Subcommands: []*Command{{Name: "install", Run: func([]string) error { return nil }}},
	}
	err := root.Execute([]string{"instal"})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), `did you mean "install"`) {
		t.Errorf("error = %q, want a suggestion", err)
	}
}

func TestExecuteUnknownFlagSuggests(t *testing.T) {
	t.Parallel()

	var params struct {
		Root string `flag:"root" desc:"install root"`
	}
	command := &Command{
		Name:  "install",
		Flags: func() *pflag.FlagSet { return FlagsFromParams("install", &params) },
		Run:   func([]string) error { return nil },
	}
	err := command.Execute([]string{"--rot", "/"})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "did you mean --root") {
		t.Errorf("error = %q, want a suggestion", err)
	}
}

func TestExecuteGroupWithoutSubcommand(t *testing.T) {
	t.Parallel()

	var help bytes.Buffer
	root := &Command{
		Name:       "cache",
		HelpOutput: &help,
		Subcommands: []*Command{
			{Name: "list", Summary: "List cached evaluations", Run: func([]string) error { return nil }},
		},
	}
	err := root.Execute(nil)
	if !errors.Is(err, ErrSubcommandRequired) {
		t.Fatalf("error = %v, want ErrSubcommandRequired", err)
	}
	if !strings.Contains(help.String(), "List cached evaluations") {
		t.Errorf("help output missing subcommand summary:\n%s", help.String())
	}
}

func TestExecuteHelp(t *testing.T) {
	t.Parallel()

	var help bytes.Buffer
	var params struct {
		Out string `flag:"out" desc:"output directory" default:"out"`
	}
	root := &Command{Name: "seedhost", HelpOutput: &help}
	build := &Command{
		Name:        "build",
		Description: "Evaluate the configuration and write the file set.",
		Examples:    []Example{{Description: "Stage into a directory", Command: "seedhost build --out stage"}},
		Flags:       func() *pflag.FlagSet { return FlagsFromParams("build", &params) },
		Run:         func([]string) error { t.Error("Run called for --help"); return nil },
	}
	root.Subcommands = []*Command{build}

	if err := root.Execute([]string{"build", "--help"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	output := help.String()
	for _, want := range []string{
		"Evaluate the configuration",
		"Usage:\n  seedhost build [flags]",
		"--out string",
		"# Stage into a directory",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help missing %q:\n%s", want, output)
		}
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	err := error(&ExitError{Code: 2})
	var coder interface{ ExitCode() int }
	if !errors.As(err, &coder) || coder.ExitCode() != 2 {
		t.Errorf("ExitError does not report its code")
	}
	if err.Error() != "exit code 2" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestEmitJSON(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	output := JSONOutput{}
	if done, err := output.EmitJSON(&out, []string{"a"}); done || err != nil {
		t.Fatalf("EmitJSON without --json = %v, %v", done, err)
	}

	output.OutputJSON = true
	var empty []string
	if done, err := output.EmitJSON(&out, empty); !done || err != nil {
		t.Fatalf("EmitJSON = %v, %v", done, err)
	}
	if strings.TrimSpace(out.String()) != "[]" {
		t.Errorf("nil slice encoded as %q, want []", out.String())
	}
}
