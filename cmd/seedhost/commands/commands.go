// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/seedhost/seedhost/cmd/seedhost/cli"
	"github.com/seedhost/seedhost/lib/deploy"
	"github.com/seedhost/seedhost/lib/settings"
	"github.com/seedhost/seedhost/sandbox"
)

// Env is what the command tree needs from the process. Tests replace the
// writers, the checker and the host probes.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer

	// Deploy seeds the options of every evaluation. A Checker set here
	// replaces the configured checker.
	Deploy deploy.Options

	// Capabilities probes the host for check. Nil uses
	// sandbox.DetectCapabilities.
	Capabilities func() *sandbox.Capabilities

	// Exec runs a smoke command. Nil runs it with the process's standard
	// streams.
	Exec func(ctx context.Context, argv []string) error
}

// DefaultEnv is the environment of the seedhost binary.
func DefaultEnv() *Env {
	return &Env{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Deploy: deploy.Options{EnvPrefix: settings.DefaultEnvPrefix},
	}
}

func (e *Env) capabilities() *sandbox.Capabilities {
	if e.Capabilities != nil {
		return e.Capabilities()
	}
	return sandbox.DetectCapabilities()
}

func (e *Env) exec(ctx context.Context, argv []string) error {
	if e.Exec != nil {
		return e.Exec(ctx, argv)
	}
	command := exec.CommandContext(ctx, argv[0], argv[1:]...)
	command.Stdin = os.Stdin
	command.Stdout = e.Stdout
	command.Stderr = e.Stderr
	return command.Run()
}

// Root builds the command tree.
func Root(env *Env) *cli.Command {
	return &cli.Command{
		Name: "seedhost",
		Description: `seedhost: deploy a seed peer node and its HTTP gateway under systemd.

Options are read from a YAML file (--config or SEEDHOST_CONFIG). Each
command evaluates them into validated settings, sandboxed service units
and the optional reverse proxy and firewall files.`,
		HelpOutput: env.Stderr,
		Subcommands: []*cli.Command{
			buildCommand(env),
			installCommand(env),
			checkCommand(env),
			showCommand(env),
			smokeCommand(env),
			cacheCommand(env),
			versionCommand(env),
		},
	}
}
