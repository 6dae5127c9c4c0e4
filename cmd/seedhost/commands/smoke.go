// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/spf13/pflag"

	"github.com/seedhost/seedhost/cmd/seedhost/cli"
)

type smokeParams struct {
	configParams
	DryRun  bool `flag:"dry-run,n" desc:"print the systemd-run command instead of running it"`
	NoCache bool `flag:"no-cache" desc:"ignore cached checker verdicts"`
}

func smokeCommand(env *Env) *cli.Command {
	var params smokeParams
	return &cli.Command{
		Name:    "smoke",
		Summary: "Run a service once in the foreground under its sandbox",
		Description: `Run a service as a transient systemd unit with the same sandbox,
environment and credential as its installed unit, attached to the
terminal. Use it to find directives a service trips over before
installing.

The compiled settings must have been installed, since the sandbox binds
them read-only into the service.`,
		Usage: "seedhost smoke <node|httpd> [flags]",
		Examples: []cli.Example{
			{Description: "Show what would run", Command: "seedhost smoke node --dry-run"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("smoke", &params) },
		Run: func(args []string) error {
			if len(args) > 1 {
				return fmt.Errorf("unexpected argument %q", args[1])
			}
			ctx, cancel := commandContext()
			defer cancel()

			result, err := evaluate(ctx, env, &params.configParams, params.NoCache)
			if err != nil {
				return err
			}
			descriptor, err := pickService(result, args)
			if err != nil {
				return err
			}
			unit := descriptor.TransientUnit()
			argv := unit.TransientCommand(descriptor.Command)
			if params.DryRun {
				fmt.Fprintln(env.Stdout, shellJoin(argv))
				return nil
			}
			if env.Exec == nil && !unit.Available() {
				return errors.New("systemd-run not found in PATH")
			}

			err = env.exec(ctx, argv)
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				return &cli.ExitError{Code: exitErr.ExitCode()}
			}
			return err
		},
	}
}

// shellJoin quotes argv for a POSIX shell, so --dry-run output can be
// pasted.
func shellJoin(argv []string) string {
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		if arg != "" && strings.Trim(arg, shellSafe) == "" {
			quoted[i] = arg
			continue
		}
		quoted[i] = "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
	}
	return strings.Join(quoted, " ")
}

const shellSafe = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789@%+=:,./_-"
