// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/seedhost/seedhost/cmd/seedhost/cli"
	"github.com/seedhost/seedhost/lib/deploy"
)

type buildParams struct {
	configParams
	cli.JSONOutput
	Out     string `flag:"out,o" desc:"directory to write the file set under (required)"`
	NoCache bool   `flag:"no-cache" desc:"ignore cached checker verdicts"`
}

type installParams struct {
	configParams
	cli.JSONOutput
	Root    string `flag:"root" desc:"filesystem root to install under" default:"/"`
	NoCache bool   `flag:"no-cache" desc:"ignore cached checker verdicts"`
}

// installSummary is the --json output of build and install.
type installSummary struct {
	Key     string   `json:"key"`
	Checked bool     `json:"checked"`
	Cached  bool     `json:"cached"`
	Files   []string `json:"files"`
}

func buildCommand(env *Env) *cli.Command {
	var params buildParams
	return &cli.Command{
		Name:    "build",
		Summary: "Evaluate the options and write the file set into a directory",
		Description: `Evaluate the options, validate the compiled settings with the checker
and write the units, settings artifact and optional proxy and firewall
files under --out, laid out as they would be under /.

Nothing is written when the checker rejects the settings.`,
		Usage: "seedhost build --out <dir> [flags]",
		Examples: []cli.Example{
			{Description: "Stage a deployment for review", Command: "seedhost build -c seedhost.yaml --out ./stage"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("build", &params) },
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			if params.Out == "" {
				return errors.New("--out is required")
			}
			return runInstall(env, &params.configParams, &params.JSONOutput, params.Out, params.NoCache)
		},
	}
}

func installCommand(env *Env) *cli.Command {
	var params installParams
	return &cli.Command{
		Name:    "install",
		Summary: "Evaluate the options and install the file set",
		Description: `Evaluate the options, validate the compiled settings with the checker
and install the result under --root. Reload systemd afterwards to pick
up changed units.`,
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("install", &params) },
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			return runInstall(env, &params.configParams, &params.JSONOutput, params.Root, params.NoCache)
		},
	}
}

func runInstall(env *Env, params *configParams, output *cli.JSONOutput, root string, noCache bool) error {
	ctx, cancel := commandContext()
	defer cancel()

	result, err := evaluate(ctx, env, params, noCache)
	if err != nil {
		return err
	}
	written, err := result.Install(root)
	if err != nil {
		return err
	}

	summary := installSummary{
		Key:     result.Key.String(),
		Checked: result.Checked,
		Cached:  result.Cached,
		Files:   written,
	}
	if done, err := output.EmitJSON(env.Stdout, summary); done {
		return err
	}
	for _, path := range written {
		fmt.Fprintln(env.Stdout, path)
	}
	fmt.Fprintf(env.Stderr, "%d files written (%s)\n", len(written), verdict(result))
	return nil
}

// verdict describes how a result's artifact was validated.
func verdict(result *deploy.Result) string {
	switch {
	case !result.Checked:
		return "checker disabled"
	case result.Cached:
		return "accepted, cached"
	default:
		return "accepted"
	}
}
