// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/seedhost/seedhost/cmd/seedhost/cli"
	"github.com/seedhost/seedhost/lib/deploy"
	"github.com/seedhost/seedhost/lib/service"
	"github.com/seedhost/seedhost/sandbox"
)

type showParams struct {
	configParams
	cli.JSONOutput
}

// policyLine is one directive of show policy.
type policyLine struct {
	Directive string   `json:"directive"`
	Values    []string `json:"values"`
	Source    string   `json:"source"`
}

// fileLine is one entry of show files.
type fileLine struct {
	Path  string `json:"path"`
	Mode  string `json:"mode"`
	Bytes int    `json:"bytes"`
}

func showCommand(env *Env) *cli.Command {
	var params showParams
	flags := func(name string) func() *pflag.FlagSet {
		return func() *pflag.FlagSet { return cli.FlagsFromParams(name, &params) }
	}

	// show evaluates without the checker: it renders what build would
	// write, whether or not the checker would accept it.
	withResult := func(run func(result *deploy.Result, args []string) error) func([]string) error {
		return func(args []string) error {
			ctx, cancel := commandContext()
			defer cancel()
			result, err := evaluateUnchecked(ctx, env, &params.configParams)
			if err != nil {
				return err
			}
			return run(result, args)
		}
	}

	return &cli.Command{
		Name:    "show",
		Summary: "Print one rendered piece of the deployment",
		Subcommands: []*cli.Command{
			{
				Name:    "settings",
				Summary: "Print the compiled settings artifact",
				Flags:   flags("settings"),
				Run: withResult(func(result *deploy.Result, args []string) error {
					_, err := env.Stdout.Write(result.Artifact)
					return err
				}),
			},
			{
				Name:    "unit",
				Summary: "Print a service's systemd unit",
				Usage:   "seedhost show unit <node|httpd> [flags]",
				Flags:   flags("unit"),
				Run: withResult(func(result *deploy.Result, args []string) error {
					descriptor, err := pickService(result, args)
					if err != nil {
						return err
					}
					_, err = env.Stdout.Write(descriptor.Unit())
					return err
				}),
			},
			{
				Name:    "policy",
				Summary: "Print a service's sandbox policy and where each directive came from",
				Usage:   "seedhost show policy <node|httpd> [flags]",
				Flags:   flags("policy"),
				Run: withResult(func(result *deploy.Result, args []string) error {
					descriptor, err := pickService(result, args)
					if err != nil {
						return err
					}
					lines := describePolicy(descriptor.Policy)
					if done, err := params.EmitJSON(env.Stdout, lines); done {
						return err
					}
					fmt.Fprintf(env.Stdout, "# %s\n", strings.Join(descriptor.Policy.Fragments, ", "))
					writer := tabwriter.NewWriter(env.Stdout, 2, 0, 2, ' ', 0)
					for _, line := range lines {
						fmt.Fprintf(writer, "%s\t%s\t%s\n", line.Directive, strings.Join(line.Values, " "), line.Source)
					}
					return writer.Flush()
				}),
			},
			{
				Name:    "files",
				Summary: "List the files build and install write",
				Flags:   flags("files"),
				Run: withResult(func(result *deploy.Result, args []string) error {
					var lines []fileLine
					for _, file := range result.Files() {
						lines = append(lines, fileLine{
							Path:  "/" + file.Path,
							Mode:  fmt.Sprintf("%04o", uint32(file.Mode.Perm())),
							Bytes: len(file.Data),
						})
					}
					if done, err := params.EmitJSON(env.Stdout, lines); done {
						return err
					}
					writer := tabwriter.NewWriter(env.Stdout, 2, 0, 2, ' ', 0)
					for _, line := range lines {
						fmt.Fprintf(writer, "%s\t%s\t%d\n", line.Mode, line.Path, line.Bytes)
					}
					return writer.Flush()
				}),
			},
		},
	}
}

// pickService selects the descriptor named by the first argument,
// defaulting to the node.
func pickService(result *deploy.Result, args []string) (*service.Descriptor, error) {
	name := string(service.KindNode)
	if len(args) > 0 {
		name = args[0]
	}
	switch service.Kind(name) {
	case service.KindNode:
		return result.Node, nil
	case service.KindHTTPD:
		if result.HTTPD == nil {
			return nil, fmt.Errorf("httpd is not enabled")
		}
		return result.HTTPD, nil
	default:
		return nil, fmt.Errorf("unknown service %q: want node or httpd", name)
	}
}

func describePolicy(policy *sandbox.Policy) []policyLine {
	names := policy.Directives()
	lines := make([]policyLine, 0, len(names))
	for _, name := range names {
		line := policyLine{Directive: name, Source: policy.Source(name)}
		if value, ok := policy.Scalar(name); ok {
			line.Values = []string{value}
		} else {
			line.Values, _ = policy.List(name)
		}
		lines = append(lines, line)
	}
	return lines
}
