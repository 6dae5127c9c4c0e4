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

type cacheParams struct {
	configParams
	cli.JSONOutput
}

func cacheCommand(env *Env) *cli.Command {
	var params cacheParams
	flags := func(name string) func() *pflag.FlagSet {
		return func() *pflag.FlagSet { return cli.FlagsFromParams(name, &params) }
	}
	open := func() (*deploy.Cache, error) {
		cfg, err := params.load()
		if err != nil {
			return nil, err
		}
		cache, err := deploy.NewCache(cfg, params.logger(env))
		if err != nil {
			return nil, err
		}
		if cache == nil {
			return nil, errors.New("the evaluation cache is disabled (cache.enable)")
		}
		return cache, nil
	}

	return &cli.Command{
		Name:    "cache",
		Summary: "Inspect or clear cached checker verdicts",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Summary: "List cached evaluation keys",
				Flags:   flags("list"),
				Run: func(args []string) error {
					cache, err := open()
					if err != nil {
						return err
					}
					keys, err := cache.Keys()
					if err != nil {
						return err
					}
					if done, err := params.EmitJSON(env.Stdout, keys); done {
						return err
					}
					for _, key := range keys {
						fmt.Fprintln(env.Stdout, key)
					}
					return nil
				},
			},
			{
				Name:    "show",
				Summary: "Print a cached record in CBOR diagnostic notation",
				Usage:   "seedhost cache show <key> [flags]",
				Flags:   flags("show"),
				Run: func(args []string) error {
					if len(args) != 1 {
						return errors.New("usage: seedhost cache show <key>")
					}
					cache, err := open()
					if err != nil {
						return err
					}
					text, err := cache.Describe(args[0])
					if err != nil {
						return err
					}
					fmt.Fprintln(env.Stdout, text)
					return nil
				},
			},
			{
				Name:    "clear",
				Summary: "Remove every cached record",
				Flags:   flags("clear"),
				Run: func(args []string) error {
					cache, err := open()
					if err != nil {
						return err
					}
					return cache.Clear()
				},
			},
		},
	}
}
