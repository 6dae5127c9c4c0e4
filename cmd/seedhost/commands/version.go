// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/pflag"

	"github.com/seedhost/seedhost/cmd/seedhost/cli"
	"github.com/seedhost/seedhost/lib/version"
)

type versionParams struct {
	cli.JSONOutput
	Full bool `flag:"full" desc:"include the toolchain, platform and binary digest"`
}

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Dirty     bool   `json:"dirty"`
	BuildTime string `json:"build_time"`
	Go        string `json:"go"`
	Platform  string `json:"platform"`
	Binary    string `json:"binary,omitempty"`
	Digest    string `json:"digest,omitempty"`
}

func versionCommand(env *Env) *cli.Command {
	var params versionParams
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("version", &params) },
		Run: func(args []string) error {
			info := versionInfo{
				Version:   version.Version,
				Commit:    version.GitCommit,
				Dirty:     version.GitDirty == "true",
				BuildTime: version.BuildTime,
				Go:        runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			}
			if params.Full || params.OutputJSON {
				digest, path, err := version.SelfDigest()
				if err != nil {
					return err
				}
				info.Binary, info.Digest = path, digest
			}
			if done, err := params.EmitJSON(env.Stdout, info); done {
				return err
			}
			if !params.Full {
				fmt.Fprintf(env.Stdout, "seedhost %s\n", version.Info())
				return nil
			}
			fmt.Fprintf(env.Stdout, "seedhost %s\n  Binary: %s\n  BLAKE3: %s\n", version.Full(), info.Binary, info.Digest)
			return nil
		},
	}
}
