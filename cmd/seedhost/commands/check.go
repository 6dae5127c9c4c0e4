// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/seedhost/seedhost/cmd/seedhost/cli"
	"github.com/seedhost/seedhost/lib/config"
	"github.com/seedhost/seedhost/lib/credential"
	"github.com/seedhost/seedhost/lib/deploy"
	"github.com/seedhost/seedhost/sandbox"
)

type checkParams struct {
	configParams
	NoCache bool `flag:"no-cache" desc:"ignore cached checker verdicts"`
}

func checkCommand(env *Env) *cli.Command {
	var params checkParams
	return &cli.Command{
		Name:    "check",
		Summary: "Run the host preflight and validate the options",
		Description: `Check that the host can run the services (systemd version, binaries,
key material, nft and nginx when needed, sandbox directive support),
then evaluate the options and run the checker. Nothing is installed.

Exits 1 when a preflight check fails or the checker rejects the
settings.`,
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("check", &params) },
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			cfg, err := params.load()
			if err != nil {
				return err
			}
			validator, err := preflight(env, cfg, &params.configParams)
			if err != nil {
				return err
			}
			validator.PrintResults(env.Stdout)
			if validator.HasErrors() {
				return &cli.ExitError{Code: 1}
			}

			ctx, cancel := commandContext()
			defer cancel()
			result, err := evaluateConfig(ctx, env, &params.configParams, cfg, params.NoCache)
			if err != nil {
				return err
			}
			fmt.Fprintf(env.Stdout, "Settings %s (%s)\n", result.Key, verdict(result))
			return nil
		},
	}
}

// preflight runs every host check the options call for.
func preflight(env *Env, cfg *config.Config, params *configParams) (*sandbox.Validator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options:\n%w", err)
	}
	key, err := credential.Resolve(cfg.PrivateKeyFile)
	if err != nil {
		return nil, fmt.Errorf("private_key_file: %w", err)
	}
	policies, err := deploy.BuildPolicies(cfg, key, params.logger(env))
	if err != nil {
		return nil, err
	}

	caps := env.capabilities()
	validator := sandbox.NewValidator()
	validator.ValidateSystemd(caps)
	validator.ValidateBinary("node", resolveBinary(cfg, cfg.Node.Binary))
	if cfg.HTTPD.Enable {
		validator.ValidateBinary("httpd", resolveBinary(cfg, cfg.HTTPD.Binary))
	}
	if cfg.CheckConfig && env.Deploy.Checker == nil {
		validator.ValidateBinary("checker", resolveBinary(cfg, cfg.Checker))
	}
	validator.ValidateCredential(key, caps)
	validator.ValidateTool("nft", caps.NftPath, cfg.Node.OpenFirewall)
	validator.ValidateTool("nginx", caps.NginxPath, cfg.HTTPD.Enable && cfg.HTTPD.Nginx.ServerName != "")
	validator.ValidatePolicy("node", policies.Node, caps)
	if policies.HTTPD != nil {
		validator.ValidatePolicy("httpd", policies.HTTPD, caps)
	}
	return validator, nil
}

// resolveBinary applies paths.bin; a name it cannot find is returned as
// given so the validator reports it.
func resolveBinary(cfg *config.Config, name string) string {
	if path, err := cfg.BinaryPath(name); err == nil {
		return path
	}
	return name
}
