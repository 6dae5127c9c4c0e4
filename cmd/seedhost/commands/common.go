// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/seedhost/seedhost/cmd/seedhost/cli"
	"github.com/seedhost/seedhost/lib/compile"
	"github.com/seedhost/seedhost/lib/config"
	"github.com/seedhost/seedhost/lib/deploy"
)

// configParams are the flags every evaluating command takes.
type configParams struct {
	Config  string `flag:"config,c" desc:"options file (default: $SEEDHOST_CONFIG)"`
	Verbose bool   `flag:"verbose,v" desc:"log evaluation steps at debug level"`
}

func (p *configParams) load() (*config.Config, error) {
	if p.Config != "" {
		return config.LoadFile(p.Config)
	}
	return config.Load()
}

func (p *configParams) logger(env *Env) *slog.Logger {
	return cli.NewCommandLogger(env.Stderr, p.Verbose)
}

// commandContext is cancelled by SIGINT and SIGTERM.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// evaluate loads the options and runs one evaluation.
func evaluate(ctx context.Context, env *Env, params *configParams, noCache bool) (*deploy.Result, error) {
	cfg, err := params.load()
	if err != nil {
		return nil, err
	}
	return evaluateConfig(ctx, env, params, cfg, noCache)
}

// evaluateConfig runs one evaluation of already loaded options.
func evaluateConfig(ctx context.Context, env *Env, params *configParams, cfg *config.Config, noCache bool) (*deploy.Result, error) {
	opts := env.Deploy
	opts.Logger = params.logger(env)
	opts.NoCache = opts.NoCache || noCache
	result, err := deploy.Evaluate(ctx, cfg, opts)
	if err != nil {
		return nil, reportRejection(env, err)
	}
	return result, nil
}

// evaluateUnchecked evaluates without the checker and without the cache,
// for commands that only display rendered output.
func evaluateUnchecked(ctx context.Context, env *Env, params *configParams) (*deploy.Result, error) {
	cfg, err := params.load()
	if err != nil {
		return nil, err
	}
	cfg.CheckConfig = false
	return deploy.Evaluate(ctx, cfg, deploy.Options{
		EnvPrefix: env.Deploy.EnvPrefix,
		NoCache:   true,
		Logger:    params.logger(env),
	})
}

// reportRejection prints a checker rejection with the numbered artifact
// and converts it to exit status 1. Other errors pass through.
func reportRejection(env *Env, err error) error {
	var rejected *compile.ValidationError
	if !errors.As(err, &rejected) {
		return err
	}
	fmt.Fprintf(env.Stderr, "generated configuration rejected by checker (exit status %d)\n\n", rejected.ExitCode)
	if output := rejected.Output; output != "" {
		fmt.Fprintf(env.Stderr, "%s\n\n", output)
	}
	if cli.IsTerminal(env.Stderr) {
		if err := compile.WriteHighlighted(env.Stderr, rejected.Artifact); err == nil {
			return &cli.ExitError{Code: 1}
		}
	}
	fmt.Fprint(env.Stderr, rejected.Listing)
	return &cli.ExitError{Code: 1}
}
