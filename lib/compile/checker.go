// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package compile

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"golang.org/x/crypto/ssh"
)

// Result is a checker's verdict.
type Result struct {
	// ExitCode is zero when the artifact is accepted.
	ExitCode int

	// Output is the checker's combined diagnostic output.
	Output string
}

// Checker validates a candidate artifact. An error means the checker could
// not run; a rejection is a Result with a non-zero ExitCode.
type Checker interface {
	Check(ctx context.Context, artifact []byte) (Result, error)
}

// CheckerFunc adapts a function to [Checker].
type CheckerFunc func(ctx context.Context, artifact []byte) (Result, error)

// Check calls f.
func (f CheckerFunc) Check(ctx context.Context, artifact []byte) (Result, error) {
	return f(ctx, artifact)
}

// ExecChecker runs "<Command> config" with HOME and SEED_HOME pointing at
// a scratch directory that holds the candidate as config.json and a
// throwaway key pair under keys/, which the checker expects to find.
type ExecChecker struct {
	// Command is the checker executable.
	Command string

	// Logger is optional.
	Logger *slog.Logger
}

// Check implements [Checker].
func (e *ExecChecker) Check(ctx context.Context, artifact []byte) (Result, error) {
	scratch, err := os.MkdirTemp("", "seedhost-check-*")
	if err != nil {
		return Result{}, fmt.Errorf("creating scratch home: %w", err)
	}
	defer os.RemoveAll(scratch)

	if err := PrepareScratchHome(scratch, artifact); err != nil {
		return Result{}, err
	}

	cmd := exec.CommandContext(ctx, e.Command, "config")
	cmd.Dir = scratch
	cmd.Env = append(os.Environ(), "HOME="+scratch, "SEED_HOME="+scratch)
	output, err := cmd.CombinedOutput()

	var exitError *exec.ExitError
	switch {
	case err == nil:
		if e.Logger != nil {
			e.Logger.Debug("checker accepted artifact", "command", e.Command)
		}
		return Result{Output: string(output)}, nil
	case errors.As(err, &exitError) && ctx.Err() == nil:
		if e.Logger != nil {
			e.Logger.Debug("checker rejected artifact", "command", e.Command, "exit_code", exitError.ExitCode())
		}
		return Result{ExitCode: exitError.ExitCode(), Output: string(output)}, nil
	default:
		return Result{}, fmt.Errorf("running %s config: %w", e.Command, err)
	}
}

// PrepareScratchHome writes config.json and a fresh ed25519 key pair in
// OpenSSH format (keys/node, keys/node.pub) into directory.
func PrepareScratchHome(directory string, artifact []byte) error {
	if err := os.WriteFile(filepath.Join(directory, "config.json"), artifact, 0o600); err != nil {
		return fmt.Errorf("writing scratch config: %w", err)
	}

	keys := filepath.Join(directory, "keys")
	if err := os.MkdirAll(keys, 0o700); err != nil {
		return fmt.Errorf("creating scratch key directory: %w", err)
	}
	private, public, err := throwawayKey()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(keys, "node"), private, 0o600); err != nil {
		return fmt.Errorf("writing scratch key: %w", err)
	}
	if err := os.WriteFile(filepath.Join(keys, "node.pub"), public, 0o644); err != nil {
		return fmt.Errorf("writing scratch public key: %w", err)
	}
	return nil
}

// throwawayKey generates an ed25519 key pair encoded as an OpenSSH private
// key block and an authorized_keys line.
func throwawayKey() (private, public []byte, err error) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("generating scratch key: %w", err)
	}
	block, err := ssh.MarshalPrivateKey(privateKey, "seedhost-check")
	if err != nil {
		return nil, nil, fmt.Errorf("encoding scratch key: %w", err)
	}
	sshPublic, err := ssh.NewPublicKey(publicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding scratch public key: %w", err)
	}
	return pem.EncodeToMemory(block), ssh.MarshalAuthorizedKey(sshPublic), nil
}
