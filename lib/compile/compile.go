// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package compile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/seedhost/seedhost/lib/settings"
)

// Fixed artifact locations.
const (
	// ArtifactPath is where the artifact lives on the host.
	ArtifactPath = "/etc/seedhost/config.json"

	// ContainerPath is where the node sees the artifact, bound read-only.
	ContainerPath = "/var/lib/seedhost/config.json"

	// ArtifactMode is the installed artifact's permission bits.
	ArtifactMode os.FileMode = 0o444
)

// Artifact is a compiled configuration.
type Artifact struct {
	// Path is where the artifact was installed.
	Path string

	// Bytes is the canonical serialization.
	Bytes []byte

	// Checked is true when a checker accepted the bytes.
	Checked bool
}

// Compiler serializes, validates and installs settings.
type Compiler struct {
	// Root is prefixed to ArtifactPath. Empty means "/".
	Root string

	// Checker validates the artifact. Nil disables validation.
	Checker Checker

	// Logger is optional.
	Logger *slog.Logger
}

func (c *Compiler) log(msg string, args ...any) {
	if c.Logger != nil {
		c.Logger.Info(msg, args...)
	}
}

// Path returns the install location under Root.
func (c *Compiler) Path() string {
	return filepath.Join(rootOrSlash(c.Root), ArtifactPath)
}

// Compile validates the settings and installs the artifact.
func (c *Compiler) Compile(ctx context.Context, s settings.Settings) (*Artifact, error) {
	data, checked, err := c.Validate(ctx, s)
	if err != nil {
		return nil, err
	}
	return c.Install(data, checked)
}

// Validate serializes the settings and runs the checker without
// installing anything. The boolean reports whether a checker ran.
func (c *Compiler) Validate(ctx context.Context, s settings.Settings) ([]byte, bool, error) {
	data, err := Serialize(s)
	if err != nil {
		return nil, false, err
	}
	checked, err := c.Verify(ctx, data)
	if err != nil {
		return nil, false, err
	}
	return data, checked, nil
}

// Verify runs the checker on an already serialized artifact. It reports
// false with no error when validation is disabled.
func (c *Compiler) Verify(ctx context.Context, data []byte) (bool, error) {
	if c.Checker == nil {
		c.log("config check disabled")
		return false, nil
	}
	if err := Check(ctx, c.Checker, data); err != nil {
		return false, err
	}
	c.log("config check passed", "bytes", len(data))
	return true, nil
}

// Install writes validated artifact bytes to Path. Callers pass only
// bytes that Verify accepted, or bytes produced with validation disabled.
func (c *Compiler) Install(data []byte, checked bool) (*Artifact, error) {
	path := c.Path()
	if err := WriteFileAtomic(path, data, ArtifactMode); err != nil {
		return nil, fmt.Errorf("installing artifact: %w", err)
	}
	c.log("installed settings artifact", "path", path, "bytes", len(data), "checked", checked)
	return &Artifact{Path: path, Bytes: data, Checked: checked}, nil
}

// Serialize returns the canonical artifact bytes for s.
func Serialize(s settings.Settings) ([]byte, error) {
	data, err := s.Canonical()
	if err != nil {
		return nil, fmt.Errorf("serializing settings: %w", err)
	}
	return data, nil
}

// Check runs checker on data and converts a rejection into a
// [ValidationError].
func Check(ctx context.Context, checker Checker, data []byte) error {
	result, err := checker.Check(ctx, data)
	if err != nil {
		return fmt.Errorf("running config checker: %w", err)
	}
	if result.ExitCode != 0 {
		return &ValidationError{
			ExitCode: result.ExitCode,
			Artifact: data,
			Listing:  NumberLines(data),
			Output:   result.Output,
		}
	}
	return nil
}

func rootOrSlash(root string) string {
	if root == "" {
		return "/"
	}
	return root
}

// WriteFileAtomic writes data to a temporary file in path's directory and
// renames it into place, so readers never see a partial file. Parent
// directories are created.
func WriteFileAtomic(path string, data []byte, mode os.FileMode) error {
	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", directory, err)
	}

	file, err := os.CreateTemp(directory, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	temporaryPath := file.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(temporaryPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		file.Close()
		return fmt.Errorf("writing %s: %w", temporaryPath, err)
	}
	if err := file.Chmod(mode); err != nil {
		file.Close()
		return fmt.Errorf("setting mode on %s: %w", temporaryPath, err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("syncing %s: %w", temporaryPath, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", temporaryPath, err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	success = true

	// Sync the parent so the rename survives power loss.
	if parent, err := os.Open(directory); err == nil {
		parent.Sync()
		parent.Close()
	}
	return nil
}
