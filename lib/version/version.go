// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"os"
	"runtime"

	"github.com/seedhost/seedhost/lib/binhash"
)

// Set via -ldflags at build time.
var (
	GitCommit = "unknown"
	GitDirty  = "false"
	BuildTime = "unknown"
	Version   = "0.1.0-dev"
)

// Info returns "0.1.0-dev (abc1234, 2026-...)" for --version output.
func Info() string {
	dirty := ""
	if GitDirty == "true" {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, GitCommit, dirty, BuildTime)
}

// Full returns Info plus the Go toolchain and platform.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Short returns just the version number.
func Short() string {
	return Version
}

// SelfDigest returns the BLAKE3 digest and path of the running binary.
// Two hosts reporting the same digest render identical deployments from
// identical options.
func SelfDigest() (digest string, path string, err error) {
	path, err = os.Executable()
	if err != nil {
		return "", "", fmt.Errorf("resolving own executable: %w", err)
	}
	sum, err := binhash.HashFile(path)
	if err != nil {
		return "", "", err
	}
	return sum.String(), path, nil
}
