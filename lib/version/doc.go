// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports the build of the seedhost binary.
//
// [GitCommit], [GitDirty], [BuildTime] and [Version] are injected with
// -ldflags -X, for example:
//
//	go build -ldflags "-X github.com/seedhost/seedhost/lib/version.GitCommit=$(git rev-parse --short HEAD)" ./cmd/seedhost
//
// Development builds report "unknown" and "0.1.0-dev".
package version
