// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

// Package compile turns resolved settings into the node's configuration
// artifact and refuses to install an artifact the node would reject.
//
// The artifact is the canonical JSON rendering of the settings. Before it
// is installed at [ArtifactPath] it is handed to a [Checker], normally
// [ExecChecker], which runs "<checker> config" against a scratch copy in a
// throwaway home directory. A non-zero exit produces a [ValidationError]
// carrying a line-numbered listing of the artifact and the checker's
// output, and nothing is written. An accepted artifact is installed
// atomically (temporary file, then rename) with mode 0444.
package compile
