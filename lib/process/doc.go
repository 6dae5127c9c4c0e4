// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds the entrypoint helpers of the seedhost binary:
// reporting an error from main before the structured logger exists, and
// mapping an error to the process exit status.
package process
