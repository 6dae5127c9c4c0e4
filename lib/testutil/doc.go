// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for seedhost packages.
//
// [WriteFile] and [WriteScript] create fixture files under a test's
// temporary directory: key files, fragment files and shell scripts that
// stand in for the seed checker and service binaries.
//
// [UniqueID] generates process-unique identifiers. Use it for environment
// variable prefixes so tests that set variables never read each other's.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
