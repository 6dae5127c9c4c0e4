// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to name under directory, creating parent
// directories, and returns the full path.
func WriteFile(t testing.TB, directory, name, content string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(directory, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// WriteScript writes an executable /bin/sh script with the given body.
func WriteScript(t testing.TB, directory, name, body string) string {
	t.Helper()
	return WriteFile(t, directory, name, "#!/bin/sh\n"+body, 0o755)
}
