// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zeebo/blake3"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestHashFile(t *testing.T) {
	t.Parallel()
	content := []byte("#!/bin/sh\nexit 0\n")
	got, err := HashFile(writeFile(t, "seed", content))
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if want := Digest(blake3.Sum256(content)); got != want {
		t.Errorf("HashFile = %x, want %x", got, want)
	}
}

func TestHashFileEmpty(t *testing.T) {
	t.Parallel()
	got, err := HashFile(writeFile(t, "empty", nil))
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if want := Digest(blake3.Sum256(nil)); got != want {
		t.Errorf("HashFile(empty) = %x, want %x", got, want)
	}
}

func TestHashFileLarge(t *testing.T) {
	t.Parallel()
	content := make([]byte, 256*1024)
	for i := range content {
		content[i] = byte(i % 251)
	}
	got, err := HashFile(writeFile(t, "large", content))
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if want := Digest(blake3.Sum256(content)); got != want {
		t.Errorf("HashFile(large) = %x, want %x", got, want)
	}
}

func TestHashFileNonexistent(t *testing.T) {
	t.Parallel()
	if _, err := HashFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("HashFile should fail for a missing file")
	}
}

func TestHashFileDifferentContent(t *testing.T) {
	t.Parallel()
	first, err := HashFile(writeFile(t, "a", []byte("seed 1.0")))
	if err != nil {
		t.Fatal(err)
	}
	second, err := HashFile(writeFile(t, "b", []byte("seed 1.1")))
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Error("different files produced the same digest")
	}
}

func TestParseDigestRoundTrip(t *testing.T) {
	t.Parallel()
	original := Digest(blake3.Sum256([]byte("round-trip")))
	formatted := original.String()
	if len(formatted) != 64 {
		t.Fatalf("String length = %d, want 64", len(formatted))
	}
	parsed, err := ParseDigest(formatted)
	if err != nil {
		t.Fatalf("ParseDigest: %v", err)
	}
	if parsed != original {
		t.Errorf("round trip: %x != %x", parsed, original)
	}
}

func TestHashReader(t *testing.T) {
	t.Parallel()
	got, err := HashReader(strings.NewReader("seed"))
	if err != nil {
		t.Fatal(err)
	}
	if want := Digest(blake3.Sum256([]byte("seed"))); got != want {
		t.Errorf("HashReader = %s, want %s", got, want)
	}
}

func TestParseDigestInvalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
	}{
		{"not hex", "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz"},
		{"too short", "abcd"},
		{"too long", "abcdef0123456789abcdef0123456789abcdef0123456789abcdef0123456789aa"},
		{"empty", ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ParseDigest(test.input); err == nil {
				t.Errorf("ParseDigest(%q) should fail", test.input)
			}
		})
	}
}
