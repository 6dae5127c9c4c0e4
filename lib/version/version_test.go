// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	info := Info()
	if !strings.HasPrefix(info, Version+" (") {
		t.Errorf("Info() = %q, want prefix %q", info, Version)
	}
	if !strings.Contains(Full(), "Platform: ") {
		t.Errorf("Full() = %q", Full())
	}
}

func TestSelfDigest(t *testing.T) {
	t.Parallel()
	digest, path, err := SelfDigest()
	if err != nil {
		t.Fatalf("SelfDigest: %v", err)
	}
	if len(digest) != 64 || path == "" {
		t.Errorf("SelfDigest = %q, %q", digest, path)
	}
}
