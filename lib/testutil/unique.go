// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"sync/atomic"
)

var uniqueCounter atomic.Uint64

// UniqueID returns "prefix-N" where N increases monotonically within the
// process.
//
//	prefix := testutil.UniqueID("SEEDHOST_TEST") + "_" // "SEEDHOST_TEST-1_"
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, uniqueCounter.Add(1))
}
