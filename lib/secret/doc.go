// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds key material in memory that is locked against
// swapping, excluded from core dumps and zeroed on release.
//
// seedhost never needs the node's private key to render a deployment: the
// supervisor loads it into the service directly. It does read the key once
// during preflight, to confirm a plaintext source holds something other
// than whitespace. That read goes through [ReadFromPath], so the key bytes
// only ever live in a [Buffer] allocated with mmap outside the Go heap,
// where the garbage collector cannot copy them.
package secret
