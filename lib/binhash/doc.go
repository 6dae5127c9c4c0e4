// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash hashes executables by content.
//
// The evaluation cache is keyed on the identity of the config checker: an
// upgraded seed binary may accept or reject settings differently, so a
// cached verdict must not survive it. Paths and modification times are not
// enough (package managers preserve mtimes), so the binary's bytes are
// hashed.
//
// [HashFile] streams a file through BLAKE3; a [Digest] prints as hex and
// [ParseDigest] reads it back.
package binhash
