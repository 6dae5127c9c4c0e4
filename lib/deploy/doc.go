// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

// Package deploy runs one evaluation of the operator's options end to end
// and installs the result.
//
// [Evaluate] layers the operator's settings over the built-in and exposure
// defaults, resolves the node key credential, builds both sandbox
// policies from the fragment set, assembles the service descriptors and
// finally serializes the settings and hands them to the config checker. A
// [Result] exists only when the checker accepted the artifact, so
// [Result.Install] never writes an unvalidated configuration.
//
// Evaluations are memoized in a [Cache] keyed by a BLAKE3 fingerprint of
// the deterministic CBOR encoding of the options, the expanded fragment set,
// the artifact and the checker's identity. A hit skips the checker.
// Records are CBOR, compressed with zstd or lz4.
package deploy
