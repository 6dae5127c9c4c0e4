// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds seedhost's CBOR configuration and the content
// fingerprint built on it.
//
// JSON is used wherever a human or the seed binary reads the bytes: the
// compiled settings artifact, CLI --json output. CBOR is used for state
// seedhost keeps for itself, which today means the evaluation cache under
// the cache directory.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted map
// keys, smallest integer encoding, no indefinite-length items. Identical
// values encode to identical bytes, which is what makes [Fingerprint]
// usable as a cache key.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// # Struct tags
//
// A `cbor` tag marks a type that is only ever CBOR. A `json` tag marks a
// type that may be either; fxamacker/cbor falls back to `json` tags when no
// `cbor` tag is present. Never put both on one field.
package codec
