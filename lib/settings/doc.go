// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

// Package settings holds the free-form node settings object and resolves
// it against built-in defaults.
//
// [Settings] is a flat map from dotted key paths ("node.alias") to
// JSON-compatible leaf values. Operator-supplied values always win over
// defaults; the ranking is done by lib/priority so that the same merge
// rules apply here and in the sandbox policy builder.
//
// A [Default] is either static or deferred. Deferred defaults are
// functions of other settings and are evaluated in a second phase, after
// every operator value and static default is in place, and only when no
// higher-priority value exists for their key. A deferred default reads
// other keys through a [Lookup], which may in turn evaluate other deferred
// defaults. A chain that comes back to a key already being evaluated
// fails with a [CycleError] naming the whole chain.
//
// Serialization to the on-disk artifact goes through [Settings.Canonical]:
// nested, sorted-key, indented JSON with a trailing newline. The same
// settings always produce the same bytes.
//
// [LoadFile] and [LoadEnv] read operator settings through koanf. JSON
// files may carry comments (JSONC).
package settings
