// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

// Package priority is the one merge primitive shared by the settings
// model and the sandbox policy builder.
//
// A [Table] collects [Assignment] values keyed by name. Each assignment
// carries a [Priority] and a [Mode]:
//
//   - [Set] assignments hold a single value. The assignment with the
//     highest priority wins; among assignments at that priority the one
//     made last wins.
//   - [Append] assignments hold a list. All contributions at the highest
//     priority present for the key are concatenated in the order they
//     were made. Contributions at lower priorities are discarded.
//
// A key's mode is fixed by its first assignment. Mixing Set and Append
// on the same key is a [ConflictError]: a list directive can never be
// silently replaced by a scalar one or vice versa.
//
// Resolution ([Table.Resolve]) returns entries in the order their keys
// were first assigned, so callers that render the result produce the
// same bytes for the same sequence of assignments.
//
// This package has no seedhost-internal dependencies.
package priority
