// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

// Package credential turns the node key locator an operator writes in the
// options file into the credential wiring the supervisor needs.
//
// A locator is either a plain path ("/etc/seedhost/node.key") or an
// encrypted credential addressed by name ("node-key:/etc/credstore/node.cred").
// [Resolve] splits on the first ':' and returns a [Descriptor], which is one
// of exactly two types:
//
//   - [Plain] -- the key file is loaded as-is (systemd LoadCredential=)
//   - [Encrypted] -- the supervisor decrypts the named credential
//     (systemd LoadCredentialEncrypted=)
//
// The set is closed: Descriptor has an unexported method, so callers switch
// on the concrete type and handle both cases.
//
// Either way the key ends up inside the service's private filesystem view
// at [MountTarget], bound read-only from the supervisor's per-unit
// credentials directory. [CheckSource] verifies at launch-preparation time
// that the source file exists and is not empty; there is no fallback to an
// empty credential.
package credential
