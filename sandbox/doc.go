// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

// Package sandbox composes the supervisor hardening policy applied to each
// seedhost service.
//
// A policy is built from named [Fragment]s. Every service starts from the
// "common" fragment, adds its own service fragment ("node", "httpd"), and
// then a relaxation fragment ("node-relax", "httpd-relax") that re-admits
// whatever the service actually needs. Fragments are YAML documents with two
// sections: set, for scalar directives (last fragment wins), and append,
// for list directives (contributions concatenate in fragment order). The
// merge itself is [priority.Table]; all fragments contribute at
// [priority.Fragment], so an operator override always wins over them.
//
// Every directive a fragment may name is listed in the directive table
// ([Lookup]) with its kind, category and the systemd version that introduced
// it. Fragments that name an unknown directive, put a list directive under
// set (or a scalar under append), or leave a ${VAR} reference unexpanded
// are rejected before merging.
//
// [FragmentLoader] holds the built-in fragments and any operator fragment
// files; [Build] merges a fragment chain into a [Policy], which renders to
// unit-file lines in directive table order. [Validator] performs host
// preflight checks (systemd version, service binaries, credential sources)
// and reports per-directive compatibility of a policy with the running
// systemd. [TransientCommand] turns a policy into a systemd-run invocation
// for smoke-testing a service outside of its installed unit.
package sandbox
