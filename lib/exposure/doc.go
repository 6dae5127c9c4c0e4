// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

// Package exposure decides how the seedhost services are reachable from
// outside the host: an optional firewall opening for the node's port and
// an optional reverse proxy virtual host in front of the gateway.
//
// The virtual host also feeds back into the node's settings. When a public
// hostname is configured, [Exposure.Defaults] contributes deferred
// defaults for node.alias and node.externalAddresses, evaluated during
// settings resolution at default priority, so an operator-set value always
// wins and the hostname is only consulted when it is needed.
package exposure
