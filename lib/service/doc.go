// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

// Package service assembles the supervisor descriptors for the two seedhost
// services and renders them as systemd unit files.
//
// [Assemble] combines the operator options, the service's merged sandbox
// policy and (for the node) the resolved key credential into a
// [Descriptor]. Both services run "<binary> --listen <addr>:<port>" plus
// the operator's extra arguments, under a dynamic user, in the state
// directory, with restart-on-failure and KillMode=control-group. The node
// restarts after 30s and the gateway after 10s. The gateway is ordered
// after the node but does not require it, so either can fail and restart
// without taking the other down.
//
// Every command-line token is escaped individually for the unit file
// ([EscapeArg]): the supervisor never re-splits a token, and "%" and "$"
// reach the program literally.
package service
