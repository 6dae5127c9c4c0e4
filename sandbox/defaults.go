// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

// Names of the built-in fragments.
const (
	FragmentCommon     = "common"
	FragmentNode       = "node"
	FragmentNodeRelax  = "node-relax"
	FragmentHTTPD      = "httpd"
	FragmentHTTPDRelax = "httpd-relax"
)

// Variables referenced by the built-in fragments.
const (
	VarStateDir     = "STATE_DIR"
	VarNodePort     = "NODE_PORT"
	VarHTTPDPort    = "HTTPD_PORT"
	VarConfigSource = "CONFIG_SOURCE"
	VarConfigTarget = "CONFIG_TARGET"
)

// defaultFragmentsYAML is the built-in fragment set. Operator files loaded
// later replace fragments by name.
const defaultFragmentsYAML = `
fragments:
  common:
    description: "Baseline hardening shared by every seedhost service"
    set:
      ProtectSystem: "strict"
      ProtectHome: "yes"
      ProtectProc: "invisible"
      ProcSubset: "pid"
      PrivateTmp: "yes"
      PrivateDevices: "yes"
      DevicePolicy: "closed"
      PrivateUsers: "yes"
      PrivateIPC: "yes"
      PrivateMounts: "yes"
      RestrictNamespaces: "yes"
      ProtectHostname: "yes"
      ProtectClock: "yes"
      ProtectKernelTunables: "yes"
      ProtectKernelModules: "yes"
      ProtectKernelLogs: "yes"
      ProtectControlGroups: "yes"
      NoNewPrivileges: "yes"
      LockPersonality: "yes"
      MemoryDenyWriteExecute: "yes"
      RestrictRealtime: "yes"
      RestrictSUIDSGID: "yes"
      RemoveIPC: "yes"
      DynamicUser: "yes"
      KeyringMode: "private"
      SystemCallErrorNumber: "EPERM"
      UMask: "0077"
      StateDirectoryMode: "0750"
    append:
      CapabilityBoundingSet: []
      AmbientCapabilities: []
      SystemCallArchitectures: ["native"]
      SystemCallFilter: ["@system-service", "~@privileged", "~@resources", "~@timer"]
      RestrictAddressFamilies: ["AF_UNIX", "AF_INET", "AF_INET6"]
      SocketBindDeny: ["any"]
      BindReadOnlyPaths: ["/etc/resolv.conf", "/etc/ssl/certs"]
      StateDirectory: ["seedhost"]

  node:
    description: "Peer node: binds its listen port and reads the compiled settings"
    append:
      SocketBindAllow: ["tcp:${NODE_PORT}"]
      BindReadOnlyPaths: ["${CONFIG_SOURCE}:${CONFIG_TARGET}"]
      ReadWritePaths: ["${STATE_DIR}"]

  node-relax:
    description: "Peer node needs timers for gossip and reconnect backoff"
    append:
      SystemCallFilter: ["@timer"]

  httpd:
    description: "HTTP gateway: binds its listen port, talks to the node over TCP"
    set:
      ProtectSystem: "strict"
    append:
      SocketBindAllow: ["tcp:${HTTPD_PORT}"]
      ReadWritePaths: ["${STATE_DIR}"]

  httpd-relax:
    description: "HTTP gateway adjusts its own file descriptor limits"
    append:
      SystemCallFilter: ["@resources"]
`
