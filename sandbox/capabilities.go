// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"os/exec"
)

// Capabilities describes the host tools seedhost depends on.
type Capabilities struct {
	// SystemctlPath is empty when systemd is not installed.
	SystemctlPath string

	// SystemdVersion is zero when it could not be determined.
	SystemdVersion int

	// SystemdRunAvailable is true if systemd-run is on PATH.
	SystemdRunAvailable bool

	// NftPath is the nft binary, needed when the firewall is opened.
	NftPath string

	// NginxPath is the nginx binary, needed for the virtual host.
	NginxPath string
}

// DetectCapabilities probes PATH and systemctl.
func DetectCapabilities() *Capabilities {
	caps := &Capabilities{}

	if path, err := exec.LookPath("systemctl"); err == nil {
		caps.SystemctlPath = path
		if out, err := exec.Command(path, "--version").Output(); err == nil {
			if version, err := ParseSystemdVersion(string(out)); err == nil {
				caps.SystemdVersion = version
			}
		}
	}
	if _, err := exec.LookPath("systemd-run"); err == nil {
		caps.SystemdRunAvailable = true
	}
	if path, err := exec.LookPath("nft"); err == nil {
		caps.NftPath = path
	}
	if path, err := exec.LookPath("nginx"); err == nil {
		caps.NginxPath = path
	}
	return caps
}

// SkipReason returns why services cannot be installed on this host, or
// the empty string if they can.
func (c *Capabilities) SkipReason() string {
	if c.SystemctlPath == "" {
		return "systemd not installed"
	}
	if c.SystemdVersion == 0 {
		return "could not determine systemd version"
	}
	return ""
}
