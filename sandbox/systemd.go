// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// TransientUnit runs a command under systemd-run with a policy applied,
// for smoke-testing a service outside its installed unit.
type TransientUnit struct {
	// Name is the transient unit name (e.g., "seed-node-smoke").
	Name string

	// Policy supplies the --property arguments.
	Policy *Policy

	// Properties are extra unit properties ("Key=Value") placed before the
	// policy's, such as Environment= or LoadCredential=.
	Properties []string

	// Wait keeps systemd-run attached until the command exits.
	Wait bool
}

// Available reports whether systemd-run is on PATH.
func (u *TransientUnit) Available() bool {
	_, err := exec.LookPath("systemd-run")
	return err == nil
}

// TransientCommand wraps cmd in a systemd-run invocation.
func (u *TransientUnit) TransientCommand(cmd []string) []string {
	args := []string{"systemd-run", "--collect"}
	if u.Wait {
		args = append(args, "--wait", "--pipe")
	}
	if u.Name != "" {
		args = append(args, "--unit="+u.Name)
	}
	for _, property := range u.Properties {
		args = append(args, "--property="+property)
	}
	if u.Policy != nil {
		args = append(args, u.Policy.Properties()...)
	}
	args = append(args, "--")
	return append(args, cmd...)
}

// ParseSystemdVersion extracts the version number from the first line of
// "systemctl --version" output, e.g. "systemd 252 (252.22-1~deb12u1)".
func ParseSystemdVersion(output string) (int, error) {
	line, _, _ := strings.Cut(strings.TrimSpace(output), "\n")
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != "systemd" {
		return 0, fmt.Errorf("unrecognized systemctl --version output %q", line)
	}
	version, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, fmt.Errorf("unrecognized systemd version %q: %w", fields[1], err)
	}
	return version, nil
}

// Unsupported lists the policy's directives that the given systemd version
// does not understand. systemd ignores unknown directives with a warning,
// so these weaken the policy rather than break the unit.
func Unsupported(policy *Policy, version int) []Directive {
	var result []Directive
	for _, name := range policy.Directives() {
		directive, ok := Lookup(name)
		if ok && directive.Since > version {
			result = append(result, directive)
		}
	}
	return result
}
