// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/seedhost/seedhost/lib/credential"
)

// MinimumSystemdVersion is the oldest systemd that supports
// LoadCredential=.
const MinimumSystemdVersion = 247

// encryptedCredentialsSince is the first systemd with
// LoadCredentialEncrypted=.
const encryptedCredentialsSince = 250

// ValidationResult holds the result of a validation check.
type ValidationResult struct {
	Name    string
	Passed  bool
	Message string
	Warning bool // True if this is a warning, not an error.
}

// Validator performs host preflight checks before services are installed.
type Validator struct {
	results []ValidationResult
	errors  int
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{
		results: make([]ValidationResult, 0),
	}
}

// Results returns all validation results.
func (v *Validator) Results() []ValidationResult {
	return v.results
}

// HasErrors returns true if any validation failed.
func (v *Validator) HasErrors() bool {
	return v.errors > 0
}

func (v *Validator) pass(name, message string) {
	v.results = append(v.results, ValidationResult{
		Name:    name,
		Passed:  true,
		Message: message,
	})
}

func (v *Validator) warn(name, message string) {
	v.results = append(v.results, ValidationResult{
		Name:    name,
		Passed:  true,
		Message: message,
		Warning: true,
	})
}

func (v *Validator) fail(name, message string) {
	v.results = append(v.results, ValidationResult{
		Name:    name,
		Passed:  false,
		Message: message,
	})
	v.errors++
}

// ValidateSystemd checks that systemd is present and new enough.
func (v *Validator) ValidateSystemd(caps *Capabilities) {
	if caps.SystemctlPath == "" {
		v.fail("systemd", "systemctl not found in PATH")
		return
	}
	if caps.SystemdVersion == 0 {
		v.warn("systemd", fmt.Sprintf("found at %s but the version could not be determined", caps.SystemctlPath))
		return
	}
	if caps.SystemdVersion < MinimumSystemdVersion {
		v.fail("systemd", fmt.Sprintf("version %d is older than the minimum %d", caps.SystemdVersion, MinimumSystemdVersion))
		return
	}
	v.pass("systemd", fmt.Sprintf("version %d (%s)", caps.SystemdVersion, caps.SystemctlPath))
}

// ValidateBinary checks that a service binary exists and is executable.
// Bare names are looked up on PATH.
func (v *Validator) ValidateBinary(name, path string) {
	checkName := "binary-" + name
	resolved := path
	if !strings.Contains(path, "/") {
		found, err := exec.LookPath(path)
		if err != nil {
			v.fail(checkName, fmt.Sprintf("%s not found in PATH", path))
			return
		}
		resolved = found
	}

	info, err := os.Stat(resolved)
	if err != nil {
		v.fail(checkName, fmt.Sprintf("cannot stat %s: %v", resolved, err))
		return
	}
	if info.IsDir() || info.Mode()&0o111 == 0 {
		v.fail(checkName, fmt.Sprintf("%s is not an executable file", resolved))
		return
	}
	if !filepath.IsAbs(resolved) {
		v.warn(checkName, fmt.Sprintf("%s is relative; units need an absolute path", resolved))
		return
	}
	v.pass(checkName, resolved)
}

// ValidateCredential checks the node key source and, for encrypted
// credentials, that systemd can decrypt them.
func (v *Validator) ValidateCredential(d credential.Descriptor, caps *Capabilities) {
	if err := credential.CheckSource(d); err != nil {
		v.fail("credential", err.Error())
		return
	}

	switch d := d.(type) {
	case credential.Encrypted:
		if caps != nil && caps.SystemdVersion != 0 && caps.SystemdVersion < encryptedCredentialsSince {
			v.fail("credential", fmt.Sprintf("encrypted credential %q needs systemd %d or newer (have %d)",
				d.Name, encryptedCredentialsSince, caps.SystemdVersion))
			return
		}
		v.pass("credential", fmt.Sprintf("encrypted credential %q at %s", d.Name, d.SourcePath))
	case credential.Plain:
		v.pass("credential", fmt.Sprintf("key file %s", d.SourcePath))
	}
}

// ValidatePolicy reports directives of a policy that the host's systemd
// will ignore.
func (v *Validator) ValidatePolicy(service string, policy *Policy, caps *Capabilities) {
	checkName := "policy-" + service
	if caps == nil || caps.SystemdVersion == 0 {
		v.warn(checkName, "systemd version unknown; directive support not checked")
		return
	}
	unsupported := Unsupported(policy, caps.SystemdVersion)
	if len(unsupported) == 0 {
		v.pass(checkName, fmt.Sprintf("%d directives from %s", len(policy.Directives()), strings.Join(policy.Fragments, ", ")))
		return
	}
	names := make([]string, len(unsupported))
	for i, d := range unsupported {
		names[i] = fmt.Sprintf("%s (systemd %d)", d.Name, d.Since)
	}
	v.warn(checkName, "ignored by this systemd: "+strings.Join(names, ", "))
}

// ValidateTool checks for an optional host tool that a feature needs.
func (v *Validator) ValidateTool(name, path string, needed bool) {
	switch {
	case !needed:
		return
	case path == "":
		v.fail(name, fmt.Sprintf("%s is required by the configuration but not installed", name))
	default:
		v.pass(name, path)
	}
}

// PrintResults writes validation results to a writer.
func (v *Validator) PrintResults(w io.Writer) {
	for _, r := range v.results {
		var prefix string
		if r.Passed {
			if r.Warning {
				prefix = "⚠"
			} else {
				prefix = "✓"
			}
		} else {
			prefix = "✗"
		}
		fmt.Fprintf(w, "%s %s: %s\n", prefix, r.Name, r.Message)
	}

	fmt.Fprintln(w)
	if v.HasErrors() {
		fmt.Fprintf(w, "Preflight failed with %d error(s)\n", v.errors)
	} else {
		fmt.Fprintln(w, "Ready to install")
	}
}
