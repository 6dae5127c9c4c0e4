// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package credential

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/seedhost/seedhost/lib/secret"
)

// Separator splits an encrypted locator into name and path.
const Separator = ":"

// DefaultName is the credential name used for plain locators.
const DefaultName = "node-key"

// MountTarget is where the key appears inside the service's private view.
const MountTarget = "/var/lib/seedhost/keys/node"

// CredentialsDirectory is the systemd specifier for the unit's
// credentials directory.
const CredentialsDirectory = "%d"

// ErrEmptyLocator is returned for an empty locator.
var ErrEmptyLocator = errors.New("credential locator is empty")

// MalformedLocatorError reports an encrypted locator with an empty name
// or an empty path.
type MalformedLocatorError struct {
	Locator string
	Reason  string
}

func (e *MalformedLocatorError) Error() string {
	return fmt.Sprintf("malformed credential locator %q: %s", e.Locator, e.Reason)
}

// Descriptor is a resolved locator: either [Plain] or [Encrypted].
type Descriptor interface {
	// Source is the host path the supervisor reads.
	Source() string

	descriptor()
}

// Plain is a key file loaded without decryption.
type Plain struct {
	SourcePath string
}

// Source returns the key file path.
func (p Plain) Source() string { return p.SourcePath }

func (Plain) descriptor() {}

// Encrypted is a named credential the supervisor decrypts before handing
// it to the service.
type Encrypted struct {
	Name       string
	SourcePath string
}

// Source returns the ciphertext path.
func (e Encrypted) Source() string { return e.SourcePath }

func (Encrypted) descriptor() {}

// Resolve classifies a locator. A separator selects encrypted mode with
// name = text before the first separator and path = text after it.
func Resolve(locator string) (Descriptor, error) {
	if locator == "" {
		return nil, ErrEmptyLocator
	}
	name, path, found := strings.Cut(locator, Separator)
	if !found {
		return Plain{SourcePath: locator}, nil
	}
	if name == "" {
		return nil, &MalformedLocatorError{Locator: locator, Reason: "credential name before ':' is empty"}
	}
	if path == "" {
		return nil, &MalformedLocatorError{Locator: locator, Reason: "ciphertext path after ':' is empty"}
	}
	return Encrypted{Name: name, SourcePath: path}, nil
}

// Name returns the name the credential has in the unit's credentials
// directory.
func Name(d Descriptor) string {
	switch d := d.(type) {
	case Encrypted:
		return d.Name
	case Plain:
		return DefaultName
	default:
		panic(fmt.Sprintf("credential: unknown descriptor %T", d))
	}
}

// Directive returns the systemd directive and value that load the
// credential, e.g. ("LoadCredentialEncrypted", "node-key:/etc/credstore/node.cred").
func Directive(d Descriptor) (string, string) {
	switch d := d.(type) {
	case Encrypted:
		return "LoadCredentialEncrypted", d.Name + Separator + d.SourcePath
	case Plain:
		return "LoadCredential", DefaultName + Separator + d.SourcePath
	default:
		panic(fmt.Sprintf("credential: unknown descriptor %T", d))
	}
}

// Mount returns the read-only bind entry that exposes the loaded
// credential at target.
func Mount(d Descriptor, target string) string {
	return CredentialsDirectory + "/" + Name(d) + Separator + target
}

// CheckSource verifies that the credential source can be handed to the
// supervisor: it must exist, be a regular file and be non-empty. Plain
// sources are read into protected memory to confirm they hold key material
// beyond whitespace; encrypted sources are opaque and only checked by size.
func CheckSource(d Descriptor) error {
	path := d.Source()
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("credential source %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("credential source %s is not a regular file", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("credential source %s is empty", path)
	}

	switch d.(type) {
	case Plain:
		buffer, err := secret.ReadFromPath(path)
		if err != nil {
			return fmt.Errorf("credential source %s: %w", path, err)
		}
		return buffer.Close()
	case Encrypted:
		return nil
	default:
		panic(fmt.Sprintf("credential: unknown descriptor %T", d))
	}
}
