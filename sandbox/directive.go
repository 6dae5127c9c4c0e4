// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"slices"
	"strings"
)

// Kind is how a directive's values combine across fragments.
type Kind int

const (
	// Scalar directives hold one value; a later fragment replaces it.
	Scalar Kind = iota
	// List directives accumulate values from every fragment.
	List
)

func (k Kind) String() string {
	if k == List {
		return "list"
	}
	return "scalar"
}

// Category groups directives for rendering and reporting.
type Category string

const (
	CategoryCapabilities Category = "capabilities"
	CategorySyscalls     Category = "syscalls"
	CategoryFilesystem   Category = "filesystem"
	CategoryNamespaces   Category = "namespaces"
	CategoryNetwork      Category = "network"
	CategorySecurity     Category = "security"
	CategoryResources    Category = "resources"
)

// Directive describes one supervisor directive a fragment may contribute.
type Directive struct {
	Name     string
	Kind     Kind
	Category Category

	// Since is the first systemd version that understands the directive.
	// Zero means every supported version does.
	Since int

	// Repeated list directives render one assignment per value. systemd
	// applies a leading "~" to a whole assignment, so mixed allow and deny
	// entries cannot share a line.
	Repeated bool

	// Values restricts scalar values to an enumerated set. Empty means any
	// value is accepted.
	Values []string
}

var booleanValues = []string{"yes", "no", "true", "false", "on", "off", "1", "0"}

// directives is ordered: rendering follows this order, grouped by category.
var directives = []Directive{
	{Name: "CapabilityBoundingSet", Kind: List, Category: CategoryCapabilities},
	{Name: "AmbientCapabilities", Kind: List, Category: CategoryCapabilities},

	{Name: "SystemCallFilter", Kind: List, Category: CategorySyscalls, Repeated: true},
	{Name: "SystemCallArchitectures", Kind: List, Category: CategorySyscalls},
	{Name: "SystemCallErrorNumber", Kind: Scalar, Category: CategorySyscalls},

	{Name: "ProtectSystem", Kind: Scalar, Category: CategoryFilesystem, Values: []string{"yes", "no", "true", "false", "full", "strict"}},
	{Name: "ProtectHome", Kind: Scalar, Category: CategoryFilesystem, Values: []string{"yes", "no", "true", "false", "read-only", "tmpfs"}},
	{Name: "ProtectProc", Kind: Scalar, Category: CategoryFilesystem, Since: 247, Values: []string{"noaccess", "invisible", "ptraceable", "default"}},
	{Name: "ProcSubset", Kind: Scalar, Category: CategoryFilesystem, Since: 247, Values: []string{"all", "pid"}},
	{Name: "PrivateTmp", Kind: Scalar, Category: CategoryFilesystem, Values: booleanValues},
	{Name: "PrivateDevices", Kind: Scalar, Category: CategoryFilesystem, Values: booleanValues},
	{Name: "DevicePolicy", Kind: Scalar, Category: CategoryFilesystem, Values: []string{"auto", "closed", "strict"}},
	{Name: "DeviceAllow", Kind: List, Category: CategoryFilesystem},
	{Name: "BindPaths", Kind: List, Category: CategoryFilesystem},
	{Name: "BindReadOnlyPaths", Kind: List, Category: CategoryFilesystem},
	{Name: "ReadWritePaths", Kind: List, Category: CategoryFilesystem},
	{Name: "InaccessiblePaths", Kind: List, Category: CategoryFilesystem},
	{Name: "TemporaryFileSystem", Kind: List, Category: CategoryFilesystem},
	{Name: "StateDirectory", Kind: List, Category: CategoryFilesystem},
	{Name: "StateDirectoryMode", Kind: Scalar, Category: CategoryFilesystem},
	{Name: "RuntimeDirectory", Kind: List, Category: CategoryFilesystem},
	{Name: "RuntimeDirectoryMode", Kind: Scalar, Category: CategoryFilesystem},
	{Name: "UMask", Kind: Scalar, Category: CategoryFilesystem},

	{Name: "RestrictNamespaces", Kind: Scalar, Category: CategoryNamespaces},
	{Name: "PrivateUsers", Kind: Scalar, Category: CategoryNamespaces, Values: booleanValues},
	{Name: "PrivateNetwork", Kind: Scalar, Category: CategoryNamespaces, Values: booleanValues},
	{Name: "PrivateIPC", Kind: Scalar, Category: CategoryNamespaces, Since: 248, Values: booleanValues},
	{Name: "PrivateMounts", Kind: Scalar, Category: CategoryNamespaces, Values: booleanValues},
	{Name: "ProtectHostname", Kind: Scalar, Category: CategoryNamespaces, Since: 242, Values: booleanValues},
	{Name: "ProtectClock", Kind: Scalar, Category: CategoryNamespaces, Since: 245, Values: booleanValues},
	{Name: "ProtectKernelTunables", Kind: Scalar, Category: CategoryNamespaces, Values: booleanValues},
	{Name: "ProtectKernelModules", Kind: Scalar, Category: CategoryNamespaces, Values: booleanValues},
	{Name: "ProtectKernelLogs", Kind: Scalar, Category: CategoryNamespaces, Since: 244, Values: booleanValues},
	{Name: "ProtectControlGroups", Kind: Scalar, Category: CategoryNamespaces, Values: booleanValues},

	{Name: "RestrictAddressFamilies", Kind: List, Category: CategoryNetwork},
	{Name: "SocketBindAllow", Kind: List, Category: CategoryNetwork, Since: 249},
	{Name: "SocketBindDeny", Kind: List, Category: CategoryNetwork, Since: 249},
	{Name: "IPAddressAllow", Kind: List, Category: CategoryNetwork},
	{Name: "IPAddressDeny", Kind: List, Category: CategoryNetwork},

	{Name: "NoNewPrivileges", Kind: Scalar, Category: CategorySecurity, Values: booleanValues},
	{Name: "LockPersonality", Kind: Scalar, Category: CategorySecurity, Values: booleanValues},
	{Name: "MemoryDenyWriteExecute", Kind: Scalar, Category: CategorySecurity, Values: booleanValues},
	{Name: "RestrictRealtime", Kind: Scalar, Category: CategorySecurity, Values: booleanValues},
	{Name: "RestrictSUIDSGID", Kind: Scalar, Category: CategorySecurity, Values: booleanValues},
	{Name: "RemoveIPC", Kind: Scalar, Category: CategorySecurity, Values: booleanValues},
	{Name: "DynamicUser", Kind: Scalar, Category: CategorySecurity, Values: booleanValues},
	{Name: "KeyringMode", Kind: Scalar, Category: CategorySecurity, Values: []string{"inherit", "private", "shared"}},

	{Name: "TasksMax", Kind: Scalar, Category: CategoryResources},
	{Name: "MemoryMax", Kind: Scalar, Category: CategoryResources},
	{Name: "MemoryHigh", Kind: Scalar, Category: CategoryResources},
	{Name: "CPUQuota", Kind: Scalar, Category: CategoryResources},
	{Name: "CPUWeight", Kind: Scalar, Category: CategoryResources},
	{Name: "LimitNOFILE", Kind: Scalar, Category: CategoryResources},
	{Name: "TimerSlackNSec", Kind: Scalar, Category: CategoryResources},
}

var directiveIndex = func() map[string]int {
	index := make(map[string]int, len(directives))
	for i, d := range directives {
		index[d.Name] = i
	}
	return index
}()

// Lookup returns the table entry for a directive name.
func Lookup(name string) (Directive, bool) {
	i, ok := directiveIndex[name]
	if !ok {
		return Directive{}, false
	}
	return directives[i], true
}

// Directives returns the directive table in rendering order.
func Directives() []Directive {
	return slices.Clone(directives)
}

// accepts reports whether value is allowed for a scalar directive.
func (d Directive) accepts(value string) bool {
	if len(d.Values) == 0 {
		return true
	}
	return slices.Contains(d.Values, strings.ToLower(value))
}

// order is the rendering position of a directive; unknown names sort last.
func order(name string) int {
	if i, ok := directiveIndex[name]; ok {
		return i
	}
	return len(directives)
}
