// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/seedhost/seedhost/lib/config"
	"github.com/seedhost/seedhost/lib/credential"
	"github.com/seedhost/seedhost/sandbox"
)

// Kind selects which service a descriptor is for.
type Kind string

const (
	KindNode  Kind = "node"
	KindHTTPD Kind = "httpd"
)

// Fixed locations and names.
const (
	StateDirectory = "/var/lib/seedhost"
	ServiceUser    = "seedhost"
	NodeUnit       = "seed-node"
	HTTPDUnit      = "seed-httpd"
	NetworkTarget  = "network-online.target"
	KillMode       = "control-group"
	DefaultLogEnv  = "info"

	// NodeAddressEnv tells the gateway where the node listens.
	NodeAddressEnv = "SEED_NODE_ADDRESS"
)

// Restart delays.
const (
	NodeRestartDelay  = 30 * time.Second
	HTTPDRestartDelay = 10 * time.Second
)

// UnitName returns the unit name for a kind.
func UnitName(kind Kind) string {
	if kind == KindHTTPD {
		return HTTPDUnit
	}
	return NodeUnit
}

// RestartPolicy is the supervisor's restart behaviour.
type RestartPolicy struct {
	Mode  string
	Delay time.Duration
}

// Inputs are the pieces of a descriptor computed elsewhere.
type Inputs struct {
	// Binary is the resolved executable path.
	Binary string

	// Policy is the service's merged sandbox policy.
	Policy *sandbox.Policy

	// Credential is the node key. Required for the node, ignored for the
	// gateway.
	Credential credential.Descriptor
}

// Descriptor is everything the supervisor needs to run one service.
type Descriptor struct {
	Name        string
	Kind        Kind
	Description string

	// Command is the executable followed by its arguments, unescaped.
	Command []string

	Environment      map[string]string
	WorkingDirectory string
	User             string

	ListenAddress string
	ListenPort    int

	Restart  RestartPolicy
	KillMode string

	After    []string
	Wants    []string
	WantedBy []string

	// Credential is nil for services that load no credential.
	Credential credential.Descriptor

	Policy *sandbox.Policy
}

// Assemble builds the descriptor for one service kind.
func Assemble(kind Kind, cfg *config.Config, in Inputs) (*Descriptor, error) {
	if in.Binary == "" {
		return nil, fmt.Errorf("assembling %s: binary path is empty", kind)
	}
	if in.Policy == nil {
		return nil, fmt.Errorf("assembling %s: sandbox policy is required", kind)
	}

	var options config.ServiceConfig
	switch kind {
	case KindNode:
		options = cfg.Node.ServiceConfig
		if in.Credential == nil {
			return nil, errors.New("assembling node: key credential is required")
		}
	case KindHTTPD:
		options = cfg.HTTPD.ServiceConfig
	default:
		return nil, fmt.Errorf("unknown service kind %q", kind)
	}

	command := append([]string{in.Binary, "--listen", options.Listen()}, options.ExtraArgs...)

	environment := map[string]string{
		"HOME":      StateDirectory,
		"SEED_HOME": StateDirectory,
		"SEED_LOG":  DefaultLogEnv,
	}

	descriptor := &Descriptor{
		Name:             UnitName(kind),
		Kind:             kind,
		Command:          command,
		Environment:      environment,
		WorkingDirectory: StateDirectory,
		User:             ServiceUser,
		ListenAddress:    options.ListenAddress,
		ListenPort:       options.ListenPort,
		KillMode:         KillMode,
		After:            []string{NetworkTarget},
		Wants:            []string{NetworkTarget},
		WantedBy:         []string{"multi-user.target"},
		Policy:           in.Policy,
	}

	switch kind {
	case KindNode:
		descriptor.Description = "Seed node"
		descriptor.Restart = RestartPolicy{Mode: "on-failure", Delay: NodeRestartDelay}
		descriptor.Credential = in.Credential
	case KindHTTPD:
		descriptor.Description = "Seed HTTP gateway"
		descriptor.Restart = RestartPolicy{Mode: "on-failure", Delay: HTTPDRestartDelay}
		nodeAddress := cfg.Node.LocalAddress()
		if cfg.HTTPD.NodeAddress != "" {
			nodeAddress = cfg.HTTPD.NodeAddress
		}
		environment[NodeAddressEnv] = nodeAddress
		// Ordering only: the gateway keeps running when the node fails.
		descriptor.After = append(descriptor.After, NodeUnit+".service")
	}

	maps.Copy(environment, options.Environment)
	return descriptor, nil
}

// Listen returns the descriptor's "addr:port" as passed to --listen.
func (d *Descriptor) Listen() string {
	return d.Command[2]
}

// Unit renders the descriptor as a systemd unit file.
func (d *Descriptor) Unit() []byte {
	var b strings.Builder
	b.WriteString("# Generated by seedhost. Do not edit.\n")
	b.WriteString("[Unit]\n")
	fmt.Fprintf(&b, "Description=%s\n", d.Description)
	fmt.Fprintf(&b, "After=%s\n", strings.Join(d.After, " "))
	fmt.Fprintf(&b, "Wants=%s\n", strings.Join(d.Wants, " "))

	b.WriteString("\n[Service]\n")
	b.WriteString("Type=simple\n")
	fmt.Fprintf(&b, "ExecStart=%s\n", JoinArgs(d.Command))
	fmt.Fprintf(&b, "WorkingDirectory=%s\n", d.WorkingDirectory)
	fmt.Fprintf(&b, "User=%s\n", d.User)
	for _, name := range slices.Sorted(maps.Keys(d.Environment)) {
		fmt.Fprintf(&b, "Environment=%s\n", EscapeEnvironment(name, d.Environment[name]))
	}
	if d.Credential != nil {
		name, value := credential.Directive(d.Credential)
		fmt.Fprintf(&b, "%s=%s\n", name, value)
	}
	fmt.Fprintf(&b, "Restart=%s\n", d.Restart.Mode)
	fmt.Fprintf(&b, "RestartSec=%s\n", formatDelay(d.Restart.Delay))
	fmt.Fprintf(&b, "KillMode=%s\n", d.KillMode)
	if d.Policy != nil {
		b.WriteString("\n# Sandbox: " + strings.Join(d.Policy.Fragments, ", ") + "\n")
		for _, line := range d.Policy.Lines() {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	b.WriteString("\n[Install]\n")
	fmt.Fprintf(&b, "WantedBy=%s\n", strings.Join(d.WantedBy, " "))
	return []byte(b.String())
}

// TransientUnit returns a systemd-run wrapper that runs the service in the
// foreground under the same policy, for smoke tests.
func (d *Descriptor) TransientUnit() *sandbox.TransientUnit {
	properties := []string{"WorkingDirectory=" + d.WorkingDirectory}
	for _, name := range slices.Sorted(maps.Keys(d.Environment)) {
		properties = append(properties, "Environment="+name+"="+d.Environment[name])
	}
	if d.Credential != nil {
		name, value := credential.Directive(d.Credential)
		properties = append(properties, name+"="+value)
	}
	return &sandbox.TransientUnit{
		Name:       d.Name + "-smoke",
		Policy:     d.Policy,
		Properties: properties,
		Wait:       true,
	}
}

// formatDelay renders whole seconds as "30s" and anything finer in
// milliseconds.
func formatDelay(delay time.Duration) string {
	if delay%time.Second == 0 {
		return strconv.FormatInt(int64(delay/time.Second), 10) + "s"
	}
	return strconv.FormatInt(delay.Milliseconds(), 10) + "ms"
}
