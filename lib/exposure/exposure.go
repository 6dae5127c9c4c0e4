// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package exposure

import (
	"net"
	"strconv"

	"github.com/seedhost/seedhost/lib/config"
	"github.com/seedhost/seedhost/lib/settings"
)

// Setting keys this package supplies defaults for.
const (
	AliasKey             = "node.alias"
	ExternalAddressesKey = "node.externalAddresses"
)

// FirewallRule opens one inbound port.
type FirewallRule struct {
	Protocol string
	Port     int
	Comment  string
}

// VirtualHost is the reverse proxy server block in front of the gateway.
// TLS is always forced: plain HTTP only serves ACME challenges and
// redirects.
type VirtualHost struct {
	ServerName string
	EnableACME bool

	// Upstream is the gateway's "addr:port" as seen from the proxy.
	Upstream string
}

// Exposure is the outward-facing part of a deployment. Either field may
// be nil.
type Exposure struct {
	Firewall    *FirewallRule
	VirtualHost *VirtualHost

	nodePort int
}

// Apply derives the exposure from the options. The firewall rule exists
// iff node.open_firewall is set; the virtual host exists iff the gateway
// is enabled and has a server name.
func Apply(cfg *config.Config) Exposure {
	exposure := Exposure{nodePort: cfg.Node.ListenPort}

	if cfg.Node.OpenFirewall {
		exposure.Firewall = &FirewallRule{
			Protocol: "tcp",
			Port:     cfg.Node.ListenPort,
			Comment:  "seed-node",
		}
	}

	if cfg.HTTPD.Enable && cfg.HTTPD.Nginx.ServerName != "" {
		exposure.VirtualHost = &VirtualHost{
			ServerName: cfg.HTTPD.Nginx.ServerName,
			EnableACME: cfg.HTTPD.Nginx.EnableACME,
			Upstream:   cfg.HTTPD.LocalAddress(),
		}
	}

	return exposure
}

// Defaults returns the settings defaults implied by the exposure. With a
// virtual host, the node advertises the public hostname as its alias and
// as its external address on the node port.
func (e Exposure) Defaults() []settings.Default {
	if e.VirtualHost == nil {
		return nil
	}
	hostname := e.VirtualHost.ServerName
	port := e.nodePort

	return []settings.Default{
		settings.Deferred(AliasKey, "exposure", func(settings.Lookup) (any, error) {
			return hostname, nil
		}),
		settings.Deferred(ExternalAddressesKey, "exposure", func(settings.Lookup) (any, error) {
			return []any{net.JoinHostPort(hostname, strconv.Itoa(port))}, nil
		}),
	}
}
