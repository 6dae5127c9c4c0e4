// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package exposure

import (
	"reflect"
	"strings"
	"testing"

	"github.com/seedhost/seedhost/lib/config"
	"github.com/seedhost/seedhost/lib/settings"
)

func TestFirewallFollowsOpenFirewall(t *testing.T) {
	t.Parallel()

	for _, open := range []bool{false, true} {
		for _, port := range []int{8776, 9000} {
			cfg := config.Default()
			cfg.Node.OpenFirewall = open
			cfg.Node.ListenPort = port

			exposure := Apply(cfg)
			if (exposure.Firewall != nil) != open {
				t.Errorf("open_firewall=%v: firewall present = %v", open, exposure.Firewall != nil)
				continue
			}
			if open && exposure.Firewall.Port != port {
				t.Errorf("firewall port = %d, want %d", exposure.Firewall.Port, port)
			}
			if (exposure.Nftables() != nil) != open {
				t.Errorf("open_firewall=%v: nftables snippet present = %v", open, exposure.Nftables() != nil)
			}
		}
	}
}

func TestFirewallOnlyOpensNodePort(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Node.OpenFirewall = true
	cfg.HTTPD.Enable = true

	snippet := string(Apply(cfg).Nftables())
	if !strings.Contains(snippet, "tcp dport 8776 accept") {
		t.Errorf("snippet should open 8776:\n%s", snippet)
	}
	if strings.Contains(snippet, "8080") {
		t.Errorf("snippet must not open the gateway port:\n%s", snippet)
	}
}

func TestVirtualHostRequiresGatewayAndName(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	if Apply(cfg).VirtualHost != nil {
		t.Error("no virtual host without a server name")
	}

	cfg.HTTPD.Nginx.ServerName = "seed.example.org"
	if Apply(cfg).VirtualHost != nil {
		t.Error("no virtual host while the gateway is disabled")
	}

	cfg.HTTPD.Enable = true
	vhost := Apply(cfg).VirtualHost
	if vhost == nil {
		t.Fatal("expected virtual host")
	}
	want := VirtualHost{ServerName: "seed.example.org", EnableACME: true, Upstream: "127.0.0.1:8080"}
	if *vhost != want {
		t.Errorf("virtual host = %+v, want %+v", *vhost, want)
	}
}

func TestUpstreamMapsWildcardToLoopback(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.HTTPD.Enable = true
	cfg.HTTPD.Nginx.ServerName = "seed.example.org"
	cfg.HTTPD.ListenAddress = "::"

	if got := Apply(cfg).VirtualHost.Upstream; got != "[::1]:8080" {
		t.Errorf("upstream = %q, want [::1]:8080", got)
	}
}

func TestDefaultsFromServerName(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.HTTPD.Enable = true
	cfg.HTTPD.Nginx.ServerName = "seed.example.org"

	resolved, err := settings.Resolve(settings.Settings{}, Apply(cfg).Defaults())
	if err != nil {
		t.Fatal(err)
	}
	if got := resolved[AliasKey]; got != "seed.example.org" {
		t.Errorf("alias = %#v, want seed.example.org", got)
	}
	if got := resolved[ExternalAddressesKey]; !reflect.DeepEqual(got, []any{"seed.example.org:8776"}) {
		t.Errorf("externalAddresses = %#v, want [seed.example.org:8776]", got)
	}
}

func TestDefaultsYieldToOperator(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.HTTPD.Enable = true
	cfg.HTTPD.Nginx.ServerName = "seed.example.org"

	user := settings.Settings{AliasKey: "my-seed"}
	resolved, err := settings.Resolve(user, Apply(cfg).Defaults())
	if err != nil {
		t.Fatal(err)
	}
	if got := resolved[AliasKey]; got != "my-seed" {
		t.Errorf("alias = %#v, operator value should win", got)
	}
	if _, ok := resolved[ExternalAddressesKey]; !ok {
		t.Error("externalAddresses default should still apply")
	}
}

func TestNoDefaultsWithoutVirtualHost(t *testing.T) {
	t.Parallel()

	if defaults := Apply(config.Default()).Defaults(); len(defaults) != 0 {
		t.Errorf("expected no defaults, got %d", len(defaults))
	}
}

func TestNginxRendering(t *testing.T) {
	t.Parallel()

	exposure := Exposure{VirtualHost: &VirtualHost{
		ServerName: "seed.example.org",
		EnableACME: true,
		Upstream:   "127.0.0.1:8080",
	}}
	output := string(exposure.Nginx())
	for _, want := range []string{
		"server_name seed.example.org;",
		"return 301 https://$host$request_uri;",
		"root /var/lib/acme/acme-challenge;",
		"ssl_certificate /var/lib/acme/seed.example.org/fullchain.pem;",
		"proxy_pass http://127.0.0.1:8080;",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("nginx config missing %q:\n%s", want, output)
		}
	}

	exposure.VirtualHost.EnableACME = false
	output = string(exposure.Nginx())
	if strings.Contains(output, "acme-challenge") {
		t.Errorf("without ACME the plain HTTP block should not serve challenges:\n%s", output)
	}
	if !strings.Contains(output, "return 301 https://$host$request_uri;") {
		t.Errorf("plain HTTP must redirect to HTTPS even without ACME:\n%s", output)
	}
	if strings.Count(output, "proxy_pass") != 1 {
		t.Errorf("only the TLS server block may proxy:\n%s", output)
	}
	if !strings.Contains(output, "/etc/seedhost/tls/seed.example.org/key.pem") {
		t.Errorf("non-ACME certificates should come from /etc/seedhost/tls:\n%s", output)
	}

	if (Exposure{}).Nginx() != nil {
		t.Error("no virtual host should render nothing")
	}
}
