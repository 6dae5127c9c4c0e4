// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package exposure

import (
	"fmt"
	"path"
	"strings"
)

// ACMEWebroot is where the certificate client serves HTTP-01 challenges.
const ACMEWebroot = "/var/lib/acme/acme-challenge"

// Nftables renders the firewall rule as an nftables snippet for
// /etc/nftables.d. It returns nil when there is no rule.
func (e Exposure) Nftables() []byte {
	if e.Firewall == nil {
		return nil
	}
	var b strings.Builder
	b.WriteString("# Generated by seedhost. Do not edit.\n")
	fmt.Fprintf(&b, "add rule inet filter input %s dport %d accept comment %q\n",
		e.Firewall.Protocol, e.Firewall.Port, e.Firewall.Comment)
	return []byte(b.String())
}

// Nginx renders the virtual host as an nginx server configuration. It
// returns nil when there is no virtual host.
func (e Exposure) Nginx() []byte {
	vhost := e.VirtualHost
	if vhost == nil {
		return nil
	}

	certDir := path.Join("/etc/seedhost/tls", vhost.ServerName)
	if vhost.EnableACME {
		certDir = path.Join("/var/lib/acme", vhost.ServerName)
	}

	var b strings.Builder
	b.WriteString("# Generated by seedhost. Do not edit.\n")

	b.WriteString("server {\n")
	b.WriteString("    listen 80;\n")
	b.WriteString("    listen [::]:80;\n")
	fmt.Fprintf(&b, "    server_name %s;\n", vhost.ServerName)
	if vhost.EnableACME {
		b.WriteString("\n    location /.well-known/acme-challenge/ {\n")
		fmt.Fprintf(&b, "        root %s;\n", ACMEWebroot)
		b.WriteString("    }\n")
	}
	b.WriteString("\n")
	b.WriteString("    location / {\n")
	b.WriteString("        return 301 https://$host$request_uri;\n")
	b.WriteString("    }\n")
	b.WriteString("}\n\n")

	b.WriteString("server {\n")
	b.WriteString("    listen 443 ssl;\n")
	b.WriteString("    listen [::]:443 ssl;\n")
	b.WriteString("    http2 on;\n")
	fmt.Fprintf(&b, "    server_name %s;\n", vhost.ServerName)
	fmt.Fprintf(&b, "    ssl_certificate %s;\n", path.Join(certDir, "fullchain.pem"))
	fmt.Fprintf(&b, "    ssl_certificate_key %s;\n", path.Join(certDir, "key.pem"))
	b.WriteString("\n")
	writeProxyLocation(&b, vhost.Upstream)
	b.WriteString("}\n")

	return []byte(b.String())
}

func writeProxyLocation(b *strings.Builder, upstream string) {
	b.WriteString("    location / {\n")
	fmt.Fprintf(b, "        proxy_pass http://%s;\n", upstream)
	b.WriteString("        proxy_set_header Host $host;\n")
	b.WriteString("        proxy_set_header X-Forwarded-For $proxy_add_x_forwarded_for;\n")
	b.WriteString("        proxy_set_header X-Forwarded-Proto $scheme;\n")
	b.WriteString("    }\n")
}
