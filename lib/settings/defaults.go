// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package settings

import (
	"github.com/seedhost/seedhost/lib/config"
)

// BuiltinDefaults returns the static defaults every deployment carries.
// The listen entries follow the service options so that the node and the
// gateway agree with their own command lines.
func BuiltinDefaults(cfg *config.Config) []Default {
	defaults := []Default{
		Static("node.listen", []any{cfg.Node.Listen()}),
		Static("node.log", "INFO"),
		Static("node.relay", "auto"),
		Static("node.seedingPolicy.default", "block"),
		Static("preferredSeeds", []any{}),
	}
	if cfg.HTTPD.Enable {
		defaults = append(defaults, Static("web.listen", cfg.HTTPD.Listen()))
	}
	return defaults
}
