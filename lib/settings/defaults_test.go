// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package settings

import (
	"reflect"
	"testing"

	"github.com/seedhost/seedhost/lib/config"
)

func TestBuiltinDefaults(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	resolved, err := Resolve(Settings{}, BuiltinDefaults(cfg))
	if err != nil {
		t.Fatal(err)
	}

	want := Settings{
		"node.listen":                []any{"0.0.0.0:8776"},
		"node.log":                   "INFO",
		"node.relay":                 "auto",
		"node.seedingPolicy.default": "block",
		"preferredSeeds":             []any{},
	}
	if !reflect.DeepEqual(resolved, want) {
		t.Errorf("resolved = %#v\nwant %#v", resolved, want)
	}
}

func TestBuiltinDefaultsWithGateway(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.HTTPD.Enable = true
	cfg.Node.ListenAddress = "::"

	resolved, err := Resolve(Settings{"node.seedingPolicy": "permissive"}, BuiltinDefaults(cfg))
	if err != nil {
		t.Fatal(err)
	}
	if got := resolved["web.listen"]; got != "127.0.0.1:8080" {
		t.Errorf("web.listen = %#v", got)
	}
	if got := resolved["node.listen"]; !reflect.DeepEqual(got, []any{"[::]:8776"}) {
		t.Errorf("node.listen = %#v", got)
	}
	if _, ok := resolved["node.seedingPolicy.default"]; ok {
		t.Error("default under an operator subtree must be dropped")
	}
}
