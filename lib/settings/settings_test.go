// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package settings

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestResolveOperatorWins(t *testing.T) {
	t.Parallel()

	user := Settings{"node.alias": "mine"}
	resolved, err := Resolve(user, []Default{
		Static("node.alias", "default-alias"),
		Static("node.relay", "auto"),
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved["node.alias"] != "mine" {
		t.Errorf("expected operator alias, got %v", resolved["node.alias"])
	}
	if resolved["node.relay"] != "auto" {
		t.Errorf("expected default relay, got %v", resolved["node.relay"])
	}
}

func TestResolveDeferredDefault(t *testing.T) {
	t.Parallel()

	defaults := []Default{
		Deferred("node.externalAddresses", "test", func(lookup Lookup) (any, error) {
			alias, ok, err := lookup("node.alias")
			if err != nil || !ok {
				return Omit, err
			}
			return []any{alias.(string) + ":8776"}, nil
		}),
		Deferred("node.alias", "test", func(lookup Lookup) (any, error) {
			return "seed.example.org", nil
		}),
	}

	resolved, err := Resolve(Settings{}, defaults)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved["node.alias"] != "seed.example.org" {
		t.Errorf("unexpected alias %v", resolved["node.alias"])
	}
	want := []any{"seed.example.org:8776"}
	if !reflect.DeepEqual(resolved["node.externalAddresses"], want) {
		t.Errorf("expected %v, got %v", want, resolved["node.externalAddresses"])
	}
}

func TestResolveDeferredSeesOperatorValue(t *testing.T) {
	t.Parallel()

	defaults := []Default{
		Deferred("node.externalAddresses", "test", func(lookup Lookup) (any, error) {
			alias, _, err := lookup("node.alias")
			if err != nil {
				return nil, err
			}
			return []any{alias}, nil
		}),
		Deferred("node.alias", "test", func(Lookup) (any, error) {
			return "computed", nil
		}),
	}

	resolved, err := Resolve(Settings{"node.alias": "operator"}, defaults)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !reflect.DeepEqual(resolved["node.externalAddresses"], []any{"operator"}) {
		t.Errorf("expected deferred default to read operator alias, got %v", resolved["node.externalAddresses"])
	}
}

func TestResolveOperatorSkipsDeferredEvaluation(t *testing.T) {
	t.Parallel()

	calls := 0
	defaults := []Default{
		Deferred("node.alias", "test", func(Lookup) (any, error) {
			calls++
			return "late", nil
		}),
	}
	resolved, err := Resolve(Settings{"node.alias": "early"}, defaults)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved["node.alias"] != "early" {
		t.Errorf("expected operator value, got %v", resolved["node.alias"])
	}
	if calls != 0 {
		t.Errorf("deferred default evaluated %d times, expected 0", calls)
	}
}

func TestResolveCycle(t *testing.T) {
	t.Parallel()

	follow := func(next string) DeferredFunc {
		return func(lookup Lookup) (any, error) {
			value, _, err := lookup(next)
			return value, err
		}
	}
	defaults := []Default{
		Deferred("a", "test", follow("b")),
		Deferred("b", "test", follow("c")),
		Deferred("c", "test", follow("a")),
	}

	_, err := Resolve(Settings{}, defaults)
	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("expected CycleError, got %v", err)
	}
	if !reflect.DeepEqual(cycle.Path, []string{"a", "b", "c", "a"}) {
		t.Errorf("unexpected cycle path %v", cycle.Path)
	}
	if !strings.Contains(err.Error(), "a -> b -> c -> a") {
		t.Errorf("error should name the chain: %v", err)
	}
}

func TestResolveCycleBrokenByOperator(t *testing.T) {
	t.Parallel()

	defaults := []Default{
		Deferred("a", "test", func(lookup Lookup) (any, error) {
			value, _, err := lookup("b")
			return value, err
		}),
		Deferred("b", "test", func(lookup Lookup) (any, error) {
			value, _, err := lookup("a")
			return value, err
		}),
	}
	resolved, err := Resolve(Settings{"b": "set"}, defaults)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved["a"] != "set" {
		t.Errorf("expected a to follow operator b, got %v", resolved["a"])
	}
}

func TestResolveDeferredError(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("boom")
	_, err := Resolve(Settings{}, []Default{
		Deferred("node.alias", "test", func(Lookup) (any, error) { return nil, sentinel }),
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped sentinel, got %v", err)
	}
	if !strings.Contains(err.Error(), "node.alias") {
		t.Errorf("error should name the key path: %v", err)
	}
}

func TestResolveOmit(t *testing.T) {
	t.Parallel()

	resolved, err := Resolve(Settings{}, []Default{
		Deferred("node.alias", "test", func(Lookup) (any, error) { return Omit, nil }),
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, ok := resolved["node.alias"]; ok {
		t.Error("omitted default should leave the key unset")
	}
}

func TestResolveShadowedByOperatorSubtree(t *testing.T) {
	t.Parallel()

	user := Settings{"node.limits": "none", "web.pinned.repositories": []any{"x"}}
	resolved, err := Resolve(user, []Default{
		Static("node.limits.routingMaxSize", 1000),
		Static("web.pinned", []any{}),
		Static("node.relay", "auto"),
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, ok := resolved["node.limits.routingMaxSize"]; ok {
		t.Error("descendant default of an operator leaf should be dropped")
	}
	if _, ok := resolved["web.pinned"]; ok {
		t.Error("ancestor default of an operator key should be dropped")
	}
	if resolved["node.relay"] != "auto" {
		t.Error("unrelated default should survive")
	}
}

func TestResolveEmptyOperatorMapKeepsDefaults(t *testing.T) {
	t.Parallel()

	user := FromNested(map[string]any{"node": map[string]any{}})
	if len(user) != 0 {
		t.Fatalf("FromNested kept an empty mapping: %v", user)
	}
	defaults := []Default{
		Static("node.listen", "0.0.0.0:8776"),
		Static("node.relay", "auto"),
	}
	resolved, err := Resolve(user, defaults)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved["node.listen"] != "0.0.0.0:8776" || resolved["node.relay"] != "auto" {
		t.Errorf("defaults under an empty operator mapping were dropped: %v", resolved)
	}

	// A hand-built empty map leaf behaves the same way.
	resolved, err = Resolve(Settings{"node": map[string]any{}}, defaults)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved["node.listen"] != "0.0.0.0:8776" {
		t.Errorf("empty map leaf shadowed node.listen: %v", resolved)
	}
	if _, ok := resolved["node"]; ok {
		t.Error("empty map leaf should not appear in the result")
	}
}

func TestResolveIdempotent(t *testing.T) {
	t.Parallel()

	defaults := []Default{
		Static("node.relay", "auto"),
		Static("preferredSeeds", []any{}),
		Deferred("node.alias", "test", func(Lookup) (any, error) { return "seed.example.org", nil }),
		Deferred("node.externalAddresses", "test", func(lookup Lookup) (any, error) {
			alias, _, err := lookup("node.alias")
			if err != nil {
				return nil, err
			}
			return []any{alias.(string) + ":8776"}, nil
		}),
		Deferred("node.unused", "test", func(Lookup) (any, error) { return Omit, nil }),
	}
	inputs := []Settings{
		{},
		{"node.alias": "custom"},
		{"node.relay": "never", "web.name": "x"},
	}

	for _, input := range inputs {
		once, err := Resolve(input, defaults)
		if err != nil {
			t.Fatalf("Resolve(%v): %v", input, err)
		}
		twice, err := Resolve(once, defaults)
		if err != nil {
			t.Fatalf("Resolve(resolved): %v", err)
		}
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("not idempotent for %v:\n once  %v\n twice %v", input, once, twice)
		}
	}
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	seeds := []any{"a"}
	user := Settings{"preferredSeeds": seeds}
	resolved, err := Resolve(user, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	resolved["preferredSeeds"].([]any)[0] = "changed"
	if seeds[0] != "a" {
		t.Error("Resolve result aliases operator input")
	}
}

func TestCanonicalIsSortedAndNested(t *testing.T) {
	t.Parallel()

	s := Settings{
		"web.listen":     "127.0.0.1:8080",
		"node.listen":    []any{"0.0.0.0:8776"},
		"node.alias":     "seed",
		"preferredSeeds": []any{},
	}
	data, err := s.Canonical()
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	want := `{
  "node": {
    "alias": "seed",
    "listen": [
      "0.0.0.0:8776"
    ]
  },
  "preferredSeeds": [],
  "web": {
    "listen": "127.0.0.1:8080"
  }
}
`
	if string(data) != want {
		t.Errorf("unexpected canonical form:\n%s", data)
	}

	again, err := s.Clone().Canonical()
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	if string(again) != string(data) {
		t.Error("canonical form is not deterministic")
	}

	parsed, err := ParseCanonical(data)
	if err != nil {
		t.Fatalf("ParseCanonical: %v", err)
	}
	if parsed.String("node.alias") != "seed" || parsed.String("web.listen") != "127.0.0.1:8080" {
		t.Errorf("round trip lost values: %v", parsed)
	}
}

func TestFromNested(t *testing.T) {
	t.Parallel()

	flat := FromNested(map[string]any{
		"node": map[string]any{
			"alias":  "seed",
			"limits": map[string]any{"maxOpen": 10},
		},
		"preferredSeeds": []any{"z6Mk@seed.example.org:8776"},
		"web":            map[string]any{"pinned": map[string]any{}},
	})
	want := Settings{
		"node.alias":          "seed",
		"node.limits.maxOpen": 10,
		"preferredSeeds":      []any{"z6Mk@seed.example.org:8776"},
	}
	if !reflect.DeepEqual(flat, want) {
		t.Errorf("FromNested = %v, want %v", flat, want)
	}
}

func TestLoadFileJSONC(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.jsonc")
	content := `{
  // operator alias
  "node": {"alias": "from-file", "relay": "never",},
  "preferredSeeds": ["a", "b"],
}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if loaded.String("node.alias") != "from-file" || loaded.String("node.relay") != "never" {
		t.Errorf("unexpected settings %v", loaded)
	}
	if !reflect.DeepEqual(loaded["preferredSeeds"], []any{"a", "b"}) {
		t.Errorf("unexpected preferredSeeds %v", loaded["preferredSeeds"])
	}
}

func TestLoadFileYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := "node:\n  alias: yaml-alias\n  externalAddresses:\n    - seed.example.org:8776\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if loaded.String("node.alias") != "yaml-alias" {
		t.Errorf("unexpected alias %v", loaded["node.alias"])
	}
	if !reflect.DeepEqual(loaded["node.externalAddresses"], []any{"seed.example.org:8776"}) {
		t.Errorf("unexpected externalAddresses %v", loaded["node.externalAddresses"])
	}
}

func TestLoadFileRejectsUnknownExtension(t *testing.T) {
	t.Parallel()

	if _, err := LoadFile(filepath.Join(t.TempDir(), "settings.toml")); err == nil {
		t.Error("expected error for .toml")
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("SEEDHOST_SETTING_node__alias", "env-alias")
	t.Setenv("SEEDHOST_SETTING_node__externalAddresses", `["a:1","b:2"]`)
	t.Setenv("SEEDHOST_SETTING_node__limits__maxOpen", "12")

	loaded, err := LoadEnv("")
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if loaded.String("node.alias") != "env-alias" {
		t.Errorf("unexpected alias %v", loaded["node.alias"])
	}
	if !reflect.DeepEqual(loaded["node.externalAddresses"], []any{"a:1", "b:2"}) {
		t.Errorf("expected decoded list, got %#v", loaded["node.externalAddresses"])
	}
	if loaded["node.limits.maxOpen"] != float64(12) {
		t.Errorf("expected decoded number, got %#v", loaded["node.limits.maxOpen"])
	}
}

func TestMergeLaterSubtreeReplaces(t *testing.T) {
	t.Parallel()

	merged := Merge(
		Settings{"node.limits.maxOpen": 10, "node.alias": "a"},
		Settings{"node.limits": "none", "node.alias": "b"},
	)
	want := Settings{"node.limits": "none", "node.alias": "b"}
	if !reflect.DeepEqual(merged, want) {
		t.Errorf("Merge = %v, want %v", merged, want)
	}
}

func TestMergeSkipsEmptyMaps(t *testing.T) {
	t.Parallel()

	merged := Merge(
		Settings{"node.alias": "from-file", "node.listen": "0.0.0.0:8776"},
		FromNested(map[string]any{"node": map[string]any{}}),
		Settings{"web": map[string]any{}},
	)
	want := Settings{"node.alias": "from-file", "node.listen": "0.0.0.0:8776"}
	if !reflect.DeepEqual(merged, want) {
		t.Errorf("Merge = %v, want %v", merged, want)
	}
}

func TestLoadFileDropsEmptyMappings(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("node: {}\nweb:\n  pinned: {}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("expected no keys, got %v", loaded)
	}
}
