// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// FragmentsConfig is the top-level structure of a fragment file.
type FragmentsConfig struct {
	Fragments map[string]*Fragment `yaml:"fragments"`
}

// ParseFragmentsConfig parses fragment YAML. Fragment names come from the
// map keys.
func ParseFragmentsConfig(data []byte) (*FragmentsConfig, error) {
	var config FragmentsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing fragments: %w", err)
	}
	for name, fragment := range config.Fragments {
		if fragment == nil {
			fragment = &Fragment{}
			config.Fragments[name] = fragment
		}
		fragment.Name = name
		for directive, values := range fragment.Append {
			if values == nil {
				fragment.Append[directive] = []string{}
			}
		}
	}
	return &config, nil
}

// LoadFragmentsConfig reads and parses a fragment file.
func LoadFragmentsConfig(path string) (*FragmentsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fragment file %s: %w", path, err)
	}
	config, err := ParseFragmentsConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// FragmentLoader collects fragments from the built-in set and operator
// files. A fragment defined in a later file replaces an earlier one with
// the same name.
type FragmentLoader struct {
	configs []*FragmentsConfig
	logger  *slog.Logger
}

// NewFragmentLoader creates an empty loader.
func NewFragmentLoader() *FragmentLoader {
	return &FragmentLoader{}
}

// SetLogger enables logging of which files and fragments are loaded.
func (l *FragmentLoader) SetLogger(logger *slog.Logger) {
	l.logger = logger
}

func (l *FragmentLoader) log(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Debug(msg, args...)
	}
}

// LoadDefaults loads the built-in fragments.
func (l *FragmentLoader) LoadDefaults() error {
	config, err := ParseFragmentsConfig([]byte(defaultFragmentsYAML))
	if err != nil {
		return fmt.Errorf("parsing built-in fragments: %w", err)
	}
	l.configs = append(l.configs, config)
	l.log("loaded built-in fragments", "count", len(config.Fragments))
	return nil
}

// LoadFile loads fragments from a YAML file.
func (l *FragmentLoader) LoadFile(path string) error {
	config, err := LoadFragmentsConfig(path)
	if err != nil {
		return err
	}
	l.configs = append(l.configs, config)
	l.log("loaded fragment file", "path", path, "count", len(config.Fragments))
	return nil
}

// LoadDirectory loads every .yaml and .yml file in dir, in name order. A
// missing directory is not an error.
func (l *FragmentLoader) LoadDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			l.log("fragment directory absent", "path", dir)
			return nil
		}
		return fmt.Errorf("reading fragment directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		if err := l.LoadFile(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Get returns a copy of the named fragment with variables expanded.
func (l *FragmentLoader) Get(name string, vars Variables) (*Fragment, error) {
	var found *Fragment
	for _, config := range l.configs {
		if fragment, ok := config.Fragments[name]; ok {
			found = fragment
		}
	}
	if found == nil {
		return nil, fmt.Errorf("sandbox fragment not found: %s", name)
	}
	return vars.ExpandFragment(found), nil
}

// Chain resolves fragment names in order.
func (l *FragmentLoader) Chain(names []string, vars Variables) ([]*Fragment, error) {
	chain := make([]*Fragment, 0, len(names))
	for _, name := range names {
		fragment, err := l.Get(name, vars)
		if err != nil {
			return nil, err
		}
		chain = append(chain, fragment)
	}
	return chain, nil
}

// List returns every fragment name, sorted.
func (l *FragmentLoader) List() []string {
	names := make(map[string]bool)
	for _, config := range l.configs {
		for name := range config.Fragments {
			names[name] = true
		}
	}
	result := make([]string, 0, len(names))
	for name := range names {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// DefaultFragmentDirectory holds operator fragment files on the host.
const DefaultFragmentDirectory = "/etc/seedhost/sandbox.d"

// LoadWithOverrides returns a loader holding the built-in fragments
// followed by every file in dirs.
func LoadWithOverrides(logger *slog.Logger, dirs ...string) (*FragmentLoader, error) {
	loader := NewFragmentLoader()
	loader.SetLogger(logger)
	if err := loader.LoadDefaults(); err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := loader.LoadDirectory(dir); err != nil {
			return nil, err
		}
	}
	return loader, nil
}
