// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
)

// Fragment is a named contribution to a service's hardening policy.
type Fragment struct {
	// Name identifies the fragment, e.g. "common" or "node-relax".
	Name string `yaml:"-"`

	// Description is shown by "seedhost show policy".
	Description string `yaml:"description,omitempty"`

	// Set assigns scalar directives.
	Set map[string]string `yaml:"set,omitempty"`

	// Append contributes values to list directives. An empty list still
	// records the directive, which renders as an empty assignment (for
	// example "CapabilityBoundingSet=" drops every capability).
	Append map[string][]string `yaml:"append,omitempty"`
}

// NewFragment returns an empty fragment ready for SetDirective and
// AppendDirective.
func NewFragment(name, description string) *Fragment {
	return &Fragment{
		Name:        name,
		Description: description,
		Set:         make(map[string]string),
		Append:      make(map[string][]string),
	}
}

// SetDirective assigns a scalar directive.
func (f *Fragment) SetDirective(name, value string) *Fragment {
	if f.Set == nil {
		f.Set = make(map[string]string)
	}
	f.Set[name] = value
	return f
}

// AppendDirective adds values to a list directive.
func (f *Fragment) AppendDirective(name string, values ...string) *Fragment {
	if f.Append == nil {
		f.Append = make(map[string][]string)
	}
	f.Append[name] = append(f.Append[name], values...)
	if f.Append[name] == nil {
		f.Append[name] = []string{}
	}
	return f
}

// Clone returns a deep copy.
func (f *Fragment) Clone() *Fragment {
	clone := &Fragment{
		Name:        f.Name,
		Description: f.Description,
		Set:         maps.Clone(f.Set),
	}
	if f.Append != nil {
		clone.Append = make(map[string][]string, len(f.Append))
		for name, values := range f.Append {
			clone.Append[name] = append([]string{}, values...)
		}
	}
	return clone
}

// Validate checks every directive against the directive table.
func (f *Fragment) Validate() error {
	var errs []string

	for _, name := range slices.Sorted(maps.Keys(f.Set)) {
		value := f.Set[name]
		directive, ok := Lookup(name)
		switch {
		case !ok:
			errs = append(errs, fmt.Sprintf("set.%s: unknown directive", name))
		case directive.Kind != Scalar:
			errs = append(errs, fmt.Sprintf("set.%s: %s is a list directive, use append", name, name))
		case !directive.accepts(value):
			errs = append(errs, fmt.Sprintf("set.%s: invalid value %q (want one of %s)", name, value, strings.Join(directive.Values, ", ")))
		}
		if strings.ContainsAny(value, "\n") {
			errs = append(errs, fmt.Sprintf("set.%s: value contains a newline", name))
		}
		if unexpanded(value) {
			errs = append(errs, fmt.Sprintf("set.%s: unexpanded variable in %q", name, value))
		}
	}

	for _, name := range slices.Sorted(maps.Keys(f.Append)) {
		directive, ok := Lookup(name)
		switch {
		case !ok:
			errs = append(errs, fmt.Sprintf("append.%s: unknown directive", name))
		case directive.Kind != List:
			errs = append(errs, fmt.Sprintf("append.%s: %s is a scalar directive, use set", name, name))
		}
		for i, value := range f.Append[name] {
			if value == "" || strings.ContainsAny(value, " \t\n") {
				errs = append(errs, fmt.Sprintf("append.%s[%d]: value %q must be non-empty without whitespace", name, i, value))
			}
			if unexpanded(value) {
				errs = append(errs, fmt.Sprintf("append.%s[%d]: unexpanded variable in %q", name, i, value))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("fragment %q:\n  %s", f.Name, strings.Join(errs, "\n  "))
	}
	return nil
}

// Variables holds values substituted for ${NAME} references in fragments.
type Variables map[string]string

var variablePattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Expand replaces ${NAME} references. Unknown names are left in place so
// that Validate reports them.
func (v Variables) Expand(s string) string {
	return variablePattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		if value, ok := v[name]; ok {
			return value
		}
		return match
	})
}

// ExpandFragment returns a copy of the fragment with every value expanded.
func (v Variables) ExpandFragment(f *Fragment) *Fragment {
	expanded := f.Clone()
	for name, value := range expanded.Set {
		expanded.Set[name] = v.Expand(value)
	}
	for name, values := range expanded.Append {
		for i, value := range values {
			values[i] = v.Expand(value)
		}
		expanded.Append[name] = values
	}
	return expanded
}

func unexpanded(s string) bool {
	return variablePattern.MatchString(s)
}
