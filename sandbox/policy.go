// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/seedhost/seedhost/lib/priority"
)

// Policy is the merged hardening policy of one service.
type Policy struct {
	// Fragments lists the fragment names in the order they were applied.
	Fragments []string

	entries []priority.Entry
	index   map[string]int
}

// Build merges fragments in order: common first, then each service
// fragment. Scalars resolve to the last fragment that sets them; list
// values concatenate in fragment order. Every fragment is validated first
// and all problems are reported together.
func Build(common *Fragment, service ...*Fragment) (*Policy, error) {
	if common == nil {
		return nil, errors.New("building sandbox policy: common fragment is required")
	}
	chain := append([]*Fragment{common}, service...)

	var errs []error
	for _, fragment := range chain {
		if fragment == nil {
			errs = append(errs, errors.New("nil fragment in chain"))
			continue
		}
		if err := fragment.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("building sandbox policy: %w", errors.Join(errs...))
	}

	table := priority.NewTable()
	policy := &Policy{}
	for _, fragment := range chain {
		policy.Fragments = append(policy.Fragments, fragment.Name)
		if err := apply(table, fragment, priority.Fragment); err != nil {
			return nil, fmt.Errorf("building sandbox policy: %w", err)
		}
	}
	policy.setEntries(table.Resolve())
	return policy, nil
}

// apply adds a fragment's directives to the table in directive table order.
func apply(table *priority.Table, fragment *Fragment, p priority.Priority) error {
	names := slices.Collect(maps.Keys(fragment.Set))
	for name := range fragment.Append {
		if _, dup := fragment.Set[name]; !dup {
			names = append(names, name)
		}
	}
	slices.SortFunc(names, func(a, b string) int {
		if d := order(a) - order(b); d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})

	for _, name := range names {
		if value, ok := fragment.Set[name]; ok {
			if err := table.SetValue(name, value, p, fragment.Name); err != nil {
				return err
			}
		}
		if values, ok := fragment.Append[name]; ok {
			items := make([]any, len(values))
			for i, v := range values {
				items[i] = v
			}
			if err := table.AppendValues(name, items, p, fragment.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Policy) setEntries(entries []priority.Entry) {
	p.entries = entries
	p.index = make(map[string]int, len(entries))
	for i, entry := range entries {
		p.index[entry.Key] = i
	}
}

// Override applies an operator fragment on top of the policy at
// operator priority. Its scalars replace the fragment chain's; its list
// values replace the chain's list entirely.
func (p *Policy) Override(fragment *Fragment) (*Policy, error) {
	if err := fragment.Validate(); err != nil {
		return nil, err
	}
	table := priority.NewTable()
	for _, entry := range p.entries {
		var err error
		switch entry.Mode {
		case priority.Set:
			err = table.SetValue(entry.Key, entry.Value, entry.Priority, entry.Source)
		case priority.Append:
			err = table.AppendValues(entry.Key, entry.Values, entry.Priority, entry.Source)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := apply(table, fragment, priority.Operator); err != nil {
		return nil, err
	}
	result := &Policy{Fragments: append(slices.Clone(p.Fragments), fragment.Name)}
	result.setEntries(table.Resolve())
	return result, nil
}

// Directives returns the directive names in order of first appearance.
func (p *Policy) Directives() []string {
	names := make([]string, len(p.entries))
	for i, entry := range p.entries {
		names[i] = entry.Key
	}
	return names
}

// Scalar returns the value of a scalar directive.
func (p *Policy) Scalar(name string) (string, bool) {
	i, ok := p.index[name]
	if !ok || p.entries[i].Mode != priority.Set {
		return "", false
	}
	return fmt.Sprint(p.entries[i].Value), true
}

// List returns the values of a list directive. A directive present with no
// values returns an empty, non-nil slice.
func (p *Policy) List(name string) ([]string, bool) {
	i, ok := p.index[name]
	if !ok || p.entries[i].Mode != priority.Append {
		return nil, false
	}
	values := make([]string, len(p.entries[i].Values))
	for j, v := range p.entries[i].Values {
		values[j] = fmt.Sprint(v)
	}
	return values, true
}

// Source returns the fragment that decided a directive. For list
// directives this is the last contributor.
func (p *Policy) Source(name string) string {
	i, ok := p.index[name]
	if !ok {
		return ""
	}
	return p.entries[i].Source
}

// Lines renders "Directive=value" lines in order of first appearance.
// List directives render on one line with space-separated values, except
// repeated directives, which get one line per value.
func (p *Policy) Lines() []string {
	lines := make([]string, 0, len(p.entries))
	for _, entry := range p.entries {
		switch entry.Mode {
		case priority.Set:
			lines = append(lines, fmt.Sprintf("%s=%v", entry.Key, entry.Value))
		case priority.Append:
			values, _ := p.List(entry.Key)
			if directive, _ := Lookup(entry.Key); directive.Repeated && len(values) > 0 {
				for _, value := range values {
					lines = append(lines, entry.Key+"="+value)
				}
				continue
			}
			lines = append(lines, entry.Key+"="+strings.Join(values, " "))
		}
	}
	return lines
}

// Properties renders the policy as systemd-run --property arguments.
func (p *Policy) Properties() []string {
	lines := p.Lines()
	properties := make([]string, len(lines))
	for i, line := range lines {
		properties[i] = "--property=" + line
	}
	return properties
}
