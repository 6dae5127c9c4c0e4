// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/seedhost/seedhost/lib/priority"
)

// Lookup returns the resolved value of another key path. The boolean is
// false when the key resolves to nothing. Lookups from a deferred default
// may trigger evaluation of further deferred defaults.
type Lookup func(key string) (any, bool, error)

// DeferredFunc computes a default from other settings. Returning [Omit]
// leaves the key unset.
type DeferredFunc func(lookup Lookup) (any, error)

type omitted struct{}

// Omit is returned by a DeferredFunc that has no value to contribute.
var Omit any = omitted{}

// Default is a built-in value for a key path.
type Default struct {
	Key string

	// Value is the static default. Ignored when Deferred is set.
	Value any

	// Deferred computes the default in the second resolution phase.
	Deferred DeferredFunc

	// Source names the component that contributed the default.
	Source string
}

// Static returns a static default.
func Static(key string, value any) Default {
	return Default{Key: key, Value: value, Source: "default"}
}

// Deferred returns a deferred default.
func Deferred(key, source string, fn DeferredFunc) Default {
	return Default{Key: key, Deferred: fn, Source: source}
}

// CycleError reports a chain of deferred defaults that refers back to
// itself. Path starts and ends with the same key.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "circular deferred default: " + strings.Join(e.Path, " -> ")
}

// deferredValue marks a table slot whose winner must be computed in the
// second phase.
type deferredValue struct {
	fn DeferredFunc
}

const (
	stateVisiting = iota + 1
	stateDone
)

type resolver struct {
	pending  map[string]DeferredFunc
	state    map[string]int
	stack    []string
	resolved Settings
}

// Resolve merges operator settings with defaults. Operator values win;
// defaults whose key path overlaps an operator key (equal, ancestor or
// descendant) are dropped. Deferred defaults are evaluated after all
// other values are known.
func Resolve(user Settings, defaults []Default) (Settings, error) {
	table := priority.NewTable()

	for _, key := range user.Keys() {
		if isEmptyMap(user[key]) {
			continue
		}
		if err := table.SetValue(key, copyValue(user[key]), priority.Operator, "operator"); err != nil {
			return nil, err
		}
	}

	for _, d := range defaults {
		if d.Key == "" {
			return nil, fmt.Errorf("default from %q has an empty key", d.Source)
		}
		if shadowedBy(d.Key, user) {
			continue
		}
		value := d.Value
		if d.Deferred != nil {
			value = deferredValue{fn: d.Deferred}
		} else {
			value = copyValue(value)
		}
		if err := table.SetValue(d.Key, value, priority.Default, d.Source); err != nil {
			return nil, err
		}
	}

	r := &resolver{
		pending:  make(map[string]DeferredFunc),
		state:    make(map[string]int),
		resolved: make(Settings),
	}

	// Phase one: everything already known.
	entries := table.Resolve()
	for _, entry := range entries {
		if deferred, ok := entry.Value.(deferredValue); ok {
			r.pending[entry.Key] = deferred.fn
			continue
		}
		r.resolved[entry.Key] = entry.Value
		r.state[entry.Key] = stateDone
	}

	// Phase two: deferred defaults, in first-assignment order.
	for _, entry := range entries {
		if _, ok := r.pending[entry.Key]; !ok {
			continue
		}
		if _, _, err := r.evaluate(entry.Key); err != nil {
			return nil, err
		}
	}

	return r.resolved, nil
}

// shadowedBy reports whether an operator key overlaps key.
func shadowedBy(key string, user Settings) bool {
	for userKey, value := range user {
		if isEmptyMap(value) {
			continue
		}
		if overlaps(key, userKey) {
			return true
		}
	}
	return false
}

func (r *resolver) lookup(key string) (any, bool, error) {
	if value, ok := r.resolved[key]; ok {
		return copyValue(value), true, nil
	}
	if _, ok := r.pending[key]; ok {
		return r.evaluate(key)
	}
	return nil, false, nil
}

func (r *resolver) evaluate(key string) (any, bool, error) {
	switch r.state[key] {
	case stateDone:
		value, ok := r.resolved[key]
		return copyValue(value), ok, nil
	case stateVisiting:
		start := 0
		for i, visiting := range r.stack {
			if visiting == key {
				start = i
				break
			}
		}
		path := append(append([]string{}, r.stack[start:]...), key)
		return nil, false, &CycleError{Path: path}
	}

	r.state[key] = stateVisiting
	r.stack = append(r.stack, key)
	value, err := r.pending[key](r.lookup)
	r.stack = r.stack[:len(r.stack)-1]
	if err != nil {
		var cycle *CycleError
		if errors.As(err, &cycle) {
			return nil, false, err
		}
		return nil, false, fmt.Errorf("resolving default for %s: %w", key, err)
	}

	r.state[key] = stateDone
	if _, omit := value.(omitted); omit {
		return nil, false, nil
	}
	value = copyValue(value)
	r.resolved[key] = value
	return copyValue(value), true, nil
}
