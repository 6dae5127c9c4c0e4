// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package priority

import (
	"fmt"
)

// Priority orders competing assignments. Higher values win.
type Priority int

const (
	// Default is the priority of built-in defaults, including deferred
	// ones.
	Default Priority = 100

	// Fragment is the priority of sandbox policy fragments. All fragments
	// share it, so ties fall back to assignment order.
	Fragment Priority = 500

	// Operator is the priority of values supplied by the operator.
	Operator Priority = 1000
)

// Mode says how an assignment combines with others on the same key.
type Mode int

const (
	// Set replaces the value: highest priority, then last writer, wins.
	Set Mode = iota
	// Append accumulates list contributions at the winning priority.
	Append
)

// String returns "set" or "append".
func (m Mode) String() string {
	switch m {
	case Set:
		return "set"
	case Append:
		return "append"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Assignment is one contribution to a key.
type Assignment struct {
	Key      string
	Mode     Mode
	Priority Priority

	// Value is the scalar for Set assignments.
	Value any

	// Values is the list contribution for Append assignments. An empty,
	// non-nil slice still creates the key.
	Values []any

	// Source names where the assignment came from (a fragment name,
	// "operator", "default"). Used in error messages only.
	Source string
}

// ConflictError reports a key assigned with both Set and Append.
type ConflictError struct {
	Key           string
	Existing      Mode
	ExistingFrom  string
	Attempted     Mode
	AttemptedFrom string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s by %q conflicts with earlier %s by %q",
		e.Key, e.Attempted, e.AttemptedFrom, e.Existing, e.ExistingFrom)
}

// Entry is the resolved value of one key.
type Entry struct {
	Key      string
	Mode     Mode
	Priority Priority

	// Value is the winning scalar (Set keys).
	Value any

	// Values is the concatenated list (Append keys). Never nil for
	// Append keys.
	Values []any

	// Source is the source of the winning Set assignment, or of the
	// last list contribution that survived.
	Source string
}

type slot struct {
	mode        Mode
	firstSource string
	assignments []Assignment
}

// Table accumulates assignments. The zero value is not usable; call
// [NewTable].
type Table struct {
	slots map[string]*slot
	order []string
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{slots: make(map[string]*slot)}
}

// Add records an assignment. It fails with a [ConflictError] if the key
// already holds assignments of the other mode.
func (t *Table) Add(assignment Assignment) error {
	if assignment.Key == "" {
		return fmt.Errorf("assignment from %q has an empty key", assignment.Source)
	}
	s, ok := t.slots[assignment.Key]
	if !ok {
		s = &slot{mode: assignment.Mode, firstSource: assignment.Source}
		t.slots[assignment.Key] = s
		t.order = append(t.order, assignment.Key)
	} else if s.mode != assignment.Mode {
		return &ConflictError{
			Key:           assignment.Key,
			Existing:      s.mode,
			ExistingFrom:  s.firstSource,
			Attempted:     assignment.Mode,
			AttemptedFrom: assignment.Source,
		}
	}
	s.assignments = append(s.assignments, assignment)
	return nil
}

// SetValue is shorthand for adding a Set assignment.
func (t *Table) SetValue(key string, value any, p Priority, source string) error {
	return t.Add(Assignment{Key: key, Mode: Set, Priority: p, Value: value, Source: source})
}

// AppendValues is shorthand for adding an Append assignment.
func (t *Table) AppendValues(key string, values []any, p Priority, source string) error {
	if values == nil {
		values = []any{}
	}
	return t.Add(Assignment{Key: key, Mode: Append, Priority: p, Values: values, Source: source})
}

// Keys returns the keys in first-assignment order.
func (t *Table) Keys() []string {
	keys := make([]string, len(t.order))
	copy(keys, t.order)
	return keys
}

// Lookup resolves a single key.
func (t *Table) Lookup(key string) (Entry, bool) {
	s, ok := t.slots[key]
	if !ok {
		return Entry{}, false
	}
	return resolveSlot(key, s), true
}

// Resolve returns every key's winning entry in first-assignment order.
func (t *Table) Resolve() []Entry {
	entries := make([]Entry, 0, len(t.order))
	for _, key := range t.order {
		entries = append(entries, resolveSlot(key, t.slots[key]))
	}
	return entries
}

func resolveSlot(key string, s *slot) Entry {
	top := s.assignments[0].Priority
	for _, a := range s.assignments[1:] {
		if a.Priority > top {
			top = a.Priority
		}
	}

	entry := Entry{Key: key, Mode: s.mode, Priority: top}
	if s.mode == Append {
		entry.Values = []any{}
	}
	for _, a := range s.assignments {
		if a.Priority != top {
			continue
		}
		switch s.mode {
		case Set:
			// Last writer at the top priority wins.
			entry.Value = a.Value
		case Append:
			entry.Values = append(entry.Values, a.Values...)
		}
		entry.Source = a.Source
	}
	return entry
}
