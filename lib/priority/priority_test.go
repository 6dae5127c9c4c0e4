// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package priority

import (
	"errors"
	"reflect"
	"testing"
)

func TestSetHighestPriorityWins(t *testing.T) {
	t.Parallel()

	table := NewTable()
	mustAdd(t, table.SetValue("node.alias", "operator", Operator, "operator"))
	mustAdd(t, table.SetValue("node.alias", "default", Default, "default"))

	entry, ok := table.Lookup("node.alias")
	if !ok {
		t.Fatal("expected node.alias to be present")
	}
	if entry.Value != "operator" {
		t.Errorf("expected operator value to win, got %v", entry.Value)
	}
	if entry.Priority != Operator {
		t.Errorf("expected priority %d, got %d", Operator, entry.Priority)
	}
}

func TestSetLastWriterWinsAtEqualPriority(t *testing.T) {
	t.Parallel()

	table := NewTable()
	mustAdd(t, table.SetValue("ProtectSystem", "full", Fragment, "common"))
	mustAdd(t, table.SetValue("ProtectSystem", "strict", Fragment, "node"))
	mustAdd(t, table.SetValue("ProtectSystem", "yes", Fragment, "relax"))

	entry, _ := table.Lookup("ProtectSystem")
	if entry.Value != "yes" {
		t.Errorf("expected last writer %q, got %v", "yes", entry.Value)
	}
	if entry.Source != "relax" {
		t.Errorf("expected source relax, got %q", entry.Source)
	}
}

func TestAppendConcatenatesInOrder(t *testing.T) {
	t.Parallel()

	table := NewTable()
	mustAdd(t, table.AppendValues("SystemCallFilter", []any{"@system-service", "~@timer"}, Fragment, "common"))
	mustAdd(t, table.AppendValues("SystemCallFilter", []any{"~@privileged"}, Fragment, "node"))
	mustAdd(t, table.AppendValues("SystemCallFilter", []any{"@timer"}, Fragment, "relax"))

	entry, _ := table.Lookup("SystemCallFilter")
	want := []any{"@system-service", "~@timer", "~@privileged", "@timer"}
	if !reflect.DeepEqual(entry.Values, want) {
		t.Errorf("expected %v, got %v", want, entry.Values)
	}
}

func TestAppendDropsLowerPriorityContributions(t *testing.T) {
	t.Parallel()

	table := NewTable()
	mustAdd(t, table.AppendValues("preferredSeeds", []any{"a"}, Default, "default"))
	mustAdd(t, table.AppendValues("preferredSeeds", []any{"b"}, Operator, "operator"))
	mustAdd(t, table.AppendValues("preferredSeeds", []any{"c"}, Default, "default"))

	entry, _ := table.Lookup("preferredSeeds")
	if !reflect.DeepEqual(entry.Values, []any{"b"}) {
		t.Errorf("expected only operator contribution, got %v", entry.Values)
	}
}

func TestEmptyAppendCreatesKey(t *testing.T) {
	t.Parallel()

	table := NewTable()
	mustAdd(t, table.AppendValues("CapabilityBoundingSet", nil, Fragment, "common"))

	entry, ok := table.Lookup("CapabilityBoundingSet")
	if !ok {
		t.Fatal("expected key to exist")
	}
	if entry.Values == nil || len(entry.Values) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", entry.Values)
	}
}

func TestModeConflict(t *testing.T) {
	t.Parallel()

	table := NewTable()
	mustAdd(t, table.AppendValues("SystemCallFilter", []any{"@system-service"}, Fragment, "common"))
	err := table.SetValue("SystemCallFilter", "@basic-io", Fragment, "node")

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.Key != "SystemCallFilter" || conflict.Existing != Append || conflict.Attempted != Set {
		t.Errorf("unexpected conflict details: %+v", conflict)
	}
	if conflict.ExistingFrom != "common" || conflict.AttemptedFrom != "node" {
		t.Errorf("unexpected conflict sources: %+v", conflict)
	}
}

func TestResolveKeepsFirstAssignmentOrder(t *testing.T) {
	t.Parallel()

	table := NewTable()
	mustAdd(t, table.SetValue("b", 1, Default, "x"))
	mustAdd(t, table.SetValue("a", 2, Default, "x"))
	mustAdd(t, table.SetValue("b", 3, Operator, "y"))
	mustAdd(t, table.AppendValues("c", []any{4}, Default, "x"))

	var keys []string
	for _, entry := range table.Resolve() {
		keys = append(keys, entry.Key)
	}
	if !reflect.DeepEqual(keys, []string{"b", "a", "c"}) {
		t.Errorf("expected first-assignment order, got %v", keys)
	}
	if !reflect.DeepEqual(table.Keys(), keys) {
		t.Errorf("Keys() = %v, want %v", table.Keys(), keys)
	}
}

func TestEmptyKeyRejected(t *testing.T) {
	t.Parallel()

	if err := NewTable().SetValue("", 1, Default, "test"); err == nil {
		t.Error("expected error for empty key")
	}
}

func mustAdd(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
