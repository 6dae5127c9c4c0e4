// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/knadh/koanf/maps"
)

// Delimiter separates the segments of a key path.
const Delimiter = "."

// Settings maps dotted key paths to leaf values.
type Settings map[string]any

// FromNested flattens a nested map (as decoded from YAML or JSON) into
// dotted key paths. Lists are leaves. Empty nested maps produce no keys.
func FromNested(nested map[string]any) Settings {
	if len(nested) == 0 {
		return Settings{}
	}
	flat, _ := maps.Flatten(maps.Copy(nested), nil, Delimiter)
	return pruneEmpty(Settings(flat))
}

// pruneEmpty deletes keys holding an empty map. Flattening keeps an empty
// mapping as a leaf, but it supplies no key paths and must not shadow
// anything beneath it.
func pruneEmpty(s Settings) Settings {
	for key, value := range s {
		if isEmptyMap(value) {
			delete(s, key)
		}
	}
	return s
}

func isEmptyMap(value any) bool {
	m, ok := value.(map[string]any)
	return ok && len(m) == 0
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	if s == nil {
		return nil
	}
	clone := make(Settings, len(s))
	for key, value := range s {
		clone[key] = copyValue(value)
	}
	return clone
}

// Keys returns the key paths in sorted order.
func (s Settings) Keys() []string {
	keys := make([]string, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value at a key path.
func (s Settings) Get(key string) (any, bool) {
	value, ok := s[key]
	return value, ok
}

// String returns the value at key as a string, or "" if it is absent or
// not a string.
func (s Settings) String(key string) string {
	value, _ := s[key].(string)
	return value
}

// Nested returns the settings as a nested map.
func (s Settings) Nested() map[string]any {
	flat := make(map[string]any, len(s))
	for key, value := range s {
		flat[key] = copyValue(value)
	}
	return maps.Unflatten(flat, Delimiter)
}

// Canonical renders the settings as nested JSON with sorted keys, two-space
// indentation and a trailing newline.
func (s Settings) Canonical() ([]byte, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s.Nested()); err != nil {
		return nil, fmt.Errorf("encoding settings: %w", err)
	}
	return buffer.Bytes(), nil
}

// ParseCanonical parses an artifact produced by [Settings.Canonical].
func ParseCanonical(data []byte) (Settings, error) {
	var nested map[string]any
	if err := json.Unmarshal(data, &nested); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	return FromNested(nested), nil
}

// overlaps reports whether two key paths are equal or one is an ancestor
// of the other.
func overlaps(a, b string) bool {
	if a == b {
		return true
	}
	return strings.HasPrefix(b, a+Delimiter) || strings.HasPrefix(a, b+Delimiter)
}

func copyValue(value any) any {
	switch v := value.(type) {
	case []any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = copyValue(v[i])
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			out[key] = copyValue(inner)
		}
		return out
	default:
		return v
	}
}
