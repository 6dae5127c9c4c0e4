// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/tidwall/jsonc"
)

// DefaultEnvPrefix is the prefix of environment variables read by
// [LoadEnv].
const DefaultEnvPrefix = "SEEDHOST_SETTING_"

// errReadNotSupported is returned by bytesProvider.Read; koanf falls back
// to ReadBytes when a parser is given.
var errReadNotSupported = errors.New("settings: Read not supported by bytes provider, use ReadBytes")

// bytesProvider feeds already-read bytes to koanf.
type bytesProvider []byte

func (b bytesProvider) ReadBytes() ([]byte, error) {
	return b, nil
}

func (b bytesProvider) Read() (map[string]any, error) {
	return nil, errReadNotSupported
}

// LoadFile reads operator settings from a YAML, JSON or JSONC file.
// JSON is parsed as YAML (a superset) after comments and trailing commas
// are stripped.
func LoadFile(path string) (Settings, error) {
	k := koanf.New(Delimiter)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading settings file %s: %w", path, err)
		}
		if err := k.Load(bytesProvider(jsonc.ToJSON(data)), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parsing settings file %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading settings file %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("settings file %s: unsupported extension (want .yaml, .yml, .json or .jsonc)", path)
	}

	return pruneEmpty(Settings(k.All())), nil
}

// LoadEnv reads settings overrides from environment variables named
// prefix + path, with "__" separating path segments. Case is preserved,
// so SEEDHOST_SETTING_node__externalAddresses sets node.externalAddresses.
// Values that parse as JSON are decoded; anything else is a string.
func LoadEnv(prefix string) (Settings, error) {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	k := koanf.New(Delimiter)
	transform := func(name string) string {
		name = strings.TrimPrefix(name, prefix)
		return strings.ReplaceAll(name, "__", Delimiter)
	}
	if err := k.Load(env.Provider(prefix, Delimiter, transform), nil); err != nil {
		return nil, fmt.Errorf("loading settings from environment: %w", err)
	}

	result := make(Settings)
	for key, value := range k.All() {
		text, ok := value.(string)
		if !ok {
			result[key] = value
			continue
		}
		var decoded any
		if err := json.Unmarshal([]byte(text), &decoded); err == nil {
			result[key] = decoded
		} else {
			result[key] = text
		}
	}
	return pruneEmpty(result), nil
}

// Merge overlays later settings onto earlier ones. A later key replaces
// every earlier key it overlaps, so a later subtree never mixes with an
// earlier one. Empty maps carry no key paths and are skipped.
func Merge(layers ...Settings) Settings {
	result := make(Settings)
	for _, layer := range layers {
		for key, value := range layer {
			if isEmptyMap(value) {
				continue
			}
			for existing := range result {
				if overlaps(existing, key) {
					delete(result, existing)
				}
			}
			result[key] = copyValue(value)
		}
	}
	return result
}
