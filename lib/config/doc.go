// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the seedhost operator options file.
//
// The options file is YAML, named by the SEEDHOST_CONFIG environment
// variable (via [Load]) or a --config flag (via [LoadFile]). There is no
// automatic discovery. Values not present in the file keep the defaults
// from [Default]: node on 0.0.0.0:8776, gateway disabled on 127.0.0.1:8080,
// config checking on.
//
// The option schema is fixed; the only free-form part is the nested
// "settings" object (and the optional settings_file), which is passed
// through to the settings model untouched. ${VAR} and ${VAR:-default}
// patterns are expanded in path fields after loading.
//
// [Config.Validate] checks every field and joins all problems into one
// error, so an operator sees the whole list at once.
package config
