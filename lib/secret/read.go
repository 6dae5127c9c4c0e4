// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"errors"
	"fmt"
	"os"
)

// ErrEmpty is returned when a secret source holds only whitespace.
var ErrEmpty = errors.New("secret is empty")

// ReadFromPath reads the file at path into a [Buffer], trimming leading
// and trailing whitespace. The heap copy used for reading is zeroed before
// returning. The caller must Close the buffer.
func ReadFromPath(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	defer Zero(data)

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmpty)
	}
	return NewFromBytes(trimmed)
}
