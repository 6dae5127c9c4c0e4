// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

type codedError struct {
	code    int
	message string
}

func (e *codedError) Error() string { return e.message }
func (e *codedError) ExitCode() int { return e.code }

func TestExitCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("boom"), 1},
		{"coded", &codedError{code: 3, message: "x"}, 3},
		{"wrapped coded", fmt.Errorf("run: %w", &codedError{code: 2, message: "x"}), 2},
	}
	for _, test := range tests {
		if got := ExitCode(test.err); got != test.want {
			t.Errorf("%s: ExitCode = %d, want %d", test.name, got, test.want)
		}
	}
}

func TestReport(t *testing.T) {
	t.Parallel()
	var buffer bytes.Buffer
	Report(&buffer, errors.New("invalid options"))
	if buffer.String() != "error: invalid options\n" {
		t.Errorf("Report = %q", buffer.String())
	}

	buffer.Reset()
	Report(&buffer, &codedError{code: 1, message: "exit code 1"})
	if buffer.Len() != 0 {
		t.Errorf("exit-coded error printed %q", buffer.String())
	}
}
