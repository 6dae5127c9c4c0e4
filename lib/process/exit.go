// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ExitCoder is implemented by errors that carry their own exit status.
type ExitCoder interface {
	error
	ExitCode() int
}

// ExitCode returns the status a failed run should exit with: the code of
// the first [ExitCoder] in err's chain, or 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coder ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}

// Report writes "error: err" to w. An [ExitCoder] is not printed: the
// command that returned it has already written its own output.
func Report(w io.Writer, err error) {
	var coder ExitCoder
	if errors.As(err, &coder) {
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
}

// Fatal reports err on stderr and exits with [ExitCode].
func Fatal(err error) {
	Report(os.Stderr, err)
	os.Exit(ExitCode(err))
}
