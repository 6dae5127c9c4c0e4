// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError ends the process with Code without printing anything more.
// Commands return it after writing their own report, e.g. a failed
// preflight.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode implements process.ExitCoder.
func (e *ExitError) ExitCode() int {
	return e.Code
}
