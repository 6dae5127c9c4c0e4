// Copyright 2026 The Seedhost Authors
// SPDX-License-Identifier: Apache-2.0

package compile

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// ValidationError reports an artifact the checker rejected.
type ValidationError struct {
	ExitCode int

	// Artifact is the rejected artifact.
	Artifact []byte

	// Listing is the artifact with line numbers, for locating the
	// checker's complaint.
	Listing string

	// Output is the checker's diagnostic output.
	Output string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "generated configuration rejected by checker (exit status %d)\n", e.ExitCode)
	b.WriteString(e.Listing)
	if output := strings.TrimRight(e.Output, "\n"); output != "" {
		b.WriteString("checker output:\n")
		b.WriteString(output)
	}
	return strings.TrimRight(b.String(), "\n")
}

// NumberLines prefixes every line of data with its right-aligned line
// number, e.g. "  3 | \"node\": {".
func NumberLines(data []byte) string {
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	width := len(fmt.Sprint(len(lines)))

	var b strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&b, "%*d | %s\n", width, i+1, line)
	}
	return b.String()
}

// WriteHighlighted writes the artifact with syntax highlighting and line
// numbers, for terminals. It falls back to the plain listing if
// highlighting fails.
func WriteHighlighted(w io.Writer, data []byte) error {
	var highlighted bytes.Buffer
	if err := quick.Highlight(&highlighted, string(data), "json", "terminal256", "monokai"); err != nil {
		_, err := io.WriteString(w, NumberLines(data))
		return err
	}
	_, err := io.WriteString(w, NumberLines(highlighted.Bytes()))
	return err
}
