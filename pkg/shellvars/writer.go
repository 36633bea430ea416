// Package shellvars serializes values as POSIX-shell variable assignments.
// Each assignment is written as a single, fully formed line so that output
// truncated between lines always remains valid to eval.
package shellvars

import (
	"fmt"
	"io"
	"strings"
)

// Vars is implemented by types that emit themselves as shell variables.
type Vars interface {
	WriteVars(w *Writer)
}

// Writer emits name=value assignment lines with an optional prefix.
// Prefixes compose, so grouped writers produce names like head_ref1_name.
type Writer struct {
	out    io.Writer
	prefix string
}

// NewWriter creates a Writer emitting to out with the given line prefix.
func NewWriter(out io.Writer, prefix string) *Writer {
	return &Writer{out: out, prefix: prefix}
}

// WriteVar writes one assignment line. The value is formatted with
// fmt.Sprint and quoted for shell evaluation. The line is assembled in
// memory and handed to the underlying writer in a single Write call so a
// hard process exit never leaves a partial line behind.
func (w *Writer) WriteVar(name string, value any) {
	line := w.prefix + name + "=" + Quote(fmt.Sprint(value)) + "\n"

	// Write errors are unrecoverable for a stdout stream; the consumer
	// already went away and any retry would corrupt line framing.
	_, _ = io.WriteString(w.out, line)
}

// WriteGroup emits vars through this writer.
func (w *Writer) WriteGroup(vars Vars) {
	vars.WriteVars(w)
}

// Group returns a writer whose lines carry an additional "<name>_" prefix.
func (w *Writer) Group(name string) *Writer {
	return &Writer{out: w.out, prefix: w.prefix + name + "_"}
}

// GroupN returns a numbered group writer, e.g. GroupN("ref", 1) -> "ref1_".
func (w *Writer) GroupN(name string, n int) *Writer {
	return w.Group(fmt.Sprintf("%s%d", name, n))
}

// Prefix returns the accumulated line prefix.
func (w *Writer) Prefix() string {
	return w.prefix
}

// safeValue reports whether s can appear unquoted on the right side of a
// shell assignment. Matches the conservative character class used by
// common shell quoting implementations.
func safeValue(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case strings.ContainsRune("@%+=:,./_-", r):
		default:
			return false
		}
	}

	return true
}

// Quote returns s quoted for POSIX shell evaluation. Safe bare words pass
// through unchanged; everything else is single-quoted, with each embedded
// single quote rewritten to close the string, emit an escaped quote, and
// reopen it. The result always evaluates back to exactly s.
func Quote(s string) string {
	if safeValue(s) {
		return s
	}

	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
