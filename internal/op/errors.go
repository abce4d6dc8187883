package op

import (
	"fmt"
	"strings"
)

// CommandError describes a subprocess invocation that failed: either the
// process could not be started at all, or it exited with a non-zero status.
type CommandError struct {
	Args     []string // argv passed to the tool, excluding the env wrapper
	ExitCode int      // -1 if the process never started
	Stdout   string   // captured standard output, may be empty
	Stderr   string   // captured standard error, may be empty
	Err      error    // underlying error, if any
}

func (e *CommandError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "command %q", strings.Join(e.Args, " "))
	if e.ExitCode >= 0 {
		fmt.Fprintf(&sb, " exited with status %d", e.ExitCode)
	} else {
		sb.WriteString(" could not be run")
	}
	if e.Err != nil {
		sb.WriteString(": " + e.Err.Error())
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		sb.WriteString(": stderr: " + s)
	}
	if s := strings.TrimSpace(e.Stdout); s != "" {
		sb.WriteString(": stdout: " + s)
	}
	return sb.String()
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ListError indicates that the listing step failed. Listing failures abort
// the whole export run; there is no partial listing.
type ListError struct {
	Err error
}

func (e *ListError) Error() string {
	return "list items: " + e.Err.Error()
}

func (e *ListError) Unwrap() error {
	return e.Err
}
