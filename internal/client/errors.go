package client

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a fetch failure.
type Kind int

const (
	// KindUnexpectedFailure is any failure not covered by the other kinds.
	KindUnexpectedFailure Kind = iota
	// KindMissingDependency means the Slurm executable was not found.
	KindMissingDependency
	// KindCommandFailure means the command exited non-zero or timed out.
	KindCommandFailure
	// KindDecodeFailure means the command output was not valid JSON.
	KindDecodeFailure
)

// String returns the metric/log label for the kind.
func (k Kind) String() string {
	switch k {
	case KindMissingDependency:
		return "missing_dependency"
	case KindCommandFailure:
		return "command_failure"
	case KindDecodeFailure:
		return "decode_failure"
	default:
		return "unexpected_failure"
	}
}

// FetchError is returned by every failed fetch.
type FetchError struct {
	Kind    Kind
	Command string
	Stderr  string
	Err     error
}

// Error renders a single-line message suitable for a status bar.
func (e *FetchError) Error() string {
	switch e.Kind {
	case KindMissingDependency:
		return fmt.Sprintf("command '%s' not found. Is Slurm installed and in your PATH?", binaryOf(e.Command))
	case KindCommandFailure:
		if e.Stderr != "" {
			return fmt.Sprintf("error running %s: %s", e.Command, e.Stderr)
		}
		if e.Err != nil {
			return fmt.Sprintf("error running %s: %v", e.Command, e.Err)
		}
		return fmt.Sprintf("error running %s", e.Command)
	case KindDecodeFailure:
		return fmt.Sprintf("could not decode JSON from %s output", e.Command)
	default:
		if e.Err != nil {
			return fmt.Sprintf("unexpected error running %s: %v", e.Command, e.Err)
		}
		return fmt.Sprintf("unexpected error running %s", e.Command)
	}
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a FetchError of the given kind.
func IsKind(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind == kind
	}
	return false
}

// KindOf returns the kind of err, or KindUnexpectedFailure for foreign errors.
func KindOf(err error) Kind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnexpectedFailure
}

func binaryOf(command string) string {
	if i := strings.IndexByte(command, ' '); i >= 0 {
		return command[:i]
	}
	return command
}
