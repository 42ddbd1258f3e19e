package session

import (
	"errors"
	"fmt"
	"strings"
)

// ExitCommandNotFound is what shells exit with when they can't find the
// program they were asked to run.
const ExitCommandNotFound = 127

// CommandError is returned when a command exits non-zero while
// FailOnNonzeroExit is set.
type CommandError struct {
	Path     string
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "error running: %s\nexit status: %d", FormatCommand(e.Path, e.Args), e.ExitCode)
	if e.ExitCode == ExitCommandNotFound {
		b.WriteString(" (likely command not found)")
	}
	if e.Stderr != "" {
		fmt.Fprintf(&b, "\nstderr: %s", e.Stderr)
	}
	return b.String()
}

// LaunchError is returned when a process couldn't be started at all.
type LaunchError struct {
	Path string
	Args []string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launching %s: %v", FormatCommand(e.Path, e.Args), e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// ExitRequest asks the top level to end the session with Code. Quiet
// requests end it without any diagnostics.
type ExitRequest struct {
	Code  int
	Quiet bool
}

func (e *ExitRequest) Error() string {
	if e.Quiet {
		return fmt.Sprintf("quiet exit %d", e.Code)
	}
	return fmt.Sprintf("exit %d", e.Code)
}

// ContextError attaches a description of what was being attempted to an
// underlying failure.
type ContextError struct {
	Context string
	Err     error
}

func (e *ContextError) Error() string {
	return fmt.Sprintf("%s: %v", e.Context, e.Err)
}

func (e *ContextError) Unwrap() error {
	return e.Err
}

// WithContext wraps err with a formatted context. It returns nil if err is
// nil.
func WithContext(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &ContextError{Context: fmt.Sprintf(format, args...), Err: err}
}

// OutcomeKind is how a finished session ended.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeExit
	OutcomeQuietExit
	OutcomeFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeExit:
		return "exit"
	case OutcomeQuietExit:
		return "quiet-exit"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Outcome is the result of a session reduced to what the top level acts on.
type Outcome struct {
	Kind OutcomeKind
	// Code is the requested exit code for OutcomeExit and OutcomeQuietExit.
	Code int
	// Err is the failure for OutcomeFailure.
	Err error
}

// Classify reduces the error a session returned to an Outcome.
func Classify(err error) Outcome {
	var exit *ExitRequest
	switch {
	case err == nil:
		return Outcome{Kind: OutcomeSuccess}
	case errors.As(err, &exit) && exit.Quiet:
		return Outcome{Kind: OutcomeQuietExit, Code: exit.Code}
	case errors.As(err, &exit):
		return Outcome{Kind: OutcomeExit, Code: exit.Code}
	default:
		return Outcome{Kind: OutcomeFailure, Err: err}
	}
}
