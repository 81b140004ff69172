// Package errors provides structured error handling for the newsmerge CLI.
// Every error shown to the user carries a category, which decides the exit
// code, and optional remediation steps.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory represents the type of error that occurred.
type ErrorCategory int

const (
	// Argument errors are caused by invalid or missing command arguments.
	Argument ErrorCategory = iota
	// Configuration errors are caused by invalid or missing configuration.
	Configuration
	// Prerequisite errors occur when the changelog, news directory or repository is missing.
	Prerequisite
	// Runtime errors occur while merging.
	Runtime
)

var categoryNames = map[ErrorCategory]string{
	Argument:      "Argument Error",
	Configuration: "Configuration Error",
	Prerequisite:  "Prerequisite Error",
	Runtime:       "Runtime Error",
}

// String returns a human-readable name for the error category.
func (c ErrorCategory) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "Error"
}

// CLIError is a structured error with category and remediation guidance.
type CLIError struct {
	Category    ErrorCategory
	Message     string
	Remediation []string
	// Usage shows the correct command syntax, for argument errors.
	Usage string
	// Cause is the wrapped error, if any.
	Cause error
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	return e.Message
}

// Unwrap returns the wrapped cause so errors.Is and errors.As see through a CLIError.
func (e *CLIError) Unwrap() error {
	return e.Cause
}

func newError(category ErrorCategory, message string, remediation []string) *CLIError {
	return &CLIError{Category: category, Message: message, Remediation: remediation}
}

// NewArgumentError creates a new argument error with the given message and remediation steps.
func NewArgumentError(message string, remediation ...string) *CLIError {
	return newError(Argument, message, remediation)
}

// NewArgumentErrorWithUsage creates a new argument error that includes correct usage syntax.
func NewArgumentErrorWithUsage(message, usage string, remediation ...string) *CLIError {
	e := newError(Argument, message, remediation)
	e.Usage = usage
	return e
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, remediation ...string) *CLIError {
	return newError(Configuration, message, remediation)
}

// NewPrerequisiteError creates a new prerequisite error.
func NewPrerequisiteError(message string, remediation ...string) *CLIError {
	return newError(Prerequisite, message, remediation)
}

// NewRuntimeError creates a new runtime error.
func NewRuntimeError(message string, remediation ...string) *CLIError {
	return newError(Runtime, message, remediation)
}

// Wrap wraps err in a CLIError with the same message.
func Wrap(err error, category ErrorCategory, remediation ...string) *CLIError {
	if err == nil {
		return nil
	}
	e := newError(category, err.Error(), remediation)
	e.Cause = err
	return e
}

// WrapWithMessage wraps err in a CLIError whose message is prefixed with message.
func WrapWithMessage(err error, category ErrorCategory, message string, remediation ...string) *CLIError {
	if err == nil {
		return nil
	}
	e := newError(category, fmt.Sprintf("%s: %v", message, err), remediation)
	e.Cause = err
	return e
}

// AsCLIError returns the first CLIError in err's chain, or nil.
func AsCLIError(err error) *CLIError {
	var cliErr *CLIError
	if stderrors.As(err, &cliErr) {
		return cliErr
	}
	return nil
}
