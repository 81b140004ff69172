package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/ariel-frischer/newsmerge/internal/changelog"
	"github.com/ariel-frischer/newsmerge/internal/config"
	clierrors "github.com/ariel-frischer/newsmerge/internal/errors"
)

// Exit codes for the newsmerge CLI
// These codes support programmatic composition and CI/CD integration
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitValidationFailed indicates invalid configuration, a malformed
	// changelog or lint errors
	ExitValidationFailed = 1

	// ExitInvalidArguments indicates invalid command arguments
	ExitInvalidArguments = 3

	// ExitMissingDependencies indicates required files or a repository are missing
	ExitMissingDependencies = 4
)

// ExitError carries an exit code for a failure that has already been reported.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// NewExitError creates an ExitError with the given code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

// ExitCode maps an error returned by Execute to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	switch toCLIError(err).Category {
	case clierrors.Argument:
		return ExitInvalidArguments
	case clierrors.Prerequisite:
		return ExitMissingDependencies
	default:
		return ExitValidationFailed
	}
}

// toCLIError classifies err into a CLIError with remediation hints.
func toCLIError(err error) *clierrors.CLIError {
	if cliErr := clierrors.AsCLIError(err); cliErr != nil {
		return cliErr
	}

	var malformed *changelog.MalformedChangelogError
	if errors.As(err, &malformed) {
		cliErr := clierrors.AnchorNotFound(malformed.Path, malformed.Anchor)
		cliErr.Cause = err
		return cliErr
	}

	var validation *config.ValidationError
	if changelog.IsConfigError(err) || errors.As(err, &validation) {
		return clierrors.InvalidConfig(err)
	}

	return clierrors.Wrap(err, clierrors.Runtime)
}

// printError writes err to w unless it was already reported.
func printError(w io.Writer, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	clierrors.FprintError(w, toCLIError(err))
}
