package cli

import (
	"github.com/matzehuels/stackpkg/pkg/errors"
)

// Process exit codes.
const (
	ExitOK          = 0
	ExitFailure     = 1   // Unclassified failure
	ExitUsage       = 2   // Invalid input, requirement or version
	ExitUnresolved  = 3   // Unresolvable dependency or package not found
	ExitUnavailable = 4   // Registry or fetch failure
	ExitConflict    = 5   // Locked install directory or dependency check
	ExitInterrupted = 130 // Standard shell convention for SIGINT
)

// ExitCode maps err to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPackage,
		errors.ErrCodeMalformedRequirement, errors.ErrCodeMalformedVersion:
		return ExitUsage
	case errors.ErrCodeUnresolvable, errors.ErrCodePackageNotFound:
		return ExitUnresolved
	case errors.ErrCodeTransport, errors.ErrCodeFetch, errors.ErrCodeFormat:
		return ExitUnavailable
	case errors.ErrCodeLocked, errors.ErrCodeDependency:
		return ExitConflict
	}
	return ExitFailure
}

// ErrorMessage renders err for the terminal.
func ErrorMessage(err error) string {
	return styleIconError.Render(iconError) + " " + errors.UserMessage(err)
}
