// Package errors provides structured error types for stackpkg.
//
// Every failure the resolver and installer can surface carries a Code so that
// the CLI and the registry server can react to it without string matching:
//   - MALFORMED_*: invalid requirement or version syntax
//   - UNRESOLVABLE_DEPENDENCY / PACKAGE_NOT_FOUND: resolution failures (always fatal)
//   - TRANSPORT: registry unreachable (advisory, search degrades to local)
//   - FETCH: archive download failed during install
//   - FORMAT: corrupt package metadata or archive
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMalformedRequirement, "illformed requirement %q", text)
//	if errors.Is(err, errors.ErrCodeMalformedRequirement) {
//	    // Handle parse failure
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeFetch, origErr, "download %s", fullName)
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input errors
	ErrCodeInvalidInput         Code = "INVALID_INPUT"
	ErrCodeInvalidPackage       Code = "INVALID_PACKAGE"
	ErrCodeMalformedRequirement Code = "MALFORMED_REQUIREMENT"
	ErrCodeMalformedVersion     Code = "MALFORMED_VERSION"

	// Resolution errors
	ErrCodeUnresolvable    Code = "UNRESOLVABLE_DEPENDENCY"
	ErrCodePackageNotFound Code = "PACKAGE_NOT_FOUND"

	// Collaborator errors
	ErrCodeTransport  Code = "TRANSPORT"
	ErrCodeFetch      Code = "FETCH"
	ErrCodeFormat     Code = "FORMAT"
	ErrCodeDependency Code = "DEPENDENCY"
	ErrCodeLocked     Code = "LOCKED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an error carrying a matching code.
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// coder is implemented by error types that expose a code without being *Error.
type coder interface{ ErrorCode() Code }

// GetCode extracts the error code from the outermost coded error in the chain.
// Returns empty string if nothing in the chain carries a code.
func GetCode(err error) Code {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			return e.Code
		case coder:
			return e.ErrorCode()
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + UserMessage(e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// UnresolvableError reports the accumulated requirements that no candidate in
// the dependency graph satisfies. Reasons maps a package name to the
// requirement strings it was asked to meet.
type UnresolvableError struct {
	Reasons map[string][]string
}

// Error implements the error interface.
func (e *UnresolvableError) Error() string {
	names := e.Names()
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s requires %s", name, strings.Join(e.Reasons[name], ", ")))
	}
	return "unable to resolve dependencies: " + strings.Join(parts, "; ")
}

// ErrorCode returns ErrCodeUnresolvable.
func (e *UnresolvableError) ErrorCode() Code { return ErrCodeUnresolvable }

// Names returns the unsatisfied package names in sorted order.
func (e *UnresolvableError) Names() []string {
	names := make([]string, 0, len(e.Reasons))
	for name := range e.Reasons {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NotFoundError is returned when an explicitly requested package has no
// candidate locally or in any registry. Advisory holds the transport errors
// collected while searching, which usually explain an empty result.
type NotFoundError struct {
	Name        string
	Requirement string
	Advisory    []error
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("could not find a valid package '%s' (%s) locally or in a repository", e.Name, e.Requirement)
	if len(e.Advisory) > 0 {
		msg += fmt.Sprintf(" (%d source error(s): %v)", len(e.Advisory), e.Advisory[0])
	}
	return msg
}

// ErrorCode returns ErrCodePackageNotFound.
func (e *NotFoundError) ErrorCode() Code { return ErrCodePackageNotFound }

// Unwrap exposes advisory errors to errors.Is/As.
func (e *NotFoundError) Unwrap() []error { return e.Advisory }
