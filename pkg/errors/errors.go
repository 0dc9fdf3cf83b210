// Package errors provides structured error types for the webby graphviz filter.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and HTTP surfaces
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *_NOT_FOUND: Resource not found
//   - RENDER_*: Renderer invocation failures
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeRendererNotFound, "renderer %q is not available", cmd)
//	if errors.Is(err, errors.ErrCodeRendererNotFound) {
//	    // Handle missing renderer
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidConfig, origErr, "load %s", path)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidFilter Code = "INVALID_FILTER"

	// Fragment transpilation errors
	ErrCodeRendererNotFound     Code = "RENDERER_NOT_FOUND"
	ErrCodeMalformedGraphSource Code = "MALFORMED_GRAPH_SOURCE"
	ErrCodeRenderFailed         Code = "RENDER_FAILED"
	ErrCodeRenderTimeout        Code = "RENDER_TIMEOUT"

	// Resource not found errors
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeFileNotFound     Code = "FILE_NOT_FOUND"
	ErrCodeFragmentNotFound Code = "FRAGMENT_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// RenderError carries the details of a failed renderer invocation.
// Fragment is the graph identifier if one was extracted, Command is the
// command line that was run, and Diagnostics is the text the renderer wrote
// to its diagnostic stream.
type RenderError struct {
	Fragment    string
	Command     string
	Diagnostics string
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	var b strings.Builder
	b.WriteString("renderer failed")
	if e.Fragment != "" {
		fmt.Fprintf(&b, " for graph %q", e.Fragment)
	}
	if e.Command != "" {
		fmt.Fprintf(&b, " (%s)", e.Command)
	}
	if e.Diagnostics != "" {
		fmt.Fprintf(&b, ": %s", strings.TrimSpace(e.Diagnostics))
	}
	return b.String()
}

// Code returns the error code for this error type.
func (e *RenderError) Code() Code {
	return ErrCodeRenderFailed
}

// AsRenderError extracts a *RenderError from an error chain, if present.
func AsRenderError(err error) (*RenderError, bool) {
	var e *RenderError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
