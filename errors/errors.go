// Package errors provides error handling for graphminer.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints and details
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := download(); err != nil {
//	    return errors.Wrap(err, "failed to download graph")
//	}
//
//	// Mark a dataset as one we skip rather than fail on
//	return errors.NewUnsupportedGraphError("graph %s has timestamps", name)
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint           = crdb.WithHint
	WithHintf          = crdb.WithHintf
	WithDetail         = crdb.WithDetail
	WithDetailf        = crdb.WithDetailf
	WithSecondaryError = crdb.WithSecondaryError
)

// Marking an error so it also matches another sentinel under Is
var (
	Mark = crdb.Mark
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// GetStack returns the reportable stack trace of an error, if any.
var GetStack = crdb.GetReportableStackTrace

// Sentinel errors. Wrap these with errors.Wrap() to add context while
// preserving the type for errors.Is().
var (
	// ErrNotFound indicates the requested dataset or record does not exist
	ErrNotFound = New("not found")

	// ErrInvalidRequest indicates malformed input (bad flags, bad files)
	ErrInvalidRequest = New("invalid request")

	// ErrUnsupportedGraph marks a dataset whose layout we know we cannot load.
	// Batch mining skips these instead of failing.
	ErrUnsupportedGraph = New("unsupported graph")

	// ErrAborted indicates that an operator declined to answer a prompt, or that
	// a prompt was needed while running non-interactively.
	ErrAborted = New("aborted")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsInvalidRequestError checks if an error is or wraps ErrInvalidRequest
func IsInvalidRequestError(err error) bool {
	return err != nil && Is(err, ErrInvalidRequest)
}

// IsUnsupportedGraph checks if an error is or wraps ErrUnsupportedGraph
func IsUnsupportedGraph(err error) bool {
	return err != nil && Is(err, ErrUnsupportedGraph)
}

// IsAborted checks if an error is or wraps ErrAborted
func IsAborted(err error) bool {
	return err != nil && Is(err, ErrAborted)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}

// NewInvalidRequestError creates an invalid-request error with a formatted message
func NewInvalidRequestError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidRequest, Newf(format, args...).Error())
}

// NewUnsupportedGraphError creates an unsupported-graph error with a formatted message
func NewUnsupportedGraphError(format string, args ...interface{}) error {
	return Wrap(ErrUnsupportedGraph, Newf(format, args...).Error())
}
