package pkg

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Error represents a chain of errors.
//
// A project build collects one entry per failed script, so a single
// returned error reports every failure in the order they were recorded.
type Error []error

// MakeError constructs an Error from the given errors.
// The errors are stored in the order they are provided:
// the first argument is the innermost error in the chain.
// Nil errors are skipped, and nil is returned if none remain.
func MakeError(errs ...error) Error {
	var e Error

	for _, err := range errs {
		if err != nil {
			e = append(e, UnwrapErrors(err)...)
		}
	}

	return e
}

// MakeErrorf constructs an Error from a formatted error message.
func MakeErrorf(format string, args ...any) Error {
	return MakeError(fmt.Errorf(format, args...))
}

// Error returns a concatenated string representation of all errors
// in the error chain, separated by ": ", from innermost to outermost.
func (e Error) Error() string {
	var sb strings.Builder

	for i, err := range slices.All(e) {
		if i > 0 {
			sb.WriteString(": ")
		}

		sb.WriteString(err.Error())
	}

	return sb.String()
}

// Wrap appends one or more errors to the receiver and returns the result.
// Nil errors are skipped.
func (e Error) Wrap(errs ...error) Error {
	for _, err := range errs {
		if err != nil {
			e = append(e, err)
		}
	}

	return e
}

// Wrapf appends a formatted error to the receiver and returns the result.
func (e Error) Wrapf(format string, args ...any) Error {
	return append(e, fmt.Errorf(format, args...))
}

// Unwrap returns the slice of errors contained in the receiver.
func (e Error) Unwrap() []error {
	return e
}

// Err returns the receiver as an error, or nil if the chain is empty.
func (e Error) Err() error {
	if len(e) == 0 {
		return nil
	}

	return e
}

// Join returns the errors of the receiver joined by newlines, one per line,
// so that per-file failures stay readable when printed together.
func (e Error) Join() error {
	return errors.Join(e...)
}

// UnwrapErrors recursively unwraps an error chain and returns a slice
// containing all errors in the chain, starting from the innermost error.
func UnwrapErrors(err error) Error {
	if err == nil {
		return nil
	}

	chain := Error{}

	if e, ok := err.(interface{ Unwrap() []error }); ok {
		for _, wrapped := range e.Unwrap() {
			chain = append(chain, UnwrapErrors(wrapped)...)
		}
	} else if e, ok := err.(interface{ Unwrap() error }); ok {
		chain = append(chain, UnwrapErrors(e.Unwrap())...)
	}

	return append(chain, err)
}
