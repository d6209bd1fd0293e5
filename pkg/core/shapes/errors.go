// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"fmt"

	"github.com/gomlx/ndarray/internal/rangecheck"
	"github.com/pkg/errors"
)

// RangeChecked is true unless the module was built with the `norangecheck` tag.
//
// When true, indexing, cropping and copying outside a Shape's domain panic with an
// *OutOfRangeError. When false those checks are compiled out and such accesses are
// unspecified behavior. The Check* methods always check.
const RangeChecked = rangecheck.Enabled

// OutOfRangeError is the condition signaled when an index, or a range of indices, falls
// outside the domain of an axis.
//
// It is used as a panic value: catch it with exceptions.TryCatch[*shapes.OutOfRangeError].
type OutOfRangeError struct {
	// Axis where the violation happened.
	Axis int

	// Requested is the index (as an Interval of extent 1) or the range requested.
	Requested Interval

	// Dim is the axis being accessed.
	Dim Dim
}

// Error implements error.
func (e *OutOfRangeError) Error() string {
	if e.Requested.Extent == 1 {
		return fmt.Sprintf("index %d out of range for axis %d with domain %s",
			e.Requested.Min, e.Axis, e.Dim.Interval())
	}
	return fmt.Sprintf("range %s out of range for axis %d with domain %s",
		e.Requested, e.Axis, e.Dim.Interval())
}

// MismatchError is the condition signaled when the shapes of operands that should agree
// don't: extents of copied views, extents bound to the same einsum index, or the rank of an
// operand and the number of indices given to it.
//
// It's a programming error, and it is used as a panic value.
type MismatchError struct {
	err error
}

// MismatchErrorf creates a *MismatchError with a stack trace.
func MismatchErrorf(format string, args ...any) *MismatchError {
	return &MismatchError{err: errors.Errorf(format, args...)}
}

// Error implements error.
func (e *MismatchError) Error() string { return e.err.Error() }

// Unwrap returns the underlying error, which carries the stack trace.
func (e *MismatchError) Unwrap() error { return e.err }

// Format implements fmt.Formatter, so "%+v" prints the stack trace.
func (e *MismatchError) Format(s fmt.State, verb rune) {
	if f, ok := e.err.(fmt.Formatter); ok {
		f.Format(s, verb)
		return
	}
	_, _ = fmt.Fprint(s, e.err.Error())
}

// IsOutOfRange returns whether err is, or wraps, an *OutOfRangeError.
func IsOutOfRange(err error) bool {
	var target *OutOfRangeError
	return errors.As(err, &target)
}

// IsMismatch returns whether err is, or wraps, a *MismatchError.
func IsMismatch(err error) bool {
	var target *MismatchError
	return errors.As(err, &target)
}
