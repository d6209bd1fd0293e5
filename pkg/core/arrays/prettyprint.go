// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package arrays

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"github.com/gomlx/ndarray/pkg/core/dtypes"
	"github.com/gomlx/ndarray/pkg/core/dtypes/bfloat16"
	"github.com/x448/float16"
)

// maxPrintedPerAxis is the number of elements of an axis printed in full: longer axes print their
// first and last 3 elements only.
const maxPrintedPerAxis = 6

// String implements fmt.Stringer, with Summary(4).
func (v View[T]) String() string {
	return v.Summary(4)
}

// valueFormatter returns a function that writes one element of type T with the given precision.
func valueFormatter[T any](precision int) func(w func(format string, args ...any), value T) {
	dtype := dtypes.FromGenericsType[T]()
	switch {
	case dtype == dtypes.Float16:
		return func(w func(string, ...any), value T) { w("%.*g", precision, any(value).(float16.Float16).Float32()) }
	case dtype == dtypes.BFloat16:
		return func(w func(string, ...any), value T) { w("%.*g", precision, any(value).(bfloat16.BFloat16).Float32()) }
	case dtype.IsFloat():
		return func(w func(string, ...any), value T) { w("%.*g", precision, value) }
	case dtype.IsComplex():
		return func(w func(string, ...any), value T) {
			c := reflect.ValueOf(value).Complex()
			w("(%.*g%+.*gi)", precision, real(c), precision, imag(c))
		}
	default:
		return func(w func(string, ...any), value T) { w("%v", value) }
	}
}

// Summary returns a multi-line summary of the view's contents, inspired by numpy's output.
//
// The header lists the domain of each axis, as [extent] if it starts at 0 or [min:end] otherwise,
// followed by the element type. Axes with more than 6 elements are abbreviated.
func (v View[T]) Summary(precision int) string {
	var buf bytes.Buffer
	w := func(format string, args ...any) { _, _ = fmt.Fprintf(&buf, format, args...) }
	wValue := valueFormatter[T](precision)

	for _, d := range v.shape.Dims() {
		if d.Min == 0 {
			w("[%d]", d.Extent)
		} else {
			w("[%d:%d]", d.Min, d.End())
		}
	}
	w("%s", reflect.TypeFor[T]())
	if v.shape.IsZeroSize() {
		w("{}")
		return buf.String()
	}
	if v.Rank() == 0 {
		w("(")
		wValue(w, v.data[v.base])
		w(")")
		return buf.String()
	}
	if v.data == nil {
		w("(no storage)")
		return buf.String()
	}

	// printed lists the positions of an axis that are printed, with -1 marking the ellipsis.
	printed := func(extent int) []int {
		if extent <= maxPrintedPerAxis {
			positions := make([]int, extent)
			for i := range positions {
				positions[i] = i
			}
			return positions
		}
		return []int{0, 1, 2, -1, extent - 3, extent - 2, extent - 1}
	}

	rank := v.Rank()
	var printAxis func(axis, offset int)
	printAxis = func(axis, offset int) {
		d := v.shape.Dim(axis)
		w("{")
		for ii, pos := range printed(d.Extent) {
			if ii > 0 {
				if axis == rank-1 {
					w(", ")
				} else {
					w(",\n%s", strings.Repeat(" ", axis+1))
				}
			}
			if pos < 0 {
				w("...")
				continue
			}
			elementOffset := offset + pos*d.Stride
			if axis == rank-1 {
				wValue(w, v.data[elementOffset])
			} else {
				printAxis(axis+1, elementOffset)
			}
		}
		w("}")
	}
	printAxis(0, v.base)
	return buf.String()
}
