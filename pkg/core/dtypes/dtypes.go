// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package dtypes enumerates the Go element types that arrays in this module are usually
// instantiated with, and provides the generics constraints and per-type constants (lowest and
// highest values) used by the generic algorithms and the einsum engine.
//
// Arrays work with any Go type: DType is only used for introspection (e.g. printing) and
// for the numeric constraints.
package dtypes

import (
	"math"
	"reflect"
	"strconv"

	"github.com/gomlx/ndarray/pkg/core/dtypes/bfloat16"
	"github.com/x448/float16"
)

// DType identifies the element type of an array.
type DType int8

const (
	// InvalidDType is used for element types that are not enumerated: structs, pointers, strings, etc.
	InvalidDType DType = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float16
	BFloat16
	Float32
	Float64
	Complex64
	Complex128
)

var dtypeNames = [...]string{
	InvalidDType: "InvalidDType",
	Bool:         "Bool",
	Int8:         "Int8",
	Int16:        "Int16",
	Int32:        "Int32",
	Int64:        "Int64",
	Uint8:        "Uint8",
	Uint16:       "Uint16",
	Uint32:       "Uint32",
	Uint64:       "Uint64",
	Float16:      "Float16",
	BFloat16:     "BFloat16",
	Float32:      "Float32",
	Float64:      "Float64",
	Complex64:    "Complex64",
	Complex128:   "Complex128",
}

// String implements fmt.Stringer.
func (dtype DType) String() string {
	if dtype < 0 || int(dtype) >= len(dtypeNames) {
		return "DType(" + strconv.Itoa(int(dtype)) + ")"
	}
	return dtypeNames[dtype]
}

var (
	float16Type  = reflect.TypeOf(float16.Float16(0))
	bfloat16Type = reflect.TypeOf(bfloat16.BFloat16(0))
)

// FromGenericsType returns the DType for T, or InvalidDType if T is not enumerated.
func FromGenericsType[T any]() DType {
	var t T
	switch any(t).(type) {
	case float16.Float16:
		return Float16
	case bfloat16.BFloat16:
		return BFloat16
	}
	return FromGoType(reflect.TypeFor[T]())
}

// FromGoType returns the DType for the given "reflect.Type".
// Named types (type MyFloat float32) map to the DType of their kind.
func FromGoType(t reflect.Type) DType {
	if t == nil {
		return InvalidDType
	}
	if t == float16Type {
		return Float16
	} else if t == bfloat16Type {
		return BFloat16
	}
	switch t.Kind() {
	case reflect.Int:
		if strconv.IntSize == 32 {
			return Int32
		}
		return Int64
	case reflect.Int64:
		return Int64
	case reflect.Int32:
		return Int32
	case reflect.Int16:
		return Int16
	case reflect.Int8:
		return Int8

	case reflect.Uint64:
		return Uint64
	case reflect.Uint32:
		return Uint32
	case reflect.Uint16:
		return Uint16
	case reflect.Uint8:
		return Uint8

	case reflect.Bool:
		return Bool

	case reflect.Float32:
		return Float32
	case reflect.Float64:
		return Float64

	case reflect.Complex64:
		return Complex64
	case reflect.Complex128:
		return Complex128
	default:
		return InvalidDType
	}
}

// IsFloat returns whether dtype is a float, including the 16 bits ones. It returns false for
// complex numbers.
func (dtype DType) IsFloat() bool {
	return dtype == Float32 || dtype == Float64 || dtype == Float16 || dtype == BFloat16
}

// IsComplex returns whether dtype is a complex number type.
func (dtype DType) IsComplex() bool {
	return dtype == Complex64 || dtype == Complex128
}

// Number represents the Go numeric types that support the arithmetic operators.
// Used as traits for generics.
//
// It includes complex numbers, and types derived from the basic ones.
type Number interface {
	~float32 | ~float64 | ~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr | ~complex64 | ~complex128
}

// NumberNotComplex represents the ordered Go numeric types.
// Used as a Generics constraint.
//
// See also Number.
type NumberNotComplex interface {
	~float32 | ~float64 | ~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// LowestValue returns the lowest value of T: negative infinity for floats, the minimum integer
// for signed integers and 0 for unsigned integers.
//
// It is the neutral element of a max reduction.
func LowestValue[T NumberNotComplex]() T {
	var zero T
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Float32, reflect.Float64:
		return T(math.Inf(-1))
	case reflect.Int8:
		return T(math.MinInt8 + int(zero))
	case reflect.Int16:
		return T(math.MinInt16 + int(zero))
	case reflect.Int32:
		return T(math.MinInt32 + int(zero))
	case reflect.Int64, reflect.Int:
		if reflect.TypeFor[T]().Size() == 4 {
			return T(math.MinInt32 + int(zero))
		}
		return T(int64(math.MinInt64) + int64(zero))
	}
	// Unsigned.
	return zero
}

// HighestValue returns the highest value of T: infinity for floats, and the maximum integer for
// integers.
//
// It is the neutral element of a min reduction.
func HighestValue[T NumberNotComplex]() T {
	var zero T
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Float32, reflect.Float64:
		return T(math.Inf(1))
	case reflect.Int8:
		return T(math.MaxInt8 + int(zero))
	case reflect.Int16:
		return T(math.MaxInt16 + int(zero))
	case reflect.Int32:
		return T(math.MaxInt32 + int(zero))
	case reflect.Int64, reflect.Int:
		if reflect.TypeFor[T]().Size() == 4 {
			return T(math.MaxInt32 + int(zero))
		}
		return T(int64(math.MaxInt64) + int64(zero))
	}
	// All bits set for unsigned integers.
	bits := 8 * reflect.TypeFor[T]().Size()
	return T(uint64(math.MaxUint64) >> (64 - bits))
}
