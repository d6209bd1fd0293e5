// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package arrays

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/ndarray/pkg/core/shapes"
	"k8s.io/klog/v2"
)

// Array is a multidimensional array that owns its buffer.
//
// Views of the array (see Array.View, and all View methods, which are promoted) borrow its buffer:
// they must not be used after the array is finalized or reallocated.
//
// Arrays are not copyable by value in a meaningful way: pass *Array around, and use Copy or
// MakeCompactCopy to duplicate contents.
type Array[T any] struct {
	View[T]

	allocator Allocator[T]
	finalized bool
}

// MakeArray allocates an array with the given shape, using the DefaultAllocator.
// All elements are set to fill[0] if given, or left as the zero value of T otherwise.
func MakeArray[T any](shape shapes.Shape, fill ...T) *Array[T] {
	return MakeArrayWith(DefaultAllocator[T](), shape, fill...)
}

// MakeDenseArray allocates an array with shapes.MakeDense(extents...), with zero values.
func MakeDenseArray[T any](extents ...int) *Array[T] {
	return MakeArray[T](shapes.MakeDense(extents...))
}

// MakeArrayWith allocates an array with the given shape from the given allocator.
// All elements are set to fill[0] if given, or left as the zero value of T otherwise.
func MakeArrayWith[T any](allocator Allocator[T], shape shapes.Shape, fill ...T) *Array[T] {
	if len(fill) > 1 {
		exceptions.Panicf("arrays.MakeArray(): at most one fill value can be given, got %d", len(fill))
	}
	a := &Array[T]{allocator: allocator}
	a.allocate(shape)
	if len(fill) == 1 {
		Fill(a.View, fill[0])
	}
	return a
}

func (a *Array[T]) allocate(shape shapes.Shape) {
	n := shape.RequiredSize()
	data := a.allocator.Allocate(n)
	if len(data) != n {
		exceptions.Panicf("arrays: allocator returned a buffer of %d elements, %d were requested", len(data), n)
	}
	if klog.V(3).Enabled() {
		klog.Infof("arrays: allocated %d elements of %T for shape %s", n, *new(T), shape)
	}
	a.View = View[T]{data: data, base: -shape.FlatMin(), shape: shape}
}

// assertValid panics if the array has been finalized.
func (a *Array[T]) assertValid() {
	if a == nil {
		exceptions.Panicf("arrays: nil Array")
	}
	if a.finalized {
		exceptions.Panicf("arrays: Array with shape %s has already been finalized", a.shape)
	}
}

// AsView returns a view of the whole array. It panics if the array was finalized.
func (a *Array[T]) AsView() View[T] {
	a.assertValid()
	return a.View
}

// IsFinalized returns whether Finalize has been called.
func (a *Array[T]) IsFinalized() bool { return a.finalized }

// Finalize resets all elements to the zero value of T (dropping any references they hold), and
// returns the buffer to the allocator. The array becomes empty.
//
// It is idempotent: the buffer is returned exactly once.
func (a *Array[T]) Finalize() {
	if a == nil || a.finalized {
		return
	}
	clear(a.data)
	a.allocator.Free(a.data)
	a.View = View[T]{}
	a.finalized = true
}

// Reallocate discards the current elements and replaces the buffer with a new one for the given
// shape. All elements are set to fill[0] if given, or the zero value of T otherwise.
//
// It can be used on a finalized array, which becomes valid again.
func (a *Array[T]) Reallocate(shape shapes.Shape, fill ...T) {
	if len(fill) > 1 {
		exceptions.Panicf("Array.Reallocate(): at most one fill value can be given, got %d", len(fill))
	}
	if !a.finalized {
		clear(a.data)
		a.allocator.Free(a.data)
	}
	a.finalized = false
	a.allocate(shape)
	if len(fill) == 1 {
		Fill(a.View, fill[0])
	}
}
