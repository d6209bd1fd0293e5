// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package arrays implements multidimensional array views and the generic algorithms that
// operate on them.
//
// A View[T] is a non-owning window over a flat []T, described by a shapes.Shape: its index
// domain (the min and extent of each axis) and its layout (the stride of each axis). Views are
// small values: cropping, slicing or re-striding a view is O(rank) and never copies elements.
// Several views may alias the same memory.
//
// An Array[T] owns its buffer: it allocates it from an Allocator, and returns it with Finalize.
// Array embeds a View, so everything that accepts a view accepts an array's view.
//
// The algorithms (Copy, Move, Fill, Generate, Equal, Transform, ...) take views with arbitrary
// layouts, and plan their loops (see shapes.MakePlan) so that the innermost loop is as long and
// as contiguous as possible. Between compact views with the same layout, Copy is a single call
// to the builtin copy.
package arrays

import (
	"iter"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/ndarray/pkg/core/shapes"
)

// View is a multidimensional window over a flat slice of T.
//
// The element at the mins of all axes is at data[base], and the element of index tuple idx is
// at data[base+shape.Offset(idx...)].
//
// The zero value is an empty scalar view without storage: don't access its element.
type View[T any] struct {
	data  []T
	base  int
	shape shapes.Shape
}

// Wrap returns a View of data with the given shape. The first element addressed by the shape (the
// one with the smallest offset, see shapes.Shape.FlatMin) is data[0].
//
// It panics if data is too small for the shape.
func Wrap[T any](data []T, shape shapes.Shape) View[T] {
	if len(data) < shape.RequiredSize() {
		exceptions.Panicf("arrays.Wrap(): shape %s requires %d elements, but data has only %d",
			shape, shape.RequiredSize(), len(data))
	}
	return View[T]{data: data, base: -shape.FlatMin(), shape: shape}
}

// WrapDense returns a View of data with shapes.MakeDense(extents...).
func WrapDense[T any](data []T, extents ...int) View[T] {
	return Wrap(data, shapes.MakeDense(extents...))
}

// Shape of the view.
func (v View[T]) Shape() shapes.Shape { return v.shape }

// Rank returns the number of axes.
func (v View[T]) Rank() int { return v.shape.Rank() }

// Size returns the number of elements in the domain of the view.
func (v View[T]) Size() int { return v.shape.Size() }

// Dim returns the dimension of the given axis, negative axes count from the end.
func (v View[T]) Dim(axis int) shapes.Dim { return v.shape.Dim(axis) }

// Flat returns the slice the view indexes into. The element at the mins of all axes is at
// Flat()[Base()].
func (v View[T]) Flat() []T { return v.data }

// Base returns the position in Flat() of the element at the mins of all axes.
func (v View[T]) Base() int { return v.base }

// IsValid returns whether the view has storage, or addresses no elements.
func (v View[T]) IsValid() bool {
	return v.data != nil || v.shape.IsZeroSize()
}

// At returns the element at the given index tuple.
//
// If shapes.RangeChecked, it panics with *shapes.OutOfRangeError for indices outside the domain.
func (v View[T]) At(indices ...int) T {
	return v.data[v.base+v.shape.Offset(indices...)]
}

// Set the element at the given index tuple.
func (v View[T]) Set(value T, indices ...int) {
	v.data[v.base+v.shape.Offset(indices...)] = value
}

// Ptr returns a pointer to the element at the given index tuple.
func (v View[T]) Ptr(indices ...int) *T {
	return &v.data[v.base+v.shape.Offset(indices...)]
}

// Crop returns the view narrowed to the given ranges (shapes.Interval, shapes.Dim or shapes.All),
// one per axis. Missing trailing ranges keep the whole axis. The new view keeps the index values
// of the original: cropping [2, 5) of an axis gives a view whose axis starts at 2.
//
// If shapes.RangeChecked, it panics with *shapes.OutOfRangeError if a range is not contained in
// its axis.
func (v View[T]) Crop(ranges ...shapes.Ranger) View[T] {
	cropped, offset := v.shape.Crop(ranges...)
	return View[T]{data: v.data, base: v.base + offset, shape: cropped}
}

// Slice returns the view with the given axis removed, fixed at index.
func (v View[T]) Slice(axis, index int) View[T] {
	sliced, offset := v.shape.Slice(axis, index)
	return View[T]{data: v.data, base: v.base + offset, shape: sliced}
}

// Reshape returns a view of the same memory with a new shape whose mins are relative to the
// element at the mins of v.
//
// It is the caller's responsibility that the new shape addresses memory within the original
// storage: only the bounds of the flat slice are checked.
func (v View[T]) Reshape(shape shapes.Shape) View[T] {
	if v.base+shape.FlatMin() < 0 || v.base+shape.FlatMax() >= len(v.data) {
		exceptions.Panicf("View.Reshape(%s): shape addresses memory outside of the storage of the view %s", shape, v.shape)
	}
	return View[T]{data: v.data, base: v.base, shape: shape}
}

// Values iterates over the elements of the view, in the order of shapes.Shape.Iter.
func (v View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for offset := range v.shape.Iter() {
			if !yield(v.data[v.base+offset]) {
				return
			}
		}
	}
}

// All iterates over the index tuples of the view and their elements.
//
// The yielded indices slice is owned by the iterator, and it's only valid during the iteration step.
func (v View[T]) All() iter.Seq2[[]int, T] {
	return func(yield func([]int, T) bool) {
		for offset, indices := range v.shape.Iter() {
			if !yield(indices, v.data[v.base+offset]) {
				return
			}
		}
	}
}
