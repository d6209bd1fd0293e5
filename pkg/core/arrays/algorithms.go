// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package arrays

import (
	"github.com/gomlx/ndarray/pkg/core/shapes"
	"k8s.io/klog/v2"
)

// cropTo returns src cropped to the index domain of dst.
//
// It panics with *shapes.MismatchError if the ranks differ, and (if shapes.RangeChecked) with
// *shapes.OutOfRangeError if the domain of dst is not contained in the domain of src.
func cropTo[S, D any](src View[S], dst View[D]) View[S] {
	if src.Rank() != dst.Rank() {
		panic(shapes.MismatchErrorf("source shape %s and destination shape %s have different ranks", src.shape, dst.shape))
	}
	if src.shape.SameDomain(dst.shape) {
		return src
	}
	ranges := make([]shapes.Ranger, dst.Rank())
	for axis := range ranges {
		ranges[axis] = dst.shape.Dim(axis).Interval()
	}
	return src.Crop(ranges...)
}

func logPlan(op string, plan shapes.Plan) {
	if klog.V(2).Enabled() {
		klog.Infof("arrays.%s: %s", op, plan)
	}
}

// Generate assigns producer() to every element of v. The elements are visited in memory order,
// each exactly once.
func Generate[T any](v View[T], producer func() T) {
	plan := shapes.MakePlan(v.shape)
	inner := plan.Inner()
	n, stride := inner.Extent, inner.Strides[0]
	data := v.data
	plan.ForEachRun([]int{v.base}, func(offsets []int) {
		offset := offsets[0]
		for range n {
			data[offset] = producer()
			offset += stride
		}
	})
}

// Fill assigns value to every element of v.
func Fill[T any](v View[T], value T) {
	plan := shapes.MakePlan(v.shape)
	inner := plan.Inner()
	n, stride := inner.Extent, inner.Strides[0]
	data := v.data
	plan.ForEachRun([]int{v.base}, func(offsets []int) {
		offset := offsets[0]
		if stride == 1 {
			run := data[offset : offset+n]
			for i := range run {
				run[i] = value
			}
			return
		}
		for range n {
			data[offset] = value
			offset += stride
		}
	})
}

// Copy assigns dst[idx] = src[idx] for every index tuple idx in the domain of dst.
//
// The source is cropped to the domain of dst, so their extents agree. It panics with
// *shapes.MismatchError if the ranks differ, and, if shapes.RangeChecked, with
// *shapes.OutOfRangeError if the domain of dst is not within the domain of src.
//
// Views with the same compact layout are copied with a single call to the builtin copy.
// Overlapping src and dst give undefined results.
func Copy[T any](src, dst View[T]) {
	src = cropTo(src, dst)
	plan := shapes.MakePlan(dst.shape, src.shape)
	logPlan("Copy", plan)
	inner := plan.Inner()
	n, dstStride, srcStride := inner.Extent, inner.Strides[0], inner.Strides[1]
	dstData, srcData := dst.data, src.data
	plan.ForEachRun([]int{dst.base, src.base}, func(offsets []int) {
		dstOffset, srcOffset := offsets[0], offsets[1]
		if dstStride == 1 && srcStride == 1 {
			copy(dstData[dstOffset:dstOffset+n], srcData[srcOffset:srcOffset+n])
			return
		}
		for range n {
			dstData[dstOffset] = srcData[srcOffset]
			dstOffset += dstStride
			srcOffset += srcStride
		}
	})
}

// Move is like Copy, but each source element is reset to the zero value of T after being moved,
// so it no longer holds references (pointers, slices, maps) to the moved contents.
// The source storage is not released.
func Move[T any](src, dst View[T]) {
	src = cropTo(src, dst)
	plan := shapes.MakePlan(dst.shape, src.shape)
	logPlan("Move", plan)
	inner := plan.Inner()
	n, dstStride, srcStride := inner.Extent, inner.Strides[0], inner.Strides[1]
	dstData, srcData := dst.data, src.data
	var zero T
	plan.ForEachRun([]int{dst.base, src.base}, func(offsets []int) {
		dstOffset, srcOffset := offsets[0], offsets[1]
		if dstStride == 1 && srcStride == 1 {
			copy(dstData[dstOffset:dstOffset+n], srcData[srcOffset:srcOffset+n])
			clear(srcData[srcOffset : srcOffset+n])
			return
		}
		for range n {
			dstData[dstOffset] = srcData[srcOffset]
			srcData[srcOffset] = zero
			dstOffset += dstStride
			srcOffset += srcStride
		}
	})
}

// Transform assigns dst[idx] = fn(src[idx]) for every index tuple idx in the domain of dst.
// The domain rules are the same as for Copy.
func Transform[S, D any](src View[S], dst View[D], fn func(S) D) {
	src = cropTo(src, dst)
	plan := shapes.MakePlan(dst.shape, src.shape)
	inner := plan.Inner()
	n, dstStride, srcStride := inner.Extent, inner.Strides[0], inner.Strides[1]
	dstData, srcData := dst.data, src.data
	plan.ForEachRun([]int{dst.base, src.base}, func(offsets []int) {
		dstOffset, srcOffset := offsets[0], offsets[1]
		for range n {
			dstData[dstOffset] = fn(srcData[srcOffset])
			dstOffset += dstStride
			srcOffset += srcStride
		}
	})
}

// Equal returns whether a and b have the same extents on every axis and equal elements at
// corresponding positions. Mins and layouts don't need to match: the views are compared position
// by position, from the mins of each axis.
func Equal[T comparable](a, b View[T]) bool {
	return EqualFunc(a, b, func(x, y T) bool { return x == y })
}

// EqualFunc is like Equal, but uses eq to compare elements. It stops at the first pair for which
// eq returns false.
func EqualFunc[A, B any](a View[A], b View[B], eq func(A, B) bool) bool {
	if !a.shape.SameExtents(b.shape) {
		return false
	}
	plan := shapes.MakePlan(a.shape, b.shape)
	inner := plan.Inner()
	n, aStride, bStride := inner.Extent, inner.Strides[0], inner.Strides[1]
	aData, bData := a.data, b.data
	equal := true
	plan.ForEachRun([]int{a.base, b.base}, func(offsets []int) {
		if !equal {
			return
		}
		aOffset, bOffset := offsets[0], offsets[1]
		for range n {
			if !eq(aData[aOffset], bData[bOffset]) {
				equal = false
				return
			}
			aOffset += aStride
			bOffset += bStride
		}
	})
	return equal
}

// ForEachValue calls fn with a pointer to every element of v, in memory order. fn may modify the
// element.
func ForEachValue[T any](v View[T], fn func(*T)) {
	plan := shapes.MakePlan(v.shape)
	inner := plan.Inner()
	n, stride := inner.Extent, inner.Strides[0]
	data := v.data
	plan.ForEachRun([]int{v.base}, func(offsets []int) {
		offset := offsets[0]
		for range n {
			fn(&data[offset])
			offset += stride
		}
	})
}

// ForAllIndices calls fn with every index tuple in the domain of shape, in memory order (see
// shapes.Shape.Iter).
//
// The indices slice is reused between calls: fn must not keep it.
func ForAllIndices(shape shapes.Shape, fn func(indices []int)) {
	for _, indices := range shape.Iter() {
		fn(indices)
	}
}

// MakeCompactCopy returns a new array with the domain of v (same mins and extents), compactly
// laid out, and a copy of its elements.
func MakeCompactCopy[T any](v View[T]) *Array[T] {
	a := MakeArray[T](v.shape.Compact())
	Copy(v, a.View)
	return a
}
