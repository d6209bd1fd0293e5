// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package shapes defines Dim and Shape: the index domain and memory layout of
// multidimensional arrays.
//
// A Shape is an ordered list of Dim, one per axis. Each Dim has a lower bound (Min), an
// Extent and a Stride. The flat offset of an index tuple is
//
//	sum(Stride[axis] * (index[axis] - Min[axis]))
//
// relative to the element at the mins of all axes. Shapes are immutable values: cropping
// or slicing returns new Shapes sharing the strides of the original.
//
// ## Glossary
//
//   - Rank: number of axes of a Shape.
//   - Axis: the position of a Dim in a Shape.
//   - Extent: number of indices of an axis.
//   - Dense axis: the axis with stride 1, whose stride equals the product of the extents of
//     all axes with smaller strides (there are none).
//   - Compact: a Shape whose elements form a single contiguous run of memory.
//
// ## Layout
//
// Strides left as Unknown are resolved by Make in axis order, each to the smallest stride
// that doesn't overlap the axes already laid out. So by default axis 0 is the dense one,
// axis 1 has stride Extent[0], and so on.
//
// ## Range checking
//
// Out-of-range accesses panic with *OutOfRangeError, unless the module is built with the
// `norangecheck` tag (see RangeChecked). Shape mismatches panic with *MismatchError.
package shapes

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// Shape is the index domain and memory layout of a multidimensional array.
//
// The zero value is a valid scalar (rank 0) shape.
type Shape struct {
	dims []Dim
}

// Make returns a Shape with the given dims, resolving any Unknown strides.
func Make(dims ...Dim) Shape {
	s := Shape{dims: slices.Clone(dims)}
	s.resolveStrides()
	return s
}

// MakeDense returns a Shape with the given extents, all axes starting at 0, laid out with
// axis 0 dense (stride fixed to 1) and each following axis packed after the previous ones.
func MakeDense(extents ...int) Shape {
	dims := make([]Dim, len(extents))
	for axis, extent := range extents {
		if axis == 0 {
			dims[axis] = DenseDim(0, extent)
		} else {
			dims[axis] = MakeDim(0, extent)
		}
	}
	return Make(dims...)
}

// Scalar returns the rank-0 Shape, with exactly one element.
func Scalar() Shape { return Shape{} }

// resolveStrides replaces Unknown strides, in axis order, with the smallest stride that
// doesn't overlap with any of the axes whose stride is already known.
func (s *Shape) resolveStrides() {
	for axis := range s.dims {
		if s.dims[axis].Stride != Unknown {
			continue
		}
		candidates := []int{1}
		for _, other := range s.dims {
			if other.Stride != Unknown {
				candidates = append(candidates, abs(other.Stride)*other.Extent)
			}
		}
		slices.Sort(candidates)
		for _, stride := range candidates {
			if stride > 0 && s.strideFits(axis, stride) {
				s.dims[axis].Stride = stride
				break
			}
		}
	}
}

// strideFits returns whether axis can use the given stride without its elements
// interleaving with those of the axes with known strides.
func (s *Shape) strideFits(axis, stride int) bool {
	extent := s.dims[axis].Extent
	for otherAxis, other := range s.dims {
		if otherAxis == axis || other.Stride == Unknown || other.Extent <= 1 {
			continue
		}
		otherStride := abs(other.Stride)
		if otherStride*other.Extent <= stride {
			// The whole other axis fits in one step of this one.
			continue
		}
		if stride*extent <= otherStride {
			// This whole axis fits in one step of the other.
			continue
		}
		return false
	}
	return true
}

// Rank returns the number of axes.
func (s Shape) Rank() int { return len(s.dims) }

// IsScalar returns whether the shape has rank 0.
func (s Shape) IsScalar() bool { return len(s.dims) == 0 }

// Dim returns the Dim of the given axis. axis can be negative, in which case it counts from
// the end -- so axis=-1 refers to the last axis.
// It panics for an out-of-bounds axis.
func (s Shape) Dim(axis int) Dim {
	adjustedAxis := axis
	if adjustedAxis < 0 {
		adjustedAxis += s.Rank()
	}
	if adjustedAxis < 0 || adjustedAxis >= s.Rank() {
		exceptions.Panicf("Shape.Dim(%d) out-of-bounds for rank %d (shape=%s)", axis, s.Rank(), s)
	}
	return s.dims[adjustedAxis]
}

// Dims returns a copy of the dims of the shape.
func (s Shape) Dims() []Dim { return slices.Clone(s.dims) }

// Extents returns the extent of each axis.
func (s Shape) Extents() []int {
	extents := make([]int, len(s.dims))
	for axis, d := range s.dims {
		extents[axis] = d.Extent
	}
	return extents
}

// Strides returns the stride of each axis.
func (s Shape) Strides() []int {
	strides := make([]int, len(s.dims))
	for axis, d := range s.dims {
		strides[axis] = d.Stride
	}
	return strides
}

// Mins returns the lower bound of each axis.
func (s Shape) Mins() []int {
	mins := make([]int, len(s.dims))
	for axis, d := range s.dims {
		mins[axis] = d.Min
	}
	return mins
}

// Size returns the number of elements in the domain of the shape: the product of the extents.
// A scalar has size 1.
func (s Shape) Size() int {
	size := 1
	for _, d := range s.dims {
		size *= d.Extent
	}
	return size
}

// IsZeroSize returns whether some axis has extent 0.
func (s Shape) IsZeroSize() bool {
	for _, d := range s.dims {
		if d.Extent == 0 {
			return true
		}
	}
	return false
}

// FlatMin returns the smallest offset addressed by the shape, relative to the element at the
// mins. It is negative only if there are negative strides.
func (s Shape) FlatMin() int {
	flatMin := 0
	for _, d := range s.dims {
		if d.Extent > 0 {
			flatMin += min(0, d.Stride*(d.Extent-1))
		}
	}
	return flatMin
}

// FlatMax returns the largest offset addressed by the shape, relative to the element at the mins.
func (s Shape) FlatMax() int {
	flatMax := 0
	for _, d := range s.dims {
		if d.Extent > 0 {
			flatMax += max(0, d.Stride*(d.Extent-1))
		}
	}
	return flatMax
}

// RequiredSize returns the number of elements a buffer must have to hold the shape.
func (s Shape) RequiredSize() int {
	if s.IsZeroSize() {
		return 0
	}
	return s.FlatMax() - s.FlatMin() + 1
}

// DenseAxis returns the axis whose elements are consecutive in memory (stride 1), or -1 if
// there is none. Axes with extent 1 are only considered if no other axis qualifies.
func (s Shape) DenseAxis() int {
	candidate := -1
	for axis, d := range s.dims {
		if abs(d.Stride) != 1 {
			continue
		}
		if d.Extent > 1 {
			return axis
		}
		if candidate < 0 {
			candidate = axis
		}
	}
	return candidate
}

// IsCompact returns whether all elements of the shape form one contiguous run of memory, with
// no gaps and no aliasing.
func (s Shape) IsCompact() bool {
	plan := MakePlan(s)
	return plan.IsEmpty() || (len(plan.Levels) == 1 && abs(plan.Levels[0].Strides[0]) == 1) ||
		plan.Size() == 1
}

// Contains returns whether the index tuple is in the domain of the shape.
func (s Shape) Contains(indices ...int) bool {
	if len(indices) != len(s.dims) {
		return false
	}
	for axis, d := range s.dims {
		if !d.Contains(indices[axis]) {
			return false
		}
	}
	return true
}

// CheckIndex returns an *OutOfRangeError if the index tuple is not in the domain of the shape,
// or an error if the number of indices doesn't match the rank.
//
// It checks independently of RangeChecked.
func (s Shape) CheckIndex(indices ...int) error {
	if len(indices) != len(s.dims) {
		return errors.Errorf("shape %s has rank %d, but %d indices were given", s, s.Rank(), len(indices))
	}
	for axis, d := range s.dims {
		if !d.Contains(indices[axis]) {
			return &OutOfRangeError{Axis: axis, Requested: At(indices[axis]), Dim: d}
		}
	}
	return nil
}

// Offset returns the flat offset of the index tuple, relative to the element at the mins.
//
// It panics if the number of indices doesn't match the rank. If RangeChecked, it panics
// with *OutOfRangeError for indices outside of the domain.
func (s Shape) Offset(indices ...int) int {
	if len(indices) != len(s.dims) {
		exceptions.Panicf("Shape.Offset(%v) on shape %s of rank %d", indices, s, s.Rank())
	}
	offset := 0
	for axis, d := range s.dims {
		i := indices[axis]
		if RangeChecked && !d.Contains(i) {
			panic(&OutOfRangeError{Axis: axis, Requested: At(i), Dim: d})
		}
		offset += d.Stride * (i - d.Min)
	}
	return offset
}

// UncheckedOffset is like Offset, but never checks the indices, regardless of RangeChecked.
// Missing trailing indices are taken to be at the min of their axis.
func (s Shape) UncheckedOffset(indices ...int) int {
	offset := 0
	for axis, i := range indices {
		d := s.dims[axis]
		offset += d.Stride * (i - d.Min)
	}
	return offset
}

// resolveRanges converts the crop arguments into one Interval per axis. Missing trailing
// ranges and All select the whole axis.
func (s Shape) resolveRanges(ranges []Ranger) []Interval {
	if len(ranges) > len(s.dims) {
		exceptions.Panicf("Shape.Crop() given %d ranges for shape %s of rank %d", len(ranges), s, s.Rank())
	}
	intervals := make([]Interval, len(s.dims))
	for axis, d := range s.dims {
		if axis >= len(ranges) || ranges[axis] == nil {
			intervals[axis] = d.Interval()
			continue
		}
		iv := ranges[axis].Interval()
		if iv.IsAll() {
			iv = d.Interval()
		}
		intervals[axis] = iv
	}
	return intervals
}

// CheckCrop returns an *OutOfRangeError if any of the ranges is not within the domain of the
// corresponding axis. See Crop.
//
// It checks independently of RangeChecked.
func (s Shape) CheckCrop(ranges ...Ranger) error {
	intervals := s.resolveRanges(ranges)
	for axis, d := range s.dims {
		if !d.Interval().Contains(intervals[axis]) {
			return &OutOfRangeError{Axis: axis, Requested: intervals[axis], Dim: d}
		}
	}
	return nil
}

// Crop returns the shape narrowed to the given ranges, one per axis (Interval, Dim or All).
// Missing trailing ranges select the whole axis. The strides are kept, so the new shape
// addresses the same memory as the original, and its mins are the mins of the ranges.
//
// It also returns the offset of the element at the mins of the cropped shape, relative to
// the element at the mins of s.
//
// If RangeChecked, it panics with *OutOfRangeError if a range is not within its axis.
func (s Shape) Crop(ranges ...Ranger) (cropped Shape, offset int) {
	intervals := s.resolveRanges(ranges)
	cropped.dims = make([]Dim, len(s.dims))
	for axis, d := range s.dims {
		iv := intervals[axis]
		if RangeChecked && !d.Interval().Contains(iv) {
			panic(&OutOfRangeError{Axis: axis, Requested: iv, Dim: d})
		}
		cropped.dims[axis] = d.withInterval(iv)
		offset += d.Stride * (iv.Min - d.Min)
	}
	return
}

// Slice returns the shape with the given axis removed, fixed at index. It also returns the
// offset of the element at the mins of the sliced shape, relative to the element at the mins
// of s.
//
// If RangeChecked, it panics with *OutOfRangeError if index is not in the axis domain.
func (s Shape) Slice(axis, index int) (sliced Shape, offset int) {
	d := s.Dim(axis)
	if axis < 0 {
		axis += s.Rank()
	}
	if RangeChecked && !d.Contains(index) {
		panic(&OutOfRangeError{Axis: axis, Requested: At(index), Dim: d})
	}
	sliced.dims = slices.Delete(slices.Clone(s.dims), axis, axis+1)
	return sliced, d.Stride * (index - d.Min)
}

// Equal returns whether both shapes have the same rank and the same min, extent and stride on
// every axis. Whether fields are fixed is not compared.
func (s Shape) Equal(s2 Shape) bool {
	return slices.EqualFunc(s.dims, s2.dims, func(a, b Dim) bool {
		return a.Min == b.Min && a.Extent == b.Extent && a.Stride == b.Stride
	})
}

// SameDomain returns whether both shapes have the same mins and extents, irrespective of strides.
func (s Shape) SameDomain(s2 Shape) bool {
	return slices.EqualFunc(s.dims, s2.dims, func(a, b Dim) bool {
		return a.Min == b.Min && a.Extent == b.Extent
	})
}

// SameExtents returns whether both shapes have the same rank and extents, irrespective of mins
// and strides.
func (s Shape) SameExtents(s2 Shape) bool {
	return slices.EqualFunc(s.dims, s2.dims, func(a, b Dim) bool {
		return a.Extent == b.Extent
	})
}

// Compact returns a shape with the same domain as s, but with strides resolved again, so it is
// laid out densely (axis 0 innermost).
func (s Shape) Compact() Shape {
	dims := make([]Dim, len(s.dims))
	for axis, d := range s.dims {
		dims[axis] = MakeDim(d.Min, d.Extent)
	}
	return Make(dims...)
}

// ConformsTo returns an error if s cannot be used where template is expected: the ranks must
// match, and every field fixed in the template must have the same value in s.
func (s Shape) ConformsTo(template Shape) error {
	if s.Rank() != template.Rank() {
		return errors.Errorf("shape %s has rank %d, template %s requires rank %d",
			s, s.Rank(), template, template.Rank())
	}
	for axis, want := range template.dims {
		got := s.dims[axis]
		if want.FixedMin() && got.Min != want.Min {
			return errors.Errorf("shape %s axis %d has min %d, template %s requires %d", s, axis, got.Min, template, want.Min)
		}
		if want.FixedExtent() && got.Extent != want.Extent {
			return errors.Errorf("shape %s axis %d has extent %d, template %s requires %d", s, axis, got.Extent, template, want.Extent)
		}
		if want.FixedStride() && got.Stride != want.Stride && got.Extent > 1 {
			return errors.Errorf("shape %s axis %d has stride %d, template %s requires %d", s, axis, got.Stride, template, want.Stride)
		}
	}
	return nil
}

// String implements fmt.Stringer. Each axis is printed as {min, extent, stride}.
func (s Shape) String() string {
	parts := make([]string, len(s.dims))
	for axis, d := range s.dims {
		parts[axis] = d.String()
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, ", "))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
