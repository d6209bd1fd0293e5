// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"fmt"
	"iter"
	"math"

	"github.com/gomlx/exceptions"
)

// Unknown marks a Dim field that is not known yet. A stride set to Unknown is resolved
// when the Dim becomes part of a Shape (see Make), so that the axis is laid out densely
// next to the other axes.
const Unknown = math.MinInt

// fixedMask flags the fields of a Dim that are pinned, the equivalent of being known at
// compile time.
type fixedMask uint8

const (
	fixedMin fixedMask = 1 << iota
	fixedExtent
	fixedStride
)

// Dim describes one axis of a Shape: the index domain [Min, Min+Extent) and the distance
// (in elements) between consecutive indices in memory.
//
// Dim is a small value type. Any of its fields can be "fixed", which is how this package
// models dimensions whose parameters are known ahead of time: see DenseDim and StaticDim.
// Fixed fields survive stride resolution and are checked by Shape.ConformsTo.
type Dim struct {
	Min, Extent, Stride int

	fixed fixedMask
}

// MakeDim returns a Dim over [min, min+extent) whose stride is resolved when it is used to
// build a Shape.
//
// It panics if extent is negative.
func MakeDim(min, extent int) Dim {
	return StridedDim(min, extent, Unknown)
}

// StridedDim returns a Dim over [min, min+extent) with the given stride.
// The stride can be Unknown.
//
// It panics if extent is negative.
func StridedDim(min, extent, stride int) Dim {
	if extent < 0 {
		exceptions.Panicf("shapes.StridedDim(%d, %d, %d): extent must be >= 0", min, extent, stride)
	}
	return Dim{Min: min, Extent: extent, Stride: stride}
}

// DenseDim returns a Dim with stride fixed to 1: consecutive indices are consecutive in memory.
func DenseDim(min, extent int) Dim {
	d := StridedDim(min, extent, 1)
	d.fixed = fixedStride
	return d
}

// StaticDim returns a Dim with min, extent and stride all fixed.
// The stride can be Unknown, in which case it is resolved when building a Shape, but
// only min and extent are then fixed.
func StaticDim(min, extent, stride int) Dim {
	d := StridedDim(min, extent, stride)
	d.fixed = fixedMin | fixedExtent
	if stride != Unknown {
		d.fixed |= fixedStride
	}
	return d
}

// Begin returns the smallest index in the domain of the Dim, the same as Min.
func (d Dim) Begin() int { return d.Min }

// Max returns the largest index in the domain of the Dim, Min+Extent-1.
func (d Dim) Max() int { return d.Min + d.Extent - 1 }

// End returns one past the largest index in the domain, Min+Extent.
func (d Dim) End() int { return d.Min + d.Extent }

// Contains returns whether the index i is in the domain of the Dim.
func (d Dim) Contains(i int) bool { return i >= d.Min && i < d.Min+d.Extent }

// Interval returns the index domain of the Dim. It implements Ranger.
func (d Dim) Interval() Interval { return Interval{Min: d.Min, Extent: d.Extent} }

// FixedMin returns whether Min is pinned.
func (d Dim) FixedMin() bool { return d.fixed&fixedMin != 0 }

// FixedExtent returns whether Extent is pinned.
func (d Dim) FixedExtent() bool { return d.fixed&fixedExtent != 0 }

// FixedStride returns whether Stride is pinned.
func (d Dim) FixedStride() bool { return d.fixed&fixedStride != 0 }

// Indices iterates over the indices of the Dim, from Min to Max.
func (d Dim) Indices() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := d.Min; i < d.Min+d.Extent; i++ {
			if !yield(i) {
				return
			}
		}
	}
}

// withInterval returns the Dim narrowed (or moved) to the given interval. The stride,
// and whether it is fixed, are kept.
func (d Dim) withInterval(iv Interval) Dim {
	return Dim{Min: iv.Min, Extent: iv.Extent, Stride: d.Stride, fixed: d.fixed & fixedStride}
}

// String implements fmt.Stringer.
func (d Dim) String() string {
	if d.Stride == Unknown {
		return fmt.Sprintf("{%d, %d, ?}", d.Min, d.Extent)
	}
	return fmt.Sprintf("{%d, %d, %d}", d.Min, d.Extent, d.Stride)
}

// Interval is a range of indices [Min, Min+Extent), used to crop Shapes.
type Interval struct {
	Min, Extent int
}

// Ranger is implemented by the types that can describe the range of an axis in
// Shape.Crop: Interval and Dim.
type Ranger interface {
	Interval() Interval
}

// All is the Interval that selects the whole axis in a crop.
var All = Interval{Min: 0, Extent: Unknown}

// Range returns the Interval [begin, end). If end < begin it is empty.
func Range(begin, end int) Interval {
	return Interval{Min: begin, Extent: max(end-begin, 0)}
}

// At returns the Interval with only the index i.
func At(i int) Interval {
	return Interval{Min: i, Extent: 1}
}

// Interval implements Ranger.
func (iv Interval) Interval() Interval { return iv }

// Max returns the largest index of the interval.
func (iv Interval) Max() int { return iv.Min + iv.Extent - 1 }

// End returns one past the largest index of the interval.
func (iv Interval) End() int { return iv.Min + iv.Extent }

// IsAll returns whether iv is the All interval.
func (iv Interval) IsAll() bool { return iv.Extent == Unknown }

// Contains returns whether other lies entirely within iv. Empty intervals are contained
// in any interval.
func (iv Interval) Contains(other Interval) bool {
	if other.Extent == 0 {
		return true
	}
	return other.Min >= iv.Min && other.End() <= iv.End()
}

// Intersect returns the intersection of both intervals, possibly empty.
func Intersect(a, b Interval) Interval {
	begin := max(a.Min, b.Min)
	return Range(begin, min(a.End(), b.End()))
}

// Union returns the smallest interval that contains both a and b.
// Empty intervals are ignored.
func Union(a, b Interval) Interval {
	if a.Extent == 0 {
		return b
	} else if b.Extent == 0 {
		return a
	}
	return Range(min(a.Min, b.Min), max(a.End(), b.End()))
}

// String implements fmt.Stringer.
func (iv Interval) String() string {
	if iv.IsAll() {
		return "[:]"
	}
	return fmt.Sprintf("[%d, %d)", iv.Min, iv.End())
}
