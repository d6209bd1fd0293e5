// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"iter"
	"slices"

	"github.com/pkg/errors"
)

// Iter iterates over all index tuples of the shape's domain.
//
// It yields the offset of each index tuple (relative to the element at the mins, see Offset)
// and the index tuple itself. Axes are visited in memory order: the axis with the smallest
// absolute stride changes fastest, so for a compact shape the yielded offsets are visited
// sequentially.
//
// To avoid allocating, the yielded indices slice is owned by the iterator: don't change it
// inside the loop, and clone it if it must outlive the iteration step.
func (s Shape) Iter() iter.Seq2[int, []int] {
	indices := make([]int, s.Rank())
	return s.IterOn(indices)
}

// Indices iterates over all index tuples of the shape's domain, in the same order as Iter.
//
// The yielded slice is owned by the iterator.
func (s Shape) Indices() iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		for _, indices := range s.Iter() {
			if !yield(indices) {
				return
			}
		}
	}
}

// IterOn is like Iter, but updates and yields the given indices slice.
//
// During the iteration the caller shouldn't modify the slice of indices, otherwise it will lead
// to undefined behavior.
//
// It expects len(indices) == s.Rank(). It will panic otherwise.
func (s Shape) IterOn(indices []int) iter.Seq2[int, []int] {
	if len(indices) != s.Rank() {
		panic(errors.Errorf("Shape.IterOn given len(indices) == %d, want it to be equal to the rank %d", len(indices), s.Rank()))
	}
	return func(yield func(int, []int) bool) {
		if s.IsZeroSize() {
			return
		}
		for axis, d := range s.dims {
			indices[axis] = d.Min
		}

		// Only iterate over the non-trivial axes, innermost (smallest stride) first.
		loopAxes := make([]int, 0, s.Rank())
		for axis, d := range s.dims {
			if d.Extent > 1 {
				loopAxes = append(loopAxes, axis)
			}
		}
		slices.SortStableFunc(loopAxes, func(a, b int) int {
			return abs(s.dims[a].Stride) - abs(s.dims[b].Stride)
		})

		offset := 0
	yielder:
		for {
			if !yield(offset, indices) {
				return
			}
			for _, axis := range loopAxes {
				d := s.dims[axis]
				indices[axis]++
				offset += d.Stride
				if indices[axis] < d.Min+d.Extent {
					continue yielder
				}
				// Carry over to the next axis.
				indices[axis] = d.Min
				offset -= d.Stride * d.Extent
			}
			// All axes overflowed.
			break
		}
	}
}
