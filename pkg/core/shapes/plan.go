// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"fmt"
	"slices"
	"strings"
)

// Level is one loop of a Plan: it runs Extent times, advancing each operand's offset by the
// corresponding stride.
type Level struct {
	Extent  int
	Strides []int
}

// Plan is a loop nest that visits every index tuple of a domain shared by one or more shapes
// (the operands), tracking one flat offset per operand.
//
// Levels[0] is the innermost loop. Axes of extent 1 are dropped, the remaining axes are
// ordered by the absolute stride of the first (primary) operand, and adjacent axes that are
// contiguous in every operand are fused into a single level. So the copy between two compact
// shapes with the same layout becomes a single level with all strides 1.
//
// Operands are matched positionally, axis by axis, so their mins may differ.
type Plan struct {
	Levels []Level

	numOperands int
	empty       bool
}

// MakePlan returns the loop Plan over the domain of primary, for primary and the other shapes.
//
// It panics with *MismatchError if the other shapes have a different rank or extents from
// primary.
func MakePlan(primary Shape, others ...Shape) Plan {
	operands := make([]Shape, 0, 1+len(others))
	operands = append(operands, primary)
	operands = append(operands, others...)
	for opIdx, other := range others {
		if !primary.SameExtents(other) {
			panic(MismatchErrorf("operand #%d with shape %s doesn't match the extents of shape %s",
				opIdx+1, other, primary))
		}
	}
	p := Plan{numOperands: len(operands)}
	if primary.IsZeroSize() {
		p.empty = true
		return p
	}

	axes := make([]int, 0, primary.Rank())
	for axis, d := range primary.dims {
		if d.Extent > 1 {
			axes = append(axes, axis)
		}
	}
	slices.SortStableFunc(axes, func(a, b int) int {
		return abs(primary.dims[a].Stride) - abs(primary.dims[b].Stride)
	})

	for _, axis := range axes {
		level := Level{Extent: primary.dims[axis].Extent, Strides: make([]int, len(operands))}
		for opIdx, op := range operands {
			level.Strides[opIdx] = op.dims[axis].Stride
		}
		if n := len(p.Levels); n > 0 && p.Levels[n-1].fusesWith(level) {
			p.Levels[n-1].Extent *= level.Extent
			continue
		}
		p.Levels = append(p.Levels, level)
	}
	return p
}

// fusesWith returns whether the outer level continues where inner ends, for every operand.
func (inner Level) fusesWith(outer Level) bool {
	for opIdx, stride := range inner.Strides {
		if outer.Strides[opIdx] != stride*inner.Extent {
			return false
		}
	}
	return true
}

// NumOperands returns the number of shapes the plan was made for.
func (p Plan) NumOperands() int { return p.numOperands }

// IsEmpty returns whether the domain has no elements, in which case the plan runs nothing.
func (p Plan) IsEmpty() bool { return p.empty }

// Size returns the number of index tuples visited by the plan.
func (p Plan) Size() int {
	if p.empty {
		return 0
	}
	size := 1
	for _, level := range p.Levels {
		size *= level.Extent
	}
	return size
}

// Inner returns the innermost level. If the plan has no levels (a single element), it returns
// a level with extent 1.
func (p Plan) Inner() Level {
	if len(p.Levels) == 0 {
		return Level{Extent: 1, Strides: make([]int, p.numOperands)}
	}
	return p.Levels[0]
}

// Contiguous returns whether the whole plan is one linear run with stride 1 on every operand.
func (p Plan) Contiguous() bool {
	if len(p.Levels) > 1 {
		return false
	}
	for _, stride := range p.Inner().Strides {
		if stride != 1 && p.Size() > 1 {
			return false
		}
	}
	return true
}

// ForEachRun calls fn once per iteration of the outer levels (all but Levels[0]), with the
// offset of each operand at the start of the innermost run. bases holds the starting offset of
// each operand.
//
// The offsets slice is reused between calls, fn must not keep it.
func (p Plan) ForEachRun(bases []int, fn func(offsets []int)) {
	if p.empty {
		return
	}
	offsets := slices.Clone(bases)
	if len(p.Levels) <= 1 {
		fn(offsets)
		return
	}
	outer := p.Levels[1:]
	counters := make([]int, len(outer))
	for {
		fn(offsets)
		level := 0
		for ; level < len(outer); level++ {
			counters[level]++
			if counters[level] < outer[level].Extent {
				for opIdx, stride := range outer[level].Strides {
					offsets[opIdx] += stride
				}
				break
			}
			// Carry: rewind this level.
			counters[level] = 0
			for opIdx, stride := range outer[level].Strides {
				offsets[opIdx] -= stride * (outer[level].Extent - 1)
			}
		}
		if level == len(outer) {
			return
		}
	}
}

// String implements fmt.Stringer, listing the levels from the innermost.
func (p Plan) String() string {
	if p.empty {
		return "Plan(empty)"
	}
	parts := make([]string, len(p.Levels))
	for ii, level := range p.Levels {
		parts[ii] = fmt.Sprintf("%d×%v", level.Extent, level.Strides)
	}
	return fmt.Sprintf("Plan[%s]", strings.Join(parts, ", "))
}
