// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ein

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/ndarray/pkg/core/arrays"
	"github.com/gomlx/ndarray/pkg/core/dtypes"
	"github.com/gomlx/ndarray/pkg/core/shapes"
	"github.com/gomlx/ndarray/pkg/support/sets"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Statement assigns or accumulates an expression into a destination binding.
// Create it with Set, AddTo or Into, and evaluate it with Reduce.
type Statement[T any] struct {
	dst     *Binding[T]
	expr    Expr[T]
	opName  string
	combine func(acc, value T) T
}

// Set returns the statement dst = expr.
//
// For each element of dst, expr is evaluated for every combination of the reduced indices and
// the last value is stored. If dst, or another binding of the same elements to the same
// indices, appears in expr, it evaluates to the value being computed, starting from the current
// value of the element. This allows, e.g., max-reductions with Set(r, Max(r, expr)).
func Set[T any](dst *Binding[T], expr Expr[T]) Statement[T] {
	return Statement[T]{dst: dst, expr: expr, opName: "="}
}

// AddTo returns the statement dst += expr: the values of expr for every combination of the
// reduced indices are added to the current values of dst.
func AddTo[T dtypes.Number](dst *Binding[T], expr Expr[T]) Statement[T] {
	stmt := Into(dst, func(acc, value T) T { return acc + value }, expr)
	stmt.opName = "+="
	return stmt
}

// Into returns the statement dst = op(dst, expr), accumulating the values of expr for every
// combination of the reduced indices with op.
func Into[T any](dst *Binding[T], op func(acc, value T) T, expr Expr[T]) Statement[T] {
	return Statement[T]{dst: dst, expr: expr, opName: "<op>=", combine: op}
}

// String implements fmt.Stringer.
func (s Statement[T]) String() string {
	return fmt.Sprintf("%s %s %s", s.dst, s.opName, s.expr)
}

// leaf is an operand of a reduction: a data operand (with a shape) or a function operand.
type leaf struct {
	name    string
	indices []Index
	shape   shapes.Shape
	base    int
	isFunc  bool
}

// step is the change of the offset of one data leaf when an index is incremented.
type step struct {
	leaf, stride int
}

// loop iterates over the domain of one index.
type loop struct {
	index  Index
	domain shapes.Interval
	steps  []step
}

// reduction holds the state of the evaluation of a Statement: the current value of each index and
// the current offset of each data leaf.
type reduction struct {
	leaves []leaf

	// offsets of the current element of each leaf in its flat data. Unused for function leaves.
	offsets []int

	// values of each index, indexed by Index.
	values []int

	// dst is the destination binding (a *Binding[T]) and acc a *T with the running accumulator.
	dst, acc any

	// free and reduced loops, innermost first.
	free, reduced []loop
}

func (r *reduction) addData(indices []Index, shape shapes.Shape, base int, name string) int {
	r.leaves = append(r.leaves, leaf{name: name, indices: indices, shape: shape, base: base})
	return len(r.leaves) - 1
}

func (r *reduction) addFunc(indices []Index, name string) {
	r.leaves = append(r.leaves, leaf{name: name, indices: indices, isFunc: true})
}

// domains returns the merged domains of the indices bound by data leaves.
func (r *reduction) domains() (IndexDomains, error) {
	domains := make(IndexDomains)
	for _, l := range r.leaves {
		if l.isFunc {
			continue
		}
		if err := domains.Merge(operandDomains(l.indices, l.shape)); err != nil {
			return nil, errors.WithMessagef(err, "operand %s", l.name)
		}
	}
	return domains, nil
}

// plan builds the loops of the reduction, given the indices of the destination, and sets the
// initial index values and offsets. It panics if the domains of the indices can't be determined.
func (r *reduction) plan(description string, dstIndices []Index) {
	domains, err := r.domains()
	if err != nil {
		panic(shapes.MismatchErrorf("ein.Reduce(%s): %v", description, err))
	}

	// All indices, destination ones first.
	indices := sets.MakeWith(dstIndices...)
	for _, l := range r.leaves {
		indices.Insert(l.indices...)
	}
	maxIndex := Index(0)
	for idx := range indices.All() {
		if _, found := domains[idx]; !found {
			exceptions.Panicf("ein.Reduce(%s): index %s is only used by function operands, its domain is unknown",
				description, idx)
		}
		maxIndex = max(maxIndex, idx)
	}

	// Initial values and offsets, at the min of each domain.
	r.values = make([]int, maxIndex+1)
	for idx, iv := range domains {
		r.values[idx] = iv.Min
	}
	r.offsets = make([]int, len(r.leaves))
	for id, l := range r.leaves {
		if l.isFunc {
			continue
		}
		offset := l.base
		for axis, idx := range l.indices {
			d := l.shape.Dim(axis)
			offset += d.Stride * (domains[idx].Min - d.Min)
		}
		r.offsets[id] = offset
	}

	// One loop per index: a repeated index in a leaf moves along all its axes at once.
	// Loops are ordered by the stride of the first data leaf using them, so that the innermost
	// loop moves over the closest elements in memory.
	freeSet := sets.MakeWith(dstIndices...)
	type orderedLoop struct {
		loop
		stride int
	}
	var free, reduced []orderedLoop
	for idx := range indices.All() {
		lp := orderedLoop{loop: loop{index: idx, domain: domains[idx]}, stride: -1}
		for id, l := range r.leaves {
			if l.isFunc {
				continue
			}
			var stride int
			for axis, leafIdx := range l.indices {
				if leafIdx == idx {
					stride += l.shape.Dim(axis).Stride
				}
			}
			if stride != 0 {
				lp.steps = append(lp.steps, step{leaf: id, stride: stride})
				if lp.stride < 0 {
					lp.stride = max(stride, -stride)
				}
			}
		}
		if freeSet.Has(idx) {
			free = append(free, lp)
		} else {
			reduced = append(reduced, lp)
		}
	}
	byStride := func(a, b orderedLoop) int { return cmp.Compare(a.stride, b.stride) }
	slices.SortStableFunc(free, byStride)
	slices.SortStableFunc(reduced, byStride)
	for _, lp := range free {
		r.free = append(r.free, lp.loop)
	}
	for _, lp := range reduced {
		r.reduced = append(r.reduced, lp.loop)
	}
	if klog.V(2).Enabled() {
		klog.Infof("ein.Reduce(%s): free loops %s, reduced loops %s", description, loopsString(r.free), loopsString(r.reduced))
	}
}

func loopsString(loops []loop) string {
	parts := make([]string, len(loops))
	for ii, lp := range loops {
		parts[ii] = fmt.Sprintf("%s∈%s", lp.index, lp.domain)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// forEach calls fn for every combination of the values of the indices of loops, innermost first,
// updating the index values and the leaf offsets. When it returns, values and offsets are back to
// their initial state.
func (r *reduction) forEach(loops []loop, fn func()) {
	for _, lp := range loops {
		if lp.domain.Extent == 0 {
			return
		}
	}
	for {
		fn()
		k := 0
		for ; k < len(loops); k++ {
			lp := &loops[k]
			r.values[lp.index]++
			for _, s := range lp.steps {
				r.offsets[s.leaf] += s.stride
			}
			if r.values[lp.index] < lp.domain.End() {
				break
			}
			// Carry over to the next loop.
			r.values[lp.index] = lp.domain.Min
			for _, s := range lp.steps {
				r.offsets[s.leaf] -= s.stride * lp.domain.Extent
			}
		}
		if k == len(loops) {
			return
		}
	}
}

// Reduce evaluates the statement.
//
// For each combination of values of the free indices (the indices of the destination), the
// accumulator is initialized to the current value of the destination element. Then for each
// combination of values of the reduced indices (the ones not in the destination), the expression
// is evaluated and combined into the accumulator (or assigned, for Set). Finally the
// accumulator is stored in the destination element.
//
// It panics with *shapes.MismatchError if two data operands (or an operand and the destination)
// bind the same index to axes with different domains. It panics if an index is used only by
// function operands.
func Reduce[T any](stmt Statement[T]) {
	dst := stmt.dst
	var acc T
	r := &reduction{dst: dst, acc: &acc}
	dstID := r.addData(dst.indices, dst.view.Shape(), dst.view.Base(), dst.String())
	eval := stmt.expr.compile(r)
	description := stmt.String()
	r.plan(description, dst.indices)

	data := dst.view.Flat()
	combine := stmt.combine
	var reduce func()
	if combine == nil {
		reduce = func() { acc = eval() }
	} else {
		reduce = func() { acc = combine(acc, eval()) }
	}
	r.forEach(r.free, func() {
		offset := r.offsets[dstID]
		acc = data[offset]
		r.forEach(r.reduced, reduce)
		data[offset] = acc
	})
}

// Sum adds the values of expr, for all combinations of values of the indices not used by dst,
// to dst. dst can be a binding of a rank-0 view to sum all values.
func Sum[T dtypes.Number](expr Expr[T], dst *Binding[T]) {
	Reduce(AddTo(dst, expr))
}

// Domains returns the domains of the indices bound by the data operands of expr.
//
// It returns a *shapes.MismatchError if two data operands bind the same index to axes with
// different domains.
func Domains[T any](expr Expr[T]) (IndexDomains, error) {
	r := &reduction{}
	expr.compile(r)
	return r.domains()
}

// MakeSum allocates an array with one axis per free index, and sums expr into it.
//
// Axis d of the result spans the union of the domains of the axes bound to free[d] in the
// operands. With no free indices the result has rank 0, see also MakeSumScalar.
//
// It panics if a free index is not bound by any data operand.
func MakeSum[T dtypes.Number](expr Expr[T], free ...Index) *arrays.Array[T] {
	result := makeResult("ein.MakeSum", expr, free, 0)
	Sum(expr, Of(result.View, free...))
	return result
}

// MakeMax allocates an array with one axis per free index, like MakeSum, and stores in each
// element the maximum of expr over the reduced indices.
//
// Elements whose reduced domain is empty are left at dtypes.LowestValue[T]().
func MakeMax[T dtypes.NumberNotComplex](expr Expr[T], free ...Index) *arrays.Array[T] {
	result := makeResult("ein.MakeMax", expr, free, dtypes.LowestValue[T]())
	Reduce(Into(Of(result.View, free...), func(acc, value T) T { return max(acc, value) }, expr))
	return result
}

// MakeMin is like MakeMax, but for the minimum. Elements whose reduced domain is empty are left
// at dtypes.HighestValue[T]().
func MakeMin[T dtypes.NumberNotComplex](expr Expr[T], free ...Index) *arrays.Array[T] {
	result := makeResult("ein.MakeMin", expr, free, dtypes.HighestValue[T]())
	Reduce(Into(Of(result.View, free...), func(acc, value T) T { return min(acc, value) }, expr))
	return result
}

// makeResult allocates the result of a reduction of expr over all indices but free, filled
// with initial.
func makeResult[T any](caller string, expr Expr[T], free []Index, initial T) *arrays.Array[T] {
	checkIndices(caller, free)
	r := &reduction{}
	expr.compile(r)
	union := make(IndexDomains)
	for _, l := range r.leaves {
		if !l.isFunc {
			union.UnionWith(operandDomains(l.indices, l.shape))
		}
	}
	dims := make([]shapes.Dim, len(free))
	for axis, idx := range free {
		iv, found := union[idx]
		if !found {
			exceptions.Panicf("%s(%s): free index %s is not bound to any data operand", caller, expr, idx)
		}
		dims[axis] = shapes.MakeDim(iv.Min, iv.Extent)
	}
	result := arrays.MakeArray(shapes.Make(dims...), initial)
	klog.V(1).Infof("%s(%s): allocated result with shape %s", caller, expr, result.Shape())
	return result
}

// MakeSumScalar returns the sum of the values of expr over all combinations of its indices.
func MakeSumScalar[T dtypes.Number](expr Expr[T]) T {
	return MakeSum(expr).At()
}
