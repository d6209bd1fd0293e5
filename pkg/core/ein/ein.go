// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package ein implements Einstein-summation style reductions over arrays.View operands.
//
// Each operand is bound to a list of logical indices, one per axis, with Of (for data) or
// Func (for functions of the index values). Operands are combined into an expression tree
// with elementwise operators (Add, Mul, Max, Apply, Cast, ...), and the expression is
// assigned or accumulated into a destination binding:
//
//	// Matrix-vector product: y(i) = Σ_j A(i, j) * x(j)
//	ein.Reduce(ein.Set(ein.Of(y, ein.I), ein.Mul(ein.Of(A, ein.I, ein.J), ein.Of(x, ein.J))))
//
//	// Or allocate the result:
//	y := ein.MakeSum(ein.Mul(ein.Of(A, ein.I, ein.J), ein.Of(x, ein.J)), ein.I)
//
// Indices used by the destination are "free": the reduction iterates over all of their values.
// The other indices are "reduced": for each combination of values of the free indices, the
// expression is evaluated for every combination of values of the reduced indices, and
// combined into the destination's element.
//
// An index repeated in one operand (e.g. Of(A, I, I)) selects its diagonal. An index shared by
// two data operands aligns their axes: they must have the same domain (min and extent), otherwise
// the reduction panics with a *shapes.MismatchError.
package ein

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/ndarray/pkg/core/arrays"
	"github.com/gomlx/ndarray/pkg/core/shapes"
)

// Index identifies a logical index of an expression. Any non-negative value can be used,
// but the constants I, J, K, L, M and N are easier to read.
type Index int

// Predefined indices.
const (
	I Index = iota
	J
	K
	L
	M
	N
)

const indexNames = "ijklmn"

// String implements fmt.Stringer.
func (idx Index) String() string {
	if idx >= 0 && int(idx) < len(indexNames) {
		return indexNames[idx : idx+1]
	}
	return fmt.Sprintf("i%d", int(idx))
}

func indicesString(indices []Index) string {
	parts := make([]string, len(indices))
	for ii, idx := range indices {
		parts[ii] = idx.String()
	}
	return strings.Join(parts, ",")
}

// Expr is a node of an expression tree evaluating to values of type T.
//
// Expressions are built with Of, Func, Const and the operators of this package. They
// are evaluated only by a reduction (Reduce, Sum, MakeSum).
type Expr[T any] interface {
	fmt.Stringer

	// compile registers the leaves of the expression in r and returns a function that
	// evaluates the expression for the current index values of r.
	compile(r *reduction) func() T
}

// Binding binds the axes of an arrays.View to logical indices.
//
// It can be used both as a leaf of an expression and as the destination of a Statement.
type Binding[T any] struct {
	view    arrays.View[T]
	indices []Index
}

var _ Expr[float32] = (*Binding[float32])(nil)

// Of binds the axes of view to the given indices, one per axis, in order.
//
// It panics with *shapes.MismatchError if the number of indices is not the rank of the view,
// and if any index is negative.
func Of[T any](view arrays.View[T], indices ...Index) *Binding[T] {
	if len(indices) != view.Rank() {
		panic(shapes.MismatchErrorf("ein.Of(): %d indices (%s) given to a view of rank %d (shape %s)",
			len(indices), indicesString(indices), view.Rank(), view.Shape()))
	}
	checkIndices("ein.Of", indices)
	return &Binding[T]{view: view, indices: indices}
}

func checkIndices(caller string, indices []Index) {
	for _, idx := range indices {
		if idx < 0 {
			exceptions.Panicf("%s(): invalid negative index %d", caller, int(idx))
		}
	}
}

// View returns the bound view.
func (b *Binding[T]) View() arrays.View[T] { return b.view }

// Indices returns the indices bound to each axis of the view.
func (b *Binding[T]) Indices() []Index { return b.indices }

// String implements fmt.Stringer.
func (b *Binding[T]) String() string {
	return fmt.Sprintf("view[%s]", indicesString(b.indices))
}

// sameElements returns whether b and other bind the same elements of the same storage to the
// same indices.
func (b *Binding[T]) sameElements(other *Binding[T]) bool {
	if b == other {
		return true
	}
	bData, otherData := b.view.Flat(), other.view.Flat()
	if len(bData) != len(otherData) || b.view.Base() != other.view.Base() ||
		!b.view.Shape().Equal(other.view.Shape()) || !slices.Equal(b.indices, other.indices) {
		return false
	}
	return len(bData) == 0 || &bData[0] == &otherData[0]
}

// compile implements Expr. If b binds the same elements as the destination of the reduction
// being compiled, it evaluates to the running accumulator.
func (b *Binding[T]) compile(r *reduction) func() T {
	if dst, ok := r.dst.(*Binding[T]); ok && dst.sameElements(b) {
		acc := r.acc.(*T)
		return func() T { return *acc }
	}
	id := r.addData(b.indices, b.view.Shape(), b.view.Base(), b.String())
	data := b.view.Flat()
	return func() T { return data[r.offsets[id]] }
}

// funcExpr is a leaf calling a function with the values of its indices.
type funcExpr[T any] struct {
	fn      func(values ...int) T
	indices []Index
}

// Func binds a function of the index values as an operand. For instance, with
// Func(basis, J, K), basis(j, k) is called with the current values of the indices J and K.
//
// A function has no shape: the domains of its indices must be defined by data operands (or the
// destination) of the reduction.
func Func[T any](fn func(values ...int) T, indices ...Index) Expr[T] {
	checkIndices("ein.Func", indices)
	return &funcExpr[T]{fn: fn, indices: indices}
}

func (f *funcExpr[T]) String() string {
	return fmt.Sprintf("func[%s]", indicesString(f.indices))
}

func (f *funcExpr[T]) compile(r *reduction) func() T {
	r.addFunc(f.indices, f.String())
	fn, indices := f.fn, f.indices
	args := make([]int, len(indices))
	return func() T {
		for ii, idx := range indices {
			args[ii] = r.values[idx]
		}
		return fn(args...)
	}
}

type constExpr[T any] struct {
	value T
}

// Const returns an expression that always evaluates to value.
func Const[T any](value T) Expr[T] {
	return &constExpr[T]{value: value}
}

func (c *constExpr[T]) String() string { return fmt.Sprintf("%v", c.value) }

func (c *constExpr[T]) compile(*reduction) func() T {
	value := c.value
	return func() T { return value }
}
