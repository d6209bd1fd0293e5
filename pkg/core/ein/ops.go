// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ein

import (
	"fmt"

	"github.com/gomlx/ndarray/pkg/core/dtypes"
	"golang.org/x/exp/constraints"
)

// binaryExpr combines the values of two expressions.
type binaryExpr[T any] struct {
	name  string
	infix bool
	op    func(a, b T) T
	a, b  Expr[T]
}

func (e *binaryExpr[T]) String() string {
	if e.infix {
		return fmt.Sprintf("(%s %s %s)", e.a, e.name, e.b)
	}
	return fmt.Sprintf("%s(%s, %s)", e.name, e.a, e.b)
}

func (e *binaryExpr[T]) compile(r *reduction) func() T {
	a, b, op := e.a.compile(r), e.b.compile(r), e.op
	return func() T { return op(a(), b()) }
}

// fold combines the operands left to right.
func fold[T any](name string, infix bool, op func(a, b T) T, operands ...Expr[T]) Expr[T] {
	result := operands[0]
	for _, operand := range operands[1:] {
		result = &binaryExpr[T]{name: name, infix: infix, op: op, a: result, b: operand}
	}
	return result
}

// Add returns the elementwise sum of the operands.
func Add[T dtypes.Number](a, b Expr[T], more ...Expr[T]) Expr[T] {
	return fold("+", true, func(x, y T) T { return x + y }, append([]Expr[T]{a, b}, more...)...)
}

// Sub returns the elementwise difference a - b.
func Sub[T dtypes.Number](a, b Expr[T]) Expr[T] {
	return fold("-", true, func(x, y T) T { return x - y }, a, b)
}

// Mul returns the elementwise product of the operands.
func Mul[T dtypes.Number](a, b Expr[T], more ...Expr[T]) Expr[T] {
	return fold("*", true, func(x, y T) T { return x * y }, append([]Expr[T]{a, b}, more...)...)
}

// Div returns the elementwise quotient a / b.
//
// Integer division by zero panics during the reduction, as in Go.
func Div[T dtypes.Number](a, b Expr[T]) Expr[T] {
	return fold("/", true, func(x, y T) T { return x / y }, a, b)
}

// Max returns the elementwise maximum of the operands.
//
// Reducing into a destination that is also an operand computes a max-reduction:
//
//	r := ein.Of(maxValues, ein.J)
//	ein.Reduce(ein.Set(r, ein.Max(r, ein.Of(t, ein.I, ein.J, ein.K))))
func Max[T constraints.Ordered](a, b Expr[T], more ...Expr[T]) Expr[T] {
	return fold("max", false, func(x, y T) T { return max(x, y) }, append([]Expr[T]{a, b}, more...)...)
}

// Min returns the elementwise minimum of the operands.
func Min[T constraints.Ordered](a, b Expr[T], more ...Expr[T]) Expr[T] {
	return fold("min", false, func(x, y T) T { return min(x, y) }, append([]Expr[T]{a, b}, more...)...)
}

// Apply combines a and b with an arbitrary binary operator.
func Apply[T any](op func(a, b T) T, a, b Expr[T]) Expr[T] {
	return &binaryExpr[T]{name: "apply", op: op, a: a, b: b}
}

// unaryExpr maps the values of an expression, possibly to another type.
type unaryExpr[S, T any] struct {
	name string
	fn   func(S) T
	e    Expr[S]
}

func (e *unaryExpr[S, T]) String() string {
	if e.name == "-" {
		return fmt.Sprintf("-%s", e.e)
	}
	return fmt.Sprintf("%s(%s)", e.name, e.e)
}

func (e *unaryExpr[S, T]) compile(r *reduction) func() T {
	inner, fn := e.e.compile(r), e.fn
	return func() T { return fn(inner()) }
}

// Neg returns the elementwise negation of e.
func Neg[T dtypes.Number](e Expr[T]) Expr[T] {
	return &unaryExpr[T, T]{name: "-", fn: func(x T) T { return -x }, e: e}
}

// Map applies fn to the values of e.
func Map[T any](fn func(T) T, e Expr[T]) Expr[T] {
	return &unaryExpr[T, T]{name: "map", fn: fn, e: e}
}

// Cast converts the values of e with fn, e.g. from float32 to complex64. It's the only way to
// combine operands of different types in one expression.
func Cast[S, T any](fn func(S) T, e Expr[S]) Expr[T] {
	return &unaryExpr[S, T]{name: "cast", fn: fn, e: e}
}
