// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package matrix provides helpers for rank-1 and rank-2 arrays, and conversion to and from
// gonum matrices.
//
// Matrices are laid out row-major: axis 0 indexes rows, axis 1 indexes columns, and the
// elements of a row are contiguous, as in gonum's mat.Dense.
package matrix

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/ndarray/pkg/core/arrays"
	"github.com/gomlx/ndarray/pkg/core/dtypes"
	"github.com/gomlx/ndarray/pkg/core/ein"
	"github.com/gomlx/ndarray/pkg/core/shapes"
	"gonum.org/v1/gonum/mat"
)

// Shape returns the row-major shape of a rows×cols matrix.
func Shape(rows, cols int) shapes.Shape {
	return shapes.Make(shapes.MakeDim(0, rows), shapes.DenseDim(0, cols))
}

// Make allocates a rows×cols matrix. All elements are set to fill[0] if given.
func Make[T any](rows, cols int, fill ...T) *arrays.Array[T] {
	return arrays.MakeArray(Shape(rows, cols), fill...)
}

// MakeVector allocates a vector of n elements. All elements are set to fill[0] if given.
func MakeVector[T any](n int, fill ...T) *arrays.Array[T] {
	return arrays.MakeArray(shapes.MakeDense(n), fill...)
}

func assertRank[T any](caller string, v arrays.View[T], rank int) {
	if v.Rank() != rank {
		panic(shapes.MismatchErrorf("%s: expected rank %d, got shape %s", caller, rank, v.Shape()))
	}
}

// Transpose returns a view of the same memory with the axes swapped.
func Transpose[T any](v arrays.View[T]) arrays.View[T] {
	assertRank("matrix.Transpose", v, 2)
	return v.Reshape(shapes.Make(v.Dim(1), v.Dim(0)))
}

// MatMul returns the matrix product a×b. The columns of a and the rows of b must have the same
// domain.
func MatMul[T dtypes.Number](a, b arrays.View[T]) *arrays.Array[T] {
	assertRank("matrix.MatMul", a, 2)
	assertRank("matrix.MatMul", b, 2)
	product := arrays.MakeArray[T](shapes.Make(
		shapes.MakeDim(a.Dim(0).Min, a.Dim(0).Extent),
		shapes.DenseDim(b.Dim(1).Min, b.Dim(1).Extent)))
	ein.Sum(ein.Mul(ein.Of(a, ein.I, ein.K), ein.Of(b, ein.K, ein.J)), ein.Of(product.View, ein.I, ein.J))
	return product
}

// MatVec returns the product of the matrix a by the vector x.
func MatVec[T dtypes.Number](a, x arrays.View[T]) *arrays.Array[T] {
	assertRank("matrix.MatVec", a, 2)
	assertRank("matrix.MatVec", x, 1)
	return ein.MakeSum(ein.Mul(ein.Of(a, ein.I, ein.J), ein.Of(x, ein.J)), ein.I)
}

// FromDense returns a view sharing the memory of m: changes in one are visible in the other.
func FromDense(m *mat.Dense) arrays.View[float64] {
	raw := m.RawMatrix()
	if raw.Rows == 0 || raw.Cols == 0 {
		return arrays.Wrap(raw.Data, Shape(raw.Rows, raw.Cols))
	}
	shape := shapes.Make(shapes.StridedDim(0, raw.Rows, raw.Stride), shapes.DenseDim(0, raw.Cols))
	return arrays.Wrap(raw.Data, shape)
}

// FromVecDense returns a view sharing the memory of the vector v.
func FromVecDense(v *mat.VecDense) arrays.View[float64] {
	raw := v.RawVector()
	if raw.N == 0 {
		return arrays.WrapDense(raw.Data, 0)
	}
	return arrays.Wrap(raw.Data, shapes.Make(shapes.StridedDim(0, raw.N, raw.Inc)))
}

// ToDense returns a new gonum matrix with a copy of the elements of v. The element at the mins of
// v becomes the element (0, 0).
//
// gonum doesn't support empty matrices: it panics if v has no elements.
func ToDense(v arrays.View[float64]) *mat.Dense {
	assertRank("matrix.ToDense", v, 2)
	if v.Size() == 0 {
		exceptions.Panicf("matrix.ToDense: gonum doesn't support empty matrices, got shape %s", v.Shape())
	}
	rows, cols := v.Dim(0), v.Dim(1)
	m := mat.NewDense(rows.Extent, cols.Extent, nil)
	dst := FromDense(m)
	dst = dst.Reshape(shapes.Make(
		shapes.StridedDim(rows.Min, rows.Extent, dst.Dim(0).Stride),
		shapes.DenseDim(cols.Min, cols.Extent)))
	arrays.Copy(v, dst)
	return m
}
