// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package matrix

import (
	"testing"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/ndarray/pkg/core/arrays"
	"github.com/gomlx/ndarray/pkg/core/shapes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestShape(t *testing.T) {
	s := Shape(3, 4)
	assert.Equal(t, []int{4, 1}, s.Strides())
	assert.Equal(t, 1, s.DenseAxis())
	m := Make(3, 4, 1.5)
	assert.Equal(t, 1.5, m.At(2, 3))
	v := MakeVector[int](5)
	assert.Equal(t, []int{5}, v.Shape().Extents())
}

func TestFromDense(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	v := FromDense(m)
	require.Equal(t, []int{2, 3}, v.Shape().Extents())
	assert.Equal(t, 6.0, v.At(1, 2))

	// Memory is shared.
	v.Set(-1, 0, 1)
	assert.Equal(t, -1.0, m.At(0, 1))
	m.Set(1, 0, 10)
	assert.Equal(t, 10.0, v.At(1, 0))

	// Sub-matrices keep the stride of the parent.
	sub := m.Slice(0, 2, 1, 3).(*mat.Dense)
	subView := FromDense(sub)
	assert.Equal(t, []int{3, 1}, subView.Shape().Strides())
	assert.Equal(t, 6.0, subView.At(1, 1))

	vec := mat.NewVecDense(4, []float64{1, 2, 3, 4})
	vecView := FromVecDense(vec)
	assert.Equal(t, 3.0, vecView.At(2))
	col := FromVecDense(m.ColView(2).(*mat.VecDense))
	assert.Equal(t, []int{3}, col.Shape().Strides())
	assert.Equal(t, 6.0, col.At(1))
}

func TestToDense(t *testing.T) {
	a := arrays.MakeArray[float64](shapes.Make(shapes.MakeDim(2, 3), shapes.MakeDim(5, 2)))
	arrays.ForAllIndices(a.Shape(), func(indices []int) {
		a.Set(float64(10*indices[0]+indices[1]), indices...)
	})
	m := ToDense(a.View)
	rows, cols := m.Dims()
	require.Equal(t, 3, rows)
	require.Equal(t, 2, cols)
	assert.Equal(t, 25.0, m.At(0, 0))
	assert.Equal(t, 46.0, m.At(2, 1))

	// It's a copy.
	m.Set(0, 0, 0)
	assert.Equal(t, 25.0, a.At(2, 5))

	require.Panics(t, func() { ToDense(arrays.WrapDense([]float64{}, 0, 3)) })
	require.NotNil(t, exceptions.TryCatch[*shapes.MismatchError](func() { ToDense(arrays.WrapDense([]float64{1}, 1)) }))
}

func TestTranspose(t *testing.T) {
	m := Make[int](2, 3)
	arrays.ForAllIndices(m.Shape(), func(indices []int) { m.Set(indices[0]*3+indices[1], indices...) })
	tr := Transpose(m.View)
	require.Equal(t, []int{3, 2}, tr.Shape().Extents())
	for i := range 2 {
		for j := range 3 {
			assert.Equal(t, m.At(i, j), tr.At(j, i))
		}
	}
}

func TestMatMul(t *testing.T) {
	const m, k, n = 7, 5, 4
	a := mat.NewDense(m, k, nil)
	b := mat.NewDense(k, n, nil)
	for i := range m {
		for j := range k {
			a.Set(i, j, float64(i-2*j)/3)
		}
	}
	for i := range k {
		for j := range n {
			b.Set(i, j, float64(i*j+1)/7)
		}
	}
	var want mat.Dense
	want.Mul(a, b)

	product := MatMul(FromDense(a), FromDense(b))
	require.Equal(t, []int{m, n}, product.Shape().Extents())
	assert.True(t, mat.EqualApprox(&want, ToDense(product.View), 1e-12))

	// Transposes are views: (a×b)ᵀ = bᵀ×aᵀ.
	productT := MatMul(Transpose(FromDense(b)), Transpose(FromDense(a)))
	var wantT mat.Dense
	wantT.CloneFrom(want.T())
	assert.True(t, mat.EqualApprox(&wantT, ToDense(productT.View), 1e-12))

	// Mismatched inner dimensions.
	require.NotNil(t, exceptions.TryCatch[*shapes.MismatchError](func() {
		MatMul(FromDense(a), FromDense(a))
	}))
}

func TestMatVec(t *testing.T) {
	a := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	x := mat.NewVecDense(2, []float64{1, -1})
	var want mat.VecDense
	want.MulVec(a, x)

	got := MatVec(FromDense(a), FromVecDense(x))
	require.Equal(t, 3, got.Size())
	for i := range 3 {
		assert.InDelta(t, want.AtVec(i), got.At(i), 1e-12)
	}
}
