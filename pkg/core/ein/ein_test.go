// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ein

import (
	"math"
	"math/cmplx"
	"slices"
	"testing"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/ndarray/pkg/core/arrays"
	"github.com/gomlx/ndarray/pkg/core/dtypes"
	"github.com/gomlx/ndarray/pkg/core/shapes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fillPattern sets each element to a value that depends on its indices and on offset.
func fillPattern(v arrays.View[int], offset int) {
	arrays.ForAllIndices(v.Shape(), func(indices []int) {
		value, scale := offset, 1
		for _, i := range indices {
			value += i * scale
			scale *= 100
		}
		v.Set(value, indices...)
	})
}

func patternArray(offset int, extents ...int) *arrays.Array[int] {
	a := arrays.MakeDenseArray[int](extents...)
	fillPattern(a.View, offset)
	return a
}

func TestMakeSumDiag(t *testing.T) {
	const n = 64
	a := patternArray(0, n, n)
	diag := MakeSum(Of(a.View, I, I), I)
	require.Equal(t, 1, diag.Rank())
	require.Equal(t, n, diag.Size())
	for i := range n {
		require.Equal(t, a.At(i, i), diag.At(i))
	}
}

func TestReduceDiag(t *testing.T) {
	const n = 64
	a := patternArray(0, n, n)
	diag := arrays.MakeDenseArray[int](n)
	// Not a reduction: there are no reduced indices.
	Reduce(Set(Of(diag.View, I), Of(a.View, I, I)))
	for i := range n {
		require.Equal(t, a.At(i, i), diag.At(i))
	}

	// Diagonal of a rectangular matrix: only the common interval of both axes.
	b := patternArray(0, 3, 5)
	domains, err := Domains[int](Of(b.View, I, I))
	require.NoError(t, err)
	assert.Equal(t, IndexDomains{I: shapes.Range(0, 3)}, domains)
	assert.Equal(t, b.At(0, 0)+b.At(1, 1)+b.At(2, 2), MakeSumScalar(Of(b.View, I, I)))
}

func TestMakeSumTrace(t *testing.T) {
	const n = 64
	a := patternArray(0, n, n)
	want := 0
	for i := range n {
		want += a.At(i, i)
	}
	assert.Equal(t, want, MakeSumScalar(Of(a.View, I, I)))
}

func TestMakeSumDot(t *testing.T) {
	const n = 64
	x, y := patternArray(0, n), patternArray(2, n)
	want := 0
	for i := range n {
		want += x.At(i) * y.At(i)
	}
	assert.Equal(t, want, MakeSumScalar(Mul(Of(x.View, I), Of(y.View, I))))
}

func TestReduceDotOffset(t *testing.T) {
	// Vectors whose domain doesn't start at 0.
	const n = 40
	shape := shapes.Make(shapes.MakeDim(3, n))
	x, y, z := arrays.MakeArray[int](shape), arrays.MakeArray[int](shape), arrays.MakeArray[int](shape)
	fillPattern(x.View, 0)
	fillPattern(y.View, 2)
	fillPattern(z.View, 6)

	dot := arrays.MakeArray[int](shapes.Scalar())
	Reduce(AddTo(Of(dot.View), Mul(Add(Of(x.View, I), Of(y.View, I)), Of(z.View, I))))

	want := 0
	for i := range shape.Dim(0).Indices() {
		want += (x.At(i) + y.At(i)) * z.At(i)
	}
	assert.Equal(t, want, dot.At())

	// Accumulates into the current value.
	Reduce(AddTo(Of(dot.View), Mul(Add(Of(x.View, I), Of(y.View, I)), Of(z.View, I))))
	assert.Equal(t, 2*want, dot.At())
}

func sgn(i int) int {
	switch {
	case i == 0:
		return 0
	case i < 0:
		return -1
	default:
		return 1
	}
}

// epsilon is the Levi-Civita tensor of any rank.
func epsilon(indices ...int) int {
	result := 1
	for ii, i := range indices {
		for _, j := range indices[ii+1:] {
			result *= sgn(j - i)
		}
	}
	return result
}

func TestReduceCross(t *testing.T) {
	const count = 10
	x, y := patternArray(0, 3, count), patternArray(3, 3, count)
	cross := arrays.MakeDenseArray[int](3, count)
	Reduce(AddTo(Of(cross.View, I, L),
		Mul(Func(epsilon, I, J, K), Of(x.View, J, L), Of(y.View, K, L))))

	require.Equal(t, 2, cross.Rank())
	for l := range count {
		assert.Equal(t, x.At(1, l)*y.At(2, l)-x.At(2, l)*y.At(1, l), cross.At(0, l))
		assert.Equal(t, x.At(2, l)*y.At(0, l)-x.At(0, l)*y.At(2, l), cross.At(1, l))
		assert.Equal(t, x.At(0, l)*y.At(1, l)-x.At(1, l)*y.At(0, l), cross.At(2, l))
	}
}

func TestOuter(t *testing.T) {
	const n, m = 64, 40
	x, y := patternArray(0, n), patternArray(8, m)

	t.Run("MakeSum", func(t *testing.T) {
		outer := MakeSum(Mul(Of(x.View, I), Of(y.View, J)), I, J)
		require.Equal(t, []int{n, m}, outer.Shape().Extents())
		for i := range n {
			for j := range m {
				require.Equal(t, x.At(i)*y.At(j), outer.At(i, j))
			}
		}
	})

	t.Run("Reduce", func(t *testing.T) {
		outer := arrays.MakeDenseArray[int](n, m)
		Reduce(Set(Of(outer.View, I, J), Mul(Of(x.View, I), Of(y.View, J))))
		for i := range n {
			for j := range m {
				require.Equal(t, x.At(i)*y.At(j), outer.At(i, j))
			}
		}
	})
}

func TestMakeSumMatrixVector(t *testing.T) {
	const m, n = 50, 64
	b, x := patternArray(0, m, n), patternArray(0, n)
	bx := MakeSum(Mul(Of(b.View, I, J), Of(x.View, J)), I)
	require.Equal(t, 1, bx.Rank())
	require.Equal(t, m, bx.Size())
	for i := range m {
		want := 0
		for j := range n {
			want += b.At(i, j) * x.At(j)
		}
		require.Equal(t, want, bx.At(i))
	}
}

func TestSum3D(t *testing.T) {
	tensor := patternArray(0, 4, 5, 8)
	sum := arrays.MakeArray[int](shapes.Scalar())
	Sum(Of(tensor.View, I, J, K), Of(sum.View))

	want := 0
	arrays.ForEachValue(tensor.View, func(v *int) { want += *v })
	assert.Equal(t, want, sum.At())
}

func TestMakeSumPartial(t *testing.T) {
	tensor := patternArray(0, 4, 5, 8)
	sumIK := MakeSum(Of(tensor.View, I, J, K), J)
	require.Equal(t, 1, sumIK.Rank())
	require.Equal(t, 5, sumIK.Size())
	for j := range 5 {
		want := 0
		for v := range tensor.Slice(1, j).Values() {
			want += v
		}
		require.Equal(t, want, sumIK.At(j))
	}
}

func TestReduceMax(t *testing.T) {
	tensor := patternArray(0, 4, 5, 8)
	maxIK := arrays.MakeArray(shapes.Make(shapes.MakeDim(0, 5)), dtypes.LowestValue[int]())
	r := Of(maxIK.View, J)
	Reduce(Set(r, Max(r, Of(tensor.View, I, J, K))))
	for j := range 5 {
		want := dtypes.LowestValue[int]()
		for v := range tensor.Slice(1, j).Values() {
			want = max(want, v)
		}
		require.Equal(t, want, maxIK.At(j))
	}

	// Min with Into, starting from the destination values.
	minIK := arrays.MakeArray(shapes.Make(shapes.MakeDim(0, 5)), dtypes.HighestValue[int]())
	Reduce(Into(Of(minIK.View, J), func(acc, v int) int { return min(acc, v) }, Of(tensor.View, I, J, K)))
	for j := range 5 {
		require.Equal(t, tensor.At(0, j, 0), minIK.At(j))
	}

	t.Run("MakeMax and MakeMin", func(t *testing.T) {
		require.True(t, arrays.Equal(maxIK.View, MakeMax(Of(tensor.View, I, J, K), J).View))
		minJ := MakeMin(Of(tensor.View, I, J, K), J)
		require.True(t, arrays.Equal(minIK.View, minJ.View))
		require.Equal(t, 3+100*4+10000*7, MakeMax(Of(tensor.View, I, J, K)).At())

		empty := arrays.MakeDenseArray[float32](3, 0)
		maxEmpty := MakeMax(Of(empty.View, I, J), I)
		require.Equal(t, 3, maxEmpty.Size())
		for v := range maxEmpty.Values() {
			assert.True(t, math.IsInf(float64(v), -1))
		}
	})

	t.Run("destination bound twice", func(t *testing.T) {
		// Values decrease along i, so the last value of each column is not its maximum.
		decreasing := arrays.MakeDenseArray[int](4, 3)
		arrays.ForAllIndices(decreasing.Shape(), func(indices []int) {
			decreasing.Set(100-10*indices[0]-indices[1], indices...)
		})
		m := arrays.MakeArray(shapes.MakeDense(3), dtypes.LowestValue[int]())
		Reduce(Set(Of(m.View, J), Max(Of(m.View, J), Of(decreasing.View, I, J))))
		require.Equal(t, []int{100, 99, 98}, slices.Collect(m.Values()))

		// A copy with the same shape is a different set of elements: it reads the stored values.
		copied := arrays.MakeCompactCopy(m.View)
		Reduce(Set(Of(m.View, J), Add(Of(copied.View, J), Of(decreasing.View, I, J))))
		require.Equal(t, []int{100 + 70, 99 + 69, 98 + 68}, slices.Collect(m.Values()))
	})
}

func TestReduceDFT(t *testing.T) {
	const n = 30
	x := arrays.MakeDenseArray[float32](n)
	arrays.ForAllIndices(x.Shape(), func(indices []int) { x.Set(float32(indices[0]), indices...) })

	basis := func(jk ...int) complex64 {
		return complex64(cmplx.Exp(complex(0, -2*math.Pi*float64(jk[0]*jk[1])/n)))
	}
	dft := arrays.MakeDenseArray[complex64](n)
	toComplex := func(v float32) complex64 { return complex(v, 0) }
	Reduce(AddTo(Of(dft.View, J), Mul(Func(basis, J, K), Cast(toComplex, Of(x.View, K)))))

	const tolerance = 1e-3
	for j := range n {
		var want complex64
		for k := range n {
			want += basis(j, k) * toComplex(x.At(k))
		}
		require.InDelta(t, 0, cmplx.Abs(complex128(want-dft.At(j))), tolerance, "dft[%d]", j)
	}
}

func TestOperators(t *testing.T) {
	x := arrays.WrapDense([]float64{1, 2, 3}, 3)
	y := arrays.WrapDense([]float64{4, 5, 6}, 3)
	xi, yi := Of(x, I), Of(y, I)
	testCases := []struct {
		name string
		expr Expr[float64]
		want []float64
	}{
		{"Add", Add(xi, yi, Const(1.0)), []float64{6, 8, 10}},
		{"Sub", Sub(xi, yi), []float64{-3, -3, -3}},
		{"Mul", Mul(xi, yi), []float64{4, 10, 18}},
		{"Div", Div(yi, xi), []float64{4, 2.5, 2}},
		{"Max", Max(xi, Const(2.0)), []float64{2, 2, 3}},
		{"Min", Min(yi, Const(5.0), xi), []float64{1, 2, 3}},
		{"Neg", Neg(xi), []float64{-1, -2, -3}},
		{"Apply", Apply(math.Pow, xi, Const(2.0)), []float64{1, 4, 9}},
		{"Map", Map(math.Sqrt, Mul(xi, xi)), []float64{1, 2, 3}},
		{"Func", Func(func(i ...int) float64 { return float64(10 * i[0]) }, I), []float64{0, 10, 20}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := arrays.MakeDenseArray[float64](3)
			Reduce(Set(Of(result.View, I), tc.expr))
			require.Equal(t, tc.want, result.Flat())
		})
	}
}

func TestStrings(t *testing.T) {
	x := arrays.WrapDense([]int{1, 2, 3}, 3)
	a := arrays.WrapDense(make([]int, 9), 3, 3)
	assert.Equal(t, "view[i,j]", Of(a, I, J).String())
	assert.Equal(t, "((view[i] + view[i]) * func[i,i7])",
		Mul(Add(Of(x, I), Of(x, I)), Func(epsilon, I, Index(7))).String())
	assert.Equal(t, "max(-view[j], 3)", Max(Neg(Of(x, J)), Const(3)).String())
	r := Of(x, K)
	assert.Equal(t, "view[k] += cast(view[k])",
		AddTo(r, Cast(func(v int) int { return v }, Of(x, K))).String())
	assert.Equal(t, "view[k] = map(view[k])", Set(r, Map(func(v int) int { return v }, r)).String())
}

func TestMismatch(t *testing.T) {
	x := arrays.MakeDenseArray[int](10)
	y := arrays.MakeDenseArray[int](12)

	// Different extents for the same index.
	mismatch := exceptions.TryCatch[*shapes.MismatchError](func() {
		MakeSumScalar(Mul(Of(x.View, I), Of(y.View, I)))
	})
	require.NotNil(t, mismatch)
	assert.Contains(t, mismatch.Error(), "index i")

	_, err := Domains[int](Mul(Of(x.View, I), Of(y.View, I)))
	require.Error(t, err)
	assert.True(t, shapes.IsMismatch(err))

	// Destination doesn't match the operand.
	require.NotNil(t, exceptions.TryCatch[*shapes.MismatchError](func() {
		Reduce(Set(Of(y.View, I), Of(x.View, I)))
	}))

	// Same extent, but different mins.
	shifted := arrays.MakeArray[int](shapes.Make(shapes.MakeDim(1, 10)))
	require.NotNil(t, exceptions.TryCatch[*shapes.MismatchError](func() {
		Reduce(Set(Of(shifted.View, I), Of(x.View, I)))
	}))

	// Wrong number of indices.
	require.NotNil(t, exceptions.TryCatch[*shapes.MismatchError](func() { Of(x.View, I, J) }))

	// Index only used by a function: its domain is unknown.
	require.Panics(t, func() {
		MakeSumScalar(Mul(Of(x.View, I), Func(func(...int) int { return 1 }, J)))
	})

	// Free index not bound to any data operand.
	require.Panics(t, func() { MakeSum[int](Func(func(...int) int { return 1 }, I), I) })
	require.Panics(t, func() { Of(x.View, Index(-1)) })
}

func TestEmpty(t *testing.T) {
	// Reducing over an empty domain leaves the destination untouched.
	x := arrays.MakeDenseArray[int](0)
	sum := arrays.MakeArray(shapes.Scalar(), 7)
	Sum(Of(x.View, I), Of(sum.View))
	assert.Equal(t, 7, sum.At())

	// Empty destination.
	assert.Equal(t, 0, MakeSum(Of(x.View, I), I).Size())
}

func TestDomains(t *testing.T) {
	a := arrays.MakeArray[float32](shapes.Make(shapes.MakeDim(2, 4), shapes.MakeDim(-1, 3)))
	x := arrays.MakeArray[float32](shapes.Make(shapes.MakeDim(-1, 3)))
	domains, err := Domains(Add(Of(a.View, I, J), Of(x.View, J)))
	require.NoError(t, err)
	assert.Equal(t, "i=[2, 6),j=[-1, 2)", domains.String())
	assert.Equal(t, []Index{I, J}, domains.Indices())

	clone := domains.Clone()
	require.NoError(t, clone.Merge(IndexDomains{K: shapes.Range(0, 1), J: shapes.Range(-1, 2)}))
	assert.Len(t, clone, 3)
	assert.Len(t, domains, 2)
	err = clone.Merge(IndexDomains{I: shapes.Range(0, 4)})
	require.Error(t, err)
	assert.True(t, shapes.IsMismatch(err))

	union := IndexDomains{I: shapes.Range(0, 4)}
	union.UnionWith(IndexDomains{I: shapes.Range(2, 10), J: shapes.Range(0, 1)})
	assert.Equal(t, IndexDomains{I: shapes.Range(0, 10), J: shapes.Range(0, 1)}, union)
	assert.Equal(t, "", IndexDomains(nil).String())
	assert.Nil(t, IndexDomains(nil).Clone())
}

func TestLayouts(t *testing.T) {
	// Transposed destination and strided operands give the same results.
	const n, m = 7, 5
	a := patternArray(1, n, m)
	transposed := arrays.MakeArray[int](shapes.Make(shapes.MakeDim(0, m), shapes.DenseDim(0, n)))
	Reduce(Set(Of(transposed.View, J, I), Of(a.View, I, J)))
	for i := range n {
		for j := range m {
			require.Equal(t, a.At(i, j), transposed.At(j, i))
		}
	}

	// Sum of the rows of a cropped window.
	window := a.Crop(shapes.Range(1, 6), shapes.Range(2, 4))
	rows := MakeSum(Of(window, I, J), I)
	assert.Equal(t, 1, rows.Dim(0).Min)
	for i := range window.Dim(0).Indices() {
		assert.Equal(t, a.At(i, 2)+a.At(i, 3), rows.At(i))
	}
}
