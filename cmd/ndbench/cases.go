// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"slices"

	"github.com/gomlx/ndarray/internal/workerspool"
	"github.com/gomlx/ndarray/pkg/core/arrays"
	"github.com/gomlx/ndarray/pkg/core/matrix"
	"github.com/gomlx/ndarray/pkg/core/shapes"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// benchCase compares an operation of the library with a baseline doing the same work.
type benchCase struct {
	name        string
	description string

	// maxRatio is the limit for the time of the library over the time of the baseline.
	// If 0, the ratio is only informative.
	maxRatio float64

	// setup allocates the inputs for extent n per axis.
	setup func(n int) benchRun
}

// benchRun is a prepared benchmark case.
type benchRun struct {
	numBytes      int
	lib, baseline func()

	// verify checks the results of lib and baseline, after they have been run.
	verify func() error
}

const bytesPerInt = 8

// benchCases are all the cases, in the order they are run.
var benchCases = []benchCase{
	{
		name:        "dense_copy",
		description: "copy of a dense n³ array vs. a flat copy",
		maxRatio:    1.2,
		setup: func(n int) benchRun {
			src := patternArray(shapes.MakeDense(n, n, n))
			dst, flat := arrays.MakeArray[int](src.Shape()), arrays.MakeArray[int](src.Shape())
			return benchRun{
				numBytes: src.Size() * bytesPerInt,
				lib:      func() { arrays.Copy(src.View, dst.View) },
				baseline: func() { copy(flat.Flat(), src.Flat()) },
				verify:   func() error { return verifyEqual(src.View, dst.View, flat.View) },
			}
		},
	},
	{
		name:        "cropped_copy",
		description: "copy of the interior of a dense n³ array vs. one flat copy per row",
		maxRatio:    1.2,
		setup: func(n int) benchRun {
			src := patternArray(shapes.MakeDense(n, n, n))
			interior := shapes.Make(shapes.DenseDim(1, n-2), shapes.MakeDim(1, n-2), shapes.MakeDim(1, n-2))
			dst, rows := arrays.MakeArray[int](interior), arrays.MakeArray[int](interior)
			x := interior.Dim(0)
			return benchRun{
				numBytes: interior.Size() * bytesPerInt,
				lib:      func() { arrays.Copy(src.View, dst.View) },
				baseline: func() {
					dstData, srcData := rows.Flat(), src.Flat()
					for z := range interior.Dim(2).Indices() {
						for y := range interior.Dim(1).Indices() {
							dstStart := rows.Base() + interior.Offset(x.Min, y, z)
							srcStart := src.Base() + src.Shape().Offset(x.Min, y, z)
							copy(dstData[dstStart:dstStart+x.Extent], srcData[srcStart:srcStart+x.Extent])
						}
					}
				},
				verify: func() error {
					return verifyEqual(src.Crop(interior.Dim(0), interior.Dim(1), interior.Dim(2)), dst.View, rows.View)
				},
			}
		},
	},
	{
		name:        "strided_copy",
		description: "copy of an n³ array with the largest stride first vs. loops in declaration order",
		maxRatio:    0.5,
		setup: func(n int) benchRun {
			src := patternArray(badlyStridedShape(n))
			dst, naive := arrays.MakeArray[int](src.Shape()), arrays.MakeArray[int](src.Shape())
			return benchRun{
				numBytes: src.Size() * bytesPerInt,
				lib:      func() { arrays.Copy(src.View, dst.View) },
				baseline: func() {
					for z := range n {
						for y := range n {
							for x := range n {
								naive.Set(src.At(x, y, z), x, y, z)
							}
						}
					}
				},
				verify: func() error { return verifyEqual(src.View, dst.View, naive.View) },
			}
		},
	},
	{
		name:        "for_each_value",
		description: "visiting all values of an n³ array with the largest stride first vs. loops in declaration order",
		maxRatio:    0.5,
		setup: func(n int) benchRun {
			// setOdd is idempotent, so the result doesn't depend on how many times each side runs.
			setOdd := func(v *int) { *v |= 1 }
			a, naive := patternArray(badlyStridedShape(n)), patternArray(badlyStridedShape(n))
			return benchRun{
				numBytes: a.Size() * bytesPerInt,
				lib:      func() { arrays.ForEachValue(a.View, setOdd) },
				baseline: func() {
					for z := range n {
						for y := range n {
							for x := range n {
								setOdd(naive.Ptr(x, y, z))
							}
						}
					}
				},
				verify: func() error {
					for v := range a.Values() {
						if v%2 == 0 {
							return errors.Errorf("for_each_value didn't visit an element with value %d", v)
						}
					}
					return verifyEqual(naive.View, a.View)
				},
			}
		},
	},
	{
		name:        "tiled_fill",
		description: "fill of a dense n³ array split in tiles processed concurrently vs. a single fill",
		setup: func(n int) benchRun {
			tiled, single := arrays.MakeDenseArray[int](n, n, n), arrays.MakeDenseArray[int](n, n, n)
			pool := workerspool.New()
			tileSize := max(1, n/max(1, pool.MaxParallelism()))
			const value = 7
			return benchRun{
				numBytes: tiled.Size() * bytesPerInt,
				lib: func() {
					pool.ForEachTile(tiled.Dim(2), tileSize, func(tile shapes.Dim) {
						arrays.Fill(tiled.Crop(shapes.All, shapes.All, tile), value)
					})
				},
				baseline: func() { arrays.Fill(single.View, value) },
				verify: func() error {
					if !arrays.Equal(tiled.View, single.View) {
						return errors.New("tiled fill and single fill differ")
					}
					return nil
				},
			}
		},
	},
	{
		name:        "ein_matmul",
		description: "n×n matrix product with an einsum reduction vs. gonum's mat.Dense.Mul",
		setup: func(n int) benchRun {
			a, b := mat.NewDense(n, n, nil), mat.NewDense(n, n, nil)
			arrays.Generate(matrix.FromDense(a), counter(0.5))
			arrays.Generate(matrix.FromDense(b), counter(-0.25))
			var product *arrays.Array[float64]
			var want mat.Dense
			return benchRun{
				numBytes: 3 * n * n * 8,
				lib:      func() { product = matrix.MatMul(matrix.FromDense(a), matrix.FromDense(b)) },
				baseline: func() { want.Mul(a, b) },
				verify: func() error {
					if !mat.EqualApprox(&want, matrix.ToDense(product.View), 1e-6) {
						return errors.New("einsum matrix product differs from gonum's")
					}
					return nil
				},
			}
		},
	},
}

// caseNames returns the names of all benchmark cases.
func caseNames() []string {
	names := make([]string, len(benchCases))
	for ii, c := range benchCases {
		names[ii] = c.name
	}
	return names
}

// findCase returns the benchmark case with the given name.
func findCase(name string) (benchCase, error) {
	idx := slices.IndexFunc(benchCases, func(c benchCase) bool { return c.name == name })
	if idx < 0 {
		return benchCase{}, errors.Errorf("unknown benchmark case %q, valid cases are %q", name, caseNames())
	}
	return benchCases[idx], nil
}

// badlyStridedShape has the first axis with the largest stride, so loops in declaration order
// visit memory with the largest jumps innermost.
func badlyStridedShape(n int) shapes.Shape {
	return shapes.Make(shapes.StridedDim(0, n, n*n), shapes.StridedDim(0, n, n), shapes.StridedDim(0, n, 1))
}

func counter[T int | float64](step T) func() T {
	var next T
	return func() T {
		next += step
		return next
	}
}

func patternArray(shape shapes.Shape) *arrays.Array[int] {
	a := arrays.MakeArray[int](shape)
	arrays.Generate(a.View, counter(1))
	return a
}

// verifyEqual checks that all results are equal to want.
func verifyEqual(want arrays.View[int], results ...arrays.View[int]) error {
	for ii, result := range results {
		if !arrays.Equal(want, result) {
			return errors.Errorf("result #%d differs from the source", ii)
		}
	}
	return nil
}
