// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dtypes

import (
	"math"
	"strconv"
	"testing"

	"github.com/gomlx/ndarray/pkg/core/dtypes/bfloat16"
	"github.com/stretchr/testify/assert"
	"github.com/x448/float16"
)

func TestFromGenericsType(t *testing.T) {
	assert.Equal(t, Float32, FromGenericsType[float32]())
	assert.Equal(t, Float16, FromGenericsType[float16.Float16]())
	assert.Equal(t, BFloat16, FromGenericsType[bfloat16.BFloat16]())
	assert.Equal(t, Complex128, FromGenericsType[complex128]())
	assert.Equal(t, Bool, FromGenericsType[bool]())
	if strconv.IntSize == 64 {
		assert.Equal(t, Int64, FromGenericsType[int]())
	}
	type myFloat float64
	assert.Equal(t, Float64, FromGenericsType[myFloat]())
	assert.Equal(t, InvalidDType, FromGenericsType[string]())
	assert.Equal(t, InvalidDType, FromGenericsType[struct{ X int }]())
}

func TestNames(t *testing.T) {
	assert.Equal(t, "Float16", Float16.String())
	assert.Equal(t, "DType(100)", DType(100).String())
}

func TestCategories(t *testing.T) {
	assert.True(t, Float16.IsFloat())
	assert.False(t, Complex64.IsFloat())
	assert.True(t, Complex64.IsComplex())
	assert.False(t, Int8.IsFloat())
	assert.False(t, Float64.IsComplex())
}

func TestLowestHighest(t *testing.T) {
	assert.True(t, math.IsInf(HighestValue[float64](), 1))
	assert.True(t, math.IsInf(float64(LowestValue[float32]()), -1))
	assert.Equal(t, int8(math.MinInt8), LowestValue[int8]())
	assert.Equal(t, int16(math.MaxInt16), HighestValue[int16]())
	assert.Equal(t, int32(math.MinInt32), LowestValue[int32]())
	assert.Equal(t, int64(math.MaxInt64), HighestValue[int64]())
	assert.Equal(t, uint8(0), LowestValue[uint8]())
	assert.Equal(t, uint8(math.MaxUint8), HighestValue[uint8]())
	assert.Equal(t, uint32(math.MaxUint32), HighestValue[uint32]())
	assert.Equal(t, uint64(math.MaxUint64), HighestValue[uint64]())
	if strconv.IntSize == 64 {
		assert.Equal(t, math.MinInt, LowestValue[int]())
		assert.Equal(t, math.MaxInt, HighestValue[int]())
	}
}
