// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package arrays

import (
	"testing"

	"github.com/gomlx/ndarray/pkg/core/shapes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingAllocator keeps track of the buffers allocated and freed.
type countingAllocator[T any] struct {
	allocated, freed int
	lastFreed        []T
}

func (c *countingAllocator[T]) Allocate(n int) []T {
	c.allocated++
	return make([]T, n)
}

func (c *countingAllocator[T]) Free(buf []T) {
	c.freed++
	c.lastFreed = buf
}

func TestArray(t *testing.T) {
	allocator := &countingAllocator[*int]{}
	value := 7
	a := MakeArrayWith[*int](allocator, shapes.MakeDense(2, 3), &value)
	assert.Equal(t, 1, allocator.allocated)
	assert.Equal(t, 6, a.Size())
	for v := range a.Values() {
		assert.Equal(t, 7, *v)
	}
	assert.Equal(t, a.View, a.AsView())

	a.Finalize()
	assert.True(t, a.IsFinalized())
	assert.Equal(t, 1, allocator.freed)
	for _, v := range allocator.lastFreed {
		assert.Nil(t, v, "finalized elements should be reset")
	}
	require.Panics(t, func() { _ = a.AsView() })

	// Finalize is idempotent.
	a.Finalize()
	assert.Equal(t, 1, allocator.freed)

	// Reallocate brings it back.
	a.Reallocate(shapes.MakeDense(4))
	assert.False(t, a.IsFinalized())
	assert.Equal(t, 2, allocator.allocated)
	assert.Equal(t, 1, allocator.freed)
	assert.Nil(t, a.At(3))

	// Reallocating a live array frees the previous buffer.
	a.Reallocate(shapes.MakeDense(2), &value)
	assert.Equal(t, 2, allocator.freed)
	assert.Equal(t, 7, *a.At(1))

	require.Panics(t, func() { _ = MakeArray[int](shapes.MakeDense(2), 1, 2) })
}

func TestMakeArray(t *testing.T) {
	a := MakeArray[float32](shapes.Make(shapes.MakeDim(-2, 4), shapes.StridedDim(3, 2, -8)), 1.5)
	assert.Equal(t, 4+8, len(a.Flat()))
	for v := range a.Values() {
		assert.Equal(t, float32(1.5), v)
	}
	a.Set(3, 1, 4)
	assert.Equal(t, float32(3), a.At(1, 4))
}

func TestPoolAllocator(t *testing.T) {
	pool := NewPoolAllocator[int]()
	buf := pool.Allocate(10)
	require.Len(t, buf, 10)
	pool.Free(buf)
	buf = pool.Allocate(10)
	require.Len(t, buf, 10)
	for _, v := range buf {
		require.Equal(t, 0, v)
	}
	require.Empty(t, pool.Allocate(0))

	UseBufferPools = true
	defer func() { UseBufferPools = false }()
	_, isPool := DefaultAllocator[int]().(*PoolAllocator[int])
	assert.True(t, isPool)
	assert.Same(t, DefaultAllocator[int](), DefaultAllocator[int]())

	a := MakeDenseArray[int](3, 3)
	Fill(a.View, 5)
	a.Finalize()
	b := MakeDenseArray[int](3, 3)
	for v := range b.Values() {
		require.Equal(t, 0, v, "pooled buffers must be zeroed")
	}
}
