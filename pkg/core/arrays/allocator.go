// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package arrays

import (
	"reflect"
	"sync"
)

// Allocator provides and takes back the flat buffers owned by Arrays.
//
// Allocate must return a slice of exactly n zero-valued elements. Free is called at most once
// per allocated buffer, after its elements have been reset to the zero value.
type Allocator[T any] interface {
	Allocate(n int) []T
	Free(buf []T)
}

// HeapAllocator allocates buffers with make and leaves freed buffers to the garbage collector.
type HeapAllocator[T any] struct{}

// Allocate implements Allocator.
func (HeapAllocator[T]) Allocate(n int) []T { return make([]T, n) }

// Free implements Allocator.
func (HeapAllocator[T]) Free([]T) {}

// PoolAllocator reuses freed buffers, with one sync.Pool per buffer length.
//
// It's useful when arrays of the same sizes are created and finalized repeatedly, like the
// temporaries of an iterative computation.
type PoolAllocator[T any] struct {
	pools sync.Map // int (length) -> *sync.Pool
}

// NewPoolAllocator returns a PoolAllocator for T.
func NewPoolAllocator[T any]() *PoolAllocator[T] {
	return &PoolAllocator[T]{}
}

// getPool for the given length.
func (a *PoolAllocator[T]) getPool(length int) *sync.Pool {
	pool, ok := a.pools.Load(length)
	if !ok {
		pool, _ = a.pools.LoadOrStore(length, &sync.Pool{
			New: func() any {
				buf := make([]T, length)
				return &buf
			},
		})
	}
	return pool.(*sync.Pool)
}

// Allocate implements Allocator.
func (a *PoolAllocator[T]) Allocate(n int) []T {
	if n == 0 {
		return []T{}
	}
	return *(a.getPool(n).Get().(*[]T))
}

// Free implements Allocator. buf must have been returned by Allocate and have all elements
// zeroed.
func (a *PoolAllocator[T]) Free(buf []T) {
	if len(buf) == 0 {
		return
	}
	a.getPool(len(buf)).Put(&buf)
}

// UseBufferPools makes DefaultAllocator return a shared PoolAllocator per element type, instead
// of a HeapAllocator. It should be set before any array is created.
var UseBufferPools = false

// sharedPools holds the PoolAllocator of each element type: reflect.Type -> *PoolAllocator[T].
var sharedPools sync.Map

// DefaultAllocator returns the Allocator used by MakeArray when none is given: see UseBufferPools.
func DefaultAllocator[T any]() Allocator[T] {
	if !UseBufferPools {
		return HeapAllocator[T]{}
	}
	key := reflect.TypeFor[T]()
	allocator, ok := sharedPools.Load(key)
	if !ok {
		allocator, _ = sharedPools.LoadOrStore(key, NewPoolAllocator[T]())
	}
	return allocator.(*PoolAllocator[T])
}
