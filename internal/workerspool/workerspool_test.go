// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package workerspool

import (
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gomlx/ndarray/pkg/core/shapes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_Run(t *testing.T) {
	for _, parallelism := range []int{0, 1, 3, -1} {
		pool := New()
		pool.SetMaxParallelism(parallelism)
		var count, running, maxRunning atomic.Int32
		tasks := make([]func(), 20)
		for ii := range tasks {
			tasks[ii] = func() {
				current := running.Add(1)
				for {
					previous := maxRunning.Load()
					if current <= previous || maxRunning.CompareAndSwap(previous, current) {
						break
					}
				}
				runtime.Gosched()
				count.Add(1)
				running.Add(-1)
			}
		}
		pool.Run(slices.Values(tasks))
		assert.Equal(t, int32(20), count.Load(), "parallelism=%d", parallelism)
		if parallelism > 0 {
			assert.LessOrEqual(t, int(maxRunning.Load()), parallelism, "parallelism=%d", parallelism)
		}
		if parallelism == 0 {
			assert.Equal(t, int32(1), maxRunning.Load())
		}
		assert.Equal(t, 0, pool.NumRunning())
	}
}

func TestPool_StartIfAvailable(t *testing.T) {
	pool := New()
	pool.SetMaxParallelism(1)
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	require.True(t, pool.StartIfAvailable(func() {
		defer wg.Done()
		<-release
	}))
	assert.False(t, pool.StartIfAvailable(func() {}))
	close(release)
	wg.Wait()

	pool.SetMaxParallelism(0)
	assert.False(t, pool.IsEnabled())
	assert.False(t, pool.StartIfAvailable(func() {}))
}

func TestPool_Panic(t *testing.T) {
	pool := New()
	require.PanicsWithValue(t, "boom", func() {
		pool.Run(slices.Values([]func(){func() {}, func() { panic("boom") }}))
	})
}

func TestForEachTile(t *testing.T) {
	pool := New()
	pool.SetMaxParallelism(4)
	d := shapes.MakeDim(3, 101)
	visits := make([]atomic.Int32, d.Extent)
	var numTiles atomic.Int32
	pool.ForEachTile(d, 8, func(tile shapes.Dim) {
		numTiles.Add(1)
		for i := range tile.Indices() {
			visits[i-d.Min].Add(1)
		}
	})
	assert.Equal(t, int32(shapes.NumChunks(d, 8)), numTiles.Load())
	for i := range visits {
		require.Equal(t, int32(1), visits[i].Load(), "index %d", i+d.Min)
	}
}
