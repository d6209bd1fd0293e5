// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package timing measures the wall-clock time of small functions, for benchmarks and
// performance regression tests.
package timing

import (
	"time"

	"k8s.io/klog/v2"
)

// DefaultMinTime is the default total time Measure spends running a function.
var DefaultMinTime = 500 * time.Millisecond

const (
	numWarmupRuns   = 2
	minNumTimedRuns = 5
)

// Measure runs fn a couple of times to warm up caches, and then repeatedly until at least minTime
// has passed (and at least a few times). It returns the duration of the fastest run.
//
// The fastest run is less sensitive to scheduling noise than the average.
// If minTime is 0, DefaultMinTime is used.
func Measure(minTime time.Duration, fn func()) time.Duration {
	if minTime <= 0 {
		minTime = DefaultMinTime
	}
	for range numWarmupRuns {
		fn()
	}
	var best time.Duration
	var numRuns int
	start := time.Now()
	for numRuns < minNumTimedRuns || time.Since(start) < minTime {
		runStart := time.Now()
		fn()
		elapsed := time.Since(runStart)
		if numRuns == 0 || elapsed < best {
			best = elapsed
		}
		numRuns++
	}
	klog.V(1).Infof("timing.Measure: best of %d runs: %s", numRuns, best)
	return best
}

// Throughput returns the number of bytes processed per second.
func Throughput(numBytes int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(numBytes) / d.Seconds()
}
