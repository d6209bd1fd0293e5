// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"iter"

	"github.com/gomlx/exceptions"
)

// Split iterates over consecutive chunks of d with extent n, from left to right. The last
// chunk is truncated to whatever remains, so the chunks tile d exactly: they are disjoint
// and together cover all of its indices.
//
// Chunks keep the stride of d, so they can be used as sub-dimensions or as crop ranges.
// The returned sequence can be iterated more than once.
//
// It panics if n <= 0.
func Split(d Dim, n int) iter.Seq[Dim] {
	if n <= 0 {
		exceptions.Panicf("shapes.Split(%s, %d): chunk size must be > 0", d, n)
	}
	return func(yield func(Dim) bool) {
		end := d.End()
		for begin := d.Min; begin < end; begin += n {
			if !yield(d.withInterval(Range(begin, min(begin+n, end)))) {
				return
			}
		}
	}
}

// SplitFixed is like Split, but every chunk has extent exactly n: if n doesn't divide the
// extent of d, the last chunk is shifted left to end at d.Max(), overlapping the previous one.
//
// Use it when a kernel needs a constant tile size. Chunks still cover all of d.
//
// It panics if n <= 0, or if n is larger than a non-empty d.
func SplitFixed(d Dim, n int) iter.Seq[Dim] {
	if n <= 0 {
		exceptions.Panicf("shapes.SplitFixed(%s, %d): chunk size must be > 0", d, n)
	}
	if d.Extent > 0 && n > d.Extent {
		exceptions.Panicf("shapes.SplitFixed(%s, %d): chunk size larger than the extent %d", d, n, d.Extent)
	}
	return func(yield func(Dim) bool) {
		end := d.End()
		for begin := d.Min; begin < end; begin += n {
			begin = min(begin, end-n)
			if !yield(d.withInterval(Interval{Min: begin, Extent: n})) {
				return
			}
		}
	}
}

// NumChunks returns how many chunks Split(d, n) and SplitFixed(d, n) yield.
func NumChunks(d Dim, n int) int {
	if n <= 0 {
		exceptions.Panicf("shapes.NumChunks(%s, %d): chunk size must be > 0", d, n)
	}
	return (d.Extent + n - 1) / n
}
