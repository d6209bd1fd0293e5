// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package xsync implements synchronization primitives missing from the standard library.
package xsync

import (
	"sync"

	"github.com/pkg/errors"
)

// DynamicWaitGroup is a WaitGroup-like synchronization primitive that allows the count
// to be changed (new values added) while someone is waiting for it.
//
// Tasks wrapped with Wrap have their panics recovered: the first one is re-raised by Wait, in the
// waiting goroutine.
type DynamicWaitGroup struct {
	mu       sync.Mutex
	cond     *sync.Cond
	count    int64
	panicked any
	hasPanic bool
}

// NewDynamicWaitGroup creates a new DynamicWaitGroup.
func NewDynamicWaitGroup() *DynamicWaitGroup {
	g := &DynamicWaitGroup{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// Add changes the DynamicWaitGroup counter by the given delta.
// If the counter becomes zero, it broadcasts to all waiting goroutines.
// If the counter would go negative, it panics.
func (g *DynamicWaitGroup) Add(delta int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.count += int64(delta)
	if g.count < 0 {
		panic(errors.Errorf("DynamicWaitGroup: negative counter"))
	}
	if g.count == 0 {
		g.cond.Broadcast()
	}
}

// Done decrements the DynamicWaitGroup counter by one.
func (g *DynamicWaitGroup) Done() {
	g.Add(-1)
}

// Wrap increments the counter, and returns a function that runs task and then decrements the
// counter. A panic in task is recovered and re-raised by Wait.
func (g *DynamicWaitGroup) Wrap(task func()) func() {
	g.Add(1)
	return func() {
		defer g.Done()
		defer func() {
			if r := recover(); r != nil {
				g.mu.Lock()
				if !g.hasPanic {
					g.panicked, g.hasPanic = r, true
				}
				g.mu.Unlock()
			}
		}()
		task()
	}
}

// Wait blocks until the DynamicWaitGroup counter is zero.
// If a wrapped task panicked, Wait panics with the same value.
func (g *DynamicWaitGroup) Wait() {
	g.mu.Lock()
	for g.count > 0 {
		g.cond.Wait() // Atomically unlocks mu, waits, and re-locks mu on wakeup.
	}
	panicked, hasPanic := g.panicked, g.hasPanic
	g.mu.Unlock()
	if hasPanic {
		panic(panicked)
	}
}
