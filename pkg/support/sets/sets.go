// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package sets implements a set type that remembers the order in which elements were first inserted.
//
// Iteration follows insertion order, which makes the sets usable where a deterministic order
// matters, e.g.: planning the loops of a reduction.
package sets

import (
	"iter"
	"slices"
)

// Set implements an insertion-ordered Set for the key type T.
//
// The zero value is not usable: create it with Make or MakeWith.
type Set[T comparable] struct {
	positions map[T]int
	elements  []T
}

// Make returns an empty Set of the given type. Size is optional, and if given
// will reserve the expected size.
func Make[T comparable](size ...int) *Set[T] {
	if len(size) == 0 {
		return &Set[T]{positions: make(map[T]int)}
	}
	return &Set[T]{positions: make(map[T]int, size[0]), elements: make([]T, 0, size[0])}
}

// MakeWith creates a Set[T] with the given elements inserted.
func MakeWith[T comparable](elements ...T) *Set[T] {
	s := Make[T](len(elements))
	s.Insert(elements...)
	return s
}

// Len returns the number of elements in the set.
func (s *Set[T]) Len() int { return len(s.elements) }

// Has returns true if Set s has the given key.
func (s *Set[T]) Has(key T) bool {
	_, found := s.positions[key]
	return found
}

// Position returns the insertion position of key, or -1 if it is not in the set.
func (s *Set[T]) Position(key T) int {
	pos, found := s.positions[key]
	if !found {
		return -1
	}
	return pos
}

// Insert keys into set. Keys already present keep their original position.
func (s *Set[T]) Insert(keys ...T) {
	for _, key := range keys {
		if _, found := s.positions[key]; found {
			continue
		}
		s.positions[key] = len(s.elements)
		s.elements = append(s.elements, key)
	}
}

// All iterates over the elements in insertion order.
func (s *Set[T]) All() iter.Seq[T] {
	return slices.Values(s.elements)
}

// Elements returns a copy of the elements in insertion order.
func (s *Set[T]) Elements() []T {
	return slices.Clone(s.elements)
}

// Sub returns `s - s2`, that is, all elements in `s` that are not in `s2`, in the order of s.
func (s *Set[T]) Sub(s2 *Set[T]) *Set[T] {
	sub := Make[T]()
	for _, k := range s.elements {
		if !s2.Has(k) {
			sub.Insert(k)
		}
	}
	return sub
}

// Equal returns whether s and s2 have the exact same elements, regardless of order.
func (s *Set[T]) Equal(s2 *Set[T]) bool {
	if s.Len() != s2.Len() {
		return false
	}
	for _, k := range s.elements {
		if !s2.Has(k) {
			return false
		}
	}
	return true
}
