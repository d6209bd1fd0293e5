// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package sets

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	// Sets are created empty.
	s := Make[int](10)
	assert.Equal(t, 0, s.Len())

	// Check inserting and recovery.
	s.Insert(7, 3, 7)
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has(3))
	assert.True(t, s.Has(7))
	assert.False(t, s.Has(5))
	assert.Equal(t, []int{7, 3}, s.Elements())
	assert.Equal(t, 1, s.Position(3))
	assert.Equal(t, -1, s.Position(5))

	s2 := MakeWith(5, 7)
	assert.Equal(t, 2, s2.Len())
	assert.True(t, s2.Has(5))
	assert.True(t, s2.Has(7))
	assert.False(t, s2.Has(3))

	s3 := s.Sub(s2)
	assert.Equal(t, []int{3}, s3.Elements())

	assert.False(t, s.Equal(s3))
	assert.True(t, MakeWith(3, 7).Equal(s))
	assert.False(t, s.Equal(s2))
	assert.False(t, s.Equal(MakeWith(-3)))
}

func TestSetOrder(t *testing.T) {
	s := MakeWith(9, 1, 5)
	s.Insert(1, 0)
	assert.Equal(t, []int{9, 1, 5, 0}, slices.Collect(s.All()))

	// Elements returns a copy.
	elements := s.Elements()
	elements[0] = 100
	assert.False(t, s.Has(100))
	assert.Equal(t, 9, s.Elements()[0])
}
