// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ein

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/gomlx/ndarray/pkg/core/shapes"
)

// IndexDomains maps logical indices to the interval of values they iterate over.
type IndexDomains map[Index]shapes.Interval

// String returns a canonical representation, with indices sorted: "i=[0, 4),j=[1, 3)".
// Returns empty string for empty or nil domains.
func (d IndexDomains) String() string {
	if len(d) == 0 {
		return ""
	}
	parts := make([]string, 0, len(d))
	for _, idx := range d.Indices() {
		parts = append(parts, fmt.Sprintf("%s=%s", idx, d[idx]))
	}
	return strings.Join(parts, ",")
}

// Indices returns the indices with a domain, sorted.
func (d IndexDomains) Indices() []Index {
	return slices.Sorted(maps.Keys(d))
}

// Clone returns a copy of the domains.
func (d IndexDomains) Clone() IndexDomains {
	if d == nil {
		return nil
	}
	return maps.Clone(d)
}

// Merge combines domains from other into d.
// Returns a *shapes.MismatchError if an index has different domains in d and other: min and
// extent must both match.
func (d IndexDomains) Merge(other IndexDomains) error {
	for _, idx := range other.Indices() {
		iv := other[idx]
		if existing, ok := d[idx]; ok && existing != iv {
			return shapes.MismatchErrorf("conflicting domains for index %s: %s vs %s", idx, existing, iv)
		}
		d[idx] = iv
	}
	return nil
}

// UnionWith extends the domains of d to also cover the domains of other.
func (d IndexDomains) UnionWith(other IndexDomains) {
	for idx, iv := range other {
		if existing, ok := d[idx]; ok {
			iv = shapes.Union(existing, iv)
		}
		d[idx] = iv
	}
}

// operandDomains returns the domains of the indices bound to the axes of shape.
// An index bound to more than one axis (a diagonal) iterates over the intersection of their
// intervals.
func operandDomains(indices []Index, shape shapes.Shape) IndexDomains {
	domains := make(IndexDomains, len(indices))
	for axis, idx := range indices {
		iv := shape.Dim(axis).Interval()
		if existing, ok := domains[idx]; ok {
			iv = shapes.Intersect(existing, iv)
		}
		domains[idx] = iv
	}
	return domains
}
