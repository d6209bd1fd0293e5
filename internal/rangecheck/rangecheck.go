// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

//go:build !norangecheck

// Package rangecheck holds the build-time switch for index range checking.
//
// Range checking is on by default. Build with `-tags norangecheck` to compile the checks
// out of indexing, cropping and copying: out-of-range accesses then become unspecified
// behavior (Go's own slice bounds checks may or may not catch them).
package rangecheck

// Enabled reports whether out-of-range conditions are detected and signaled.
const Enabled = true
