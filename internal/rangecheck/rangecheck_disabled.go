// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

//go:build norangecheck

package rangecheck

// Enabled reports whether out-of-range conditions are detected and signaled.
const Enabled = false
