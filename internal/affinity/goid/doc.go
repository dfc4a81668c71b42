// Copyright 2025 The agano Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package goid resolves the identity of the calling goroutine.
//
// Goroutine IDs are the unit of affinity for agano: a Bound value is owned
// by exactly one goroutine ID at a time. Two extraction paths exist:
//
//   - Fast: github.com/petermattis/goid reads the goid field of runtime.g
//     directly (a few nanoseconds).
//   - Stack: parses the header line of runtime.Stack, "goroutine 123
//     [running]:" (about a microsecond, works on every toolchain).
//
// The fast path is only trusted when the running toolchain is a release
// the offsets are known for and a self check against the stack path
// agrees. See [Select].
package goid
