// Copyright 2025 The agano Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stackdepot stores deduplicated stack traces for violation reports.
//
// A Bound value records where it was bound to its owner goroutine. Storing
// a full trace in every Bound would make each wrapper large, so the trace
// is kept once in a global depot and the Bound only keeps its 64-bit hash.
//
// Design:
//   - Fixed-size stack traces (8 frames, 64 bytes per stack)
//   - Hash-based deduplication (FNV-1a)
//   - Global sync.Map storage
//
// Usage:
//
//	hash := stackdepot.Capture(0)
//	// ... later, when reporting
//	fmt.Print(stackdepot.Get(hash).Format())
package stackdepot

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"runtime"
	"strings"
	"sync"
)

// MaxFrames is the maximum number of stack frames kept per trace.
// Binding mistakes are visible in the top few frames.
const MaxFrames = 8

// StackTrace is a captured stack trace with fixed size.
type StackTrace struct {
	PC [MaxFrames]uintptr
}

// depot maps uint64 hash -> *StackTrace. Grows unbounded; the number of
// distinct bind sites in a program is small.
var depot sync.Map

// Capture records the caller's stack and returns its hash.
//
// skip is the number of additional frames to drop above the caller of
// Capture, so wrappers can hide themselves. Identical stacks share one
// entry. Returns 0 if no stack is available.
//
// Safe for concurrent use.
func Capture(skip int) uint64 {
	var pcs [MaxFrames]uintptr
	// Skip runtime.Callers and Capture itself.
	n := runtime.Callers(2+skip, pcs[:])
	if n == 0 {
		return 0
	}

	hash := hashStack(pcs[:n])
	if _, exists := depot.Load(hash); !exists {
		depot.Store(hash, &StackTrace{PC: pcs})
	}

	return hash
}

// Get returns the trace stored under hash, or nil.
func Get(hash uint64) *StackTrace {
	if hash == 0 {
		return nil
	}

	val, ok := depot.Load(hash)
	if !ok {
		return nil
	}
	return val.(*StackTrace)
}

// hashStack computes the FNV-1a hash of program counters.
func hashStack(pcs []uintptr) uint64 {
	h := fnv.New64a()

	var buf [8]byte
	for _, pc := range pcs {
		binary.LittleEndian.PutUint64(buf[:], uint64(pc))
		_, _ = h.Write(buf[:]) // hash.Hash never returns an error
	}

	return h.Sum64()
}

// Frames returns the non-zero program counters of the trace.
func (st *StackTrace) Frames() []uintptr {
	if st == nil {
		return nil
	}

	n := 0
	for n < MaxFrames && st.PC[n] != 0 {
		n++
	}
	return st.PC[:n]
}

// Format formats the trace in the layout of Go's race reports:
//
//	main.worker()
//	    /path/to/file.go:45
//
// Runtime frames are dropped.
func (st *StackTrace) Format() string {
	if st == nil {
		return "  <unknown>\n"
	}

	frames := runtime.CallersFrames(st.Frames())

	var buf strings.Builder
	for {
		frame, more := frames.Next()
		if frame.PC == 0 {
			break
		}

		if !strings.HasPrefix(frame.Function, "runtime.") {
			fmt.Fprintf(&buf, "  %s()\n", frame.Function)
			fmt.Fprintf(&buf, "      %s:%d\n", frame.File, frame.Line)
		}

		if !more {
			break
		}
	}

	if buf.Len() == 0 {
		return "  <runtime internal>\n"
	}
	return buf.String()
}

// Reset clears the depot. Intended for tests.
func Reset() {
	depot.Clear()
}

// Stats returns the number of unique stacks and their approximate memory.
//
// O(N); do not call on a hot path.
func Stats() (uniqueStacks int, totalMemory int64) {
	depot.Range(func(_, _ any) bool {
		uniqueStacks++
		return true
	})

	// 64 bytes of PCs plus roughly 32 bytes of sync.Map entry overhead.
	const bytesPerStack = 64 + 32
	return uniqueStacks, int64(uniqueStacks) * bytesPerStack
}
