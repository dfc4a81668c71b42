// Copyright 2025 The agano Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package goid

import "runtime"

// getGoroutineIDSlow extracts the goroutine ID by parsing runtime.Stack.
//
// Works on every Go version and architecture. Only the first line of the
// trace is needed, so a 64 byte buffer is enough:
//
//	goroutine 123 [running]:
//
// Returns 0 if parsing fails.
func getGoroutineIDSlow() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	return parseGID(buf[:n])
}

// parseGID extracts the goroutine ID from stack trace bytes.
//
// Expected format: "goroutine 123 [running]:...". Returns 0 if the prefix
// is missing. Parses bytes directly, no allocation.
func parseGID(buf []byte) int64 {
	const prefix = "goroutine "

	if len(buf) < len(prefix) || string(buf[:len(prefix)]) != prefix {
		return 0
	}

	var gid int64
	for i := len(prefix); i < len(buf); i++ {
		c := buf[i]
		if c < '0' || c > '9' {
			// Space before "[running]" terminates the ID.
			break
		}
		gid = gid*10 + int64(c-'0')
	}

	return gid
}
