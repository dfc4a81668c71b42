// Copyright 2025 The agano Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package goid

import (
	"encoding/binary"
	"hash/fnv"
	"strconv"
	"sync/atomic"
)

// ID identifies a goroutine. The zero ID means "no goroutine" and is
// used as the unbound marker; the runtime never hands out goid 0 to
// user goroutines.
type ID int64

// None is the zero ID.
const None ID = 0

// IsNone reports whether id is the zero ID.
func (id ID) IsNone() bool {
	return id == None
}

// Hash returns an opaque FNV-1a hash of the ID, used in diagnostics
// where raw runtime IDs should not be relied upon.
func (id ID) Hash() uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(id))

	h := fnv.New64a()
	_, _ = h.Write(buf[:]) // hash.Hash never returns an error
	return h.Sum64()
}

// String returns the decimal goroutine ID, or "none".
func (id ID) String() string {
	if id.IsNone() {
		return "none"
	}
	return strconv.FormatInt(int64(id), 10)
}

var (
	// current is the active extraction function, swapped by Select.
	current atomic.Pointer[func() int64]

	// active holds the Source name backing current.
	active atomic.Value
)

func init() {
	fn := getGoroutineIDSlow
	current.Store(&fn)
	active.Store(string(SourceStack))
}

// Current returns the ID of the calling goroutine.
func Current() ID {
	return ID((*current.Load())())
}
