// Copyright 2025 The agano Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !deadlock

// Package syncutil provides the default lock primitive of agano.
//
// By default Mutex is a plain sync.Mutex with zero overhead. Build with
// -tags deadlock to swap in github.com/sasha-s/go-deadlock, which reports
// lock-order inversions and locks held longer than the deadlock timeout.
package syncutil

import (
	"sync"
	"time"
)

// DeadlockEnabled is true if the deadlock detector is compiled in.
const DeadlockEnabled = false

// A Mutex is a mutual exclusion lock.
//
//nolint:gocritic // embedding sync.Mutex is intentional, this IS the wrapper
type Mutex struct {
	sync.Mutex
}

// SetDeadlockTimeout is a no-op without the deadlock build tag.
func SetDeadlockTimeout(time.Duration) {}
