// Copyright 2025 The agano Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package agano

import "sync"

// Mutex is the contract a lock primitive must satisfy to guard a Synced
// value. Lock blocks until the caller has exclusive ownership; Unlock
// must be called exactly once per Lock, by the same goroutine.
// Implementations are assumed non-reentrant.
//
// *sync.Mutex satisfies Mutex.
type Mutex interface {
	Lock()
	Unlock()
}

// Guard locks m and returns a function that unlocks it. The function is
// idempotent, so it is safe to both defer it and call it early:
//
//	defer agano.Guard(&mu)()
func Guard(m Mutex) (release func()) {
	m.Lock()
	return sync.OnceFunc(m.Unlock)
}
