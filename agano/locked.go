// Copyright 2025 The agano Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package agano

import (
	"fmt"
	"reflect"

	"github.com/kolkov/agano/internal/affinity/goid"
	"github.com/kolkov/agano/internal/affinity/violation"
)

// Locked is a scoped view of a Synced value. It holds the Synced lock
// from creation until Unlock.
//
// A view is obtained only from [Synced.Lock] or [Synced.Access]. It must
// not be copied, and it belongs to the goroutine that acquired it: using
// it from any other goroutine raises a [*Violation]. Using it after
// Unlock panics.
type Locked[T any] struct {
	_      noCopy
	ref    *T
	mu     Mutex
	holder goid.ID
}

// Get returns the protected value. The pointer is valid until Unlock.
func (l *Locked[T]) Get() *T {
	l.check("Get")
	return l.ref
}

// Load returns a copy of the protected value.
func (l *Locked[T]) Load() T {
	l.check("Load")
	return *l.ref
}

// Store replaces the protected value.
func (l *Locked[T]) Store(v T) {
	l.check("Store")
	*l.ref = v
}

// Update calls fn with the protected value.
func (l *Locked[T]) Update(fn func(*T)) {
	l.check("Update")
	fn(l.ref)
}

// Unlock releases the lock. The view is unusable afterwards.
func (l *Locked[T]) Unlock() {
	l.check("Unlock")
	l.ref = nil
	l.mu.Unlock()
}

// live reports whether Unlock has not been called yet.
func (l *Locked[T]) live() bool {
	return l.ref != nil
}

func (l *Locked[T]) check(op string) {
	if l.ref == nil {
		panic(fmt.Sprintf("agano: %s on released Locked[%v] view", op, reflect.TypeFor[T]()))
	}
	if cur := goid.Current(); cur != l.holder {
		violation.Raise(violation.New(l.holder, cur, fmt.Sprintf("agano.Locked[%v]", reflect.TypeFor[T]()), 0, 1))
	}
}
