// Copyright 2025 The agano Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package agano

import (
	"sync/atomic"

	"github.com/kolkov/agano/internal/affinity/goid"
	"github.com/kolkov/agano/internal/syncutil"
)

// Synced owns a value of type T and the lock guarding it. The value is
// reachable only through a [Locked] view, so at most one goroutine can
// observe it at a time.
//
// The zero value holds the zero T and is ready to use. A Synced must not
// be copied after first use; share it by pointer. T must be transferable
// (see [IsTransferable]).
type Synced[T any] struct {
	_       noCopy
	mu      syncutil.Mutex
	custom  Mutex
	checked atomic.Bool
	owned   T
}

// NewSynced returns a Synced owning v, guarded by the default mutex.
func NewSynced[T any](v T) *Synced[T] {
	s := &Synced[T]{owned: v}
	s.verify()
	return s
}

// NewSyncedWith returns a Synced owning v, guarded by m.
func NewSyncedWith[T any](m Mutex, v T) *Synced[T] {
	if m == nil {
		panic("agano: NewSyncedWith called with a nil Mutex")
	}
	s := &Synced[T]{custom: m, owned: v}
	s.verify()
	return s
}

// verify asserts the capability of T once per instance.
func (s *Synced[T]) verify() {
	if s.checked.Load() {
		return
	}
	requireTransferable[T]("Synced")
	s.checked.Store(true)
}

func (s *Synced[T]) locker() Mutex {
	if s.custom != nil {
		return s.custom
	}
	return &s.mu
}

// Lock blocks until the lock is held and returns a view of the value.
// There is no timeout. The caller must release the view:
//
//	v := s.Lock()
//	defer v.Unlock()
func (s *Synced[T]) Lock() *Locked[T] {
	s.verify()

	m := s.locker()
	m.Lock()
	return &Locked[T]{ref: &s.owned, mu: m, holder: goid.Current()}
}

// Access runs fn with exclusive access to the value. The lock is released
// when fn returns or panics.
func (s *Synced[T]) Access(fn func(*Locked[T])) {
	l := s.Lock()
	defer func() {
		if l.live() {
			l.Unlock()
		}
	}()
	fn(l)
}

// Transferable marks *Synced as transferable between goroutines.
func (*Synced[T]) Transferable() {}

// Shareable marks *Synced as safe to share between goroutines.
func (*Synced[T]) Shareable() {}
