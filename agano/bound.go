// Copyright 2025 The agano Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package agano

import (
	"reflect"
	"sync/atomic"

	"github.com/kolkov/agano/internal/affinity/goid"
	"github.com/kolkov/agano/internal/affinity/stackdepot"
	"github.com/kolkov/agano/internal/affinity/violation"
	"github.com/kolkov/agano/internal/logging"
)

// Cloner is implemented by values that need a deep copy when a Bound is
// copied. Values that do not implement it are copied by assignment.
type Cloner[T any] interface {
	Clone() T
}

// Bound owns a value of type T that only one goroutine may touch.
//
// A Bound is either unbound or bound to an owner goroutine. An unbound
// Bound is claimed by the first goroutine that accesses it. Once bound,
// access from any other goroutine raises a [*Violation], which terminates
// the program.
//
// Ownership changes hands only explicitly, through [Bound.Move]. A Bound
// must not be copied by assignment; use [Bound.Copy].
type Bound[T any] struct {
	_     noCopy
	owner atomic.Int64  // goid.ID, 0 while unbound
	site  atomic.Uint64 // stackdepot hash of the bind site
	value T
}

// trackBindSites enables bind site capture.
var trackBindSites atomic.Bool

// NewBound returns a Bound owning v, bound to the calling goroutine.
func NewBound[T any](v T) *Bound[T] {
	requireMovable[T]("Bound")

	b := &Bound[T]{value: v}
	cur := goid.Current()
	b.owner.Store(int64(cur))
	b.recordBind(cur, "bind", 1)
	return b
}

// NewDeferred returns an unbound Bound owning v. The first goroutine to
// access it becomes its owner.
func NewDeferred[T any](v T) *Bound[T] {
	requireMovable[T]("Bound")
	return &Bound[T]{value: v}
}

// Get validates ownership and returns the value. The pointer must not be
// handed to other goroutines.
func (b *Bound[T]) Get() *T {
	b.validate()
	return &b.value
}

// Load validates ownership and returns a copy of the value.
func (b *Bound[T]) Load() T {
	b.validate()
	return b.value
}

// Store validates ownership and replaces the value.
func (b *Bound[T]) Store(v T) {
	b.validate()
	b.value = v
}

// IsUnbound reports whether no goroutine owns b.
func (b *Bound[T]) IsUnbound() bool {
	return b.owner.Load() == 0
}

// Owner returns the owning goroutine, or the zero ID while unbound.
func (b *Bound[T]) Owner() GoroutineID {
	return goid.ID(b.owner.Load())
}

// Copy returns a new Bound holding a copy of the value.
//
// The copy of a bound instance is bound to the goroutine calling Copy,
// which need not be the owner of b. The copy of an unbound instance is
// unbound. Copy does not validate ownership of b.
func (b *Bound[T]) Copy() *Bound[T] {
	c := &Bound[T]{value: cloneValue(b.value)}
	if !b.IsUnbound() {
		cur := goid.Current()
		c.owner.Store(int64(cur))
		c.recordBind(cur, "copy", 1)
	}
	return c
}

// CopyFrom replaces the value of b with a copy of src's value, with the
// binding rules of [Bound.Copy]. Copying b onto itself does nothing.
func (b *Bound[T]) CopyFrom(src *Bound[T]) {
	if src == b {
		return
	}

	b.value = cloneValue(src.value)
	if src.IsUnbound() {
		b.owner.Store(0)
		b.site.Store(0)
		return
	}

	cur := goid.Current()
	b.owner.Store(int64(cur))
	b.recordBind(cur, "copy", 1)
}

// Move returns a new Bound that takes over b's value and binding state.
// b is left unbound and holds the zero value; it may be claimed again by
// a later access. Move may be called from any goroutine.
func (b *Bound[T]) Move() *Bound[T] {
	m := &Bound[T]{}
	m.MoveFrom(b)
	return m
}

// MoveFrom takes over src's value and binding state, leaving src unbound
// with the zero value. Moving b onto itself does nothing.
func (b *Bound[T]) MoveFrom(src *Bound[T]) {
	if src == b {
		return
	}

	var zero T
	b.value, src.value = src.value, zero
	b.owner.Store(src.owner.Swap(0))
	b.site.Store(src.site.Swap(0))

	if l := logging.Default(); l.DebugEnabled() {
		l.Debug("bound value moved", "type", typeName[T](), "owner", b.owner.Load(), "by", int64(goid.Current()))
	}
}

// validate claims b for the calling goroutine if it is unbound and raises
// a violation if another goroutine owns it.
//
// The claim is a compare-and-swap: of two goroutines racing to claim an
// unbound instance, one wins and the other raises a violation.
func (b *Bound[T]) validate() {
	cur := goid.Current()
	for {
		owner := goid.ID(b.owner.Load())
		switch {
		case owner == cur:
			return
		case owner.IsNone():
			if b.owner.CompareAndSwap(0, int64(cur)) {
				b.recordBind(cur, "claim", 2)
				return
			}
		default:
			violation.Raise(violation.New(owner, cur, typeName[T](), b.site.Load(), 1))
		}
	}
}

// recordBind stores the bind site and logs the transition. skip counts
// frames between recordBind's caller and user code.
func (b *Bound[T]) recordBind(owner goid.ID, how string, skip int) {
	if trackBindSites.Load() {
		b.site.Store(stackdepot.Capture(skip + 1))
	} else {
		b.site.Store(0)
	}

	if l := logging.Default(); l.DebugEnabled() {
		l.Debug("bound value "+how, "type", typeName[T](), "owner", int64(owner))
	}
}

func cloneValue[T any](v T) T {
	if c, ok := any(v).(Cloner[T]); ok {
		return c.Clone()
	}
	return v
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
