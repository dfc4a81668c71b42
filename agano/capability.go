// Copyright 2025 The agano Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package agano

import (
	"reflect"
	"sync/atomic"

	"github.com/kolkov/agano/internal/affinity/capability"
)

// TransferMarker is implemented by types whose ownership may move between
// goroutines.
type TransferMarker = capability.TransferMarker

// ShareMarker is implemented by types safe under concurrent read access.
type ShareMarker = capability.ShareMarker

// CapabilityError is the panic value of a construction whose value type
// lacks a required capability.
type CapabilityError = capability.Error

// RegisterTransferable declares T transferable. T must also be movable for
// IsTransferable to hold.
func RegisterTransferable[T any]() {
	capability.Register(reflect.TypeFor[T](), capability.Transfer)
}

// RegisterShareable declares T safe under concurrent read access.
func RegisterShareable[T any]() {
	capability.Register(reflect.TypeFor[T](), capability.Share)
}

// IsTransferable reports whether ownership of a T may move to another
// goroutine.
func IsTransferable[T any]() bool {
	return capability.IsTransferable(reflect.TypeFor[T]())
}

// IsShareable reports whether a T may be read by several goroutines at once.
func IsShareable[T any]() bool {
	return capability.IsShareable(reflect.TypeFor[T]())
}

// capabilityChecks gates construction-time assertions.
var capabilityChecks atomic.Bool

// requireTransferable panics unless T is transferable.
func requireTransferable[T any](site string) {
	if !capabilityChecks.Load() {
		return
	}
	if err := capability.Check(reflect.TypeFor[T](), capability.Transfer, site); err != nil {
		panic(err)
	}
}

// requireMovable panics if T holds a lock by value.
func requireMovable[T any](site string) {
	if !capabilityChecks.Load() {
		return
	}
	if err := capability.CheckRelocatable(reflect.TypeFor[T](), site); err != nil {
		panic(err)
	}
}

// registerBuiltins opts the predeclared scalar types in to both classes.
func registerBuiltins() {
	for _, t := range []reflect.Type{
		reflect.TypeFor[bool](),
		reflect.TypeFor[string](),
		reflect.TypeFor[int](),
		reflect.TypeFor[int8](),
		reflect.TypeFor[int16](),
		reflect.TypeFor[int32](),
		reflect.TypeFor[int64](),
		reflect.TypeFor[uint](),
		reflect.TypeFor[uint8](),
		reflect.TypeFor[uint16](),
		reflect.TypeFor[uint32](),
		reflect.TypeFor[uint64](),
		reflect.TypeFor[uintptr](),
		reflect.TypeFor[float32](),
		reflect.TypeFor[float64](),
		reflect.TypeFor[complex64](),
		reflect.TypeFor[complex128](),
	} {
		capability.Register(t, capability.Transfer|capability.Share)
	}
}
