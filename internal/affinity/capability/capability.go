// Copyright 2025 The agano Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package capability classifies types by what may safely cross goroutines.
//
// Two axes exist:
//   - Transfer: ownership of a value may move to another goroutine.
//   - Share: a read-only reference may be observed by several goroutines
//     at once.
//
// Classification is declared, never inferred. A type is classified by
// explicit registration ([Register]) or by carrying a marker method
// ([TransferMarker], [ShareMarker]). Everything else is unclassified and
// treated as unsafe.
package capability

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Class is a set of capabilities.
type Class uint8

const (
	// Transfer marks types whose ownership may move between goroutines.
	Transfer Class = 1 << iota
	// Share marks types safe under concurrent read access.
	Share

	// None is the empty set.
	None Class = 0
)

// Has reports whether c contains every capability in other.
func (c Class) Has(other Class) bool {
	return c&other == other
}

// String returns "transfer|share", "transfer", "share" or "none".
func (c Class) String() string {
	var parts []string
	if c.Has(Transfer) {
		parts = append(parts, "transfer")
	}
	if c.Has(Share) {
		parts = append(parts, "share")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// TransferMarker is implemented by types that opt in to Transfer.
type TransferMarker interface {
	Transferable()
}

// ShareMarker is implemented by types that opt in to Share.
type ShareMarker interface {
	Shareable()
}

var (
	transferMarker = reflect.TypeFor[TransferMarker]()
	shareMarker    = reflect.TypeFor[ShareMarker]()
	lockerType     = reflect.TypeFor[sync.Locker]()
)

// registry maps reflect.Type -> Class for explicit registrations.
var registry sync.Map

// relocatable caches reflect.Type -> bool.
var relocatable sync.Map

// Register adds c to the classes declared for t.
func Register(t reflect.Type, c Class) {
	for {
		prev, loaded := registry.LoadOrStore(t, c)
		if !loaded {
			return
		}
		if registry.CompareAndSwap(t, prev, prev.(Class)|c) {
			return
		}
	}
}

// Unregister removes every explicit registration of t. Marker methods
// are unaffected. Intended for tests.
func Unregister(t reflect.Type) {
	registry.Delete(t)
}

// Declared returns the classes declared for t, by registration or by
// marker methods on t or *t.
func Declared(t reflect.Type) Class {
	if t == nil {
		return None
	}

	c := None
	if v, ok := registry.Load(t); ok {
		c = v.(Class)
	}

	if implements(t, transferMarker) {
		c |= Transfer
	}
	if implements(t, shareMarker) {
		c |= Share
	}
	return c
}

func implements(t, iface reflect.Type) bool {
	if t.Implements(iface) {
		return true
	}
	return t.Kind() != reflect.Interface && reflect.PointerTo(t).Implements(iface)
}

// IsTransferable reports whether values of t may move to another
// goroutine: t must be relocatable and declared Transfer.
func IsTransferable(t reflect.Type) bool {
	return Declared(t).Has(Transfer) && Relocatable(t)
}

// IsShareable reports whether t is declared Share.
func IsShareable(t reflect.Type) bool {
	return Declared(t).Has(Share)
}

// Relocatable reports whether a value of t may be moved by plain
// assignment. It applies the copylocks rule of go vet: a type holding,
// by value, something whose pointer implements sync.Locker but whose
// value does not (sync.Mutex, noCopy markers) must stay at its address.
func Relocatable(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if v, ok := relocatable.Load(t); ok {
		return v.(bool)
	}

	ok := !containsLock(t, make(map[reflect.Type]bool))
	relocatable.Store(t, ok)
	return ok
}

func containsLock(t reflect.Type, seen map[reflect.Type]bool) bool {
	if seen[t] {
		return false
	}
	seen[t] = true

	if t.Kind() != reflect.Interface && t.Kind() != reflect.Pointer &&
		!t.Implements(lockerType) && reflect.PointerTo(t).Implements(lockerType) {
		return true
	}

	switch t.Kind() {
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if containsLock(t.Field(i).Type, seen) {
				return true
			}
		}
	case reflect.Array:
		return t.Len() > 0 && containsLock(t.Elem(), seen)
	}
	return false
}

// Error reports a type used where a capability is required but missing.
type Error struct {
	// Type is the offending type.
	Type reflect.Type
	// Missing lists the capabilities the type lacks.
	Missing Class
	// Reason is set when the type is declared but not relocatable.
	Reason string
	// Site names the construct that demanded the capability.
	Site string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("agano: %s requires %s capability, type %v has %s",
		e.Site, e.Missing, e.Type, Declared(e.Type))
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

// Check returns an *Error when t lacks any capability in want.
func Check(t reflect.Type, want Class, site string) error {
	missing := None
	reason := ""

	if want.Has(Transfer) {
		if !Declared(t).Has(Transfer) {
			missing |= Transfer
		} else if !Relocatable(t) {
			missing |= Transfer
			reason = "contains a lock by value and cannot be moved"
		}
	}
	if want.Has(Share) && !IsShareable(t) {
		missing |= Share
	}

	if missing == None {
		return nil
	}
	return &Error{Type: t, Missing: missing, Reason: reason, Site: site}
}

// CheckRelocatable returns an *Error when t cannot be moved.
func CheckRelocatable(t reflect.Type, site string) error {
	if Relocatable(t) {
		return nil
	}
	return &Error{
		Type:    t,
		Missing: Transfer,
		Reason:  "contains a lock by value and cannot be moved",
		Site:    site,
	}
}
