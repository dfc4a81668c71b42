// Copyright 2025 The agano Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package agano provides ownership primitives for values shared between
// goroutines.
//
// Two wrappers make the ownership of a value explicit:
//
//   - [Synced] owns a value and a lock. The only way to reach the value is
//     through a [Locked] view, which holds the lock for as long as it lives.
//   - [Bound] owns a value and the ID of the goroutine allowed to touch it.
//     Any access from another goroutine is a fatal thread-safety violation.
//
// # Quick Start
//
// Exclusive access through a lock:
//
//	counter := agano.NewSynced(0)
//
//	counter.Access(func(v *agano.Locked[int]) {
//		*v.Get() += 10
//	})
//
//	// or, with an explicit scope:
//	view := counter.Lock()
//	defer view.Unlock()
//	*view.Get() += 10
//
// Goroutine affinity:
//
//	b := agano.NewDeferred(42) // not bound yet
//	go func(b *agano.Bound[int]) {
//		*b.Get() += 50 // first access binds b to this goroutine
//	}(b.Move())
//
// # Capabilities
//
// Types declare whether they may cross goroutines. A type is Transferable
// when its ownership may move to another goroutine and Shareable when a
// read-only reference may be observed concurrently. Nothing is inferred:
// a type is classified only by [RegisterTransferable], [RegisterShareable]
// or the marker methods of [TransferMarker] and [ShareMarker]. This package
// registers the predeclared boolean, numeric and string types.
//
// [Synced] requires its value type to be Transferable; [Bound] requires it
// to be movable, i.e. not to hold a lock by value. Go has no compile-time
// predicates, so both are asserted at construction and a failure panics
// with a [*CapabilityError].
//
// # Violations
//
// A [Bound] accessed from a goroutine that does not own it raises a
// [*Violation]. The violation goes to the process-wide handler (see
// [SetFatalHandler]); the default handler prints a report in the style of
// the race detector and exits with status 66. Violations are never
// returned as errors: the program is already broken when one happens.
//
// # Configuration
//
// Runtime options are read from the environment at init, either as
// AGANO_<KEY> variables or as a GORACE-style string:
//
//	AGANO_OPTIONS="halt_mode=panic track_bind_sites=1 report_format=yaml"
//
// See [Options] for the keys and [Configure] to change them at run time.
package agano
