// Copyright 2025 The agano Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package agano

import (
	"github.com/kolkov/agano/internal/affinity/goid"
	"github.com/kolkov/agano/internal/affinity/violation"
)

// GoroutineID identifies a goroutine. The zero value means no goroutine.
type GoroutineID = goid.ID

// CurrentGoroutine returns the ID of the calling goroutine.
func CurrentGoroutine() GoroutineID {
	return goid.Current()
}

// Violation describes an access to a Bound value, or a Locked view, from a
// goroutine that does not own it.
type Violation = violation.Violation

// FatalHandler receives every violation. It is not expected to return;
// when it does, the faulting access panics with the violation instead of
// completing.
type FatalHandler = violation.Handler

// SetFatalHandler installs h as the process-wide violation handler and
// returns the previous one. A nil h restores the default handler, which
// writes a report to stderr and exits with the configured exit code.
//
// Tests use it to observe violations without terminating:
//
//	defer agano.SetFatalHandler(func(v *agano.Violation) { panic(v) })
func SetFatalHandler(h FatalHandler) FatalHandler {
	return violation.SetHandler(h)
}
