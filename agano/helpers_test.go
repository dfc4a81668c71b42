// Copyright 2025 The agano Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package agano

import (
	"sync"
	"testing"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"github.com/stretchr/testify/require"

	"github.com/kolkov/agano/internal/logging"
)

// recorder collects violations routed to it by SetFatalHandler.
type recorder struct {
	mu   sync.Mutex
	seen []*Violation
}

func (r *recorder) handle(v *Violation) {
	r.mu.Lock()
	r.seen = append(r.seen, v)
	r.mu.Unlock()
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

// catchViolations installs a handler that records violations and returns,
// so the faulting access panics with the violation instead of exiting.
func catchViolations(t *testing.T) *recorder {
	t.Helper()

	prevLog := logging.SetDefault(logging.NopLogger())
	rec := &recorder{}
	prev := SetFatalHandler(rec.handle)
	t.Cleanup(func() {
		SetFatalHandler(prev)
		logging.SetDefault(prevLog)
	})
	return rec
}

// withOptions applies opts for the duration of the test.
func withOptions(t *testing.T, opts Options) {
	t.Helper()

	prev := CurrentOptions()
	require.NoError(t, Configure(opts))
	t.Cleanup(func() {
		require.NoError(t, Configure(prev))
	})
}

// elsewhere runs fn on a new goroutine and returns that goroutine's ID and
// the panic it raised, if any.
func elsewhere(fn func()) (GoroutineID, *panics.Recovered) {
	var id GoroutineID
	var wg conc.WaitGroup
	wg.Go(func() {
		id = CurrentGoroutine()
		fn()
	})
	return id, wg.WaitAndRecover()
}

// violationOf extracts the violation from a recovered panic.
func violationOf(t *testing.T, r *panics.Recovered) *Violation {
	t.Helper()

	require.NotNil(t, r, "expected a thread-safety violation")
	v, ok := r.Value.(*Violation)
	require.Truef(t, ok, "panic value %T(%v) is not a *Violation", r.Value, r.Value)
	return v
}

// capabilityErrorOf runs fn and returns the *CapabilityError it panics with.
func capabilityErrorOf(t *testing.T, fn func()) *CapabilityError {
	t.Helper()

	var pc panics.Catcher
	pc.Try(fn)
	r := pc.Recovered()
	require.NotNil(t, r, "expected a capability panic")
	err, ok := r.Value.(*CapabilityError)
	require.Truef(t, ok, "panic value %T(%v) is not a *CapabilityError", r.Value, r.Value)
	return err
}
