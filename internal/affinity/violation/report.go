// Copyright 2025 The agano Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package violation reports thread-safety violations.
//
// A violation is raised when a goroutine-bound value is accessed from a
// goroutine other than its owner. There is no recovery: the violation is
// handed to the process-wide handler, which terminates the program.
package violation

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kolkov/agano/internal/affinity/goid"
	"github.com/kolkov/agano/internal/affinity/stackdepot"
)

// maxStackDepth is the maximum number of frames captured for the access.
const maxStackDepth = 32

// Violation describes an access to a goroutine-bound value from a
// goroutine that does not own it.
type Violation struct {
	// Owner is the goroutine the value is bound to.
	Owner goid.ID
	// Accessor is the goroutine that attempted the access.
	Accessor goid.ID
	// TypeName is the Go type of the protected value.
	TypeName string
	// Stack holds program counters of the offending access.
	Stack []uintptr
	// BindSite is the stack depot hash of where the value was bound,
	// or 0 when bind sites are not tracked.
	BindSite uint64
}

// New builds a Violation and captures the current stack. skip is the
// number of frames above the caller of New to omit.
func New(owner, accessor goid.ID, typeName string, bindSite uint64, skip int) *Violation {
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(2+skip, pcs)

	return &Violation{
		Owner:    owner,
		Accessor: accessor,
		TypeName: typeName,
		Stack:    pcs[:n],
		BindSite: bindSite,
	}
}

// Error returns the one-line diagnostic. Goroutines are identified by
// opaque hashes.
func (v *Violation) Error() string {
	return fmt.Sprintf("thread-safety violation: value of type %s is bound to goroutine %#016x but used from goroutine %#016x",
		v.TypeName, v.Owner.Hash(), v.Accessor.Hash())
}

// Format writes the report in the layout of Go's race detector:
//
//	==================
//	WARNING: THREAD-SAFETY VIOLATION
//	Access to int by goroutine 7 [0x...]:
//	  main.worker()
//	      /path/to/file.go:15 +0x3b
//
//	Value is bound to goroutine 1 [0x...]:
//	  (bind site not recorded, run with AGANO_OPTIONS=track_bind_sites=1)
//	==================
//
//nolint:errcheck // best-effort diagnostics on the way to termination
func (v *Violation) Format(w io.Writer) {
	fmt.Fprintf(w, "==================\n")
	fmt.Fprintf(w, "WARNING: THREAD-SAFETY VIOLATION\n")

	fmt.Fprintf(w, "Access to %s by goroutine %s [%#016x]:\n", v.TypeName, v.Accessor, v.Accessor.Hash())
	fmt.Fprint(w, formatStackTrace(v.Stack))
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "Value is bound to goroutine %s [%#016x]:\n", v.Owner, v.Owner.Hash())
	if site := stackdepot.Get(v.BindSite); site != nil {
		fmt.Fprint(w, site.Format())
	} else {
		fmt.Fprintf(w, "  (bind site not recorded, run with AGANO_OPTIONS=track_bind_sites=1)\n")
	}

	fmt.Fprintf(w, "==================\n")
}

// String returns the formatted report.
func (v *Violation) String() string {
	var buf strings.Builder
	v.Format(&buf)
	return buf.String()
}

// goroutineRecord is the YAML form of one goroutine.
type goroutineRecord struct {
	ID   int64  `yaml:"id"`
	Hash string `yaml:"hash"`
}

// yamlReport is the YAML form of a Violation.
type yamlReport struct {
	Kind     string          `yaml:"kind"`
	Message  string          `yaml:"message"`
	Type     string          `yaml:"type"`
	Accessor goroutineRecord `yaml:"accessor"`
	Owner    goroutineRecord `yaml:"owner"`
	Stack    []string        `yaml:"stack"`
	BindSite []string        `yaml:"bind_site,omitempty"`
}

func record(id goid.ID) goroutineRecord {
	return goroutineRecord{ID: int64(id), Hash: fmt.Sprintf("%#016x", id.Hash())}
}

// MarshalYAML implements yaml.Marshaler.
func (v *Violation) MarshalYAML() (any, error) {
	r := yamlReport{
		Kind:     "ThreadSafetyViolation",
		Message:  v.Error(),
		Type:     v.TypeName,
		Accessor: record(v.Accessor),
		Owner:    record(v.Owner),
		Stack:    frameLines(v.Stack),
	}
	if site := stackdepot.Get(v.BindSite); site != nil {
		r.BindSite = frameLines(site.Frames())
	}
	return r, nil
}

// WriteYAML writes the report as a YAML document.
func (v *Violation) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode violation: %w", err)
	}
	return enc.Close()
}

// skipFrame reports whether a frame belongs to the runtime or to agano's
// own plumbing and should be hidden from reports.
func skipFrame(function string) bool {
	return strings.HasPrefix(function, "runtime.") ||
		strings.Contains(function, "/agano/internal/") ||
		(strings.Contains(function, "/agano.(*Bound[") && strings.HasSuffix(function, ").validate"))
}

// formatStackTrace formats program counters as in Go's race reports:
//
//	main.reader()
//	    /path/to/file.go:15 +0x3b
func formatStackTrace(pcs []uintptr) string {
	if len(pcs) == 0 {
		return "  (no stack trace available)\n"
	}

	frames := runtime.CallersFrames(pcs)
	var buf strings.Builder
	for {
		frame, more := frames.Next()

		if !skipFrame(frame.Function) {
			fmt.Fprintf(&buf, "  %s()\n", frame.Function)
			// Offset is approximate, it only mirrors the race detector layout.
			fmt.Fprintf(&buf, "      %s:%d +%#x\n", frame.File, frame.Line, frame.PC&0xfff)
		}

		if !more {
			break
		}
	}

	if buf.Len() == 0 {
		return "  (all frames filtered - runtime internal)\n"
	}
	return buf.String()
}

// frameLines renders "function file:line" per visible frame.
func frameLines(pcs []uintptr) []string {
	if len(pcs) == 0 {
		return nil
	}

	var lines []string
	frames := runtime.CallersFrames(pcs)
	for {
		frame, more := frames.Next()
		if frame.Function != "" && !skipFrame(frame.Function) {
			lines = append(lines, fmt.Sprintf("%s %s:%d", frame.Function, frame.File, frame.Line))
		}
		if !more {
			break
		}
	}
	return lines
}
