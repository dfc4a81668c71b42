// Copyright 2025 The agano Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package goid

import (
	"runtime"
	"sync"
	"testing"
)

// TestCurrent_Basic tests basic goroutine ID extraction.
func TestCurrent_Basic(t *testing.T) {
	gid := Current()
	if gid <= 0 {
		t.Errorf("Current() returned non-positive ID: %d", gid)
	}

	// Same goroutine, same ID.
	if gid2 := Current(); gid != gid2 {
		t.Errorf("Current() not stable: first=%d, second=%d", gid, gid2)
	}
}

// TestGoroutineID_FastVsSlow validates fast and slow paths match.
//
// If the two paths disagree, ownership checks would compare IDs from
// different numbering schemes.
func TestGoroutineID_FastVsSlow(t *testing.T) {
	fast := getGoroutineIDFast()
	slow := getGoroutineIDSlow()

	if fast != slow {
		t.Errorf("Fast and slow paths disagree! fast=%d, slow=%d", fast, slow)
	}
}

// TestCurrent_MultipleGoroutines tests ID extraction across many goroutines.
func TestCurrent_MultipleGoroutines(t *testing.T) {
	const numGoroutines = 100

	gidChan := make(chan ID, numGoroutines)

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			gidChan <- Current()
		}()
	}

	wg.Wait()
	close(gidChan)

	seen := make(map[ID]bool, numGoroutines)
	for gid := range gidChan {
		if gid <= 0 {
			t.Errorf("Goroutine got non-positive ID: %d", gid)
		}
		if seen[gid] {
			t.Errorf("Duplicate GID detected: %d", gid)
		}
		seen[gid] = true
	}

	if len(seen) != numGoroutines {
		t.Fatalf("Expected %d unique GIDs, got %d", numGoroutines, len(seen))
	}
}

// TestCurrent_StableAcrossSources checks every source reports the same ID.
func TestCurrent_StableAcrossSources(t *testing.T) {
	defer Select(SourceAuto)

	Select(SourceStack)
	stack := Current()

	Select(SourceFast)
	fast := Current()

	if stack != fast {
		t.Errorf("sources disagree: stack=%d fast=%d", stack, fast)
	}
}

// TestCurrent_AfterBlocking tests the ID survives blocking operations.
func TestCurrent_AfterBlocking(t *testing.T) {
	before := Current()

	ch := make(chan int)
	go func() {
		ch <- 42
	}()
	<-ch

	var mu sync.Mutex
	mu.Lock()
	go func() {
		mu.Lock()
		defer mu.Unlock()
	}()
	runtime.Gosched()
	mu.Unlock()

	if after := Current(); before != after {
		t.Errorf("GID changed after blocking! before=%d, after=%d", before, after)
	}
}

// TestParseGID tests the runtime.Stack parsing logic.
func TestParseGID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int64
	}{
		{name: "standard format", input: "goroutine 1 [running]:", expected: 1},
		{name: "large GID", input: "goroutine 999999 [running]:", expected: 999999},
		{name: "with stack trace", input: "goroutine 42 [running]:\nmain.main()\n\t/path/to/main.go:10", expected: 42},
		{name: "different state", input: "goroutine 123 [chan receive]:", expected: 123},
		{name: "invalid - no number", input: "goroutine  [running]:", expected: 0},
		{name: "invalid - wrong prefix", input: "thread 123 [running]:", expected: 0},
		{name: "invalid - empty", input: "", expected: 0},
		{name: "invalid - too short", input: "goroutine", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseGID([]byte(tt.input)); got != tt.expected {
				t.Errorf("parseGID(%q) = %d, expected %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFastSupported(t *testing.T) {
	tests := []struct {
		version string
		want    bool
	}{
		{"go1.25.3", true},
		{"go1.23", true},
		{"go1.24rc1", true},
		{"go1.22.9", false},
		{"go1.23rc2", false},
		{"devel go1.26-0123abcd Mon Jan 1 00:00:00 2026 +0000", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := fastSupported(tt.version); got != tt.want {
			t.Errorf("fastSupported(%q) = %v, want %v", tt.version, got, tt.want)
		}
	}
}

func TestToSemver(t *testing.T) {
	tests := map[string]string{
		"go1.25.3":    "v1.25.3",
		"go1.23":      "v1.23.0",
		"go1.24rc1":   "v1.24.0-rc1",
		"go1.21beta2": "v1.21.0-beta2",
		"devel":       "",
	}

	for in, want := range tests {
		if got := toSemver(in); got != want {
			t.Errorf("toSemver(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseSource(t *testing.T) {
	for _, in := range []string{"", "auto", " AUTO "} {
		if src, err := ParseSource(in); err != nil || src != SourceAuto {
			t.Errorf("ParseSource(%q) = %q, %v", in, src, err)
		}
	}
	if src, err := ParseSource("stack"); err != nil || src != SourceStack {
		t.Errorf("ParseSource(stack) = %q, %v", src, err)
	}
	if _, err := ParseSource("tls"); err == nil {
		t.Error("ParseSource(tls) should fail")
	}
}

func TestSelect_Auto(t *testing.T) {
	defer Select(SourceAuto)

	got := Select(SourceAuto)
	if got != SourceFast && got != SourceStack {
		t.Fatalf("Select(auto) resolved to %q", got)
	}
	if Active() != got {
		t.Errorf("Active() = %q, want %q", Active(), got)
	}

	if got := Select(SourceStack); got != SourceStack || Active() != SourceStack {
		t.Errorf("Select(stack) = %q, active %q", got, Active())
	}
}

func TestID_HashAndString(t *testing.T) {
	if None.String() != "none" || !None.IsNone() {
		t.Errorf("None = %q", None.String())
	}
	if ID(17).String() != "17" {
		t.Errorf("ID(17).String() = %q", ID(17).String())
	}
	if ID(1).Hash() == ID(2).Hash() {
		t.Error("distinct IDs hashed to the same value")
	}
	if ID(5).Hash() != ID(5).Hash() {
		t.Error("Hash is not deterministic")
	}
}

// TestGoroutineIDSlow_Allocations verifies the stack path stays cheap.
func TestGoroutineIDSlow_Allocations(t *testing.T) {
	allocs := testing.AllocsPerRun(100, func() {
		_ = getGoroutineIDSlow()
	})
	if allocs > 1 {
		t.Errorf("getGoroutineIDSlow() allocates %.2f times per call (expected <= 1)", allocs)
	}
}

func BenchmarkCurrent_Fast(b *testing.B) {
	defer Select(SourceAuto)
	Select(SourceFast)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Current()
	}
}

func BenchmarkCurrent_Stack(b *testing.B) {
	defer Select(SourceAuto)
	Select(SourceStack)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Current()
	}
}
