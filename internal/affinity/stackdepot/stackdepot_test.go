// Copyright 2025 The agano Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stackdepot

import (
	"strings"
	"sync"
	"testing"
)

// TestCapture tests basic stack capture and retrieval.
func TestCapture(t *testing.T) {
	Reset()

	hash := Capture(0)
	if hash == 0 {
		t.Fatal("Capture returned zero hash")
	}

	stack := Get(hash)
	if stack == nil {
		t.Fatal("Get returned nil for valid hash")
	}
	if len(stack.Frames()) == 0 {
		t.Error("Stack has no non-zero program counters")
	}
}

// TestStackDeduplication tests that identical stacks produce the same hash.
func TestStackDeduplication(t *testing.T) {
	Reset()

	// Same call site on both iterations.
	var hashes [2]uint64
	for i := range hashes {
		hashes[i] = Capture(0)
	}

	if hashes[0] == 0 || hashes[0] != hashes[1] {
		t.Fatalf("Expected same non-zero hash, got %x and %x", hashes[0], hashes[1])
	}
	if Get(hashes[0]) != Get(hashes[1]) {
		t.Error("Expected same StackTrace pointer (deduplication)")
	}

	if uniqueStacks, _ := Stats(); uniqueStacks != 1 {
		t.Errorf("Expected 1 unique stack after deduplication, got %d", uniqueStacks)
	}
}

func TestGetUnknownHash(t *testing.T) {
	Reset()

	if Get(0x123456789abcdef0) != nil {
		t.Error("Expected nil for non-existent hash")
	}
	if Get(0) != nil {
		t.Error("Expected nil for zero hash")
	}
}

// TestCaptureSkip checks skip hides wrapper frames.
func TestCaptureSkip(t *testing.T) {
	Reset()

	formatted := Get(captureViaWrapper()).Format()
	if strings.Contains(formatted, "captureViaWrapper") {
		t.Errorf("wrapper frame should be skipped, got:\n%s", formatted)
	}
	if !strings.Contains(formatted, "TestCaptureSkip") {
		t.Errorf("caller frame missing, got:\n%s", formatted)
	}
}

func captureViaWrapper() uint64 {
	return Capture(1)
}

// TestFormat tests stack trace formatting.
func TestFormat(t *testing.T) {
	Reset()

	formatted := Get(Capture(0)).Format()

	for _, want := range []string{"TestFormat", "stackdepot_test.go", "()"} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Stack should contain %q, got:\n%s", want, formatted)
		}
	}
}

func TestFormatNil(t *testing.T) {
	var stack *StackTrace
	if got := stack.Format(); got != "  <unknown>\n" {
		t.Errorf("Expected %q, got %q", "  <unknown>\n", got)
	}
	if stack.Frames() != nil {
		t.Error("nil trace should have no frames")
	}
}

// TestHashStackDifferentStacks tests that different call sites get different hashes.
func TestHashStackDifferentStacks(t *testing.T) {
	Reset()

	hash1 := captureFromSite1()
	hash2 := captureFromSite2()

	if hash1 == 0 || hash2 == 0 {
		t.Fatal("Capture returned zero hash")
	}
	if hash1 == hash2 {
		t.Error("Expected different hashes for different call sites")
	}
	if uniqueStacks, mem := Stats(); uniqueStacks != 2 || mem != 2*96 {
		t.Errorf("Expected 2 unique stacks (192 bytes), got %d (%d bytes)", uniqueStacks, mem)
	}
}

func captureFromSite1() uint64 {
	return Capture(0)
}

func captureFromSite2() uint64 {
	return Capture(0)
}

// TestConcurrentCapture tests concurrent stack capture.
func TestConcurrentCapture(t *testing.T) {
	Reset()

	const numGoroutines = 100
	const capturesPerGoroutine = 10

	var wg sync.WaitGroup
	hashes := make(chan uint64, numGoroutines*capturesPerGoroutine)

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < capturesPerGoroutine; j++ {
				hashes <- Capture(0)
			}
		}()
	}

	wg.Wait()
	close(hashes)

	for hash := range hashes {
		if hash == 0 {
			t.Fatal("concurrent Capture returned zero hash")
		}
		if Get(hash) == nil {
			t.Fatalf("hash %x not stored", hash)
		}
	}
}

func BenchmarkCapture(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Capture(0)
	}
}
