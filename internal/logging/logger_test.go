// Copyright 2025 The agano Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		records = append(records, rec)
	}
	return records
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, LevelWarn)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown", "key", "value")
	l.Error("shown too")

	records := decodeLines(t, &buf)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %s", len(records), buf.String())
	}
	if records[0]["msg"] != "shown" || records[0]["key"] != "value" {
		t.Errorf("unexpected first record: %v", records[0])
	}
	if records[0]["component"] != "agano" {
		t.Errorf("component attribute missing: %v", records[0])
	}
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, LevelError)
	child := l.With("goroutine", 7)

	if child.DebugEnabled() {
		t.Fatal("debug should be disabled at ERROR")
	}

	// Level changes propagate to children.
	l.SetLevel(LevelDebug)
	if !child.DebugEnabled() {
		t.Fatal("debug should be enabled after SetLevel(DEBUG)")
	}

	child.Debug("bound")
	records := decodeLines(t, &buf)
	if len(records) != 1 || records[0]["goroutine"] != float64(7) {
		t.Errorf("unexpected records: %v", records)
	}
}

func TestParseLevel(t *testing.T) {
	for _, lvl := range []string{"debug", "INFO", " warn ", "Error"} {
		if !ValidLevel(lvl) {
			t.Errorf("ValidLevel(%q) = false", lvl)
		}
	}
	if ValidLevel("trace") {
		t.Error("ValidLevel(trace) = true")
	}
	if parseLevel("trace") != parseLevel(LevelWarn) {
		t.Error("unknown levels should map to WARN")
	}
}

func TestSetDefault(t *testing.T) {
	var buf bytes.Buffer
	prev := SetDefault(NewLogger(&buf, LevelInfo))
	defer SetDefault(prev)

	Default().Info("hello")
	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Errorf("default logger not replaced: %q", buf.String())
	}

	SetDefault(nil)
	Default().Error("dropped")
}

func TestWith_NoArgs(t *testing.T) {
	l := NopLogger()
	if l.With() != l {
		t.Error("With() without args should return the receiver")
	}
}
