// Copyright 2025 The agano Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package goid

import (
	"fmt"
	"runtime"
	"strings"

	pgoid "github.com/petermattis/goid"
	"golang.org/x/mod/semver"
)

// Source names a goroutine ID extraction path.
type Source string

const (
	// SourceAuto picks the fast path when it is verified for the toolchain.
	SourceAuto Source = "auto"
	// SourceFast forces github.com/petermattis/goid.
	SourceFast Source = "fast"
	// SourceStack forces runtime.Stack parsing.
	SourceStack Source = "stack"
)

// minFastVersion is the oldest toolchain whose runtime.g layout the fast
// path has been checked against.
const minFastVersion = "v1.23.0"

// ParseSource parses a source name. The empty string means SourceAuto.
func ParseSource(s string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case "", SourceAuto:
		return SourceAuto, nil
	case SourceFast:
		return SourceFast, nil
	case SourceStack:
		return SourceStack, nil
	default:
		return "", fmt.Errorf("unknown goroutine id source %q", s)
	}
}

// getGoroutineIDFast reads the goid from runtime.g.
func getGoroutineIDFast() int64 {
	return pgoid.Get()
}

// Select installs the extraction path for src and returns the source
// actually in effect. SourceAuto resolves to SourceFast or SourceStack.
func Select(src Source) Source {
	effective := src
	if src == SourceAuto {
		effective = SourceStack
		if fastSupported(runtime.Version()) && fastAgrees() {
			effective = SourceFast
		}
	}

	fn := getGoroutineIDSlow
	if effective == SourceFast {
		fn = getGoroutineIDFast
	}
	current.Store(&fn)

	active.Store(string(effective))
	return effective
}

// Active returns the source currently in effect.
func Active() Source {
	if s, ok := active.Load().(string); ok {
		return Source(s)
	}
	return SourceStack
}

// fastSupported reports whether goVersion (as returned by runtime.Version,
// e.g. "go1.25.3") is a release at or after minFastVersion. Development
// toolchains ("devel go1.26-abcdef") are not supported.
func fastSupported(goVersion string) bool {
	v := toSemver(goVersion)
	if !semver.IsValid(v) {
		return false
	}
	return semver.Compare(v, minFastVersion) >= 0
}

// toSemver converts "go1.25.3" to "v1.25.3" and "go1.25rc1" to
// "v1.25.0-rc1". Anything else comes back invalid.
func toSemver(goVersion string) string {
	rest, ok := strings.CutPrefix(goVersion, "go")
	if !ok {
		return ""
	}

	pre := ""
	for _, tag := range []string{"rc", "beta"} {
		if i := strings.Index(rest, tag); i > 0 {
			pre = "-" + rest[i:]
			rest = rest[:i]
			break
		}
	}

	if strings.Count(rest, ".") == 1 {
		rest += ".0"
	}
	return "v" + rest + pre
}

// fastAgrees cross-checks both paths on the calling goroutine.
func fastAgrees() bool {
	fast := getGoroutineIDFast()
	return fast > 0 && fast == getGoroutineIDSlow()
}
