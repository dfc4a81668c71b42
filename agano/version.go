// Copyright 2025 The agano Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package agano

import (
	"github.com/kolkov/agano/internal/affinity/goid"
	"github.com/kolkov/agano/internal/syncutil"
)

// Version information for agano.
const (
	// Version is the current version of the package.
	Version = "0.1.0"

	// VersionMajor is the major version number.
	VersionMajor = 0

	// VersionMinor is the minor version number.
	VersionMinor = 1

	// VersionPatch is the patch version number.
	VersionPatch = 0
)

// Info provides runtime information about the package.
type Info struct {
	// Version is the package version string.
	Version string

	// GoroutineIDSource is the goroutine ID extraction path in effect,
	// "fast" or "stack".
	GoroutineIDSource string

	// DeadlockDetection reports whether the binary was built with
	// -tags deadlock.
	DeadlockDetection bool
}

// GetInfo returns information about the runtime.
//
// Example:
//
//	info := agano.GetInfo()
//	fmt.Printf("agano %s (goid: %s)\n", info.Version, info.GoroutineIDSource)
func GetInfo() Info {
	return Info{
		Version:           Version,
		GoroutineIDSource: string(goid.Active()),
		DeadlockDetection: syncutil.DeadlockEnabled,
	}
}
