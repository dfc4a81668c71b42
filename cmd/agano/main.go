// Copyright 2025 The agano Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package main implements the agano CLI tool.
//
// The agano tool demonstrates the ownership primitives of the agano
// package and inspects its runtime options:
//
//	agano demo bound              # hand a goroutine-bound value to a worker
//	agano demo synced -w 8        # contended counter behind a Synced lock
//	agano violate                 # trigger a thread-safety violation
//	agano config                  # print effective options as YAML
//	agano version                 # show version information
//
// Options are read from defaults, an optional YAML file (--config),
// AGANO_<KEY> environment variables, command-line flags and the
// AGANO_OPTIONS string, in increasing order of precedence.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
