// Copyright 2025 The agano Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kolkov/agano/agano"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info := agano.GetInfo()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "agano version %s\n", info.Version)
			fmt.Fprintf(out, "goroutine id source: %s\n", info.GoroutineIDSource)
			fmt.Fprintf(out, "deadlock detection: %t\n", info.DeadlockDetection)
		},
	}
}
