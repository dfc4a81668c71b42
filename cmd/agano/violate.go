// Copyright 2025 The agano Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"

	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"

	"github.com/kolkov/agano/agano"
)

func newViolateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "violate",
		Short: "Access a Bound value from a goroutine that does not own it",
		Long: `violate binds a value to the main goroutine and reads it from a second
goroutine. The access is a thread-safety violation: with the default
options a report is written to stderr and the process exits with status
66.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			violate(cmd.OutOrStdout())
			return nil
		},
	}
}

// violate never returns normally. With halt_mode=panic the violation
// is re-raised on the calling goroutine.
func violate(w io.Writer) {
	b := agano.NewBound(1)
	fmt.Fprintf(w, "value bound to goroutine %v\n", b.Owner())

	var wg conc.WaitGroup
	wg.Go(func() {
		fmt.Fprintf(w, "reading from goroutine %v\n", agano.CurrentGoroutine())
		_ = b.Load()
	})
	if r := wg.WaitAndRecover(); r != nil {
		panic(r.Value)
	}
	panic("agano: violation was not raised")
}
