// Copyright 2025 The agano Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"github.com/kolkov/agano/agano"
	"github.com/kolkov/agano/internal/logging"
)

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run an ownership demonstration",
	}
	cmd.AddCommand(newDemoBoundCmd(), newDemoSyncedCmd())
	return cmd
}

func newDemoBoundCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bound",
		Short: "Hand a deferred Bound value to a worker goroutine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return demoBound(cmd.OutOrStdout())
		},
	}
}

// demoBound moves an unbound value into a worker, which claims it, copies
// it and mutates the copy.
func demoBound(w io.Writer) error {
	b := agano.NewDeferred(42)
	fmt.Fprintf(w, "main %v: created value, unbound=%t\n", agano.CurrentGoroutine(), b.IsUnbound())

	var wg conc.WaitGroup
	wg.Go(func() {
		owned := b.Move()
		me := agano.CurrentGoroutine()

		fmt.Fprintf(w, "worker %v: value=%d\n", me, owned.Load())
		fmt.Fprintf(w, "worker %v: owner=%v\n", me, owned.Owner())

		c := owned.Copy()
		*c.Get() += 50
		fmt.Fprintf(w, "worker %v: copy owner=%v\n", me, c.Owner())
		fmt.Fprintf(w, "worker %v: original=%d copy=%d\n", me, owned.Load(), c.Load())
	})
	if r := wg.WaitAndRecover(); r != nil {
		return r.AsError()
	}

	fmt.Fprintf(w, "main %v: source unbound=%t\n", agano.CurrentGoroutine(), b.IsUnbound())
	return nil
}

func newDemoSyncedCmd() *cobra.Command {
	var workers, increments int

	cmd := &cobra.Command{
		Use:   "synced",
		Short: "Increment a Synced counter from several goroutines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if workers < 1 || increments < 0 {
				return errors.New("--workers must be positive and --increments non-negative")
			}
			return demoSynced(cmd.OutOrStdout(), workers, increments)
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "number of worker goroutines")
	cmd.Flags().IntVarP(&increments, "increments", "n", 1000, "increments per worker")
	return cmd
}

// demoSynced runs an ordered handoff between two goroutines, then a
// contended run with the given number of workers.
func demoSynced(w io.Writer, workers, increments int) error {
	counter := agano.NewSynced(0)

	first := make(chan struct{})
	var wg conc.WaitGroup
	wg.Go(func() {
		counter.Access(func(v *agano.Locked[int]) {
			*v.Get() += 10
			fmt.Fprintf(w, "goroutine A: %d\n", v.Load())
		})
		close(first)
	})
	wg.Go(func() {
		<-first
		counter.Access(func(v *agano.Locked[int]) {
			fmt.Fprintf(w, "goroutine B: observed %d\n", v.Load())
			*v.Get() += 10
			fmt.Fprintf(w, "goroutine B: %d\n", v.Load())
		})
	})
	if r := wg.WaitAndRecover(); r != nil {
		return r.AsError()
	}

	contended := agano.NewSynced(0)
	p := pool.New().WithMaxGoroutines(workers)
	for i := 0; i < workers; i++ {
		p.Go(func() {
			for j := 0; j < increments; j++ {
				contended.Access(func(v *agano.Locked[int]) { *v.Get()++ })
			}
		})
	}
	p.Wait()

	total := contended.Lock()
	defer total.Unlock()
	fmt.Fprintf(w, "contended: %d workers x %d increments = %d\n", workers, increments, total.Load())

	logging.Default().Debug("synced demo finished", "workers", workers, "total", total.Load())
	return nil
}
