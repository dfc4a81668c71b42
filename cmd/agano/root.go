// Copyright 2025 The agano Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kolkov/agano/agano"
	"github.com/kolkov/agano/internal/config"
)

// flagKeys maps persistent flags to option keys.
var flagKeys = []struct {
	flag string
	key  string
}{
	{"log-level", "log_level"},
	{"report-format", "report_format"},
	{"track-bind-sites", "track_bind_sites"},
	{"halt-mode", "halt_mode"},
	{"goid-source", "goid_source"},
}

func newRootCmd() *cobra.Command {
	v := config.NewViper()

	root := &cobra.Command{
		Use:   "agano",
		Short: "Ownership primitives for goroutines",
		Long: `agano demonstrates values owned by a lock (Synced) and values owned
by a single goroutine (Bound). Accessing a Bound value from a goroutine
that does not own it is a fatal thread-safety violation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadOptions(v, cmd.Flags())
		},
	}

	pf := root.PersistentFlags()
	pf.StringP("config", "c", "", "options file (YAML)")
	pf.String("log-level", "", "log level: DEBUG, INFO, WARN or ERROR")
	pf.String("report-format", "", "violation report format: text or yaml")
	pf.Bool("track-bind-sites", false, "record where Bound values are bound")
	pf.String("halt-mode", "", "how a violation stops the process: exit or panic")
	pf.String("goid-source", "", "goroutine ID source: auto, fast or stack")

	root.AddCommand(
		newDemoCmd(),
		newViolateCmd(),
		newConfigCmd(v),
		newVersionCmd(),
	)
	return root
}

// loadOptions merges the options file and flags into v and applies the
// result process-wide.
func loadOptions(v *viper.Viper, flags *pflag.FlagSet) error {
	for _, fk := range flagKeys {
		if f := flags.Lookup(fk.flag); f != nil && f.Changed {
			if err := v.BindPFlag(fk.key, f); err != nil {
				return fmt.Errorf("bind --%s: %w", fk.flag, err)
			}
		}
	}

	if path, _ := flags.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}

	opts, err := config.Load(v)
	if err != nil {
		return err
	}
	return agano.Configure(opts)
}
