// Copyright 2025 The agano Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package agano

import (
	"fmt"
	"sync/atomic"

	"github.com/kolkov/agano/internal/affinity/goid"
	"github.com/kolkov/agano/internal/affinity/violation"
	"github.com/kolkov/agano/internal/config"
	"github.com/kolkov/agano/internal/logging"
	"github.com/kolkov/agano/internal/syncutil"
)

// Options are the runtime options of the package. At init they are read
// from AGANO_<KEY> environment variables and the AGANO_OPTIONS string.
type Options = config.Options

// DefaultOptions returns the built-in options.
func DefaultOptions() Options {
	return config.Defaults()
}

var options atomic.Pointer[Options]

// Configure validates opts and applies them process-wide. It returns an
// error wrapping the first invalid option and leaves the previous options
// in effect.
func Configure(opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	src, err := goid.ParseSource(opts.GoidSource)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidOption, err)
	}

	logging.Default().SetLevel(opts.LogLevel)
	violation.Configure(violation.DefaultSettings(opts))
	effective := goid.Select(src)
	trackBindSites.Store(opts.TrackBindSites)
	capabilityChecks.Store(opts.CapabilityChecks)
	syncutil.SetDeadlockTimeout(opts.DeadlockTimeout)

	options.Store(&opts)

	logging.Default().Debug("options applied",
		"halt_mode", opts.HaltMode,
		"exitcode", opts.ExitCode,
		"report_format", opts.ReportFormat,
		"track_bind_sites", opts.TrackBindSites,
		"goid_source", string(effective),
	)
	return nil
}

// CurrentOptions returns the options in effect.
func CurrentOptions() Options {
	if p := options.Load(); p != nil {
		return *p
	}
	return config.Defaults()
}

func init() {
	registerBuiltins()

	opts, err := config.FromEnv()
	if err != nil {
		logging.Default().Warn("ignoring invalid agano options", "error", err)
	}
	// FromEnv falls back to defaults on error, which always validate.
	_ = Configure(opts)
}
