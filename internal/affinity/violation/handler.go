// Copyright 2025 The agano Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package violation

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/kolkov/agano/internal/config"
	"github.com/kolkov/agano/internal/logging"
)

// Handler receives a violation. It must not return; if it does, Raise
// panics with the violation so the faulting access never completes.
type Handler func(v *Violation)

// Settings control the default handler.
type Settings struct {
	// Output receives the report. Nil means stderr.
	Output io.Writer
	// Format is config.FormatText or config.FormatYAML.
	Format string
	// HaltMode is config.HaltExit or config.HaltPanic.
	HaltMode string
	// ExitCode is passed to os.Exit in HaltExit mode.
	ExitCode int
}

// DefaultSettings derives Settings from options.
func DefaultSettings(opts config.Options) Settings {
	return Settings{
		Format:   opts.ReportFormat,
		HaltMode: opts.HaltMode,
		ExitCode: opts.ExitCode,
	}
}

var (
	handler  atomic.Pointer[Handler]
	settings atomic.Pointer[Settings]

	// exit terminates the process; replaced in tests.
	exit = os.Exit
)

func init() {
	s := DefaultSettings(config.Defaults())
	settings.Store(&s)
}

// Configure replaces the default handler settings.
func Configure(s Settings) {
	settings.Store(&s)
}

// CurrentSettings returns the default handler settings in effect.
func CurrentSettings() Settings {
	return *settings.Load()
}

// SetHandler installs h as the process-wide handler and returns the
// previous one. A nil h restores DefaultHandler.
func SetHandler(h Handler) Handler {
	var next *Handler
	if h != nil {
		next = &h
	}

	prev := handler.Swap(next)
	if prev == nil {
		return DefaultHandler
	}
	return *prev
}

// Raise hands v to the process-wide handler. It never returns.
func Raise(v *Violation) {
	h := DefaultHandler
	if p := handler.Load(); p != nil {
		h = *p
	}

	h(v)
	panic(v)
}

// DefaultHandler writes the report, logs it and halts the process
// according to the configured Settings.
func DefaultHandler(v *Violation) {
	s := CurrentSettings()

	out := s.Output
	if out == nil {
		out = os.Stderr
	}

	if s.Format == config.FormatYAML {
		if err := v.WriteYAML(out); err != nil {
			v.Format(out)
		}
	} else {
		v.Format(out)
	}

	logging.Default().Error("thread-safety violation",
		"type", v.TypeName,
		"owner", int64(v.Owner),
		"accessor", int64(v.Accessor),
		"halt_mode", s.HaltMode,
	)

	if s.HaltMode == config.HaltPanic {
		panic(v)
	}
	exit(s.ExitCode)
}
