// Copyright 2025 The agano Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads agano runtime options.
//
// Options come from, lowest precedence first: built-in defaults, an
// optional YAML file, AGANO_<KEY> environment variables, and the
// GORACE-style AGANO_OPTIONS string:
//
//	AGANO_OPTIONS="halt_mode=panic track_bind_sites=1 log_level=debug"
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by this package.
const EnvPrefix = "AGANO"

// OptionsEnv holds the GORACE-style option string.
const OptionsEnv = EnvPrefix + "_OPTIONS"

// Halt modes.
const (
	HaltExit  = "exit"
	HaltPanic = "panic"
)

// Report formats.
const (
	FormatText = "text"
	FormatYAML = "yaml"
)

// ErrInvalidOption is wrapped by every validation failure.
var ErrInvalidOption = errors.New("invalid option")

// Options are the runtime options of agano.
type Options struct {
	// HaltMode selects how the default fatal handler stops the process:
	// "exit" calls os.Exit(ExitCode), "panic" panics with the violation.
	HaltMode string `mapstructure:"halt_mode" yaml:"halt_mode"`
	// ExitCode is used by HaltMode "exit". Defaults to 66, like GORACE.
	ExitCode int `mapstructure:"exitcode" yaml:"exitcode"`
	// ReportFormat is "text" (race detector banner) or "yaml".
	ReportFormat string `mapstructure:"report_format" yaml:"report_format"`
	// TrackBindSites records the stack where each Bound value was bound.
	TrackBindSites bool `mapstructure:"track_bind_sites" yaml:"track_bind_sites"`
	// CapabilityChecks enables construction-time capability assertions.
	CapabilityChecks bool `mapstructure:"capability_checks" yaml:"capability_checks"`
	// LogLevel is DEBUG, INFO, WARN or ERROR.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	// GoidSource is "auto", "fast" or "stack".
	GoidSource string `mapstructure:"goid_source" yaml:"goid_source"`
	// DeadlockTimeout applies to builds with -tags deadlock. Zero disables
	// the timeout check.
	DeadlockTimeout time.Duration `mapstructure:"deadlock_timeout" yaml:"deadlock_timeout"`
}

// Defaults returns the built-in options.
func Defaults() Options {
	return Options{
		HaltMode:         HaltExit,
		ExitCode:         66,
		ReportFormat:     FormatText,
		TrackBindSites:   false,
		CapabilityChecks: true,
		LogLevel:         "WARN",
		GoidSource:       "auto",
		DeadlockTimeout:  30 * time.Second,
	}
}

// Keys lists every option key.
func Keys() []string {
	return []string{
		"halt_mode", "exitcode", "report_format", "track_bind_sites",
		"capability_checks", "log_level", "goid_source", "deadlock_timeout",
	}
}

// NewViper returns a viper instance with defaults and environment
// bindings installed.
func NewViper() *viper.Viper {
	v := viper.New()

	d := Defaults()
	v.SetDefault("halt_mode", d.HaltMode)
	v.SetDefault("exitcode", d.ExitCode)
	v.SetDefault("report_format", d.ReportFormat)
	v.SetDefault("track_bind_sites", d.TrackBindSites)
	v.SetDefault("capability_checks", d.CapabilityChecks)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("goid_source", d.GoidSource)
	v.SetDefault("deadlock_timeout", d.DeadlockTimeout)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	return v
}

// Load reads options from v, applying the AGANO_OPTIONS string from the
// environment on top, and validates the result.
func Load(v *viper.Viper) (Options, error) {
	if err := ApplyOptionString(v, os.Getenv(OptionsEnv)); err != nil {
		return Defaults(), err
	}

	var opts Options
	if err := v.Unmarshal(&opts); err != nil {
		return Defaults(), fmt.Errorf("decode options: %w", err)
	}

	if err := opts.Validate(); err != nil {
		return Defaults(), err
	}
	return opts, nil
}

// FromEnv loads options from defaults and the environment only.
func FromEnv() (Options, error) {
	return Load(NewViper())
}

// LoadFile loads options from a YAML (or any viper-supported) file, with
// the environment taking precedence over the file.
func LoadFile(path string) (Options, error) {
	v := NewViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Defaults(), fmt.Errorf("read config %s: %w", path, err)
	}
	return Load(v)
}

// ApplyOptionString parses "key=value key=value" pairs and sets them on v.
// Keys are case-insensitive; separators may be spaces or commas.
func ApplyOptionString(v *viper.Viper, s string) error {
	known := make(map[string]bool, len(Keys()))
	for _, k := range Keys() {
		known[k] = true
	}

	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n'
	})
	for _, field := range fields {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return fmt.Errorf("%w: %s: expected key=value, got %q", ErrInvalidOption, OptionsEnv, field)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if !known[key] {
			return fmt.Errorf("%w: %s: unknown key %q", ErrInvalidOption, OptionsEnv, key)
		}
		v.Set(key, strings.TrimSpace(value))
	}
	return nil
}

// Validate checks enumerated values and ranges.
func (o Options) Validate() error {
	switch o.HaltMode {
	case HaltExit, HaltPanic:
	default:
		return fmt.Errorf("%w: halt_mode %q (want %s or %s)", ErrInvalidOption, o.HaltMode, HaltExit, HaltPanic)
	}

	switch o.ReportFormat {
	case FormatText, FormatYAML:
	default:
		return fmt.Errorf("%w: report_format %q (want %s or %s)", ErrInvalidOption, o.ReportFormat, FormatText, FormatYAML)
	}

	if o.ExitCode < 1 || o.ExitCode > 125 {
		return fmt.Errorf("%w: exitcode %d out of range 1..125", ErrInvalidOption, o.ExitCode)
	}

	switch strings.ToUpper(o.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalidOption, o.LogLevel)
	}

	switch strings.ToLower(o.GoidSource) {
	case "", "auto", "fast", "stack":
	default:
		return fmt.Errorf("%w: goid_source %q (want auto, fast or stack)", ErrInvalidOption, o.GoidSource)
	}

	if o.DeadlockTimeout < 0 {
		return fmt.Errorf("%w: deadlock_timeout %v is negative", ErrInvalidOption, o.DeadlockTimeout)
	}
	return nil
}
