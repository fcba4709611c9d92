// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: github.com/bassosimone/nop config.go (the "single struct
// of defaulted knobs passed to constructors" pattern).
//

package roctrace

import "time"

// Config holds common configuration for the tracing runtime.
//
// Pass this to [NewController]. All fields have sensible defaults set by
// [NewConfig].
type Config struct {
	// Logger receives control-plane lifecycle events.
	//
	// Set by [NewConfig] to [DefaultSLogger].
	Logger SLogger

	// FlushInterval is how often the background flusher drains the
	// default pool (spec §9: "a best-effort periodic flush exists so a
	// long-idle process does not hold completed records indefinitely").
	// Zero disables the background flusher; [NewConfig] sets it to a
	// conservative non-zero default.
	//
	// Set by [NewConfig] to [DefaultFlushInterval].
	FlushInterval time.Duration
}

// DefaultFlushInterval is [NewConfig]'s default [Config.FlushInterval].
const DefaultFlushInterval = 5 * time.Second

// NewConfig creates a [*Config] with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Logger:        DefaultSLogger(),
		FlushInterval: DefaultFlushInterval,
	}
}
