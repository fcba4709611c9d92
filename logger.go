//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: github.com/bassosimone/nop slogger.go's SLogger
// abstraction and discarding default, extended with the session-id
// attachment convention [NewSessionID]'s doc comment describes (see
// sessionid.go) so that convention has one implementation instead of
// every call site in control.go passing "session", sessionID by hand.
//

package roctrace

// SLogger abstracts the [*slog.Logger] behavior used by the control plane
// and dispatcher for structured logging.
//
// By using an abstraction we allow for unit testing and alternative
// implementations without forcing a dependency on log/slog's concrete type.
//
// This package uses two log levels, both only from [Controller]:
//   - Info for control-plane lifecycle events (start, stop, pool
//     open/close)
//   - Debug for per-op subscription churn (enable_op_callback,
//     disable_op_callback, enable_op_activity)
//
// Flushes, pool half swaps and disable_op_activity are not logged.
//
// The [*slog.Logger] type satisfies this interface.
type SLogger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

// DefaultSLogger returns the default [SLogger] to use.
//
// The default is a no-op logger that discards all output. This follows the
// library convention of not writing to stdout/stderr unless explicitly
// configured by the embedding tool.
func DefaultSLogger() SLogger {
	return discardSLogger{}
}

// WithSessionID wraps logger so that sessionID is attached as a trailing
// "session" key to every line it emits — [NewController] installs this
// wrapper once with the session id it mints for that [Controller] (see
// [NewSessionID]) instead of every call site threading the session id by
// hand.
func WithSessionID(logger SLogger, sessionID string) SLogger {
	return sessionSLogger{logger: logger, sessionID: sessionID}
}

// sessionSLogger is the [SLogger] [WithSessionID] returns.
type sessionSLogger struct {
	logger    SLogger
	sessionID string
}

var _ SLogger = sessionSLogger{}

// Debug implements [SLogger].
func (s sessionSLogger) Debug(msg string, args ...any) {
	s.logger.Debug(msg, append(args, "session", s.sessionID)...)
}

// Info implements [SLogger].
func (s sessionSLogger) Info(msg string, args ...any) {
	s.logger.Info(msg, append(args, "session", s.sessionID)...)
}

// discardSLogger is a no-op [SLogger] that discards all log messages.
type discardSLogger struct{}

var _ SLogger = discardSLogger{}

// Debug implements [SLogger].
func (discardSLogger) Debug(msg string, args ...any) {
	// nothing
}

// Info implements [SLogger].
func (discardSLogger) Info(msg string, args ...any) {
	// nothing
}
