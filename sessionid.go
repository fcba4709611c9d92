// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: github.com/bassosimone/nop spanid.go
//

package roctrace

import (
	"github.com/bassosimone/runtimex"
	"github.com/google/uuid"
)

// NewSessionID returns a fresh UUIDv7 session identifier.
//
// It has no relation to correlation IDs, which identify a single
// instrumented call. [NewController] mints one per [Controller] and,
// through [WithSessionID], attaches it to every structured log line that
// Controller emits, so that log entries from independent controllers of
// the same process (e.g. in tests that call [resetForTest] between cases,
// which rebuilds [DefaultController]) can be told apart. [OnLoad] mints a
// separate one per call and returns it as [Tool.SessionID]; that value is
// not attached to any log line.
//
// This function panics if the system random number generator fails, which
// should only happen under extraordinary circumstances.
func NewSessionID() string {
	return runtimex.PanicOnError1(uuid.NewV7()).String()
}
