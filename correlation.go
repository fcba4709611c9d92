// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: original_source/src/roctracer/roctracer.cpp (CorrelationIdPush/Pop,
// ExternalCorrelationId) and original_source/src/roctracer/correlation_id.h.
//

package roctrace

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// nextCorrelationID is the process-wide monotonic counter behind
// [pushInternalCorrelation]. Correlation IDs start at 1; 0 means "unset"
// (spec §3).
var nextCorrelationID atomic.Uint64

// goroutineState holds the per-"thread" state spec §4.2 and §7 describe as
// thread-local: the internal correlation stack, the external correlation
// stack, and the last-error message. Go has no OS-level thread-local
// storage without cgo, and no library in the retrieval pack offers a
// goroutine-local-storage equivalent, so this is built directly on the
// standard library's own goroutine-id-from-stack-trace idiom (see
// [goroutineID]) rather than imported from a third party.
type goroutineState struct {
	mu         sync.Mutex
	internal   []uint64
	external   []uint64
	lastErr    string
	lastAccess atomic.Int64 // UnixNano of the last currentGoroutineState() touch
}

var goroutineStates sync.Map // uint64 goroutine id -> *goroutineState

// goroutineStateIdleTimeout bounds how long an idle entry is kept in
// [goroutineStates] before [reapGoroutineStates] evicts it. Go reuses
// numeric goroutine ids once a goroutine exits, and nothing else
// observes that exit, so without reaping this map both leaks
// indefinitely and risks a brand-new, unrelated goroutine inheriting a
// previous occupant's stale external-correlation stack or last-error
// message.
const goroutineStateIdleTimeout = 5 * time.Minute

// reapGoroutineStates evicts every entry idle for longer than maxAge
// with empty correlation stacks (a non-empty stack means a push is
// in-flight without its matching pop yet, so that entry is never reaped
// even if idle). Called periodically by [Controller]'s background
// flusher.
func reapGoroutineStates(maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge).UnixNano()
	goroutineStates.Range(func(k, v any) bool {
		gs := v.(*goroutineState)
		gs.mu.Lock()
		idle := len(gs.internal) == 0 && len(gs.external) == 0 && gs.lastAccess.Load() < cutoff
		gs.mu.Unlock()
		if idle {
			goroutineStates.Delete(k)
		}
		return true
	})
}

// goroutineID extracts the numeric goroutine id from the current
// goroutine's stack trace header ("goroutine 123 [running]:"). This is
// the same technique used by several goroutine-local-storage shims in the
// wider Go ecosystem; it is stdlib-only and does not depend on runtime
// internals beyond the documented "goroutine N [...]" trace format.
func goroutineID() uint64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	buf = buf[:n]

	const prefix = "goroutine "
	if !bytes.HasPrefix(buf, []byte(prefix)) {
		return 0
	}
	buf = buf[len(prefix):]
	end := bytes.IndexByte(buf, ' ')
	if end < 0 {
		return 0
	}
	id, err := strconv.ParseUint(string(buf[:end]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// currentGoroutineState returns (creating if necessary) the calling
// goroutine's state, refreshing its idle clock so [reapGoroutineStates]
// leaves it alone while it is still in use.
func currentGoroutineState() *goroutineState {
	id := goroutineID()
	v, ok := goroutineStates.Load(id)
	if !ok {
		v, _ = goroutineStates.LoadOrStore(id, &goroutineState{})
	}
	gs := v.(*goroutineState)
	gs.lastAccess.Store(time.Now().UnixNano())
	return gs
}

// pushInternalCorrelation implements C2's push_internal: atomically
// allocates the next correlation id (I1, I2) and pushes it onto the
// calling goroutine's internal stack.
func pushInternalCorrelation() uint64 {
	id := nextCorrelationID.Add(1)
	gs := currentGoroutineState()
	gs.mu.Lock()
	gs.internal = append(gs.internal, id)
	gs.mu.Unlock()
	return id
}

// popInternalCorrelation implements C2's pop_internal. Popping an empty
// stack is an I2 violation (every pre-hook push must be matched by exactly
// one post-hook pop) and is therefore fatal, not a recoverable [Status].
func popInternalCorrelation() uint64 {
	gs := currentGoroutineState()
	gs.mu.Lock()
	defer gs.mu.Unlock()

	n := len(gs.internal)
	if n == 0 {
		fatalf("pop_internal: internal correlation stack underflow (I2 violation)")
	}
	id := gs.internal[n-1]
	gs.internal = gs.internal[:n-1]
	return id
}

// pushExternalCorrelation implements push_external_correlation_id: push
// an application-supplied id with no counter increment.
func pushExternalCorrelation(id uint64) {
	gs := currentGoroutineState()
	gs.mu.Lock()
	gs.external = append(gs.external, id)
	gs.mu.Unlock()
}

// popExternalCorrelation implements pop_external_correlation_id. Returns
// the popped value and true, or (0, false) on underflow; the public
// boundary in api.go surfaces the latter as
// [StatusErrorMismatchedExternalCorrelationID].
func popExternalCorrelation() (uint64, bool) {
	gs := currentGoroutineState()
	gs.mu.Lock()
	defer gs.mu.Unlock()

	n := len(gs.external)
	if n == 0 {
		return 0, false
	}
	id := gs.external[n-1]
	gs.external = gs.external[:n-1]
	return id, true
}

// currentExternalCorrelation implements current_external: peek the top of
// the external stack without popping.
func currentExternalCorrelation() (uint64, bool) {
	gs := currentGoroutineState()
	gs.mu.Lock()
	defer gs.mu.Unlock()

	n := len(gs.external)
	if n == 0 {
		return 0, false
	}
	return gs.external[n-1], true
}

// recordLastError stores msg into the calling goroutine's last-error slot.
func recordLastError(msg string) {
	gs := currentGoroutineState()
	gs.mu.Lock()
	gs.lastErr = msg
	gs.mu.Unlock()
}

// ErrorString returns the last error message recorded for the calling
// goroutine, or the empty string if none was recorded yet.
func ErrorString() string {
	gs := currentGoroutineState()
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.lastErr
}

// fatalf reports an unrecoverable invariant violation. Internal failures
// that indicate API misuse map to a [Status] at the public boundary;
// invariant violations indicate the process is already in an inconsistent
// state (e.g. I2) and cannot be handled without risking silent data
// corruption, so — matching [original_source]'s own `abort()` on a
// required-symbol miss — they panic instead.
func fatalf(format string, args ...any) {
	panic(newAPIError(StatusError, format, args...))
}
