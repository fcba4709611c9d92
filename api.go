// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: original_source/src/roctracer/roctracer.cpp's public
// roctracer_* entry points (spec §6), each wrapped in a
// try/catch-and-map-to-roctracer_status_t block; here that boundary is
// the package-level functions below, each mapping an internal error to a
// [Status] via [statusOf] instead of recovering a panic (spec §7:
// "invariant violations are fatal, not recoverable — everything else
// reaching this boundary is a [Status]").
//

package roctrace

// OpString returns the human-readable name of (domain, op) (op_string).
// The core carries no builtin names — a generated per-API binding
// installs them via [RegisterOpNames], mirroring loader.go's
// RegisterBinding — so this reports [StatusErrorNotImplemented] for any
// (domain, op) no binding has registered a name for yet, satisfying R1
// (op_code(D, op_string(D, o)) == o) once a binding is registered.
func OpString(domain Domain, op Op) (string, Status) {
	if !domain.Valid() || int(op) >= domain.OpCount() {
		return "", statusOf(newAPIError(StatusErrorInvalidDomainID, "op_string: invalid (domain, op) = (%d, %d)", domain, op))
	}
	name, ok := opNameOf(domain, op)
	if !ok {
		return "", statusOf(newAPIError(StatusErrorNotImplemented, "op_string: no name registered for (domain, op) = (%s, %d)", domain, op))
	}
	return name, StatusSuccess
}

// OpCode looks up the dense op code registered under name within domain
// via [RegisterOpNames] (op_code), reporting
// [StatusErrorNotImplemented] if domain has no such name registered.
func OpCode(domain Domain, name string) (Op, Status) {
	if !domain.Valid() {
		return 0, statusOf(newAPIError(StatusErrorInvalidDomainID, "op_code: invalid domain %d", domain))
	}
	op, ok := opCodeOf(domain, name)
	if !ok {
		return 0, statusOf(newAPIError(StatusErrorNotImplemented, "op_code: no op named %q registered for domain %s", name, domain))
	}
	return op, StatusSuccess
}

// EnableOpCallback subscribes fn/arg to (domain, op)'s enter/exit callback.
func EnableOpCallback(domain Domain, op Op, fn Callback, arg any) Status {
	return statusOf(DefaultController.EnableOpCallback(domain, op, fn, arg))
}

// DisableOpCallback unsubscribes (domain, op)'s callback.
func DisableOpCallback(domain Domain, op Op) Status {
	return statusOf(DefaultController.DisableOpCallback(domain, op))
}

// EnableDomainCallback subscribes fn/arg to every op of domain.
func EnableDomainCallback(domain Domain, fn Callback, arg any) Status {
	return statusOf(DefaultController.EnableDomainCallback(domain, fn, arg))
}

// DisableDomainCallback unsubscribes every op of domain's callback.
func DisableDomainCallback(domain Domain) Status {
	return statusOf(DefaultController.DisableDomainCallback(domain))
}

// EnableOpActivity subscribes (domain, op) to activity recording into
// pool (the default pool if nil).
func EnableOpActivity(domain Domain, op Op, pool *Pool) Status {
	return statusOf(DefaultController.EnableOpActivity(domain, op, pool))
}

// DisableOpActivity unsubscribes (domain, op) from activity recording.
func DisableOpActivity(domain Domain, op Op) Status {
	return statusOf(DefaultController.DisableOpActivity(domain, op))
}

// EnableDomainActivity subscribes every op of domain to activity
// recording into pool (the default pool if nil).
func EnableDomainActivity(domain Domain, pool *Pool) Status {
	return statusOf(DefaultController.EnableDomainActivity(domain, pool))
}

// DisableDomainActivity unsubscribes every op of domain from activity
// recording.
func DisableDomainActivity(domain Domain) Status {
	return statusOf(DefaultController.DisableDomainActivity(domain))
}

// OpenTracePool opens a new activity pool (open_pool). Pass
// defaultSlot=true to additionally bind it as the process default pool.
func OpenTracePool(props PoolProperties, defaultSlot bool) (*Pool, Status) {
	pool, err := DefaultController.OpenPool(props, defaultSlot)
	return pool, statusOf(err)
}

// ClosePool closes pool (the default pool if nil).
func ClosePool(pool *Pool) Status {
	return statusOf(DefaultController.ClosePool(pool))
}

// DefaultPool returns the current default pool, or nil if none is open.
func DefaultPool() *Pool {
	return DefaultController.DefaultPool()
}

// DefaultPoolExpl swaps in pool as the default pool and returns the
// previous one (default_pool_expl).
func DefaultPoolExpl(pool *Pool) *Pool {
	return DefaultController.SetDefaultPool(pool)
}

// FlushActivity forces pool (the default pool if nil) to deliver every
// record complete as of this call, blocking until the consumer callback
// returns for all of them (P7).
func FlushActivity(pool *Pool) Status {
	return statusOf(DefaultController.FlushActivity(pool))
}

// NextRecord advances past rec and returns the following record in the
// same delivered batch, or (nil, false) if rec was the last one. Bindings
// that prefer iterating a []ActivityRecord directly (the idiomatic Go
// shape [PoolCallback] already hands them) do not need this; it exists to
// mirror spec §6's explicit next_record accessor for bindings that only
// keep a *ActivityRecord cursor.
func NextRecord(batch []ActivityRecord, rec *ActivityRecord) (*ActivityRecord, bool) {
	for i := range batch {
		if &batch[i] == rec {
			if i+1 < len(batch) {
				return &batch[i+1], true
			}
			return nil, false
		}
	}
	return nil, false
}

// GetTimestamp returns the current monotonic timestamp in nanoseconds
// (get_timestamp).
func GetTimestamp() int64 {
	return Now()
}

// Start transitions the tracing gate to RUNNING, replaying every
// journaled subscription.
func Start() {
	DefaultController.Start()
}

// Stop transitions the tracing gate to STOPPED.
func Stop() {
	DefaultController.Stop()
}

// PushExternalCorrelationID pushes an application-supplied correlation id
// onto the calling goroutine's external correlation stack
// (push_external_correlation_id). It never fails.
func PushExternalCorrelationID(id uint64) {
	pushExternalCorrelation(id)
}

// PopExternalCorrelationID pops the calling goroutine's external
// correlation stack, returning the popped value
// (pop_external_correlation_id). Popping past empty is reported as
// [StatusErrorMismatchedExternalCorrelationID], matching spec §7 (unlike
// the internal stack's underflow, this one is caller-triggerable and so
// cannot be fatal).
func PopExternalCorrelationID() (uint64, Status) {
	id, ok := popExternalCorrelation()
	if !ok {
		return 0, statusOf(newAPIError(StatusErrorMismatchedExternalCorrelationID, "pop_external_correlation_id: stack underflow"))
	}
	return id, StatusSuccess
}

// VersionMajor is the major version of the traced wire protocol this
// package implements (version_major).
const VersionMajor = 4

// VersionMinor is the minor version (version_minor).
const VersionMinor = 1

// GetErrorString returns the last error message recorded for the calling
// goroutine (error_string).
func GetErrorString() string {
	return ErrorString()
}
