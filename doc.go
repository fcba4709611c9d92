// SPDX-License-Identifier: GPL-3.0-or-later

// Package roctrace provides a runtime-agnostic API and call dispatcher for
// tracing accelerator-runtime activity: entry/exit callbacks on traced
// API calls, asynchronous device-operation records, and application
// annotations, all correlated by a common correlation id scheme.
//
// # Core Abstractions
//
// A [Domain] identifies a traced surface (HSA, HIP runtime, HIP device
// operations, the kernel fusion driver, ROCTX application annotations);
// each domain has a dense, fixed set of [Op] codes. Two independent
// subscription kinds exist per (domain, op):
//
//   - Callbacks ([EnableOpCallback]/[EnableDomainCallback]): synchronous,
//     invoked on the calling goroutine at function entry and exit.
//   - Activity ([EnableOpActivity]/[EnableDomainActivity]): asynchronous,
//     buffered into a [Pool] and delivered in batches to a consumer
//     callback on a dedicated goroutine.
//
// Every traced call is assigned an internal, monotonic correlation id
// (C2); an application can additionally push its own external
// correlation id onto the calling goroutine's stack with
// [PushExternalCorrelationID], which the dispatcher weaves into the
// activity stream as an auxiliary marker record immediately preceding
// the record it annotates.
//
// # Pools
//
// [OpenTracePool] creates a [Pool]: a dual-half memory arena that accepts
// concurrent writes from many producer goroutines (each write briefly
// takes the pool's mutex to pick the active half, then reserves its slots
// with a compare-and-swap, so writes are not lock-free) and flips
// halves under a configurable watermark, handing each filled half to a
// single drain goroutine that invokes the pool's [PoolCallback] exactly
// once per half. [Pool.Flush] (or [FlushActivity]) forces an out-of-band
// swap and blocks until the consumer has observed every record complete
// as of the call.
//
// # Start/Stop and the Subscription Journal
//
// [Start] and [Stop] gate whether live subscriptions are installed, but
// every enable/disable call is also durably recorded in an internal
// journal (C4) regardless of gate state. [Stop] tears down live
// activity subscriptions before callback subscriptions (preventing a
// callback from emitting into an already-unsubscribed activity path);
// [Start] replays the journal in the opposite order. A process that
// never calls [Stop] behaves exactly as if the journal did not exist.
//
// # Observability
//
// The control plane logs start, stop and pool open/close at Info and
// per-op enable/disable at Debug via [SLogger], compatible with
// [log/slog]; flushes are not logged. By
// default, logging is disabled; set [Config.Logger] to enable it.
//
// # Error Handling
//
// Every entry point in api.go is exception-free: internal
// failures map to a closed [Status] enumeration at the call boundary, with
// the failing message retrievable via [GetErrorString] on the same
// goroutine that made the call. Invariant violations that indicate the
// process is already in an inconsistent state (for example, a correlation
// stack underflow that can only happen from an already-corrupted call
// sequence) panic instead of returning a [Status], since continuing would
// risk silently corrupting the activity stream.
package roctrace
