// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: spec §4.5's valid-state publication contract, and on
// github.com/NikoMalik/sync_pool's per-P sharded local/shared split
// (pool.go's poolLocal/poolChain) adapted from "recycle an item" to
// "publish a completed entry to a single drainer".
//

package roctrace

import "sync/atomic"

// entryState is the valid-state gate [TraceBuffer] entries publish
// through: INIT means the producer is still filling the entry; COMPLETE
// means every field has been written and the entry is visible to the
// drainer (spec §4.5, I3's buffer-local analogue).
type entryState = uint32

const (
	entryInit     entryState = 0
	entryComplete entryState = 1
)

// traceEntry[T] wraps a producer-owned payload with its publication gate.
type traceEntry[T any] struct {
	valid atomic.Uint32
	body  T
}

// traceChunk[T] is a fixed-size, append-only array of entries plus a link
// to the next chunk allocated when this one filled up (spec §4.5: "On
// buffer full: allocate a new chunk and link it").
type traceChunk[T any] struct {
	entries []traceEntry[T]
	write   atomic.Int64 // next free index to Emplace into
	read    atomic.Int64 // next index FlushAll hasn't flushed yet
	next    atomic.Pointer[traceChunk[T]]
}

func newTraceChunk[T any](size int) *traceChunk[T] {
	return &traceChunk[T]{entries: make([]traceEntry[T], size)}
}

// TraceBuffer[T] is C5: a chain of bounded chunks of typed entries,
// drained synchronously by [TraceBuffer.FlushAll]; the type starts no
// background goroutine of its own, so entries are flushed only when a
// caller invokes FlushAll. Producers never block on the drainer — the
// entry's valid field, written with release ordering and read with
// acquire ordering, is the sole synchronization edge (spec §4.5's "Key
// algorithmic property").
type TraceBuffer[T any] struct {
	chunkSize int
	flush     func(T)

	head atomic.Pointer[traceChunk[T]] // oldest chunk the drainer hasn't finished
	tail atomic.Pointer[traceChunk[T]] // chunk producers currently Emplace into
}

// NewTraceBuffer allocates a buffer whose chunks hold chunkSize entries;
// flush is invoked by FlushAll once per completed entry,
// in buffer order, and must not retain T beyond the call.
func NewTraceBuffer[T any](chunkSize int, flush func(T)) *TraceBuffer[T] {
	if chunkSize <= 0 {
		chunkSize = 256
	}
	first := newTraceChunk[T](chunkSize)
	b := &TraceBuffer[T]{chunkSize: chunkSize, flush: flush}
	b.head.Store(first)
	b.tail.Store(first)
	return b
}

// Emplace reserves the next slot in the current tail chunk, allocating and
// linking a new chunk if the tail is full, and returns a pointer to the
// entry's body for the producer to populate, plus a publish function the
// producer must call exactly once after every field is set (spec §4.5:
// "constructs an entry in-place with valid = INIT ... the producer then
// finalizes fields and stores valid = COMPLETE with release ordering").
func (b *TraceBuffer[T]) Emplace() (body *T, publish func()) {
	for {
		tail := b.tail.Load()
		idx := tail.write.Add(1) - 1
		if idx >= int64(len(tail.entries)) {
			b.growTail(tail)
			continue
		}
		entry := &tail.entries[idx]
		return &entry.body, func() { entry.valid.Store(entryComplete) }
	}
}

// growTail links a fresh chunk after tail (only one producer wins the
// race; the rest retry Emplace against the new tail).
func (b *TraceBuffer[T]) growTail(tail *traceChunk[T]) {
	next := newTraceChunk[T](b.chunkSize)
	if tail.next.CompareAndSwap(nil, next) {
		b.tail.CompareAndSwap(tail, next)
		return
	}
	// Lost the race: someone else linked a chunk already; help advance tail.
	if linked := tail.next.Load(); linked != nil {
		b.tail.CompareAndSwap(tail, linked)
	}
}

// FlushAll drains every chunk synchronously from head forward while
// valid == COMPLETE (acquire), invoking flush and advancing head; safe to
// call from any non-hook goroutine (spec §4.5).
func (b *TraceBuffer[T]) FlushAll() {
	for {
		head := b.head.Load()
		for i := int(head.read.Load()); i < len(head.entries); i++ {
			e := &head.entries[i]
			if e.valid.Load() != entryComplete {
				break
			}
			b.flush(e.body)
			head.read.Store(int64(i + 1))
		}
		next := head.next.Load()
		if next == nil || int(head.read.Load()) < len(head.entries) {
			return
		}
		// head is fully drained and a further chunk already exists: advance.
		b.head.CompareAndSwap(head, next)
	}
}
