// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: original_source/src/roctracer/roctracer.cpp's MemoryPool
// (dual-half arena, Write/Flush/Close) and the teacher's errgroup-free
// goroutine lifecycle style generalized with golang.org/x/sync/errgroup
// for the drain goroutine's supervised shutdown (spec §4.6, §6.1).
//

package roctrace

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// DefaultPoolSize is the default size, in records, of each of a [Pool]'s
// two halves (spec §4.6 calls out a default byte size; this binding
// expresses the arena in units of [ActivityRecord] rather than raw bytes,
// since Go has no pointer-cast equivalent of reinterpreting a byte arena
// as a POD struct array without unsafe code paths absent from the
// retrieval pack).
const DefaultPoolSize = 512 * 1024 / 64 // ~ 512 KiB / sizeof(record-ish)

// DefaultWatermark is the fraction of a half's capacity that triggers a
// swap.
const DefaultWatermark = 0.75

// PoolCallback receives a contiguous, already-complete batch of activity
// records exactly once per half-swap that hands over at least one record
// (spec §4.6's "(begin, end, arg)"); a swap of an empty half does not
// invoke it.
type PoolCallback func(records []ActivityRecord)

// PoolProperties configures [OpenPool].
type PoolProperties struct {
	// Size is the capacity, in records, of each half. Zero selects
	// [DefaultPoolSize].
	Size int
	// Watermark is the fill fraction, in (0, 1], of a half that triggers an
	// implicit swap. Zero selects [DefaultWatermark].
	Watermark float64
	// Callback is invoked on every half-swap and on [Pool.Flush] that
	// hands over at least one record. Required.
	Callback PoolCallback
}

// Pool is C6: a dual-half arena that accepts [ActivityRecord] writes from
// many producer goroutines and hands each filled half, once, to a single
// drain goroutine that calls the client's [PoolCallback].
//
// The two halves are plain slices pre-allocated to Size capacity;
// "writing" reserves a slot via an atomic counter CAS loop and then
// populates that slot directly. The reservation bump alone is not the
// publication edge — a second writer can reserve and finish copying
// before the first writer's copy has run — so each half also tracks an
// in-flight writer count (poolCursor.inFlight): a swap blocks on inFlight
// draining to zero and only then snapshots the reserved count before
// handing the half to the consumer, which is what actually closes I3.
type Pool struct {
	props PoolProperties

	mu      sync.Mutex // guards halves/active/closed against concurrent swap/close
	halves  [2][]ActivityRecord
	active  int // index of the half currently accepting writes
	cursors [2]*poolCursor
	closed  bool

	handover chan poolHalf // handover synchronization primitive (spec §3)
	group    *errgroup.Group
	cancel   context.CancelFunc
}

// poolCursor is the atomic reservation counter for one half, plus the
// in-flight writer count that gates when a reserved-but-not-yet-copied
// range is allowed to become visible to the consumer (I3).
type poolCursor struct {
	n        atomic.Int64 // count reserved so far, advanced via compare-and-swap
	inFlight atomic.Int64 // writers that have reserved a slot but not finished copy()
}

// poolHalf is one filled (or force-flushed) half handed to the drain loop.
type poolHalf struct {
	records []ActivityRecord
	done    chan struct{} // closed once the callback has returned, for Flush to block on
}

// OpenPool is C6's constructor (the external surface's open_pool wires
// into this; see api.go). props.Callback must be non-nil.
func OpenPool(props PoolProperties) (*Pool, error) {
	if props.Callback == nil {
		return nil, newAPIError(StatusErrorInvalidArgument, "open_pool: Callback is required")
	}
	size := props.Size
	if size <= 0 {
		size = DefaultPoolSize
	}
	watermark := props.Watermark
	if watermark <= 0 || watermark > 1 {
		watermark = DefaultWatermark
	}
	props.Size, props.Watermark = size, watermark

	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)

	p := &Pool{
		props:    props,
		halves:   [2][]ActivityRecord{make([]ActivityRecord, size), make([]ActivityRecord, size)},
		cursors:  [2]*poolCursor{{}, {}},
		handover: make(chan poolHalf, 2),
		group:    group,
		cancel:   cancel,
	}
	group.Go(func() error { return p.drainLoop(ctx) })
	return p, nil
}

// drainLoop is C6's dedicated drain thread: it receives filled halves over
// the handover channel and invokes props.Callback exactly once per half.
func (p *Pool) drainLoop(ctx context.Context) error {
	for {
		select {
		case half, ok := <-p.handover:
			if !ok {
				return nil
			}
			p.deliver(half)
		case <-ctx.Done():
			// Drain whatever is already queued before exiting so Close's
			// final flush is never silently dropped.
			for {
				select {
				case half, ok := <-p.handover:
					if !ok {
						return nil
					}
					p.deliver(half)
				default:
					return nil
				}
			}
		}
	}
}

// deliver invokes the client callback. A panicking callback is treated as
// fatal (spec §4.6: "the library cannot reason about partial consumption").
func (p *Pool) deliver(half poolHalf) {
	defer close(half.done)
	defer func() {
		if r := recover(); r != nil {
			fatalf("pool consumer callback panicked: %v", r)
		}
	}()
	if len(half.records) > 0 {
		p.props.Callback(half.records)
	}
}

// Write reserves one slot in the active half and stores rec. If the
// active half is full, or the client called [Pool.Flush]/the watermark
// was crossed concurrently, Write retries against the newly active half.
func (p *Pool) Write(rec ActivityRecord) {
	p.writeN([]ActivityRecord{rec})
}

// WritePair atomically reserves two adjacent slots for first and second —
// used by the external-correlation weave (spec §4.8), which requires the
// EXTERN_ID marker record to be contiguous with, and immediately precede,
// its companion activity record (P9).
func (p *Pool) WritePair(first, second ActivityRecord) {
	p.writeN([]ActivityRecord{first, second})
}

// WriteBlob reserves one slot, stores rec, and invokes fixup with a copy
// of the blob that has been retained for the lifetime of the batch
// delivered to the consumer (spec §4.6's variadic write + fixup_fn
// contract). Since Go strings/slices are already heap-managed and the
// record is a value type stored directly in the arena, "copying the blob
// into the arena" reduces to retaining a private copy of the bytes and
// calling fixup before the slot becomes visible.
func (p *Pool) WriteBlob(rec ActivityRecord, blob []byte, fixup func(r *ActivityRecord, blob []byte)) {
	blobCopy := append([]byte(nil), blob...)
	fixup(&rec, blobCopy)
	p.writeN([]ActivityRecord{rec})
}

// writeN reserves len(recs) contiguous slots in one half via a CAS loop
// on that half's cursor, falling back to a swap (and a retry against the
// new active half) when the reservation would overflow. The cursor's
// inFlight counter is raised under p.mu, together with the read of the
// active half, and held up for the whole reserve-then-copy attempt
// (including a failed CAS that has to retry), so [Pool.swap] can tell
// whether every writer that reserved against this half has actually
// finished its copy before handing the half to the consumer.
func (p *Pool) writeN(recs []ActivityRecord) {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			fatalf("write on closed pool")
		}
		active := p.active
		cursor := p.cursors[active]
		half := p.halves[active]
		cursor.inFlight.Add(1)
		p.mu.Unlock()

		start := cursor.n.Load()
		end := start + int64(len(recs))
		if end > int64(len(half)) {
			cursor.inFlight.Add(-1)
			p.swap(active)
			continue
		}
		if !cursor.n.CompareAndSwap(start, end) {
			cursor.inFlight.Add(-1)
			continue // lost the race, retry
		}
		copy(half[start:end], recs)
		cursor.inFlight.Add(-1)

		if float64(end) >= float64(len(half))*p.props.Watermark {
			p.swap(active)
		}
		return
	}
}

// swap hands the filled half to the drain goroutine and flips to the
// other half, allocating fresh backing storage for it so in-flight
// producers on the half just swapped out never see their writes clobbered
// before the consumer observes them. Every writeN reads p.active and
// raises that cursor's inFlight under p.mu, so once p.active flips no new
// writer can target the old cursor/half; waiting for that cursor's
// inFlight to drain to zero and only then reading its reserved count n
// guarantees every reserved slot below n has been copied (I3) and no
// reservation is left outside the range handed off.
func (p *Pool) swap(expectActive int) chan struct{} {
	p.mu.Lock()
	if p.active != expectActive || p.closed {
		// Someone else already swapped (or we raced a Close); nothing to do.
		p.mu.Unlock()
		return nil
	}
	cursor := p.cursors[expectActive]
	half := p.halves[expectActive]
	next := 1 - expectActive
	p.active = next
	p.halves[expectActive] = make([]ActivityRecord, len(p.halves[expectActive]))
	p.cursors[expectActive] = new(poolCursor)
	p.mu.Unlock()

	for cursor.inFlight.Load() > 0 {
		runtime.Gosched()
	}
	n := cursor.n.Load()

	done := make(chan struct{})
	p.handover <- poolHalf{records: half[:n], done: done}
	return done
}

// Flush forces a swap of the active half even if below watermark and
// blocks until the consumer callback has returned for every record
// complete at call time (P7).
func (p *Pool) Flush() {
	p.mu.Lock()
	active := p.active
	p.mu.Unlock()

	if done := p.swap(active); done != nil {
		<-done
	}
}

// Close flushes both halves, stops the drain goroutine, and releases the
// pool. Any Write after Close panics (treated as a programming error, not
// a recoverable status, since it can only happen if the caller kept using
// a handle past close_pool).
func (p *Pool) Close() error {
	p.Flush()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	close(p.handover)
	return p.group.Wait()
}

