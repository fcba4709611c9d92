// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: original_source/src/roctracer/roctracer.cpp's
// CallbackJournalData / ActivityJournalData Journal<T> instances, and the
// disable-before-enable ordering in its start()/stop() handlers.
//

package roctrace

import "sync"

// journalCallbackEntry is what C4 remembers for one (domain, op)
// callback subscription.
type journalCallbackEntry struct {
	fn  Callback
	arg any
}

// journalActivityEntry is what C4 remembers for one (domain, op)
// activity subscription.
type journalActivityEntry struct {
	pool *Pool
}

// Journal is C4: the durable record of which subscriptions must be
// reinstalled by [Controller.Start] after a [Controller.Stop] (I5). It has
// no opinion on whether the gate is currently RUNNING or STOPPED — that
// belongs to the [Controller]; the journal always mirrors the live
// subscription set as seen through enable_*/disable_*, regardless of gate
// state.
type Journal struct {
	mu         sync.RWMutex
	callbacks  map[key]journalCallbackEntry
	activities map[key]journalActivityEntry
}

// NewJournal allocates an empty journal.
func NewJournal() *Journal {
	return &Journal{
		callbacks:  make(map[key]journalCallbackEntry),
		activities: make(map[key]journalActivityEntry),
	}
}

// InsertCallback records (or overwrites, per spec §9) the callback
// subscription for (domain, op).
func (j *Journal) InsertCallback(domain Domain, op Op, fn Callback, arg any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.callbacks[key{domain, op}] = journalCallbackEntry{fn: fn, arg: arg}
}

// RemoveCallback forgets the callback subscription for (domain, op).
func (j *Journal) RemoveCallback(domain Domain, op Op) {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.callbacks, key{domain, op})
}

// InsertActivity records (or overwrites) the activity subscription for
// (domain, op).
func (j *Journal) InsertActivity(domain Domain, op Op, pool *Pool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.activities[key{domain, op}] = journalActivityEntry{pool: pool}
}

// RemoveActivity forgets the activity subscription for (domain, op).
func (j *Journal) RemoveActivity(domain Domain, op Op) {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.activities, key{domain, op})
}

// RemoveActivitiesForPool forgets every activity subscription bound to
// pool, returning the (domain, op) pairs it removed. Used by
// [Controller.ClosePool] (P8): closing a pool un-installs exactly the
// activity subscriptions that referenced it, leaving all others intact.
func (j *Journal) RemoveActivitiesForPool(pool *Pool) []key {
	j.mu.Lock()
	defer j.mu.Unlock()

	var removed []key
	for k, entry := range j.activities {
		if entry.pool == pool {
			removed = append(removed, k)
			delete(j.activities, k)
		}
	}
	return removed
}

// ForEachCallback calls visit once per journaled callback subscription.
func (j *Journal) ForEachCallback(visit func(domain Domain, op Op, fn Callback, arg any)) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	for k, e := range j.callbacks {
		visit(k.domain, k.op, e.fn, e.arg)
	}
}

// ForEachActivity calls visit once per journaled activity subscription.
func (j *Journal) ForEachActivity(visit func(domain Domain, op Op, pool *Pool)) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	for k, e := range j.activities {
		visit(k.domain, k.op, e.pool)
	}
}

// Len reports the total number of journaled subscriptions (callbacks plus
// activities), used by tests asserting the journal is unchanged across a
// stop/start cycle (S4).
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.callbacks) + len(j.activities)
}
