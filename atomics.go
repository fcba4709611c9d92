// SPDX-License-Identifier: GPL-3.0-or-later

package roctrace

import (
	"os"
	"sync/atomic"
)

// atomicBoolSlice is a fixed-size slice of lock-free booleans, used by
// [opEnabledMask] to answer "is anything subscribed on this op" without
// taking [CallTable]'s mutex or the journal's lock.
type atomicBoolSlice []atomic.Bool

func newAtomicBoolSlice(n int) atomicBoolSlice {
	return make(atomicBoolSlice, n)
}

func (s atomicBoolSlice) Load(i int) bool     { return s[i].Load() }
func (s atomicBoolSlice) Store(i int, v bool) { s[i].Store(v) }

// atomicPoolPtr is an atomic.Pointer[Pool] with a short name to keep
// dispatch.go's DomainState declaration readable.
type atomicPoolPtr = atomic.Pointer[Pool]

// cachedPID is resolved once: like the original source's GetPid() (a
// static syscall result cached for the process lifetime), os.Getpid never
// changes after the process starts.
var cachedPID = uint32(os.Getpid())

func processID() uint32 { return cachedPID }
