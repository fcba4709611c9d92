// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: original_source/src/roctracer/loader.h's BaseLoader<T>
// (double-checked-locking singleton, GetFun's abort-on-required-symbol-miss),
// ported from dlopen/dlsym to a pre-registered [Binding] since Go has no
// portable dlopen/dlsym without cgo and no example in the retrieval pack
// supplies one (see DESIGN.md). The lazy-singleton collapse itself uses
// golang.org/x/sync/singleflight in place of loader.h's bespoke mutex.
//

package roctrace

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Binding is what a cgo shim for one traced runtime (HSA, HIP, KFD — out
// of scope per spec §1) registers ahead of time via [RegisterBinding].
// Open performs whatever work "opening the library" requires (in a real
// binding: dlopen plus an initial symbol table dump); Symbols is the
// resolved function-pointer table, boxed as `any` since Go cannot express
// "pointer to an arbitrary C function" without cgo/unsafe.
type Binding struct {
	// AutoLoad mirrors the source's "to_load_" flag: if false, Open is
	// expected to report loaded=false unless the runtime was already
	// loaded by something else in the process.
	AutoLoad bool
	// RequireSymbols lists symbols that must resolve; a miss aborts the
	// process (spec §4.7: "aborts with a diagnostic on a required-symbol
	// miss"), matching loader.h's GetFun behavior exactly.
	RequireSymbols []string
	// Open loads the runtime (if not already loaded) and returns the
	// resolved symbol table plus whether the library ended up loaded.
	Open func() (symbols map[string]any, loaded bool, err error)
}

var (
	bindingsMu sync.Mutex
	bindings   = map[string]Binding{}
)

// RegisterBinding installs the [Binding] for a named traced runtime
// ("hsa", "hip", "kfd", ...). Call before the first [LoaderFor].
func RegisterBinding(name string, b Binding) {
	bindingsMu.Lock()
	defer bindingsMu.Unlock()
	bindings[name] = b
}

// Loader is C7: a lazily-initialized, per-runtime singleton holding the
// resolved symbol table. Obtain one with [LoaderFor].
type Loader struct {
	name    string
	symbols map[string]any
	loaded  bool
}

var (
	loaderGroup     singleflight.Group
	loaderInstances sync.Map // string name -> *atomic.Pointer[Loader]
)

// LoaderFor returns the singleton [Loader] for the named traced runtime,
// opening it on first access. Concurrent first-callers for the same name
// collapse into a single [Binding.Open] call via singleflight, replacing
// loader.h's double-checked-locking mutex with the idiomatic Go
// equivalent.
func LoaderFor(name string) *Loader {
	slot := loaderSlot(name)
	if existing := slot.Load(); existing != nil {
		return existing
	}

	v, _, _ := loaderGroup.Do(name, func() (any, error) {
		if existing := slot.Load(); existing != nil {
			return existing, nil
		}
		l := openLoader(name)
		slot.Store(l)
		return l, nil
	})
	return v.(*Loader)
}

func loaderSlot(name string) *atomic.Pointer[Loader] {
	v, _ := loaderInstances.LoadOrStore(name, new(atomic.Pointer[Loader]))
	return v.(*atomic.Pointer[Loader])
}

func openLoader(name string) *Loader {
	bindingsMu.Lock()
	b, ok := bindings[name]
	bindingsMu.Unlock()

	if !ok {
		// No cgo shim registered for this runtime: behave like
		// dlopen-with-auto-load-disabled-and-not-already-loaded, i.e. a
		// present-but-unloaded Loader whose IsEnabled is false.
		return &Loader{name: name}
	}

	symbols, loaded, err := b.Open()
	if err != nil {
		fatalf("roctrace: loading %q failed: %s", name, err)
	}
	l := &Loader{name: name, symbols: symbols, loaded: loaded}
	if loaded {
		for _, required := range b.RequireSymbols {
			if _, present := symbols[required]; !present {
				fatalf("roctrace: symbol lookup %q failed for runtime %q", required, name)
			}
		}
	}
	return l
}

// IsEnabled reports whether the underlying library was loaded (spec
// §4.7's is_enabled: false if not loaded and auto-load was disabled).
func (l *Loader) IsEnabled() bool {
	return l.loaded
}

// Symbol returns the resolved value registered under name, or (zero,
// false) if it was not resolved (or the loader is not enabled).
func Symbol[T any](l *Loader, name string) (T, bool) {
	var zero T
	if !l.loaded {
		return zero, false
	}
	v, ok := l.symbols[name]
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// resetLoadersForTest clears every cached loader singleton and registered
// binding; see [resetForTest] in reset_test.go.
func resetLoadersForTest() {
	loaderInstances.Range(func(k, _ any) bool {
		loaderInstances.Delete(k)
		return true
	})
	loaderGroup = singleflight.Group{}
	bindingsMu.Lock()
	bindings = map[string]Binding{}
	bindingsMu.Unlock()
}
